package cli

import (
	"errors"
	"fmt"

	youtubeclient "shorts-autopost/infrastructure/clients/youtube"
	"shorts-autopost/infrastructure/configuration"
	httpHandler "shorts-autopost/interfaces/http"

	"github.com/spf13/cobra"
)

func newAuthCommand() *cobra.Command {
	var (
		manual bool
		listen string
	)
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize uploads and store the credential in the token file",
		Long: `Runs the installed-app consent flow for the youtube.upload scope. The
credential is written to TOKEN_FILE and the refresh token is printed so it can
be stored as REFRESH_TOKEN.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			consent := httpHandler.LoopbackConsent(listen, out)
			if manual {
				consent = youtubeclient.ManualConsent(cmd.InOrStdin(), out)
			}

			provider, err := newCredentialProvider(&configuration.C, consent)
			if err != nil {
				return err
			}
			tok, err := provider.Authorize(cmd.Context())
			if err != nil {
				return err
			}
			if tok.RefreshToken == "" {
				return errors.New("no refresh token was issued, revoke the app access and run auth again")
			}
			fmt.Fprintf(out, "Authorization complete. Store this value as REFRESH_TOKEN:\n%s\n", tok.RefreshToken)
			return nil
		},
	}
	cmd.Flags().BoolVar(&manual, "manual", false, "paste the authorization code instead of using a local callback server")
	cmd.Flags().StringVar(&listen, "listen", loopbackAddr, "address of the local callback server | example: --listen=127.0.0.1:8085")
	return cmd
}
