package cli

import (
	"errors"
	"fmt"
	"time"

	"shorts-autopost/domain/model"
	"shorts-autopost/infrastructure/configuration"
	"shorts-autopost/infrastructure/utils"

	"github.com/spf13/cobra"
)

func newTokenCommand() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the HTTP trigger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secretKey := configuration.C.App.SecretKey
			if secretKey == "" {
				return errors.New("SECRET_KEY is not set")
			}
			token, err := utils.GenerateToken(subject, model.ScopeRun, ttl, secretKey)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "scheduler", "token subject, logged with each triggered run")
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "token lifetime, 0 for no expiry")
	return cmd
}
