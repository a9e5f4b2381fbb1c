package youtube

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/oauth2"
)

// AuthCodeURL builds the consent URL. Offline access with a forced consent
// prompt makes Google return a refresh token every time.
func AuthCodeURL(conf *oauth2.Config, state string) string {
	return conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// ManualConsent prints the consent URL to out and reads the authorization
// code pasted on in.
func ManualConsent(in io.Reader, out io.Writer) ConsentFunc {
	return func(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
		fmt.Fprintf(out, "Go to the following link in your browser then type the authorization code:\n%v\n", AuthCodeURL(conf, GenerateState()))

		code, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read authorization code: %w", err)
		}
		code = strings.TrimSpace(code)
		if code == "" {
			return nil, errors.New("authorization code is empty")
		}
		tok, err := conf.Exchange(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("exchange authorization code: %w", err)
		}
		return tok, nil
	}
}

// GenerateState generates a random state parameter for OAuth2
func GenerateState() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
