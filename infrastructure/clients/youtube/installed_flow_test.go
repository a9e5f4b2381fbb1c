package youtube

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestAuthCodeURL(t *testing.T) {
	conf := &oauth2.Config{
		ClientID:    "client-abc",
		RedirectURL: "http://127.0.0.1:8085/callback",
		Scopes:      []string{UploadScope},
		Endpoint:    oauth2.Endpoint{AuthURL: "https://accounts.example.com/auth"},
	}

	u, err := url.Parse(AuthCodeURL(conf, "state-1"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "consent", q.Get("prompt"))
	assert.Equal(t, "state-1", q.Get("state"))
	assert.Equal(t, UploadScope, q.Get("scope"))
}

func TestManualConsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "pasted-code", r.PostForm.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"manual-access","refresh_token":"manual-refresh","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	conf := &oauth2.Config{
		ClientID:     "client-abc",
		ClientSecret: "secret-xyz",
		RedirectURL:  "http://127.0.0.1",
		Endpoint: oauth2.Endpoint{
			AuthURL:   "https://accounts.example.com/auth",
			TokenURL:  srv.URL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	var out bytes.Buffer

	tok, err := ManualConsent(strings.NewReader("  pasted-code \n"), &out)(context.Background(), conf)
	require.NoError(t, err)
	assert.Equal(t, "manual-access", tok.AccessToken)
	assert.Equal(t, "manual-refresh", tok.RefreshToken)
	assert.Contains(t, out.String(), "https://accounts.example.com/auth")

	_, err = ManualConsent(strings.NewReader("\n"), &out)(context.Background(), conf)
	assert.Error(t, err)
}

func TestGenerateState(t *testing.T) {
	a, b := GenerateState(), GenerateState()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
