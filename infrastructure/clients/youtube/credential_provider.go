package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"shorts-autopost/domain/model"
	"shorts-autopost/domain/repository"
	"shorts-autopost/infrastructure/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// UploadScope is the only scope requested for the YouTube credential
const UploadScope = youtube.YoutubeUploadScope

// Config represents YouTube API configuration
type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	TokenFile    string
	TokenURI     string
	ChunkSize    int
	// Interactive runs the consent flow instead of requiring a refresh token
	Interactive bool
}

// ConsentFunc obtains a token through the installed-app consent flow
type ConsentFunc func(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error)

// CredentialProvider produces an authorized YouTube client, caching the
// credential in a local token file.
type CredentialProvider struct {
	config        Config
	consent       ConsentFunc
	clientOptions []option.ClientOption
}

// NewCredentialProvider creates a provider. consent may be nil when the
// interactive flow is not available.
func NewCredentialProvider(config Config, consent ConsentFunc, opts ...option.ClientOption) *CredentialProvider {
	return &CredentialProvider{config: config, consent: consent, clientOptions: opts}
}

// Authenticate implements repository.IYouTubeAuthenticator
func (p *CredentialProvider) Authenticate(ctx context.Context) (repository.IYouTube, error) {
	ts, err := p.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	client, err := NewYouTubeClient(ctx, ts, p.config.ChunkSize, p.clientOptions...)
	if err != nil {
		return nil, model.NewAuthenticationError("create youtube service", err)
	}
	return client, nil
}

// TokenSource returns a token source for the upload scope. A valid cached
// credential is used as-is; otherwise the refresh token (REFRESH_TOKEN, or the
// one stored in the token file) is exchanged for a fresh access token and the
// result is written back to the token file. The consent flow only runs when no
// refresh token is known.
func (p *CredentialProvider) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	log := logger.GetLogger().WithField("tokenFile", p.config.TokenFile)

	cached, err := LoadCredential(p.config.TokenFile)
	switch {
	case err == nil:
		tok := oauthToken(cached)
		if cached.HasScope(UploadScope) && tok.Valid() {
			log.Info("Loaded credentials from token file")
			return p.oauthConfig(cached).TokenSource(ctx, tok), nil
		}
		log.Info("Cached credentials missing or invalid, fetching new token")
	case errors.Is(err, os.ErrNotExist):
		log.Debug("No cached credentials")
	default:
		log.WithField("error", err).Warn("Error loading token file")
	}

	// REFRESH_TOKEN wins; otherwise the refresh token kept in the token file
	refreshToken, origin := p.config.RefreshToken, (*StoredCredential)(nil)
	if refreshToken == "" && cached != nil && cached.RefreshToken != "" {
		refreshToken, origin = cached.RefreshToken, cached
	}

	if refreshToken == "" && p.config.Interactive {
		tok, err := p.Authorize(ctx)
		if err != nil {
			return nil, err
		}
		return p.oauthConfig(nil).TokenSource(ctx, tok), nil
	}

	if refreshToken == "" {
		return nil, model.NewAuthenticationError("refresh token", errors.New("REFRESH_TOKEN environment variable is missing"))
	}
	conf := p.oauthConfig(origin)
	if conf.ClientID == "" || conf.ClientSecret == "" {
		return nil, model.NewAuthenticationError("refresh token", errors.New("CLIENT_ID and CLIENT_SECRET must be set"))
	}
	log.WithFields(map[string]interface{}{
		"refreshToken": redact(refreshToken),
		"fromFile":     origin != nil,
	}).Info("Exchanging refresh token")

	source := conf.TokenSource(ctx, &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(-1 * time.Minute), // Force refresh on first use
	})
	fresh, err := source.Token()
	if err != nil {
		return nil, model.NewAuthenticationError("refresh token", err)
	}
	log.WithField("expiry", fresh.Expiry).Info("Fetched new access token")

	p.persist(fresh, conf, refreshToken)
	return oauth2.ReuseTokenSource(fresh, source), nil
}

// Authorize runs the installed-app consent flow and stores the credential
func (p *CredentialProvider) Authorize(ctx context.Context) (*oauth2.Token, error) {
	if p.consent == nil {
		return nil, model.NewAuthenticationError("consent", errors.New("interactive authorization is not available"))
	}
	if p.config.ClientID == "" || p.config.ClientSecret == "" {
		return nil, model.NewAuthenticationError("consent", errors.New("CLIENT_ID and CLIENT_SECRET must be set"))
	}
	tok, err := p.consent(ctx, p.oauthConfig(nil))
	if err != nil {
		return nil, model.NewAuthenticationError("consent", err)
	}
	if tok.RefreshToken == "" {
		logger.GetLogger().Warn("Consent returned no refresh token; revoke the app grant and authorize again")
	}
	p.persist(tok, p.oauthConfig(nil), "")
	return tok, nil
}

func (p *CredentialProvider) oauthConfig(cached *StoredCredential) *oauth2.Config {
	clientID, clientSecret, tokenURI := p.config.ClientID, p.config.ClientSecret, p.config.TokenURI
	if cached != nil {
		if clientID == "" {
			clientID = cached.ClientID
		}
		if clientSecret == "" {
			clientSecret = cached.ClientSecret
		}
		if cached.TokenURI != "" {
			tokenURI = cached.TokenURI
		}
	}
	if tokenURI == "" {
		tokenURI = google.Endpoint.TokenURL
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       []string{UploadScope},
		RedirectURL:  "http://127.0.0.1",
		Endpoint: oauth2.Endpoint{
			AuthURL:   google.Endpoint.AuthURL,
			TokenURL:  tokenURI,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// persist writes the credential to the token file. A failed write is logged
// and does not fail authentication.
func (p *CredentialProvider) persist(tok *oauth2.Token, conf *oauth2.Config, refreshToken string) {
	if p.config.TokenFile == "" {
		return
	}
	stored := NewStoredCredential(tok, conf)
	if stored.RefreshToken == "" {
		stored.RefreshToken = refreshToken
	}
	log := logger.GetLogger().WithField("tokenFile", p.config.TokenFile)
	if err := SaveCredential(p.config.TokenFile, stored); err != nil {
		log.WithField("error", err).Error("Error saving token file")
		return
	}
	log.Info("Saved new credentials to token file")
}

// StoredCredential is the token file content
type StoredCredential = model.StoredCredential

// NewStoredCredential converts an oauth2 token into the token file form
func NewStoredCredential(tok *oauth2.Token, conf *oauth2.Config) *StoredCredential {
	stored := &StoredCredential{
		Token:        tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenURI:     conf.Endpoint.TokenURL,
		ClientID:     conf.ClientID,
		ClientSecret: conf.ClientSecret,
		Scopes:       conf.Scopes,
	}
	if !tok.Expiry.IsZero() {
		stored.Expiry = tok.Expiry.UTC().Format(time.RFC3339)
	}
	return stored
}

func oauthToken(stored *StoredCredential) *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  stored.Token,
		RefreshToken: stored.RefreshToken,
		TokenType:    "Bearer",
	}
	if stored.Expiry != "" {
		if expiry, err := time.Parse(time.RFC3339Nano, stored.Expiry); err == nil {
			tok.Expiry = expiry
		} else {
			// unparseable expiry is treated as expired
			tok.Expiry = time.Unix(1, 0)
		}
	}
	return tok
}

// LoadCredential reads a token file
func LoadCredential(path string) (*StoredCredential, error) {
	if path == "" {
		return nil, os.ErrNotExist
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var stored StoredCredential
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &stored, nil
}

// SaveCredential writes a token file, replacing any previous content
func SaveCredential(path string, stored *StoredCredential) error {
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func redact(secret string) string {
	if len(secret) <= 10 {
		return "..."
	}
	return secret[:10] + "..."
}
