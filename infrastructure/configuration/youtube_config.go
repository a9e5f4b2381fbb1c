package configuration

import (
	"fmt"
	"strings"
)

// YouTubeConfig represents YouTube API configuration
type YouTubeConfig struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	TokenFile    string
	TokenURI     string
	Interactive  bool
	ChunkSize    int
}

// GetYouTubeConfig returns the YouTube credential settings. Missing secrets are
// not an error here; the credential provider decides whether it can work
// without them (a valid cached token needs none).
func (c *Config) GetYouTubeConfig() (*YouTubeConfig, error) {
	flow := strings.ToLower(c.YouTube.AuthFlow)
	if flow != AuthFlowRefresh && flow != AuthFlowInstalled {
		return nil, fmt.Errorf("invalid auth flow %q", c.YouTube.AuthFlow)
	}
	return &YouTubeConfig{
		ClientID:     strings.TrimSpace(c.YouTube.ClientID),
		ClientSecret: strings.TrimSpace(c.YouTube.ClientSecret),
		RefreshToken: strings.TrimSpace(c.YouTube.RefreshToken),
		TokenFile:    c.YouTube.TokenFile,
		TokenURI:     c.YouTube.TokenURI,
		Interactive:  flow == AuthFlowInstalled,
		ChunkSize:    c.YouTube.UploadChunkSize,
	}, nil
}
