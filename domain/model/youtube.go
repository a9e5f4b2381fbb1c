package model

import (
	"fmt"
	"time"
)

// YouTubeVideo represents an uploaded YouTube video
type YouTubeVideo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	PublishedAt time.Time `json:"published_at"`
	ChannelID   string    `json:"channel_id"`
	Tags        []string  `json:"tags"`
	Status      string    `json:"status"`
	Category    string    `json:"category"`
	MadeForKids bool      `json:"made_for_kids"`
}

// ShortsURL returns the public Shorts link of the video
func (v *YouTubeVideo) ShortsURL() string {
	return ShortsURL(v.ID)
}

// ShortsURL returns the public Shorts link for a video id
func ShortsURL(videoID string) string {
	return fmt.Sprintf("https://www.youtube.com/shorts/%s", videoID)
}

// StoredCredential is the on-disk form of the YouTube OAuth credential
// (tokens.json). Field names follow the authorized-user file format so the
// file stays interchangeable with other Google client tooling.
type StoredCredential struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refresh_token"`
	TokenURI     string   `json:"token_uri"`
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	Scopes       []string `json:"scopes"`
	Expiry       string   `json:"expiry,omitempty"`
}

// HasScope reports whether the credential was granted scope
func (c *StoredCredential) HasScope(scope string) bool {
	for _, s := range c.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}
