package configuration

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const (
	googleAuthURI         = "https://accounts.google.com/o/oauth2/auth"
	googleTokenURI        = "https://oauth2.googleapis.com/token"
	googleProviderCertURL = "https://www.googleapis.com/oauth2/v1/certs"
)

// ServiceAccountKey mirrors the JSON key file Google issues for a service account
type ServiceAccountKey struct {
	Type                    string `json:"type"`
	ProjectID               string `json:"project_id"`
	PrivateKeyID            string `json:"private_key_id"`
	PrivateKey              string `json:"private_key"`
	ClientEmail             string `json:"client_email"`
	ClientID                string `json:"client_id"`
	AuthURI                 string `json:"auth_uri"`
	TokenURI                string `json:"token_uri"`
	AuthProviderX509CertURL string `json:"auth_provider_x509_cert_url"`
	ClientX509CertURL       string `json:"client_x509_cert_url"`
}

// ServiceAccountJSON assembles the service account key from the discrete
// GCP_* settings. Escaped "\n" sequences in the private key become newlines.
func (c *Config) ServiceAccountJSON() ([]byte, error) {
	gs := c.GoogleSheet
	missing := []string{}
	for name, v := range map[string]string{
		"GCP_PROJECT_ID":           gs.ProjectID,
		"GCP_PRIVATE_KEY_ID":       gs.PrivateKeyID,
		"GCP_PRIVATE_KEY":          gs.PrivateKey,
		"GCP_CLIENT_EMAIL":         gs.ClientEmail,
		"GCP_CLIENT_ID":            gs.ClientID,
		"GCP_CLIENT_X509_CERT_URL": gs.ClientX509CertURL,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("service account settings missing: %s", strings.Join(missing, ", "))
	}

	key := ServiceAccountKey{
		Type:                    "service_account",
		ProjectID:               gs.ProjectID,
		PrivateKeyID:            gs.PrivateKeyID,
		PrivateKey:              strings.ReplaceAll(gs.PrivateKey, `\n`, "\n"),
		ClientEmail:             gs.ClientEmail,
		ClientID:                gs.ClientID,
		AuthURI:                 googleAuthURI,
		TokenURI:                googleTokenURI,
		AuthProviderX509CertURL: googleProviderCertURL,
		ClientX509CertURL:       gs.ClientX509CertURL,
	}
	return json.Marshal(key)
}

// PubsubProject returns the project used for upload notifications
func (c *Config) PubsubProject() string {
	if c.Pubsub.ProjectID != "" {
		return c.Pubsub.ProjectID
	}
	return c.GoogleSheet.ProjectID
}

