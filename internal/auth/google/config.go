// Package google handles OAuth2 authentication against the Google Drive API
package google

import (
	"os"
	"path/filepath"
)

// OAuthConfig holds OAuth2 configuration
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
}

// DefaultTokenFile returns the default token cache location
func DefaultTokenFile() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".ffsync", "gdrive_token.json")
}
