package google

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	ffserrors "github.com/wuhui20091515/FreeFileSync/pkg/errors"
	"github.com/wuhui20091515/FreeFileSync/pkg/logger"
)

// GoogleAuth handles the Google OAuth2 flow and token cache
type GoogleAuth struct {
	config    *oauth2.Config
	tokenFile string
	logger    *zap.Logger
}

// NewGoogleAuth creates a new authentication handler
func NewGoogleAuth(cfg *OAuthConfig, tokenFile string) (*GoogleAuth, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, ffserrors.NewFileError("Google Drive access is not configured",
			"missing client ID or client secret", nil)
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{drive.DriveScope}
	}
	redirectURI := cfg.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}
	if tokenFile == "" {
		tokenFile = DefaultTokenFile()
	}

	return &GoogleAuth{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  redirectURI,
			Scopes:       scopes,
			Endpoint:     googleoauth.Endpoint,
		},
		tokenFile: tokenFile,
		logger:    logger.Get(),
	}, nil
}

// Authenticate returns an authenticated HTTP client, refreshing or acquiring
// a token as needed
func (a *GoogleAuth) Authenticate(ctx context.Context) (*http.Client, error) {
	token, err := a.loadToken()
	if err == nil && token.Valid() {
		return a.config.Client(ctx, token), nil
	}

	if token != nil && token.RefreshToken != "" {
		newToken, err := a.config.TokenSource(ctx, token).Token()
		if err == nil {
			if err := a.saveToken(newToken); err != nil {
				a.logger.Warn("Failed to save refreshed token", zap.Error(err))
			}
			return a.config.Client(ctx, newToken), nil
		}
		a.logger.Warn("Failed to refresh token, starting new auth flow", zap.Error(err))
	}

	token, err = a.performOAuth2Flow(ctx)
	if err != nil {
		return nil, ffserrors.NewFileError("Google Drive authorization failed", err.Error(), err)
	}
	if err := a.saveToken(token); err != nil {
		a.logger.Warn("Failed to save token", zap.Error(err))
	}
	return a.config.Client(ctx, token), nil
}

// GetDriveService returns an authenticated Drive API service
func (a *GoogleAuth) GetDriveService(ctx context.Context) (*drive.Service, error) {
	client, err := a.Authenticate(ctx)
	if err != nil {
		return nil, err
	}
	service, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, ffserrors.NewFileError("Cannot connect to Google Drive", err.Error(), err)
	}
	return service, nil
}

// performOAuth2Flow runs the local-callback authorization flow
func (a *GoogleAuth) performOAuth2Flow(ctx context.Context) (*oauth2.Token, error) {
	state := generateStateToken()
	authURL := a.config.AuthCodeURL(state, oauth2.AccessTypeOffline)

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)
	server := a.startCallbackServer(state, codeChan, errChan)
	defer server.Shutdown(ctx)

	fmt.Printf("\nPlease visit this URL to authorize access to Google Drive:\n%s\n\n", authURL)
	fmt.Println("Waiting for authorization...")

	select {
	case code := <-codeChan:
		token, err := a.config.Exchange(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to exchange code for token: %w", err)
		}
		return token, nil
	case err := <-errChan:
		return nil, fmt.Errorf("callback server error: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Minute):
		return nil, fmt.Errorf("authorization timeout")
	}
}

func (a *GoogleAuth) startCallbackServer(state string, codeChan chan<- string, errChan chan<- error) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "invalid state", http.StatusBadRequest)
			errChan <- fmt.Errorf("state mismatch")
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			errChan <- fmt.Errorf("missing authorization code")
			return
		}
		fmt.Fprintln(w, "Authorization successful. You can close this window.")
		codeChan <- code
	})

	server := &http.Server{Addr: ":8080", Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()
	return server
}

func (a *GoogleAuth) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(a.tokenFile)
	if err != nil {
		return nil, err
	}
	token := &oauth2.Token{}
	if err := json.Unmarshal(data, token); err != nil {
		return nil, err
	}
	return token, nil
}

func (a *GoogleAuth) saveToken(token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(a.tokenFile), 0700); err != nil {
		return err
	}
	data, err := json.Marshal(token)
	if err != nil {
		return err
	}
	return os.WriteFile(a.tokenFile, data, 0600)
}

func generateStateToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
