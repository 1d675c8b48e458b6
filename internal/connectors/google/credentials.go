package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
)

// Scopes requested for every user. Full drive access is needed for sharing.
var Scopes = []string{drive.DriveScope}

// Credentials is the OAuth client plus one token per user, persisted as JSON.
type Credentials struct {
	mu sync.RWMutex

	ClientID     string                   `json:"client_id"`
	ClientSecret string                   `json:"client_secret"`
	Users        map[string]*oauth2.Token `json:"users"`
}

// LoadCredentials reads a credentials file. A missing file yields empty credentials.
func LoadCredentials(path string) (*Credentials, error) {
	creds := &Credentials{Users: make(map[string]*oauth2.Token)}
	if path == "" {
		return creds, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return creds, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	if err := json.Unmarshal(data, creds); err != nil {
		return nil, fmt.Errorf("parse credentials %s: %w", path, err)
	}
	if creds.Users == nil {
		creds.Users = make(map[string]*oauth2.Token)
	}
	return creds, nil
}

// Save writes the credentials with owner-only permissions, replacing the file atomically.
func (c *Credentials) Save(path string) error {
	c.mu.RLock()
	data, err := json.MarshalIndent(c, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace credentials: %w", err)
	}
	return nil
}

// OAuthConfig returns the client configuration for the authorization code flow.
func (c *Credentials) OAuthConfig(redirectURL string) *oauth2.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     googleoauth.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
	}
}

// SetClient sets the OAuth client used for authorization and token refresh.
func (c *Credentials) SetClient(clientID, clientSecret string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ClientID = clientID
	c.ClientSecret = clientSecret
}

// SetToken stores a user's token.
func (c *Credentials) SetToken(userID string, token *oauth2.Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Users[userID] = token
}

// RemoveToken forgets a user's token.
func (c *Credentials) RemoveToken(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.Users, userID)
}

// UserIDs returns the users that have a token, sorted.
func (c *Credentials) UserIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.Users))
	for id := range c.Users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TokenSource returns a refreshing token source for a user.
// Refreshed tokens live in memory only.
func (c *Credentials) TokenSource(ctx context.Context, userID string) (oauth2.TokenSource, error) {
	c.mu.RLock()
	token, ok := c.Users[userID]
	clientID := c.ClientID
	c.mu.RUnlock()
	if !ok || token == nil || (token.AccessToken == "" && token.RefreshToken == "") {
		return nil, fmt.Errorf("%w: no token for user %q", domain.ErrNotAuthenticated, userID)
	}
	if token.RefreshToken != "" && clientID == "" {
		return nil, fmt.Errorf("%w: refresh token present but client_id is empty", domain.ErrNotAuthenticated)
	}
	return c.OAuthConfig("").TokenSource(ctx, token), nil
}
