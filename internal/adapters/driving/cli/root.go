// Package cli provides the cobra command tree for sercha-drive.
package cli

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/sercha-drive/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-drive/internal/logger"
)

var version = "dev"

// TokenStore holds the OAuth client and the per-user tokens used by the auth commands.
type TokenStore interface {
	OAuthConfig(redirectURL string) *oauth2.Config
	SetClient(clientID, clientSecret string)
	SetToken(userID string, token *oauth2.Token)
	RemoveToken(userID string)
	UserIDs() []string
	Save(path string) error
}

// Locker keeps a single daemon per data directory.
type Locker interface {
	Acquire() error
	Release() error
}

// Services holds everything the commands talk to.
// Any field may be nil; commands that need a missing service fail with a message.
type Services struct {
	Sync      driving.SyncService
	Selection driving.SelectionService
	Sharing   driving.SharingService
	Settings  driving.SettingsService
	Scheduler driving.Scheduler

	Tokens     TokenStore
	TokensPath string

	Lock    Locker
	Metrics http.Handler

	// Unavailable explains why the sync services are nil, usually a settings error.
	Unavailable error
}

var (
	syncService      driving.SyncService
	selectionService driving.SelectionService
	sharingService   driving.SharingService
	settingsService  driving.SettingsService
	scheduler        driving.Scheduler
	tokenStore       TokenStore
	tokensPath       string
	daemonLock       Locker
	metricsHandler   http.Handler
	unavailable      error
)

var rootCmd = &cobra.Command{
	Use:   "sercha-drive",
	Short: "Mirror selected Google Drive files into a vector index",
	Long: `sercha-drive keeps a per-user vector index in step with Google Drive.

Documents are chunked and embedded; only chunks of documents a user has
selected are returned to retrieval clients. Sync runs on demand, on a
schedule, or when a client reports a file event.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose logging")
}

// SetServices wires the command tree to its services.
func SetServices(s Services) {
	syncService = s.Sync
	selectionService = s.Selection
	sharingService = s.Sharing
	settingsService = s.Settings
	scheduler = s.Scheduler
	tokenStore = s.Tokens
	tokensPath = s.TokensPath
	daemonLock = s.Lock
	metricsHandler = s.Metrics
	unavailable = s.Unavailable
}

// Execute runs the root command.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}

// notConfigured reports a missing service, with the settings error when there is one.
func notConfigured(name string) error {
	if unavailable != nil {
		return fmt.Errorf("%s service not configured: %w", name, unavailable)
	}
	return errors.New(name + " service not configured")
}
