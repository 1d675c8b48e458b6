package driving

import "github.com/custodia-labs/sercha-drive/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// Validate checks if current settings are sufficient to run a sync.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
