package services

import (
	"fmt"
	"os"
	"time"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
	"github.com/custodia-labs/sercha-drive/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-drive/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDriveRootFolder    = "drive.root_folder_id"
	keyDrivePageSize      = "drive.page_size"
	keyDriveCredentials   = "drive.credentials_file"
	keyIndexProvider      = "index.provider"
	keyIndexMaxChunkBytes = "index.max_chunk_bytes"
	keyPineconeAPIKey     = "pinecone.api_key"
	keyPineconeIndexHost  = "pinecone.index_host"
	keyPineconeNSPrefix   = "pinecone.namespace_prefix"
	keyEmbedProvider      = "embedding.provider"
	keyEmbedModel         = "embedding.model"
	keyEmbedBaseURL       = "embedding.base_url"
	keyEmbedAPIKey        = "embedding.api_key"
	keySchedulerEnabled   = "scheduler.enabled"
	keySchedulerInterval  = "scheduler.interval_minutes"
	keySchedulerParallel  = "scheduler.max_parallel"
	keyUsers              = "users"
)

// Environment variables that override stored secrets.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
const (
	EnvPineconeAPIKey = "SERCHA_DRIVE_PINECONE_API_KEY"
	EnvOpenAIAPIKey   = "SERCHA_DRIVE_OPENAI_API_KEY"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
// Secrets set in the environment take precedence over stored ones.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()
	embedProvider := s.getEmbeddingProvider(defaults.Embedding.Provider)

	settings := &domain.AppSettings{
		Drive: domain.DriveSettings{
			RootFolderID:    s.getString(keyDriveRootFolder, defaults.Drive.RootFolderID),
			PageSize:        s.getInt(keyDrivePageSize, defaults.Drive.PageSize),
			CredentialsFile: s.configStore.GetString(keyDriveCredentials),
		},
		Index: domain.IndexSettings{
			Provider:      s.getVectorProvider(defaults.Index.Provider),
			MaxChunkBytes: s.getInt(keyIndexMaxChunkBytes, defaults.Index.MaxChunkBytes),
		},
		Pinecone: domain.PineconeSettings{
			APIKey:          s.secret(EnvPineconeAPIKey, keyPineconeAPIKey),
			IndexHost:       s.configStore.GetString(keyPineconeIndexHost),
			NamespacePrefix: s.getString(keyPineconeNSPrefix, defaults.Pinecone.NamespacePrefix),
		},
		Embedding: domain.EmbeddingSettings{
			Provider: embedProvider,
			Model:    s.getString(keyEmbedModel, embedProvider.DefaultModel()),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty means the provider's own
			APIKey:   s.secret(EnvOpenAIAPIKey, keyEmbedAPIKey),
		},
		Scheduler: domain.SchedulerConfig{
			Enabled:     s.getBool(keySchedulerEnabled, defaults.Scheduler.Enabled),
			Interval:    s.getMinutes(keySchedulerInterval, defaults.Scheduler.Interval),
			MaxParallel: s.getInt(keySchedulerParallel, defaults.Scheduler.MaxParallel),
		},
		Users: s.configStore.GetStringSlice(keyUsers),
	}

	return settings, nil
}

// Save persists application settings.
// Empty secrets are not written so a key supplied by the environment never lands on disk.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyDriveRootFolder, settings.Drive.RootFolderID},
		{keyDrivePageSize, settings.Drive.PageSize},
		{keyDriveCredentials, settings.Drive.CredentialsFile},
		{keyIndexProvider, settings.Index.Provider.String()},
		{keyIndexMaxChunkBytes, settings.Index.MaxChunkBytes},
		{keyPineconeIndexHost, settings.Pinecone.IndexHost},
		{keyPineconeNSPrefix, settings.Pinecone.NamespacePrefix},
		{keyEmbedProvider, string(settings.Embedding.Provider)},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keySchedulerEnabled, settings.Scheduler.Enabled},
		{keySchedulerInterval, int(settings.Scheduler.Interval / time.Minute)},
		{keySchedulerParallel, settings.Scheduler.MaxParallel},
		{keyUsers, settings.Users},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.Pinecone.APIKey != "" && s.getenv(EnvPineconeAPIKey) == "" {
		if err := s.configStore.Set(keyPineconeAPIKey, settings.Pinecone.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyPineconeAPIKey, err)
		}
	}
	if settings.Embedding.APIKey != "" && s.getenv(EnvOpenAIAPIKey) == "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyEmbedAPIKey, err)
		}
	}

	return nil
}

// Validate checks if current settings are sufficient to run a sync.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getMinutes(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return time.Duration(val) * time.Minute
}

func (s *SettingsService) getVectorProvider(defaultVal domain.VectorProvider) domain.VectorProvider {
	val := s.configStore.GetString(keyIndexProvider)
	if val == "" {
		return defaultVal
	}
	provider := domain.VectorProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) secret(envVar, key string) string {
	if v := s.getenv(envVar); v != "" {
		return v
	}
	return s.configStore.GetString(key)
}

func (s *SettingsService) getEmbeddingProvider(defaultVal domain.EmbeddingProvider) domain.EmbeddingProvider {
	provider := domain.EmbeddingProvider(s.configStore.GetString(keyEmbedProvider))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
