package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change the drive, index, embedding and scheduler settings.
Settings are stored in ~/.sercha-drive/config.toml.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Change one setting by key. Supported keys:

` + settingKeysHelp(),
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check settings are sufficient to sync",
	RunE:  runSettingsValidate,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
	rootCmd.AddCommand(settingsCmd)
}

// settingSetters apply a string value to one field of the settings.
var settingSetters = map[string]func(s *domain.AppSettings, v string) error{
	"drive.root_folder_id": func(s *domain.AppSettings, v string) error {
		s.Drive.RootFolderID = v
		return nil
	},
	"drive.page_size": func(s *domain.AppSettings, v string) error {
		return setPositiveInt(&s.Drive.PageSize, v)
	},
	"drive.credentials_file": func(s *domain.AppSettings, v string) error {
		s.Drive.CredentialsFile = v
		return nil
	},
	"index.provider": func(s *domain.AppSettings, v string) error {
		p := domain.VectorProvider(v)
		if !p.IsValid() {
			return fmt.Errorf("%w: unknown vector provider %q", domain.ErrInvalidInput, v)
		}
		s.Index.Provider = p
		return nil
	},
	"index.max_chunk_bytes": func(s *domain.AppSettings, v string) error {
		return setPositiveInt(&s.Index.MaxChunkBytes, v)
	},
	"pinecone.api_key": func(s *domain.AppSettings, v string) error {
		s.Pinecone.APIKey = v
		return nil
	},
	"pinecone.index_host": func(s *domain.AppSettings, v string) error {
		s.Pinecone.IndexHost = v
		return nil
	},
	"pinecone.namespace_prefix": func(s *domain.AppSettings, v string) error {
		s.Pinecone.NamespacePrefix = v
		return nil
	},
	"embedding.provider": func(s *domain.AppSettings, v string) error {
		p := domain.EmbeddingProvider(v)
		if !p.IsValid() {
			return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, v)
		}
		if s.Embedding.Model == "" || s.Embedding.Model == s.Embedding.Provider.DefaultModel() {
			s.Embedding.Model = p.DefaultModel()
		}
		s.Embedding.Provider = p
		return nil
	},
	"embedding.model": func(s *domain.AppSettings, v string) error {
		s.Embedding.Model = v
		return nil
	},
	"embedding.base_url": func(s *domain.AppSettings, v string) error {
		s.Embedding.BaseURL = v
		return nil
	},
	"embedding.api_key": func(s *domain.AppSettings, v string) error {
		s.Embedding.APIKey = v
		return nil
	},
	"scheduler.enabled": func(s *domain.AppSettings, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %q is not a boolean", domain.ErrInvalidInput, v)
		}
		s.Scheduler.Enabled = b
		return nil
	},
	"scheduler.interval_minutes": func(s *domain.AppSettings, v string) error {
		var minutes int
		if err := setPositiveInt(&minutes, v); err != nil {
			return err
		}
		s.Scheduler.Interval = time.Duration(minutes) * time.Minute
		return nil
	},
	"scheduler.max_parallel": func(s *domain.AppSettings, v string) error {
		return setPositiveInt(&s.Scheduler.MaxParallel, v)
	},
	"users": func(s *domain.AppSettings, v string) error {
		s.Users = nil
		for _, u := range strings.Split(v, ",") {
			if u = strings.TrimSpace(u); u != "" {
				s.Users = append(s.Users, u)
			}
		}
		return nil
	},
}

func settingKeysHelp() string {
	keys := make([]string, 0, len(settingSetters))
	for k := range settingSetters {
		keys = append(keys, "  "+k)
	}
	sort.Strings(keys)
	return strings.Join(keys, "\n") + "\n\nusers takes a comma-separated list."
}

func setPositiveInt(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fmt.Errorf("%w: %q is not a positive integer", domain.ErrInvalidInput, v)
	}
	*dst = n
	return nil
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("[Drive]")
	cmd.Printf("  Root folder: %s\n", settings.Drive.RootFolderID)
	cmd.Printf("  Page size: %d\n", settings.Drive.PageSize)
	cmd.Printf("  Credentials file: %s\n", orNotSet(settings.Drive.CredentialsFile))
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Provider: %s\n", settings.Index.Provider.Description())
	cmd.Printf("  Max chunk bytes: %d\n", settings.Index.MaxChunkBytes)
	if settings.Index.Provider == domain.VectorProviderPinecone {
		cmd.Printf("  Pinecone host: %s\n", orNotSet(settings.Pinecone.IndexHost))
		cmd.Printf("  Pinecone API key: %s\n", maskedOrNotSet(settings.Pinecone.APIKey))
		cmd.Printf("  Namespace prefix: %s\n", settings.Pinecone.NamespacePrefix)
	}
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider)
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		cmd.Printf("  API key: %s\n", maskedOrNotSet(settings.Embedding.APIKey))
	}
	cmd.Println()

	cmd.Println("[Scheduler]")
	cmd.Printf("  Enabled: %t\n", settings.Scheduler.Enabled)
	cmd.Printf("  Interval: %s\n", settings.Scheduler.Interval)
	cmd.Printf("  Max parallel: %d\n", settings.Scheduler.MaxParallel)
	cmd.Printf("  Users: %s\n", orNotSet(strings.Join(settings.Users, ", ")))

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}

	key, value := strings.ToLower(args[0]), args[1]
	set, ok := settingSetters[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, args[0])
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if err := set(settings, value); err != nil {
		return err
	}
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("Set %s.\n", key)
	return nil
}

func runSettingsValidate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return notConfigured("settings")
	}
	if err := settingsService.Validate(); err != nil {
		return err
	}
	cmd.Println("Settings are valid.")
	return nil
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func maskedOrNotSet(key string) string {
	if key == "" {
		return "(not set)"
	}
	return maskAPIKey(key)
}

// maskAPIKey masks an API key for display.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
