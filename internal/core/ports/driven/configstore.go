package driven

// ConfigStore holds the operator settings of sercha-drive as dotted keys:
// drive.* (root folder, page size, credentials file), index.* (provider,
// chunk size), pinecone.*, embedding.* (provider, model, endpoint, key),
// scheduler.* (enabled, interval, parallelism) and users, the list of
// user IDs the scheduler syncs.
//
// Typed getters return the zero value when a key is unset or holds another
// type, so callers fall back to their own defaults.
type ConfigStore interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool

	// GetStringSlice reads list keys such as users.
	GetStringSlice(key string) []string

	// Set updates a key and persists the whole configuration.
	Set(key string, value any) error

	// Save writes the in-memory configuration back to Path.
	Save() error

	// Load replaces the in-memory configuration with what is on disk.
	Load() error

	Path() string
}
