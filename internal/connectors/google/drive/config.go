package drive

// Defaults for the Drive store.
const (
	DefaultPageSize = 100

	// DefaultMaxDownloadSize caps downloads and exports at 10MB, the Drive export limit.
	DefaultMaxDownloadSize = 10 * 1024 * 1024
)

// Config holds Google Drive store configuration.
type Config struct {
	// PageSize is the page size for list requests.
	PageSize int64

	// MaxDownloadSize rejects larger files as unsupported.
	MaxDownloadSize int64

	// Downloadable reports whether a MIME type is worth downloading.
	// Nil downloads every non-Workspace file.
	Downloadable func(mimeType string) bool
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		PageSize:        DefaultPageSize,
		MaxDownloadSize: DefaultMaxDownloadSize,
	}
}

func (c Config) withDefaults() Config {
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.MaxDownloadSize <= 0 {
		c.MaxDownloadSize = DefaultMaxDownloadSize
	}
	return c
}
