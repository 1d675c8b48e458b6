package domain

import (
	"fmt"
	"strings"
)

const unknownDescription = "Unknown"

// DefaultMaxChunkBytes leaves headroom below the embedding request limit.
const DefaultMaxChunkBytes = 38000

// VectorProvider identifies the vector index backend.
type VectorProvider string

// Available vector providers.
const (
	// VectorProviderPinecone is a hosted Pinecone index.
	VectorProviderPinecone VectorProvider = "pinecone"

	// VectorProviderMemory is a process-local index, lost on exit.
	VectorProviderMemory VectorProvider = "memory"
)

// IsValid returns true if the vector provider is recognised.
func (p VectorProvider) IsValid() bool {
	switch p {
	case VectorProviderPinecone, VectorProviderMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p VectorProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p VectorProvider) Description() string {
	switch p {
	case VectorProviderPinecone:
		return "Pinecone (cloud)"
	case VectorProviderMemory:
		return "In-memory (testing only)"
	default:
		return unknownDescription
	}
}

// EmbeddingProvider identifies the embedding backend.
type EmbeddingProvider string

// Available embedding providers.
const (
	// EmbeddingProviderOpenAI is the OpenAI API or a compatible endpoint.
	EmbeddingProviderOpenAI EmbeddingProvider = "openai"

	// EmbeddingProviderOllama is a local Ollama server.
	EmbeddingProviderOllama EmbeddingProvider = "ollama"
)

// IsValid returns true if the embedding provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	return p == EmbeddingProviderOpenAI || p == EmbeddingProviderOllama
}

// RequiresAPIKey reports whether the provider needs embedding.api_key.
func (p EmbeddingProvider) RequiresAPIKey() bool {
	return p == EmbeddingProviderOpenAI
}

// DefaultModel returns the embedding model used when none is configured.
func (p EmbeddingProvider) DefaultModel() string {
	if p == EmbeddingProviderOllama {
		return "nomic-embed-text"
	}
	return "text-embedding-3-small"
}

// DriveSettings configures access to the remote store.
type DriveSettings struct {
	// RootFolderID is where full syncs start ("root" is My Drive).
	RootFolderID string

	// PageSize is the listing page size.
	PageSize int

	// CredentialsFile holds a JSON OAuth token per user, keyed by user ID.
	CredentialsFile string
}

// IndexSettings configures chunking and the vector index.
type IndexSettings struct {
	Provider      VectorProvider
	MaxChunkBytes int
}

// PineconeSettings configures the Pinecone adapter.
type PineconeSettings struct {
	APIKey          string
	IndexHost       string
	NamespacePrefix string
}

// EmbeddingSettings configures the embedding adapter.
type EmbeddingSettings struct {
	Provider EmbeddingProvider
	Model    string
	BaseURL  string
	APIKey   string
}

// AppSettings is the full application configuration.
type AppSettings struct {
	Drive     DriveSettings
	Index     IndexSettings
	Pinecone  PineconeSettings
	Embedding EmbeddingSettings
	Scheduler SchedulerConfig

	// Users lists the user IDs the scheduler syncs.
	Users []string
}

// DefaultAppSettings returns sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Drive: DriveSettings{
			RootFolderID: "root",
			PageSize:     100,
		},
		Index: IndexSettings{
			Provider:      VectorProviderPinecone,
			MaxChunkBytes: DefaultMaxChunkBytes,
		},
		Pinecone: PineconeSettings{
			NamespacePrefix: "sercha",
		},
		Embedding: EmbeddingSettings{
			Provider: EmbeddingProviderOpenAI,
			Model:    EmbeddingProviderOpenAI.DefaultModel(),
		},
		Scheduler: DefaultSchedulerConfig(),
	}
}

// Validate checks the settings needed to run a sync.
func (s *AppSettings) Validate() error {
	if !s.Index.Provider.IsValid() {
		return fmt.Errorf("%w: unknown vector provider %q", ErrInvalidInput, s.Index.Provider)
	}
	if s.Index.Provider == VectorProviderPinecone {
		if strings.TrimSpace(s.Pinecone.APIKey) == "" {
			return fmt.Errorf("%w: pinecone.api_key is required", ErrInvalidInput)
		}
		if strings.TrimSpace(s.Pinecone.IndexHost) == "" {
			return fmt.Errorf("%w: pinecone.index_host is required", ErrInvalidInput)
		}
	}
	if !s.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", ErrInvalidInput, s.Embedding.Provider)
	}
	if s.Embedding.Provider.RequiresAPIKey() && strings.TrimSpace(s.Embedding.APIKey) == "" {
		return fmt.Errorf("%w: embedding.api_key is required", ErrInvalidInput)
	}
	if s.Index.MaxChunkBytes <= 0 {
		return fmt.Errorf("%w: index.max_chunk_bytes must be positive", ErrInvalidInput)
	}
	return nil
}
