package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVectorProvider(t *testing.T) {
	tests := []struct {
		provider VectorProvider
		valid    bool
		desc     string
	}{
		{VectorProviderPinecone, true, "Pinecone (cloud)"},
		{VectorProviderMemory, true, "In-memory (testing only)"},
		{VectorProvider("faiss"), false, unknownDescription},
		{VectorProvider(""), false, unknownDescription},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.provider.IsValid())
			assert.Equal(t, tt.desc, tt.provider.Description())
			assert.Equal(t, string(tt.provider), tt.provider.String())
		})
	}
}

func TestEmbeddingProvider(t *testing.T) {
	assert.True(t, EmbeddingProviderOpenAI.IsValid())
	assert.True(t, EmbeddingProviderOllama.IsValid())
	assert.False(t, EmbeddingProvider("cohere").IsValid())

	assert.True(t, EmbeddingProviderOpenAI.RequiresAPIKey())
	assert.False(t, EmbeddingProviderOllama.RequiresAPIKey())

	assert.Equal(t, "text-embedding-3-small", EmbeddingProviderOpenAI.DefaultModel())
	assert.Equal(t, "nomic-embed-text", EmbeddingProviderOllama.DefaultModel())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, "root", s.Drive.RootFolderID)
	assert.Equal(t, 100, s.Drive.PageSize)
	assert.Equal(t, VectorProviderPinecone, s.Index.Provider)
	assert.Equal(t, DefaultMaxChunkBytes, s.Index.MaxChunkBytes)
	assert.Equal(t, "sercha", s.Pinecone.NamespacePrefix)
	assert.Equal(t, EmbeddingProviderOpenAI, s.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", s.Embedding.Model)
	assert.Equal(t, DefaultSchedulerConfig(), s.Scheduler)
	assert.Empty(t, s.Users)
}

func TestAppSettings_Validate(t *testing.T) {
	valid := func() AppSettings {
		s := DefaultAppSettings()
		s.Pinecone.APIKey = "pc-key"
		s.Pinecone.IndexHost = "idx.svc.pinecone.io"
		s.Embedding.APIKey = "sk-key"
		return s
	}

	tests := []struct {
		name    string
		mutate  func(s *AppSettings)
		wantErr string
	}{
		{"valid", func(*AppSettings) {}, ""},
		{"unknown provider", func(s *AppSettings) { s.Index.Provider = "faiss" }, "unknown vector provider"},
		{"missing pinecone key", func(s *AppSettings) { s.Pinecone.APIKey = " " }, "pinecone.api_key"},
		{"missing pinecone host", func(s *AppSettings) { s.Pinecone.IndexHost = "" }, "pinecone.index_host"},
		{"memory needs no pinecone", func(s *AppSettings) {
			s.Index.Provider = VectorProviderMemory
			s.Pinecone = PineconeSettings{}
		}, ""},
		{"missing embedding key", func(s *AppSettings) { s.Embedding.APIKey = "" }, "embedding.api_key"},
		{"ollama needs no key", func(s *AppSettings) {
			s.Embedding.Provider = EmbeddingProviderOllama
			s.Embedding.APIKey = ""
		}, ""},
		{"unknown embedding provider", func(s *AppSettings) { s.Embedding.Provider = "cohere" }, "unknown embedding provider"},
		{"bad chunk size", func(s *AppSettings) { s.Index.MaxChunkBytes = 0 }, "max_chunk_bytes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)

			err := s.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
