package driven

import (
	"context"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
)

// TextExtractor turns downloaded content into plain text for indexing.
type TextExtractor interface {
	// Extract returns the text of raw. Returns an error wrapping
	// domain.ErrUnsupportedType when no text can be derived.
	Extract(ctx context.Context, raw *domain.RawContent) (string, error)
}

// Normaliser extracts text from one family of MIME types.
// A TextExtractor is typically a registry of normalisers.
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	// Patterns ending in "/*" match a whole top-level type.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Specific normalisers should return 50-89, fallbacks 1-9.
	Priority() int

	// Normalise returns the plain text of raw.
	Normalise(ctx context.Context, raw *domain.RawContent) (string, error)
}
