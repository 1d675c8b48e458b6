// Package chunker splits document text into byte-bounded chunks sized for
// a single embedding request.
package chunker

import (
	"unicode/utf8"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
	"github.com/custodia-labs/sercha-drive/internal/core/ports/driven"
)

// DefaultMaxChunkBytes is the default upper bound on chunk size in bytes.
const DefaultMaxChunkBytes = domain.DefaultMaxChunkBytes

// Processor splits text into chunks of at most maxBytes bytes.
// It implements the TextSplitter interface.
type Processor struct {
	maxBytes int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithMaxBytes sets the maximum chunk size in bytes.
func WithMaxBytes(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.maxBytes = n
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		maxBytes: DefaultMaxChunkBytes,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// MaxBytes returns the configured chunk size bound.
func (p *Processor) MaxBytes() int {
	return p.maxBytes
}

// Split splits text using the configured bound.
func (p *Processor) Split(text string) []string {
	return Split(text, p.maxBytes)
}

// Split divides text into consecutive chunks of at most maxBytes bytes.
//
// Chunks never end inside a multi-byte UTF-8 sequence: a boundary that would
// split a rune moves back to the rune's first byte. Bytes that are not valid
// UTF-8 are passed through as single-byte units. Joining the chunks
// reproduces text exactly. Empty text yields a single empty chunk.
// A maxBytes below utf8.UTFMax is raised to utf8.UTFMax.
func Split(text string, maxBytes int) []string {
	if maxBytes < utf8.UTFMax {
		maxBytes = utf8.UTFMax
	}
	if len(text) == 0 {
		return []string{""}
	}

	chunks := make([]string, 0, (len(text)+maxBytes-1)/maxBytes)
	for start := 0; start < len(text); {
		end := boundary(text, start, maxBytes)
		chunks = append(chunks, text[start:end])
		start = end
	}
	return chunks
}

// boundary returns the end offset of the chunk beginning at start.
// The result is always greater than start.
func boundary(text string, start, maxBytes int) int {
	end := start + maxBytes
	if end >= len(text) {
		return len(text)
	}
	if utf8.RuneStart(text[end]) {
		return end
	}
	for p := end - 1; p > start && p > end-utf8.UTFMax; p-- {
		if !utf8.RuneStart(text[p]) {
			continue
		}
		if _, size := utf8.DecodeRuneInString(text[p:]); p+size > end {
			return p
		}
		return end
	}
	return end
}

// Ensure Processor implements TextSplitter.
var _ driven.TextSplitter = (*Processor)(nil)
