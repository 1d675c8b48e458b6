package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
)

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()

	assert.Contains(t, mimeTypes, "text/markdown")
	assert.Contains(t, mimeTypes, "text/x-markdown")
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "heading", input: "# Title\n\nBody", want: "Title\n\nBody"},
		{name: "emphasis", input: "**bold** and *italic* and ~~gone~~", want: "bold and italic and gone"},
		{name: "link", input: "see [the docs](https://example.com)", want: "see the docs"},
		{name: "image", input: "![diagram](img.png)", want: "diagram"},
		{name: "inline code", input: "run `make test`", want: "run make test"},
		{name: "code block keeps content", input: "```go\nfmt.Println(1)\n```", want: "fmt.Println(1)"},
		{name: "lists", input: "- one\n* two\n1. three", want: "one\ntwo\nthree"},
		{name: "blockquote", input: "> quoted", want: "quoted"},
		{name: "rule", input: "above\n\n---\n\nbelow", want: "above\n\nbelow"},
		{name: "snake case survives", input: "use snake_case names", want: "use snake_case names"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripMarkdown(tt.input))
		})
	}
}

func TestNormalise(t *testing.T) {
	text, err := New().Normalise(context.Background(), &domain.RawContent{
		MIMEType: "text/markdown",
		Data:     []byte("# Notes\r\n\r\nFirst **point**"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Notes\n\nFirst point", text)
}

func TestNormalise_Nil(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
