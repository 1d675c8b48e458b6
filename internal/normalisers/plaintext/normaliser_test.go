package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
)

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()

	assert.Contains(t, mimeTypes, "text/*")
	assert.Contains(t, mimeTypes, "application/json")
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 5, New().Priority())
}

func TestNormalise(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{name: "plain", data: []byte("hello world"), want: "hello world"},
		{name: "empty", data: nil, want: ""},
		{name: "byte order mark", data: []byte("\xEF\xBB\xBFhello"), want: "hello"},
		{name: "crlf", data: []byte("a\r\nb\r\n"), want: "a\nb\n"},
		{name: "invalid utf8", data: []byte("ok\xffok"), want: "ok�ok"},
		{name: "multibyte", data: []byte("héllo 世界"), want: "héllo 世界"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New().Normalise(context.Background(), &domain.RawContent{
				MIMEType: "text/plain",
				Data:     tt.data,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalise_Nil(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
