package cached

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-drive/internal/core/domain"
)

type countingEmbedder struct {
	model  string
	calls  int
	texts  []string
	err    error
	closed bool
}

func (e *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.calls++
	e.texts = append(e.texts, text)
	if e.err != nil {
		return nil, e.err
	}
	return []float32{float32(len(text)), 1}, nil
}

func (e *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (e *countingEmbedder) Dimensions() int   { return 2 }
func (e *countingEmbedder) ModelName() string { return e.model }
func (e *countingEmbedder) Close() error {
	e.closed = true
	return nil
}

func TestEmbed_CachesByText(t *testing.T) {
	inner := &countingEmbedder{model: "m1"}
	svc, err := New(inner, 10)
	require.NoError(t, err)

	first, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)
	second, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 1, svc.Len())
}

func TestEmbed_KeyIncludesModel(t *testing.T) {
	inner := &countingEmbedder{model: "m1"}
	svc, err := New(inner, 10)
	require.NoError(t, err)

	_, _ = svc.Embed(context.Background(), "hello")
	inner.model = "m2"
	_, _ = svc.Embed(context.Background(), "hello")

	assert.Equal(t, 2, inner.calls)
}

func TestEmbed_ErrorsNotCached(t *testing.T) {
	inner := &countingEmbedder{model: "m", err: domain.ErrRateLimited}
	svc, err := New(inner, 10)
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), "x")
	require.ErrorIs(t, err, domain.ErrRateLimited)

	inner.err = nil
	_, err = svc.Embed(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestEmbedBatch_OnlyMisses(t *testing.T) {
	inner := &countingEmbedder{model: "m"}
	svc, err := New(inner, 10)
	require.NoError(t, err)
	_, _ = svc.Embed(context.Background(), "bb")
	inner.texts = nil

	vecs, err := svc.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})

	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1, 1}, {2, 1}, {3, 1}}, vecs)
	assert.Equal(t, []string{"a", "ccc"}, inner.texts)
}

func TestEviction(t *testing.T) {
	inner := &countingEmbedder{model: "m"}
	svc, err := New(inner, 2)
	require.NoError(t, err)

	for _, text := range []string{"a", "b", "c", "a"} {
		_, err := svc.Embed(context.Background(), text)
		require.NoError(t, err)
	}

	assert.Equal(t, 4, inner.calls)
	assert.Equal(t, 2, svc.Len())
}

func TestPassthrough(t *testing.T) {
	inner := &countingEmbedder{model: "m"}
	svc, err := New(inner, 0)
	require.NoError(t, err)

	assert.Equal(t, 2, svc.Dimensions())
	assert.Equal(t, "m", svc.ModelName())
	require.NoError(t, svc.Close())
	assert.True(t, inner.closed)
}
