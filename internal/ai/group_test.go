package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticEmbedder struct {
	model  string
	values []float32
	err    error
}

func (s *staticEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	return s.values, s.err
}

func (s *staticEmbedder) ModelName() string { return s.model }

func TestGroupEmbedder_FallsThroughOnFailure(t *testing.T) {
	g := NewGroupEmbedder([]EmbedderEntry{
		{Name: "primary", Embedder: &staticEmbedder{model: "primary", err: errors.New("down")}},
		{Name: "backup", Embedder: &staticEmbedder{model: "backup", values: []float32{1, 2}}},
	})
	values, err := g.Embed(context.Background(), "q", TaskTypeQuery)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, values)
}

func TestGroupEmbedder_SurfacesLastError(t *testing.T) {
	last := errors.New("also down")
	g := NewGroupEmbedder([]EmbedderEntry{
		{Name: "a", Embedder: &staticEmbedder{err: errors.New("down")}},
		{Name: "b", Embedder: &staticEmbedder{err: last}},
	})
	_, err := g.Embed(context.Background(), "q", TaskTypeQuery)
	require.ErrorIs(t, err, last)
}

func TestGroupEmbedder_ModelName(t *testing.T) {
	g := NewGroupEmbedder([]EmbedderEntry{
		{Name: "a", Embedder: &staticEmbedder{}},
		{Name: "b", Embedder: &staticEmbedder{}},
	})
	assert.Equal(t, "a|b", g.ModelName())
}

func TestNewGroupEmbedder_Empty(t *testing.T) {
	assert.Nil(t, NewGroupEmbedder(nil))
}
