package service

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Not-Buddy/HackerXAPI/internal/model"
	apperr "github.com/Not-Buddy/HackerXAPI/internal/pkg/errors"
)

type stubReader struct {
	chunks []model.Chunk
}

func (s *stubReader) GetChunks(ctx context.Context, documentKey string) ([]model.Chunk, error) {
	return s.chunks, nil
}

// directionEmbedder maps each query text to a fixed unit vector so tests can
// steer similarity deterministically.
type directionEmbedder struct {
	calls  atomic.Int64
	vector []float32
}

func (d *directionEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	d.calls.Add(1)
	return d.vector, nil
}

func (d *directionEmbedder) ModelName() string { return "test-embedding" }

func TestCosineSimilarity_Self(t *testing.T) {
	v := []float32{0.3, -1.2, 4.5}
	score, err := CosineSimilarity(v, v)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-6)
}

func TestCosineSimilarity_Symmetry(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{-2, 0.5, 7}
	ab, err := CosineSimilarity(a, b)
	require.NoError(t, err)
	ba, err := CosineSimilarity(b, a)
	require.NoError(t, err)
	assert.Equal(t, ab, ba)
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	score, err := CosineSimilarity([]float32{1, 0}, []float32{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0, score, 1e-6)
}

func TestCosineSimilarity_ZeroMagnitude(t *testing.T) {
	score, err := CosineSimilarity([]float32{0, 0, 0}, []float32{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, float32(0), score)

	score, err = CosineSimilarity([]float32{1, 2, 3}, []float32{0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, float32(0), score)
}

func TestCosineSimilarity_DimensionMismatch(t *testing.T) {
	_, err := CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3})
	require.Error(t, err)
	var de *apperr.SimilarityDimensionError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 2, de.Got)
	assert.Equal(t, 3, de.Want)
}

// chunkAt builds a chunk whose cosine similarity against the query direction
// (1, 0) equals cos(angle).
func chunkAt(index int, angle float64) model.Chunk {
	return model.Chunk{
		DocumentKey: "doc",
		ChunkIndex:  index,
		Text:        fmt.Sprintf("chunk %d", index),
		Embedding:   []float32{float32(math.Cos(angle)), float32(math.Sin(angle))},
	}
}

func TestRetrieve_ThresholdAndOrdering(t *testing.T) {
	reader := &stubReader{chunks: []model.Chunk{
		chunkAt(0, 0.9), // ~0.62
		chunkAt(1, 0.2), // ~0.98
		chunkAt(2, 2.0), // negative, filtered
		chunkAt(3, 0.6), // ~0.83
		chunkAt(4, 1.2), // ~0.36, filtered by 0.5 threshold
	}}
	embedder := &directionEmbedder{vector: []float32{1, 0}}
	svc := NewRetrievalService(reader, embedder)

	matches, err := svc.Retrieve(context.Background(), "doc", []string{"q"}, 0, 0)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, 1, matches[0].Chunk.ChunkIndex)
	assert.Equal(t, 3, matches[1].Chunk.ChunkIndex)
	assert.Equal(t, 0, matches[2].Chunk.ChunkIndex)
	for i := 0; i < len(matches)-1; i++ {
		assert.GreaterOrEqual(t, matches[i].Score, matches[i+1].Score)
	}
	for _, m := range matches {
		assert.GreaterOrEqual(t, m.Score, DefaultThreshold)
	}
}

func TestRetrieve_TopKTruncation(t *testing.T) {
	chunks := make([]model.Chunk, 12)
	for i := range chunks {
		// All well above the threshold, slightly different angles.
		chunks[i] = chunkAt(i, 0.01*float64(i))
	}
	reader := &stubReader{chunks: chunks}
	embedder := &directionEmbedder{vector: []float32{1, 0}}
	svc := NewRetrievalService(reader, embedder)

	matches, err := svc.Retrieve(context.Background(), "doc", []string{"q"}, 0, 0)
	require.NoError(t, err)
	assert.Len(t, matches, DefaultTopK)
	// Smaller angle means higher similarity, so the two largest angles drop.
	for i, m := range matches {
		assert.Equal(t, i, m.Chunk.ChunkIndex)
	}
}

func TestRetrieve_TieBreaksByChunkIndex(t *testing.T) {
	reader := &stubReader{chunks: []model.Chunk{
		chunkAt(7, 0.3),
		chunkAt(2, 0.3),
		chunkAt(5, 0.3),
	}}
	embedder := &directionEmbedder{vector: []float32{1, 0}}
	svc := NewRetrievalService(reader, embedder)

	matches, err := svc.Retrieve(context.Background(), "doc", []string{"q"}, 0, 0)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, 2, matches[0].Chunk.ChunkIndex)
	assert.Equal(t, 5, matches[1].Chunk.ChunkIndex)
	assert.Equal(t, 7, matches[2].Chunk.ChunkIndex)
}

func TestRetrieve_MultipleQuestionsOneEmbedCall(t *testing.T) {
	reader := &stubReader{chunks: []model.Chunk{chunkAt(0, 0.1)}}
	embedder := &directionEmbedder{vector: []float32{1, 0}}
	svc := NewRetrievalService(reader, embedder)

	_, err := svc.Retrieve(context.Background(), "doc", []string{"q1", "q2", "q3"}, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, embedder.calls.Load())
}

func TestRetrieve_NoMatchesIsEmptyNotError(t *testing.T) {
	reader := &stubReader{chunks: []model.Chunk{chunkAt(0, 2.5)}}
	embedder := &directionEmbedder{vector: []float32{1, 0}}
	svc := NewRetrievalService(reader, embedder)

	matches, err := svc.Retrieve(context.Background(), "doc", []string{"q"}, 5, 0.5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
