package service

import (
	"context"
	"math"
	"sort"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Not-Buddy/HackerXAPI/internal/ai"
	"github.com/Not-Buddy/HackerXAPI/internal/model"
	apperr "github.com/Not-Buddy/HackerXAPI/internal/pkg/errors"
)

const (
	DefaultTopK      = 10
	DefaultThreshold = float32(0.5)
)

// ChunkReader is the read-only view of the chunk cache the retriever needs.
type ChunkReader interface {
	GetChunks(ctx context.Context, documentKey string) ([]model.Chunk, error)
}

// RetrievalService ranks a document's cached chunks against a query vector.
// It only reads the cache; query vectors never outlive their request.
type RetrievalService struct {
	chunks   ChunkReader
	embedder ai.IEmbedder
}

func NewRetrievalService(chunks ChunkReader, embedder ai.IEmbedder) *RetrievalService {
	return &RetrievalService{chunks: chunks, embedder: embedder}
}

// Retrieve embeds the questions (combined into one vector when there are
// several) and returns at most k chunks scoring at least threshold, best
// first. No chunk meeting the threshold is an empty result, not an error.
func (s *RetrievalService) Retrieve(ctx context.Context, documentKey string, questions []string, k int, threshold float32) ([]model.ScoredChunk, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	logger := logutil.GetLogger(ctx).With(zap.String("document_key", documentKey))

	queryVec, err := ai.EmbedCombined(ctx, s.embedder, questions)
	if err != nil {
		logger.Error("failed to embed query", zap.Error(err))
		return nil, err
	}
	cached, err := s.chunks.GetChunks(ctx, documentKey)
	if err != nil {
		return nil, err
	}

	matches := make([]model.ScoredChunk, 0, len(cached))
	for i := range cached {
		chunk := &cached[i]
		score, err := CosineSimilarity(queryVec, chunk.Embedding)
		if err != nil {
			return nil, err
		}
		if score >= threshold {
			matches = append(matches, model.ScoredChunk{Chunk: chunk, Score: score})
		}
	}
	// Equal scores rank by chunk index so results are deterministic.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Chunk.ChunkIndex < matches[j].Chunk.ChunkIndex
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	logger.Debug("retrieval completed",
		zap.Int("candidates", len(cached)),
		zap.Int("returned", len(matches)),
		zap.Float32("threshold", threshold),
	)
	return matches, nil
}

// CosineSimilarity is dot(a,b) / (|a|*|b|), defined as 0 when either vector
// has zero magnitude. Mismatched dimensions are an error, not a zero score.
func CosineSimilarity(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, &apperr.SimilarityDimensionError{Got: len(a), Want: len(b)}
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB))), nil
}
