package service

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/Not-Buddy/HackerXAPI/internal/ai"
	"github.com/Not-Buddy/HackerXAPI/internal/chunker"
	"github.com/Not-Buddy/HackerXAPI/internal/extract"
	"github.com/Not-Buddy/HackerXAPI/internal/fetch"
	"github.com/Not-Buddy/HackerXAPI/internal/model"
	apperr "github.com/Not-Buddy/HackerXAPI/internal/pkg/errors"
)

type IngestConfig struct {
	TmpDir         string
	ChunkMaxChars  int
	MaxConcurrency int
}

// Fetcher resolves a document URL to a local file. *fetch.Dispatcher is the
// production implementation.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, destDir string) (*fetch.Result, error)
}

// Router picks an extractor by file extension. *extract.Router is the
// production implementation.
type Router interface {
	ForExtension(ext string) (extract.Extractor, error)
}

// ChunkStore is the persisted chunk cache as the ingest side sees it.
type ChunkStore interface {
	HasEmbeddings(ctx context.Context, documentKey string) (bool, error)
	BatchInsert(ctx context.Context, documentKey string, chunks []model.Chunk) error
}

// IngestService drives a document from URL to fully cached chunk vectors.
type IngestService struct {
	fetcher  Fetcher
	router   Router
	chunks   ChunkStore
	embedder ai.IEmbedder
	cfg      IngestConfig
}

func NewIngestService(fetcher Fetcher, router Router, chunks ChunkStore, embedder ai.IEmbedder, cfg IngestConfig) *IngestService {
	if cfg.ChunkMaxChars <= 0 {
		cfg.ChunkMaxChars = chunker.DefaultMaxChars
	}
	if cfg.TmpDir == "" {
		cfg.TmpDir = os.TempDir()
	}
	return &IngestService{
		fetcher:  fetcher,
		router:   router,
		chunks:   chunks,
		embedder: embedder,
		cfg:      cfg,
	}
}

// Ingest extracts, chunks, embeds and caches a document. The document URL is
// its stable cache key; re-ingesting a cached document is a no-op and costs
// no fetch, conversion or embedding work.
//
// Two requests racing on the same uncached document both do the full
// pipeline; the loser's batch insert hits the uniqueness constraint and is
// treated as success. There is no advisory reservation up front.
func (s *IngestService) Ingest(ctx context.Context, documentURL string) error {
	documentKey := documentURL
	logger := logutil.GetLogger(ctx).With(zap.String("document_key", documentKey))

	cached, err := s.chunks.HasEmbeddings(ctx, documentKey)
	if err != nil {
		return err
	}
	if cached {
		logger.Debug("document already cached, skipping ingest")
		return nil
	}

	workDir := filepath.Join(s.cfg.TmpDir, "ingest-"+uuid.NewString())
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return &apperr.FetchError{URL: documentURL, Err: err}
	}
	defer os.RemoveAll(workDir)

	fetched, err := s.fetcher.Fetch(ctx, documentURL, workDir)
	if err != nil {
		return err
	}
	extractor, err := s.router.ForExtension(fetched.Extension)
	if err != nil {
		return err
	}
	text, err := extractor.Extract(ctx, documentKey, fetched.Path, workDir)
	if err != nil {
		return err
	}

	// Indices are fixed here, before any concurrent embedding starts, so
	// cache rows are order-stable no matter which embedding finishes first.
	segments := chunker.Split(text, s.cfg.ChunkMaxChars)
	logger.Info("document extracted", zap.Int("text_len", len(text)), zap.Int("chunks", len(segments)))

	results := ai.EmbedAll(ctx, s.embedder, segments, s.cfg.MaxConcurrency)
	for _, result := range results {
		if result.Err != nil {
			// The batch insert is all-or-nothing; one lost vector means
			// the document cannot be cached on this attempt.
			return result.Err
		}
	}

	now := time.Now().Unix()
	rows := make([]model.Chunk, len(segments))
	for i, segment := range segments {
		rows[i] = model.Chunk{
			DocumentKey: documentKey,
			ChunkIndex:  i,
			Text:        segment,
			Embedding:   results[i].Values,
			Ctime:       now,
		}
	}
	if err := s.chunks.BatchInsert(ctx, documentKey, rows); err != nil {
		if apperr.IsConflict(err) {
			logger.Info("document cached by a concurrent request")
			return nil
		}
		return err
	}
	logger.Info("document ingested", zap.Int("chunks", len(rows)))
	return nil
}
