package job

import (
	"context"
	"time"

	"github.com/Not-Buddy/HackerXAPI/internal/repo"
)

// ChunkCacheCleanupJob expires cached chunks past a configured age. Disabled
// by default: the chunk cache is meant to persist indefinitely, this is an
// operator knob for space reclamation.
type ChunkCacheCleanupJob struct {
	repo       *repo.ChunkRepo
	maxAgeDays int
}

func NewChunkCacheCleanupJob(repo *repo.ChunkRepo, maxAgeDays int) *ChunkCacheCleanupJob {
	return &ChunkCacheCleanupJob{repo: repo, maxAgeDays: maxAgeDays}
}

func (j *ChunkCacheCleanupJob) Name() string {
	return "chunk_cache_cleanup"
}

func (j *ChunkCacheCleanupJob) Run(ctx context.Context) error {
	if j.repo == nil {
		return nil
	}
	maxAgeDays := j.maxAgeDays
	if maxAgeDays <= 0 {
		maxAgeDays = 180
	}
	cutoff := time.Now().Add(-time.Duration(maxAgeDays) * 24 * time.Hour).Unix()
	_, err := j.repo.DeleteBefore(ctx, cutoff)
	return err
}
