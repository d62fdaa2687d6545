package job

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// TempCleanupJob removes ingest scratch directories left behind by crashed
// or cancelled runs. Live ingests are protected by the age cutoff.
type TempCleanupJob struct {
	tmpDir     string
	maxAgeHour int
}

func NewTempCleanupJob(tmpDir string, maxAgeHour int) *TempCleanupJob {
	return &TempCleanupJob{tmpDir: tmpDir, maxAgeHour: maxAgeHour}
}

func (j *TempCleanupJob) Name() string {
	return "temp_cleanup"
}

func (j *TempCleanupJob) Run(ctx context.Context) error {
	maxAge := time.Duration(j.maxAgeHour) * time.Hour
	if maxAge <= 0 {
		maxAge = 6 * time.Hour
	}
	cutoff := time.Now().Add(-maxAge)

	entries, err := os.ReadDir(j.tmpDir)
	if err != nil {
		return err
	}
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "ingest-") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(j.tmpDir, entry.Name())); err != nil {
			logutil.GetLogger(ctx).Warn("failed to remove stale ingest dir",
				zap.String("dir", entry.Name()), zap.Error(err))
			continue
		}
		removed++
	}
	if removed > 0 {
		logutil.GetLogger(ctx).Info("removed stale ingest dirs", zap.Int("count", removed))
	}
	return nil
}
