package extract

import (
	"context"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	apperr "github.com/Not-Buddy/HackerXAPI/internal/pkg/errors"
)

// strategy is one variant inside a format's fallback chain.
type strategy struct {
	tool string
	run  func(ctx context.Context) (string, error)
}

// runChain tries each strategy in priority order and returns the first
// success. Every failure is recorded; only exhaustion of the whole chain
// surfaces to the caller, as an ExtractionToolFailure listing what was tried.
func runChain(ctx context.Context, documentKey, format string, strategies []strategy) (string, error) {
	attempts := make([]apperr.ToolAttempt, 0, len(strategies))
	for _, s := range strategies {
		text, err := s.run(ctx)
		if err == nil {
			return text, nil
		}
		attempts = append(attempts, apperr.ToolAttempt{Tool: s.tool, Reason: err.Error()})
		logutil.GetLogger(ctx).Warn("extraction strategy failed",
			zap.String("document_key", documentKey),
			zap.String("format", format),
			zap.String("tool", s.tool),
			zap.Error(err),
		)
	}
	return "", &apperr.ExtractionToolFailure{
		DocumentKey: documentKey,
		Format:      format,
		Attempts:    attempts,
	}
}

// cleanText trims every line and drops empty ones, preserving line order.
func cleanText(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
