package ai

import (
	"context"
	"strings"
	"sync"

	apperr "github.com/Not-Buddy/HackerXAPI/internal/pkg/errors"
)

// MaxInFlight caps concurrent requests against the embedding provider. The
// provider is rate limited externally; going wider only buys 429s.
const MaxInFlight = 50

// CombinedDelimiter separates questions when several are embedded as one
// joint-intent vector.
const CombinedDelimiter = "\n\n"

// BatchResult holds either the vector or the failure for one input text.
// A failed text never aborts its siblings.
type BatchResult struct {
	Values []float32
	Err    error
}

// EmbedAll embeds every text through e with at most width concurrent
// requests. Results are returned in input order. Per-text failures are
// recorded as EmbeddingAPIError with the failing index.
func EmbedAll(ctx context.Context, e IEmbedder, texts []string, width int) []BatchResult {
	results := make([]BatchResult, len(texts))
	if len(texts) == 0 {
		return results
	}
	if width <= 0 || width > MaxInFlight {
		width = MaxInFlight
	}
	if width > len(texts) {
		width = len(texts)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(width)
	for w := 0; w < width; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					results[i] = BatchResult{Err: &apperr.EmbeddingAPIError{Index: i, Err: err}}
					continue
				}
				values, err := e.Embed(ctx, texts[i], TaskTypeDocument)
				if err != nil {
					results[i] = BatchResult{Err: &apperr.EmbeddingAPIError{Index: i, Err: err}}
					continue
				}
				results[i] = BatchResult{Values: values}
			}
		}()
	}
	for i := range texts {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}

// CombineQuestions joins multiple questions into one text so a single
// embedding call can represent their joint intent.
func CombineQuestions(questions []string) string {
	trimmed := make([]string, 0, len(questions))
	for _, q := range questions {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		trimmed = append(trimmed, q)
	}
	return strings.Join(trimmed, CombinedDelimiter)
}

// EmbedCombined produces one query vector for one or more questions. Multiple
// questions cost a single provider call.
func EmbedCombined(ctx context.Context, e IEmbedder, questions []string) ([]float32, error) {
	text := CombineQuestions(questions)
	values, err := e.Embed(ctx, text, TaskTypeQuery)
	if err != nil {
		return nil, &apperr.EmbeddingAPIError{Index: 0, Err: err}
	}
	return values, nil
}
