package extract

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// PageRange is a 1-indexed, inclusive span of PDF pages.
type PageRange struct {
	First int
	Last  int
}

// PageRanges partitions pages [1, total] into at most workers contiguous
// ranges of ceil(total/workers) pages each. The union covers [1, total]
// exactly once; the final range may be shorter.
func PageRanges(total, workers int) []PageRange {
	if total < 1 || workers < 1 {
		return nil
	}
	perChunk := (total + workers - 1) / workers
	ranges := make([]PageRange, 0, workers)
	for i := 0; i < workers; i++ {
		first := i*perChunk + 1
		if first > total {
			break
		}
		last := (i + 1) * perChunk
		if last > total {
			last = total
		}
		ranges = append(ranges, PageRange{First: first, Last: last})
	}
	return ranges
}

// extractRanges runs one pdftotext per page range, each in its own worker,
// and joins the results in range order so document order survives arbitrary
// completion order. Any range failure fails the whole document.
func (p *pdfExtractor) extractRanges(ctx context.Context, path string, ranges []PageRange) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]string, len(ranges))
	errs := make([]error, len(ranges))
	var wg sync.WaitGroup
	wg.Add(len(ranges))
	for i, pr := range ranges {
		go func(i int, pr PageRange) {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			out, err := p.runner.Run(ctx, "pdftotext",
				"-f", fmt.Sprint(pr.First),
				"-l", fmt.Sprint(pr.Last),
				path, "-")
			if err != nil {
				errs[i] = err
				cancel()
				return
			}
			results[i] = out
		}(i, pr)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return "", fmt.Errorf("pages %d-%d: %w", ranges[i].First, ranges[i].Last, err)
		}
	}
	return strings.Join(results, "\n"), nil
}
