package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

type pdfExtractor struct {
	runner *Runner
	opts   Options
}

func newPDFExtractor(runner *Runner, opts Options) *pdfExtractor {
	if opts.LargePDFPages <= 0 {
		opts.LargePDFPages = 16
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &pdfExtractor{runner: runner, opts: opts}
}

func (p *pdfExtractor) Format() string {
	return "pdf"
}

func (p *pdfExtractor) Extract(ctx context.Context, documentKey, path, workDir string) (string, error) {
	strategies := []strategy{
		{tool: "pdftotext", run: func(ctx context.Context) (string, error) {
			return p.extractText(ctx, path)
		}},
		{tool: "qpdf+pdftotext", run: func(ctx context.Context) (string, error) {
			repaired := filepath.Join(workDir, "repaired.pdf")
			if _, err := p.runner.Run(ctx, "qpdf", path, repaired); err != nil {
				return "", err
			}
			return p.extractText(ctx, repaired)
		}},
	}
	if p.opts.AllowEstimation {
		strategies = append(strategies, strategy{tool: "estimate", run: func(ctx context.Context) (string, error) {
			return p.estimate(ctx, documentKey, path)
		}})
	}
	text, err := runChain(ctx, documentKey, "pdf", strategies)
	if err != nil {
		return "", err
	}
	return cleanText(text), nil
}

// extractText runs pdftotext over the whole file, or splits large PDFs into
// page ranges extracted in parallel.
func (p *pdfExtractor) extractText(ctx context.Context, path string) (string, error) {
	pages, err := p.pageCount(ctx, path)
	if err == nil && pages > p.opts.LargePDFPages {
		ranges := PageRanges(pages, p.opts.Workers)
		logutil.GetLogger(ctx).Info("splitting large pdf",
			zap.String("path", path),
			zap.Int("pages", pages),
			zap.Int("ranges", len(ranges)),
		)
		return p.extractRanges(ctx, path, ranges)
	}
	return p.runner.Run(ctx, "pdftotext", path, "-")
}

// pageCount parses the Pages field out of pdfinfo output.
func (p *pdfExtractor) pageCount(ctx context.Context, path string) (int, error) {
	out, err := p.runner.Run(ctx, "pdfinfo", path)
	if err != nil {
		return 0, err
	}
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		value := strings.TrimSpace(strings.TrimPrefix(line, "Pages:"))
		pages, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("pdfinfo: bad page count %q", value)
		}
		return pages, nil
	}
	return 0, fmt.Errorf("pdfinfo: no Pages field")
}

// estimate is the configured last-resort output once every real tool has
// failed: a degraded-success placeholder sized from the page count, never a
// silently empty string.
func (p *pdfExtractor) estimate(ctx context.Context, documentKey, path string) (string, error) {
	pages, err := p.pageCount(ctx, path)
	if err != nil {
		pages = 1
	}
	logutil.GetLogger(ctx).Warn("using page estimation fallback",
		zap.String("document_key", documentKey),
		zap.Int("pages", pages),
	)
	lines := make([]string, pages)
	for i := range lines {
		lines[i] = fmt.Sprintf("[page %d of %d: content could not be extracted]", i+1, pages)
	}
	return strings.Join(lines, "\n"), nil
}
