// Package extract turns uploaded documents of heterogeneous formats into
// plain text. Each format runs an ordered chain of external tools, advancing
// to the next tool on failure.
package extract

import (
	"context"
	"strings"
	"time"

	apperr "github.com/Not-Buddy/HackerXAPI/internal/pkg/errors"
)

// Extractor produces plain text from a source file. workDir is a per-ingest
// scratch directory for intermediate artifacts (converted PDFs, page images);
// the caller owns its lifetime.
type Extractor interface {
	Format() string
	Extract(ctx context.Context, documentKey string, path string, workDir string) (string, error)
}

// Options tune the extraction tool chains.
type Options struct {
	ToolTimeout time.Duration
	// LargePDFPages is the page count above which PDFs are split into
	// ranges and extracted in parallel.
	LargePDFPages int
	// Workers bounds the CPU-bound extraction worker pool.
	Workers int
	// AllowEstimation enables the last-resort degraded-success output when
	// every tool in a PDF chain has failed.
	AllowEstimation bool
}

// Router dispatches a file to the extractor registered for its extension.
type Router struct {
	extractors map[string]Extractor
}

func NewRouter(opts Options) *Router {
	runner := NewRunner(opts.ToolTimeout)
	ocr := newOCRPipeline(runner)
	pdf := newPDFExtractor(runner, opts)
	office := newOfficeConverter(runner)

	r := &Router{extractors: make(map[string]Extractor)}
	r.add(pdf)
	r.add(newOfficeExtractor("docx", office, pdf))
	r.add(newOfficeExtractor("xlsx", office, pdf))
	r.add(newPPTXExtractor(runner, office, ocr))
	r.add(newImageExtractor("jpeg", ocr))
	r.add(newImageExtractor("jpg", ocr))
	r.add(newImageExtractor("png", ocr))
	r.add(newTextExtractor())
	return r
}

func (r *Router) add(e Extractor) {
	r.extractors[e.Format()] = e
}

// ForExtension returns the extractor for an extension, or an
// UnsupportedFormatError. No extractor is invoked for unknown extensions.
func (r *Router) ForExtension(ext string) (Extractor, error) {
	key := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	e := r.extractors[key]
	if e == nil {
		return nil, &apperr.UnsupportedFormatError{Extension: key}
	}
	return e, nil
}
