package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// pptxExtractor renders each slide to an image and recognizes it, keeping
// the original 1-based slide order in the output.
type pptxExtractor struct {
	runner    *Runner
	converter *officeConverter
	ocr       *ocrPipeline
}

func newPPTXExtractor(runner *Runner, converter *officeConverter, ocr *ocrPipeline) *pptxExtractor {
	return &pptxExtractor{runner: runner, converter: converter, ocr: ocr}
}

func (e *pptxExtractor) Format() string {
	return "pptx"
}

func (e *pptxExtractor) Extract(ctx context.Context, documentKey, path, workDir string) (string, error) {
	text, err := runChain(ctx, documentKey, "pptx", []strategy{
		{tool: "convert", run: func(ctx context.Context) (string, error) {
			images, err := e.slidesDirect(ctx, path, workDir)
			if err != nil {
				return "", err
			}
			return e.recognizeSlides(ctx, images, workDir)
		}},
		{tool: "soffice+pdftoppm", run: func(ctx context.Context) (string, error) {
			images, err := e.slidesViaPDF(ctx, path, workDir)
			if err != nil {
				return "", err
			}
			return e.recognizeSlides(ctx, images, workDir)
		}},
	})
	if err != nil {
		return "", err
	}
	return cleanText(text), nil
}

// slidesDirect renders the presentation straight to per-slide PNGs.
func (e *pptxExtractor) slidesDirect(ctx context.Context, path, workDir string) ([]string, error) {
	slidesDir := filepath.Join(workDir, "slides")
	if err := os.MkdirAll(slidesDir, 0o755); err != nil {
		return nil, err
	}
	if _, err := e.runner.Run(ctx, "convert",
		"-density", "150",
		"-background", "white",
		"-alpha", "remove",
		"-quality", "85",
		path, filepath.Join(slidesDir, "slide-%02d.png")); err != nil {
		return nil, err
	}
	return collectPNGs(slidesDir)
}

// slidesViaPDF is the fallback: office render to PDF, then page images.
func (e *pptxExtractor) slidesViaPDF(ctx context.Context, path, workDir string) ([]string, error) {
	pdfPath, err := e.converter.ToPDF(ctx, path, workDir)
	if err != nil {
		return nil, err
	}
	slidesDir := filepath.Join(workDir, "slides-pdf")
	if err := os.MkdirAll(slidesDir, 0o755); err != nil {
		return nil, err
	}
	if _, err := e.runner.Run(ctx, "pdftoppm",
		"-png", "-r", "150", pdfPath, filepath.Join(slidesDir, "slide")); err != nil {
		return nil, err
	}
	return collectPNGs(slidesDir)
}

// recognizeSlides OCRs each slide image in order. A slide whose recognition
// fails is skipped with a warning; the extraction only fails when no slide
// yields text.
func (e *pptxExtractor) recognizeSlides(ctx context.Context, images []string, workDir string) (string, error) {
	if len(images) == 0 {
		return "", fmt.Errorf("no slide images produced")
	}
	var parts []string
	for i, image := range images {
		text, err := e.runner.Run(ctx, "tesseract", image, "stdout")
		if err != nil {
			logutil.GetLogger(ctx).Warn("slide recognition failed",
				zap.Int("slide", i+1), zap.Error(err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("=== Slide %d ===\n%s", i+1, text))
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text recognized on any of %d slides", len(images))
	}
	return strings.Join(parts, "\n\n"), nil
}
