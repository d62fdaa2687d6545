package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ocrPipeline turns images into text. Images are normalized to 150 DPI with
// transparency flattened against white before recognition; that keeps
// tesseract's accuracy stable across input formats.
type ocrPipeline struct {
	runner *Runner
}

func newOCRPipeline(runner *Runner) *ocrPipeline {
	return &ocrPipeline{runner: runner}
}

// normalize renders src as a flattened white-background PNG at 150 DPI.
func (o *ocrPipeline) normalize(ctx context.Context, src, dst string) error {
	_, err := o.runner.Run(ctx, "convert",
		"-density", "150",
		"-background", "white",
		"-alpha", "remove",
		"-quality", "85",
		src, dst)
	return err
}

// Recognize runs text recognition on one image after normalization.
func (o *ocrPipeline) Recognize(ctx context.Context, imagePath, workDir string) (string, error) {
	normalized := filepath.Join(workDir, "ocr-"+strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))+".png")
	if err := o.normalize(ctx, imagePath, normalized); err != nil {
		return "", err
	}
	return o.runner.Run(ctx, "tesseract", normalized, "stdout")
}

// RecognizePages converts a PDF into per-page images and recognizes each,
// preserving page order. Produced files sort lexically by page number.
func (o *ocrPipeline) RecognizePages(ctx context.Context, pdfPath, workDir string) (string, error) {
	pagesDir := filepath.Join(workDir, "pages")
	if err := os.MkdirAll(pagesDir, 0o755); err != nil {
		return "", err
	}
	if _, err := o.runner.Run(ctx, "pdftoppm",
		"-png", "-r", "150", pdfPath, filepath.Join(pagesDir, "page")); err != nil {
		return "", err
	}
	images, err := collectPNGs(pagesDir)
	if err != nil {
		return "", err
	}
	if len(images) == 0 {
		return "", fmt.Errorf("pdftoppm produced no page images")
	}
	parts := make([]string, 0, len(images))
	for _, image := range images {
		text, err := o.runner.Run(ctx, "tesseract", image, "stdout")
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n"), nil
}

// collectPNGs returns the PNGs in dir in page order. convert and pdftoppm
// pad the page number to a minimum width only, so past that width a lexical
// sort would slot page 100 between 10 and 11; order by the numeric suffix.
func collectPNGs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var images []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".png") {
			continue
		}
		images = append(images, filepath.Join(dir, entry.Name()))
	}
	sort.Slice(images, func(i, j int) bool {
		a, aok := pageNumber(images[i])
		b, bok := pageNumber(images[j])
		if aok && bok && a != b {
			return a < b
		}
		return images[i] < images[j]
	})
	return images, nil
}

// pageNumber parses the trailing digits of an image file name, e.g. 100
// from slide-100.png.
func pageNumber(path string) (int, bool) {
	name := strings.TrimSuffix(filepath.Base(path), ".png")
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}
	if i == len(name) {
		return 0, false
	}
	n, err := strconv.Atoi(name[i:])
	if err != nil {
		return 0, false
	}
	return n, true
}

// imageExtractor handles standalone jpeg/png uploads.
type imageExtractor struct {
	format string
	ocr    *ocrPipeline
}

func newImageExtractor(format string, ocr *ocrPipeline) *imageExtractor {
	return &imageExtractor{format: format, ocr: ocr}
}

func (e *imageExtractor) Format() string {
	return e.format
}

func (e *imageExtractor) Extract(ctx context.Context, documentKey, path, workDir string) (string, error) {
	text, err := runChain(ctx, documentKey, e.format, []strategy{
		{tool: "convert+tesseract", run: func(ctx context.Context) (string, error) {
			return e.ocr.Recognize(ctx, path, workDir)
		}},
		// Some images only render through the office converter (embedded
		// color profiles convert chokes on).
		{tool: "soffice+pdftoppm+tesseract", run: func(ctx context.Context) (string, error) {
			converter := newOfficeConverter(e.ocr.runner)
			pdfPath, err := converter.ToPDF(ctx, path, workDir)
			if err != nil {
				return "", err
			}
			return e.ocr.RecognizePages(ctx, pdfPath, workDir)
		}},
	})
	if err != nil {
		return "", err
	}
	return cleanText(text), nil
}
