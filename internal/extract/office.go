package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// officeConverter wraps the headless office suite used to turn docx/xlsx/pptx
// into PDF.
type officeConverter struct {
	runner *Runner
}

func newOfficeConverter(runner *Runner) *officeConverter {
	return &officeConverter{runner: runner}
}

// ToPDF converts an office document into workDir and returns the produced
// PDF path. soffice names the output after the input's base name.
func (c *officeConverter) ToPDF(ctx context.Context, path, workDir string) (string, error) {
	if _, err := c.runner.Run(ctx, "soffice",
		"--headless", "--convert-to", "pdf", "--outdir", workDir, path); err != nil {
		return "", err
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	pdfPath := filepath.Join(workDir, base+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		return "", fmt.Errorf("soffice: expected output %s missing", pdfPath)
	}
	return pdfPath, nil
}

// officeExtractor handles docx and xlsx: convert to PDF, then reuse the PDF
// chain.
type officeExtractor struct {
	format    string
	converter *officeConverter
	pdf       *pdfExtractor
}

func newOfficeExtractor(format string, converter *officeConverter, pdf *pdfExtractor) *officeExtractor {
	return &officeExtractor{format: format, converter: converter, pdf: pdf}
}

func (e *officeExtractor) Format() string {
	return e.format
}

func (e *officeExtractor) Extract(ctx context.Context, documentKey, path, workDir string) (string, error) {
	return runChain(ctx, documentKey, e.format, []strategy{
		{tool: "soffice+pdftotext", run: func(ctx context.Context) (string, error) {
			pdfPath, err := e.converter.ToPDF(ctx, path, workDir)
			if err != nil {
				return "", err
			}
			return e.pdf.Extract(ctx, documentKey, pdfPath, workDir)
		}},
	})
}
