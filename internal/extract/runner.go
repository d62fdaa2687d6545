package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const defaultToolTimeout = 120 * time.Second

// Runner invokes the external conversion tools (pdftotext, pdfinfo, qpdf,
// soffice, convert, pdftoppm, tesseract) as subprocesses. Exit status is the
// only failure signal these tools give; stderr is captured for the fallback
// chain's attempt log.
type Runner struct {
	timeout time.Duration
}

func NewRunner(timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = defaultToolTimeout
	}
	return &Runner{timeout: timeout}
}

// Run executes a tool and returns its stdout. On a non-zero exit the error
// carries the tool name and trimmed stderr.
func (r *Runner) Run(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%s: %w", name, ctx.Err())
		}
		reason := strings.TrimSpace(stderr.String())
		if reason == "" {
			reason = err.Error()
		}
		return "", fmt.Errorf("%s: %s", name, reason)
	}
	return stdout.String(), nil
}
