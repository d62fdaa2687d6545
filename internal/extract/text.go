package extract

import (
	"context"
	"os"
)

// textExtractor reads plain text files as-is.
type textExtractor struct{}

func newTextExtractor() *textExtractor {
	return &textExtractor{}
}

func (e *textExtractor) Format() string {
	return "txt"
}

func (e *textExtractor) Extract(ctx context.Context, documentKey, path, workDir string) (string, error) {
	return runChain(ctx, documentKey, "txt", []strategy{
		{tool: "read", run: func(ctx context.Context) (string, error) {
			data, err := os.ReadFile(path)
			if err != nil {
				return "", err
			}
			return string(data), nil
		}},
	})
}
