package fetch

import (
	"context"
	"net/url"
	"os"
	"strings"

	apperr "github.com/Not-Buddy/HackerXAPI/internal/pkg/errors"
)

// fileFetcher serves file:// URLs and plain paths. The file is used in
// place; nothing is copied into destDir.
type fileFetcher struct{}

func init() {
	Register("file", func(args interface{}) (Fetcher, error) {
		return &fileFetcher{}, nil
	})
}

func (f *fileFetcher) Fetch(ctx context.Context, rawURL string, destDir string) (*Result, error) {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Scheme == "file" {
		path = u.Path
	}
	path = strings.TrimSpace(path)
	if _, err := os.Stat(path); err != nil {
		return nil, &apperr.FetchError{URL: rawURL, Err: err}
	}
	return &Result{Path: path, Extension: ExtensionOf(path)}, nil
}
