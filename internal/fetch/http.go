package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	apperr "github.com/Not-Buddy/HackerXAPI/internal/pkg/errors"
)

type httpConfig struct {
	TimeoutSeconds int `json:"timeout_seconds"`
}

type httpFetcher struct {
	client *http.Client
}

func init() {
	Register("http", createHTTPFetcher)
}

func createHTTPFetcher(args interface{}) (Fetcher, error) {
	cfg := &httpConfig{}
	if args != nil {
		data, err := json.Marshal(args)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &httpFetcher{client: &http.Client{Timeout: timeout}}, nil
}

func (f *httpFetcher) Fetch(ctx context.Context, rawURL string, destDir string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &apperr.FetchError{URL: rawURL, Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &apperr.FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &apperr.FetchError{URL: rawURL, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	ext := ExtensionOf(rawURL)
	if ext == "" {
		ext = extensionFromContentType(resp.Header.Get("Content-Type"))
	}
	dest := filepath.Join(destDir, "document-"+uuid.NewString()+dotted(ext))
	out, err := os.Create(dest)
	if err != nil {
		return nil, &apperr.FetchError{URL: rawURL, Err: err}
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(dest)
		return nil, &apperr.FetchError{URL: rawURL, Err: err}
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return nil, &apperr.FetchError{URL: rawURL, Err: err}
	}
	return &Result{Path: dest, Extension: ext}, nil
}

func extensionFromContentType(contentType string) string {
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	switch strings.TrimSpace(strings.ToLower(contentType)) {
	case "application/pdf":
		return "pdf"
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return "docx"
	case "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return "xlsx"
	case "application/vnd.openxmlformats-officedocument.presentationml.presentation":
		return "pptx"
	case "image/jpeg":
		return "jpeg"
	case "image/png":
		return "png"
	case "text/plain":
		return "txt"
	}
	return ""
}

func dotted(ext string) string {
	if ext == "" {
		return ""
	}
	return "." + ext
}
