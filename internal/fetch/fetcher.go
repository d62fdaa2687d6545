// Package fetch resolves a document URL to a local file the extractors can
// work on. Fetchers are registered per URL scheme.
package fetch

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	apperr "github.com/Not-Buddy/HackerXAPI/internal/pkg/errors"
)

// Result is a downloaded document: a local path plus the extension the
// format router dispatches on.
type Result struct {
	Path      string
	Extension string
}

type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, destDir string) (*Result, error)
}

type Factory func(args interface{}) (Fetcher, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func Register(scheme string, factory Factory) {
	key := strings.ToLower(strings.TrimSpace(scheme))
	if key == "" || factory == nil {
		return
	}
	registryMu.Lock()
	registry[key] = factory
	registryMu.Unlock()
}

// Dispatcher picks a fetcher by URL scheme. Scheme-less references are
// treated as local paths.
type Dispatcher struct {
	fetchers map[string]Fetcher
}

func NewDispatcher(args map[string]interface{}) (*Dispatcher, error) {
	fetchers := make(map[string]Fetcher)
	registryMu.RLock()
	defer registryMu.RUnlock()
	for scheme, factory := range registry {
		fetcher, err := factory(args[scheme])
		if err != nil {
			return nil, fmt.Errorf("init %s fetcher: %w", scheme, err)
		}
		fetchers[scheme] = fetcher
	}
	return &Dispatcher{fetchers: fetchers}, nil
}

func (d *Dispatcher) Fetch(ctx context.Context, rawURL string, destDir string) (*Result, error) {
	scheme := "file"
	if u, err := url.Parse(rawURL); err == nil && u.Scheme != "" {
		scheme = strings.ToLower(u.Scheme)
	}
	if scheme == "https" {
		scheme = "http"
	}
	fetcher := d.fetchers[scheme]
	if fetcher == nil {
		return nil, &apperr.FetchError{URL: rawURL, Err: fmt.Errorf("no fetcher for scheme %q", scheme)}
	}
	return fetcher.Fetch(ctx, rawURL, destDir)
}

// ExtensionOf returns the lower-cased extension of a URL path without the
// dot, ignoring any query string.
func ExtensionOf(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p = u.Path
	}
	ext := strings.TrimPrefix(filepath.Ext(p), ".")
	return strings.ToLower(ext)
}
