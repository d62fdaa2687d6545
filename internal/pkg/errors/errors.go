package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// FetchError marks a document that could not be downloaded or opened.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// UnsupportedFormatError is returned by the format router for extensions
// outside the supported set. No extractor is invoked.
type UnsupportedFormatError struct {
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported document format: %q", e.Extension)
}

// ToolAttempt records one failed strategy inside a fallback chain.
type ToolAttempt struct {
	Tool   string
	Reason string
}

// ExtractionToolFailure is surfaced only after every strategy of a format's
// fallback chain has been exhausted. Attempts preserves the order in which
// the tools were tried.
type ExtractionToolFailure struct {
	DocumentKey string
	Format      string
	Attempts    []ToolAttempt
}

func (e *ExtractionToolFailure) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %s", a.Tool, a.Reason))
	}
	return fmt.Sprintf("extraction failed for %s (%s): [%s]", e.DocumentKey, e.Format, strings.Join(parts, "; "))
}

// EmbeddingAPIError carries the index of the failing text so that a partial
// batch can report exactly which inputs were lost.
type EmbeddingAPIError struct {
	Index int
	Err   error
}

func (e *EmbeddingAPIError) Error() string {
	return fmt.Sprintf("embedding failed for text %d: %v", e.Index, e.Err)
}

func (e *EmbeddingAPIError) Unwrap() error {
	return e.Err
}

// CacheStoreError wraps persistence failures that are not benign uniqueness
// conflicts.
type CacheStoreError struct {
	DocumentKey string
	Op          string
	Err         error
}

func (e *CacheStoreError) Error() string {
	return fmt.Sprintf("cache store %s for %s: %v", e.Op, e.DocumentKey, e.Err)
}

func (e *CacheStoreError) Unwrap() error {
	return e.Err
}

// SimilarityDimensionError reports a query vector that does not match the
// dimensionality of the cached chunk vectors.
type SimilarityDimensionError struct {
	Got  int
	Want int
}

func (e *SimilarityDimensionError) Error() string {
	return fmt.Sprintf("similarity dimension mismatch: query has %d dims, cached vectors have %d", e.Got, e.Want)
}

func IsUnsupportedFormat(err error) bool {
	var target *UnsupportedFormatError
	return errors.As(err, &target)
}

func IsExtractionFailure(err error) bool {
	var target *ExtractionToolFailure
	return errors.As(err, &target)
}
