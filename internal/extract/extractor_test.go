package extract

import (
	"testing"

	apperr "github.com/Not-Buddy/HackerXAPI/internal/pkg/errors"
)

func newTestRouter() *Router {
	return NewRouter(Options{Workers: 2})
}

func TestRouter_SupportedExtensions(t *testing.T) {
	router := newTestRouter()
	for _, ext := range []string{"pdf", "docx", "xlsx", "pptx", "jpeg", "jpg", "png", "txt"} {
		e, err := router.ForExtension(ext)
		if err != nil {
			t.Fatalf("extension %s: unexpected error %v", ext, err)
		}
		if e == nil {
			t.Fatalf("extension %s: nil extractor", ext)
		}
	}
}

func TestRouter_UnsupportedExtension(t *testing.T) {
	router := newTestRouter()
	_, err := router.ForExtension("bmp")
	if err == nil {
		t.Fatal("expected error for .bmp")
	}
	if !apperr.IsUnsupportedFormat(err) {
		t.Fatalf("expected UnsupportedFormatError, got %T: %v", err, err)
	}
}

func TestRouter_NormalizesExtension(t *testing.T) {
	router := newTestRouter()
	for _, ext := range []string{".PDF", "Pdf", " pdf "} {
		e, err := router.ForExtension(ext)
		if err != nil || e.Format() != "pdf" {
			t.Fatalf("extension %q not normalized: %v", ext, err)
		}
	}
}
