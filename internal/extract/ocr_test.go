package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func writePNGs(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("png"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestCollectPNGs_NumericOrderPastPadWidth(t *testing.T) {
	dir := t.TempDir()
	names := make([]string, 0, 103)
	for i := 0; i < 103; i++ {
		names = append(names, fmt.Sprintf("slide-%02d.png", i))
	}
	writePNGs(t, dir, names...)

	images, err := collectPNGs(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(images) != 103 {
		t.Fatalf("expected 103 images, got %d", len(images))
	}
	for i, image := range images {
		want := fmt.Sprintf("slide-%02d.png", i)
		if got := filepath.Base(image); got != want {
			t.Fatalf("position %d holds %s, want %s", i, got, want)
		}
	}
}

func TestCollectPNGs_MixedWidths(t *testing.T) {
	dir := t.TempDir()
	writePNGs(t, dir, "page-100.png", "page-2.png", "page-11.png", "page-9.png")

	images, err := collectPNGs(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"page-2.png", "page-9.png", "page-11.png", "page-100.png"}
	for i, w := range want {
		if got := filepath.Base(images[i]); got != w {
			t.Fatalf("position %d holds %s, want %s", i, got, w)
		}
	}
}

func TestCollectPNGs_IgnoresNonPNGs(t *testing.T) {
	dir := t.TempDir()
	writePNGs(t, dir, "page-1.png", "page-2.png")
	if err := os.WriteFile(filepath.Join(dir, "source.pdf"), []byte("pdf"), 0o644); err != nil {
		t.Fatal(err)
	}

	images, err := collectPNGs(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}
}

func TestPageNumber(t *testing.T) {
	cases := []struct {
		path string
		want int
		ok   bool
	}{
		{"slide-100.png", 100, true},
		{"/tmp/pages/page-07.png", 7, true},
		{"cover.png", 0, false},
	}
	for _, tc := range cases {
		got, ok := pageNumber(tc.path)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("pageNumber(%q) = %d,%v, want %d,%v", tc.path, got, ok, tc.want, tc.ok)
		}
	}
}
