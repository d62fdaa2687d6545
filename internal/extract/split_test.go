package extract

import (
	"testing"
)

func TestPageRanges_FortyPagesEightWorkers(t *testing.T) {
	ranges := PageRanges(40, 8)
	if len(ranges) != 8 {
		t.Fatalf("expected 8 ranges, got %d", len(ranges))
	}
	for i, r := range ranges {
		wantFirst := i*5 + 1
		wantLast := (i + 1) * 5
		if r.First != wantFirst || r.Last != wantLast {
			t.Fatalf("range %d = [%d,%d], want [%d,%d]", i, r.First, r.Last, wantFirst, wantLast)
		}
	}
}

func TestPageRanges_CoversExactlyOnce(t *testing.T) {
	cases := []struct{ total, workers int }{
		{1, 1}, {1, 8}, {7, 3}, {10, 4}, {100, 8}, {3, 16}, {16, 16}, {17, 16},
	}
	for _, tc := range cases {
		ranges := PageRanges(tc.total, tc.workers)
		seen := make(map[int]int)
		for _, r := range ranges {
			if r.First > r.Last {
				t.Fatalf("T=%d C=%d: inverted range [%d,%d]", tc.total, tc.workers, r.First, r.Last)
			}
			for p := r.First; p <= r.Last; p++ {
				seen[p]++
			}
		}
		for p := 1; p <= tc.total; p++ {
			if seen[p] != 1 {
				t.Fatalf("T=%d C=%d: page %d covered %d times", tc.total, tc.workers, p, seen[p])
			}
		}
		if len(seen) != tc.total {
			t.Fatalf("T=%d C=%d: covered %d pages, want %d", tc.total, tc.workers, len(seen), tc.total)
		}
	}
}

func TestPageRanges_RangeCountIsMinWorkersTotal(t *testing.T) {
	cases := []struct{ total, workers, want int }{
		{40, 8, 8},
		{3, 8, 3},
		{8, 3, 3},
		{1, 1, 1},
		{5, 5, 5},
	}
	for _, tc := range cases {
		if got := len(PageRanges(tc.total, tc.workers)); got != tc.want {
			t.Fatalf("T=%d C=%d: got %d ranges, want %d", tc.total, tc.workers, got, tc.want)
		}
	}
}

func TestPageRanges_Contiguous(t *testing.T) {
	ranges := PageRanges(17, 4)
	for i := 1; i < len(ranges); i++ {
		if ranges[i].First != ranges[i-1].Last+1 {
			t.Fatalf("ranges %d and %d are not contiguous: %v", i-1, i, ranges)
		}
	}
	if ranges[0].First != 1 || ranges[len(ranges)-1].Last != 17 {
		t.Fatalf("ranges do not span [1,17]: %v", ranges)
	}
}

func TestPageRanges_InvalidInput(t *testing.T) {
	if PageRanges(0, 4) != nil {
		t.Fatal("expected nil for zero pages")
	}
	if PageRanges(4, 0) != nil {
		t.Fatal("expected nil for zero workers")
	}
}
