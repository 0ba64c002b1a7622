package footprint

import "testing"

func TestHistogram(t *testing.T) {
	heights := []float64{3, 12, 18, 25, 94, 250}
	hist := NewHistogram(heights, 10, 4)
	want := []int{1, 2, 1, 2}
	for i, count := range want {
		if hist.Buckets[i] != count {
			t.Errorf("bucket %d: got %d, want %d", i, hist.Buckets[i], count)
		}
	}
	if got := hist.Distrange(0); got != "0-10m" {
		t.Errorf("Distrange(0) = %q", got)
	}
	if got := hist.Distrange(3); got != "30m and up" {
		t.Errorf("Distrange(3) = %q", got)
	}
	if got := hist.Percent(1); got != "33.3%" {
		t.Errorf("Percent(1) = %q", got)
	}
	if got := hist.Average(); got != "67.0" {
		t.Errorf("Average() = %q", got)
	}
}

func TestHistogramEmpty(t *testing.T) {
	hist := NewHistogram(nil, 10, 4)
	if got := hist.Percent(0); got != "0.0%" {
		t.Errorf("Percent(0) = %q", got)
	}
	if got := hist.Average(); got != "0.0" {
		t.Errorf("Average() = %q", got)
	}
}
