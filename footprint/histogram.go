package footprint

import (
	"fmt"
	"strconv"

	"github.com/paulmach/orb/geojson"
)

// A Histogram buckets part heights at a fixed interval. The last bucket is
// open-ended.
type Histogram struct {
	interval float64
	unit     string
	average  float64
	Buckets  []int
}

// NewHistogram buckets heights (meters) at the given interval into n buckets.
func NewHistogram(heights []float64, interval float64, n int) *Histogram {
	h := &Histogram{
		interval: interval,
		unit:     "m",
		Buckets:  make([]int, n),
	}
	sum := 0.0
	for _, height := range heights {
		sum += height
		bucket := int(height / interval)
		if bucket >= n {
			bucket = n - 1
		}
		if bucket < 0 {
			bucket = 0
		}
		h.Buckets[bucket]++
	}
	if len(heights) > 0 {
		h.average = sum / float64(len(heights))
	}
	return h
}

func (h *Histogram) Average() string {
	return strconv.FormatFloat(h.average, 'f', 1, 64)
}

func (h *Histogram) Distrange(i int) string {
	s1 := strconv.FormatFloat(float64(i)*h.interval, 'f', -1, 64)
	s2 := strconv.FormatFloat(float64(i+1)*h.interval, 'f', -1, 64)
	if i == 0 {
		s1 = "0"
	}
	if i+1 == len(h.Buckets) {
		return s1 + h.unit + " and up"
	}
	return s1 + "-" + s2 + h.unit
}

func (h *Histogram) Percent(i int) string {
	sum := 0
	for j := 0; j < len(h.Buckets); j++ {
		sum += h.Buckets[j]
	}
	if sum == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(h.Buckets[i])/float64(sum))
}

// Heights collects the "height" property of every feature in a converted
// collection.
func Heights(fc *geojson.FeatureCollection) []float64 {
	heights := make([]float64, 0, len(fc.Features))
	for _, f := range fc.Features {
		switch v := f.Properties["height"].(type) {
		case float64:
			heights = append(heights, v)
		case int:
			heights = append(heights, float64(v))
		}
	}
	return heights
}
