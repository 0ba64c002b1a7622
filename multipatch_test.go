package multipatch

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "golden.geojson"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	fc, err := Load(f)
	if err != nil {
		t.Fatal(err)
	}
	if len(fc.Features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(fc.Features))
	}
	if fc.CRS == nil {
		t.Error("expected the crs member to survive the round trip")
	}
	polys, err := fc.Features[0].Geometry.Polygons()
	if err != nil {
		t.Fatal(err)
	}
	if len(polys) != 4 {
		t.Errorf("expected 4 patches in the first feature, got %d", len(polys))
	}
	if got := len(polys[0][0][0]); got != 3 {
		t.Errorf("expected 3 coordinates per vertex, got %d", got)
	}
}

func TestLoadRejectsNonCollection(t *testing.T) {
	_, err := Load(strings.NewReader(`{"type": "Feature"}`))
	if err == nil {
		t.Fatal("expected an error for a bare feature")
	}
	if !strings.Contains(err.Error(), "FeatureCollection") {
		t.Errorf("unhelpful error: %v", err)
	}
}

func TestLoadDir(t *testing.T) {
	fc, err := LoadDir("testdata")
	if err != nil {
		t.Fatal(err)
	}
	if len(fc.Features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(fc.Features))
	}
	if fc.CRS == nil {
		t.Error("merged collection should keep the first declared crs")
	}
}

func TestLoadDirEmpty(t *testing.T) {
	if _, err := LoadDir(t.TempDir()); err == nil {
		t.Fatal("expected an error for a directory with no datasets")
	}
}

func BenchmarkLoad(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		f, err := os.Open(filepath.Join("testdata", "golden.geojson"))
		if err != nil {
			b.Fatal(err)
		}
		inf, err := f.Stat()
		if err != nil {
			b.Fatal(err)
		}
		b.SetBytes(inf.Size())
		fc, err := Load(bufio.NewReader(f))
		if err != nil {
			b.Fatal(err)
		}
		if len(fc.Features) == 0 {
			b.Fatal("expected to see non-zero features, got 0")
		}
		if err := f.Close(); err != nil {
			b.Fatal(err)
		}
	}
}
