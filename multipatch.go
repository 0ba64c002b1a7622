// Package multipatch loads ESRI Multipatch building models that have been
// exported to GeoJSON (for example with ogr2ogr) so they can be flattened
// into height-tagged footprint polygons.
//
// The binary multipatch format itself is not parsed here; the export step is
// expected to preserve the Z coordinate of every vertex, which is where the
// building massing lives.
package multipatch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jmapb/nyc3dbuildings-multipatch-convertor/geo"
)

// Version is the current release of this library and its tools.
const Version = "0.3"

// Load reads a multipatch feature collection from rdr. Features must carry
// Polygon or MultiPolygon geometry with three coordinates per vertex.
func Load(rdr io.Reader) (*geo.FeatureCollection, error) {
	fc := new(geo.FeatureCollection)
	if err := json.NewDecoder(rdr).Decode(fc); err != nil {
		return nil, err
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("multipatch: expected a FeatureCollection, got %q", fc.Type)
	}
	return fc, nil
}

// LoadFile loads a multipatch feature collection from a file on disk.
func LoadFile(path string) (*geo.FeatureCollection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(bufio.NewReader(f))
}

// LoadDir loads every .json and .geojson file in dir and concatenates their
// features into a single collection. Files are read in parallel; features
// keep the order of the sorted file names. The CRS of the first file that
// declares one is kept for the merged collection.
func LoadDir(dir string) (*geo.FeatureCollection, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.HasSuffix(entry.Name(), ".json") && !strings.HasSuffix(entry.Name(), ".geojson") {
			continue
		}
		names = append(names, filepath.Join(dir, entry.Name()))
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("multipatch: no .json or .geojson files in %s", dir)
	}
	collections := make([]*geo.FeatureCollection, len(names))
	group := errgroup.Group{}
	for i := range names {
		i := i
		group.Go(func() error {
			fc, err := LoadFile(names[i])
			if err != nil {
				return fmt.Errorf("error loading %s: %w", names[i], err)
			}
			collections[i] = fc
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	merged := &geo.FeatureCollection{Type: "FeatureCollection"}
	for _, fc := range collections {
		if merged.CRS == nil && fc.CRS != nil {
			merged.CRS = fc.CRS
		}
		merged.Features = append(merged.Features, fc.Features...)
	}
	return merged, nil
}
