// Package geo holds the raw GeoJSON containers and boundary helpers used by
// the multipatch converter.
//
// The containers keep coordinates as plain float64 slices rather than a
// geometry library's point type because multipatch exports carry the building
// shape in the third (Z) coordinate, which most 2D geometry types drop on
// decode.
package geo

import (
	"encoding/json"
	"fmt"
)

// Position is a single coordinate tuple: [x, y] or [x, y, z].
type Position = []float64

type FeatureCollection struct {
	Type     string          `json:"type"`
	CRS      json.RawMessage `json:"crs,omitempty"`
	Features []*Feature      `json:"features"`
}

type Feature struct {
	Type       string                 `json:"type"`
	ID         interface{}            `json:"id,omitempty"`
	Properties map[string]interface{} `json:"properties"`
	Geometry   *Geometry              `json:"geometry"`
}

// Geometry defers coordinate decoding until the geometry type is known.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Polygons returns the geometry as a list of polygons, each a list of rings.
// A Polygon geometry is promoted to a one-element MultiPolygon, since
// multipatch exports use either depending on the source layer.
func (g *Geometry) Polygons() ([][][]Position, error) {
	switch g.Type {
	case "MultiPolygon":
		var mp [][][]Position
		if err := json.Unmarshal(g.Coordinates, &mp); err != nil {
			return nil, err
		}
		return mp, nil
	case "Polygon":
		var p [][]Position
		if err := json.Unmarshal(g.Coordinates, &p); err != nil {
			return nil, err
		}
		return [][][]Position{p}, nil
	default:
		return nil, fmt.Errorf("geo: unsupported geometry type %q", g.Type)
	}
}
