package geo

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/golang/geo/s2"
)

// A Boundary is a named area of interest, such as a borough outline, used to
// clip a conversion run. Boundary coordinates must be geographic
// (longitude/latitude degrees); projected datasets cannot be boundary
// filtered.
type Boundary struct {
	Name string
	poly *s2.Polygon
}

// LoadBoundary reads a GeoJSON file whose first feature carries a Polygon or
// MultiPolygon and returns it as a Boundary. If the feature has a "name"
// property it becomes the boundary's name.
func LoadBoundary(path string) (*Boundary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("geo: error parsing boundary %s: %w", path, err)
	}
	if len(fc.Features) == 0 || fc.Features[0].Geometry == nil {
		return nil, fmt.Errorf("geo: boundary %s has no features", path)
	}
	feature := fc.Features[0]
	polys, err := feature.Geometry.Polygons()
	if err != nil {
		return nil, fmt.Errorf("geo: boundary %s: %w", path, err)
	}
	b := new(Boundary)
	if name, ok := feature.Properties["name"].(string); ok {
		b.Name = name
	}
	b.poly, err = buildPolygon(polys)
	if err != nil || b.poly.Area() > 2*math.Pi {
		// A backwards-wound boundary comes out as the complement region,
		// covering most of the globe. OpenStreetMap exports are often wound
		// this way; rewind once and rebuild before giving up.
		Rewind(polys)
		b.poly, err = buildPolygon(polys)
	}
	if err != nil {
		return nil, fmt.Errorf("geo: invalid boundary %s: %w", path, err)
	}
	return b, nil
}

func buildPolygon(polys [][][]Position) (*s2.Polygon, error) {
	loops := []*s2.Loop{}
	for _, poly := range polys {
		for _, ring := range poly {
			pts := []s2.Point{}
			for i, p := range ring {
				// s2 does not want the ring to end in its starting point
				if i == len(ring)-1 {
					continue
				}
				pts = append(pts, s2.PointFromLatLng(s2.LatLngFromDegrees(p[1], p[0])))
			}
			loops = append(loops, s2.LoopFromPoints(pts))
		}
	}
	poly := s2.PolygonFromOrientedLoops(loops)
	if err := poly.Validate(); err != nil {
		return nil, err
	}
	return poly, nil
}

// Contains reports whether the point is inside the boundary.
func (b *Boundary) Contains(lon, lat float64) bool {
	return b.poly.ContainsPoint(s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon)))
}
