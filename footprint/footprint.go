// Package footprint reduces 3D multipatch building geometry to flat polygons
// tagged with heights in meters.
//
// A multipatch building is a bag of planar patches: horizontal panels for the
// top and bottom of each part of the building, and vertical panels for the
// walls. Flattening keeps the horizontal panels, collapses each distinct
// outline to a single polygon whose height is the highest elevation that
// outline appears at, and drops the walls.
package footprint

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/golang/geo/r3"
	log "github.com/inconshreveable/log15"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"golang.org/x/sync/errgroup"

	"github.com/jmapb/nyc3dbuildings-multipatch-convertor/geo"
)

// Logger receives per-feature warnings unless Options.Logger overrides it.
var Logger = log.New("package", "footprint")

// DefaultTolerance is the elevation spread, in source units, below which two
// patch elevations belong to the same height band. The right value depends on
// the precision of the source survey, so it is exposed in Options.
const DefaultTolerance = 0.01

const feetToMeters = 0.3048

// Units of the source Z coordinates.
type Units string

const (
	Meters Units = "m"
	Feet   Units = "ft"
)

type Options struct {
	// Tolerance merges patch elevations within this distance (in source
	// units) into one height band. Zero merges exact matches only; a
	// negative value selects DefaultTolerance.
	Tolerance float64
	// Units of the source Z values, Meters or Feet. Output heights are
	// always meters, per RFC 7946. Empty means Meters.
	Units Units
	// RelativeHeight subtracts the feature's lowest patch elevation from
	// every height, so heights are above ground rather than above the
	// vertical datum.
	RelativeHeight bool
	// Boundary, if set, drops buildings that sit outside it. Only useful
	// when the dataset is in geographic coordinates.
	Boundary *geo.Boundary
	// Logger for per-feature warnings. Defaults to the package Logger.
	Logger log.Logger
}

// A Part is one horizontal slice of a building: the outline of a height band
// plus the band's elevation in meters.
type Part struct {
	Ring   orb.Ring
	Height float64
}

// Area returns the planar area of the part's outline, in squared source
// units. Higher parts of a building never exceed the area of its ground
// part.
func (p *Part) Area() float64 {
	return math.Abs(planar.Area(p.Ring))
}

// A Summary reports what happened during a conversion run.
type Summary struct {
	Features    int // features examined
	Parts       int // polygons written
	Skipped     int // features yielding no polygons, malformed or otherwise
	OutOfBounds int // features outside the boundary
}

// A PatchError describes a malformed patch that caused its whole feature to
// be dropped.
type PatchError struct {
	FeatureID interface{}
	Reason    string
}

func (e *PatchError) Error() string {
	return fmt.Sprintf("feature %v: %s", e.FeatureID, e.Reason)
}

type Extractor struct {
	tolerance float64
	units     Units
	relative  bool
	boundary  *geo.Boundary
	logger    log.Logger
}

func NewExtractor(opts Options) (*Extractor, error) {
	switch opts.Units {
	case "", Meters, Feet:
	default:
		return nil, fmt.Errorf("footprint: unknown units %q (want %q or %q)", opts.Units, Meters, Feet)
	}
	e := &Extractor{
		tolerance: opts.Tolerance,
		units:     opts.Units,
		relative:  opts.RelativeHeight,
		boundary:  opts.Boundary,
		logger:    opts.Logger,
	}
	if e.tolerance < 0 {
		e.tolerance = DefaultTolerance
	}
	if e.units == "" {
		e.units = Meters
	}
	if e.logger == nil {
		e.logger = Logger
	}
	return e, nil
}

// Extract reduces one multipatch feature to its height-banded parts. It is a
// pure function of the feature. A feature with no patches yields zero parts
// and a nil error; a feature with a malformed patch yields a *PatchError,
// which callers should treat as skip-and-continue.
func (e *Extractor) Extract(f *geo.Feature) ([]*Part, error) {
	if f == nil || f.Geometry == nil {
		return nil, nil
	}
	polys, err := f.Geometry.Polygons()
	if err != nil {
		return nil, &PatchError{FeatureID: f.ID, Reason: err.Error()}
	}

	type patchGroup struct {
		ring orb.Ring
		top  float64
	}
	groups := make(map[string]*patchGroup)
	// map iteration is random; remember first-seen order so repeated runs
	// produce identical output
	order := []string{}
	base := math.Inf(1)

	for _, poly := range polys {
		if len(poly) == 0 {
			continue
		}
		// Multipatch panels are plain rings; holes do not occur.
		ring := poly[0]
		// A closed triangle needs 4 positions.
		if len(ring) < 4 {
			return nil, &PatchError{f.ID, fmt.Sprintf("patch ring with %d positions", len(ring))}
		}
		for _, p := range ring {
			if len(p) < 3 {
				return nil, &PatchError{f.ID, "patch vertex without a Z coordinate"}
			}
		}
		if degenerate(ring) {
			return nil, &PatchError{f.ID, "zero-area patch"}
		}
		z, ok := e.elevation(ring)
		if !ok {
			// vertical wall panel
			continue
		}
		if z < base {
			base = z
		}
		flat := flatten(ring)
		key := ringKey(flat)
		g, ok := groups[key]
		if !ok {
			g = &patchGroup{ring: flat, top: z}
			groups[key] = g
			order = append(order, key)
		}
		// The same outline appears once for the top of a part and once for
		// its bottom; the part's height is the highest occurrence.
		if z > g.top {
			g.top = z
		}
	}
	if len(order) == 0 {
		return nil, nil
	}

	parts := make([]*Part, 0, len(order))
	for _, key := range order {
		parts = append(parts, &Part{Ring: groups[key].ring, Height: groups[key].top})
	}
	e.mergeBands(parts)
	if e.relative {
		for _, p := range parts {
			p.Height -= base
		}
	}
	if e.units == Feet {
		for _, p := range parts {
			p.Height *= feetToMeters
		}
	}
	return parts, nil
}

// elevation reports whether the patch is horizontal, and if so at which
// elevation. A patch is horizontal when its Z coordinates stay within the
// band tolerance; anything else is a wall.
func (e *Extractor) elevation(ring []geo.Position) (float64, bool) {
	lo, hi := ring[0][2], ring[0][2]
	for _, p := range ring[1:] {
		if p[2] < lo {
			lo = p[2]
		}
		if p[2] > hi {
			hi = p[2]
		}
	}
	if hi-lo > e.tolerance {
		return 0, false
	}
	return hi, true
}

// degenerate reports whether the patch has no measurable surface. The Newell
// normal of a ring is zero only when its vertices are collinear or the ring
// encloses no area in any orientation, which catches flat slivers and
// collapsed walls alike. The cutoff is absolute and assumes survey-scale
// coordinates (state-plane units or degrees, meter-sized buildings); a
// dataset measured in sub-millimeter units would need a smaller one.
func degenerate(ring []geo.Position) bool {
	var n r3.Vector
	for i := 0; i < len(ring)-1; i++ {
		p, q := ring[i], ring[i+1]
		n.X += (p[1] - q[1]) * (p[2] + q[2])
		n.Y += (p[2] - q[2]) * (p[0] + q[0])
		n.Z += (p[0] - q[0]) * (p[1] + q[1])
	}
	return n.Norm() < 1e-12
}

// mergeBands snaps heights within the tolerance of each other to the band's
// highest value, so coordinate noise cannot split one setback level into
// near-duplicate heights.
func (e *Extractor) mergeBands(parts []*Part) {
	if len(parts) < 2 {
		return
	}
	order := make([]int, len(parts))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return parts[order[a]].Height < parts[order[b]].Height
	})
	start := 0
	for i := 1; i <= len(order); i++ {
		if i < len(order) && parts[order[i]].Height-parts[order[i-1]].Height <= e.tolerance {
			continue
		}
		top := parts[order[i-1]].Height
		for j := start; j < i; j++ {
			parts[order[j]].Height = top
		}
		start = i
	}
}

func flatten(ring []geo.Position) orb.Ring {
	flat := make(orb.Ring, len(ring))
	for i, p := range ring {
		flat[i] = orb.Point{p[0], p[1]}
	}
	return flat
}

// ringKey builds a grouping key from the XY vertex sequence, ignoring Z, so
// the top and bottom panels of one building part collapse together.
func ringKey(ring orb.Ring) string {
	buf := make([]byte, 0, len(ring)*16)
	for _, p := range ring {
		buf = strconv.AppendFloat(buf, p[0], 'g', -1, 64)
		buf = append(buf, ',')
		buf = strconv.AppendFloat(buf, p[1], 'g', -1, 64)
		buf = append(buf, ';')
	}
	return string(buf)
}

// Convert flattens every feature in the collection into a new GeoJSON
// feature collection: one Polygon per building part, with the source
// feature's properties plus a "height" property in meters. Malformed
// features are skipped with a warning; the batch keeps going.
func Convert(fc *geo.FeatureCollection, opts Options) (*geojson.FeatureCollection, *Summary, error) {
	return ConvertParallel(fc, opts, 1)
}

// ConvertParallel is Convert with per-feature extraction fanned out across
// workers. Each feature's extraction is independent, and parts are assembled
// in input order, so the output is byte-identical to the sequential
// conversion.
func ConvertParallel(fc *geo.FeatureCollection, opts Options, workers int) (*geojson.FeatureCollection, *Summary, error) {
	e, err := NewExtractor(opts)
	if err != nil {
		return nil, nil, err
	}
	if workers < 1 {
		workers = 1
	}
	results := make([][]*Part, len(fc.Features))
	errs := make([]error, len(fc.Features))
	group := errgroup.Group{}
	group.SetLimit(workers)
	for i := range fc.Features {
		i := i
		group.Go(func() error {
			results[i], errs[i] = e.Extract(fc.Features[i])
			return nil
		})
	}
	// Extraction failures are per-feature and recoverable, so the workers
	// never return an error.
	group.Wait()

	out := geojson.NewFeatureCollection()
	if len(fc.CRS) > 0 {
		out.ExtraMembers = map[string]interface{}{"crs": json.RawMessage(fc.CRS)}
	}
	sum := new(Summary)
	for i, f := range fc.Features {
		sum.Features++
		if errs[i] != nil {
			e.logger.Warn("skipping malformed feature", "index", i, "err", errs[i])
			sum.Skipped++
			continue
		}
		parts := results[i]
		if len(parts) == 0 {
			if f != nil && f.Geometry != nil {
				e.logger.Warn("feature has no horizontal patches", "index", i, "id", f.ID)
			}
			sum.Skipped++
			continue
		}
		if e.boundary != nil {
			anchor := parts[0].Ring[0]
			if !e.boundary.Contains(anchor[0], anchor[1]) {
				sum.OutOfBounds++
				continue
			}
		}
		for _, part := range parts {
			nf := geojson.NewFeature(orb.Polygon{part.Ring})
			for k, v := range f.Properties {
				nf.Properties[k] = v
			}
			nf.Properties["height"] = part.Height
			out.Append(nf)
			sum.Parts++
		}
	}
	return out, sum, nil
}
