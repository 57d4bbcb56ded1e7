package zones

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Boundary is a zone's coverage geometry: a GeoJSON Polygon or
// MultiPolygon, nothing else. Keeping the variant closed means the
// matching code never has to inspect geometry types at runtime.
//
// Containment rule: points on a ring edge belong to the zone. That is
// the contract of planar.PolygonContains and we rely on it directly.
type Boundary struct {
	geom orb.Geometry

	// parseErr records a decode failure from the database instead of
	// failing the whole zone fetch. The resolver turns it into a
	// per-zone skip so one corrupt boundary can't block matching.
	parseErr error
}

// NewBoundary wraps a polygonal geometry. Anything other than a Polygon
// or MultiPolygon is rejected.
func NewBoundary(g orb.Geometry) (Boundary, error) {
	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon:
		return Boundary{geom: g}, nil
	default:
		return Boundary{}, &ValidationError{Field: "boundary", Reason: fmt.Sprintf("geometry type %s is not supported, use Polygon or MultiPolygon", g.GeoJSONType())}
	}
}

// Geometry returns the wrapped geometry, or nil if the boundary failed
// to decode from storage.
func (b Boundary) Geometry() orb.Geometry { return b.geom }

// Contains reports whether the point lies inside the boundary. For a
// MultiPolygon each member polygon is tested in listed order; a hit in
// any of them counts. Returns the stored parse error if the boundary
// could not be decoded.
func (b Boundary) Contains(p orb.Point) (bool, error) {
	if b.parseErr != nil {
		return false, b.parseErr
	}
	switch g := b.geom.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, p), nil
	case orb.MultiPolygon:
		for _, poly := range g {
			if planar.PolygonContains(poly, p) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("boundary has no geometry")
	}
}

// Area returns the planar area of the boundary in squared degrees. Only
// used to order equal-priority zones (smaller area wins), so the units
// don't matter as long as they're consistent.
func (b Boundary) Area() float64 {
	if b.geom == nil {
		return 0
	}
	return planar.Area(b.geom)
}

// Validate enforces the structural rules for administrative writes:
// every ring needs at least 4 points and must close (first == last).
func (b Boundary) Validate() error {
	if b.parseErr != nil {
		return &ValidationError{Field: "boundary", Reason: b.parseErr.Error()}
	}
	switch g := b.geom.(type) {
	case orb.Polygon:
		if reason := polygonProblem(g); reason != "" {
			return &ValidationError{Field: "boundary", Reason: reason}
		}
		return nil
	case orb.MultiPolygon:
		if len(g) == 0 {
			return &ValidationError{Field: "boundary", Reason: "multipolygon has no polygons"}
		}
		for i, poly := range g {
			if reason := polygonProblem(poly); reason != "" {
				return &ValidationError{Field: "boundary", Reason: fmt.Sprintf("polygon %d: %s", i, reason)}
			}
		}
		return nil
	default:
		return &ValidationError{Field: "boundary", Reason: "boundary is required"}
	}
}

// polygonProblem returns a human-readable structural defect, or "" if
// the polygon is well-formed.
func polygonProblem(p orb.Polygon) string {
	if len(p) == 0 {
		return "polygon has no rings"
	}
	for i, ring := range p {
		if len(ring) < 4 {
			return fmt.Sprintf("ring %d has %d points, need at least 4", i, len(ring))
		}
		if !ring.Closed() {
			return fmt.Sprintf("ring %d is not closed (first and last point differ)", i)
		}
	}
	return ""
}

func (b Boundary) MarshalJSON() ([]byte, error) {
	if b.geom == nil {
		return []byte("null"), nil
	}
	return geojson.NewGeometry(b.geom).MarshalJSON()
}

func (b *Boundary) UnmarshalJSON(data []byte) error {
	var g geojson.Geometry
	if err := json.Unmarshal(data, &g); err != nil {
		return fmt.Errorf("decoding boundary geojson: %w", err)
	}
	nb, err := NewBoundary(g.Geometry())
	if err != nil {
		return err
	}
	*b = nb
	return nil
}

// Value stores the boundary as a GeoJSON jsonb column.
func (b Boundary) Value() (driver.Value, error) {
	if b.geom == nil {
		return nil, nil
	}
	out, err := geojson.NewGeometry(b.geom).MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(out), nil
}

// Scan decodes a GeoJSON jsonb column. Decode failures are retained on
// the Boundary rather than returned, so a corrupt row still loads and
// the resolver can skip it with a reason.
func (b *Boundary) Scan(src any) error {
	if src == nil {
		*b = Boundary{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		*b = Boundary{parseErr: fmt.Errorf("unsupported boundary column type %T", src)}
		return nil
	}
	var nb Boundary
	if err := nb.UnmarshalJSON(data); err != nil {
		*b = Boundary{parseErr: err}
		return nil
	}
	*b = nb
	return nil
}
