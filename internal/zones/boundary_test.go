package zones

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
)

// square builds a closed rectangular ring from two corners.
func square(minLng, minLat, maxLng, maxLat float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{minLng, minLat},
		{maxLng, minLat},
		{maxLng, maxLat},
		{minLng, maxLat},
		{minLng, minLat},
	}}
}

func mustBoundary(t *testing.T, g orb.Geometry) Boundary {
	t.Helper()
	b, err := NewBoundary(g)
	if err != nil {
		t.Fatalf("NewBoundary: %v", err)
	}
	return b
}

func TestNewBoundaryRejectsNonPolygonal(t *testing.T) {
	_, err := NewBoundary(orb.LineString{{0, 0}, {1, 1}})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for LineString, got %v", err)
	}
}

func TestBoundaryValidate(t *testing.T) {
	tests := []struct {
		name    string
		geom    orb.Geometry
		wantErr bool
	}{
		{"valid polygon", square(-97.2, 49.8, -97.0, 49.95), false},
		{"valid multipolygon", orb.MultiPolygon{square(0, 0, 1, 1), square(2, 2, 3, 3)}, false},
		{"open ring", orb.Polygon{orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}}}, true},
		{"too few points", orb.Polygon{orb.Ring{{0, 0}, {1, 0}, {0, 0}}}, true},
		{"empty polygon", orb.Polygon{}, true},
		{"empty multipolygon", orb.MultiPolygon{}, true},
		{"multipolygon with bad member", orb.MultiPolygon{square(0, 0, 1, 1), {orb.Ring{{0, 0}, {1, 0}, {0, 0}}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Boundary{geom: tt.geom}
			err := b.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
			if tt.wantErr {
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("expected *ValidationError, got %T", err)
				}
			}
		})
	}
}

func TestBoundaryContains(t *testing.T) {
	b := mustBoundary(t, square(-97.2, 49.8, -97.0, 49.95))

	inside, err := b.Contains(orb.Point{-97.1, 49.9})
	if err != nil || !inside {
		t.Errorf("interior point: got inside=%v err=%v", inside, err)
	}

	outside, err := b.Contains(orb.Point{-96.5, 49.9})
	if err != nil || outside {
		t.Errorf("exterior point: got inside=%v err=%v", outside, err)
	}

	// Points on a ring edge belong to the zone.
	onEdge, err := b.Contains(orb.Point{-97.2, 49.9})
	if err != nil || !onEdge {
		t.Errorf("edge point: got inside=%v err=%v", onEdge, err)
	}

	onVertex, err := b.Contains(orb.Point{-97.2, 49.8})
	if err != nil || !onVertex {
		t.Errorf("vertex point: got inside=%v err=%v", onVertex, err)
	}
}

func TestBoundaryContainsMultiPolygon(t *testing.T) {
	b := mustBoundary(t, orb.MultiPolygon{
		square(0, 0, 1, 1),
		square(10, 10, 11, 11),
	})

	inSecond, err := b.Contains(orb.Point{10.5, 10.5})
	if err != nil || !inSecond {
		t.Errorf("point in second member: got inside=%v err=%v", inSecond, err)
	}

	between, err := b.Contains(orb.Point{5, 5})
	if err != nil || between {
		t.Errorf("point between members: got inside=%v err=%v", between, err)
	}
}

func TestBoundaryScanRetainsParseError(t *testing.T) {
	var b Boundary
	if err := b.Scan([]byte(`{"type":"Polygon","coordinates":"garbage"`)); err != nil {
		t.Fatalf("Scan should not fail on corrupt geojson, got %v", err)
	}

	_, err := b.Contains(orb.Point{0, 0})
	if err == nil {
		t.Error("expected Contains to surface the retained parse error")
	}
	if err := b.Validate(); err == nil {
		t.Error("expected Validate to surface the retained parse error")
	}
}

func TestBoundaryScanNull(t *testing.T) {
	var b Boundary
	if err := b.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if b.Geometry() != nil {
		t.Error("expected empty geometry for NULL column")
	}
}

func TestBoundaryValueRoundTrip(t *testing.T) {
	b := mustBoundary(t, square(-97.2, 49.8, -97.0, 49.95))

	val, err := b.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var decoded Boundary
	if err := decoded.Scan(val); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	inside, err := decoded.Contains(orb.Point{-97.1, 49.9})
	if err != nil || !inside {
		t.Errorf("decoded boundary lost containment: inside=%v err=%v", inside, err)
	}
	if decoded.Area() != b.Area() {
		t.Errorf("area changed across storage: %f != %f", decoded.Area(), b.Area())
	}
}
