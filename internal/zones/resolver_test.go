package zones

import (
	"context"
	"errors"
	"testing"

	"github.com/paulmach/orb"
)

// mockSource feeds the resolver a fixed zone list, already in matching
// order.
type mockSource struct {
	zones []Zone
	err   error
}

func (m *mockSource) ListActiveZonesByPriority(ctx context.Context) ([]Zone, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]Zone, len(m.zones))
	copy(out, m.zones)
	SortForMatching(out)
	return out, nil
}

func testZone(t *testing.T, id string, priority int, poly orb.Polygon) Zone {
	t.Helper()
	b := mustBoundary(t, poly)
	return Zone{
		ZoneID:         id,
		Name:           id,
		Boundary:       b,
		Area:           b.Area(),
		AllowPhoneCall: true,
		AllowHouseCall: true,
		Priority:       priority,
		IsActive:       true,
	}
}

func TestFindMatchingZonePriorityWins(t *testing.T) {
	// Both zones contain the point; the higher priority one must win
	// even though it is larger.
	big := testZone(t, "metro", 0, square(-98, 49, -96, 51))
	small := testZone(t, "downtown", 10, square(-97.2, 49.85, -97.1, 49.92))

	rs := NewResolver(&mockSource{zones: []Zone{big, small}}, false)

	zone, _, err := rs.FindMatchingZone(context.Background(), 49.89, -97.15)
	if err != nil {
		t.Fatalf("FindMatchingZone: %v", err)
	}
	if zone == nil || zone.ZoneID != "downtown" {
		t.Errorf("expected downtown to win on priority, got %+v", zone)
	}
}

func TestFindMatchingZoneSmallestAreaWinsTie(t *testing.T) {
	big := testZone(t, "big", 5, square(-98, 49, -96, 51))
	small := testZone(t, "small", 5, square(-97.3, 49.8, -97.0, 50.0))

	rs := NewResolver(&mockSource{zones: []Zone{big, small}}, false)

	zone, _, err := rs.FindMatchingZone(context.Background(), 49.9, -97.15)
	if err != nil {
		t.Fatalf("FindMatchingZone: %v", err)
	}
	if zone == nil || zone.ZoneID != "small" {
		t.Errorf("expected the smaller zone to win an equal-priority overlap, got %+v", zone)
	}
}

func TestFindMatchingZoneDeterministic(t *testing.T) {
	a := testZone(t, "a", 5, square(-98, 49, -96, 51))
	b := testZone(t, "b", 5, square(-98, 49, -96, 51))
	a.Seq, b.Seq = 2, 1

	rs := NewResolver(&mockSource{zones: []Zone{a, b}}, false)

	var first string
	for i := 0; i < 5; i++ {
		zone, _, err := rs.FindMatchingZone(context.Background(), 49.9, -97.1)
		if err != nil {
			t.Fatalf("FindMatchingZone: %v", err)
		}
		if zone == nil {
			t.Fatal("expected a match")
		}
		if i == 0 {
			first = zone.ZoneID
			continue
		}
		if zone.ZoneID != first {
			t.Fatalf("matching is not deterministic: %s then %s", first, zone.ZoneID)
		}
	}
	if first != "b" {
		t.Errorf("expected the lower seq to win a full tie, got %s", first)
	}
}

func TestFindMatchingZoneNoCoverage(t *testing.T) {
	rs := NewResolver(&mockSource{zones: []Zone{
		testZone(t, "metro", 0, square(-98, 49, -96, 51)),
	}}, false)

	// A point well outside the only zone: nil zone, nil error.
	zone, report, err := rs.FindMatchingZone(context.Background(), 43.65, -79.38)
	if err != nil {
		t.Fatalf("no coverage must not be an error, got %v", err)
	}
	if zone != nil {
		t.Errorf("expected no match, got %s", zone.ZoneID)
	}
	if len(report.Skipped) != 0 {
		t.Errorf("expected no skipped zones, got %v", report.Skipped)
	}
}

func TestFindMatchingZoneDeactivatedFallsThrough(t *testing.T) {
	big := testZone(t, "metro", 0, square(-98, 49, -96, 51))
	small := testZone(t, "downtown", 10, square(-97.2, 49.85, -97.1, 49.92))

	// With only the outer zone active, the point falls through to it.
	rs := NewResolver(&mockSource{zones: []Zone{big}}, false)
	zone, _, err := rs.FindMatchingZone(context.Background(), 49.89, -97.15)
	if err != nil {
		t.Fatalf("FindMatchingZone: %v", err)
	}
	if zone == nil || zone.ZoneID != "metro" {
		t.Errorf("expected fall-through to metro, got %+v", zone)
	}

	// Sanity: with both active the inner zone wins.
	rs = NewResolver(&mockSource{zones: []Zone{big, small}}, false)
	zone, _, _ = rs.FindMatchingZone(context.Background(), 49.89, -97.15)
	if zone == nil || zone.ZoneID != "downtown" {
		t.Errorf("expected downtown with both zones active, got %+v", zone)
	}
}

// corruptZone builds a zone whose boundary failed to decode, the way a
// bad jsonb row comes out of the database.
func corruptZone(t *testing.T, id string, priority int) Zone {
	t.Helper()
	var b Boundary
	if err := b.Scan([]byte(`{"type":"Polygon","coordinates":"garbage"`)); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	return Zone{ZoneID: id, Name: id, Boundary: b, AllowPhoneCall: true, AllowHouseCall: true, Priority: priority, IsActive: true}
}

func TestFindMatchingZoneSkipsMalformedBoundary(t *testing.T) {
	bad := corruptZone(t, "corrupt", 10)
	good := testZone(t, "metro", 0, square(-98, 49, -96, 51))

	rs := NewResolver(&mockSource{zones: []Zone{bad, good}}, false)

	zone, report, err := rs.FindMatchingZone(context.Background(), 49.9, -97.1)
	if err != nil {
		t.Fatalf("FindMatchingZone: %v", err)
	}
	if zone == nil || zone.ZoneID != "metro" {
		t.Errorf("expected the corrupt zone to be skipped, got %+v", zone)
	}
	if len(report.Skipped) != 1 || report.Skipped[0].ZoneID != "corrupt" {
		t.Errorf("expected corrupt zone in skip report, got %v", report.Skipped)
	}
	if report.Skipped[0].Reason == "" {
		t.Error("skip report should carry a reason")
	}
}

func TestFindMatchingZoneStrictFailsClosed(t *testing.T) {
	bad := corruptZone(t, "corrupt", 10)
	good := testZone(t, "metro", 0, square(-98, 49, -96, 51))

	rs := NewResolver(&mockSource{zones: []Zone{bad, good}}, true)

	_, _, err := rs.FindMatchingZone(context.Background(), 49.9, -97.1)
	var merr *MatchError
	if !errors.As(err, &merr) {
		t.Fatalf("expected *MatchError in strict mode, got %v", err)
	}
	if merr.ZoneID != "corrupt" {
		t.Errorf("expected the failing zone id on the error, got %q", merr.ZoneID)
	}
}

func TestFindMatchingZoneSourceError(t *testing.T) {
	wantErr := errors.New("connection refused")
	rs := NewResolver(&mockSource{err: wantErr}, false)

	_, _, err := rs.FindMatchingZone(context.Background(), 49.9, -97.1)
	var merr *MatchError
	if !errors.As(err, &merr) {
		t.Fatalf("expected *MatchError, got %v", err)
	}
	if !errors.Is(err, wantErr) {
		t.Error("MatchError should unwrap to the source error")
	}
}

func TestAvailableVisitTypes(t *testing.T) {
	tests := []struct {
		name      string
		zone      *Zone
		phone     bool
		house     bool
		message   string
	}{
		{"no zone", nil, false, false, msgNotServed},
		{"both available", &Zone{Name: "z", AllowPhoneCall: true, AllowHouseCall: true}, true, true, msgBothAvailable},
		{"phone only by policy", &Zone{Name: "z", AllowPhoneCall: true}, true, false, msgPhoneOnly},
		{"house only by policy", &Zone{Name: "z", AllowHouseCall: true}, false, true, msgHouseOnly},
		{"house calls at capacity", &Zone{Name: "z", AllowPhoneCall: true, AllowHouseCall: true, HouseCallsFull: true}, true, false, msgPhoneOnly},
		{"phone calls at capacity", &Zone{Name: "z", AllowPhoneCall: true, AllowHouseCall: true, PhoneCallsFull: true}, false, true, msgHouseOnly},
		{"everything full", &Zone{Name: "z", AllowPhoneCall: true, AllowHouseCall: true, PhoneCallsFull: true, HouseCallsFull: true}, false, false, msgNotServed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AvailableVisitTypes(tt.zone)
			if got.PhoneCall != tt.phone || got.HouseCall != tt.house {
				t.Errorf("availability: got (%v, %v), want (%v, %v)", got.PhoneCall, got.HouseCall, tt.phone, tt.house)
			}
			if got.Message != tt.message {
				t.Errorf("message: got %q, want %q", got.Message, tt.message)
			}
			if tt.zone != nil && got.ZoneName != tt.zone.Name {
				t.Errorf("zone name: got %q, want %q", got.ZoneName, tt.zone.Name)
			}
		})
	}
}

func TestCheckCoverage(t *testing.T) {
	zone := testZone(t, "downtown", 10, square(-97.2, 49.85, -97.1, 49.92))
	zone.AllowHouseCall = false
	rs := NewResolver(&mockSource{zones: []Zone{zone}}, false)

	result, err := rs.CheckCoverage(context.Background(), "123 Main St", 49.89, -97.15)
	if err != nil {
		t.Fatalf("CheckCoverage: %v", err)
	}
	if !result.IsInServiceArea {
		t.Error("expected the point to be in the service area")
	}
	if result.Zone == nil || result.Zone.ID != "downtown" {
		t.Errorf("expected a zone ref, got %+v", result.Zone)
	}
	if result.AvailableTypes.HouseCall {
		t.Error("house calls should be unavailable by policy")
	}
	if result.Address != "123 Main St" || result.Lat != 49.89 || result.Lng != -97.15 {
		t.Error("result must echo the queried location")
	}

	// Outside every zone: served=false with a nil zone ref.
	result, err = rs.CheckCoverage(context.Background(), "elsewhere", 43.65, -79.38)
	if err != nil {
		t.Fatalf("CheckCoverage outside: %v", err)
	}
	if result.IsInServiceArea || result.Zone != nil {
		t.Errorf("expected no coverage, got %+v", result)
	}
	if result.AvailableTypes.Message != msgNotServed {
		t.Errorf("expected the not-served message, got %q", result.AvailableTypes.Message)
	}
}
