package zones

import (
	"errors"
	"testing"
)

func boolPtr(b bool) *bool    { return &b }
func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func TestBuildZoneDefaults(t *testing.T) {
	b := mustBoundary(t, square(-97.2, 49.8, -97.0, 49.95))

	zone, err := buildZone(CreateZoneInput{Name: "Winnipeg", Boundary: &b})
	if err != nil {
		t.Fatalf("buildZone: %v", err)
	}

	if zone.ZoneID == "" {
		t.Error("expected a generated zone id")
	}
	if !zone.AllowPhoneCall || !zone.AllowHouseCall {
		t.Error("visit types should default to allowed")
	}
	if zone.PhoneCallsFull || zone.HouseCallsFull {
		t.Error("capacity flags should default to false")
	}
	if zone.Priority != 0 {
		t.Errorf("priority should default to 0, got %d", zone.Priority)
	}
	if !zone.IsActive {
		t.Error("zones should default to active")
	}
	if zone.Area != b.Area() {
		t.Errorf("area not computed from boundary: %f != %f", zone.Area, b.Area())
	}
}

func TestBuildZoneValidation(t *testing.T) {
	b := mustBoundary(t, square(0, 0, 1, 1))

	cases := []struct {
		name  string
		input CreateZoneInput
	}{
		{"missing name", CreateZoneInput{Boundary: &b}},
		{"missing boundary", CreateZoneInput{Name: "Somewhere"}},
		{"malformed boundary", CreateZoneInput{Name: "Somewhere", Boundary: &Boundary{geom: nil}}},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildZone(tt.input)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("expected *ValidationError, got %v", err)
			}
		})
	}
}

func TestApplyPatchPartialUpdate(t *testing.T) {
	b := mustBoundary(t, square(-97.2, 49.8, -97.0, 49.95))
	zone, err := buildZone(CreateZoneInput{Name: "Winnipeg", Boundary: &b, Priority: intPtr(5)})
	if err != nil {
		t.Fatalf("buildZone: %v", err)
	}

	// Toggle one capacity flag; everything else must survive.
	if err := applyPatch(zone, ZonePatch{HouseCallsFull: boolPtr(true)}); err != nil {
		t.Fatalf("applyPatch: %v", err)
	}

	if !zone.HouseCallsFull {
		t.Error("patched flag not applied")
	}
	if zone.Name != "Winnipeg" || zone.Priority != 5 || !zone.AllowPhoneCall || !zone.IsActive {
		t.Error("untouched fields changed during partial update")
	}

	// Replacing the boundary recomputes the stored area.
	bigger := mustBoundary(t, square(-98.0, 49.0, -96.0, 50.5))
	if err := applyPatch(zone, ZonePatch{Boundary: &bigger}); err != nil {
		t.Fatalf("applyPatch boundary: %v", err)
	}
	if zone.Area != bigger.Area() {
		t.Errorf("area not recomputed on boundary replace: %f != %f", zone.Area, bigger.Area())
	}
}

func TestApplyPatchRejectsInvalid(t *testing.T) {
	b := mustBoundary(t, square(0, 0, 1, 1))
	zone, err := buildZone(CreateZoneInput{Name: "Somewhere", Boundary: &b})
	if err != nil {
		t.Fatalf("buildZone: %v", err)
	}

	if err := applyPatch(zone, ZonePatch{Name: strPtr("")}); err == nil {
		t.Error("expected empty name to be rejected")
	}

	bad := Boundary{geom: nil}
	if err := applyPatch(zone, ZonePatch{Boundary: &bad}); err == nil {
		t.Error("expected malformed boundary to be rejected")
	}
	if zone.Name != "Somewhere" {
		t.Error("failed patch must not partially apply")
	}
}

func TestSortForMatching(t *testing.T) {
	zones := []Zone{
		{ZoneID: "d", Priority: 0, Area: 1.0, Seq: 4},
		{ZoneID: "b", Priority: 10, Area: 2.0, Seq: 2},
		{ZoneID: "a", Priority: 10, Area: 0.5, Seq: 3},
		{ZoneID: "c", Priority: 5, Area: 0.5, Seq: 1},
	}

	SortForMatching(zones)

	got := []string{zones[0].ZoneID, zones[1].ZoneID, zones[2].ZoneID, zones[3].ZoneID}
	want := []string{"a", "b", "c", "d"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order mismatch at %d: got %v, want %v", i, got, want)
		}
	}

	// Sorting again must not change anything.
	SortForMatching(zones)
	for i := range want {
		if zones[i].ZoneID != want[i] {
			t.Fatalf("sort is not idempotent at %d: got %s, want %s", i, zones[i].ZoneID, want[i])
		}
	}
}

func TestSortForMatchingSeqBreaksTies(t *testing.T) {
	zones := []Zone{
		{ZoneID: "newer", Priority: 3, Area: 1.5, Seq: 20},
		{ZoneID: "older", Priority: 3, Area: 1.5, Seq: 10},
	}

	SortForMatching(zones)

	if zones[0].ZoneID != "older" {
		t.Errorf("expected the older zone first on a full tie, got %s", zones[0].ZoneID)
	}
}
