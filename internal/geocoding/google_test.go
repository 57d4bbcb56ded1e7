package geocoding

import (
	"context"
	"os"
	"testing"
)

func TestGeocode(t *testing.T) {
	// This test requires GOOGLE_MAPS_API_KEY to be set
	if os.Getenv("GOOGLE_MAPS_API_KEY") == "" {
		t.Skip("GOOGLE_MAPS_API_KEY not set")
	}

	client, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client == nil {
		t.Fatal("Expected non-nil client when API key is set")
	}

	ctx := context.Background()

	result, err := client.Geocode(ctx, "510 Main St, Winnipeg, MB")
	if err != nil {
		t.Logf("Geocode error: %v", err)
		t.Logf("This might mean the Google Maps Geocoding API is not enabled for this key.")
		t.FailNow()
	}

	t.Logf("Geocoded result: %+v", result)

	if result.Province != "MB" {
		t.Errorf("Expected province MB, got %s", result.Province)
	}
	if result.Lat == 0 || result.Lng == 0 {
		t.Errorf("Expected non-zero coordinates, got (%f, %f)", result.Lat, result.Lng)
	}
}

func TestReverseGeocode(t *testing.T) {
	if os.Getenv("GOOGLE_MAPS_API_KEY") == "" {
		t.Skip("GOOGLE_MAPS_API_KEY not set")
	}

	client, err := NewClient()
	if err != nil || client == nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	result := client.ReverseGeocode(context.Background(), 49.8951, -97.1384)
	if result == nil {
		t.Fatal("expected non-nil result")
	}
	// ReverseGeocode never fails: worst case is the coordinate label.
	if result.Normalized == "" {
		t.Error("expected a normalized address or fallback label")
	}
	if result.Lat != 49.8951 || result.Lng != -97.1384 {
		t.Errorf("expected coordinates preserved, got (%f, %f)", result.Lat, result.Lng)
	}
}
