package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"
)

// Result holds structured data from a Google Maps geocoding response.
type Result struct {
	Raw        string  `json:"raw"`
	Normalized string  `json:"normalized"` // Full formatted address
	Street     string  `json:"street"`
	City       string  `json:"city"`
	Province   string  `json:"province"` // 2-letter province abbreviation
	PostalCode string  `json:"postal_code"`
	Country    string  `json:"country"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
}

// Client wraps the Google Maps Geocoding API.
type Client struct {
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a geocoding client from the GOOGLE_MAPS_API_KEY env var.
// Returns nil, nil if the key is not set (graceful degradation).
func NewClient() (*Client, error) {
	key := os.Getenv("GOOGLE_MAPS_API_KEY")
	if key == "" {
		return nil, nil
	}
	return &Client{
		apiKey: key,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}, nil
}

type geocodeResponse struct {
	Results []geocodeResult `json:"results"`
	Status  string          `json:"status"`
}

type geocodeResult struct {
	AddressComponents []addressComponent `json:"address_components"`
	FormattedAddress  string             `json:"formatted_address"`
	Geometry          geometry           `json:"geometry"`
}

type addressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type geometry struct {
	Location latLng `json:"location"`
}

type latLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c *Client) fetch(ctx context.Context, u string) (*geocodeResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocoding request: %w", err)
	}
	defer resp.Body.Close()

	// Check HTTP status first
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding API returned HTTP %d: check that Geocoding API is enabled in Google Cloud Console", resp.StatusCode)
	}

	var geoResp geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&geoResp); err != nil {
		return nil, fmt.Errorf("decoding response (HTTP %d): %w", resp.StatusCode, err)
	}
	return &geoResp, nil
}

func toResult(raw string, r geocodeResult) *Result {
	out := &Result{
		Raw:        raw,
		Normalized: r.FormattedAddress,
		Country:    "Canada",
		Lat:        r.Geometry.Location.Lat,
		Lng:        r.Geometry.Location.Lng,
	}

	var streetNumber, streetName string
	for _, comp := range r.AddressComponents {
		for _, t := range comp.Types {
			switch t {
			case "street_number":
				streetNumber = comp.ShortName
			case "route":
				streetName = comp.LongName
			case "postal_code":
				out.PostalCode = comp.ShortName
			case "administrative_area_level_1":
				out.Province = comp.ShortName
			case "locality":
				out.City = comp.LongName
			case "country":
				out.Country = comp.LongName
			}
		}
	}
	if streetName != "" {
		out.Street = streetName
		if streetNumber != "" {
			out.Street = streetNumber + " " + streetName
		}
	}
	return out
}

// Geocode converts a free-form address string into structured location data.
func (c *Client) Geocode(ctx context.Context, address string) (*Result, error) {
	u := fmt.Sprintf("https://maps.googleapis.com/maps/api/geocode/json?address=%s&key=%s",
		url.QueryEscape(address), c.apiKey)

	geoResp, err := c.fetch(ctx, u)
	if err != nil {
		return nil, err
	}

	if geoResp.Status != "OK" {
		return nil, fmt.Errorf("geocoding failed: status=%s", geoResp.Status)
	}
	if len(geoResp.Results) == 0 {
		return nil, fmt.Errorf("geocoding returned no results for address")
	}

	return toResult(address, geoResp.Results[0]), nil
}

// ReverseGeocode converts coordinates back into an address. It never
// fails the caller: when the lookup comes up empty (or errors), the
// result degrades to a "Current Location" label with the coordinates —
// a booking made from a device fix must not be blocked by reverse
// lookup quality.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lng float64) *Result {
	fallback := &Result{
		Raw:        fmt.Sprintf("Current Location (%.6f, %.6f)", lat, lng),
		Normalized: fmt.Sprintf("Current Location (%.6f, %.6f)", lat, lng),
		Country:    "Canada",
		Lat:        lat,
		Lng:        lng,
	}

	u := fmt.Sprintf("https://maps.googleapis.com/maps/api/geocode/json?latlng=%f,%f&key=%s",
		lat, lng, c.apiKey)

	geoResp, err := c.fetch(ctx, u)
	if err != nil || geoResp.Status != "OK" || len(geoResp.Results) == 0 {
		return fallback
	}

	out := toResult("", geoResp.Results[0])
	out.Raw = out.Normalized
	out.Lat = lat
	out.Lng = lng
	return out
}
