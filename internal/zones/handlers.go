package zones

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/DoctorHouseCalls/DHC-Backend/internal/audit"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
)

func formatCoords(lat, lng float64) string {
	return fmt.Sprintf("%.6f,%.6f", lat, lng)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeZoneError maps registry errors onto HTTP statuses.
func writeZoneError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		http.Error(w, verr.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrZoneNotFound):
		http.Error(w, "Zone not found", http.StatusNotFound)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// GetActiveZones is the public "we serve these areas" list.
func GetActiveZones(w http.ResponseWriter, r *http.Request) {
	zones, err := DefaultRegistry.ListActiveZonesByPriority(r.Context())
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	summaries := make([]ZoneSummary, 0, len(zones))
	for _, z := range zones {
		summaries = append(summaries, ZoneSummary{
			Name:           z.Name,
			AllowPhoneCall: z.AllowPhoneCall,
			AllowHouseCall: z.AllowHouseCall,
			Priority:       z.Priority,
		})
	}

	writeJSON(w, summaries)
}

type coverageCheckRequest struct {
	Address string   `json:"address"`
	Lat     *float64 `json:"lat"`
	Lng     *float64 `json:"lng"`
}

// CheckServiceCoverage resolves an address or coordinate pair to a
// coverage decision. Resolver failures degrade to a best-effort "no
// coverage" answer rather than a 500 — the booking funnel stays open.
func CheckServiceCoverage(w http.ResponseWriter, r *http.Request) {
	var body coverageCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var label string
	var lat, lng float64

	switch {
	case body.Address != "":
		if Geocoder == nil {
			http.Error(w, "Geocoding is not configured", http.StatusServiceUnavailable)
			return
		}
		loc, err := Geocoder.Geocode(r.Context(), body.Address)
		if err != nil {
			log.Printf("[CheckCoverage] geocoding failed for %q: %v", body.Address, err)
			http.Error(w, "Address could not be geocoded", http.StatusBadRequest)
			return
		}
		label = loc.Normalized
		lat, lng = loc.Lat, loc.Lng
	case body.Lat != nil && body.Lng != nil:
		lat, lng = *body.Lat, *body.Lng
		label = formatCoords(lat, lng)
	default:
		http.Error(w, "Provide address or lat and lng", http.StatusBadRequest)
		return
	}

	coverage, err := DefaultResolver.CheckCoverage(r.Context(), label, lat, lng)
	if err != nil {
		log.Printf("[CheckCoverage] matching failed for %q: %v", label, err)
		coverage = &CoverageResult{
			Address:        label,
			Lat:            lat,
			Lng:            lng,
			AvailableTypes: AvailableVisitTypes(nil),
		}
	}

	writeJSON(w, coverage)
}

// GetAllZones returns every zone, boundaries included, for the admin
// console.
func GetAllZones(w http.ResponseWriter, r *http.Request) {
	zones, err := DefaultRegistry.ListZones(r.Context())
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, zones)
}

func CreateZoneHandler(w http.ResponseWriter, r *http.Request) {
	var input CreateZoneInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	zone, err := DefaultRegistry.CreateZone(r.Context(), input)
	if err != nil {
		writeZoneError(w, err)
		return
	}

	adminID, _ := utils.GetUserIDFromContext(r.Context())
	ip, ua := audit.RequestMeta(r)
	audit.Record(r.Context(), audit.Entry{
		Action:     audit.ActionZoneCreated,
		AdminID:    adminID,
		EntityType: "zone",
		EntityID:   zone.ZoneID,
		Changes:    audit.Changes{"name": zone.Name, "priority": zone.Priority},
		IPAddress:  ip,
		UserAgent:  ua,
	})

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, zone)
}

func UpdateZoneHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch ZonePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	zone, err := DefaultRegistry.UpdateZone(r.Context(), id, patch)
	if err != nil {
		writeZoneError(w, err)
		return
	}

	adminID, _ := utils.GetUserIDFromContext(r.Context())
	ip, ua := audit.RequestMeta(r)
	audit.Record(r.Context(), audit.Entry{
		Action:     audit.ActionZoneUpdated,
		AdminID:    adminID,
		EntityType: "zone",
		EntityID:   zone.ZoneID,
		Changes:    audit.Changes{"patch": patch},
		IPAddress:  ip,
		UserAgent:  ua,
	})

	writeJSON(w, zone)
}

func DeleteZoneHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := DefaultRegistry.DeleteZone(r.Context(), id); err != nil {
		writeZoneError(w, err)
		return
	}

	adminID, _ := utils.GetUserIDFromContext(r.Context())
	ip, ua := audit.RequestMeta(r)
	audit.Record(r.Context(), audit.Entry{
		Action:     audit.ActionZoneDeleted,
		AdminID:    adminID,
		EntityType: "zone",
		EntityID:   id,
		Changes:    audit.Changes{"deleted": true},
		IPAddress:  ip,
		UserAgent:  ua,
	})

	writeJSON(w, map[string]string{"message": "Zone deleted successfully"})
}

type zoneTestResponse struct {
	Address        any               `json:"address"`
	Zone           *Zone             `json:"zone"`
	AvailableTypes VisitAvailability `json:"available_types"`
	Skipped        []SkippedZone     `json:"skipped_zones,omitempty"`
}

// TestZoneMatching lets an administrator validate zone configuration
// before publishing: geocode an address, run the matcher, and surface
// the full zone record plus any zones that could not be evaluated.
func TestZoneMatching(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Address == "" {
		http.Error(w, "Address is required", http.StatusBadRequest)
		return
	}

	if Geocoder == nil {
		http.Error(w, "Geocoding is not configured", http.StatusServiceUnavailable)
		return
	}
	loc, err := Geocoder.Geocode(r.Context(), body.Address)
	if err != nil {
		http.Error(w, "Address could not be geocoded", http.StatusBadRequest)
		return
	}

	zone, report, err := DefaultResolver.FindMatchingZone(r.Context(), loc.Lat, loc.Lng)
	if err != nil {
		http.Error(w, "Zone matching failed", http.StatusInternalServerError)
		return
	}

	resp := zoneTestResponse{
		Address:        loc,
		Zone:           zone,
		AvailableTypes: AvailableVisitTypes(zone),
	}
	if report != nil {
		resp.Skipped = report.Skipped
	}
	writeJSON(w, resp)
}
