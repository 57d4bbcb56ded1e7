package zones

import (
	"context"
	"log"

	"github.com/paulmach/orb"
)

// Coverage messages shown to the user. Selected solely by the two
// availability booleans; nothing else feeds into the copy.
const (
	msgBothAvailable = "Good news — we offer both phone and in-home visits in your area."
	msgPhoneOnly     = "We currently offer phone appointments in your area."
	msgHouseOnly     = "In-home doctor visits are available in your area."
	msgNotServed     = "Sorry — we don't currently serve this location."
)

// ZoneSource is what the resolver needs from the registry: the active
// zones in matching order. An interface so resolver tests run against
// an in-memory list.
type ZoneSource interface {
	ListActiveZonesByPriority(ctx context.Context) ([]Zone, error)
}

// Resolver answers "which zone serves this point, and with what". It
// only reads zones, never mutates them, and every call re-fetches —
// capacity flags change between requests, so results are never cached.
type Resolver struct {
	zones ZoneSource

	// strict makes a malformed boundary abort matching instead of
	// being skipped. Off by default: a coverage check should degrade
	// to "no coverage", not 500, when one zone's geometry is corrupt.
	strict bool
}

func NewResolver(src ZoneSource, strict bool) *Resolver {
	return &Resolver{zones: src, strict: strict}
}

// SkippedZone records one zone the resolver could not evaluate.
type SkippedZone struct {
	ZoneID string `json:"zone_id"`
	Reason string `json:"reason"`
}

// MatchReport aggregates per-zone evaluation defects from one matching
// pass. Empty on the happy path.
type MatchReport struct {
	Skipped []SkippedZone `json:"skipped,omitempty"`
}

// FindMatchingZone resolves a coordinate to the first active zone whose
// boundary contains it, in registry order (priority first). A nil zone
// with a nil error means no coverage — that's a normal outcome, not a
// failure. Zones whose boundary can't be evaluated are skipped with a
// reason (and logged) unless the resolver is strict.
func (rs *Resolver) FindMatchingZone(ctx context.Context, lat, lng float64) (*Zone, *MatchReport, error) {
	zones, err := rs.zones.ListActiveZonesByPriority(ctx)
	if err != nil {
		return nil, nil, &MatchError{Err: err}
	}

	point := orb.Point{lng, lat} // orb points are (x, y) = (lng, lat)
	report := &MatchReport{}

	for i := range zones {
		zone := &zones[i]
		inside, err := zone.Boundary.Contains(point)
		if err != nil {
			if rs.strict {
				return nil, report, &MatchError{ZoneID: zone.ZoneID, Err: err}
			}
			log.Printf("[ZoneMatch] skipping zone %s (%s): %v", zone.ZoneID, zone.Name, err)
			report.Skipped = append(report.Skipped, SkippedZone{ZoneID: zone.ZoneID, Reason: err.Error()})
			continue
		}
		if inside {
			return zone, report, nil
		}
	}

	return nil, report, nil
}

// VisitAvailability is the per-visit-type coverage decision for one
// location.
type VisitAvailability struct {
	PhoneCall bool   `json:"phone_call"`
	HouseCall bool   `json:"house_call"`
	Message   string `json:"message"`
	ZoneName  string `json:"zone_name,omitempty"`
}

// AvailableVisitTypes derives what a zone currently offers. A visit
// type is available when the zone allows it and capacity isn't
// exhausted; a nil zone means the location isn't served at all.
func AvailableVisitTypes(zone *Zone) VisitAvailability {
	if zone == nil {
		return VisitAvailability{Message: msgNotServed}
	}

	phone := zone.AllowPhoneCall && !zone.PhoneCallsFull
	house := zone.AllowHouseCall && !zone.HouseCallsFull

	var message string
	switch {
	case phone && house:
		message = msgBothAvailable
	case phone:
		message = msgPhoneOnly
	case house:
		message = msgHouseOnly
	default:
		message = msgNotServed
	}

	return VisitAvailability{
		PhoneCall: phone,
		HouseCall: house,
		Message:   message,
		ZoneName:  zone.Name,
	}
}

// ZoneRef is the identity of a matched zone — callers stamping a
// booking need the id and name, not the full record.
type ZoneRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CoverageResult is the full answer to a coverage check. Computed fresh
// per query.
type CoverageResult struct {
	Address         string            `json:"address"`
	Lat             float64           `json:"lat"`
	Lng             float64           `json:"lng"`
	Zone            *ZoneRef          `json:"zone"`
	AvailableTypes  VisitAvailability `json:"available_types"`
	IsInServiceArea bool              `json:"is_in_service_area"`
}

// CheckCoverage composes matching and the availability policy for one
// labelled coordinate.
func (rs *Resolver) CheckCoverage(ctx context.Context, label string, lat, lng float64) (*CoverageResult, error) {
	zone, _, err := rs.FindMatchingZone(ctx, lat, lng)
	if err != nil {
		return nil, err
	}

	types := AvailableVisitTypes(zone)

	result := &CoverageResult{
		Address:         label,
		Lat:             lat,
		Lng:             lng,
		AvailableTypes:  types,
		IsInServiceArea: types.PhoneCall || types.HouseCall,
	}
	if zone != nil {
		result.Zone = &ZoneRef{ID: zone.ZoneID, Name: zone.Name}
	}
	return result, nil
}
