package zones

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Registry owns zone records: structural validation on write, partial
// updates, and the deterministic ordering the resolver matches against.
type Registry struct {
	db *gorm.DB
}

func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// CreateZoneInput carries the writable fields for a new zone. Nil
// optionals take the documented defaults (calls allowed, priority 0,
// active).
type CreateZoneInput struct {
	Name           string    `json:"name"`
	Boundary       *Boundary `json:"boundary"`
	AllowPhoneCall *bool     `json:"allow_phone_call"`
	AllowHouseCall *bool     `json:"allow_house_call"`
	Priority       *int      `json:"priority"`
	IsActive       *bool     `json:"is_active"`
}

// ZonePatch is a partial update: only non-nil fields are applied,
// everything else keeps its prior value.
type ZonePatch struct {
	Name           *string   `json:"name"`
	Boundary       *Boundary `json:"boundary"`
	AllowPhoneCall *bool     `json:"allow_phone_call"`
	AllowHouseCall *bool     `json:"allow_house_call"`
	PhoneCallsFull *bool     `json:"phone_calls_full"`
	HouseCallsFull *bool     `json:"house_calls_full"`
	Priority       *int      `json:"priority"`
	IsActive       *bool     `json:"is_active"`
}

// buildZone validates a create input and materializes a Zone with
// defaults applied. Pure so the validation rules are testable without a
// database.
func buildZone(input CreateZoneInput) (*Zone, error) {
	if input.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "name is required"}
	}
	if input.Boundary == nil {
		return nil, &ValidationError{Field: "boundary", Reason: "boundary is required"}
	}
	if err := input.Boundary.Validate(); err != nil {
		return nil, err
	}

	zone := &Zone{
		ZoneID:         uuid.NewString(),
		Name:           input.Name,
		Boundary:       *input.Boundary,
		Area:           input.Boundary.Area(),
		AllowPhoneCall: true,
		AllowHouseCall: true,
		IsActive:       true,
	}
	if input.AllowPhoneCall != nil {
		zone.AllowPhoneCall = *input.AllowPhoneCall
	}
	if input.AllowHouseCall != nil {
		zone.AllowHouseCall = *input.AllowHouseCall
	}
	if input.Priority != nil {
		zone.Priority = *input.Priority
	}
	if input.IsActive != nil {
		zone.IsActive = *input.IsActive
	}
	return zone, nil
}

// applyPatch copies the present fields of the patch onto the zone.
// Pure; validation of a replacement boundary happens here too.
func applyPatch(zone *Zone, patch ZonePatch) error {
	if patch.Name != nil {
		if *patch.Name == "" {
			return &ValidationError{Field: "name", Reason: "name cannot be empty"}
		}
		zone.Name = *patch.Name
	}
	if patch.Boundary != nil {
		if err := patch.Boundary.Validate(); err != nil {
			return err
		}
		zone.Boundary = *patch.Boundary
		zone.Area = patch.Boundary.Area()
	}
	if patch.AllowPhoneCall != nil {
		zone.AllowPhoneCall = *patch.AllowPhoneCall
	}
	if patch.AllowHouseCall != nil {
		zone.AllowHouseCall = *patch.AllowHouseCall
	}
	if patch.PhoneCallsFull != nil {
		zone.PhoneCallsFull = *patch.PhoneCallsFull
	}
	if patch.HouseCallsFull != nil {
		zone.HouseCallsFull = *patch.HouseCallsFull
	}
	if patch.Priority != nil {
		zone.Priority = *patch.Priority
	}
	if patch.IsActive != nil {
		zone.IsActive = *patch.IsActive
	}
	return nil
}

func (r *Registry) CreateZone(ctx context.Context, input CreateZoneInput) (*Zone, error) {
	zone, err := buildZone(input)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Create(zone).Error; err != nil {
		return nil, fmt.Errorf("creating zone: %w", err)
	}
	return zone, nil
}

func (r *Registry) GetZone(ctx context.Context, id string) (*Zone, error) {
	var zone Zone
	err := r.db.WithContext(ctx).First(&zone, "zone_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrZoneNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching zone %s: %w", id, err)
	}
	return &zone, nil
}

func (r *Registry) UpdateZone(ctx context.Context, id string, patch ZonePatch) (*Zone, error) {
	zone, err := r.GetZone(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyPatch(zone, patch); err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Save(zone).Error; err != nil {
		return nil, fmt.Errorf("updating zone %s: %w", id, err)
	}
	return zone, nil
}

// SetActive toggles a zone in or out of matching without touching
// anything else.
func (r *Registry) SetActive(ctx context.Context, id string, active bool) (*Zone, error) {
	return r.UpdateZone(ctx, id, ZonePatch{IsActive: &active})
}

// DeleteZone removes the zone permanently. Bookings keep their
// denormalized matched_zone_name snapshot, so nothing else needs to be
// touched.
func (r *Registry) DeleteZone(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&Zone{}, "zone_id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("deleting zone %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrZoneNotFound
	}
	return nil
}

// ListZones returns every zone for the admin console, newest first
// within each priority band.
func (r *Registry) ListZones(ctx context.Context) ([]Zone, error) {
	var zones []Zone
	err := r.db.WithContext(ctx).
		Order("priority DESC").Order("created_at DESC").
		Find(&zones).Error
	if err != nil {
		return nil, fmt.Errorf("listing zones: %w", err)
	}
	return zones, nil
}

// ListActiveZonesByPriority returns the zones the resolver iterates, in
// matching order. Sorting happens in SortForMatching rather than in SQL
// so the rule lives in exactly one place and never depends on what the
// store happens to return.
func (r *Registry) ListActiveZonesByPriority(ctx context.Context) ([]Zone, error) {
	var zones []Zone
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Find(&zones).Error
	if err != nil {
		return nil, fmt.Errorf("listing active zones: %w", err)
	}
	SortForMatching(zones)
	return zones, nil
}

// SortForMatching orders zones the way the resolver evaluates them:
// priority DESC, then area ASC (the smallest zone wins an equal-priority
// overlap), then seq ASC (the oldest zone wins if areas are equal too).
// Every key is a persisted field, so the order is reproducible.
func SortForMatching(zones []Zone) {
	sort.SliceStable(zones, func(i, j int) bool {
		if zones[i].Priority != zones[j].Priority {
			return zones[i].Priority > zones[j].Priority
		}
		if zones[i].Area != zones[j].Area {
			return zones[i].Area < zones[j].Area
		}
		return zones[i].Seq < zones[j].Seq
	})
}
