package bookings

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/DoctorHouseCalls/DHC-Backend/internal/audit"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/db"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/utils"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/zones"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

// parseTimeFilter accepts RFC3339 or a bare date.
func parseTimeFilter(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func applyBookingFilters(q *gorm.DB, r *http.Request) *gorm.DB {
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if zoneID := r.URL.Query().Get("zone_id"); zoneID != "" {
		q = q.Where("zone_id = ?", zoneID)
	}
	if visitType := r.URL.Query().Get("visit_type"); visitType != "" {
		q = q.Where("visit_type = ?", visitType)
	}
	if start := r.URL.Query().Get("start_date"); start != "" {
		if t, ok := parseTimeFilter(start); ok {
			q = q.Where("created_at >= ?", t)
		}
	}
	if end := r.URL.Query().Get("end_date"); end != "" {
		if t, ok := parseTimeFilter(end); ok {
			q = q.Where("created_at <= ?", t)
		}
	}
	return q
}

// GetAllBookings is the admin list with optional status, zone, visit
// type and date range filters.
func GetAllBookings(w http.ResponseWriter, r *http.Request) {
	var list []Booking
	q := applyBookingFilters(db.DB.Model(&Booking{}), r)
	if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, list)
}

// GetBookingDetails returns one booking without ownership checks; the
// router already requires the admin role.
func GetBookingDetails(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "id")

	var booking Booking
	if err := db.DB.First(&booking, "booking_id = ?", bookingID).Error; err != nil {
		http.Error(w, "Booking not found", http.StatusNotFound)
		return
	}

	writeJSON(w, booking)
}

type statusUpdateRequest struct {
	Status        string     `json:"status"`
	ProviderID    string     `json:"provider_id"`
	ProviderName  string     `json:"provider_name"`
	ScheduledTime *time.Time `json:"scheduled_time"`
	Reason        string     `json:"reason"`
}

// UpdateBookingStatus moves a booking through the dispatcher workflow
// and optionally assigns a provider or scheduled time.
func UpdateBookingStatus(w http.ResponseWriter, r *http.Request) {
	adminID, _ := utils.GetUserIDFromContext(r.Context())
	bookingID := chi.URLParam(r, "id")

	var booking Booking
	if err := db.DB.First(&booking, "booking_id = ?", bookingID).Error; err != nil {
		http.Error(w, "Booking not found", http.StatusNotFound)
		return
	}

	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	oldStatus := booking.Status

	if req.Status != "" {
		if !validStatus(req.Status) {
			http.Error(w, "Invalid status", http.StatusBadRequest)
			return
		}
		booking.Status = req.Status
	}
	if req.ProviderID != "" {
		booking.ProviderID = req.ProviderID
	}
	if req.ProviderName != "" {
		booking.ProviderName = req.ProviderName
	}
	if req.ScheduledTime != nil {
		booking.ScheduledTime = req.ScheduledTime
	}

	if err := db.DB.Save(&booking).Error; err != nil {
		log.Println("Error updating booking:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	action := audit.ActionBookingUpdated
	switch req.Status {
	case StatusConfirmed:
		action = audit.ActionBookingConfirmed
	case StatusCancelled:
		action = audit.ActionBookingCancelled
	}

	ip, ua := audit.RequestMeta(r)
	audit.Record(r.Context(), audit.Entry{
		Action:     action,
		AdminID:    adminID,
		EntityType: "booking",
		EntityID:   booking.BookingID,
		Changes:    audit.Changes{"old_status": oldStatus, "new_status": booking.Status},
		Reason:     req.Reason,
		IPAddress:  ip,
		UserAgent:  ua,
	})

	writeJSON(w, booking)
}

type overrideRequest struct {
	OverrideZoneID string `json:"override_zone_id"`
	PhoneCall      *bool  `json:"phone_call"`
	HouseCall      *bool  `json:"house_call"`
	Reason         string `json:"reason"`
}

// OverrideBooking lets an admin re-zone a booking or unlock visit types
// the matched zone would not allow. A reason is mandatory: overrides
// are exceptional and every one is audited.
func OverrideBooking(w http.ResponseWriter, r *http.Request) {
	adminID, _ := utils.GetUserIDFromContext(r.Context())
	bookingID := chi.URLParam(r, "id")

	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Reason == "" {
		http.Error(w, "Reason is required for override", http.StatusBadRequest)
		return
	}

	var booking Booking
	if err := db.DB.First(&booking, "booking_id = ?", bookingID).Error; err != nil {
		http.Error(w, "Booking not found", http.StatusNotFound)
		return
	}

	now := time.Now()
	booking.IsOverridden = true
	booking.OriginalZoneID = booking.ZoneID
	booking.OverrideReason = req.Reason
	booking.OverriddenBy = adminID
	booking.OverriddenAt = &now
	booking.OverridePhoneCall = req.PhoneCall
	booking.OverrideHouseCall = req.HouseCall

	if req.OverrideZoneID != "" {
		booking.OverrideZoneID = req.OverrideZoneID
		booking.ZoneID = req.OverrideZoneID
		if zone, err := zones.DefaultRegistry.GetZone(r.Context(), req.OverrideZoneID); err == nil {
			booking.MatchedZoneName = zone.Name
		}
	} else {
		booking.OverrideZoneID = booking.ZoneID
	}

	if err := db.DB.Save(&booking).Error; err != nil {
		log.Println("Error overriding booking:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	ip, ua := audit.RequestMeta(r)
	audit.Record(r.Context(), audit.Entry{
		Action:     audit.ActionBookingOverridden,
		AdminID:    adminID,
		EntityType: "booking",
		EntityID:   booking.BookingID,
		Changes: audit.Changes{
			"original_zone_id": booking.OriginalZoneID,
			"override_zone_id": booking.OverrideZoneID,
			"phone_call":       req.PhoneCall,
			"house_call":       req.HouseCall,
		},
		Reason:    req.Reason,
		IPAddress: ip,
		UserAgent: ua,
	})

	writeJSON(w, booking)
}

type heatmapPoint struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	VisitType string    `json:"visit_type"`
	CreatedAt time.Time `json:"created_at"`
}

// GetLocationHeatmap returns booking coordinates for the admin map,
// filterable by date range and visit type.
func GetLocationHeatmap(w http.ResponseWriter, r *http.Request) {
	var points []heatmapPoint
	q := applyBookingFilters(db.DB.Model(&Booking{}), r)
	if err := q.Select("lat", "lng", "visit_type", "created_at").Find(&points).Error; err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, points)
}
