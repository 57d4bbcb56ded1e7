package bookings

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/DoctorHouseCalls/DHC-Backend/internal/audit"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/auth"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/db"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/geocoding"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/notifications"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/utils"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/zones"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func isAdmin(userID string) bool {
	var user auth.User
	if err := db.DB.First(&user, "user_id = ?", userID).Error; err != nil {
		return false
	}
	return user.Role == "admin"
}

type safetyAcks struct {
	NotForEmergencies *bool `json:"not_for_emergencies"`
	Call911           *bool `json:"call_911_acknowledged"`
}

type createBookingRequest struct {
	FamilyMemberID     string      `json:"family_member_id"`
	VisitType          string      `json:"visit_type"`
	Address            string      `json:"address"`
	Lat                *float64    `json:"lat"`
	Lng                *float64    `json:"lng"`
	UnitBuzzer         string      `json:"unit_buzzer"`
	AccessInstructions string      `json:"access_instructions"`
	ContactPhone       string      `json:"contact_phone"`
	ContactEmail       string      `json:"contact_email"`
	ConfirmationMethod string      `json:"confirmation_method"`
	ReasonForVisit     string      `json:"reason_for_visit"`
	Notes              string      `json:"notes"`
	PreferredStart     *time.Time  `json:"preferred_start"`
	PreferredEnd       *time.Time  `json:"preferred_end"`
	Safety             *safetyAcks `json:"safety_acknowledgements"`
}

// resolveLocation turns the request's location input into a geocoded
// result. Coordinates always succeed: reverse geocoding degrades to a
// plain "Current Location" label rather than failing the booking.
func resolveLocation(r *http.Request, req createBookingRequest) (*geocoding.Result, int, string) {
	switch {
	case req.Lat != nil && req.Lng != nil:
		if zones.Geocoder != nil {
			return zones.Geocoder.ReverseGeocode(r.Context(), *req.Lat, *req.Lng), 0, ""
		}
		label := fmt.Sprintf("Current Location (%.6f, %.6f)", *req.Lat, *req.Lng)
		return &geocoding.Result{
			Raw:        label,
			Normalized: label,
			Country:    "Canada",
			Lat:        *req.Lat,
			Lng:        *req.Lng,
		}, 0, ""
	case req.Address != "":
		if zones.Geocoder == nil {
			return nil, http.StatusServiceUnavailable, "Address lookup is unavailable"
		}
		loc, err := zones.Geocoder.Geocode(r.Context(), req.Address)
		if err != nil {
			return nil, http.StatusBadRequest, "Could not locate that address"
		}
		return loc, 0, ""
	default:
		return nil, http.StatusBadRequest, "Location is required. Provide lat/lng (from current location) or address"
	}
}

// visitTypeAllowed reports whether the requested visit type is offered
// by the matched zone's current availability.
func visitTypeAllowed(visitType string, avail zones.VisitAvailability) bool {
	switch visitType {
	case VisitPhoneCall:
		return avail.PhoneCall
	case VisitHouseCall:
		return avail.HouseCall
	}
	return false
}

// zoneRestrictionError decides whether a booking must be rejected for
// its location, and with what user-facing message. With enforcement off
// the matched zone is recorded best effort but never blocks a booking.
func zoneRestrictionError(visitType string, zone *zones.Zone) (string, bool) {
	if !enforceZoneRestriction {
		return "", false
	}
	types := zones.AvailableVisitTypes(zone)
	if visitTypeAllowed(visitType, types) {
		return "", false
	}
	return types.Message, true
}

// CreateBooking is the app booking flow: select patient, visit details,
// location, book.
func CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.FamilyMemberID == "" {
		http.Error(w, "Please select a patient", http.StatusBadRequest)
		return
	}
	if req.ContactPhone == "" {
		http.Error(w, "Phone number is required", http.StatusBadRequest)
		return
	}
	if req.ContactEmail == "" {
		http.Error(w, "Email address is required", http.StatusBadRequest)
		return
	}
	if !validVisitType(req.VisitType) {
		http.Error(w, "Please select visit type: phone_call or house_call", http.StatusBadRequest)
		return
	}

	loc, status, msg := resolveLocation(r, req)
	if loc == nil {
		http.Error(w, msg, status)
		return
	}

	// Zone matching is best effort at booking time: a resolver failure
	// stamps no zone but never blocks the booking.
	zone, _, err := zones.DefaultResolver.FindMatchingZone(r.Context(), loc.Lat, loc.Lng)
	if err != nil {
		log.Printf("[Bookings] zone match failed for (%f, %f): %v", loc.Lat, loc.Lng, err)
		zone = nil
	}

	if msg, rejected := zoneRestrictionError(req.VisitType, zone); rejected {
		http.Error(w, msg, http.StatusUnprocessableEntity)
		return
	}

	var member FamilyMember
	err = db.DB.First(&member, "member_id = ? AND user_id = ? AND is_active = ?", req.FamilyMemberID, userID, true).Error
	if err != nil {
		http.Error(w, "Patient not found. Please select a valid patient.", http.StatusBadRequest)
		return
	}

	// Safety acknowledgements default to accepted unless explicitly declined.
	ackEmergencies, ack911 := true, true
	if req.Safety != nil {
		if req.Safety.NotForEmergencies != nil {
			ackEmergencies = *req.Safety.NotForEmergencies
		}
		if req.Safety.Call911 != nil {
			ack911 = *req.Safety.Call911
		}
	}

	confirmationMethod := req.ConfirmationMethod
	if confirmationMethod != "sms" {
		confirmationMethod = "email"
	}

	addressRaw := req.Address
	if addressRaw == "" {
		addressRaw = loc.Raw
	}

	booking := Booking{
		BookingID:            uuid.NewString(),
		UserID:               userID,
		Status:               StatusNew,
		VisitType:            req.VisitType,
		AddressRaw:           addressRaw,
		AddressNormalized:    loc.Normalized,
		Street:               loc.Street,
		City:                 loc.City,
		Province:             loc.Province,
		PostalCode:           loc.PostalCode,
		Country:              loc.Country,
		Lat:                  loc.Lat,
		Lng:                  loc.Lng,
		UnitBuzzer:           req.UnitBuzzer,
		AccessInstructions:   req.AccessInstructions,
		FamilyMemberID:       member.MemberID,
		PatientFirstName:     member.FirstName,
		PatientLastName:      member.LastName,
		PatientDOB:           member.DOB,
		PatientPHIN:          member.PHIN,
		PatientMHSC:          member.MHSC,
		ContactPhone:         req.ContactPhone,
		ContactEmail:         req.ContactEmail,
		ConfirmationMethod:   confirmationMethod,
		ReasonForVisit:       req.ReasonForVisit,
		Notes:                req.Notes,
		PreferredStart:       req.PreferredStart,
		PreferredEnd:         req.PreferredEnd,
		AckNotForEmergencies: ackEmergencies,
		AckCall911:           ack911,
	}
	if zone != nil {
		booking.ZoneID = zone.ZoneID
		booking.MatchedZoneName = zone.Name
	}

	if err := db.DB.Create(&booking).Error; err != nil {
		log.Println("Error creating booking:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	notifications.SendBookingConfirmation(r.Context(), notifications.Confirmation{
		BookingID:   booking.BookingID,
		Method:      booking.ConfirmationMethod,
		Email:       booking.ContactEmail,
		Phone:       booking.ContactPhone,
		VisitType:   booking.VisitType,
		PatientName: booking.PatientFirstName + " " + booking.PatientLastName,
		Address:     booking.AddressNormalized,
	})

	ip, ua := audit.RequestMeta(r)
	audit.Record(r.Context(), audit.Entry{
		Action:     audit.ActionBookingCreated,
		UserID:     userID,
		EntityType: "booking",
		EntityID:   booking.BookingID,
		Changes: audit.Changes{
			"visit_type": booking.VisitType,
			"zone_id":    booking.ZoneID,
			"zone_name":  booking.MatchedZoneName,
		},
		IPAddress: ip,
		UserAgent: ua,
	})

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, booking)
}

// GetMyBookings lists the requesting user's bookings, newest first.
func GetMyBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var list []Booking
	err := db.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&list).Error
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, list)
}

// GetBooking returns one booking, visible to its owner or an admin.
func GetBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	bookingID := chi.URLParam(r, "id")

	var booking Booking
	if err := db.DB.First(&booking, "booking_id = ?", bookingID).Error; err != nil {
		http.Error(w, "Booking not found", http.StatusNotFound)
		return
	}

	if booking.UserID != userID && !isAdmin(userID) {
		http.Error(w, "Not authorized to access this booking", http.StatusForbidden)
		return
	}

	writeJSON(w, booking)
}
