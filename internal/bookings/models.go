package bookings

import (
	"time"
)

// Booking statuses. A booking starts as "new" and moves through the
// dispatcher workflow from there.
const (
	StatusNew         = "new"
	StatusNeedsReview = "needs_review"
	StatusConfirmed   = "confirmed"
	StatusCompleted   = "completed"
	StatusCancelled   = "cancelled"
)

const (
	VisitPhoneCall = "phone_call"
	VisitHouseCall = "house_call"
)

func validStatus(s string) bool {
	switch s {
	case StatusNew, StatusNeedsReview, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func validVisitType(v string) bool {
	return v == VisitPhoneCall || v == VisitHouseCall
}

// Booking is one visit request. Patient fields are a snapshot taken at
// booking time so later edits to the family member don't rewrite
// history. Zone fields are a stamp of what matching found when the
// booking was created.
type Booking struct {
	BookingID string `gorm:"primaryKey" json:"id"`
	UserID    string `gorm:"index" json:"user_id"`
	Status    string `gorm:"default:'new';index" json:"status"`
	VisitType string `gorm:"not null" json:"visit_type"`

	AddressRaw        string `gorm:"not null" json:"address_raw"`
	AddressNormalized string `json:"address_normalized,omitempty"`
	Street            string `json:"street,omitempty"`
	City              string `json:"city,omitempty"`
	Province          string `json:"province,omitempty"`
	PostalCode        string `json:"postal_code,omitempty"`
	Country           string `gorm:"default:'Canada'" json:"country"`
	Lat               float64 `gorm:"index:idx_bookings_location" json:"lat"`
	Lng               float64 `gorm:"index:idx_bookings_location" json:"lng"`

	UnitBuzzer         string `json:"unit_buzzer,omitempty"`
	AccessInstructions string `json:"access_instructions,omitempty"`

	ZoneID          string `gorm:"index" json:"zone_id,omitempty"`
	MatchedZoneName string `json:"matched_zone_name,omitempty"`

	FamilyMemberID   string    `gorm:"index" json:"family_member_id,omitempty"`
	PatientFirstName string    `gorm:"not null" json:"patient_first_name"`
	PatientLastName  string    `gorm:"not null" json:"patient_last_name"`
	PatientDOB       time.Time `gorm:"not null" json:"patient_dob"`
	PatientPHIN      string    `json:"patient_phin,omitempty"`
	PatientMHSC      string    `json:"patient_mhsc,omitempty"`

	ContactPhone       string `gorm:"not null" json:"contact_phone"`
	ContactEmail       string `json:"contact_email,omitempty"`
	ConfirmationMethod string `gorm:"default:'email'" json:"confirmation_method"`

	ReasonForVisit string `json:"reason_for_visit,omitempty"`
	Notes          string `json:"notes,omitempty"`

	PreferredStart *time.Time `json:"preferred_start,omitempty"`
	PreferredEnd   *time.Time `json:"preferred_end,omitempty"`
	ScheduledTime  *time.Time `json:"scheduled_time,omitempty"`

	IsOverridden      bool       `gorm:"default:false" json:"is_overridden"`
	OriginalZoneID    string     `json:"original_zone_id,omitempty"`
	OverrideZoneID    string     `json:"override_zone_id,omitempty"`
	OverridePhoneCall *bool      `json:"override_phone_call,omitempty"`
	OverrideHouseCall *bool      `json:"override_house_call,omitempty"`
	OverrideReason    string     `json:"override_reason,omitempty"`
	OverriddenBy      string     `json:"overridden_by,omitempty"`
	OverriddenAt      *time.Time `json:"overridden_at,omitempty"`

	ProviderID   string `json:"provider_id,omitempty"`
	ProviderName string `json:"provider_name,omitempty"`

	AckNotForEmergencies bool `gorm:"default:false" json:"ack_not_for_emergencies"`
	AckCall911           bool `gorm:"default:false" json:"ack_call_911"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Booking) TableName() string {
	return "care.bookings"
}

// FamilyMember is a patient profile under a user's account. Deletes are
// soft: the row stays for bookings that snapshot it, it just stops
// showing up.
type FamilyMember struct {
	MemberID  string    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"not null;index:idx_family_user_active" json:"user_id"`
	FirstName string    `gorm:"not null" json:"first_name"`
	LastName  string    `gorm:"not null" json:"last_name"`
	DOB       time.Time `gorm:"not null" json:"dob"`
	ImageURL  string    `json:"image_url,omitempty"`
	Address   string    `json:"address,omitempty"`
	PHIN      string    `json:"phin,omitempty"`
	MHSC      string    `json:"mhsc,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	IsActive  bool      `gorm:"default:true;index:idx_family_user_active" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (FamilyMember) TableName() string {
	return "care.family_members"
}
