package notifications

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Audience types for admin-authored notifications.
const (
	AudienceSingleUser  = "single_user"
	AudienceBooking     = "booking_id"
	AudienceServiceZone = "service_zone"
	AudienceAllUsers    = "all_users"
)

const (
	StatusPending   = "pending"
	StatusScheduled = "scheduled"
	StatusSent      = "sent"
	StatusFailed    = "failed"
)

func validAudience(t string) bool {
	switch t {
	case AudienceSingleUser, AudienceBooking, AudienceServiceZone, AudienceAllUsers:
		return true
	}
	return false
}

// DeliveryRecord is the per-device outcome of one send attempt.
type DeliveryRecord struct {
	UserID      string     `json:"user_id"`
	DeviceToken string     `json:"device_token"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
}

// DeliveryStatus is the full delivery trail, stored as jsonb.
type DeliveryStatus []DeliveryRecord

func (d DeliveryStatus) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	out, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(out), nil
}

func (d *DeliveryStatus) Scan(src any) error {
	if src == nil {
		*d = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported delivery status column type %T", src)
	}
	return json.Unmarshal(data, d)
}

// PushNotification is an admin-authored message. RecipientUserIDs is
// filled when the audience is resolved at send time, so the user feed
// can query membership without re-running audience logic.
type PushNotification struct {
	NotificationID string `gorm:"primaryKey" json:"id"`
	Title          string `gorm:"not null" json:"title"`
	Body           string `gorm:"not null" json:"body"`

	AudienceType      string `gorm:"not null" json:"audience_type"`
	AudienceUserID    string `json:"audience_user_id,omitempty"`
	AudienceBookingID string `json:"audience_booking_id,omitempty"`
	AudienceZoneID    string `json:"audience_zone_id,omitempty"`

	DeliveryType string `gorm:"default:'push_only'" json:"delivery_type"`
	DeepLink     string `json:"deep_link,omitempty"`

	ScheduledFor *time.Time `gorm:"index" json:"scheduled_for,omitempty"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	Status       string     `gorm:"default:'pending';index" json:"status"`

	RecipientUserIDs pq.StringArray `gorm:"type:text[]" json:"recipient_user_ids,omitempty"`
	Delivery         DeliveryStatus `gorm:"type:jsonb" json:"delivery,omitempty"`

	SentBy    string    `gorm:"not null;index" json:"sent_by"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PushNotification) TableName() string {
	return "ops.push_notifications"
}

// Device is a push token registered by the app. Tokens are unique;
// re-registering moves the token to the current user.
type Device struct {
	DeviceID     string    `gorm:"primaryKey" json:"id"`
	UserID       string    `gorm:"not null;index" json:"user_id"`
	Token        string    `gorm:"not null;uniqueIndex" json:"token"`
	Platform     string    `json:"platform"`
	LastActiveAt time.Time `json:"last_active_at"`
	CreatedAt    time.Time `json:"created_at"`
}

func (Device) TableName() string {
	return "ops.devices"
}
