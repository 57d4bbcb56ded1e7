package audit

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Actions recorded in the audit trail. Keep this list closed; the admin
// console filters on it.
const (
	ActionBookingCreated      = "booking_created"
	ActionBookingConfirmed    = "booking_confirmed"
	ActionBookingUpdated      = "booking_updated"
	ActionBookingCancelled    = "booking_cancelled"
	ActionBookingOverridden   = "booking_overridden"
	ActionZoneCreated         = "zone_created"
	ActionZoneUpdated         = "zone_updated"
	ActionZoneDeleted         = "zone_deleted"
	ActionNotificationSent    = "notification_sent"
	ActionUserCreated         = "user_created"
	ActionAdminCreated        = "admin_created"
	ActionFamilyMemberAdded   = "family_member_added"
	ActionFamilyMemberUpdated = "family_member_updated"
	ActionFamilyMemberDeleted = "family_member_deleted"
)

// Changes is a free-form jsonb payload describing what a log entry
// altered.
type Changes map[string]any

func (c Changes) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	out, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(out), nil
}

func (c *Changes) Scan(src any) error {
	if src == nil {
		*c = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported changes column type %T", src)
	}
	return json.Unmarshal(data, c)
}

type Log struct {
	LogID      string    `gorm:"primaryKey" json:"id"`
	Action     string    `gorm:"not null;index" json:"action"`
	UserID     string    `gorm:"index" json:"user_id,omitempty"`
	AdminID    string    `gorm:"index" json:"admin_id,omitempty"`
	EntityType string    `gorm:"index:idx_audit_entity" json:"entity_type"`
	EntityID   string    `gorm:"index:idx_audit_entity" json:"entity_id"`
	Changes    Changes   `gorm:"type:jsonb" json:"changes,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	IPAddress  string    `json:"ip_address,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (Log) TableName() string {
	return "ops.audit_logs"
}
