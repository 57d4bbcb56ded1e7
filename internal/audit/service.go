package audit

import (
	"context"
	"log"
	"net/http"

	"github.com/DoctorHouseCalls/DHC-Backend/internal/db"
	"github.com/google/uuid"
)

// Entry is one audit event. UserID is the acting end user, AdminID the
// acting administrator; either may be empty.
type Entry struct {
	Action     string
	UserID     string
	AdminID    string
	EntityType string
	EntityID   string
	Changes    Changes
	Reason     string
	IPAddress  string
	UserAgent  string
}

// write persists one entry. A var so the swallow-failures contract of
// Record can be exercised without a database.
var write = func(ctx context.Context, entry *Log) error {
	return db.DB.WithContext(ctx).Create(entry).Error
}

// Record writes an audit entry. Failures are logged and swallowed:
// auditing must never break the flow it documents.
func Record(ctx context.Context, e Entry) {
	entry := Log{
		LogID:      uuid.NewString(),
		Action:     e.Action,
		UserID:     e.UserID,
		AdminID:    e.AdminID,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Changes:    e.Changes,
		Reason:     e.Reason,
		IPAddress:  e.IPAddress,
		UserAgent:  e.UserAgent,
	}
	if err := write(ctx, &entry); err != nil {
		log.Printf("[Audit] failed to record %s for %s %s: %v", e.Action, e.EntityType, e.EntityID, err)
	}
}

// RequestMeta pulls the client identity fields off an incoming request.
func RequestMeta(r *http.Request) (ip, userAgent string) {
	ip = r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip = r.RemoteAddr
	}
	return ip, r.UserAgent()
}
