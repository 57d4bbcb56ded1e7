package audit

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/DoctorHouseCalls/DHC-Backend/internal/db"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// maxLogsPerQuery caps admin audit queries so an unfiltered request
// can't drag the whole table over the wire.
const maxLogsPerQuery = 1000

// GetAuditLogs returns audit entries newest-first, filterable by
// action, entity and date range.
func GetAuditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	tx := db.DB.WithContext(r.Context()).Model(&Log{})
	if action := q.Get("action"); action != "" {
		tx = tx.Where("action = ?", action)
	}
	if entityType := q.Get("entity_type"); entityType != "" {
		tx = tx.Where("entity_type = ?", entityType)
	}
	if entityID := q.Get("entity_id"); entityID != "" {
		tx = tx.Where("entity_id = ?", entityID)
	}
	if start := q.Get("start_date"); start != "" {
		if t, err := time.Parse(time.RFC3339, start); err == nil {
			tx = tx.Where("created_at >= ?", t)
		}
	}
	if end := q.Get("end_date"); end != "" {
		if t, err := time.Parse(time.RFC3339, end); err == nil {
			tx = tx.Where("created_at <= ?", t)
		}
	}

	var logs []Log
	if err := tx.Order("created_at DESC").Limit(maxLogsPerQuery).Find(&logs).Error; err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(logs)
}

// SetupAdminRoutes takes the session fetcher from the caller: this
// package is imported by auth for recording, so it cannot import auth
// back for the fetcher.
func SetupAdminRoutes(sessionFetcher middleware.SessionFetcher) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.SessionMiddleware(sessionFetcher))
	r.Use(middleware.AdminMiddleware(sessionFetcher))
	r.Get("/", GetAuditLogs)

	return r
}
