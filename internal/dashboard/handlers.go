package dashboard

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/DoctorHouseCalls/DHC-Backend/internal/audit"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/auth"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/bookings"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/db"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/zones"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

type countRow struct {
	Key   string `gorm:"column:key" json:"key"`
	Count int64  `gorm:"column:count" json:"count"`
}

func countsBy(model any, column string) (map[string]int64, error) {
	var rows []countRow
	err := db.DB.Model(model).
		Select(column + " as key, count(*) as count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Count
	}
	return out, nil
}

type overview struct {
	TotalBookings int64 `json:"total_bookings"`
	TodayBookings int64 `json:"today_bookings"`
	WeekBookings  int64 `json:"week_bookings"`
	MonthBookings int64 `json:"month_bookings"`
	TotalUsers    int64 `json:"total_users"`
	TotalZones    int64 `json:"total_zones"`
}

type statsResponse struct {
	Overview             overview           `json:"overview"`
	BookingsByStatus     map[string]int64   `json:"bookings_by_status"`
	BookingsByVisitType  map[string]int64   `json:"bookings_by_visit_type"`
	RecentBookings       []bookings.Booking `json:"recent_bookings"`
}

// GetStats is the admin dashboard overview: booking volumes, breakdowns
// and the latest requests.
func GetStats(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfWeek := today.AddDate(0, 0, -int(today.Weekday()))
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var ov overview
	bookingCounts := []struct {
		dst   *int64
		since *time.Time
	}{
		{&ov.TotalBookings, nil},
		{&ov.TodayBookings, &today},
		{&ov.WeekBookings, &startOfWeek},
		{&ov.MonthBookings, &startOfMonth},
	}
	for _, c := range bookingCounts {
		q := db.DB.Model(&bookings.Booking{})
		if c.since != nil {
			q = q.Where("created_at >= ?", *c.since)
		}
		if err := q.Count(c.dst).Error; err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
	}

	if err := db.DB.Model(&auth.User{}).Where("role <> ?", "admin").Count(&ov.TotalUsers).Error; err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if err := db.DB.Model(&zones.Zone{}).Count(&ov.TotalZones).Error; err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	byStatus, err := countsBy(&bookings.Booking{}, "status")
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	byVisitType, err := countsBy(&bookings.Booking{}, "visit_type")
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var recent []bookings.Booking
	if err := db.DB.Order("created_at DESC").Limit(10).Find(&recent).Error; err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, statsResponse{
		Overview:            ov,
		BookingsByStatus:    byStatus,
		BookingsByVisitType: byVisitType,
		RecentBookings:      recent,
	})
}

type dayCount struct {
	Day   string `gorm:"column:day" json:"day"`
	Count int64  `gorm:"column:count" json:"count"`
}

type zoneCount struct {
	ZoneName string `gorm:"column:zone_name" json:"zone_name"`
	Count    int64  `gorm:"column:count" json:"count"`
}

type chartsResponse struct {
	BookingsOverTime []dayCount  `json:"bookings_over_time"`
	BookingsByZone   []zoneCount `json:"bookings_by_zone"`
}

// GetCharts returns time-series and per-zone booking counts for the
// selected period (7days, 30days or 90days).
func GetCharts(w http.ResponseWriter, r *http.Request) {
	days := 7
	switch r.URL.Query().Get("period") {
	case "30days":
		days = 30
	case "90days":
		days = 90
	}
	since := time.Now().AddDate(0, 0, -days)

	var overTime []dayCount
	err := db.DB.Model(&bookings.Booking{}).
		Select("to_char(created_at, 'YYYY-MM-DD') as day, count(*) as count").
		Where("created_at >= ?", since).
		Group("day").
		Order("day ASC").
		Scan(&overTime).Error
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var byZone []zoneCount
	err = db.DB.Model(&bookings.Booking{}).
		Select("coalesce(nullif(matched_zone_name, ''), 'Unknown') as zone_name, count(*) as count").
		Where("created_at >= ?", since).
		Group("zone_name").
		Order("count DESC").
		Limit(10).
		Scan(&byZone).Error
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, chartsResponse{BookingsOverTime: overTime, BookingsByZone: byZone})
}

// GetRecentActivity returns the latest audit entries for the activity
// feed.
func GetRecentActivity(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	var activities []audit.Log
	err := db.DB.Order("created_at DESC").Limit(limit).Find(&activities).Error
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, activities)
}
