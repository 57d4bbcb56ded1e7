package notifications

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/DoctorHouseCalls/DHC-Backend/internal/audit"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/db"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// GetAllNotifications is the admin list, filterable by status and
// audience type.
func GetAllNotifications(w http.ResponseWriter, r *http.Request) {
	q := db.DB.Model(&PushNotification{})
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if audience := r.URL.Query().Get("audience_type"); audience != "" {
		q = q.Where("audience_type = ?", audience)
	}

	var list []PushNotification
	if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, list)
}

type notificationStats struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// GetNotificationStats returns counts per status for the admin console.
func GetNotificationStats(w http.ResponseWriter, r *http.Request) {
	var stats []notificationStats
	err := db.DB.Model(&PushNotification{}).
		Select("status", "count(*) as count").
		Group("status").
		Scan(&stats).Error
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, stats)
}

type createNotificationRequest struct {
	Title             string     `json:"title"`
	Body              string     `json:"body"`
	AudienceType      string     `json:"audience_type"`
	AudienceUserID    string     `json:"audience_user_id"`
	AudienceBookingID string     `json:"audience_booking_id"`
	AudienceZoneID    string     `json:"audience_zone_id"`
	DeliveryType      string     `json:"delivery_type"`
	ScheduledFor      *time.Time `json:"scheduled_for"`
	DeepLink          string     `json:"deep_link"`
}

// CreateNotification authors a notification and, unless scheduled for
// later, sends it immediately.
func CreateNotification(w http.ResponseWriter, r *http.Request) {
	adminID, _ := utils.GetUserIDFromContext(r.Context())

	var req createNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Title == "" || req.Body == "" || req.AudienceType == "" {
		http.Error(w, "title, body, and audience_type are required", http.StatusBadRequest)
		return
	}
	if !validAudience(req.AudienceType) {
		http.Error(w, "audience_type must be single_user, booking_id, service_zone, or all_users", http.StatusBadRequest)
		return
	}

	deliveryType := req.DeliveryType
	if deliveryType != "push_sms" {
		deliveryType = "push_only"
	}

	notification := PushNotification{
		NotificationID:    uuid.NewString(),
		Title:             req.Title,
		Body:              req.Body,
		AudienceType:      req.AudienceType,
		AudienceUserID:    req.AudienceUserID,
		AudienceBookingID: req.AudienceBookingID,
		AudienceZoneID:    req.AudienceZoneID,
		DeliveryType:      deliveryType,
		ScheduledFor:      req.ScheduledFor,
		DeepLink:          req.DeepLink,
		SentBy:            adminID,
		Status:            StatusPending,
	}
	if req.ScheduledFor != nil {
		notification.Status = StatusScheduled
	}

	if err := db.DB.Create(&notification).Error; err != nil {
		log.Println("Error creating notification:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if req.ScheduledFor == nil {
		if err := Process(r.Context(), &notification); err != nil {
			log.Printf("[Notify] processing %s failed: %v", notification.NotificationID, err)
		}
	}

	ip, ua := audit.RequestMeta(r)
	audit.Record(r.Context(), audit.Entry{
		Action:     audit.ActionNotificationSent,
		AdminID:    adminID,
		EntityType: "notification",
		EntityID:   notification.NotificationID,
		Changes:    audit.Changes{"audience_type": notification.AudienceType, "status": notification.Status},
		IPAddress:  ip,
		UserAgent:  ua,
	})

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, notification)
}

func GetNotification(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var notification PushNotification
	if err := db.DB.First(&notification, "notification_id = ?", id).Error; err != nil {
		http.Error(w, "Notification not found", http.StatusNotFound)
		return
	}

	writeJSON(w, notification)
}

// DeleteNotification removes a notification that has not been sent yet.
func DeleteNotification(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var notification PushNotification
	if err := db.DB.First(&notification, "notification_id = ?", id).Error; err != nil {
		http.Error(w, "Notification not found", http.StatusNotFound)
		return
	}
	if notification.Status == StatusSent {
		http.Error(w, "Cannot delete a sent notification", http.StatusBadRequest)
		return
	}

	if err := db.DB.Delete(&notification).Error; err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]string{"message": "Notification deleted"})
}

// GetUserNotifications is the in-app feed: sent notifications that
// named this user as a recipient, newest first.
func GetUserNotifications(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var list []PushNotification
	err := db.DB.
		Where("status = ?", StatusSent).
		Where("? = ANY(recipient_user_ids)", userID).
		Order("sent_at DESC").
		Limit(100).
		Find(&list).Error
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, list)
}

type registerDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

// RegisterDevice stores a push token. Re-registering an existing token
// reassigns it to the current user and refreshes its activity window.
func RegisterDevice(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req registerDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Token == "" {
		http.Error(w, "token is required", http.StatusBadRequest)
		return
	}
	if req.Platform != "ios" && req.Platform != "android" {
		http.Error(w, "platform must be ios or android", http.StatusBadRequest)
		return
	}

	now := time.Now()

	var device Device
	err := db.DB.First(&device, "token = ?", req.Token).Error
	if err == nil {
		device.UserID = userID
		device.Platform = req.Platform
		device.LastActiveAt = now
		if err := db.DB.Save(&device).Error; err != nil {
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, device)
		return
	}

	device = Device{
		DeviceID:     uuid.NewString(),
		UserID:       userID,
		Token:        req.Token,
		Platform:     req.Platform,
		LastActiveAt: now,
	}
	if err := db.DB.Create(&device).Error; err != nil {
		log.Println("Error registering device:", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, device)
}
