package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestSendBookingConfirmationIsBestEffort(t *testing.T) {
	// The booking flow calls this after the row is committed; it must
	// return normally regardless of input, including zero values.
	SendBookingConfirmation(context.Background(), Confirmation{})
	SendBookingConfirmation(context.Background(), Confirmation{
		BookingID:   "b1",
		Method:      "sms",
		Phone:       "204-555-0101",
		VisitType:   "house_call",
		PatientName: "Jane Doe",
		Address:     "123 Main St, Winnipeg",
	})
}

func TestValidAudience(t *testing.T) {
	for _, a := range []string{AudienceSingleUser, AudienceBooking, AudienceServiceZone, AudienceAllUsers} {
		if !validAudience(a) {
			t.Errorf("expected %q to be a valid audience", a)
		}
	}
	for _, a := range []string{"", "everyone", "zone", "user"} {
		if validAudience(a) {
			t.Errorf("expected %q to be rejected", a)
		}
	}
}

func TestDeliveryStatusRoundTrip(t *testing.T) {
	sent := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	in := DeliveryStatus{
		{UserID: "u1", DeviceToken: "tok-1", Status: StatusSent, SentAt: &sent},
		{UserID: "u2", DeviceToken: "tok-2", Status: StatusFailed, Error: "token expired"},
	}

	val, err := in.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var out DeliveryStatus
	if err := out.Scan(val); err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}
	if out[0].UserID != "u1" || out[0].Status != StatusSent || out[0].SentAt == nil {
		t.Errorf("first record mangled: %+v", out[0])
	}
	if out[1].Status != StatusFailed || out[1].Error != "token expired" || out[1].SentAt != nil {
		t.Errorf("second record mangled: %+v", out[1])
	}
}

func TestDeliveryStatusScanNull(t *testing.T) {
	var d DeliveryStatus
	if err := d.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if d != nil {
		t.Error("expected nil delivery status for NULL column")
	}
}

func TestPushNotificationJSONOmitsEmptyFields(t *testing.T) {
	n := PushNotification{
		NotificationID: "n1",
		Title:          "Service update",
		Body:           "We now serve St. Boniface.",
		AudienceType:   AudienceAllUsers,
		Status:         StatusPending,
		SentBy:         "admin-1",
	}

	out, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, absent := range []string{"audience_user_id", "audience_zone_id", "deep_link", "scheduled_for"} {
		if _, ok := m[absent]; ok {
			t.Errorf("expected %q to be omitted when empty", absent)
		}
	}
}
