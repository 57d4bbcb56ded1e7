package notifications

import (
	"log"

	"github.com/DoctorHouseCalls/DHC-Backend/internal/db"
)

// sender delivers push messages. The log sender stands in until an FCM
// or APNs provider is wired up.
var sender Sender = logSender{}

func Init() {
	if err := db.EnsureSchema(db.DB, "ops"); err != nil {
		log.Fatal("Failed to ensure schema ops: ", err)
	}

	if err := db.DB.AutoMigrate(&PushNotification{}, &Device{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}
}
