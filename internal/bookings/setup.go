package bookings

import (
	"log"
	"os"

	"github.com/DoctorHouseCalls/DHC-Backend/internal/db"
)

// enforceZoneRestriction gates booking creation on zone availability.
// Off while the service accepts bookings everywhere during rollout;
// set ENFORCE_ZONE_RESTRICTION=true to go live with coverage limits.
var enforceZoneRestriction bool

func Init() {
	if err := db.EnsureSchema(db.DB, "care"); err != nil {
		log.Fatal("Failed to ensure schema care: ", err)
	}

	if err := db.DB.AutoMigrate(&FamilyMember{}, &Booking{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}

	enforceZoneRestriction = os.Getenv("ENFORCE_ZONE_RESTRICTION") == "true"
	if enforceZoneRestriction {
		log.Println("[Bookings] zone restriction enforcement is ON")
	}
}
