package zones

import (
	"log"
	"os"

	"github.com/DoctorHouseCalls/DHC-Backend/internal/db"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/geocoding"
)

// Package-level collaborators wired at startup.
var (
	DefaultRegistry *Registry
	DefaultResolver *Resolver
	Geocoder        *geocoding.Client
)

func Init() {
	if err := db.EnsureSchema(db.DB, "zones"); err != nil {
		log.Fatal("Failed to ensure schema zones: ", err)
	}

	if err := db.DB.AutoMigrate(&Zone{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}

	DefaultRegistry = NewRegistry(db.DB)

	// ZONE_MATCH_STRICT makes a corrupt boundary fail the whole match
	// instead of being skipped. Off in production.
	strict := os.Getenv("ZONE_MATCH_STRICT") == "true"
	DefaultResolver = NewResolver(DefaultRegistry, strict)

	var err error
	Geocoder, err = geocoding.NewClient()
	if err != nil {
		log.Printf("[zones] WARNING: Failed to initialize geocoding client: %v", err)
	}
	if Geocoder == nil {
		log.Printf("[zones] Geocoding disabled (GOOGLE_MAPS_API_KEY not set); address-based coverage checks will be unavailable")
	}
}
