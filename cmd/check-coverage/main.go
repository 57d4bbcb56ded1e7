package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/DoctorHouseCalls/DHC-Backend/internal/geocoding"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/zones"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	var (
		lat     = flag.Float64("lat", 0, "latitude")
		lng     = flag.Float64("lng", 0, "longitude")
		address = flag.String("address", "", "address to geocode (needs GOOGLE_MAPS_API_KEY)")
		strict  = flag.Bool("strict", false, "fail on malformed zone boundaries instead of skipping")
	)
	flag.Parse()

	godotenv.Load(".env.local")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dbURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB connection error: %v", err)
	}

	ctx := context.Background()
	label := fmt.Sprintf("%.6f,%.6f", *lat, *lng)

	if *address != "" {
		geocoder, err := geocoding.NewClient()
		if err != nil || geocoder == nil {
			log.Fatal("Geocoding unavailable (set GOOGLE_MAPS_API_KEY to look up addresses)")
		}
		loc, err := geocoder.Geocode(ctx, *address)
		if err != nil {
			log.Fatalf("Geocoding error: %v", err)
		}
		*lat, *lng = loc.Lat, loc.Lng
		label = loc.Normalized
	} else if *lat == 0 && *lng == 0 {
		flag.Usage()
		os.Exit(2)
	}

	registry := zones.NewRegistry(db)
	resolver := zones.NewResolver(registry, *strict)

	zone, report, err := resolver.FindMatchingZone(ctx, *lat, *lng)
	if err != nil {
		log.Fatalf("Match error: %v", err)
	}

	fmt.Printf("Location: %s (%.6f, %.6f)\n\n", label, *lat, *lng)

	if zone == nil {
		fmt.Println("No matching zone.")
	} else {
		fmt.Printf("Matched zone: %s (id %s)\n", zone.Name, zone.ZoneID)
		fmt.Printf("  priority=%d area=%.6f active=%v\n", zone.Priority, zone.Area, zone.IsActive)
	}

	types := zones.AvailableVisitTypes(zone)
	fmt.Printf("\nPhone call: %v\nHouse call: %v\nMessage: %s\n", types.PhoneCall, types.HouseCall, types.Message)

	if report != nil && len(report.Skipped) > 0 {
		fmt.Println("\nSkipped zones:")
		for _, s := range report.Skipped {
			fmt.Printf("  - %s: %s\n", s.ZoneID, s.Reason)
		}
	}
}
