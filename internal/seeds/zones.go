package seeds

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/DoctorHouseCalls/DHC-Backend/internal/db"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/zones"
	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedZone struct {
	Name           string     `yaml:"name"`
	Priority       int        `yaml:"priority"`
	AllowPhoneCall *bool      `yaml:"allow_phone_call"`
	AllowHouseCall *bool      `yaml:"allow_house_call"`
	IsActive       *bool      `yaml:"is_active"`
	// Rings of [lng, lat] pairs; the first ring is the outer boundary.
	Rings [][][2]float64 `yaml:"rings"`
}

func (sz seedZone) boundary() (zones.Boundary, error) {
	poly := make(orb.Polygon, 0, len(sz.Rings))
	for _, ring := range sz.Rings {
		r := make(orb.Ring, 0, len(ring))
		for _, pt := range ring {
			r = append(r, orb.Point{pt[0], pt[1]})
		}
		// Close the ring if the data leaves it open.
		if len(r) > 0 && r[0] != r[len(r)-1] {
			r = append(r, r[0])
		}
		poly = append(poly, r)
	}
	return zones.NewBoundary(poly)
}

func SeedZones() error {
	file, err := os.ReadFile("internal/seeds/data/zones.yaml")
	if err != nil {
		return fmt.Errorf("could not read zones.yaml: %w", err)
	}

	var seedZones []seedZone
	if err := yaml.Unmarshal(file, &seedZones); err != nil {
		return fmt.Errorf("failed to parse zones.yaml: %w", err)
	}

	registry := zones.NewRegistry(db.DB)
	for _, sz := range seedZones {
		var existing zones.Zone
		err := db.DB.First(&existing, "name = ?", sz.Name).Error

		if err == nil {
			log.Printf("⚠️ Zone exists, skipping: %s", sz.Name)
			continue
		} else if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("DB error on zone %s: %w", sz.Name, err)
		}

		boundary, err := sz.boundary()
		if err != nil {
			return fmt.Errorf("invalid boundary for zone %s: %w", sz.Name, err)
		}

		priority := sz.Priority
		input := zones.CreateZoneInput{
			Name:           sz.Name,
			Boundary:       &boundary,
			AllowPhoneCall: sz.AllowPhoneCall,
			AllowHouseCall: sz.AllowHouseCall,
			Priority:       &priority,
			IsActive:       sz.IsActive,
		}
		if _, err := registry.CreateZone(context.Background(), input); err != nil {
			return fmt.Errorf("failed to create zone %s: %w", sz.Name, err)
		}
		log.Printf("Seeded zone: %s (priority %d)", sz.Name, sz.Priority)
	}

	return nil
}

// SeedAdminUser creates the bootstrap admin from ADMIN_EMAIL and
// ADMIN_PASSWORD. Skips silently when either is unset or the user
// already exists.
func SeedAdminUser() error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("⚠️ ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}

	var count int64
	if err := db.DB.Table("app_auth.users").Where("email = ?", email).Count(&count).Error; err != nil {
		return fmt.Errorf("DB error checking admin user: %w", err)
	}
	if count > 0 {
		log.Printf("⚠️ Admin exists, skipping: %s", email)
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	err = db.DB.Table("app_auth.users").Create(map[string]any{
		"user_id":         uuid.NewString(),
		"email":           email,
		"hashed_password": string(hashed),
		"role":            "admin",
	}).Error
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Printf("Seeded admin user: %s", email)
	return nil
}
