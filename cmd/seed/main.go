package main

import (
	"log"

	"github.com/DoctorHouseCalls/DHC-Backend/internal/auth"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/db"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/seeds"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/zones"
	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load(".env.local")
	db.Connect()

	auth.Init()
	zones.Init()

	if err := seeds.SeedAll(); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
}
