package audit

import (
	"log"

	"github.com/DoctorHouseCalls/DHC-Backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "ops"); err != nil {
		log.Fatal("Failed to ensure schema ops: ", err)
	}

	if err := db.DB.AutoMigrate(&Log{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}
}
