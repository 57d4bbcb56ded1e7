package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/DoctorHouseCalls/DHC-Backend/internal/audit"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/auth"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/bookings"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/dashboard"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/db"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/middleware"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/notifications"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/zones"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "Server is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5050"
	}

	auth.Init()
	audit.Init()
	zones.Init()
	bookings.Init()
	notifications.Init()

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)

	r.Mount("/auth", auth.SetupRoutes())
	r.Mount("/coverage", zones.SetupCoverageRoutes())
	r.Mount("/family-members", bookings.SetupFamilyMemberRoutes())
	r.Mount("/bookings", bookings.SetupRoutes())
	r.Mount("/notifications", notifications.SetupUserRoutes())

	// Admin surface: session + admin role required on every route.
	r.Mount("/admin/zones", zones.SetupAdminRoutes())
	r.Mount("/admin/bookings", bookings.SetupAdminRoutes())
	r.Mount("/admin/notifications", notifications.SetupAdminRoutes())
	r.Mount("/admin/audit-logs", audit.SetupAdminRoutes(auth.SessionInfo{}))
	r.Mount("/admin/dashboard", dashboard.SetupRoutes())

	fmt.Println("Server listening on port :" + port + "...")

	http.ListenAndServe("0.0.0.0:"+port, r)
}
