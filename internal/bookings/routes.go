package bookings

import (
	"net/http"

	"github.com/DoctorHouseCalls/DHC-Backend/internal/auth"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	sessionFetcher := auth.SessionInfo{}

	r.Use(middleware.SessionMiddleware(sessionFetcher))

	r.Post("/", CreateBooking)
	r.Get("/", GetMyBookings)
	r.Get("/{id}", GetBooking)

	return r
}

func SetupFamilyMemberRoutes() http.Handler {
	r := chi.NewRouter()
	sessionFetcher := auth.SessionInfo{}

	r.Use(middleware.SessionMiddleware(sessionFetcher))

	r.Get("/", GetFamilyMembers)
	r.Post("/", CreateFamilyMember)
	r.Get("/{id}", GetFamilyMember)
	r.Put("/{id}", UpdateFamilyMember)
	r.Delete("/{id}", DeleteFamilyMember)

	return r
}

func SetupAdminRoutes() http.Handler {
	r := chi.NewRouter()
	sessionFetcher := auth.SessionInfo{}

	r.Use(middleware.SessionMiddleware(sessionFetcher))
	r.Use(middleware.AdminMiddleware(sessionFetcher))

	r.Get("/", GetAllBookings)
	r.Get("/heatmap", GetLocationHeatmap)
	r.Get("/{id}", GetBookingDetails)
	r.Put("/{id}/status", UpdateBookingStatus)
	r.Put("/{id}/override", OverrideBooking)

	return r
}
