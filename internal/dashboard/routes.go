package dashboard

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
	r.Use(middleware.AdminMiddleware(sessionFetcher))

	r.Get("/stats", GetStats)
	r.Get("/charts", GetCharts)
	r.Get("/activity", GetRecentActivity)

	return r
}
