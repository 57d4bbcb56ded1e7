package zones

import (
	"net/http"

	"github.com/DoctorHouseCalls/DHC-Backend/internal/auth"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// SetupCoverageRoutes exposes the public coverage surface. The check
// endpoint hits the geocoder, so it's rate limited per client IP.
func SetupCoverageRoutes() http.Handler {
	r := chi.NewRouter()

	r.Get("/zones", GetActiveZones)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitMiddleware(2, 5))
		r.Post("/check", CheckServiceCoverage)
	})

	return r
}

func SetupAdminRoutes() http.Handler {
	r := chi.NewRouter()
	sessionFetcher := auth.SessionInfo{}

	r.Use(middleware.SessionMiddleware(sessionFetcher))
	r.Use(middleware.AdminMiddleware(sessionFetcher))

	r.Get("/", GetAllZones)
	r.Post("/", CreateZoneHandler)
	r.Put("/{id}", UpdateZoneHandler)
	r.Delete("/{id}", DeleteZoneHandler)
	r.Post("/test", TestZoneMatching)

	return r
}
