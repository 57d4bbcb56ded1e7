package notifications

import (
	"net/http"

	"github.com/DoctorHouseCalls/DHC-Backend/internal/auth"
	"github.com/DoctorHouseCalls/DHC-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupUserRoutes() http.Handler {
	r := chi.NewRouter()
	sessionFetcher := auth.SessionInfo{}

	r.Use(middleware.SessionMiddleware(sessionFetcher))

	r.Get("/", GetUserNotifications)
	r.Post("/devices", RegisterDevice)

	return r
}

func SetupAdminRoutes() http.Handler {
	r := chi.NewRouter()
	sessionFetcher := auth.SessionInfo{}

	r.Use(middleware.SessionMiddleware(sessionFetcher))
	r.Use(middleware.AdminMiddleware(sessionFetcher))

	r.Get("/", GetAllNotifications)
	r.Post("/", CreateNotification)
	r.Get("/stats", GetNotificationStats)
	r.Get("/{id}", GetNotification)
	r.Delete("/{id}", DeleteNotification)

	return r
}
