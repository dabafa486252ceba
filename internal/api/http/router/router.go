package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dtroode/regbot/internal/api/http/handler"
	"github.com/dtroode/regbot/internal/api/http/middleware"
	"github.com/dtroode/regbot/internal/logger"
)

// New wires the notification, health and metrics endpoints.
func New(notify *handler.Notify, secret string, metrics http.Handler, logger *logger.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.NewLogging(logger).Handle)

	r.Get("/healthz", handler.Health)
	r.Handle("/metrics", metrics)

	r.With(middleware.RequireBearer(secret, logger)).Post("/notify", notify.Handle)

	return r
}
