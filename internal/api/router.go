// Package api assembles the HTTP surface: router, middleware stack and
// route-to-handler wiring.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	mw "github.com/kiranshivaraju/cvforge/internal/api/middleware"
	"github.com/kiranshivaraju/cvforge/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	RateLimit      *mw.RateLimit
	AllowedOrigins []string

	HealthHandler         http.HandlerFunc
	UploadHandler         http.HandlerFunc
	GenerateHandler       http.HandlerFunc
	GeneratePhase2Handler http.HandlerFunc
	StatusHandler         http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	// Public health check
	r.Get("/health", orNotImplemented(deps.HealthHandler))

	// Pipeline routes
	r.Group(func(r chi.Router) {
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit.Limit)
		}

		r.Post("/upload", orNotImplemented(deps.UploadHandler))
		r.Post("/generate", orNotImplemented(deps.GenerateHandler))
		r.Post("/generate-phase2", orNotImplemented(deps.GeneratePhase2Handler))
		r.Get("/jobs/{jobID}/status", orNotImplemented(deps.StatusHandler))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "endpoint not yet implemented")
	}
}
