package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/minrisk/risk-management/internal/identity"
	"github.com/minrisk/risk-management/internal/incident"
	"github.com/minrisk/risk-management/internal/invitation"
	"github.com/minrisk/risk-management/internal/organization"
	"github.com/minrisk/risk-management/internal/profile"
	"github.com/minrisk/risk-management/internal/risk"
	"github.com/minrisk/risk-management/internal/suggestion"
	"github.com/minrisk/risk-management/internal/transport/middleware"
	"github.com/minrisk/risk-management/internal/transport/swagger"
)

type Handlers struct {
	Profile      *profile.Handler
	Invitation   *invitation.Handler
	Organization *organization.Handler
	Risk         *risk.Handler
	Incident     *incident.Handler
	Suggestion   *suggestion.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, auth *identity.Authenticator, h Handlers, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		// Health check route
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Invitation acceptance is the one unauthenticated domain route:
		// the invited user has no session when they follow the link.
		if h.Invitation != nil {
			r.Post("/invitations/accept", h.Invitation.Accept)
		}

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(auth.Middleware)

			if h.Profile != nil {
				pr.Route("/profiles", func(sr chi.Router) {
					sr.Get("/me", h.Profile.GetMe)
					sr.Post("/enrich", h.Profile.Enrich)
					sr.Get("/pending", h.Profile.ListPending)
					sr.Patch("/{id}/approve", h.Profile.Approve)
					sr.Patch("/{id}/reject", h.Profile.Reject)
				})
			}

			if h.Invitation != nil {
				pr.Route("/invitations", func(sr chi.Router) {
					sr.Get("/", h.Invitation.List)
					sr.Post("/users", h.Invitation.InviteUser)
					sr.Post("/primary-admins", h.Invitation.InvitePrimaryAdmin)
					sr.Post("/regulators", h.Invitation.InviteRegulator)
				})
			}

			if h.Organization != nil {
				pr.Route("/organizations", func(sr chi.Router) {
					sr.Get("/", h.Organization.List)
					sr.Post("/", h.Organization.Create)
					sr.Get("/{id}", h.Organization.Get)
				})
			}

			if h.Risk != nil {
				pr.Route("/risks", func(sr chi.Router) {
					sr.Get("/", h.Risk.List)
					sr.Post("/", h.Risk.Create)
					sr.Get("/{id}", h.Risk.Get)
					sr.Patch("/{id}", h.Risk.Update)
					sr.Delete("/{id}", h.Risk.Delete)
				})
			}

			if h.Incident != nil {
				pr.Route("/incidents", func(sr chi.Router) {
					sr.Get("/", h.Incident.List)
					sr.Post("/", h.Incident.Create)
					sr.Get("/{id}", h.Incident.Get)
					sr.Patch("/{id}", h.Incident.Update)
					sr.Delete("/{id}", h.Incident.Delete)

					if h.Suggestion != nil {
						sr.Post("/{id}/analyze", h.Suggestion.Analyze)
						sr.Get("/{id}/suggestions", h.Suggestion.List)
					}
				})
			}

			if h.Suggestion != nil {
				pr.Patch("/suggestions/{id}", h.Suggestion.Decide)
			}
		})
	})
}
