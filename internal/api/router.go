package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	mw "github.com/mwhitfield/skillforge/internal/api/middleware"
	"github.com/mwhitfield/skillforge/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit

	HealthHandler    http.HandlerFunc
	AnalyzeHandler   http.HandlerFunc
	GenerateHandler  http.HandlerFunc
	ListSkills       http.HandlerFunc
	GetSkill         http.HandlerFunc
	UpdateSkill      http.HandlerFunc
	DeleteSkill      http.HandlerFunc
	ListVersions     http.HandlerFunc
	ArchiveHandler   http.HandlerFunc
	PublishHandler   http.HandlerFunc
	CreateKeyHandler http.HandlerFunc
	ListKeysHandler  http.HandlerFunc
	RevokeKeyHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check
	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(deps.Auth.Authenticate)
		r.Use(deps.RateLimit.Limit)

		r.Post("/api/v1/analyze", orNotImplemented(deps.AnalyzeHandler))

		r.Post("/api/v1/skills/generate", orNotImplemented(deps.GenerateHandler))
		r.Get("/api/v1/skills", orNotImplemented(deps.ListSkills))
		r.Get("/api/v1/skills/{skillID}", orNotImplemented(deps.GetSkill))
		r.Patch("/api/v1/skills/{skillID}", orNotImplemented(deps.UpdateSkill))
		r.Delete("/api/v1/skills/{skillID}", orNotImplemented(deps.DeleteSkill))
		r.Get("/api/v1/skills/{skillID}/versions", orNotImplemented(deps.ListVersions))
		r.Get("/api/v1/skills/{skillID}/archive", orNotImplemented(deps.ArchiveHandler))
		r.Post("/api/v1/skills/{skillID}/publish", orNotImplemented(deps.PublishHandler))

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireScope("admin"))

			r.Post("/api/v1/admin/keys", orNotImplemented(deps.CreateKeyHandler))
			r.Get("/api/v1/admin/keys", orNotImplemented(deps.ListKeysHandler))
			r.Delete("/api/v1/admin/keys/{keyID}", orNotImplemented(deps.RevokeKeyHandler))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
