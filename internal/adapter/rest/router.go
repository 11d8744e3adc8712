package rest

import (
	"net/http"

	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/adpost-service/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// NewRouter mounts every HTTP route. Only listing reads and /healthz are
// reachable without a token.
func NewRouter(h *Handler, jwtSecret string, log *logger.Logger, m *metrics.MetricsManager) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(RequestLogger(log, m))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.With(OptionalAuth(jwtSecret)).Get("/api/listings/{id}", h.GetListing)

	r.Group(func(r chi.Router) {
		r.Use(JWTAuth(jwtSecret, log))

		r.Post("/api/postings", h.StartCreate)
		r.Post("/api/listings/{id}/edit", h.StartEdit)
		r.Route("/api/postings/{sid}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.CloseSession)
			r.Patch("/fields", h.SetFields)
			r.Post("/advance", h.Advance)
			r.Post("/retreat", h.Retreat)
			r.Post("/draft/restore", h.RestoreDraft)
			r.Post("/draft/discard", h.DiscardDraft)
			r.Post("/images", h.AddFiles)
			r.Delete("/images/{index}", h.RemoveImage)
			r.Post("/images/reorder", h.ReorderImages)
			r.Post("/suggestions/details", h.SuggestDetails)
			r.Post("/suggestions/tags", h.SuggestTags)
			r.Post("/tags", h.AddTag)
			r.Delete("/tags", h.RemoveTag)
			r.Post("/submit", h.Submit)
		})

		r.Get("/api/me/listings", h.ListMine)
		r.Delete("/api/listings/{id}", h.DeleteListing)
		r.Patch("/api/admin/listings/{id}/status", h.Moderate)
	})

	return r
}
