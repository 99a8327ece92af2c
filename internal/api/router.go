package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/merfai/merf-go/internal/metrics"
	"github.com/merfai/merf-go/internal/service"
)

// NewRouter creates the chi router with all routes and middleware.
func NewRouter(
	dreams *service.DreamService,
	entries *service.DejavuService,
	suggest *service.SuggestionService,
	likelihood *service.LikelihoodService,
	mc *metrics.Collector,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(CORS)
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	dreamH := NewDreamHandler(dreams, suggest, likelihood)
	dejavuH := NewDejavuHandler(entries)
	systemH := NewSystemHandler(dreams, mc)

	r.Get("/healthz", systemH.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", systemH.Stats)

		r.Route("/dreams", func(r chi.Router) {
			r.Post("/", dreamH.Create)
			r.Get("/", dreamH.List)
			r.Get("/search", dreamH.Search)
			r.Get("/{id}", dreamH.Get)
			r.Delete("/{id}", dreamH.Delete)
			r.Post("/{id}/suggestions", dreamH.Suggestions)
			r.Post("/{id}/likelihood", dreamH.Likelihood)
		})

		r.Route("/dejavu", func(r chi.Router) {
			r.Post("/", dejavuH.Create)
			r.Get("/", dejavuH.List)
			r.Get("/{id}", dejavuH.Get)
			r.Delete("/{id}", dejavuH.Delete)
		})
	})

	return r
}
