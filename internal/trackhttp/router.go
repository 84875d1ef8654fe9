// Package trackhttp serves the engagement endpoints referenced from sent
// emails (open pixel, click redirect) and the campaign API: starting a
// dispatch, listing campaigns, aggregate reports and a live progress stream.
package trackhttp

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/mailcast/pkg/campaign"
	"github.com/dmitrymomot/mailcast/pkg/logger"
	"github.com/dmitrymomot/mailcast/pkg/storage"
)

// New builds the HTTP handler. dispatcher and hub may be nil; the
// corresponding routes (POST /api/campaigns, GET /api/progress) are then
// absent, leaving a tracking- and reporting-only server.
func New(store storage.Store, dispatcher *campaign.Dispatcher, hub *Hub, log *slog.Logger) http.Handler {
	if log == nil {
		log = logger.NewNope()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/track/open/{id}", OpenHandler(store, log))
	r.Get("/track/click/{id}", ClickHandler(store, log))

	r.Route("/api", func(r chi.Router) {
		r.Get("/campaigns", CampaignsHandler(store, log))
		r.Get("/reports/{id}", ReportHandler(store, log))
		if dispatcher != nil {
			r.Post("/campaigns", DispatchHandler(dispatcher, log))
		}
		if hub != nil {
			r.Get("/progress", hub.Handler())
		}
	})

	return r
}
