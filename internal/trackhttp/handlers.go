package trackhttp

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/mailcast/pkg/logger"
	"github.com/dmitrymomot/mailcast/pkg/storage"
)

// pixelGIF is a 1x1 transparent GIF served by the open tracker.
var pixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, // GIF89a
	0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00,
	0x00, 0x00, 0x00, 0xff, 0xff, 0xff,
	0x21, 0xf9, 0x04, 0x01, 0x00, 0x00, 0x00, 0x00,
	0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00,
	0x02, 0x02, 0x44, 0x01, 0x00,
	0x3b,
}

// OpenHandler records an open event for the tracking id in the path and
// serves the transparent pixel. The pixel is served no matter what: unknown
// ids and storage trouble must not break image rendering in the recipient's
// mail client.
func OpenHandler(store storage.Store, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		ctx := logger.WithTracking(r.Context(), id)

		if err := store.RecordOpen(ctx, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
			log.ErrorContext(ctx, "failed to record open", slog.String("error", err.Error()))
		}

		w.Header().Set("Content-Type", "image/gif")
		w.Header().Set("Content-Length", strconv.Itoa(len(pixelGIF)))
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		_, _ = w.Write(pixelGIF)
	}
}

// ClickHandler records a click event and redirects to the original target.
// Only absolute http/https targets are accepted so the redirector cannot be
// abused for javascript: or data: payloads.
func ClickHandler(store storage.Store, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		ctx := logger.WithTracking(r.Context(), id)

		target := r.URL.Query().Get("url")
		if target == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing url parameter"})
			return
		}
		u, err := url.Parse(target)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid redirect target"})
			return
		}

		if err := store.RecordClick(ctx, id, target); err != nil && !errors.Is(err, storage.ErrNotFound) {
			log.ErrorContext(ctx, "failed to record click", slog.String("error", err.Error()))
		}

		http.Redirect(w, r, target, http.StatusFound)
	}
}

type campaignItem struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
}

// CampaignsHandler lists all campaigns, newest first.
func CampaignsHandler(store storage.Store, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		campaigns, err := store.ListCampaigns(r.Context())
		if err != nil {
			log.ErrorContext(r.Context(), "failed to list campaigns", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to list campaigns"})
			return
		}

		items := make([]campaignItem, len(campaigns))
		for i, c := range campaigns {
			items[i] = campaignItem{ID: c.ID, Subject: c.Subject, CreatedAt: c.CreatedAt}
		}
		writeJSON(w, http.StatusOK, items)
	}
}

type reportResponse struct {
	CreatedAt    time.Time `json:"created_at"`
	CampaignID   string    `json:"campaign_id"`
	Subject      string    `json:"subject"`
	TotalSent    int       `json:"total_sent"`
	UniqueOpens  int       `json:"unique_opens"`
	UniqueClicks int       `json:"unique_clicks"`
	OpenRate     float64   `json:"open_rate"`
	ClickRate    float64   `json:"click_rate"`
}

// ReportHandler returns aggregate tracking metrics for one campaign.
func ReportHandler(store storage.Store, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		ctx := logger.WithCampaign(r.Context(), id)

		rep, err := store.CampaignReport(ctx, id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, errorResponse{Error: "campaign not found"})
				return
			}
			log.ErrorContext(ctx, "failed to build report", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to build report"})
			return
		}

		writeJSON(w, http.StatusOK, reportResponse{
			CampaignID:   rep.CampaignID,
			Subject:      rep.Subject,
			CreatedAt:    rep.CreatedAt,
			TotalSent:    rep.TotalSent,
			UniqueOpens:  rep.UniqueOpens,
			UniqueClicks: rep.UniqueClicks,
			OpenRate:     rate(rep.UniqueOpens, rep.TotalSent),
			ClickRate:    rate(rep.UniqueClicks, rep.TotalSent),
		})
	}
}

func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
