package trackhttp

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/mailcast/pkg/attachment"
	"github.com/dmitrymomot/mailcast/pkg/campaign"
)

type dispatchRequest struct {
	Subject       string               `json:"subject"`
	Body          string               `json:"body"`
	Format        string               `json:"format"` // "html" (default) or "markdown"
	RecipientsCSV string               `json:"recipients_csv"`
	Recipients    []string             `json:"recipients"`
	CC            string               `json:"cc"`
	BCC           string               `json:"bcc"`
	Attachments   []dispatchAttachment `json:"attachments"`
}

type dispatchAttachment struct {
	Name string `json:"name"`
	Data string `json:"data"` // base64
}

type dispatchAccepted struct {
	Status string `json:"status"`
}

// DispatchHandler accepts a campaign and starts dispatching it in the
// background, detached from the request context so closing the browser does
// not abort the run. Progress and failures stream out through the SSE hub;
// the response only acknowledges that the run started.
func DispatchHandler(d *campaign.Dispatcher, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dispatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}

		creq := campaign.Request{
			Subject:       req.Subject,
			Body:          req.Body,
			Format:        campaign.Format(req.Format),
			RecipientsCSV: req.RecipientsCSV,
			Recipients:    req.Recipients,
			CC:            req.CC,
			BCC:           req.BCC,
		}
		for _, a := range req.Attachments {
			creq.Attachments = append(creq.Attachments, attachment.Input{Name: a.Name, Data: a.Data})
		}

		go func() {
			if _, err := d.Dispatch(context.Background(), creq); err != nil {
				log.Error("campaign dispatch failed", slog.String("error", err.Error()))
			}
		}()

		writeJSON(w, http.StatusAccepted, dispatchAccepted{Status: "accepted"})
	}
}
