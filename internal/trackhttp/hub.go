package trackhttp

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/dmitrymomot/mailcast/pkg/campaign"
)

// Hub fans dispatch events out to server-sent-events subscribers. It
// implements campaign.ProgressSink. Broadcasting never blocks: a subscriber
// whose buffer is full misses the event rather than stalling the dispatch.
type Hub struct {
	subs map[chan sseEvent]struct{}
	mu   sync.Mutex
}

type sseEvent struct {
	payload any
	name    string
}

type progressPayload struct {
	Sent      int    `json:"sent"`
	Total     int    `json:"total"`
	Recipient string `json:"recipient"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan sseEvent]struct{})}
}

func (h *Hub) EmitProgress(e campaign.ProgressEvent) {
	h.broadcast(sseEvent{name: "progress", payload: progressPayload{
		Sent:      e.Sent,
		Total:     e.Total,
		Recipient: e.Recipient,
	}})
}

func (h *Hub) EmitError(e campaign.ErrorEvent) {
	h.broadcast(sseEvent{name: "error", payload: errorPayload{Message: e.Message}})
}

func (h *Hub) broadcast(ev sseEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- ev:
		default: // slow subscriber, drop
		}
	}
}

func (h *Hub) subscribe() chan sseEvent {
	ch := make(chan sseEvent, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) unsubscribe(ch chan sseEvent) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

// Handler streams events to the client as text/event-stream until the
// request context is done.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fl, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		fl.Flush()

		ch := h.subscribe()
		defer h.unsubscribe(ch)

		for {
			select {
			case <-r.Context().Done():
				return
			case ev := <-ch:
				data, err := json.Marshal(ev.payload)
				if err != nil {
					continue
				}
				_, _ = w.Write([]byte("event: " + ev.name + "\ndata: " + string(data) + "\n\n"))
				fl.Flush()
			}
		}
	}
}
