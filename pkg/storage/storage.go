// Package storage persists campaigns, per-recipient tracked emails and the
// open/click events correlated to them. The dispatch engine treats the store
// as append-only: it creates records before sending and never updates them;
// the tracking HTTP handlers record the events.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the referenced campaign or tracked email does not exist.
var ErrNotFound = errors.New("storage: not found")

// Campaign groups all emails sent with one subject and message.
type Campaign struct {
	CreatedAt time.Time
	ID        string
	Subject   string
	Message   string
}

// Report aggregates a campaign's tracking outcome.
type Report struct {
	CreatedAt    time.Time
	CampaignID   string
	Subject      string
	TotalSent    int
	UniqueOpens  int
	UniqueClicks int
}

// Store is the persistence capability consumed by the dispatch engine and
// the tracking handlers. Tracking ids returned by CreateTrackedEmail are the
// same opaque strings embedded in tracked links and pixels.
type Store interface {
	// CreateCampaign records a new campaign and returns its id.
	CreateCampaign(ctx context.Context, subject, body string) (string, error)

	// CreateTrackedEmail records a pending send for one recipient and
	// returns the fresh tracking id, unique across the store.
	CreateTrackedEmail(ctx context.Context, campaignID, recipient string) (string, error)

	// RecordOpen stores an open event. Returns ErrNotFound for unknown ids.
	RecordOpen(ctx context.Context, trackingID string) error

	// RecordClick stores a click event with the original target URL.
	// Returns ErrNotFound for unknown ids.
	RecordClick(ctx context.Context, trackingID, url string) error

	// CampaignReport returns aggregate tracking metrics for one campaign.
	CampaignReport(ctx context.Context, campaignID string) (*Report, error)

	// ListCampaigns returns all campaigns, newest first.
	ListCampaigns(ctx context.Context) ([]Campaign, error)
}
