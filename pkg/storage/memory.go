package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-memory Store for tests and local development. Safe for
// concurrent use.
type Memory struct {
	campaigns map[string]Campaign
	emails    map[string]memoryEmail
	order     []string
	mu        sync.RWMutex
}

type memoryEmail struct {
	campaignID string
	recipient  string
	sentAt     time.Time
	opens      int
	clicks     []string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		campaigns: make(map[string]Campaign),
		emails:    make(map[string]memoryEmail),
	}
}

func (m *Memory) CreateCampaign(_ context.Context, subject, body string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.NewString()
	m.campaigns[id] = Campaign{
		ID:        id,
		Subject:   subject,
		Message:   body,
		CreatedAt: time.Now().UTC(),
	}
	m.order = append(m.order, id)
	return id, nil
}

func (m *Memory) CreateTrackedEmail(_ context.Context, campaignID, recipient string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.campaigns[campaignID]; !ok {
		return "", ErrNotFound
	}
	id := uuid.NewString()
	m.emails[id] = memoryEmail{
		campaignID: campaignID,
		recipient:  recipient,
		sentAt:     time.Now().UTC(),
	}
	return id, nil
}

func (m *Memory) RecordOpen(_ context.Context, trackingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.emails[trackingID]
	if !ok {
		return ErrNotFound
	}
	e.opens++
	m.emails[trackingID] = e
	return nil
}

func (m *Memory) RecordClick(_ context.Context, trackingID, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.emails[trackingID]
	if !ok {
		return ErrNotFound
	}
	e.clicks = append(e.clicks, url)
	m.emails[trackingID] = e
	return nil
}

func (m *Memory) CampaignReport(_ context.Context, campaignID string) (*Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.campaigns[campaignID]
	if !ok {
		return nil, ErrNotFound
	}

	r := &Report{
		CampaignID: c.ID,
		Subject:    c.Subject,
		CreatedAt:  c.CreatedAt,
	}
	for _, e := range m.emails {
		if e.campaignID != campaignID {
			continue
		}
		r.TotalSent++
		if e.opens > 0 {
			r.UniqueOpens++
		}
		if len(e.clicks) > 0 {
			r.UniqueClicks++
		}
	}
	return r, nil
}

func (m *Memory) ListCampaigns(_ context.Context) ([]Campaign, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Campaign, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		out = append(out, m.campaigns[m.order[i]])
	}
	return out, nil
}

// Recipients returns the addresses with pending-send records for a
// campaign, in creation order of iteration. Test helper.
func (m *Memory) Recipients(campaignID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []string
	for _, e := range m.emails {
		if e.campaignID == campaignID {
			out = append(out, e.recipient)
		}
	}
	return out
}
