package logger

import (
	"context"
	"log/slog"
)

// ContextExtractor pulls one attribute out of a context. Returning false
// skips the attribute for that log call.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

type ctxKey int

const (
	campaignKey ctxKey = iota
	trackingKey
)

// WithCampaign annotates ctx with the campaign id so every log line emitted
// during a dispatch run carries it.
func WithCampaign(ctx context.Context, campaignID string) context.Context {
	return context.WithValue(ctx, campaignKey, campaignID)
}

// WithTracking annotates ctx with the tracking id of the email currently
// being processed.
func WithTracking(ctx context.Context, trackingID string) context.Context {
	return context.WithValue(ctx, trackingKey, trackingID)
}

// CampaignID extracts the campaign id set by WithCampaign.
func CampaignID() ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := ctx.Value(campaignKey).(string); ok && id != "" {
			return slog.String("campaign_id", id), true
		}
		return slog.Attr{}, false
	}
}

// TrackingID extracts the tracking id set by WithTracking.
func TrackingID() ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := ctx.Value(trackingKey).(string); ok && id != "" {
			return slog.String("tracking_id", id), true
		}
		return slog.Attr{}, false
	}
}
