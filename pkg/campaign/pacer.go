package campaign

import (
	"context"
	"time"
)

// Pacer enforces the send rate by pausing between consecutive sends. The
// pause duration derives from the configured emails-per-hour budget: 3600
// emails per hour means one second between sends.
type Pacer struct {
	interval time.Duration
	wait     func(ctx context.Context, d time.Duration) error
}

// NewPacer creates a Pacer for the given hourly budget. A budget of zero or
// less disables pacing entirely.
func NewPacer(emailsPerHour int) *Pacer {
	var interval time.Duration
	if emailsPerHour > 0 {
		interval = time.Hour / time.Duration(emailsPerHour)
	}
	return &Pacer{interval: interval, wait: sleepContext}
}

// Interval reports the pause applied between sends.
func (p *Pacer) Interval() time.Duration {
	return p.interval
}

// Pause blocks for the configured interval or until ctx is done, whichever
// comes first. Returns the context error when interrupted.
func (p *Pacer) Pause(ctx context.Context) error {
	if p == nil || p.interval <= 0 {
		return ctx.Err()
	}
	return p.wait(ctx, p.interval)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
