package campaign

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dmitrymomot/mailcast/pkg/attachment"
	"github.com/dmitrymomot/mailcast/pkg/htmldoc"
	"github.com/dmitrymomot/mailcast/pkg/logger"
	"github.com/dmitrymomot/mailcast/pkg/message"
	"github.com/dmitrymomot/mailcast/pkg/recipients"
	"github.com/dmitrymomot/mailcast/pkg/sanitizer"
	"github.com/dmitrymomot/mailcast/pkg/storage"
	"github.com/dmitrymomot/mailcast/pkg/tracker"
	"github.com/dmitrymomot/mailcast/pkg/transport"
)

// Dispatcher runs campaigns end to end. Safe for concurrent use; each
// Dispatch call is an independent run.
type Dispatcher struct {
	store     storage.Store
	transport transport.Transport
	sink      ProgressSink
	pacer     *Pacer
	san       *sanitizer.Sanitizer
	proc      *attachment.Processor
	composer  *message.Composer
	log       *slog.Logger
	baseURL   string
}

// NewDispatcher creates a Dispatcher with the given collaborators. Ambient
// concerns not set via options fall back to sane defaults: default sanitizer
// policy, default attachment policy, pacing from cfg.EmailsPerHour, no-op
// sink and logger.
func NewDispatcher(cfg Config, store storage.Store, tr transport.Transport, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:     store,
		transport: tr,
		sink:      NopSink{},
		pacer:     NewPacer(cfg.EmailsPerHour),
		san:       sanitizer.New(),
		proc:      attachment.NewProcessor(attachment.Config{}),
		log:       logger.NewNope(),
		baseURL:   strings.TrimRight(cfg.BaseURL, "/") + "/",
	}
	for _, opt := range opts {
		opt(d)
	}
	d.composer = message.NewComposer(cfg.Sender, d.san)
	return d
}

// Dispatch runs one campaign. It records the campaign, resolves recipients,
// then sends sequentially: each recipient gets a fresh tracking id, a body
// personalized with tracked links and an open pixel, and the validated
// attachments. The first failure aborts the remainder of the run.
//
// Request validation errors (missing subject or body) return before anything
// is persisted. Every later failure returns an Outcome alongside the error,
// describing how far the run got; the campaign record exists by then even if
// no email went out.
//
// Cancelling ctx stops the run before the next send and reports the partial
// outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Outcome, error) {
	subject := strings.TrimSpace(req.Subject)
	body := req.Body

	if req.Format == FormatMarkdown {
		rendered, err := message.RenderMarkdown(body)
		if err != nil {
			return nil, err
		}
		body = rendered.HTML
		if subject == "" {
			subject = strings.TrimSpace(rendered.Subject)
		}
	}
	if subject == "" {
		return nil, ErrMissingSubject
	}
	if strings.TrimSpace(body) == "" {
		return nil, ErrMissingBody
	}

	campaignID, err := d.store.CreateCampaign(ctx, subject, body)
	if err != nil {
		return nil, fmt.Errorf("create campaign: %w", err)
	}
	ctx = logger.WithCampaign(ctx, campaignID)

	recips := recipients.Resolve(req.RecipientsCSV, req.Recipients)
	total := len(recips)
	if total == 0 {
		return d.abort(ctx, campaignID, 0, 0, ErrNoRecipients)
	}

	baseDoc, err := htmldoc.Parse(d.san.Sanitize(body))
	if err != nil {
		return d.abort(ctx, campaignID, 0, total, fmt.Errorf("parse body: %w", err))
	}

	d.log.InfoContext(ctx, "campaign dispatch started",
		slog.Int("recipients", total),
		slog.Int("attachments", len(req.Attachments)))

	sent := 0
	for i, rcpt := range recips {
		if err := ctx.Err(); err != nil {
			return d.abort(ctx, campaignID, sent, total, fmt.Errorf("dispatch cancelled: %w", err))
		}

		trackingID, err := d.store.CreateTrackedEmail(ctx, campaignID, rcpt)
		if err != nil {
			return d.abort(ctx, campaignID, sent, total, fmt.Errorf("record email for %s: %w", rcpt, err))
		}
		sendCtx := logger.WithTracking(ctx, trackingID)

		// Attachments bind to <img> tags before the pixel is appended so an
		// inline image can never claim the tracking pixel's tag.
		doc := tracker.RewriteLinks(baseDoc, d.baseURL, trackingID)
		parts, doc, err := d.proc.Process(doc, req.Attachments)
		if err != nil {
			return d.abort(ctx, campaignID, sent, total, err)
		}
		doc = tracker.InjectPixel(doc, d.baseURL, trackingID)

		html, err := doc.Render()
		if err != nil {
			return d.abort(ctx, campaignID, sent, total, fmt.Errorf("render body: %w", err))
		}

		msg, err := d.composer.Compose(message.ComposeParams{
			To:      rcpt,
			Subject: subject,
			CC:      req.CC,
			BCC:     req.BCC,
			HTML:    html,
			Parts:   parts,
		})
		if err != nil {
			return d.abort(ctx, campaignID, sent, total, err)
		}

		if err := transport.Send(sendCtx, d.transport, msg); err != nil {
			return d.abort(ctx, campaignID, sent, total, fmt.Errorf("send to %s: %w", rcpt, err))
		}

		sent++
		d.emitProgress(ProgressEvent{Sent: sent, Total: total, Recipient: rcpt})
		d.log.InfoContext(sendCtx, "email sent",
			slog.String("recipient", rcpt),
			slog.Int("sent", sent),
			slog.Int("total", total))

		if i < total-1 {
			if err := d.pacer.Pause(ctx); err != nil {
				return d.abort(ctx, campaignID, sent, total, fmt.Errorf("dispatch cancelled: %w", err))
			}
		}
	}

	d.log.InfoContext(ctx, "campaign dispatch completed", slog.Int("sent", sent))
	return &Outcome{
		CampaignID: campaignID,
		Status:     StatusCompleted,
		Sent:       sent,
		Total:      total,
	}, nil
}

func (d *Dispatcher) abort(ctx context.Context, campaignID string, sent, total int, cause error) (*Outcome, error) {
	msg := failureMessage(cause)
	d.emitError(ErrorEvent{Message: msg})
	d.log.ErrorContext(ctx, "campaign dispatch aborted",
		slog.Int("sent", sent),
		slog.Int("total", total),
		slog.String("error", cause.Error()))

	return &Outcome{
		CampaignID: campaignID,
		Status:     StatusAborted,
		Sent:       sent,
		Total:      total,
		Message:    msg,
	}, cause
}

// failureMessage renders an operator-facing description of the failure,
// keeping credential problems distinguishable from delivery problems.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, transport.ErrAuth):
		return "authentication failed: check the configured transport credentials"
	case errors.Is(err, transport.ErrConnect):
		return "transport unreachable: " + err.Error()
	default:
		return err.Error()
	}
}

// emitProgress and emitError shield the run from sink misbehavior: a
// panicking sink aborts the event, never the dispatch.

func (d *Dispatcher) emitProgress(e ProgressEvent) {
	defer func() { _ = recover() }()
	d.sink.EmitProgress(e)
}

func (d *Dispatcher) emitError(e ErrorEvent) {
	defer func() { _ = recover() }()
	d.sink.EmitError(e)
}
