package campaign

import (
	"log/slog"

	"github.com/dmitrymomot/mailcast/pkg/attachment"
	"github.com/dmitrymomot/mailcast/pkg/sanitizer"
)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(log *slog.Logger) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}

// WithSink sets the progress sink. Defaults to NopSink.
func WithSink(sink ProgressSink) Option {
	return func(d *Dispatcher) {
		if sink != nil {
			d.sink = sink
		}
	}
}

// WithPacer overrides the pacer built from Config.EmailsPerHour.
func WithPacer(p *Pacer) Option {
	return func(d *Dispatcher) {
		if p != nil {
			d.pacer = p
		}
	}
}

// WithSanitizer overrides the default HTML sanitizer policy.
func WithSanitizer(san *sanitizer.Sanitizer) Option {
	return func(d *Dispatcher) {
		if san != nil {
			d.san = san
		}
	}
}

// WithAttachmentProcessor overrides the default attachment policy.
func WithAttachmentProcessor(p *attachment.Processor) Option {
	return func(d *Dispatcher) {
		if p != nil {
			d.proc = p
		}
	}
}
