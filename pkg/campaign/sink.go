package campaign

// ProgressEvent is emitted after every successful send.
type ProgressEvent struct {
	Sent      int
	Total     int
	Recipient string
}

// ErrorEvent is emitted exactly once when a run aborts.
type ErrorEvent struct {
	Message string
}

// ProgressSink receives dispatch lifecycle events. Implementations must not
// block: a slow or broken sink must never stall or fail the run itself, so
// anything involving I/O should buffer or drop internally.
type ProgressSink interface {
	EmitProgress(e ProgressEvent)
	EmitError(e ErrorEvent)
}

// NopSink discards all events. It is the default when no sink is configured.
type NopSink struct{}

func (NopSink) EmitProgress(ProgressEvent) {}
func (NopSink) EmitError(ErrorEvent)       {}
