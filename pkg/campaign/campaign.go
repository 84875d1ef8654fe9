// Package campaign runs bulk email dispatches: it resolves recipients,
// personalizes the body with tracking for each of them, composes the message
// and hands it to a transport, one recipient at a time with rate-limit
// pacing in between. A run either completes for every recipient or aborts on
// the first failure; partially failed runs report how far they got.
package campaign

import "github.com/dmitrymomot/mailcast/pkg/attachment"

// Format selects how Request.Body is interpreted.
type Format string

const (
	// FormatHTML treats the body as raw HTML. This is the zero-value default.
	FormatHTML Format = "html"
	// FormatMarkdown renders the body from Markdown, honoring an optional
	// YAML frontmatter block that may declare the subject.
	FormatMarkdown Format = "markdown"
)

// Request describes one campaign to dispatch. The body and attachments are
// untrusted input; the engine sanitizes and validates them before anything
// reaches a wire.
type Request struct {
	Subject string
	Body    string
	Format  Format // empty means FormatHTML

	// RecipientsCSV is a raw CSV/newline blob; malformed addresses are
	// silently dropped during resolution.
	RecipientsCSV string
	// Recipients are manually entered addresses merged with the CSV ones.
	Recipients []string

	CC  string // comma-separated, applied to every message
	BCC string // comma-separated, applied to every message

	Attachments []attachment.Input
}

// Status is the terminal state of a dispatch run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusAborted   Status = "aborted"
)

// Outcome reports how a dispatch run ended.
type Outcome struct {
	CampaignID string
	Status     Status
	Sent       int
	Total      int
	// Message describes the failure when Status is StatusAborted.
	Message string
}
