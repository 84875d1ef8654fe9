// Package message assembles one transmittable email per recipient from the
// personalized HTML body and the validated attachment parts. Subjects are
// scrubbed against header injection before they reach a header line.
package message

import (
	"strings"

	"github.com/dmitrymomot/mailcast/pkg/attachment"
	"github.com/dmitrymomot/mailcast/pkg/sanitizer"
)

// Message is a fully composed email ready for a transport. It lives for one
// send operation and is never persisted.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
	CC      []string
	BCC     []string
	Parts   []attachment.Part
}

// InlineParts returns the parts embedded in the HTML body via Content-ID.
func (m *Message) InlineParts() []attachment.Part {
	return m.filterParts(true)
}

// AttachmentParts returns the regular downloadable attachment parts.
func (m *Message) AttachmentParts() []attachment.Part {
	return m.filterParts(false)
}

func (m *Message) filterParts(inline bool) []attachment.Part {
	var out []attachment.Part
	for _, p := range m.Parts {
		if p.Inline == inline {
			out = append(out, p)
		}
	}
	return out
}

// ComposeParams carries everything needed to compose one message.
type ComposeParams struct {
	To      string
	Subject string
	CC      string // comma-separated, may be empty
	BCC     string // comma-separated, may be empty
	HTML    string // sanitized, personalized body
	Parts   []attachment.Part
}

// Composer builds messages for a fixed sender address.
type Composer struct {
	san  *sanitizer.Sanitizer
	from string
}

// NewComposer creates a Composer. The sanitizer is used to scrub subjects;
// the HTML body is expected to be sanitized upstream.
func NewComposer(from string, san *sanitizer.Sanitizer) *Composer {
	if san == nil {
		san = sanitizer.New()
	}
	return &Composer{from: from, san: san}
}

// Compose validates params and assembles a Message.
func (c *Composer) Compose(p ComposeParams) (*Message, error) {
	if strings.TrimSpace(p.To) == "" {
		return nil, ErrNoRecipient
	}
	subject := c.CleanSubject(p.Subject)
	if subject == "" {
		return nil, ErrNoSubject
	}
	if strings.TrimSpace(p.HTML) == "" {
		return nil, ErrNoContent
	}

	return &Message{
		From:    c.from,
		To:      strings.TrimSpace(p.To),
		Subject: subject,
		HTML:    p.HTML,
		CC:      splitAddressList(p.CC),
		BCC:     splitAddressList(p.BCC),
		Parts:   p.Parts,
	}, nil
}

// CleanSubject strips markup and CR/LF so a subject can never smuggle
// additional headers or HTML into the message.
func (c *Composer) CleanSubject(subject string) string {
	s := c.san.StripTags(subject)
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}

func splitAddressList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if addr := strings.TrimSpace(part); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
