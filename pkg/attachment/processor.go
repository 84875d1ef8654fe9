// Package attachment validates untrusted campaign attachments and prepares
// them for MIME composition. The payload's real content type is sniffed from
// its magic bytes; the attacker-controlled filename is never trusted for
// classification and is scrubbed before it can reach a MIME header.
package attachment

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/dmitrymomot/mailcast/pkg/htmldoc"
)

// Input is a raw upload as received from the caller.
type Input struct {
	Name string // attacker-controlled display name
	Data string // base64-encoded payload
}

// Part is a validated attachment ready for message composition. Inline parts
// carry a ContentID referenced from the HTML body via cid: URL.
type Part struct {
	Filename    string
	ContentType string
	ContentID   string
	Content     []byte
	Inline      bool
}

// Config holds attachment policy. Zero values fall back to the defaults.
type Config struct {
	// MaxSize is the per-attachment decoded size cap in bytes. Default 10 MiB.
	MaxSize int64 `env:"ATTACHMENT_MAX_SIZE" envDefault:"10485760"`
	// AllowedTypes overrides the allowed sniffed MIME types when non-empty.
	AllowedTypes []string `env:"ATTACHMENT_ALLOWED_TYPES"`
}

const defaultMaxSize = 10 << 20

var defaultAllowedTypes = []string{"image/jpeg", "image/png", "application/pdf"}

// Processor validates and classifies attachments per a fixed policy.
// Safe for concurrent use.
type Processor struct {
	allowed map[string]struct{}
	maxSize int64
}

// NewProcessor creates a Processor from cfg.
func NewProcessor(cfg Config) *Processor {
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}
	types := cfg.AllowedTypes
	if len(types) == 0 {
		types = defaultAllowedTypes
	}
	allowed := make(map[string]struct{}, len(types))
	for _, t := range types {
		allowed[t] = struct{}{}
	}
	return &Processor{allowed: allowed, maxSize: maxSize}
}

// Process validates each input and returns the resulting MIME parts along
// with a copy of doc whose <img> tags reference the embedded images.
//
// Image attachments bind to <img> tags positionally: the nth embeddable
// image claims the nth <img> tag in document order, whatever src or alt text
// that tag declares. Filename/alt equality plays no role in binding. Images
// left over after all tags are claimed, and every non-image attachment,
// become regular attachment parts.
func (p *Processor) Process(doc htmldoc.Document, inputs []Input) ([]Part, htmldoc.Document, error) {
	if len(inputs) == 0 {
		return nil, doc, nil
	}

	parts := make([]Part, 0, len(inputs))
	var procErr error

	out := doc.Transform(func(root *html.Node) {
		imgTags := htmldoc.FindAll(root, "img")
		imgIdx := 0

		for _, in := range inputs {
			name := SanitizeFilename(in.Name)

			data, err := base64.StdEncoding.DecodeString(in.Data)
			if err != nil {
				procErr = fmt.Errorf("attachment %q: %w", name, ErrInvalidEncoding)
				return
			}
			if int64(len(data)) > p.maxSize {
				procErr = fmt.Errorf("attachment %q: %w", name, ErrTooLarge)
				return
			}

			contentType := sniff(data)
			if _, ok := p.allowed[contentType]; !ok {
				procErr = fmt.Errorf("attachment %q (%s): %w", name, contentType, ErrDisallowedType)
				return
			}

			if strings.HasPrefix(contentType, "image/") && imgIdx < len(imgTags) {
				cid := "image-" + uuid.NewString()
				htmldoc.SetAttr(imgTags[imgIdx], "src", "cid:"+cid)
				imgIdx++

				parts = append(parts, Part{
					Filename:    name,
					ContentType: contentType,
					ContentID:   cid,
					Content:     data,
					Inline:      true,
				})
				continue
			}

			parts = append(parts, Part{
				Filename:    name,
				ContentType: contentType,
				Content:     data,
			})
		}
	})

	if procErr != nil {
		return nil, htmldoc.Document{}, procErr
	}
	return parts, out, nil
}

// SanitizeFilename keeps only letters, digits, dots, hyphens and
// underscores, neutralizing path traversal and header injection through the
// display name. Falls back to "attachment" when nothing survives.
func SanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "attachment"
	}
	return b.String()
}

// sniff detects the real content type from magic bytes, discarding any
// charset parameters the detector appends.
func sniff(data []byte) string {
	contentType := http.DetectContentType(data)
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.TrimSpace(contentType)
}
