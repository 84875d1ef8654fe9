package campaign

import "errors"

var (
	// ErrNoRecipients indicates recipient resolution produced no valid addresses.
	ErrNoRecipients = errors.New("campaign: no valid recipients")

	// ErrMissingSubject indicates the request declared no subject, neither
	// directly nor via markdown frontmatter.
	ErrMissingSubject = errors.New("campaign: subject is required")

	// ErrMissingBody indicates the request carried an empty message body.
	ErrMissingBody = errors.New("campaign: message body is required")
)
