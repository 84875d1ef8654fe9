package message

import "errors"

var (
	// ErrNoRecipient indicates no recipient address was provided.
	ErrNoRecipient = errors.New("message must have a recipient")

	// ErrNoSubject indicates the subject is empty after scrubbing.
	ErrNoSubject = errors.New("message must have a subject")

	// ErrNoContent indicates no HTML body was provided.
	ErrNoContent = errors.New("message must have HTML content")

	// ErrInvalidFrontmatter indicates a malformed YAML frontmatter block.
	ErrInvalidFrontmatter = errors.New("invalid frontmatter")

	// ErrRenderFailed indicates markdown conversion failed.
	ErrRenderFailed = errors.New("failed to render markdown body")
)
