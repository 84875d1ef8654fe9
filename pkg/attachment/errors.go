package attachment

import "errors"

var (
	// ErrTooLarge indicates the decoded payload exceeds the configured size cap.
	ErrTooLarge = errors.New("attachment exceeds size limit")

	// ErrDisallowedType indicates the sniffed content type is outside the allowed set.
	ErrDisallowedType = errors.New("attachment type not allowed")

	// ErrInvalidEncoding indicates the payload is not valid base64.
	ErrInvalidEncoding = errors.New("attachment payload is not valid base64")
)
