// Package transport defines the mail delivery capability consumed by the
// dispatch engine: dial a session, authenticate it, send composed messages,
// close. Authentication failures are reported distinctly from generic
// delivery failures so operators can tell bad credentials apart from
// network or server trouble.
package transport

import (
	"context"
	"errors"

	"github.com/dmitrymomot/mailcast/pkg/message"
)

var (
	// ErrConnect indicates the transport endpoint could not be reached.
	ErrConnect = errors.New("transport: connection failed")

	// ErrAuth indicates the transport rejected the configured credentials.
	ErrAuth = errors.New("transport: authentication failed")

	// ErrSend indicates a delivery failure after successful authentication.
	ErrSend = errors.New("transport: send failed")
)

// Session is an open connection to a mail transport.
type Session interface {
	// Authenticate presents the transport's credentials. Returns an error
	// wrapping ErrAuth when they are rejected.
	Authenticate(ctx context.Context) error

	// Send delivers one composed message. Returns an error wrapping ErrSend
	// on delivery failure.
	Send(ctx context.Context, msg *message.Message) error

	// Close releases the session. Safe to call after a failed send.
	Close() error
}

// Transport dials sessions to a mail endpoint.
type Transport interface {
	// Connect opens a new session. Returns an error wrapping ErrConnect
	// when the endpoint is unreachable.
	Connect(ctx context.Context) (Session, error)
}

// Send opens a session, authenticates, delivers msg and closes. This is the
// one-connection-per-message strategy; callers batching many messages may
// instead hold a session open themselves.
func Send(ctx context.Context, tr Transport, msg *message.Message) error {
	sess, err := tr.Connect(ctx)
	if err != nil {
		return err
	}
	defer sess.Close() //nolint:errcheck // delivery outcome already decided

	if err := sess.Authenticate(ctx); err != nil {
		return err
	}
	return sess.Send(ctx, msg)
}

// CheckCredentials dials and authenticates without sending anything. Useful
// to validate configuration before starting a bulk run.
func CheckCredentials(ctx context.Context, tr Transport) error {
	sess, err := tr.Connect(ctx)
	if err != nil {
		return err
	}
	defer sess.Close() //nolint:errcheck // probe session

	return sess.Authenticate(ctx)
}
