package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"

	"github.com/dmitrymomot/mailcast/pkg/message"
)

// SMTPConfig holds SMTP endpoint settings.
// Embed this in your app config for env parsing with caarlos0/env.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST,required"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	StartTLS bool   `env:"SMTP_STARTTLS" envDefault:"true"`
}

// SMTP is a Transport over a plain SMTP endpoint with STARTTLS and PLAIN
// authentication.
type SMTP struct {
	config SMTPConfig
}

// NewSMTP creates an SMTP transport.
func NewSMTP(cfg SMTPConfig) *SMTP {
	return &SMTP{config: cfg}
}

// Connect dials the endpoint and negotiates STARTTLS when configured. The
// returned session is not yet authenticated.
func (t *SMTP) Connect(ctx context.Context) (Session, error) {
	addr := net.JoinHostPort(t.config.Host, fmt.Sprint(t.config.Port))

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Join(ErrConnect, err)
	}

	client, err := smtp.NewClient(conn, t.config.Host)
	if err != nil {
		conn.Close() //nolint:errcheck // already failing
		return nil, errors.Join(ErrConnect, err)
	}

	if t.config.StartTLS {
		if err := client.StartTLS(&tls.Config{ServerName: t.config.Host}); err != nil {
			client.Close() //nolint:errcheck // already failing
			return nil, errors.Join(ErrConnect, err)
		}
	}

	return &smtpSession{client: client, config: t.config}, nil
}

type smtpSession struct {
	client *smtp.Client
	config SMTPConfig
}

func (s *smtpSession) Authenticate(_ context.Context) error {
	if s.config.Username == "" {
		return nil
	}
	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	if err := s.client.Auth(auth); err != nil {
		return errors.Join(ErrAuth, err)
	}
	return nil
}

func (s *smtpSession) Send(ctx context.Context, msg *message.Message) error {
	// net/smtp has no per-command context support; honor cancellation at the
	// command boundary before starting the envelope.
	if err := ctx.Err(); err != nil {
		return errors.Join(ErrSend, err)
	}

	if err := s.client.Mail(msg.From); err != nil {
		return errors.Join(ErrSend, err)
	}
	for _, rcpt := range envelopeRecipients(msg) {
		if err := s.client.Rcpt(rcpt); err != nil {
			return errors.Join(ErrSend, err)
		}
	}

	w, err := s.client.Data()
	if err != nil {
		return errors.Join(ErrSend, err)
	}
	if err := WriteMessage(w, msg); err != nil {
		w.Close() //nolint:errcheck // already failing
		return errors.Join(ErrSend, err)
	}
	if err := w.Close(); err != nil {
		return errors.Join(ErrSend, err)
	}
	return nil
}

func (s *smtpSession) Close() error {
	return s.client.Quit()
}

// envelopeRecipients lists every address the server must deliver to. BCC
// recipients appear here and only here; WriteMessage never emits a Bcc
// header.
func envelopeRecipients(msg *message.Message) []string {
	out := make([]string, 0, 1+len(msg.CC)+len(msg.BCC))
	out = append(out, msg.To)
	out = append(out, msg.CC...)
	out = append(out, msg.BCC...)
	return out
}
