// Package resend adapts the Resend HTTP API to the transport contract.
// Resend is sessionless; Connect and Close are cheap and authentication
// amounts to presenting the API key on the first call.
package resend

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v3"

	"github.com/dmitrymomot/mailcast/pkg/message"
	"github.com/dmitrymomot/mailcast/pkg/transport"
)

// Config holds Resend provider configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	APIKey      string `env:"RESEND_API_KEY"`
	SenderEmail string `env:"RESEND_FROM_EMAIL"`
	SenderName  string `env:"RESEND_FROM_NAME"`
}

// Transport implements transport.Transport over the Resend API.
type Transport struct {
	client *resend.Client
	config Config
}

// New creates a Resend transport.
func New(cfg Config) *Transport {
	return &Transport{
		client: resend.NewClient(cfg.APIKey),
		config: cfg,
	}
}

// Connect returns a ready session; there is no connection to establish.
func (t *Transport) Connect(_ context.Context) (transport.Session, error) {
	return &session{client: t.client, config: t.config}, nil
}

type session struct {
	client *resend.Client
	config Config
}

func (s *session) Authenticate(_ context.Context) error {
	if s.config.APIKey == "" {
		return errors.Join(transport.ErrAuth, errors.New("resend: missing API key"))
	}
	return nil
}

func (s *session) Send(ctx context.Context, msg *message.Message) error {
	from := msg.From
	if from == "" {
		if s.config.SenderName != "" {
			from = fmt.Sprintf("%s <%s>", s.config.SenderName, s.config.SenderEmail)
		} else {
			from = s.config.SenderEmail
		}
	}

	req := &resend.SendEmailRequest{
		From:    from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Cc:      msg.CC,
		Bcc:     msg.BCC,
	}

	for _, p := range msg.Parts {
		req.Attachments = append(req.Attachments, &resend.Attachment{
			Filename:    p.Filename,
			Content:     p.Content,
			ContentType: p.ContentType,
			ContentId:   p.ContentID,
		})
	}

	if _, err := s.client.Emails.SendWithContext(ctx, req); err != nil {
		return errors.Join(transport.ErrSend, err)
	}
	return nil
}

func (s *session) Close() error { return nil }
