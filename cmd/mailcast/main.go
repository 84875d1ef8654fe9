// Command mailcast runs the campaign mailer: the dispatch API, the tracking
// endpoints embedded in sent emails and the reporting API, all on one HTTP
// server backed by Postgres.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/mailcast/internal/trackhttp"
	"github.com/dmitrymomot/mailcast/pkg/attachment"
	"github.com/dmitrymomot/mailcast/pkg/campaign"
	"github.com/dmitrymomot/mailcast/pkg/logger"
	"github.com/dmitrymomot/mailcast/pkg/storage"
	"github.com/dmitrymomot/mailcast/pkg/transport"
	"github.com/dmitrymomot/mailcast/pkg/transport/resend"
)

type config struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// MailerDriver selects the delivery transport: "smtp" or "resend".
	// The driver's own settings are parsed only when it is selected.
	MailerDriver string `env:"MAILER_DRIVER" envDefault:"smtp"`

	Campaign    campaign.Config
	Attachments attachment.Config
	Storage     storage.Config
	Sentry      logger.SentryConfig
}

func main() {
	if err := run(); err != nil {
		slog.Error("mailcast exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	log := logger.NewWithSentry(cfg.Sentry, logger.CampaignID(), logger.TrackingID())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := storage.Connect(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("connect storage: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx, cfg.Storage.MigrationsTable, log); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	tr, err := newTransport(cfg.MailerDriver)
	if err != nil {
		return err
	}

	hub := trackhttp.NewHub()
	dispatcher := campaign.NewDispatcher(cfg.Campaign, store, tr,
		campaign.WithLogger(log),
		campaign.WithSink(hub),
		campaign.WithAttachmentProcessor(attachment.NewProcessor(cfg.Attachments)))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           trackhttp.New(store, dispatcher, hub, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", slog.String("address", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("shutdown completed")
	return nil
}

func newTransport(driver string) (transport.Transport, error) {
	switch driver {
	case "smtp":
		var cfg transport.SMTPConfig
		if err := env.Parse(&cfg); err != nil {
			return nil, fmt.Errorf("parse smtp config: %w", err)
		}
		return transport.NewSMTP(cfg), nil
	case "resend":
		var cfg resend.Config
		if err := env.Parse(&cfg); err != nil {
			return nil, fmt.Errorf("parse resend config: %w", err)
		}
		return resend.New(cfg), nil
	default:
		return nil, fmt.Errorf("unknown mailer driver %q", driver)
	}
}
