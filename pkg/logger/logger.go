// Package logger provides structured logging for the dispatch engine:
// JSON slog output, context-injected campaign attributes and optional
// Sentry error reporting that degrades gracefully when unconfigured.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// New creates a JSON logger writing to stdout. Extractors inject
// context-scoped attributes (campaign id, recipient) on every log call.
func New(extractors ...ContextExtractor) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(newExtractorHandler(h, extractors...))
}

// NewNope creates a logger that discards everything. Default for tests and
// optional dependencies.
func NewNope() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// SentryConfig holds Sentry integration settings.
// Embed this in your app config for env parsing with caarlos0/env.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
	// MinLevel determines which levels are forwarded as Sentry logs.
	MinLevel slog.Level
}

// NewWithSentry creates a logger writing to stdout and, when a DSN is
// configured, to Sentry. An empty DSN or a failed Sentry init falls back to
// stdout-only logging so the same code path works in development.
func NewWithSentry(cfg SentryConfig, extractors ...ContextExtractor) *slog.Logger {
	stdout := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})

	if cfg.DSN == "" {
		return slog.New(newExtractorHandler(stdout, extractors...))
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		EnableLogs:  true,
	}); err != nil {
		slog.New(stdout).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return slog.New(newExtractorHandler(stdout, extractors...))
	}

	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if cfg.MinLevel == slog.LevelError {
		logLevel = []slog.Level{slog.LevelError}
	}
	sentryHandler := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background())

	return slog.New(newExtractorHandler(newMultiHandler(stdout, sentryHandler), extractors...))
}
