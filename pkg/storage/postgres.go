package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres implements Store over a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an existing pool. Use Connect to build the pool from Config.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Connect establishes a PostgreSQL connection pool with retry and returns a
// ready Postgres store. Retries back off linearly so simultaneous service
// restarts don't hammer the database.
func Connect(ctx context.Context, cfg Config) (*Postgres, error) {
	connConfig, err := pgxpool.ParseConfig(cfg.ConnectionString)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseConfig, err)
	}
	connConfig.MaxConns = cfg.MaxOpenConns
	connConfig.MinConns = cfg.MinConns
	connConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	connConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	connConfig.MaxConnLifetime = cfg.MaxConnLifetime

	attempts := max(cfg.RetryAttempts, 1)
	for i := range attempts {
		pool, err := pgxpool.NewWithConfig(ctx, connConfig)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return &Postgres{pool: pool}, nil
			}
			pool.Close()
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrFailedToOpenConnection, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}

	return nil, ErrFailedToOpenConnection
}

// Close releases the underlying pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// Pool exposes the underlying pool for migrations and health checks.
func (p *Postgres) Pool() *pgxpool.Pool {
	return p.pool
}

func (p *Postgres) CreateCampaign(ctx context.Context, subject, body string) (string, error) {
	id := uuid.NewString()
	_, err := p.pool.Exec(ctx,
		`INSERT INTO campaigns (id, subject, message) VALUES ($1, $2, $3)`,
		id, subject, body)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (p *Postgres) CreateTrackedEmail(ctx context.Context, campaignID, recipient string) (string, error) {
	id := uuid.NewString()
	_, err := p.pool.Exec(ctx,
		`INSERT INTO emails (id, campaign_id, recipient) VALUES ($1, $2, $3)`,
		id, campaignID, recipient)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (p *Postgres) RecordOpen(ctx context.Context, trackingID string) error {
	if !validID(trackingID) {
		return ErrNotFound
	}
	tag, err := p.pool.Exec(ctx,
		`INSERT INTO opens (email_id) SELECT id FROM emails WHERE id = $1`,
		trackingID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) RecordClick(ctx context.Context, trackingID, url string) error {
	if !validID(trackingID) {
		return ErrNotFound
	}
	tag, err := p.pool.Exec(ctx,
		`INSERT INTO clicks (email_id, url) SELECT id, $2 FROM emails WHERE id = $1`,
		trackingID, url)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) CampaignReport(ctx context.Context, campaignID string) (*Report, error) {
	if !validID(campaignID) {
		return nil, ErrNotFound
	}

	var r Report
	r.CampaignID = campaignID
	err := p.pool.QueryRow(ctx,
		`SELECT subject, created_at FROM campaigns WHERE id = $1`,
		campaignID).Scan(&r.Subject, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	err = p.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM emails WHERE campaign_id = $1),
			(SELECT count(DISTINCT o.email_id)
			   FROM opens o JOIN emails e ON e.id = o.email_id
			  WHERE e.campaign_id = $1),
			(SELECT count(DISTINCT c.email_id)
			   FROM clicks c JOIN emails e ON e.id = c.email_id
			  WHERE e.campaign_id = $1)`,
		campaignID).Scan(&r.TotalSent, &r.UniqueOpens, &r.UniqueClicks)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (p *Postgres) ListCampaigns(ctx context.Context) ([]Campaign, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, subject, message, created_at FROM campaigns ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Campaign
	for rows.Next() {
		var c Campaign
		if err := rows.Scan(&c.ID, &c.Subject, &c.Message, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// validID rejects ids that cannot be uuids before they reach a query, so an
// attacker probing tracking URLs gets a clean not-found instead of a
// database type error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
