package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"iss-aprs-tracker/internal/domain"
	"iss-aprs-tracker/internal/domain/model"
	"iss-aprs-tracker/internal/domain/ports/repository"
)

var _ repository.ActivityLogRepository = (*ActivityLogRepo)(nil)

// ActivityLogRepo is the append-only Postgres activity log. ULID primary
// keys give lexicographic == chronological ordering, so "latest" is MAX(id).
//
// Expected schema:
//
//	CREATE TABLE activity_log (
//	  id          TEXT PRIMARY KEY,
//	  callsign    TEXT NOT NULL,
//	  heard_at    TIMESTAMPTZ NOT NULL,
//	  link        TEXT NOT NULL DEFAULT '',
//	  detected_at TIMESTAMPTZ NOT NULL,
//	  state       TEXT NOT NULL
//	);
type ActivityLogRepo struct {
	pool *pgxpool.Pool
}

func NewActivityLogRepo(pool *pgxpool.Pool) *ActivityLogRepo {
	return &ActivityLogRepo{pool: pool}
}

func (r *ActivityLogRepo) Append(ctx context.Context, tx repository.Tx, e *model.ActivityEvent) error {
	const q = `
INSERT INTO activity_log (id, callsign, heard_at, link, detected_at, state)
VALUES ($1,$2,$3,$4,$5,$6);
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	_, err = ex.Exec(ctx, q, e.ID, e.Station.Callsign, e.Station.HeardAt, e.Station.Link, e.DetectedAt, string(e.State))
	if err != nil {
		return fmt.Errorf("append activity event: %w", err)
	}
	return nil
}

func (r *ActivityLogRepo) Last(ctx context.Context, tx repository.Tx) (*model.ActivityEvent, error) {
	const q = `
SELECT id, callsign, heard_at, link, detected_at, state
  FROM activity_log ORDER BY id DESC LIMIT 1;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}

	var (
		e     model.ActivityEvent
		state string
	)
	err = ex.QueryRow(ctx, q).Scan(&e.ID, &e.Station.Callsign, &e.Station.HeardAt, &e.Station.Link, &e.DetectedAt, &state)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	e.State = model.ActivityState(state)
	return &e, nil
}

func (r *ActivityLogRepo) CountSince(ctx context.Context, tx repository.Tx, sinceID string) (int, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := ex.QueryRow(ctx, `SELECT COUNT(*) FROM activity_log WHERE id > $1;`, sinceID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count activity events: %w", err)
	}
	return n, nil
}
