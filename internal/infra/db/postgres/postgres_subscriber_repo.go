package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"iss-aprs-tracker/internal/domain"
	"iss-aprs-tracker/internal/domain/model"
	"iss-aprs-tracker/internal/domain/ports/repository"
)

var _ repository.SubscriberRepository = (*SubscriberRepo)(nil)

// SubscriberRepo is the Postgres subscriber store.
//
// Expected schema:
//
//	CREATE TABLE subscribers (
//	  id               UUID PRIMARY KEY,
//	  chat_id          BIGINT NOT NULL UNIQUE,
//	  username         TEXT NOT NULL DEFAULT '',
//	  lat_deg          DOUBLE PRECISION,
//	  lon_deg          DOUBLE PRECISION,
//	  alt_m            DOUBLE PRECISION,
//	  threshold_hours  DOUBLE PRECISION NOT NULL,
//	  watch_callsign   TEXT NOT NULL DEFAULT '',
//	  last_notified_at TIMESTAMPTZ,
//	  created_at       TIMESTAMPTZ NOT NULL
//	);
type SubscriberRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriberRepo(pool *pgxpool.Pool) *SubscriberRepo {
	return &SubscriberRepo{pool: pool}
}

const subscriberCols = `id, chat_id, username, lat_deg, lon_deg, alt_m, threshold_hours, watch_callsign, last_notified_at, created_at`

func (r *SubscriberRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscriber) error {
	const q = `
INSERT INTO subscribers (
  id, chat_id, username, lat_deg, lon_deg, alt_m, threshold_hours, watch_callsign, last_notified_at, created_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10
) ON CONFLICT (id) DO UPDATE SET
  chat_id=$2, username=$3, lat_deg=$4, lon_deg=$5, alt_m=$6,
  threshold_hours=$7, watch_callsign=$8;
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}

	var lat, lon, alt *float64
	if s.Location != nil {
		lat, lon, alt = &s.Location.LatDeg, &s.Location.LonDeg, &s.Location.AltM
	}

	_, err = ex.Exec(ctx, q, s.ID, s.ChatID, s.Username, lat, lon, alt, s.ThresholdHours, s.WatchCallsign, s.LastNotifiedAt, s.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// unique_violation on chat_id
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("save subscriber: %w", err)
	}
	return nil
}

func (r *SubscriberRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscriber, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	return scanSubscriber(ex.QueryRow(ctx, `SELECT `+subscriberCols+` FROM subscribers WHERE id=$1;`, id))
}

func (r *SubscriberRepo) FindByChatID(ctx context.Context, tx repository.Tx, chatID int64) (*model.Subscriber, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	return scanSubscriber(ex.QueryRow(ctx, `SELECT `+subscriberCols+` FROM subscribers WHERE chat_id=$1;`, chatID))
}

func (r *SubscriberRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Subscriber, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, `SELECT `+subscriberCols+` FROM subscribers ORDER BY created_at;`)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	var out []*model.Subscriber
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SubscriberRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, `DELETE FROM subscribers WHERE id=$1;`, id)
	if err != nil {
		return fmt.Errorf("delete subscriber: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkNotified performs the conditional dedup claim. The WHERE clause is the
// single-writer guarantee: concurrent evaluations of the same event race on
// one UPDATE and only one sees a row affected.
func (r *SubscriberRepo) MarkNotified(ctx context.Context, tx repository.Tx, id string, eventTime time.Time) error {
	const q = `
UPDATE subscribers SET last_notified_at=$2
 WHERE id=$1 AND (last_notified_at IS NULL OR last_notified_at < $2);
`
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, q, id, eventTime)
	if err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyNotified
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubscriber(row rowScanner) (*model.Subscriber, error) {
	var (
		s             model.Subscriber
		lat, lon, alt *float64
	)
	err := row.Scan(&s.ID, &s.ChatID, &s.Username, &lat, &lon, &alt, &s.ThresholdHours, &s.WatchCallsign, &s.LastNotifiedAt, &s.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if lat != nil && lon != nil {
		loc := model.GroundLocation{LatDeg: *lat, LonDeg: *lon}
		if alt != nil {
			loc.AltM = *alt
		}
		s.Location = &loc
	}
	return &s, nil
}
