package usecase

import (
	"context"
	"errors"
	"time"

	"iss-aprs-tracker/internal/domain"
	"iss-aprs-tracker/internal/domain/model"
	"iss-aprs-tracker/internal/domain/ports/adapter"
	"iss-aprs-tracker/internal/domain/ports/repository"
	"iss-aprs-tracker/internal/infra/logging"
	"iss-aprs-tracker/internal/infra/metrics"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ ActivityUseCase = (*activityUC)(nil)

// ActivityUseCase turns samples of the last-heard feed into the append-only
// activity stream and answers last-heard queries.
type ActivityUseCase interface {
	// CheckActivity polls the source once and appends an event when the
	// last-heard entry changed. The returned event is non-nil only when an
	// event was appended; its State tells the gate whether the digipeater
	// just came back on the air.
	CheckActivity(ctx context.Context) (*model.ActivityEvent, error)

	// LastHeard returns the most recent station, preferring the cache.
	LastHeard(ctx context.Context) (model.Station, error)

	// ActivitySince counts events appended at or after the given time.
	ActivitySince(ctx context.Context, since time.Time) (int, error)
}

// StationCache is the optional hot cache for last-heard samples.
type StationCache interface {
	Put(ctx context.Context, st model.Station) error
	Get(ctx context.Context) (model.Station, error)
}

type activityUC struct {
	source adapter.ActivitySource
	events repository.ActivityLogRepository
	cache  StationCache
	gap    time.Duration
	now    func() time.Time
	log    *zerolog.Logger
}

func NewActivityUseCase(source adapter.ActivitySource, events repository.ActivityLogRepository, cache StationCache, inactivityGap time.Duration, logger *zerolog.Logger) *activityUC {
	return &activityUC{
		source: source,
		events: events,
		cache:  cache,
		gap:    inactivityGap,
		now:    time.Now,
		log:    logger,
	}
}

// CheckActivity applies the detection rule: a changed last-heard entry is
// "new activity" (State=ON) only when the previous entry is older than the
// inactivity gap, meaning the digipeater was off the air and packets are
// flowing again. A changed entry within the gap is routine traffic and is
// appended as State=OFF.
func (u *activityUC) CheckActivity(ctx context.Context) (*model.ActivityEvent, error) {
	defer logging.TraceDuration(u.log, "ActivityUC.CheckActivity")()

	current, err := u.source.LastHeard(ctx)
	if err != nil {
		metrics.IncMonitorPoll("error")
		return nil, err
	}
	metrics.IncMonitorPoll("ok")

	if u.cache != nil {
		if err := u.cache.Put(ctx, current); err != nil {
			u.log.Warn().Err(err).Msg("last-heard cache put failed")
		}
	}

	now := u.now()

	last, err := u.events.Last(ctx, repository.NoTX)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		// First run: seed the log so the next change can be classified.
		seed, err := model.NewActivityEvent(current, now, model.ActivityOff)
		if err != nil {
			return nil, err
		}
		if err := u.events.Append(ctx, repository.NoTX, seed); err != nil {
			return nil, err
		}
		metrics.IncActivityEvent(string(seed.State))
		u.log.Info().Str("callsign", current.Callsign).Msg("activity log initialized")
		return nil, nil
	}

	if current.Equal(last.Station) {
		return nil, nil // nothing new
	}

	state := model.ActivityOff
	if now.Sub(last.Station.HeardAt) > u.gap {
		state = model.ActivityOn
	}

	e, err := model.NewActivityEvent(current, now, state)
	if err != nil {
		return nil, err
	}
	if err := u.events.Append(ctx, repository.NoTX, e); err != nil {
		return nil, err
	}
	metrics.IncActivityEvent(string(e.State))

	if state == model.ActivityOn {
		u.log.Info().
			Str("callsign", current.Callsign).
			Time("heard_at", current.HeardAt).
			Msg("new activity after inactivity gap")
	}
	return e, nil
}

func (u *activityUC) LastHeard(ctx context.Context) (model.Station, error) {
	if u.cache != nil {
		if st, err := u.cache.Get(ctx); err == nil {
			return st, nil
		}
	}
	return u.source.LastHeard(ctx)
}

// ActivitySince counts events at or after since. Event IDs are ULIDs, so
// the zero-entropy ULID at that timestamp is a lower bound for the scan.
func (u *activityUC) ActivitySince(ctx context.Context, since time.Time) (int, error) {
	floor := ulid.MustNew(ulid.Timestamp(since.UTC()), nil)
	return u.events.CountSince(ctx, repository.NoTX, floor.String())
}
