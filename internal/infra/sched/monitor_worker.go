package sched

import (
	"context"
	"errors"
	"time"

	"iss-aprs-tracker/internal/domain"
	red "iss-aprs-tracker/internal/infra/redis"
	"iss-aprs-tracker/internal/usecase"

	"github.com/rs/zerolog"
)

const monitorLockKey = "lock:monitor"

// MonitorWorker drives the activity loop: poll the last-heard feed, append
// events, and hand ON events to the notification gate. Events are produced
// by this single loop, which is what keeps DetectedAt non-decreasing across
// the stream. A Redis lock keeps only one replica polling.
type MonitorWorker struct {
	interval   time.Duration
	activityUC usecase.ActivityUseCase
	notifyUC   usecase.NotificationUseCase
	locker     red.Locker
	log        *zerolog.Logger
}

func NewMonitorWorker(interval time.Duration, activityUC usecase.ActivityUseCase, notifyUC usecase.NotificationUseCase, locker red.Locker, logger *zerolog.Logger) *MonitorWorker {
	compLog := logger.With().Str("component", "MonitorWorker").Logger()
	return &MonitorWorker{
		interval:   interval,
		activityUC: activityUC,
		notifyUC:   notifyUC,
		locker:     locker,
		log:        &compLog,
	}
}

func (w *MonitorWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting monitor worker")
	// Run once on startup, then on every tick
	w.runCheck(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping monitor worker")
			return ctx.Err()
		case <-ticker.C:
			w.runCheck(ctx)
		}
	}
}

func (w *MonitorWorker) runCheck(ctx context.Context) {
	if w.locker != nil {
		token, err := w.locker.TryLock(ctx, monitorLockKey, 2*w.interval)
		if err != nil {
			if !errors.Is(err, domain.ErrLockHeld) {
				w.log.Warn().Err(err).Msg("monitor lock error")
			}
			return
		}
		defer func() { _ = w.locker.Unlock(ctx, monitorLockKey, token) }()
	}

	e, err := w.activityUC.CheckActivity(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("activity check failed")
		return
	}
	if e == nil {
		return
	}

	summary, err := w.notifyUC.Evaluate(ctx, e)
	if err != nil {
		w.log.Error().Err(err).Str("event_id", e.ID).Msg("gate evaluation failed")
		return
	}
	if summary.Notified > 0 || summary.Failed > 0 {
		w.log.Info().
			Str("event_id", e.ID).
			Str("state", string(e.State)).
			Int("notified", summary.Notified).
			Int("suppressed", summary.Suppressed).
			Int("failed", summary.Failed).
			Msg("event evaluated")
	}
}
