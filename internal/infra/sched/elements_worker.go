package sched

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"iss-aprs-tracker/internal/config"
	"iss-aprs-tracker/internal/infra/metrics"
	"iss-aprs-tracker/internal/infra/tle"

	"github.com/rs/zerolog"
)

// ElementsWorker keeps the orbital elements store fresh: disk cache at
// startup, periodic refetch afterwards. A failed refresh keeps the previous
// snapshot — staleness is surfaced by the propagator, not here.
type ElementsWorker struct {
	cfg     config.ElementsConfig
	fetcher *tle.Fetcher
	cache   *tle.Cache
	store   *tle.Store
	log     *zerolog.Logger
}

func NewElementsWorker(cfg config.ElementsConfig, fetcher *tle.Fetcher, cache *tle.Cache, store *tle.Store, logger *zerolog.Logger) *ElementsWorker {
	compLog := logger.With().Str("component", "ElementsWorker").Logger()
	return &ElementsWorker{
		cfg:     cfg,
		fetcher: fetcher,
		cache:   cache,
		store:   store,
		log:     &compLog,
	}
}

// Bootstrap seeds the store from the disk cache and then the network.
// Failing both is the one fatal startup condition of the whole service:
// without any elements ever, the conditional gate cannot work at all.
func (w *ElementsWorker) Bootstrap(ctx context.Context) error {
	if data, ts, err := w.cache.LoadLatest(); err == nil {
		if st, err := tle.ParseSatellite(bytes.NewReader(data), w.cfg.NoradID, ts, "cache"); err == nil {
			w.store.Set(st)
			w.log.Info().
				Time("epoch", st.Epoch).
				Time("cached_at", ts).
				Msg("elements seeded from disk cache")
		} else {
			w.log.Warn().Err(err).Msg("cached elements unusable")
		}
	}

	if err := w.refresh(ctx); err != nil {
		if w.store.Get() == nil {
			return fmt.Errorf("no orbital elements from network or cache: %w", err)
		}
		w.log.Warn().Err(err).Msg("initial fetch failed, running on cached elements")
	}
	return nil
}

func (w *ElementsWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.cfg.RefreshInterval.Std()).Msg("Starting elements worker")
	ticker := time.NewTicker(w.cfg.RefreshInterval.Std())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping elements worker")
			return ctx.Err()
		case <-ticker.C:
			if err := w.refresh(ctx); err != nil {
				// Recoverable: last-known-good snapshot stays published.
				metrics.IncElementsFetch("stale_kept")
				w.log.Warn().Err(err).Msg("elements refresh failed, keeping previous snapshot")
			}
		}
	}
}

func (w *ElementsWorker) refresh(ctx context.Context) error {
	data, err := w.fetcher.Fetch(ctx)
	if err != nil {
		metrics.IncElementsFetch("error")
		return err
	}

	now := time.Now().UTC()
	st, err := tle.ParseSatellite(bytes.NewReader(data), w.cfg.NoradID, now, w.fetcher.SourceURL())
	if err != nil {
		metrics.IncElementsFetch("error")
		return fmt.Errorf("parsing fetched elements: %w", err)
	}

	w.store.Set(st)
	metrics.IncElementsFetch("ok")
	metrics.SetElementsAge(st.Age(now).Hours())

	if err := w.cache.Write(data, now); err != nil {
		w.log.Warn().Err(err).Msg("writing elements cache failed")
	}

	w.log.Info().
		Int("norad_id", st.NoradID).
		Str("name", st.Name).
		Time("epoch", st.Epoch).
		Msg("orbital elements refreshed")
	return nil
}
