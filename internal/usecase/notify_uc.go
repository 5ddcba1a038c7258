package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"iss-aprs-tracker/internal/domain"
	"iss-aprs-tracker/internal/domain/model"
	"iss-aprs-tracker/internal/domain/ports/adapter"
	"iss-aprs-tracker/internal/domain/ports/repository"
	"iss-aprs-tracker/internal/infra/logging"
	"iss-aprs-tracker/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ NotificationUseCase = (*notifyUC)(nil)

// NotificationUseCase is the notification gate: it decides, per subscriber,
// whether an activity event warrants a message.
type NotificationUseCase interface {
	Evaluate(ctx context.Context, e *model.ActivityEvent) (EvalSummary, error)
}

// EvalSummary aggregates gate outcomes over one event.
type EvalSummary struct {
	Notified   int
	Suppressed int
	Failed     int
}

// ElementsProvider hands out the current orbital state snapshot.
// Satisfied by the tle store; nil snapshots mean no elements yet.
type ElementsProvider interface {
	Get() *model.OrbitalState
}

// PassPredictor finds the first visibility window starting within the
// horizon. Satisfied by the orbit predictor.
type PassPredictor interface {
	NextPass(ctx context.Context, st *model.OrbitalState, loc model.GroundLocation, from time.Time, horizon time.Duration) (model.PassWindow, error)
}

type notifyUC struct {
	subs      repository.SubscriberRepository
	elements  ElementsProvider
	predictor PassPredictor
	notifier  adapter.Notifier

	defaultThresholdHours float64
	workers               int

	now func() time.Time
	log *zerolog.Logger
}

func NewNotificationUseCase(
	subs repository.SubscriberRepository,
	elements ElementsProvider,
	predictor PassPredictor,
	notifier adapter.Notifier,
	defaultThresholdHours float64,
	workers int,
	logger *zerolog.Logger,
) *notifyUC {
	if workers <= 0 {
		workers = 8
	}
	return &notifyUC{
		subs:                  subs,
		elements:              elements,
		predictor:             predictor,
		notifier:              notifier,
		defaultThresholdHours: defaultThresholdHours,
		workers:               workers,
		now:                   time.Now,
		log:                   logger,
	}
}

// gate outcomes for one (subscriber, event) evaluation.
type outcome int

const (
	outcomeSkipped outcome = iota
	outcomeNotified
	outcomeSuppressed
	outcomeFailed
)

// Evaluate runs the gate over every subscriber for one event. Subscriber
// evaluations are independent and fanned out to a bounded worker group; a
// failure in one never aborts the others. Ordering between subscribers does
// not matter — the at-most-once invariant is carried by the repository's
// conditional MarkNotified claim, not by scheduling.
func (u *notifyUC) Evaluate(ctx context.Context, e *model.ActivityEvent) (EvalSummary, error) {
	defer logging.TraceDuration(u.log, "NotifyUC.Evaluate")()
	start := u.now()
	ctx = logging.WithEventID(ctx, e.ID)

	subs, err := u.subs.List(ctx, repository.NoTX)
	if err != nil {
		return EvalSummary{}, err
	}

	var (
		mu      sync.Mutex
		summary EvalSummary
		wg      sync.WaitGroup
		sem     = make(chan struct{}, u.workers)
	)

	for _, s := range subs {
		wg.Add(1)
		go func(s *model.Subscriber) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			res := u.evaluateOne(ctx, s, e)

			mu.Lock()
			switch res {
			case outcomeNotified:
				summary.Notified++
				metrics.IncNotification("notified")
			case outcomeSuppressed:
				summary.Suppressed++
				metrics.IncNotification("suppressed")
			case outcomeFailed:
				summary.Failed++
				metrics.IncNotification("failed")
			}
			mu.Unlock()
		}(s)
	}
	wg.Wait()

	metrics.ObserveEvaluation(float64(time.Since(start).Milliseconds()))
	return summary, nil
}

// evaluateOne walks the per-subscriber state machine:
//
//	IDLE → EVALUATING on a qualifying event,
//	EVALUATING → NOTIFIED when the dedup claim succeeds and the pass gate
//	  (if a location is set) finds a window starting within the threshold,
//	EVALUATING → SUPPRESSED otherwise.
//
// Predictor failures map to SUPPRESSED with the error logged: one
// subscriber's bad luck must not block the rest.
func (u *notifyUC) evaluateOne(ctx context.Context, s *model.Subscriber, e *model.ActivityEvent) outcome {
	ctx = logging.WithChatID(ctx, s.ChatID)
	log := logging.With(ctx, u.log).With().Str("subscriber_id", s.ID).Logger()

	watchHit := s.Watches(e.Station.Callsign)
	tracking := e.State == model.ActivityOn

	if !watchHit && !tracking {
		return outcomeSkipped
	}

	// Cheap dedup precheck; the authoritative claim is MarkNotified below.
	if s.NotifiedFor(e.DetectedAt) {
		return outcomeSuppressed
	}

	// Conditional tracking: with a location on file, only notify when a
	// visibility pass starts within the subscriber's threshold window.
	// Watch hits bypass the gate — the packet already proves reachability.
	var pass *model.PassWindow
	if tracking && !watchHit && s.Location != nil {
		w, ok := u.nextQualifyingPass(ctx, s, &log)
		if !ok {
			return outcomeSuppressed
		}
		pass = &w
	}

	if err := u.subs.MarkNotified(ctx, repository.NoTX, s.ID, e.DetectedAt); err != nil {
		if errors.Is(err, domain.ErrAlreadyNotified) {
			return outcomeSuppressed
		}
		log.Error().Err(err).Msg("dedup claim failed")
		return outcomeFailed
	}

	// Claim-then-send: if delivery fails the claim stands, keeping
	// at-most-once. The messaging collaborator owns any retry.
	var err error
	if watchHit {
		err = u.notifier.NotifyWatch(ctx, s.ChatID, e)
	} else {
		err = u.notifier.NotifyActivity(ctx, s.ChatID, e, pass)
	}
	if err != nil {
		log.Warn().Err(err).Msg("notification delivery failed")
		return outcomeFailed
	}
	return outcomeNotified
}

// nextQualifyingPass asks the predictor for the first pass starting within
// the subscriber's threshold window. (false, not an error, when the window
// is clear, elements are missing/stale, or prediction fails.)
func (u *notifyUC) nextQualifyingPass(ctx context.Context, s *model.Subscriber, log *zerolog.Logger) (model.PassWindow, bool) {
	st := u.elements.Get()
	if st.IsZero() {
		log.Warn().Msg("no orbital elements available, suppressing")
		return model.PassWindow{}, false
	}

	hours := s.ThresholdHours
	if hours <= 0 {
		hours = u.defaultThresholdHours
	}
	horizon := time.Duration(hours * float64(time.Hour))

	start := u.now()
	w, err := u.predictor.NextPass(ctx, st, *s.Location, start, horizon)
	metrics.ObservePrediction(float64(time.Since(start).Milliseconds()))

	if err != nil {
		if !errors.Is(err, domain.ErrNoPasses) {
			log.Warn().Err(err).Msg("pass prediction failed, suppressing")
		}
		return model.PassWindow{}, false
	}
	return w, true
}
