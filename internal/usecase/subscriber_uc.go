package usecase

import (
	"context"
	"errors"
	"strings"

	"iss-aprs-tracker/internal/domain"
	"iss-aprs-tracker/internal/domain/model"
	"iss-aprs-tracker/internal/domain/ports/repository"
	"iss-aprs-tracker/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ SubscriberUseCase = (*subscriberUC)(nil)

// SubscriberUseCase exposes subscriber management to the admin API.
type SubscriberUseCase interface {
	Register(ctx context.Context, chatID int64, username string, thresholdHours float64) (*model.Subscriber, error)
	SetLocation(ctx context.Context, id string, latDeg, lonDeg, altM float64) (*model.Subscriber, error)
	ClearLocation(ctx context.Context, id string) (*model.Subscriber, error)
	SetThreshold(ctx context.Context, id string, hours float64) (*model.Subscriber, error)
	Watch(ctx context.Context, id, callsign string) (*model.Subscriber, error)
	Unwatch(ctx context.Context, id string) (*model.Subscriber, error)
	Get(ctx context.Context, id string) (*model.Subscriber, error)
	List(ctx context.Context) ([]*model.Subscriber, error)
	Remove(ctx context.Context, id string) error
}

type subscriberUC struct {
	subs repository.SubscriberRepository
	tm   repository.TransactionManager
	log  *zerolog.Logger

	defaultThresholdHours float64
}

func NewSubscriberUseCase(subs repository.SubscriberRepository, tm repository.TransactionManager, defaultThresholdHours float64, logger *zerolog.Logger) *subscriberUC {
	return &subscriberUC{
		subs:                  subs,
		tm:                    tm,
		log:                   logger,
		defaultThresholdHours: defaultThresholdHours,
	}
}

// Register creates a subscriber for a chat, or returns the existing one.
// The find and the save run in one transaction to avoid duplicate chats
// racing each other past the unique constraint check.
func (u *subscriberUC) Register(ctx context.Context, chatID int64, username string, thresholdHours float64) (*model.Subscriber, error) {
	defer logging.TraceDuration(u.log, "SubscriberUC.Register")()

	if thresholdHours <= 0 {
		thresholdHours = u.defaultThresholdHours
	}

	var sub *model.Subscriber
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		existing, err := u.subs.FindByChatID(ctx, tx, chatID)
		if err == nil {
			sub = existing
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		ns, err := model.NewSubscriber("", chatID, username, thresholdHours)
		if err != nil {
			return err
		}
		if err := u.subs.Save(ctx, tx, ns); err != nil {
			return err
		}
		sub = ns
		return nil
	})
	return sub, err
}

func (u *subscriberUC) SetLocation(ctx context.Context, id string, latDeg, lonDeg, altM float64) (*model.Subscriber, error) {
	loc, err := model.NewGroundLocation(latDeg, lonDeg, altM)
	if err != nil {
		return nil, err
	}
	return u.update(ctx, id, func(s *model.Subscriber) error {
		s.Location = loc
		return nil
	})
}

func (u *subscriberUC) ClearLocation(ctx context.Context, id string) (*model.Subscriber, error) {
	return u.update(ctx, id, func(s *model.Subscriber) error {
		s.Location = nil
		return nil
	})
}

func (u *subscriberUC) SetThreshold(ctx context.Context, id string, hours float64) (*model.Subscriber, error) {
	if hours <= 0 || hours > 72 {
		return nil, domain.ErrInvalidArgument
	}
	return u.update(ctx, id, func(s *model.Subscriber) error {
		s.ThresholdHours = hours
		return nil
	})
}

func (u *subscriberUC) Watch(ctx context.Context, id, callsign string) (*model.Subscriber, error) {
	callsign = strings.ToUpper(strings.TrimSpace(callsign))
	if callsign == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.update(ctx, id, func(s *model.Subscriber) error {
		s.WatchCallsign = callsign
		return nil
	})
}

func (u *subscriberUC) Unwatch(ctx context.Context, id string) (*model.Subscriber, error) {
	return u.update(ctx, id, func(s *model.Subscriber) error {
		s.WatchCallsign = ""
		return nil
	})
}

func (u *subscriberUC) Get(ctx context.Context, id string) (*model.Subscriber, error) {
	return u.subs.FindByID(ctx, repository.NoTX, id)
}

func (u *subscriberUC) List(ctx context.Context) ([]*model.Subscriber, error) {
	return u.subs.List(ctx, repository.NoTX)
}

func (u *subscriberUC) Remove(ctx context.Context, id string) error {
	defer logging.TraceDuration(u.log, "SubscriberUC.Remove")()
	return u.subs.Delete(ctx, repository.NoTX, id)
}

// update applies mutate to a subscriber inside a transaction. LastNotifiedAt
// is deliberately not touched here: only the gate's MarkNotified writes it.
func (u *subscriberUC) update(ctx context.Context, id string, mutate func(*model.Subscriber) error) (*model.Subscriber, error) {
	var sub *model.Subscriber
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		s, err := u.subs.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := mutate(s); err != nil {
			return err
		}
		if err := u.subs.Save(ctx, tx, s); err != nil {
			return err
		}
		sub = s
		return nil
	})
	return sub, err
}
