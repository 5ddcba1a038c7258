package repository

import (
	"context"
	"time"

	"iss-aprs-tracker/internal/domain/model"
)

// -----------------------------
// Subscribers
// -----------------------------

type SubscriberRepository interface {
	Save(ctx context.Context, tx Tx, s *model.Subscriber) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Subscriber, error)
	FindByChatID(ctx context.Context, tx Tx, chatID int64) (*model.Subscriber, error)
	List(ctx context.Context, tx Tx) ([]*model.Subscriber, error)
	Delete(ctx context.Context, tx Tx, id string) error

	// MarkNotified atomically claims the right to notify subscriber id for an
	// event detected at eventTime. It succeeds only when the stored
	// last_notified_at is unset or strictly older than eventTime, and returns
	// domain.ErrAlreadyNotified otherwise. This is the single-writer guarantee
	// behind the at-most-once invariant.
	MarkNotified(ctx context.Context, tx Tx, id string, eventTime time.Time) error
}
