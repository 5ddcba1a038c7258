// File: internal/usecase/subscriber_uc_test.go
package usecase

import (
	"context"
	"errors"
	"testing"

	"iss-aprs-tracker/internal/domain"
)

func TestSubscriberUseCase(t *testing.T) {
	ctx := context.Background()

	newUC := func(repo *memSubscriberRepo) *subscriberUC {
		return NewSubscriberUseCase(repo, mockTxManager{}, 6, newTestLogger())
	}

	t.Run("register creates a subscriber with the default threshold", func(t *testing.T) {
		repo := newMemSubscriberRepo()
		uc := newUC(repo)

		sub, err := uc.Register(ctx, 42, "someone", 0)
		if err != nil {
			t.Fatalf("register: %v", err)
		}
		if sub.ID == "" {
			t.Error("expected a generated id")
		}
		if sub.ThresholdHours != 6 {
			t.Errorf("expected default threshold 6, got %v", sub.ThresholdHours)
		}
		if sub.Location != nil {
			t.Error("expected no location on a fresh subscriber")
		}
	})

	t.Run("register is idempotent per chat", func(t *testing.T) {
		repo := newMemSubscriberRepo()
		uc := newUC(repo)

		first, err := uc.Register(ctx, 42, "someone", 0)
		if err != nil {
			t.Fatalf("first register: %v", err)
		}
		second, err := uc.Register(ctx, 42, "someone", 12)
		if err != nil {
			t.Fatalf("second register: %v", err)
		}
		if second.ID != first.ID {
			t.Errorf("expected same subscriber, got %q and %q", first.ID, second.ID)
		}
		subs, _ := uc.List(ctx)
		if len(subs) != 1 {
			t.Errorf("expected 1 subscriber, got %d", len(subs))
		}
	})

	t.Run("set and clear location", func(t *testing.T) {
		repo := newMemSubscriberRepo()
		uc := newUC(repo)
		sub, _ := uc.Register(ctx, 42, "", 0)

		updated, err := uc.SetLocation(ctx, sub.ID, 40.7128, -74.0060, 10)
		if err != nil {
			t.Fatalf("set location: %v", err)
		}
		if updated.Location == nil || updated.Location.LatDeg != 40.7128 {
			t.Fatalf("location not applied: %+v", updated.Location)
		}

		cleared, err := uc.ClearLocation(ctx, sub.ID)
		if err != nil {
			t.Fatalf("clear location: %v", err)
		}
		if cleared.Location != nil {
			t.Error("expected location cleared")
		}
	})

	t.Run("rejects out-of-range coordinates", func(t *testing.T) {
		repo := newMemSubscriberRepo()
		uc := newUC(repo)
		sub, _ := uc.Register(ctx, 42, "", 0)

		if _, err := uc.SetLocation(ctx, sub.ID, 91, 0, 0); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("lat 91: expected ErrInvalidArgument, got %v", err)
		}
		if _, err := uc.SetLocation(ctx, sub.ID, 0, -181, 0); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("lon -181: expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("threshold bounds", func(t *testing.T) {
		repo := newMemSubscriberRepo()
		uc := newUC(repo)
		sub, _ := uc.Register(ctx, 42, "", 0)

		if _, err := uc.SetThreshold(ctx, sub.ID, 73); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for 73h, got %v", err)
		}
		updated, err := uc.SetThreshold(ctx, sub.ID, 2)
		if err != nil {
			t.Fatalf("set threshold: %v", err)
		}
		if updated.ThresholdHours != 2 {
			t.Errorf("expected threshold 2, got %v", updated.ThresholdHours)
		}
	})

	t.Run("watch normalizes the callsign", func(t *testing.T) {
		repo := newMemSubscriberRepo()
		uc := newUC(repo)
		sub, _ := uc.Register(ctx, 42, "", 0)

		updated, err := uc.Watch(ctx, sub.ID, "  w1aw-9 ")
		if err != nil {
			t.Fatalf("watch: %v", err)
		}
		if updated.WatchCallsign != "W1AW-9" {
			t.Errorf("expected W1AW-9, got %q", updated.WatchCallsign)
		}

		cleared, err := uc.Unwatch(ctx, sub.ID)
		if err != nil {
			t.Fatalf("unwatch: %v", err)
		}
		if cleared.WatchCallsign != "" {
			t.Error("expected watch cleared")
		}
	})

	t.Run("remove deletes and later lookups fail", func(t *testing.T) {
		repo := newMemSubscriberRepo()
		uc := newUC(repo)
		sub, _ := uc.Register(ctx, 42, "", 0)

		if err := uc.Remove(ctx, sub.ID); err != nil {
			t.Fatalf("remove: %v", err)
		}
		if _, err := uc.Get(ctx, sub.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound after remove, got %v", err)
		}
	})
}
