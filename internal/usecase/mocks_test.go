// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"io"
	"sync"
	"time"

	"iss-aprs-tracker/internal/domain"
	"iss-aprs-tracker/internal/domain/model"
	"iss-aprs-tracker/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// memSubscriberRepo is a small in-memory implementation used by unit tests.
// MarkNotified honors the same conditional-claim contract as the real repo.
type memSubscriberRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Subscriber

	SaveFunc         func(ctx context.Context, tx repository.Tx, s *model.Subscriber) error
	MarkNotifiedFunc func(ctx context.Context, tx repository.Tx, id string, eventTime time.Time) error
}

func newMemSubscriberRepo() *memSubscriberRepo {
	return &memSubscriberRepo{store: make(map[string]*model.Subscriber)}
}

func (m *memSubscriberRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscriber) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, tx, s)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.store[s.ID] = &cp
	return nil
}

func (m *memSubscriberRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscriber, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSubscriberRepo) FindByChatID(ctx context.Context, tx repository.Tx, chatID int64) (*model.Subscriber, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.store {
		if s.ChatID == chatID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memSubscriberRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Subscriber, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Subscriber, 0, len(m.store))
	for _, s := range m.store {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memSubscriberRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *memSubscriberRepo) MarkNotified(ctx context.Context, tx repository.Tx, id string, eventTime time.Time) error {
	if m.MarkNotifiedFunc != nil {
		return m.MarkNotifiedFunc(ctx, tx, id, eventTime)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	if s.LastNotifiedAt != nil && !s.LastNotifiedAt.Before(eventTime) {
		return domain.ErrAlreadyNotified
	}
	t := eventTime
	s.LastNotifiedAt = &t
	return nil
}

// memActivityRepo keeps events in append order.
type memActivityRepo struct {
	mu     sync.RWMutex
	events []*model.ActivityEvent

	AppendFunc func(ctx context.Context, tx repository.Tx, e *model.ActivityEvent) error
}

func newMemActivityRepo() *memActivityRepo { return &memActivityRepo{} }

func (m *memActivityRepo) Append(ctx context.Context, tx repository.Tx, e *model.ActivityEvent) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, tx, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.events = append(m.events, &cp)
	return nil
}

func (m *memActivityRepo) Last(ctx context.Context, tx repository.Tx) (*model.ActivityEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.events) == 0 {
		return nil, domain.ErrNotFound
	}
	cp := *m.events[len(m.events)-1]
	return &cp, nil
}

func (m *memActivityRepo) CountSince(ctx context.Context, tx repository.Tx, sinceID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cnt := 0
	for _, e := range m.events {
		if e.ID > sinceID {
			cnt++
		}
	}
	return cnt, nil
}

func (m *memActivityRepo) len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}

// mockActivitySource serves scripted last-heard samples.
type mockActivitySource struct {
	LastHeardFunc func(ctx context.Context) (model.Station, error)
}

func (m *mockActivitySource) LastHeard(ctx context.Context) (model.Station, error) {
	return m.LastHeardFunc(ctx)
}

// memStationCache is an in-memory stand-in for the Redis last-heard cache.
type memStationCache struct {
	mu sync.Mutex
	st model.Station
	ok bool
}

func (c *memStationCache) Put(ctx context.Context, st model.Station) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.st, c.ok = st, true
	return nil
}

func (c *memStationCache) Get(ctx context.Context) (model.Station, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ok {
		return model.Station{}, domain.ErrNotFound
	}
	return c.st, nil
}

// mockNotifier records deliveries and can be scripted to fail.
type mockNotifier struct {
	mu       sync.Mutex
	activity []int64 // chat IDs that got an activity notification
	watch    []int64 // chat IDs that got a watch notification

	NotifyActivityFunc func(ctx context.Context, chatID int64, e *model.ActivityEvent, pass *model.PassWindow) error
	NotifyWatchFunc    func(ctx context.Context, chatID int64, e *model.ActivityEvent) error
}

func (m *mockNotifier) NotifyActivity(ctx context.Context, chatID int64, e *model.ActivityEvent, pass *model.PassWindow) error {
	if m.NotifyActivityFunc != nil {
		return m.NotifyActivityFunc(ctx, chatID, e, pass)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activity = append(m.activity, chatID)
	return nil
}

func (m *mockNotifier) NotifyWatch(ctx context.Context, chatID int64, e *model.ActivityEvent) error {
	if m.NotifyWatchFunc != nil {
		return m.NotifyWatchFunc(ctx, chatID, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watch = append(m.watch, chatID)
	return nil
}

func (m *mockNotifier) activityCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.activity)
}

func (m *mockNotifier) watchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.watch)
}

// mockPredictor serves scripted pass windows.
type mockPredictor struct {
	NextPassFunc func(ctx context.Context, st *model.OrbitalState, loc model.GroundLocation, from time.Time, horizon time.Duration) (model.PassWindow, error)
}

func (m *mockPredictor) NextPass(ctx context.Context, st *model.OrbitalState, loc model.GroundLocation, from time.Time, horizon time.Duration) (model.PassWindow, error) {
	return m.NextPassFunc(ctx, st, loc, from, horizon)
}

// staticElements hands out a fixed orbital state snapshot (nil = no elements).
type staticElements struct {
	st *model.OrbitalState
}

func (s *staticElements) Get() *model.OrbitalState { return s.st }

// mockTxManager runs the function directly, outside any real transaction.
type mockTxManager struct{}

func (mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
