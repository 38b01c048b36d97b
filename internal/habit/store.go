package habit

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// subscriberBuffer is the channel buffer given to each subscriber.
const subscriberBuffer = 16

// Store owns the in-memory habit collection and keeps a durable mirror of it
// in a [Repository].
//
// Every mutation builds the next collection, saves it, and only then swaps it
// in. If the save fails the mutation is discarded and the error returned, so
// memory always matches the last successful save. Saves run while holding
// the store lock, which orders them the same way in storage as in memory.
//
// Store is safe for concurrent use.
type Store struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time

	mu     sync.Mutex
	habits Collection
	lastID int64

	subMu       sync.RWMutex
	subscribers map[chan Collection]struct{}
}

// Option configures a [Store].
type Option func(*Store)

// WithLogger sets the store's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the time source used for new ids.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates an empty store persisting to repo. Call [Store.Hydrate]
// to load previously saved habits.
func NewStore(repo Repository, opts ...Option) *Store {
	s := &Store{
		repo:        repo,
		logger:      zap.NewNop(),
		now:         time.Now,
		habits:      Collection{},
		subscribers: make(map[chan Collection]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hydrate replaces the in-memory collection with the stored one.
//
// When nothing is stored the collection is left as it is. A storage failure
// or a malformed document is returned and memory is left untouched.
func (s *Store) Hydrate(ctx context.Context) error {
	// held across Load so no mutation can commit between read and swap
	s.mu.Lock()
	c, found, err := s.repo.Load(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if !found {
		s.mu.Unlock()
		s.logger.Info("no stored habits, starting empty")
		return nil
	}

	s.habits = c
	s.lastID = maxNumericID(c)
	snapshot := c.Clone()
	s.mu.Unlock()

	s.logger.Info("habits hydrated", zap.Int("count", len(c)))
	s.notifySubscribers(snapshot)
	return nil
}

// AddHabit appends a new habit and persists the collection.
//
// A title that is empty after trimming whitespace is rejected with a
// [*ValidationError] wrapping [ErrEmptyTitle]. The stored title is the input
// exactly as given.
func (s *Store) AddHabit(ctx context.Context, title string) (Habit, error) {
	if strings.TrimSpace(title) == "" {
		return Habit{}, &ValidationError{Field: "title", Err: ErrEmptyTitle}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID()
	h := Habit{ID: strconv.FormatInt(id, 10), Title: title, CompletedDates: []string{}}

	next := append(s.habits.Clone(), h)
	if err := s.commit(ctx, next); err != nil {
		return Habit{}, err
	}
	s.lastID = id

	s.logger.Info("habit added", zap.String("id", h.ID), zap.Int("count", len(next)))
	return h.Clone(), nil
}

// ToggleCompletion flips day in the completed-day set of the habit with the
// given id and persists the collection.
//
// The bool result is false, and nothing is changed or saved, when no habit
// has that id.
func (s *Store) ToggleCompletion(ctx context.Context, id, day string) (Habit, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.habits.Index(id)
	if i < 0 {
		s.logger.Debug("toggle for unknown habit ignored", zap.String("id", id))
		return Habit{}, false, nil
	}

	next := s.habits.Clone()
	next[i] = next[i].toggled(day)
	if err := s.commit(ctx, next); err != nil {
		return Habit{}, true, err
	}

	s.logger.Info("habit toggled",
		zap.String("id", id),
		zap.String("day", day),
		zap.Bool("done", next[i].DoneOn(day)),
	)
	return next[i].Clone(), true, nil
}

// Persist writes the current collection to the repository, overwriting any
// stored value.
func (s *Store) Persist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.Save(ctx, s.habits)
}

// Habits returns a snapshot of the collection in display order.
func (s *Store) Habits() Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.habits.Clone()
}

// Get returns a copy of the habit with the given id.
func (s *Store) Get(id string) (Habit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.habits.Index(id)
	if i < 0 {
		return Habit{}, false
	}
	return s.habits[i].Clone(), true
}

// Subscribe returns a channel receiving a snapshot after every successful
// save and after hydration.
//
// Sends are non-blocking; a subscriber whose buffer is full misses
// snapshots. Snapshots are shared between subscribers and must be treated as
// read-only. Call [Store.Unsubscribe] when done.
func (s *Store) Subscribe() <-chan Collection {
	ch := make(chan Collection, subscriberBuffer)

	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()

	return ch
}

// Unsubscribe removes a subscription and closes its channel. Safe to call
// more than once.
func (s *Store) Unsubscribe(ch <-chan Collection) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for subCh := range s.subscribers {
		if subCh == ch {
			delete(s.subscribers, subCh)
			close(subCh)
			break
		}
	}
}

// commit saves next and swaps it in. Caller holds s.mu.
func (s *Store) commit(ctx context.Context, next Collection) error {
	if err := s.repo.Save(ctx, next); err != nil {
		s.logger.Error("failed to persist habits, change discarded", zap.Error(err))
		return err
	}
	s.habits = next
	s.notifySubscribers(next.Clone())
	return nil
}

// nextID returns the creation time in milliseconds, bumped past the last
// assigned id so ids stay unique when the clock stalls or steps back.
func (s *Store) nextID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	return id
}

func (s *Store) notifySubscribers(snapshot Collection) {
	s.subMu.RLock()
	defer s.subMu.RUnlock()

	for ch := range s.subscribers {
		select {
		case ch <- snapshot:
		default:
			// subscriber is slow, drop the snapshot
		}
	}
}

// maxNumericID returns the largest id that parses as an integer, or 0.
func maxNumericID(c Collection) int64 {
	var highest int64
	for _, h := range c {
		n, err := strconv.ParseInt(h.ID, 10, 64)
		if err == nil && n > highest {
			highest = n
		}
	}
	return highest
}
