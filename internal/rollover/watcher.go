package rollover

import (
	"context"
	"sync"
	"time"

	"github.com/jpalmerr/habitboard/internal/habit"
	"go.uber.org/zap"
)

// Watcher emits the new calendar day each time the day changes.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Watcher struct {
	interval time.Duration
	now      func() time.Time
	loc      *time.Location
	days     chan string
	logger   *zap.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu        sync.Mutex
	started   bool
	stopped   bool
	lastDay   string
	closeOnce sync.Once
}

// NewWatcher creates a [Watcher] that checks the day every interval.
//
// now and loc determine the current day; a nil now uses time.Now and a nil
// loc uses time.Local.
func NewWatcher(interval time.Duration, now func() time.Time, loc *time.Location, logger *zap.Logger) *Watcher {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		interval: interval,
		now:      now,
		loc:      loc,
		days:     make(chan string, 1),
		logger:   logger,
	}
}

// Days returns the channel new days are sent on.
//
// The channel is closed when the watcher stops. If the consumer falls behind
// only the most recent day is kept.
func (w *Watcher) Days() <-chan string {
	return w.days
}

// Today returns the current calendar day.
func (w *Watcher) Today() string {
	return habit.Day(w.now().In(w.loc))
}

// Start begins checking in a background goroutine.
//
// The day at Start is recorded but not emitted. Start is idempotent, and a
// no-op after Stop.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.started || w.stopped {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.lastDay = w.Today()

	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		defer w.closeOnce.Do(func() { close(w.days) })

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				w.check()
			}
		}
	}()
}

// Stop halts the watcher, waits for its goroutine, and closes [Watcher.Days].
//
// Stop is idempotent and safe to call before Start.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.stopped {
		w.stopped = true
		if w.cancel != nil {
			w.cancel()
		}
	}
	w.mu.Unlock()

	w.wg.Wait()
	w.closeOnce.Do(func() { close(w.days) })
}

// check emits the current day if it differs from the last one seen.
func (w *Watcher) check() {
	today := w.Today()

	w.mu.Lock()
	if today == w.lastDay {
		w.mu.Unlock()
		return
	}
	previous := w.lastDay
	w.lastDay = today
	w.mu.Unlock()

	w.logger.Info("calendar day rolled over", zap.String("from", previous), zap.String("to", today))

	// keep only the newest day for a slow consumer
	select {
	case w.days <- today:
	default:
		select {
		case <-w.days:
		default:
		}
		select {
		case w.days <- today:
		default:
		}
	}
}
