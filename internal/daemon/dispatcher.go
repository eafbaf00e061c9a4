package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/ocnotify/internal/adapter/input"
	"github.com/jmylchreest/ocnotify/internal/model"
)

// Notifier plays the notification for an event kind.
type Notifier interface {
	Notify(ctx context.Context, kind model.EventKind) bool
}

// Dispatcher turns host events into notifications without blocking the
// caller. Each event is handled on its own goroutine; completions wait for
// the configured delay first.
type Dispatcher struct {
	ctx             context.Context
	logger          *slog.Logger
	notifier        Notifier
	completionDelay func() time.Duration

	wg      sync.WaitGroup
	mu      sync.Mutex
	pending map[*time.Timer]struct{}
	closed  bool
}

// NewDispatcher creates a new Dispatcher. ctx bounds every playback it
// starts; completionDelay is read for each completion event.
func NewDispatcher(ctx context.Context, notifier Notifier, completionDelay func() time.Duration, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		ctx:             ctx,
		logger:          logger,
		notifier:        notifier,
		completionDelay: completionDelay,
		pending:         make(map[*time.Timer]struct{}),
	}
}

// Run handles events until the channel closes or ctx is done.
func (d *Dispatcher) Run(ctx context.Context, events <-chan input.Event) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			d.Handle(ev)
		case <-ctx.Done():
			return
		}
	}
}

// Drain handles events already queued on the channel without waiting for
// more.
func (d *Dispatcher) Drain(events <-chan input.Event) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			d.Handle(ev)
		default:
			return
		}
	}
}

// Handle schedules the notification for ev and returns immediately.
// It reports whether ev maps to a notification.
func (d *Dispatcher) Handle(ev input.Event) bool {
	kind, ok := ev.Kind()
	if !ok {
		d.logger.Debug("ignoring event", "type", ev.Type)
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}

	d.wg.Add(1)
	if kind != model.KindCompletion {
		go d.notify(kind)
		return true
	}

	delay := d.completionDelay()
	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		d.mu.Lock()
		delete(d.pending, timer)
		d.mu.Unlock()
		d.notify(kind)
	})
	d.pending[timer] = struct{}{}
	d.logger.Debug("completion scheduled", "delay", delay)
	return true
}

func (d *Dispatcher) notify(kind model.EventKind) {
	defer d.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("notification panicked", "kind", kind, "panic", r)
		}
	}()

	d.notifier.Notify(d.ctx, kind)
}

// Wait blocks until every scheduled notification has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Shutdown stops accepting events, drops completions still waiting for
// their delay and waits for playbacks in progress.
func (d *Dispatcher) Shutdown() {
	d.mu.Lock()
	d.closed = true
	for timer := range d.pending {
		if timer.Stop() {
			d.wg.Done()
		}
		delete(d.pending, timer)
	}
	d.mu.Unlock()

	d.Wait()
}
