package daemon

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/ocnotify/internal/adapter/input"
	"github.com/jmylchreest/ocnotify/internal/model"
)

type call struct {
	kind model.EventKind
	at   time.Time
}

type fakeNotifier struct {
	mu     sync.Mutex
	calls  []call
	block  chan struct{}
	panics bool
}

func (n *fakeNotifier) Notify(ctx context.Context, kind model.EventKind) bool {
	if n.block != nil {
		select {
		case <-n.block:
		case <-ctx.Done():
		}
	}
	n.mu.Lock()
	n.calls = append(n.calls, call{kind: kind, at: time.Now()})
	n.mu.Unlock()
	if n.panics {
		panic("notifier exploded")
	}
	return true
}

func (n *fakeNotifier) kinds() []model.EventKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	var kinds []model.EventKind
	for _, c := range n.calls {
		kinds = append(kinds, c.kind)
	}
	return kinds
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedDelay(d time.Duration) func() time.Duration {
	return func() time.Duration { return d }
}

func TestDispatcher_RoutesEvents(t *testing.T) {
	n := &fakeNotifier{}
	d := NewDispatcher(context.Background(), n, fixedDelay(0), quietLogger())

	assert.True(t, d.Handle(input.Event{Type: model.HostEventPermissionUpdated}))
	assert.True(t, d.Handle(input.Event{Type: model.HostEventSessionIdle}))
	assert.False(t, d.Handle(input.Event{Type: "message.updated"}))
	d.Wait()

	assert.ElementsMatch(t, []model.EventKind{model.KindPermission, model.KindCompletion}, n.kinds())
}

func TestDispatcher_CompletionIsDelayed(t *testing.T) {
	n := &fakeNotifier{}
	d := NewDispatcher(context.Background(), n, fixedDelay(100*time.Millisecond), quietLogger())

	start := time.Now()
	d.Handle(input.Event{Type: model.HostEventSessionIdle})
	d.Handle(input.Event{Type: model.HostEventPermissionUpdated})
	d.Wait()

	n.mu.Lock()
	defer n.mu.Unlock()
	require.Len(t, n.calls, 2)
	assert.Equal(t, model.KindPermission, n.calls[0].kind, "permission is not delayed")
	assert.Equal(t, model.KindCompletion, n.calls[1].kind)
	assert.GreaterOrEqual(t, n.calls[1].at.Sub(start), 100*time.Millisecond)
}

func TestDispatcher_HandleDoesNotBlock(t *testing.T) {
	n := &fakeNotifier{block: make(chan struct{})}
	d := NewDispatcher(context.Background(), n, fixedDelay(0), quietLogger())

	done := make(chan struct{})
	go func() {
		d.Handle(input.Event{Type: model.HostEventPermissionUpdated})
		d.Handle(input.Event{Type: model.HostEventPermissionUpdated})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Handle blocked on playback")
	}
	close(n.block)
	d.Wait()
	assert.Len(t, n.kinds(), 2)
}

func TestDispatcher_ShutdownCancelsPendingCompletion(t *testing.T) {
	n := &fakeNotifier{}
	d := NewDispatcher(context.Background(), n, fixedDelay(time.Hour), quietLogger())

	d.Handle(input.Event{Type: model.HostEventSessionIdle})

	stopped := make(chan struct{})
	go func() {
		d.Shutdown()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Shutdown waited for the delayed completion")
	}
	assert.Empty(t, n.kinds())
	assert.False(t, d.Handle(input.Event{Type: model.HostEventPermissionUpdated}), "closed dispatcher")
}

func TestDispatcher_RecoversPanics(t *testing.T) {
	n := &fakeNotifier{panics: true}
	d := NewDispatcher(context.Background(), n, fixedDelay(0), quietLogger())

	d.Handle(input.Event{Type: model.HostEventPermissionUpdated})
	d.Wait()
	assert.Len(t, n.kinds(), 1)
}

func TestDispatcher_Run(t *testing.T) {
	n := &fakeNotifier{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d := NewDispatcher(ctx, n, fixedDelay(0), quietLogger())

	events := make(chan input.Event)
	done := make(chan struct{})
	go func() {
		d.Run(ctx, events)
		close(done)
	}()

	events <- input.Event{Type: model.HostEventPermissionUpdated}
	events <- input.Event{Type: "file.edited"}
	events <- input.Event{Type: model.HostEventSessionIdle}
	close(events)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after the channel closed")
	}
	d.Wait()
	assert.Len(t, n.kinds(), 2)
}

func TestDispatcher_Drain(t *testing.T) {
	n := &fakeNotifier{}
	d := NewDispatcher(context.Background(), n, fixedDelay(0), quietLogger())

	events := make(chan input.Event, 4)
	events <- input.Event{Type: model.HostEventPermissionUpdated}
	events <- input.Event{Type: model.HostEventSessionIdle}

	d.Drain(events)
	d.Wait()
	assert.Len(t, n.kinds(), 2)
	assert.Empty(t, events)
}
