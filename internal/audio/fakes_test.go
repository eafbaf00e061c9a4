package audio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
)

var errFake = errors.New("fake failure")

// fakeProber reports the listed commands as present.
type fakeProber struct {
	mu      sync.Mutex
	present map[string]bool
	probed  []string
}

func newFakeProber(commands ...string) *fakeProber {
	p := &fakeProber{present: make(map[string]bool)}
	for _, c := range commands {
		p.present[c] = true
	}
	return p
}

func (p *fakeProber) Exists(_ context.Context, command string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probed = append(p.probed, command)
	return p.present[command]
}

func (p *fakeProber) calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.probed...)
}

type runCall struct {
	Name string
	Args []string
}

// fakeRunner fails every command unless a handler is registered for it.
type fakeRunner struct {
	mu       sync.Mutex
	handlers map[string]func(ctx context.Context, args []string) error
	calls    []runCall
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{handlers: make(map[string]func(context.Context, []string) error)}
}

func (r *fakeRunner) succeed(name string) {
	r.handle(name, func(context.Context, []string) error { return nil })
}

// block makes name run until its context ends.
func (r *fakeRunner) block(name string) {
	r.handle(name, func(ctx context.Context, _ []string) error {
		<-ctx.Done()
		return ctx.Err()
	})
}

func (r *fakeRunner) handle(name string, fn func(ctx context.Context, args []string) error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = fn
}

func (r *fakeRunner) Run(ctx context.Context, name string, args ...string) error {
	r.mu.Lock()
	r.calls = append(r.calls, runCall{Name: name, Args: args})
	fn := r.handlers[name]
	r.mu.Unlock()

	if fn == nil {
		return errFake
	}
	return fn(ctx, args)
}

func (r *fakeRunner) recorded() []runCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]runCall(nil), r.calls...)
}

type beepCall struct {
	Freq     float64
	Duration int
}

type fakeBeeper struct {
	mu    sync.Mutex
	err   error
	panic bool
	calls []beepCall
}

func (b *fakeBeeper) Beep(freq float64, duration int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, beepCall{Freq: freq, Duration: duration})
	if b.panic {
		panic("beeper exploded")
	}
	return b.err
}

// failingWriter rejects every write.
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errFake
}

// syncBuffer is a bytes.Buffer safe for concurrent use.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) bells() int {
	return strings.Count(b.String(), bellChar)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
