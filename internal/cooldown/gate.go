// Package cooldown rate-limits notifications per event kind.
package cooldown

import (
	"sync"
	"time"

	"github.com/jmylchreest/ocnotify/internal/model"
)

// Outcome is the result of a Fire call.
type Outcome int

const (
	// Suppressed means the call fell inside the cooldown window and the
	// invoke function was not called.
	Suppressed Outcome = iota
	// Fired means invoke ran and reported success.
	Fired
	// Failed means invoke ran and reported failure.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Suppressed:
		return "suppressed"
	case Fired:
		return "fired"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Gate suppresses repeated successful notifications of the same kind
// within a threshold.
//
// Calls for the same kind are serialized: the kind's lock is held while
// invoke runs, so two overlapping dispatches cannot both see a stale
// timestamp. Different kinds never block each other.
type Gate struct {
	threshold func(model.EventKind) time.Duration

	mu    sync.Mutex
	now   func() time.Time
	kinds map[model.EventKind]*kindState
}

type kindState struct {
	mu        sync.Mutex
	lastFired time.Time
}

// NewGate creates a Gate. threshold is consulted on every call so the
// window follows configuration changes.
func NewGate(threshold func(model.EventKind) time.Duration) *Gate {
	return &Gate{
		threshold: threshold,
		now:       time.Now,
		kinds:     make(map[model.EventKind]*kindState),
	}
}

// SetClock replaces the time source (for testing).
func (g *Gate) SetClock(now func() time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = now
}

func (g *Gate) clock() time.Time {
	g.mu.Lock()
	now := g.now
	g.mu.Unlock()
	return now()
}

func (g *Gate) state(kind model.EventKind) *kindState {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.kinds[kind]
	if !ok {
		s = &kindState{}
		g.kinds[kind] = s
	}
	return s
}

// Fire calls invoke unless a successful fire of kind happened less than the
// threshold ago. On success the time read before invoke is recorded, so the
// window starts when playback starts.
func (g *Gate) Fire(kind model.EventKind, invoke func() bool) Outcome {
	s := g.state(kind)
	s.mu.Lock()
	defer s.mu.Unlock()

	now := g.clock()
	threshold := g.threshold(kind)
	if !s.lastFired.IsZero() && now.Sub(s.lastFired) < threshold {
		return Suppressed
	}

	if !invoke() {
		return Failed
	}
	s.lastFired = now
	return Fired
}

// LastFired returns when kind last fired successfully, or the zero time.
func (g *Gate) LastFired(kind model.EventKind) time.Time {
	s := g.state(kind)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFired
}
