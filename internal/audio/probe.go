package audio

import (
	"context"
	"os/exec"
	"time"
)

// DefaultProbeTimeout bounds a single command lookup.
const DefaultProbeTimeout = 2 * time.Second

// Prober reports whether an external command is present on the system.
type Prober interface {
	// Exists returns true iff the command was found within the time bound.
	// It never fails; any error is reported as false.
	Exists(ctx context.Context, command string) bool
}

// PathProber looks commands up on PATH.
type PathProber struct {
	lookPath func(string) (string, error)
	timeout  time.Duration
}

// NewPathProber creates a PathProber backed by exec.LookPath.
func NewPathProber() *PathProber {
	return &PathProber{
		lookPath: exec.LookPath,
		timeout:  DefaultProbeTimeout,
	}
}

// SetTimeout sets the lookup time bound.
func (p *PathProber) SetTimeout(timeout time.Duration) {
	p.timeout = timeout
}

// Exists implements Prober.
func (p *PathProber) Exists(ctx context.Context, command string) bool {
	if command == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	found := make(chan bool, 1)
	go func() {
		_, err := p.lookPath(command)
		found <- err == nil
	}()

	select {
	case ok := <-found:
		return ok
	case <-ctx.Done():
		return false
	}
}
