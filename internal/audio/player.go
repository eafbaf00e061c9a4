package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmylchreest/ocnotify/internal/config"
	"github.com/jmylchreest/ocnotify/internal/model"
)

const (
	// DefaultFileCeiling bounds a file player when the asset length is unknown.
	DefaultFileCeiling = 10 * time.Second

	// InvocationSlack is added to every expected playing time.
	InvocationSlack = 2 * time.Second
)

// Attempt records one mechanism tried during Play.
type Attempt struct {
	Mechanism string
	Err       error
}

// Result describes a Play call.
type Result struct {
	Played    bool
	Mechanism string
	Attempts  []Attempt
	Elapsed   time.Duration
}

// AttemptIDs returns the ids of the attempted mechanisms in order.
func (r Result) AttemptIDs() []string {
	ids := make([]string, len(r.Attempts))
	for i, a := range r.Attempts {
		ids[i] = a.Mechanism
	}
	return ids
}

// Player invokes sound mechanisms.
type Player struct {
	logger   *slog.Logger
	registry Registry
	runner   Runner
	beeper   Beeper
	assets   *AssetInspector
	terminal io.Writer
}

// NewPlayer creates a new Player. A nil runner or beeper selects the real
// backends; a nil terminal opens the controlling terminal.
func NewPlayer(registry Registry, runner Runner, beeper Beeper, terminal io.Writer, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = NewExecRunner()
	}
	if beeper == nil {
		beeper = BeeepBeeper{}
	}
	if terminal == nil {
		terminal = OpenTerminal()
	}

	return &Player{
		logger:   logger,
		registry: registry,
		runner:   runner,
		beeper:   beeper,
		assets:   NewAssetInspector(),
		terminal: terminal,
	}
}

// Play tries each mechanism in order until one succeeds.
// Mechanisms run strictly one after another. Failures are logged at debug
// level and never returned; only cancellation of ctx ends the walk early.
func (p *Player) Play(ctx context.Context, kind model.EventKind, mechanisms []string, cfg *config.Config) Result {
	start := time.Now()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	ev := cfg.Event(kind)

	var res Result
	for _, id := range mechanisms {
		if ctx.Err() != nil {
			break
		}

		err := p.invoke(ctx, id, kind, ev)
		res.Attempts = append(res.Attempts, Attempt{Mechanism: id, Err: err})
		if err == nil {
			res.Played = true
			res.Mechanism = id
			break
		}
		p.logger.Debug("mechanism failed", "kind", kind, "mechanism", id, "error", err)
	}
	res.Elapsed = time.Since(start)

	if res.Played {
		p.logger.Debug("sound played", "kind", kind, "mechanism", res.Mechanism, "attempts", len(res.Attempts))
	} else {
		p.logger.Debug("all mechanisms exhausted", "kind", kind, "attempts", len(res.Attempts))
	}
	return res
}

func (p *Player) lookup(id string) (MechanismSpec, bool) {
	if spec, ok := p.registry.Lookup(id); ok {
		return spec, true
	}
	if id == MechanismBell {
		return bellSpec, true
	}
	return MechanismSpec{}, false
}

// invoke runs one mechanism. Any failure, including a panic in a backend,
// comes back as a *MechanismError.
func (p *Player) invoke(ctx context.Context, id string, kind model.EventKind, ev config.EventConfig) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &MechanismError{ID: id, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	spec, ok := p.lookup(id)
	if !ok {
		return &MechanismError{ID: id, Err: ErrUnknownMechanism}
	}

	switch params := ParamsFor(spec, kind, ev).(type) {
	case FileParams:
		err = p.playFile(ctx, spec, params)
	case ToneParams:
		err = p.playTone(ctx, spec, params)
	case BellParams:
		err = p.ringBell(ctx, params)
	}
	if err != nil {
		return &MechanismError{ID: id, Err: err}
	}
	return nil
}

// playFile tries each candidate asset until one plays.
func (p *Player) playFile(ctx context.Context, spec MechanismSpec, params FileParams) error {
	if len(params.Candidates) == 0 {
		return ErrNoCandidates
	}

	var errs []error
	for _, candidate := range params.Candidates {
		if err := p.assets.Exists(candidate); err != nil {
			errs = append(errs, err)
			continue
		}

		runCtx, cancel := context.WithTimeout(ctx, p.fileTimeout(candidate))
		err := p.runner.Run(runCtx, spec.Command, spec.fileArgs(expandPath(candidate))...)
		cancel()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		p.logger.Debug("sound file failed", "mechanism", spec.ID, "path", candidate, "error", err)
		errs = append(errs, err)
	}
	return fmt.Errorf("%w: %w", ErrNoCandidates, errors.Join(errs...))
}

func (p *Player) fileTimeout(path string) time.Duration {
	length, err := p.assets.Length(path)
	if err != nil || length <= 0 {
		return DefaultFileCeiling
	}
	return length + InvocationSlack
}

func (p *Player) playTone(ctx context.Context, spec MechanismSpec, params ToneParams) error {
	if spec.Command == "" {
		return p.beep(ctx, params)
	}

	args := spec.toneArgs(params)
	if spec.untilStopped {
		// The generator keeps going until killed; reaching the tone
		// duration is the expected way for it to finish.
		runCtx, cancel := context.WithTimeout(ctx, params.Duration)
		defer cancel()
		err := p.runner.Run(runCtx, spec.Command, args...)
		if err != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return nil
		}
		return err
	}

	runCtx, cancel := context.WithTimeout(ctx, params.Duration+InvocationSlack)
	defer cancel()
	return p.runner.Run(runCtx, spec.Command, args...)
}

// beep drives the library beeper under the same ceiling as a tone command.
func (p *Player) beep(ctx context.Context, params ToneParams) error {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("panic: %v", r)
			}
		}()
		done <- p.beeper.Beep(float64(params.Freq), int(params.Duration.Milliseconds()))
	}()

	timer := time.NewTimer(params.Duration + InvocationSlack)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("beep: %w", context.DeadlineExceeded)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Player) ringBell(ctx context.Context, params BellParams) error {
	ceiling := time.Duration(params.Pulses)*params.Interval + InvocationSlack
	ctx, cancel := context.WithTimeout(ctx, ceiling)
	defer cancel()
	return ringBell(ctx, p.terminal, params)
}
