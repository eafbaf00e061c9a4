package audio

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

// Runner executes external commands.
type Runner interface {
	// Run starts name with args and waits for it to exit. Output is
	// discarded. A non-zero exit, a start failure or ctx expiring is an error.
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// WaitDelay bounds how long Run waits for I/O after the process is killed.
	WaitDelay time.Duration
}

// NewExecRunner creates a new ExecRunner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{WaitDelay: 500 * time.Millisecond}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = r.WaitDelay

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", name, ctxErr)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
