package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"
)

const bellChar = "\a"

// OpenTerminal returns a writer for the controlling terminal, or stderr when
// there is none.
func OpenTerminal() io.Writer {
	name := "/dev/tty"
	if runtime.GOOS == "windows" {
		name = "CONOUT$"
	}
	f, err := os.OpenFile(name, os.O_WRONLY, 0)
	if err != nil {
		return os.Stderr
	}
	return f
}

// ringBell writes the bell character pulses times, pausing interval between
// pulses.
func ringBell(ctx context.Context, w io.Writer, p BellParams) error {
	if w == nil {
		return errors.New("bell: no terminal")
	}
	for i := range max(p.Pulses, 1) {
		if i > 0 {
			t := time.NewTimer(p.Interval)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
		if _, err := io.WriteString(w, bellChar); err != nil {
			return fmt.Errorf("bell: %w", err)
		}
	}
	return nil
}
