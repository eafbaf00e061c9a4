package input

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"
)

// StdinSource reads JSONL events from standard input.
type StdinSource struct {
	reader io.Reader
	logger *slog.Logger
}

// NewStdinSource creates a new StdinSource reading from os.Stdin.
func NewStdinSource(logger *slog.Logger) *StdinSource {
	return NewStdinSourceWithReader(os.Stdin, logger)
}

// NewStdinSourceWithReader creates a new StdinSource with a custom reader.
func NewStdinSourceWithReader(r io.Reader, logger *slog.Logger) *StdinSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &StdinSource{reader: r, logger: logger}
}

// Name returns the source identifier.
func (s *StdinSource) Name() string {
	return "stdin"
}

// Run reads one event per line until EOF or ctx is done.
// Malformed lines are skipped.
func (s *StdinSource) Run(ctx context.Context, events chan<- Event) error {
	lines := make(chan []byte)
	errCh := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.reader)
		const maxSize = 1024 * 1024
		scanner.Buffer(make([]byte, 64*1024), maxSize)

		for scanner.Scan() {
			line := append([]byte(nil), scanner.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		errCh <- scanner.Err()
	}()

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errCh:
					if err != nil {
						return &AdapterError{Source: s.Name(), Message: "failed to read stdin", Err: err}
					}
				default:
				}
				return nil
			}
			if !emitLine(ctx, s.logger, s.Name(), line, events) {
				return nil
			}
		case <-ctx.Done():
			return nil
		}
	}
}
