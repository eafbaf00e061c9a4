// Package input provides sources of host events.
package input

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/jmylchreest/ocnotify/internal/model"
)

// Event is a typed event emitted by the host application.
type Event struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Kind maps the event to the notification it triggers, if any.
func (e Event) Kind() (model.EventKind, bool) {
	return model.KindForHostEvent(e.Type)
}

// Source delivers host events.
type Source interface {
	// Name returns the source identifier (e.g., "stdin", "file").
	Name() string

	// Run sends events until ctx is done or the source is exhausted.
	Run(ctx context.Context, events chan<- Event) error
}

// Parse errors.
var (
	ErrEmptyEvent   = errors.New("empty event")
	ErrInvalidEvent = errors.New("invalid event")
)

// envelope also accepts events wrapped as {"event": {...}}.
type envelope struct {
	Event
	Wrapped *Event `json:"event,omitempty"`
}

// ParseEvent decodes one line: a JSON object with a "type" field, optionally
// wrapped in an "event" object, or a bare event type such as session.idle.
func ParseEvent(line []byte) (Event, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Event{}, ErrEmptyEvent
	}

	if line[0] != '{' {
		if bytes.ContainsAny(line, " \t\"{}[],:") {
			return Event{}, ErrInvalidEvent
		}
		return Event{Type: string(line)}, nil
	}

	var env envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return Event{}, &AdapterError{Message: "failed to parse event", Err: errors.Join(ErrInvalidEvent, err)}
	}
	ev := env.Event
	if env.Wrapped != nil && ev.Type == "" {
		ev = *env.Wrapped
	}
	if ev.Type == "" {
		return Event{}, ErrInvalidEvent
	}
	return ev, nil
}

// send delivers ev unless ctx ends first.
func send(ctx context.Context, events chan<- Event, ev Event) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// emitLine parses and delivers a single line, logging lines it skips.
func emitLine(ctx context.Context, logger *slog.Logger, source string, line []byte, events chan<- Event) bool {
	ev, err := ParseEvent(line)
	if err != nil {
		if !errors.Is(err, ErrEmptyEvent) {
			logger.Debug("skipping malformed event", "source", source, "error", err)
		}
		return ctx.Err() == nil
	}
	return send(ctx, events, ev)
}

// AdapterError represents an input source error.
type AdapterError struct {
	Source  string
	Message string
	Err     error
}

func (e *AdapterError) Error() string {
	msg := e.Message
	if e.Source != "" {
		msg = e.Source + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}
