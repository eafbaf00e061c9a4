package model

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// Entry records the outcome of one dispatched notification.
// Entries are appended to the history journal whether or not a sound played.
type Entry struct {
	ID        string    `json:"id"`
	Kind      EventKind `json:"kind"`
	Timestamp int64     `json:"timestamp"`

	// Played is true when some mechanism produced sound.
	Played bool `json:"played"`
	// Mechanism is the id of the mechanism that succeeded, if any.
	Mechanism string `json:"mechanism,omitempty"`
	// Attempts lists every mechanism tried, in order.
	Attempts []string `json:"attempts,omitempty"`
	// DurationMs is the wall time spent in playback.
	DurationMs int64 `json:"duration_ms"`
}

// Validation errors.
var (
	ErrEmptyID          = errors.New("id cannot be empty")
	ErrInvalidKind      = errors.New("kind must be permission or completion")
	ErrInvalidTimestamp = errors.New("timestamp must be greater than 0")
)

// NewEntry creates an Entry with a generated ULID stamped at the current time.
func NewEntry(kind EventKind) (*Entry, error) {
	now := time.Now()
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ULID: %w", err)
	}

	return &Entry{
		ID:        id.String(),
		Kind:      kind,
		Timestamp: now.Unix(),
	}, nil
}

// Validate checks that the entry has all required fields.
func (e *Entry) Validate() error {
	if e.ID == "" {
		return ErrEmptyID
	}
	if _, err := ParseEventKind(string(e.Kind)); err != nil {
		return ErrInvalidKind
	}
	if e.Timestamp <= 0 {
		return ErrInvalidTimestamp
	}
	return nil
}

// TimestampTime returns the timestamp as a time.Time.
func (e *Entry) TimestampTime() time.Time {
	return time.Unix(e.Timestamp, 0)
}

// Outcome returns a short description of the result.
func (e *Entry) Outcome() string {
	if e.Played {
		return "played via " + e.Mechanism
	}
	if len(e.Attempts) == 0 {
		return "skipped"
	}
	return "exhausted"
}
