package audio

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAsset is returned when a sound file does not exist.
	ErrNoAsset = errors.New("sound file not found")

	// ErrNoCandidates is returned when every candidate asset of a file
	// mechanism is missing or failed to play.
	ErrNoCandidates = errors.New("no sound files available")

	// ErrUnsupportedFormat is returned when an asset's length cannot be decoded.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrUnknownMechanism is returned for ids missing from the registry.
	ErrUnknownMechanism = errors.New("unknown mechanism")
)

// MechanismError records the failure of a single mechanism invocation.
type MechanismError struct {
	ID  string
	Err error
}

func (e *MechanismError) Error() string {
	return fmt.Sprintf("mechanism %s: %v", e.ID, e.Err)
}

func (e *MechanismError) Unwrap() error {
	return e.Err
}
