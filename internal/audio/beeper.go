package audio

import (
	"github.com/gen2brain/beeep"
)

// Beeper produces a tone through a platform library call.
// Freq is in Hz and duration in milliseconds.
type Beeper interface {
	Beep(freq float64, duration int) error
}

// BeeepBeeper uses gen2brain/beeep.
type BeeepBeeper struct{}

// Beep implements Beeper.
func (BeeepBeeper) Beep(freq float64, duration int) error {
	return beeep.Beep(freq, duration)
}
