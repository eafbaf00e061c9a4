package audio

import (
	"slices"
	"time"

	"github.com/jmylchreest/ocnotify/internal/config"
	"github.com/jmylchreest/ocnotify/internal/model"
)

// BellInterval is the gap between consecutive bell pulses.
const BellInterval = 100 * time.Millisecond

// Params are the invocation parameters of one mechanism for one event.
// The concrete type matches the mechanism's InvocationClass.
type Params interface {
	class() InvocationClass
}

// FileParams lists sound files to try in order.
type FileParams struct {
	Candidates []string
}

// ToneParams describes a generated tone.
type ToneParams struct {
	Freq     int
	Duration time.Duration
}

// BellParams describes a bell pattern.
type BellParams struct {
	Pulses   int
	Interval time.Duration
}

func (FileParams) class() InvocationClass { return ClassFile }
func (ToneParams) class() InvocationClass { return ClassTone }
func (BellParams) class() InvocationClass { return ClassBell }

// ParamsFor translates an event kind and its settings into the parameters
// of the given mechanism.
func ParamsFor(spec MechanismSpec, kind model.EventKind, ev config.EventConfig) Params {
	switch spec.Class {
	case ClassFile:
		candidates := spec.Assets[kind]
		if len(ev.Sounds) > 0 {
			candidates = ev.Sounds
		}
		return FileParams{Candidates: slices.Clone(candidates)}
	case ClassTone:
		return ToneParams{Freq: ev.Tone.Freq, Duration: ev.ToneDuration()}
	case ClassBell:
		return BellParams{Pulses: ev.BellPulses(), Interval: BellInterval}
	default:
		panic("audio: unhandled invocation class " + spec.Class.String())
	}
}
