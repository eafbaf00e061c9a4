package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/ocnotify/internal/config"
	"github.com/jmylchreest/ocnotify/internal/model"
)

func TestParamsFor(t *testing.T) {
	r := DefaultRegistry()
	cfg := config.DefaultConfig()
	afplay, _ := r.Lookup(MechanismAfplay)
	beep, _ := r.Lookup(MechanismBeep)
	bell, _ := r.Lookup(MechanismBell)

	tests := []struct {
		name string
		spec MechanismSpec
		kind model.EventKind
		want Params
	}{
		{"bell permission", bell, model.KindPermission, BellParams{Pulses: 1, Interval: BellInterval}},
		{"bell completion", bell, model.KindCompletion, BellParams{Pulses: 2, Interval: BellInterval}},
		{"tone permission", beep, model.KindPermission, ToneParams{Freq: 1000, Duration: 150 * time.Millisecond}},
		{"tone completion", beep, model.KindCompletion, ToneParams{Freq: 600, Duration: 250 * time.Millisecond}},
		{"file permission", afplay, model.KindPermission, FileParams{Candidates: []string{"/System/Library/Sounds/Ping.aiff"}}},
		{"file completion", afplay, model.KindCompletion, FileParams{Candidates: []string{
			"/System/Library/Sounds/Glass.aiff",
			"/System/Library/Sounds/Hero.aiff",
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParamsFor(tt.spec, tt.kind, cfg.Event(tt.kind)))
		})
	}
}

func TestParamsFor_ConfiguredOverrides(t *testing.T) {
	r := DefaultRegistry()
	paplay, _ := r.Lookup(MechanismPaplay)
	bell, _ := r.Lookup(MechanismBell)

	ev := config.DefaultConfig().Permission
	ev.Sounds = []string{"/tmp/custom.oga"}
	ev.BellPattern = config.BellTriple

	assert.Equal(t, FileParams{Candidates: []string{"/tmp/custom.oga"}}, ParamsFor(paplay, model.KindPermission, ev))
	assert.Equal(t, BellParams{Pulses: 3, Interval: BellInterval}, ParamsFor(bell, model.KindPermission, ev))
}

func TestParamsFor_DoesNotAliasAssets(t *testing.T) {
	r := DefaultRegistry()
	afplay, _ := r.Lookup(MechanismAfplay)

	params := ParamsFor(afplay, model.KindCompletion, config.DefaultConfig().Completion).(FileParams)
	params.Candidates[0] = "changed"

	assert.Equal(t, "/System/Library/Sounds/Glass.aiff", afplay.Assets[model.KindCompletion][0])
}
