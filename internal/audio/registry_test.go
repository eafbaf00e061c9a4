package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry_Valid(t *testing.T) {
	r := DefaultRegistry()
	require.NoError(t, r.Validate())

	bell, ok := r.Lookup(MechanismBell)
	require.True(t, ok)
	assert.Equal(t, PlatformAll, bell.Platform)
	assert.Empty(t, bell.Probe)
	assert.Equal(t, ClassBell, bell.Class)

	for _, spec := range r {
		if spec.ID != MechanismBell {
			assert.Greater(t, spec.Priority, bell.Priority, spec.ID)
		}
		switch spec.Class {
		case ClassFile:
			assert.NotEmpty(t, spec.Assets, spec.ID)
		case ClassTone:
			if spec.Command != "" {
				assert.NotNil(t, spec.toneArgs, spec.ID)
			}
		}
	}
}

func TestRegistry_Validate(t *testing.T) {
	tests := []struct {
		name     string
		registry Registry
		wantErr  string
	}{
		{
			name: "duplicate id",
			registry: Registry{
				{ID: "a", Platform: PlatformLinux, Priority: 5, Class: ClassTone},
				{ID: "a", Platform: PlatformLinux, Priority: 4, Class: ClassTone},
				bellSpec,
			},
			wantErr: "duplicate",
		},
		{
			name: "zero priority",
			registry: Registry{
				{ID: "a", Platform: PlatformLinux, Priority: 0, Class: ClassTone},
			},
			wantErr: "positive",
		},
		{
			name: "not above bell",
			registry: Registry{
				{ID: "a", Platform: PlatformLinux, Priority: 1, Class: ClassTone},
				bellSpec,
			},
			wantErr: "above the bell",
		},
		{
			name: "file player without command",
			registry: Registry{
				{ID: "a", Platform: PlatformLinux, Priority: 3, Class: ClassFile},
			},
			wantErr: "need a command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.registry.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPlatformFromGOOS(t *testing.T) {
	assert.Equal(t, PlatformWindows, PlatformFromGOOS("windows"))
	assert.Equal(t, PlatformDarwin, PlatformFromGOOS("darwin"))
	assert.Equal(t, PlatformLinux, PlatformFromGOOS("linux"))
	assert.Equal(t, Platform("freebsd"), PlatformFromGOOS("freebsd"))
}

func TestToneArgs(t *testing.T) {
	r := DefaultRegistry()
	p := ToneParams{Freq: 1000, Duration: 150 * time.Millisecond}

	beep, _ := r.Lookup(MechanismBeep)
	assert.Equal(t, []string{"-f", "1000", "-l", "150"}, beep.toneArgs(p))

	st, _ := r.Lookup(MechanismSpeakerTest)
	assert.Equal(t, []string{"-t", "sine", "-f", "1000", "-l", "1"}, st.toneArgs(p))
	assert.True(t, st.untilStopped)

	ps, _ := r.Lookup(MechanismPowershellBeep)
	assert.Equal(t, []string{"-NoProfile", "-NonInteractive", "-Command", "[console]::beep(1000,150)"}, ps.toneArgs(p))

	aplay, _ := r.Lookup(MechanismAplay)
	assert.Equal(t, []string{"-q", "/tmp/x.wav"}, aplay.fileArgs("/tmp/x.wav"))
}
