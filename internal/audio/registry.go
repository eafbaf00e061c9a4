package audio

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/jmylchreest/ocnotify/internal/model"
)

// Platform identifies the operating system a mechanism targets.
type Platform string

const (
	PlatformDarwin  Platform = "darwin"
	PlatformLinux   Platform = "linux"
	PlatformWindows Platform = "win32"
	PlatformAll     Platform = "all"
)

// CurrentPlatform returns the platform ocnotify is running on.
func CurrentPlatform() Platform {
	return PlatformFromGOOS(runtime.GOOS)
}

// PlatformFromGOOS maps a runtime.GOOS value to a Platform.
func PlatformFromGOOS(goos string) Platform {
	if goos == "windows" {
		return PlatformWindows
	}
	return Platform(goos)
}

// InvocationClass selects how a mechanism is driven.
type InvocationClass int

const (
	// ClassFile plays a sound asset through an external player.
	ClassFile InvocationClass = iota
	// ClassTone generates a tone of a given frequency and duration.
	ClassTone
	// ClassBell emits the terminal bell character.
	ClassBell
)

func (c InvocationClass) String() string {
	switch c {
	case ClassFile:
		return "file"
	case ClassTone:
		return "tone"
	case ClassBell:
		return "bell"
	default:
		return "unknown"
	}
}

// Mechanism ids.
const (
	MechanismAfplay         = "afplay"
	MechanismPaplay         = "paplay"
	MechanismSpeakerTest    = "speaker-test"
	MechanismAplay          = "aplay"
	MechanismBeep           = "beep"
	MechanismPowershellBeep = "powershell-beep"
	MechanismOsascriptBeep  = "osascript-beep"
	MechanismKernelBeep     = "kernel-beep"
	MechanismBell           = "bell"
)

// MechanismSpec describes one way of producing sound.
type MechanismSpec struct {
	ID          string
	Platform    Platform
	Probe       string // command that must be on PATH; empty means always available
	Priority    int    // higher is preferred
	Class       InvocationClass
	Description string

	// Command is the executable run for the mechanism. Tone mechanisms with
	// no command are driven through the Beeper.
	Command string

	// Assets lists candidate sound files per event kind (ClassFile only).
	Assets map[model.EventKind][]string

	fileArgs     func(asset string) []string
	toneArgs     func(p ToneParams) []string
	untilStopped bool // the tone plays until the process is stopped
}

// Registry is the ordered table of known mechanisms.
// Declaration order breaks priority ties.
type Registry []MechanismSpec

// Lookup returns the spec with the given id.
func (r Registry) Lookup(id string) (MechanismSpec, bool) {
	for _, spec := range r {
		if spec.ID == id {
			return spec, true
		}
	}
	return MechanismSpec{}, false
}

// bell returns the universal bell entry, falling back to the built-in one.
func (r Registry) bell() MechanismSpec {
	if spec, ok := r.Lookup(MechanismBell); ok {
		return spec
	}
	return bellSpec
}

// Validate checks the registry invariants: unique ids, positive priorities
// and a bell that ranks strictly below every other entry.
func (r Registry) Validate() error {
	seen := make(map[string]bool, len(r))
	bell := r.bell()
	for _, spec := range r {
		if seen[spec.ID] {
			return fmt.Errorf("duplicate mechanism id %q", spec.ID)
		}
		seen[spec.ID] = true

		if spec.Priority <= 0 {
			return fmt.Errorf("mechanism %q: priority must be positive, got %d", spec.ID, spec.Priority)
		}
		if spec.ID != bell.ID && spec.Priority <= bell.Priority {
			return fmt.Errorf("mechanism %q: priority %d must be above the bell's %d", spec.ID, spec.Priority, bell.Priority)
		}
		if spec.Class == ClassFile && (spec.Command == "" || spec.fileArgs == nil) {
			return fmt.Errorf("mechanism %q: file players need a command", spec.ID)
		}
	}
	return nil
}

var bellSpec = MechanismSpec{
	ID:          MechanismBell,
	Platform:    PlatformAll,
	Priority:    1,
	Class:       ClassBell,
	Description: "Terminal bell (universal)",
}

const (
	macSounds         = "/System/Library/Sounds/"
	freedesktopSounds = "/usr/share/sounds/freedesktop/stereo/"
	alsaSounds        = "/usr/share/sounds/alsa/"
)

func pathArgs(asset string) []string {
	return []string{asset}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

// DefaultRegistry returns the built-in mechanism table.
func DefaultRegistry() Registry {
	return Registry{
		{
			ID:          MechanismAfplay,
			Platform:    PlatformDarwin,
			Probe:       "afplay",
			Priority:    10,
			Class:       ClassFile,
			Description: "macOS system sound player",
			Command:     "afplay",
			Assets: map[model.EventKind][]string{
				model.KindPermission: {macSounds + "Ping.aiff"},
				model.KindCompletion: {macSounds + "Glass.aiff", macSounds + "Hero.aiff"},
			},
			fileArgs: pathArgs,
		},
		{
			ID:          MechanismPaplay,
			Platform:    PlatformLinux,
			Probe:       "paplay",
			Priority:    9,
			Class:       ClassFile,
			Description: "PulseAudio sound player",
			Command:     "paplay",
			Assets: map[model.EventKind][]string{
				model.KindPermission: {
					freedesktopSounds + "message.oga",
					freedesktopSounds + "bell.oga",
					freedesktopSounds + "message-new-instant.oga",
				},
				model.KindCompletion: {
					freedesktopSounds + "complete.oga",
					freedesktopSounds + "service-login.oga",
					freedesktopSounds + "dialog-information.oga",
				},
			},
			fileArgs: pathArgs,
		},
		{
			ID:          MechanismSpeakerTest,
			Platform:    PlatformLinux,
			Probe:       "speaker-test",
			Priority:    8,
			Class:       ClassTone,
			Description: "ALSA tone generator (TTY compatible)",
			Command:     "speaker-test",
			toneArgs: func(p ToneParams) []string {
				return []string{"-t", "sine", "-f", itoa(p.Freq), "-l", "1"}
			},
			untilStopped: true,
		},
		{
			ID:          MechanismAplay,
			Platform:    PlatformLinux,
			Probe:       "aplay",
			Priority:    7,
			Class:       ClassFile,
			Description: "ALSA sound player",
			Command:     "aplay",
			Assets: map[model.EventKind][]string{
				model.KindPermission: {
					freedesktopSounds + "message.wav",
					alsaSounds + "Front_Center.wav",
				},
				model.KindCompletion: {
					freedesktopSounds + "complete.wav",
					alsaSounds + "Noise.wav",
					alsaSounds + "Front_Center.wav",
				},
			},
			fileArgs: func(asset string) []string {
				return []string{"-q", asset}
			},
		},
		{
			ID:          MechanismBeep,
			Platform:    PlatformLinux,
			Probe:       "beep",
			Priority:    6,
			Class:       ClassTone,
			Description: "PC speaker beep (TTY compatible)",
			Command:     "beep",
			toneArgs: func(p ToneParams) []string {
				return []string{"-f", itoa(p.Freq), "-l", itoa(int(p.Duration.Milliseconds()))}
			},
		},
		{
			ID:          MechanismPowershellBeep,
			Platform:    PlatformWindows,
			Probe:       "powershell",
			Priority:    5,
			Class:       ClassTone,
			Description: "Windows PowerShell beep",
			Command:     "powershell",
			toneArgs: func(p ToneParams) []string {
				script := fmt.Sprintf("[console]::beep(%d,%d)", p.Freq, p.Duration.Milliseconds())
				return []string{"-NoProfile", "-NonInteractive", "-Command", script}
			},
		},
		{
			ID:          MechanismOsascriptBeep,
			Platform:    PlatformDarwin,
			Probe:       "osascript",
			Priority:    5,
			Class:       ClassTone,
			Description: "macOS AppleScript beep",
		},
		{
			ID:          MechanismKernelBeep,
			Platform:    PlatformWindows,
			Priority:    4,
			Class:       ClassTone,
			Description: "Windows kernel Beep",
		},
		bellSpec,
	}
}
