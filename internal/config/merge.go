package config

import "slices"

// Override is a user-supplied partial configuration. A nil field means the
// key was absent from the file and the default is kept.
type Override struct {
	Enabled           *bool          `json:"enabled,omitempty" toml:"enabled,omitempty" yaml:"enabled,omitempty"`
	Debug             *bool          `json:"debug,omitempty" toml:"debug,omitempty" yaml:"debug,omitempty"`
	CompletionDelayMs *int           `json:"completionDelayMs,omitempty" toml:"completionDelayMs,omitempty" yaml:"completionDelayMs,omitempty"`
	Permission        *EventOverride `json:"permission,omitempty" toml:"permission,omitempty" yaml:"permission,omitempty"`
	Completion        *EventOverride `json:"completion,omitempty" toml:"completion,omitempty" yaml:"completion,omitempty"`
}

// EventOverride is the partial form of EventConfig.
type EventOverride struct {
	Enabled     *bool         `json:"enabled,omitempty" toml:"enabled,omitempty" yaml:"enabled,omitempty"`
	Method      *string       `json:"method,omitempty" toml:"method,omitempty" yaml:"method,omitempty"`
	Cooldown    *float64      `json:"cooldown,omitempty" toml:"cooldown,omitempty" yaml:"cooldown,omitempty"`
	Tone        *ToneOverride `json:"tone,omitempty" toml:"tone,omitempty" yaml:"tone,omitempty"`
	BellPattern *string       `json:"bellPattern,omitempty" toml:"bellPattern,omitempty" yaml:"bellPattern,omitempty"`
	Sounds      []string      `json:"sounds,omitempty" toml:"sounds,omitempty" yaml:"sounds,omitempty"`
}

// ToneOverride is the partial form of ToneConfig.
type ToneOverride struct {
	Freq     *int `json:"freq,omitempty" toml:"freq,omitempty" yaml:"freq,omitempty"`
	Duration *int `json:"duration,omitempty" toml:"duration,omitempty" yaml:"duration,omitempty"`
}

// Merge returns a copy of base with every field present in o applied.
// Nested sections are merged field by field; arrays (Sounds) replace the
// base value wholesale. base is not modified.
func Merge(base *Config, o *Override) *Config {
	out := base.clone()
	if o == nil {
		return out
	}

	setIf(&out.Enabled, o.Enabled)
	setIf(&out.Debug, o.Debug)
	setIf(&out.CompletionDelayMs, o.CompletionDelayMs)
	out.Permission = mergeEvent(out.Permission, o.Permission)
	out.Completion = mergeEvent(out.Completion, o.Completion)

	return out
}

func mergeEvent(base EventConfig, o *EventOverride) EventConfig {
	if o == nil {
		return base
	}

	setIf(&base.Enabled, o.Enabled)
	setIf(&base.Method, o.Method)
	setIf(&base.Cooldown, o.Cooldown)
	setIf(&base.BellPattern, o.BellPattern)
	if o.Tone != nil {
		setIf(&base.Tone.Freq, o.Tone.Freq)
		setIf(&base.Tone.Duration, o.Tone.Duration)
	}
	if o.Sounds != nil {
		base.Sounds = slices.Clone(o.Sounds)
	}

	return base
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// OverrideFrom returns an Override with every field of c present.
// Merging it over any base yields c.
func OverrideFrom(c *Config) *Override {
	return &Override{
		Enabled:           ptr(c.Enabled),
		Debug:             ptr(c.Debug),
		CompletionDelayMs: ptr(c.CompletionDelayMs),
		Permission:        eventOverrideFrom(c.Permission),
		Completion:        eventOverrideFrom(c.Completion),
	}
}

func eventOverrideFrom(e EventConfig) *EventOverride {
	return &EventOverride{
		Enabled:     ptr(e.Enabled),
		Method:      ptr(e.Method),
		Cooldown:    ptr(e.Cooldown),
		Tone:        &ToneOverride{Freq: ptr(e.Tone.Freq), Duration: ptr(e.Tone.Duration)},
		BellPattern: ptr(e.BellPattern),
		Sounds:      slices.Clone(e.Sounds),
	}
}

func ptr[T any](v T) *T {
	return &v
}

// clone creates a deep copy of the configuration.
func (c *Config) clone() *Config {
	out := *c
	out.Permission.Sounds = slices.Clone(c.Permission.Sounds)
	out.Completion.Sounds = slices.Clone(c.Completion.Sounds)
	return &out
}
