// Package config handles configuration file loading and merging.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/ocnotify/internal/model"
)

// SectionKey is the top-level key holding ocnotify settings in the host's config file.
const SectionKey = "audio_notifications"

// Default configuration values. Cooldowns are in seconds, tone durations
// and the completion delay in milliseconds.
const (
	DefaultMethod             = "auto"
	DefaultPermissionCooldown = 2.0
	DefaultCompletionCooldown = 5.0
	DefaultPermissionFreq     = 1000
	DefaultPermissionDuration = 150
	DefaultCompletionFreq     = 600
	DefaultCompletionDuration = 250
	DefaultCompletionDelayMs  = 1000
)

// Bell patterns.
const (
	BellSingle = "single"
	BellDouble = "double"
	BellTriple = "triple"
)

// Tone limits accepted by every tone backend.
const (
	MinToneFreq     = 37
	MaxToneFreq     = 32767
	MaxToneDuration = 10000
)

// Config is the effective ocnotify configuration.
type Config struct {
	Enabled           bool        `json:"enabled" toml:"enabled" yaml:"enabled"`
	Debug             bool        `json:"debug" toml:"debug" yaml:"debug"`
	CompletionDelayMs int         `json:"completionDelayMs" toml:"completionDelayMs" yaml:"completionDelayMs"`
	Permission        EventConfig `json:"permission" toml:"permission" yaml:"permission"`
	Completion        EventConfig `json:"completion" toml:"completion" yaml:"completion"`
}

// EventConfig holds the settings for one event kind.
type EventConfig struct {
	Enabled bool `json:"enabled" toml:"enabled" yaml:"enabled"`

	// Method is "auto" or the id of a mechanism to prefer when available.
	Method string `json:"method" toml:"method" yaml:"method"`

	// Cooldown is the suppression window in seconds. Zero disables it.
	Cooldown float64 `json:"cooldown" toml:"cooldown" yaml:"cooldown"`

	Tone        ToneConfig `json:"tone" toml:"tone" yaml:"tone"`
	BellPattern string     `json:"bellPattern" toml:"bellPattern" yaml:"bellPattern"`

	// Sounds replaces the built-in candidate assets for file players.
	Sounds []string `json:"sounds,omitempty" toml:"sounds,omitempty" yaml:"sounds,omitempty"`
}

// ToneConfig holds tone generator parameters.
// Freq is in Hz and Duration in milliseconds.
type ToneConfig struct {
	Freq     int `json:"freq" toml:"freq" yaml:"freq"`
	Duration int `json:"duration" toml:"duration" yaml:"duration"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Enabled:           true,
		Debug:             false,
		CompletionDelayMs: DefaultCompletionDelayMs,
		Permission: EventConfig{
			Enabled:  true,
			Method:   DefaultMethod,
			Cooldown: DefaultPermissionCooldown,
			Tone: ToneConfig{
				Freq:     DefaultPermissionFreq,
				Duration: DefaultPermissionDuration,
			},
			BellPattern: BellSingle,
		},
		Completion: EventConfig{
			Enabled:  true,
			Method:   DefaultMethod,
			Cooldown: DefaultCompletionCooldown,
			Tone: ToneConfig{
				Freq:     DefaultCompletionFreq,
				Duration: DefaultCompletionDuration,
			},
			BellPattern: BellDouble,
		},
	}
}

// Event returns the settings for the given event kind.
func (c *Config) Event(kind model.EventKind) EventConfig {
	if kind == model.KindCompletion {
		return c.Completion
	}
	return c.Permission
}

// CompletionDelay returns the delay applied before a completion sound.
func (c *Config) CompletionDelay() time.Duration {
	return time.Duration(c.CompletionDelayMs) * time.Millisecond
}

// CooldownDuration returns the cooldown window.
func (e EventConfig) CooldownDuration() time.Duration {
	return time.Duration(e.Cooldown * float64(time.Second))
}

// ToneDuration returns the tone length.
func (e EventConfig) ToneDuration() time.Duration {
	return time.Duration(e.Tone.Duration) * time.Millisecond
}

// BellPulses returns the number of bell characters for the configured pattern.
func (e EventConfig) BellPulses() int {
	switch e.BellPattern {
	case BellDouble:
		return 2
	case BellTriple:
		return 3
	default:
		return 1
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.CompletionDelayMs < 0 {
		return fmt.Errorf("completionDelayMs must not be negative, got %d", c.CompletionDelayMs)
	}
	for _, kind := range model.Kinds() {
		if err := c.Event(kind).validate(); err != nil {
			return fmt.Errorf("%s: %w", kind, err)
		}
	}
	return nil
}

func (e EventConfig) validate() error {
	if problems := e.sanitize(e); len(problems) > 0 {
		return problems[0]
	}
	return nil
}

// Sanitize resets every out-of-range field to its default and returns one
// error per field it reset. A config that passes Validate is left unchanged.
func (c *Config) Sanitize() []error {
	defaults := DefaultConfig()
	var problems []error

	if c.CompletionDelayMs < 0 {
		problems = append(problems, fmt.Errorf("completionDelayMs must not be negative, got %d", c.CompletionDelayMs))
		c.CompletionDelayMs = defaults.CompletionDelayMs
	}
	for _, kind := range model.Kinds() {
		ev, def := c.eventRef(kind), defaults.Event(kind)
		for _, err := range ev.sanitize(def) {
			problems = append(problems, fmt.Errorf("%s: %w", kind, err))
		}
	}
	return problems
}

func (c *Config) eventRef(kind model.EventKind) *EventConfig {
	if kind == model.KindCompletion {
		return &c.Completion
	}
	return &c.Permission
}

func (e *EventConfig) sanitize(def EventConfig) []error {
	var problems []error
	reset := func(err error, apply func()) {
		problems = append(problems, err)
		apply()
	}

	if e.Cooldown < 0 {
		reset(fmt.Errorf("cooldown must not be negative, got %g", e.Cooldown),
			func() { e.Cooldown = def.Cooldown })
	}
	if e.Tone.Freq < MinToneFreq || e.Tone.Freq > MaxToneFreq {
		reset(fmt.Errorf("tone.freq must be between %d and %d, got %d", MinToneFreq, MaxToneFreq, e.Tone.Freq),
			func() { e.Tone.Freq = def.Tone.Freq })
	}
	if e.Tone.Duration <= 0 || e.Tone.Duration > MaxToneDuration {
		reset(fmt.Errorf("tone.duration must be between 1 and %d, got %d", MaxToneDuration, e.Tone.Duration),
			func() { e.Tone.Duration = def.Tone.Duration })
	}
	switch e.BellPattern {
	case BellSingle, BellDouble, BellTriple:
	default:
		reset(fmt.Errorf("invalid bellPattern %q", e.BellPattern),
			func() { e.BellPattern = def.BellPattern })
	}
	if strings.TrimSpace(e.Method) == "" {
		reset(errors.New("method must not be empty"),
			func() { e.Method = def.Method })
	}
	return problems
}

// HomeDir returns the user's home directory.
// HOME is checked first, then USERPROFILE, then HOMEDRIVE+HOMEPATH,
// falling back to os.UserHomeDir.
func HomeDir() (string, error) {
	if home := os.Getenv("HOME"); home != "" {
		return home, nil
	}
	if home := os.Getenv("USERPROFILE"); home != "" {
		return home, nil
	}
	if drive, path := os.Getenv("HOMEDRIVE"), os.Getenv("HOMEPATH"); drive != "" && path != "" {
		return drive + path, nil
	}
	return os.UserHomeDir()
}

// ConfigPath returns the path to the host config file holding the
// audio_notifications section.
func ConfigPath() string {
	home, err := HomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "opencode", "opencode.json")
}

// DataPath returns the path to the data directory.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share.
func DataPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := HomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "ocnotify")
}

// HistoryPath returns the path to the history JSONL file.
func HistoryPath() string {
	return filepath.Join(DataPath(), "history.jsonl")
}

// document is the shape of the host config file. Only our section is read.
type document struct {
	AudioNotifications *Override `json:"audio_notifications" toml:"audio_notifications" yaml:"audio_notifications"`
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if the file doesn't exist.
// The file format is chosen by extension: .toml, .yaml/.yml, anything else is JSON.
func LoadConfig(path string) (*Config, error) {
	merged, err := loadMerged(path)
	if err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return merged, nil
}

// loadMerged reads the file at path and merges it over the defaults without
// validating the result.
func loadMerged(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	override, err := ParseOverride(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return Merge(cfg, override), nil
}

// ParseOverride decodes the audio_notifications section from a config document.
// ext selects the codec (".toml", ".yaml", ".yml", otherwise JSON).
// A document without the section yields a nil override.
func ParseOverride(data []byte, ext string) (*Override, error) {
	var doc document
	var err error

	switch strings.ToLower(ext) {
	case ".toml":
		err = toml.Unmarshal(data, &doc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, err
	}
	return doc.AudioNotifications, nil
}

// Resolve returns the effective configuration.
// A missing, unreadable or malformed file yields the defaults. Values that
// parse but are out of range fall back to their default one field at a time,
// so the rest of the user's settings still apply. Problems are logged at
// debug level and never returned.
func Resolve(path string, logger *slog.Logger) *Config {
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := loadMerged(path)
	if err != nil {
		logger.Debug("ignoring config file, using defaults", "path", path, "error", err)
		return DefaultConfig()
	}
	for _, problem := range cfg.Sanitize() {
		logger.Debug("ignoring invalid config value, using default", "path", path, "error", problem)
	}
	return cfg
}
