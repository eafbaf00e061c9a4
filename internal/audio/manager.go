package audio

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jmylchreest/ocnotify/internal/config"
	"github.com/jmylchreest/ocnotify/internal/cooldown"
	"github.com/jmylchreest/ocnotify/internal/model"
)

// Journal records dispatched notifications.
type Journal interface {
	Append(e model.Entry) error
}

// Manager detects mechanisms once and plays notifications through them,
// rate-limited per event kind.
type Manager struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	config   *config.Config
	platform Platform
	detector *Detector
	player   *Player
	gate     *cooldown.Gate
	journal  Journal

	mechanisms []string
}

// NewManager creates a new audio manager for the current platform.
func NewManager(cfg *config.Config, detector *Detector, player *Player, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	m := &Manager{
		logger:   logger,
		config:   cfg,
		platform: CurrentPlatform(),
		detector: detector,
		player:   player,
	}
	m.gate = cooldown.NewGate(func(kind model.EventKind) time.Duration {
		return m.Config().Event(kind).CooldownDuration()
	})
	return m
}

// SetPlatform overrides the detected platform. Call before Start.
func (m *Manager) SetPlatform(p Platform) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.platform = p
}

// SetJournal sets where dispatched notifications are recorded.
func (m *Manager) SetJournal(j Journal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.journal = j
}

// SetClock replaces the cooldown time source (for testing).
func (m *Manager) SetClock(now func() time.Time) {
	m.gate.SetClock(now)
}

// Start detects the available mechanisms and logs the result.
func (m *Manager) Start(ctx context.Context) []string {
	m.mu.RLock()
	platform := m.platform
	m.mu.RUnlock()

	mechanisms := m.detector.Detect(ctx, platform)

	m.mu.Lock()
	m.mechanisms = mechanisms
	m.mu.Unlock()

	if !m.Config().Enabled {
		m.logger.Info("audio notifications disabled", "platform", platform)
		return slices.Clone(mechanisms)
	}
	m.logger.Info("audio notifications ready",
		"platform", platform,
		"mechanisms", mechanisms,
		"primary", mechanisms[0],
	)
	return slices.Clone(mechanisms)
}

// Mechanisms returns the detected mechanisms, best first.
func (m *Manager) Mechanisms() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.mechanisms)
}

// MechanismsFor returns the mechanism order for kind. A configured method
// that was detected moves to the front; "auto" or an undetected method keeps
// the detected order.
func (m *Manager) MechanismsFor(kind model.EventKind) []string {
	mechanisms := m.Mechanisms()
	method := m.Config().Event(kind).Method
	if method == "" || method == config.DefaultMethod {
		return mechanisms
	}

	i := slices.Index(mechanisms, method)
	if i < 0 {
		m.logger.Debug("configured method not available", "kind", kind, "method", method)
		return mechanisms
	}
	ordered := make([]string, 0, len(mechanisms))
	ordered = append(ordered, method)
	ordered = append(ordered, mechanisms[:i]...)
	return append(ordered, mechanisms[i+1:]...)
}

// Notify plays the sound for kind unless notifications are disabled or the
// kind is cooling down. It reports whether a sound played.
func (m *Manager) Notify(ctx context.Context, kind model.EventKind) bool {
	cfg := m.Config()
	if !cfg.Enabled || !cfg.Event(kind).Enabled {
		m.logger.Debug("notification disabled", "kind", kind)
		return false
	}

	var res Result
	outcome := m.gate.Fire(kind, func() bool {
		res = m.player.Play(ctx, kind, m.MechanismsFor(kind), cfg)
		return res.Played
	})
	if outcome == cooldown.Suppressed {
		m.logger.Debug("sound skipped by cooldown", "kind", kind, "last_fired", m.gate.LastFired(kind))
		return false
	}

	m.record(kind, res)
	return res.Played
}

// PlayNow plays the sound for kind immediately, ignoring the cooldown and
// the enabled flags.
func (m *Manager) PlayNow(ctx context.Context, kind model.EventKind) Result {
	res := m.player.Play(ctx, kind, m.MechanismsFor(kind), m.Config())
	m.record(kind, res)
	return res
}

func (m *Manager) record(kind model.EventKind, res Result) {
	m.mu.RLock()
	journal := m.journal
	m.mu.RUnlock()
	if journal == nil {
		return
	}

	entry, err := model.NewEntry(kind)
	if err != nil {
		m.logger.Warn("failed to create history entry", "error", err)
		return
	}
	entry.Played = res.Played
	entry.Mechanism = res.Mechanism
	entry.Attempts = res.AttemptIDs()
	entry.DurationMs = res.Elapsed.Milliseconds()

	if err := journal.Append(*entry); err != nil {
		m.logger.Warn("failed to record notification", "error", err)
	}
}

// Config returns the current configuration.
func (m *Manager) Config() *config.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// UpdateConfig replaces the configuration. Cooldown thresholds and event
// settings take effect on the next notification.
func (m *Manager) UpdateConfig(cfg *config.Config) {
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
	m.logger.Debug("audio manager config updated")
}
