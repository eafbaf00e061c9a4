package audio

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// Detector finds the mechanisms usable on the current host.
type Detector struct {
	registry Registry
	prober   Prober
	logger   *slog.Logger
}

// NewDetector creates a new Detector.
func NewDetector(registry Registry, prober Prober, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	if prober == nil {
		prober = NewPathProber()
	}
	return &Detector{
		registry: registry,
		prober:   prober,
		logger:   logger,
	}
}

// Detect returns the ids of the mechanisms usable on platform, best first.
//
// Entries for other platforms are ignored. An entry with a probe command is
// kept only if the command exists; an entry without one is always kept. The
// result is sorted by descending priority, ties keeping registry order, and
// always ends with the terminal bell.
func (d *Detector) Detect(ctx context.Context, platform Platform) []string {
	var candidates []MechanismSpec
	for _, spec := range d.registry {
		if spec.Platform == platform && spec.Platform != PlatformAll {
			candidates = append(candidates, spec)
		}
	}

	// Probes are independent; run them together and keep registry order.
	available := make([]bool, len(candidates))
	var wg sync.WaitGroup
	for i, spec := range candidates {
		if spec.Probe == "" {
			available[i] = true
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			available[i] = d.prober.Exists(ctx, spec.Probe)
			d.logger.Debug("probed mechanism", "mechanism", spec.ID, "command", spec.Probe, "available", available[i])
		}()
	}
	wg.Wait()

	var usable []MechanismSpec
	for i, spec := range candidates {
		if available[i] {
			usable = append(usable, spec)
		}
	}
	slices.SortStableFunc(usable, func(a, b MechanismSpec) int {
		return b.Priority - a.Priority
	})

	ids := make([]string, 0, len(usable)+1)
	for _, spec := range usable {
		ids = append(ids, spec.ID)
	}
	return append(ids, d.registry.bell().ID)
}
