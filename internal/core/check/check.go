// Package check evaluates derived snapshots against operator-supplied
// thresholds. Pure functions, no I/O: the shell fetches and derives, this
// package only compares and folds severities.
package check

import (
	"github.com/dockcheck/dockcheck/internal/core/domain"
	"github.com/dockcheck/dockcheck/internal/core/severity"
)

// =============================================================================
// Container Check
// =============================================================================

// ContainerThresholds holds the per-metric warning/critical limits for a
// container check. A nil limit is not enforced.
type ContainerThresholds struct {
	CPUWarnPercent *float64
	CPUCritPercent *float64
	MemWarnBytes   *int64
	MemCritBytes   *int64
	PIDWarn        *int64
	PIDCrit        *int64
}

// EvaluateContainer folds every independent threshold comparison for a
// container snapshot through severity.Combine. A critical breach on a metric
// dominates a simultaneous warning breach on the same metric.
func EvaluateContainer(c domain.ContainerSnapshot, t ContainerThresholds) severity.Severity {
	state := severity.OK

	if c.Unhealthy() {
		state = severity.Combine(state, severity.Warning)
	}
	if c.State != domain.StateRunning {
		state = severity.Combine(state, severity.Critical)
	}

	if t.CPUWarnPercent != nil && *t.CPUWarnPercent < c.CPUPercent {
		state = severity.Combine(state, severity.Warning)
	}
	if t.CPUCritPercent != nil && *t.CPUCritPercent < c.CPUPercent {
		state = severity.Combine(state, severity.Critical)
	}

	if t.MemWarnBytes != nil && *t.MemWarnBytes < c.MemoryUsedBytes {
		state = severity.Combine(state, severity.Warning)
	}
	if t.MemCritBytes != nil && *t.MemCritBytes < c.MemoryUsedBytes {
		state = severity.Combine(state, severity.Critical)
	}

	if t.PIDWarn != nil && *t.PIDWarn < c.PIDCount {
		state = severity.Combine(state, severity.Warning)
	}
	if t.PIDCrit != nil && *t.PIDCrit < c.PIDCount {
		state = severity.Combine(state, severity.Critical)
	}

	return state
}

// =============================================================================
// Engine Check
// =============================================================================

// EngineThresholds holds the engine-wide count limits. A nil limit is not
// enforced; every breach is a warning candidate.
type EngineThresholds struct {
	MinRunning *int
	MaxPaused  *int
	MaxStopped *int
	MaxImages  *int
	MaxVolumes *int
}

// EvaluateEngine folds the engine-level count checks through severity.Combine.
func EvaluateEngine(e domain.EngineSnapshot, t EngineThresholds) severity.Severity {
	state := severity.OK

	if t.MinRunning != nil && e.ContainersRunning < *t.MinRunning {
		state = severity.Combine(state, severity.Warning)
	}
	if t.MaxPaused != nil && e.ContainersPaused > *t.MaxPaused {
		state = severity.Combine(state, severity.Warning)
	}
	if t.MaxStopped != nil && e.ContainersStopped > *t.MaxStopped {
		state = severity.Combine(state, severity.Warning)
	}
	if t.MaxImages != nil && e.ImageCount > *t.MaxImages {
		state = severity.Combine(state, severity.Warning)
	}
	if t.MaxVolumes != nil && e.VolumeCount > *t.MaxVolumes {
		state = severity.Combine(state, severity.Warning)
	}

	return state
}
