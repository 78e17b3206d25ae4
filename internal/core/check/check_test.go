package check

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dockcheck/dockcheck/internal/core/domain"
	"github.com/dockcheck/dockcheck/internal/core/severity"
)

func floatPtr(f float64) *float64 { return &f }
func int64Ptr(n int64) *int64     { return &n }
func intPtr(n int) *int           { return &n }

// =============================================================================
// EvaluateContainer Tests
// =============================================================================

func runningContainer() domain.ContainerSnapshot {
	return domain.ContainerSnapshot{
		Name:            "web",
		ID:              "0123456789ab",
		State:           domain.StateRunning,
		Status:          "Up 3 hours",
		PIDCount:        12,
		CPUPercent:      42.5,
		MemoryUsedBytes: 256 * 1024 * 1024,
	}
}

func TestEvaluateContainer_NoThresholds(t *testing.T) {
	got := EvaluateContainer(runningContainer(), ContainerThresholds{})
	assert.Equal(t, severity.OK, got)
}

func TestEvaluateContainer_Thresholds(t *testing.T) {
	tests := []struct {
		name       string
		thresholds ContainerThresholds
		expected   severity.Severity
	}{
		{
			name:       "cpu warn breached",
			thresholds: ContainerThresholds{CPUWarnPercent: floatPtr(40)},
			expected:   severity.Warning,
		},
		{
			name:       "cpu warn not breached",
			thresholds: ContainerThresholds{CPUWarnPercent: floatPtr(50)},
			expected:   severity.OK,
		},
		{
			name: "cpu crit dominates simultaneous warn",
			thresholds: ContainerThresholds{
				CPUWarnPercent: floatPtr(10),
				CPUCritPercent: floatPtr(40),
			},
			expected: severity.Critical,
		},
		{
			name:       "memory warn breached",
			thresholds: ContainerThresholds{MemWarnBytes: int64Ptr(128 * 1024 * 1024)},
			expected:   severity.Warning,
		},
		{
			name:       "memory crit breached",
			thresholds: ContainerThresholds{MemCritBytes: int64Ptr(128 * 1024 * 1024)},
			expected:   severity.Critical,
		},
		{
			name:       "pid warn breached",
			thresholds: ContainerThresholds{PIDWarn: int64Ptr(10)},
			expected:   severity.Warning,
		},
		{
			name:       "pid crit breached",
			thresholds: ContainerThresholds{PIDCrit: int64Ptr(10)},
			expected:   severity.Critical,
		},
		{
			name:       "threshold equal to value is not a breach",
			thresholds: ContainerThresholds{CPUWarnPercent: floatPtr(42.5)},
			expected:   severity.OK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EvaluateContainer(runningContainer(), tt.thresholds))
		})
	}
}

func TestEvaluateContainer_UnhealthyStatusWarns(t *testing.T) {
	c := runningContainer()
	c.Status = "Up 3 hours (unhealthy)"

	assert.Equal(t, severity.Warning, EvaluateContainer(c, ContainerThresholds{}))
}

func TestEvaluateContainer_NotRunningIsCritical(t *testing.T) {
	c := runningContainer()
	c.State = domain.StateExited
	c.Status = "Exited (1) 2 minutes ago"

	assert.Equal(t, severity.Critical, EvaluateContainer(c, ContainerThresholds{}))
}

// =============================================================================
// EvaluateEngine Tests
// =============================================================================

func engineSnapshot() domain.EngineSnapshot {
	// Mirrors a daemon /info reply with 5 containers, 3 running, 2 stopped,
	// 10 images, plus 4 volumes from /volumes.
	return domain.EngineSnapshot{
		ContainersTotal:   5,
		ContainersRunning: 3,
		ContainersPaused:  0,
		ContainersStopped: 2,
		ImageCount:        10,
		VolumeCount:       4,
		CPUCount:          4,
		MemoryTotalBytes:  8589934592,
		Hostname:          "host1",
		ServerVersion:     "24.0",
	}
}

func TestEvaluateEngine_NoThresholds(t *testing.T) {
	assert.Equal(t, severity.OK, EvaluateEngine(engineSnapshot(), EngineThresholds{}))
}

func TestEvaluateEngine_Thresholds(t *testing.T) {
	tests := []struct {
		name       string
		thresholds EngineThresholds
		expected   severity.Severity
	}{
		{"min running breached", EngineThresholds{MinRunning: intPtr(4)}, severity.Warning},
		{"min running satisfied", EngineThresholds{MinRunning: intPtr(3)}, severity.OK},
		{"max paused satisfied", EngineThresholds{MaxPaused: intPtr(0)}, severity.OK},
		{"max stopped breached", EngineThresholds{MaxStopped: intPtr(1)}, severity.Warning},
		{"max images breached", EngineThresholds{MaxImages: intPtr(9)}, severity.Warning},
		{"max volumes breached", EngineThresholds{MaxVolumes: intPtr(3)}, severity.Warning},
		{
			name: "multiple breaches stay warning",
			thresholds: EngineThresholds{
				MinRunning: intPtr(4),
				MaxStopped: intPtr(1),
				MaxImages:  intPtr(5),
			},
			expected: severity.Warning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EvaluateEngine(engineSnapshot(), tt.thresholds))
		})
	}
}
