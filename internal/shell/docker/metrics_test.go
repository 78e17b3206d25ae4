package docker

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockcheck/dockcheck/internal/core/domain"
)

// =============================================================================
// Test Fixtures
// =============================================================================

func runningSummary() ContainerSummary {
	return ContainerSummary{
		ID:     "0123456789abcdef0123456789abcdef",
		Names:  []string{"/web"},
		State:  "running",
		Status: "Up 3 hours",
	}
}

func statsFromJSON(t *testing.T, payload string) ContainerStats {
	t.Helper()

	var stats ContainerStats
	require.NoError(t, json.Unmarshal([]byte(payload), &stats))
	return stats
}

const runningStatsJSON = `{
	"pids_stats": {"current": 12, "limit": 4096},
	"cpu_stats": {
		"cpu_usage": {"total_usage": 400, "percpu_usage": [100, 100, 100, 100]},
		"system_cpu_usage": 2000,
		"online_cpus": 2
	},
	"precpu_stats": {
		"cpu_usage": {"total_usage": 200},
		"system_cpu_usage": 1000
	},
	"memory_stats": {
		"usage": 1000000,
		"limit": 2147483648,
		"stats": {"inactive_file": 200000}
	},
	"networks": {
		"eth0": {"rx_bytes": 1000, "tx_bytes": 2000},
		"eth1": {"rx_bytes": 10, "tx_bytes": 20}
	},
	"blkio_stats": {
		"io_service_bytes_recursive": [
			{"op": "read", "value": 4096},
			{"op": "read", "value": 4096},
			{"op": "write", "value": 8192},
			{"op": "total", "value": 16384}
		]
	}
}`

// =============================================================================
// DeriveContainer Tests
// =============================================================================

func TestDeriveContainer(t *testing.T) {
	snap, err := DeriveContainer(runningSummary(), statsFromJSON(t, runningStatsJSON))
	require.NoError(t, err)

	assert.Equal(t, "web", snap.Name)
	assert.Equal(t, "0123456789ab", snap.ID)
	assert.Equal(t, "0123456789abcdef0123456789abcdef", snap.IDLong)
	assert.Equal(t, domain.StateRunning, snap.State)
	assert.Equal(t, "Up 3 hours", snap.Status)

	assert.Equal(t, int64(12), snap.PIDCount)

	// ((400-200) / (2000-1000)) * 2 cpus * 100
	assert.Equal(t, 40.0, snap.CPUPercent)

	// usage - inactive_file
	assert.Equal(t, int64(800000), snap.MemoryUsedBytes)
	assert.Equal(t, int64(2147483648), snap.MemoryLimitBytes)

	// summed across interfaces
	assert.Equal(t, int64(1010), snap.NetRxBytes)
	assert.Equal(t, int64(2020), snap.NetTxBytes)

	// bucketed by op; unknown ops ignored
	assert.Equal(t, int64(8192), snap.BlockReadBytes)
	assert.Equal(t, int64(8192), snap.BlockWriteBytes)
}

func TestDeriveContainer_NotRunningZeroesUsage(t *testing.T) {
	summary := runningSummary()
	summary.State = "exited"
	summary.Status = "Exited (0) 2 minutes ago"

	// The daemon reports sparse stats for stopped containers; derivation must
	// not touch the counters it would need for a running one.
	stats := statsFromJSON(t, `{
		"pids_stats": {},
		"cpu_stats": {"cpu_usage": {"total_usage": 0}},
		"precpu_stats": {},
		"memory_stats": {},
		"blkio_stats": {}
	}`)

	snap, err := DeriveContainer(summary, stats)
	require.NoError(t, err)

	assert.Zero(t, snap.CPUPercent)
	assert.Zero(t, snap.MemoryUsedBytes)
	assert.Zero(t, snap.NetRxBytes)
	assert.Zero(t, snap.NetTxBytes)
	assert.Zero(t, snap.BlockReadBytes)
	assert.Zero(t, snap.BlockWriteBytes)
	assert.Zero(t, snap.PIDCount)
}

func TestDeriveContainer_CgroupV1Memory(t *testing.T) {
	stats := statsFromJSON(t, runningStatsJSON)
	stats.MemoryStats.Stats = &MemoryStatsDetail{TotalInactiveFile: uint64Ptr(300000)}

	snap, err := DeriveContainer(runningSummary(), stats)
	require.NoError(t, err)
	assert.Equal(t, int64(700000), snap.MemoryUsedBytes)
}

func TestDeriveContainer_UnsupportedCgroupLayout(t *testing.T) {
	stats := statsFromJSON(t, runningStatsJSON)
	stats.MemoryStats.Stats = &MemoryStatsDetail{}

	_, err := DeriveContainer(runningSummary(), stats)
	require.Error(t, err)

	var shapeErr *ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Contains(t, shapeErr.Error(), "cgroup")
}

func TestDeriveContainer_CPUFallsBackToPercpuLength(t *testing.T) {
	stats := statsFromJSON(t, runningStatsJSON)
	stats.CPUStats.OnlineCPUs = 0

	snap, err := DeriveContainer(runningSummary(), stats)
	require.NoError(t, err)

	// 4 entries in percpu_usage instead of the absent online_cpus
	assert.Equal(t, 80.0, snap.CPUPercent)
}

func TestDeriveContainer_ZeroSystemDelta(t *testing.T) {
	stats := statsFromJSON(t, runningStatsJSON)
	stats.PreCPUStats.SystemCPUUsage = stats.CPUStats.SystemCPUUsage

	snap, err := DeriveContainer(runningSummary(), stats)
	require.NoError(t, err)
	assert.Zero(t, snap.CPUPercent)
}

func TestDeriveContainer_MissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ContainerStats)
		field  string
	}{
		{"pids_stats", func(s *ContainerStats) { s.PidsStats = nil }, "pids_stats"},
		{"memory_stats", func(s *ContainerStats) { s.MemoryStats = nil }, "memory_stats"},
		{"memory usage", func(s *ContainerStats) { s.MemoryStats.Usage = nil }, "memory_stats.usage"},
		{"memory breakdown", func(s *ContainerStats) { s.MemoryStats.Stats = nil }, "memory_stats.stats"},
		{"cpu_stats", func(s *ContainerStats) { s.CPUStats = nil }, "cpu_stats.cpu_usage.total_usage"},
		{"system_cpu_usage", func(s *ContainerStats) { s.CPUStats.SystemCPUUsage = nil }, "cpu_stats.system_cpu_usage"},
		{"precpu_stats", func(s *ContainerStats) { s.PreCPUStats = nil }, "precpu_stats.cpu_usage.total_usage"},
		{"networks", func(s *ContainerStats) { s.Networks = nil }, "networks"},
		{"blkio_stats", func(s *ContainerStats) { s.BlkioStats = nil }, "blkio_stats"},
		{
			"no cpu count at all",
			func(s *ContainerStats) {
				s.CPUStats.OnlineCPUs = 0
				s.CPUStats.CPUUsage.PercpuUsage = nil
			},
			"cpu_stats.cpu_usage.percpu_usage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := statsFromJSON(t, runningStatsJSON)
			tt.mutate(&stats)

			_, err := DeriveContainer(runningSummary(), stats)
			require.Error(t, err)

			var shapeErr *ShapeError
			require.ErrorAs(t, err, &shapeErr)
			assert.Equal(t, tt.field, shapeErr.Field)
		})
	}
}

func uint64Ptr(n uint64) *uint64 { return &n }

// =============================================================================
// DeriveEngine Tests
// =============================================================================

const infoJSON = `{"Containers":5,"ContainersRunning":3,"ContainersPaused":0,` +
	`"ContainersStopped":2,"Images":10,"NCPU":4,"MemTotal":8589934592,` +
	`"Name":"host1","ServerVersion":"24.0"}`

func TestDeriveEngine(t *testing.T) {
	var info SystemInfo
	require.NoError(t, json.Unmarshal([]byte(infoJSON), &info))
	var vols VolumeList
	require.NoError(t, json.Unmarshal([]byte(`{"Volumes":[{"Name":"data"},{"Name":"cache"}]}`), &vols))

	snap, err := DeriveEngine(info, vols)
	require.NoError(t, err)

	assert.Equal(t, 5, snap.ContainersTotal)
	assert.Equal(t, 3, snap.ContainersRunning)
	assert.Equal(t, 0, snap.ContainersPaused)
	assert.Equal(t, 2, snap.ContainersStopped)
	assert.Equal(t, 10, snap.ImageCount)
	assert.Equal(t, 2, snap.VolumeCount)
	assert.Equal(t, 4, snap.CPUCount)
	assert.Equal(t, int64(8589934592), snap.MemoryTotalBytes)
	assert.Equal(t, "host1", snap.Hostname)
	assert.Equal(t, "24.0", snap.ServerVersion)
}

func TestDeriveEngine_MissingField(t *testing.T) {
	var info SystemInfo
	require.NoError(t, json.Unmarshal([]byte(`{"Containers":5}`), &info))
	var vols VolumeList
	require.NoError(t, json.Unmarshal([]byte(`{"Volumes":[]}`), &vols))

	_, err := DeriveEngine(info, vols)
	require.Error(t, err)

	var shapeErr *ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, "ContainersRunning", shapeErr.Field)
}

func TestDeriveEngine_NullVolumeList(t *testing.T) {
	var info SystemInfo
	require.NoError(t, json.Unmarshal([]byte(infoJSON), &info))
	var vols VolumeList
	require.NoError(t, json.Unmarshal([]byte(`{"Volumes":null}`), &vols))

	_, err := DeriveEngine(info, vols)
	require.Error(t, err)

	var shapeErr *ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, "Volumes", shapeErr.Field)
}
