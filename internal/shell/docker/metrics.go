package docker

import (
	"math"
	"strings"

	"github.com/dockcheck/dockcheck/internal/core/domain"
)

// =============================================================================
// Metrics Derivation (pure functions over wire types)
// =============================================================================

const truncatedIDLength = 12

// DeriveContainer turns the raw summary and live-stats payloads into a
// normalized snapshot. Usage counters are only meaningful while the container
// runs; for any other state they are defined as zero. A required field
// missing from either payload is a ShapeError naming the field — derivation
// never substitutes a default that could mask a real condition.
func DeriveContainer(summary ContainerSummary, stats ContainerStats) (domain.ContainerSnapshot, error) {
	if len(summary.Names) == 0 {
		return domain.ContainerSnapshot{}, &ShapeError{Field: "Names"}
	}

	snap := domain.ContainerSnapshot{
		Name:   strings.TrimPrefix(summary.Names[0], "/"),
		ID:     summary.ID,
		IDLong: summary.ID,
		State:  summary.State,
		Status: summary.Status,
	}
	if len(snap.ID) > truncatedIDLength {
		snap.ID = snap.ID[:truncatedIDLength]
	}

	if stats.PidsStats == nil {
		return snap, &ShapeError{Field: "pids_stats"}
	}
	snap.PIDCount = stats.PidsStats.Current
	snap.PIDLimit = stats.PidsStats.Limit

	if stats.MemoryStats == nil {
		return snap, &ShapeError{Field: "memory_stats"}
	}
	snap.MemoryLimitBytes = int64(stats.MemoryStats.Limit)

	if summary.State != domain.StateRunning {
		return snap, nil
	}

	cpu, err := cpuPercent(stats)
	if err != nil {
		return snap, err
	}
	snap.CPUPercent = cpu

	used, err := memoryUsed(stats)
	if err != nil {
		return snap, err
	}
	snap.MemoryUsedBytes = used

	if stats.Networks == nil {
		return snap, &ShapeError{Field: "networks"}
	}
	for _, nw := range stats.Networks {
		snap.NetRxBytes += int64(nw.RxBytes)
		snap.NetTxBytes += int64(nw.TxBytes)
	}

	if stats.BlkioStats == nil {
		return snap, &ShapeError{Field: "blkio_stats"}
	}
	for _, entry := range stats.BlkioStats.IoServiceBytesRecursive {
		switch entry.Op {
		case "read":
			snap.BlockReadBytes += int64(entry.Value)
		case "write":
			snap.BlockWriteBytes += int64(entry.Value)
		}
	}

	return snap, nil
}

// cpuPercent computes ((cpuDelta / systemDelta) * onlineCPUs) * 100 from the
// current and previous sample, rounded to two decimal places.
func cpuPercent(stats ContainerStats) (float64, error) {
	cur, prev := stats.CPUStats, stats.PreCPUStats
	switch {
	case cur == nil || cur.CPUUsage == nil || cur.CPUUsage.TotalUsage == nil:
		return 0, &ShapeError{Field: "cpu_stats.cpu_usage.total_usage"}
	case cur.SystemCPUUsage == nil:
		return 0, &ShapeError{Field: "cpu_stats.system_cpu_usage"}
	case prev == nil || prev.CPUUsage == nil || prev.CPUUsage.TotalUsage == nil:
		return 0, &ShapeError{Field: "precpu_stats.cpu_usage.total_usage"}
	case prev.SystemCPUUsage == nil:
		return 0, &ShapeError{Field: "precpu_stats.system_cpu_usage"}
	}

	cpuDelta := float64(*cur.CPUUsage.TotalUsage) - float64(*prev.CPUUsage.TotalUsage)
	systemDelta := float64(*cur.SystemCPUUsage) - float64(*prev.SystemCPUUsage)
	if systemDelta <= 0 {
		// Identical samples carry no usable signal.
		return 0, nil
	}

	cpuCount := cur.OnlineCPUs
	if cpuCount == 0 {
		cpuCount = len(cur.CPUUsage.PercpuUsage)
	}
	if cpuCount == 0 {
		return 0, &ShapeError{Field: "cpu_stats.cpu_usage.percpu_usage"}
	}

	pct := (cpuDelta / systemDelta) * float64(cpuCount) * 100.0
	return math.Round(pct*100) / 100, nil
}

// memoryUsed computes usage minus the inactive file cache, handling both
// cgroup generations.
func memoryUsed(stats ContainerStats) (int64, error) {
	mem := stats.MemoryStats
	if mem.Usage == nil {
		return 0, &ShapeError{Field: "memory_stats.usage"}
	}
	if mem.Stats == nil {
		return 0, &ShapeError{Field: "memory_stats.stats"}
	}

	switch {
	case mem.Stats.InactiveFile != nil: // cgroup v2
		return int64(*mem.Usage) - int64(*mem.Stats.InactiveFile), nil
	case mem.Stats.TotalInactiveFile != nil: // cgroup v1
		return int64(*mem.Usage) - int64(*mem.Stats.TotalInactiveFile), nil
	default:
		return 0, &ShapeError{
			Field:  "memory_stats.stats",
			Reason: "unsupported cgroup layout: neither inactive_file nor total_inactive_file present",
		}
	}
}

// DeriveEngine extracts the engine snapshot from the /info and /volumes
// payloads.
func DeriveEngine(info SystemInfo, volumes VolumeList) (domain.EngineSnapshot, error) {
	switch {
	case info.Containers == nil:
		return domain.EngineSnapshot{}, &ShapeError{Field: "Containers"}
	case info.ContainersRunning == nil:
		return domain.EngineSnapshot{}, &ShapeError{Field: "ContainersRunning"}
	case info.ContainersPaused == nil:
		return domain.EngineSnapshot{}, &ShapeError{Field: "ContainersPaused"}
	case info.ContainersStopped == nil:
		return domain.EngineSnapshot{}, &ShapeError{Field: "ContainersStopped"}
	case info.Images == nil:
		return domain.EngineSnapshot{}, &ShapeError{Field: "Images"}
	case info.NCPU == nil:
		return domain.EngineSnapshot{}, &ShapeError{Field: "NCPU"}
	case info.MemTotal == nil:
		return domain.EngineSnapshot{}, &ShapeError{Field: "MemTotal"}
	case info.Name == nil:
		return domain.EngineSnapshot{}, &ShapeError{Field: "Name"}
	case info.ServerVersion == nil:
		return domain.EngineSnapshot{}, &ShapeError{Field: "ServerVersion"}
	case volumes.Volumes == nil:
		return domain.EngineSnapshot{}, &ShapeError{Field: "Volumes"}
	}

	return domain.EngineSnapshot{
		ContainersTotal:   *info.Containers,
		ContainersRunning: *info.ContainersRunning,
		ContainersPaused:  *info.ContainersPaused,
		ContainersStopped: *info.ContainersStopped,
		ImageCount:        *info.Images,
		VolumeCount:       len(*volumes.Volumes),
		CPUCount:          *info.NCPU,
		MemoryTotalBytes:  *info.MemTotal,
		Hostname:          *info.Name,
		ServerVersion:     *info.ServerVersion,
	}, nil
}
