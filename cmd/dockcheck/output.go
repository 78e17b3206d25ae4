package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dockcheck/dockcheck/internal/core/bytesize"
	"github.com/dockcheck/dockcheck/internal/core/check"
	"github.com/dockcheck/dockcheck/internal/core/domain"
	"github.com/dockcheck/dockcheck/internal/core/severity"
)

// printResult writes the single status line a monitoring scheduler expects
// and returns the matching exit code.
func printResult(out io.Writer, sev severity.Severity, line string) int {
	fmt.Fprintf(out, "%s - %s\n", sev, line)
	return sev.ExitCode()
}

// =============================================================================
// Container Output
// =============================================================================

func containerStatusLine(snap domain.ContainerSnapshot) string {
	return fmt.Sprintf("%s (%s) is %s - CPU: %s%%, Memory: %s, PIDs: %d",
		snap.Name, snap.ID, snap.Status,
		formatPercent(snap.CPUPercent),
		bytesize.Format(snap.MemoryUsedBytes),
		snap.PIDCount)
}

// containerPerfdata carries its own " | " separator and trailing space;
// renaming a label or dropping the trailing space breaks the time series
// downstream collectors have recorded under these exact names.
func containerPerfdata(snap domain.ContainerSnapshot, t check.ContainerThresholds) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, " | cpu=%s%%;%s;%s;; ",
		formatPercent(snap.CPUPercent), optFloat(t.CPUWarnPercent), optFloat(t.CPUCritPercent))
	fmt.Fprintf(&sb, "pids=%d;%s;%s;0;%d ",
		snap.PIDCount, optInt64(t.PIDWarn), optInt64(t.PIDCrit), snap.PIDLimit)
	fmt.Fprintf(&sb, "mem=%dB;%s;%s;0;%d ",
		snap.MemoryUsedBytes, optInt64(t.MemWarnBytes), optInt64(t.MemCritBytes), snap.MemoryLimitBytes)
	fmt.Fprintf(&sb, "net_send=%dB;;;; ", snap.NetTxBytes)
	fmt.Fprintf(&sb, "net_recv=%dB;;;; ", snap.NetRxBytes)
	fmt.Fprintf(&sb, "disk_read=%dB;;;; ", snap.BlockReadBytes)
	fmt.Fprintf(&sb, "disk_write=%dB;;;; ", snap.BlockWriteBytes)
	return sb.String()
}

// =============================================================================
// Engine Output
// =============================================================================

func engineStatusLine(snap domain.EngineSnapshot) string {
	return fmt.Sprintf("Containers: %d (Running: %d, Paused: %d, Stopped: %d), Images: %d, Volumes: %d, Docker version %s running with %d CPUs and %s memory",
		snap.ContainersTotal, snap.ContainersRunning, snap.ContainersPaused, snap.ContainersStopped,
		snap.ImageCount, snap.VolumeCount,
		snap.ServerVersion, snap.CPUCount, bytesize.Format(snap.MemoryTotalBytes))
}

// The running counter's warn slot stays empty: the minrunning threshold
// drives the check result but was never published in perfdata.
func enginePerfdata(snap domain.EngineSnapshot, t check.EngineThresholds) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "'containers_running'=%d;;;0;%d",
		snap.ContainersRunning, snap.ContainersTotal)
	fmt.Fprintf(&sb, " 'containers_paused'=%d;%s;;0;%d",
		snap.ContainersPaused, optInt(t.MaxPaused), snap.ContainersTotal)
	fmt.Fprintf(&sb, " 'containers_stopped'=%d;%s;;0;%d",
		snap.ContainersStopped, optInt(t.MaxStopped), snap.ContainersTotal)
	fmt.Fprintf(&sb, " 'images'=%d;%s;;0;", snap.ImageCount, optInt(t.MaxImages))
	fmt.Fprintf(&sb, " 'volumes'=%d;%s;;0;", snap.VolumeCount, optInt(t.MaxVolumes))
	return sb.String()
}

// =============================================================================
// Formatting Helpers
// =============================================================================

// formatPercent renders a CPU percentage without trailing zeros but always
// with at least one decimal place, so 0 reads as "0.0" and 40.25 as "40.25".
func formatPercent(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Threshold slots in perfdata stay empty when no threshold was given.

func optFloat(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func optInt64(p *int64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatInt(*p, 10)
}

func optInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}
