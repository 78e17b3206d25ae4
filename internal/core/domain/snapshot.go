// Package domain contains the core domain types for dockcheck.
package domain

import "strings"

// =============================================================================
// Container State
// =============================================================================

// Container states as reported by the runtime API.
const (
	StateRunning = "running"
	StatePaused  = "paused"
	StateExited  = "exited"
)

// ContainerSnapshot holds the normalized metrics of a single container,
// derived fresh on every invocation and never persisted.
type ContainerSnapshot struct {
	Name   string
	ID     string // truncated to 12 characters
	IDLong string
	State  string // running, paused, exited, ...
	Status string // human-readable status text, e.g. "Up 3 hours (healthy)"

	PIDCount int64
	PIDLimit int64

	CPUPercent float64

	MemoryUsedBytes  int64
	MemoryLimitBytes int64

	NetRxBytes int64
	NetTxBytes int64

	BlockReadBytes  int64
	BlockWriteBytes int64
}

// Unhealthy reports whether the status text carries the runtime's unhealthy
// health-check marker.
func (c ContainerSnapshot) Unhealthy() bool {
	return strings.Contains(c.Status, "(unhealthy)")
}

// EngineSnapshot holds engine-wide counters derived from the system info and
// volume list endpoints. Same lifecycle as ContainerSnapshot.
type EngineSnapshot struct {
	ContainersTotal   int
	ContainersRunning int
	ContainersPaused  int
	ContainersStopped int

	ImageCount  int
	VolumeCount int

	CPUCount         int
	MemoryTotalBytes int64

	Hostname      string
	ServerVersion string
}
