// Package docker is a minimal client for the container runtime's management
// API over its local unix socket: one short-lived request/response exchange
// per call, no redirects, no persistent connections, no TLS.
package docker

// =============================================================================
// API Wire Types
// =============================================================================
//
// Hand-written rather than imported from an SDK: derivation has to tell a
// field that is absent apart from one that is legitimately zero, so every
// required leaf is a pointer.

// ContainerSummary is one element of the GET /containers/json response.
type ContainerSummary struct {
	ID     string   `json:"Id"`
	Names  []string `json:"Names"`
	Image  string   `json:"Image"`
	State  string   `json:"State"`
	Status string   `json:"Status"`
}

// SystemInfo is the GET /info response.
type SystemInfo struct {
	Containers        *int    `json:"Containers"`
	ContainersRunning *int    `json:"ContainersRunning"`
	ContainersPaused  *int    `json:"ContainersPaused"`
	ContainersStopped *int    `json:"ContainersStopped"`
	Images            *int    `json:"Images"`
	NCPU              *int    `json:"NCPU"`
	MemTotal          *int64  `json:"MemTotal"`
	Name              *string `json:"Name"`
	ServerVersion     *string `json:"ServerVersion"`
}

// VolumeList is the GET /volumes response.
type VolumeList struct {
	Volumes *[]Volume `json:"Volumes"`
}

// Volume is one entry of the volume list.
type Volume struct {
	Name   string `json:"Name"`
	Driver string `json:"Driver"`
}

// VersionInfo is the GET /version response.
type VersionInfo struct {
	Version       string `json:"Version"`
	APIVersion    string `json:"ApiVersion"`
	MinAPIVersion string `json:"MinAPIVersion"`
}

// ContainerStats is the GET /containers/{id}/stats response. For containers
// that are not running the daemon legitimately omits most of these subtrees.
type ContainerStats struct {
	PidsStats   *PidsStats              `json:"pids_stats"`
	CPUStats    *CPUStats               `json:"cpu_stats"`
	PreCPUStats *CPUStats               `json:"precpu_stats"`
	MemoryStats *MemoryStats            `json:"memory_stats"`
	Networks    map[string]NetworkStats `json:"networks"`
	BlkioStats  *BlkioStats             `json:"blkio_stats"`
}

// PidsStats holds process counters; both default to zero when the daemon
// omits them.
type PidsStats struct {
	Current int64 `json:"current"`
	Limit   int64 `json:"limit"`
}

// CPUStats is the shape shared by cpu_stats and precpu_stats.
type CPUStats struct {
	CPUUsage       *CPUUsage `json:"cpu_usage"`
	SystemCPUUsage *uint64   `json:"system_cpu_usage"`
	OnlineCPUs     int       `json:"online_cpus"`
}

// CPUUsage holds the per-sample CPU counters.
type CPUUsage struct {
	TotalUsage  *uint64  `json:"total_usage"`
	PercpuUsage []uint64 `json:"percpu_usage"`
}

// MemoryStats holds the cgroup memory counters. Stats carries the per-cgroup
// breakdown whose field names differ between cgroup generations.
type MemoryStats struct {
	Usage *uint64            `json:"usage"`
	Limit uint64             `json:"limit"`
	Stats *MemoryStatsDetail `json:"stats"`
}

// MemoryStatsDetail distinguishes the two cgroup generations: v2 reports
// inactive_file, v1 reports total_inactive_file.
type MemoryStatsDetail struct {
	InactiveFile      *uint64 `json:"inactive_file"`
	TotalInactiveFile *uint64 `json:"total_inactive_file"`
}

// NetworkStats holds per-interface byte counters.
type NetworkStats struct {
	RxBytes uint64 `json:"rx_bytes"`
	TxBytes uint64 `json:"tx_bytes"`
}

// BlkioStats holds the recursive per-operation block I/O list. The daemon
// reports null instead of an empty list for idle containers.
type BlkioStats struct {
	IoServiceBytesRecursive []BlkioEntry `json:"io_service_bytes_recursive"`
}

// BlkioEntry is one per-operation sample, bucketed by Op ("read"/"write").
type BlkioEntry struct {
	Op    string `json:"op"`
	Value uint64 `json:"value"`
}
