package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dockcheck/dockcheck/internal/core/bytesize"
	"github.com/dockcheck/dockcheck/internal/core/check"
	"github.com/dockcheck/dockcheck/internal/core/domain"
	"github.com/dockcheck/dockcheck/internal/core/severity"
	"github.com/dockcheck/dockcheck/internal/shell/docker"
)

type containerOptions struct {
	name     string
	socket   string
	timeout  time.Duration
	wildcard bool

	cpuWarn float64
	cpuCrit float64
	memWarn string
	memCrit string
	pidWarn int64
	pidCrit int64
}

func newContainerCommand(exitCode *int, out io.Writer) *cobra.Command {
	var opts containerOptions

	cmd := &cobra.Command{
		Use:   "container",
		Short: "Check a single container's state and resource usage",
		Long:  "Checks that the named container is running and healthy, and compares its CPU, memory and PID usage against the given thresholds.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runContainerCheck(cmd, &opts, exitCode, out)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.name, "container", "c", "", "Name of the container to check")
	flags.StringVarP(&opts.socket, "socket", "s", "", "Path to the runtime socket file")
	flags.DurationVarP(&opts.timeout, "timeout", "t", 0, "Overall timeout for the check")
	flags.BoolVar(&opts.wildcard, "wildcard", false, "Treat --container as a server-side pattern instead of an exact name")
	flags.Float64Var(&opts.cpuWarn, "cpuwarn", 0, "Warning threshold for CPU usage in percent")
	flags.Float64Var(&opts.cpuCrit, "cpucrit", 0, "Critical threshold for CPU usage in percent")
	flags.StringVar(&opts.memWarn, "memwarn", "", "Warning threshold for memory usage (bytes or a size like 512MiB)")
	flags.StringVar(&opts.memCrit, "memcrit", "", "Critical threshold for memory usage (bytes or a size like 1GiB)")
	flags.Int64Var(&opts.pidWarn, "pidwarn", 0, "Warning threshold for the number of processes")
	flags.Int64Var(&opts.pidCrit, "pidcrit", 0, "Critical threshold for the number of processes")
	cobra.CheckErr(cmd.MarkFlagRequired("container"))

	return cmd
}

func runContainerCheck(cmd *cobra.Command, opts *containerOptions, exitCode *int, out io.Writer) error {
	cfg, err := LoadConfig(configPath(cmd))
	if err != nil {
		return err
	}
	logger := SetupLogger(cfg, false)

	thresholds, err := containerThresholds(cmd.Flags(), opts)
	if err != nil {
		return err
	}

	socket, timeout := checkTarget(cmd.Flags(), cfg, opts.socket, opts.timeout)
	client := docker.NewClient(docker.NewTransport(socket, timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	sev, line := executeContainerCheck(ctx, client, opts.name, opts.wildcard, thresholds, logger)
	*exitCode = printResult(out, sev, line)
	return nil
}

// executeContainerCheck runs the container check pipeline and always returns
// a printable result, mapping each failure mode to its severity.
func executeContainerCheck(ctx context.Context, client *docker.Client, name string, wildcard bool, thresholds check.ContainerThresholds, logger *slog.Logger) (severity.Severity, string) {
	if _, err := client.CheckAPIVersion(ctx); err != nil {
		return containerFailure(err)
	}

	summary, err := client.FindContainer(ctx, name, wildcard)
	if err != nil {
		return containerFailure(err)
	}

	// A container that is not running has no stats worth fetching.
	if summary.State != domain.StateRunning {
		return severity.Critical, fmt.Sprintf("Container %s is %s", displayName(summary), summary.Status)
	}

	stats, err := client.ContainerStats(ctx, summary.ID)
	if err != nil {
		return containerFailure(err)
	}

	snap, err := docker.DeriveContainer(summary, stats)
	if err != nil {
		return containerFailure(err)
	}

	logger.Debug("container snapshot derived",
		"container", snap.Name,
		"cpu_percent", snap.CPUPercent,
		"memory_used", snap.MemoryUsedBytes,
		"pids", snap.PIDCount)

	sev := check.EvaluateContainer(snap, thresholds)
	return sev, containerStatusLine(snap) + containerPerfdata(snap, thresholds)
}

func containerFailure(err error) (severity.Severity, string) {
	return failureSeverity(err, false), err.Error()
}

func displayName(summary docker.ContainerSummary) string {
	if len(summary.Names) == 0 {
		return summary.ID
	}
	return strings.TrimPrefix(summary.Names[0], "/")
}

// containerThresholds builds the threshold set from explicitly-set flags.
// Unset flags leave their threshold nil so the evaluator skips them.
func containerThresholds(flags *pflag.FlagSet, opts *containerOptions) (check.ContainerThresholds, error) {
	var t check.ContainerThresholds

	if flags.Changed("cpuwarn") {
		t.CPUWarnPercent = &opts.cpuWarn
	}
	if flags.Changed("cpucrit") {
		t.CPUCritPercent = &opts.cpuCrit
	}
	if flags.Changed("pidwarn") {
		t.PIDWarn = &opts.pidWarn
	}
	if flags.Changed("pidcrit") {
		t.PIDCrit = &opts.pidCrit
	}

	if flags.Changed("memwarn") {
		n, err := parseMemThreshold(opts.memWarn)
		if err != nil {
			return t, fmt.Errorf("invalid --memwarn: %w", err)
		}
		t.MemWarnBytes = &n
	}
	if flags.Changed("memcrit") {
		n, err := parseMemThreshold(opts.memCrit)
		if err != nil {
			return t, fmt.Errorf("invalid --memcrit: %w", err)
		}
		t.MemCritBytes = &n
	}

	return t, nil
}

// parseMemThreshold accepts either a plain byte count or a size literal with
// an explicit unit, like "512MiB" or "2 GB".
func parseMemThreshold(s string) (int64, error) {
	if n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err == nil {
		return n, nil
	}
	return bytesize.ParseStrict(s)
}
