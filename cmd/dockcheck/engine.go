package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dockcheck/dockcheck/internal/core/check"
	"github.com/dockcheck/dockcheck/internal/core/severity"
	"github.com/dockcheck/dockcheck/internal/shell/docker"
)

type engineOptions struct {
	socket  string
	timeout time.Duration
	debug   bool

	minRunning int
	maxPaused  int
	maxStopped int
	maxImages  int
	maxVolumes int
}

func newEngineCommand(exitCode *int, out io.Writer) *cobra.Command {
	var opts engineOptions

	cmd := &cobra.Command{
		Use:   "engine",
		Short: "Check engine-wide container, image and volume counts",
		Long:  "Fetches the engine's system information and compares container, image and volume counts against the given thresholds.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEngineCheck(cmd, &opts, exitCode, out)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.socket, "socket", "s", "", "Path to the runtime socket file")
	flags.DurationVarP(&opts.timeout, "timeout", "t", 0, "Overall timeout for the check")
	flags.BoolVar(&opts.debug, "debug", false, "Log the derived engine state to stderr")
	flags.IntVar(&opts.minRunning, "minrunning", 0, "Warn when fewer containers are running")
	flags.IntVar(&opts.maxPaused, "maxpaused", 0, "Warn when more containers are paused")
	flags.IntVar(&opts.maxStopped, "maxstopped", 0, "Warn when more containers are stopped")
	flags.IntVar(&opts.maxImages, "maximages", 0, "Warn when more images are present")
	flags.IntVar(&opts.maxVolumes, "maxvolumes", 0, "Warn when more volumes are present")

	return cmd
}

func runEngineCheck(cmd *cobra.Command, opts *engineOptions, exitCode *int, out io.Writer) error {
	cfg, err := LoadConfig(configPath(cmd))
	if err != nil {
		return err
	}
	logger := SetupLogger(cfg, opts.debug)

	thresholds := engineThresholds(cmd.Flags(), opts)

	socket, timeout := checkTarget(cmd.Flags(), cfg, opts.socket, opts.timeout)
	client := docker.NewClient(docker.NewTransport(socket, timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	sev, line := executeEngineCheck(ctx, client, thresholds, logger)
	*exitCode = printResult(out, sev, line)
	return nil
}

// executeEngineCheck fetches and evaluates the engine state. The engine
// endpoints are unversioned, so no API version gate applies here; a daemon
// too new for the pinned container API still answers /info and /volumes.
func executeEngineCheck(ctx context.Context, client *docker.Client, thresholds check.EngineThresholds, logger *slog.Logger) (severity.Severity, string) {
	info, volumes, err := client.EngineState(ctx)
	if err != nil {
		return engineFailure(err)
	}

	snap, err := docker.DeriveEngine(info, volumes)
	if err != nil {
		return engineFailure(err)
	}

	logger.Debug("engine state derived",
		"host", snap.Hostname,
		"server_version", snap.ServerVersion,
		"containers", snap.ContainersTotal,
		"running", snap.ContainersRunning,
		"paused", snap.ContainersPaused,
		"stopped", snap.ContainersStopped,
		"images", snap.ImageCount,
		"volumes", snap.VolumeCount)

	sev := check.EvaluateEngine(snap, thresholds)
	return sev, engineStatusLine(snap) + " | " + enginePerfdata(snap, thresholds)
}

func engineFailure(err error) (severity.Severity, string) {
	return failureSeverity(err, true), err.Error()
}

func engineThresholds(flags *pflag.FlagSet, opts *engineOptions) check.EngineThresholds {
	var t check.EngineThresholds

	if flags.Changed("minrunning") {
		t.MinRunning = &opts.minRunning
	}
	if flags.Changed("maxpaused") {
		t.MaxPaused = &opts.maxPaused
	}
	if flags.Changed("maxstopped") {
		t.MaxStopped = &opts.maxStopped
	}
	if flags.Changed("maximages") {
		t.MaxImages = &opts.maxImages
	}
	if flags.Changed("maxvolumes") {
		t.MaxVolumes = &opts.maxVolumes
	}

	return t
}
