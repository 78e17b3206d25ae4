package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dockcheck/dockcheck/internal/core/severity"
	"github.com/dockcheck/dockcheck/internal/shell/docker"
)

// Version information (set by build flags)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run executes the requested check and returns its monitoring exit code.
// Every failure path still produces a single status line on out, so a
// scheduler always has something to display.
func run(args []string, out io.Writer) int {
	exitCode := severity.OK.ExitCode()

	root := newRootCommand(&exitCode, out)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(out, "%s - %v\n", severity.Unknown, err)
		return severity.Unknown.ExitCode()
	}

	return exitCode
}

func newRootCommand(exitCode *int, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "dockcheck",
		Short:         "Container runtime health checks over the local socket",
		Long:          "dockcheck talks to a Docker-compatible runtime through its unix socket and reports container and engine health in monitoring plugin format.",
		Version:       fmt.Sprintf("%s (built %s)", Version, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "Path to config file")

	root.AddCommand(newContainerCommand(exitCode, out))
	root.AddCommand(newEngineCommand(exitCode, out))

	return root
}

func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}

// checkTarget resolves the socket path and timeout, letting explicitly-set
// flags override the configured defaults. A unix:// prefix on the socket
// path is accepted and stripped.
func checkTarget(flags *pflag.FlagSet, cfg *Config, socketFlag string, timeoutFlag time.Duration) (string, time.Duration) {
	socket := cfg.Check.Socket
	if flags.Changed("socket") {
		socket = socketFlag
	}
	socket = strings.TrimPrefix(socket, "unix://")

	timeout := cfg.Check.Timeout
	if flags.Changed("timeout") {
		timeout = timeoutFlag
	}

	return socket, timeout
}

// failureSeverity maps a check failure to its monitoring severity. Daemon
// errors and lookup failures are definite problems; everything the check
// itself could not determine stays UNKNOWN. Malformed payloads count as
// definite for the container check but not for the engine check, where a
// partial /info answer says nothing about engine health.
func failureSeverity(err error, engineCheck bool) severity.Severity {
	var remoteErr *docker.RemoteError
	var shapeErr *docker.ShapeError

	switch {
	case errors.As(err, &remoteErr):
		return severity.Critical
	case errors.As(err, &shapeErr):
		if engineCheck {
			return severity.Unknown
		}
		return severity.Critical
	case errors.Is(err, docker.ErrNoContainerMatched),
		errors.Is(err, docker.ErrMultipleContainersMatched),
		errors.Is(err, docker.ErrAPIVersionUnsupported):
		return severity.Critical
	default:
		return severity.Unknown
	}
}
