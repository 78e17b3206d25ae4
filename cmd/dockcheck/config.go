package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds the defaults shared by both subcommands. Command-line flags
// override whatever is configured here.
type Config struct {
	Check CheckConfig `mapstructure:"check"`
	Log   LogConfig   `mapstructure:"log"`
}

// CheckConfig holds check execution defaults.
type CheckConfig struct {
	// Socket is the path to the runtime's unix socket file.
	Socket string `mapstructure:"socket"`

	// Timeout bounds one whole check invocation.
	Timeout time.Duration `mapstructure:"timeout"`
}

// LogConfig holds logging configuration. The check result goes to stdout for
// the scheduler; logging is diagnostics only and goes to stderr.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads configuration from an optional file and the environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("check.socket", "/var/run/docker.sock")
	v.SetDefault("check.timeout", "10s")
	v.SetDefault("log.level", "warn")

	// Load from file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// Only return error if file was explicitly specified and is invalid
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			// File not found is OK, we'll use defaults
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("DOCKCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level. debug forces the
// debug level regardless of configuration.
func SetupLogger(cfg *Config, debug bool) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
