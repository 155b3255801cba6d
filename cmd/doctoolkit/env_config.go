package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-doctoolkit/internal/config"
)

const envPrefix = "DOCTOOLKIT_"

// envConfig holds configuration from environment variables.
// Provides container-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath          string        // DOCTOOLKIT_CONFIG
	Addr                string        // DOCTOOLKIT_ADDR
	ScratchRoot         string        // DOCTOOLKIT_SCRATCH_ROOT
	Retention           time.Duration // DOCTOOLKIT_RETENTION
	RendererBin         string        // DOCTOOLKIT_RENDERER_BIN
	RendererTimeout     time.Duration // DOCTOOLKIT_RENDERER_TIMEOUT
	RendererConcurrency int           // DOCTOOLKIT_RENDERER_CONCURRENCY
	ChromeBin           string        // DOCTOOLKIT_CHROME_BIN
	Workers             int           // DOCTOOLKIT_WORKERS
	LogLevel            string        // DOCTOOLKIT_LOG_LEVEL
	LogFormat           string        // DOCTOOLKIT_LOG_FORMAT
}

// knownEnvVars lists valid DOCTOOLKIT_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"DOCTOOLKIT_CONFIG":               true,
	"DOCTOOLKIT_ADDR":                 true,
	"DOCTOOLKIT_SCRATCH_ROOT":         true,
	"DOCTOOLKIT_RETENTION":            true,
	"DOCTOOLKIT_RENDERER_BIN":         true,
	"DOCTOOLKIT_RENDERER_TIMEOUT":     true,
	"DOCTOOLKIT_RENDERER_CONCURRENCY": true,
	"DOCTOOLKIT_CHROME_BIN":           true,
	"DOCTOOLKIT_WORKERS":              true,
	"DOCTOOLKIT_LOG_LEVEL":            true,
	"DOCTOOLKIT_LOG_FORMAT":           true,
}

// loadEnvConfig reads DOCTOOLKIT_* variables. Unlike the string values,
// malformed numbers and durations are errors rather than silently ignored.
func loadEnvConfig(getenv func(string) string) (*envConfig, error) {
	cfg := &envConfig{
		ConfigPath:  getenv("DOCTOOLKIT_CONFIG"),
		Addr:        getenv("DOCTOOLKIT_ADDR"),
		ScratchRoot: getenv("DOCTOOLKIT_SCRATCH_ROOT"),
		RendererBin: getenv("DOCTOOLKIT_RENDERER_BIN"),
		ChromeBin:   getenv("DOCTOOLKIT_CHROME_BIN"),
		LogLevel:    getenv("DOCTOOLKIT_LOG_LEVEL"),
		LogFormat:   getenv("DOCTOOLKIT_LOG_FORMAT"),
	}

	var err error
	if cfg.Retention, err = envDuration(getenv, "DOCTOOLKIT_RETENTION"); err != nil {
		return nil, err
	}
	if cfg.RendererTimeout, err = envDuration(getenv, "DOCTOOLKIT_RENDERER_TIMEOUT"); err != nil {
		return nil, err
	}
	if cfg.RendererConcurrency, err = envInt(getenv, "DOCTOOLKIT_RENDERER_CONCURRENCY"); err != nil {
		return nil, err
	}
	if cfg.Workers, err = envInt(getenv, "DOCTOOLKIT_WORKERS"); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envDuration(getenv func(string) string, name string) (time.Duration, error) {
	v := getenv(name)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: %s: invalid duration %q", config.ErrInvalidConfig, name, v)
	}
	return d, nil
}

func envInt(getenv func(string) string, name string) (int, error) {
	v := getenv(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s: must be a positive integer, got %q", config.ErrInvalidConfig, name, v)
	}
	return n, nil
}

// warnUnknownEnvVars logs warnings for unrecognized DOCTOOLKIT_* variables.
// Helps catch typos like DOCTOOLKIT_WORKER instead of DOCTOOLKIT_WORKERS.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, kv := range environ {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, envPrefix) && !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig overrides config values with every variable that is set.
// Precedence: flags > env > config file > defaults; flags are applied later.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Addr != "" {
		cfg.Server.Addr = env.Addr
	}
	if env.ScratchRoot != "" {
		cfg.Scratch.Root = env.ScratchRoot
	}
	if env.Retention > 0 {
		cfg.Scratch.Retention = config.Duration(env.Retention)
	}
	if env.RendererBin != "" {
		cfg.Renderer.Binary = env.RendererBin
	}
	if env.RendererTimeout > 0 {
		cfg.Renderer.Timeout = config.Duration(env.RendererTimeout)
	}
	if env.RendererConcurrency > 0 {
		cfg.Renderer.Concurrency = env.RendererConcurrency
	}
	if env.ChromeBin != "" {
		cfg.Chrome.Binary = env.ChromeBin
	}
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}
	if env.LogLevel != "" {
		cfg.Log.Level = strings.ToLower(env.LogLevel)
	}
	if env.LogFormat != "" {
		cfg.Log.Format = strings.ToLower(env.LogFormat)
	}
}
