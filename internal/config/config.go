package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-doctoolkit/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrInvalidConfig  = errors.New("invalid config")
)

// Log formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Limits.
const (
	MaxWorkers        = 64
	MaxRenderers      = 16
	MaxBrowserPool    = 8
	MaxImageDPI       = 600
	MinUploadBytes    = 1 << 10
	MaxAllowedOrigins = 64
)

// Duration is a time.Duration written as a Go duration string ("90s", "1h").
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", b, err)
	}
	*d = Duration(v)
	return nil
}

// D returns d as a time.Duration.
func (d Duration) D() time.Duration { return time.Duration(d) }

// Config holds all configuration for the conversion service.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Scratch  ScratchConfig  `yaml:"scratch"`
	Renderer RendererConfig `yaml:"renderer"`
	Chrome   ChromeConfig   `yaml:"chrome"`
	Workers  int            `yaml:"workers"` // 0 = derived from GOMAXPROCS
	Images   ImagesConfig   `yaml:"images"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig defines the HTTP listener.
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
	MaxUploadBytes  int64    `yaml:"max_upload_bytes"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
}

// ScratchConfig defines the transient storage area.
type ScratchConfig struct {
	Root          string   `yaml:"root"` // Empty = <os.TempDir()>/doctoolkit
	Retention     Duration `yaml:"retention"`
	SweepInterval Duration `yaml:"sweep_interval"`
}

// RendererConfig defines the LibreOffice renderer.
type RendererConfig struct {
	Binary      string   `yaml:"binary"` // Empty = discover
	Timeout     Duration `yaml:"timeout"`
	Concurrency int      `yaml:"concurrency"`
}

// ChromeConfig defines the headless browser used for HTML and Markdown.
type ChromeConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Binary   string   `yaml:"binary"` // Empty = ROD_BROWSER_BIN or rod's lookup
	PoolSize int      `yaml:"pool_size"`
	Timeout  Duration `yaml:"timeout"`
}

// ImagesConfig defines rasterization and encoding settings.
type ImagesConfig struct {
	DPI         float64 `yaml:"dpi"`
	JPEGQuality int     `yaml:"jpeg_quality"`
}

// LogConfig defines logger output.
type LogConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8000",
			ReadTimeout:     Duration(60 * time.Second),
			WriteTimeout:    Duration(10 * time.Minute),
			ShutdownTimeout: Duration(15 * time.Second),
			MaxUploadBytes:  100 << 20,
			AllowedOrigins:  []string{"*"},
		},
		Scratch: ScratchConfig{
			Retention:     Duration(time.Hour),
			SweepInterval: Duration(10 * time.Minute),
		},
		Renderer: RendererConfig{
			Timeout:     Duration(120 * time.Second),
			Concurrency: 1,
		},
		Chrome: ChromeConfig{
			Enabled:  true,
			PoolSize: 1,
			Timeout:  Duration(60 * time.Second),
		},
		Images: ImagesConfig{DPI: 150, JPEGQuality: 90},
		Log:    LogConfig{Level: "info", Format: LogFormatConsole},
	}
}

// Validate checks ranges. Called automatically by LoadConfig, and again by
// the CLI after environment and flag overrides.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	check(strings.TrimSpace(c.Server.Addr) != "", "server.addr: must not be empty")
	check(c.Server.ReadTimeout > 0, "server.read_timeout: must be positive")
	check(c.Server.WriteTimeout > 0, "server.write_timeout: must be positive")
	check(c.Server.ShutdownTimeout > 0, "server.shutdown_timeout: must be positive")
	check(c.Server.MaxUploadBytes >= MinUploadBytes, "server.max_upload_bytes: must be at least %d, got %d", MinUploadBytes, c.Server.MaxUploadBytes)
	check(len(c.Server.AllowedOrigins) <= MaxAllowedOrigins, "server.allowed_origins: at most %d entries", MaxAllowedOrigins)

	check(c.Scratch.Retention > 0, "scratch.retention: must be positive")
	check(c.Scratch.SweepInterval > 0, "scratch.sweep_interval: must be positive")
	// Files must outlive the longest render and the response that sends them.
	check(c.Scratch.Retention > c.Renderer.Timeout,
		"scratch.retention: must exceed renderer.timeout (%s), got %s", c.Renderer.Timeout.D(), c.Scratch.Retention.D())
	check(c.Scratch.Retention > c.Server.WriteTimeout,
		"scratch.retention: must exceed server.write_timeout (%s), got %s", c.Server.WriteTimeout.D(), c.Scratch.Retention.D())

	check(c.Renderer.Timeout > 0, "renderer.timeout: must be positive")
	check(c.Renderer.Concurrency >= 1 && c.Renderer.Concurrency <= MaxRenderers,
		"renderer.concurrency: must be between 1 and %d, got %d", MaxRenderers, c.Renderer.Concurrency)

	if c.Chrome.Enabled {
		check(c.Chrome.PoolSize >= 1 && c.Chrome.PoolSize <= MaxBrowserPool,
			"chrome.pool_size: must be between 1 and %d, got %d", MaxBrowserPool, c.Chrome.PoolSize)
		check(c.Chrome.Timeout > 0, "chrome.timeout: must be positive")
	}

	check(c.Workers >= 0 && c.Workers <= MaxWorkers, "workers: must be between 0 and %d, got %d", MaxWorkers, c.Workers)
	check(c.Images.DPI > 0 && c.Images.DPI <= MaxImageDPI, "images.dpi: must be in (0, %d], got %g", MaxImageDPI, c.Images.DPI)
	check(c.Images.JPEGQuality >= 1 && c.Images.JPEGQuality <= 100, "images.jpeg_quality: must be between 1 and 100, got %d", c.Images.JPEGQuality)

	switch strings.ToLower(c.Log.Format) {
	case LogFormatConsole, LogFormatJSON:
	default:
		check(false, "log.format: invalid value %q (must be console or json)", c.Log.Format)
	}
	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		check(false, "log.level: invalid value %q", c.Log.Level)
	}

	return errors.Join(errs...)
}

// LoadConfig reads the YAML file at path over DefaultConfig.
// Keys missing from the file keep their defaults; unknown keys are rejected.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", ErrConfigNotFound)
	}

	cfg := DefaultConfig()
	if err := yamlutil.DecodeFile(path, cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FindConfig returns the first existing config file among the standard
// locations: ./doctoolkit.yaml, ./doctoolkit.yml, then the same names under
// the user config directory. It returns "" when none exists.
func FindConfig() string {
	candidates := []string{"doctoolkit.yaml", "doctoolkit.yml"}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(dir, "doctoolkit", "config.yaml"),
			filepath.Join(dir, "doctoolkit", "config.yml"))
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}
