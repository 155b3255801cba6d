package main

import (
	"fmt"

	"github.com/alnah/go-doctoolkit/internal/config"
	"github.com/alnah/go-doctoolkit/internal/yamlutil"
)

// loadConfig resolves the effective configuration for a command.
// The file comes from --config, then DOCTOOLKIT_CONFIG, then the standard
// locations; without one the defaults apply. Environment overrides follow,
// then serve flags when given, and the result is validated once.
func loadConfig(common *commonFlags, serve *serveFlags, env *Environment) (*config.Config, error) {
	warnUnknownEnvVars(env.Stderr, env.Environ())

	envCfg, err := loadEnvConfig(env.Getenv)
	if err != nil {
		return nil, err
	}

	path := common.config
	if path == "" {
		path = envCfg.ConfigPath
	}
	if path == "" {
		path = config.FindConfig()
	}

	cfg := config.DefaultConfig()
	if path != "" {
		if cfg, err = config.LoadConfig(path); err != nil {
			return nil, err
		}
	}

	applyEnvConfig(envCfg, cfg)
	if serve != nil {
		mergeFlags(serve, cfg)
	}
	if common.verbose {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFlags applies explicitly set serve flags over cfg.
func mergeFlags(f *serveFlags, cfg *config.Config) {
	if f.addr != "" {
		cfg.Server.Addr = f.addr
	}
	if f.workers > 0 {
		cfg.Workers = f.workers
	}
	if f.scratch != "" {
		cfg.Scratch.Root = f.scratch
	}
	if f.renderer != "" {
		cfg.Renderer.Binary = f.renderer
	}
}

// runConfigCmd prints the effective configuration as YAML.
func runConfigCmd(args []string, env *Environment) error {
	common, err := parseCommonFlags("config", args, env.Stderr, nil)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(common, nil, env)
	if err != nil {
		return err
	}
	if err := yamlutil.Encode(env.Stdout, cfg); err != nil {
		return fmt.Errorf("printing config: %w", err)
	}
	return nil
}
