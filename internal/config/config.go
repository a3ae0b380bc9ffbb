// Package config assembles run settings from every configuration layer.
//
// Precedence, highest first: CLI flags (applied by the caller), environment
// variables, the .env file, the TOML config file, built-in defaults.
package config

import (
	"fmt"

	"github.com/custodia-labs/fragmenter/internal/adapters/driven/config/env"
	"github.com/custodia-labs/fragmenter/internal/adapters/driven/config/file"
	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
	"github.com/custodia-labs/fragmenter/internal/core/services"
	"github.com/custodia-labs/fragmenter/internal/logger"
)

// Options locates the configuration sources.
type Options struct {
	// ConfigPath is the TOML file. Empty means ~/.fragmenter/config.toml.
	ConfigPath string

	// EnvFile is an explicit dotenv file. Empty searches WorkDir and its parents.
	EnvFile string

	// WorkDir is where the .env search starts. Empty means the working directory.
	WorkDir string

	// Validator pings providers for the settings service. May be nil.
	Validator driven.AIConfigValidator
}

// Config is the loaded configuration.
type Config struct {
	Settings domain.Settings
	Store    *file.ConfigStore
	Service  *services.SettingsService

	// EnvFile is the dotenv file that was loaded, or "".
	EnvFile string
}

// Load reads every layer and returns the merged settings.
func Load(opts Options) (*Config, error) {
	store, err := file.NewConfigStore(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	svc := services.NewSettingsService(store, opts.Validator)

	settings, err := svc.Get()
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	envFile, err := env.LoadFile(opts.EnvFile, opts.WorkDir)
	if err != nil {
		return nil, err
	}
	if envFile != "" {
		logger.Debug("Loaded environment from %s", envFile)
	}

	vars, err := env.Read()
	if err != nil {
		return nil, err
	}
	vars.Apply(settings)

	return &Config{
		Settings: *settings,
		Store:    store,
		Service:  svc,
		EnvFile:  envFile,
	}, nil
}
