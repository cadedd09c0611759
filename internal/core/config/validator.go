package config

import (
	"fmt"
	"strings"

	"vuescope/internal/core/errors"

	"github.com/gobwas/glob"
)

// Validate checks a fully defaulted config.
func Validate(cfg *Config) error {
	checks := []func(*Config) error{
		validateVersion,
		validateResolution,
		validateScan,
		validateWatch,
	}
	for _, check := range checks {
		if err := check(cfg); err != nil {
			return errors.Wrap(err, errors.CodeValidationError, "invalid config")
		}
	}
	return nil
}

func validateVersion(cfg *Config) error {
	if cfg.Version < 1 {
		return fmt.Errorf("version must be >= 1, got %d", cfg.Version)
	}
	if cfg.Version > 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateResolution(cfg *Config) error {
	if strings.ContainsAny(cfg.Resolution.DefaultExtension, `/\`) {
		return fmt.Errorf("resolution.default_extension must be a bare extension, got %q", cfg.Resolution.DefaultExtension)
	}
	if strings.HasPrefix(cfg.Resolution.AliasPrefix, ".") {
		return fmt.Errorf("resolution.alias_prefix must not start with '.', got %q", cfg.Resolution.AliasPrefix)
	}
	for i, name := range cfg.Resolution.AsyncFactories {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("resolution.async_factories[%d] must not be empty", i)
		}
	}
	return nil
}

func validateScan(cfg *Config) error {
	patterns := map[string][]string{
		"scan.include":       cfg.Scan.Include,
		"scan.exclude_dirs":  cfg.Scan.ExcludeDirs,
		"scan.exclude_files": cfg.Scan.ExcludeFiles,
	}
	for field, list := range patterns {
		for i, pattern := range list {
			if _, err := glob.Compile(pattern, '/'); err != nil {
				return fmt.Errorf("%s[%d] is not a valid glob %q: %w", field, i, pattern, err)
			}
		}
	}
	if cfg.Scan.RateLimit < 0 {
		return fmt.Errorf("scan.rate_limit must be >= 0, got %v", cfg.Scan.RateLimit)
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must be >= 0, got %s", cfg.Watch.Debounce)
	}
	return nil
}
