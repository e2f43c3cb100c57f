package config

import (
	"fmt"
	"regexp"
	"strings"
)

// envNameRe matches a portable environment variable name.
var envNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks structural invariants of a loaded Config.
func Validate(cfg *Config) error {
	var errs []string

	if strings.TrimSpace(cfg.Docker.Binary) == "" {
		errs = append(errs, "docker.binary: must not be empty")
	}

	if cfg.Build.ArgPrefix == "" {
		errs = append(errs, "build.arg_prefix: must not be empty")
	} else if !envNameRe.MatchString(cfg.Build.ArgPrefix) {
		errs = append(errs, fmt.Sprintf("build.arg_prefix: %q is not a valid environment variable prefix", cfg.Build.ArgPrefix))
	}

	if len(cfg.Cache.Variables) > MaxCacheVariables {
		errs = append(errs, fmt.Sprintf("cache.variables: at most %d variables, got %d", MaxCacheVariables, len(cfg.Cache.Variables)))
	}
	for i, v := range cfg.Cache.Variables {
		if !envNameRe.MatchString(v) {
			errs = append(errs, fmt.Sprintf("cache.variables[%d]: %q is not a valid environment variable name", i, v))
		}
	}
	if cfg.Cache.Concurrency < 1 {
		errs = append(errs, fmt.Sprintf("cache.concurrency: must be at least 1, got %d", cfg.Cache.Concurrency))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
