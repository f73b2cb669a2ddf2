package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"jopa/internal/project"
)

// loadConfig reads jopa.toml (named by --config or discovered from the
// working directory) and applies every explicitly set flag over it.
func loadConfig(cmd *cobra.Command) (project.Config, error) {
	flags := cmd.Flags()
	path, err := flags.GetString("config")
	if err != nil {
		return project.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}

	var cfg project.Config
	if path != "" {
		cfg, err = project.Load(path)
	} else {
		var wd string
		wd, err = os.Getwd()
		if err != nil {
			return project.Config{}, fmt.Errorf("failed to get working directory: %w", err)
		}
		cfg, err = project.Discover(wd)
	}
	if err != nil {
		return project.Config{}, err
	}

	if err := applyFlagOverrides(flags, &cfg); err != nil {
		return project.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return project.Config{}, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func applyFlagOverrides(flags *pflag.FlagSet, cfg *project.Config) error {
	strs := []struct {
		name string
		dst  *string
	}{
		{"source", &cfg.Resolve.Source},
		{"cache", &cfg.Run.CacheDir},
		{"metrics-out", &cfg.Run.MetricsOut},
		{"color", &cfg.Output.Color},
		{"trace", &cfg.Trace.Output},
		{"trace-level", &cfg.Trace.Level},
		{"trace-format", &cfg.Trace.Format},
	}
	for _, s := range strs {
		if flags.Lookup(s.name) == nil || !flags.Changed(s.name) {
			continue
		}
		v, err := flags.GetString(s.name)
		if err != nil {
			return fmt.Errorf("failed to get %s flag: %w", s.name, err)
		}
		*s.dst = v
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"deprecation", &cfg.Resolve.Deprecation},
		{"pedantic", &cfg.Resolve.Pedantic},
	}
	for _, b := range bools {
		if flags.Lookup(b.name) == nil || !flags.Changed(b.name) {
			continue
		}
		v, err := flags.GetBool(b.name)
		if err != nil {
			return fmt.Errorf("failed to get %s flag: %w", b.name, err)
		}
		*b.dst = v
	}

	if flags.Lookup("jobs") != nil && flags.Changed("jobs") {
		jobs, err := flags.GetInt("jobs")
		if err != nil {
			return fmt.Errorf("failed to get jobs flag: %w", err)
		}
		cfg.Run.Jobs = jobs
	}
	if flags.Lookup("format") != nil && flags.Changed("format") {
		format, err := flags.GetString("format")
		if err != nil {
			return fmt.Errorf("failed to get format flag: %w", err)
		}
		cfg.Output.Format = format
	}

	if flags.Lookup("no-cache") != nil {
		noCache, err := flags.GetBool("no-cache")
		if err != nil {
			return fmt.Errorf("failed to get no-cache flag: %w", err)
		}
		if noCache {
			cfg.Run.CacheDir = ""
		}
	}
	return nil
}
