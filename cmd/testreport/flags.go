package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bgricker/testreport/internal/config"
)

func gatherFlags(cmd *cobra.Command) (config.FlagValues, error) {
	flags := cmd.Flags()
	var values config.FlagValues

	stringFlags := []struct {
		name   string
		target *config.StringFlag
	}{
		{"build-dir", &values.BuildDir},
		{"output-json", &values.OutputJSON},
		{"output-html", &values.OutputHTML},
		{"log-file", &values.LogFile},
		{"format", &values.Format},
	}
	for _, f := range stringFlags {
		if !flags.Changed(f.name) {
			continue
		}
		v, err := flags.GetString(f.name)
		if err != nil {
			return values, fmt.Errorf("parse --%s: %w", f.name, err)
		}
		*f.target = config.StringFlag{Value: v, Set: true}
	}

	boolFlags := []struct {
		name   string
		target *config.BoolFlag
	}{
		{"no-coverage", &values.NoCoverage},
		{"no-performance", &values.NoPerformance},
		{"strict", &values.Strict},
		{"verbose", &values.Verbose},
		{"quiet", &values.Quiet},
		{"no-color", &values.NoColor},
	}
	for _, f := range boolFlags {
		if !flags.Changed(f.name) {
			continue
		}
		v, err := flags.GetBool(f.name)
		if err != nil {
			return values, fmt.Errorf("parse --%s: %w", f.name, err)
		}
		*f.target = config.BoolFlag{Value: v, Set: true}
	}

	durationFlags := []struct {
		name   string
		target *config.DurationFlag
	}{
		{"test-timeout", &values.TestTimeout},
		{"bench-timeout", &values.BenchTimeout},
	}
	for _, f := range durationFlags {
		if !flags.Changed(f.name) {
			continue
		}
		v, err := flags.GetDuration(f.name)
		if err != nil {
			return values, fmt.Errorf("parse --%s: %w", f.name, err)
		}
		*f.target = config.DurationFlag{Value: v, Set: true}
	}

	if flags.Changed("only-test") {
		v, err := flags.GetStringArray("only-test")
		if err != nil {
			return values, fmt.Errorf("parse --only-test: %w", err)
		}
		values.OnlyTests = config.SliceFlag{Values: append([]string{}, v...)}
	}

	if flags.Changed("skip-test") {
		v, err := flags.GetStringArray("skip-test")
		if err != nil {
			return values, fmt.Errorf("parse --skip-test: %w", err)
		}
		values.SkipTests = config.SliceFlag{Values: append([]string{}, v...)}
	}

	return values, nil
}

// loadConfig merges defaults, the config file and explicitly set flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("parse --config: %w", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	flags, err := gatherFlags(cmd)
	if err != nil {
		return config.Config{}, err
	}
	config.ApplyFlags(&cfg, flags)

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
