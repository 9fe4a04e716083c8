package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid marks configuration that cannot be run.
var ErrInvalid = errors.New("invalid configuration")

// FileName is the configuration file looked up in the working directory.
const FileName = ".testreport.yml"

const (
	// FormatPretty renders human readable output.
	FormatPretty = "pretty"
	// FormatJSON renders machine readable output.
	FormatJSON = "json"
)

// Config is built once at startup and passed to every component.
type Config struct {
	BuildDir   string `yaml:"build_dir"`
	OutputJSON string `yaml:"output_json"`
	OutputHTML string `yaml:"output_html"`

	NoCoverage    bool `yaml:"no_coverage"`
	NoPerformance bool `yaml:"no_performance"`

	TestTimeout time.Duration `yaml:"test_timeout"`
	Tests       []TestSpec    `yaml:"tests"`
	Discover    string        `yaml:"discover"`
	OnlyTests   []string      `yaml:"only_test"`
	SkipTests   []string      `yaml:"skip_test"`

	Coverage    CoverageConfig    `yaml:"coverage"`
	Performance PerformanceConfig `yaml:"performance"`

	Strict  bool   `yaml:"strict"`
	Verbose bool   `yaml:"verbose"`
	Quiet   bool   `yaml:"quiet"`
	NoColor bool   `yaml:"no_color"`
	LogFile string `yaml:"log_file"`
	Format  string `yaml:"format"`
}

// TestSpec is one entry of the test battery. Command is relative to the build
// directory unless absolute.
type TestSpec struct {
	Name    string        `yaml:"name"`
	Command string        `yaml:"command"`
	Args    []string      `yaml:"args"`
	Timeout time.Duration `yaml:"timeout"`
}

// CoverageConfig locates the coverage database and its summarizer.
type CoverageConfig struct {
	File    string        `yaml:"file"`
	Tool    string        `yaml:"tool"`
	Args    []string      `yaml:"args"`
	Timeout time.Duration `yaml:"timeout"`
}

// PerformanceConfig locates the benchmark executable.
type PerformanceConfig struct {
	Binary  string        `yaml:"binary"`
	Args    []string      `yaml:"args"`
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultTests is the battery run when no tests are configured.
func DefaultTests() []TestSpec {
	names := []string{"config", "logger", "threadpool", "network_utils", "error_handling", "application", "integration"}
	specs := make([]TestSpec, 0, len(names))
	for _, name := range names {
		specs = append(specs, TestSpec{Name: name, Command: "./tests/test_" + name})
	}
	return specs
}

// Default returns the baseline configuration used when no flags or config file specify values.
func Default() Config {
	return Config{
		BuildDir:    "build",
		OutputJSON:  "test_report.json",
		OutputHTML:  "test_report.html",
		TestTimeout: 60 * time.Second,
		Tests:       DefaultTests(),
		Coverage: CoverageConfig{
			File:    "../build_coverage/coverage_filtered.info",
			Tool:    "lcov",
			Args:    []string{"--summary"},
			Timeout: 60 * time.Second,
		},
		Performance: PerformanceConfig{
			Binary:  "./tests/performance_test",
			Timeout: 5 * time.Minute,
		},
		Format: FormatPretty,
	}
}

// Load reads the configuration file at path when present. Missing files are ignored.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}

	cfg = merge(cfg, fileCfg)
	return cfg, nil
}

func merge(base, override Config) Config {
	out := base

	if override.BuildDir != "" {
		out.BuildDir = override.BuildDir
	}
	if override.OutputJSON != "" {
		out.OutputJSON = override.OutputJSON
	}
	if override.OutputHTML != "" {
		out.OutputHTML = override.OutputHTML
	}
	if override.TestTimeout != 0 {
		out.TestTimeout = override.TestTimeout
	}
	if len(override.Tests) > 0 {
		out.Tests = append([]TestSpec{}, override.Tests...)
	}
	if override.Discover != "" {
		out.Discover = override.Discover
	}
	if len(override.OnlyTests) > 0 {
		out.OnlyTests = append([]string{}, override.OnlyTests...)
	}
	if len(override.SkipTests) > 0 {
		out.SkipTests = append([]string{}, override.SkipTests...)
	}

	if override.Coverage.File != "" {
		out.Coverage.File = override.Coverage.File
	}
	if override.Coverage.Tool != "" {
		out.Coverage.Tool = override.Coverage.Tool
	}
	if override.Coverage.Args != nil {
		out.Coverage.Args = append([]string{}, override.Coverage.Args...)
	}
	if override.Coverage.Timeout != 0 {
		out.Coverage.Timeout = override.Coverage.Timeout
	}
	if override.Performance.Binary != "" {
		out.Performance.Binary = override.Performance.Binary
	}
	if len(override.Performance.Args) > 0 {
		out.Performance.Args = append([]string{}, override.Performance.Args...)
	}
	if override.Performance.Timeout != 0 {
		out.Performance.Timeout = override.Performance.Timeout
	}

	if override.NoCoverage {
		out.NoCoverage = true
	}
	if override.NoPerformance {
		out.NoPerformance = true
	}
	if override.Strict {
		out.Strict = true
	}
	if override.Verbose {
		out.Verbose = true
	}
	if override.Quiet {
		out.Quiet = true
	}
	if override.NoColor {
		out.NoColor = true
	}
	if override.LogFile != "" {
		out.LogFile = override.LogFile
	}
	if override.Format != "" {
		out.Format = override.Format
	}

	return out
}

// TimeoutFor returns the deadline for spec, falling back to the battery default.
func (c Config) TimeoutFor(spec TestSpec) time.Duration {
	if spec.Timeout > 0 {
		return spec.Timeout
	}
	return c.TestTimeout
}

// Validate rejects configuration that cannot produce a report.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BuildDir) == "" {
		return fmt.Errorf("%w: build_dir is empty", ErrInvalid)
	}
	if strings.TrimSpace(c.OutputJSON) == "" || strings.TrimSpace(c.OutputHTML) == "" {
		return fmt.Errorf("%w: output paths must be set", ErrInvalid)
	}
	if c.TestTimeout <= 0 {
		return fmt.Errorf("%w: test_timeout must be positive, got %s", ErrInvalid, c.TestTimeout)
	}
	if !c.NoCoverage && c.Coverage.Timeout <= 0 {
		return fmt.Errorf("%w: coverage.timeout must be positive, got %s", ErrInvalid, c.Coverage.Timeout)
	}
	if !c.NoPerformance && c.Performance.Timeout <= 0 {
		return fmt.Errorf("%w: performance.timeout must be positive, got %s", ErrInvalid, c.Performance.Timeout)
	}
	seen := make(map[string]struct{}, len(c.Tests))
	for i, spec := range c.Tests {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			return fmt.Errorf("%w: tests[%d] has no name", ErrInvalid, i)
		}
		if strings.TrimSpace(spec.Command) == "" {
			return fmt.Errorf("%w: test %q has no command", ErrInvalid, name)
		}
		if spec.Timeout < 0 {
			return fmt.Errorf("%w: test %q has negative timeout", ErrInvalid, name)
		}
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: duplicate test %q", ErrInvalid, name)
		}
		seen[name] = struct{}{}
	}
	switch c.Format {
	case FormatPretty, FormatJSON:
	default:
		return fmt.Errorf("%w: unsupported format %q", ErrInvalid, c.Format)
	}
	return nil
}

// ApplyFlags mutates cfg by applying values from CLI flags when they are present.
func ApplyFlags(cfg *Config, flags FlagValues) {
	if flags.BuildDir.Set {
		cfg.BuildDir = flags.BuildDir.Value
	}
	if flags.OutputJSON.Set {
		cfg.OutputJSON = flags.OutputJSON.Value
	}
	if flags.OutputHTML.Set {
		cfg.OutputHTML = flags.OutputHTML.Value
	}
	if flags.NoCoverage.Set {
		cfg.NoCoverage = flags.NoCoverage.Value
	}
	if flags.NoPerformance.Set {
		cfg.NoPerformance = flags.NoPerformance.Value
	}
	if flags.TestTimeout.Set {
		cfg.TestTimeout = flags.TestTimeout.Value
	}
	if flags.BenchTimeout.Set {
		cfg.Performance.Timeout = flags.BenchTimeout.Value
	}
	if len(flags.OnlyTests.Values) > 0 {
		cfg.OnlyTests = append([]string{}, flags.OnlyTests.Values...)
	}
	if len(flags.SkipTests.Values) > 0 {
		cfg.SkipTests = append([]string{}, flags.SkipTests.Values...)
	}
	if flags.Strict.Set {
		cfg.Strict = flags.Strict.Value
	}
	if flags.Verbose.Set {
		cfg.Verbose = flags.Verbose.Value
	}
	if flags.Quiet.Set {
		cfg.Quiet = flags.Quiet.Value
	}
	if flags.NoColor.Set {
		cfg.NoColor = flags.NoColor.Value
	}
	if flags.LogFile.Set {
		cfg.LogFile = flags.LogFile.Value
	}
	if flags.Format.Set {
		cfg.Format = flags.Format.Value
	}
}

// FlagValues captures CLI flag state with knowledge of whether each flag was set explicitly.
type FlagValues struct {
	BuildDir      StringFlag
	OutputJSON    StringFlag
	OutputHTML    StringFlag
	NoCoverage    BoolFlag
	NoPerformance BoolFlag
	TestTimeout   DurationFlag
	BenchTimeout  DurationFlag
	OnlyTests     SliceFlag
	SkipTests     SliceFlag
	Strict        BoolFlag
	Verbose       BoolFlag
	Quiet         BoolFlag
	NoColor       BoolFlag
	LogFile       StringFlag
	Format        StringFlag
}

// StringFlag represents a string flag and whether it was set.
type StringFlag struct {
	Value string
	Set   bool
}

// SliceFlag represents a slice flag and whether it captured values via CLI.
type SliceFlag struct {
	Values []string
}

// BoolFlag represents a bool flag and whether it was set.
type BoolFlag struct {
	Value bool
	Set   bool
}

// DurationFlag represents a duration flag and whether it was set.
type DurationFlag struct {
	Value time.Duration
	Set   bool
}
