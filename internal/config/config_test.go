package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "build", cfg.BuildDir)
	assert.Equal(t, "test_report.json", cfg.OutputJSON)
	assert.Equal(t, "test_report.html", cfg.OutputHTML)
	assert.Equal(t, 60*time.Second, cfg.TestTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Performance.Timeout)
	assert.Equal(t, "lcov", cfg.Coverage.Tool)
	assert.Equal(t, []string{"--summary"}, cfg.Coverage.Args)
	require.Len(t, cfg.Tests, 7)
	assert.Equal(t, TestSpec{Name: "config", Command: "./tests/test_config"}, cfg.Tests[0])
	assert.Equal(t, "integration", cfg.Tests[6].Name)
	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMergesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	yml := []byte(`build_dir: out
test_timeout: 90s
tests:
  - name: unit
    command: ./unit
    args: [--fast]
  - name: slow
    command: ./slow
    timeout: 2m
skip_test:
  - /slow/
coverage:
  tool: gcovr
performance:
  timeout: 10m
no_coverage: true
`)
	require.NoError(t, os.WriteFile(path, yml, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.BuildDir)
	assert.Equal(t, "test_report.json", cfg.OutputJSON)
	assert.Equal(t, 90*time.Second, cfg.TestTimeout)
	require.Len(t, cfg.Tests, 2)
	assert.Equal(t, []string{"--fast"}, cfg.Tests[0].Args)
	assert.Equal(t, 2*time.Minute, cfg.Tests[1].Timeout)
	assert.Equal(t, []string{"/slow/"}, cfg.SkipTests)
	assert.Equal(t, "gcovr", cfg.Coverage.Tool)
	assert.Equal(t, "../build_coverage/coverage_filtered.info", cfg.Coverage.File)
	assert.Equal(t, 10*time.Minute, cfg.Performance.Timeout)
	assert.True(t, cfg.NoCoverage)
	assert.False(t, cfg.NoPerformance)

	assert.Equal(t, 90*time.Second, cfg.TimeoutFor(cfg.Tests[0]))
	assert.Equal(t, 2*time.Minute, cfg.TimeoutFor(cfg.Tests[1]))
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("tests: [\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyFlagsOverridesFile(t *testing.T) {
	cfg := Default()
	cfg.BuildDir = "from-file"
	cfg.NoCoverage = true

	ApplyFlags(&cfg, FlagValues{
		BuildDir:      StringFlag{Value: "from-flag", Set: true},
		NoCoverage:    BoolFlag{Value: false, Set: true},
		NoPerformance: BoolFlag{Value: true, Set: true},
		TestTimeout:   DurationFlag{Value: time.Second, Set: true},
		BenchTimeout:  DurationFlag{Value: time.Minute, Set: true},
		OnlyTests:     SliceFlag{Values: []string{"config"}},
		OutputJSON:    StringFlag{Value: "r.json"},
	})

	assert.Equal(t, "from-flag", cfg.BuildDir)
	assert.False(t, cfg.NoCoverage)
	assert.True(t, cfg.NoPerformance)
	assert.Equal(t, time.Second, cfg.TestTimeout)
	assert.Equal(t, time.Minute, cfg.Performance.Timeout)
	assert.Equal(t, []string{"config"}, cfg.OnlyTests)
	assert.Equal(t, "test_report.json", cfg.OutputJSON, "unset flags keep their value")
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty build dir", func(c *Config) { c.BuildDir = " " }},
		{"empty output", func(c *Config) { c.OutputHTML = "" }},
		{"zero timeout", func(c *Config) { c.TestTimeout = 0 }},
		{"unnamed test", func(c *Config) { c.Tests = []TestSpec{{Command: "./a"}} }},
		{"no command", func(c *Config) { c.Tests = []TestSpec{{Name: "a"}} }},
		{"duplicate", func(c *Config) { c.Tests = []TestSpec{{Name: "a", Command: "./a"}, {Name: "a", Command: "./b"}} }},
		{"negative test timeout", func(c *Config) { c.Tests = []TestSpec{{Name: "a", Command: "./a", Timeout: -time.Second}} }},
		{"bench timeout", func(c *Config) { c.Performance.Timeout = 0 }},
		{"format", func(c *Config) { c.Format = "xml" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}

	cfg := Default()
	cfg.Tests = nil
	assert.NoError(t, cfg.Validate(), "an empty battery is allowed")

	cfg = Default()
	cfg.NoPerformance = true
	cfg.Performance.Timeout = 0
	assert.NoError(t, cfg.Validate(), "skipped sections are not validated")
}
