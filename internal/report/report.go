package report

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrSealed is returned when a test outcome is added after the runner phase.
	ErrSealed = errors.New("test results are sealed")
	// ErrFrozen is returned when a section is written after rendering started.
	ErrFrozen = errors.New("report is frozen")
	// ErrDuplicateTest is returned when two outcomes share a name.
	ErrDuplicateTest = errors.New("duplicate test name")
)

// Status is the terminal classification of one test invocation.
type Status string

const (
	StatusPassed  Status = "PASSED"
	StatusFailed  Status = "FAILED"
	StatusTimeout Status = "TIMEOUT"
	StatusError   Status = "ERROR"
)

// Valid reports whether s is one of the four known outcomes.
func (s Status) Valid() bool {
	switch s {
	case StatusPassed, StatusFailed, StatusTimeout, StatusError:
		return true
	default:
		return false
	}
}

// TestOutcome captures the result of running one test executable.
type TestOutcome struct {
	Name       string `json:"-"`
	Command    string `json:"command,omitempty"`
	Status     Status `json:"status"`
	ExitCode   int    `json:"return_code"`
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	Duration   string `json:"duration"`
	DurationMS int64  `json:"duration_ms"`
}

// Coverage holds the percentages scraped from the coverage tool.
type Coverage struct {
	LineCoverage     string `json:"line_coverage,omitempty"`
	FunctionCoverage string `json:"function_coverage,omitempty"`
	Status           string `json:"status,omitempty"`
	Error            string `json:"error,omitempty"`
	File             string `json:"file,omitempty"`
	Tool             string `json:"tool,omitempty"`
	ToolVersion      string `json:"tool_version,omitempty"`
}

// PerformanceStatus reports whether the benchmark exited cleanly.
type PerformanceStatus string

const (
	PerformanceCompleted PerformanceStatus = "COMPLETED"
	PerformanceFailed    PerformanceStatus = "FAILED"
)

// Performance holds the benchmark run and its throughput line.
type Performance struct {
	Status     PerformanceStatus `json:"status,omitempty"`
	ExitCode   *int              `json:"return_code,omitempty"`
	Output     string            `json:"output,omitempty"`
	Stderr     string            `json:"stderr,omitempty"`
	Throughput string            `json:"throughput,omitempty"`
	Error      string            `json:"error,omitempty"`
	DurationMS int64             `json:"duration_ms,omitempty"`
}

// Report aggregates every section produced by one run.
type Report struct {
	RunID       string       `json:"run_id,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
	BuildDir    string       `json:"build_dir,omitempty"`
	Tests       Tests        `json:"test_results"`
	Coverage    *Coverage    `json:"coverage,omitempty"`
	Performance *Performance `json:"performance,omitempty"`

	sealed bool
	frozen bool
}

// New creates an empty report stamped with now in UTC.
func New(runID, buildDir string, now time.Time) *Report {
	return &Report{
		RunID:     runID,
		Timestamp: now.UTC(),
		BuildDir:  buildDir,
	}
}

// AddOutcome appends a test outcome in execution order.
func (r *Report) AddOutcome(outcome TestOutcome) error {
	if r.sealed {
		return fmt.Errorf("add %q: %w", outcome.Name, ErrSealed)
	}
	return r.Tests.add(outcome)
}

// SealTests closes the test section; later AddOutcome calls fail.
func (r *Report) SealTests() {
	r.sealed = true
}

// SetCoverage stores the coverage section.
func (r *Report) SetCoverage(c *Coverage) error {
	if r.frozen {
		return fmt.Errorf("set coverage: %w", ErrFrozen)
	}
	r.Coverage = c
	return nil
}

// SetPerformance stores the performance section.
func (r *Report) SetPerformance(p *Performance) error {
	if r.frozen {
		return fmt.Errorf("set performance: %w", ErrFrozen)
	}
	r.Performance = p
	return nil
}

// Freeze makes the report read-only ahead of rendering.
func (r *Report) Freeze() {
	r.sealed = true
	r.frozen = true
}

// Frozen reports whether Freeze has been called.
func (r *Report) Frozen() bool {
	return r.frozen
}
