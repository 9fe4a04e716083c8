package output

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bgricker/testreport/internal/report"
)

var fixedNow = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

func sampleReport(t *testing.T) *report.Report {
	t.Helper()
	r := report.New("run-1", "build", fixedNow)
	outcomes := []report.TestOutcome{
		{Name: "config", Command: "./tests/test_config", Status: report.StatusPassed, Stdout: "ok\n", Duration: "0.12s", DurationMS: 120},
		{Name: "logger", Command: "./tests/test_logger", Status: report.StatusFailed, ExitCode: 2, Stdout: "\x1b[31mFAIL\x1b[0m logger_rotates\n", Stderr: "assertion failed\n", Duration: "0.40s", DurationMS: 400},
		{Name: "threadpool", Command: "./tests/test_threadpool", Status: report.StatusTimeout, ExitCode: -1, Stderr: "Test timed out after 60 seconds", Duration: "60+", DurationMS: 60000},
		{Name: "network_utils", Command: "./tests/test_network_utils", Status: report.StatusError, ExitCode: -1, Stderr: "fork/exec ./tests/test_network_utils: no such file or directory", Duration: "N/A"},
		{Name: "integration", Command: "./tests/test_integration", Status: report.StatusPassed, Duration: "1.00s", DurationMS: 1000},
	}
	for _, o := range outcomes {
		require.NoError(t, r.AddOutcome(o))
	}
	r.SealTests()
	return r
}

func withSections(t *testing.T, r *report.Report) *report.Report {
	t.Helper()
	code := 0
	require.NoError(t, r.SetCoverage(&report.Coverage{LineCoverage: "87.3%", FunctionCoverage: "90.1%", File: "cov.info", Tool: "lcov", ToolVersion: "1.16"}))
	require.NoError(t, r.SetPerformance(&report.Performance{Status: report.PerformanceCompleted, ExitCode: &code, Output: "Throughput: 45210 ops/sec\n", Throughput: "Throughput: 45210 ops/sec", DurationMS: 1000}))
	r.Freeze()
	return r
}
