// Package benchmark runs the optional performance executable and extracts its
// throughput line.
package benchmark

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bgricker/testreport/internal/report"
	"github.com/bgricker/testreport/internal/runner"
)

// ThroughputMarker identifies the throughput line in benchmark output.
const ThroughputMarker = "ops/sec"

// Executor runs one external command with a deadline.
type Executor interface {
	Exec(ctx context.Context, c runner.Command) runner.Result
}

// Options configure the benchmark run.
type Options struct {
	// Binary is resolved against Dir when relative.
	Binary  string
	Args    []string
	Dir     string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Collect runs the benchmark. It returns nil when the executable does not
// exist; every other problem is recorded on the returned value.
func Collect(ctx context.Context, exec Executor, opts Options) *report.Performance {
	path := opts.Binary
	if opts.Dir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(opts.Dir, path)
	}
	if _, err := os.Stat(path); err != nil && errors.Is(err, fs.ErrNotExist) {
		opts.Logger.Info().Str("binary", path).Msg("benchmark executable not found; skipping performance")
		return nil
	}

	opts.Logger.Info().Str("binary", opts.Binary).Dur("timeout", opts.Timeout).Msg("running benchmark")
	res := exec.Exec(ctx, runner.Command{
		Name:    "performance",
		Path:    opts.Binary,
		Args:    opts.Args,
		Dir:     opts.Dir,
		Timeout: opts.Timeout,
	})

	perf := &report.Performance{DurationMS: res.Duration.Milliseconds()}
	switch res.Kind {
	case report.StatusTimeout:
		perf.Error = fmt.Sprintf("benchmark timed out after %s", opts.Timeout)
	case report.StatusError:
		perf.Error = res.Stderr
	default:
		code := res.ExitCode
		perf.ExitCode = &code
		perf.Status = report.PerformanceCompleted
		if res.Kind != report.StatusPassed {
			perf.Status = report.PerformanceFailed
		}
		perf.Output = res.Stdout
		perf.Stderr = res.Stderr
		perf.Throughput = ExtractThroughput(res.Stdout)
	}

	evt := opts.Logger.Info()
	if perf.Error != "" || perf.Status == report.PerformanceFailed {
		evt = opts.Logger.Warn()
	}
	evt.Str("status", string(perf.Status)).
		Str("throughput", perf.Throughput).
		Str("error", perf.Error).
		Msg("benchmark finished")
	return perf
}

// ExtractThroughput returns the first line of stdout mentioning ops/sec,
// trimmed of surrounding whitespace, or "" when there is none.
func ExtractThroughput(stdout string) string {
	if !strings.Contains(stdout, ThroughputMarker) {
		return ""
	}
	for _, line := range strings.Split(stdout, "\n") {
		if strings.Contains(line, ThroughputMarker) {
			return strings.TrimSpace(line)
		}
	}
	return ""
}
