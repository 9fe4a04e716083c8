// Package coverage runs the coverage summarizer against a coverage database
// and scrapes its percentages.
package coverage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/bgricker/testreport/internal/report"
	"github.com/bgricker/testreport/internal/runner"
	"github.com/bgricker/testreport/internal/version"
)

// StatusNoData is recorded when the coverage database does not exist.
const StatusNoData = "No coverage data available"

// Executor runs one external command with a deadline.
type Executor interface {
	Exec(ctx context.Context, c runner.Command) runner.Result
}

// Options configure a coverage collection.
type Options struct {
	// File is the coverage database, resolved against Dir when relative.
	File    string
	Tool    string
	Args    []string
	Dir     string
	Timeout time.Duration
	// Version, when set, reports the summarizer's version. It runs from Dir.
	Version func(ctx context.Context, dir, tool string) (string, error)
	Logger  zerolog.Logger
}

// Collect builds the coverage section. It never fails: every problem is
// recorded on the returned value.
func Collect(ctx context.Context, exec Executor, opts Options) *report.Coverage {
	path := resolve(opts.Dir, opts.File)
	cov := &report.Coverage{File: opts.File, Tool: opts.Tool}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			opts.Logger.Warn().Str("file", path).Msg("coverage database not found")
			cov.Status = StatusNoData
			return cov
		}
		cov.Error = fmt.Sprintf("stat coverage file %q: %v", opts.File, err)
		return cov
	}
	if info.IsDir() {
		cov.Error = fmt.Sprintf("coverage file %q is a directory", opts.File)
		return cov
	}

	args := append(append([]string{}, opts.Args...), opts.File)
	res := exec.Exec(ctx, runner.Command{
		Name:    "coverage",
		Path:    opts.Tool,
		Args:    args,
		Dir:     opts.Dir,
		Timeout: opts.Timeout,
	})

	switch res.Kind {
	case report.StatusError:
		cov.Error = fmt.Sprintf("run %s: %s", opts.Tool, res.Stderr)
		opts.Logger.Error().Str("tool", opts.Tool).Err(res.Err).Msg("coverage tool could not run")
		return cov
	case report.StatusTimeout:
		cov.Error = fmt.Sprintf("%s timed out after %s", opts.Tool, opts.Timeout)
		opts.Logger.Error().Str("tool", opts.Tool).Dur("timeout", opts.Timeout).Msg("coverage tool timed out")
		return cov
	case report.StatusFailed:
		cov.Status = fmt.Sprintf("%s exited with status %d", opts.Tool, res.ExitCode)
		opts.Logger.Warn().Str("tool", opts.Tool).Int("exit_code", res.ExitCode).Msg("coverage tool failed")
	default:
		cov.LineCoverage, cov.FunctionCoverage = ParseSummary(res.Stdout)
		// lcov prints its summary on stderr in some versions.
		if cov.LineCoverage == "" && cov.FunctionCoverage == "" {
			cov.LineCoverage, cov.FunctionCoverage = ParseSummary(res.Stderr)
		}
	}

	if opts.Version != nil {
		if v, err := opts.Version(ctx, opts.Dir, opts.Tool); err == nil {
			cov.ToolVersion = v
		} else {
			opts.Logger.Debug().Err(err).Bool("missing", version.Missing(err)).Str("tool", opts.Tool).Msg("coverage tool version unknown")
		}
	}

	opts.Logger.Info().
		Str("line_coverage", valueOr(cov.LineCoverage)).
		Str("function_coverage", valueOr(cov.FunctionCoverage)).
		Msg("coverage collected")
	return cov
}

func resolve(dir, path string) string {
	if dir == "" || path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}

func valueOr(s string) string {
	if s == "" {
		return report.NotAvailable
	}
	return s
}
