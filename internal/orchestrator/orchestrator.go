// Package orchestrator runs the fixed report pipeline: tests, coverage,
// performance, then the JSON and HTML artifacts and the console summary.
package orchestrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bgricker/testreport/internal/benchmark"
	"github.com/bgricker/testreport/internal/config"
	"github.com/bgricker/testreport/internal/coverage"
	"github.com/bgricker/testreport/internal/discovery"
	"github.com/bgricker/testreport/internal/filter"
	"github.com/bgricker/testreport/internal/output"
	"github.com/bgricker/testreport/internal/report"
	"github.com/bgricker/testreport/internal/runner"
)

// Runner executes tests and the auxiliary tools.
type Runner interface {
	Exec(ctx context.Context, c runner.Command) runner.Result
	RunAll(ctx context.Context, cmds []runner.Command, done func(report.TestOutcome)) []report.TestOutcome
}

// Console receives progress and the closing summary.
type Console interface {
	Section(title string)
	TestFinished(o report.TestOutcome)
	Artifact(kind, path string)
	Summary(r *report.Report) error
}

// Deps are the collaborators of an Orchestrator. Zero values get defaults.
type Deps struct {
	Runner  Runner
	Console Console
	Logger  zerolog.Logger
	Now     func() time.Time
	NewID   func() string
	// Version reports the coverage tool version; nil skips detection.
	Version func(ctx context.Context, dir, tool string) (string, error)
}

// Orchestrator owns one configured pipeline run.
type Orchestrator struct {
	cfg  config.Config
	deps Deps
}

// New creates an orchestrator for cfg.
func New(cfg config.Config, deps Deps) *Orchestrator {
	if deps.Runner == nil {
		deps.Runner = runner.New(runner.Options{Logger: deps.Logger})
	}
	if deps.Console == nil {
		deps.Console = output.NewConsole(io.Discard, true)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}
	return &Orchestrator{cfg: cfg, deps: deps}
}

// Resolve returns the battery to run: the configured tests, any discovered
// executables, then the only/skip filters.
func Resolve(cfg config.Config, logger zerolog.Logger) ([]config.TestSpec, error) {
	specs := cfg.Tests
	if cfg.Discover != "" {
		found, err := discovery.Tests(cfg.BuildDir, cfg.Discover)
		switch {
		case errors.Is(err, discovery.ErrNoTests):
			logger.Warn().Str("glob", cfg.Discover).Msg("discovery matched no test executables")
		case err != nil:
			return nil, err
		default:
			logger.Debug().Int("found", len(found)).Str("glob", cfg.Discover).Msg("discovered tests")
			specs = discovery.Merge(specs, found)
		}
	}
	return filter.Apply(specs, cfg.OnlyTests, cfg.SkipTests)
}

// Commands turns specs into runner commands rooted at the build directory.
func Commands(cfg config.Config, specs []config.TestSpec) []runner.Command {
	cmds := make([]runner.Command, 0, len(specs))
	for _, spec := range specs {
		cmds = append(cmds, runner.Command{
			Name:    spec.Name,
			Path:    spec.Command,
			Args:    spec.Args,
			Dir:     cfg.BuildDir,
			Timeout: cfg.TimeoutFor(spec),
		})
	}
	return cmds
}

// Run executes the pipeline and returns the frozen report. Test, coverage and
// benchmark failures are recorded in the report; only configuration errors
// and artifact write failures are returned.
func (o *Orchestrator) Run(ctx context.Context) (*report.Report, error) {
	cfg, log := o.cfg, o.deps.Logger

	r := report.New(o.deps.NewID(), cfg.BuildDir, o.deps.Now())

	specs, err := Resolve(cfg, log)
	if err != nil {
		return nil, err
	}

	log.Info().Str("run_id", r.RunID).Str("build_dir", cfg.BuildDir).Int("tests", len(specs)).Msg("starting test run")

	o.deps.Console.Section("Running tests")
	o.deps.Runner.RunAll(ctx, Commands(cfg, specs), func(outcome report.TestOutcome) {
		if err := r.AddOutcome(outcome); err != nil {
			log.Error().Err(err).Str("test", outcome.Name).Msg("dropping outcome")
			return
		}
		o.deps.Console.TestFinished(outcome)
	})
	r.SealTests()

	if cfg.NoCoverage {
		log.Debug().Msg("coverage collection skipped")
	} else {
		o.deps.Console.Section("Collecting coverage")
		cov := coverage.Collect(ctx, o.deps.Runner, coverage.Options{
			File:    cfg.Coverage.File,
			Tool:    cfg.Coverage.Tool,
			Args:    cfg.Coverage.Args,
			Dir:     cfg.BuildDir,
			Timeout: cfg.Coverage.Timeout,
			Version: o.deps.Version,
			Logger:  log,
		})
		if err := r.SetCoverage(cov); err != nil {
			return r, err
		}
	}

	if cfg.NoPerformance {
		log.Debug().Msg("performance collection skipped")
	} else {
		o.deps.Console.Section("Running benchmark")
		perf := benchmark.Collect(ctx, o.deps.Runner, benchmark.Options{
			Binary:  cfg.Performance.Binary,
			Args:    cfg.Performance.Args,
			Dir:     cfg.BuildDir,
			Timeout: cfg.Performance.Timeout,
			Logger:  log,
		})
		if perf != nil {
			if err := r.SetPerformance(perf); err != nil {
				return r, err
			}
		}
	}

	r.Freeze()

	if err := o.write(r, cfg.OutputJSON, "JSON", func(w io.Writer) error { return output.NewJSON(w).Render(r) }); err != nil {
		return r, err
	}
	if err := o.write(r, cfg.OutputHTML, "HTML", func(w io.Writer) error { return output.NewHTML(w).Render(r) }); err != nil {
		return r, err
	}

	if err := o.deps.Console.Summary(r); err != nil {
		return r, fmt.Errorf("print summary: %w", err)
	}
	return r, nil
}

func (o *Orchestrator) write(r *report.Report, path, kind string, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Errorf("render %s report: %w", kind, err)
	}
	if err := output.WriteArtifact(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write %s report: %w", kind, err)
	}
	o.deps.Logger.Info().Str("path", path).Str("run_id", r.RunID).Msgf("%s report written", kind)
	o.deps.Console.Artifact(kind, path)
	return nil
}
