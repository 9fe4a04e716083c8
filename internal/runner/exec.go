package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bgricker/testreport/internal/report"
)

// waitDelay bounds how long Wait keeps draining pipes after the process is killed.
const waitDelay = 2 * time.Second

// Command describes one external invocation.
type Command struct {
	Name    string
	Path    string
	Args    []string
	Dir     string
	Timeout time.Duration
}

// String renders the command line for logs and reports.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Path
	}
	return c.Path + " " + strings.Join(c.Args, " ")
}

// Result is the tagged outcome of a run-with-deadline call. Kind is one of
// the four report statuses.
type Result struct {
	Kind     report.Status
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	Err      error
}

// Options configure how the runner executes commands.
type Options struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Verbose bool
	Env     []string
	Now     func() time.Time
	Logger  zerolog.Logger
}

// Runner executes commands sequentially with a per-call deadline.
type Runner struct {
	opts Options
}

// New creates a runner with the supplied options.
func New(opts Options) *Runner {
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	if opts.Env == nil {
		opts.Env = os.Environ()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Runner{opts: opts}
}

// Exec starts c, waits up to c.Timeout and classifies the outcome. A process
// still running at the deadline is killed together with its process group.
func (r *Runner) Exec(ctx context.Context, c Command) Result {
	if c.Timeout <= 0 {
		return Result{Kind: report.StatusError, ExitCode: -1, Err: fmt.Errorf("run %s: non-positive timeout %s", c.Path, c.Timeout)}
	}
	if err := ctx.Err(); err != nil {
		return Result{Kind: report.StatusError, ExitCode: -1, Err: fmt.Errorf("run %s: %w", c.Path, err)}
	}

	runCtx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = r.opts.Env
	cmd.WaitDelay = waitDelay
	configureKill(cmd)

	var stdoutBuf, stderrBuf bytes.Buffer
	if r.opts.Verbose {
		cmd.Stdout = io.MultiWriter(r.opts.Stdout, &stdoutBuf)
		cmd.Stderr = io.MultiWriter(r.opts.Stderr, &stderrBuf)
	} else {
		cmd.Stdout = &stdoutBuf
		cmd.Stderr = &stderrBuf
	}

	r.opts.Logger.Debug().
		Str("command", c.String()).
		Str("dir", c.Dir).
		Dur("timeout", c.Timeout).
		Msg("starting process")

	start := r.opts.Now()
	err := cmd.Run()
	elapsed := r.opts.Now().Sub(start)
	reapGroup(cmd)

	exited := cmd.ProcessState != nil && cmd.ProcessState.Exited()
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil && !exited {
		return Result{
			Kind:     report.StatusTimeout,
			ExitCode: -1,
			Stderr:   timeoutMessage(c.Timeout),
			Duration: elapsed,
			Err:      runCtx.Err(),
		}
	}

	// A background child still holding the pipes after a clean exit.
	if errors.Is(err, exec.ErrWaitDelay) && exited && cmd.ProcessState.Success() {
		r.opts.Logger.Debug().
			Str("command", c.String()).
			Dur("wait_delay", waitDelay).
			Msg("output pipes still open after exit")
		err = nil
	}

	if err == nil {
		return Result{
			Kind:     report.StatusPassed,
			Stdout:   captured(&stdoutBuf),
			Stderr:   captured(&stderrBuf),
			Duration: elapsed,
		}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		return Result{
			Kind:     report.StatusFailed,
			ExitCode: exitCode(exitErr),
			Stdout:   captured(&stdoutBuf),
			Stderr:   captured(&stderrBuf),
			Duration: elapsed,
			Err:      err,
		}
	}

	if ctx.Err() != nil {
		err = fmt.Errorf("%w: %w", ctx.Err(), err)
	}
	return Result{
		Kind:     report.StatusError,
		ExitCode: -1,
		Stderr:   err.Error(),
		Duration: elapsed,
		Err:      err,
	}
}

// RunTest executes c and converts the result into a test outcome.
func (r *Runner) RunTest(ctx context.Context, c Command) report.TestOutcome {
	res := r.Exec(ctx, c)
	outcome := report.TestOutcome{
		Name:     c.Name,
		Command:  c.String(),
		Status:   res.Kind,
		ExitCode: res.ExitCode,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
	}
	switch res.Kind {
	case report.StatusTimeout:
		outcome.Duration = strconv.FormatFloat(c.Timeout.Seconds(), 'f', -1, 64) + "+"
		outcome.DurationMS = res.Duration.Milliseconds()
	case report.StatusError:
		outcome.Duration = report.NotAvailable
	default:
		outcome.Duration = FormatDuration(res.Duration)
		outcome.DurationMS = res.Duration.Milliseconds()
	}

	evt := r.opts.Logger.Debug()
	if res.Kind != report.StatusPassed {
		evt = r.opts.Logger.Warn()
	}
	evt.Str("test", c.Name).
		Str("status", string(res.Kind)).
		Int("exit_code", res.ExitCode).
		Dur("duration", res.Duration).
		Err(res.Err).
		Msg("test finished")

	return outcome
}

// RunAll executes commands strictly in order. A failing test never stops the
// batch. done, when non-nil, is called after each test.
func (r *Runner) RunAll(ctx context.Context, cmds []Command, done func(report.TestOutcome)) []report.TestOutcome {
	outcomes := make([]report.TestOutcome, 0, len(cmds))
	for _, c := range cmds {
		outcome := r.RunTest(ctx, c)
		outcomes = append(outcomes, outcome)
		if done != nil {
			done(outcome)
		}
	}
	return outcomes
}

func exitCode(exitErr *exec.ExitError) int {
	if code := exitErr.ExitCode(); code >= 0 {
		return code
	}
	if sig, ok := signalNumber(exitErr); ok {
		return 128 + sig
	}
	return 1
}

// captured returns buf as text the JSON report can carry unchanged. Invalid
// UTF-8 sequences become U+FFFD.
func captured(buf *bytes.Buffer) string {
	return strings.ToValidUTF8(buf.String(), "\uFFFD")
}

func timeoutMessage(d time.Duration) string {
	return fmt.Sprintf("Test timed out after %s seconds", strconv.FormatFloat(d.Seconds(), 'f', -1, 64))
}

// FormatDuration renders d with millisecond precision.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Truncate(time.Millisecond).String()
}
