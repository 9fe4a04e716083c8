package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/bgricker/testreport/internal/config"
	"github.com/bgricker/testreport/internal/report"
)

// Console prints progress while tests run and the closing summary.
type Console struct {
	out io.Writer

	green   *color.Color
	red     *color.Color
	yellow  *color.Color
	magenta *color.Color
	bold    *color.Color
}

// NewConsole creates a console writing to out. Colour is used only when out
// is a terminal and noColor is false.
func NewConsole(out io.Writer, noColor bool) *Console {
	return newConsole(out, !noColor && os.Getenv("NO_COLOR") == "" && isTerminal(out))
}

func newConsole(out io.Writer, colorize bool) *Console {
	c := &Console{
		out:     out,
		green:   color.New(color.FgGreen),
		red:     color.New(color.FgRed),
		yellow:  color.New(color.FgYellow),
		magenta: color.New(color.FgMagenta),
		bold:    color.New(color.Bold),
	}
	for _, col := range []*color.Color{c.green, c.red, c.yellow, c.magenta, c.bold} {
		if colorize {
			col.EnableColor()
		} else {
			col.DisableColor()
		}
	}
	return c
}

// Section prints a stage heading.
func (c *Console) Section(title string) {
	fmt.Fprintln(c.out, c.bold.Sprint(title))
}

// TestFinished prints one progress line for a completed test.
func (c *Console) TestFinished(o report.TestOutcome) {
	line := fmt.Sprintf("  %s %s (%s)", c.status(o.Status), o.Name, o.Duration)
	if o.Status == report.StatusFailed {
		line += fmt.Sprintf(" return code %d", o.ExitCode)
	}
	fmt.Fprintln(c.out, line)
	if o.Status != report.StatusPassed {
		if msg := firstLine(o.Stderr); msg != "" {
			fmt.Fprintf(c.out, "      %s\n", msg)
		}
	}
}

// Artifact notes a written report file.
func (c *Console) Artifact(kind, path string) {
	fmt.Fprintf(c.out, "%s report written to %s\n", kind, path)
}

// Summary prints the results table followed by the headline counts.
func (c *Console) Summary(r *report.Report) error {
	sum := report.Summarize(r)

	if r.Tests.Len() > 0 {
		t := table.NewWriter()
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Test", "Status", "Return code", "Duration"})
		t.SetColumnConfigs([]table.ColumnConfig{
			{Name: "Test", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
			{Name: "Return code", Align: text.AlignRight},
			{Name: "Duration", Align: text.AlignRight},
		})
		for _, o := range r.Tests.All() {
			t.AppendRow(table.Row{o.Name, c.status(o.Status), o.ExitCode, o.Duration})
		}
		if _, err := fmt.Fprintln(c.out, t.Render()); err != nil {
			return err
		}
	}

	rate := sum.SuccessRate
	switch {
	case sum.Total > 0 && sum.AllPassed():
		rate = c.green.Sprint(rate)
	case sum.Total > 0:
		rate = c.red.Sprint(rate)
	}

	var b strings.Builder
	fmt.Fprintln(&b, c.bold.Sprint("Test Summary"))
	fmt.Fprintf(&b, "Total tests: %d\n", sum.Total)
	fmt.Fprintf(&b, "Passed: %d\n", sum.Passed)
	fmt.Fprintf(&b, "Failed: %d\n", sum.Failed)
	if sum.TimedOut > 0 || sum.Errored > 0 {
		fmt.Fprintf(&b, "  (timed out: %d, errors: %d)\n", sum.TimedOut, sum.Errored)
	}
	fmt.Fprintf(&b, "Success rate: %s\n", rate)
	if sum.LineCoverage != "" {
		fmt.Fprintf(&b, "Line coverage: %s\n", sum.LineCoverage)
	}
	if p := r.Performance; p != nil && p.Throughput != "" {
		fmt.Fprintf(&b, "Performance: %s\n", p.Throughput)
	}
	_, err := io.WriteString(c.out, b.String())
	return err
}

// ListTests renders the resolved battery without running it.
func (c *Console) ListTests(specs []config.TestSpec, timeoutFor func(config.TestSpec) time.Duration) error {
	if len(specs) == 0 {
		_, err := fmt.Fprintln(c.out, "No tests selected.")
		return err
	}
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Test", "Command", "Timeout"})
	for _, spec := range specs {
		cmd := spec.Command
		if len(spec.Args) > 0 {
			cmd += " " + strings.Join(spec.Args, " ")
		}
		t.AppendRow(table.Row{spec.Name, cmd, timeoutFor(spec).String()})
	}
	_, err := fmt.Fprintln(c.out, t.Render())
	return err
}

func (c *Console) status(s report.Status) string {
	label := string(s)
	switch s {
	case report.StatusPassed:
		return c.green.Sprint(label)
	case report.StatusFailed:
		return c.red.Sprint(label)
	case report.StatusTimeout:
		return c.yellow.Sprint(label)
	case report.StatusError:
		return c.magenta.Sprint(label)
	default:
		return label
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
