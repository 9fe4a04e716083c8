package main

import (
	"github.com/spf13/cobra"

	"github.com/bgricker/testreport/internal/config"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "testreport",
		Short:         "Testreport runs the test battery and writes JSON and HTML reports",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          runExecute,
	}

	defaults := config.Default()
	persistent := cmd.PersistentFlags()
	persistent.String("config", config.FileName, "configuration file")
	persistent.String("build-dir", defaults.BuildDir, "directory the tests, coverage data and benchmark live in")
	persistent.String("output-json", defaults.OutputJSON, "structured report path")
	persistent.String("output-html", defaults.OutputHTML, "HTML report path")
	persistent.Bool("no-coverage", false, "skip coverage collection")
	persistent.Bool("no-performance", false, "skip the benchmark")
	persistent.Duration("test-timeout", defaults.TestTimeout, "deadline for each test")
	persistent.Duration("bench-timeout", defaults.Performance.Timeout, "deadline for the benchmark")
	persistent.StringArray("only-test", nil, "run only matching tests (substring or /regex/)")
	persistent.StringArray("skip-test", nil, "skip matching tests (substring or /regex/)")
	persistent.Bool("strict", false, "exit non-zero when any test did not pass")
	persistent.BoolP("verbose", "v", false, "stream test output and enable debug logs")
	persistent.BoolP("quiet", "q", false, "only log warnings and errors")
	persistent.Bool("no-color", false, "disable coloured output")
	persistent.String("log-file", "", "also write JSON logs to this file, rotated")
	persistent.String("format", config.FormatPretty, "list output format (pretty|json)")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newValidateCmd())

	return cmd
}
