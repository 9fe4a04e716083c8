package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bgricker/testreport/internal/config"
	"github.com/bgricker/testreport/internal/logging"
	"github.com/bgricker/testreport/internal/orchestrator"
	"github.com/bgricker/testreport/internal/output"
	"github.com/bgricker/testreport/internal/report"
	"github.com/bgricker/testreport/internal/runner"
	"github.com/bgricker/testreport/internal/version"
)

// errTestsFailed is returned under --strict when the report is not all green.
var errTestsFailed = errors.New("one or more tests did not pass")

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the tests, collect coverage and performance, write the reports",
		Args:  cobra.NoArgs,
		RunE:  runExecute,
	}
}

func runExecute(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, closer, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	runOpts := runner.Options{
		Verbose: cfg.Verbose,
		Logger:  logger,
	}
	if cfg.Verbose {
		runOpts.Stdout = cmd.OutOrStdout()
		runOpts.Stderr = cmd.ErrOrStderr()
	}

	orch := orchestrator.New(cfg, orchestrator.Deps{
		Runner:  runner.New(runOpts),
		Console: output.NewConsole(cmd.OutOrStdout(), cfg.NoColor),
		Logger:  logger,
		Version: version.String,
	})

	r, err := orch.Run(cmd.Context())
	if err != nil {
		return err
	}

	if cfg.Strict && !report.Summarize(r).AllPassed() {
		return errTestsFailed
	}
	return nil
}

func newLogger(cmd *cobra.Command, cfg config.Config) (zerolog.Logger, io.Closer, error) {
	logger, closer, err := logging.New(logging.Options{
		Verbose: cfg.Verbose,
		Quiet:   cfg.Quiet,
		NoColor: cfg.NoColor,
		LogFile: cfg.LogFile,
		Writer:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return logger, closer, fmt.Errorf("set up logging: %w", err)
	}
	return logger, closer, nil
}
