package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bgricker/testreport/internal/output"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Re-render the HTML report from an existing JSON report",
		Args:  cobra.NoArgs,
		RunE:  runRender,
	}
	cmd.Flags().String("input", "", "JSON report to read (defaults to --output-json)")
	return cmd
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	input, err := cmd.Flags().GetString("input")
	if err != nil {
		return fmt.Errorf("parse --input: %w", err)
	}
	if input == "" {
		input = cfg.OutputJSON
	}

	f, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	r, err := output.DecodeJSON(f)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	var buf bytes.Buffer
	if err := output.NewHTML(&buf).Render(r); err != nil {
		return err
	}
	if err := output.WriteArtifact(cfg.OutputHTML, buf.Bytes()); err != nil {
		return fmt.Errorf("write HTML report: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "HTML report written to %s\n", cfg.OutputHTML)
	return nil
}
