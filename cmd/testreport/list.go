package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bgricker/testreport/internal/config"
	"github.com/bgricker/testreport/internal/orchestrator"
	"github.com/bgricker/testreport/internal/output"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the tests a run would execute",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
}

// listEntry is the JSON form of one resolved test.
type listEntry struct {
	Name    string   `json:"name"`
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
	Timeout string   `json:"timeout"`
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, closer, err := newLogger(cmd, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	specs, err := orchestrator.Resolve(cfg, logger)
	if err != nil {
		return err
	}

	switch strings.ToLower(cfg.Format) {
	case config.FormatPretty:
		return output.NewConsole(cmd.OutOrStdout(), cfg.NoColor).ListTests(specs, cfg.TimeoutFor)
	case config.FormatJSON:
		entries := make([]listEntry, 0, len(specs))
		for _, spec := range specs {
			entries = append(entries, listEntry{
				Name:    spec.Name,
				Command: spec.Command,
				Args:    spec.Args,
				Timeout: cfg.TimeoutFor(spec).String(),
			})
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	default:
		return fmt.Errorf("unsupported format %q", cfg.Format)
	}
}
