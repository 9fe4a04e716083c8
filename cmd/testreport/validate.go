package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bgricker/testreport/internal/output"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check JSON reports against the report schema",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	invalid := 0
	for _, path := range args {
		if err := validateFile(path); err != nil {
			invalid++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d reports invalid", invalid, len(args))
	}
	return nil
}

func validateFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = output.DecodeJSON(f)
	return err
}
