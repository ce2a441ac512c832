package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	eksplatform "github.com/coderco/eks-platform"
	"github.com/coderco/eks-platform/internal/validation"
)

func newValidateCmd() *cobra.Command {
	var (
		outputFormat string
		skipCfnLint  bool
	)

	cmd := &cobra.Command{
		Use:   "validate [dir]",
		Short: "Validate a written assembly",
		Long: `Validate checks an assembly directory written by synth: stacks must be
listed after the stacks they depend on, every import must name an export of
an earlier stack, and every template is checked with cfn-lint.

Findings on registry extension types are informational only.

Examples:
    eks-platform validate
    eks-platform validate out --skip-cfn-lint`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutputFormat(outputFormat); err != nil {
				return err
			}
			dir := DefaultOutputDir
			if len(args) == 1 {
				dir = args[0]
			}

			result, err := validation.ValidateAssembly(dir, validation.Options{SkipCfnLint: skipCfnLint})
			if err != nil {
				return err
			}
			return outputValidateResult(cmd, result, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&skipCfnLint, "skip-cfn-lint", false, "Run only the structural checks")

	return cmd
}

func outputValidateResult(cmd *cobra.Command, result *eksplatform.ValidateResult, format string) error {
	w := cmd.OutOrStdout()
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))

	case "text":
		for _, e := range result.Errors {
			fmt.Fprintf(w, "error: %s\n", e)
		}
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "warning: %s\n", warning)
		}
		fmt.Fprintf(w, "%d stacks, %d resources\n", result.Stacks, result.Resources)
	}

	if !result.Success {
		return fmt.Errorf("validation failed with %d errors", len(result.Errors))
	}
	return nil
}
