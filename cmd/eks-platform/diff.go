package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	eksplatform "github.com/coderco/eks-platform"
	"github.com/coderco/eks-platform/internal/differ"
)

func newDiffCmd() *cobra.Command {
	var (
		outputFormat string
		ignoreOrder  bool
		exitCode     bool
	)

	cmd := &cobra.Command{
		Use:   "diff <dir1> <dir2>",
		Short: "Compare two assemblies",
		Long: `Diff compares two assembly directories stack by stack and reports added,
removed and modified resources.

Examples:
    eks-platform diff old.out cdk.out
    eks-platform diff old.out cdk.out --ignore-order
    eks-platform diff old.out cdk.out --exit-code`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutputFormat(outputFormat); err != nil {
				return err
			}
			result, err := differ.CompareAssemblies(args[0], args[1], differ.Options{IgnoreOrder: ignoreOrder})
			if err != nil {
				return err
			}
			if err := outputDiffResult(cmd, result, outputFormat); err != nil {
				return err
			}
			if exitCode && !result.Empty() {
				return fmt.Errorf("assemblies differ")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&ignoreOrder, "ignore-order", false, "Ignore array element order")
	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "Fail when the assemblies differ")

	return cmd
}

func outputDiffResult(cmd *cobra.Command, result *differ.Result, format string) error {
	w := cmd.OutOrStdout()
	if format == "json" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	if result.Empty() {
		fmt.Fprintln(w, "No differences found.")
		return nil
	}
	for _, name := range result.StacksAdded {
		fmt.Fprintf(w, "+ stack %s\n", name)
	}
	for _, name := range result.StacksRemoved {
		fmt.Fprintf(w, "- stack %s\n", name)
	}
	printEntries(cmd, "+", result.Diff.Added)
	printEntries(cmd, "-", result.Diff.Removed)
	printEntries(cmd, "~", result.Diff.Modified)
	fmt.Fprintf(w, "\n%d added, %d removed, %d modified\n",
		result.Summary.Added, result.Summary.Removed, result.Summary.Modified)
	return nil
}

func printEntries(cmd *cobra.Command, marker string, entries []eksplatform.DiffEntry) {
	w := cmd.OutOrStdout()
	for _, e := range entries {
		fmt.Fprintf(w, "%s %s/%s (%s)\n", marker, e.Stack, e.Resource, e.Type)
		if len(e.Changes) > 0 {
			fmt.Fprintf(w, "    %s\n", strings.Join(e.Changes, "\n    "))
		}
	}
}
