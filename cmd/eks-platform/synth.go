package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	eksplatform "github.com/coderco/eks-platform"
	"github.com/coderco/eks-platform/internal/assembly"
)

// DefaultOutputDir is where synth writes the assembly.
const DefaultOutputDir = "cdk.out"

func newSynthCmd(opts *globalOptions) *cobra.Command {
	var (
		outputDir    string
		outputFormat string
		jsonResult   bool
	)

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Write the cloud assembly",
		Long: `Synth builds the three stacks and writes one template per stack plus
manifest.json, which lists the stacks in deployment order.

Examples:
    eks-platform synth
    eks-platform synth -o out --format yaml
    eks-platform synth --config platform.yaml --account 111111111111 --region us-east-1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := assembly.ParseFormat(outputFormat)
			if err != nil {
				return err
			}

			result := runSynth(cmd, opts, outputDir, format)
			if jsonResult {
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			}
			return reportBuild(cmd.OutOrStdout(), result, jsonResult)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", DefaultOutputDir, "Assembly output directory")
	cmd.Flags().StringVar(&outputFormat, "format", "json", "Template format: json or yaml")
	cmd.Flags().BoolVar(&jsonResult, "json", false, "Print the result as JSON")

	return cmd
}

func runSynth(cmd *cobra.Command, opts *globalOptions, outputDir string, format assembly.Format) eksplatform.BuildResult {
	asm, err := opts.synthesize(cmd.Context())
	if err != nil {
		return eksplatform.BuildResult{Errors: []string{err.Error()}}
	}
	if err := asm.Write(outputDir, format); err != nil {
		return eksplatform.BuildResult{Errors: []string{err.Error()}}
	}

	result := eksplatform.BuildResult{Success: true, Output: outputDir}
	for _, st := range asm.Stacks {
		result.Stacks = append(result.Stacks, st.Name)
	}
	return result
}

// reportBuild prints a build result. Failures go to stderr.
func reportBuild(w io.Writer, result eksplatform.BuildResult, quiet bool) error {
	if !result.Success {
		for _, e := range result.Errors {
			fmt.Fprintln(os.Stderr, e)
		}
		return fmt.Errorf("synthesis failed")
	}
	if quiet {
		return nil
	}
	fmt.Fprintf(w, "Synthesized %d stacks to %s\n", len(result.Stacks), result.Output)
	for _, name := range result.Stacks {
		fmt.Fprintf(w, "  %s\n", name)
	}
	return nil
}
