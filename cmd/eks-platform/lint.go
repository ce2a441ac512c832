package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	eksplatform "github.com/coderco/eks-platform"
	"github.com/coderco/eks-platform/internal/lint"
)

func newLintCmd(opts *globalOptions) *cobra.Command {
	var (
		outputFormat string
		enable       []string
		disable      []string
	)

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check synthesized templates against platform policy",
		Long: `Lint synthesizes the platform and checks every template.

Rules:
    EKP001: IAM statements grant resource-scoped actions on "*"
    EKP002: Security group ingress open to the internet on a non-web port
    EKP003: Cluster API endpoint public to every address
    EKP004: Helm release without a version pin
    EKP005: DependsOn names a resource missing from the template

Examples:
    eks-platform lint
    eks-platform lint --disable EKP003
    eks-platform lint --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutputFormat(outputFormat); err != nil {
				return err
			}
			asm, err := opts.synthesize(cmd.Context())
			if err != nil {
				return err
			}

			templates := make(map[string]*eksplatform.Template, len(asm.Stacks))
			for _, st := range asm.Stacks {
				templates[st.Name] = st.Template
			}
			result := lint.LintTemplates(templates, lint.Options{EnabledRules: enable, DisabledRules: disable})
			return outputLintResult(cmd, result, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringSliceVar(&enable, "enable", nil, "Run only these rules")
	cmd.Flags().StringSliceVar(&disable, "disable", nil, "Skip these rules")

	return cmd
}

func outputLintResult(cmd *cobra.Command, result lint.Result, format string) error {
	w := cmd.OutOrStdout()
	switch format {
	case "json":
		data, err := json.MarshalIndent(eksplatform.LintResult{Success: result.Success, Issues: result.Issues}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))

	case "text":
		if len(result.Issues) == 0 {
			fmt.Fprintln(w, "No issues found.")
		}
		for _, issue := range result.Issues {
			fmt.Fprintf(w, "%s/%s: %s: %s [%s]\n", issue.Stack, issue.Resource, issue.Severity, issue.Message, issue.Rule)
		}
	}

	if !result.Success {
		return fmt.Errorf("lint found errors")
	}
	return nil
}
