package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	eksplatform "github.com/coderco/eks-platform"
	"github.com/coderco/eks-platform/internal/assembly"
)

func newListCmd(opts *globalOptions) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List declared resources",
		Long: `List synthesizes the platform and displays every declared resource,
stack by stack in deployment order.

Examples:
    eks-platform list
    eks-platform list --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutputFormat(outputFormat); err != nil {
				return err
			}
			asm, err := opts.synthesize(cmd.Context())
			if err != nil {
				return err
			}
			return outputListResult(cmd, listResources(asm), outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func listResources(asm *assembly.Assembly) eksplatform.ListResult {
	result := eksplatform.ListResult{Resources: []eksplatform.ListResource{}}
	for _, st := range asm.Stacks {
		names := make([]string, 0, len(st.Resources))
		for name := range st.Resources {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			res := st.Resources[name]
			deps := append([]string{}, res.Dependencies...)
			deps = append(deps, res.CrossStack...)
			result.Resources = append(result.Resources, eksplatform.ListResource{
				Stack:     st.Name,
				Name:      name,
				Type:      res.Type,
				DependsOn: deps,
			})
		}
	}
	return result
}

func outputListResult(cmd *cobra.Command, result eksplatform.ListResult, format string) error {
	w := cmd.OutOrStdout()
	switch format {
	case "json":
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(data))

	case "text":
		if len(result.Resources) == 0 {
			fmt.Fprintln(w, "No resources found.")
			return nil
		}

		fmt.Fprintf(w, "Declared resources (%d):\n", len(result.Resources))
		stack := ""
		for _, res := range result.Resources {
			if res.Stack != stack {
				stack = res.Stack
				fmt.Fprintf(w, "\n%s:\n", stack)
			}
			fmt.Fprintf(w, "  %s: %s\n", res.Name, res.Type)
		}
	}
	return nil
}
