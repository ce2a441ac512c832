package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coderco/eks-platform/internal/graph"
)

func newGraphCmd(opts *globalOptions) *cobra.Command {
	var (
		outputFormat string
		cluster      bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Generate a graph of resource dependencies",
		Long: `Generate a DOT or Mermaid format graph of the desired-state graph.

Explicit dependencies are solid edges, references are blue and
dependencies on another stack's resources are dashed.

The output can be rendered with Graphviz:
    eks-platform graph | dot -Tpng -o deps.png

Or used in GitHub markdown (Mermaid format):
    eks-platform graph -f mermaid

Examples:
    eks-platform graph
    eks-platform graph -c              # cluster by stack
    eks-platform graph -f mermaid      # mermaid format`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var graphFormat graph.Format
			switch outputFormat {
			case "dot":
				graphFormat = graph.FormatDOT
			case "mermaid":
				graphFormat = graph.FormatMermaid
			default:
				return fmt.Errorf("unknown format: %s (use 'dot' or 'mermaid')", outputFormat)
			}

			asm, err := opts.synthesize(cmd.Context())
			if err != nil {
				return err
			}

			gen := &graph.Generator{
				Format:         graphFormat,
				ClusterByStack: cluster,
			}
			return gen.Generate(asm.Stacks, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "dot", "Output format: dot or mermaid")
	cmd.Flags().BoolVarP(&cluster, "cluster", "c", false, "Cluster resources by stack")

	return cmd
}
