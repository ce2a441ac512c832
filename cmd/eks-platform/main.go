// Command eks-platform synthesizes the CloudFormation cloud assembly of an
// EKS platform: a network stack, a cluster stack and an add-ons stack.
//
// Usage:
//
//	eks-platform synth -o cdk.out       Write the assembly
//	eks-platform lint                   Check templates against platform policy
//	eks-platform validate cdk.out       Validate a written assembly
//	eks-platform version                Show version
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "eks-platform",
		Short: "Synthesize the CloudFormation assembly of an EKS platform",
		Long: `eks-platform turns a platform configuration into three CloudFormation
templates deployed in order:

    NetworkingStack   VPC, subnets, gateways and the shared security group
    ClusterStack      EKS control plane, node group and workload identities
    AddonsStack       Helm releases and the certificate issuer

Without a configuration file the built-in demo platform is synthesized:

    eks-platform synth -o cdk.out`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), opts.verbosity))
		},
	}

	opts.register(rootCmd)

	rootCmd.AddCommand(
		newSynthCmd(opts),
		newListCmd(opts),
		newLintCmd(opts),
		newValidateCmd(),
		newGraphCmd(opts),
		newDiffCmd(),
		newWatchCmd(opts),
		newPublishCmd(),
		newContextCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "eks-platform %s\n", getVersion())
		},
	}
}
