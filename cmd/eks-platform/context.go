package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coderco/eks-platform/internal/lookup"
)

func newContextCmd(opts *globalOptions) *cobra.Command {
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "context",
		Short: "List or clear cached lookups",
		Long: `Context lists the lookup results cached in the context file. Synthesis
reads cached values instead of querying AWS; clearing the cache forces
fresh lookups on the next synth.

Examples:
    eks-platform context
    eks-platform context --clear`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lookups, err := lookup.LoadContext(opts.contextFile)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			keys := lookups.Keys()
			if clearAll {
				lookups.Clear()
				if err := lookups.Save(); err != nil {
					return err
				}
				fmt.Fprintf(w, "Cleared %d context values from %s\n", len(keys), lookups.Path())
				return nil
			}

			if len(keys) == 0 {
				fmt.Fprintf(w, "No context values in %s\n", lookups.Path())
				return nil
			}
			for _, key := range keys {
				var v json.RawMessage
				if _, err := lookups.Get(key, &v); err != nil {
					return err
				}
				var compact bytes.Buffer
				if err := json.Compact(&compact, v); err != nil {
					return err
				}
				fmt.Fprintf(w, "%s = %s\n", key, compact.String())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&clearAll, "clear", false, "Remove every cached value")

	return cmd
}
