package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	eksplatform "github.com/coderco/eks-platform"
	"github.com/coderco/eks-platform/internal/assembly"
	"github.com/coderco/eks-platform/internal/config"
	"github.com/coderco/eks-platform/internal/lookup"
	"github.com/coderco/eks-platform/internal/platform"
)

// globalOptions are the flags shared by every synthesizing command.
type globalOptions struct {
	configFile  string
	account     string
	region      string
	contextFile string
	noLookups   bool
	verbosity   int
}

func (o *globalOptions) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&o.configFile, "config", "", "Platform configuration file (default: built-in demo platform)")
	flags.StringVar(&o.account, "account", "", "Target AWS account (overrides config and environment)")
	flags.StringVar(&o.region, "region", "", "Target AWS region (overrides config and environment)")
	flags.StringVar(&o.contextFile, "context", lookup.ContextFile, "Lookup context file")
	flags.BoolVar(&o.noLookups, "no-lookups", false, "Fail instead of querying AWS for values missing from the context")
	flags.CountVarP(&o.verbosity, "verbose", "v", "Increase log verbosity")
}

// loadConfig reads the configuration and resolves the target environment.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if o.configFile != "" {
		var err error
		if cfg, err = config.Load(o.configFile); err != nil {
			return nil, err
		}
	}
	if err := cfg.ResolveEnvironment(
		eksplatform.Environment{Account: o.account, Region: o.region},
		config.FromEnv(os.Getenv),
	); err != nil {
		return nil, err
	}
	return cfg, nil
}

// synthesize builds the assembly. Hosted-zone lookups are served from the
// context file; live results are written back to it.
func (o *globalOptions) synthesize(ctx context.Context) (*assembly.Assembly, error) {
	log := logr.FromContextOrDiscard(ctx)

	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	lookups, err := lookup.LoadContext(o.contextFile)
	if err != nil {
		return nil, err
	}
	cached := &lookup.Cached{Context: lookups}
	if !o.noLookups && cfg.DNS.HostedZoneID == "" {
		provider, err := lookup.NewRoute53ProviderFromConfig(ctx, cfg.Environment.Region)
		if err != nil {
			return nil, err
		}
		cached.Provider = provider
	}

	app, err := platform.Build(ctx, cfg, cached)
	if err != nil {
		if errors.Is(err, lookup.ErrLookupDisabled) {
			return nil, fmt.Errorf("%w (run without --no-lookups to query AWS)", err)
		}
		return nil, err
	}
	if err := lookups.Save(); err != nil {
		return nil, err
	}

	asm, err := app.Synth()
	if err != nil {
		return nil, err
	}
	log.V(1).Info("synthesized", "environment", asm.Environment.String(), "stacks", len(asm.Stacks))
	return asm, nil
}

// checkOutputFormat validates a text/json output flag.
func checkOutputFormat(format string) error {
	switch format {
	case "text", "json":
		return nil
	}
	return fmt.Errorf("unknown format: %s (use 'text' or 'json')", format)
}
