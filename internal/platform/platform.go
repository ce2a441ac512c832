// Package platform composes the networking, cluster and add-on units into
// one app.
package platform

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/coderco/eks-platform/internal/addons"
	"github.com/coderco/eks-platform/internal/assembly"
	"github.com/coderco/eks-platform/internal/cluster"
	"github.com/coderco/eks-platform/internal/config"
	"github.com/coderco/eks-platform/internal/lookup"
	"github.com/coderco/eks-platform/internal/network"
)

// Stack names, in apply order.
const (
	NetworkingStack = "NetworkingStack"
	ClusterStack    = "ClusterStack"
	AddonsStack     = "AddonsStack"
)

// Platform holds the synthesized units of a build.
type Platform struct {
	App          *assembly.App
	HostedZoneID string

	Network *network.Network
	Cluster *cluster.Cluster
	Addons  *addons.Addons
}

// Build validates cfg and declares the three units. zones resolves the
// hosted zone when cfg.DNS.HostedZoneID is empty; it may be nil otherwise.
func Build(ctx context.Context, cfg *config.Config, zones lookup.HostedZoneProvider) (*assembly.App, error) {
	p, err := Compose(ctx, cfg, zones)
	if err != nil {
		return nil, err
	}
	return p.App, nil
}

// Compose is Build returning the units as well as the app.
func Compose(ctx context.Context, cfg *config.Config, zones lookup.HostedZoneProvider) (*Platform, error) {
	log := logr.FromContextOrDiscard(ctx)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	zoneID, err := hostedZoneID(ctx, cfg, zones)
	if err != nil {
		return nil, err
	}

	env := cfg.Environment
	log.V(1).Info("building platform", "environment", env.String(), "hostedZone", zoneID)

	p := &Platform{App: assembly.NewApp(env), HostedZoneID: zoneID}

	p.Network, err = network.Synthesize(
		p.App.NewStack(NetworkingStack, "Network topology: VPC, subnets, gateways and security group"),
		cfg.Network, env)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", NetworkingStack, err)
	}

	p.Cluster, err = cluster.Synthesize(
		p.App.NewStack(ClusterStack, fmt.Sprintf("EKS cluster %s and workload identities", cfg.Cluster.Name)),
		cfg, p.Network, zoneID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ClusterStack, err)
	}

	p.Addons, err = addons.Synthesize(
		p.App.NewStack(AddonsStack, "Helm add-ons of "+cfg.Cluster.Name),
		cfg, p.Cluster, zoneID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", AddonsStack, err)
	}

	for _, s := range p.App.Stacks() {
		log.V(1).Info("declared stack", "stack", s.Name, "resources", len(s.Declarations()), "dependsOn", s.Dependencies())
	}
	return p, nil
}

func hostedZoneID(ctx context.Context, cfg *config.Config, zones lookup.HostedZoneProvider) (string, error) {
	if cfg.DNS.HostedZoneID != "" {
		return cfg.DNS.HostedZoneID, nil
	}
	if zones == nil {
		return "", fmt.Errorf("%w: no provider for hosted zone %s", lookup.ErrLookupDisabled, cfg.DNS.DomainName)
	}
	zone, err := zones.HostedZone(ctx, lookup.HostedZoneQuery{
		Account:    cfg.Environment.Account,
		Region:     cfg.Environment.Region,
		DomainName: cfg.DNS.DomainName,
	})
	if err != nil {
		return "", fmt.Errorf("hosted zone %s: %w", cfg.DNS.DomainName, err)
	}
	return zone.ID, nil
}
