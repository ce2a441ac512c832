package addons

import (
	"fmt"
	"math"
	"time"

	"github.com/coderco/eks-platform/internal/assembly"
	"github.com/coderco/eks-platform/internal/cluster"
	"github.com/coderco/eks-platform/internal/config"
	"github.com/coderco/eks-platform/internal/naming"
	"github.com/coderco/eks-platform/internal/render"
	"github.com/coderco/eks-platform/resources/kubernetes"
)

// ReleaseMetadataKey is the resource metadata key holding the release
// options the Helm extension has no property for.
const ReleaseMetadataKey = "eks-platform:release"

// Addons is the synthesized add-on unit.
type Addons struct {
	Stack *assembly.Stack

	// Releases are the Helm releases by add-on name.
	Releases map[string]*assembly.Declaration
	// Issuer is the ClusterIssuer manifest, if one is configured.
	Issuer *assembly.Declaration

	cluster     *cluster.Cluster
	clusterName any
}

// Synthesize declares the add-ons of cfg in stack, installed into the
// cluster c. hostedZoneID is the ID of the configured DNS zone.
func Synthesize(stack *assembly.Stack, cfg *config.Config, c *cluster.Cluster, hostedZoneID string) (*Addons, error) {
	a := &Addons{
		Stack:       stack,
		Releases:    make(map[string]*assembly.Declaration),
		cluster:     c,
		clusterName: stack.Import(c.ClusterName),
	}

	resolve := cfg.Resolver(hostedZoneID, a.identityAttribute)
	for _, addon := range cfg.Addons {
		release, err := a.declareRelease(addon, resolve)
		if err != nil {
			return nil, fmt.Errorf("addon %s: %w", addon.Name, err)
		}
		a.Releases[addon.Name] = release
	}

	// releases may depend on add-ons declared after them
	for _, addon := range cfg.Addons {
		if err := a.addDependencies(addon); err != nil {
			return nil, fmt.Errorf("addon %s: %w", addon.Name, err)
		}
	}

	if cfg.Issuer != nil {
		if err := a.declareIssuer(cfg, hostedZoneID); err != nil {
			return nil, fmt.Errorf("issuer %s: %w", cfg.Issuer.Name, err)
		}
	}
	return a, nil
}

// identityAttribute resolves identity placeholders through the cluster
// unit's exports.
func (a *Addons) identityAttribute(binding, attr string) (any, error) {
	id, ok := a.cluster.Identities[binding]
	if !ok {
		return nil, fmt.Errorf("identity %q is not declared in %s", binding, a.cluster.Stack.Name)
	}
	if attr != config.IdentityRoleArn {
		return nil, fmt.Errorf("unknown identity attribute %q", attr)
	}
	return a.Stack.Import(id.RoleArn), nil
}

func (a *Addons) declareRelease(addon config.AddonDeployment, resolve render.Resolver) (*assembly.Declaration, error) {
	values, err := Values(addon.Values, resolve)
	if err != nil {
		return nil, err
	}
	doc, err := render.Document(values)
	if err != nil {
		return nil, err
	}

	helm := kubernetes.Helm{
		ClusterID:  a.clusterName,
		Repository: addon.Repository,
		Chart:      addon.Chart,
		Name:       addon.Release,
		Namespace:  addon.Namespace,
		Version:    addon.Version,
	}
	if len(values) > 0 {
		helm.ValueYaml = doc
	}
	if addon.Wait {
		helm.TimeOut = timeoutMinutes(addon.Timeout)
	}

	release := a.Stack.Add(ReleaseID(addon.Name), helm)
	release.SetMetadata(ReleaseMetadataKey, map[string]any{
		"createNamespace": addon.CreateNamespace,
		"wait":            addon.Wait,
	})
	if a.cluster.Nodegroup != nil {
		release.AddDependency(a.cluster.Nodegroup)
	}
	return release, nil
}

func (a *Addons) addDependencies(addon config.AddonDeployment) error {
	release := a.Releases[addon.Name]
	for _, dep := range addon.DependsOn {
		kind, target, ok := config.ParseDependency(dep)
		if !ok {
			return fmt.Errorf("invalid dependency %q", dep)
		}
		switch kind {
		case config.DependsOnAddon:
			other, ok := a.Releases[target]
			if !ok {
				return fmt.Errorf("dependency on unknown addon %q", target)
			}
			release.AddDependency(other)
		case config.DependsOnNamespace:
			ns, ok := a.cluster.Namespaces[target]
			if !ok {
				return fmt.Errorf("no namespace manifest for %q", target)
			}
			release.AddDependency(ns)
		}
	}
	return nil
}

// ReleaseID returns the logical ID of an add-on's Helm release.
func ReleaseID(addon string) string {
	return naming.LogicalID(addon, "Chart")
}

// timeoutMinutes rounds the release timeout up to whole minutes.
func timeoutMinutes(d time.Duration) int {
	if d <= 0 {
		d = config.DefaultHelmTimeout
	}
	return int(math.Ceil(d.Minutes()))
}
