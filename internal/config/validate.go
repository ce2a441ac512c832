package config

import (
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"helm.sh/helm/v3/pkg/chartutil"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/coderco/eks-platform/internal/naming"
	"github.com/coderco/eks-platform/internal/render"
)

var (
	accountPattern     = regexp.MustCompile(`^\d{12}$`)
	regionPattern      = regexp.MustCompile(`^[a-z]{2}(-gov|-iso[a-z]?)?-[a-z]+-\d$`)
	clusterNamePattern = regexp.MustCompile(`^[0-9A-Za-z][A-Za-z0-9\-_]*$`)
)

// podIdentityConstraint is the Kubernetes range served by the EKS Pod Identity agent.
const podIdentityConstraint = ">= 1.24"

var clusterLogTypes = map[string]bool{
	"api":               true,
	"audit":             true,
	"authenticator":     true,
	"controllerManager": true,
	"scheduler":         true,
}

var firewallProtocols = map[string]bool{"tcp": true, "udp": true, "icmp": true, "-1": true}

// Validate checks the configuration and returns every problem found, joined.
func (c *Config) Validate() error {
	var errs []error
	errs = append(errs, c.validateEnvironment()...)
	errs = append(errs, c.validateNetwork()...)
	errs = append(errs, c.validateCluster()...)
	errs = append(errs, c.validateDNS()...)
	errs = append(errs, c.validateIdentities()...)
	errs = append(errs, c.validateAddons()...)
	errs = append(errs, c.validateIssuer()...)
	return errors.Join(errs...)
}

func (c *Config) validateEnvironment() []error {
	var errs []error
	if !accountPattern.MatchString(c.Environment.Account) {
		errs = append(errs, fmt.Errorf("environment.account %q must be a 12-digit account ID", c.Environment.Account))
	}
	if !regionPattern.MatchString(c.Environment.Region) {
		errs = append(errs, fmt.Errorf("environment.region %q is not a valid region name", c.Environment.Region))
	}
	return errs
}

func (c *Config) validateNetwork() []error {
	var errs []error
	n := c.Network

	if err := naming.ValidateLogicalID(n.Name); err != nil {
		errs = append(errs, fmt.Errorf("network.name: %w", err))
	}

	prefix, err := netip.ParsePrefix(n.CIDR)
	if err != nil {
		errs = append(errs, fmt.Errorf("network.cidr: %w", err))
	} else if !prefix.Addr().Is4() {
		errs = append(errs, fmt.Errorf("network.cidr %q must be IPv4", n.CIDR))
	}

	if len(n.AvailabilityZones) == 0 {
		errs = append(errs, fmt.Errorf("network.availabilityZones must not be empty"))
	}
	seenZones := make(map[string]bool)
	for _, z := range n.Zones(c.Environment.Region) {
		if seenZones[z] {
			errs = append(errs, fmt.Errorf("network.availabilityZones: duplicate zone %q", z))
		}
		seenZones[z] = true
		suffix, ok := strings.CutPrefix(z, c.Environment.Region)
		if !ok || !isZoneSuffix(suffix) {
			errs = append(errs, fmt.Errorf("network.availabilityZones: zone %q does not belong to region %q", z, c.Environment.Region))
		}
	}

	var public, private int
	seenSubnets := make(map[string]bool)
	for _, s := range n.Subnets {
		if err := naming.ValidateLogicalID(naming.LogicalID(s.Name)); err != nil {
			errs = append(errs, fmt.Errorf("network.subnets: %w", err))
		}
		if seenSubnets[s.Name] {
			errs = append(errs, fmt.Errorf("network.subnets: duplicate subnet group %q", s.Name))
		}
		seenSubnets[s.Name] = true
		switch s.Type {
		case SubnetPublic:
			public++
		case SubnetPrivateWithEgress:
			private++
		default:
			errs = append(errs, fmt.Errorf("network.subnets[%s]: unknown type %q", s.Name, s.Type))
		}
		if err == nil && (s.CIDRMask < prefix.Bits() || s.CIDRMask > 28) {
			errs = append(errs, fmt.Errorf("network.subnets[%s]: mask /%d must be between /%d and /28", s.Name, s.CIDRMask, prefix.Bits()))
		}
	}
	// one subnet per zone per visibility class
	if public > 1 || private > 1 {
		errs = append(errs, fmt.Errorf("network.subnets: at most one group per visibility class, got %d public and %d private", public, private))
	}
	if public == 0 {
		errs = append(errs, fmt.Errorf("network.subnets: a public subnet group is required"))
	}
	if err == nil && len(errs) == 0 {
		if _, err := n.SubnetCIDRs(); err != nil {
			errs = append(errs, fmt.Errorf("network.subnets: %w", err))
		}
	}

	switch {
	case n.NatGateways < 0:
		errs = append(errs, fmt.Errorf("network.natGateways must not be negative"))
	case n.NatGateways > len(n.AvailabilityZones):
		errs = append(errs, fmt.Errorf("network.natGateways (%d) exceeds the zone count (%d)", n.NatGateways, len(n.AvailabilityZones)))
	case private > 0 && n.NatGateways == 0:
		errs = append(errs, fmt.Errorf("network.natGateways: private-with-egress subnets need at least one NAT gateway"))
	}

	if n.SecurityGroupName == "" {
		errs = append(errs, fmt.Errorf("network.securityGroupName must not be empty"))
	}
	for i, r := range n.FirewallRules {
		if _, err := netip.ParsePrefix(r.Source); err != nil {
			errs = append(errs, fmt.Errorf("network.firewallRules[%d].source: %w", i, err))
		}
		if !firewallProtocols[r.Protocol] {
			errs = append(errs, fmt.Errorf("network.firewallRules[%d].protocol %q must be tcp, udp, icmp or -1", i, r.Protocol))
		}
		if r.Port < 0 || r.Port > 65535 {
			errs = append(errs, fmt.Errorf("network.firewallRules[%d].port %d out of range", i, r.Port))
		}
	}
	return errs
}

func (c *Config) validateCluster() []error {
	var errs []error
	cl := c.Cluster

	if len(cl.Name) > 100 || !clusterNamePattern.MatchString(cl.Name) {
		errs = append(errs, fmt.Errorf("cluster.name %q is not a valid EKS cluster name", cl.Name))
	}
	if _, err := semver.NewVersion(cl.Version); err != nil {
		errs = append(errs, fmt.Errorf("cluster.version %q: %w", cl.Version, err))
	}

	switch cl.Endpoint.Mode {
	case EndpointPublic, EndpointPublicAndPrivate:
		for _, cidr := range cl.Endpoint.PublicCIDRs {
			if _, err := netip.ParsePrefix(cidr); err != nil {
				errs = append(errs, fmt.Errorf("cluster.endpoint.publicCidrs: %w", err))
			}
		}
	case EndpointPrivate:
		if len(cl.Endpoint.PublicCIDRs) > 0 {
			errs = append(errs, fmt.Errorf("cluster.endpoint.publicCidrs must be empty for a private endpoint"))
		}
	default:
		errs = append(errs, fmt.Errorf("cluster.endpoint.mode %q must be public, private or public-and-private", cl.Endpoint.Mode))
	}

	if cl.AdminRoleName == "" {
		errs = append(errs, fmt.Errorf("cluster.adminRoleName must not be empty"))
	} else if err := naming.ValidateRoleNameLength(cl.AdminRoleName); err != nil {
		errs = append(errs, fmt.Errorf("cluster.adminRoleName: %w", err))
	}
	if cl.Capacity() < 0 {
		errs = append(errs, fmt.Errorf("cluster.defaultCapacity must not be negative"))
	}
	if cl.Capacity() > 0 && cl.InstanceType == "" {
		errs = append(errs, fmt.Errorf("cluster.instanceType is required with a default capacity"))
	}
	for _, t := range cl.Logging {
		if !clusterLogTypes[t] {
			errs = append(errs, fmt.Errorf("cluster.logging: unknown log type %q", t))
		}
	}
	if cl.OIDCIssuer != "" && strings.Contains(cl.OIDCIssuer, "://") {
		errs = append(errs, fmt.Errorf("cluster.oidcIssuer %q must not include a scheme", cl.OIDCIssuer))
	}
	return errs
}

func (c *Config) validateDNS() []error {
	if c.DNS.DomainName == "" {
		return []error{fmt.Errorf("dns.domainName must not be empty")}
	}
	if msgs := validation.IsDNS1123Subdomain(strings.TrimSuffix(c.DNS.DomainName, ".")); len(msgs) > 0 {
		return []error{fmt.Errorf("dns.domainName %q: %s", c.DNS.DomainName, strings.Join(msgs, "; "))}
	}
	return nil
}

func (c *Config) validateIdentities() []error {
	var errs []error
	seen := make(map[string]bool)
	for _, b := range c.Identities {
		field := fmt.Sprintf("identities[%s]", b.Name)
		if b.Name == "" {
			errs = append(errs, fmt.Errorf("identities: binding name must not be empty"))
		}
		if seen[b.Name] {
			errs = append(errs, fmt.Errorf("identities: duplicate binding %q", b.Name))
		}
		seen[b.Name] = true

		for _, msg := range validation.IsDNS1123Label(b.Namespace) {
			errs = append(errs, fmt.Errorf("%s.namespace %q: %s", field, b.Namespace, msg))
		}
		for _, msg := range validation.IsDNS1123Subdomain(b.ServiceAccount) {
			errs = append(errs, fmt.Errorf("%s.serviceAccount %q: %s", field, b.ServiceAccount, msg))
		}

		switch b.Mode {
		case IdentityPodIdentity:
			if err := checkVersion(c.Cluster.Version, podIdentityConstraint); err != nil {
				errs = append(errs, fmt.Errorf("%s: pod-identity: %w", field, err))
			}
		case IdentityIRSA:
			if c.Cluster.OIDCIssuer == "" {
				errs = append(errs, fmt.Errorf("%s: irsa requires cluster.oidcIssuer", field))
			}
		default:
			errs = append(errs, fmt.Errorf("%s.mode %q must be pod-identity or irsa", field, b.Mode))
		}

		if len(b.Grants) == 0 {
			errs = append(errs, fmt.Errorf("%s.grants must not be empty", field))
		}
		for i, g := range b.Grants {
			if len(g.Actions) == 0 || len(g.Resources) == 0 {
				errs = append(errs, fmt.Errorf("%s.grants[%d] needs actions and resources", field, i))
			}
			for _, r := range g.Resources {
				errs = append(errs, c.checkPlaceholders(fmt.Sprintf("%s.grants[%d]", field, i), r)...)
			}
		}
	}
	return errs
}

func (c *Config) validateAddons() []error {
	var errs []error
	namespaces := make(map[string]bool)
	for _, ns := range c.Namespaces() {
		namespaces[ns] = true
	}
	names := make(map[string]bool)
	for _, a := range c.Addons {
		if names[a.Name] {
			errs = append(errs, fmt.Errorf("addons: duplicate add-on %q", a.Name))
		}
		names[a.Name] = true
	}

	for _, a := range c.Addons {
		field := fmt.Sprintf("addons[%s]", a.Name)
		if err := naming.ValidateLogicalID(naming.LogicalID(a.Name)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
		if a.Chart == "" || a.Repository == "" {
			errs = append(errs, fmt.Errorf("%s: chart and repository are required", field))
		}
		if _, err := url.ParseRequestURI(a.Repository); a.Repository != "" && err != nil {
			errs = append(errs, fmt.Errorf("%s.repository: %w", field, err))
		}
		if err := chartutil.ValidateReleaseName(a.Release); err != nil {
			errs = append(errs, fmt.Errorf("%s.release: %w", field, err))
		}
		for _, msg := range validation.IsDNS1123Label(a.Namespace) {
			errs = append(errs, fmt.Errorf("%s.namespace %q: %s", field, a.Namespace, msg))
		}
		if a.Version == "" {
			errs = append(errs, fmt.Errorf("%s.version: a version pin is required", field))
		} else if _, err := semver.NewVersion(a.Version); err != nil {
			errs = append(errs, fmt.Errorf("%s.version %q: %w", field, a.Version, err))
		}
		if a.Timeout < 0 {
			errs = append(errs, fmt.Errorf("%s.timeout must not be negative", field))
		}
		if !a.CreateNamespace && !namespaces[a.Namespace] {
			errs = append(errs, fmt.Errorf("%s: namespace %q is neither created by the release nor declared as a manifest", field, a.Namespace))
		}

		for _, dep := range a.DependsOn {
			kind, target, ok := ParseDependency(dep)
			switch {
			case !ok:
				errs = append(errs, fmt.Errorf("%s.dependsOn: %q must be addon:<name> or namespace:<namespace>", field, dep))
			case kind == DependsOnAddon && target == a.Name:
				errs = append(errs, fmt.Errorf("%s.dependsOn: add-on depends on itself", field))
			case kind == DependsOnAddon && !names[target]:
				errs = append(errs, fmt.Errorf("%s.dependsOn: unknown add-on %q", field, target))
			case kind == DependsOnNamespace && !namespaces[target]:
				errs = append(errs, fmt.Errorf("%s.dependsOn: no namespace manifest %q", field, target))
			}
		}

		walkStrings(a.Values, func(s string) {
			errs = append(errs, c.checkPlaceholders(field+".values", s)...)
		})
	}
	return errs
}

func (c *Config) validateIssuer() []error {
	if c.Issuer == nil {
		return nil
	}
	var errs []error
	is := c.Issuer
	for _, msg := range validation.IsDNS1123Subdomain(is.Name) {
		errs = append(errs, fmt.Errorf("issuer.name %q: %s", is.Name, msg))
	}
	if _, err := url.ParseRequestURI(is.Server); err != nil {
		errs = append(errs, fmt.Errorf("issuer.server: %w", err))
	}
	if is.AccountKeySecret == "" {
		errs = append(errs, fmt.Errorf("issuer.accountKeySecret must not be empty"))
	}
	if _, ok := c.Addon(is.Addon); !ok {
		errs = append(errs, fmt.Errorf("issuer.addon: unknown add-on %q", is.Addon))
	}
	return errs
}

// checkPlaceholders reports placeholders in s that name nothing.
func (c *Config) checkPlaceholders(field, s string) []error {
	var errs []error
	for _, p := range render.Placeholders(s) {
		if err := c.checkPlaceholder(p); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
	}
	return errs
}

func (c *Config) checkPlaceholder(name string) error {
	switch name {
	case PlaceholderAccount, PlaceholderRegion, PlaceholderDomain, PlaceholderHostedZoneArn,
		PlaceholderStackName, PlaceholderURLSuffix:
		return nil
	}
	binding, attr, ok := ParseIdentityPlaceholder(name)
	if !ok {
		return fmt.Errorf("unknown placeholder {{%s}}", name)
	}
	if _, found := c.Identity(binding); !found {
		return fmt.Errorf("placeholder {{%s}} names unknown identity %q", name, binding)
	}
	if attr != IdentityRoleArn && attr != IdentityServiceAccount {
		return fmt.Errorf("placeholder {{%s}}: unknown identity attribute %q", name, attr)
	}
	return nil
}

func checkVersion(version, constraint string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		// reported by validateCluster
		return nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return err
	}
	if !c.Check(v) {
		return fmt.Errorf("kubernetes %s does not satisfy %s", version, constraint)
	}
	return nil
}

func walkStrings(v any, fn func(string)) {
	switch val := v.(type) {
	case string:
		fn(val)
	case map[string]any:
		for _, elem := range val {
			walkStrings(elem, fn)
		}
	case []any:
		for _, elem := range val {
			walkStrings(elem, fn)
		}
	case []string:
		for _, elem := range val {
			fn(elem)
		}
	}
}
