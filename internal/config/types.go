package config

import (
	"sort"
	"strings"
	"time"

	eksplatform "github.com/coderco/eks-platform"
)

// Config is the full platform configuration.
type Config struct {
	Environment eksplatform.Environment   `yaml:"environment"`
	Network     NetworkTopology           `yaml:"network"`
	Cluster     ClusterSpec               `yaml:"cluster"`
	DNS         DNSZone                   `yaml:"dns"`
	Identities  []WorkloadIdentityBinding `yaml:"identities"`
	Addons      []AddonDeployment         `yaml:"addons"`
	Issuer      *CertificateIssuer        `yaml:"issuer"`
}

// SubnetType is the visibility class of a subnet.
type SubnetType string

const (
	SubnetPublic            SubnetType = "public"
	SubnetPrivateWithEgress SubnetType = "private-with-egress"
)

// NetworkTopology describes the VPC.
type NetworkTopology struct {
	// Name is the logical ID of the VPC.
	Name string `yaml:"name"`
	CIDR string `yaml:"cidr"`
	// AvailabilityZones are zone names or suffixes ("a") completed with the region.
	AvailabilityZones []string       `yaml:"availabilityZones"`
	NatGateways       int            `yaml:"natGateways"`
	Subnets           []SubnetSpec   `yaml:"subnets"`
	SecurityGroupName string         `yaml:"securityGroupName"`
	FirewallRules     []FirewallRule `yaml:"firewallRules"`
	// RestrictOutbound drops the allow-all egress rule of the security group.
	RestrictOutbound bool `yaml:"restrictOutbound,omitempty"`
}

// SubnetSpec is one subnet group: one subnet per zone.
type SubnetSpec struct {
	Name     string     `yaml:"name"`
	CIDRMask int        `yaml:"cidrMask"`
	Type     SubnetType `yaml:"type"`
}

// FirewallRule is an ingress rule of the network security group.
type FirewallRule struct {
	Source      string `yaml:"source"`
	Protocol    string `yaml:"protocol"`
	Port        int    `yaml:"port"`
	Description string `yaml:"description,omitempty"`
}

// Zones returns the full availability zone names for region.
func (n NetworkTopology) Zones(region string) []string {
	zones := make([]string, len(n.AvailabilityZones))
	for i, z := range n.AvailabilityZones {
		if isZoneSuffix(z) {
			zones[i] = region + z
		} else {
			zones[i] = z
		}
	}
	return zones
}

// EndpointMode is the visibility of the cluster API endpoint.
type EndpointMode string

const (
	EndpointPublic           EndpointMode = "public"
	EndpointPrivate          EndpointMode = "private"
	EndpointPublicAndPrivate EndpointMode = "public-and-private"
)

// EndpointAccess is the API endpoint policy.
type EndpointAccess struct {
	Mode        EndpointMode `yaml:"mode"`
	PublicCIDRs []string     `yaml:"publicCidrs"`
}

// ClusterSpec describes the EKS cluster.
type ClusterSpec struct {
	Name          string         `yaml:"name"`
	Version       string         `yaml:"version"`
	Endpoint      EndpointAccess `yaml:"endpoint"`
	AdminRoleName string         `yaml:"adminRoleName"`
	// DefaultCapacity is the managed node count; 0 declares no node group.
	DefaultCapacity *int     `yaml:"defaultCapacity"`
	InstanceType    string   `yaml:"instanceType"`
	Logging         []string `yaml:"logging,omitempty"`
	// OIDCIssuer is the issuer host path (no scheme), required by irsa bindings.
	OIDCIssuer string `yaml:"oidcIssuer,omitempty"`
}

// Capacity returns the default node count.
func (c ClusterSpec) Capacity() int {
	if c.DefaultCapacity == nil {
		return 0
	}
	return *c.DefaultCapacity
}

// DNSZone is the public hosted zone add-ons manage records in.
type DNSZone struct {
	DomainName string `yaml:"domainName"`
	// HostedZoneID skips the lookup when set.
	HostedZoneID string `yaml:"hostedZoneId,omitempty"`
}

// IdentityMode is the workload-identity federation mechanism.
type IdentityMode string

const (
	IdentityPodIdentity IdentityMode = "pod-identity"
	IdentityIRSA        IdentityMode = "irsa"
)

// WorkloadIdentityBinding grants a Kubernetes service account an IAM role.
type WorkloadIdentityBinding struct {
	Name           string            `yaml:"name"`
	Namespace      string            `yaml:"namespace"`
	ServiceAccount string            `yaml:"serviceAccount"`
	Mode           IdentityMode      `yaml:"mode"`
	Labels         map[string]string `yaml:"labels,omitempty"`
	Annotations    map[string]string `yaml:"annotations,omitempty"`
	Grants         []PermissionGrant `yaml:"grants"`
}

// PermissionGrant is one allow statement of a binding's policy.
type PermissionGrant struct {
	Sid       string   `yaml:"sid,omitempty"`
	Actions   []string `yaml:"actions"`
	Resources []string `yaml:"resources"`
}

// AddonDeployment is one Helm chart release.
type AddonDeployment struct {
	Name            string         `yaml:"name"`
	Chart           string         `yaml:"chart"`
	Repository      string         `yaml:"repository"`
	Release         string         `yaml:"release"`
	Namespace       string         `yaml:"namespace"`
	Version         string         `yaml:"version"`
	CreateNamespace bool           `yaml:"createNamespace"`
	Wait            bool           `yaml:"wait"`
	Timeout         time.Duration  `yaml:"timeout,omitempty"`
	Values          map[string]any `yaml:"values,omitempty"`
	// DependsOn entries are "addon:<name>" or "namespace:<namespace>".
	DependsOn []string `yaml:"dependsOn,omitempty"`
}

// Dependency kinds of AddonDeployment.DependsOn.
const (
	DependsOnAddon     = "addon"
	DependsOnNamespace = "namespace"
)

// ParseDependency splits a depends-on entry into kind and target.
func ParseDependency(dep string) (kind, target string, ok bool) {
	kind, target, ok = strings.Cut(dep, ":")
	if !ok || target == "" || (kind != DependsOnAddon && kind != DependsOnNamespace) {
		return "", "", false
	}
	return kind, target, true
}

// CertificateIssuer is the cert-manager ClusterIssuer solving ACME DNS-01
// challenges in the configured zone.
type CertificateIssuer struct {
	Name             string `yaml:"name"`
	Server           string `yaml:"server"`
	Email            string `yaml:"email,omitempty"`
	AccountKeySecret string `yaml:"accountKeySecret"`
	// Addon is the cert-manager add-on the issuer is applied after.
	Addon string `yaml:"addon"`
}

// Namespaces returns the namespaces declared as manifests, sorted.
// Every binding namespace gets one.
func (c *Config) Namespaces() []string {
	seen := make(map[string]bool)
	var out []string
	for _, b := range c.Identities {
		if !seen[b.Namespace] {
			seen[b.Namespace] = true
			out = append(out, b.Namespace)
		}
	}
	sort.Strings(out)
	return out
}

// Identity returns the binding with the given name.
func (c *Config) Identity(name string) (WorkloadIdentityBinding, bool) {
	for _, b := range c.Identities {
		if b.Name == name {
			return b, true
		}
	}
	return WorkloadIdentityBinding{}, false
}

// Addon returns the add-on with the given name.
func (c *Config) Addon(name string) (AddonDeployment, bool) {
	for _, a := range c.Addons {
		if a.Name == name {
			return a, true
		}
	}
	return AddonDeployment{}, false
}

func isZoneSuffix(z string) bool {
	return len(z) == 1 && z[0] >= 'a' && z[0] <= 'z'
}
