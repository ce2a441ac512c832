package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"short account", func(c *Config) { c.Environment.Account = "1234" }, "12-digit"},
		{"bad region", func(c *Config) { c.Environment.Region = "mars" }, "not a valid region"},
		{"bad vpc name", func(c *Config) { c.Network.Name = "my-vpc" }, "non alphanumeric"},
		{"bad cidr", func(c *Config) { c.Network.CIDR = "10.0.0.0/33" }, "network.cidr"},
		{"ipv6 cidr", func(c *Config) { c.Network.CIDR = "fd00::/48" }, "must be IPv4"},
		{"no zones", func(c *Config) { c.Network.AvailabilityZones = nil }, "must not be empty"},
		{"foreign zone", func(c *Config) { c.Network.AvailabilityZones = []string{"a", "eu-west-1b"} }, "does not belong to region"},
		{"duplicate zone", func(c *Config) { c.Network.AvailabilityZones = []string{"a", "us-east-1a"} }, "duplicate zone"},
		{"mask wider than vpc", func(c *Config) { c.Network.Subnets[0].CIDRMask = 12 }, "mask /12"},
		{"subnets overflow", func(c *Config) {
			c.Network.CIDR = "10.0.0.0/24"
			c.Network.Subnets[0].CIDRMask = 25
			c.Network.Subnets[1].CIDRMask = 25
		}, "no room"},
		{"unknown subnet type", func(c *Config) { c.Network.Subnets[1].Type = "isolated" }, "unknown type"},
		{"two public groups", func(c *Config) {
			c.Network.Subnets = append(c.Network.Subnets, SubnetSpec{Name: "edge", CIDRMask: 24, Type: SubnetPublic})
		}, "one group per visibility class"},
		{"no public group", func(c *Config) { c.Network.Subnets = c.Network.Subnets[1:] }, "public subnet group is required"},
		{"too many nat", func(c *Config) { c.Network.NatGateways = 3 }, "exceeds the zone count"},
		{"no nat for private", func(c *Config) { c.Network.NatGateways = 0 }, "need at least one NAT"},
		{"bad firewall source", func(c *Config) { c.Network.FirewallRules[0].Source = "anywhere" }, "firewallRules[0].source"},
		{"bad firewall protocol", func(c *Config) { c.Network.FirewallRules[0].Protocol = "sctp" }, "protocol"},
		{"bad firewall port", func(c *Config) { c.Network.FirewallRules[0].Port = 70000 }, "out of range"},
		{"bad cluster name", func(c *Config) { c.Cluster.Name = "-demo" }, "cluster.name"},
		{"bad kubernetes version", func(c *Config) { c.Cluster.Version = "latest" }, "cluster.version"},
		{"bad endpoint mode", func(c *Config) { c.Cluster.Endpoint.Mode = "internal" }, "endpoint.mode"},
		{"private endpoint with cidrs", func(c *Config) { c.Cluster.Endpoint.Mode = EndpointPrivate }, "must be empty for a private endpoint"},
		{"long admin role", func(c *Config) {
			c.Cluster.AdminRoleName = "EksClusterMasterRoleWithAVeryLongNameThatDoesNotFitTheIAMLimitAtAll"
		}, "exceeds the AWS limit"},
		{"negative capacity", func(c *Config) { c.Cluster.DefaultCapacity = intPtr(-1) }, "must not be negative"},
		{"no instance type", func(c *Config) { c.Cluster.InstanceType = "" }, "instanceType is required"},
		{"unknown log type", func(c *Config) { c.Cluster.Logging = []string{"api", "kubelet"} }, `unknown log type "kubelet"`},
		{"oidc issuer with scheme", func(c *Config) { c.Cluster.OIDCIssuer = "https://oidc.example" }, "must not include a scheme"},
		{"empty domain", func(c *Config) { c.DNS.DomainName = "" }, "dns.domainName"},
		{"duplicate binding", func(c *Config) { c.Identities[1].Name = "cert-manager" }, `duplicate binding "cert-manager"`},
		{"bad namespace", func(c *Config) { c.Identities[0].Namespace = "Cert_Manager" }, "namespace"},
		{"irsa without issuer", func(c *Config) { c.Identities[0].Mode = IdentityIRSA }, "irsa requires cluster.oidcIssuer"},
		{"pod identity on old cluster", func(c *Config) { c.Cluster.Version = "1.23" }, "does not satisfy >= 1.24"},
		{"unknown mode", func(c *Config) { c.Identities[0].Mode = "kiam" }, "must be pod-identity or irsa"},
		{"no grants", func(c *Config) { c.Identities[0].Grants = nil }, "grants must not be empty"},
		{"grant without actions", func(c *Config) { c.Identities[0].Grants[0].Actions = nil }, "needs actions and resources"},
		{"unknown grant placeholder", func(c *Config) {
			c.Identities[0].Grants[0].Resources = []string{"{{zone}}"}
		}, "unknown placeholder {{zone}}"},
		{"duplicate addon", func(c *Config) { c.Addons[1].Name = "ingress-nginx" }, `duplicate add-on "ingress-nginx"`},
		{"missing chart", func(c *Config) { c.Addons[0].Chart = "" }, "chart and repository are required"},
		{"bad repository", func(c *Config) { c.Addons[0].Repository = "charts" }, "repository"},
		{"bad release", func(c *Config) { c.Addons[0].Release = "Ingress_Nginx" }, "release"},
		{"missing version", func(c *Config) { c.Addons[0].Version = "" }, "version pin is required"},
		{"bad version", func(c *Config) { c.Addons[0].Version = "stable" }, `version "stable"`},
		{"negative timeout", func(c *Config) { c.Addons[0].Timeout = -1 }, "timeout must not be negative"},
		{"namespace not created", func(c *Config) { c.Addons[0].CreateNamespace = false }, `namespace "nginx" is neither created`},
		{"malformed dependency", func(c *Config) { c.Addons[3].DependsOn = []string{"ingress-nginx"} }, "must be addon:<name>"},
		{"self dependency", func(c *Config) { c.Addons[3].DependsOn = []string{"addon:argocd"} }, "depends on itself"},
		{"unknown addon dependency", func(c *Config) { c.Addons[3].DependsOn = []string{"addon:traefik"} }, `unknown add-on "traefik"`},
		{"unknown namespace dependency", func(c *Config) { c.Addons[3].DependsOn = []string{"namespace:argocd"} }, `no namespace manifest "argocd"`},
		{"unknown identity placeholder", func(c *Config) {
			c.Addons[1].Values["serviceAccount.name"] = "{{identity.cert-mgr.serviceAccount}}"
		}, `unknown identity "cert-mgr"`},
		{"unknown identity attribute", func(c *Config) {
			c.Addons[1].Values["serviceAccount.name"] = "{{identity.cert-manager.name}}"
		}, `unknown identity attribute "name"`},
		{"issuer addon", func(c *Config) { c.Issuer.Addon = "cert-mgr" }, `issuer.addon: unknown add-on "cert-mgr"`},
		{"issuer server", func(c *Config) { c.Issuer.Server = "letsencrypt" }, "issuer.server"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Environment.Account = ""
	cfg.Cluster.Version = "latest"
	cfg.Addons[0].Version = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "environment.account")
	assert.Contains(t, err.Error(), "cluster.version")
	assert.Contains(t, err.Error(), "version pin is required")
}

func TestValidate_IRSAWithIssuer(t *testing.T) {
	cfg := validConfig()
	cfg.Cluster.OIDCIssuer = "oidc.eks.us-east-1.amazonaws.com/id/EXAMPLED539D4633E53DE1B71EXAMPLE"
	cfg.Identities[0].Mode = IdentityIRSA
	require.NoError(t, cfg.Validate())
}

func TestValidate_NoIssuer(t *testing.T) {
	cfg := validConfig()
	cfg.Issuer = nil
	require.NoError(t, cfg.Validate())
}
