package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eksplatform "github.com/coderco/eks-platform"
)

var testEnv = eksplatform.Environment{Account: "111111111111", Region: "us-east-1"}

func validConfig() *Config {
	cfg := Default()
	cfg.Environment = testEnv
	return cfg
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "10.0.0.0/16", cfg.Network.CIDR)
	assert.Equal(t, []string{"us-east-1a", "us-east-1b"}, cfg.Network.Zones("us-east-1"))
	assert.Equal(t, 1, cfg.Network.NatGateways)
	assert.Equal(t, "security-group-demo", cfg.Network.SecurityGroupName)
	assert.Equal(t, "demo-cluster", cfg.Cluster.Name)
	assert.Equal(t, "1.32", cfg.Cluster.Version)
	assert.Equal(t, 2, cfg.Cluster.Capacity())
	assert.Equal(t, "EksClusterMasterRole", cfg.Cluster.AdminRoleName)
	assert.Equal(t, "cdk-labs.com", cfg.DNS.DomainName)
	assert.Equal(t, []string{"cert-manager", "external-dns"}, cfg.Namespaces())

	argocd, ok := cfg.Addon("argocd")
	require.True(t, ok)
	assert.Equal(t, "9.1.3", argocd.Version)
	assert.Contains(t, argocd.DependsOn, "addon:ingress-nginx")

	for _, b := range cfg.Identities {
		for _, g := range b.Grants {
			if g.Resources[0] == "*" {
				assert.ElementsMatch(t, []string{"route53:ListHostedZones", "route53:ListHostedZonesByName"}, g.Actions,
					"only list actions may be granted on every resource")
			}
		}
	}
}

func TestDefault_FreshCopy(t *testing.T) {
	a := Default()
	a.Network.AvailabilityZones[0] = "c"
	a.Addons[0].Values["installCRDs"] = false

	b := Default()
	assert.Equal(t, "a", b.Network.AvailabilityZones[0])
	assert.Equal(t, true, b.Addons[0].Values["installCRDs"])
}

func TestDefault_Validates(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestParse_FillsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
environment:
  account: "222222222222"
cluster:
  name: staging
  defaultCapacity: 0
dns:
  domainName: example.org
addons:
  - name: podinfo
    chart: podinfo
    repository: https://stefanprodan.github.io/podinfo
    release: podinfo
    namespace: podinfo
    version: 6.7.1
    createNamespace: true
    wait: true
    timeout: 10m
`))
	require.NoError(t, err)

	assert.Equal(t, "222222222222", cfg.Environment.Account)
	assert.Equal(t, "staging", cfg.Cluster.Name)
	assert.Equal(t, 0, cfg.Cluster.Capacity(), "explicit zero must survive defaults")
	assert.Equal(t, "1.32", cfg.Cluster.Version)
	assert.Equal(t, "example.org", cfg.DNS.DomainName)
	assert.Equal(t, "10.0.0.0/16", cfg.Network.CIDR)
	assert.Len(t, cfg.Identities, 2)
	require.Len(t, cfg.Addons, 1)
	assert.Equal(t, 10*time.Minute, cfg.Addons[0].Timeout)
}

func TestParse_PrivateEndpoint(t *testing.T) {
	cfg, err := Parse([]byte(`
environment:
  account: "111111111111"
  region: us-east-1
cluster:
  endpoint:
    mode: private
`))
	require.NoError(t, err)

	assert.Equal(t, EndpointPrivate, cfg.Cluster.Endpoint.Mode)
	assert.Empty(t, cfg.Cluster.Endpoint.PublicCIDRs)
	require.NoError(t, cfg.Validate())
}

func TestParse_EndpointCIDRs(t *testing.T) {
	cfg, err := Parse([]byte(`
cluster:
  endpoint:
    publicCidrs: [203.0.113.0/24]
`))
	require.NoError(t, err)
	assert.Equal(t, EndpointAccess{
		Mode:        EndpointPublicAndPrivate,
		PublicCIDRs: []string{"203.0.113.0/24"},
	}, cfg.Cluster.Endpoint)

	cfg, err = Parse([]byte("cluster:\n  name: staging\n"))
	require.NoError(t, err)
	assert.Equal(t, Default().Cluster.Endpoint, cfg.Cluster.Endpoint, "untouched without an endpoint block")
}

func TestParse_ClearsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
environment:
  account: "111111111111"
  region: us-east-1
network:
  natGateways: 0
  subnets:
    - name: public
      cidrMask: 24
      type: public
  firewallRules: []
issuer: null
addons:
  - name: ingress-nginx
    chart: ingress-nginx
    repository: https://kubernetes.github.io/ingress-nginx
    release: ingress-nginx
    namespace: nginx
    version: 4.13.3
    createNamespace: true
`))
	require.NoError(t, err)

	assert.Nil(t, cfg.Issuer)
	assert.Empty(t, cfg.Network.FirewallRules)
	assert.NotNil(t, cfg.Network.FirewallRules, "an empty list is kept as set")
	assert.Equal(t, 0, cfg.Network.NatGateways)
	assert.Len(t, cfg.Network.Subnets, 1)
	assert.Equal(t, DefaultSecurityGroupName, cfg.Network.SecurityGroupName)
	assert.Len(t, cfg.Identities, 2)
	require.NoError(t, cfg.Validate())
}

func TestParse_ClearsIdentities(t *testing.T) {
	cfg, err := Parse([]byte("identities: []\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Identities)
	assert.Len(t, cfg.Addons, len(Default().Addons))
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("cluster: [unclosed"))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "platform.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cluster:\n  version: \"1.31\"\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "1.31", cfg.Cluster.Version)
	assert.Equal(t, "demo-cluster", cfg.Cluster.Name)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestMarshal_RoundTrip(t *testing.T) {
	cfg := validConfig()
	data, err := cfg.Marshal()
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg.Cluster, parsed.Cluster)
	assert.Equal(t, cfg.Network, parsed.Network)
	require.NoError(t, parsed.Validate())
}

func TestMarshal_RoundTripClearedFields(t *testing.T) {
	cfg := validConfig()
	cfg.Cluster.Endpoint = EndpointAccess{Mode: EndpointPrivate}
	cfg.Cluster.DefaultCapacity = nil
	cfg.Issuer = nil
	data, err := cfg.Marshal()
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Empty(t, parsed.Cluster.Endpoint.PublicCIDRs)
	assert.Nil(t, parsed.Cluster.DefaultCapacity)
	assert.Nil(t, parsed.Issuer)
	require.NoError(t, parsed.Validate())
}

func TestFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		expected eksplatform.Environment
	}{
		{
			name:     "cdk variables",
			env:      map[string]string{"CDK_DEFAULT_ACCOUNT": "111111111111", "CDK_DEFAULT_REGION": "eu-west-1"},
			expected: eksplatform.Environment{Account: "111111111111", Region: "eu-west-1"},
		},
		{
			name:     "aws fallbacks",
			env:      map[string]string{"AWS_ACCOUNT_ID": "333333333333", "AWS_REGION": "us-west-2"},
			expected: eksplatform.Environment{Account: "333333333333", Region: "us-west-2"},
		},
		{
			name: "cdk wins",
			env: map[string]string{
				"CDK_DEFAULT_REGION": "eu-west-1",
				"AWS_REGION":         "us-west-2",
				"AWS_DEFAULT_REGION": "ap-south-1",
			},
			expected: eksplatform.Environment{Region: "eu-west-1"},
		},
		{
			name:     "empty",
			env:      map[string]string{},
			expected: eksplatform.Environment{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromEnv(func(k string) string { return tt.env[k] })
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveEnvironment(t *testing.T) {
	cfg := Default()
	cfg.Environment.Region = "eu-central-1"

	err := cfg.ResolveEnvironment(
		eksplatform.Environment{Account: "444444444444"},
		eksplatform.Environment{Account: "111111111111", Region: "us-east-1"},
	)
	require.NoError(t, err)

	assert.Equal(t, "444444444444", cfg.Environment.Account, "flag wins")
	assert.Equal(t, "eu-central-1", cfg.Environment.Region, "file wins over env")

	cfg = Default()
	require.NoError(t, cfg.ResolveEnvironment(eksplatform.Environment{}, testEnv))
	assert.Equal(t, testEnv, cfg.Environment, "env fills what nothing else set")
}

func TestParseDependency(t *testing.T) {
	kind, target, ok := ParseDependency("addon:ingress-nginx")
	assert.True(t, ok)
	assert.Equal(t, DependsOnAddon, kind)
	assert.Equal(t, "ingress-nginx", target)

	kind, target, ok = ParseDependency("namespace:cert-manager")
	assert.True(t, ok)
	assert.Equal(t, DependsOnNamespace, kind)
	assert.Equal(t, "cert-manager", target)

	for _, bad := range []string{"ingress-nginx", "addon:", "chart:x"} {
		_, _, ok := ParseDependency(bad)
		assert.False(t, ok, bad)
	}
}

func TestParseIdentityPlaceholder(t *testing.T) {
	binding, attr, ok := ParseIdentityPlaceholder("identity.cert-manager.roleArn")
	assert.True(t, ok)
	assert.Equal(t, "cert-manager", binding)
	assert.Equal(t, "roleArn", attr)

	for _, bad := range []string{"region", "identity.", "identity.x", "identity.x."} {
		_, _, ok := ParseIdentityPlaceholder(bad)
		assert.False(t, ok, bad)
	}
}
