package platform

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eksplatform "github.com/coderco/eks-platform"
	"github.com/coderco/eks-platform/internal/addons"
	"github.com/coderco/eks-platform/internal/assembly"
	"github.com/coderco/eks-platform/internal/cluster"
	"github.com/coderco/eks-platform/internal/config"
	"github.com/coderco/eks-platform/internal/lookup"
)

var testZones = lookup.StaticProvider{"cdk-labs.com": "Z0123456789ABC"}

func testConfig(account, region string) *config.Config {
	cfg := config.Default()
	cfg.Environment = eksplatform.Environment{Account: account, Region: region}
	return cfg
}

func synth(t *testing.T, cfg *config.Config) *assembly.Assembly {
	t.Helper()
	app, err := Build(context.Background(), cfg, testZones)
	require.NoError(t, err)
	asm, err := app.Synth()
	require.NoError(t, err)
	return asm
}

func TestBuild_Stacks(t *testing.T) {
	asm := synth(t, testConfig("111111111111", "us-east-1"))

	m := asm.Manifest(assembly.FormatJSON)
	require.Len(t, m.Artifacts, 3)
	assert.Equal(t, NetworkingStack, m.Artifacts[0].Name)
	assert.Empty(t, m.Artifacts[0].Dependencies)
	assert.Equal(t, ClusterStack, m.Artifacts[1].Name)
	assert.Equal(t, []string{NetworkingStack}, m.Artifacts[1].Dependencies)
	assert.Equal(t, AddonsStack, m.Artifacts[2].Name)
	assert.Equal(t, []string{ClusterStack}, m.Artifacts[2].Dependencies)
	assert.Equal(t, "aws://111111111111/us-east-1", m.Artifacts[2].Environment.String())
}

func TestBuild_Deterministic(t *testing.T) {
	for _, format := range []assembly.Format{assembly.FormatJSON, assembly.FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			first, err := synth(t, testConfig("111111111111", "us-east-1")).Files(format)
			require.NoError(t, err)
			second, err := synth(t, testConfig("111111111111", "us-east-1")).Files(format)
			require.NoError(t, err)

			if diff := cmp.Diff(first, second); diff != "" {
				t.Errorf("re-synthesis differs (-first +second):\n%s", diff)
			}
		})
	}
}

func TestBuild_NetworkScenario(t *testing.T) {
	asm := synth(t, testConfig("111111111111", "us-east-1"))
	tmpl := asm.Stack(NetworkingStack).Template

	var vpcs int
	subnets := map[string][]string{}
	for _, res := range tmpl.Resources {
		switch res.Type {
		case "AWS::EC2::VPC":
			vpcs++
			assert.Equal(t, "10.0.0.0/16", res.Properties["CidrBlock"])
		case "AWS::EC2::Subnet":
			kind := "private"
			if res.Properties["MapPublicIpOnLaunch"] == true {
				kind = "public"
			}
			cidr := res.Properties["CidrBlock"].(string)
			assert.Equal(t, "/24", cidr[len(cidr)-3:])
			subnets[kind] = append(subnets[kind], res.Properties["AvailabilityZone"].(string))
		}
	}
	assert.Equal(t, 1, vpcs)
	assert.ElementsMatch(t, []string{"us-east-1a", "us-east-1b"}, subnets["public"])
	assert.ElementsMatch(t, []string{"us-east-1a", "us-east-1b"}, subnets["private"])
}

func TestBuild_OrderingPolicy(t *testing.T) {
	cfg := testConfig("111111111111", "us-east-1")
	p, err := Compose(context.Background(), cfg, testZones)
	require.NoError(t, err)

	for name, id := range p.Cluster.Identities {
		ns := ClusterStack + "/" + cluster.NamespaceID(id.Binding.Namespace)
		for _, d := range id.Declarations() {
			assert.Contains(t, d.DependsOn(), ns, "%s: %s", name, d.ID)
		}
	}
	assert.Contains(t, p.Addons.Releases["argocd"].DependsOn(), AddonsStack+"/"+addons.ReleaseID("ingress-nginx"))
}

// envScoped lists the properties that may differ between environments.
var envScoped = map[string]map[string][]string{
	NetworkingStack: {"AWS::EC2::Subnet": {"AvailabilityZone"}},
	ClusterStack:    {"AWS::IAM::Role": {"AssumeRolePolicyDocument", "Policies"}},
}

func TestBuild_EnvironmentInvariance(t *testing.T) {
	a := synth(t, testConfig("111111111111", "us-east-1"))
	b := synth(t, testConfig("222222222222", "eu-west-1"))
	require.Len(t, b.Stacks, len(a.Stacks))

	for i, st := range a.Stacks {
		other := b.Stacks[i]
		require.Equal(t, st.Name, other.Name)
		if diff := cmp.Diff(literalFields(st), literalFields(other)); diff != "" {
			t.Errorf("%s: literal fields depend on the environment (-a +b):\n%s", st.Name, diff)
		}
	}

	// the environment-scoped fields do follow the environment
	zoneOf := func(asm *assembly.Assembly) any {
		return asm.Stack(NetworkingStack).Template.Resources["VpcPublicSubnet1"].Properties["AvailabilityZone"]
	}
	assert.Equal(t, "us-east-1a", zoneOf(a))
	assert.Equal(t, "eu-west-1a", zoneOf(b))
	assert.NotEqual(t,
		a.Stack(ClusterStack).Template.Resources[cluster.MasterRoleID].Properties["AssumeRolePolicyDocument"],
		b.Stack(ClusterStack).Template.Resources[cluster.MasterRoleID].Properties["AssumeRolePolicyDocument"])
}

// literalFields returns the stack's template without environment-scoped
// properties.
func literalFields(st *assembly.StackTemplate) eksplatform.Template {
	tmpl := *st.Template
	tmpl.Resources = make(map[string]eksplatform.ResourceDef, len(st.Template.Resources))
	for id, res := range st.Template.Resources {
		props := make(map[string]any, len(res.Properties))
		for k, v := range res.Properties {
			props[k] = v
		}
		for _, k := range envScoped[st.Name][res.Type] {
			delete(props, k)
		}
		res.Properties = props
		tmpl.Resources[id] = res
	}
	return tmpl
}

func TestBuild_PinnedHostedZone(t *testing.T) {
	cfg := testConfig("111111111111", "us-east-1")
	cfg.DNS.HostedZoneID = "ZPINNED"

	p, err := Compose(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "ZPINNED", p.HostedZoneID)
}

func TestBuild_Errors(t *testing.T) {
	_, err := Build(context.Background(), testConfig("111111111111", "us-east-1"), nil)
	require.ErrorIs(t, err, lookup.ErrLookupDisabled)

	_, err = Build(context.Background(), testConfig("111111111111", "us-east-1"), lookup.StaticProvider{})
	require.ErrorIs(t, err, lookup.ErrNoHostedZone)

	_, err = Build(context.Background(), testConfig("not-an-account", "us-east-1"), testZones)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
