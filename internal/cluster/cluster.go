package cluster

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/coderco/eks-platform/internal/assembly"
	"github.com/coderco/eks-platform/internal/config"
	"github.com/coderco/eks-platform/internal/naming"
	"github.com/coderco/eks-platform/internal/network"
	"github.com/coderco/eks-platform/internal/render"
	"github.com/coderco/eks-platform/intrinsics"
	"github.com/coderco/eks-platform/resources/eks"
	"github.com/coderco/eks-platform/resources/iam"
	"github.com/coderco/eks-platform/resources/kubernetes"
)

// Logical IDs of the cluster-level resources.
const (
	MasterRoleID       = "ClusterMasterRole"
	ServiceRoleID      = "ClusterRole"
	ClusterID          = "Cluster"
	AccessEntryID      = "ClusterMasterRoleAccessEntry"
	NodeRoleID         = "NodegroupDefaultCapacityRole"
	NodegroupID        = "NodegroupDefaultCapacity"
	PodIdentityAgentID = "PodIdentityAgent"
	OIDCProviderID     = "ClusterOpenIdConnectProvider"
)

// Names fixed by AWS.
const (
	AuthenticationMode    = "API_AND_CONFIG_MAP"
	PodIdentityAgentAddon = "eks-pod-identity-agent"
	KubernetesAPIPolicy   = "KubernetesApiAccess"
	ClusterAdminPolicy    = "AmazonEKSClusterAdminPolicy"
	DefaultAmiType        = "AL2023_x86_64_STANDARD"
	STSAudience           = "sts.amazonaws.com"
	RoleArnAnnotation     = "eks.amazonaws.com/role-arn"
)

var nodeManagedPolicies = []string{
	"AmazonEKSWorkerNodePolicy",
	"AmazonEKS_CNI_Policy",
	"AmazonEC2ContainerRegistryReadOnly",
}

// Cluster is the synthesized cluster unit.
type Cluster struct {
	Stack *assembly.Stack
	Spec  config.ClusterSpec

	MasterRole       *assembly.Declaration
	ServiceRole      *assembly.Declaration
	Cluster          *assembly.Declaration
	AccessEntry      *assembly.Declaration
	NodeRole         *assembly.Declaration
	Nodegroup        *assembly.Declaration
	PodIdentityAgent *assembly.Declaration
	OIDCProvider     *assembly.Declaration

	// Namespaces are the namespace manifests by namespace name.
	Namespaces map[string]*assembly.Declaration
	// Identities are the workload identities by binding name.
	Identities map[string]*Identity

	ClusterName   assembly.Export
	ClusterArn    assembly.Export
	MasterRoleArn assembly.Export
}

// Synthesize declares the cluster described by cfg in stack, placed into
// the subnets of net. hostedZoneID scopes the DNS grants.
func Synthesize(stack *assembly.Stack, cfg *config.Config, net *network.Network, hostedZoneID string) (*Cluster, error) {
	c := &Cluster{
		Stack:      stack,
		Spec:       cfg.Cluster,
		Namespaces: make(map[string]*assembly.Declaration),
		Identities: make(map[string]*Identity),
	}
	account := cfg.Environment.Account

	c.declareMasterRole(account)
	c.declareControlPlane(net)
	c.declareNodegroup(net)

	for _, ns := range cfg.Namespaces() {
		if err := c.declareNamespace(ns); err != nil {
			return nil, err
		}
	}

	if err := c.declareIdentities(cfg, hostedZoneID); err != nil {
		return nil, err
	}

	c.ClusterName = stack.Export("ClusterName", c.Cluster.Ref())
	c.ClusterArn = stack.Export("ClusterArn", c.Cluster.GetAtt("Arn"))
	c.MasterRoleArn = stack.Export("MasterRoleArn", c.MasterRole.GetAtt("Arn"))
	return c, nil
}

// declareMasterRole declares the administrative role, assumable from the
// account and bound to the cluster with admin access.
func (c *Cluster) declareMasterRole(account string) {
	c.MasterRole = c.Stack.Add(MasterRoleID, iam.Role{
		RoleName: c.Spec.AdminRoleName,
		AssumeRolePolicyDocument: intrinsics.NewPolicyDocument(intrinsics.PolicyStatement{
			Effect:    "Allow",
			Principal: intrinsics.AWSPrincipal{intrinsics.AccountRootArn(account)},
			Action:    "sts:AssumeRole",
		}),
		Policies: []any{iam.Role_Policy{
			PolicyName: KubernetesAPIPolicy,
			PolicyDocument: intrinsics.NewPolicyDocument(intrinsics.Allow(
				[]string{"eks:AccessKubernetesApi", "eks:DescribeCluster"},
				intrinsics.EKSClusterArnPattern(account),
			)),
		}},
	})
}

func (c *Cluster) declareControlPlane(net *network.Network) {
	c.ServiceRole = c.Stack.Add(ServiceRoleID, iam.Role{
		AssumeRolePolicyDocument: assumedByService("eks.amazonaws.com"),
		ManagedPolicyArns:        []any{intrinsics.ManagedPolicyArn("AmazonEKSClusterPolicy")},
	})

	var subnetIDs []any
	for _, t := range []config.SubnetType{config.SubnetPublic, config.SubnetPrivateWithEgress} {
		for _, e := range net.SubnetExports(t) {
			subnetIDs = append(subnetIDs, c.Stack.Import(e))
		}
	}

	vpcConfig := &eks.Cluster_ResourcesVpcConfig{SubnetIds: subnetIDs}
	switch c.Spec.Endpoint.Mode {
	case config.EndpointPublic:
		vpcConfig.EndpointPublicAccess = true
		vpcConfig.EndpointPrivateAccess = false
	case config.EndpointPrivate:
		vpcConfig.EndpointPublicAccess = false
		vpcConfig.EndpointPrivateAccess = true
	default:
		vpcConfig.EndpointPublicAccess = true
		vpcConfig.EndpointPrivateAccess = true
	}
	if c.Spec.Endpoint.Mode != config.EndpointPrivate {
		for _, cidr := range c.Spec.Endpoint.PublicCIDRs {
			vpcConfig.PublicAccessCidrs = append(vpcConfig.PublicAccessCidrs, cidr)
		}
	}

	cluster := eks.Cluster{
		Name:               c.Spec.Name,
		Version:            c.Spec.Version,
		RoleArn:            c.ServiceRole.GetAtt("Arn"),
		ResourcesVpcConfig: vpcConfig,
		AccessConfig: &eks.Cluster_AccessConfig{
			AuthenticationMode:                      AuthenticationMode,
			BootstrapClusterCreatorAdminPermissions: true,
		},
	}
	if len(c.Spec.Logging) > 0 {
		var types []any
		for _, t := range c.Spec.Logging {
			types = append(types, eks.Cluster_LoggingTypeConfig{Type_: t})
		}
		cluster.Logging = &eks.Cluster_Logging{ClusterLogging: &eks.Cluster_ClusterLogging{EnabledTypes: types}}
	}
	c.Cluster = c.Stack.Add(ClusterID, cluster)

	c.AccessEntry = c.Stack.Add(AccessEntryID, eks.AccessEntry{
		ClusterName:  c.Cluster.Ref(),
		PrincipalArn: c.MasterRole.GetAtt("Arn"),
		Type:         "STANDARD",
		AccessPolicies: []any{eks.AccessEntry_AccessPolicy{
			PolicyArn:   intrinsics.EKSAccessPolicyArn(ClusterAdminPolicy),
			AccessScope: &eks.AccessEntry_AccessScope{Type_: "cluster"},
		}},
	})
}

// declareNodegroup declares the default managed node group in the private
// subnets, or the public ones when the network has no private subnets.
func (c *Cluster) declareNodegroup(net *network.Network) {
	capacity := c.Spec.Capacity()
	if capacity == 0 {
		return
	}

	var managed []any
	for _, name := range nodeManagedPolicies {
		managed = append(managed, intrinsics.ManagedPolicyArn(name))
	}
	c.NodeRole = c.Stack.Add(NodeRoleID, iam.Role{
		AssumeRolePolicyDocument: assumedByService("ec2.amazonaws.com"),
		ManagedPolicyArns:        managed,
	})

	exports := net.SubnetExports(config.SubnetPrivateWithEgress)
	if len(exports) == 0 {
		exports = net.SubnetExports(config.SubnetPublic)
	}
	var subnets []any
	for _, e := range exports {
		subnets = append(subnets, c.Stack.Import(e))
	}

	c.Nodegroup = c.Stack.Add(NodegroupID, eks.Nodegroup{
		ClusterName:   c.Cluster.Ref(),
		NodeRole:      c.NodeRole.GetAtt("Arn"),
		Subnets:       subnets,
		InstanceTypes: []any{c.Spec.InstanceType},
		AmiType:       DefaultAmiType,
		ScalingConfig: &eks.Nodegroup_ScalingConfig{
			DesiredSize: capacity,
			MinSize:     capacity,
			MaxSize:     capacity,
		},
	})
}

func (c *Cluster) declareNamespace(name string) error {
	ns := &corev1.Namespace{
		TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "Namespace"},
		ObjectMeta: metav1.ObjectMeta{Name: name},
	}
	doc, err := render.Manifest(ns)
	if err != nil {
		return fmt.Errorf("namespace %s: %w", name, err)
	}
	c.Namespaces[name] = c.Stack.Add(NamespaceID(name), kubernetes.Resource{
		ClusterName: c.Cluster.Ref(),
		Manifest:    doc,
	})
	return nil
}

// NamespaceID returns the logical ID of a namespace manifest.
func NamespaceID(namespace string) string {
	return naming.LogicalID(namespace, "Namespace")
}

func assumedByService(service string) intrinsics.PolicyDocument {
	return intrinsics.NewPolicyDocument(intrinsics.PolicyStatement{
		Effect:    "Allow",
		Principal: intrinsics.ServicePrincipal{service},
		Action:    "sts:AssumeRole",
	})
}
