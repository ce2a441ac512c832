package cluster

import (
	"fmt"
	"sort"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/coderco/eks-platform/internal/assembly"
	"github.com/coderco/eks-platform/internal/config"
	"github.com/coderco/eks-platform/internal/naming"
	"github.com/coderco/eks-platform/internal/render"
	"github.com/coderco/eks-platform/intrinsics"
	"github.com/coderco/eks-platform/resources/eks"
	"github.com/coderco/eks-platform/resources/iam"
	"github.com/coderco/eks-platform/resources/kubernetes"
)

// Identity is the synthesized form of a workload-identity binding.
type Identity struct {
	Binding config.WorkloadIdentityBinding

	Role           *assembly.Declaration
	Policy         *assembly.Declaration
	ServiceAccount *assembly.Declaration
	// Association is set for pod-identity bindings.
	Association *assembly.Declaration

	RoleArn assembly.Export
}

// Declarations returns the binding's declarations.
func (id *Identity) Declarations() []*assembly.Declaration {
	decls := []*assembly.Declaration{id.Role, id.Policy, id.ServiceAccount}
	if id.Association != nil {
		decls = append(decls, id.Association)
	}
	return decls
}

func (c *Cluster) declareIdentities(cfg *config.Config, hostedZoneID string) error {
	for _, b := range cfg.Identities {
		switch b.Mode {
		case config.IdentityPodIdentity:
			c.ensurePodIdentityAgent()
		case config.IdentityIRSA:
			c.ensureOIDCProvider()
		}
	}

	resolve := cfg.Resolver(hostedZoneID, c.identityAttribute)
	for _, b := range cfg.Identities {
		id, err := c.declareIdentity(b, resolve)
		if err != nil {
			return fmt.Errorf("identity %s: %w", b.Name, err)
		}
		c.Identities[b.Name] = id
	}
	return nil
}

// identityAttribute resolves identity placeholders inside this stack.
func (c *Cluster) identityAttribute(binding, attr string) (any, error) {
	if attr != config.IdentityRoleArn {
		return nil, fmt.Errorf("unknown identity attribute %q", attr)
	}
	return intrinsics.GetAtt{LogicalName: RoleID(binding), Attribute: "Arn"}, nil
}

func (c *Cluster) declareIdentity(b config.WorkloadIdentityBinding, resolve render.Resolver) (*Identity, error) {
	namespace, ok := c.Namespaces[b.Namespace]
	if !ok {
		return nil, fmt.Errorf("no namespace manifest for %q", b.Namespace)
	}
	id := &Identity{Binding: b}

	id.Role = c.Stack.Add(RoleID(b.Name), iam.Role{
		AssumeRolePolicyDocument: c.trustPolicy(b),
		Description:              fmt.Sprintf("Workload identity of %s/%s", b.Namespace, b.ServiceAccount),
	})

	statements, err := grantStatements(b.Grants, resolve)
	if err != nil {
		return nil, err
	}
	policyID := naming.LogicalID(b.Name, "RoleDefaultPolicy")
	id.Policy = c.Stack.Add(policyID, iam.Policy{
		PolicyName:     policyID,
		PolicyDocument: intrinsics.NewPolicyDocument(statements...),
		Roles:          []any{id.Role.Ref()},
	})

	sa := &corev1.ServiceAccount{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "ServiceAccount"},
		ObjectMeta: metav1.ObjectMeta{
			Name:        b.ServiceAccount,
			Namespace:   b.Namespace,
			Labels:      b.Labels,
			Annotations: b.Annotations,
		},
	}
	var fields []render.Field
	if b.Mode == config.IdentityIRSA {
		fields = append(fields, render.Field{
			Path:  []string{"metadata", "annotations", RoleArnAnnotation},
			Value: id.Role.GetAtt("Arn"),
		})
	}
	doc, err := render.Manifest(sa, fields...)
	if err != nil {
		return nil, err
	}
	id.ServiceAccount = c.Stack.Add(naming.LogicalID(b.Name, "ServiceAccount"), kubernetes.Resource{
		ClusterName: c.Cluster.Ref(),
		Namespace:   b.Namespace,
		Manifest:    doc,
	})

	if b.Mode == config.IdentityPodIdentity {
		id.Association = c.Stack.Add(naming.LogicalID(b.Name, "PodIdentityAssociation"), eks.PodIdentityAssociation{
			ClusterName:    c.Cluster.Ref(),
			Namespace:      b.Namespace,
			ServiceAccount: b.ServiceAccount,
			RoleArn:        id.Role.GetAtt("Arn"),
		})
		id.Association.AddDependency(c.PodIdentityAgent)
	}

	for _, d := range id.Declarations() {
		d.AddDependency(namespace)
	}

	id.RoleArn = c.Stack.Export(naming.LogicalID(b.Name, "RoleArn"), id.Role.GetAtt("Arn"))
	return id, nil
}

// RoleID returns the logical ID of a binding's IAM role.
func RoleID(binding string) string {
	return naming.LogicalID(binding, "Role")
}

// trustPolicy lets the binding's service account assume the role.
func (c *Cluster) trustPolicy(b config.WorkloadIdentityBinding) intrinsics.PolicyDocument {
	if b.Mode == config.IdentityIRSA {
		issuer := c.Spec.OIDCIssuer
		return intrinsics.NewPolicyDocument(intrinsics.PolicyStatement{
			Effect:    "Allow",
			Principal: intrinsics.FederatedPrincipal{c.OIDCProvider.Ref()},
			Action:    "sts:AssumeRoleWithWebIdentity",
			Condition: intrinsics.Json{
				intrinsics.StringEquals: intrinsics.Json{
					issuer + ":sub": fmt.Sprintf("system:serviceaccount:%s:%s", b.Namespace, b.ServiceAccount),
					issuer + ":aud": STSAudience,
				},
			},
		})
	}
	return intrinsics.NewPolicyDocument(intrinsics.PolicyStatement{
		Effect:    "Allow",
		Principal: intrinsics.ServicePrincipal{"pods.eks.amazonaws.com"},
		Action:    []any{"sts:AssumeRole", "sts:TagSession"},
	})
}

// grantStatements converts grants to Allow statements, expanding
// placeholders in resource patterns. Actions are sorted.
func grantStatements(grants []config.PermissionGrant, resolve render.Resolver) ([]any, error) {
	statements := make([]any, 0, len(grants))
	for i, g := range grants {
		resources := make([]any, 0, len(g.Resources))
		for _, r := range g.Resources {
			v, err := render.Expand(r, resolve)
			if err != nil {
				return nil, fmt.Errorf("grants[%d]: %w", i, err)
			}
			resources = append(resources, v)
		}
		actions := append([]string(nil), g.Actions...)
		sort.Strings(actions)

		stmt := intrinsics.Allow(actions, resources...)
		stmt.Sid = g.Sid
		statements = append(statements, stmt)
	}
	return statements, nil
}

func (c *Cluster) ensurePodIdentityAgent() {
	if c.PodIdentityAgent != nil {
		return
	}
	c.PodIdentityAgent = c.Stack.Add(PodIdentityAgentID, eks.Addon{
		AddonName:        PodIdentityAgentAddon,
		ClusterName:      c.Cluster.Ref(),
		ResolveConflicts: "OVERWRITE",
	})
	if c.Nodegroup != nil {
		// the agent is a DaemonSet and only becomes active with nodes
		c.PodIdentityAgent.AddDependency(c.Nodegroup)
	}
}

func (c *Cluster) ensureOIDCProvider() {
	if c.OIDCProvider != nil {
		return
	}
	c.OIDCProvider = c.Stack.Add(OIDCProviderID, iam.OIDCProvider{
		Url:          "https://" + c.Spec.OIDCIssuer,
		ClientIdList: []any{STSAudience},
	})
}
