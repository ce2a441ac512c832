package config

import (
	"time"

	"github.com/coderco/eks-platform/intrinsics"
	certmanagerv1 "github.com/coderco/eks-platform/resources/k8s/certmanager/v1"
)

// Default values of the literal platform.
const (
	DefaultVPCName           = "Vpc"
	DefaultVPCCIDR           = "10.0.0.0/16"
	DefaultSecurityGroupName = "security-group-demo"
	DefaultClusterName       = "demo-cluster"
	DefaultKubernetesVersion = "1.32"
	DefaultAdminRoleName     = "EksClusterMasterRole"
	DefaultInstanceType      = "m5.large"
	DefaultNodeCount         = 2
	DefaultDomainName        = "cdk-labs.com"
	DefaultRegion            = "us-east-1"

	// DefaultHelmTimeout applies to add-ons that wait without a timeout.
	DefaultHelmTimeout = 5 * time.Minute
)

// Default returns the literal platform: a two-zone VPC, the demo cluster,
// cert-manager and external-dns identities, and four add-ons.
//
// Each call returns a fresh value that the caller may modify.
func Default() *Config {
	return &Config{
		Network: NetworkTopology{
			Name:              DefaultVPCName,
			CIDR:              DefaultVPCCIDR,
			AvailabilityZones: []string{"a", "b"},
			NatGateways:       1,
			Subnets: []SubnetSpec{
				{Name: "public", CIDRMask: 24, Type: SubnetPublic},
				{Name: "private", CIDRMask: 24, Type: SubnetPrivateWithEgress},
			},
			SecurityGroupName: DefaultSecurityGroupName,
			FirewallRules: []FirewallRule{
				{Source: "0.0.0.0/0", Protocol: "tcp", Port: 80},
			},
		},
		Cluster: ClusterSpec{
			Name:    DefaultClusterName,
			Version: DefaultKubernetesVersion,
			Endpoint: EndpointAccess{
				Mode:        EndpointPublicAndPrivate,
				PublicCIDRs: []string{"0.0.0.0/0"},
			},
			AdminRoleName:   DefaultAdminRoleName,
			DefaultCapacity: intPtr(DefaultNodeCount),
			InstanceType:    DefaultInstanceType,
		},
		DNS: DNSZone{DomainName: DefaultDomainName},
		Identities: []WorkloadIdentityBinding{
			dnsIdentity("cert-manager"),
			dnsIdentity("external-dns"),
		},
		Addons: defaultAddons(),
		Issuer: &CertificateIssuer{
			Name:             "issuer",
			Server:           certmanagerv1.LetsEncryptProduction,
			AccountKeySecret: "issuer-account-key",
			Addon:            "cert-manager",
		},
	}
}

// dnsIdentity is a binding for a chart that manages records in the zone.
// The service account is created ahead of the chart, so it carries Helm's
// ownership labels for the release to adopt it.
func dnsIdentity(name string) WorkloadIdentityBinding {
	return WorkloadIdentityBinding{
		Name:           name,
		Namespace:      name,
		ServiceAccount: name,
		Mode:           IdentityPodIdentity,
		Labels: map[string]string{
			"app.kubernetes.io/managed-by": "Helm",
		},
		Annotations: map[string]string{
			"meta.helm.sh/release-name":      name,
			"meta.helm.sh/release-namespace": name,
		},
		Grants: Route53Grants(),
	}
}

// Route53Grants returns the least-privilege grants for DNS-01 solvers and
// record controllers. Only the list actions, which do not support
// resource-level permissions, are granted on every resource.
func Route53Grants() []PermissionGrant {
	return []PermissionGrant{
		{
			Sid:       "ManageZoneRecords",
			Actions:   []string{"route53:ChangeResourceRecordSets", "route53:ListResourceRecordSets"},
			Resources: []string{"{{hostedZoneArn}}"},
		},
		{
			Sid:       "ReadChanges",
			Actions:   []string{"route53:GetChange"},
			Resources: []string{intrinsics.Route53ChangeArnPattern()},
		},
		{
			Sid:       "ListZones",
			Actions:   []string{"route53:ListHostedZones", "route53:ListHostedZonesByName"},
			Resources: []string{"*"},
		},
	}
}

func defaultAddons() []AddonDeployment {
	return []AddonDeployment{
		{
			Name:            "ingress-nginx",
			Chart:           "ingress-nginx",
			Repository:      "https://kubernetes.github.io/ingress-nginx",
			Release:         "ingress-nginx",
			Namespace:       "nginx",
			Version:         "4.13.3",
			CreateNamespace: true,
			Wait:            true,
			Values: map[string]any{
				"installCRDs": true,
			},
		},
		{
			Name:       "cert-manager",
			Chart:      "cert-manager",
			Repository: "https://charts.jetstack.io",
			Release:    "cert-manager",
			Namespace:  "cert-manager",
			Version:    "v1.13.2",
			Wait:       true,
			Values: map[string]any{
				"installCRDs":           true,
				"serviceAccount.create": false,
				// Inert: the chart reuses the identity's service account, which
				// carries the annotation itself under irsa and needs none under
				// pod-identity. Kept so the release values name its role.
				"serviceAccount.annotations.eks\\.amazonaws\\.com/role-arn": "{{identity.cert-manager.roleArn}}",
				"serviceAccount.name":               "{{identity.cert-manager.serviceAccount}}",
				"ingressShim.defaultIssuerKind":     "dns01",
				"ingressShim.defaultIssuerProvider": "route53",
				"extraArgs[0]":                      "--dns01-recursive-nameservers=8.8.8.8:53",
				"extraArgs[1]":                      "--dns01-recursive-nameservers-only",
				"domainFilters":                     []any{"{{domain}}"},
				"region":                            DefaultRegion,
			},
			DependsOn: []string{"namespace:cert-manager"},
		},
		{
			Name:       "external-dns",
			Chart:      "external-dns",
			Repository: "https://kubernetes-sigs.github.io/external-dns/",
			Release:    "external-dns",
			Namespace:  "external-dns",
			Version:    "1.19.0",
			Wait:       true,
			Values: map[string]any{
				"installCRDs":           true,
				"serviceAccount.create": false,
				"serviceAccount.name":   "{{identity.external-dns.serviceAccount}}",
				// same as cert-manager: informational only
				"serviceAccount": map[string]any{
					"annotations": map[string]any{
						"eks.amazonaws.com/role-arn": "{{identity.external-dns.roleArn}}",
					},
				},
				"env": []any{
					map[string]any{"name": "AWS_DEFAULT_REGION", "value": DefaultRegion},
				},
			},
			DependsOn: []string{"namespace:external-dns"},
		},
		{
			Name:            "argocd",
			Chart:           "argo-cd",
			Repository:      "https://argoproj.github.io/argo-helm",
			Release:         "argocd",
			Namespace:       "argocd",
			Version:         "9.1.3",
			CreateNamespace: true,
			Wait:            true,
			Values: map[string]any{
				"installCRDs": true,
				"server": map[string]any{
					// TLS terminates at the ingress controller
					"extraArgs": []any{"--insecure"},
					"service": map[string]any{
						"type": "ClusterIP",
					},
					"ingress": map[string]any{
						"enabled":          true,
						"ingressClassName": "nginx",
						"annotations": map[string]any{
							"nginx.ingress.kubernetes.io/force-ssl-redirect": "false",
							"cert-manager.io/cluster-issuer":                 "issuer",
						},
						"hosts": []any{"argocd.{{domain}}"},
						"tls": []any{
							map[string]any{
								"secretName": "argocd-ingress-tls",
								"hosts":      []any{"argocd.{{domain}}"},
							},
						},
					},
				},
			},
			DependsOn: []string{"addon:ingress-nginx"},
		},
	}
}

func intPtr(v int) *int { return &v }
