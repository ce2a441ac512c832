package addons

import (
	"fmt"

	"github.com/coderco/eks-platform/internal/config"
	"github.com/coderco/eks-platform/internal/naming"
	"github.com/coderco/eks-platform/internal/render"
	certmanagerv1 "github.com/coderco/eks-platform/resources/k8s/certmanager/v1"
	"github.com/coderco/eks-platform/resources/kubernetes"
)

// IssuerID returns the logical ID of a ClusterIssuer manifest.
func IssuerID(name string) string {
	return naming.LogicalID(name, "ClusterIssuer")
}

// declareIssuer declares an ACME ClusterIssuer solving DNS-01 challenges
// in the configured zone. It is applied after the release installing the
// cert-manager CRDs.
func (a *Addons) declareIssuer(cfg *config.Config, hostedZoneID string) error {
	spec := cfg.Issuer
	release, ok := a.Releases[spec.Addon]
	if !ok {
		return fmt.Errorf("unknown addon %q", spec.Addon)
	}

	issuer := certmanagerv1.NewClusterIssuer(spec.Name)
	issuer.Spec.ACME = &certmanagerv1.ACMEIssuer{
		Email:               spec.Email,
		Server:              spec.Server,
		PrivateKeySecretRef: certmanagerv1.LocalObjectReference{Name: spec.AccountKeySecret},
		Solvers: []certmanagerv1.ACMEChallengeSolver{{
			Selector: &certmanagerv1.CertificateDNSNameSelector{
				DNSZones: []string{cfg.DNS.DomainName},
			},
			DNS01: &certmanagerv1.ACMEChallengeSolverDNS01{
				Route53: &certmanagerv1.ACMEIssuerDNS01ProviderRoute53{
					// Route 53 is global; its API is served from us-east-1
					Region:       config.DefaultRegion,
					HostedZoneID: hostedZoneID,
				},
			},
		}},
	}

	doc, err := render.Manifest(&issuer)
	if err != nil {
		return err
	}
	a.Issuer = a.Stack.Add(IssuerID(spec.Name), kubernetes.Resource{
		ClusterName: a.clusterName,
		Manifest:    doc,
	})
	a.Issuer.AddDependency(release)
	return nil
}
