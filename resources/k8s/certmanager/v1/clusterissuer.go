package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// GroupVersion is the API version of the cert-manager types.
const GroupVersion = "cert-manager.io/v1"

// LetsEncryptProduction is the ACME directory of the Let's Encrypt production environment.
const LetsEncryptProduction = "https://acme-v02.api.letsencrypt.org/directory"

// ClusterIssuer represents a cert-manager ClusterIssuer resource.
// +kubebuilder:object:root=true
type ClusterIssuer struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec IssuerSpec `json:"spec"`
}

// NewClusterIssuer returns a ClusterIssuer with its type metadata set.
func NewClusterIssuer(name string) ClusterIssuer {
	return ClusterIssuer{
		TypeMeta:   metav1.TypeMeta{APIVersion: GroupVersion, Kind: "ClusterIssuer"},
		ObjectMeta: metav1.ObjectMeta{Name: name},
	}
}

// IssuerSpec defines how certificates are obtained.
type IssuerSpec struct {
	// ACME configures an ACME server such as Let's Encrypt.
	ACME *ACMEIssuer `json:"acme,omitempty"`
}

// ACMEIssuer registers an account with an ACME server and solves challenges.
type ACMEIssuer struct {
	// Email is the account contact address.
	Email string `json:"email,omitempty"`

	// Server is the ACME directory URL.
	Server string `json:"server"`

	// PrivateKeySecretRef names the secret holding the account key.
	PrivateKeySecretRef LocalObjectReference `json:"privateKeySecretRef"`

	// Solvers lists the challenge solvers, tried in order of selector specificity.
	Solvers []ACMEChallengeSolver `json:"solvers,omitempty"`
}

// LocalObjectReference names an object in the issuer's namespace.
type LocalObjectReference struct {
	Name string `json:"name"`
}

// ACMEChallengeSolver solves challenges for the selected DNS names.
type ACMEChallengeSolver struct {
	Selector *CertificateDNSNameSelector `json:"selector,omitempty"`
	DNS01    *ACMEChallengeSolverDNS01   `json:"dns01,omitempty"`
}

// CertificateDNSNameSelector limits a solver to DNS zones.
type CertificateDNSNameSelector struct {
	DNSZones []string `json:"dnsZones,omitempty"`
}

// ACMEChallengeSolverDNS01 solves DNS-01 challenges.
type ACMEChallengeSolverDNS01 struct {
	Route53 *ACMEIssuerDNS01ProviderRoute53 `json:"route53,omitempty"`
}

// ACMEIssuerDNS01ProviderRoute53 publishes challenge records in Route 53.
// Credentials come from the controller's workload identity.
type ACMEIssuerDNS01ProviderRoute53 struct {
	Region       string `json:"region,omitempty"`
	HostedZoneID string `json:"hostedZoneID,omitempty"`
}
