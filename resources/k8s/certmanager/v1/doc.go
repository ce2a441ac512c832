// Package v1 contains the cert-manager resource types applied as cluster manifests.
//
// Only the fields the platform sets are modelled. Objects are rendered to YAML
// with sigs.k8s.io/yaml and applied through AWSQS::Kubernetes::Resource.
//
// Example usage:
//
//	import (
//		cmv1 "github.com/coderco/eks-platform/resources/k8s/certmanager/v1"
//	)
//
//	issuer := cmv1.NewClusterIssuer("issuer")
//	issuer.Spec.ACME = &cmv1.ACMEIssuer{
//		Server:              cmv1.LetsEncryptProduction,
//		PrivateKeySecretRef: cmv1.LocalObjectReference{Name: "issuer-account-key"},
//	}
package v1
