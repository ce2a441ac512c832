// Package cluster declares the EKS cluster unit: the administrative role and
// its access entry, the control plane placed into the imported subnets, the
// default managed node group, namespace manifests, and one IAM role per
// workload-identity binding with its service account.
//
// Every binding resource is ordered after the namespace manifest of its
// namespace with an explicit dependency.
package cluster
