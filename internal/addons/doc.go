// Package addons synthesizes the add-on unit: one Helm release per add-on
// deployment, applied to the cluster through the AWSQS::Kubernetes::Helm
// registry extension, and the cert-manager ClusterIssuer the releases share.
//
// Values payloads accept Helm --set style keys next to nested maps:
//
//	serviceAccount.create: false
//	serviceAccount.annotations.eks\.amazonaws\.com/role-arn: "{{identity.cert-manager.roleArn}}"
//	extraArgs[0]: --dns01-recursive-nameservers-only
//
// Keys are expanded in sorted order, so a nested map under "serviceAccount"
// is extended, not replaced, by "serviceAccount.create".
package addons
