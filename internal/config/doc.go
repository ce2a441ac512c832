// Package config holds the configuration records of the platform: the network
// topology, the cluster, the DNS zone, workload-identity bindings and add-on
// deployments.
//
// Default returns the literal platform. A YAML file loaded with Load overrides
// any subset of it; unset fields keep their defaults. Validate reports every
// problem at once so that a broken configuration fails before synthesis.
//
// String leaves of grant resources and add-on values may contain placeholders
// resolved during synthesis:
//
//	{{account}}, {{region}}, {{domain}}, {{hostedZoneArn}}
//	{{stackName}}, {{urlSuffix}}
//	{{identity.<binding>.roleArn}}, {{identity.<binding>.serviceAccount}}
package config
