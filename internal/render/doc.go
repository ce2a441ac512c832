// Package render turns configuration values into template property values.
//
// Placeholders ("{{region}}", "{{identity.cert-manager.roleArn}}") are
// expanded with Expand. Documents embedded in a template as a single string
// (Helm values, Kubernetes manifests) are rendered with Document: every
// intrinsic leaf becomes a ${Variable} of an Fn::Sub so that deploy-time
// values such as role ARNs reach the document.
package render
