// Package kubernetes contains the AWSQS::Kubernetes registry extension types.
//
// These resources are applied by CloudFormation through the public registry
// extensions, which reach the cluster API on the stack's behalf. Manifest and
// ValueYaml carry a YAML document, either as a literal string or as an Fn::Sub
// when the document embeds deploy-time values such as role ARNs.
package kubernetes

// Resource is an AWSQS::Kubernetes::Resource: a single applied manifest.
type Resource struct {
	ClusterName any `json:"ClusterName,omitempty"`
	Namespace   any `json:"Namespace,omitempty"`
	Manifest    any `json:"Manifest,omitempty"`
	Url         any `json:"Url,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r Resource) ResourceType() string { return "AWSQS::Kubernetes::Resource" }

// Helm is an AWSQS::Kubernetes::Helm chart release.
type Helm struct {
	ClusterID        any            `json:"ClusterID,omitempty"`
	Repository       any            `json:"Repository,omitempty"`
	Chart            any            `json:"Chart,omitempty"`
	Name             any            `json:"Name,omitempty"`
	Namespace        any            `json:"Namespace,omitempty"`
	Version          any            `json:"Version,omitempty"`
	Values           map[string]any `json:"Values,omitempty"`
	ValueYaml        any            `json:"ValueYaml,omitempty"`
	ValueOverrideURL any            `json:"ValueOverrideURL,omitempty"`
	// TimeOut is in minutes.
	TimeOut int `json:"TimeOut,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r Helm) ResourceType() string { return "AWSQS::Kubernetes::Helm" }
