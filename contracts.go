// Package eksplatform provides the shared types of the eks-platform synthesizer.
//
// The platform is declared in Go as three deployment units (networking,
// cluster, add-ons) and synthesized into a cloud assembly: one CloudFormation
// template per unit plus a manifest recording each unit's environment and
// the order in which an external provisioning tool must apply them.
//
//	app, err := platform.Build(ctx, cfg, zones)
//	asm, err := app.Synth()
//	err = asm.Write("cdk.out")
package eksplatform

import (
	"encoding/json"
	"fmt"
)

// Resource represents a CloudFormation resource.
// All typed resources (ec2.VPC, eks.Cluster, kubernetes.Helm, etc.) implement this interface.
type Resource interface {
	// ResourceType returns the CloudFormation type (e.g., "AWS::EC2::VPC")
	ResourceType() string
}

// AttrRef represents a GetAtt reference to a resource attribute.
//
// When serialized to CloudFormation JSON, AttrRef becomes:
//
//	{"Fn::GetAtt": ["ClusterMasterRole", "Arn"]}
type AttrRef struct {
	// Resource is the logical name of the referenced resource
	Resource string
	// Attribute is the attribute name (e.g., "Arn", "OpenIdConnectIssuerUrl")
	Attribute string
}

// MarshalJSON serializes AttrRef to CloudFormation GetAtt syntax.
func (a AttrRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]string{
		"Fn::GetAtt": {a.Resource, a.Attribute},
	})
}

// IsZero returns true if the AttrRef has not been populated.
func (a AttrRef) IsZero() bool {
	return a.Resource == "" && a.Attribute == ""
}

// Environment is the account and region a stack is deployed into.
type Environment struct {
	Account string `json:"account" yaml:"account"`
	Region  string `json:"region" yaml:"region"`
}

// String renders the environment as aws://<account>/<region>.
func (e Environment) String() string {
	return fmt.Sprintf("aws://%s/%s", e.Account, e.Region)
}

// DeclaredResource describes one declaration of the desired-state graph.
// The template builder and graph generator consume a map of these keyed by logical ID.
type DeclaredResource struct {
	// Name is the logical ID within its stack
	Name string
	// Type is the CloudFormation type (e.g., "AWS::EKS::Cluster")
	Type string
	// Stack is the name of the owning stack
	Stack string
	// Dependencies are logical IDs of same-stack resources this one must follow
	Dependencies []string
	// References are logical IDs of same-stack resources read through Ref/GetAtt
	References []string
	// CrossStack are "<Stack>/<id>" paths of depended-on resources in other stacks
	CrossStack []string
}

// Template represents a CloudFormation template.
type Template struct {
	AWSTemplateFormatVersion string                 `json:"AWSTemplateFormatVersion" yaml:"AWSTemplateFormatVersion"`
	Description              string                 `json:"Description,omitempty" yaml:"Description,omitempty"`
	Parameters               map[string]Parameter   `json:"Parameters,omitempty" yaml:"Parameters,omitempty"`
	Resources                map[string]ResourceDef `json:"Resources" yaml:"Resources"`
	Outputs                  map[string]Output      `json:"Outputs,omitempty" yaml:"Outputs,omitempty"`
}

// ResourceDef is a single resource in the CloudFormation template.
type ResourceDef struct {
	Type       string         `json:"Type" yaml:"Type"`
	Properties map[string]any `json:"Properties,omitempty" yaml:"Properties,omitempty"`
	DependsOn  []string       `json:"DependsOn,omitempty" yaml:"DependsOn,omitempty"`
	Metadata   map[string]any `json:"Metadata,omitempty" yaml:"Metadata,omitempty"`
}

// Parameter is a CloudFormation template parameter.
type Parameter struct {
	Type          string   `json:"Type" yaml:"Type"`
	Description   string   `json:"Description,omitempty" yaml:"Description,omitempty"`
	Default       any      `json:"Default,omitempty" yaml:"Default,omitempty"`
	AllowedValues []string `json:"AllowedValues,omitempty" yaml:"AllowedValues,omitempty"`
}

// Output is a CloudFormation template output.
type Output struct {
	Description string  `json:"Description,omitempty" yaml:"Description,omitempty"`
	Value       any     `json:"Value" yaml:"Value"`
	Export      *Export `json:"Export,omitempty" yaml:"Export,omitempty"`
}

// Export names a cross-stack output.
type Export struct {
	Name string `json:"Name" yaml:"Name"`
}

// StackArtifact is one stack entry of the assembly manifest.
type StackArtifact struct {
	Name         string      `json:"name"`
	Environment  Environment `json:"environment"`
	TemplateFile string      `json:"templateFile"`
	Dependencies []string    `json:"dependencies,omitempty"`
}

// Manifest is the assembly manifest written next to the templates.
// Artifacts are listed in apply order.
type Manifest struct {
	Version   string          `json:"version"`
	Artifacts []StackArtifact `json:"artifacts"`
}

// ManifestVersion is the schema version written to manifest.json.
const ManifestVersion = "1.0.0"

// BuildResult is the JSON output from `eks-platform synth`.
type BuildResult struct {
	Success bool     `json:"success"`
	Output  string   `json:"output,omitempty"`
	Stacks  []string `json:"stacks,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// LintResult is the JSON output from `eks-platform lint`.
type LintResult struct {
	Success bool        `json:"success"`
	Issues  []LintIssue `json:"issues,omitempty"`
}

// LintIssue is a single linting issue.
type LintIssue struct {
	Stack    string `json:"stack"`
	Resource string `json:"resource,omitempty"`
	Severity string `json:"severity"` // "error", "warning", "info"
	Message  string `json:"message"`
	Rule     string `json:"rule"`
}

// ValidateResult is the JSON output from `eks-platform validate`.
type ValidateResult struct {
	Success   bool     `json:"success"`
	Stacks    int      `json:"stacks"`
	Resources int      `json:"resources"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// ListResult is the JSON output from `eks-platform list`.
type ListResult struct {
	Resources []ListResource `json:"resources"`
}

// ListResource is a single resource in the list output.
type ListResource struct {
	Stack     string   `json:"stack"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	DependsOn []string `json:"dependsOn,omitempty"`
}

// DiffEntry is one added, removed or modified resource.
type DiffEntry struct {
	Stack    string   `json:"stack,omitempty"`
	Resource string   `json:"resource"`
	Type     string   `json:"type"`
	Changes  []string `json:"changes,omitempty"`
}

// TemplateDiff groups resource-level differences.
type TemplateDiff struct {
	Added    []DiffEntry `json:"added,omitempty"`
	Removed  []DiffEntry `json:"removed,omitempty"`
	Modified []DiffEntry `json:"modified,omitempty"`
}

// DiffSummary counts differences.
type DiffSummary struct {
	Total    int `json:"total"`
	Added    int `json:"added"`
	Removed  int `json:"removed"`
	Modified int `json:"modified"`
}
