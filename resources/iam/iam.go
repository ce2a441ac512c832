// Package iam contains typed AWS::IAM resources.
package iam

// Role is an AWS::IAM::Role resource.
type Role struct {
	RoleName                 any   `json:"RoleName,omitempty"`
	Description              any   `json:"Description,omitempty"`
	AssumeRolePolicyDocument any   `json:"AssumeRolePolicyDocument,omitempty"`
	ManagedPolicyArns        []any `json:"ManagedPolicyArns,omitempty"`
	Policies                 []any `json:"Policies,omitempty"`
	Path                     any   `json:"Path,omitempty"`
	Tags                     []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r Role) ResourceType() string { return "AWS::IAM::Role" }

// Role_Policy is an inline policy embedded in a role.
type Role_Policy struct {
	PolicyName     any `json:"PolicyName,omitempty"`
	PolicyDocument any `json:"PolicyDocument,omitempty"`
}

// Policy is an AWS::IAM::Policy resource attached to roles.
type Policy struct {
	PolicyName     any   `json:"PolicyName,omitempty"`
	PolicyDocument any   `json:"PolicyDocument,omitempty"`
	Roles          []any `json:"Roles,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r Policy) ResourceType() string { return "AWS::IAM::Policy" }

// OIDCProvider is an AWS::IAM::OIDCProvider resource.
// Its Ref value is the provider ARN.
type OIDCProvider struct {
	Url            any   `json:"Url,omitempty"`
	ClientIdList   []any `json:"ClientIdList,omitempty"`
	ThumbprintList []any `json:"ThumbprintList,omitempty"`
	Tags           []any `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (r OIDCProvider) ResourceType() string { return "AWS::IAM::OIDCProvider" }
