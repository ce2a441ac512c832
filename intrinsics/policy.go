package intrinsics

import (
	"encoding/json"
)

// Json is a shorthand for map[string]any.
// Used for inline JSON objects like Condition blocks.
//
// Example:
//
//	Condition: Json{
//	    StringEquals: Json{"oidc.eks.us-east-1.amazonaws.com/id/EXAMPLE:aud": "sts.amazonaws.com"},
//	}
type Json = map[string]any

// PolicyVersion is the IAM policy language version.
const PolicyVersion = "2012-10-17"

// PolicyDocument represents an IAM policy document.
type PolicyDocument struct {
	Version   string `json:"Version,omitempty"`
	Statement []any  `json:"Statement"`
}

// NewPolicyDocument creates a PolicyDocument with the default version.
func NewPolicyDocument(statements ...any) PolicyDocument {
	return PolicyDocument{Version: PolicyVersion, Statement: statements}
}

// PolicyStatement represents an IAM policy statement.
//
// Example:
//
//	PolicyStatement{
//	    Effect:    "Allow",
//	    Principal: ServicePrincipal{"eks.amazonaws.com"},
//	    Action:    []any{"sts:AssumeRole"},
//	}
type PolicyStatement struct {
	Sid       string `json:"Sid,omitempty"`
	Effect    string `json:"Effect"`
	Principal any    `json:"Principal,omitempty"`
	Action    any    `json:"Action,omitempty"`
	Resource  any    `json:"Resource,omitempty"`
	Condition Json   `json:"Condition,omitempty"`
}

// Allow builds an Allow statement over the given actions and resources.
func Allow(actions []string, resources ...any) PolicyStatement {
	acts := make([]any, len(actions))
	for i, a := range actions {
		acts[i] = a
	}
	stmt := PolicyStatement{Effect: "Allow", Action: acts}
	switch len(resources) {
	case 0:
	case 1:
		stmt.Resource = resources[0]
	default:
		stmt.Resource = resources
	}
	return stmt
}

// --- Principal Helpers ---

// ServicePrincipal represents a service principal (e.g., eks.amazonaws.com).
// Serializes to {"Service": ...} format.
type ServicePrincipal []any

// MarshalJSON serializes to {"Service": ...} format.
func (p ServicePrincipal) MarshalJSON() ([]byte, error) {
	if len(p) == 1 {
		return json.Marshal(map[string]any{"Service": p[0]})
	}
	return json.Marshal(map[string]any{"Service": []any(p)})
}

// AWSPrincipal represents an AWS account/role/user principal.
// Serializes to {"AWS": ...} format.
//
//	AWSPrincipal{AccountRootArn("111111111111")}
type AWSPrincipal []any

// MarshalJSON serializes to {"AWS": ...} format.
func (p AWSPrincipal) MarshalJSON() ([]byte, error) {
	if len(p) == 1 {
		return json.Marshal(map[string]any{"AWS": p[0]})
	}
	return json.Marshal(map[string]any{"AWS": []any(p)})
}

// FederatedPrincipal represents a federated identity principal.
// Serializes to {"Federated": ...} format.
type FederatedPrincipal []any

// MarshalJSON serializes to {"Federated": ...} format.
func (p FederatedPrincipal) MarshalJSON() ([]byte, error) {
	if len(p) == 1 {
		return json.Marshal(map[string]any{"Federated": p[0]})
	}
	return json.Marshal(map[string]any{"Federated": []any(p)})
}

// IAM condition operators used by trust policies.
const (
	StringEquals = "StringEquals"
	StringLike   = "StringLike"
	ArnLike      = "ArnLike"
)
