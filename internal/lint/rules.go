package lint

import (
	"fmt"
	"sort"
	"strings"

	eksplatform "github.com/coderco/eks-platform"
)

// Rule is the interface for lint rules.
type Rule interface {
	ID() string
	Description() string
	Check(stack string, tmpl *eksplatform.Template) []Issue
}

// AllRules returns every rule, ordered by ID.
func AllRules() []Rule {
	return []Rule{
		WildcardResource{},
		OpenIngress{},
		PublicEndpoint{},
		UnpinnedChart{},
		MissingDependency{},
	}
}

const anyIPv4 = "0.0.0.0/0"

// WildcardResource detects Allow statements whose Resource is "*" for
// actions that support resource-level permissions.
//
// List and Describe actions are exempt: most of them cannot be scoped.
type WildcardResource struct{}

func (r WildcardResource) ID() string { return "EKP001" }
func (r WildcardResource) Description() string {
	return "Scope IAM permissions to specific resources instead of \"*\""
}

func (r WildcardResource) Check(stack string, tmpl *eksplatform.Template) []Issue {
	var issues []Issue
	for _, name := range sortedResources(tmpl) {
		res := tmpl.Resources[name]
		var docs []any
		switch res.Type {
		case "AWS::IAM::Policy", "AWS::IAM::ManagedPolicy":
			docs = append(docs, res.Properties["PolicyDocument"])
		case "AWS::IAM::Role":
			policies, _ := res.Properties["Policies"].([]any)
			for _, p := range policies {
				if m, ok := p.(map[string]any); ok {
					docs = append(docs, m["PolicyDocument"])
				}
			}
		default:
			continue
		}

		for _, doc := range docs {
			for _, stmt := range statements(doc) {
				if stmt["Effect"] != "Allow" || !containsString(stmt["Resource"], "*") {
					continue
				}
				if scoped := scopedActions(stmt["Action"]); len(scoped) > 0 {
					issues = append(issues, Issue{
						Stack:    stack,
						Resource: name,
						Severity: SeverityError,
						Message:  fmt.Sprintf("%s granted on every resource", strings.Join(scoped, ", ")),
						Rule:     r.ID(),
					})
				}
			}
		}
	}
	return issues
}

// scopedActions returns the actions that are neither List nor Describe calls.
func scopedActions(action any) []string {
	var scoped []string
	for _, a := range stringsOf(action) {
		verb := a
		if i := strings.Index(a, ":"); i >= 0 {
			verb = a[i+1:]
		}
		if strings.HasPrefix(verb, "List") || strings.HasPrefix(verb, "Describe") {
			continue
		}
		scoped = append(scoped, a)
	}
	return scoped
}

// OpenIngress detects security group rules open to 0.0.0.0/0 on ports
// other than HTTP and HTTPS.
type OpenIngress struct{}

func (r OpenIngress) ID() string { return "EKP002" }
func (r OpenIngress) Description() string {
	return "Restrict internet-facing ingress to ports 80 and 443"
}

func (r OpenIngress) Check(stack string, tmpl *eksplatform.Template) []Issue {
	var issues []Issue
	for _, name := range sortedResources(tmpl) {
		res := tmpl.Resources[name]
		var rules []any
		switch res.Type {
		case "AWS::EC2::SecurityGroup":
			rules, _ = res.Properties["SecurityGroupIngress"].([]any)
		case "AWS::EC2::SecurityGroupIngress":
			rules = []any{res.Properties}
		default:
			continue
		}

		for _, rule := range rules {
			m, ok := rule.(map[string]any)
			if !ok || m["CidrIp"] != anyIPv4 {
				continue
			}
			from, to := toInt(m["FromPort"]), toInt(m["ToPort"])
			if m["IpProtocol"] == "tcp" && from == to && (from == 80 || from == 443) {
				continue
			}
			issues = append(issues, Issue{
				Stack:    stack,
				Resource: name,
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("ingress from %s on %v %d-%d", anyIPv4, m["IpProtocol"], from, to),
				Rule:     r.ID(),
			})
		}
	}
	return issues
}

// PublicEndpoint detects clusters whose public API endpoint accepts every
// source address.
type PublicEndpoint struct{}

func (r PublicEndpoint) ID() string { return "EKP003" }
func (r PublicEndpoint) Description() string {
	return "Restrict the public cluster endpoint to known CIDR ranges"
}

func (r PublicEndpoint) Check(stack string, tmpl *eksplatform.Template) []Issue {
	var issues []Issue
	for _, name := range sortedResources(tmpl) {
		res := tmpl.Resources[name]
		if res.Type != "AWS::EKS::Cluster" {
			continue
		}
		vpc, _ := res.Properties["ResourcesVpcConfig"].(map[string]any)
		// both default to public access from everywhere
		if public, set := vpc["EndpointPublicAccess"]; set && public != true {
			continue
		}
		cidrs, set := vpc["PublicAccessCidrs"]
		if set && !containsString(cidrs, anyIPv4) {
			continue
		}
		issues = append(issues, Issue{
			Stack:    stack,
			Resource: name,
			Severity: SeverityWarning,
			Message:  "public API endpoint is reachable from " + anyIPv4,
			Rule:     r.ID(),
		})
	}
	return issues
}

// UnpinnedChart detects Helm releases that install whatever version is
// latest at apply time.
type UnpinnedChart struct{}

func (r UnpinnedChart) ID() string { return "EKP004" }
func (r UnpinnedChart) Description() string {
	return "Pin every Helm release to a chart version"
}

func (r UnpinnedChart) Check(stack string, tmpl *eksplatform.Template) []Issue {
	var issues []Issue
	for _, name := range sortedResources(tmpl) {
		res := tmpl.Resources[name]
		if res.Type != "AWSQS::Kubernetes::Helm" {
			continue
		}
		if v, ok := res.Properties["Version"]; ok && v != "" {
			continue
		}
		issues = append(issues, Issue{
			Stack:    stack,
			Resource: name,
			Severity: SeverityError,
			Message:  fmt.Sprintf("chart %v has no version", res.Properties["Chart"]),
			Rule:     r.ID(),
		})
	}
	return issues
}

// MissingDependency detects DependsOn entries naming resources the
// template does not declare.
type MissingDependency struct{}

func (r MissingDependency) ID() string { return "EKP005" }
func (r MissingDependency) Description() string {
	return "DependsOn must name resources of the same template"
}

func (r MissingDependency) Check(stack string, tmpl *eksplatform.Template) []Issue {
	var issues []Issue
	for _, name := range sortedResources(tmpl) {
		for _, dep := range tmpl.Resources[name].DependsOn {
			if _, ok := tmpl.Resources[dep]; ok {
				continue
			}
			issues = append(issues, Issue{
				Stack:    stack,
				Resource: name,
				Severity: SeverityError,
				Message:  fmt.Sprintf("depends on undeclared resource %q", dep),
				Rule:     r.ID(),
			})
		}
	}
	return issues
}

func sortedResources(tmpl *eksplatform.Template) []string {
	names := make([]string, 0, len(tmpl.Resources))
	for name := range tmpl.Resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// statements returns the statements of a serialized policy document.
func statements(doc any) []map[string]any {
	m, ok := doc.(map[string]any)
	if !ok {
		return nil
	}
	var out []map[string]any
	switch s := m["Statement"].(type) {
	case []any:
		for _, elem := range s {
			if stmt, ok := elem.(map[string]any); ok {
				out = append(out, stmt)
			}
		}
	case map[string]any:
		out = append(out, s)
	}
	return out
}

// stringsOf returns the string elements of a string or list value.
func stringsOf(v any) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case []any:
		var out []string
		for _, elem := range val {
			if s, ok := elem.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return val
	}
	return nil
}

func containsString(v any, want string) bool {
	for _, s := range stringsOf(v) {
		if s == want {
			return true
		}
	}
	return false
}

func toInt(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}
