// Package lint checks synthesized templates against platform policy.
//
// Rules:
//
//	EKP001: IAM statements grant resource-scoped actions on "*"
//	EKP002: Security group ingress open to the internet on a non-web port
//	EKP003: Cluster API endpoint public to every address
//	EKP004: Helm release without a version pin
//	EKP005: DependsOn names a resource missing from the template
package lint

import (
	"sort"

	eksplatform "github.com/coderco/eks-platform"
)

// Issue is a single lint finding.
type Issue = eksplatform.LintIssue

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Result contains the outcome of linting.
type Result struct {
	// Success is false when any issue has error severity.
	Success bool
	Issues  []Issue
}

// Options configures the linter.
type Options struct {
	// Rules to enable. If empty, all rules are enabled.
	EnabledRules []string
	// DisabledRules are skipped even when enabled.
	DisabledRules []string
}

// LintTemplate lints one stack's template.
func LintTemplate(stack string, tmpl *eksplatform.Template, opts Options) Result {
	var issues []Issue
	for _, rule := range getRules(opts) {
		issues = append(issues, rule.Check(stack, tmpl)...)
	}
	sortIssues(issues)
	return newResult(issues)
}

// LintTemplates lints every template, keyed by stack name.
func LintTemplates(templates map[string]*eksplatform.Template, opts Options) Result {
	stacks := make([]string, 0, len(templates))
	for name := range templates {
		stacks = append(stacks, name)
	}
	sort.Strings(stacks)

	var issues []Issue
	for _, name := range stacks {
		issues = append(issues, LintTemplate(name, templates[name], opts).Issues...)
	}
	return newResult(issues)
}

func newResult(issues []Issue) Result {
	success := true
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			success = false
			break
		}
	}
	return Result{Success: success, Issues: issues}
}

func sortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Resource != issues[j].Resource {
			return issues[i].Resource < issues[j].Resource
		}
		return issues[i].Rule < issues[j].Rule
	})
}

// getRules returns the rules to use based on options.
func getRules(opts Options) []Rule {
	all := AllRules()

	enabled := make(map[string]bool)
	for _, id := range opts.EnabledRules {
		enabled[id] = true
	}
	disabled := make(map[string]bool)
	for _, id := range opts.DisabledRules {
		disabled[id] = true
	}

	var filtered []Rule
	for _, r := range all {
		if disabled[r.ID()] {
			continue
		}
		if len(enabled) > 0 && !enabled[r.ID()] {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}
