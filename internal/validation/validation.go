// Package validation checks a written cloud assembly.
//
// Two passes run over the assembly directory:
//   - structural checks on the manifest: stack order and cross-stack imports
//   - cfn-lint-go on every template listed in the manifest
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lex00/cfn-lint-go/pkg/lint"

	eksplatform "github.com/coderco/eks-platform"
	"github.com/coderco/eks-platform/internal/assembly"
)

// CfnLintResult contains the result of running cfn-lint.
type CfnLintResult struct {
	Passed        bool     `json:"passed"`
	Errors        []string `json:"errors"`
	Warnings      []string `json:"warnings"`
	Informational []string `json:"informational"`
}

// TotalIssues returns the total number of issues found.
func (r CfnLintResult) TotalIssues() int {
	return len(r.Errors) + len(r.Warnings) + len(r.Informational)
}

// Options configures ValidateAssembly.
type Options struct {
	// SkipCfnLint runs only the structural checks.
	SkipCfnLint bool
}

// ValidateAssembly validates the assembly written to dir.
//
// The returned error is reserved for an unreadable assembly; findings are
// reported in the result.
func ValidateAssembly(dir string, opts Options) (*eksplatform.ValidateResult, error) {
	manifest, templates, err := assembly.Read(dir)
	if err != nil {
		return nil, err
	}

	result := &eksplatform.ValidateResult{Stacks: len(manifest.Artifacts)}
	for _, tmpl := range templates {
		result.Resources += len(tmpl.Resources)
	}
	result.Errors = append(result.Errors, CheckManifest(manifest, templates)...)

	if !opts.SkipCfnLint {
		for _, artifact := range manifest.Artifacts {
			cfn, err := runCfnLint(filepath.Join(dir, artifact.TemplateFile), extensionResources(templates[artifact.Name]))
			if err != nil {
				return nil, fmt.Errorf("linting %s: %w", artifact.Name, err)
			}
			for _, e := range cfn.Errors {
				result.Errors = append(result.Errors, artifact.Name+": "+e)
			}
			for _, w := range cfn.Warnings {
				result.Warnings = append(result.Warnings, artifact.Name+": "+w)
			}
		}
	}

	result.Success = len(result.Errors) == 0
	return result, nil
}

// CheckManifest reports stacks listed after their dependents and imports of
// exports that no earlier stack produces.
func CheckManifest(manifest *eksplatform.Manifest, templates map[string]*eksplatform.Template) []string {
	var errs []string
	seen := make(map[string]bool)
	exported := make(map[string]bool)

	for _, artifact := range manifest.Artifacts {
		for _, dep := range artifact.Dependencies {
			if !seen[dep] {
				errs = append(errs, fmt.Sprintf("%s: depends on %s, which is not listed before it", artifact.Name, dep))
			}
		}

		tmpl := templates[artifact.Name]
		if tmpl == nil {
			errs = append(errs, fmt.Sprintf("%s: template %s is missing", artifact.Name, artifact.TemplateFile))
			seen[artifact.Name] = true
			continue
		}

		for _, name := range imports(tmpl) {
			if !exported[name] {
				errs = append(errs, fmt.Sprintf("%s: imports %q, which no earlier stack exports", artifact.Name, name))
			}
		}
		for _, out := range tmpl.Outputs {
			if out.Export != nil {
				exported[out.Export.Name] = true
			}
		}
		seen[artifact.Name] = true
	}
	return errs
}

// imports returns the sorted export names read by Fn::ImportValue.
func imports(tmpl *eksplatform.Template) []string {
	names := make(map[string]bool)
	var walk func(v any)
	walk = func(v any) {
		switch val := v.(type) {
		case map[string]any:
			if name, ok := val["Fn::ImportValue"].(string); ok && len(val) == 1 {
				names[name] = true
				return
			}
			for _, elem := range val {
				walk(elem)
			}
		case []any:
			for _, elem := range val {
				walk(elem)
			}
		}
	}
	for _, res := range tmpl.Resources {
		walk(res.Properties)
	}
	for _, out := range tmpl.Outputs {
		walk(out.Value)
	}

	out := make([]string, 0, len(names))
	for name := range names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// extensionResources returns the logical IDs of resources whose type is a
// registry extension rather than an AWS type.
func extensionResources(tmpl *eksplatform.Template) map[string]bool {
	ids := make(map[string]bool)
	if tmpl == nil {
		return ids
	}
	for id, res := range tmpl.Resources {
		if !strings.HasPrefix(res.Type, "AWS::") {
			ids[id] = true
		}
	}
	return ids
}

// RunCfnLint runs cfn-lint-go on the given template file.
func RunCfnLint(templatePath string) (*CfnLintResult, error) {
	return runCfnLint(templatePath, nil)
}

// runCfnLint lints a template. Findings on the resources in extensions are
// informational: the linter's schemas cover AWS types only.
func runCfnLint(templatePath string, extensions map[string]bool) (*CfnLintResult, error) {
	if _, err := os.Stat(templatePath); err != nil {
		return &CfnLintResult{
			Passed: false,
			Errors: []string{fmt.Sprintf("Template file not found: %s", templatePath)},
		}, nil
	}

	linter := lint.New(lint.Options{})
	matches, err := linter.LintFile(templatePath)
	if err != nil {
		return &CfnLintResult{
			Passed: false,
			Errors: []string{fmt.Sprintf("Linter error: %v", err)},
		}, nil
	}

	result := &CfnLintResult{
		Errors:        []string{},
		Warnings:      []string{},
		Informational: []string{},
	}

	for _, match := range matches {
		formatted := formatMatch(match)

		level := match.Level
		if onExtension(match, extensions) {
			level = "Informational"
		}
		switch level {
		case "Error":
			result.Errors = append(result.Errors, formatted)
		case "Warning":
			result.Warnings = append(result.Warnings, formatted)
		default:
			result.Informational = append(result.Informational, formatted)
		}
	}

	// warnings are acceptable
	result.Passed = len(result.Errors) == 0
	return result, nil
}

func onExtension(match lint.Match, extensions map[string]bool) bool {
	path := match.Location.Path
	if len(path) < 2 || fmt.Sprint(path[0]) != "Resources" {
		return false
	}
	return extensions[fmt.Sprint(path[1])]
}

// formatMatch formats a cfn-lint-go match for display.
func formatMatch(match lint.Match) string {
	pathStr := ""
	if len(match.Location.Path) > 0 {
		parts := make([]string, len(match.Location.Path))
		for i, p := range match.Location.Path {
			parts[i] = fmt.Sprintf("%v", p)
		}
		pathStr = strings.Join(parts, "/")
	}

	if pathStr != "" {
		return fmt.Sprintf("%s: %s (at %s)", match.Rule.ID, match.Message, pathStr)
	}
	return fmt.Sprintf("%s: %s", match.Rule.ID, match.Message)
}
