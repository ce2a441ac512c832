// Package template builds a CloudFormation template from the declarations of one stack.
package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	eksplatform "github.com/coderco/eks-platform"
	"github.com/coderco/eks-platform/internal/serialize"
)

// FormatVersion is the only CloudFormation template format version.
const FormatVersion = "2010-09-09"

var (
	// ErrCycle is returned when same-stack dependencies form a cycle.
	ErrCycle = errors.New("circular dependency detected")

	// ErrDanglingReference is returned when a Ref or GetAtt names an undeclared resource.
	ErrDanglingReference = errors.New("reference to undeclared resource")

	// ErrUnknownDependency is returned when a depends-on edge names an undeclared resource.
	ErrUnknownDependency = errors.New("dependency on undeclared resource")
)

// Builder constructs a CloudFormation template from declared resources.
type Builder struct {
	stack       string
	description string
	resources   map[string]eksplatform.DeclaredResource
	values      map[string]any
	metadata    map[string]map[string]any
	outputs     map[string]eksplatform.Output
	order       []string
}

// NewBuilder creates a template builder for the resources of one stack.
func NewBuilder(stack string, resources map[string]eksplatform.DeclaredResource) *Builder {
	return &Builder{
		stack:     stack,
		resources: resources,
		values:    make(map[string]any),
		metadata:  make(map[string]map[string]any),
		outputs:   make(map[string]eksplatform.Output),
	}
}

// SetDescription sets the template description.
func (b *Builder) SetDescription(description string) {
	b.description = description
}

// SetValue associates a resource value with its logical name.
func (b *Builder) SetValue(name string, value any) {
	b.values[name] = value
}

// SetMetadata sets the Metadata section of a resource.
func (b *Builder) SetMetadata(name string, metadata map[string]any) {
	b.metadata[name] = metadata
}

// SetOutput adds an entry to the Outputs section.
func (b *Builder) SetOutput(name string, output eksplatform.Output) {
	b.outputs[name] = output
}

// Resources returns the declared resources. After Build, References lists the
// same-stack resources each one reads through Ref, GetAtt or Sub.
func (b *Builder) Resources() map[string]eksplatform.DeclaredResource {
	return b.resources
}

// Order returns the dependency order computed by the last successful Build.
func (b *Builder) Order() []string {
	return b.order
}

// Build constructs the CloudFormation template.
func (b *Builder) Build() (*eksplatform.Template, error) {
	template := &eksplatform.Template{
		AWSTemplateFormatVersion: FormatVersion,
		Description:              b.description,
		Resources:                make(map[string]eksplatform.ResourceDef),
	}

	var errs []error
	for _, name := range sortedNames(b.resources) {
		res := b.resources[name]

		props, err := b.serializeResource(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		resourceType := res.Type
		if resourceType == "" {
			if typed, ok := b.values[name].(eksplatform.Resource); ok {
				resourceType = typed.ResourceType()
			}
		}
		if resourceType == "" {
			errs = append(errs, fmt.Errorf("%s/%s: unknown resource type", b.stack, name))
			continue
		}

		refs, err := b.references(name, props)
		if err != nil {
			errs = append(errs, err)
		}
		res.Type = resourceType
		res.References = refs

		for _, dep := range res.Dependencies {
			if _, exists := b.resources[dep]; !exists {
				errs = append(errs, fmt.Errorf("%s/%s: %w %q", b.stack, name, ErrUnknownDependency, dep))
			}
		}
		b.resources[name] = res

		def := eksplatform.ResourceDef{
			Type:      resourceType,
			DependsOn: dedupe(res.Dependencies),
			Metadata:  b.metadata[name],
		}
		if len(props) > 0 {
			def.Properties = props
		}
		template.Resources[name] = def
	}

	if len(b.outputs) > 0 {
		template.Outputs = make(map[string]eksplatform.Output)
		for _, name := range sortedNames(b.outputs) {
			output := b.outputs[name]
			value, err := serialize.Value(output.Value)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: output %s: %w", b.stack, name, err))
				continue
			}
			if _, err := b.references("Outputs."+name, value); err != nil {
				errs = append(errs, err)
			}
			output.Value = value
			template.Outputs[name] = output
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	order, err := b.topologicalSort()
	if err != nil {
		return nil, err
	}
	b.order = order

	return template, nil
}

// serializeResource converts a resource value to CloudFormation properties.
func (b *Builder) serializeResource(name string) (map[string]any, error) {
	value, ok := b.values[name]
	if !ok {
		return nil, fmt.Errorf("%s/%s: no value set", b.stack, name)
	}

	if m, ok := value.(map[string]any); ok {
		out, err := serialize.Value(m)
		if err != nil {
			return nil, fmt.Errorf("serializing %s: %w", name, err)
		}
		props, _ := out.(map[string]any)
		return props, nil
	}

	props, err := serialize.Resource(value)
	if err != nil {
		return nil, fmt.Errorf("serializing %s: %w", name, err)
	}
	return props, nil
}

// references returns the same-stack logical IDs read by value, failing on
// names that are not declared in the stack.
func (b *Builder) references(name string, value any) ([]string, error) {
	found := make(map[string]bool)
	collectReferences(value, found)

	var refs []string
	var errs []error
	for _, ref := range sortedNames(found) {
		if strings.HasPrefix(ref, "AWS::") {
			continue
		}
		if _, exists := b.resources[ref]; !exists {
			errs = append(errs, fmt.Errorf("%s/%s: %w %q", b.stack, name, ErrDanglingReference, ref))
			continue
		}
		refs = append(refs, ref)
	}
	return refs, errors.Join(errs...)
}

var subVariable = regexp.MustCompile(`\$\{([^!}][^}]*)\}`)

// collectReferences records the logical IDs named by Ref, Fn::GetAtt and
// Fn::Sub anywhere inside value.
func collectReferences(value any, found map[string]bool) {
	switch v := value.(type) {
	case map[string]any:
		if len(v) == 1 {
			if ref, ok := v["Ref"].(string); ok {
				found[ref] = true
				return
			}
			if att, ok := v["Fn::GetAtt"]; ok {
				switch a := att.(type) {
				case []any:
					if len(a) > 0 {
						if ref, ok := a[0].(string); ok {
							found[ref] = true
						}
					}
				case string:
					found[strings.SplitN(a, ".", 2)[0]] = true
				}
				return
			}
			if sub, ok := v["Fn::Sub"]; ok {
				collectSubReferences(sub, found)
				return
			}
		}
		for _, elem := range v {
			collectReferences(elem, found)
		}

	case []any:
		for _, elem := range v {
			collectReferences(elem, found)
		}
	}
}

func collectSubReferences(sub any, found map[string]bool) {
	var text string
	vars := map[string]any{}
	switch s := sub.(type) {
	case string:
		text = s
	case []any:
		if len(s) > 0 {
			text, _ = s[0].(string)
		}
		if len(s) > 1 {
			if m, ok := s[1].(map[string]any); ok {
				vars = m
			}
		}
	}

	for _, match := range subVariable.FindAllStringSubmatch(text, -1) {
		name := strings.SplitN(match[1], ".", 2)[0]
		if _, isVar := vars[name]; isVar {
			continue
		}
		found[name] = true
	}
	for _, v := range vars {
		collectReferences(v, found)
	}
}

// edges returns every same-stack resource name must follow.
func (b *Builder) edges(name string) []string {
	res := b.resources[name]
	return dedupe(append(append([]string{}, res.Dependencies...), res.References...))
}

// topologicalSort returns resources in dependency order.
func (b *Builder) topologicalSort() ([]string, error) {
	graph := make(map[string][]string)
	inDegree := make(map[string]int)

	for name := range b.resources {
		graph[name] = nil
		inDegree[name] = 0
	}

	for name := range b.resources {
		for _, dep := range b.edges(name) {
			if _, exists := b.resources[dep]; exists {
				graph[dep] = append(graph[dep], name)
				inDegree[name]++
			}
		}
	}

	// Kahn's algorithm
	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue) // Deterministic order

	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range graph[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
				sort.Strings(queue) // Keep sorted for determinism
			}
		}
	}

	if len(result) != len(b.resources) {
		return nil, b.detectCycle()
	}

	return result, nil
}

// detectCycle finds and reports a cycle in the dependency graph.
func (b *Builder) detectCycle() error {
	visited := make(map[string]bool)
	path := make(map[string]bool)

	var cycle []string
	var findCycle func(node string) bool
	findCycle = func(node string) bool {
		visited[node] = true
		path[node] = true

		for _, dep := range b.edges(node) {
			if _, exists := b.resources[dep]; !exists {
				continue
			}
			if !visited[dep] {
				if findCycle(dep) {
					cycle = append([]string{node}, cycle...)
					return true
				}
			} else if path[dep] {
				cycle = append([]string{dep, node}, cycle...)
				return true
			}
		}

		path[node] = false
		return false
	}

	for _, name := range sortedNames(b.resources) {
		if !visited[name] {
			if findCycle(name) {
				break
			}
		}
	}

	if len(cycle) > 0 {
		msg := ""
		for i, name := range cycle {
			msg += fmt.Sprintf("  %s/%s", b.stack, name)
			if i < len(cycle)-1 {
				msg += "\n    → "
			}
		}
		return fmt.Errorf("%w:\n%s", ErrCycle, msg)
	}

	return fmt.Errorf("%s: %w", b.stack, ErrCycle)
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func dedupe(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(names))
	var out []string
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// ToJSON serializes the template to JSON.
func ToJSON(t *eksplatform.Template) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// ToYAML serializes the template to YAML.
func ToYAML(t *eksplatform.Template) ([]byte, error) {
	return yaml.Marshal(t)
}
