// Package differ provides semantic comparison of CloudFormation templates
// and of whole assemblies.
package differ

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	eksplatform "github.com/coderco/eks-platform"
	"github.com/coderco/eks-platform/internal/assembly"
)

// Options configures the differ.
type Options struct {
	// IgnoreOrder ignores array element order in comparisons
	IgnoreOrder bool
}

// Result contains the difference between two templates or assemblies.
type Result struct {
	Diff    eksplatform.TemplateDiff `json:"diff"`
	Summary eksplatform.DiffSummary  `json:"summary"`

	// StacksAdded and StacksRemoved are set by CompareAssemblies.
	StacksAdded   []string `json:"stacksAdded,omitempty"`
	StacksRemoved []string `json:"stacksRemoved,omitempty"`
}

// Empty reports whether nothing changed.
func (r *Result) Empty() bool {
	return r.Summary.Total == 0 && len(r.StacksAdded) == 0 && len(r.StacksRemoved) == 0
}

// Compare compares two CloudFormation templates and returns differences.
func Compare(template1, template2 *eksplatform.Template, opts Options) (*Result, error) {
	result := &Result{}
	result.add(compareStack("", template1, template2, opts))
	result.summarize()
	return result, nil
}

// CompareAssemblies compares two assembly directories stack by stack.
func CompareAssemblies(dir1, dir2 string, opts Options) (*Result, error) {
	_, stacks1, err := assembly.Read(dir1)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", dir1, err)
	}
	_, stacks2, err := assembly.Read(dir2)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", dir2, err)
	}

	result := &Result{}
	for _, name := range sortedKeys(stacks2) {
		if _, exists := stacks1[name]; !exists {
			result.StacksAdded = append(result.StacksAdded, name)
		}
	}
	for _, name := range sortedKeys(stacks1) {
		t2, exists := stacks2[name]
		if !exists {
			result.StacksRemoved = append(result.StacksRemoved, name)
			continue
		}
		result.add(compareStack(name, stacks1[name], t2, opts))
	}
	result.summarize()
	return result, nil
}

// CompareFiles compares two template files.
func CompareFiles(file1, file2 string, opts Options) (*Result, error) {
	t1, err := assembly.ReadTemplate(file1)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", file1, err)
	}

	t2, err := assembly.ReadTemplate(file2)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", file2, err)
	}

	return Compare(t1, t2, opts)
}

func (r *Result) add(d eksplatform.TemplateDiff) {
	r.Diff.Added = append(r.Diff.Added, d.Added...)
	r.Diff.Removed = append(r.Diff.Removed, d.Removed...)
	r.Diff.Modified = append(r.Diff.Modified, d.Modified...)
}

func (r *Result) summarize() {
	r.Summary = eksplatform.DiffSummary{
		Added:    len(r.Diff.Added),
		Removed:  len(r.Diff.Removed),
		Modified: len(r.Diff.Modified),
	}
	r.Summary.Total = r.Summary.Added + r.Summary.Removed + r.Summary.Modified
}

// compareStack returns the resource-level differences of one stack.
func compareStack(stack string, template1, template2 *eksplatform.Template, opts Options) eksplatform.TemplateDiff {
	var diff eksplatform.TemplateDiff
	res1 := template1.Resources
	res2 := template2.Resources

	// Find added resources (in template2 but not in template1)
	for _, name := range sortedKeys(res2) {
		if _, exists := res1[name]; !exists {
			diff.Added = append(diff.Added, eksplatform.DiffEntry{Stack: stack, Resource: name, Type: res2[name].Type})
		}
	}

	for _, name := range sortedKeys(res1) {
		def1 := res1[name]
		def2, exists := res2[name]
		if !exists {
			diff.Removed = append(diff.Removed, eksplatform.DiffEntry{Stack: stack, Resource: name, Type: def1.Type})
			continue
		}
		if changes := compareResources(def1, def2, opts); len(changes) > 0 {
			diff.Modified = append(diff.Modified, eksplatform.DiffEntry{
				Stack:    stack,
				Resource: name,
				Type:     def1.Type,
				Changes:  changes,
			})
		}
	}
	return diff
}

// compareResources compares two resource definitions and returns changes.
func compareResources(def1, def2 eksplatform.ResourceDef, opts Options) []string {
	var changes []string

	// Compare type
	if def1.Type != def2.Type {
		changes = append(changes, fmt.Sprintf("Type changed: %s → %s", def1.Type, def2.Type))
	}

	// Compare properties
	changes = append(changes, compareProperties("", def1.Properties, def2.Properties, opts)...)

	// Compare DependsOn
	if !cmp.Equal(def1.DependsOn, def2.DependsOn, cmpopts.EquateEmpty()) {
		changes = append(changes, "DependsOn changed")
	}

	return changes
}

// compareProperties compares property maps key by key.
func compareProperties(prefix string, props1, props2 map[string]any, opts Options) []string {
	var changes []string

	// Find added/modified properties
	for key, val2 := range props2 {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		if val1, exists := props1[key]; exists {
			if !deepEqual(val1, val2, opts) {
				changes = append(changes, fmt.Sprintf("%s modified", path))
			}
		} else {
			changes = append(changes, fmt.Sprintf("%s added", path))
		}
	}

	// Find removed properties
	for key := range props1 {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		if _, exists := props2[key]; !exists {
			changes = append(changes, fmt.Sprintf("%s removed", path))
		}
	}

	sort.Strings(changes)
	return changes
}

// deepEqual compares two values deeply, optionally ignoring order.
func deepEqual(a, b any, opts Options) bool {
	if opts.IgnoreOrder {
		return cmp.Equal(a, b, cmpopts.SortSlices(lessJSON))
	}
	return cmp.Equal(a, b)
}

// lessJSON orders arbitrary values by their JSON encoding.
func lessJSON(a, b any) bool {
	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	return string(ja) < string(jb)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
