package assembly

import (
	"fmt"
	"sort"

	eksplatform "github.com/coderco/eks-platform"
	"github.com/coderco/eks-platform/internal/naming"
	"github.com/coderco/eks-platform/intrinsics"
)

// Declaration is one resource of a stack.
type Declaration struct {
	ID       string
	Resource eksplatform.Resource

	stack     *Stack
	dependsOn []*Declaration
	metadata  map[string]any
}

// Stack returns the owning stack.
func (d *Declaration) Stack() *Stack {
	return d.stack
}

// Path returns "<Stack>/<id>".
func (d *Declaration) Path() string {
	return naming.Path(d.stack.Name, d.ID)
}

// Ref returns a Ref to the declaration. Only valid inside the same stack.
func (d *Declaration) Ref() intrinsics.Ref {
	return intrinsics.Ref{LogicalName: d.ID}
}

// GetAtt returns a GetAtt of one of the declaration's attributes.
// Only valid inside the same stack.
func (d *Declaration) GetAtt(attribute string) eksplatform.AttrRef {
	return eksplatform.AttrRef{Resource: d.ID, Attribute: attribute}
}

// SetMetadata records an entry of the resource's Metadata section.
func (d *Declaration) SetMetadata(key string, value any) {
	d.metadata[key] = value
}

// AddDependency orders the declaration after each target. A target in the
// same stack becomes a DependsOn entry; a target in another stack becomes a
// dependency between the two stacks.
func (d *Declaration) AddDependency(targets ...*Declaration) {
	for _, target := range targets {
		switch {
		case target == nil:
			d.stack.errs = append(d.stack.errs, fmt.Errorf("%s: dependency on nil declaration", d.Path()))
			continue
		case target == d:
			d.stack.errs = append(d.stack.errs, fmt.Errorf("%s: depends on itself", d.Path()))
			continue
		case target.stack != d.stack:
			d.stack.AddDependency(target.stack)
		}
		d.dependsOn = append(d.dependsOn, target)
	}
}

// DependsOn returns the paths of every declaration this one was ordered
// after, in either stack, sorted.
func (d *Declaration) DependsOn() []string {
	seen := make(map[string]bool)
	var paths []string
	for _, target := range d.dependsOn {
		if p := target.Path(); !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}

// declared converts the declaration for the template builder.
func (d *Declaration) declared() eksplatform.DeclaredResource {
	res := eksplatform.DeclaredResource{
		Name:  d.ID,
		Stack: d.stack.Name,
	}
	if d.Resource != nil {
		res.Type = d.Resource.ResourceType()
	}
	for _, target := range d.dependsOn {
		if target.stack == d.stack {
			res.Dependencies = append(res.Dependencies, target.ID)
		} else {
			res.CrossStack = append(res.CrossStack, target.Path())
		}
	}
	sort.Strings(res.CrossStack)
	return res
}
