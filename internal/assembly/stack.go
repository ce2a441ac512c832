package assembly

import (
	"fmt"
	"sort"

	eksplatform "github.com/coderco/eks-platform"
	"github.com/coderco/eks-platform/internal/naming"
	"github.com/coderco/eks-platform/internal/template"
	"github.com/coderco/eks-platform/intrinsics"
)

// Stack is one deployment unit and becomes one CloudFormation template.
type Stack struct {
	Name        string
	Description string

	app         *App
	decls       []*Declaration
	byID        map[string]*Declaration
	outputs     map[string]eksplatform.Output
	outputOrder []string
	imports     []Export
	deps        map[string]*Stack
	errs        []error
}

// Export names a stack output that other stacks can import.
type Export struct {
	Stack string
	Name  string
}

// ExportName returns the CloudFormation export name "<Stack>:<name>".
func (e Export) ExportName() string {
	return naming.ExportName(e.Stack, e.Name)
}

// Add declares a resource under a logical ID unique within the stack.
func (s *Stack) Add(id string, resource eksplatform.Resource) *Declaration {
	d := &Declaration{
		ID:       id,
		Resource: resource,
		stack:    s,
		metadata: make(map[string]any),
	}
	if err := naming.ValidateLogicalID(id); err != nil {
		s.errs = append(s.errs, fmt.Errorf("%s: %w", s.Name, err))
		return d
	}
	if _, exists := s.byID[id]; exists {
		s.errs = append(s.errs, fmt.Errorf("%s: %w %q", s.Name, ErrDuplicateID, id))
		return d
	}
	s.decls = append(s.decls, d)
	s.byID[id] = d
	return d
}

// Declarations returns the declarations in the order they were added.
func (s *Stack) Declarations() []*Declaration {
	return s.decls
}

// Lookup returns the declaration with the given logical ID or nil.
func (s *Stack) Lookup(id string) *Declaration {
	return s.byID[id]
}

// Export adds an output exported as "<Stack>:<name>".
func (s *Stack) Export(name string, value any) Export {
	e := Export{Stack: s.Name, Name: name}
	if err := naming.ValidateLogicalID(name); err != nil {
		s.errs = append(s.errs, fmt.Errorf("%s: output: %w", s.Name, err))
		return e
	}
	if _, exists := s.outputs[name]; exists {
		s.errs = append(s.errs, fmt.Errorf("%s: output %w %q", s.Name, ErrDuplicateID, name))
		return e
	}
	s.outputs[name] = eksplatform.Output{
		Value:  value,
		Export: &eksplatform.Export{Name: e.ExportName()},
	}
	s.outputOrder = append(s.outputOrder, name)
	return e
}

// Exports returns the exports of the stack in declaration order.
func (s *Stack) Exports() []Export {
	exports := make([]Export, len(s.outputOrder))
	for i, name := range s.outputOrder {
		exports[i] = Export{Stack: s.Name, Name: name}
	}
	return exports
}

// Import reads another stack's export and makes this stack depend on it.
func (s *Stack) Import(e Export) intrinsics.ImportValue {
	if e.Stack == s.Name {
		s.errs = append(s.errs, fmt.Errorf("%s: import of own export %q", s.Name, e.ExportName()))
	} else if producer := s.app.Stack(e.Stack); producer != nil {
		s.AddDependency(producer)
	}
	s.imports = append(s.imports, e)
	return intrinsics.ImportValue{ExportName: e.ExportName()}
}

// AddDependency orders this stack after other.
func (s *Stack) AddDependency(other *Stack) {
	switch {
	case other == nil:
		s.errs = append(s.errs, fmt.Errorf("%s: dependency on nil stack", s.Name))
	case other == s:
		s.errs = append(s.errs, fmt.Errorf("%s: stack depends on itself", s.Name))
	case other.app != s.app:
		s.errs = append(s.errs, fmt.Errorf("%s: dependency on stack %s of another app", s.Name, other.Name))
	default:
		s.deps[other.Name] = other
	}
}

// Dependencies returns the names of the stacks this stack depends on, sorted.
func (s *Stack) Dependencies() []string {
	names := make([]string, 0, len(s.deps))
	for name := range s.deps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// checkImports reports imports whose export no stack declares.
func (s *Stack) checkImports() []error {
	var errs []error
	for _, e := range s.imports {
		producer := s.app.Stack(e.Stack)
		if producer == nil {
			errs = append(errs, fmt.Errorf("%s: %w %q: no stack %s", s.Name, ErrUnknownExport, e.ExportName(), e.Stack))
			continue
		}
		if _, ok := producer.outputs[e.Name]; !ok {
			errs = append(errs, fmt.Errorf("%s: %w %q", s.Name, ErrUnknownExport, e.ExportName()))
		}
	}
	return errs
}

// synth builds the stack's template.
func (s *Stack) synth() (*StackTemplate, error) {
	resources := make(map[string]eksplatform.DeclaredResource, len(s.decls))
	for _, d := range s.decls {
		resources[d.ID] = d.declared()
	}

	builder := template.NewBuilder(s.Name, resources)
	builder.SetDescription(s.Description)
	for _, d := range s.decls {
		builder.SetValue(d.ID, d.Resource)

		metadata := map[string]any{PathMetadataKey: d.Path()}
		for k, v := range d.metadata {
			metadata[k] = v
		}
		builder.SetMetadata(d.ID, metadata)
	}
	for _, name := range s.outputOrder {
		builder.SetOutput(name, s.outputs[name])
	}

	tmpl, err := builder.Build()
	if err != nil {
		return nil, err
	}

	return &StackTemplate{
		Name:         s.Name,
		Dependencies: s.Dependencies(),
		Template:     tmpl,
		Resources:    builder.Resources(),
		Order:        builder.Order(),
	}, nil
}
