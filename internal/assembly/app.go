package assembly

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	eksplatform "github.com/coderco/eks-platform"
	"github.com/coderco/eks-platform/internal/naming"
)

// PathMetadataKey is the resource metadata key holding "<Stack>/<id>".
const PathMetadataKey = "eks-platform:path"

var (
	// ErrDuplicateID is returned when a logical ID is declared twice in a stack.
	ErrDuplicateID = errors.New("duplicate logical ID")

	// ErrStackCycle is returned when stack dependencies form a cycle.
	ErrStackCycle = errors.New("stack dependency cycle")

	// ErrUnknownExport is returned when an import names an export no stack declares.
	ErrUnknownExport = errors.New("import of undeclared export")
)

// App is the root of the desired-state graph.
type App struct {
	env    eksplatform.Environment
	stacks []*Stack
	byName map[string]*Stack
	errs   []error
}

// NewApp creates an empty app deploying into env.
func NewApp(env eksplatform.Environment) *App {
	return &App{
		env:    env,
		byName: make(map[string]*Stack),
	}
}

// Environment returns the account and region every stack deploys into.
func (a *App) Environment() eksplatform.Environment {
	return a.env
}

// NewStack adds a stack. Stack names must be valid logical IDs and unique.
func (a *App) NewStack(name, description string) *Stack {
	s := &Stack{
		Name:        name,
		Description: description,
		app:         a,
		byID:        make(map[string]*Declaration),
		outputs:     make(map[string]eksplatform.Output),
		deps:        make(map[string]*Stack),
	}
	if err := naming.ValidateLogicalID(name); err != nil {
		a.errs = append(a.errs, fmt.Errorf("stack: %w", err))
	}
	if _, exists := a.byName[name]; exists {
		a.errs = append(a.errs, fmt.Errorf("stack %s: %w", name, ErrDuplicateID))
		return s
	}
	a.stacks = append(a.stacks, s)
	a.byName[name] = s
	return s
}

// Stacks returns the stacks in declaration order.
func (a *App) Stacks() []*Stack {
	return a.stacks
}

// Stack returns the named stack or nil.
func (a *App) Stack(name string) *Stack {
	return a.byName[name]
}

// Synth validates the graph and builds one template per stack.
// Stacks are returned in dependency order; ties keep declaration order.
func (a *App) Synth() (*Assembly, error) {
	errs := append([]error{}, a.errs...)
	for _, s := range a.stacks {
		errs = append(errs, s.errs...)
		errs = append(errs, s.checkImports()...)
	}

	order, err := a.stackOrder()
	if err != nil {
		errs = append(errs, err)
	}

	asm := &Assembly{Environment: a.env}
	for _, s := range order {
		st, err := s.synth()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		asm.Stacks = append(asm.Stacks, st)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return asm, nil
}

// stackOrder sorts stacks topologically (Kahn). The queue is kept in
// declaration order so that independent stacks keep their relative order.
func (a *App) stackOrder() ([]*Stack, error) {
	index := make(map[*Stack]int, len(a.stacks))
	for i, s := range a.stacks {
		index[s] = i
	}

	inDegree := make(map[*Stack]int, len(a.stacks))
	dependents := make(map[*Stack][]*Stack)
	for _, s := range a.stacks {
		inDegree[s] += 0
		for _, dep := range s.deps {
			dependents[dep] = append(dependents[dep], s)
			inDegree[s]++
		}
	}

	var queue []*Stack
	for _, s := range a.stacks {
		if inDegree[s] == 0 {
			queue = append(queue, s)
		}
	}

	var result []*Stack
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, next := range dependents[node] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
				sort.SliceStable(queue, func(i, j int) bool { return index[queue[i]] < index[queue[j]] })
			}
		}
	}

	if len(result) != len(a.stacks) {
		var stuck []string
		for _, s := range a.stacks {
			if inDegree[s] > 0 {
				stuck = append(stuck, s.Name)
			}
		}
		return result, fmt.Errorf("%w: %s", ErrStackCycle, strings.Join(stuck, " ↔ "))
	}
	return result, nil
}
