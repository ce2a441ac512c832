// Package graph generates DOT and Mermaid format dependency graphs of a
// synthesized assembly.
package graph

import (
	"io"
	"sort"
	"strings"

	"github.com/emicklei/dot"

	"github.com/coderco/eks-platform/internal/assembly"
	"github.com/coderco/eks-platform/internal/naming"
)

// Format specifies the output format for the graph.
type Format string

const (
	// FormatDOT outputs Graphviz DOT format.
	FormatDOT Format = "dot"
	// FormatMermaid outputs Mermaid format for GitHub/markdown rendering.
	FormatMermaid Format = "mermaid"
)

// Generator creates dependency graphs from synthesized stacks.
//
// Explicit DependsOn edges are solid, Ref/GetAtt references are blue and
// dependencies on declarations of another stack are dashed.
type Generator struct {
	// Format specifies the output format (dot or mermaid). Defaults to dot.
	Format Format

	// ClusterByStack groups each stack's resources in a subgraph.
	ClusterByStack bool
}

// Generate creates a dependency graph and writes it to w.
func (g *Generator) Generate(stacks []*assembly.StackTemplate, w io.Writer) error {
	graph := g.buildGraph(stacks)

	format := g.Format
	if format == "" {
		format = FormatDOT
	}

	var output string
	if format == FormatMermaid {
		output = dot.MermaidGraph(graph, dot.MermaidTopToBottom)
	} else {
		output = graph.String()
	}

	_, err := w.Write([]byte(output))
	return err
}

// GenerateString is a convenience method that returns the graph as a string.
func (g *Generator) GenerateString(stacks []*assembly.StackTemplate) (string, error) {
	var sb strings.Builder
	if err := g.Generate(stacks, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// buildGraph creates the dot.Graph structure from the stacks.
func (g *Generator) buildGraph(stacks []*assembly.StackTemplate) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "TB")

	// Set default node style
	graph.NodeInitializer(func(n dot.Node) {
		n.Attr("shape", "box")
		n.Attr("fontname", "Arial")
	})

	// Set default edge style
	graph.EdgeInitializer(func(e dot.Edge) {
		e.Attr("fontname", "Arial")
		e.Attr("fontsize", "10")
	})

	nodes := make(map[string]dot.Node)
	for _, st := range stacks {
		parent := graph
		if g.ClusterByStack {
			parent = graph.Subgraph(st.Name, dot.ClusterOption{})
			parent.Attr("label", st.Name)
			parent.Attr("style", "rounded")
			parent.Attr("bgcolor", "lightyellow")
		}
		for _, id := range sortedIDs(st) {
			res := st.Resources[id]
			path := naming.Path(st.Name, id)
			n := parent.Node(path)
			n.Label(id + "\\n[" + res.Type + "]")
			nodes[path] = n
		}
	}

	// Add edges
	for _, st := range stacks {
		for _, id := range sortedIDs(st) {
			res := st.Resources[id]
			from := nodes[naming.Path(st.Name, id)]

			explicit := make(map[string]bool)
			for _, dep := range res.Dependencies {
				if to, ok := nodes[naming.Path(st.Name, dep)]; ok {
					graph.Edge(from, to)
					explicit[dep] = true
				}
			}
			for _, ref := range res.References {
				if explicit[ref] {
					continue
				}
				if to, ok := nodes[naming.Path(st.Name, ref)]; ok {
					graph.Edge(from, to).Attr("color", "blue")
				}
			}
			for _, path := range res.CrossStack {
				if to, ok := nodes[path]; ok {
					graph.Edge(from, to).Attr("style", "dashed")
				}
			}
		}
	}

	return graph
}

func sortedIDs(st *assembly.StackTemplate) []string {
	ids := make([]string, 0, len(st.Resources))
	for id := range st.Resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
