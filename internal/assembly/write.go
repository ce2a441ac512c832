package assembly

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	eksplatform "github.com/coderco/eks-platform"
	"github.com/coderco/eks-platform/internal/template"
)

// ManifestFile is the name of the manifest inside an assembly directory.
const ManifestFile = "manifest.json"

// Format selects the template encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format: %s (use json or yaml)", s)
	}
}

// TemplateFile returns the file name of a stack's template.
func TemplateFile(stack string, format Format) string {
	return stack + ".template." + string(format)
}

// Assembly is the synthesized output: templates in apply order.
type Assembly struct {
	Environment eksplatform.Environment
	Stacks      []*StackTemplate
}

// StackTemplate is one synthesized stack.
type StackTemplate struct {
	Name         string
	Dependencies []string
	Template     *eksplatform.Template
	// Resources carries dependencies and resolved references per logical ID.
	Resources map[string]eksplatform.DeclaredResource
	// Order is the dependency order of the resources.
	Order []string
}

// Stack returns the named stack template or nil.
func (a *Assembly) Stack(name string) *StackTemplate {
	for _, st := range a.Stacks {
		if st.Name == name {
			return st
		}
	}
	return nil
}

// Manifest returns the assembly manifest for templates written in format.
func (a *Assembly) Manifest(format Format) eksplatform.Manifest {
	m := eksplatform.Manifest{Version: eksplatform.ManifestVersion}
	for _, st := range a.Stacks {
		m.Artifacts = append(m.Artifacts, eksplatform.StackArtifact{
			Name:         st.Name,
			Environment:  a.Environment,
			TemplateFile: TemplateFile(st.Name, format),
			Dependencies: st.Dependencies,
		})
	}
	return m
}

// Files renders every file of the assembly keyed by file name.
func (a *Assembly) Files(format Format) (map[string][]byte, error) {
	files := make(map[string][]byte, len(a.Stacks)+1)
	for _, st := range a.Stacks {
		var data []byte
		var err error
		if format == FormatYAML {
			data, err = template.ToYAML(st.Template)
		} else {
			data, err = template.ToJSON(st.Template)
			data = append(data, '\n')
		}
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", st.Name, err)
		}
		files[TemplateFile(st.Name, format)] = data
	}

	manifest, err := json.MarshalIndent(a.Manifest(format), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	files[ManifestFile] = append(manifest, '\n')
	return files, nil
}

// Write writes the templates and manifest.json into dir.
func (a *Assembly) Write(dir string, format Format) error {
	files, err := a.Files(format)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	return nil
}

// Read loads a written assembly directory: its manifest and every template
// the manifest lists, keyed by stack name.
func Read(dir string) (*eksplatform.Manifest, map[string]*eksplatform.Template, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, nil, fmt.Errorf("reading manifest: %w", err)
	}
	var manifest eksplatform.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, nil, fmt.Errorf("parsing manifest: %w", err)
	}

	templates := make(map[string]*eksplatform.Template, len(manifest.Artifacts))
	for _, artifact := range manifest.Artifacts {
		tmpl, err := ReadTemplate(filepath.Join(dir, artifact.TemplateFile))
		if err != nil {
			return nil, nil, err
		}
		templates[artifact.Name] = tmpl
	}
	return &manifest, templates, nil
}

// ReadTemplate reads a CloudFormation template from a JSON or YAML file.
func ReadTemplate(path string) (*eksplatform.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var tmpl eksplatform.Template
	if err := json.Unmarshal(data, &tmpl); err != nil {
		if yamlErr := yaml.Unmarshal(data, &tmpl); yamlErr != nil {
			return nil, fmt.Errorf("parsing %s: not valid JSON or YAML", path)
		}
	}
	return &tmpl, nil
}
