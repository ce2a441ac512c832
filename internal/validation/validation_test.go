package validation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/lex00/cfn-lint-go/pkg/lint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eksplatform "github.com/coderco/eks-platform"
	"github.com/coderco/eks-platform/internal/assembly"
	"github.com/coderco/eks-platform/internal/config"
	"github.com/coderco/eks-platform/internal/platform"
)

func TestCfnLintResult_TotalIssues(t *testing.T) {
	tests := []struct {
		name     string
		result   CfnLintResult
		expected int
	}{
		{
			name:     "empty result",
			result:   CfnLintResult{},
			expected: 0,
		},
		{
			name: "errors only",
			result: CfnLintResult{
				Errors: []string{"error1", "error2"},
			},
			expected: 2,
		},
		{
			name: "warnings only",
			result: CfnLintResult{
				Warnings: []string{"warning1"},
			},
			expected: 1,
		},
		{
			name: "mixed issues",
			result: CfnLintResult{
				Errors:        []string{"error1"},
				Warnings:      []string{"warning1", "warning2"},
				Informational: []string{"info1"},
			},
			expected: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.result.TotalIssues())
		})
	}
}

func TestFormatMatch(t *testing.T) {
	tests := []struct {
		name     string
		match    lint.Match
		expected string
	}{
		{
			name: "simple match",
			match: lint.Match{
				Rule:    lint.MatchRule{ID: "E1234"},
				Message: "Something is wrong",
			},
			expected: "E1234: Something is wrong",
		},
		{
			name: "match with path",
			match: lint.Match{
				Rule:    lint.MatchRule{ID: "W5678"},
				Message: "Warning message",
				Location: lint.MatchLocation{
					Path: []any{"Resources", "MyBucket", "Properties"},
				},
			},
			expected: "W5678: Warning message (at Resources/MyBucket/Properties)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := formatMatch(tt.match)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestRunCfnLint_FileNotFound(t *testing.T) {
	result, err := RunCfnLint("/nonexistent/template.yaml")
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Template file not found")
}

func TestRunCfnLint_ValidTemplate(t *testing.T) {
	// Create a valid CloudFormation template
	tempDir := t.TempDir()
	templatePath := filepath.Join(tempDir, "template.yaml")

	validTemplate := `AWSTemplateFormatVersion: '2010-09-09'
Description: Test template
Resources:
  MyBucket:
    Type: AWS::S3::Bucket
    Properties:
      BucketName: test-bucket
`
	err := os.WriteFile(templatePath, []byte(validTemplate), 0644)
	require.NoError(t, err)

	result, err := RunCfnLint(templatePath)
	require.NoError(t, err)
	// Result should parse successfully (whether or not there are warnings)
	assert.NotNil(t, result)
}

func TestOnExtension(t *testing.T) {
	extensions := map[string]bool{"IngressNginxChart": true}

	assert.True(t, onExtension(lint.Match{Location: lint.MatchLocation{
		Path: []any{"Resources", "IngressNginxChart", "Type"},
	}}, extensions))
	assert.False(t, onExtension(lint.Match{Location: lint.MatchLocation{
		Path: []any{"Resources", "DemoCluster"},
	}}, extensions))
	assert.False(t, onExtension(lint.Match{Location: lint.MatchLocation{
		Path: []any{"Outputs", "IngressNginxChart"},
	}}, extensions))
	assert.False(t, onExtension(lint.Match{}, extensions))
}

func TestExtensionResources(t *testing.T) {
	tmpl := &eksplatform.Template{Resources: map[string]eksplatform.ResourceDef{
		"Chart":   {Type: "AWSQS::Kubernetes::Helm"},
		"Cluster": {Type: "AWS::EKS::Cluster"},
	}}
	assert.Equal(t, map[string]bool{"Chart": true}, extensionResources(tmpl))
	assert.Empty(t, extensionResources(nil))
}

func importing(exportName string) *eksplatform.Template {
	return &eksplatform.Template{Resources: map[string]eksplatform.ResourceDef{
		"Thing": {
			Type: "AWS::EC2::Subnet",
			Properties: map[string]any{
				"VpcId": map[string]any{"Fn::ImportValue": exportName},
			},
		},
	}}
}

func exporting(exportName string) *eksplatform.Template {
	return &eksplatform.Template{
		Resources: map[string]eksplatform.ResourceDef{"Vpc": {Type: "AWS::EC2::VPC"}},
		Outputs: map[string]eksplatform.Output{
			"VpcId": {
				Value:  map[string]any{"Ref": "Vpc"},
				Export: &eksplatform.Export{Name: exportName},
			},
		},
	}
}

func TestCheckManifest(t *testing.T) {
	templates := map[string]*eksplatform.Template{
		"Net": exporting("Net:VpcId"),
		"App": importing("Net:VpcId"),
	}

	t.Run("ordered", func(t *testing.T) {
		m := &eksplatform.Manifest{Artifacts: []eksplatform.StackArtifact{
			{Name: "Net", TemplateFile: "Net.template.json"},
			{Name: "App", TemplateFile: "App.template.json", Dependencies: []string{"Net"}},
		}}
		assert.Empty(t, CheckManifest(m, templates))
	})

	t.Run("out of order", func(t *testing.T) {
		m := &eksplatform.Manifest{Artifacts: []eksplatform.StackArtifact{
			{Name: "App", TemplateFile: "App.template.json", Dependencies: []string{"Net"}},
			{Name: "Net", TemplateFile: "Net.template.json"},
		}}
		errs := CheckManifest(m, templates)
		require.Len(t, errs, 2)
		assert.Equal(t, "App: depends on Net, which is not listed before it", errs[0])
		assert.Equal(t, `App: imports "Net:VpcId", which no earlier stack exports`, errs[1])
	})

	t.Run("missing template", func(t *testing.T) {
		m := &eksplatform.Manifest{Artifacts: []eksplatform.StackArtifact{
			{Name: "Gone", TemplateFile: "Gone.template.json"},
		}}
		assert.Equal(t, []string{"Gone: template Gone.template.json is missing"}, CheckManifest(m, templates))
	})
}

func writePlatform(t *testing.T) string {
	t.Helper()
	cfg := config.Default()
	cfg.Environment = eksplatform.Environment{Account: "111111111111", Region: "us-east-1"}
	cfg.DNS.HostedZoneID = "Z0123456789ABC"

	app, err := platform.Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	asm, err := app.Synth()
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, asm.Write(dir, assembly.FormatJSON))
	return dir
}

func TestValidateAssembly_Structure(t *testing.T) {
	dir := writePlatform(t)

	result, err := ValidateAssembly(dir, Options{SkipCfnLint: true})
	require.NoError(t, err)
	assert.True(t, result.Success, "errors: %v", result.Errors)
	assert.Equal(t, 3, result.Stacks)
	assert.Greater(t, result.Resources, 30)
}

func TestValidateAssembly_CfnLint(t *testing.T) {
	dir := writePlatform(t)

	result, err := ValidateAssembly(dir, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Stacks)
	for _, e := range result.Errors {
		// findings on extension types are demoted
		assert.NotContains(t, e, "Chart")
	}
}

func TestValidateAssembly_MissingManifest(t *testing.T) {
	_, err := ValidateAssembly(t.TempDir(), Options{})
	assert.Error(t, err)
}
