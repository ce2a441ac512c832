package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	eksplatform "github.com/coderco/eks-platform"
	"github.com/coderco/eks-platform/internal/lookup"
)

const (
	testAccount = "111111111111"
	testRegion  = "us-east-1"
	testZoneID  = "Z0123456789ABC"
)

// execute runs the root command and returns its standard output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

// cachedContext writes a context file holding the demo zone lookup.
func cachedContext(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), lookup.ContextFile)
	c, err := lookup.LoadContext(path)
	if err != nil {
		t.Fatal(err)
	}
	q := lookup.HostedZoneQuery{Account: testAccount, Region: testRegion, DomainName: "cdk-labs.com"}
	if err := c.Set(q.Key(), lookup.HostedZone{ID: testZoneID, Name: "cdk-labs.com"}); err != nil {
		t.Fatal(err)
	}
	if err := c.Save(); err != nil {
		t.Fatal(err)
	}
	return path
}

func synthFlags(contextFile string) []string {
	return []string{"--account", testAccount, "--region", testRegion, "--context", contextFile, "--no-lookups"}
}

func TestSynthCmd(t *testing.T) {
	out := filepath.Join(t.TempDir(), "cdk.out")
	stdout, err := execute(t, append([]string{"synth", "-o", out}, synthFlags(cachedContext(t))...)...)
	if err != nil {
		t.Fatalf("synth failed: %v", err)
	}

	if !strings.Contains(stdout, "Synthesized 3 stacks") {
		t.Errorf("unexpected output: %s", stdout)
	}
	for _, name := range []string{"manifest.json", "NetworkingStack.template.json", "ClusterStack.template.json", "AddonsStack.template.json"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	stdout, err = execute(t, "validate", out, "--skip-cfn-lint")
	if err != nil {
		t.Fatalf("validate failed: %v\n%s", err, stdout)
	}
	if !strings.Contains(stdout, "3 stacks") {
		t.Errorf("unexpected validate output: %s", stdout)
	}

	stdout, err = execute(t, "diff", out, out, "--exit-code")
	if err != nil {
		t.Fatalf("diff failed: %v", err)
	}
	if !strings.Contains(stdout, "No differences found.") {
		t.Errorf("unexpected diff output: %s", stdout)
	}
}

func TestSynthCmd_JSONResult(t *testing.T) {
	out := filepath.Join(t.TempDir(), "cdk.out")
	stdout, err := execute(t, append([]string{"synth", "-o", out, "--json", "--format", "yaml"}, synthFlags(cachedContext(t))...)...)
	if err != nil {
		t.Fatalf("synth failed: %v", err)
	}

	var result eksplatform.BuildResult
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	if !result.Success {
		t.Errorf("Success = false, errors: %v", result.Errors)
	}
	want := []string{"NetworkingStack", "ClusterStack", "AddonsStack"}
	if strings.Join(result.Stacks, ",") != strings.Join(want, ",") {
		t.Errorf("Stacks = %v, want %v", result.Stacks, want)
	}
	if _, err := os.Stat(filepath.Join(out, "AddonsStack.template.yaml")); err != nil {
		t.Errorf("missing yaml template: %v", err)
	}
}

func TestSynthCmd_LookupsDisabled(t *testing.T) {
	empty := filepath.Join(t.TempDir(), lookup.ContextFile)
	_, err := execute(t, append([]string{"synth", "-o", t.TempDir()}, synthFlags(empty)...)...)
	if err == nil {
		t.Fatal("expected an error without a cached zone")
	}
}

func TestSynthCmd_UnknownFormat(t *testing.T) {
	_, err := execute(t, append([]string{"synth", "--format", "toml"}, synthFlags(cachedContext(t))...)...)
	if err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestListCmd(t *testing.T) {
	stdout, err := execute(t, append([]string{"list", "-f", "json"}, synthFlags(cachedContext(t))...)...)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	var result eksplatform.ListResult
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(result.Resources) == 0 {
		t.Fatal("no resources listed")
	}
	if result.Resources[0].Stack != "NetworkingStack" {
		t.Errorf("first stack = %q, want NetworkingStack", result.Resources[0].Stack)
	}
	last := result.Resources[len(result.Resources)-1]
	if last.Stack != "AddonsStack" {
		t.Errorf("last stack = %q, want AddonsStack", last.Stack)
	}
}

func TestLintCmd(t *testing.T) {
	stdout, err := execute(t, append([]string{"lint", "-f", "json"}, synthFlags(cachedContext(t))...)...)
	if err != nil {
		t.Fatalf("lint failed: %v\n%s", err, stdout)
	}

	var result eksplatform.LintResult
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	found := false
	for _, issue := range result.Issues {
		if issue.Rule == "EKP003" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected EKP003 for the public endpoint, got %v", result.Issues)
	}

	stdout, err = execute(t, append([]string{"lint", "--disable", "EKP003"}, synthFlags(cachedContext(t))...)...)
	if err != nil {
		t.Fatalf("lint failed: %v", err)
	}
	if strings.Contains(stdout, "EKP003") {
		t.Errorf("disabled rule reported: %s", stdout)
	}
}

func TestGraphCmd(t *testing.T) {
	stdout, err := execute(t, append([]string{"graph", "-c"}, synthFlags(cachedContext(t))...)...)
	if err != nil {
		t.Fatalf("graph failed: %v", err)
	}
	if !strings.Contains(stdout, "digraph") {
		t.Errorf("expected DOT output, got: %.200s", stdout)
	}

	_, err = execute(t, append([]string{"graph", "-f", "svg"}, synthFlags(cachedContext(t))...)...)
	if err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestContextCmd(t *testing.T) {
	path := cachedContext(t)

	stdout, err := execute(t, "context", "--context", path)
	if err != nil {
		t.Fatalf("context failed: %v", err)
	}
	if !strings.Contains(stdout, "hosted-zone:account=111111111111:domainName=cdk-labs.com:region=us-east-1") {
		t.Errorf("cached key not listed: %s", stdout)
	}
	if !strings.Contains(stdout, testZoneID) {
		t.Errorf("cached value not listed: %s", stdout)
	}

	stdout, err = execute(t, "context", "--context", path, "--clear")
	if err != nil {
		t.Fatalf("context --clear failed: %v", err)
	}
	if !strings.Contains(stdout, "Cleared 1 context values") {
		t.Errorf("unexpected output: %s", stdout)
	}

	stdout, err = execute(t, "context", "--context", path)
	if err != nil {
		t.Fatalf("context failed: %v", err)
	}
	if !strings.Contains(stdout, "No context values") {
		t.Errorf("context not cleared: %s", stdout)
	}
}

func TestVersionCmd(t *testing.T) {
	stdout, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(stdout, "eks-platform ") {
		t.Errorf("unexpected output: %s", stdout)
	}
}

func TestPublishCmd_RequiresBucket(t *testing.T) {
	_, err := execute(t, "publish")
	if err == nil {
		t.Fatal("expected an error without --bucket")
	}
}
