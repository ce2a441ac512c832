package config

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	eksplatform "github.com/coderco/eks-platform"
)

// Environment variables read by FromEnv, in lookup order.
var (
	AccountEnvVars = []string{"CDK_DEFAULT_ACCOUNT", "AWS_ACCOUNT_ID"}
	RegionEnvVars  = []string{"CDK_DEFAULT_REGION", "AWS_REGION", "AWS_DEFAULT_REGION"}
)

// Load reads a YAML configuration file. Keys the file leaves out take their
// value from Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML configuration over Default. Keys present in the file
// replace the default, so an empty list or null clears it; lists are never
// merged element by element.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UnmarshalYAML decodes an endpoint block over the current mode only. The
// default CIDRs belong to the default mode, so a file that names the
// endpoint lists its own CIDRs or none.
func (e *EndpointAccess) UnmarshalYAML(node *yaml.Node) error {
	type plain EndpointAccess
	p := plain{Mode: e.Mode}
	if err := node.Decode(&p); err != nil {
		return err
	}
	*e = EndpointAccess(p)
	return nil
}

// FromEnv reads the target environment from the process environment.
// getenv is typically os.Getenv.
func FromEnv(getenv func(string) string) eksplatform.Environment {
	return eksplatform.Environment{
		Account: firstEnv(getenv, AccountEnvVars),
		Region:  firstEnv(getenv, RegionEnvVars),
	}
}

// ResolveEnvironment sets the target environment. Flags take precedence over
// the file, which takes precedence over the process environment.
// An empty account or region means unset at every level.
func (c *Config) ResolveEnvironment(flags, env eksplatform.Environment) error {
	resolved := flags
	for _, src := range []eksplatform.Environment{c.Environment, env} {
		if err := mergo.Merge(&resolved, src); err != nil {
			return fmt.Errorf("resolving environment: %w", err)
		}
	}
	c.Environment = resolved
	return nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func firstEnv(getenv func(string) string, keys []string) string {
	for _, k := range keys {
		if v := getenv(k); v != "" {
			return v
		}
	}
	return ""
}
