package config

import (
	"fmt"

	"github.com/coderco/eks-platform/internal/render"
	"github.com/coderco/eks-platform/intrinsics"
)

// IdentityResolver returns the value of an identity attribute placeholder.
type IdentityResolver func(binding, attr string) (any, error)

// Resolver returns the placeholder resolver for a synthesis in which the
// configured zone has the given hosted zone ID. Identity placeholders are
// delegated to identity, since their value depends on the reading stack.
func (c *Config) Resolver(hostedZoneID string, identity IdentityResolver) render.Resolver {
	return func(name string) (any, error) {
		switch name {
		case PlaceholderAccount:
			return c.Environment.Account, nil
		case PlaceholderRegion:
			return c.Environment.Region, nil
		case PlaceholderDomain:
			return c.DNS.DomainName, nil
		case PlaceholderHostedZoneArn:
			if hostedZoneID == "" {
				return nil, fmt.Errorf("no hosted zone for %s", c.DNS.DomainName)
			}
			return intrinsics.HostedZoneArn(hostedZoneID), nil
		case PlaceholderStackName:
			return intrinsics.AWS_STACK_NAME, nil
		case PlaceholderURLSuffix:
			return intrinsics.AWS_URL_SUFFIX, nil
		}

		binding, attr, ok := ParseIdentityPlaceholder(name)
		if !ok {
			return nil, fmt.Errorf("unknown placeholder")
		}
		b, found := c.Identity(binding)
		if !found {
			return nil, fmt.Errorf("unknown identity %q", binding)
		}
		if attr == IdentityServiceAccount {
			return b.ServiceAccount, nil
		}
		if identity == nil {
			return nil, fmt.Errorf("identity attribute %q is not available here", attr)
		}
		return identity(binding, attr)
	}
}
