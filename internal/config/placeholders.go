package config

import "strings"

// Placeholder names.
const (
	PlaceholderAccount       = "account"
	PlaceholderRegion        = "region"
	PlaceholderDomain        = "domain"
	PlaceholderHostedZoneArn = "hostedZoneArn"

	// pseudo parameters of the reading stack
	PlaceholderStackName = "stackName"
	PlaceholderURLSuffix = "urlSuffix"

	IdentityRoleArn        = "roleArn"
	IdentityServiceAccount = "serviceAccount"
)

// ParseIdentityPlaceholder splits "identity.<binding>.<attr>".
func ParseIdentityPlaceholder(name string) (binding, attr string, ok bool) {
	rest, ok := strings.CutPrefix(name, "identity.")
	if !ok {
		return "", "", false
	}
	i := strings.LastIndex(rest, ".")
	if i <= 0 || i == len(rest)-1 {
		return "", "", false
	}
	return rest[:i], rest[i+1:], true
}
