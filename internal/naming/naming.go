// Package naming derives CloudFormation-safe names from platform names.
package naming

import (
	"fmt"
	"strings"
	"unicode"
)

// MaxLogicalIDLength is the CloudFormation limit for logical IDs.
const MaxLogicalIDLength = 255

// MaxRoleNameLength is the IAM limit for role names.
const MaxRoleNameLength = 64

// LogicalID joins parts into a PascalCase logical ID, dropping every
// character CloudFormation rejects.
//
//	LogicalID("cert-manager", "Role") == "CertManagerRole"
func LogicalID(parts ...string) string {
	var b strings.Builder
	for _, part := range parts {
		capitalizeNext := true
		for _, r := range part {
			if !isAlphanumeric(r) {
				capitalizeNext = true
				continue
			}
			if capitalizeNext {
				b.WriteRune(unicode.ToUpper(r))
				capitalizeNext = false
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// ValidateLogicalID reports whether id can be used as a logical ID.
func ValidateLogicalID(id string) error {
	if id == "" {
		return fmt.Errorf("logical ID must not be empty")
	}
	if len(id) > MaxLogicalIDLength {
		return fmt.Errorf("logical ID %q exceeds %d characters", id, MaxLogicalIDLength)
	}
	for _, r := range id {
		if !isAlphanumeric(r) {
			return fmt.Errorf("logical ID %q is non alphanumeric", id)
		}
	}
	return nil
}

// ExportName returns the cross-stack export name of an output.
func ExportName(stack, name string) string {
	return stack + ":" + name
}

// Path returns the construct path recorded in resource metadata.
func Path(stack, id string) string {
	return stack + "/" + id
}

// ValidateRoleNameLength checks a fixed IAM role name against the IAM limit.
func ValidateRoleNameLength(name string) error {
	if len(name) > MaxRoleNameLength {
		return fmt.Errorf("IAM role name(=%s) is %d characters long. It exceeds the AWS limit of %d characters", name, len(name), MaxRoleNameLength)
	}
	return nil
}

func isAlphanumeric(r rune) bool {
	return r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))
}
