package render

import (
	"fmt"
	"regexp"

	"github.com/coderco/eks-platform/intrinsics"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.\-]+)\s*\}\}`)

// Resolver returns the value of a placeholder: a string or an intrinsic.
type Resolver func(name string) (any, error)

// Placeholders returns the placeholder names in s, in order of appearance.
func Placeholders(s string) []string {
	var names []string
	for _, m := range placeholderPattern.FindAllStringSubmatch(s, -1) {
		names = append(names, m[1])
	}
	return names
}

// Expand replaces the placeholders of s.
//
// A string that is exactly one placeholder becomes the resolved value as is.
// When a placeholder embedded in text resolves to an intrinsic, the result is
// an Fn::Join of the literal parts and the resolved values.
func Expand(s string, resolve Resolver) (any, error) {
	matches := placeholderPattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s, nil
	}
	if len(matches) == 1 && matches[0][0] == 0 && matches[0][1] == len(s) {
		return resolveName(s[matches[0][2]:matches[0][3]], resolve)
	}

	var parts []any
	literal := ""
	joined := false
	last := 0
	for _, m := range matches {
		literal += s[last:m[0]]
		last = m[1]

		v, err := resolveName(s[m[2]:m[3]], resolve)
		if err != nil {
			return nil, err
		}
		if str, ok := v.(string); ok {
			literal += str
			continue
		}
		joined = true
		if literal != "" {
			parts = append(parts, literal)
			literal = ""
		}
		parts = append(parts, v)
	}
	literal += s[last:]

	if !joined {
		return literal, nil
	}
	if literal != "" {
		parts = append(parts, literal)
	}
	return intrinsics.Join{Delimiter: "", Values: parts}, nil
}

// ExpandValue expands placeholders in every string leaf of v. Maps and
// slices are copied; v is not modified.
func ExpandValue(v any, resolve Resolver) (any, error) {
	switch val := v.(type) {
	case string:
		return Expand(val, resolve)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			expanded, err := ExpandValue(elem, resolve)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = expanded
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			expanded, err := ExpandValue(elem, resolve)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = expanded
		}
		return out, nil
	case []string:
		out := make([]any, len(val))
		for i, elem := range val {
			expanded, err := Expand(elem, resolve)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = expanded
		}
		return out, nil
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			expanded, err := Expand(elem, resolve)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = expanded
		}
		return out, nil
	}
	return v, nil
}

func resolveName(name string, resolve Resolver) (any, error) {
	v, err := resolve(name)
	if err != nil {
		return nil, fmt.Errorf("placeholder {{%s}}: %w", name, err)
	}
	return v, nil
}
