package render

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	sigsyaml "sigs.k8s.io/yaml"

	eksplatform "github.com/coderco/eks-platform"
	"github.com/coderco/eks-platform/internal/naming"
	"github.com/coderco/eks-platform/internal/serialize"
	"github.com/coderco/eks-platform/intrinsics"
)

// Document renders v as YAML. Without intrinsic leaves the result is a plain
// string; otherwise it is an Fn::Sub whose variables hold the intrinsics and
// whose literal "${" sequences are escaped as "${!".
func Document(v any) (any, error) {
	r := &subst{
		escape: containsIntrinsic(reflect.ValueOf(v)),
		vars:   make(map[string]any),
		byKey:  make(map[string]string),
	}
	plain, err := r.walk(reflect.ValueOf(v))
	if err != nil {
		return nil, err
	}

	data, err := sigsyaml.Marshal(plain)
	if err != nil {
		return nil, fmt.Errorf("marshaling document: %w", err)
	}
	if len(r.vars) == 0 {
		return string(data), nil
	}
	return intrinsics.SubWithMap{String: string(data), Variables: r.vars}, nil
}

type subst struct {
	escape bool
	vars   map[string]any
	// byKey maps the serialized intrinsic to its variable name
	byKey map[string]string
}

func (r *subst) walk(v reflect.Value) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}
	if v.CanInterface() && intrinsics.IsIntrinsic(v.Interface()) {
		name, err := r.variable(v.Interface())
		if err != nil {
			return nil, err
		}
		return "${" + name + "}", nil
	}

	switch v.Kind() {
	case reflect.Interface, reflect.Ptr:
		if v.IsNil() {
			return nil, nil
		}
		return r.walk(v.Elem())
	case reflect.String:
		if r.escape {
			return strings.ReplaceAll(v.String(), "${", "${!"), nil
		}
		return v.String(), nil
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return v.Interface(), nil
		}
		keys := make([]string, 0, v.Len())
		for _, k := range v.MapKeys() {
			keys = append(keys, k.String())
		}
		// sorted so that variable names are assigned deterministically
		sort.Strings(keys)
		out := make(map[string]any, len(keys))
		for _, k := range keys {
			elem, err := r.walk(v.MapIndex(reflect.ValueOf(k).Convert(v.Type().Key())))
			if err != nil {
				return nil, err
			}
			out[r.escapeString(k)] = elem
		}
		return out, nil
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return nil, nil
		}
		out := make([]any, v.Len())
		for i := range out {
			elem, err := r.walk(v.Index(i))
			if err != nil {
				return nil, err
			}
			out[i] = elem
		}
		return out, nil
	}
	return v.Interface(), nil
}

func (r *subst) escapeString(s string) string {
	if r.escape {
		return strings.ReplaceAll(s, "${", "${!")
	}
	return s
}

// variable returns the Fn::Sub variable holding fn. Identical intrinsics
// share a variable; distinct ones with the same derived name get a suffix.
func (r *subst) variable(fn any) (string, error) {
	value, err := serialize.Value(fn)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	key := string(data)
	if name, ok := r.byKey[key]; ok {
		return name, nil
	}

	base := variableName(fn)
	name := base
	for i := 2; ; i++ {
		if _, taken := r.vars[name]; !taken {
			break
		}
		name = base + strconv.Itoa(i)
	}
	r.vars[name] = fn
	r.byKey[key] = name
	return name, nil
}

func variableName(fn any) string {
	var name string
	switch val := fn.(type) {
	case intrinsics.ImportValue:
		if s, ok := any(val.ExportName).(string); ok {
			name = naming.LogicalID(s)
		}
	case intrinsics.GetAtt:
		name = naming.LogicalID(val.LogicalName, val.Attribute)
	case eksplatform.AttrRef:
		name = naming.LogicalID(val.Resource, val.Attribute)
	case intrinsics.Ref:
		name = naming.LogicalID(val.LogicalName)
	}
	if name == "" {
		return "Value"
	}
	return name
}

func containsIntrinsic(v reflect.Value) bool {
	if !v.IsValid() {
		return false
	}
	if v.CanInterface() && intrinsics.IsIntrinsic(v.Interface()) {
		return true
	}
	switch v.Kind() {
	case reflect.Interface, reflect.Ptr:
		return !v.IsNil() && containsIntrinsic(v.Elem())
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if containsIntrinsic(iter.Value()) {
				return true
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if containsIntrinsic(v.Index(i)) {
				return true
			}
		}
	}
	return false
}
