package render

import (
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
)

// Field sets a value at a path of a manifest. Values may be intrinsics.
type Field struct {
	Path  []string
	Value any
}

// Manifest renders a typed Kubernetes object (a pointer to a struct such
// as *corev1.Namespace) as a template document, after setting fields whose
// values are only known at deploy time.
func Manifest(obj any, fields ...Field) (any, error) {
	content, err := runtime.DefaultUnstructuredConverter.ToUnstructured(obj)
	if err != nil {
		return nil, fmt.Errorf("converting %T: %w", obj, err)
	}
	u := &unstructured.Unstructured{Object: content}

	// metav1.Time marshals an unset creationTimestamp as null
	if ts, found, _ := unstructured.NestedFieldNoCopy(u.Object, "metadata", "creationTimestamp"); found && ts == nil {
		unstructured.RemoveNestedField(u.Object, "metadata", "creationTimestamp")
	}

	unstructured.RemoveNestedField(u.Object, "status")

	for _, f := range fields {
		if err := setField(u.Object, f); err != nil {
			return nil, fmt.Errorf("%s %q: %w", u.GetKind(), u.GetName(), err)
		}
	}
	return Document(u.Object)
}

// setField assigns without copying: unstructured.SetNestedField deep-copies
// its value, which only works for JSON values.
func setField(obj map[string]any, f Field) error {
	if len(f.Path) == 0 {
		return fmt.Errorf("empty field path")
	}
	parentPath := f.Path[:len(f.Path)-1]
	parent := obj
	if len(parentPath) > 0 {
		v, found, err := unstructured.NestedFieldNoCopy(obj, parentPath...)
		if err != nil {
			return err
		}
		if !found {
			if err := unstructured.SetNestedMap(obj, map[string]any{}, parentPath...); err != nil {
				return err
			}
			v, _, _ = unstructured.NestedFieldNoCopy(obj, parentPath...)
		}
		m, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("field %v is %T, not an object", parentPath, v)
		}
		parent = m
	}
	parent[f.Path[len(f.Path)-1]] = f.Value
	return nil
}
