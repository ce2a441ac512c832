// Package serialize converts typed resources to CloudFormation property maps.
package serialize

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/coderco/eks-platform/intrinsics"
)

// Resource serializes a Go struct to CloudFormation resource properties.
// It handles:
// - JSON tag names (falling back to the Go field name)
// - Omitting nil/zero values
// - Nested structs, slices and maps
// - Intrinsics and other json.Marshaler values, including intrinsics nested
// inside Fn::Join, Fn::Sub variables, Fn::ImportValue and tags
func Resource(v any) (map[string]any, error) {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return nil, nil
	}

	result := make(map[string]any)
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		fieldVal := val.Field(i)

		if !field.IsExported() {
			continue
		}

		name := getFieldName(field)
		if name == "-" {
			continue
		}

		if isZeroValue(fieldVal) {
			continue
		}

		serialized, err := serializeValue(fieldVal)
		if err != nil {
			return nil, err
		}

		if serialized != nil {
			result[name] = serialized
		}
	}

	return result, nil
}

// Value serializes a single value the same way Resource serializes fields.
func Value(v any) (any, error) {
	return serializeValue(reflect.ValueOf(v))
}

// getFieldName returns the JSON field name for a struct field.
func getFieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name
	}

	parts := strings.Split(tag, ",")
	name := parts[0]
	if name == "" {
		return field.Name
	}
	return name
}

// isZeroValue returns true if the value is the zero value for its type.
func isZeroValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Slice, reflect.Map:
		return v.IsNil() || v.Len() == 0
	case reflect.String:
		return v.String() == ""
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Struct:
		if v.CanInterface() {
			if zeroer, ok := v.Interface().(interface{ IsZero() bool }); ok {
				return zeroer.IsZero()
			}
		}
		return false
	default:
		return false
	}
}

// serializeIntrinsic handles the intrinsics whose operands may themselves be
// intrinsics or typed values. ok is false for every other value.
func serializeIntrinsic(v any) (out any, ok bool, err error) {
	switch val := v.(type) {
	case intrinsics.Join:
		values := make([]any, len(val.Values))
		for i, elem := range val.Values {
			if values[i], err = Value(elem); err != nil {
				return nil, true, err
			}
		}
		return map[string]any{"Fn::Join": []any{val.Delimiter, values}}, true, nil

	case intrinsics.SubWithMap:
		vars := make(map[string]any, len(val.Variables))
		for k, elem := range val.Variables {
			if vars[k], err = Value(elem); err != nil {
				return nil, true, err
			}
		}
		return map[string]any{"Fn::Sub": []any{val.String, vars}}, true, nil

	case intrinsics.ImportValue:
		name, err := Value(val.ExportName)
		if err != nil {
			return nil, true, err
		}
		return map[string]any{"Fn::ImportValue": name}, true, nil

	case intrinsics.Tag:
		value, err := Value(val.Value)
		if err != nil {
			return nil, true, err
		}
		return map[string]any{"Key": val.Key, "Value": value}, true, nil
	}
	return nil, false, nil
}

// serializeValue converts a reflect.Value to a JSON-compatible value.
func serializeValue(v reflect.Value) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}

	if v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, nil
		}
		return serializeValue(v.Elem())
	}

	if v.CanInterface() {
		if out, ok, err := serializeIntrinsic(v.Interface()); ok {
			return out, err
		}

		if marshaler, ok := v.Interface().(json.Marshaler); ok {
			data, err := marshaler.MarshalJSON()
			if err != nil {
				return nil, err
			}
			var result any
			if err := json.Unmarshal(data, &result); err != nil {
				return nil, err
			}
			return result, nil
		}
	}

	switch v.Kind() {
	case reflect.Struct:
		return Resource(v.Interface())

	case reflect.Slice:
		if v.Len() == 0 {
			return nil, nil
		}
		result := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			elem, err := serializeValue(v.Index(i))
			if err != nil {
				return nil, err
			}
			result[i] = elem
		}
		return result, nil

	case reflect.Map:
		if v.Len() == 0 {
			return nil, nil
		}
		result := make(map[string]any)
		iter := v.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			val, err := serializeValue(iter.Value())
			if err != nil {
				return nil, err
			}
			result[key] = val
		}
		return result, nil

	case reflect.String:
		return v.String(), nil

	case reflect.Bool:
		return v.Bool(), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint(), nil

	case reflect.Float32, reflect.Float64:
		return v.Float(), nil

	default:
		data, err := json.Marshal(v.Interface())
		if err != nil {
			return nil, err
		}
		var result any
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, err
		}
		return result, nil
	}
}
