package table

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

var timeType = reflect.TypeOf(time.Time{})

// Fields flattens a record into its field values keyed by JSON name.
// Embedded structs are inlined, nested structs use dotted keys and maps
// with string keys are used as they are. Time values stay time.Time.
func Fields(record any) map[string]any {
	out := make(map[string]any)
	flatten(out, "", reflect.ValueOf(record))
	return out
}

func flatten(out map[string]any, prefix string, v reflect.Value) {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			if prefix != "" {
				out[prefix] = nil
			}
			return
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return
	}

	switch {
	case v.Type() == timeType:
		out[prefix] = v.Interface()
	case v.Kind() == reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			name, skip := jsonName(f)
			if skip {
				continue
			}
			if f.Anonymous && name == "" {
				flatten(out, prefix, v.Field(i))
				continue
			}
			if name == "" {
				name = f.Name
			}
			flatten(out, join(prefix, name), v.Field(i))
		}
	case v.Kind() == reflect.Map && v.Type().Key().Kind() == reflect.String:
		iter := v.MapRange()
		for iter.Next() {
			key := join(prefix, iter.Key().String())
			val := iter.Value()
			if val.Kind() == reflect.Interface && !val.IsNil() {
				val = val.Elem()
			}
			if val.IsValid() && (val.Kind() == reflect.Map || val.Kind() == reflect.Struct) && val.Type() != timeType {
				flatten(out, key, val)
				continue
			}
			if !val.IsValid() || (val.Kind() == reflect.Interface && val.IsNil()) {
				out[key] = nil
				continue
			}
			out[key] = val.Interface()
		}
	default:
		if prefix == "" {
			out["value"] = v.Interface()
			return
		}
		out[prefix] = v.Interface()
	}
}

func jsonName(f reflect.StructField) (name string, skip bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", true
	}
	name, _, _ = strings.Cut(tag, ",")
	return name, false
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// Text is the string form of a field value used for search and export.
func Text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.Format(time.RFC3339)
	case *time.Time:
		if val == nil || val.IsZero() {
			return ""
		}
		return val.Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
