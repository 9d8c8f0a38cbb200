package schema

import "reflect"

// For returns the JSON Schema of T. See [FromType].
func For[T any]() map[string]any {
	return FromType(reflect.TypeFor[T]())
}

// FromType derives a JSON Schema from the shape of a Go value: strings,
// numbers, booleans, slices and fixed-size arrays. Arrays pin their length,
// so [3]string describes a subject-predicate-object triple. Any other kind
// yields an empty schema, which accepts every value.
func FromType(t reflect.Type) map[string]any {
	if t == nil {
		return map[string]any{}
	}

	switch t.Kind() {
	case reflect.String:
		return map[string]any{"type": "string"}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "integer"}

	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}

	case reflect.Bool:
		return map[string]any{"type": "boolean"}

	case reflect.Slice:
		return map[string]any{
			"type":  "array",
			"items": FromType(t.Elem()),
		}

	case reflect.Array:
		return map[string]any{
			"type":     "array",
			"items":    FromType(t.Elem()),
			"minItems": t.Len(),
			"maxItems": t.Len(),
		}
	}
	return map[string]any{}
}
