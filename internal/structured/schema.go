// Package structured mediates between free-form model output and typed,
// schema-conformant values. It owns prompt augmentation, response cleaning,
// JSON parsing, shape validation, and the bounded retry loop; every
// AI-assisted feature goes through this single entry point.
package structured

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// FieldType enumerates the declared field types.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeBoolean FieldType = "boolean"
	TypeArray   FieldType = "array"
	TypeObject  FieldType = "object"
)

// Field declares one schema field. Arrays carry an element declaration,
// objects carry nested fields.
type Field struct {
	Type     FieldType
	Optional bool
	Elem     *Field
	Fields   map[string]Field
}

// Schema is a declarative shape description: field name to declaration.
// The same mechanism serves every AI-assisted feature, so schemas stay
// data, not code.
type Schema struct {
	Name   string
	Fields map[string]Field
}

// Example derives a representative value skeleton from the schema. It is
// appended to prompts so the model sees the exact shape expected.
func (s Schema) Example() map[string]any {
	out := make(map[string]any, len(s.Fields))
	for name, f := range s.Fields {
		out[name] = exampleValue(f)
	}
	return out
}

func exampleValue(f Field) any {
	switch f.Type {
	case TypeString:
		return "example"
	case TypeNumber:
		return 1
	case TypeBoolean:
		return true
	case TypeArray:
		if f.Elem == nil {
			return []any{"example"}
		}
		return []any{exampleValue(*f.Elem)}
	case TypeObject:
		obj := make(map[string]any, len(f.Fields))
		for name, nested := range f.Fields {
			obj[name] = exampleValue(nested)
		}
		return obj
	default:
		return nil
	}
}

// PromptSuffix renders the formatting constraints and example skeleton
// appended to every mediated prompt.
func (s Schema) PromptSuffix() string {
	example, _ := json.MarshalIndent(s.Example(), "", "  ")
	return fmt.Sprintf(
		"\n\nRespond with ONLY a JSON object, no prose, no markdown fences.\n"+
			"All required fields must be present.\n"+
			"Required fields: %v\n"+
			"Example of the expected shape:\n%s",
		s.requiredFields(), example)
}

func (s Schema) requiredFields() []string {
	var req []string
	for name, f := range s.Fields {
		if !f.Optional {
			req = append(req, name)
		}
	}
	sort.Strings(req)
	return req
}

// Check validates a parsed value against the schema. Unknown extra fields
// are tolerated; missing required fields and type mismatches are not.
func (s Schema) Check(value map[string]any) error {
	return checkObject(s.Name, Field{Type: TypeObject, Fields: s.Fields}, value)
}

func checkObject(path string, f Field, value map[string]any) error {
	for name, nested := range f.Fields {
		fieldPath := path + "." + name
		v, ok := value[name]
		if !ok || v == nil {
			if nested.Optional {
				continue
			}
			return fmt.Errorf("%s: required field missing", fieldPath)
		}
		if err := checkValue(fieldPath, nested, v); err != nil {
			return err
		}
	}
	return nil
}

func checkValue(path string, f Field, v any) error {
	switch f.Type {
	case TypeString:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("%s: expected string, got %T", path, v)
		}
	case TypeNumber:
		n, ok := v.(float64)
		if !ok {
			return fmt.Errorf("%s: expected number, got %T", path, v)
		}
		if math.IsNaN(n) {
			return fmt.Errorf("%s: NaN is not a value", path)
		}
	case TypeBoolean:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("%s: expected boolean, got %T", path, v)
		}
	case TypeArray:
		items, ok := v.([]any)
		if !ok {
			return fmt.Errorf("%s: expected array, got %T", path, v)
		}
		if f.Elem != nil {
			for i, item := range items {
				if err := checkValue(fmt.Sprintf("%s[%d]", path, i), *f.Elem, item); err != nil {
					return err
				}
			}
		}
	case TypeObject:
		obj, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: expected object, got %T", path, v)
		}
		return checkObject(path, f, obj)
	default:
		return fmt.Errorf("%s: unknown field type %q", path, f.Type)
	}
	return nil
}
