package schema

import (
	"encoding/json"
	"fmt"
)

// document is the JSON Schema form of a Schema. Every key is required and
// unknown keys are rejected, mirroring Validate. The weft type name travels
// in "format" so that int and custom names survive the round trip.
type document struct {
	Type                 string              `json:"type"`
	Properties           map[string]property `json:"properties"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties bool                `json:"additionalProperties"`
}

type property struct {
	Type   string    `json:"type,omitempty"`
	Format string    `json:"format,omitempty"`
	Items  *property `json:"items,omitempty"`
}

func propertyFor(t Type) property {
	switch t.(type) {
	case *NumberType:
		return property{Type: "number", Format: t.Name()}
	case *IntType:
		return property{Type: "integer", Format: t.Name()}
	case *BooleanType:
		return property{Type: "boolean", Format: t.Name()}
	case *StringType:
		return property{Type: "string", Format: t.Name()}
	case *NumberArrayType:
		return property{Type: "array", Format: t.Name(), Items: &property{Type: "number"}}
	}
	return property{Format: t.Name()}
}

func (p property) typeName() string {
	if p.Format != "" {
		return p.Format
	}
	switch p.Type {
	case "integer":
		return "int"
	case "array":
		return "numberArray"
	}
	return p.Type
}

// MarshalJSON encodes the schema as a JSON Schema object.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	doc := document{Type: "object", Properties: make(map[string]property, len(s)), Required: s.Keys()}
	for key, typ := range s {
		if typ == nil {
			return nil, fmt.Errorf("field %s: type is nil", key)
		}
		doc.Properties[key] = propertyFor(typ)
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes a JSON Schema object written by MarshalJSON. A
// property without a format falls back to its JSON type.
func (s *Schema) UnmarshalJSON(data []byte) error {
	if s == nil {
		return fmt.Errorf("schema: UnmarshalJSON on nil pointer")
	}
	if string(data) == "null" {
		*s = nil
		return nil
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc.Type != "object" {
		return fmt.Errorf("schema: expected object schema, got %q", doc.Type)
	}
	names := make(map[string]string, len(doc.Properties))
	for key, p := range doc.Properties {
		names[key] = p.typeName()
	}
	parsed, err := ParseTypeMap(names)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
