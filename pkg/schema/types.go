package schema

import (
	"fmt"
	"reflect"
)

// Type validates a single configuration value.
type Type interface {
	// Name returns the type name as it appears in serialized schemas.
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

// NumberType accepts any Go numeric value.
type NumberType struct{}

func (t *NumberType) Name() string { return "number" }

func (t *NumberType) Validate(value any) error {
	if !isNumeric(value) {
		return fmt.Errorf("expected number, got %T", value)
	}
	return nil
}

// IntType accepts integers and whole floats, since JSON decodes every
// number as float64.
type IntType struct{}

func (t *IntType) Name() string { return "int" }

func (t *IntType) Validate(value any) error {
	switch v := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return nil
	case float32:
		if v == float32(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got fractional number %v", v)
	case float64:
		if v == float64(int64(v)) {
			return nil
		}
		return fmt.Errorf("expected int, got fractional number %v", v)
	default:
		return fmt.Errorf("expected int, got %T", value)
	}
}

// BooleanType accepts bool.
type BooleanType struct{}

func (t *BooleanType) Name() string { return "boolean" }

func (t *BooleanType) Validate(value any) error {
	if _, ok := value.(bool); !ok {
		return fmt.Errorf("expected boolean, got %T", value)
	}
	return nil
}

// StringType accepts string.
type StringType struct{}

func (t *StringType) Name() string { return "string" }

func (t *StringType) Validate(value any) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return nil
}

// NumberArrayType accepts any slice or array whose elements are numeric.
type NumberArrayType struct{}

func (t *NumberArrayType) Name() string { return "numberArray" }

func (t *NumberArrayType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return fmt.Errorf("expected numberArray, got %T", value)
	}
	for i := 0; i < rv.Len(); i++ {
		if elem := rv.Index(i).Interface(); !isNumeric(elem) {
			return fmt.Errorf("element %d: expected number, got %T", i, elem)
		}
	}
	return nil
}

// CustomType applies a caller-supplied check.
type CustomType struct {
	name     string
	validate func(any) error
}

func (t *CustomType) Name() string { return t.name }

func (t *CustomType) Validate(value any) error {
	return t.validate(value)
}

func Number() Type      { return &NumberType{} }
func Int() Type         { return &IntType{} }
func Boolean() Type     { return &BooleanType{} }
func String() Type      { return &StringType{} }
func NumberArray() Type { return &NumberArrayType{} }

// Custom wraps a validation function under the given name. Custom types do
// not survive a JSON round trip; they decode as their base type if the name
// is one of the built-ins and fail otherwise.
func Custom(name string, validate func(any) error) Type {
	return &CustomType{name: name, validate: validate}
}

// ParseType resolves a serialized type name.
func ParseType(name string) (Type, error) {
	switch name {
	case "number":
		return Number(), nil
	case "int":
		return Int(), nil
	case "boolean":
		return Boolean(), nil
	case "string":
		return String(), nil
	case "numberArray":
		return NumberArray(), nil
	default:
		return nil, fmt.Errorf("unsupported type: %s", name)
	}
}

// ParseTypeMap builds a Schema from key to type-name pairs.
func ParseTypeMap(typeMap map[string]string) (Schema, error) {
	result := make(Schema, len(typeMap))
	for key, name := range typeMap {
		t, err := ParseType(name)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		result[key] = t
	}
	return result, nil
}

func isNumeric(value any) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}
