package domain

import (
	"fmt"

	"github.com/aretw0/weft/pkg/schema"
)

// DataType is the closed set of payload kinds a port can carry.
type DataType string

const (
	TypeNumber      DataType = "number"
	TypeBoolean     DataType = "boolean"
	TypeNumberArray DataType = "numberArray"
	TypeString      DataType = "string"
)

// DataTypes lists every supported data type.
var DataTypes = []DataType{TypeNumber, TypeBoolean, TypeNumberArray, TypeString}

func (t DataType) String() string { return string(t) }

// Valid reports whether t is one of the supported data types.
func (t DataType) Valid() bool {
	switch t {
	case TypeNumber, TypeBoolean, TypeNumberArray, TypeString:
		return true
	}
	return false
}

// Schema returns the config validator for values of this type.
func (t DataType) Schema() schema.Type {
	switch t {
	case TypeNumber:
		return schema.Number()
	case TypeBoolean:
		return schema.Boolean()
	case TypeNumberArray:
		return schema.NumberArray()
	case TypeString:
		return schema.String()
	}
	return nil
}

// ParseDataType resolves a data type name.
func ParseDataType(s string) (DataType, error) {
	t := DataType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: unsupported data type %q", ErrTypeMismatch, s)
	}
	return t, nil
}

func (t *DataType) UnmarshalText(text []byte) error {
	parsed, err := ParseDataType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
