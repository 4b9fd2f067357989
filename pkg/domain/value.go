package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Value is a populated port payload. A nil Value means the port is unpopulated.
//
// The variants are Number, Boolean, NumberArray and String; the interface is
// sealed so that a DataType always identifies exactly one Go type.
type Value interface {
	DataType() DataType
	// Equal reports value equality. Arrays compare element-wise and NaN
	// equals NaN so that re-setting NaN is not treated as a change.
	Equal(other Value) bool
	// Raw returns the plain Go form (float64, bool, []float64, string) used
	// for serialization.
	Raw() any
	String() string

	sealed()
}

type (
	Number      float64
	Boolean     bool
	NumberArray []float64
	String      string
)

func (Number) DataType() DataType      { return TypeNumber }
func (Boolean) DataType() DataType     { return TypeBoolean }
func (NumberArray) DataType() DataType { return TypeNumberArray }
func (String) DataType() DataType      { return TypeString }

func (Number) sealed()      {}
func (Boolean) sealed()     {}
func (NumberArray) sealed() {}
func (String) sealed()      {}

func (v Number) Equal(other Value) bool {
	o, ok := other.(Number)
	return ok && floatEqual(float64(v), float64(o))
}

func (v Boolean) Equal(other Value) bool {
	o, ok := other.(Boolean)
	return ok && v == o
}

func (v NumberArray) Equal(other Value) bool {
	o, ok := other.(NumberArray)
	if !ok || len(v) != len(o) {
		return false
	}
	for i := range v {
		if !floatEqual(v[i], o[i]) {
			return false
		}
	}
	return true
}

func (v String) Equal(other Value) bool {
	o, ok := other.(String)
	return ok && v == o
}

func (v Number) Raw() any      { return float64(v) }
func (v Boolean) Raw() any     { return bool(v) }
func (v NumberArray) Raw() any { return []float64(v.clone()) }
func (v String) Raw() any      { return string(v) }

func (v Number) String() string  { return formatFloat(float64(v)) }
func (v Boolean) String() string { return strconv.FormatBool(bool(v)) }
func (v String) String() string  { return string(v) }

func (v NumberArray) String() string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = formatFloat(f)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (v NumberArray) clone() NumberArray {
	if v == nil {
		return nil
	}
	out := make(NumberArray, len(v))
	copy(out, v)
	return out
}

// ValuesEqual compares two possibly unpopulated values.
func ValuesEqual(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// CloneValue returns a copy of v that shares no memory with it.
func CloneValue(v Value) Value {
	if arr, ok := v.(NumberArray); ok {
		return arr.clone()
	}
	return v
}

// FormatValue renders v for display, using "-" for unpopulated.
func FormatValue(v Value) string {
	if v == nil {
		return "-"
	}
	return v.String()
}

// RawValue returns v.Raw(), or nil for an unpopulated value.
func RawValue(v Value) any {
	if v == nil {
		return nil
	}
	return v.Raw()
}

// ParseValue converts a decoded JSON or YAML scalar into a Value of type dt.
// Values that already implement Value are checked and returned as is.
func ParseValue(dt DataType, raw any) (Value, error) {
	if v, ok := raw.(Value); ok {
		if v.DataType() != dt {
			return nil, fmt.Errorf("%w: expected %s, got %s", ErrTypeMismatch, dt, v.DataType())
		}
		return CloneValue(v), nil
	}

	switch dt {
	case TypeNumber:
		if f, ok := toFloat(raw); ok {
			return Number(f), nil
		}
	case TypeBoolean:
		if b, ok := raw.(bool); ok {
			return Boolean(b), nil
		}
	case TypeString:
		if s, ok := raw.(string); ok {
			return String(s), nil
		}
	case TypeNumberArray:
		if arr, ok := toFloatSlice(raw); ok {
			return arr, nil
		}
	default:
		return nil, fmt.Errorf("%w: unsupported data type %q", ErrTypeMismatch, dt)
	}
	return nil, fmt.Errorf("%w: expected %s, got %T", ErrTypeMismatch, dt, raw)
}

// ParseLiteral parses a command-line literal such as "3.5", "true",
// "[1, 2, 3]" or "hello" into a Value of type dt.
func ParseLiteral(dt DataType, s string) (Value, error) {
	s = strings.TrimSpace(s)
	switch dt {
	case TypeNumber:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrTypeMismatch, s)
		}
		return Number(f), nil
	case TypeBoolean:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a boolean", ErrTypeMismatch, s)
		}
		return Boolean(b), nil
	case TypeString:
		var quoted string
		if strings.HasPrefix(s, `"`) && json.Unmarshal([]byte(s), &quoted) == nil {
			return String(quoted), nil
		}
		return String(s), nil
	case TypeNumberArray:
		body := strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
		if strings.TrimSpace(body) == "" {
			return NumberArray{}, nil
		}
		fields := strings.Split(body, ",")
		out := make(NumberArray, 0, len(fields))
		for _, f := range fields {
			n, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not a number array", ErrTypeMismatch, s)
			}
			out = append(out, n)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: unsupported data type %q", ErrTypeMismatch, dt)
}

func toFloat(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

func toFloatSlice(raw any) (NumberArray, bool) {
	switch xs := raw.(type) {
	case []float64:
		return NumberArray(xs).clone(), true
	case []int:
		out := make(NumberArray, len(xs))
		for i, x := range xs {
			out[i] = float64(x)
		}
		return out, true
	case []any:
		out := make(NumberArray, len(xs))
		for i, x := range xs {
			f, ok := toFloat(x)
			if !ok {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	}
	return nil, false
}

func floatEqual(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
