package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypes(t *testing.T) {
	tests := []struct {
		name  string
		typ   Type
		value any
		ok    bool
	}{
		{"number from float", Number(), 1.5, true},
		{"number from int", Number(), 3, true},
		{"number rejects string", Number(), "3", false},
		{"int from whole float", Int(), 4.0, true},
		{"int rejects fraction", Int(), 4.5, false},
		{"int rejects bool", Int(), true, false},
		{"boolean", Boolean(), false, true},
		{"boolean rejects number", Boolean(), 0, false},
		{"string", String(), "x", true},
		{"numberArray from floats", NumberArray(), []float64{1, 2}, true},
		{"numberArray from json", NumberArray(), []any{1.0, 2}, true},
		{"numberArray rejects mixed", NumberArray(), []any{1.0, "2"}, false},
		{"numberArray rejects scalar", NumberArray(), 1.0, false},
		{"numberArray rejects nil", NumberArray(), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.typ.Validate(tt.value)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	s := Schema{"start": Number(), "num": Int()}

	assert.NoError(t, Validate(s, map[string]any{"start": 0.0, "num": 5}))

	err := Validate(s, map[string]any{"start": "zero", "extra": 1})
	require.Error(t, err)
	errs := ValidationErrors(err)
	require.Len(t, errs, 3)

	var ve *ValidationError
	require.True(t, errors.As(errs[0], &ve))
	assert.Equal(t, "num", ve.Key)
	assert.Equal(t, "required", ve.Reason)
	require.True(t, errors.As(errs[1], &ve))
	assert.Equal(t, "start", ve.Key)
	require.True(t, errors.As(errs[2], &ve))
	assert.Equal(t, "extra", ve.Key)
}

func TestValidate_EmptySchema(t *testing.T) {
	assert.NoError(t, Validate(nil, nil))
	assert.Error(t, Validate(nil, map[string]any{"value": 1}))
}

func TestValidatePartial(t *testing.T) {
	s := Schema{"start": Number(), "num": Int()}

	assert.NoError(t, ValidatePartial(s, map[string]any{"num": 3}))
	assert.Error(t, ValidatePartial(s, map[string]any{"num": 3.5}))
	assert.Error(t, ValidatePartial(s, map[string]any{"bogus": 1}))
}

func TestSchemaJSON(t *testing.T) {
	s := Schema{"value": Number(), "ms": Int(), "xs": NumberArray()}

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "object",
		"properties": {
			"value": {"type": "number", "format": "number"},
			"ms": {"type": "integer", "format": "int"},
			"xs": {"type": "array", "format": "numberArray", "items": {"type": "number"}}
		},
		"required": ["ms", "value", "xs"],
		"additionalProperties": false
	}`, string(data))

	var decoded Schema
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, s.Keys(), decoded.Keys())
	assert.Equal(t, "int", decoded["ms"].Name())
	assert.Equal(t, "numberArray", decoded["xs"].Name())
}

func TestSchemaJSON_Decoding(t *testing.T) {
	var decoded Schema
	require.NoError(t, json.Unmarshal([]byte(`{"type":"object","properties":{"n":{"type":"integer"},"on":{"type":"boolean"}}}`), &decoded))
	assert.Equal(t, "int", decoded["n"].Name())
	assert.Equal(t, "boolean", decoded["on"].Name())

	assert.Error(t, json.Unmarshal([]byte(`{"type":"object","properties":{"x":{"format":"complex"}}}`), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`{"type":"array"}`), &decoded))

	custom, err := json.Marshal(Schema{"even": Custom("even", func(any) error { return nil })})
	require.NoError(t, err)
	assert.Error(t, json.Unmarshal(custom, &decoded), "custom names do not decode")
}
