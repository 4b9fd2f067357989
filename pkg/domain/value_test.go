package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueEqual(t *testing.T) {
	assert.True(t, Number(2).Equal(Number(2)))
	assert.False(t, Number(2).Equal(Number(3)))
	assert.False(t, Number(1).Equal(Boolean(true)))
	assert.True(t, Number(math.NaN()).Equal(Number(math.NaN())))
	assert.True(t, NumberArray{1, 2}.Equal(NumberArray{1, 2}))
	assert.False(t, NumberArray{1, 2}.Equal(NumberArray{1, 2, 3}))
	assert.True(t, String("a").Equal(String("a")))

	assert.True(t, ValuesEqual(nil, nil))
	assert.False(t, ValuesEqual(nil, Number(0)))
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		name    string
		dt      DataType
		raw     any
		want    Value
		wantErr bool
	}{
		{"json number", TypeNumber, 3.5, Number(3.5), false},
		{"yaml int", TypeNumber, 7, Number(7), false},
		{"bool", TypeBoolean, true, Boolean(true), false},
		{"string", TypeString, "hi", String("hi"), false},
		{"json array", TypeNumberArray, []any{1.0, 2}, NumberArray{1, 2}, false},
		{"typed value", TypeNumber, Number(4), Number(4), false},
		{"number from string", TypeNumber, "3", nil, true},
		{"typed value mismatch", TypeString, Number(4), nil, true},
		{"mixed array", TypeNumberArray, []any{1.0, "x"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseValue(tt.dt, tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrTypeMismatch)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLiteral(t *testing.T) {
	v, err := ParseLiteral(TypeNumber, " 2.5 ")
	require.NoError(t, err)
	assert.Equal(t, Number(2.5), v)

	v, err = ParseLiteral(TypeNumberArray, "[1, 2,3]")
	require.NoError(t, err)
	assert.Equal(t, NumberArray{1, 2, 3}, v)

	v, err = ParseLiteral(TypeBoolean, "false")
	require.NoError(t, err)
	assert.Equal(t, Boolean(false), v)

	v, err = ParseLiteral(TypeString, "42")
	require.NoError(t, err)
	assert.Equal(t, String("42"), v)

	v, err = ParseLiteral(TypeString, `"quoted"`)
	require.NoError(t, err)
	assert.Equal(t, String("quoted"), v)

	_, err = ParseLiteral(TypeNumber, "abc")
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "-", FormatValue(nil))
	assert.Equal(t, "17", FormatValue(Number(17)))
	assert.Equal(t, "[0, 0.5, 1]", FormatValue(NumberArray{0, 0.5, 1}))
}

func TestCloneValue_ArraysDoNotAlias(t *testing.T) {
	orig := NumberArray{1, 2}
	clone := CloneValue(orig).(NumberArray)
	clone[0] = 9
	assert.Equal(t, 1.0, orig[0])
}
