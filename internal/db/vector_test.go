package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorValue(t *testing.T) {
	got, err := Vector{1, -0.5, 0.25}.Value()
	require.NoError(t, err)
	assert.Equal(t, "[1,-0.5,0.25]", got)

	got, err = Vector{}.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", got)
}

func TestVectorScan(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want Vector
	}{
		{"string", "[1,2.5,-3]", Vector{1, 2.5, -3}},
		{"bytes", []byte("[0.125, 4]"), Vector{0.125, 4}},
		{"empty", "[]", Vector{}},
		{"null", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Vector
			require.NoError(t, v.Scan(tt.src))
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestVectorScanInvalid(t *testing.T) {
	var v Vector
	assert.Error(t, v.Scan("1,2,3"))
	assert.Error(t, v.Scan("[1,x]"))
	assert.Error(t, v.Scan(42))
}
