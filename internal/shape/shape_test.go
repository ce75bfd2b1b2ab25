package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape_String(t *testing.T) {
	assert.Equal(t, "(784,)", Of(784).String())
	assert.Equal(t, "(None, 64)", Of(Unknown, 64).String())
	assert.Equal(t, "()", Shape{}.String())
	assert.Equal(t, "(None, 10)", Of(10).WithBatch(Unknown))
}

func TestShape_Validate(t *testing.T) {
	require.NoError(t, Of(3, Unknown, 4).Validate())
	assert.Error(t, Of(3, 0).Validate())
	assert.Error(t, Of(-2).Validate())
}

func TestShape_NumElements(t *testing.T) {
	tests := []struct {
		s    Shape
		want int
	}{
		{Of(2, 3, 4), 24},
		{Shape{}, 1},
		{Of(2, Unknown), Unknown},
		{Of(1<<31, 1<<31), 1 << 62},
	}
	for _, tt := range tests {
		got, err := tt.s.NumElements()
		require.NoError(t, err, tt.s.String())
		assert.Equal(t, tt.want, got, tt.s.String())
	}

	for _, s := range []Shape{Of(1<<32, 1<<32), Of(1<<33, 1<<31, 3)} {
		_, err := s.NumElements()
		assert.ErrorIs(t, err, ErrOverflow, s.String())
	}
}

func TestShape_EqualAndCompatible(t *testing.T) {
	a := Of(Unknown, 5)
	b := Of(3, 5)

	assert.False(t, a.Equal(b))
	assert.True(t, a.Compatible(b))
	assert.False(t, a.Compatible(Of(3, 6)))
	assert.False(t, a.Compatible(Of(5)))
	assert.True(t, b.Equal(Of(3, 5)))
}

func TestShape_CloneIsIndependent(t *testing.T) {
	s := Of(1, 2)
	c := s.Clone()
	c[0] = 9
	assert.Equal(t, 1, s[0])
	assert.Nil(t, Shape(nil).Clone())
}

func TestBroadcast(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Shape
		want    Shape
		wantErr bool
	}{
		{"same", Of(3, 5), Of(3, 5), Of(3, 5), false},
		{"stretch ones", Of(3, 1), Of(1, 5), Of(3, 5), false},
		{"missing leading", Of(5), Of(3, 5), Of(3, 5), false},
		{"unknown resolves", Of(Unknown, 5), Of(3, 5), Of(3, 5), false},
		{"both unknown", Of(Unknown), Of(Unknown), Of(Unknown), false},
		{"mismatch", Of(3, 4), Of(3, 5), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Broadcast(tt.a, tt.b)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
