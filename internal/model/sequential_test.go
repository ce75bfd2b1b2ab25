package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/layergraph/internal/graph"
	"github.com/born-ml/layergraph/internal/layer"
	"github.com/born-ml/layergraph/internal/shape"
)

func must(l *layer.Layer, err error) *layer.Layer {
	if err != nil {
		panic(err)
	}
	return l
}

// mlp builds input(784) -> Dense(32) -> relu -> Dense(10) -> softmax.
func mlp(t *testing.T) []*layer.Layer {
	t.Helper()
	return []*layer.Layer{
		must(layer.NewDense(32, layer.WithInputShape(784), layer.WithName("hidden"))),
		must(layer.NewActivation("relu", layer.WithName("relu"))),
		must(layer.NewDense(10, layer.WithName("logits"))),
		must(layer.NewActivation("softmax", layer.WithName("probs"))),
	}
}

func TestSequential_MLP(t *testing.T) {
	m, err := Sequential(mlp(t))
	require.NoError(t, err)

	assert.Equal(t, "sequential", m.Name())
	assert.Equal(t, 4, m.Len())
	require.Len(t, m.Inputs(), 1)
	require.Len(t, m.Outputs(), 1)
	assert.Equal(t, shape.Of(784), m.Inputs()[0].Shape())
	assert.Equal(t, shape.Of(10), m.Outputs()[0].Shape())
	assert.Equal(t, []string{"hidden", "relu", "logits", "probs"}, m.LayerNames())
	assert.Empty(t, m.Warnings())
}

func TestSequential_LengthAndOutputShape(t *testing.T) {
	for _, n := range []int{1, 2, 5, 9} {
		layers := []*layer.Layer{must(layer.NewDense(8, layer.WithInputShape(8)))}
		for i := 1; i < n; i++ {
			layers = append(layers, must(layer.NewDense(8+i)))
		}

		m, err := Sequential(layers)
		require.NoError(t, err)
		assert.Equal(t, n, m.Len())

		lastNode := m.Nodes()[n-1]
		assert.Equal(t, lastNode.OutputShapes()[0], m.Outputs()[0].Shape())
	}
}

func TestSequential_Errors(t *testing.T) {
	_, err := Sequential(nil)
	assert.ErrorIs(t, err, ErrNoLayers)

	noShape := must(layer.NewDense(3))
	_, err = Sequential([]*layer.Layer{noShape})
	assert.ErrorIs(t, err, ErrMissingInputShape)
	assert.Equal(t, 0, noShape.CallCount())

	_, err = Sequential([]*layer.Layer{nil})
	assert.ErrorIs(t, err, graph.ErrNilLayer)
}

func TestSequential_ShapeErrorIsAllOrNothing(t *testing.T) {
	first := must(layer.NewDense(16, layer.WithInputShape(4)))
	lstm := must(layer.NewLSTM(8, false))

	_, err := Sequential([]*layer.Layer{first, lstm})
	require.Error(t, err)
	assert.ErrorIs(t, err, layer.ErrShape)

	var shapeErr *layer.ShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, lstm.Name(), shapeErr.Layer)

	// nothing got bound, so the layers remain usable elsewhere
	assert.Equal(t, 0, first.CallCount())
	m, err := Sequential([]*layer.Layer{first})
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())
}

func TestSequential_NonFirstDeclaredShape(t *testing.T) {
	first := must(layer.NewDense(16, layer.WithInputShape(4)))
	agreeing := must(layer.NewDense(2, layer.WithInputShape(16)))
	m, err := Sequential([]*layer.Layer{first, agreeing})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())

	first2 := must(layer.NewDense(16, layer.WithInputShape(4)))
	conflicting := must(layer.NewDense(2, layer.WithInputShape(32), layer.WithName("bad")))
	_, err = Sequential([]*layer.Layer{first2, conflicting})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflictingInputShape)

	var conflict *ConflictingInputShapeError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, 1, conflict.Index)
	assert.Equal(t, "(32,)", conflict.Declared)
	assert.Equal(t, "(16,)", conflict.Inferred)

	first3 := must(layer.NewDense(16, layer.WithBatchInputShape(8, 4)))
	batchConflict := must(layer.NewDense(2, layer.WithBatchInputShape(4, 16)))
	_, err = Sequential([]*layer.Layer{first3, batchConflict})
	assert.ErrorIs(t, err, ErrConflictingInputShape)
}

func TestSequential_DuplicateNameLeavesLayersUnbound(t *testing.T) {
	a := must(layer.NewDense(4, layer.WithInputShape(4), layer.WithName("x")))
	b := must(layer.NewDense(4, layer.WithName("x")))

	_, err := Sequential([]*layer.Layer{a, b})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Equal(t, 0, a.CallCount())
	assert.Equal(t, 0, b.CallCount())

	// both layers can still be used by a fresh model
	y := must(layer.NewDense(2, layer.WithName("y")))
	m, err := Sequential([]*layer.Layer{a, y})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, m.LayerNames())
	assert.Equal(t, 1, a.CallCount())
}

func TestSequential_BatchSizePropagates(t *testing.T) {
	first := must(layer.NewDense(5, layer.WithBatchInputShape(32, 3)))
	m, err := Sequential([]*layer.Layer{first, must(layer.NewDropout(0.1))})
	require.NoError(t, err)

	assert.Equal(t, 32, m.Inputs()[0].BatchSize())
	assert.Equal(t, 32, m.Outputs()[0].BatchSize())
}

func TestSequential_ForeignLayer(t *testing.T) {
	first := must(layer.NewDense(4, layer.WithInputShape(4)))
	_, err := Sequential([]*layer.Layer{first})
	require.NoError(t, err)

	// first is now bound to the first model's session
	again := must(layer.NewDense(4, layer.WithInputShape(4)))
	_, err = Sequential([]*layer.Layer{again, first})
	assert.ErrorIs(t, err, graph.ErrForeignLayer)
	assert.Equal(t, 0, again.CallCount())
}

func TestSequential_SharedLayerInStack(t *testing.T) {
	square := must(layer.NewDense(8, layer.WithInputShape(8)))
	m, err := Sequential([]*layer.Layer{square, square})
	require.NoError(t, err)

	assert.Equal(t, 2, m.Len())
	assert.Len(t, m.Layers(), 1)
	assert.Equal(t, 2, square.CallCount())
}

func TestSequentialBuilder(t *testing.T) {
	layers := mlp(t)

	empty := NewSequentialBuilder(ResolveOptions{Name: "digits"})
	partial := empty.Add(layers[0]).Add(layers[1])
	full := partial.Add(layers[2]).Add(layers[3])

	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, 2, partial.Len())
	assert.Equal(t, 4, full.Len())
	assert.Len(t, full.Layers(), 4)

	m, err := full.Build()
	require.NoError(t, err)
	assert.Equal(t, "digits", m.Name())
	assert.Equal(t, 4, m.Len())

	_, err = empty.Build()
	assert.ErrorIs(t, err, ErrNoLayers)
}
