package layer

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/layergraph/internal/shape"
)

func mustLayer(l *Layer, err error) *Layer {
	if err != nil {
		panic(err)
	}
	return l
}

func inferOne(t *testing.T, l *Layer, in ...shape.Shape) shape.Shape {
	t.Helper()
	out, err := l.InferOutputShapes(in)
	require.NoError(t, err)
	require.Len(t, out, 1)
	return out[0]
}

func TestNew_NormalizesDefaults(t *testing.T) {
	dense := mustLayer(NewDense(32))
	cfg, ok := dense.Config().(DenseConfig)
	require.True(t, ok)
	assert.Equal(t, "linear", cfg.Activation)
	assert.True(t, dense.Trainable())
	assert.Equal(t, shape.Unknown, dense.DeclaredBatchSize())
	assert.False(t, dense.HasDeclaredInputShape())

	pool := mustLayer(NewMaxPooling2D(2))
	poolCfg := pool.Config().(MaxPooling2DConfig)
	assert.Equal(t, [2]int{2, 2}, poolCfg.Strides)
	assert.Equal(t, PaddingValid, poolCfg.Padding)

	conv := mustLayer(NewConv2D(8, 3))
	convCfg := conv.Config().(Conv2DConfig)
	assert.Equal(t, [2]int{1, 1}, convCfg.Strides)
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"dense units", DenseConfig{Units: 0}},
		{"dense activation", DenseConfig{Units: 3, Activation: "swishy"}},
		{"activation missing", ActivationConfig{}},
		{"dropout rate", DropoutConfig{Rate: 1}},
		{"reshape empty", ReshapeConfig{}},
		{"reshape two inferred", ReshapeConfig{TargetShape: shape.Of(-1, -1)}},
		{"reshape zero", ReshapeConfig{TargetShape: shape.Shape{0, 4}}},
		{"conv filters", Conv2DConfig{KernelSize: [2]int{3, 3}}},
		{"conv kernel", Conv2DConfig{Filters: 4}},
		{"conv padding", Conv2DConfig{Filters: 4, KernelSize: [2]int{3, 3}, Padding: "full"}},
		{"pool size", MaxPooling2DConfig{}},
		{"lstm units", LSTMConfig{}},
		{"gru units", GRUConfig{Units: -1}},
		{"embedding dims", EmbeddingConfig{InputDim: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfig)

			var cfgErr *ConfigError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}

	_, err := New(nil)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestNew_Options(t *testing.T) {
	l := mustLayer(NewDense(4, WithName("head"), WithBatchInputShape(16, 8), WithTrainable(false)))
	assert.Equal(t, "head", l.Name())
	assert.Equal(t, shape.Of(8), l.DeclaredInputShape())
	assert.Equal(t, 16, l.DeclaredBatchSize())
	assert.False(t, l.Trainable())
	assert.Equal(t, "head (dense)", l.String())

	_, err := NewDense(4, WithName(""))
	assert.ErrorIs(t, err, ErrInvalidOption)

	_, err = NewDense(4, WithInputShape(0))
	assert.ErrorIs(t, err, ErrInvalidOption)

	_, err = NewDense(4, WithBatchInputShape(0, 3))
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestLayer_ConfigIsCopy(t *testing.T) {
	l := mustLayer(NewReshape([]int{2, -1}))
	cfg := l.Config().(ReshapeConfig)
	cfg.TargetShape[0] = 99

	again := l.Config().(ReshapeConfig)
	assert.Equal(t, shape.Of(2, -1), again.TargetShape)
}

func TestUniqueName(t *testing.T) {
	ResetNameCounters()
	a := mustLayer(NewGRU(3, false))
	b := mustLayer(NewGRU(3, false))
	c := mustLayer(NewGRU(3, false))

	assert.Equal(t, "gru", a.Name())
	assert.Equal(t, "gru_1", b.Name())
	assert.Equal(t, "gru_2", c.Name())
}

func TestUniqueName_Concurrent(t *testing.T) {
	const n = 50
	names := make([]string, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			names[i] = uniqueName(KindAverage)
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, name := range names {
		assert.False(t, seen[name], "duplicate name %s", name)
		seen[name] = true
	}
}

func TestInfer_Dense(t *testing.T) {
	l := mustLayer(NewDense(32))
	assert.Equal(t, shape.Of(32), inferOne(t, l, shape.Of(784)))
	assert.Equal(t, shape.Of(shape.Unknown, 32), inferOne(t, l, shape.Of(shape.Unknown, 16)))

	_, err := l.InferOutputShapes([]shape.Shape{shape.Of(shape.Unknown)})
	assert.ErrorIs(t, err, ErrShape)

	_, err = l.InferOutputShapes([]shape.Shape{{}})
	assert.ErrorIs(t, err, ErrShape)
}

func TestInfer_Identity(t *testing.T) {
	act := mustLayer(NewActivation("relu"))
	drop := mustLayer(NewDropout(0.5))
	in := shape.Of(5, shape.Unknown)

	assert.Equal(t, in, inferOne(t, act, in))
	assert.Equal(t, in, inferOne(t, drop, in))
}

func TestInfer_FlattenReshape(t *testing.T) {
	flat := mustLayer(NewFlatten())
	assert.Equal(t, shape.Of(24), inferOne(t, flat, shape.Of(2, 3, 4)))
	assert.Equal(t, shape.Of(shape.Unknown), inferOne(t, flat, shape.Of(shape.Unknown, 3)))

	reshape := mustLayer(NewReshape([]int{4, -1}))
	assert.Equal(t, shape.Of(4, 6), inferOne(t, reshape, shape.Of(2, 3, 4)))
	assert.Equal(t, shape.Of(4, shape.Unknown), inferOne(t, reshape, shape.Of(shape.Unknown, 4)))

	_, err := reshape.InferOutputShapes([]shape.Shape{shape.Of(7)})
	assert.ErrorIs(t, err, ErrShape)

	fixed := mustLayer(NewReshape([]int{5, 5}))
	_, err = fixed.InferOutputShapes([]shape.Shape{shape.Of(24)})
	assert.ErrorIs(t, err, ErrShape)
}

func TestInfer_ElementCountOverflow(t *testing.T) {
	flat := mustLayer(NewFlatten())
	for _, in := range []shape.Shape{shape.Of(1<<32, 1<<32), shape.Of(1<<33, 1<<31, 3)} {
		_, err := flat.InferOutputShapes([]shape.Shape{in})
		require.Error(t, err, in.String())
		assert.ErrorIs(t, err, ErrShape)
		assert.Contains(t, err.Error(), "overflows")
	}

	reshape := mustLayer(NewReshape([]int{-1, 2}))
	_, err := reshape.InferOutputShapes([]shape.Shape{shape.Of(1<<32, 1<<32)})
	assert.ErrorIs(t, err, ErrShape)

	_, err = NewReshape([]int{1 << 32, 1 << 32})
	assert.ErrorIs(t, err, ErrConfig)
}

func TestInfer_Conv2DAndPooling(t *testing.T) {
	conv := mustLayer(NewConv2D(32, 3))
	assert.Equal(t, shape.Of(26, 26, 32), inferOne(t, conv, shape.Of(28, 28, 1)))

	same := mustLayer(New(Conv2DConfig{Filters: 8, KernelSize: [2]int{3, 3}, Strides: [2]int{2, 2}, Padding: PaddingSame}))
	assert.Equal(t, shape.Of(14, 14, 8), inferOne(t, same, shape.Of(28, 28, 3)))
	assert.Equal(t, shape.Of(shape.Unknown, 15, 8), inferOne(t, same, shape.Of(shape.Unknown, 29, 3)))

	pool := mustLayer(NewMaxPooling2D(2))
	assert.Equal(t, shape.Of(13, 13, 32), inferOne(t, pool, shape.Of(26, 26, 32)))

	_, err := conv.InferOutputShapes([]shape.Shape{shape.Of(2, 2, 1)})
	assert.ErrorIs(t, err, ErrShape)

	_, err = conv.InferOutputShapes([]shape.Shape{shape.Of(28, 28)})
	assert.ErrorIs(t, err, ErrShape)

	_, err = conv.InferOutputShapes([]shape.Shape{shape.Of(28, 28, shape.Unknown)})
	assert.ErrorIs(t, err, ErrShape)
}

func TestInfer_Recurrent(t *testing.T) {
	lstm := mustLayer(NewLSTM(64, false))
	assert.Equal(t, shape.Of(64), inferOne(t, lstm, shape.Of(140, 256)))

	seq := mustLayer(NewGRU(16, true))
	assert.Equal(t, shape.Of(shape.Unknown, 16), inferOne(t, seq, shape.Of(shape.Unknown, 8)))

	_, err := lstm.InferOutputShapes([]shape.Shape{shape.Of(256)})
	assert.ErrorIs(t, err, ErrShape)
}

func TestInfer_EmbeddingBatchNorm(t *testing.T) {
	emb := mustLayer(NewEmbedding(1000, 64))
	assert.Equal(t, shape.Of(100, 64), inferOne(t, emb, shape.Of(100)))

	bn := mustLayer(NewBatchNormalization())
	assert.Equal(t, shape.Of(4, 8), inferOne(t, bn, shape.Of(4, 8)))

	_, err := bn.InferOutputShapes([]shape.Shape{shape.Of(4, shape.Unknown)})
	assert.ErrorIs(t, err, ErrShape)

	first := mustLayer(New(BatchNormalizationConfig{Axis: 1}))
	assert.Equal(t, shape.Of(4, shape.Unknown), inferOne(t, first, shape.Of(4, shape.Unknown)))

	outOfRange := mustLayer(New(BatchNormalizationConfig{Axis: 3}))
	_, err = outOfRange.InferOutputShapes([]shape.Shape{shape.Of(4, 8)})
	assert.ErrorIs(t, err, ErrShape)
}

func TestInfer_Concatenate(t *testing.T) {
	cat := mustLayer(NewConcatenate(-1))
	assert.Equal(t, shape.Of(128), inferOne(t, cat, shape.Of(64), shape.Of(64)))
	assert.Equal(t, shape.Of(3, 9), inferOne(t, cat, shape.Of(shape.Unknown, 4), shape.Of(3, 5)))
	assert.Equal(t, shape.Of(3, shape.Unknown), inferOne(t, cat, shape.Of(3, 4), shape.Of(3, shape.Unknown)))

	_, err := cat.InferOutputShapes([]shape.Shape{shape.Of(3, 4), shape.Of(2, 4)})
	assert.ErrorIs(t, err, ErrShape)

	_, err = cat.InferOutputShapes([]shape.Shape{shape.Of(3, 4), shape.Of(4)})
	assert.ErrorIs(t, err, ErrShape)

	_, err = cat.InferOutputShapes([]shape.Shape{shape.Of(4)})
	assert.ErrorIs(t, err, ErrArity)
	assert.NotErrorIs(t, err, ErrShape)
}

func TestInfer_Merge(t *testing.T) {
	add := mustLayer(NewAdd())
	assert.Equal(t, shape.Of(8), inferOne(t, add, shape.Of(8)))
	assert.Equal(t, shape.Of(3, 8), inferOne(t, add, shape.Of(3, 8), shape.Of(8), shape.Of(1, 8)))

	mul := mustLayer(NewMultiply())
	_, err := mul.InferOutputShapes([]shape.Shape{shape.Of(3), shape.Of(4)})
	assert.ErrorIs(t, err, ErrShape)

	_, err = mul.InferOutputShapes(nil)
	assert.ErrorIs(t, err, ErrArity)
}

func TestInfer_ArityError(t *testing.T) {
	dense := mustLayer(NewDense(2, WithName("d")))
	_, err := dense.InferOutputShapes([]shape.Shape{shape.Of(3), shape.Of(3)})
	require.Error(t, err)

	var arityErr *ArityError
	require.True(t, errors.As(err, &arityErr))
	assert.Equal(t, 2, arityErr.Got)
	assert.Equal(t, "exactly 1", arityErr.Arity.String())
	assert.True(t, strings.Contains(err.Error(), `"d"`))
}

func TestInfer_IsPure(t *testing.T) {
	dense := mustLayer(NewDense(2))
	in := shape.Of(3, 5)
	_, err := dense.InferOutputShapes([]shape.Shape{in})
	require.NoError(t, err)

	assert.Equal(t, shape.Of(3, 5), in)
	assert.Equal(t, 0, dense.CallCount())
}

func TestParamCount(t *testing.T) {
	tests := []struct {
		name string
		l    func() (*Layer, error)
		in   []shape.Shape
		want int
	}{
		{"dense", func() (*Layer, error) { return NewDense(32) }, []shape.Shape{shape.Of(784)}, 784*32 + 32},
		{"dense no bias", func() (*Layer, error) { return New(DenseConfig{Units: 10, DisableBias: true}) }, []shape.Shape{shape.Of(5)}, 50},
		{"conv", func() (*Layer, error) { return NewConv2D(32, 3) }, []shape.Shape{shape.Of(28, 28, 1)}, 3*3*32 + 32},
		{"lstm", func() (*Layer, error) { return NewLSTM(64, false) }, []shape.Shape{shape.Of(140, 256)}, 82176},
		{"gru", func() (*Layer, error) { return NewGRU(4, false) }, []shape.Shape{shape.Of(10, 3)}, 3 * (4*(3+4) + 2*4)},
		{"embedding", func() (*Layer, error) { return NewEmbedding(100, 8) }, []shape.Shape{shape.Of(20)}, 800},
		{"batch norm", func() (*Layer, error) { return NewBatchNormalization() }, []shape.Shape{shape.Of(7, 16)}, 64},
		{"activation", func() (*Layer, error) { return NewActivation("tanh") }, []shape.Shape{shape.Of(7)}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := mustLayer(tt.l())
			assert.Equal(t, tt.want, l.ParamCount(tt.in))
		})
	}
}

func TestAttach(t *testing.T) {
	l := mustLayer(NewDense(2))
	s1 := uuid.New()
	s2 := uuid.New()

	require.NoError(t, l.CanAttach(s1))
	idx, err := l.Attach(s1)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	idx, err = l.Attach(s1)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Equal(t, s1, l.Session())

	assert.ErrorIs(t, l.CanAttach(s2), ErrSessionBound)
	_, err = l.Attach(s2)
	assert.ErrorIs(t, err, ErrSessionBound)
	assert.Equal(t, 2, l.CallCount())
}

func TestSpec_RoundTrip(t *testing.T) {
	orig := mustLayer(New(
		Conv2DConfig{Filters: 4, KernelSize: [2]int{5, 3}, Padding: PaddingSame, Activation: "relu"},
		WithName("stem"), WithBatchInputShape(8, 32, 32, 3), WithTrainable(false),
	))

	spec, err := orig.Spec()
	require.NoError(t, err)
	assert.Equal(t, KindConv2D, spec.Kind)
	assert.EqualValues(t, 4, spec.Config["filters"])

	rebuilt, err := FromSpec(spec)
	require.NoError(t, err)
	assert.Equal(t, orig.Name(), rebuilt.Name())
	assert.Equal(t, orig.Config(), rebuilt.Config())
	assert.Equal(t, orig.DeclaredInputShape(), rebuilt.DeclaredInputShape())
	assert.Equal(t, 8, rebuilt.DeclaredBatchSize())
	assert.False(t, rebuilt.Trainable())
}

func TestConfigFromMap_Errors(t *testing.T) {
	_, err := ConfigFromMap("transformer", nil)
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = ConfigFromMap(KindDense, map[string]any{"unitz": 3})
	assert.ErrorIs(t, err, ErrConfig)

	cfg, err := ConfigFromMap(KindFlatten, nil)
	require.NoError(t, err)
	assert.Equal(t, FlattenConfig{}, cfg)
}

func TestKindsHaveConfigs(t *testing.T) {
	for _, kind := range Kinds() {
		cfg, err := newConfig(kind)
		require.NoError(t, err, kind)
		assert.Equal(t, kind, cfg.Kind())
	}
	assert.Contains(t, Activations(), "softmax")
}
