package model

import (
	"fmt"
	"slices"

	"github.com/born-ml/layergraph/internal/graph"
	"github.com/born-ml/layergraph/internal/layer"
	"github.com/born-ml/layergraph/internal/shape"
)

// Sequential resolves a linear stack of layers into a model.
//
// The first layer must declare its input shape. A later layer may declare
// one only if it equals the shape it actually receives; any other declaration
// fails with *ConflictingInputShapeError. Shape and arity errors propagate
// wrapped with the layer index.
//
// The whole stack is validated before anything is recorded, so a failure
// leaves every layer unbound and its call count unchanged.
//
// Example:
//
//	m, err := model.Sequential([]*layer.Layer{dense1, relu, dense2})
func Sequential(layers []*layer.Layer, opts ...ResolveOptions) (*Model, error) {
	opt := pickOptions("sequential", opts)
	opt.StrictUnusedInputs = true

	if len(layers) == 0 {
		return nil, ErrNoLayers
	}
	first := layers[0]
	if first == nil {
		return nil, fmt.Errorf("model: layer 0: %w", graph.ErrNilLayer)
	}
	if !first.HasDeclaredInputShape() {
		return nil, fmt.Errorf("%w: %q", ErrMissingInputShape, first.Name())
	}

	b := graph.NewBuilder(graph.WithLogger(*opt.Logger))
	if err := dryRun(b, layers); err != nil {
		return nil, err
	}

	x, err := b.Input(first.DeclaredInputShape(), graph.WithBatchSize(first.DeclaredBatchSize()))
	if err != nil {
		return nil, fmt.Errorf("model: layer 0 %q: %w", first.Name(), err)
	}
	cur := x
	for i, l := range layers {
		out, err := b.Apply(l, cur)
		if err != nil {
			return nil, fmt.Errorf("model: layer %d %q: %w", i, l.Name(), err)
		}
		cur = out[0]
	}

	return resolve(b, []*graph.Tensor{x}, []*graph.Tensor{cur}, opt)
}

// dryRun checks the whole stack without touching the builder.
func dryRun(b *graph.Builder, layers []*layer.Layer) error {
	cur := layers[0].DeclaredInputShape()
	for i, l := range layers {
		if l == nil {
			return fmt.Errorf("model: layer %d: %w", i, graph.ErrNilLayer)
		}
		if err := l.CanAttach(b.Session()); err != nil {
			return fmt.Errorf("model: layer %d: %w: %v", i, graph.ErrForeignLayer, err)
		}
		if i > 0 && l.HasDeclaredInputShape() && !l.DeclaredInputShape().Equal(cur) {
			return &ConflictingInputShapeError{
				Layer:    l.Name(),
				Index:    i,
				Declared: l.DeclaredInputShape().String(),
				Inferred: cur.String(),
			}
		}
		if i > 0 && l.DeclaredBatchSize() != shape.Unknown && l.DeclaredBatchSize() != layers[0].DeclaredBatchSize() {
			return &ConflictingInputShapeError{
				Layer:    l.Name(),
				Index:    i,
				Declared: l.DeclaredInputShape().WithBatch(l.DeclaredBatchSize()),
				Inferred: cur.WithBatch(layers[0].DeclaredBatchSize()),
			}
		}
		out, err := l.InferOutputShapes([]shape.Shape{cur})
		if err != nil {
			return fmt.Errorf("model: layer %d %q: %w", i, l.Name(), err)
		}
		if len(out) != 1 {
			return fmt.Errorf("model: layer %d %q: sequential layers must have one output, got %d", i, l.Name(), len(out))
		}
		cur = out[0]
	}
	return checkDistinctLayerNames(layers)
}

// SequentialBuilder accumulates a layer stack. Add returns a new builder, so
// a builder value always describes exactly the layers added through it.
type SequentialBuilder struct {
	layers []*layer.Layer
	opts   []ResolveOptions
}

// NewSequentialBuilder starts an empty stack.
func NewSequentialBuilder(opts ...ResolveOptions) *SequentialBuilder {
	return &SequentialBuilder{opts: opts}
}

// Add returns a builder with l appended.
//
//	m, err := model.NewSequentialBuilder().Add(dense).Add(relu).Build()
func (s *SequentialBuilder) Add(l *layer.Layer) *SequentialBuilder {
	layers := make([]*layer.Layer, len(s.layers), len(s.layers)+1)
	copy(layers, s.layers)
	return &SequentialBuilder{layers: append(layers, l), opts: s.opts}
}

// Len returns the number of layers in the stack.
func (s *SequentialBuilder) Len() int { return len(s.layers) }

// Layers returns the stack.
func (s *SequentialBuilder) Layers() []*layer.Layer { return slices.Clone(s.layers) }

// Build resolves the stack with Sequential.
func (s *SequentialBuilder) Build() (*Model, error) {
	return Sequential(s.layers, s.opts...)
}
