// Package layer implements configured, shape-inferring layer definitions.
//
// A Layer carries a typed Config from a closed set of kinds. Layers know how to
// infer output shapes from input shapes, but do not own tensors: applying a
// layer to tensors is the job of a graph builder, which records each call as a
// separate application while the Layer itself (and, in an executing framework,
// its weights) stays shared.
//
// Axis fields follow the Keras convention: axis 0 is the batch axis, positive
// axes count from the first non-batch dimension as 1, and negative axes count
// from the end. A zero axis selects the last dimension.
package layer

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/born-ml/layergraph/internal/shape"
)

// Layer is a named, configured transformation.
//
// The same *Layer applied several times represents shared parameters: every
// application refers to this one instance, never to a copy.
type Layer struct {
	name       string
	config     Config
	inputShape shape.Shape // nil unless declared
	batchSize  shape.Dim
	trainable  bool

	mu        sync.Mutex
	callCount int
	session   uuid.UUID
}

// Option configures a Layer at construction.
type Option func(*Layer) error

// WithName sets an explicit layer name instead of an auto-generated one.
func WithName(name string) Option {
	return func(l *Layer) error {
		if name == "" {
			return fmt.Errorf("%w: empty name", ErrInvalidOption)
		}
		l.name = name
		return nil
	}
}

// WithInputShape declares the (batch-less) input shape of the layer.
// Only the first layer of a sequential stack may need it.
func WithInputShape(dims ...shape.Dim) Option {
	return func(l *Layer) error {
		s := shape.Of(dims...)
		if err := s.Validate(); err != nil {
			return fmt.Errorf("%w: input shape: %v", ErrInvalidOption, err)
		}
		l.inputShape = s
		return nil
	}
}

// WithBatchInputShape declares a fixed batch size together with the input shape.
func WithBatchInputShape(batch shape.Dim, dims ...shape.Dim) Option {
	return func(l *Layer) error {
		if batch <= 0 && batch != shape.Unknown {
			return fmt.Errorf("%w: batch size must be > 0, got %d", ErrInvalidOption, batch)
		}
		if err := WithInputShape(dims...)(l); err != nil {
			return err
		}
		l.batchSize = batch
		return nil
	}
}

// WithTrainable sets whether the layer's weights are updated during training.
func WithTrainable(trainable bool) Option {
	return func(l *Layer) error {
		l.trainable = trainable
		return nil
	}
}

// New creates a layer from a typed config.
//
// The config is validated and defaults are filled in. A config that fails
// validation yields a *ConfigError.
func New(cfg Config, opts ...Option) (*Layer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrConfig)
	}
	normalized, err := cfg.normalize()
	if err != nil {
		return nil, err
	}

	l := &Layer{
		config:    normalized,
		batchSize: shape.Unknown,
		trainable: true,
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, err
		}
	}
	if l.name == "" {
		l.name = uniqueName(normalized.Kind())
	}
	return l, nil
}

// Name returns the layer name.
func (l *Layer) Name() string { return l.name }

// Kind returns the layer kind.
func (l *Layer) Kind() Kind { return l.config.Kind() }

// Config returns a copy of the normalized config.
func (l *Layer) Config() Config { return cloneConfig(l.config) }

// DeclaredInputShape returns the declared input shape, or nil.
func (l *Layer) DeclaredInputShape() shape.Shape { return l.inputShape.Clone() }

// HasDeclaredInputShape reports whether an input shape was declared.
func (l *Layer) HasDeclaredInputShape() bool { return l.inputShape != nil }

// DeclaredBatchSize returns the declared batch size, or shape.Unknown.
func (l *Layer) DeclaredBatchSize() shape.Dim { return l.batchSize }

// Trainable reports whether the layer's weights are trainable.
func (l *Layer) Trainable() bool { return l.trainable }

// Arity returns the number of inputs the layer accepts.
func (l *Layer) Arity() Arity { return arityOf(l.config) }

// CallCount returns how many times the layer has been applied.
func (l *Layer) CallCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.callCount
}

// Session returns the graph session the layer is bound to, or uuid.Nil.
func (l *Layer) Session() uuid.UUID {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.session
}

// InferOutputShapes computes output shapes for the given input shapes.
//
// It is a pure function of the config and inputs. Wrong input counts yield
// *ArityError; rejected shapes yield *ShapeError.
func (l *Layer) InferOutputShapes(inputs []shape.Shape) ([]shape.Shape, error) {
	arity := arityOf(l.config)
	if !arity.Accepts(len(inputs)) {
		return nil, &ArityError{Layer: l.name, Kind: l.Kind(), Got: len(inputs), Arity: arity}
	}
	out, err := inferShapes(l.config, inputs)
	if err != nil {
		return nil, &ShapeError{Layer: l.name, Kind: l.Kind(), Inputs: cloneShapes(inputs), Details: err.Error()}
	}
	return out, nil
}

// ParamCount returns the number of weights the layer owns when fed inputs of
// the given shapes. Stateless kinds return 0.
func (l *Layer) ParamCount(inputs []shape.Shape) int {
	return paramCount(l.config, inputs)
}

// Attach binds the layer to a graph session and records one more call.
//
// The first call binds the layer; later calls from a different session fail
// with ErrSessionBound and leave the call count unchanged. It returns the
// zero-based index of the recorded call.
func (l *Layer) Attach(session uuid.UUID) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.session != uuid.Nil && l.session != session {
		return 0, fmt.Errorf("%w: layer %q belongs to session %s", ErrSessionBound, l.name, l.session)
	}
	l.session = session
	idx := l.callCount
	l.callCount++
	return idx, nil
}

// CanAttach reports whether Attach would accept session.
func (l *Layer) CanAttach(session uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.session != uuid.Nil && l.session != session {
		return fmt.Errorf("%w: layer %q belongs to session %s", ErrSessionBound, l.name, l.session)
	}
	return nil
}

// String returns a short description such as "dense_1 (dense)".
func (l *Layer) String() string {
	return fmt.Sprintf("%s (%s)", l.name, l.Kind())
}

func cloneShapes(in []shape.Shape) []shape.Shape {
	out := make([]shape.Shape, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}
