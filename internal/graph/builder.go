// Package graph records layer applications into a directed acyclic graph of
// symbolic tensors.
//
// A Builder is one construction session. Tensors and nodes live in
// append-only arenas addressed by integer ids; edges are stored as ids, never
// as pointers into other sessions. Construction is synchronous and a Builder
// is not safe for concurrent use.
//
// Example:
//
//	b := graph.NewBuilder()
//	x, _ := b.Input(shape.Of(784))
//	dense, _ := layer.NewDense(10)
//	out, err := b.Apply(dense, x)
package graph

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/born-ml/layergraph/internal/layer"
	"github.com/born-ml/layergraph/internal/shape"
)

// ErrDuplicateInputName is returned when two inputs of a session share a name.
var ErrDuplicateInputName = errors.New("graph: duplicate input name")

// Builder accumulates layer applications into a graph.
type Builder struct {
	session   uuid.UUID
	log       logr.Logger
	tensors   []*Tensor
	nodes     []*Node
	consumers map[int][]int
	names     map[string]bool
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets the logger used for construction tracing.
func WithLogger(log logr.Logger) BuilderOption {
	return func(b *Builder) {
		b.log = log
	}
}

// NewBuilder starts a new construction session.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		session:   uuid.New(),
		log:       klog.Background(),
		consumers: make(map[int][]int),
		names:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.WithValues("session", b.session.String())
	return b
}

// Session returns the session id shared by every tensor of this builder.
func (b *Builder) Session() uuid.UUID { return b.session }

// Logger returns the session logger.
func (b *Builder) Logger() logr.Logger { return b.log }

// InputOption configures a declared input.
type InputOption func(*inputOptions)

type inputOptions struct {
	name      string
	batchSize shape.Dim
}

// WithInputName names the input instead of the default "input", "input_1", ...
func WithInputName(name string) InputOption {
	return func(o *inputOptions) {
		o.name = name
	}
}

// WithBatchSize fixes the batch size of the input.
func WithBatchSize(batch shape.Dim) InputOption {
	return func(o *inputOptions) {
		o.batchSize = batch
	}
}

// Input declares a new input tensor with no producer.
func (b *Builder) Input(s shape.Shape, opts ...InputOption) (*Tensor, error) {
	o := inputOptions{batchSize: shape.Unknown}
	for _, opt := range opts {
		opt(&o)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("graph: input shape: %w", err)
	}
	if o.batchSize <= 0 && o.batchSize != shape.Unknown {
		return nil, fmt.Errorf("graph: batch size must be > 0, got %d", o.batchSize)
	}
	if o.name == "" {
		o.name = b.nextInputName()
	}
	if b.names[o.name] {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateInputName, o.name)
	}

	t := &Tensor{
		id:        len(b.tensors),
		session:   b.session,
		name:      o.name,
		shape:     s.Clone(),
		batchSize: o.batchSize,
		producer:  NoProducer,
	}
	b.tensors = append(b.tensors, t)
	b.names[o.name] = true

	b.log.V(4).Info("declared input", "tensor", t.name, "shape", t.shape.String())
	return t, nil
}

func (b *Builder) nextInputName() string {
	name := "input"
	for i := 1; b.names[name]; i++ {
		name = fmt.Sprintf("input_%d", i)
	}
	return name
}

// Apply records an application of l to inputs and returns its output tensors.
//
// The call is all-or-nothing: on any error no tensor or node is added and the
// layer's call count is unchanged. Errors are *layer.ShapeError and
// *layer.ArityError from shape inference, *CyclicGraphError, or wrap
// ErrForeignTensor, ErrForeignLayer, ErrNilTensor or ErrNilLayer.
func (b *Builder) Apply(l *layer.Layer, inputs ...*Tensor) ([]*Tensor, error) {
	if l == nil {
		return nil, ErrNilLayer
	}
	if err := l.CanAttach(b.session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrForeignLayer, err)
	}

	nodeID := len(b.nodes)
	inShapes := make([]shape.Shape, len(inputs))
	inIDs := make([]int, len(inputs))
	batch := shape.Unknown
	for i, t := range inputs {
		if err := b.Owns(t); err != nil {
			return nil, fmt.Errorf("input %d of %q: %w", i, l.Name(), err)
		}
		if err := b.checkAcyclic(l, t, nodeID); err != nil {
			return nil, err
		}
		inShapes[i] = t.shape
		inIDs[i] = t.id
		if t.batchSize != shape.Unknown {
			batch = t.batchSize
		}
	}

	outShapes, err := l.InferOutputShapes(inShapes)
	if err != nil {
		return nil, err
	}

	callIndex, err := l.Attach(b.session)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrForeignLayer, err)
	}

	node := &Node{
		id:           nodeID,
		layer:        l,
		callIndex:    callIndex,
		inputs:       inIDs,
		inputShapes:  cloneShapes(inShapes),
		outputShapes: outShapes,
	}
	outputs := make([]*Tensor, len(outShapes))
	for i, s := range outShapes {
		t := &Tensor{
			id:          len(b.tensors),
			session:     b.session,
			name:        fmt.Sprintf("%s/%d:%d", l.Name(), callIndex, i),
			shape:       s.Clone(),
			batchSize:   batch,
			producer:    nodeID,
			outputIndex: i,
		}
		b.tensors = append(b.tensors, t)
		node.outputs = append(node.outputs, t.id)
		outputs[i] = t
	}
	b.nodes = append(b.nodes, node)
	for _, id := range inIDs {
		// a node consuming the same tensor twice counts once
		if c := b.consumers[id]; len(c) == 0 || c[len(c)-1] != nodeID {
			b.consumers[id] = append(c, nodeID)
		}
	}

	b.log.V(4).Info("applied layer", "layer", l.Name(), "kind", l.Kind(), "node", nodeID,
		"call", callIndex, "outputShapes", fmt.Sprint(outShapes))
	return outputs, nil
}

// ApplyOne is Apply for layers that produce exactly one output.
func (b *Builder) ApplyOne(l *layer.Layer, inputs ...*Tensor) (*Tensor, error) {
	out, err := b.Apply(l, inputs...)
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// Owns checks that t is a tensor recorded by this builder.
func (b *Builder) Owns(t *Tensor) error {
	if t == nil {
		return ErrNilTensor
	}
	if t.session != b.session {
		return fmt.Errorf("%w: tensor %q", ErrForeignTensor, t.name)
	}
	if t.id < 0 || t.id >= len(b.tensors) || b.tensors[t.id] != t {
		return fmt.Errorf("%w: id %d", ErrUnknownTensor, t.id)
	}
	return nil
}

// checkAcyclic fails if t claims a producer that is not yet recorded, which
// would make the new node its own ancestor. Every recorded node only consumes
// tensors of lower-numbered producers, so checking the direct producer covers
// the whole ancestry.
func (b *Builder) checkAcyclic(l *layer.Layer, t *Tensor, nodeID int) error {
	if t.producer >= nodeID {
		return &CyclicGraphError{Layer: l.Name(), Tensor: t.id, Node: t.producer}
	}
	return nil
}

// Tensor returns the tensor with the given id.
func (b *Builder) Tensor(id int) (*Tensor, error) {
	if id < 0 || id >= len(b.tensors) {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownTensor, id)
	}
	return b.tensors[id], nil
}

// Node returns the node with the given id.
func (b *Builder) Node(id int) (*Node, error) {
	if id < 0 || id >= len(b.nodes) {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownNode, id)
	}
	return b.nodes[id], nil
}

// NumTensors returns the number of recorded tensors.
func (b *Builder) NumTensors() int { return len(b.tensors) }

// NumNodes returns the number of recorded nodes.
func (b *Builder) NumNodes() int { return len(b.nodes) }

// Consumers returns the ids of the nodes consuming a tensor, in creation order.
func (b *Builder) Consumers(tensorID int) []int {
	out := make([]int, len(b.consumers[tensorID]))
	copy(out, b.consumers[tensorID])
	return out
}
