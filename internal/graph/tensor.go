package graph

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/born-ml/layergraph/internal/shape"
)

// NoProducer is the producer id of a declared input tensor.
const NoProducer = -1

// Tensor is an immutable symbolic handle to an n-dimensional array.
//
// It records only shape bookkeeping and provenance. A Tensor is created once
// by a Builder, either as a declared input or as the output of a layer
// application, and never changes afterwards.
type Tensor struct {
	id          int
	session     uuid.UUID
	name        string
	shape       shape.Shape
	batchSize   shape.Dim
	producer    int
	outputIndex int
}

// ID returns the tensor id, unique within its builder session.
func (t *Tensor) ID() int { return t.id }

// Session returns the id of the builder session that created the tensor.
func (t *Tensor) Session() uuid.UUID { return t.session }

// Name returns the tensor name, e.g. "input_1" or "dense/0:0".
func (t *Tensor) Name() string { return t.name }

// Shape returns a copy of the symbolic shape (batch axis excluded).
func (t *Tensor) Shape() shape.Shape { return t.shape.Clone() }

// BatchSize returns the fixed batch size, or shape.Unknown.
func (t *Tensor) BatchSize() shape.Dim { return t.batchSize }

// Producer returns the id of the node that produced the tensor, or NoProducer.
func (t *Tensor) Producer() int { return t.producer }

// IsInput reports whether the tensor was declared as an input.
func (t *Tensor) IsInput() bool { return t.producer == NoProducer }

// OutputIndex returns the position of the tensor among its producer's outputs.
func (t *Tensor) OutputIndex() int { return t.outputIndex }

// String returns e.g. "dense/0:0 (None, 32)".
func (t *Tensor) String() string {
	return fmt.Sprintf("%s %s", t.name, t.shape.WithBatch(t.batchSize))
}
