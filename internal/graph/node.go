package graph

import (
	"fmt"
	"slices"

	"github.com/born-ml/layergraph/internal/layer"
	"github.com/born-ml/layergraph/internal/shape"
)

// Node is one application of a layer to specific input tensors.
//
// A layer applied twice yields two nodes that share the *layer.Layer but own
// distinct output tensors.
type Node struct {
	id           int
	layer        *layer.Layer
	callIndex    int
	inputs       []int
	outputs      []int
	inputShapes  []shape.Shape
	outputShapes []shape.Shape
}

// ID returns the node id. Ids follow creation order within a builder.
func (n *Node) ID() int { return n.id }

// Layer returns the applied layer.
func (n *Node) Layer() *layer.Layer { return n.layer }

// CallIndex returns which call of the layer this node records, starting at 0.
func (n *Node) CallIndex() int { return n.callIndex }

// Inputs returns the ids of the input tensors in argument order.
func (n *Node) Inputs() []int { return slices.Clone(n.inputs) }

// Outputs returns the ids of the produced tensors.
func (n *Node) Outputs() []int { return slices.Clone(n.outputs) }

// InputShapes returns copies of the input shapes.
func (n *Node) InputShapes() []shape.Shape { return cloneShapes(n.inputShapes) }

// OutputShapes returns copies of the inferred output shapes.
func (n *Node) OutputShapes() []shape.Shape { return cloneShapes(n.outputShapes) }

// ParamCount returns the weight count of the layer for this call's inputs.
// Shared layers own one set of weights, so callers summing over nodes should
// count each layer once.
func (n *Node) ParamCount() int { return n.layer.ParamCount(n.inputShapes) }

// String returns e.g. "lstm[1]".
func (n *Node) String() string {
	return fmt.Sprintf("%s[%d]", n.layer.Name(), n.callIndex)
}

func cloneShapes(in []shape.Shape) []shape.Shape {
	out := make([]shape.Shape, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}
