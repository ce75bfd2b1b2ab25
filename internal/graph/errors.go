package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors for graph construction.
var (
	ErrForeignTensor = errors.New("graph: tensor belongs to a different builder session")
	ErrForeignLayer  = errors.New("graph: layer belongs to a different builder session")
	ErrNilTensor     = errors.New("graph: nil tensor")
	ErrNilLayer      = errors.New("graph: nil layer")
	ErrCycle         = errors.New("graph: cycle detected")
	ErrUnknownNode   = errors.New("graph: unknown node")
	ErrUnknownTensor = errors.New("graph: unknown tensor")
)

// CyclicGraphError reports an application whose inputs depend on the
// application itself. Append-only builders make this unreachable in normal
// use; it guards against handles fabricated outside the builder.
type CyclicGraphError struct {
	Layer  string // Layer being applied
	Tensor int    // Input tensor whose ancestry closes the cycle
	Node   int    // Offending ancestor node id
}

// Error implements the error interface.
func (e *CyclicGraphError) Error() string {
	return fmt.Sprintf("graph: applying %q to tensor %d would create a cycle through node %d",
		e.Layer, e.Tensor, e.Node)
}

// Unwrap returns ErrCycle.
func (e *CyclicGraphError) Unwrap() error { return ErrCycle }
