// Package model resolves layer graphs into models.
//
// Two authoring styles produce the same canonical Model: Sequential stacks
// layers linearly from one declared input shape, Functional takes explicit
// input and output tensors recorded in a graph.Builder. A Model exposes its
// layer applications in a deterministic topological order, its inputs and
// outputs, and a mutable compiled state consumed by external training code.
package model

import (
	"fmt"
	"slices"
	"sync"

	"github.com/go-logr/logr"

	"github.com/born-ml/layergraph/internal/graph"
	"github.com/born-ml/layergraph/internal/layer"
)

// Model is a resolved layer graph.
//
// Topology changes only through PopLayer. The compiled state may be replaced
// at any time; last write wins.
type Model struct {
	mu       sync.RWMutex
	name     string
	builder  *graph.Builder
	nodes    []*graph.Node
	inputs   []*graph.Tensor
	outputs  []*graph.Tensor
	warnings []error
	compiled *CompileConfig
	log      logr.Logger
}

// Name returns the model name.
func (m *Model) Name() string { return m.name }

// Builder returns the graph session the model was resolved from.
func (m *Model) Builder() *graph.Builder { return m.builder }

// Nodes returns the layer applications in topological order.
func (m *Model) Nodes() []*graph.Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.nodes)
}

// Len returns the number of layer applications.
func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodes)
}

// Layers returns each distinct layer once, in order of first application.
func (m *Model) Layers() []*layer.Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.uniqueLayers()
}

func (m *Model) uniqueLayers() []*layer.Layer {
	seen := make(map[*layer.Layer]bool)
	var out []*layer.Layer
	for _, n := range m.nodes {
		if !seen[n.Layer()] {
			seen[n.Layer()] = true
			out = append(out, n.Layer())
		}
	}
	return out
}

// LayerNames returns the names of Layers().
func (m *Model) LayerNames() []string {
	layers := m.Layers()
	names := make([]string, len(layers))
	for i, l := range layers {
		names[i] = l.Name()
	}
	return names
}

// Inputs returns the model inputs in declaration order.
func (m *Model) Inputs() []*graph.Tensor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.inputs)
}

// Outputs returns the model outputs in declaration order.
func (m *Model) Outputs() []*graph.Tensor {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.outputs)
}

// Warnings returns non-fatal problems found during resolution, such as
// *UnusedInputError.
func (m *Model) Warnings() []error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.warnings)
}

// GetLayer returns the layer with the given name.
func (m *Model) GetLayer(name string) (*layer.Layer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, n := range m.nodes {
		if n.Layer().Name() == name {
			return n.Layer(), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrLayerNotFound, name)
}

// GetLayerAt returns the layer of the index-th application (0-based) in
// topological order.
func (m *Model) GetLayerAt(index int) (*layer.Layer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if index < 0 || index >= len(m.nodes) {
		return nil, fmt.Errorf("%w: %d (model has %d layers)", ErrLayerIndexOutOfRange, index, len(m.nodes))
	}
	return m.nodes[index].Layer(), nil
}

// PopLayer removes the last application in topological order and makes its
// inputs the model's outputs in place of its outputs.
//
// It fails with ErrNoLayers on an empty model, and with *AmbiguousPopError
// when a tensor that would become an output is consumed by more than one
// remaining layer. A single remaining consumer is fine: the tensor simply
// becomes an output as well. On failure the model is unchanged. A successful pop clears the
// compiled state, since losses are bound to outputs.
func (m *Model) PopLayer() (*graph.Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.nodes) == 0 {
		return nil, ErrNoLayers
	}
	last := m.nodes[len(m.nodes)-1]
	surviving := make(map[int]bool, len(m.nodes)-1)
	for _, n := range m.nodes[:len(m.nodes)-1] {
		surviving[n.ID()] = true
	}

	var newOutputs []*graph.Tensor
	for _, id := range last.Inputs() {
		t, err := m.builder.Tensor(id)
		if err != nil {
			return nil, err
		}
		var consumers []string
		for _, c := range m.builder.Consumers(id) {
			if surviving[c] {
				n, _ := m.builder.Node(c)
				consumers = append(consumers, n.String())
			}
		}
		if len(consumers) > 1 {
			return nil, &AmbiguousPopError{Layer: last.Layer().Name(), Tensor: t.Name(), Consumers: consumers}
		}
		newOutputs = append(newOutputs, t)
	}

	popped := make(map[int]bool)
	for _, id := range last.Outputs() {
		popped[id] = true
	}
	outputs := make([]*graph.Tensor, 0, len(m.outputs)+len(newOutputs))
	present := make(map[int]bool)
	add := func(t *graph.Tensor) {
		if !present[t.ID()] {
			present[t.ID()] = true
			outputs = append(outputs, t)
		}
	}
	inserted := false
	for _, t := range m.outputs {
		if !popped[t.ID()] {
			add(t)
			continue
		}
		if !inserted {
			for _, nt := range newOutputs {
				add(nt)
			}
			inserted = true
		}
	}
	if !inserted {
		for _, nt := range newOutputs {
			add(nt)
		}
	}

	m.nodes = m.nodes[:len(m.nodes)-1]
	m.outputs = outputs
	m.compiled = nil

	m.log.V(4).Info("popped layer", "layer", last.Layer().Name(), "remaining", len(m.nodes))
	return last, nil
}

// String returns e.g. `model "mlp" (4 layers, 1 inputs, 1 outputs)`.
func (m *Model) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fmt.Sprintf("model %q (%d layers, %d inputs, %d outputs)",
		m.name, len(m.nodes), len(m.inputs), len(m.outputs))
}
