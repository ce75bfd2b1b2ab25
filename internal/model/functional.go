package model

import (
	"errors"
	"fmt"
	"slices"

	"github.com/born-ml/layergraph/internal/graph"
	"github.com/born-ml/layergraph/internal/layer"
)

// Functional resolves a model from explicit inputs and outputs recorded in b.
//
// Every tensor reached by walking producers back from the outputs must end at
// one of the inputs; otherwise a *DanglingInputError is returned. Inputs no
// output depends on produce an *UnusedInputError, recorded in Warnings()
// unless StrictUnusedInputs is set. Inputs and outputs keep the caller's order.
//
// Example:
//
//	b := graph.NewBuilder()
//	x, _ := b.Input(shape.Of(784))
//	y, _ := b.ApplyOne(dense, x)
//	m, err := model.Functional(b, []*graph.Tensor{x}, []*graph.Tensor{y})
func Functional(b *graph.Builder, inputs, outputs []*graph.Tensor, opts ...ResolveOptions) (*Model, error) {
	opt := pickOptions("model", opts)
	return resolve(b, inputs, outputs, opt)
}

func resolve(b *graph.Builder, inputs, outputs []*graph.Tensor, opt ResolveOptions) (*Model, error) {
	if b == nil {
		return nil, errors.New("model: nil builder")
	}
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}
	if len(outputs) == 0 {
		return nil, ErrNoOutputs
	}

	inputSet := make(map[int]bool, len(inputs))
	for i, t := range inputs {
		if err := b.Owns(t); err != nil {
			return nil, fmt.Errorf("model: input %d: %w", i, err)
		}
		if !t.IsInput() {
			return nil, fmt.Errorf("%w: %q", ErrNotAnInput, t.Name())
		}
		if inputSet[t.ID()] {
			return nil, fmt.Errorf("%w: input %q", ErrDuplicateTensor, t.Name())
		}
		inputSet[t.ID()] = true
	}
	outputSet := make(map[int]bool, len(outputs))
	for i, t := range outputs {
		if err := b.Owns(t); err != nil {
			return nil, fmt.Errorf("model: output %d: %w", i, err)
		}
		if outputSet[t.ID()] {
			return nil, fmt.Errorf("%w: output %q", ErrDuplicateTensor, t.Name())
		}
		outputSet[t.ID()] = true
	}

	nodeIDs, reached, err := walkBack(b, inputSet, outputs)
	if err != nil {
		return nil, err
	}

	order, err := sortNodes(b, nodeIDs)
	if err != nil {
		return nil, err
	}

	m := &Model{
		name:    opt.Name,
		builder: b,
		inputs:  slices.Clone(inputs),
		outputs: slices.Clone(outputs),
		log:     (*opt.Logger).WithValues("model", opt.Name),
	}
	for _, id := range order {
		n, err := b.Node(id)
		if err != nil {
			return nil, err
		}
		m.nodes = append(m.nodes, n)
	}
	if err := checkUniqueNames(m.nodes); err != nil {
		return nil, err
	}

	var unused []error
	for _, t := range inputs {
		if !reached[t.ID()] {
			unused = append(unused, &UnusedInputError{Input: t.Name()})
		}
	}
	if len(unused) > 0 {
		if opt.StrictUnusedInputs {
			return nil, errors.Join(unused...)
		}
		for _, w := range unused {
			m.log.Info("unused model input", "warning", w.Error())
		}
		m.warnings = unused
	}

	m.log.V(4).Info("resolved model", "layers", len(m.nodes), "inputs", len(m.inputs), "outputs", len(m.outputs))
	return m, nil
}

// walkBack collects every node reachable backwards from outputs and the set
// of declared inputs reached on the way.
func walkBack(b *graph.Builder, inputSet map[int]bool, outputs []*graph.Tensor) ([]int, map[int]bool, error) {
	visitedTensors := make(map[int]bool)
	visitedNodes := make(map[int]bool)
	reached := make(map[int]bool)
	var nodeIDs []int

	for _, out := range outputs {
		stack := []int{out.ID()}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visitedTensors[id] {
				continue
			}
			visitedTensors[id] = true

			t, err := b.Tensor(id)
			if err != nil {
				return nil, nil, err
			}
			if t.IsInput() {
				if !inputSet[id] {
					return nil, nil, &DanglingInputError{Tensor: t.Name(), Output: out.Name()}
				}
				reached[id] = true
				continue
			}

			nodeID := t.Producer()
			if visitedNodes[nodeID] {
				continue
			}
			visitedNodes[nodeID] = true
			nodeIDs = append(nodeIDs, nodeID)

			n, err := b.Node(nodeID)
			if err != nil {
				return nil, nil, err
			}
			stack = append(stack, n.Inputs()...)
		}
	}
	return nodeIDs, reached, nil
}

// sortNodes orders nodes so producers precede consumers. Among ready nodes
// the lowest id, i.e. the earliest created, goes first, which makes the
// order reproducible across resolutions.
func sortNodes(b *graph.Builder, nodeIDs []int) ([]int, error) {
	inSet := make(map[int]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		inSet[id] = true
	}

	// pending counts distinct in-model producers each node waits on.
	pending := make(map[int]int, len(nodeIDs))
	dependents := make(map[int][]int, len(nodeIDs))
	for _, id := range nodeIDs {
		n, err := b.Node(id)
		if err != nil {
			return nil, err
		}
		producers := make(map[int]bool)
		for _, in := range n.Inputs() {
			t, err := b.Tensor(in)
			if err != nil {
				return nil, err
			}
			p := t.Producer()
			if p == graph.NoProducer || !inSet[p] || producers[p] {
				continue
			}
			producers[p] = true
			pending[id]++
			dependents[p] = append(dependents[p], id)
		}
	}

	var ready []int
	for _, id := range nodeIDs {
		if pending[id] == 0 {
			ready = append(ready, id)
		}
	}
	slices.Sort(ready)

	order := make([]int, 0, len(nodeIDs))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		for _, d := range dependents[id] {
			pending[d]--
			if pending[d] == 0 {
				pos, _ := slices.BinarySearch(ready, d)
				ready = slices.Insert(ready, pos, d)
			}
		}
	}

	if len(order) != len(nodeIDs) {
		for _, id := range nodeIDs {
			if pending[id] > 0 {
				n, _ := b.Node(id)
				return nil, &graph.CyclicGraphError{Layer: n.Layer().Name(), Tensor: -1, Node: id}
			}
		}
	}
	return order, nil
}

func checkUniqueNames(nodes []*graph.Node) error {
	layers := make([]*layer.Layer, len(nodes))
	for i, n := range nodes {
		layers[i] = n.Layer()
	}
	return checkDistinctLayerNames(layers)
}

// checkDistinctLayerNames fails when two different layers share a name. The
// same layer appearing twice is a shared layer and is allowed.
func checkDistinctLayerNames(layers []*layer.Layer) error {
	seen := make(map[string]*layer.Layer, len(layers))
	for _, l := range layers {
		if prev, ok := seen[l.Name()]; ok && prev != l {
			return &DuplicateNameError{Name: l.Name()}
		}
		seen[l.Name()] = l
	}
	return nil
}
