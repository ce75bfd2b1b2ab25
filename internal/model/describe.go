package model

import (
	"fmt"

	"github.com/born-ml/layergraph/internal/graph"
	"github.com/born-ml/layergraph/internal/layer"
	"github.com/born-ml/layergraph/internal/shape"
)

// Description is the stable, serializable form of a model's topology and
// configuration. Weights are not part of it.
type Description struct {
	Name    string         `json:"name" yaml:"name"`
	Layers  []layer.Spec   `json:"layers" yaml:"layers"`
	Nodes   []NodeSpec     `json:"nodes" yaml:"nodes"`
	Inputs  []TensorSpec   `json:"inputs" yaml:"inputs"`
	Outputs []TensorSpec   `json:"outputs" yaml:"outputs"`
	Compile *CompileConfig `json:"compile,omitempty" yaml:"compile,omitempty"`
}

// NodeSpec is one layer application, listed in topological order. Tensors
// are referenced by name.
type NodeSpec struct {
	Layer        string   `json:"layer" yaml:"layer"`
	Inputs       []string `json:"inputs" yaml:"inputs,flow"`
	Outputs      []string `json:"outputs" yaml:"outputs,flow"`
	OutputShapes [][]int  `json:"output_shapes,omitempty" yaml:"output_shapes,flow,omitempty"`
}

// TensorSpec names a model input or output.
type TensorSpec struct {
	Name      string `json:"name" yaml:"name"`
	Shape     []int  `json:"shape,omitempty" yaml:"shape,flow,omitempty"`
	BatchSize int    `json:"batch_size,omitempty" yaml:"batch_size,omitempty"`
}

// Describe returns the model description.
func (m *Model) Describe() (Description, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d := Description{Name: m.name}
	for _, l := range m.uniqueLayers() {
		spec, err := l.Spec()
		if err != nil {
			return Description{}, err
		}
		d.Layers = append(d.Layers, spec)
	}

	for _, n := range m.nodes {
		ns := NodeSpec{Layer: n.Layer().Name()}
		for _, id := range n.Inputs() {
			t, err := m.builder.Tensor(id)
			if err != nil {
				return Description{}, err
			}
			ns.Inputs = append(ns.Inputs, t.Name())
		}
		for i, id := range n.Outputs() {
			t, err := m.builder.Tensor(id)
			if err != nil {
				return Description{}, err
			}
			ns.Outputs = append(ns.Outputs, t.Name())
			ns.OutputShapes = append(ns.OutputShapes, n.OutputShapes()[i])
		}
		d.Nodes = append(d.Nodes, ns)
	}

	d.Inputs = tensorSpecs(m.inputs)
	d.Outputs = tensorSpecs(m.outputs)
	if m.compiled != nil {
		c := m.compiled.clone()
		d.Compile = &c
	}
	return d, nil
}

func tensorSpecs(ts []*graph.Tensor) []TensorSpec {
	out := make([]TensorSpec, len(ts))
	for i, t := range ts {
		out[i] = TensorSpec{Name: t.Name(), Shape: t.Shape()}
		if t.BatchSize() > 0 {
			out[i].BatchSize = t.BatchSize()
		}
	}
	return out
}

// FromDescription rebuilds a model in a fresh graph session.
//
// Nodes are applied in listed order; every input reference must name a
// declared input or an output of an earlier node. Recorded output shapes, if
// present, must match the shapes inferred again. Output tensors keep the
// names they had in the description only when those were the canonical
// "<layer>/<call>:<index>" names.
func FromDescription(d Description, opts ...ResolveOptions) (*Model, error) {
	opt := pickOptions(d.Name, opts)
	if opt.Name == "" {
		opt.Name = "model"
	}

	b := graph.NewBuilder(graph.WithLogger(*opt.Logger))
	tensors := make(map[string]*graph.Tensor)

	inputs := make([]*graph.Tensor, 0, len(d.Inputs))
	for _, in := range d.Inputs {
		batch := shape.Unknown
		if in.BatchSize > 0 {
			batch = in.BatchSize
		}
		t, err := b.Input(in.Shape, graph.WithInputName(in.Name), graph.WithBatchSize(batch))
		if err != nil {
			return nil, fmt.Errorf("%w: input %q: %v", ErrDescription, in.Name, err)
		}
		tensors[in.Name] = t
		inputs = append(inputs, t)
	}

	layers := make(map[string]*layer.Layer, len(d.Layers))
	for _, spec := range d.Layers {
		if _, dup := layers[spec.Name]; dup {
			return nil, &DuplicateNameError{Name: spec.Name}
		}
		l, err := layer.FromSpec(spec)
		if err != nil {
			return nil, fmt.Errorf("%w: layer %q: %w", ErrDescription, spec.Name, err)
		}
		layers[spec.Name] = l
	}

	for i, ns := range d.Nodes {
		l, ok := layers[ns.Layer]
		if !ok {
			return nil, fmt.Errorf("%w: node %d: unknown layer %q", ErrDescription, i, ns.Layer)
		}
		args := make([]*graph.Tensor, len(ns.Inputs))
		for j, name := range ns.Inputs {
			t, ok := tensors[name]
			if !ok {
				return nil, fmt.Errorf("%w: node %d (%s): unknown tensor %q", ErrDescription, i, ns.Layer, name)
			}
			args[j] = t
		}
		outs, err := b.Apply(l, args...)
		if err != nil {
			return nil, fmt.Errorf("%w: node %d (%s): %w", ErrDescription, i, ns.Layer, err)
		}
		if len(ns.Outputs) > 0 && len(ns.Outputs) != len(outs) {
			return nil, fmt.Errorf("%w: node %d (%s): %d outputs listed, layer produces %d",
				ErrDescription, i, ns.Layer, len(ns.Outputs), len(outs))
		}
		for k, t := range outs {
			if k < len(ns.OutputShapes) && !shape.Shape(ns.OutputShapes[k]).Equal(t.Shape()) {
				return nil, fmt.Errorf("%w: node %d (%s): output %d has shape %v, description says %v",
					ErrDescription, i, ns.Layer, k, t.Shape(), shape.Shape(ns.OutputShapes[k]))
			}
			tensors[t.Name()] = t
			if k < len(ns.Outputs) {
				tensors[ns.Outputs[k]] = t
			}
		}
	}

	outputs := make([]*graph.Tensor, 0, len(d.Outputs))
	for _, out := range d.Outputs {
		t, ok := tensors[out.Name]
		if !ok {
			return nil, fmt.Errorf("%w: unknown output tensor %q", ErrDescription, out.Name)
		}
		outputs = append(outputs, t)
	}

	m, err := resolve(b, inputs, outputs, opt)
	if err != nil {
		return nil, err
	}
	if d.Compile != nil {
		if err := m.Compile(*d.Compile); err != nil {
			return nil, err
		}
	}
	return m, nil
}
