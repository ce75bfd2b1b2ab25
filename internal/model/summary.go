package model

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/born-ml/layergraph/internal/graph"
)

// ParamCounts holds weight totals. Shared layers are counted once.
type ParamCounts struct {
	Total        int
	Trainable    int
	NonTrainable int
}

// CountParams sums the weights of every distinct layer, using the input
// shapes of its first application.
func (m *Model) CountParams() ParamCounts {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var c ParamCounts
	seen := make(map[string]bool)
	for _, n := range m.nodes {
		l := n.Layer()
		if seen[l.Name()] {
			continue
		}
		seen[l.Name()] = true
		c.Total += n.ParamCount()
		c.Trainable += l.TrainableParamCount(n.InputShapes())
	}
	c.NonTrainable = c.Total - c.Trainable
	return c
}

// Summary renders a table of layers, output shapes, parameter counts and
// inbound connections.
func (m *Model) Summary() string {
	counts := m.CountParams()

	m.mu.RLock()
	defer m.mu.RUnlock()

	var sb strings.Builder
	rule := strings.Repeat("_", 80)
	fmt.Fprintf(&sb, "Model: %q\n%s\n", m.name, rule)

	tw := tabwriter.NewWriter(&sb, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "Layer (type)\tOutput Shape\tParam #\tConnected to")
	fmt.Fprintln(tw, strings.Repeat("=", 20)+"\t\t\t")
	for _, t := range m.inputs {
		fmt.Fprintf(tw, "%s (InputLayer)\t%s\t0\t\n", t.Name(), t.Shape().WithBatch(t.BatchSize()))
	}

	counted := make(map[string]bool)
	for _, n := range m.nodes {
		l := n.Layer()
		params := 0
		if !counted[l.Name()] {
			counted[l.Name()] = true
			params = n.ParamCount()
		}
		label := l.Name()
		if l.CallCount() > 1 {
			label = n.String()
		}
		fmt.Fprintf(tw, "%s (%s)\t%s\t%d\t%s\n",
			label, l.Kind().ClassName(), m.outputShapes(n), params, m.inbound(n))
	}
	tw.Flush()

	fmt.Fprintf(&sb, "%s\n", strings.Repeat("=", 80))
	fmt.Fprintf(&sb, "Total params: %d\n", counts.Total)
	fmt.Fprintf(&sb, "Trainable params: %d\n", counts.Trainable)
	fmt.Fprintf(&sb, "Non-trainable params: %d\n", counts.NonTrainable)
	fmt.Fprintf(&sb, "%s\n", rule)
	return sb.String()
}

func (m *Model) outputShapes(n *graph.Node) string {
	var parts []string
	for _, id := range n.Outputs() {
		t, err := m.builder.Tensor(id)
		if err != nil {
			continue
		}
		parts = append(parts, t.Shape().WithBatch(t.BatchSize()))
	}
	return strings.Join(parts, ", ")
}

func (m *Model) inbound(n *graph.Node) string {
	var parts []string
	for _, id := range n.Inputs() {
		t, err := m.builder.Tensor(id)
		if err != nil {
			continue
		}
		parts = append(parts, t.Name())
	}
	return strings.Join(parts, ", ")
}
