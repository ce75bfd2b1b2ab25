package model

import (
	"fmt"
	"slices"
)

// CompileConfig binds a model to training collaborators. Identifiers are
// opaque here; only presence and agreement with the outputs are checked.
type CompileConfig struct {
	Optimizer   string    `json:"optimizer" yaml:"optimizer"`
	Losses      []string  `json:"losses" yaml:"losses,flow"`
	Metrics     []string  `json:"metrics,omitempty" yaml:"metrics,flow,omitempty"`
	LossWeights []float64 `json:"loss_weights,omitempty" yaml:"loss_weights,flow,omitempty"`
}

func (c CompileConfig) clone() CompileConfig {
	return CompileConfig{
		Optimizer:   c.Optimizer,
		Losses:      slices.Clone(c.Losses),
		Metrics:     slices.Clone(c.Metrics),
		LossWeights: slices.Clone(c.LossWeights),
	}
}

// Compile validates cfg against the model outputs and replaces the compiled
// state. One loss applies to every output; otherwise there must be one loss
// per output. On error the previous state is kept.
func (m *Model) Compile(cfg CompileConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cfg.Optimizer == "" {
		return &CompileError{Field: "optimizer", Details: "is required"}
	}
	outputs := len(m.outputs)
	if len(cfg.Losses) != 1 && len(cfg.Losses) != outputs {
		return &CompileError{
			Field:   "losses",
			Details: fmt.Sprintf("got %d, want 1 or %d (one per output)", len(cfg.Losses), outputs),
		}
	}
	for i, loss := range cfg.Losses {
		if loss == "" {
			return &CompileError{Field: "losses", Details: fmt.Sprintf("entry %d is empty", i)}
		}
	}
	for i, metric := range cfg.Metrics {
		if metric == "" {
			return &CompileError{Field: "metrics", Details: fmt.Sprintf("entry %d is empty", i)}
		}
	}
	if len(cfg.LossWeights) > 0 && len(cfg.LossWeights) != outputs {
		return &CompileError{
			Field:   "loss_weights",
			Details: fmt.Sprintf("got %d, want %d (one per output)", len(cfg.LossWeights), outputs),
		}
	}

	c := cfg.clone()
	m.compiled = &c
	m.log.V(4).Info("compiled model", "optimizer", cfg.Optimizer, "losses", cfg.Losses)
	return nil
}

// CompiledState returns a copy of the compiled state and whether one is set.
func (m *Model) CompiledState() (CompileConfig, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.compiled == nil {
		return CompileConfig{}, false
	}
	return m.compiled.clone(), true
}

// ClearCompiled removes the compiled state.
func (m *Model) ClearCompiled() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.compiled = nil
}
