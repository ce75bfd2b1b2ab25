package layer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// Spec is the serializable form of a layer: name, kind, config and flags.
// The config is a loose key/value bag in the wire form only; FromSpec turns
// it back into a typed Config. A nil Trainable means trainable.
type Spec struct {
	Name       string         `json:"name" yaml:"name"`
	Kind       Kind           `json:"kind" yaml:"kind"`
	Config     map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
	InputShape []int          `json:"input_shape,omitempty" yaml:"input_shape,flow,omitempty"`
	BatchSize  int            `json:"batch_size,omitempty" yaml:"batch_size,omitempty"`
	Trainable  *bool          `json:"trainable,omitempty" yaml:"trainable,omitempty"`
}

// Spec returns the serializable description of the layer.
func (l *Layer) Spec() (Spec, error) {
	raw, err := ConfigMap(l.config)
	if err != nil {
		return Spec{}, fmt.Errorf("layer %q: %w", l.name, err)
	}
	s := Spec{
		Name:       l.name,
		Kind:       l.Kind(),
		Config:     raw,
		InputShape: l.inputShape.Clone(),
	}
	if !l.trainable {
		frozen := false
		s.Trainable = &frozen
	}
	if l.batchSize > 0 {
		s.BatchSize = l.batchSize
	}
	return s, nil
}

// FromSpec rebuilds a layer from its serializable description.
func FromSpec(s Spec) (*Layer, error) {
	cfg, err := ConfigFromMap(s.Kind, s.Config)
	if err != nil {
		return nil, err
	}

	opts := []Option{WithTrainable(s.Trainable == nil || *s.Trainable)}
	if s.Name != "" {
		opts = append(opts, WithName(s.Name))
	}
	switch {
	case s.InputShape != nil && s.BatchSize > 0:
		opts = append(opts, WithBatchInputShape(s.BatchSize, s.InputShape...))
	case s.InputShape != nil:
		opts = append(opts, WithInputShape(s.InputShape...))
	}
	return New(cfg, opts...)
}

// ConfigMap converts a typed config into a key/value map using its json field names.
func ConfigMap(c Config) (map[string]any, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s config: %w", c.Kind(), err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode %s config: %w", c.Kind(), err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return raw, nil
}

// ConfigFromMap builds the typed config of kind from a key/value map.
// Unknown keys are rejected.
func ConfigFromMap(kind Kind, raw map[string]any) (Config, error) {
	ptr, err := newConfig(kind)
	if err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s config: %v", ErrConfig, kind, err)
		}
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(ptr); err != nil {
			return nil, fmt.Errorf("%w: %s config: %v", ErrConfig, kind, err)
		}
	}
	cfg, ok := reflect.ValueOf(ptr).Elem().Interface().(Config)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return cfg, nil
}
