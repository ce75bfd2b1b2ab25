package layer

import (
	"fmt"
	"slices"

	"github.com/born-ml/layergraph/internal/shape"
)

// Kind identifies a layer transformation.
type Kind string

// Supported layer kinds.
const (
	KindDense              Kind = "dense"
	KindActivation         Kind = "activation"
	KindDropout            Kind = "dropout"
	KindFlatten            Kind = "flatten"
	KindReshape            Kind = "reshape"
	KindConv2D             Kind = "conv2d"
	KindMaxPooling2D       Kind = "max_pooling2d"
	KindLSTM               Kind = "lstm"
	KindGRU                Kind = "gru"
	KindEmbedding          Kind = "embedding"
	KindBatchNormalization Kind = "batch_normalization"
	KindConcatenate        Kind = "concatenate"
	KindAdd                Kind = "add"
	KindMultiply           Kind = "multiply"
	KindAverage            Kind = "average"
)

// Kinds returns every supported kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindDense, KindActivation, KindDropout, KindFlatten, KindReshape,
		KindConv2D, KindMaxPooling2D, KindLSTM, KindGRU, KindEmbedding,
		KindBatchNormalization, KindConcatenate, KindAdd, KindMultiply, KindAverage,
	}
}

var classNames = map[Kind]string{
	KindDense:              "Dense",
	KindActivation:         "Activation",
	KindDropout:            "Dropout",
	KindFlatten:            "Flatten",
	KindReshape:            "Reshape",
	KindConv2D:             "Conv2D",
	KindMaxPooling2D:       "MaxPooling2D",
	KindLSTM:               "LSTM",
	KindGRU:                "GRU",
	KindEmbedding:          "Embedding",
	KindBatchNormalization: "BatchNormalization",
	KindConcatenate:        "Concatenate",
	KindAdd:                "Add",
	KindMultiply:           "Multiply",
	KindAverage:            "Average",
}

// ClassName returns the display name of the kind, e.g. "MaxPooling2D".
func (k Kind) ClassName() string {
	if name, ok := classNames[k]; ok {
		return name
	}
	return string(k)
}

// Padding selects the spatial padding mode of convolution and pooling layers.
type Padding string

// Padding modes.
const (
	PaddingValid Padding = "valid"
	PaddingSame  Padding = "same"
)

var activations = []string{
	"linear", "relu", "sigmoid", "tanh", "softmax", "elu", "selu",
	"softplus", "softsign", "hard_sigmoid", "exponential", "gelu", "silu",
}

// Activations returns the names accepted by Activation layers and the
// activation fields of Dense, Conv2D and recurrent layers.
func Activations() []string {
	return slices.Clone(activations)
}

// Config is the typed configuration of one layer kind.
//
// The set of implementations is closed: DenseConfig, ActivationConfig,
// DropoutConfig, FlattenConfig, ReshapeConfig, Conv2DConfig,
// MaxPooling2DConfig, LSTMConfig, GRUConfig, EmbeddingConfig,
// BatchNormalizationConfig, ConcatenateConfig, AddConfig, MultiplyConfig
// and AverageConfig.
type Config interface {
	Kind() Kind

	// normalize fills defaults and validates the config.
	normalize() (Config, error)
}

// DenseConfig configures a fully connected layer.
type DenseConfig struct {
	Units       int    `json:"units" yaml:"units"`
	Activation  string `json:"activation,omitempty" yaml:"activation,omitempty"`
	DisableBias bool   `json:"disable_bias,omitempty" yaml:"disable_bias,omitempty"`
}

// ActivationConfig configures an element-wise activation layer.
type ActivationConfig struct {
	Function string `json:"function" yaml:"function"`
}

// DropoutConfig configures a dropout layer.
type DropoutConfig struct {
	Rate float64 `json:"rate" yaml:"rate"`
}

// FlattenConfig configures a flatten layer. It has no fields.
type FlattenConfig struct{}

// ReshapeConfig configures a reshape layer. At most one entry of
// TargetShape may be -1, meaning inferred from the element count.
type ReshapeConfig struct {
	TargetShape shape.Shape `json:"target_shape" yaml:"target_shape,flow"`
}

// Conv2DConfig configures a 2D convolution over (height, width, channels) inputs.
type Conv2DConfig struct {
	Filters     int     `json:"filters" yaml:"filters"`
	KernelSize  [2]int  `json:"kernel_size" yaml:"kernel_size,flow"`
	Strides     [2]int  `json:"strides,omitempty" yaml:"strides,flow,omitempty"`
	Padding     Padding `json:"padding,omitempty" yaml:"padding,omitempty"`
	Activation  string  `json:"activation,omitempty" yaml:"activation,omitempty"`
	DisableBias bool    `json:"disable_bias,omitempty" yaml:"disable_bias,omitempty"`
}

// MaxPooling2DConfig configures 2D max pooling. Zero Strides default to PoolSize.
type MaxPooling2DConfig struct {
	PoolSize [2]int  `json:"pool_size" yaml:"pool_size,flow"`
	Strides  [2]int  `json:"strides,omitempty" yaml:"strides,flow,omitempty"`
	Padding  Padding `json:"padding,omitempty" yaml:"padding,omitempty"`
}

// LSTMConfig configures a long short-term memory layer over (timesteps, features) inputs.
type LSTMConfig struct {
	Units           int  `json:"units" yaml:"units"`
	ReturnSequences bool `json:"return_sequences,omitempty" yaml:"return_sequences,omitempty"`
}

// GRUConfig configures a gated recurrent unit layer over (timesteps, features) inputs.
type GRUConfig struct {
	Units           int  `json:"units" yaml:"units"`
	ReturnSequences bool `json:"return_sequences,omitempty" yaml:"return_sequences,omitempty"`
}

// EmbeddingConfig configures an embedding lookup from integer indices.
type EmbeddingConfig struct {
	InputDim  int `json:"input_dim" yaml:"input_dim"`
	OutputDim int `json:"output_dim" yaml:"output_dim"`
}

// BatchNormalizationConfig configures batch normalization along Axis.
// Zero Axis means the last axis.
type BatchNormalizationConfig struct {
	Axis int `json:"axis,omitempty" yaml:"axis,omitempty"`
}

// ConcatenateConfig joins inputs along Axis. Zero Axis means the last axis.
type ConcatenateConfig struct {
	Axis int `json:"axis,omitempty" yaml:"axis,omitempty"`
}

// AddConfig configures element-wise addition of broadcast-compatible inputs.
type AddConfig struct{}

// MultiplyConfig configures element-wise multiplication of broadcast-compatible inputs.
type MultiplyConfig struct{}

// AverageConfig configures the element-wise mean of broadcast-compatible inputs.
type AverageConfig struct{}

func (DenseConfig) Kind() Kind              { return KindDense }
func (ActivationConfig) Kind() Kind         { return KindActivation }
func (DropoutConfig) Kind() Kind            { return KindDropout }
func (FlattenConfig) Kind() Kind            { return KindFlatten }
func (ReshapeConfig) Kind() Kind            { return KindReshape }
func (Conv2DConfig) Kind() Kind             { return KindConv2D }
func (MaxPooling2DConfig) Kind() Kind       { return KindMaxPooling2D }
func (LSTMConfig) Kind() Kind               { return KindLSTM }
func (GRUConfig) Kind() Kind                { return KindGRU }
func (EmbeddingConfig) Kind() Kind          { return KindEmbedding }
func (BatchNormalizationConfig) Kind() Kind { return KindBatchNormalization }
func (ConcatenateConfig) Kind() Kind        { return KindConcatenate }
func (AddConfig) Kind() Kind                { return KindAdd }
func (MultiplyConfig) Kind() Kind           { return KindMultiply }
func (AverageConfig) Kind() Kind            { return KindAverage }

func (c DenseConfig) normalize() (Config, error) {
	if c.Units <= 0 {
		return nil, configErr(KindDense, "units", "must be > 0, got %d", c.Units)
	}
	act, err := normalizeActivation(KindDense, c.Activation)
	if err != nil {
		return nil, err
	}
	c.Activation = act
	return c, nil
}

func (c ActivationConfig) normalize() (Config, error) {
	if c.Function == "" {
		return nil, configErr(KindActivation, "function", "is required")
	}
	act, err := normalizeActivation(KindActivation, c.Function)
	if err != nil {
		return nil, err
	}
	c.Function = act
	return c, nil
}

func (c DropoutConfig) normalize() (Config, error) {
	if c.Rate < 0 || c.Rate >= 1 {
		return nil, configErr(KindDropout, "rate", "must be in [0, 1), got %v", c.Rate)
	}
	return c, nil
}

func (c FlattenConfig) normalize() (Config, error) { return c, nil }

func (c ReshapeConfig) normalize() (Config, error) {
	if len(c.TargetShape) == 0 {
		return nil, configErr(KindReshape, "target_shape", "is required")
	}
	inferred := 0
	for i, d := range c.TargetShape {
		switch {
		case d == shape.Unknown:
			inferred++
		case d <= 0:
			return nil, configErr(KindReshape, "target_shape", "invalid dimension at index %d: %d", i, d)
		}
	}
	if inferred > 1 {
		return nil, configErr(KindReshape, "target_shape", "at most one dimension may be -1")
	}
	fixed := slices.DeleteFunc(c.TargetShape.Clone(), func(d shape.Dim) bool { return d == shape.Unknown })
	if _, err := fixed.NumElements(); err != nil {
		return nil, configErr(KindReshape, "target_shape", "%v", err)
	}
	c.TargetShape = c.TargetShape.Clone()
	return c, nil
}

func (c Conv2DConfig) normalize() (Config, error) {
	if c.Filters <= 0 {
		return nil, configErr(KindConv2D, "filters", "must be > 0, got %d", c.Filters)
	}
	if err := positivePair(KindConv2D, "kernel_size", c.KernelSize); err != nil {
		return nil, err
	}
	if c.Strides == [2]int{} {
		c.Strides = [2]int{1, 1}
	}
	if err := positivePair(KindConv2D, "strides", c.Strides); err != nil {
		return nil, err
	}
	padding, err := normalizePadding(KindConv2D, c.Padding)
	if err != nil {
		return nil, err
	}
	c.Padding = padding
	act, err := normalizeActivation(KindConv2D, c.Activation)
	if err != nil {
		return nil, err
	}
	c.Activation = act
	return c, nil
}

func (c MaxPooling2DConfig) normalize() (Config, error) {
	if err := positivePair(KindMaxPooling2D, "pool_size", c.PoolSize); err != nil {
		return nil, err
	}
	if c.Strides == [2]int{} {
		c.Strides = c.PoolSize
	}
	if err := positivePair(KindMaxPooling2D, "strides", c.Strides); err != nil {
		return nil, err
	}
	padding, err := normalizePadding(KindMaxPooling2D, c.Padding)
	if err != nil {
		return nil, err
	}
	c.Padding = padding
	return c, nil
}

func (c LSTMConfig) normalize() (Config, error) {
	if c.Units <= 0 {
		return nil, configErr(KindLSTM, "units", "must be > 0, got %d", c.Units)
	}
	return c, nil
}

func (c GRUConfig) normalize() (Config, error) {
	if c.Units <= 0 {
		return nil, configErr(KindGRU, "units", "must be > 0, got %d", c.Units)
	}
	return c, nil
}

func (c EmbeddingConfig) normalize() (Config, error) {
	if c.InputDim <= 0 {
		return nil, configErr(KindEmbedding, "input_dim", "must be > 0, got %d", c.InputDim)
	}
	if c.OutputDim <= 0 {
		return nil, configErr(KindEmbedding, "output_dim", "must be > 0, got %d", c.OutputDim)
	}
	return c, nil
}

func (c BatchNormalizationConfig) normalize() (Config, error) {
	if c.Axis == 0 {
		c.Axis = -1
	}
	return c, nil
}

func (c ConcatenateConfig) normalize() (Config, error) {
	if c.Axis == 0 {
		c.Axis = -1
	}
	return c, nil
}

func (c AddConfig) normalize() (Config, error)      { return c, nil }
func (c MultiplyConfig) normalize() (Config, error) { return c, nil }
func (c AverageConfig) normalize() (Config, error)  { return c, nil }

func normalizeActivation(kind Kind, name string) (string, error) {
	if name == "" {
		return "linear", nil
	}
	if !slices.Contains(activations, name) {
		return "", configErr(kind, "activation", "unknown activation %q", name)
	}
	return name, nil
}

func normalizePadding(kind Kind, p Padding) (Padding, error) {
	switch p {
	case "":
		return PaddingValid, nil
	case PaddingValid, PaddingSame:
		return p, nil
	default:
		return "", configErr(kind, "padding", "must be %q or %q, got %q", PaddingValid, PaddingSame, p)
	}
}

func positivePair(kind Kind, field string, v [2]int) error {
	if v[0] <= 0 || v[1] <= 0 {
		return configErr(kind, field, "must be positive, got %v", v)
	}
	return nil
}

// cloneConfig returns a copy that shares no mutable state with c.
func cloneConfig(c Config) Config {
	if r, ok := c.(ReshapeConfig); ok {
		r.TargetShape = r.TargetShape.Clone()
		return r
	}
	return c
}

// newConfig returns a zero config value for kind.
func newConfig(kind Kind) (Config, error) {
	switch kind {
	case KindDense:
		return &DenseConfig{}, nil
	case KindActivation:
		return &ActivationConfig{}, nil
	case KindDropout:
		return &DropoutConfig{}, nil
	case KindFlatten:
		return &FlattenConfig{}, nil
	case KindReshape:
		return &ReshapeConfig{}, nil
	case KindConv2D:
		return &Conv2DConfig{}, nil
	case KindMaxPooling2D:
		return &MaxPooling2DConfig{}, nil
	case KindLSTM:
		return &LSTMConfig{}, nil
	case KindGRU:
		return &GRUConfig{}, nil
	case KindEmbedding:
		return &EmbeddingConfig{}, nil
	case KindBatchNormalization:
		return &BatchNormalizationConfig{}, nil
	case KindConcatenate:
		return &ConcatenateConfig{}, nil
	case KindAdd:
		return &AddConfig{}, nil
	case KindMultiply:
		return &MultiplyConfig{}, nil
	case KindAverage:
		return &AverageConfig{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
