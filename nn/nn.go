// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/go-logr/logr"

	"github.com/born-ml/layergraph/internal/graph"
	"github.com/born-ml/layergraph/internal/layer"
	"github.com/born-ml/layergraph/internal/model"
	"github.com/born-ml/layergraph/internal/shape"
)

// Shapes

// Shape is a symbolic tensor shape without the batch axis.
type Shape = shape.Shape

// Dim is one dimension of a Shape.
type Dim = shape.Dim

// Unknown marks a dimension resolved only at execution time.
const Unknown = shape.Unknown

// Layers

// Layer is a named, configured transformation with shape inference.
type Layer = layer.Layer

// LayerOption configures a layer at construction.
type LayerOption = layer.Option

// Kind identifies a layer variant.
type Kind = layer.Kind

// Config is the typed configuration of a layer kind.
type Config = layer.Config

// LayerSpec is the serializable form of a layer.
type LayerSpec = layer.Spec

// Layer configurations.
type (
	DenseConfig              = layer.DenseConfig
	ActivationConfig         = layer.ActivationConfig
	DropoutConfig            = layer.DropoutConfig
	FlattenConfig            = layer.FlattenConfig
	ReshapeConfig            = layer.ReshapeConfig
	Conv2DConfig             = layer.Conv2DConfig
	MaxPooling2DConfig       = layer.MaxPooling2DConfig
	LSTMConfig               = layer.LSTMConfig
	GRUConfig                = layer.GRUConfig
	EmbeddingConfig          = layer.EmbeddingConfig
	BatchNormalizationConfig = layer.BatchNormalizationConfig
	ConcatenateConfig        = layer.ConcatenateConfig
	AddConfig                = layer.AddConfig
	MultiplyConfig           = layer.MultiplyConfig
	AverageConfig            = layer.AverageConfig
)

// NewLayer creates a layer from any configuration.
//
// Example:
//
//	conv, err := nn.NewLayer(nn.Conv2DConfig{Filters: 32, KernelSize: [2]int{3, 3}, Padding: "same"})
func NewLayer(cfg Config, opts ...LayerOption) (*Layer, error) {
	return layer.New(cfg, opts...)
}

// WithName sets the layer name instead of an automatic one.
func WithName(name string) LayerOption { return layer.WithName(name) }

// WithInputShape declares the shape a layer expects, without the batch axis.
func WithInputShape(dims ...Dim) LayerOption { return layer.WithInputShape(dims...) }

// WithBatchInputShape declares the input shape together with a fixed batch size.
func WithBatchInputShape(batch Dim, dims ...Dim) LayerOption {
	return layer.WithBatchInputShape(batch, dims...)
}

// WithTrainable marks a layer frozen (false) or trainable (true).
func WithTrainable(trainable bool) LayerOption { return layer.WithTrainable(trainable) }

// NewDense creates a fully connected layer.
//
// Example:
//
//	dense, err := nn.NewDense(64, nn.WithInputShape(784))
func NewDense(units int, opts ...LayerOption) (*Layer, error) {
	return layer.NewDense(units, opts...)
}

// NewActivation creates an element-wise activation layer ("relu", "softmax", ...).
func NewActivation(function string, opts ...LayerOption) (*Layer, error) {
	return layer.NewActivation(function, opts...)
}

// NewDropout creates a dropout layer with the given drop rate in [0, 1).
func NewDropout(rate float64, opts ...LayerOption) (*Layer, error) {
	return layer.NewDropout(rate, opts...)
}

// NewFlatten creates a layer collapsing all non-batch dimensions.
func NewFlatten(opts ...LayerOption) (*Layer, error) {
	return layer.NewFlatten(opts...)
}

// NewReshape creates a reshape layer. One target dimension may be -1.
func NewReshape(target []int, opts ...LayerOption) (*Layer, error) {
	return layer.NewReshape(target, opts...)
}

// NewConv2D creates a 2D convolution over (height, width, channels) inputs
// with a square kernel, stride 1 and valid padding. Use NewLayer with a
// Conv2DConfig for other settings.
func NewConv2D(filters, kernelSize int, opts ...LayerOption) (*Layer, error) {
	return layer.NewConv2D(filters, kernelSize, opts...)
}

// NewMaxPooling2D creates a 2D max pooling layer with a square window.
func NewMaxPooling2D(poolSize int, opts ...LayerOption) (*Layer, error) {
	return layer.NewMaxPooling2D(poolSize, opts...)
}

// NewLSTM creates an LSTM over (timesteps, features) inputs.
//
// Example:
//
//	lstm, err := nn.NewLSTM(64, false) // output (64,)
func NewLSTM(units int, returnSequences bool, opts ...LayerOption) (*Layer, error) {
	return layer.NewLSTM(units, returnSequences, opts...)
}

// NewGRU creates a GRU over (timesteps, features) inputs.
func NewGRU(units int, returnSequences bool, opts ...LayerOption) (*Layer, error) {
	return layer.NewGRU(units, returnSequences, opts...)
}

// NewEmbedding creates an embedding lookup from inputDim ids to outputDim vectors.
func NewEmbedding(inputDim, outputDim int, opts ...LayerOption) (*Layer, error) {
	return layer.NewEmbedding(inputDim, outputDim, opts...)
}

// NewBatchNormalization creates a batch normalization over the last axis.
func NewBatchNormalization(opts ...LayerOption) (*Layer, error) {
	return layer.NewBatchNormalization(opts...)
}

// Merge layers

// NewConcatenate joins two or more inputs along axis.
func NewConcatenate(axis int, opts ...LayerOption) (*Layer, error) {
	return layer.NewConcatenate(axis, opts...)
}

// NewAdd sums its inputs element-wise, with broadcasting.
func NewAdd(opts ...LayerOption) (*Layer, error) { return layer.NewAdd(opts...) }

// NewMultiply multiplies its inputs element-wise, with broadcasting.
func NewMultiply(opts ...LayerOption) (*Layer, error) { return layer.NewMultiply(opts...) }

// NewAverage averages its inputs element-wise, with broadcasting.
func NewAverage(opts ...LayerOption) (*Layer, error) { return layer.NewAverage(opts...) }

// Graphs

// Builder records layer applications in one graph session.
type Builder = graph.Builder

// BuilderOption configures a Builder.
type BuilderOption = graph.BuilderOption

// InputOption configures a declared input.
type InputOption = graph.InputOption

// Tensor is a symbolic tensor handle owned by a Builder.
type Tensor = graph.Tensor

// Node is one application of a layer.
type Node = graph.Node

// NewBuilder starts an empty graph session.
func NewBuilder(opts ...BuilderOption) *Builder { return graph.NewBuilder(opts...) }

// WithLogger sets the logger receiving graph construction traces.
func WithLogger(log logr.Logger) BuilderOption { return graph.WithLogger(log) }

// WithInputName names a declared input instead of "input", "input_1", ...
func WithInputName(name string) InputOption { return graph.WithInputName(name) }

// WithBatchSize fixes the batch size of a declared input.
func WithBatchSize(batch Dim) InputOption { return graph.WithBatchSize(batch) }

// Models

// Model is a resolved layer graph.
type Model = model.Model

// ResolveOptions configures model resolution.
type ResolveOptions = model.ResolveOptions

// CompileConfig binds a model to training collaborators.
type CompileConfig = model.CompileConfig

// ParamCounts holds weight totals of a model.
type ParamCounts = model.ParamCounts

// SequentialBuilder accumulates a layer stack.
type SequentialBuilder = model.SequentialBuilder

// Description is the serializable form of a model.
type Description = model.Description

// NodeSpec is one layer application in a Description.
type NodeSpec = model.NodeSpec

// TensorSpec names a model input or output in a Description.
type TensorSpec = model.TensorSpec

// DefaultResolveOptions returns default resolution options.
func DefaultResolveOptions() ResolveOptions { return model.DefaultResolveOptions() }

// Sequential resolves a linear stack of layers. The first layer must declare
// its input shape.
func Sequential(layers []*Layer, opts ...ResolveOptions) (*Model, error) {
	return model.Sequential(layers, opts...)
}

// NewSequentialBuilder starts an empty layer stack.
//
// Example:
//
//	model, err := nn.NewSequentialBuilder().Add(dense).Add(relu).Build()
func NewSequentialBuilder(opts ...ResolveOptions) *SequentialBuilder {
	return model.NewSequentialBuilder(opts...)
}

// Functional resolves the graph between inputs and outputs recorded in b.
func Functional(b *Builder, inputs, outputs []*Tensor, opts ...ResolveOptions) (*Model, error) {
	return model.Functional(b, inputs, outputs, opts...)
}

// FromDescription rebuilds a model from its description.
func FromDescription(d Description, opts ...ResolveOptions) (*Model, error) {
	return model.FromDescription(d, opts...)
}

// Errors

// Sentinel errors. Typed errors match these with errors.Is.
var (
	ErrShape         = layer.ErrShape
	ErrArity         = layer.ErrArity
	ErrConfig        = layer.ErrConfig
	ErrUnknownKind   = layer.ErrUnknownKind
	ErrSessionBound  = layer.ErrSessionBound
	ErrInvalidOption = layer.ErrInvalidOption

	ErrForeignTensor      = graph.ErrForeignTensor
	ErrForeignLayer       = graph.ErrForeignLayer
	ErrNilTensor          = graph.ErrNilTensor
	ErrNilLayer           = graph.ErrNilLayer
	ErrCycle              = graph.ErrCycle
	ErrDuplicateInputName = graph.ErrDuplicateInputName

	ErrNoLayers              = model.ErrNoLayers
	ErrNoInputs              = model.ErrNoInputs
	ErrNoOutputs             = model.ErrNoOutputs
	ErrMissingInputShape     = model.ErrMissingInputShape
	ErrConflictingInputShape = model.ErrConflictingInputShape
	ErrNotAnInput            = model.ErrNotAnInput
	ErrDuplicateTensor       = model.ErrDuplicateTensor
	ErrDanglingInput         = model.ErrDanglingInput
	ErrUnusedInput           = model.ErrUnusedInput
	ErrDuplicateName         = model.ErrDuplicateName
	ErrAmbiguousPop          = model.ErrAmbiguousPop
	ErrLayerNotFound         = model.ErrLayerNotFound
	ErrLayerIndexOutOfRange  = model.ErrLayerIndexOutOfRange
	ErrCompile               = model.ErrCompile
	ErrDescription           = model.ErrDescription
)

// Typed errors.
type (
	ShapeError                 = layer.ShapeError
	ArityError                 = layer.ArityError
	ConfigError                = layer.ConfigError
	CyclicGraphError           = graph.CyclicGraphError
	DanglingInputError         = model.DanglingInputError
	UnusedInputError           = model.UnusedInputError
	DuplicateNameError         = model.DuplicateNameError
	ConflictingInputShapeError = model.ConflictingInputShapeError
	AmbiguousPopError          = model.AmbiguousPopError
	CompileError               = model.CompileError
)
