package layer

// NewDense creates a fully connected layer with the given number of units.
//
// Example:
//
//	dense, err := layer.NewDense(32, layer.WithInputShape(784))
func NewDense(units int, opts ...Option) (*Layer, error) {
	return New(DenseConfig{Units: units}, opts...)
}

// NewActivation creates an element-wise activation layer, e.g. "relu".
func NewActivation(function string, opts ...Option) (*Layer, error) {
	return New(ActivationConfig{Function: function}, opts...)
}

// NewDropout creates a dropout layer with the given drop rate.
func NewDropout(rate float64, opts ...Option) (*Layer, error) {
	return New(DropoutConfig{Rate: rate}, opts...)
}

// NewFlatten creates a layer collapsing all non-batch dimensions into one.
func NewFlatten(opts ...Option) (*Layer, error) {
	return New(FlattenConfig{}, opts...)
}

// NewReshape creates a layer reshaping inputs to target (batch excluded).
func NewReshape(target []int, opts ...Option) (*Layer, error) {
	return New(ReshapeConfig{TargetShape: target}, opts...)
}

// NewConv2D creates a square-kernel 2D convolution with unit strides and valid padding.
// Use New with a Conv2DConfig for full control.
func NewConv2D(filters, kernelSize int, opts ...Option) (*Layer, error) {
	return New(Conv2DConfig{Filters: filters, KernelSize: [2]int{kernelSize, kernelSize}}, opts...)
}

// NewMaxPooling2D creates a square max pooling layer with strides equal to the pool size.
func NewMaxPooling2D(poolSize int, opts ...Option) (*Layer, error) {
	return New(MaxPooling2DConfig{PoolSize: [2]int{poolSize, poolSize}}, opts...)
}

// NewLSTM creates an LSTM layer.
func NewLSTM(units int, returnSequences bool, opts ...Option) (*Layer, error) {
	return New(LSTMConfig{Units: units, ReturnSequences: returnSequences}, opts...)
}

// NewGRU creates a GRU layer.
func NewGRU(units int, returnSequences bool, opts ...Option) (*Layer, error) {
	return New(GRUConfig{Units: units, ReturnSequences: returnSequences}, opts...)
}

// NewEmbedding creates an embedding layer mapping indices in [0, inputDim) to outputDim vectors.
func NewEmbedding(inputDim, outputDim int, opts ...Option) (*Layer, error) {
	return New(EmbeddingConfig{InputDim: inputDim, OutputDim: outputDim}, opts...)
}

// NewBatchNormalization creates a batch normalization layer over the last axis.
func NewBatchNormalization(opts ...Option) (*Layer, error) {
	return New(BatchNormalizationConfig{}, opts...)
}

// NewConcatenate creates a layer joining two or more inputs along axis.
func NewConcatenate(axis int, opts ...Option) (*Layer, error) {
	return New(ConcatenateConfig{Axis: axis}, opts...)
}

// NewAdd creates an element-wise sum merge layer.
func NewAdd(opts ...Option) (*Layer, error) {
	return New(AddConfig{}, opts...)
}

// NewMultiply creates an element-wise product merge layer.
func NewMultiply(opts ...Option) (*Layer, error) {
	return New(MultiplyConfig{}, opts...)
}

// NewAverage creates an element-wise mean merge layer.
func NewAverage(opts ...Option) (*Layer, error) {
	return New(AverageConfig{}, opts...)
}
