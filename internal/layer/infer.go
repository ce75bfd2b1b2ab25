package layer

import (
	"errors"
	"fmt"
	"slices"

	"github.com/born-ml/layergraph/internal/shape"
)

// Arity is the accepted number of inputs. Max < 0 means unbounded.
type Arity struct {
	Min int
	Max int
}

// Accepts reports whether n inputs are allowed.
func (a Arity) Accepts(n int) bool {
	return n >= a.Min && (a.Max < 0 || n <= a.Max)
}

// String renders the arity, e.g. "exactly 1" or "at least 2".
func (a Arity) String() string {
	switch {
	case a.Min == a.Max:
		return fmt.Sprintf("exactly %d", a.Min)
	case a.Max < 0:
		return fmt.Sprintf("at least %d", a.Min)
	default:
		return fmt.Sprintf("between %d and %d", a.Min, a.Max)
	}
}

var (
	unary    = Arity{Min: 1, Max: 1}
	merge    = Arity{Min: 1, Max: -1}
	multiary = Arity{Min: 2, Max: -1}
)

func arityOf(c Config) Arity {
	switch c.(type) {
	case ConcatenateConfig:
		return multiary
	case AddConfig, MultiplyConfig, AverageConfig:
		return merge
	default:
		return unary
	}
}

// inferShapes dispatches shape inference over the closed set of configs.
// Arity has already been checked.
func inferShapes(c Config, in []shape.Shape) ([]shape.Shape, error) {
	var (
		out shape.Shape
		err error
	)

	switch cfg := c.(type) {
	case DenseConfig:
		out, err = inferDense(cfg, in[0])
	case ActivationConfig, DropoutConfig:
		out = in[0].Clone()
	case FlattenConfig:
		out, err = inferFlatten(in[0])
	case ReshapeConfig:
		out, err = inferReshape(cfg, in[0])
	case Conv2DConfig:
		out, err = inferConv2D(cfg, in[0])
	case MaxPooling2DConfig:
		out, err = inferSpatial(in[0], -1, cfg.PoolSize, cfg.Strides, cfg.Padding)
	case LSTMConfig:
		out, err = inferRecurrent(cfg.Units, cfg.ReturnSequences, in[0])
	case GRUConfig:
		out, err = inferRecurrent(cfg.Units, cfg.ReturnSequences, in[0])
	case EmbeddingConfig:
		out, err = inferEmbedding(cfg, in[0])
	case BatchNormalizationConfig:
		out, err = inferBatchNorm(cfg, in[0])
	case ConcatenateConfig:
		out, err = inferConcatenate(cfg, in)
	case AddConfig, MultiplyConfig, AverageConfig:
		out, err = inferMerge(in)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownKind, c)
	}

	if err != nil {
		return nil, err
	}
	return []shape.Shape{out}, nil
}

func requireRank(in shape.Shape, rank int) error {
	if in.Rank() != rank {
		return fmt.Errorf("expected rank %d, got rank %d", rank, in.Rank())
	}
	return nil
}

func inferDense(cfg DenseConfig, in shape.Shape) (shape.Shape, error) {
	if in.Rank() < 1 {
		return nil, errors.New("expected rank >= 1")
	}
	if in.Last() == shape.Unknown {
		return nil, errors.New("last dimension must be defined")
	}
	out := in.Clone()
	out[len(out)-1] = cfg.Units
	return out, nil
}

func inferFlatten(in shape.Shape) (shape.Shape, error) {
	if in.Rank() < 1 {
		return nil, errors.New("expected rank >= 1")
	}
	n, err := in.NumElements()
	if err != nil {
		return nil, err
	}
	return shape.Of(n), nil
}

func inferReshape(cfg ReshapeConfig, in shape.Shape) (shape.Shape, error) {
	out := cfg.TargetShape.Clone()
	inferAt := slices.Index(out, shape.Unknown)
	fixed := slices.DeleteFunc(out.Clone(), func(d shape.Dim) bool { return d == shape.Unknown })
	known, err := fixed.NumElements()
	if err != nil {
		return nil, err
	}

	total, err := in.NumElements()
	if err != nil {
		return nil, err
	}
	if total == shape.Unknown {
		return out, nil
	}
	if inferAt >= 0 {
		if total%known != 0 {
			return nil, fmt.Errorf("cannot reshape %d elements into %v", total, cfg.TargetShape)
		}
		out[inferAt] = total / known
		return out, nil
	}
	if known != total {
		return nil, fmt.Errorf("cannot reshape %d elements into %v (%d elements)", total, cfg.TargetShape, known)
	}
	return out, nil
}

func inferConv2D(cfg Conv2DConfig, in shape.Shape) (shape.Shape, error) {
	return inferSpatial(in, cfg.Filters, cfg.KernelSize, cfg.Strides, cfg.Padding)
}

// inferSpatial handles (height, width, channels) inputs for convolution and
// pooling. channelsOut < 0 keeps the input channel count.
func inferSpatial(in shape.Shape, channelsOut int, window, strides [2]int, padding Padding) (shape.Shape, error) {
	if err := requireRank(in, 3); err != nil {
		return nil, err
	}
	if in[2] == shape.Unknown {
		return nil, errors.New("channel dimension must be defined")
	}

	out := make(shape.Shape, 3)
	for axis := 0; axis < 2; axis++ {
		size, err := spatialOutput(in[axis], window[axis], strides[axis], padding)
		if err != nil {
			return nil, fmt.Errorf("spatial axis %d: %w", axis, err)
		}
		out[axis] = size
	}
	out[2] = in[2]
	if channelsOut > 0 {
		out[2] = channelsOut
	}
	return out, nil
}

func spatialOutput(n, window, stride int, padding Padding) (int, error) {
	if n == shape.Unknown {
		return shape.Unknown, nil
	}
	if padding == PaddingSame {
		return (n + stride - 1) / stride, nil
	}
	if n < window {
		return 0, fmt.Errorf("input size %d smaller than window %d", n, window)
	}
	return (n-window)/stride + 1, nil
}

func inferRecurrent(units int, returnSequences bool, in shape.Shape) (shape.Shape, error) {
	if err := requireRank(in, 2); err != nil {
		return nil, err
	}
	if in[1] == shape.Unknown {
		return nil, errors.New("feature dimension must be defined")
	}
	if returnSequences {
		return shape.Of(in[0], units), nil
	}
	return shape.Of(units), nil
}

func inferEmbedding(cfg EmbeddingConfig, in shape.Shape) (shape.Shape, error) {
	if in.Rank() < 1 {
		return nil, errors.New("expected rank >= 1")
	}
	return append(in.Clone(), cfg.OutputDim), nil
}

func inferBatchNorm(cfg BatchNormalizationConfig, in shape.Shape) (shape.Shape, error) {
	axis, err := resolveAxis(cfg.Axis, in.Rank())
	if err != nil {
		return nil, err
	}
	if in[axis] == shape.Unknown {
		return nil, fmt.Errorf("normalized axis %d must be defined", cfg.Axis)
	}
	return in.Clone(), nil
}

func inferConcatenate(cfg ConcatenateConfig, in []shape.Shape) (shape.Shape, error) {
	rank := in[0].Rank()
	for i, s := range in[1:] {
		if s.Rank() != rank {
			return nil, fmt.Errorf("input %d has rank %d, expected %d", i+1, s.Rank(), rank)
		}
	}
	axis, err := resolveAxis(cfg.Axis, rank)
	if err != nil {
		return nil, err
	}

	out := in[0].Clone()
	for i, s := range in[1:] {
		for d := range s {
			if d == axis {
				if out[d] == shape.Unknown || s[d] == shape.Unknown {
					out[d] = shape.Unknown
				} else {
					out[d] += s[d]
				}
				continue
			}
			if !shape.DimsCompatible(out[d], s[d]) {
				return nil, fmt.Errorf("input %d dimension %d is %v, expected %v", i+1, d, s, in[0])
			}
			if out[d] == shape.Unknown {
				out[d] = s[d]
			}
		}
	}
	return out, nil
}

func inferMerge(in []shape.Shape) (shape.Shape, error) {
	out := in[0].Clone()
	for _, s := range in[1:] {
		merged, err := shape.Broadcast(out, s)
		if err != nil {
			return nil, err
		}
		out = merged
	}
	return out, nil
}

// resolveAxis maps a Keras-style axis (0 = batch, 1 = first feature axis,
// negative from the end, 0 treated as -1) to an index into a batch-less shape.
func resolveAxis(axis, rank int) (int, error) {
	if rank < 1 {
		return 0, errors.New("expected rank >= 1")
	}
	var idx int
	switch {
	case axis == 0:
		idx = rank - 1
	case axis < 0:
		idx = rank + axis
	default:
		idx = axis - 1
	}
	if idx < 0 || idx >= rank {
		return 0, fmt.Errorf("axis %d out of range for rank %d", axis, rank)
	}
	return idx, nil
}
