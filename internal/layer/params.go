package layer

import "github.com/born-ml/layergraph/internal/shape"

// paramCount follows the Keras weight layout of each kind. Shapes are
// assumed to have passed inferShapes.
func paramCount(c Config, in []shape.Shape) int {
	if len(in) == 0 {
		return 0
	}
	first := in[0]

	switch cfg := c.(type) {
	case DenseConfig:
		if first.Rank() < 1 || first.Last() == shape.Unknown {
			return 0
		}
		return first.Last()*cfg.Units + bias(cfg.Units, cfg.DisableBias)
	case Conv2DConfig:
		if first.Rank() != 3 || first[2] == shape.Unknown {
			return 0
		}
		kernel := cfg.KernelSize[0] * cfg.KernelSize[1] * first[2] * cfg.Filters
		return kernel + bias(cfg.Filters, cfg.DisableBias)
	case LSTMConfig:
		return gatedParams(4, cfg.Units, first, 1)
	case GRUConfig:
		// reset_after layout: input and recurrent biases are separate.
		return gatedParams(3, cfg.Units, first, 2)
	case EmbeddingConfig:
		return cfg.InputDim * cfg.OutputDim
	case BatchNormalizationConfig:
		axis, err := resolveAxis(cfg.Axis, first.Rank())
		if err != nil || first[axis] == shape.Unknown {
			return 0
		}
		// gamma, beta, moving mean, moving variance
		return 4 * first[axis]
	default:
		return 0
	}
}

func gatedParams(gates, units int, in shape.Shape, biases int) int {
	if in.Rank() != 2 || in[1] == shape.Unknown {
		return 0
	}
	return gates * (units*(in[1]+units) + biases*units)
}

func bias(n int, disabled bool) int {
	if disabled {
		return 0
	}
	return n
}

// TrainableParamCount returns the part of ParamCount updated by training.
// Frozen layers and batch normalization moving statistics do not count.
func (l *Layer) TrainableParamCount(inputs []shape.Shape) int {
	if !l.trainable {
		return 0
	}
	n := paramCount(l.config, inputs)
	if _, ok := l.config.(BatchNormalizationConfig); ok {
		return n / 2
	}
	return n
}
