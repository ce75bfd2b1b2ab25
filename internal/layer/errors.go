package layer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/born-ml/layergraph/internal/shape"
)

// Sentinel errors. Typed errors below match them via errors.Is.
var (
	ErrShape         = errors.New("layer: incompatible input shape")
	ErrArity         = errors.New("layer: wrong number of inputs")
	ErrConfig        = errors.New("layer: invalid configuration")
	ErrUnknownKind   = errors.New("layer: unknown kind")
	ErrSessionBound  = errors.New("layer: already bound to another graph session")
	ErrInvalidOption = errors.New("layer: invalid option")
)

// ShapeError reports input shapes rejected by a layer's shape inference.
type ShapeError struct {
	Layer   string        // Layer name
	Kind    Kind          // Layer kind
	Inputs  []shape.Shape // Offending input shapes
	Details string        // Which rule was violated
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	parts := make([]string, len(e.Inputs))
	for i, s := range e.Inputs {
		parts[i] = s.String()
	}
	return fmt.Sprintf("layer %q (%s): incompatible input shape [%s]: %s",
		e.Layer, e.Kind, strings.Join(parts, ", "), e.Details)
}

// Unwrap returns ErrShape.
func (e *ShapeError) Unwrap() error { return ErrShape }

// ArityError reports a wrong number of input tensors for a layer kind.
type ArityError struct {
	Layer string
	Kind  Kind
	Got   int
	Arity Arity
}

// Error implements the error interface.
func (e *ArityError) Error() string {
	return fmt.Sprintf("layer %q (%s): expects %s input(s), got %d", e.Layer, e.Kind, e.Arity, e.Got)
}

// Unwrap returns ErrArity.
func (e *ArityError) Unwrap() error { return ErrArity }

// ConfigError reports an invalid field in a layer configuration.
type ConfigError struct {
	Kind    Kind
	Field   string
	Details string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s config: %s", e.Kind, e.Details)
	}
	return fmt.Sprintf("%s config: field %q: %s", e.Kind, e.Field, e.Details)
}

// Unwrap returns ErrConfig.
func (e *ConfigError) Unwrap() error { return ErrConfig }

func configErr(kind Kind, field, format string, args ...any) *ConfigError {
	return &ConfigError{Kind: kind, Field: field, Details: fmt.Sprintf(format, args...)}
}
