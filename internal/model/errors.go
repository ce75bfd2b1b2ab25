package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for model resolution and use.
var (
	ErrNoLayers              = errors.New("model: no layers")
	ErrNoInputs              = errors.New("model: no inputs")
	ErrNoOutputs             = errors.New("model: no outputs")
	ErrMissingInputShape     = errors.New("model: first layer has no declared input shape")
	ErrConflictingInputShape = errors.New("model: non-first layer declares a conflicting input shape")
	ErrNotAnInput            = errors.New("model: tensor is not a declared input")
	ErrDuplicateTensor       = errors.New("model: tensor listed more than once")
	ErrDanglingInput         = errors.New("model: output depends on an undeclared input")
	ErrUnusedInput           = errors.New("model: input not connected to any output")
	ErrDuplicateName         = errors.New("model: duplicate layer name")
	ErrAmbiguousPop          = errors.New("model: ambiguous layer pop")
	ErrLayerNotFound         = errors.New("model: layer not found")
	ErrLayerIndexOutOfRange  = errors.New("model: layer index out of range")
	ErrCompile               = errors.New("model: invalid compile configuration")
	ErrDescription           = errors.New("model: invalid description")
)

// DanglingInputError reports a tensor reached from an output that has no
// producer and is not among the declared inputs.
type DanglingInputError struct {
	Tensor string // Offending tensor
	Output string // Output from which it was reached
}

// Error implements the error interface.
func (e *DanglingInputError) Error() string {
	return fmt.Sprintf("model: output %q depends on tensor %q, which is not a declared input", e.Output, e.Tensor)
}

// Unwrap returns ErrDanglingInput.
func (e *DanglingInputError) Unwrap() error { return ErrDanglingInput }

// UnusedInputError reports a declared input that no output depends on.
// Functional models record it as a warning unless resolved strictly.
type UnusedInputError struct {
	Input string
}

// Error implements the error interface.
func (e *UnusedInputError) Error() string {
	return fmt.Sprintf("model: input %q is not connected to any output", e.Input)
}

// Unwrap returns ErrUnusedInput.
func (e *UnusedInputError) Unwrap() error { return ErrUnusedInput }

// DuplicateNameError reports two distinct layers sharing a name in one model.
type DuplicateNameError struct {
	Name string
}

// Error implements the error interface.
func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("model: two distinct layers are named %q", e.Name)
}

// Unwrap returns ErrDuplicateName.
func (e *DuplicateNameError) Unwrap() error { return ErrDuplicateName }

// ConflictingInputShapeError reports a non-first sequential layer whose
// declared input shape differs from its predecessor's output.
type ConflictingInputShapeError struct {
	Layer    string
	Index    int
	Declared string
	Inferred string
}

// Error implements the error interface.
func (e *ConflictingInputShapeError) Error() string {
	return fmt.Sprintf("model: layer %d %q declares input shape %s, but receives %s",
		e.Index, e.Layer, e.Declared, e.Inferred)
}

// Unwrap returns ErrConflictingInputShape.
func (e *ConflictingInputShapeError) Unwrap() error { return ErrConflictingInputShape }

// AmbiguousPopError reports a pop whose new output would feed more than one
// remaining layer.
type AmbiguousPopError struct {
	Layer     string   // Layer that would be popped
	Tensor    string   // Tensor that would become an output
	Consumers []string // Surviving layers consuming Tensor
}

// Error implements the error interface.
func (e *AmbiguousPopError) Error() string {
	return fmt.Sprintf("model: cannot pop %q: tensor %q is consumed by %d remaining layers [%s]",
		e.Layer, e.Tensor, len(e.Consumers), strings.Join(e.Consumers, ", "))
}

// Unwrap returns ErrAmbiguousPop.
func (e *AmbiguousPopError) Unwrap() error { return ErrAmbiguousPop }

// CompileError reports an invalid compile configuration.
type CompileError struct {
	Field   string
	Details string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	return fmt.Sprintf("model: compile: %s: %s", e.Field, e.Details)
}

// Unwrap returns ErrCompile.
func (e *CompileError) Unwrap() error { return ErrCompile }
