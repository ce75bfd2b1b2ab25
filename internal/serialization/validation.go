package serialization

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/born-ml/layergraph/internal/model"
)

// Validation limits for resource protection.
const (
	MaxFileSize   = 64 * 1024 * 1024 // 64MB - maximum description file size
	MaxLayerCount = 100_000          // Maximum number of layers in a description
	MaxNodeCount  = 1_000_000        // Maximum number of layer applications
	MaxNameLen    = 4096             // Maximum layer or tensor name length
)

// ValidationLevel controls the strictness of validation.
type ValidationLevel int

const (
	// ValidationStrict performs all validation checks (default).
	ValidationStrict ValidationLevel = iota
	// ValidationNormal checks limits and names only.
	ValidationNormal
	// ValidationNone skips validation. Use only with trusted input.
	ValidationNone
)

// ValidateName checks a layer or tensor name. where locates it in the
// description for error messages.
func ValidateName(name, where string) error {
	invalid := func(details string) error {
		return &ValidationError{Type: "invalid_name", Name: name, Where: where, Details: details, err: ErrInvalidName}
	}
	switch {
	case name == "":
		return invalid("is empty")
	case len(name) > MaxNameLen:
		return invalid(fmt.Sprintf("length %d > max %d", len(name), MaxNameLen))
	case strings.ContainsRune(name, 0):
		return invalid("contains null byte")
	case strings.TrimSpace(name) != name:
		return invalid("has leading or trailing whitespace")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return invalid("contains control character")
		}
	}
	return nil
}

// ValidateDescription checks a description before a model is rebuilt from it.
//
// Normal validation enforces limits and names. Strict validation also
// rejects a tensor name defined twice among the inputs and the listed node
// outputs, which would otherwise make later references ambiguous.
func ValidateDescription(d *model.Description, level ValidationLevel) error {
	if level == ValidationNone {
		return nil
	}

	if len(d.Inputs) == 0 {
		return &ValidationError{Type: "empty", Details: "no inputs declared", err: ErrEmptyDescription}
	}
	if len(d.Layers) > MaxLayerCount {
		return &ValidationError{
			Type:    "too_many_layers",
			Details: fmt.Sprintf("got %d, max %d", len(d.Layers), MaxLayerCount),
			err:     ErrTooManyLayers,
		}
	}
	if len(d.Nodes) > MaxNodeCount {
		return &ValidationError{
			Type:    "too_many_nodes",
			Details: fmt.Sprintf("got %d, max %d", len(d.Nodes), MaxNodeCount),
			err:     ErrTooManyNodes,
		}
	}

	if d.Name != "" {
		if err := ValidateName(d.Name, "name"); err != nil {
			return err
		}
	}
	for i, l := range d.Layers {
		if err := ValidateName(l.Name, fmt.Sprintf("layers[%d]", i)); err != nil {
			return err
		}
	}
	for i, t := range d.Inputs {
		if err := ValidateName(t.Name, fmt.Sprintf("inputs[%d]", i)); err != nil {
			return err
		}
	}
	for i, t := range d.Outputs {
		if err := ValidateName(t.Name, fmt.Sprintf("outputs[%d]", i)); err != nil {
			return err
		}
	}
	for i, n := range d.Nodes {
		for j, name := range n.Inputs {
			if err := ValidateName(name, fmt.Sprintf("nodes[%d].inputs[%d]", i, j)); err != nil {
				return err
			}
		}
		for j, name := range n.Outputs {
			if err := ValidateName(name, fmt.Sprintf("nodes[%d].outputs[%d]", i, j)); err != nil {
				return err
			}
		}
	}

	if level == ValidationStrict {
		return validateTensorNames(d)
	}
	return nil
}

func validateTensorNames(d *model.Description) error {
	defined := make(map[string]string)
	define := func(name, where string) error {
		if prev, dup := defined[name]; dup {
			return &ValidationError{
				Type:    "duplicate_tensor",
				Name:    name,
				Where:   where,
				Details: "already defined at " + prev,
				err:     ErrDuplicateTensor,
			}
		}
		defined[name] = where
		return nil
	}

	for i, t := range d.Inputs {
		if err := define(t.Name, fmt.Sprintf("inputs[%d]", i)); err != nil {
			return err
		}
	}
	for i, n := range d.Nodes {
		for j, name := range n.Outputs {
			if err := define(name, fmt.Sprintf("nodes[%d].outputs[%d]", i, j)); err != nil {
				return err
			}
		}
	}
	return nil
}
