// Package shape implements symbolic tensor shapes for graph construction.
//
// A symbolic shape is an ordered list of dimensions where any entry may be
// Unknown. Shapes never include the batch axis; the batch size is carried
// separately on graph tensors.
package shape

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Dim is a single dimension size. Unknown marks a dimension resolved only at
// execution time.
type Dim = int

// Unknown is the sentinel for a dimension whose size is not known statically.
const Unknown Dim = -1

// ErrOverflow is returned when an element count does not fit in an int.
var ErrOverflow = errors.New("shape: element count overflows int")

// Shape represents the symbolic dimensions of a tensor.
type Shape []Dim

// Of builds a shape from the given dimensions.
func Of(dims ...Dim) Shape {
	return Shape(dims).Clone()
}

// Rank returns the number of dimensions.
func (s Shape) Rank() int {
	return len(s)
}

// Validate checks that every dimension is positive or Unknown.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 && dim != Unknown {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0 or unknown)", i, dim)
		}
	}
	return nil
}

// IsFullyDefined reports whether no dimension is Unknown.
func (s Shape) IsFullyDefined() bool {
	for _, dim := range s {
		if dim == Unknown {
			return false
		}
	}
	return true
}

// NumElements returns the number of elements, or Unknown if any dimension is
// Unknown. A product that does not fit in an int fails with ErrOverflow.
func (s Shape) NumElements() (int, error) {
	n := 1
	for _, dim := range s {
		if dim == Unknown {
			return Unknown, nil
		}
		if dim > 0 && n > math.MaxInt/dim {
			return 0, fmt.Errorf("%w: %v", ErrOverflow, s)
		}
		n *= dim
	}
	return n, nil
}

// Equal checks if two shapes are identical, Unknown entries included.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Compatible reports whether two shapes could describe the same tensor.
// Unknown matches any size.
func (s Shape) Compatible(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if !DimsCompatible(s[i], other[i]) {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// Last returns the innermost dimension. The shape must have rank >= 1.
func (s Shape) Last() Dim {
	return s[len(s)-1]
}

// String renders the shape in tuple form, e.g. (784,) or (None, 64).
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, dim := range s {
		parts[i] = dimString(dim)
	}
	if len(parts) == 1 {
		return "(" + parts[0] + ",)"
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// WithBatch renders the shape prefixed by the batch dimension.
func (s Shape) WithBatch(batch Dim) string {
	return append(Shape{batch}, s...).String()
}

// DimsCompatible reports whether two dimensions may be equal.
func DimsCompatible(a, b Dim) bool {
	return a == Unknown || b == Unknown || a == b
}

// Broadcast implements NumPy-style broadcasting over symbolic shapes.
//
// Rules, compared right to left:
//   - equal dimensions are kept
//   - a dimension of 1 stretches to the other
//   - Unknown against a known size yields the known size unless that size is 1
//   - missing leading dimensions are treated as 1
//
// Examples:
//
//	(3, 1) + (3, 5)    → (3, 5)
//	(None, 5) + (3, 5) → (3, 5)
//	(3, 4) + (3, 5)    → error
func Broadcast(a, b Shape) (Shape, error) {
	maxLen := max(len(a), len(b))
	result := make(Shape, maxLen)

	for i := 0; i < maxLen; i++ {
		aDim := dimFromRight(a, i)
		bDim := dimFromRight(b, i)

		switch {
		case aDim == bDim:
			result[maxLen-1-i] = aDim
		case aDim == 1:
			result[maxLen-1-i] = bDim
		case bDim == 1:
			result[maxLen-1-i] = aDim
		case aDim == Unknown:
			result[maxLen-1-i] = bDim
		case bDim == Unknown:
			result[maxLen-1-i] = aDim
		default:
			return nil, fmt.Errorf("shapes not compatible for broadcasting: %v vs %v (dimension %d: %s vs %s)",
				a, b, maxLen-1-i, dimString(aDim), dimString(bDim))
		}
	}

	return result, nil
}

func dimFromRight(s Shape, i int) Dim {
	idx := len(s) - 1 - i
	if idx < 0 {
		return 1
	}
	return s[idx]
}

func dimString(d Dim) string {
	if d == Unknown {
		return "None"
	}
	return fmt.Sprintf("%d", d)
}
