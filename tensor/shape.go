package tensor

import "fmt"

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
// A scalar (empty shape) has one element.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that every dimension is positive.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
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

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// dimAt returns the dimension at index i counted from the right, treating
// missing dimensions as 1.
func (s Shape) dimAt(fromRight int) int {
	idx := len(s) - 1 - fromRight
	if idx < 0 {
		return 1
	}
	return s[idx]
}

// BroadcastShapes applies NumPy-style broadcasting rules to a pair of shapes.
//
// Dimensions are compared right to left; a pair is compatible when the
// dimensions are equal or one of them is 1, and shorter shapes are padded
// with leading 1s.
//
// Returns the broadcast shape, whether any broadcasting is actually needed,
// and an error when the shapes are incompatible.
//
// Examples:
//
//	(3, 1) + (3, 5) → (3, 5), true, nil
//	(1, 5) + (3, 5) → (3, 5), true, nil
//	(3, 5) + (3, 5) → (3, 5), false, nil
//	(3, 4) + (3, 5) → nil, false, Error
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	ndim := max(len(a), len(b))
	result := make(Shape, ndim)
	needsBroadcast := false

	for i := 0; i < ndim; i++ {
		aDim := a.dimAt(i)
		bDim := b.dimAt(i)

		switch {
		case aDim == bDim:
			result[ndim-1-i] = aDim
		case aDim == 1:
			result[ndim-1-i] = bDim
			needsBroadcast = true
		case bDim == 1:
			result[ndim-1-i] = aDim
			needsBroadcast = true
		default:
			return nil, false, fmt.Errorf("shapes not compatible for broadcasting: %v vs %v (dimension %d: %d vs %d)",
				a, b, ndim-1-i, aDim, bDim)
		}
	}

	return result, needsBroadcast, nil
}
