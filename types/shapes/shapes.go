// Package shapes defines the shape model used by the tiling engine.
//
// Shape holds the element DType and the dimensions of an operator input, as seen at tiling time.
// ReduceShape pairs the dimensions with the set of axes being reduced, and provides the derived
// information the tiling searches need: aligned dimensions, the reduce/non-reduce pattern and
// axis fusion.
//
// ## Glossary
//
//   - Axis: the index of a dimension. Reduce axes are marked "R" and non-reduce axes "A" in
//     patterns like "A,R,A".
//   - Dimension: the extent of the tensor along one axis. A dimension of 0 denotes an empty tensor.
//   - Block size: the number of elements in one DMA alignment unit (32 bytes / element width).
package shapes

import (
	"fmt"
	"slices"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
)

// Shape of an operator input: its dtype and dimensions.
type Shape struct {
	DType      dtypes.DType
	Dimensions []int
}

// Make returns a Shape structure filled with the values given.
// Dimensions of 0 are accepted: they denote empty tensors.
func Make(dtype dtypes.DType, dimensions ...int) Shape {
	s := Shape{Dimensions: slices.Clone(dimensions), DType: dtype}
	for _, dim := range dimensions {
		if dim < 0 {
			exceptions.Panicf("shapes.Make(%s): cannot create a shape with an axis with dimension < 0", s)
		}
	}
	return s
}

// Invalid returns an invalid shape.
func Invalid() Shape {
	return Shape{DType: dtypes.InvalidDType}
}

// Ok returns whether this is a valid Shape.
func (s Shape) Ok() bool { return s.DType != dtypes.InvalidDType }

// Rank of the shape, that is, the number of dimensions.
func (s Shape) Rank() int { return len(s.Dimensions) }

// IsScalar returns whether the shape represents a scalar.
func (s Shape) IsScalar() bool { return s.Ok() && s.Rank() == 0 }

// Dim returns the dimension of the given axis. axis can take negative numbers, in which
// case it counts as starting from the end -- so axis=-1 refers to the last axis.
// Like with a slice indexing, it panics for an out-of-bound axis.
func (s Shape) Dim(axis int) int {
	adjustedAxis := axis
	if adjustedAxis < 0 {
		adjustedAxis += s.Rank()
	}
	if adjustedAxis < 0 || adjustedAxis >= s.Rank() {
		exceptions.Panicf("Shape.Dim(%d) out-of-bounds for rank %d (shape=%s)", axis, s.Rank(), s)
	}
	return s.Dimensions[adjustedAxis]
}

// String implements stringer, pretty-prints the shape.
func (s Shape) String() string {
	if s.Rank() == 0 {
		return fmt.Sprintf("(%s)", s.DType)
	}
	return fmt.Sprintf("(%s)%v", s.DType, s.Dimensions)
}

// Size returns the number of elements of DType needed for this shape. It's the product of all dimensions.
func (s Shape) Size() (size int) {
	size = 1
	for _, d := range s.Dimensions {
		size *= d
	}
	return
}

// Memory returns the number of bytes used to store an array of the given shape.
func (s Shape) Memory() int {
	return int(s.DType.Size()) * s.Size()
}

// HasZeroDim returns whether any axis has dimension 0, that is, the shape holds no elements.
func (s Shape) HasZeroDim() bool {
	return slices.Contains(s.Dimensions, 0)
}

// Equal compares two shapes for equality: dtype and dimensions are compared.
func (s Shape) Equal(s2 Shape) bool {
	if s.DType != s2.DType {
		return false
	}
	return slices.Equal(s.Dimensions, s2.Dimensions)
}

// Clone returns a new deep copy of the shape.
func (s Shape) Clone() (s2 Shape) {
	s2.DType = s.DType
	s2.Dimensions = slices.Clone(s.Dimensions)
	return
}

// BlockSize returns the number of elements of the shape's dtype that fit in blockBytes, the DMA alignment
// granularity. It returns 0 if the dtype is invalid or wider than blockBytes.
func (s Shape) BlockSize(blockBytes int) int {
	width := int(s.DType.Size())
	if width <= 0 || width > blockBytes {
		return 0
	}
	return blockBytes / width
}
