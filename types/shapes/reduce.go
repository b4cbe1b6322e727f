package shapes

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/normtiling/internal/utils"
	"github.com/pkg/errors"
)

// ReduceShape is the shape model of a tiling call: the dimensions of the input and the (sorted) axes being reduced.
//
// ReduceAxes are always expressed relative to Dimensions: after Fuse they refer to the fused axes.
type ReduceShape struct {
	Dimensions []int
	ReduceAxes []int

	reduceSet utils.Set[int]
}

// NewReduceShape validates and creates a ReduceShape.
//
// reduceAxes must be non-empty, within [0, len(dimensions)) and without duplicates. They don't need to be sorted.
func NewReduceShape(dimensions []int, reduceAxes []int) (ReduceShape, error) {
	if len(dimensions) == 0 {
		return ReduceShape{}, errors.New("cannot reduce a scalar: shape has rank 0")
	}
	if len(reduceAxes) == 0 {
		return ReduceShape{}, errors.Errorf("no reduce axes given for shape %v", dimensions)
	}
	for axis, dim := range dimensions {
		if dim < 0 {
			return ReduceShape{}, errors.Errorf("shape %v has negative dimension at axis #%d", dimensions, axis)
		}
	}
	set := utils.MakeSet[int](len(reduceAxes))
	for _, axis := range reduceAxes {
		if axis < 0 || axis >= len(dimensions) {
			return ReduceShape{}, errors.Errorf("reduce axis %d out of range for shape %v", axis, dimensions)
		}
		if set.Has(axis) {
			return ReduceShape{}, errors.Errorf("reduce axis %d is duplicated in %v", axis, reduceAxes)
		}
		set.Insert(axis)
	}
	return ReduceShape{
		Dimensions: slices.Clone(dimensions),
		ReduceAxes: utils.SortedKeys(set),
		reduceSet:  set,
	}, nil
}

// Rank returns the number of axes.
func (r ReduceShape) Rank() int { return len(r.Dimensions) }

// IsReduceAxis returns whether axis is being reduced.
func (r ReduceShape) IsReduceAxis(axis int) bool {
	if r.reduceSet == nil {
		return slices.Contains(r.ReduceAxes, axis)
	}
	return r.reduceSet.Has(axis)
}

// LastReduceAxis returns the largest reduce axis.
func (r ReduceShape) LastReduceAxis() int {
	return r.ReduceAxes[len(r.ReduceAxes)-1]
}

// FirstNonReduceAxis returns the smallest axis not being reduced, or -1 if all axes are reduced.
func (r ReduceShape) FirstNonReduceAxis() int {
	for axis := range r.Dimensions {
		if !r.IsReduceAxis(axis) {
			return axis
		}
	}
	return -1
}

// NonReduceAxes returns the axes not being reduced, in order.
func (r ReduceShape) NonReduceAxes() []int {
	all := utils.MakeSet[int](r.Rank())
	for axis := range r.Dimensions {
		all.Insert(axis)
	}
	reduced := r.reduceSet
	if reduced == nil {
		reduced = utils.SetWith(r.ReduceAxes...)
	}
	return utils.SortedKeys(all.Sub(reduced))
}

// IsLastAxisReduce returns whether the innermost axis is being reduced.
func (r ReduceShape) IsLastAxisReduce() bool {
	return r.IsReduceAxis(r.Rank() - 1)
}

// HasZeroDim returns whether any axis has dimension 0.
func (r ReduceShape) HasZeroDim() bool {
	return slices.Contains(r.Dimensions, 0)
}

// AlignedDimensions returns the dimensions with the last one rounded up to a multiple of blockSize.
func (r ReduceShape) AlignedDimensions(blockSize int) []int {
	aligned := slices.Clone(r.Dimensions)
	last := len(aligned) - 1
	aligned[last] = utils.AlignUp(aligned[last], blockSize)
	return aligned
}

// Pattern returns the fingerprint of which positions are reduce axes: for each axis i, reduce axes
// add 2^(rank-i) and non-reduce axes add 2^(rank-1-i).
func (r ReduceShape) Pattern() int {
	pattern := 0
	rank := r.Rank()
	for axis := range r.Dimensions {
		weight := 1 << (rank - 1 - axis)
		if r.IsReduceAxis(axis) {
			weight *= 2
		}
		pattern += weight
	}
	return pattern
}

// PatternString returns a human-readable pattern, e.g. "A,R,A".
func (r ReduceShape) PatternString() string {
	parts := make([]string, r.Rank())
	for axis := range parts {
		if r.IsReduceAxis(axis) {
			parts[axis] = "R"
		} else {
			parts[axis] = "A"
		}
	}
	return strings.Join(parts, ",")
}

// String implements fmt.Stringer.
func (r ReduceShape) String() string {
	return fmt.Sprintf("%v reduce=%v (%s)", r.Dimensions, r.ReduceAxes, r.PatternString())
}
