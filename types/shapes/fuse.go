package shapes

import "github.com/gomlx/normtiling/internal/utils"

// Fuse collapses maximal runs of adjacent axes of the same kind (all reduce or all non-reduce) into one axis
// whose dimension is the product of the run.
//
// If every axis is reduced, a leading non-reduce axis of dimension 1 is inserted, so the result is "A,R": there
// is always a non-reduce axis to block-split on.
//
// Shapes with no adjacent axes of the same kind are returned unchanged (but copied).
func (r ReduceShape) Fuse() ReduceShape {
	dims := make([]int, 0, r.Rank())
	reduceSet := utils.MakeSet[int](len(r.ReduceAxes))
	var reduceAxes []int
	for axis, dim := range r.Dimensions {
		isReduce := r.IsReduceAxis(axis)
		if axis > 0 && isReduce == r.IsReduceAxis(axis-1) {
			dims[len(dims)-1] *= dim
			continue
		}
		dims = append(dims, dim)
		if isReduce {
			reduceAxes = append(reduceAxes, len(dims)-1)
		}
	}
	if len(reduceAxes) == len(dims) {
		// Whole tensor collapsed to "R": prepend a unit non-reduce axis.
		dims = append([]int{1}, dims...)
		for ii := range reduceAxes {
			reduceAxes[ii]++
		}
	}
	reduceSet.Insert(reduceAxes...)
	return ReduceShape{Dimensions: dims, ReduceAxes: reduceAxes, reduceSet: reduceSet}
}
