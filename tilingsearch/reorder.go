package tilingsearch

import (
	"github.com/gomlx/normtiling/internal/utils"
	"github.com/gomlx/normtiling/types/shapes"
)

// Reorder is the input shape with all reduce axes moved next to each other.
//
// The axes up to the last reduce axis are split in two streams: the non-reduce ones first, then the reduce
// ones, each keeping its relative order. The axes after the last reduce axis are appended unchanged.
// E.g.: [A0, R0, A1, R1, A2, R2, R3, A3] is reordered to [A0, A1, A2, R0, R1, R2, R3, A3].
type Reorder struct {
	// Dimensions of the reordered shape.
	Dimensions []int

	// Extents are the elements of each reordered position iterated by one core: the block factor on the block
	// tiling axis, the whole dimension elsewhere.
	Extents []int

	// ReorderToOri maps a reordered position to its original axis, and OriToReorder is its inverse.
	ReorderToOri, OriToReorder []int

	// FusedBlockAxes holds the reordered positions of the non-reduce axes before the block tiling axis: they are
	// fully enumerated by the cores, and are not candidates for the ub split.
	FusedBlockAxes utils.Set[int]

	// FirstReducePos and LastReducePos delimit the contiguous reduce axes in the reordered shape.
	FirstReducePos, LastReducePos int
}

// NewReorder reorders shape for the given block tiling (NoBlockSplit if there is none).
func NewReorder(shape shapes.ReduceShape, block BlockTiling) *Reorder {
	rank := shape.Rank()
	r := &Reorder{
		Dimensions:     make([]int, 0, rank),
		Extents:        make([]int, 0, rank),
		ReorderToOri:   make([]int, 0, rank),
		OriToReorder:   make([]int, rank),
		FusedBlockAxes: utils.MakeSet[int](),
	}
	lastReduce := shape.LastReduceAxis()
	emit := func(axis int) {
		r.OriToReorder[axis] = len(r.Dimensions)
		r.Dimensions = append(r.Dimensions, shape.Dimensions[axis])
		extent := shape.Dimensions[axis]
		if axis == block.Axis {
			extent = block.Factor
		}
		r.Extents = append(r.Extents, extent)
		r.ReorderToOri = append(r.ReorderToOri, axis)
	}
	for axis := 0; axis <= lastReduce; axis++ {
		if !shape.IsReduceAxis(axis) {
			emit(axis)
		}
	}
	r.FirstReducePos = len(r.Dimensions)
	for _, axis := range shape.ReduceAxes {
		emit(axis)
	}
	r.LastReducePos = len(r.Dimensions) - 1
	for axis := lastReduce + 1; axis < rank; axis++ {
		emit(axis)
	}

	for axis := 0; axis < block.Axis; axis++ {
		if !shape.IsReduceAxis(axis) {
			r.FusedBlockAxes.Insert(r.OriToReorder[axis])
		}
	}
	return r
}

// Rank of the reordered shape.
func (r *Reorder) Rank() int { return len(r.Dimensions) }

// IsReducePos returns whether the reordered position pos holds a reduce axis.
func (r *Reorder) IsReducePos(pos int) bool {
	return pos >= r.FirstReducePos && pos <= r.LastReducePos
}

// isLastPos returns whether pos is the innermost position.
func (r *Reorder) isLastPos(pos int) bool {
	return pos == len(r.Dimensions)-1
}

// inner returns the per-core elements after pos: the product of their extents.
func (r *Reorder) inner(pos int) int {
	return utils.Product(r.Extents[pos+1:]...)
}

// alignedInner is inner with the last extent aligned to blockSize, as it is stored in the buffer.
func (r *Reorder) alignedInner(pos int, blockSize int) int {
	if r.isLastPos(pos) {
		return 1
	}
	last := len(r.Extents) - 1
	return utils.Product(r.Extents[pos+1:last]...) * utils.AlignUp(r.Extents[last], blockSize)
}

// reduceProduct returns the product of the reduce dimensions.
func (r *Reorder) reduceProduct() int {
	return utils.Product(r.Extents[r.FirstReducePos : r.LastReducePos+1]...)
}

// footprint returns the buffer elements used by a split of factor on pos, with everything inner to it resident.
// Factors on the last axis are stored aligned.
func (r *Reorder) footprint(pos, factor, blockSize int) int {
	if r.isLastPos(pos) {
		factor = utils.AlignUp(factor, blockSize)
	}
	return factor * r.alignedInner(pos, blockSize)
}

// normalFootprint is the footprint of a non-reduce ub split: axes after the reduce block still need the whole
// reduction resident in the buffer.
func (r *Reorder) normalFootprint(pos, factor, blockSize int) int {
	footprint := r.footprint(pos, factor, blockSize)
	if pos > r.LastReducePos {
		footprint *= r.reduceProduct()
	}
	return footprint
}
