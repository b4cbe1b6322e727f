package tilingsearch

import (
	"fmt"
	"sort"

	"github.com/gomlx/normtiling/internal/utils"
	"github.com/gomlx/normtiling/types"
	"github.com/pkg/errors"
)

// UBTiling is the split of one reordered axis into buffer iterations.
type UBTiling struct {
	// Axis is the original (fused) index of the split axis, and Pos its position in the reordered shape.
	Axis, Pos int

	// Factor is the number of elements of the axis processed per buffer iteration.
	Factor int

	// Fallback is set when no legal split fit the buffer, and the whole extent of the first candidate is used.
	Fallback bool
}

// String implements fmt.Stringer.
func (u UBTiling) String() string {
	s := fmt.Sprintf("axis=%d (pos %d) factor=%d", u.Axis, u.Pos, u.Factor)
	if u.Fallback {
		s += " (fallback)"
	}
	return s
}

// maxFactor returns the largest factor in [1, extent] whose footprint fits capacity, or 0 if none does.
// footprint must be non-decreasing.
func maxFactor(extent, capacity int, footprint func(factor int) int) int {
	return sort.Search(extent, func(ii int) bool { return footprint(ii+1) > capacity })
}

// scanFactor scans factors downward from maxF and returns the first one whose main and tail chunks each copy at
// least blockSize contiguous elements, inner being the elements per index of the axis.
// A factor that covers the whole extent is always legal.
func scanFactor(extent, maxF, inner, blockSize int) (int, bool) {
	for factor := maxF; factor >= 1; factor-- {
		if factor >= extent {
			return factor, true
		}
		if factor*inner >= blockSize && utils.TailOf(extent, factor)*inner >= blockSize {
			return factor, true
		}
	}
	return 0, false
}

// balance returns the smallest factor that splits extent in the same number of chunks as factor.
func balance(extent, factor int) int {
	return utils.CeilDiv(extent, utils.CeilDiv(extent, factor))
}

// searchNormalUB splits a non-reduce axis, keeping the whole reduction resident in the buffer.
func searchNormalUB(p *Problem, reorder *Reorder, capacity int) (UBTiling, error) {
	fallback := -1
	for pos := range reorder.Dimensions {
		if reorder.IsReducePos(pos) || reorder.FusedBlockAxes.Has(pos) {
			continue
		}
		if fallback < 0 {
			fallback = pos
		}
		extent := reorder.Extents[pos]
		maxF := maxFactor(extent, capacity, func(factor int) int {
			return reorder.normalFootprint(pos, factor, p.BlockSize)
		})
		factor, found := scanFactor(extent, maxF, reorder.inner(pos), p.BlockSize)
		if !found {
			continue
		}
		return UBTiling{Axis: reorder.ReorderToOri[pos], Pos: pos, Factor: balance(extent, factor)}, nil
	}
	if fallback < 0 {
		return UBTiling{}, errors.Wrapf(types.ErrSearchFailure, "no non-reduce axis left to split for ub in %v",
			reorder.Dimensions)
	}
	return UBTiling{
		Axis:     reorder.ReorderToOri[fallback],
		Pos:      fallback,
		Factor:   reorder.Extents[fallback],
		Fallback: true,
	}, nil
}

// searchWorkspaceUB splits a reduce axis, partial results being staged in workspace memory.
func searchWorkspaceUB(p *Problem, reorder *Reorder) (UBTiling, error) {
	capacity := p.Capacity.WorkspaceMaxUBCount
	for pos := reorder.FirstReducePos; pos <= reorder.LastReducePos; pos++ {
		extent := reorder.Extents[pos]
		maxF := maxFactor(extent, capacity, func(factor int) int {
			return reorder.footprint(pos, factor, p.BlockSize)
		})
		factor, found := scanFactor(extent, maxF, reorder.inner(pos), p.BlockSize)
		if found {
			return UBTiling{Axis: reorder.ReorderToOri[pos], Pos: pos, Factor: factor}, nil
		}
	}
	return UBTiling{}, errors.Wrapf(types.ErrSearchFailure,
		"no reduce axis of %v can be split to fit the workspace buffer of %d elements",
		reorder.Dimensions, capacity)
}

// searchPartialReorderUB splits the first reduce axis whose aligned suffix fits the workspace buffer, with the
// largest factor that fits.
func searchPartialReorderUB(p *Problem, reorder *Reorder) (UBTiling, error) {
	capacity := p.Capacity.WorkspaceMaxUBCount
	for pos := reorder.FirstReducePos; pos <= reorder.LastReducePos; pos++ {
		extent := reorder.Extents[pos]
		maxF := maxFactor(extent, capacity, func(factor int) int {
			return reorder.footprint(pos, factor, p.BlockSize)
		})
		if maxF > 0 {
			return UBTiling{Axis: reorder.ReorderToOri[pos], Pos: pos, Factor: maxF}, nil
		}
	}
	return UBTiling{}, errors.Wrapf(types.ErrSearchFailure,
		"partial reorder: no reduce axis suffix of %v fits the workspace buffer of %d elements",
		reorder.Dimensions, capacity)
}
