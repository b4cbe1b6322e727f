package tilingsearch

import (
	"github.com/gomlx/normtiling/types"
)

// SelectMode selects the scheduling mode of p. It is done once, before any search:
//
//  1. No non-reduce axis: ModeWorkspace.
//  2. More than one reduce axis and a last axis smaller than one block: ModePartialReorder.
//  3. Not even one row of the smallest non-workspace ub split fits MaxUBCount: ModeWorkspace.
//  4. Padding enabled, the only reduce axis is the last one, unaligned, and no larger than PadMaxEntireSize:
//     ModeAlignedRemovePad.
//  5. Otherwise ModeNormal.
func SelectMode(p *Problem) types.SchedulingMode {
	shape := p.Shape
	if shape.FirstNonReduceAxis() < 0 {
		return types.ModeWorkspace
	}
	lastDim := shape.Dimensions[shape.Rank()-1]
	if len(shape.ReduceAxes) > 1 && lastDim < p.BlockSize {
		return types.ModePartialReorder
	}
	if minNormalFootprint(p) > p.Capacity.MaxUBCount {
		return types.ModeWorkspace
	}
	if p.PadEnabled && len(shape.ReduceAxes) == 1 && shape.IsLastAxisReduce() &&
		lastDim%p.BlockSize != 0 && lastDim <= p.Capacity.PadMaxEntireSize {
		return types.ModeAlignedRemovePad
	}
	return types.ModeNormal
}

// minNormalFootprint returns the smallest buffer footprint, in elements, of any non-reduce ub split with
// factor 1.
func minNormalFootprint(p *Problem) int {
	reorder := NewReorder(p.Shape, NoBlockSplit)
	minFootprint := -1
	for pos := range reorder.Dimensions {
		if reorder.IsReducePos(pos) {
			continue
		}
		footprint := reorder.normalFootprint(pos, 1, p.BlockSize)
		if minFootprint < 0 || footprint < minFootprint {
			minFootprint = footprint
		}
	}
	return minFootprint
}
