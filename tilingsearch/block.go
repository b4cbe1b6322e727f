package tilingsearch

import (
	"fmt"

	"github.com/gomlx/normtiling/internal/utils"
	"github.com/gomlx/normtiling/types"
	"github.com/pkg/errors"
)

// BlockTiling is the split of one non-reduce axis across cores.
type BlockTiling struct {
	// Axis is the (fused) axis split across cores, or -1 if there is no block split.
	Axis int

	// Factor is the number of elements of Axis each core processes.
	Factor int

	// BlockDim is the number of cores used: the chunks of Axis times the dimensions of the non-reduce axes
	// before it.
	BlockDim int
}

// NoBlockSplit is the BlockTiling of shapes without a non-reduce axis: everything runs on one core.
var NoBlockSplit = BlockTiling{Axis: -1, Factor: 1, BlockDim: 1}

// String implements fmt.Stringer.
func (b BlockTiling) String() string {
	if b.Axis < 0 {
		return "none"
	}
	return fmt.Sprintf("axis=%d factor=%d block_dim=%d", b.Axis, b.Factor, b.BlockDim)
}

// unitFn returns the number of elements each core handles per index of the given axis.
type unitFn func(p *Problem, axis int) int

// inputUnit counts the input elements: all axes to the right of axis, plus the reduce axes to its left, which
// are fully resident on each core.
func inputUnit(p *Problem, axis int) int {
	unit := 1
	for ii, dim := range p.Shape.Dimensions {
		if ii > axis || (ii < axis && p.Shape.IsReduceAxis(ii)) {
			unit *= dim
		}
	}
	return unit
}

// outputUnit counts the elements written after the reduction: the non-reduce axes to the right of axis.
func outputUnit(p *Problem, axis int) int {
	unit := 1
	for ii := axis + 1; ii < p.Shape.Rank(); ii++ {
		if !p.Shape.IsReduceAxis(ii) {
			unit *= p.Shape.Dimensions[ii]
		}
	}
	return unit
}

// searchBlock scans the non-reduce axes from the outermost, committing axes that are fully spread across cores
// while cores remain.
//
// A deeper axis that adds no parallelism (a single chunk) doesn't replace the previous decision.
func searchBlock(p *Problem, unit unitFn) BlockTiling {
	best := NoBlockSplit
	leftProduct := 1
	for _, axis := range p.Shape.NonReduceAxes() {
		dim := p.Shape.Dimensions[axis]
		available := p.CoreNum / leftProduct
		factor, chunks := splitAxis(dim, unit(p, axis), available, p.MinBlockSize)
		if best.Axis >= 0 && chunks == 1 {
			break
		}
		best = BlockTiling{Axis: axis, Factor: factor, BlockDim: leftProduct * chunks}
		if factor == 1 && leftProduct*dim < p.CoreNum {
			leftProduct *= dim
			continue
		}
		break
	}
	return best
}

// splitAxis returns the factor and number of chunks to split an axis of dimension dim over at most available
// cores, such that every chunk, including the tail, holds at least minBlock elements (each index of the axis
// holding unit elements).
//
// If no split is legal the whole axis goes to one core.
func splitAxis(dim, unit, available, minBlock int) (factor, chunks int) {
	maxCores := min(available, dim)
	if unit >= minBlock {
		factor = utils.CeilDiv(dim, maxCores)
		chunks = utils.CeilDiv(dim, factor)
		return
	}
	minFactor := utils.CeilDiv(minBlock, unit)
	if minFactor >= dim {
		return dim, 1
	}
	for cores := maxCores; cores > 1; cores-- {
		factor = utils.CeilDiv(dim, cores)
		if factor < minFactor {
			continue
		}
		chunks = utils.CeilDiv(dim, factor)
		if utils.TailOf(dim, factor)*unit >= minBlock {
			return
		}
	}
	return dim, 1
}

// Refine rounds the block factor up to a multiple of the block size when the block axis is the innermost
// axis, so that every core's DMA transfers are aligned.
//
// The rounded factor is only taken if it still leaves more than one chunk, a tail of at least one block and,
// for workspace modes, fits the workspace buffer.
func Refine(p *Problem, mode types.SchedulingMode, block BlockTiling) BlockTiling {
	if block.Axis < 0 || block.Axis != p.Shape.Rank()-1 {
		return block
	}
	dim := p.Shape.Dimensions[block.Axis]
	aligned := utils.AlignUp(block.Factor, p.BlockSize)
	if aligned == block.Factor || aligned >= dim {
		return block
	}
	if utils.TailOf(dim, aligned) < p.BlockSize {
		return block
	}
	if mode.NeedsWorkspace() && aligned > p.Capacity.WorkspaceMaxUBCount {
		return block
	}
	leftProduct := block.BlockDim / utils.CeilDiv(dim, block.Factor)
	return BlockTiling{
		Axis:     block.Axis,
		Factor:   aligned,
		BlockDim: leftProduct * utils.CeilDiv(dim, aligned),
	}
}

// checkBlock verifies a block split exists whenever there is a non-reduce axis, and that it fits the cores.
func checkBlock(p *Problem, block BlockTiling) error {
	if block.Axis < 0 && p.Shape.FirstNonReduceAxis() >= 0 {
		return errors.Wrapf(types.ErrSearchFailure, "no block split found for shape %s", p.Shape)
	}
	if block.BlockDim > p.CoreNum {
		return errors.Wrapf(types.ErrSearchFailure, "block split %s uses more than the %d cores available",
			block, p.CoreNum)
	}
	return nil
}
