package tilingsearch

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/normtiling/types"
)

// Strategy implements the block and ub searches of one SchedulingMode.
type Strategy interface {
	// BlockTiling selects the axis split across cores.
	BlockTiling(p *Problem) (BlockTiling, error)

	// UBTiling selects the reordered axis split into buffer iterations. reorder carries the per-core extents
	// of the block tiling.
	UBTiling(p *Problem, reorder *Reorder) (UBTiling, error)
}

var strategies = map[types.SchedulingMode]Strategy{
	types.ModeNormal:           normalStrategy{},
	types.ModeAlignedRemovePad: normalStrategy{pad: true},
	types.ModeWorkspace:        workspaceStrategy{},
	types.ModePartialReorder:   partialReorderStrategy{},
}

// StrategyFor returns the Strategy of mode. It panics for an unknown mode.
func StrategyFor(mode types.SchedulingMode) Strategy {
	strategy, found := strategies[mode]
	if !found {
		exceptions.Panicf("no tiling strategy for scheduling mode %s", mode)
	}
	return strategy
}

// normalStrategy keeps the reduction in the buffer. With pad set rows are padded in the buffer, which uses the
// pad capacity.
type normalStrategy struct {
	pad bool
}

func (s normalStrategy) BlockTiling(p *Problem) (BlockTiling, error) {
	block := searchBlock(p, inputUnit)
	return block, checkBlock(p, block)
}

func (s normalStrategy) UBTiling(p *Problem, reorder *Reorder) (UBTiling, error) {
	capacity := p.Capacity.MaxUBCount
	if s.pad {
		capacity = p.Capacity.PadMaxUBCount
	}
	return searchNormalUB(p, reorder, capacity)
}

// workspaceBlockTiling measures the per-core chunk on the output when something after the reduction is
// written out, and on the input otherwise.
func workspaceBlockTiling(p *Problem) (BlockTiling, error) {
	unit := inputUnit
	if p.HasAfterReduceOutput {
		unit = outputUnit
	}
	block := searchBlock(p, unit)
	return block, checkBlock(p, block)
}

type workspaceStrategy struct{}

func (workspaceStrategy) BlockTiling(p *Problem) (BlockTiling, error) {
	return workspaceBlockTiling(p)
}

func (workspaceStrategy) UBTiling(p *Problem, reorder *Reorder) (UBTiling, error) {
	return searchWorkspaceUB(p, reorder)
}

type partialReorderStrategy struct{}

func (partialReorderStrategy) BlockTiling(p *Problem) (BlockTiling, error) {
	return workspaceBlockTiling(p)
}

func (partialReorderStrategy) UBTiling(p *Problem, reorder *Reorder) (UBTiling, error) {
	return searchPartialReorderUB(p, reorder)
}
