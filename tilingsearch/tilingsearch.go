// Package tilingsearch implements the tiling decision of a norm (reduction) kernel over a fused ReduceShape:
// it selects the SchedulingMode, splits one non-reduce axis across cores (block tiling), reorders the axes so
// the reduce axes are contiguous and splits one reordered axis for the on-chip buffer iterations (ub tiling).
//
// Each SchedulingMode has its own Strategy, see StrategyFor. Search sequences all the steps.
//
// Everything in this package is a pure function of its inputs, and is safe for concurrent use.
package tilingsearch

import (
	"fmt"

	"github.com/gomlx/normtiling/compileinfo"
	"github.com/gomlx/normtiling/types"
	"github.com/gomlx/normtiling/types/shapes"
	"github.com/pkg/errors"
)

// Problem holds the inputs of one tiling search.
type Problem struct {
	// Shape is the (usually fused) input shape with its reduce axes. It must have no zero dimension.
	Shape shapes.ReduceShape

	// BlockSize is the DMA alignment granularity in elements of the input dtype.
	BlockSize int

	CoreNum      int
	MinBlockSize int

	// Capacity holds the buffer capacities for the input dtype.
	Capacity compileinfo.UBCapacity

	PadEnabled bool

	// HasAfterReduceOutput is set when some tensor computed after the reduction is written to external memory.
	HasAfterReduceOutput bool
}

// NewProblem creates the Problem for shape from the compile information. blockSize is in elements.
func NewProblem(shape shapes.ReduceShape, blockSize int, info *compileinfo.CompileInfo,
	capacity compileinfo.UBCapacity) *Problem {
	return &Problem{
		Shape:                shape,
		BlockSize:            blockSize,
		CoreNum:              info.CoreNum,
		MinBlockSize:         info.MinBlockSize,
		Capacity:             capacity,
		PadEnabled:           info.PadEnabled,
		HasAfterReduceOutput: info.HasAfterReduceOutput(),
	}
}

// Result is the complete tiling decision.
type Result struct {
	Mode    types.SchedulingMode
	Block   BlockTiling
	Reorder *Reorder
	UB      UBTiling
}

// String implements fmt.Stringer.
func (r *Result) String() string {
	return fmt.Sprintf("mode=%s block=%s reorder=%v ub=%s", r.Mode, r.Block, r.Reorder.Dimensions, r.UB)
}

// Search runs the whole tiling search for p: mode selection, block tiling, refine, reorder and ub tiling.
//
// It fails with an error wrapping types.ErrSearchFailure if the strategy of the selected mode can't find a
// legal split.
func Search(p *Problem) (*Result, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	mode := SelectMode(p)
	strategy := StrategyFor(mode)
	block, err := strategy.BlockTiling(p)
	if err != nil {
		return nil, errors.WithMessagef(err, "block tiling in mode %s", mode)
	}
	block = Refine(p, mode, block)
	reorder := NewReorder(p.Shape, block)
	ub, err := strategy.UBTiling(p, reorder)
	if err != nil {
		return nil, errors.WithMessagef(err, "ub tiling in mode %s", mode)
	}
	return &Result{Mode: mode, Block: block, Reorder: reorder, UB: ub}, nil
}

func (p *Problem) validate() error {
	if p.Shape.Rank() == 0 {
		return errors.Wrapf(types.ErrSearchFailure, "cannot tile a scalar")
	}
	if p.Shape.HasZeroDim() {
		return errors.Wrapf(types.ErrSearchFailure, "cannot search tiling for shape %s with a zero dimension",
			p.Shape)
	}
	if p.BlockSize <= 0 || p.CoreNum <= 0 || p.MinBlockSize <= 0 {
		return errors.Wrapf(types.ErrSearchFailure, "invalid hardware constants: block_size=%d, core_num=%d, "+
			"min_block_size=%d", p.BlockSize, p.CoreNum, p.MinBlockSize)
	}
	return nil
}
