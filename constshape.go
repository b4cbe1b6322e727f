package normtiling

import (
	"slices"

	"github.com/gomlx/normtiling/compileinfo"
	"github.com/pkg/errors"
)

// replayConst returns the solution persisted at compile time for a constant shape.
func (t *Tiler) replayConst() *RunInfo {
	solution := t.info.ConstSolution
	return &RunInfo{
		BlockDim:       solution.BlockDim,
		TilingKey:      solution.TilingKey,
		WorkspaceSizes: slices.Clone(solution.WorkspaceSizes),
	}
}

// SolveConstShape solves the tiling of op, whose shape is constant, and persists the solution into the
// compile-info blob: later Tilers created from the returned blob replay it without searching.
func SolveConstShape(blob []byte, op *Operator) (updated []byte, runInfo *RunInfo, err error) {
	tiler, err := NewFromJSON(blob)
	if err != nil {
		return
	}
	if !tiler.info.IsConst {
		err = errors.Errorf("compile info is not for a constant shape (_is_const is false), can't persist a "+
			"solution for %s", op)
		return
	}
	if tiler.info.ConstShapePost {
		runInfo = tiler.replayConst()
		updated = slices.Clone(blob)
		return
	}
	runInfo, err = tiler.Tile(op)
	if err != nil {
		return
	}
	updated, err = compileinfo.AppendConstSolution(blob, runInfo.ConstSolution())
	return
}
