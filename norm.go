package normtiling

import (
	"github.com/gomlx/normtiling/attributes"
	"github.com/gomlx/normtiling/tilingsearch"
	"github.com/gomlx/normtiling/types"
	"github.com/gomlx/normtiling/types/shapes"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Tile computes the tiling of op.
//
// For constant shapes whose solution was persisted at compile time, the solution is replayed without any search.
// Constant shapes not yet solved go through the search, but their RunInfo has no TilingData.
//
// Errors wrap one of types.ErrConfiguration, types.ErrAttribute or types.ErrSearchFailure. No partial RunInfo is
// ever returned.
func (t *Tiler) Tile(op *Operator) (*RunInfo, error) {
	if t.info.IsConst && t.info.ConstShapePost {
		runInfo := t.replayConst()
		klog.V(2).Infof("norm tiling of %s: replayed constant solution %s", op.Name, runInfo)
		return runInfo, nil
	}
	runInfo, err := t.tileDynamic(op)
	if err != nil {
		klog.Warningf("norm tiling of %s failed: %v", op, err)
		return nil, err
	}
	if t.info.IsConst {
		runInfo.TilingData = nil
	}
	return runInfo, nil
}

// tiling holds the intermediate decisions of one dynamic tiling call.
type tiling struct {
	shape shapes.ReduceShape
	mode  types.SchedulingMode
	block tilingsearch.BlockTiling
	ub    tilingsearch.UBTiling
}

func (t *Tiler) tileDynamic(op *Operator) (*RunInfo, error) {
	if len(op.Inputs) == 0 {
		return nil, errors.Wrapf(types.ErrAttribute, "operator %s has no inputs", op)
	}
	input := op.Inputs[0]
	blockSize := input.BlockSize(t.info.BlockSizeBytes)
	if blockSize <= 0 {
		return nil, errors.Wrapf(types.ErrConfiguration, "block_size_bytes=%d can't hold elements of %s",
			t.info.BlockSizeBytes, input.DType)
	}
	reduceAxes, err := t.reduceAxes(op, input.Rank())
	if err != nil {
		return nil, err
	}
	shape, err := shapes.NewReduceShape(input.Dimensions, reduceAxes)
	if err != nil {
		return nil, errors.Wrapf(types.ErrAttribute, "invalid reduction of %s: %v", input, err)
	}
	if t.info.IsFuseAxis {
		shape = shape.Fuse()
	}
	klog.V(2).Infof("norm tiling of %s: shape %s, block size %d", op.Name, shape, blockSize)

	var decision *tiling
	if shape.HasZeroDim() {
		decision = trivialTiling(shape)
	} else {
		capacity, err := t.info.UBCapacity(input.DType)
		if err != nil {
			return nil, err
		}
		problem := tilingsearch.NewProblem(shape, blockSize, t.info, capacity)
		result, err := tilingsearch.Search(problem)
		if err != nil {
			return nil, err
		}
		decision = &tiling{shape: shape, mode: result.Mode, block: result.Block, ub: result.UB}
		klog.V(2).Infof("norm tiling of %s: %s", op.Name, result)
	}
	return t.encode(decision, blockSize)
}

// reduceAxes returns the normalized reduction axes, either fixed at compile time or read from the operator.
func (t *Tiler) reduceAxes(op *Operator, rank int) ([]int, error) {
	if len(t.info.ReduceAxes) > 0 {
		axes, err := attributes.NormalizeAxes(t.info.ReduceAxes, rank)
		if err != nil {
			return nil, errors.Wrapf(types.ErrConfiguration, "_ori_axis %v for rank %d: %v",
				t.info.ReduceAxes, rank, err)
		}
		return axes, nil
	}
	axes, err := attributes.ReadAxes(op.Attributes, *t.info.ReduceAxesAttr, rank)
	if err != nil {
		return nil, errors.WithMessagef(err, "reading reduction axes of %s", op)
	}
	return axes, nil
}

// trivialTiling is the decision for shapes with a zero dimension: one core, no real split.
func trivialTiling(shape shapes.ReduceShape) *tiling {
	axis := shape.FirstNonReduceAxis()
	block := tilingsearch.NoBlockSplit
	ub := tilingsearch.UBTiling{Axis: 0, Factor: 1}
	if axis >= 0 {
		block = tilingsearch.BlockTiling{Axis: axis, Factor: 1, BlockDim: 1}
		ub.Axis = axis
	}
	return &tiling{shape: shape, mode: types.ModeNormal, block: block, ub: ub}
}

// encode builds the RunInfo of a decision: tiling key, workspace sizes and runtime variables.
func (t *Tiler) encode(decision *tiling, blockSize int) (*RunInfo, error) {
	key, err := EncodeTilingKey(decision.mode, decision.block.Axis, decision.ub.Axis, decision.shape)
	if err != nil {
		return nil, err
	}
	runInfo := &RunInfo{
		BlockDim:  decision.block.BlockDim,
		TilingKey: key,
		WorkspaceSizes: workspaceSizes(t.info.Workspaces[key], decision.shape, blockSize,
			decision.mode.NeedsWorkspace()),
	}
	if t.info.IsConst {
		return runInfo, nil
	}
	vars, found := t.info.NormVars[key]
	if !found {
		return nil, errors.Wrapf(types.ErrConfiguration, "_norm_vars has no entry for tiling key %d (mode %s)",
			key, decision.mode)
	}
	runInfo.TilingData, err = tilingData(vars, decision.shape, decision.block, decision.ub)
	if err != nil {
		return nil, errors.WithMessagef(err, "tiling key %d", key)
	}
	return runInfo, nil
}
