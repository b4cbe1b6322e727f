package normtiling

import (
	"github.com/gomlx/normtiling/compileinfo"
	"github.com/gomlx/normtiling/tilingsearch"
	"github.com/gomlx/normtiling/types"
	"github.com/gomlx/normtiling/types/shapes"
	"github.com/pkg/errors"
)

// keyWeights are the decimal weights of the fields packed in a tiling key. The pattern takes the lowest
// digits, below the smallest weight.
type keyWeights struct {
	doubleBuffer, schedule, blockAxis, ubAxis int
}

var (
	// blockSplitKeyWeights encodes keys of schedules with a block split.
	blockSplitKeyWeights = keyWeights{
		doubleBuffer: 1_000_000_000,
		schedule:     10_000_000,
		blockAxis:    1_000_000,
		ubAxis:       100_000,
	}

	// noBlockSplitKeyWeights encodes keys of schedules running on one core without a block axis.
	noBlockSplitKeyWeights = keyWeights{
		doubleBuffer: 1_000_000_000,
		schedule:     10_000_000,
		ubAxis:       1_000_000,
	}
)

// maxKeyAxis is the largest axis index that fits its decimal digit in the key.
const maxKeyAxis = 9

// EncodeTilingKey packs the decision into the tiling key of the kernel variant to run.
//
// Axes are indices into shape, the (fused) shape the decision was made on.
// The double-buffer digit is always 0: no kernel variant uses it.
func EncodeTilingKey(mode types.SchedulingMode, blockAxis, ubAxis int, shape shapes.ReduceShape) (int, error) {
	const doubleBuffer = 0
	weights := blockSplitKeyWeights
	if blockAxis < 0 {
		weights = noBlockSplitKeyWeights
	}
	if blockAxis > maxKeyAxis || ubAxis < 0 || ubAxis > maxKeyAxis {
		return 0, errors.Wrapf(types.ErrSearchFailure, "tiling axes (block=%d, ub=%d) can't be encoded in a "+
			"tiling key, they must be <= %d", blockAxis, ubAxis, maxKeyAxis)
	}
	pattern := shape.Pattern()
	lowest := weights.ubAxis
	if pattern >= lowest {
		return 0, errors.Wrapf(types.ErrSearchFailure, "pattern %d of shape %s overflows its tiling key digits",
			pattern, shape)
	}
	key := doubleBuffer*weights.doubleBuffer + mode.KeyTag()*weights.schedule + ubAxis*weights.ubAxis + pattern
	if blockAxis >= 0 {
		key += blockAxis * weights.blockAxis
	}
	return key, nil
}

// tilingData substitutes the kernel runtime variables vars with the values of the decision.
func tilingData(vars []int, shape shapes.ReduceShape, block tilingsearch.BlockTiling,
	ub tilingsearch.UBTiling) ([]int, error) {
	data := make([]int, len(vars))
	for ii, v := range vars {
		kind, axis, err := compileinfo.DecodeVar(v)
		if err != nil {
			return nil, err
		}
		switch kind {
		case compileinfo.VarDim:
			if axis >= shape.Rank() {
				return nil, errors.Wrapf(types.ErrConfiguration, "runtime variable %d refers to axis %d, but shape "+
					"%v has rank %d", v, axis, shape.Dimensions, shape.Rank())
			}
			data[ii] = shape.Dimensions[axis]
		case compileinfo.VarBlockFactor:
			if axis != block.Axis {
				return nil, errors.Wrapf(types.ErrConfiguration, "runtime variable %d refers to the block factor "+
					"of axis %d, but the block axis is %d", v, axis, block.Axis)
			}
			data[ii] = block.Factor
		case compileinfo.VarUBFactor:
			if axis != ub.Axis {
				return nil, errors.Wrapf(types.ErrConfiguration, "runtime variable %d refers to the ub factor "+
					"of axis %d, but the ub axis is %d", v, axis, ub.Axis)
			}
			data[ii] = ub.Factor
		}
	}
	if err := checkInt32(data); err != nil {
		return nil, err
	}
	return data, nil
}
