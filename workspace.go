package normtiling

import (
	"github.com/gomlx/normtiling/compileinfo"
	"github.com/gomlx/normtiling/internal/utils"
	"github.com/gomlx/normtiling/types/shapes"
)

// workspacePlaceholderBytes is the size given to workspace slots only read by the staging code path, when
// staging is not selected.
const workspacePlaceholderBytes = 32

// workspaceSizes returns the size in bytes of each declared workspace slot.
//
// Before-reduce slots hold the aligned input, after-reduce slots the non-reduce axes with the last one aligned.
func workspaceSizes(ws compileinfo.WorkspaceInfo, shape shapes.ReduceShape, blockSize int, staging bool) []int {
	if len(ws.Slots) == 0 {
		return nil
	}
	beforeReduce := utils.Product(shape.AlignedDimensions(blockSize)...)
	afterReduce := afterReduceElements(shape, blockSize)
	firstDiff := len(ws.Slots) - ws.DiffCount
	sizes := make([]int, len(ws.Slots))
	for ii, slot := range ws.Slots {
		switch {
		case !staging && ii >= firstDiff:
			sizes[ii] = workspacePlaceholderBytes
		case slot.Kind == compileinfo.WorkspaceAfterReduce:
			sizes[ii] = afterReduce * slot.ByteWidth
		default:
			sizes[ii] = beforeReduce * slot.ByteWidth
		}
	}
	return sizes
}

// afterReduceElements returns the elements of the reduction result, with its last axis aligned to blockSize.
func afterReduceElements(shape shapes.ReduceShape, blockSize int) int {
	var dims []int
	for _, axis := range shape.NonReduceAxes() {
		dims = append(dims, shape.Dimensions[axis])
	}
	if len(dims) == 0 {
		return utils.AlignUp(1, blockSize)
	}
	last := len(dims) - 1
	dims[last] = utils.AlignUp(dims[last], blockSize)
	return utils.Product(dims...)
}
