// Package normtiling computes, at compile time, how a norm (reduction) operator kernel is partitioned on an NPU:
// the axis split across cores (block tiling), the axis split into on-chip buffer iterations (ub tiling), the
// external workspace buffers and the tiling key that selects the pre-compiled kernel variant.
//
// The entry point is Tiler.Tile, which takes the operator instance (its input shapes and attributes) and returns
// a RunInfo. A Tiler is created once per compiled kernel from its compile information, see compileinfo.Parse,
// and can be used concurrently.
//
// The search itself is implemented in the tilingsearch package.
package normtiling

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"

	"github.com/gomlx/normtiling/attributes"
	"github.com/gomlx/normtiling/compileinfo"
	"github.com/gomlx/normtiling/types"
	"github.com/gomlx/normtiling/types/shapes"
	"github.com/pkg/errors"
)

// Operator is one instance of a norm operator to be tiled.
type Operator struct {
	// Type is the IR operator type, e.g. "ReduceSum" or "SoftmaxV2".
	Type string
	Name string

	// Inputs shapes. The first one is the tensor being reduced.
	Inputs []shapes.Shape

	Attributes attributes.Attributes
}

// String implements fmt.Stringer.
func (op *Operator) String() string {
	return fmt.Sprintf("%s(%q, inputs=%v)", op.Type, op.Name, op.Inputs)
}

// RunInfo is the tiling record handed to the runtime.
type RunInfo struct {
	// BlockDim is the number of cores used.
	BlockDim int

	// TilingKey selects the compiled kernel variant.
	TilingKey int

	// WorkspaceSizes holds the size in bytes of each workspace buffer declared by the kernel.
	WorkspaceSizes []int

	// TilingData are the runtime variables read by the kernel, in the order it declares them.
	// It is nil for constant shapes.
	TilingData []int
}

// String implements fmt.Stringer.
func (r *RunInfo) String() string {
	return fmt.Sprintf("block_dim=%d tiling_key=%d workspaces=%v tiling_data=%v",
		r.BlockDim, r.TilingKey, r.WorkspaceSizes, r.TilingData)
}

// TilingDataBytes returns TilingData as the kernel reads it: consecutive little-endian int32 values.
// It fails with types.ErrSearchFailure if a value doesn't fit an int32.
func (r *RunInfo) TilingDataBytes() ([]byte, error) {
	if err := checkInt32(r.TilingData); err != nil {
		return nil, err
	}
	buf := make([]byte, 0, 4*len(r.TilingData))
	for _, v := range r.TilingData {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(int32(v)))
	}
	return buf, nil
}

// checkInt32 verifies all values of the tiling data fit the kernel's int32 slots.
func checkInt32(data []int) error {
	for ii, v := range data {
		if v < math.MinInt32 || v > math.MaxInt32 {
			return errors.Wrapf(types.ErrSearchFailure, "tiling data #%d = %d overflows the int32 tiling buffer",
				ii, v)
		}
	}
	return nil
}

// ConstSolution returns the part of the RunInfo replayed for constant shapes.
func (r *RunInfo) ConstSolution() compileinfo.ConstSolution {
	return compileinfo.ConstSolution{
		TilingKey:      r.TilingKey,
		BlockDim:       r.BlockDim,
		WorkspaceSizes: slices.Clone(r.WorkspaceSizes),
	}
}

// Tiler computes the tiling of the operators of one compiled kernel.
type Tiler struct {
	info *compileinfo.CompileInfo
}

// New creates a Tiler for the given compile information, which is validated first.
// info must not be changed afterward.
func New(info *compileinfo.CompileInfo) (*Tiler, error) {
	if info == nil {
		return nil, errors.Wrap(types.ErrConfiguration, "normtiling.New() requires a non-nil CompileInfo")
	}
	if err := info.Validate(); err != nil {
		return nil, err
	}
	return &Tiler{info: info}, nil
}

// NewFromJSON parses the compile-info JSON blob and creates a Tiler for it.
func NewFromJSON(blob []byte) (*Tiler, error) {
	info, err := compileinfo.Parse(blob)
	if err != nil {
		return nil, err
	}
	return New(info)
}

// CompileInfo returns the compile information the Tiler was created with.
func (t *Tiler) CompileInfo() *compileinfo.CompileInfo {
	return t.info
}
