package tilingsearch

import (
	"fmt"
	"testing"

	"github.com/gomlx/normtiling/compileinfo"
	"github.com/gomlx/normtiling/internal/utils"
	"github.com/gomlx/normtiling/types"
	"github.com/gomlx/normtiling/types/shapes"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fp16Capacity = compileinfo.UBCapacity{MaxUBCount: 16384, WorkspaceMaxUBCount: 8656, PadMaxUBCount: 8192, PadMaxEntireSize: 512}
	fp32Capacity = compileinfo.UBCapacity{MaxUBCount: 8192, WorkspaceMaxUBCount: 4328, PadMaxUBCount: 4096, PadMaxEntireSize: 256}
)

func fp16Problem(dims []int, reduceAxes ...int) *Problem {
	return &Problem{
		Shape:        must.M1(shapes.NewReduceShape(dims, reduceAxes)),
		BlockSize:    16,
		CoreNum:      32,
		MinBlockSize: 16,
		Capacity:     fp16Capacity,
	}
}

func fp32Problem(dims []int, reduceAxes ...int) *Problem {
	return &Problem{
		Shape:        must.M1(shapes.NewReduceShape(dims, reduceAxes)),
		BlockSize:    8,
		CoreNum:      32,
		MinBlockSize: 8,
		Capacity:     fp32Capacity,
	}
}

func TestSearch(t *testing.T) {
	testCases := []struct {
		name    string
		problem *Problem
		mode    types.SchedulingMode
		block   BlockTiling
		reorder []int
		ub      UBTiling
	}{
		{
			// [2, 10496, 41] fused.
			name:    "all cores",
			problem: fp16Problem([]int{20992, 41}, 1),
			mode:    types.ModeNormal,
			block:   BlockTiling{Axis: 0, Factor: 656, BlockDim: 32},
			reorder: []int{20992, 41},
			ub:      UBTiling{Axis: 0, Pos: 0, Factor: 328},
		},
		{
			// [10, 1, 7] fused.
			name:    "partial core usage",
			problem: fp32Problem([]int{10, 7}, 1),
			mode:    types.ModeNormal,
			block:   BlockTiling{Axis: 0, Factor: 2, BlockDim: 5},
			reorder: []int{10, 7},
			ub:      UBTiling{Axis: 0, Pos: 0, Factor: 2},
		},
		{
			name: "partial reorder",
			problem: func() *Problem {
				p := fp16Problem([]int{1968, 3, 3}, 0, 2)
				p.HasAfterReduceOutput = true
				return p
			}(),
			mode:    types.ModePartialReorder,
			block:   BlockTiling{Axis: 1, Factor: 3, BlockDim: 1},
			reorder: []int{3, 1968, 3},
			ub:      UBTiling{Axis: 0, Pos: 1, Factor: 541},
		},
		{
			name:    "workspace",
			problem: fp32Problem([]int{4, 100000}, 1),
			mode:    types.ModeWorkspace,
			block:   BlockTiling{Axis: 0, Factor: 1, BlockDim: 4},
			reorder: []int{4, 100000},
			ub:      UBTiling{Axis: 1, Pos: 1, Factor: 4328},
		},
		{
			// The per-core buffer holds the 632 elements of the block axis, not all 5000.
			name: "workspace with trailing block axis",
			problem: func() *Problem {
				p := fp32Problem([]int{4, 5000, 5000}, 1)
				p.HasAfterReduceOutput = true
				return p
			}(),
			mode:    types.ModeWorkspace,
			block:   BlockTiling{Axis: 2, Factor: 632, BlockDim: 32},
			reorder: []int{4, 5000, 5000},
			ub:      UBTiling{Axis: 1, Pos: 1, Factor: 6},
		},
		{
			name:    "workspace with refined last axis",
			problem: fp32Problem([]int{100000, 64}, 0),
			mode:    types.ModeWorkspace,
			block:   BlockTiling{Axis: 1, Factor: 8, BlockDim: 8},
			reorder: []int{100000, 64},
			ub:      UBTiling{Axis: 0, Pos: 0, Factor: 541},
		},
		{
			name: "aligned remove pad",
			problem: func() *Problem {
				p := fp16Problem([]int{64, 41}, 1)
				p.PadEnabled = true
				return p
			}(),
			mode:    types.ModeAlignedRemovePad,
			block:   BlockTiling{Axis: 0, Factor: 2, BlockDim: 32},
			reorder: []int{64, 41},
			ub:      UBTiling{Axis: 0, Pos: 0, Factor: 2},
		},
		{
			name:    "fully spread outer axis",
			problem: fp32Problem([]int{2, 5, 100}, 2),
			mode:    types.ModeNormal,
			block:   BlockTiling{Axis: 1, Factor: 1, BlockDim: 10},
			reorder: []int{2, 5, 100},
			ub:      UBTiling{Axis: 1, Pos: 1, Factor: 1},
		},
		{
			name: "refined last axis",
			problem: func() *Problem {
				p := fp16Problem([]int{3, 1000}, 0)
				p.CoreNum = 30
				return p
			}(),
			mode:    types.ModeNormal,
			block:   BlockTiling{Axis: 1, Factor: 48, BlockDim: 21},
			reorder: []int{3, 1000},
			ub:      UBTiling{Axis: 1, Pos: 1, Factor: 48},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := Search(tc.problem)
			require.NoError(t, err)
			fmt.Printf("\t%s: %s\n", tc.name, result)
			assert.Equal(t, tc.mode, result.Mode)
			assert.Equal(t, tc.block, result.Block)
			assert.Equal(t, tc.reorder, result.Reorder.Dimensions)
			assert.Equal(t, tc.ub, result.UB)
		})
	}
}

func TestSearchFailure(t *testing.T) {
	p := fp32Problem([]int{2, 100, 100}, 1, 2)
	p.Capacity = compileinfo.UBCapacity{MaxUBCount: 4, WorkspaceMaxUBCount: 4, PadMaxUBCount: 4, PadMaxEntireSize: 4}
	require.Equal(t, types.ModeWorkspace, SelectMode(p))
	_, err := Search(p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrSearchFailure))

	p = fp32Problem([]int{2, 0, 3}, 2)
	_, err = Search(p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrSearchFailure))
}

func TestSearchBlock(t *testing.T) {
	// The deeper axis can't be split with legal chunks: keep the outer axis.
	p := fp32Problem([]int{4, 2, 3}, 2)
	p.MinBlockSize = 4
	assert.Equal(t, BlockTiling{Axis: 0, Factor: 1, BlockDim: 4}, searchBlock(p, inputUnit))

	// Not even the whole axis holds a block: one core.
	p = fp32Problem([]int{3, 2}, 1)
	assert.Equal(t, BlockTiling{Axis: 0, Factor: 3, BlockDim: 1}, searchBlock(p, inputUnit))

	// Without a non-reduce axis there is no block split.
	p = fp32Problem([]int{30, 20}, 0, 1)
	assert.Equal(t, NoBlockSplit, searchBlock(p, inputUnit))
	assert.Equal(t, types.ModeWorkspace, SelectMode(p))
}

func TestSplitAxis(t *testing.T) {
	testCases := []struct {
		dim, unit, available, minBlock int
		factor, chunks                 int
	}{
		{20992, 41, 32, 16, 656, 32},
		{10, 7, 32, 8, 2, 5},
		{3, 1, 32, 16, 3, 1},
		{5, 100, 16, 8, 1, 5},
		{100, 1, 32, 8, 10, 10},
		{7, 3, 1, 1, 7, 1},
	}
	for _, tc := range testCases {
		factor, chunks := splitAxis(tc.dim, tc.unit, tc.available, tc.minBlock)
		assert.Equal(t, tc.factor, factor, "splitAxis(%d, %d, %d, %d) factor", tc.dim, tc.unit, tc.available, tc.minBlock)
		assert.Equal(t, tc.chunks, chunks, "splitAxis(%d, %d, %d, %d) chunks", tc.dim, tc.unit, tc.available, tc.minBlock)
	}
}

func TestNewReorder(t *testing.T) {
	// [A0, R0, A1, R1, A2, R2, R3, A3]
	shape := must.M1(shapes.NewReduceShape([]int{2, 3, 4, 5, 6, 7, 8, 9}, []int{1, 3, 5, 6}))
	reorder := NewReorder(shape, BlockTiling{Axis: 4, Factor: 2, BlockDim: 24})
	assert.Equal(t, []int{2, 4, 6, 3, 5, 7, 8, 9}, reorder.Dimensions)
	assert.Equal(t, []int{2, 4, 2, 3, 5, 7, 8, 9}, reorder.Extents)
	assert.Equal(t, []int{0, 2, 4, 1, 3, 5, 6, 7}, reorder.ReorderToOri)
	assert.Equal(t, []int{0, 3, 1, 4, 2, 5, 6, 7}, reorder.OriToReorder)
	assert.Equal(t, 3, reorder.FirstReducePos)
	assert.Equal(t, 6, reorder.LastReducePos)
	assert.True(t, utils.SetWith(0, 1).Equal(reorder.FusedBlockAxes))
	for pos := range reorder.Dimensions {
		assert.Equal(t, pos >= 3 && pos <= 6, reorder.IsReducePos(pos), "position %d", pos)
	}

	// Reduce axes already contiguous at the end: identity.
	shape = must.M1(shapes.NewReduceShape([]int{2, 3, 4}, []int{1, 2}))
	reorder = NewReorder(shape, NoBlockSplit)
	assert.Equal(t, []int{2, 3, 4}, reorder.Dimensions)
	assert.Equal(t, []int{2, 3, 4}, reorder.Extents)
	assert.Empty(t, reorder.FusedBlockAxes)

	// Inner products count the block axis at its per-core factor.
	shape = must.M1(shapes.NewReduceShape([]int{4, 5000, 5000}, []int{1}))
	reorder = NewReorder(shape, BlockTiling{Axis: 2, Factor: 630, BlockDim: 32})
	assert.Equal(t, 630, reorder.inner(1))
	assert.Equal(t, 632, reorder.alignedInner(1, 8))
	assert.Equal(t, 6*632, reorder.footprint(1, 6, 8))
}

func TestRefine(t *testing.T) {
	p := fp16Problem([]int{3, 1000}, 0)
	testCases := []struct {
		name  string
		mode  types.SchedulingMode
		block BlockTiling
		want  BlockTiling
	}{
		{"aligned", types.ModeNormal, BlockTiling{Axis: 1, Factor: 34, BlockDim: 30}, BlockTiling{Axis: 1, Factor: 48, BlockDim: 21}},
		{"already aligned", types.ModeNormal, BlockTiling{Axis: 1, Factor: 32, BlockDim: 32}, BlockTiling{Axis: 1, Factor: 32, BlockDim: 32}},
		{"not last axis", types.ModeNormal, BlockTiling{Axis: 0, Factor: 1, BlockDim: 3}, BlockTiling{Axis: 0, Factor: 1, BlockDim: 3}},
		{"covers whole axis", types.ModeNormal, BlockTiling{Axis: 1, Factor: 999, BlockDim: 2}, BlockTiling{Axis: 1, Factor: 999, BlockDim: 2}},
		// 1000 = 2*496 + 8: a tail smaller than a block.
		{"short tail", types.ModeNormal, BlockTiling{Axis: 1, Factor: 490, BlockDim: 3}, BlockTiling{Axis: 1, Factor: 490, BlockDim: 3}},
		{"no split", types.ModeWorkspace, NoBlockSplit, NoBlockSplit},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Refine(p, tc.mode, tc.block))
		})
	}

	// Workspace modes cap the refined factor to the workspace buffer.
	p.Capacity.WorkspaceMaxUBCount = 40
	block := BlockTiling{Axis: 1, Factor: 34, BlockDim: 30}
	assert.Equal(t, block, Refine(p, types.ModeWorkspace, block))
}

// TestSearchInvariants checks, over a grid of shapes, that the chosen ub split fits its buffer (unless it is a
// fallback), that block and ub chunks are legal and that no more cores than available are used.
func TestSearchInvariants(t *testing.T) {
	shapesList := []struct {
		dims        []int
		reduceAxes  []int
		afterReduce bool
	}{
		{[]int{20992, 41}, []int{1}, false},
		{[]int{10, 7}, []int{1}, false},
		{[]int{1968, 3, 3}, []int{0, 2}, false},
		{[]int{1968, 3, 3}, []int{0, 2}, true},
		{[]int{7, 300, 5, 9}, []int{1, 3}, false},
		{[]int{3, 5000, 17}, []int{1}, false},
		{[]int{1, 65536}, []int{1}, false},
		{[]int{128, 128, 128}, []int{1}, false},
		{[]int{33, 2, 1025}, []int{0, 2}, false},
		{[]int{1, 100, 1}, []int{0, 2}, false},
		{[]int{5, 7, 11, 13}, []int{1}, false},
		// Workspace mode with the block split on a large trailing axis.
		{[]int{4, 5000, 5000}, []int{1}, true},
		{[]int{100000, 64}, []int{0}, false},
	}
	for _, s := range shapesList {
		for _, makeProblem := range []func([]int, ...int) *Problem{fp16Problem, fp32Problem} {
			p := makeProblem(s.dims, s.reduceAxes...)
			p.HasAfterReduceOutput = s.afterReduce
			name := fmt.Sprintf("%v/%v/block=%d/after_reduce=%v", s.dims, s.reduceAxes, p.BlockSize, s.afterReduce)
			t.Run(name, func(t *testing.T) {
				result, err := Search(p)
				require.NoError(t, err)
				block := result.Block
				assert.LessOrEqual(t, block.BlockDim, p.CoreNum)
				assert.GreaterOrEqual(t, block.BlockDim, 1)

				// Every core gets at least MinBlockSize elements, unless the axis is not split.
				if block.Axis >= 0 {
					unit := inputUnit
					if result.Mode.NeedsWorkspace() && p.HasAfterReduceOutput {
						unit = outputUnit
					}
					dim, perIndex := p.Shape.Dimensions[block.Axis], unit(p, block.Axis)
					if utils.CeilDiv(dim, block.Factor) > 1 {
						assert.GreaterOrEqual(t, block.Factor*perIndex, p.MinBlockSize, "result %s", result)
						assert.GreaterOrEqual(t, utils.TailOf(dim, block.Factor)*perIndex, p.MinBlockSize,
							"result %s", result)
					}
				}

				reorder, ub := result.Reorder, result.UB
				extent := reorder.Extents[ub.Pos]
				require.GreaterOrEqual(t, ub.Factor, 1)
				require.LessOrEqual(t, ub.Factor, extent)
				if ub.Fallback {
					return
				}
				var footprint, capacity int
				switch result.Mode {
				case types.ModeNormal:
					footprint, capacity = reorder.normalFootprint(ub.Pos, ub.Factor, p.BlockSize), p.Capacity.MaxUBCount
				case types.ModeAlignedRemovePad:
					footprint, capacity = reorder.normalFootprint(ub.Pos, ub.Factor, p.BlockSize), p.Capacity.PadMaxUBCount
				default:
					footprint, capacity = reorder.footprint(ub.Pos, ub.Factor, p.BlockSize), p.Capacity.WorkspaceMaxUBCount
				}
				assert.LessOrEqual(t, footprint, capacity, "result %s", result)
				if result.Mode != types.ModePartialReorder && ub.Factor < extent {
					inner := reorder.inner(ub.Pos)
					assert.GreaterOrEqual(t, ub.Factor*inner, p.BlockSize)
					assert.GreaterOrEqual(t, utils.TailOf(extent, ub.Factor)*inner, p.BlockSize)
				}
			})
		}
	}
}

func TestDeterminism(t *testing.T) {
	p := fp16Problem([]int{7, 300, 5, 9}, 1, 3)
	first := must.M1(Search(p))
	for range 10 {
		assert.Equal(t, first, must.M1(Search(p)))
	}
}

func TestStrategyFor(t *testing.T) {
	for _, mode := range types.SchedulingModeValues() {
		assert.NotNil(t, StrategyFor(mode), "mode %s", mode)
	}
	assert.Panics(t, func() { StrategyFor(types.SchedulingMode(99)) })
}
