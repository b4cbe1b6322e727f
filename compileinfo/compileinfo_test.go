package compileinfo

import (
	"strings"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/normtiling/attributes"
	"github.com/gomlx/normtiling/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validBlob = `{
	"_common_info": [32, 1, 16, 32, 1, 0, 1],
	"_available_ub_size": {"2": [16384, 8656, 8192, 512], "4": [8192, 4328, 4096, 256]},
	"_workspace_info": {"21000012": {"_workspace_type": [1, 0], "_workspace_bytes": [4, 2], "_workspace_diff_count": 1}},
	"_norm_vars": {"4": [20000, 20001, 30000, 40000]},
	"_fuse_axis": true,
	"_ori_axis": [2]
}`

func TestParse(t *testing.T) {
	info, err := Parse([]byte(validBlob))
	require.NoError(t, err)
	assert.Equal(t, 32, info.CoreNum)
	assert.True(t, info.IsKeepDims)
	assert.Equal(t, 16, info.MinBlockSize)
	assert.Equal(t, 32, info.BlockSizeBytes)
	assert.True(t, info.ExistOutputAfterReduce)
	assert.False(t, info.ExistWorkspaceAfterReduce)
	assert.True(t, info.HasAfterReduceOutput())
	assert.True(t, info.PadEnabled)
	assert.True(t, info.IsFuseAxis)
	assert.False(t, info.IsConst)
	assert.Equal(t, []int{2}, info.ReduceAxes)
	assert.Nil(t, info.ReduceAxesAttr)
	assert.Nil(t, info.ConstSolution)

	capacity, err := info.UBCapacity(dtypes.Float16)
	require.NoError(t, err)
	assert.Equal(t, UBCapacity{MaxUBCount: 16384, WorkspaceMaxUBCount: 8656, PadMaxUBCount: 8192, PadMaxEntireSize: 512}, capacity)
	_, err = info.UBCapacity(dtypes.Float64)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrConfiguration))

	assert.Equal(t, WorkspaceInfo{
		Slots:     []WorkspaceSlot{{Kind: WorkspaceAfterReduce, ByteWidth: 4}, {Kind: WorkspaceBeforeReduce, ByteWidth: 2}},
		DiffCount: 1,
	}, info.Workspaces[21000012])
	assert.Equal(t, []int{20000, 20001, 30000, 40000}, info.NormVars[4])
}

func TestParseReduceAxesAttribute(t *testing.T) {
	blob := `{
		"_common_info": [8, 0, 8, 32, 0, 0, 0],
		"_available_ub_size": {"4": [8192, 4096, 4096, 256]},
		"_fuse_axis": false,
		"_reduce_axis_attr_name": "axes",
		"_reduce_axis_attr_dtype": "list_int"
	}`
	info, err := Parse([]byte(blob))
	require.NoError(t, err)
	assert.False(t, info.IsFuseAxis)
	require.NotNil(t, info.ReduceAxesAttr)
	assert.Equal(t, attributes.AxesSpec{Name: "axes", Kind: attributes.KindInts}, *info.ReduceAxesAttr)
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name    string
		blob    string
		wantErr string
	}{
		{"not json", `{`, "failed to decode"},
		{"short common info", `{"_common_info": [32, 1, 16], "_ori_axis": [0]}`, "exactly 7 elements"},
		{"zero cores", `{"_common_info": [0, 1, 16, 32, 0, 0, 0], "_ori_axis": [0]}`, "core_num must be > 0"},
		{"zero min block", `{"_common_info": [32, 1, 0, 32, 0, 0, 0], "_ori_axis": [0]}`, "min_block_size"},
		{"zero block bytes", `{"_common_info": [32, 1, 16, 0, 0, 0, 0], "_ori_axis": [0]}`, "block_size_bytes"},
		{"no ub size", `{"_common_info": [32, 1, 16, 32, 0, 0, 0], "_ori_axis": [0]}`, "_available_ub_size is missing"},
		{"ub size length", `{"_common_info": [32, 1, 16, 32, 0, 0, 0], "_available_ub_size": {"2": [1, 2]}, "_ori_axis": [0]}`,
			"must have 4 elements"},
		{"non positive capacity", `{"_common_info": [32, 1, 16, 32, 0, 0, 0], "_available_ub_size": {"2": [1, 2, 0, 4]}, "_ori_axis": [0]}`,
			"must be > 0"},
		{"bad ub key", `{"_common_info": [32, 1, 16, 32, 0, 0, 0], "_available_ub_size": {"fp16": [1, 2, 3, 4]}, "_ori_axis": [0]}`,
			"non-integer key"},
		{"bad var", `{"_common_info": [32, 1, 16, 32, 0, 0, 0], "_available_ub_size": {"2": [1, 2, 3, 4]},
			"_norm_vars": {"4": [20000, 50000]}, "_ori_axis": [0]}`, "runtime variable 50000"},
		{"workspace lengths", `{"_common_info": [32, 1, 16, 32, 0, 0, 0], "_available_ub_size": {"2": [1, 2, 3, 4]},
			"_workspace_info": {"4": {"_workspace_type": [0, 1], "_workspace_bytes": [4]}}, "_ori_axis": [0]}`, "same length"},
		{"workspace type", `{"_common_info": [32, 1, 16, 32, 0, 0, 0], "_available_ub_size": {"2": [1, 2, 3, 4]},
			"_workspace_info": {"4": {"_workspace_type": [3], "_workspace_bytes": [4]}}, "_ori_axis": [0]}`, "invalid workspace type"},
		{"workspace diff", `{"_common_info": [32, 1, 16, 32, 0, 0, 0], "_available_ub_size": {"2": [1, 2, 3, 4]},
			"_workspace_info": {"4": {"_workspace_type": [0], "_workspace_bytes": [4], "_workspace_diff_count": 2}}, "_ori_axis": [0]}`,
			"_workspace_diff_count"},
		{"no axes", `{"_common_info": [32, 1, 16, 32, 0, 0, 0], "_available_ub_size": {"2": [1, 2, 3, 4]}}`,
			"either _ori_axis or _reduce_axis_attr_name"},
		{"bad axes attr type", `{"_common_info": [32, 1, 16, 32, 0, 0, 0], "_available_ub_size": {"2": [1, 2, 3, 4]},
			"_reduce_axis_attr_name": "axes", "_reduce_axis_attr_dtype": "float"}`, "_reduce_axis_attr_dtype"},
		{"const without key", `{"_common_info": [32, 1, 16, 32, 0, 0, 0], "_available_ub_size": {"2": [1, 2, 3, 4]},
			"_ori_axis": [0], "_is_const": true, "_const_shape_post": true}`, "_const_tiling_key is missing"},
		{"const without block dim", `{"_common_info": [32, 1, 16, 32, 0, 0, 0], "_available_ub_size": {"2": [1, 2, 3, 4]},
			"_ori_axis": [0], "_is_const": true, "_const_shape_post": true, "_const_tiling_key": 4}`, "_block_dims has no entry"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			info, err := Parse([]byte(tc.blob))
			require.Error(t, err)
			assert.Nil(t, info)
			assert.True(t, errors.Is(err, types.ErrConfiguration), "error %v should be a configuration error", err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidate(t *testing.T) {
	info, err := Parse([]byte(validBlob))
	require.NoError(t, err)
	require.NoError(t, info.Validate())

	info.Workspaces[21000012] = WorkspaceInfo{Slots: []WorkspaceSlot{{Kind: WorkspaceAfterReduce, ByteWidth: 0}}}
	err = info.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrConfiguration))
	assert.Contains(t, err.Error(), "byte width must be > 0")

	info = &CompileInfo{
		CoreNum:        8,
		MinBlockSize:   8,
		BlockSizeBytes: 32,
		UBCapacities:   map[int]UBCapacity{4: {MaxUBCount: 8192, WorkspaceMaxUBCount: 4328, PadMaxUBCount: 4096, PadMaxEntireSize: 256}},
		ReduceAxesAttr: &attributes.AxesSpec{Name: "axes", Kind: attributes.KindString},
	}
	err = info.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "_reduce_axis_attr_dtype")
	info.ReduceAxesAttr.Kind = attributes.KindInts
	require.NoError(t, info.Validate())
	info.UBCapacities[4] = UBCapacity{MaxUBCount: 8192}
	require.Error(t, info.Validate())
}

func TestVars(t *testing.T) {
	for _, tc := range []struct {
		v    int
		kind VarKind
		axis int
	}{
		{20000, VarDim, 0},
		{20003, VarDim, 3},
		{30001, VarBlockFactor, 1},
		{40002, VarUBFactor, 2},
	} {
		kind, axis, err := DecodeVar(tc.v)
		require.NoError(t, err)
		assert.Equal(t, tc.kind, kind)
		assert.Equal(t, tc.axis, axis)
	}
	_, _, err := DecodeVar(10000)
	require.Error(t, err)
}

func TestAppendConstSolution(t *testing.T) {
	solution := ConstSolution{TilingKey: 4, BlockDim: 32, WorkspaceSizes: []int{32, 1024}}
	blob, err := AppendConstSolution([]byte(validBlob), solution)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(blob), `"_const_tiling_key":4`))

	info, err := Parse(blob)
	require.NoError(t, err)
	assert.True(t, info.IsConst)
	assert.True(t, info.ConstShapePost)
	require.NotNil(t, info.ConstSolution)
	assert.Equal(t, solution, *info.ConstSolution)
	// Other fields are preserved.
	assert.Equal(t, []int{20000, 20001, 30000, 40000}, info.NormVars[4])

	_, err = AppendConstSolution([]byte("not json"), solution)
	require.Error(t, err)
}
