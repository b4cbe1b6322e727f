// Package compileinfo decodes and validates the compile-time information of a norm operator kernel: hardware
// constants, on-chip buffer capacities, the runtime variables each compiled kernel reads and, for constant
// shapes, the solution computed at compile time.
//
// A *CompileInfo is immutable after Parse returns, and can be shared by any number of concurrent tiling calls.
package compileinfo

import (
	"encoding/json"
	"slices"
	"strconv"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/normtiling/attributes"
	"github.com/gomlx/normtiling/types"
	"github.com/pkg/errors"
)

// CommonInfoLen is the exact number of elements of the "_common_info" array.
const CommonInfoLen = 7

// Positions in the "_common_info" array.
const (
	commonCoreNum = iota
	commonIsKeepDims
	commonMinBlockSize
	commonBlockSizeBytes
	commonExistOutputAfterReduce
	commonExistWorkspaceAfterReduce
	commonPadEnabled
)

// UBCapacity holds the on-chip buffer capacities, in elements, for each scheduling variant.
type UBCapacity struct {
	MaxUBCount          int
	WorkspaceMaxUBCount int
	PadMaxUBCount       int
	PadMaxEntireSize    int
}

// WorkspaceKind tells how a workspace slot is sized.
type WorkspaceKind int

const (
	// WorkspaceBeforeReduce slots hold a full (aligned) copy of the input.
	WorkspaceBeforeReduce WorkspaceKind = 0

	// WorkspaceAfterReduce slots hold the (aligned) reduction result.
	WorkspaceAfterReduce WorkspaceKind = 1
)

// WorkspaceSlot is one external scratch buffer declared by a compiled kernel.
type WorkspaceSlot struct {
	Kind      WorkspaceKind
	ByteWidth int
}

// WorkspaceInfo lists the workspace slots of one compiled kernel.
//
// The last DiffCount slots are only read by the workspace code path: when staging is not selected they get a
// placeholder size.
type WorkspaceInfo struct {
	Slots     []WorkspaceSlot
	DiffCount int
}

// ConstSolution is the tiling decision computed once at compile time for a constant shape, and replayed
// verbatim at runtime.
type ConstSolution struct {
	TilingKey      int
	BlockDim       int
	WorkspaceSizes []int
}

// CompileInfo holds the compile-time constants of one norm operator kernel.
type CompileInfo struct {
	CoreNum        int
	MinBlockSize   int
	BlockSizeBytes int

	IsKeepDims                bool
	ExistOutputAfterReduce    bool
	ExistWorkspaceAfterReduce bool
	PadEnabled                bool

	// UBCapacities is keyed by the element byte width of the input (the data-type group).
	UBCapacities map[int]UBCapacity

	// Workspaces and NormVars are keyed by tiling key.
	Workspaces map[int]WorkspaceInfo
	NormVars   map[int][]int

	IsFuseAxis     bool
	IsConst        bool
	ConstShapePost bool

	// ConstSolution is set when ConstShapePost is true.
	ConstSolution *ConstSolution

	// ReduceAxes are the compile-time reduction axes over the original shape. If empty, ReduceAxesAttr
	// tells which operator attribute to read them from at tiling time.
	ReduceAxes     []int
	ReduceAxesAttr *attributes.AxesSpec
}

// rawCompileInfo mirrors the JSON blob.
type rawCompileInfo struct {
	CommonInfo         []int                       `json:"_common_info"`
	AvailableUBSize    map[string][]int            `json:"_available_ub_size"`
	WorkspaceInfo      map[string]rawWorkspaceInfo `json:"_workspace_info"`
	NormVars           map[string][]int            `json:"_norm_vars"`
	FuseAxis           *bool                       `json:"_fuse_axis"`
	IsConst            bool                        `json:"_is_const"`
	ConstShapePost     bool                        `json:"_const_shape_post"`
	ConstTilingKey     *int                        `json:"_const_tiling_key,omitempty"`
	BlockDims          map[string]int              `json:"_block_dims,omitempty"`
	ConstWorkspaceSize []int                       `json:"_const_workspace_size,omitempty"`
	OriAxis            []int                       `json:"_ori_axis,omitempty"`
	ReduceAxisAttrName string                      `json:"_reduce_axis_attr_name,omitempty"`
	ReduceAxisAttrType string                      `json:"_reduce_axis_attr_dtype,omitempty"`
}

type rawWorkspaceInfo struct {
	Type      []int `json:"_workspace_type"`
	Bytes     []int `json:"_workspace_bytes"`
	DiffCount int   `json:"_workspace_diff_count"`
}

func configErrorf(format string, args ...any) error {
	return errors.Wrapf(types.ErrConfiguration, format, args...)
}

// Parse decodes and validates a compile-info JSON blob.
//
// Any missing or malformed field returns an error wrapping types.ErrConfiguration.
func Parse(data []byte) (*CompileInfo, error) {
	var raw rawCompileInfo
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(types.ErrConfiguration, "failed to decode compile info: %v", err)
	}
	return fromRaw(&raw)
}

func fromRaw(raw *rawCompileInfo) (*CompileInfo, error) {
	if len(raw.CommonInfo) != CommonInfoLen {
		return nil, configErrorf("_common_info must have exactly %d elements, got %d (%v)",
			CommonInfoLen, len(raw.CommonInfo), raw.CommonInfo)
	}
	common := raw.CommonInfo
	info := &CompileInfo{
		CoreNum:                   common[commonCoreNum],
		IsKeepDims:                common[commonIsKeepDims] != 0,
		MinBlockSize:              common[commonMinBlockSize],
		BlockSizeBytes:            common[commonBlockSizeBytes],
		ExistOutputAfterReduce:    common[commonExistOutputAfterReduce] != 0,
		ExistWorkspaceAfterReduce: common[commonExistWorkspaceAfterReduce] != 0,
		PadEnabled:                common[commonPadEnabled] != 0,
		IsFuseAxis:                raw.FuseAxis == nil || *raw.FuseAxis,
		IsConst:                   raw.IsConst,
		ConstShapePost:            raw.ConstShapePost,
		ReduceAxes:                slices.Clone(raw.OriAxis),
	}

	var err error
	if info.UBCapacities, err = parseUBCapacities(raw.AvailableUBSize); err != nil {
		return nil, err
	}
	if info.Workspaces, err = parseWorkspaces(raw.WorkspaceInfo); err != nil {
		return nil, err
	}
	if info.NormVars, err = parseNormVars(raw.NormVars); err != nil {
		return nil, err
	}
	if len(info.ReduceAxes) == 0 && raw.ReduceAxisAttrName != "" {
		kind, err := attributes.ParseKindName(raw.ReduceAxisAttrType)
		if err != nil {
			return nil, configErrorf("_reduce_axis_attr_dtype must be \"int\" or \"list_int\", got %q",
				raw.ReduceAxisAttrType)
		}
		info.ReduceAxesAttr = &attributes.AxesSpec{Name: raw.ReduceAxisAttrName, Kind: kind}
	}
	if info.IsConst && info.ConstShapePost {
		if info.ConstSolution, err = parseConstSolution(raw); err != nil {
			return nil, err
		}
	}
	if err = info.Validate(); err != nil {
		return nil, err
	}
	return info, nil
}

// Validate checks the constants of the CompileInfo. Parse calls it, and it must be called on a CompileInfo
// built by hand before it is used.
//
// Any invalid field returns an error wrapping types.ErrConfiguration.
func (c *CompileInfo) Validate() error {
	if c.CoreNum <= 0 {
		return configErrorf("core_num must be > 0, got %d", c.CoreNum)
	}
	if c.MinBlockSize <= 0 {
		return configErrorf("min_block_size must be > 0, got %d", c.MinBlockSize)
	}
	if c.BlockSizeBytes <= 0 {
		return configErrorf("block_size_bytes must be > 0, got %d", c.BlockSizeBytes)
	}

	if len(c.UBCapacities) == 0 {
		return configErrorf("_available_ub_size is missing")
	}
	for group, capacity := range c.UBCapacities {
		values := []int{capacity.MaxUBCount, capacity.WorkspaceMaxUBCount, capacity.PadMaxUBCount,
			capacity.PadMaxEntireSize}
		if group <= 0 || slices.Min(values) <= 0 {
			return configErrorf("_available_ub_size[%d]: group and capacities must be > 0, got %v", group, values)
		}
	}

	for tilingKey, ws := range c.Workspaces {
		if ws.DiffCount < 0 || ws.DiffCount > len(ws.Slots) {
			return configErrorf("_workspace_info[%d]: _workspace_diff_count %d out of range [0, %d]",
				tilingKey, ws.DiffCount, len(ws.Slots))
		}
		for ii, slot := range ws.Slots {
			if slot.Kind != WorkspaceBeforeReduce && slot.Kind != WorkspaceAfterReduce {
				return configErrorf("_workspace_info[%d]: invalid workspace type %d at #%d", tilingKey, slot.Kind, ii)
			}
			if slot.ByteWidth <= 0 {
				return configErrorf("_workspace_info[%d]: byte width must be > 0, got %d at #%d",
					tilingKey, slot.ByteWidth, ii)
			}
		}
	}

	for tilingKey, vars := range c.NormVars {
		for _, v := range vars {
			if _, _, err := DecodeVar(v); err != nil {
				return errors.WithMessagef(err, "_norm_vars[%d]", tilingKey)
			}
		}
	}

	if len(c.ReduceAxes) == 0 {
		if c.ReduceAxesAttr == nil || c.ReduceAxesAttr.Name == "" {
			return configErrorf("either _ori_axis or _reduce_axis_attr_name must be given")
		}
		if kind := c.ReduceAxesAttr.Kind; kind != attributes.KindInt && kind != attributes.KindInts {
			return configErrorf("_reduce_axis_attr_dtype must be \"int\" or \"list_int\", got %s", kind)
		}
	}

	if c.IsConst && c.ConstShapePost {
		if c.ConstSolution == nil {
			return configErrorf("_const_shape_post is set but there is no constant solution")
		}
		if c.ConstSolution.BlockDim <= 0 {
			return configErrorf("_block_dims[%d] must be > 0, got %d", c.ConstSolution.TilingKey,
				c.ConstSolution.BlockDim)
		}
	}
	return nil
}

func parseKey(field, key string) (int, error) {
	value, err := strconv.Atoi(key)
	if err != nil {
		return 0, configErrorf("%s has non-integer key %q", field, key)
	}
	return value, nil
}

func parseUBCapacities(raw map[string][]int) (map[int]UBCapacity, error) {
	capacities := make(map[int]UBCapacity, len(raw))
	for key, values := range raw {
		group, err := parseKey("_available_ub_size", key)
		if err != nil {
			return nil, err
		}
		if len(values) != 4 {
			return nil, configErrorf("_available_ub_size[%q] must have 4 elements, got %v", key, values)
		}
		capacities[group] = UBCapacity{
			MaxUBCount:          values[0],
			WorkspaceMaxUBCount: values[1],
			PadMaxUBCount:       values[2],
			PadMaxEntireSize:    values[3],
		}
	}
	return capacities, nil
}

func parseWorkspaces(raw map[string]rawWorkspaceInfo) (map[int]WorkspaceInfo, error) {
	workspaces := make(map[int]WorkspaceInfo, len(raw))
	for key, ws := range raw {
		tilingKey, err := parseKey("_workspace_info", key)
		if err != nil {
			return nil, err
		}
		if len(ws.Type) != len(ws.Bytes) {
			return nil, configErrorf("_workspace_info[%q]: _workspace_type and _workspace_bytes must have the "+
				"same length, got %d and %d", key, len(ws.Type), len(ws.Bytes))
		}
		info := WorkspaceInfo{Slots: make([]WorkspaceSlot, len(ws.Type)), DiffCount: ws.DiffCount}
		for ii, kind := range ws.Type {
			info.Slots[ii] = WorkspaceSlot{Kind: WorkspaceKind(kind), ByteWidth: ws.Bytes[ii]}
		}
		workspaces[tilingKey] = info
	}
	return workspaces, nil
}

func parseNormVars(raw map[string][]int) (map[int][]int, error) {
	vars := make(map[int][]int, len(raw))
	for key, values := range raw {
		tilingKey, err := parseKey("_norm_vars", key)
		if err != nil {
			return nil, err
		}
		vars[tilingKey] = slices.Clone(values)
	}
	return vars, nil
}

func parseConstSolution(raw *rawCompileInfo) (*ConstSolution, error) {
	if raw.ConstTilingKey == nil {
		return nil, configErrorf("_const_shape_post is set but _const_tiling_key is missing")
	}
	key := *raw.ConstTilingKey
	blockDim, found := raw.BlockDims[strconv.Itoa(key)]
	if !found {
		return nil, configErrorf("_block_dims has no entry for constant tiling key %d", key)
	}
	return &ConstSolution{
		TilingKey:      key,
		BlockDim:       blockDim,
		WorkspaceSizes: slices.Clone(raw.ConstWorkspaceSize),
	}, nil
}

// UBCapacity returns the buffer capacities for inputs of the given dtype.
func (c *CompileInfo) UBCapacity(dtype dtypes.DType) (UBCapacity, error) {
	width := int(dtype.Size())
	capacity, found := c.UBCapacities[width]
	if !found {
		return UBCapacity{}, configErrorf("_available_ub_size has no entry for dtype %s (group %d)", dtype, width)
	}
	return capacity, nil
}

// HasAfterReduceOutput returns whether some tensor computed after the reduction is written to external memory.
func (c *CompileInfo) HasAfterReduceOutput() bool {
	return c.ExistOutputAfterReduce || c.ExistWorkspaceAfterReduce
}
