package compileinfo

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

// AppendConstSolution persists a constant-shape solution into a compile-info blob: it sets "_const_shape_post",
// "_const_tiling_key", "_block_dims" and "_const_workspace_size", keeping every other field as is.
//
// The returned blob parses into a CompileInfo whose ConstSolution equals solution.
func AppendConstSolution(blob []byte, solution ConstSolution) ([]byte, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(blob, &fields); err != nil {
		return nil, errors.Wrapf(err, "failed to decode compile info to persist constant solution")
	}
	if fields == nil {
		fields = make(map[string]json.RawMessage)
	}
	blockDims := map[string]int{}
	if raw, found := fields["_block_dims"]; found {
		if err := json.Unmarshal(raw, &blockDims); err != nil {
			return nil, errors.Wrapf(err, "failed to decode _block_dims")
		}
	}
	blockDims[strconv.Itoa(solution.TilingKey)] = solution.BlockDim

	set := func(name string, value any) error {
		encoded, err := json.Marshal(value)
		if err != nil {
			return errors.Wrapf(err, "failed to encode %s", name)
		}
		fields[name] = encoded
		return nil
	}
	workspaceSizes := solution.WorkspaceSizes
	if workspaceSizes == nil {
		workspaceSizes = []int{}
	}
	for name, value := range map[string]any{
		"_is_const":             true,
		"_const_shape_post":     true,
		"_const_tiling_key":     solution.TilingKey,
		"_block_dims":           blockDims,
		"_const_workspace_size": workspaceSizes,
	} {
		if err := set(name, value); err != nil {
			return nil, err
		}
	}
	return json.Marshal(fields)
}
