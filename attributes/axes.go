package attributes

import (
	"github.com/gomlx/normtiling/internal/utils"
	"github.com/gomlx/normtiling/types"
	"github.com/pkg/errors"
)

// AxesSpec tells where the reduction axes of an operator are read from at tiling time: the attribute
// Name, holding either a single axis (KindInt) or a list of axes (KindInts).
type AxesSpec struct {
	Name string
	Kind ValueKind
}

// ReadAxes reads the axes attribute described by axesSpec and normalizes it for the given rank.
func ReadAxes(attrs Attributes, axesSpec AxesSpec, rank int) ([]int, error) {
	var axes []int
	switch axesSpec.Kind {
	case KindInt:
		axis, err := attrs.GetInt(axesSpec.Name)
		if err != nil {
			return nil, err
		}
		axes = []int{axis}
	case KindInts:
		var err error
		axes, err = attrs.GetInts(axesSpec.Name)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errors.Wrapf(types.ErrAttribute, "axes attribute %q must be of kind Int or Ints, got %s",
			axesSpec.Name, axesSpec.Kind)
	}
	return NormalizeAxes(axes, rank)
}

// NormalizeAxes maps negative axes to axis+rank and checks every axis is in [-rank, rank) and
// that no axis is repeated.
func NormalizeAxes(axes []int, rank int) ([]int, error) {
	normalized := make([]int, len(axes))
	seen := utils.MakeSet[int](len(axes))
	for ii, axis := range axes {
		if axis < -rank || axis >= rank {
			return nil, errors.Wrapf(types.ErrAttribute, "axis %d out of range [%d, %d)", axis, -rank, rank)
		}
		if axis < 0 {
			axis += rank
		}
		if seen.Has(axis) {
			return nil, errors.Wrapf(types.ErrAttribute, "axis %d repeated in %v", axis, axes)
		}
		seen.Insert(axis)
		normalized[ii] = axis
	}
	return normalized, nil
}
