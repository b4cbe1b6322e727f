// Package shapeinference calculates the shape resulting from the IR operations emitted when lowering graph
// nodes, and validates their inputs.
//
// The elementwise operations don't change the shape, and the normalizations (Softmax, LayerNorm) keep the
// shape of their input. Reductions get their own shape inference function.
package shapeinference

import (
	"slices"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/normtiling/internal/utils"
	"github.com/gomlx/normtiling/types"
	"github.com/gomlx/normtiling/types/shapes"
	"github.com/pkg/errors"
)

var (
	// StandardUnaryOperations include all elementwise operations with a single operand, whose output shape is
	// the same as the input.
	StandardUnaryOperations = utils.SetWith(
		"Identity",
		"Abs",
		"Neg",
		"Square",
		"Sqrt",
		"Rsqrt",
		"Exp",
		"Log",
	)

	// SignedNumberOperations don't accept unsigned integers.
	SignedNumberOperations = utils.SetWith("Neg")

	// FloatOperations operate only on floats.
	FloatOperations = utils.SetWith(
		"Sqrt",
		"Rsqrt",
		"Exp",
		"Log",
	)
)

// UnaryOp checks the validity of the data type for StandardUnaryOperations and returns either an error or
// the output shape, which is the same as the operand.
func UnaryOp(opType string, operand shapes.Shape) (output shapes.Shape, err error) {
	if !StandardUnaryOperations.Has(opType) {
		err = errors.Errorf("operation %s is not in the StandardUnaryOperations set, cannot process it with UnaryOp", opType)
		return
	}
	if !operand.Ok() {
		err = errors.Errorf("invalid shape %s for UnaryOp %s", operand, opType)
		return
	}
	dtype := operand.DType
	if opType != "Identity" && !(dtype.IsInt() || dtype.IsFloat()) {
		err = errors.Errorf("UnaryOp %s must have a number (Int32, Float16, ...) data type as input, got %s", opType, operand)
		return
	}
	if SignedNumberOperations.Has(opType) && dtype.IsUnsigned() {
		err = errors.Errorf("signed UnaryOp %s must have a signed data type as input, got %s", opType, operand)
		return
	}
	if FloatOperations.Has(opType) && !dtype.IsFloat() {
		err = errors.Errorf("float UnaryOp %s must have a float (Float16, Float32, ...) data type as input, got %s", opType, operand)
		return
	}
	output = operand.Clone()
	return
}

// AdjustAxisToRank returns a positive axis, adjusting negative numbers to the correct rank.
func AdjustAxisToRank(axis, rank int) (int, error) {
	if axis < -rank || axis >= rank {
		return -1, errors.Wrapf(types.ErrAttribute, "axis %d is out of range for the rank %d", axis, rank)
	}
	if axis < 0 {
		axis += rank
	}
	return axis, nil
}

// Reduce returns the output shape of reducing operand over axes, and the axes normalized to positive values
// and sorted.
//
// If axes is empty, all axes are reduced. With keepDims the reduced axes are kept with dimension 1.
func Reduce(operand shapes.Shape, axes []int, keepDims bool) (output shapes.Shape, normalized []int, err error) {
	if !operand.Ok() {
		err = errors.Errorf("invalid shape %s for Reduce", operand)
		return
	}
	if operand.DType == dtypes.Bool {
		err = errors.Errorf("Reduce requires a number data type as input, got %s", operand)
		return
	}
	rank := operand.Rank()
	if len(axes) == 0 {
		normalized = make([]int, rank)
		for ii := range normalized {
			normalized[ii] = ii
		}
	} else {
		normalized = make([]int, len(axes))
		axesSet := utils.MakeSet[int](len(axes))
		for ii, axis := range axes {
			adjustedAxis, adjustErr := AdjustAxisToRank(axis, rank)
			if adjustErr != nil {
				err = errors.WithMessagef(adjustErr, "invalid value for axes[%d]=%d for Reduce, operand=%s", ii, axis, operand)
				return
			}
			if axesSet.Has(adjustedAxis) {
				err = errors.Wrapf(types.ErrAttribute, "duplicate value for axes[%d]=%d for Reduce, axes=%v", ii, axis, axes)
				return
			}
			axesSet.Insert(adjustedAxis)
			normalized[ii] = adjustedAxis
		}
		slices.Sort(normalized)
	}

	reduced := utils.SetWith(normalized...)
	dims := make([]int, 0, rank)
	for axis, dim := range operand.Dimensions {
		switch {
		case !reduced.Has(axis):
			dims = append(dims, dim)
		case keepDims:
			dims = append(dims, 1)
		}
	}
	output = shapes.Make(operand.DType, dims...)
	return
}

// Normalize returns the output shape of a normalization (Softmax, LogSoftmax, LayerNorm) of operand over the
// axes from beginAxis to the last one, which is the same as the operand.
//
// It returns the normalized axes, always contiguous and ending at the last axis.
func Normalize(operand shapes.Shape, beginAxis int) (output shapes.Shape, axes []int, err error) {
	if !operand.Ok() || operand.Rank() == 0 {
		err = errors.Errorf("invalid shape %s for a normalization, it requires at least one axis", operand)
		return
	}
	if !operand.DType.IsFloat() {
		err = errors.Errorf("normalizations require a float (Float16, Float32, ...) data type as input, got %s", operand)
		return
	}
	begin, err := AdjustAxisToRank(beginAxis, operand.Rank())
	if err != nil {
		return
	}
	axes = make([]int, 0, operand.Rank()-begin)
	for axis := begin; axis < operand.Rank(); axis++ {
		axes = append(axes, axis)
	}
	output = operand.Clone()
	return
}

// Softmax returns the output shape of Softmax or LogSoftmax of operand over a single axis, and the axis
// adjusted to a positive value.
func Softmax(operand shapes.Shape, axis int) (output shapes.Shape, adjustedAxis int, err error) {
	if output, _, err = Normalize(operand, -1); err != nil {
		return
	}
	adjustedAxis, err = AdjustAxisToRank(axis, operand.Rank())
	if err != nil {
		output = shapes.Invalid()
	}
	return
}
