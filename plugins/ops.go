package plugins

import (
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/normtiling"
	"github.com/gomlx/normtiling/attributes"
	"github.com/gomlx/normtiling/internal/utils"
	"github.com/gomlx/normtiling/shapeinference"
	"github.com/gomlx/normtiling/types"
	"github.com/gomlx/normtiling/types/shapes"
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// irOperator creates an IR operator named after the ONNX node.
func irOperator(config *Config, opType, suffix string, input shapes.Shape,
	attrs attributes.Attributes) *normtiling.Operator {
	name := config.Name
	if suffix != "" {
		name += "_" + suffix
	}
	return &normtiling.Operator{
		Type:       opType,
		Name:       utils.NormalizeIdentifier(name),
		Inputs:     []shapes.Shape{input},
		Attributes: attrs,
	}
}

// reducePlugin lowers ONNX Reduce* ops, optionally surrounded by an elementwise op before (pre) and after
// (post) the reduction.
//
// https://onnx.ai/onnx/operators/onnx__ReduceSum.html
type reducePlugin struct {
	irOpType  string
	pre, post string
}

func (p *reducePlugin) ParseAttributes(node *Node) (*Config, error) {
	return parseWith(node, func() *Config {
		return &Config{
			OpType:            node.OpType,
			Name:              node.Name,
			Axes:              getIntsAttrOr(node, "axes", nil),
			KeepDims:          getBoolAttrOr(node, "keepdims", true),
			NoopWithEmptyAxes: getBoolAttrOr(node, "noop_with_empty_axes", false),
		}
	})
}

func (p *reducePlugin) LowerToSubgraph(config *Config, input shapes.Shape) (*Subgraph, error) {
	if len(config.Axes) == 0 && config.NoopWithEmptyAxes {
		output, err := shapeinference.UnaryOp("Identity", input)
		if err != nil {
			return nil, err
		}
		return &Subgraph{
			Operators: []*normtiling.Operator{irOperator(config, "Identity", "", input, nil)},
			Output:    output,
		}, nil
	}

	var ops []*normtiling.Operator
	reduceInput := input
	if p.pre != "" {
		var err error
		if reduceInput, err = shapeinference.UnaryOp(p.pre, input); err != nil {
			return nil, err
		}
		ops = append(ops, irOperator(config, p.pre, "pre", input, nil))
	}
	output, axes, err := shapeinference.Reduce(reduceInput, config.Axes, config.KeepDims)
	if err != nil {
		return nil, err
	}
	keepDims := 0
	if config.KeepDims {
		keepDims = 1
	}
	ops = append(ops, irOperator(config, p.irOpType, "", reduceInput, attributes.Attributes{
		"axes":      attributes.IntList(axes...),
		"keep_dims": attributes.Int(keepDims),
	}))
	if p.post != "" {
		if _, err = shapeinference.UnaryOp(p.post, output); err != nil {
			return nil, err
		}
		ops = append(ops, irOperator(config, p.post, "post", output, nil))
	}
	return &Subgraph{Operators: ops, Output: output}, nil
}

// softmaxPlugin lowers ONNX Softmax and LogSoftmax (opset >= 13: a single axis, default -1).
//
// https://onnx.ai/onnx/operators/onnx__Softmax.html
type softmaxPlugin struct {
	irOpType string
}

func (p *softmaxPlugin) ParseAttributes(node *Node) (*Config, error) {
	return parseWith(node, func() *Config {
		return &Config{
			OpType: node.OpType,
			Name:   node.Name,
			Axes:   []int{getIntAttrOr(node, "axis", -1)},
		}
	})
}

func (p *softmaxPlugin) LowerToSubgraph(config *Config, input shapes.Shape) (*Subgraph, error) {
	output, axis, err := shapeinference.Softmax(input, config.Axes[0])
	if err != nil {
		return nil, err
	}
	op := irOperator(config, p.irOpType, "", input, attributes.Attributes{"axes": attributes.IntList(axis)})
	return &Subgraph{Operators: []*normtiling.Operator{op}, Output: output}, nil
}

// layerNormPlugin lowers ONNX LayerNormalization: normalization over the axes from "axis" (default -1) to the
// last one.
//
// https://onnx.ai/onnx/operators/onnx__LayerNormalization.html
type layerNormPlugin struct{}

func (p *layerNormPlugin) ParseAttributes(node *Node) (*Config, error) {
	return parseWith(node, func() *Config {
		epsilon := getFloatAttrOr(node, "epsilon", 1e-5)
		if epsilon <= 0 {
			attributePanicf("LayerNormalization %q: epsilon must be > 0, got %g", node.Name, epsilon)
		}
		return &Config{
			OpType:  node.OpType,
			Name:    node.Name,
			Axes:    []int{getIntAttrOr(node, "axis", -1)},
			Epsilon: epsilon,
		}
	})
}

func (p *layerNormPlugin) LowerToSubgraph(config *Config, input shapes.Shape) (*Subgraph, error) {
	output, axes, err := shapeinference.Normalize(input, config.Axes[0])
	if err != nil {
		return nil, err
	}
	if input.DType == dtypes.Float16 && float16.Fromfloat32(config.Epsilon).Float32() == 0 {
		return nil, errors.Wrapf(types.ErrAttribute, "LayerNormalization %q: epsilon %g underflows to 0 in %s",
			config.Name, config.Epsilon, input.DType)
	}
	op := irOperator(config, "LayerNorm", "", input, attributes.Attributes{
		"begin_norm_axis": attributes.Int(axes[0]),
		"axes":            attributes.IntList(axes...),
		"epsilon":         attributes.Float(config.Epsilon),
	})
	return &Subgraph{Operators: []*normtiling.Operator{op}, Output: output}, nil
}
