package plugins

import (
	"bytes"
	"encoding/json"

	"github.com/gomlx/normtiling/attributes"
	"github.com/pkg/errors"
)

// rawNode is the JSON description of a node, as exported from an ONNX graph.
type rawNode struct {
	OpType     string         `json:"op_type"`
	Name       string         `json:"name"`
	Attributes map[string]any `json:"attributes"`
}

// ParseNode decodes a JSON node description, e.g.:
//
//	{"op_type": "ReduceSum", "name": "sum0", "attributes": {"axes": [-1], "keepdims": 0}}
//
// Attribute values are decoded to their attributes.Value: whole numbers become integers.
func ParseNode(data []byte) (*Node, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var raw rawNode
	if err := decoder.Decode(&raw); err != nil {
		return nil, errors.Wrapf(err, "failed to decode node description")
	}
	if raw.OpType == "" {
		return nil, errors.New("node description is missing \"op_type\"")
	}
	node := &Node{OpType: raw.OpType, Name: raw.Name, Attributes: make(attributes.Attributes, len(raw.Attributes))}
	for name, v := range raw.Attributes {
		value, err := attributes.FromAny(fromJSON(v))
		if err != nil {
			return nil, errors.WithMessagef(err, "attribute %q of %s", name, node)
		}
		node.Attributes[name] = value
	}
	return node, nil
}

// fromJSON converts numbers decoded as json.Number to int64 or float64, and lists to typed slices.
func fromJSON(v any) any {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		f, _ := v.Float64()
		return f
	case []any:
		if len(v) == 0 {
			return []int64{}
		}
		switch fromJSON(v[0]).(type) {
		case int64:
			ints := make([]int64, 0, len(v))
			for _, e := range v {
				i, ok := fromJSON(e).(int64)
				if !ok {
					return fromJSONFloats(v)
				}
				ints = append(ints, i)
			}
			return ints
		case float64:
			return fromJSONFloats(v)
		case string:
			strs := make([]string, len(v))
			for ii, e := range v {
				strs[ii], _ = e.(string)
			}
			return strs
		}
	}
	return v
}

func fromJSONFloats(v []any) []float64 {
	floats := make([]float64, len(v))
	for ii, e := range v {
		if n, ok := e.(json.Number); ok {
			floats[ii], _ = n.Float64()
		}
	}
	return floats
}
