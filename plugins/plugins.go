// Package plugins translates ONNX reduction and normalization nodes into the NPU IR operators whose tiling is
// computed by normtiling.
//
// Each ONNX op type is handled by a Plugin, looked up in a Registry. Registries are built explicitly (see
// NewDefaultRegistry) and passed around: there is no global registration.
package plugins

import (
	"fmt"
	"slices"
	"sync"

	"github.com/gomlx/normtiling"
	"github.com/gomlx/normtiling/attributes"
	"github.com/gomlx/normtiling/types/shapes"
	"github.com/pkg/errors"
)

// Node is one ONNX graph node, with its attributes already decoded.
type Node struct {
	OpType     string
	Name       string
	Attributes attributes.Attributes
}

// String implements fmt.Stringer.
func (n *Node) String() string {
	return fmt.Sprintf("ONNX %s(%q)", n.OpType, n.Name)
}

// Config is the strongly typed configuration parsed from a Node's attributes.
type Config struct {
	OpType, Name string

	// Axes as given in the node (they may be negative). Empty means all axes for reductions.
	Axes []int

	KeepDims          bool
	NoopWithEmptyAxes bool

	// Epsilon is only used by normalizations.
	Epsilon float32
}

// Subgraph is the list of IR operators a node is lowered to, in execution order, and the shape of its output.
type Subgraph struct {
	Operators []*normtiling.Operator
	Output    shapes.Shape
}

// Plugin translates one ONNX op type.
type Plugin interface {
	// ParseAttributes decodes and validates the attributes of node.
	ParseAttributes(node *Node) (*Config, error)

	// LowerToSubgraph creates the IR operators for an input of the given shape.
	LowerToSubgraph(config *Config, input shapes.Shape) (*Subgraph, error)
}

// Registry maps ONNX op types to their Plugin.
//
// Registration must be finished before lookups start. Lookups can be concurrent.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]Plugin)}
}

// Register a plugin for opType. It fails if opType is already registered.
func (r *Registry) Register(opType string, plugin Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, found := r.plugins[opType]; found {
		return errors.Errorf("ONNX op type %q already has a registered plugin", opType)
	}
	r.plugins[opType] = plugin
	return nil
}

// Lookup returns the plugin registered for opType.
func (r *Registry) Lookup(opType string) (plugin Plugin, found bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	plugin, found = r.plugins[opType]
	return
}

// OpTypes returns the registered op types, sorted.
func (r *Registry) OpTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	opTypes := make([]string, 0, len(r.plugins))
	for opType := range r.plugins {
		opTypes = append(opTypes, opType)
	}
	slices.Sort(opTypes)
	return opTypes
}

// Lower parses node's attributes and lowers it for the given input shape, using the plugin registered for
// its op type.
func (r *Registry) Lower(node *Node, input shapes.Shape) (*Subgraph, error) {
	plugin, found := r.Lookup(node.OpType)
	if !found {
		return nil, errors.Errorf("no plugin registered for %s, supported op types: %v", node, r.OpTypes())
	}
	config, err := plugin.ParseAttributes(node)
	if err != nil {
		return nil, err
	}
	subgraph, err := plugin.LowerToSubgraph(config, input)
	if err != nil {
		return nil, errors.WithMessagef(err, "lowering %s", node)
	}
	return subgraph, nil
}

// NewDefaultRegistry returns a Registry with the plugins for all the supported reduction and normalization ops.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for opType, plugin := range map[string]Plugin{
		"ReduceSum":          &reducePlugin{irOpType: "ReduceSumD"},
		"ReduceMean":         &reducePlugin{irOpType: "ReduceMeanD"},
		"ReduceMax":          &reducePlugin{irOpType: "ReduceMaxD"},
		"ReduceMin":          &reducePlugin{irOpType: "ReduceMinD"},
		"ReduceProd":         &reducePlugin{irOpType: "ReduceProdD"},
		"ReduceL2":           &reducePlugin{irOpType: "ReduceSumD", pre: "Square", post: "Sqrt"},
		"ReduceLogSumExp":    &reducePlugin{irOpType: "ReduceSumD", pre: "Exp", post: "Log"},
		"Softmax":            &softmaxPlugin{irOpType: "SoftmaxV2"},
		"LogSoftmax":         &softmaxPlugin{irOpType: "LogSoftmaxV2"},
		"LayerNormalization": &layerNormPlugin{},
	} {
		if err := r.Register(opType, plugin); err != nil {
			panic(err)
		}
	}
	return r
}
