package plugins

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/normtiling/attributes"
	"github.com/gomlx/normtiling/types"
	"github.com/pkg/errors"
)

// attributePanicf panics with an error wrapping types.ErrAttribute. It is caught by parseWith.
func attributePanicf(format string, args ...any) {
	panic(errors.Wrapf(types.ErrAttribute, format, args...))
}

// parseWith runs parse converting attribute panics into an error.
func parseWith(node *Node, parse func() *Config) (config *Config, err error) {
	err = exceptions.TryCatch[error](func() { config = parse() })
	if err != nil {
		err = errors.WithMessagef(err, "parsing attributes of %s", node)
		config = nil
	}
	return
}

// getNodeAttr returns the given node attribute checking its kind. It returns false if it is not set.
func getNodeAttr(node *Node, name string, kind attributes.ValueKind) (attributes.Value, bool) {
	value, found := node.Attributes[name]
	if !found {
		return value, false
	}
	if value.Kind != kind {
		attributePanicf("attribute %q of %s has kind %s, expected %s", name, node, value.Kind, kind)
	}
	return value, true
}

// getIntAttrOr gets an integer attribute for node if present or return the given defaultValue.
// It panics if the attribute is present but is of the wrong kind.
func getIntAttrOr(node *Node, name string, defaultValue int) int {
	value, found := getNodeAttr(node, name, attributes.KindInt)
	if !found {
		return defaultValue
	}
	return value.I
}

// getBoolAttrOr gets a boolean attribute (ONNX uses an int value of 0 or 1) for node if present or return
// the given defaultValue.
func getBoolAttrOr(node *Node, name string, defaultValue bool) bool {
	defaultInt := 0
	if defaultValue {
		defaultInt = 1
	}
	return getIntAttrOr(node, name, defaultInt) != 0
}

// getIntsAttrOr gets an integer list attribute for node if present or return the given defaultValues.
func getIntsAttrOr(node *Node, name string, defaultValues []int) []int {
	value, found := getNodeAttr(node, name, attributes.KindInts)
	if !found {
		return defaultValues
	}
	return value.Ints
}

// getFloatAttrOr gets a float attribute for node if present or return the given defaultValue.
func getFloatAttrOr(node *Node, name string, defaultValue float32) float32 {
	value, found := getNodeAttr(node, name, attributes.KindFloat)
	if !found {
		return defaultValue
	}
	return value.F
}
