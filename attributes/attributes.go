// Package attributes decodes operator attributes once, at the boundary with the operator graph, into a tagged
// union (Value) with a fixed set of kinds. The tiling engine only consumes the typed accessors.
package attributes

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gomlx/normtiling/types"
	"github.com/gomlx/normtiling/types/shapes"
	"github.com/pkg/errors"
)

// ValueKind is the kind of attribute value.
type ValueKind int

//go:generate go tool enumer -type=ValueKind -trimprefix=Kind -output=gen_valuekind_enumer.go attributes.go

const (
	KindInt ValueKind = iota
	KindInts
	KindFloat
	KindFloats
	KindString
	KindStrings
)

// ParseKindName converts the attribute type names used in compile-info blobs ("int", "list_int", "float",
// "list_float", "str", "list_str") to a ValueKind.
func ParseKindName(name string) (ValueKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "int", "int32", "int64":
		return KindInt, nil
	case "list_int", "listint", "list_int32", "list_int64", "ints":
		return KindInts, nil
	case "float", "float32":
		return KindFloat, nil
	case "list_float", "listfloat", "floats":
		return KindFloats, nil
	case "str", "string":
		return KindString, nil
	case "list_str", "list_string", "strings":
		return KindStrings, nil
	}
	return 0, errors.Wrapf(types.ErrAttribute, "unknown attribute type name %q", name)
}

// Value is one decoded attribute. Only the field matching Kind is set.
type Value struct {
	Kind ValueKind

	I       int
	Ints    []int
	F       float32
	Floats  []float32
	S       string
	Strings []string
}

// Int creates an integer attribute value.
func Int(v int) Value { return Value{Kind: KindInt, I: v} }

// IntList creates a list of integers attribute value.
func IntList(v ...int) Value { return Value{Kind: KindInts, Ints: v} }

// Float creates a float attribute value.
func Float(v float32) Value { return Value{Kind: KindFloat, F: v} }

// String creates a string attribute value.
func String(v string) Value { return Value{Kind: KindString, S: v} }

// FromAny decodes a Go value into a Value, choosing the kind from the Go type:
// integers map to KindInt, slices of integers to KindInts, floats to KindFloat, etc.
func FromAny(v any) (Value, error) {
	if v == nil {
		return Value{}, errors.Wrap(types.ErrAttribute, "cannot decode nil attribute")
	}
	if value, ok := v.(Value); ok {
		return value, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		ints, err := shapes.IntsFromAny(v)
		if err != nil {
			return Value{}, errors.Wrap(types.ErrAttribute, err.Error())
		}
		return Int(ints[0]), nil
	case reflect.Float32, reflect.Float64:
		return Float(float32(rv.Float())), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Slice, reflect.Array:
		elemKind := rv.Type().Elem().Kind()
		switch elemKind {
		case reflect.Float32, reflect.Float64:
			floats := make([]float32, rv.Len())
			for ii := range floats {
				floats[ii] = float32(rv.Index(ii).Float())
			}
			return Value{Kind: KindFloats, Floats: floats}, nil
		case reflect.String:
			strs := make([]string, rv.Len())
			for ii := range strs {
				strs[ii] = rv.Index(ii).String()
			}
			return Value{Kind: KindStrings, Strings: strs}, nil
		}
		ints, err := shapes.IntsFromAny(v)
		if err != nil {
			return Value{}, errors.Wrapf(types.ErrAttribute, "cannot decode %T as a list attribute: %v", v, err)
		}
		return IntList(ints...), nil
	}
	return Value{}, errors.Wrapf(types.ErrAttribute, "unsupported attribute value type %T", v)
}

// String implements fmt.Stringer.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("%d", v.I)
	case KindInts:
		return fmt.Sprintf("%v", v.Ints)
	case KindFloat:
		return fmt.Sprintf("%g", v.F)
	case KindFloats:
		return fmt.Sprintf("%v", v.Floats)
	case KindString:
		return fmt.Sprintf("%q", v.S)
	case KindStrings:
		return fmt.Sprintf("%q", v.Strings)
	}
	return fmt.Sprintf("<invalid attribute kind %d>", v.Kind)
}

// Attributes of an operator instance, by name.
type Attributes map[string]Value

// Get returns the attribute with the given name and checks its kind.
func (a Attributes) Get(name string, kind ValueKind) (Value, error) {
	value, found := a[name]
	if !found {
		return Value{}, errors.Wrapf(types.ErrAttribute, "attribute %q not found", name)
	}
	if value.Kind != kind {
		return Value{}, errors.Wrapf(types.ErrAttribute, "attribute %q has kind %s, expected %s", name, value.Kind, kind)
	}
	return value, nil
}

// GetInt returns the integer attribute with the given name.
func (a Attributes) GetInt(name string) (int, error) {
	value, err := a.Get(name, KindInt)
	return value.I, err
}

// GetInts returns the list of integers attribute with the given name.
func (a Attributes) GetInts(name string) ([]int, error) {
	value, err := a.Get(name, KindInts)
	return value.Ints, err
}

// GetIntOr returns the integer attribute with the given name, or defaultValue if it is not set.
func (a Attributes) GetIntOr(name string, defaultValue int) (int, error) {
	if _, found := a[name]; !found {
		return defaultValue, nil
	}
	return a.GetInt(name)
}
