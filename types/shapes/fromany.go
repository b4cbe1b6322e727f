package shapes

import (
	"math"
	"reflect"

	"github.com/pkg/errors"
)

// IntsFromAny converts a Go "any" value holding a list of dimensions or axes to []int.
// Accepted values are integer scalars, slices of integers, and slices of "any" holding integers or
// integral float64 values (as decoded by encoding/json).
//
// Example:
//
//	axes, _ := shapes.IntsFromAny([]int64{0, -1}) // Returns []int{0, -1}
func IntsFromAny(v any) (values []int, err error) {
	if v == nil {
		return nil, errors.New("cannot convert nil to a list of ints")
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		// A scalar is a list of one element.
		value, err := intFromValue(rv)
		if err != nil {
			return nil, err
		}
		return []int{value}, nil
	}
	values = make([]int, rv.Len())
	for ii := range values {
		values[ii], err = intFromValue(rv.Index(ii))
		if err != nil {
			return nil, errors.WithMessagef(err, "element #%d of %T", ii, v)
		}
	}
	return
}

func intFromValue(v reflect.Value) (int, error) {
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return 0, errors.New("cannot convert nil to int")
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := v.Uint()
		if u > math.MaxInt {
			return 0, errors.Errorf("value %d overflows int", u)
		}
		return int(u), nil
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
			return 0, errors.Errorf("value %g is not an integer", f)
		}
		return int(f), nil
	default:
		return 0, errors.Errorf("cannot convert type %q to int", v.Type())
	}
}
