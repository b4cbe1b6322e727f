package utils

import (
	"strings"

	"github.com/gomlx/gopjrt/dtypes"
)

// DTypeFromName converts the names used by the operator graph and by compile-info blobs
// (e.g. "float16", "fp16", "f16") to a dtypes.DType.
//
// It returns dtypes.InvalidDType if the name is not known.
func DTypeFromName(name string) dtypes.DType {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "float64", "fp64", "f64", "double":
		return dtypes.Float64
	case "float32", "fp32", "f32", "float":
		return dtypes.Float32
	case "float16", "fp16", "f16", "half":
		return dtypes.Float16
	case "bfloat16", "bf16":
		return dtypes.BFloat16
	case "int64", "i64", "s64":
		return dtypes.Int64
	case "int32", "i32", "s32":
		return dtypes.Int32
	case "int16", "i16", "s16":
		return dtypes.Int16
	case "int8", "i8", "s8":
		return dtypes.Int8
	case "uint64", "u64", "ui64":
		return dtypes.Uint64
	case "uint32", "u32", "ui32":
		return dtypes.Uint32
	case "uint16", "u16", "ui16":
		return dtypes.Uint16
	case "uint8", "u8", "ui8":
		return dtypes.Uint8
	case "bool", "i1":
		return dtypes.Bool
	default:
		return dtypes.InvalidDType
	}
}
