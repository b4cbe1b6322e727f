package utils

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"
)

func TestDTypeFromName(t *testing.T) {
	assert.Equal(t, dtypes.Float16, DTypeFromName("float16"))
	assert.Equal(t, dtypes.Float16, DTypeFromName(" FP16 "))
	assert.Equal(t, dtypes.Float32, DTypeFromName("f32"))
	assert.Equal(t, dtypes.BFloat16, DTypeFromName("bf16"))
	assert.Equal(t, dtypes.Int8, DTypeFromName("int8"))
	assert.Equal(t, dtypes.InvalidDType, DTypeFromName("float8"))
}
