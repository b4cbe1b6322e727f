package shapes

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
)

func TestShape(t *testing.T) {
	invalidShape := Invalid()
	if invalidShape.Ok() {
		t.Error("Invalid().Ok() should be false")
	}

	shape0 := Make(dtypes.Float64)
	if !shape0.Ok() {
		t.Error("shape0.Ok() should be true")
	}
	if !shape0.IsScalar() {
		t.Error("shape0.IsScalar() should be true")
	}
	if shape0.Size() != 1 {
		t.Errorf("shape0.Size() = %d, want 1", shape0.Size())
	}
	if shape0.Memory() != 8 {
		t.Errorf("shape0.Memory() = %d, want 8", shape0.Memory())
	}

	shape1 := Make(dtypes.Float16, 4, 3, 2)
	if shape1.IsScalar() {
		t.Error("shape1.IsScalar() should be false")
	}
	if shape1.Rank() != 3 {
		t.Errorf("shape1.Rank() = %d, want 3", shape1.Rank())
	}
	if shape1.Size() != 4*3*2 {
		t.Errorf("shape1.Size() = %d, want %d", shape1.Size(), 4*3*2)
	}
	if shape1.Memory() != 2*4*3*2 {
		t.Errorf("shape1.Memory() = %d, want %d", shape1.Memory(), 2*4*3*2)
	}
	if shape1.HasZeroDim() {
		t.Error("shape1.HasZeroDim() should be false")
	}
	if !Make(dtypes.Float32, 4, 0).HasZeroDim() {
		t.Error("HasZeroDim() should be true for (Float32)[4 0]")
	}
	if got := shape1.String(); got != "(Float16)[4 3 2]" {
		t.Errorf("shape1.String() = %q", got)
	}

	clone := shape1.Clone()
	clone.Dimensions[0] = 7
	if shape1.Dimensions[0] != 4 {
		t.Error("Clone() should not share dimensions")
	}
	if shape1.Equal(clone) {
		t.Error("shapes with different dimensions should not be equal")
	}
}

func panics(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic, but code did not panic")
		}
	}()
	f()
}

func TestDim(t *testing.T) {
	shape := Make(dtypes.Float32, 4, 3, 2)
	if d := shape.Dim(0); d != 4 {
		t.Errorf("shape.Dim(0) = %d, want 4", d)
	}
	if d := shape.Dim(-1); d != 2 {
		t.Errorf("shape.Dim(-1) = %d, want 2", d)
	}
	if d := shape.Dim(-3); d != 4 {
		t.Errorf("shape.Dim(-3) = %d, want 4", d)
	}
	panics(t, func() { _ = shape.Dim(3) })
	panics(t, func() { _ = shape.Dim(-4) })
	panics(t, func() { _ = Make(dtypes.Float32, 2, -1) })
}

func TestBlockSize(t *testing.T) {
	for _, tc := range []struct {
		dtype dtypes.DType
		want  int
	}{
		{dtypes.Float16, 16},
		{dtypes.Float32, 8},
		{dtypes.Int8, 32},
		{dtypes.Float64, 4},
	} {
		if got := Make(tc.dtype, 1).BlockSize(32); got != tc.want {
			t.Errorf("BlockSize(32) for %s = %d, want %d", tc.dtype, got, tc.want)
		}
	}
	if got := Invalid().BlockSize(32); got != 0 {
		t.Errorf("BlockSize(32) for invalid dtype = %d, want 0", got)
	}
}

func TestIntsFromAny(t *testing.T) {
	got, err := IntsFromAny([]int64{0, -1})
	if err != nil {
		t.Fatalf("IntsFromAny failed: %v", err)
	}
	if len(got) != 2 || got[0] != 0 || got[1] != -1 {
		t.Errorf("IntsFromAny([]int64{0, -1}) = %v", got)
	}

	got, err = IntsFromAny([]any{float64(2), 3})
	if err != nil {
		t.Fatalf("IntsFromAny failed: %v", err)
	}
	if len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("IntsFromAny([]any{2.0, 3}) = %v", got)
	}

	got, err = IntsFromAny(int32(5))
	if err != nil || len(got) != 1 || got[0] != 5 {
		t.Errorf("IntsFromAny(int32(5)) = %v, %v", got, err)
	}

	if _, err = IntsFromAny([]float32{1.5}); err == nil {
		t.Error("non-integral float should have returned an error")
	}
	if _, err = IntsFromAny("axes"); err == nil {
		t.Error("string should have returned an error")
	}
	if _, err = IntsFromAny(nil); err == nil {
		t.Error("nil should have returned an error")
	}
}
