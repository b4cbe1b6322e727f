package compileinfo

// VarKind tells which computed value a kernel runtime variable refers to.
type VarKind int

const (
	// VarDim is a dimension of the (fused) input shape.
	VarDim VarKind = iota

	// VarBlockFactor is the block tiling factor.
	VarBlockFactor

	// VarUBFactor is the ub tiling factor.
	VarUBFactor
)

// Variable numbers are encoded by range: base + axis index.
const (
	varDimBase         = 20000
	varBlockFactorBase = 30000
	varUBFactorBase    = 40000
	varRangeSize       = 10000
)

// DecodeVar decodes a runtime variable number into its kind and the axis it refers to.
func DecodeVar(v int) (kind VarKind, axis int, err error) {
	switch {
	case v >= varDimBase && v < varDimBase+varRangeSize:
		return VarDim, v - varDimBase, nil
	case v >= varBlockFactorBase && v < varBlockFactorBase+varRangeSize:
		return VarBlockFactor, v - varBlockFactorBase, nil
	case v >= varUBFactorBase && v < varUBFactorBase+varRangeSize:
		return VarUBFactor, v - varUBFactorBase, nil
	}
	err = configErrorf("runtime variable %d is not in any known range (dims 2xxxx, block factor 3xxxx, "+
		"ub factor 4xxxx)", v)
	return
}
