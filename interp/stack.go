package interp

import (
	"github.com/hornet-go/hornet/translate"
	"github.com/hornet-go/hornet/value"
)

func opIconst(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	ec.push(value.To(ec.i32()))
	return false, value.Zero, nil
}

func opLconst(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	ec.push(value.To(ec.i64()))
	return false, value.Zero, nil
}

func opFconst(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	ec.push(value.To(ec.f32()))
	return false, value.Zero, nil
}

func opDconst(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	ec.push(value.To(ec.f64()))
	return false, value.Zero, nil
}

func opAconstNull(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	ec.push(value.Zero)
	return false, value.Zero, nil
}

// opRconst pushes a reference constant resolved at translate time (ldc of a
// String, §4.2); the bit pattern was already a Value when the emitter wrote
// it, so decoding is the same 8-byte read opLconst uses.
func opRconst(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	ec.push(value.To(ec.i64()))
	return false, value.Zero, nil
}

func opLoad(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	idx := ec.u16()
	ec.push(ec.local(idx))
	return false, value.Zero, nil
}

func opStore(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	idx := ec.u16()
	ec.setLocal(idx, ec.pop())
	return false, value.Zero, nil
}

// opPop discards the top cell (pop, §4.3).
func opPop(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	ec.pop()
	return false, value.Zero, nil
}

// opPop2 discards the top two cells. Every value, category-1 or category-2,
// occupies exactly one cell in this core (§3), so pop2 over a lone
// category-2 operand is not distinguished from pop2 over a pair of
// category-1 operands — an accepted simplification, not a full verifier.
func opPop2(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	ec.pop()
	ec.pop()
	return false, value.Zero, nil
}

func opDup(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	ec.push(ec.top())
	return false, value.Zero, nil
}

// opDupX1: ..., v2, v1 -> ..., v1, v2, v1.
func opDupX1(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	v1 := ec.pop()
	v2 := ec.pop()
	ec.push(v1)
	ec.push(v2)
	ec.push(v1)
	return false, value.Zero, nil
}

// opDupX2: ..., v3, v2, v1 -> ..., v1, v3, v2, v1.
func opDupX2(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	v1 := ec.pop()
	v2 := ec.pop()
	v3 := ec.pop()
	ec.push(v1)
	ec.push(v3)
	ec.push(v2)
	ec.push(v1)
	return false, value.Zero, nil
}

// opDup2: ..., v2, v1 -> ..., v2, v1, v2, v1.
func opDup2(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	v1 := ec.pop()
	v2 := ec.pop()
	ec.push(v2)
	ec.push(v1)
	ec.push(v2)
	ec.push(v1)
	return false, value.Zero, nil
}

// opDup2X1: ..., v3, v2, v1 -> ..., v2, v1, v3, v2, v1.
func opDup2X1(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	v1 := ec.pop()
	v2 := ec.pop()
	v3 := ec.pop()
	ec.push(v2)
	ec.push(v1)
	ec.push(v3)
	ec.push(v2)
	ec.push(v1)
	return false, value.Zero, nil
}

func opSwap(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	v1 := ec.pop()
	v2 := ec.pop()
	ec.push(v1)
	ec.push(v2)
	return false, value.Zero, nil
}
