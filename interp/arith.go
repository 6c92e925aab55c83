package interp

import (
	"math"

	"github.com/hornet-go/hornet/translate"
	"github.com/hornet-go/hornet/value"
)

// opBinary implements every typed binary arithmetic/bitwise/shift opcode.
// Division and remainder by zero fault with ErrArithmetic for int/long
// (§4.3 idiv/irem/ldiv/lrem edge case); float/double follow IEEE 754 and
// never fault. Shift counts are masked to the low 5 bits for int, low 6 for
// long, matching the JVM's ishl/lshl masking rule.
func opBinary(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	switch op {
	case translate.TIadd, translate.TIsub, translate.TImul, translate.TIdiv, translate.TIrem,
		translate.TIand, translate.TIor, translate.TIxor, translate.TIshl, translate.TIshr, translate.TIushr:
		b := value.From[int32](ec.pop())
		a := value.From[int32](ec.pop())
		r, err := intBinary(op, a, b)
		if err != nil {
			return false, value.Zero, err
		}
		ec.push(value.To(r))
	case translate.TLadd, translate.TLsub, translate.TLmul, translate.TLdiv, translate.TLrem,
		translate.TLand, translate.TLor, translate.TLxor, translate.TLshl, translate.TLshr, translate.TLushr:
		b := value.From[int64](ec.pop())
		a := value.From[int64](ec.pop())
		r, err := longBinary(op, a, b)
		if err != nil {
			return false, value.Zero, err
		}
		ec.push(value.To(r))
	case translate.TFadd, translate.TFsub, translate.TFmul, translate.TFdiv, translate.TFrem:
		b := value.From[float32](ec.pop())
		a := value.From[float32](ec.pop())
		ec.push(value.To(floatBinary(op, a, b)))
	case translate.TDadd, translate.TDsub, translate.TDmul, translate.TDdiv, translate.TDrem:
		b := value.From[float64](ec.pop())
		a := value.From[float64](ec.pop())
		ec.push(value.To(doubleBinary(op, a, b)))
	}
	return false, value.Zero, nil
}

func intBinary(op translate.TOp, a, b int32) (int32, error) {
	switch op {
	case translate.TIadd:
		return a + b, nil
	case translate.TIsub:
		return a - b, nil
	case translate.TImul:
		return a * b, nil
	case translate.TIdiv:
		if b == 0 {
			return 0, ErrArithmetic
		}
		return a / b, nil
	case translate.TIrem:
		if b == 0 {
			return 0, ErrArithmetic
		}
		return a % b, nil
	case translate.TIand:
		return a & b, nil
	case translate.TIor:
		return a | b, nil
	case translate.TIxor:
		return a ^ b, nil
	case translate.TIshl:
		return a << (uint32(b) & 0x1F), nil
	case translate.TIshr:
		return a >> (uint32(b) & 0x1F), nil
	case translate.TIushr:
		return int32(uint32(a) >> (uint32(b) & 0x1F)), nil
	}
	return 0, UnknownOpcodeError{Op: byte(op)}
}

func longBinary(op translate.TOp, a, b int64) (int64, error) {
	switch op {
	case translate.TLadd:
		return a + b, nil
	case translate.TLsub:
		return a - b, nil
	case translate.TLmul:
		return a * b, nil
	case translate.TLdiv:
		if b == 0 {
			return 0, ErrArithmetic
		}
		return a / b, nil
	case translate.TLrem:
		if b == 0 {
			return 0, ErrArithmetic
		}
		return a % b, nil
	case translate.TLand:
		return a & b, nil
	case translate.TLor:
		return a | b, nil
	case translate.TLxor:
		return a ^ b, nil
	case translate.TLshl:
		return a << (uint64(b) & 0x3F), nil
	case translate.TLshr:
		return a >> (uint64(b) & 0x3F), nil
	case translate.TLushr:
		return int64(uint64(a) >> (uint64(b) & 0x3F)), nil
	}
	return 0, UnknownOpcodeError{Op: byte(op)}
}

func floatBinary(op translate.TOp, a, b float32) float32 {
	switch op {
	case translate.TFadd:
		return a + b
	case translate.TFsub:
		return a - b
	case translate.TFmul:
		return a * b
	case translate.TFdiv:
		return a / b
	case translate.TFrem:
		return float32(math.Mod(float64(a), float64(b)))
	}
	return 0
}

func doubleBinary(op translate.TOp, a, b float64) float64 {
	switch op {
	case translate.TDadd:
		return a + b
	case translate.TDsub:
		return a - b
	case translate.TDmul:
		return a * b
	case translate.TDdiv:
		return a / b
	case translate.TDrem:
		return math.Mod(a, b)
	}
	return 0
}

// opUnaryNeg implements ineg/lneg/fneg/dneg. The long case uses the
// long-width accessors — the source conflates this with the int opcode, a
// bug not propagated here (§9).
func opUnaryNeg(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	switch op {
	case translate.TIneg:
		ec.push(value.To(-value.From[int32](ec.pop())))
	case translate.TLneg:
		ec.push(value.To(-value.From[int64](ec.pop())))
	case translate.TFneg:
		ec.push(value.To(-value.From[float32](ec.pop())))
	case translate.TDneg:
		ec.push(value.To(-value.From[float64](ec.pop())))
	}
	return false, value.Zero, nil
}

func opIinc(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	idx := uint16(ec.u8())
	delta := ec.i32()
	cur := value.From[int32](ec.local(idx))
	ec.setLocal(idx, value.To(cur+delta))
	return false, value.Zero, nil
}

var convertFns = map[translate.TOp]func(ec *execCtx){
	translate.TI2l: func(ec *execCtx) { ec.push(value.To(int64(value.From[int32](ec.pop())))) },
	translate.TI2f: func(ec *execCtx) { ec.push(value.To(float32(value.From[int32](ec.pop())))) },
	translate.TI2d: func(ec *execCtx) { ec.push(value.To(float64(value.From[int32](ec.pop())))) },
	translate.TL2i: func(ec *execCtx) { ec.push(value.To(int32(value.From[int64](ec.pop())))) },
	translate.TL2f: func(ec *execCtx) { ec.push(value.To(float32(value.From[int64](ec.pop())))) },
	translate.TL2d: func(ec *execCtx) { ec.push(value.To(float64(value.From[int64](ec.pop())))) },
	translate.TF2i: func(ec *execCtx) { ec.push(value.To(int32(value.From[float32](ec.pop())))) },
	translate.TF2l: func(ec *execCtx) { ec.push(value.To(int64(value.From[float32](ec.pop())))) },
	translate.TF2d: func(ec *execCtx) { ec.push(value.To(float64(value.From[float32](ec.pop())))) },
	translate.TD2i: func(ec *execCtx) { ec.push(value.To(int32(value.From[float64](ec.pop())))) },
	translate.TD2l: func(ec *execCtx) { ec.push(value.To(int64(value.From[float64](ec.pop())))) },
	translate.TD2f: func(ec *execCtx) { ec.push(value.To(float32(value.From[float64](ec.pop())))) },
	translate.TI2b: func(ec *execCtx) { ec.push(value.To(int32(int8(value.From[int32](ec.pop()))))) },
	translate.TI2c: func(ec *execCtx) { ec.push(value.To(int32(uint16(value.From[int32](ec.pop()))))) },
	translate.TI2s: func(ec *execCtx) { ec.push(value.To(int32(int16(value.From[int32](ec.pop()))))) },
}

func opConvert(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	convertFns[op](ec)
	return false, value.Zero, nil
}

func opLcmp(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	b := value.From[int64](ec.pop())
	a := value.From[int64](ec.pop())
	ec.push(value.To(int32(cmp3(a, b))))
	return false, value.Zero, nil
}

// opFcmp implements fcmpl/fcmpg: ordered compares push -1/0/1, and NaN
// pushes -1 for fcmpl (TFcmpl) or +1 for fcmpg (TFcmpg) — the distinction
// the translator already baked into which tag it emitted (§4.3, §9 "the
// NaN branch must execute first" fix).
func opFcmp(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	b := value.From[float32](ec.pop())
	a := value.From[float32](ec.pop())
	if math.IsNaN(float64(a)) || math.IsNaN(float64(b)) {
		if op == translate.TFcmpg {
			ec.push(value.To(int32(1)))
		} else {
			ec.push(value.To(int32(-1)))
		}
		return false, value.Zero, nil
	}
	ec.push(value.To(int32(cmp3(a, b))))
	return false, value.Zero, nil
}

func opDcmp(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	b := value.From[float64](ec.pop())
	a := value.From[float64](ec.pop())
	if math.IsNaN(a) || math.IsNaN(b) {
		if op == translate.TDcmpg {
			ec.push(value.To(int32(1)))
		} else {
			ec.push(value.To(int32(-1)))
		}
		return false, value.Zero, nil
	}
	ec.push(value.To(int32(cmp3(a, b))))
	return false, value.Zero, nil
}

type ordered interface {
	~int32 | ~int64 | ~float32 | ~float64
}

func cmp3[T ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
