package interp

import (
	"github.com/hornet-go/hornet/translate"
	"github.com/hornet-go/hornet/value"
)

func condTrue(op translate.TOp, a int32) bool {
	switch op {
	case translate.TIfeq, translate.TIfIcmpeq, translate.TIfAcmpeq:
		return a == 0
	case translate.TIfne, translate.TIfIcmpne, translate.TIfAcmpne:
		return a != 0
	case translate.TIflt, translate.TIfIcmplt:
		return a < 0
	case translate.TIfge, translate.TIfIcmpge:
		return a >= 0
	case translate.TIfgt, translate.TIfIcmpgt:
		return a > 0
	case translate.TIfle, translate.TIfIcmple:
		return a <= 0
	}
	return false
}

// opIf implements the single-operand if<cond> family: pop an int, compare
// against zero, branch on the 2-byte absolute trampoline offset (§6).
func opIf(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	target := ec.u16()
	a := value.From[int32](ec.pop())
	if condTrue(op, a) {
		ec.pc = int(target)
	}
	return false, value.Zero, nil
}

// opIfCmp implements if_icmp<cond> and if_acmp<cond>: pop two operands,
// compare, branch. Reference comparisons (if_acmpeq/ne) compare the raw
// cell bit patterns directly — reference identity — without the int32
// condTrue plumbing the integer family goes through.
func opIfCmp(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	target := ec.u16()
	b := ec.pop()
	a := ec.pop()
	var taken bool
	if op == translate.TIfAcmpeq {
		taken = a == b
	} else if op == translate.TIfAcmpne {
		taken = a != b
	} else {
		av := value.From[int32](a)
		bv := value.From[int32](b)
		taken = condTrue(op, cmp3int32(av, bv))
	}
	if taken {
		ec.pc = int(target)
	}
	return false, value.Zero, nil
}

func cmp3int32(a, b int32) int32 {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func opIfNull(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	target := ec.u16()
	if value.IsNullRef(ec.pop()) {
		ec.pc = int(target)
	}
	return false, value.Zero, nil
}

func opIfNonnull(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	target := ec.u16()
	if !value.IsNullRef(ec.pop()) {
		ec.pc = int(target)
	}
	return false, value.Zero, nil
}

func opGoto(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	target := ec.u16()
	ec.pc = int(target)
	return false, value.Zero, nil
}

// opTableswitch reads the layout OpTableswitch wrote — high, low, default
// offset, size, then size offsets — and jumps to the matching case or the
// default (§6, §4.3 tableswitch).
func opTableswitch(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	high := ec.i32()
	low := ec.i32()
	def := ec.u16()
	size := ec.i32()
	offsets := make([]uint16, size)
	for i := range offsets {
		offsets[i] = ec.u16()
	}
	idx := value.From[int32](ec.pop())
	if idx < low || idx > high {
		ec.pc = int(def)
		return false, value.Zero, nil
	}
	ec.pc = int(offsets[idx-low])
	return false, value.Zero, nil
}

func opRet(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	return true, ec.pop(), nil
}

func opRetVoid(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	return true, value.Zero, nil
}
