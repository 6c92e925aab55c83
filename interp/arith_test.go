package interp

import (
	"testing"
	"testing/quick"

	"github.com/hornet-go/hornet/frame"
	"github.com/hornet-go/hornet/translate"
	"github.com/hornet-go/hornet/value"
)

// runBinary drives opBinary directly against a bare frame, the same
// bypass-the-translator style TestStackDupX1 uses, so these property tests
// exercise exactly the handler code rather than any particular bytecode
// encoding of it.
func runBinary(op translate.TOp, a, b value.Value) (value.Value, error) {
	f := &frame.Frame{}
	f.Push(a)
	f.Push(b)
	ec := &execCtx{f: f}
	if _, _, err := opBinary(ec, op); err != nil {
		return value.Zero, err
	}
	return f.Pop(), nil
}

// TestArithmeticLaws checks opBinary's int arithmetic against Go's own
// operators (which already wrap on int32 overflow the way iadd/isub/imul
// must, §4.3), commutativity of add/mul, and that integer division by zero
// always faults, over randomized inputs via testing/quick — the pack's
// idiomatic stand-in for a property-test library, since neither wagon nor
// smog pulls in a QuickCheck-alike dependency.
func TestArithmeticLaws(t *testing.T) {
	add := func(a, b int32) bool {
		got, err := runBinary(translate.TIadd, value.To(a), value.To(b))
		return err == nil && value.From[int32](got) == a+b
	}
	if err := quick.Check(add, nil); err != nil {
		t.Error(err)
	}

	sub := func(a, b int32) bool {
		got, err := runBinary(translate.TIsub, value.To(a), value.To(b))
		return err == nil && value.From[int32](got) == a-b
	}
	if err := quick.Check(sub, nil); err != nil {
		t.Error(err)
	}

	addCommutes := func(a, b int32) bool {
		ab, err1 := runBinary(translate.TIadd, value.To(a), value.To(b))
		ba, err2 := runBinary(translate.TIadd, value.To(b), value.To(a))
		return err1 == nil && err2 == nil && ab == ba
	}
	if err := quick.Check(addCommutes, nil); err != nil {
		t.Error(err)
	}

	mulCommutes := func(a, b int32) bool {
		ab, err1 := runBinary(translate.TImul, value.To(a), value.To(b))
		ba, err2 := runBinary(translate.TImul, value.To(b), value.To(a))
		return err1 == nil && err2 == nil && ab == ba
	}
	if err := quick.Check(mulCommutes, nil); err != nil {
		t.Error(err)
	}

	divByZeroFaults := func(a int32) bool {
		_, err := runBinary(translate.TIdiv, value.To(a), value.To(int32(0)))
		return err == ErrArithmetic
	}
	if err := quick.Check(divByZeroFaults, nil); err != nil {
		t.Error(err)
	}

	remByZeroFaults := func(a int32) bool {
		_, err := runBinary(translate.TIrem, value.To(a), value.To(int32(0)))
		return err == ErrArithmetic
	}
	if err := quick.Check(remByZeroFaults, nil); err != nil {
		t.Error(err)
	}
}

// TestShiftMasks checks that ishl masks its shift count to the low 5 bits
// and lshl masks to the low 6, the JVM's shift-count masking rule
// (§4.3), over randomized inputs via testing/quick.
func TestShiftMasks(t *testing.T) {
	intShiftMatchesMaskedGo := func(a int32, rawShift uint8) bool {
		want := a << (uint32(rawShift) & 0x1F)
		got, err := runBinary(translate.TIshl, value.To(a), value.To(int32(rawShift)))
		return err == nil && value.From[int32](got) == want
	}
	if err := quick.Check(intShiftMatchesMaskedGo, nil); err != nil {
		t.Error(err)
	}

	// A shift count of exactly 32 must behave as a no-op (masks to 0),
	// never as a full zeroing shift.
	intShiftByWidthIsNoop := func(a int32) bool {
		got, err := runBinary(translate.TIshl, value.To(a), value.To(int32(32)))
		return err == nil && value.From[int32](got) == a
	}
	if err := quick.Check(intShiftByWidthIsNoop, nil); err != nil {
		t.Error(err)
	}

	longShiftMatchesMaskedGo := func(a int64, rawShift uint8) bool {
		want := a << (uint64(rawShift) & 0x3F)
		got, err := runBinary(translate.TLshl, value.To(a), value.To(int64(rawShift)))
		return err == nil && value.From[int64](got) == want
	}
	if err := quick.Check(longShiftMatchesMaskedGo, nil); err != nil {
		t.Error(err)
	}

	longShiftByWidthIsNoop := func(a int64) bool {
		got, err := runBinary(translate.TLshl, value.To(a), value.To(int64(64)))
		return err == nil && value.From[int64](got) == a
	}
	if err := quick.Check(longShiftByWidthIsNoop, nil); err != nil {
		t.Error(err)
	}
}

// TestStackDiscipline checks that a binary opcode handler pops exactly two
// cells and pushes exactly one, leaving whatever is below untouched — the
// stack-balance invariant every translated trampoline assumes (§5), over
// randomized inputs via testing/quick.
func TestStackDiscipline(t *testing.T) {
	prop := func(sentinel, a, b int32) bool {
		f := &frame.Frame{}
		f.Push(value.To(sentinel))
		f.Push(value.To(a))
		f.Push(value.To(b))
		depthBefore := f.Depth()

		ec := &execCtx{f: f}
		if _, _, err := opBinary(ec, translate.TIadd); err != nil {
			return false
		}
		if f.Depth() != depthBefore-1 {
			return false
		}
		if value.From[int32](f.Pop()) != a+b {
			return false
		}
		if f.Depth() != 1 {
			return false
		}
		return value.From[int32](f.Pop()) == sentinel
	}
	if err := quick.Check(prop, nil); err != nil {
		t.Error(err)
	}
}
