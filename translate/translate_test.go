package translate

import (
	"bytes"
	"errors"
	"testing"

	"github.com/hornet-go/hornet/bytecode"
	"github.com/hornet-go/hornet/class"
)

func testMethod(code []byte) *class.Method {
	return &class.Method{
		Klass: &class.Klass{Name: "Test", ConstantPool: class.NewConstantPool(1)},
		Name:  "m",
		Code:  code,
	}
}

// TestTranslatorDeterminism checks that translating the same method body
// twice produces byte-identical trampolines (§8 "Translator determinism").
func TestTranslatorDeterminism(t *testing.T) {
	code := []byte{byte(bytecode.Iconst3), byte(bytecode.Iconst4), byte(bytecode.Iadd), byte(bytecode.Ireturn)}

	a, err := Translate(testMethod(code))
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	b, err := Translate(testMethod(code))
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("two translations of identical bytecode differ:\n%v\n%v", a, b)
	}
}

// TestBackpatchSoundness checks that a forward branch's trampoline operand
// resolves to the trampoline offset Begin actually recorded for the target
// block, not a copy of the source-bytecode branch target (§8 "Backpatch
// soundness") — the two differ here because TIconst's 5-byte trampoline
// form is wider than source iconst_0's single byte.
func TestBackpatchSoundness(t *testing.T) {
	// iconst_0 (offset 0); ifeq (offset 1, branches to offset 5); iconst_1
	// (offset 4); ireturn (offset 5, the branch target).
	code := []byte{
		byte(bytecode.Iconst0),
		byte(bytecode.Ifeq), 0, 4, // offset = 4, target = pos(1) + 4 = 5
		byte(bytecode.Iconst1),
		byte(bytecode.Ireturn),
	}
	e := newInterpEmitter()
	out, err := translateWith(testMethod(code), e)
	if err != nil {
		t.Fatalf("translateWith: %v", err)
	}
	if len(e.labels) != 1 {
		t.Fatalf("got %d labels, want 1", len(e.labels))
	}
	l := e.labels[0]
	wantOffset, ok := e.blockOffsets[l.Target]
	if !ok {
		t.Fatalf("label target block %d never recorded an offset", l.Target)
	}
	gotOffset := int(uint16(out[l.PatchPos])<<8 | uint16(out[l.PatchPos+1]))
	if gotOffset != wantOffset {
		t.Fatalf("patched branch offset = %d, want %d (block %d's recorded start)", gotOffset, wantOffset, l.Target)
	}
	// The patched value must not merely echo the source bytecode's literal
	// branch target (5): TIconst is wider than iconst_0, so the real
	// trampoline offset for this program (13) differs from 5.
	if gotOffset == 5 {
		t.Fatalf("patched offset %d looks like an unpatched copy of the source offset", gotOffset)
	}
}

func TestTranslateRejectsUnsupportedOp(t *testing.T) {
	code := []byte{byte(bytecode.Invokedynamic), 0, 1, 0, 0}
	if _, err := Translate(testMethod(code)); err == nil {
		t.Fatal("expected an unsupported-operation error for invokedynamic")
	}
}

func TestTranslateRejectsLookupswitch(t *testing.T) {
	// iconst_0; lookupswitch at 1 (2 pad bytes, default +11 -> 12, npairs 0);
	// return at 12. Well-formed, so scan accepts it and the translator is
	// what rejects it.
	code := []byte{
		byte(bytecode.Iconst0), byte(bytecode.Lookupswitch), 0, 0,
		0, 0, 0, 11, 0, 0, 0, 0,
		byte(bytecode.Return),
	}
	if _, err := Translate(testMethod(code)); !errors.Is(err, ErrUnsupportedOp) {
		t.Fatal("expected an unsupported-operation error for lookupswitch")
	}
}

func TestTranslateEmptyMethodProducesEmptyTrampoline(t *testing.T) {
	out, err := Translate(testMethod(nil))
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected an empty trampoline for an empty method, got %d bytes", len(out))
	}
}
