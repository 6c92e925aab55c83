package interp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"testing"

	"github.com/hornet-go/hornet/bytecode"
	"github.com/hornet-go/hornet/class"
	"github.com/hornet-go/hornet/ffi"
	"github.com/hornet-go/hornet/frame"
	"github.com/hornet-go/hornet/heap"
	"github.com/hornet-go/hornet/thread"
	"github.com/hornet-go/hornet/value"
)

func newMethod(code []byte, maxLocals int, argTypes []value.Type, ret value.Type, isVoid bool, cp *class.ConstantPool) *class.Method {
	if cp == nil {
		cp = class.NewConstantPool(1)
	}
	k := &class.Klass{Name: "Test", ConstantPool: cp}
	m := &class.Method{
		Klass:      k,
		Name:       "m",
		ArgsCount:  len(argTypes),
		MaxLocals:  maxLocals,
		ArgTypes:   argTypes,
		ReturnType: ret,
		IsVoid:     isVoid,
		Code:       code,
	}
	k.Methods = append(k.Methods, m)
	return m
}

func newExecutor(t *testing.T) (*thread.Thread, func()) {
	t.Helper()
	pool, err := frame.NewPool(4)
	if err != nil {
		t.Fatalf("frame.NewPool: %v", err)
	}
	it, err := New(heap.NewGC(), ffi.NewAdapter(ffi.NewRegistry()))
	if err != nil {
		t.Fatalf("interp.New: %v", err)
	}
	th := thread.New(pool, it)
	return th, func() { pool.Close() }
}

func i16be(v int16) []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(v))
	return b[:]
}

func i32be(v int32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	return b[:]
}

// TestIaddReturnsSeven covers spec scenario: iconst_3; iconst_4; iadd;
// ireturn -> 7.
func TestIaddReturnsSeven(t *testing.T) {
	code := []byte{byte(bytecode.Iconst3), byte(bytecode.Iconst4), byte(bytecode.Iadd), byte(bytecode.Ireturn)}
	m := newMethod(code, 0, nil, value.TInt, false, nil)

	th, closeFn := newExecutor(t)
	defer closeFn()

	result, err := th.Execute(m, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := value.From[int32](result); got != 7 {
		t.Fatalf("result = %d, want 7", got)
	}
}

// TestLoopSumsZeroToNine covers spec scenario: a 0..9 accumulation loop,
// sum=45.
func TestLoopSumsZeroToNine(t *testing.T) {
	var code []byte
	emit := func(b ...byte) { code = append(code, b...) }

	emit(byte(bytecode.Iconst0))  // 0: sum = 0
	emit(byte(bytecode.Istore0))  // 1
	emit(byte(bytecode.Iconst0))  // 2: i = 0
	emit(byte(bytecode.Istore1))  // 3
	gotoPos := len(code)
	emit(byte(bytecode.Goto), 0, 0) // 4..6: goto check (patched below)
	loopPos := len(code)
	emit(byte(bytecode.Iload0))           // load sum
	emit(byte(bytecode.Iload1))           // load i
	emit(byte(bytecode.Iadd))             // sum + i
	emit(byte(bytecode.Istore0))          // sum =
	emit(byte(bytecode.Iinc), 1, 1)       // i++
	checkPos := len(code)
	emit(byte(bytecode.Iload1))           // load i
	emit(byte(bytecode.Bipush), 10)       // push 10
	ifPos := len(code)
	emit(byte(bytecode.IfIcmplt), 0, 0)   // if i < 10 goto loop (patched below)
	emit(byte(bytecode.Iload0))           // load sum
	emit(byte(bytecode.Ireturn))

	copy(code[gotoPos+1:], i16be(int16(checkPos-gotoPos)))
	copy(code[ifPos+1:], i16be(int16(loopPos-ifPos)))

	m := newMethod(code, 2, nil, value.TInt, false, nil)

	th, closeFn := newExecutor(t)
	defer closeFn()

	result, err := th.Execute(m, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := value.From[int32](result); got != 45 {
		t.Fatalf("result = %d, want 45", got)
	}
}

// TestLdcFloatDivide covers spec scenario: ldc 5.5f; ldc 2.0f; fdiv;
// freturn -> 2.75f.
func TestLdcFloatDivide(t *testing.T) {
	cp := class.NewConstantPool(3)
	cp.SetFloat(1, 5.5)
	cp.SetFloat(2, 2.0)

	code := []byte{
		byte(bytecode.Ldc), 1,
		byte(bytecode.Ldc), 2,
		byte(bytecode.Fdiv),
		byte(bytecode.Freturn),
	}
	m := newMethod(code, 0, nil, value.TFloat, false, cp)

	th, closeFn := newExecutor(t)
	defer closeFn()

	result, err := th.Execute(m, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := value.From[float32](result); got != 2.75 {
		t.Fatalf("result = %v, want 2.75", got)
	}
}

// TestLdcStringInternsReference covers ldc's String case (§4.2): the
// constant pool resolves a String constant to an interned reference rather
// than erroring, and the same index returns the identical reference on
// repeated loads.
func TestLdcStringInternsReference(t *testing.T) {
	cp := class.NewConstantPool(3)
	cp.SetUTF8(1, "hello")
	cp.SetString(2, 1)

	code := []byte{
		byte(bytecode.Ldc), 2, // 0,1
		byte(bytecode.Ldc), 2, // 2,3
		byte(bytecode.IfAcmpne), 0, 5, // 4..6: offset 5 -> target 4+5=9, the "differ" body
		byte(bytecode.Iconst1), // 7
		byte(bytecode.Ireturn), // 8
		byte(bytecode.Iconst0), // 9
		byte(bytecode.Ireturn), // 10
	}
	m := newMethod(code, 0, nil, value.TInt, false, cp)

	th, closeFn := newExecutor(t)
	defer closeFn()

	result, err := th.Execute(m, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := value.From[int32](result); got != 1 {
		t.Fatalf("result = %d, want 1 (two ldc of the same String index must intern to the same reference)", got)
	}

	ref, err := cp.StringRef(2)
	if err != nil {
		t.Fatalf("StringRef: %v", err)
	}
	if s := (*string)(value.Deref(ref)); s == nil || *s != "hello" {
		t.Fatalf("interned reference does not point at %q", "hello")
	}
}

// TestNullArraylengthFaults covers spec scenario: aconst_null; arraylength
// -> null-dereference fault.
func TestNullArraylengthFaults(t *testing.T) {
	code := []byte{byte(bytecode.AconstNull), byte(bytecode.Arraylength), byte(bytecode.Ireturn)}
	m := newMethod(code, 0, nil, value.TInt, false, nil)

	th, closeFn := newExecutor(t)
	defer closeFn()

	_, err := th.Execute(m, nil)
	if err == nil {
		t.Fatal("expected null-dereference error")
	}
}

// TestNewarrayStoreLoad covers spec scenario: iconst_5; newarray int; dup;
// iconst_2; bipush 42; iastore; iconst_2; iaload; ireturn -> 42.
func TestNewarrayStoreLoad(t *testing.T) {
	code := []byte{
		byte(bytecode.Iconst5),
		byte(bytecode.Newarray), byte(class.TInt),
		byte(bytecode.Dup),
		byte(bytecode.Iconst2),
		byte(bytecode.Bipush), 42,
		byte(bytecode.Iastore),
		byte(bytecode.Iconst2),
		byte(bytecode.Iaload),
		byte(bytecode.Ireturn),
	}
	m := newMethod(code, 0, nil, value.TInt, false, nil)

	th, closeFn := newExecutor(t)
	defer closeFn()

	result, err := th.Execute(m, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := value.From[int32](result); got != 42 {
		t.Fatalf("result = %d, want 42", got)
	}
}

// TestTableswitch covers spec scenario: tableswitch low=0 high=2 default=D,
// cases [A,B,C]; input 1 -> B (200), input 5 -> D (999).
func TestTableswitch(t *testing.T) {
	buildCode := func() []byte {
		code := make([]byte, 1) // pos 0: iload_0 placeholder, filled below
		code[0] = byte(bytecode.Iload0)

		tsPos := len(code)
		code = append(code, byte(bytecode.Tableswitch))
		pad := (4 - (tsPos+1)%4) % 4
		code = append(code, make([]byte, pad)...)
		code = append(code, i32be(0)...) // default offset placeholder
		code = append(code, i32be(0)...) // low
		code = append(code, i32be(2)...) // high
		code = append(code, i32be(0)...) // case 0 offset placeholder
		code = append(code, i32be(0)...) // case 1 offset placeholder
		code = append(code, i32be(0)...) // case 2 offset placeholder

		header := tsPos + 1 + pad
		caseBody := func(v int32) []byte {
			return append([]byte{byte(bytecode.Sipush)}, append(i16be(int16(v)), byte(bytecode.Ireturn))...)
		}
		aPos := len(code)
		code = append(code, caseBody(100)...)
		bPos := len(code)
		code = append(code, caseBody(200)...)
		cPos := len(code)
		code = append(code, caseBody(300)...)
		dPos := len(code)
		code = append(code, caseBody(999)...)

		binary.BigEndian.PutUint32(code[header+12:], uint32(int32(aPos-tsPos)))
		binary.BigEndian.PutUint32(code[header+16:], uint32(int32(bPos-tsPos)))
		binary.BigEndian.PutUint32(code[header+20:], uint32(int32(cPos-tsPos)))
		binary.BigEndian.PutUint32(code[header:], uint32(int32(dPos-tsPos)))
		return code
	}

	th, closeFn := newExecutor(t)
	defer closeFn()

	m := newMethod(buildCode(), 1, []value.Type{value.TInt}, value.TInt, false, nil)
	result, err := th.Execute(m, []value.Value{value.To(int32(1))})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := value.From[int32](result); got != 200 {
		t.Fatalf("case 1 result = %d, want 200", got)
	}

	m2 := newMethod(buildCode(), 1, []value.Type{value.TInt}, value.TInt, false, nil)
	result2, err := th.Execute(m2, []value.Value{value.To(int32(5))})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := value.From[int32](result2); got != 999 {
		t.Fatalf("default case result = %d, want 999", got)
	}
}

// TestStackDupX1 exercises dup_x1's insertion point directly against the
// dispatch table without going through the translator.
func TestStackDupX1(t *testing.T) {
	f := &frame.Frame{}
	f.Push(value.To(int32(1)))
	f.Push(value.To(int32(2)))
	ec := &execCtx{f: f}
	if _, _, err := opDupX1(ec, 0); err != nil {
		t.Fatalf("opDupX1: %v", err)
	}
	got := []int32{value.From[int32](f.Pop()), value.From[int32](f.Pop()), value.From[int32](f.Pop())}
	want := []int32{2, 1, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stack after dup_x1 = %v, want %v", got, want)
		}
	}
}

func TestIntDivideByZeroFaults(t *testing.T) {
	code := []byte{
		byte(bytecode.Iconst1),
		byte(bytecode.Iconst0),
		byte(bytecode.Idiv),
		byte(bytecode.Ireturn),
	}
	m := newMethod(code, 0, nil, value.TInt, false, nil)

	th, closeFn := newExecutor(t)
	defer closeFn()

	if _, err := th.Execute(m, nil); err == nil {
		t.Fatal("expected arithmetic error")
	}
}

// TestInvokeStaticNativeMethod drives a native method through a real
// invokestatic trampoline (constant-pool Methodref resolution included),
// covering the full caller-operand-stack -> callee-Locals -> ffi.Adapter
// path (§4.4): a bug here previously made Adapter.Invoke read its arguments
// off the callee's empty operand stack instead of its populated Locals.
func TestInvokeStaticNativeMethod(t *testing.T) {
	mathKlass := &class.Klass{Name: "Math"}
	native := &class.Method{
		Klass:      mathKlass,
		Name:       "add",
		Descriptor: "(II)I",
		Access:     class.AccStatic | class.AccNative,
		ArgsCount:  2,
		ArgTypes:   []value.Type{value.TInt, value.TInt},
		ReturnType: value.TInt,
	}
	mathKlass.Methods = append(mathKlass.Methods, native)

	cp := class.NewConstantPool(7)
	cp.SetUTF8(1, "Math")
	cp.SetClassRef(2, 1)
	cp.SetUTF8(3, "add")
	cp.SetUTF8(4, "(II)I")
	cp.SetNameAndType(5, 3, 4)
	cp.SetMethodRef(6, 2, 5)
	lookup := func(name string) (*class.Klass, error) {
		if name == "Math" {
			return mathKlass, nil
		}
		return nil, fmt.Errorf("unknown klass %q", name)
	}
	if err := cp.ResolveLinks(lookup, nil); err != nil {
		t.Fatalf("ResolveLinks: %v", err)
	}

	code := []byte{
		byte(bytecode.Iconst3),
		byte(bytecode.Iconst4),
		byte(bytecode.Invokestatic), 0, 6,
		byte(bytecode.Ireturn),
	}
	m := newMethod(code, 0, nil, value.TInt, false, cp)

	reg := ffi.NewRegistry()
	reg.Register(native.JNIName(), func(args []value.Value) (value.Value, error) {
		a := value.From[int32](args[2])
		b := value.From[int32](args[3])
		return value.To(a + b), nil
	})

	pool, err := frame.NewPool(4)
	if err != nil {
		t.Fatalf("frame.NewPool: %v", err)
	}
	defer pool.Close()
	it, err := New(heap.NewGC(), ffi.NewAdapter(reg))
	if err != nil {
		t.Fatalf("interp.New: %v", err)
	}
	th := thread.New(pool, it)

	result, err := th.Execute(m, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := value.From[int32](result); got != 7 {
		t.Fatalf("result = %d, want 7", got)
	}
}

// TestNativeMethodMissingLinkIsUnsatisfiedLink checks that a native call
// through an empty registry surfaces interp.ErrUnsatisfiedLink (wrapping
// ffi.ErrUnsatisfiedLink), so a caller that only imports interp can match
// the failure with errors.Is without reaching into ffi.
func TestNativeMethodMissingLinkIsUnsatisfiedLink(t *testing.T) {
	mathKlass := &class.Klass{Name: "Math"}
	native := &class.Method{
		Klass:      mathKlass,
		Name:       "missing",
		Descriptor: "()I",
		Access:     class.AccStatic | class.AccNative,
		ReturnType: value.TInt,
	}
	mathKlass.Methods = append(mathKlass.Methods, native)

	th, closeFn := newExecutor(t)
	defer closeFn()

	_, err := th.Execute(native, nil)
	if !errors.Is(err, ErrUnsatisfiedLink) {
		t.Fatalf("err = %v, want wrapping ErrUnsatisfiedLink", err)
	}
	if !errors.Is(err, ffi.ErrUnsatisfiedLink) {
		t.Fatalf("err = %v, want also wrapping ffi.ErrUnsatisfiedLink", err)
	}
}
