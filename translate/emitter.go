package translate

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/hornet-go/hornet/class"
	"github.com/hornet-go/hornet/scan"
	"github.com/hornet-go/hornet/value"
)

// ErrUnsupportedOp is returned for abstract operations this core
// deliberately does not lower: multianewarray, athrow, and the rarer
// stack-shuffle forms (§4.2 "Failure semantics", §4.3).
var ErrUnsupportedOp = fmt.Errorf("translate: unsupported operation")

// Label is the {offset-of-placeholder-slot, target-block} pair the
// emitter accumulates for every branch it writes; Epilogue resolves every
// Label once all blocks have a final offset (§3 "Label record").
type Label struct {
	PatchPos int
	Target   scan.BlockID
}

// Emitter is the translator's visitor-facing interface (§4.2): every
// abstract operation the translator decodes from source bytecode is
// delivered to an Emitter, which is free to lower it however its backend
// requires. interpEmitter is the only implementation in this core — the
// one that targets the direct-threaded interpreter — but the seam keeps
// the decode step (translate.go) independent of the wire format
// (emitter.go).
type Emitter interface {
	Begin(id scan.BlockID)
	Prologue()
	Epilogue() ([]byte, error)

	OpConst(t value.Type, v value.Value)
	OpAconstNull()
	OpLoad(t value.Type, idx uint16)
	OpStore(t value.Type, idx uint16)
	OpArrayLoad(t value.Type, narrow narrowArrayKind)
	OpArrayStore(t value.Type, narrow narrowArrayKind)
	OpConvert(k ConvertKind)
	OpUnaryNeg(t value.Type)
	OpBinary(t value.Type, op ArithOp)
	OpIinc(idx uint16, delta int32)
	OpLcmp()
	OpCmp(t value.Type, nanHigh bool)
	OpIf(op CmpOp, target scan.BlockID)
	OpIfCmp(t value.Type, op CmpOp, target scan.BlockID)
	OpIfNull(target scan.BlockID)
	OpIfNonnull(target scan.BlockID)
	OpGoto(target scan.BlockID)
	OpTableswitch(low, high int32, def scan.BlockID, table []scan.BlockID)
	OpRet()
	OpRetVoid()
	OpGetStatic(f *class.Field)
	OpPutStatic(f *class.Field)
	OpGetField(f *class.Field)
	OpPutField(f *class.Field)
	OpInvokeVirtual(m *class.Method)
	OpInvokeSpecial(m *class.Method)
	OpInvokeStatic(m *class.Method)
	OpInvokeInterface(m *class.Method)
	OpNew(k *class.Klass)
	OpNewArray(atype class.PrimType)
	OpANewArray(k *class.Klass)
	OpMultiANewArray(k *class.Klass, dims uint8) error
	OpArrayLength()
	OpAThrow() error
	OpCheckCast(k *class.Klass)
	OpInstanceOf(k *class.Klass)
	OpMonitorEnter()
	OpMonitorExit()
	OpPop()
	OpPop2()
	OpDup()
	OpDupX1()
	OpDupX2()
	OpDup2()
	OpDup2X1()
	OpDup2X2() error
	OpSwap()
}

// narrowArrayKind distinguishes the byte/char/short array element widths
// that share value.TInt at the value.Type level but need distinct trampoline
// opcodes (barrayload vs castore vs saload, §4.2 "arrayload(t_byte) ->
// barrayload").
type narrowArrayKind uint8

const (
	NarrowNone narrowArrayKind = iota
	NarrowByteBool
	NarrowChar
	NarrowShort
)

// interpEmitter is the concrete Emitter that targets the direct-threaded
// interpreter's dispatch table: a bytes.Buffer write cursor plus pending
// Labels, exactly the emitter contract of §4.2.
type interpEmitter struct {
	buf          bytes.Buffer
	labels       []Label
	blockOffsets map[scan.BlockID]int
}

func newInterpEmitter() *interpEmitter {
	return &interpEmitter{blockOffsets: map[scan.BlockID]int{}}
}

func (e *interpEmitter) Prologue() {}

// Begin records block id's starting offset in the trampoline (§4.2
// "begin(block) records {block -> current_offset}").
func (e *interpEmitter) Begin(id scan.BlockID) {
	e.blockOffsets[id] = e.buf.Len()
}

// Epilogue backpatches every pending Label with its target block's
// recorded offset (§4.2 "Backpatch walks the Label list").
func (e *interpEmitter) Epilogue() ([]byte, error) {
	out := e.buf.Bytes()
	for _, l := range e.labels {
		off, ok := e.blockOffsets[l.Target]
		if !ok {
			return nil, fmt.Errorf("translate: label targets unknown block %d", l.Target)
		}
		binary.BigEndian.PutUint16(out[l.PatchPos:], uint16(off))
	}
	return out, nil
}

func (e *interpEmitter) tag(op TOp) { e.buf.WriteByte(byte(op)) }

func (e *interpEmitter) u8(v uint8)   { e.buf.WriteByte(v) }
func (e *interpEmitter) u16(v uint16) { binary.Write(&e.buf, binary.BigEndian, v) }
func (e *interpEmitter) i32(v int32)  { binary.Write(&e.buf, binary.BigEndian, v) }
func (e *interpEmitter) i64(v int64)  { binary.Write(&e.buf, binary.BigEndian, v) }
func (e *interpEmitter) f32(v float32) {
	binary.Write(&e.buf, binary.BigEndian, v)
}
func (e *interpEmitter) f64(v float64) {
	binary.Write(&e.buf, binary.BigEndian, v)
}

// ptr writes a pointer-width (8-byte, architecture-independent) immediate
// so that Translator determinism holds regardless of GOARCH (§8).
func (e *interpEmitter) ptr(p unsafe.Pointer) {
	binary.Write(&e.buf, binary.BigEndian, uint64(uintptr(p)))
}

// branch writes op followed by a placeholder 2-byte offset, recording a
// Label for Epilogue to patch (§4.2 "Branch emission writes the opcode tag
// and a placeholder 16-bit zero, appending a Label record").
func (e *interpEmitter) branch(op TOp, target scan.BlockID) {
	e.tag(op)
	pos := e.buf.Len()
	e.u16(0)
	e.labels = append(e.labels, Label{PatchPos: pos, Target: target})
}

func (e *interpEmitter) OpConst(t value.Type, v value.Value) {
	switch t {
	case value.TInt:
		e.tag(TIconst)
		e.i32(value.From[int32](v))
	case value.TLong:
		e.tag(TLconst)
		e.i64(value.From[int64](v))
	case value.TFloat:
		e.tag(TFconst)
		e.f32(value.From[float32](v))
	case value.TDouble:
		e.tag(TDconst)
		e.f64(value.From[float64](v))
	case value.TRef:
		e.tag(TRconst)
		e.i64(int64(v))
	}
}

func (e *interpEmitter) OpAconstNull() { e.tag(TAconstNull) }

var loadOp = map[value.Type]TOp{value.TInt: TIload, value.TLong: TLload, value.TFloat: TFload, value.TDouble: TDload, value.TRef: TAload}
var storeOp = map[value.Type]TOp{value.TInt: TIstore, value.TLong: TLstore, value.TFloat: TFstore, value.TDouble: TDstore, value.TRef: TAstore}

func (e *interpEmitter) OpLoad(t value.Type, idx uint16) {
	e.tag(loadOp[t])
	e.u16(idx)
}

func (e *interpEmitter) OpStore(t value.Type, idx uint16) {
	e.tag(storeOp[t])
	e.u16(idx)
}

func (e *interpEmitter) OpArrayLoad(t value.Type, narrow narrowArrayKind) {
	switch {
	case t == value.TInt && narrow == NarrowByteBool:
		e.tag(TBaload)
	case t == value.TInt && narrow == NarrowChar:
		e.tag(TCaload)
	case t == value.TInt && narrow == NarrowShort:
		e.tag(TSaload)
	case t == value.TInt:
		e.tag(TIaload)
	case t == value.TLong:
		e.tag(TLaload)
	case t == value.TFloat:
		e.tag(TFaload)
	case t == value.TDouble:
		e.tag(TDaload)
	case t == value.TRef:
		e.tag(TAaload)
	}
}

// OpArrayStore lowers t_long arraystore to the long-width trampoline
// opcode: the source conflates this with the int-width opcode (§9 "fix,
// don't propagate").
func (e *interpEmitter) OpArrayStore(t value.Type, narrow narrowArrayKind) {
	switch {
	case t == value.TInt && narrow == NarrowByteBool:
		e.tag(TBastore)
	case t == value.TInt && narrow == NarrowChar:
		e.tag(TCastore)
	case t == value.TInt && narrow == NarrowShort:
		e.tag(TSastore)
	case t == value.TInt:
		e.tag(TIastore)
	case t == value.TLong:
		e.tag(TLastore)
	case t == value.TFloat:
		e.tag(TFastore)
	case t == value.TDouble:
		e.tag(TDastore)
	case t == value.TRef:
		e.tag(TAastore)
	}
}

var convertOp = map[ConvertKind]TOp{
	I2L: TI2l, I2F: TI2f, I2D: TI2d,
	L2I: TL2i, L2F: TL2f, L2D: TL2d,
	F2I: TF2i, F2L: TF2l, F2D: TF2d,
	D2I: TD2i, D2L: TD2l, D2F: TD2f,
	I2B: TI2b, I2C: TI2c, I2S: TI2s,
}

func (e *interpEmitter) OpConvert(k ConvertKind) { e.tag(convertOp[k]) }

// OpUnaryNeg lowers t_long negate to lneg: the source emits the int-width
// opcode for this case, a bug that must not be propagated (§9).
func (e *interpEmitter) OpUnaryNeg(t value.Type) {
	switch t {
	case value.TInt:
		e.tag(TIneg)
	case value.TLong:
		e.tag(TLneg)
	case value.TFloat:
		e.tag(TFneg)
	case value.TDouble:
		e.tag(TDneg)
	}
}

var binaryOp = map[value.Type]map[ArithOp]TOp{
	value.TInt: {Add: TIadd, Sub: TIsub, Mul: TImul, Div: TIdiv, Rem: TIrem, And: TIand, Or: TIor, Xor: TIxor, Shl: TIshl, Shr: TIshr, Ushr: TIushr},
	value.TLong: {Add: TLadd, Sub: TLsub, Mul: TLmul, Div: TLdiv, Rem: TLrem, And: TLand, Or: TLor, Xor: TLxor, Shl: TLshl, Shr: TLshr, Ushr: TLushr},
	value.TFloat:  {Add: TFadd, Sub: TFsub, Mul: TFmul, Div: TFdiv, Rem: TFrem},
	value.TDouble: {Add: TDadd, Sub: TDsub, Mul: TDmul, Div: TDdiv, Rem: TDrem},
}

func (e *interpEmitter) OpBinary(t value.Type, op ArithOp) {
	e.tag(binaryOp[t][op])
}

func (e *interpEmitter) OpIinc(idx uint16, delta int32) {
	e.tag(TIinc)
	e.u8(uint8(idx))
	e.i32(delta)
}

func (e *interpEmitter) OpLcmp() { e.tag(TLcmp) }

// OpCmp emits the NaN-high (fcmpg/dcmpg, pushes +1 on unordered) or
// NaN-low (fcmpl/dcmpl, pushes -1) variant per §4.3.
func (e *interpEmitter) OpCmp(t value.Type, nanHigh bool) {
	switch {
	case t == value.TFloat && nanHigh:
		e.tag(TFcmpg)
	case t == value.TFloat:
		e.tag(TFcmpl)
	case t == value.TDouble && nanHigh:
		e.tag(TDcmpg)
	case t == value.TDouble:
		e.tag(TDcmpl)
	}
}

var ifOp = map[CmpOp]TOp{Eq: TIfeq, Ne: TIfne, Lt: TIflt, Ge: TIfge, Gt: TIfgt, Le: TIfle}
var ifIcmpOp = map[CmpOp]TOp{Eq: TIfIcmpeq, Ne: TIfIcmpne, Lt: TIfIcmplt, Ge: TIfIcmpge, Gt: TIfIcmpgt, Le: TIfIcmple}
var ifAcmpOp = map[CmpOp]TOp{Eq: TIfAcmpeq, Ne: TIfAcmpne}

func (e *interpEmitter) OpIf(op CmpOp, target scan.BlockID) {
	e.branch(ifOp[op], target)
}

func (e *interpEmitter) OpIfCmp(t value.Type, op CmpOp, target scan.BlockID) {
	if t == value.TRef {
		e.branch(ifAcmpOp[op], target)
		return
	}
	e.branch(ifIcmpOp[op], target)
}

func (e *interpEmitter) OpIfNull(target scan.BlockID)    { e.branch(TIfnull, target) }
func (e *interpEmitter) OpIfNonnull(target scan.BlockID) { e.branch(TIfnonnull, target) }
func (e *interpEmitter) OpGoto(target scan.BlockID)      { e.branch(TGoto, target) }

// OpTableswitch writes the operand layout exactly as specified (§6): high,
// low, default offset, size, then size offsets, each as its own label so
// Epilogue can resolve them independently.
func (e *interpEmitter) OpTableswitch(low, high int32, def scan.BlockID, table []scan.BlockID) {
	e.tag(TTableswitch)
	e.i32(high)
	e.i32(low)
	defPos := e.buf.Len()
	e.u16(0)
	e.labels = append(e.labels, Label{PatchPos: defPos, Target: def})
	e.i32(int32(len(table)))
	for _, t := range table {
		pos := e.buf.Len()
		e.u16(0)
		e.labels = append(e.labels, Label{PatchPos: pos, Target: t})
	}
}

func (e *interpEmitter) OpRet()     { e.tag(TRet) }
func (e *interpEmitter) OpRetVoid() { e.tag(TRetVoid) }

func (e *interpEmitter) OpGetStatic(f *class.Field) {
	e.tag(TGetstatic)
	e.ptr(unsafe.Pointer(f))
}
func (e *interpEmitter) OpPutStatic(f *class.Field) {
	e.tag(TPutstatic)
	e.ptr(unsafe.Pointer(f))
}
func (e *interpEmitter) OpGetField(f *class.Field) {
	e.tag(TGetfield)
	e.ptr(unsafe.Pointer(f))
}
func (e *interpEmitter) OpPutField(f *class.Field) {
	e.tag(TPutfield)
	e.ptr(unsafe.Pointer(f))
}

func (e *interpEmitter) OpInvokeVirtual(m *class.Method) {
	e.tag(TInvokevirtual)
	e.ptr(unsafe.Pointer(m))
}
func (e *interpEmitter) OpInvokeSpecial(m *class.Method) {
	e.tag(TInvokespecial)
	e.ptr(unsafe.Pointer(m))
}
func (e *interpEmitter) OpInvokeStatic(m *class.Method) {
	e.tag(TInvokestatic)
	e.ptr(unsafe.Pointer(m))
}
func (e *interpEmitter) OpInvokeInterface(m *class.Method) {
	e.tag(TInvokeinterface)
	e.ptr(unsafe.Pointer(m))
}

func (e *interpEmitter) OpNew(k *class.Klass) {
	e.tag(TNew)
	e.ptr(unsafe.Pointer(k))
}
func (e *interpEmitter) OpNewArray(atype class.PrimType) {
	e.tag(TNewarray)
	e.u8(uint8(atype))
}
func (e *interpEmitter) OpANewArray(k *class.Klass) {
	e.tag(TAnewarray)
	e.ptr(unsafe.Pointer(k))
}

// OpMultiANewArray is explicitly unsupported in this core (§4.3
// "multianewarray: unsupported in this core (explicit abort)").
func (e *interpEmitter) OpMultiANewArray(k *class.Klass, dims uint8) error {
	return ErrUnsupportedOp
}

func (e *interpEmitter) OpArrayLength() { e.tag(TArraylength) }

// OpAThrow is explicitly unsupported: exception-table unwinding is a
// Non-goal (§1).
func (e *interpEmitter) OpAThrow() error { return ErrUnsupportedOp }

func (e *interpEmitter) OpCheckCast(k *class.Klass) {
	e.tag(TCheckcast)
	e.ptr(unsafe.Pointer(k))
}
func (e *interpEmitter) OpInstanceOf(k *class.Klass) {
	e.tag(TInstanceof)
	e.ptr(unsafe.Pointer(k))
}

func (e *interpEmitter) OpMonitorEnter() { e.tag(TMonitorenter) }
func (e *interpEmitter) OpMonitorExit()  { e.tag(TMonitorexit) }

func (e *interpEmitter) OpPop()    { e.tag(TPop) }
func (e *interpEmitter) OpPop2()   { e.tag(TPop2) }
func (e *interpEmitter) OpDup()    { e.tag(TDup) }
func (e *interpEmitter) OpDupX1()  { e.tag(TDupX1) }
func (e *interpEmitter) OpDupX2()  { e.tag(TDupX2) }
func (e *interpEmitter) OpDup2()   { e.tag(TDup2) }
func (e *interpEmitter) OpDup2X1() { e.tag(TDup2X1) }

// OpDup2X2 is one of the explicit stack-shuffle aborts §4.2 calls out as
// not filled in by this core.
func (e *interpEmitter) OpDup2X2() error { return ErrUnsupportedOp }

func (e *interpEmitter) OpSwap() { e.tag(TSwap) }
