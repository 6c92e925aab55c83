package translate

import (
	"fmt"

	"github.com/hornet-go/hornet/bytecode"
	"github.com/hornet-go/hornet/class"
	"github.com/hornet-go/hornet/scan"
	"github.com/hornet-go/hornet/value"
)

// Translate runs the full translator lifecycle against m's source bytecode
// (§4.2 "translate() calls scan(), then prologue(), then walks blocks...
// then epilogue()"), producing the trampoline byte stream the interpreter
// dispatches over. It is the function class.Method.Trampoline's sync.Once
// wraps.
func Translate(m *class.Method) ([]byte, error) {
	return translateWith(m, newInterpEmitter())
}

func translateWith(m *class.Method, e Emitter) ([]byte, error) {
	code := m.Code
	blocks, err := scan.Scan(code)
	if err != nil {
		return nil, err
	}

	e.Prologue()
	for id := 0; id < blocks.Len(); id++ {
		bid := scan.BlockID(id)
		b := blocks.At(bid)
		e.Begin(bid)
		pos := b.Start
		for pos < b.End {
			n, err := bytecode.Len(code, pos)
			if err != nil {
				return nil, err
			}
			if err := decodeOne(code, pos, m, blocks, e); err != nil {
				return nil, fmt.Errorf("translate: %s.%s at %d: %w", m.Klass.Name, m.Name, pos, err)
			}
			pos += n
		}
	}
	return e.Epilogue()
}

func blockAt(blocks *scan.Blocks, absTarget int) (scan.BlockID, error) {
	id, ok := blocks.StartingAt(absTarget)
	if !ok {
		return 0, fmt.Errorf("translate: branch target %d is not a block start", absTarget)
	}
	return id, nil
}

var loadTypeOf = map[bytecode.Op]value.Type{
	bytecode.Iload0: value.TInt, bytecode.Iload1: value.TInt, bytecode.Iload2: value.TInt, bytecode.Iload3: value.TInt,
	bytecode.Lload0: value.TLong, bytecode.Lload1: value.TLong, bytecode.Lload2: value.TLong, bytecode.Lload3: value.TLong,
	bytecode.Fload0: value.TFloat, bytecode.Fload1: value.TFloat, bytecode.Fload2: value.TFloat, bytecode.Fload3: value.TFloat,
	bytecode.Dload0: value.TDouble, bytecode.Dload1: value.TDouble, bytecode.Dload2: value.TDouble, bytecode.Dload3: value.TDouble,
	bytecode.Aload0: value.TRef, bytecode.Aload1: value.TRef, bytecode.Aload2: value.TRef, bytecode.Aload3: value.TRef,
}

var implicitIdx = map[bytecode.Op]uint16{
	bytecode.Iload0: 0, bytecode.Iload1: 1, bytecode.Iload2: 2, bytecode.Iload3: 3,
	bytecode.Lload0: 0, bytecode.Lload1: 1, bytecode.Lload2: 2, bytecode.Lload3: 3,
	bytecode.Fload0: 0, bytecode.Fload1: 1, bytecode.Fload2: 2, bytecode.Fload3: 3,
	bytecode.Dload0: 0, bytecode.Dload1: 1, bytecode.Dload2: 2, bytecode.Dload3: 3,
	bytecode.Aload0: 0, bytecode.Aload1: 1, bytecode.Aload2: 2, bytecode.Aload3: 3,
	bytecode.Istore0: 0, bytecode.Istore1: 1, bytecode.Istore2: 2, bytecode.Istore3: 3,
	bytecode.Lstore0: 0, bytecode.Lstore1: 1, bytecode.Lstore2: 2, bytecode.Lstore3: 3,
	bytecode.Fstore0: 0, bytecode.Fstore1: 1, bytecode.Fstore2: 2, bytecode.Fstore3: 3,
	bytecode.Dstore0: 0, bytecode.Dstore1: 1, bytecode.Dstore2: 2, bytecode.Dstore3: 3,
	bytecode.Astore0: 0, bytecode.Astore1: 1, bytecode.Astore2: 2, bytecode.Astore3: 3,
}

var storeTypeOf = map[bytecode.Op]value.Type{
	bytecode.Istore0: value.TInt, bytecode.Istore1: value.TInt, bytecode.Istore2: value.TInt, bytecode.Istore3: value.TInt,
	bytecode.Lstore0: value.TLong, bytecode.Lstore1: value.TLong, bytecode.Lstore2: value.TLong, bytecode.Lstore3: value.TLong,
	bytecode.Fstore0: value.TFloat, bytecode.Fstore1: value.TFloat, bytecode.Fstore2: value.TFloat, bytecode.Fstore3: value.TFloat,
	bytecode.Dstore0: value.TDouble, bytecode.Dstore1: value.TDouble, bytecode.Dstore2: value.TDouble, bytecode.Dstore3: value.TDouble,
	bytecode.Astore0: value.TRef, bytecode.Astore1: value.TRef, bytecode.Astore2: value.TRef, bytecode.Astore3: value.TRef,
}

func u8(code []byte, pos int) uint8   { return code[pos] }
func i8(code []byte, pos int) int8    { return int8(code[pos]) }
func u16(code []byte, pos int) uint16 { return uint16(code[pos])<<8 | uint16(code[pos+1]) }
func i16(code []byte, pos int) int16  { return int16(u16(code, pos)) }

func decodeOne(code []byte, pos int, m *class.Method, blocks *scan.Blocks, e Emitter) error {
	op := bytecode.Op(code[pos])
	cp := m.Klass.ConstantPool

	if t, ok := loadTypeOf[op]; ok {
		e.OpLoad(t, implicitIdx[op])
		return nil
	}
	if t, ok := storeTypeOf[op]; ok {
		e.OpStore(t, implicitIdx[op])
		return nil
	}

	switch op {
	case bytecode.Nop:
	case bytecode.AconstNull:
		e.OpAconstNull()
	case bytecode.IconstM1, bytecode.Iconst0, bytecode.Iconst1, bytecode.Iconst2, bytecode.Iconst3, bytecode.Iconst4, bytecode.Iconst5:
		e.OpConst(value.TInt, value.To(int32(op)-int32(bytecode.Iconst0)))
	case bytecode.Lconst0, bytecode.Lconst1:
		e.OpConst(value.TLong, value.To(int64(op)-int64(bytecode.Lconst0)))
	case bytecode.Fconst0, bytecode.Fconst1, bytecode.Fconst2:
		e.OpConst(value.TFloat, value.To(float32(op)-float32(bytecode.Fconst0)))
	case bytecode.Dconst0, bytecode.Dconst1:
		e.OpConst(value.TDouble, value.To(float64(op)-float64(bytecode.Dconst0)))
	case bytecode.Bipush:
		e.OpConst(value.TInt, value.To(int32(i8(code, pos+1))))
	case bytecode.Sipush:
		e.OpConst(value.TInt, value.To(int32(i16(code, pos+1))))
	case bytecode.Ldc:
		return decodeLdc(cp, uint16(u8(code, pos+1)), e)
	case bytecode.LdcW:
		return decodeLdc(cp, u16(code, pos+1), e)
	case bytecode.Ldc2W:
		return decodeLdc2(cp, u16(code, pos+1), e)

	case bytecode.Iload:
		e.OpLoad(value.TInt, uint16(u8(code, pos+1)))
	case bytecode.Lload:
		e.OpLoad(value.TLong, uint16(u8(code, pos+1)))
	case bytecode.Fload:
		e.OpLoad(value.TFloat, uint16(u8(code, pos+1)))
	case bytecode.Dload:
		e.OpLoad(value.TDouble, uint16(u8(code, pos+1)))
	case bytecode.Aload:
		e.OpLoad(value.TRef, uint16(u8(code, pos+1)))
	case bytecode.Istore:
		e.OpStore(value.TInt, uint16(u8(code, pos+1)))
	case bytecode.Lstore:
		e.OpStore(value.TLong, uint16(u8(code, pos+1)))
	case bytecode.Fstore:
		e.OpStore(value.TFloat, uint16(u8(code, pos+1)))
	case bytecode.Dstore:
		e.OpStore(value.TDouble, uint16(u8(code, pos+1)))
	case bytecode.Astore:
		e.OpStore(value.TRef, uint16(u8(code, pos+1)))

	case bytecode.Iaload:
		e.OpArrayLoad(value.TInt, NarrowNone)
	case bytecode.Laload:
		e.OpArrayLoad(value.TLong, NarrowNone)
	case bytecode.Faload:
		e.OpArrayLoad(value.TFloat, NarrowNone)
	case bytecode.Daload:
		e.OpArrayLoad(value.TDouble, NarrowNone)
	case bytecode.Aaload:
		e.OpArrayLoad(value.TRef, NarrowNone)
	case bytecode.Baload:
		e.OpArrayLoad(value.TInt, NarrowByteBool)
	case bytecode.Caload:
		e.OpArrayLoad(value.TInt, NarrowChar)
	case bytecode.Saload:
		e.OpArrayLoad(value.TInt, NarrowShort)

	case bytecode.Iastore:
		e.OpArrayStore(value.TInt, NarrowNone)
	case bytecode.Lastore:
		e.OpArrayStore(value.TLong, NarrowNone)
	case bytecode.Fastore:
		e.OpArrayStore(value.TFloat, NarrowNone)
	case bytecode.Dastore:
		e.OpArrayStore(value.TDouble, NarrowNone)
	case bytecode.Aastore:
		e.OpArrayStore(value.TRef, NarrowNone)
	case bytecode.Bastore:
		e.OpArrayStore(value.TInt, NarrowByteBool)
	case bytecode.Castore:
		e.OpArrayStore(value.TInt, NarrowChar)
	case bytecode.Sastore:
		e.OpArrayStore(value.TInt, NarrowShort)

	case bytecode.Pop:
		e.OpPop()
	case bytecode.Pop2:
		e.OpPop2()
	case bytecode.Dup:
		e.OpDup()
	case bytecode.DupX1:
		e.OpDupX1()
	case bytecode.DupX2:
		e.OpDupX2()
	case bytecode.Dup2:
		e.OpDup2()
	case bytecode.Dup2X1:
		e.OpDup2X1()
	case bytecode.Dup2X2:
		return e.OpDup2X2()
	case bytecode.Swap:
		e.OpSwap()

	case bytecode.Iadd:
		e.OpBinary(value.TInt, Add)
	case bytecode.Ladd:
		e.OpBinary(value.TLong, Add)
	case bytecode.Fadd:
		e.OpBinary(value.TFloat, Add)
	case bytecode.Dadd:
		e.OpBinary(value.TDouble, Add)
	case bytecode.Isub:
		e.OpBinary(value.TInt, Sub)
	case bytecode.Lsub:
		e.OpBinary(value.TLong, Sub)
	case bytecode.Fsub:
		e.OpBinary(value.TFloat, Sub)
	case bytecode.Dsub:
		e.OpBinary(value.TDouble, Sub)
	case bytecode.Imul:
		e.OpBinary(value.TInt, Mul)
	case bytecode.Lmul:
		e.OpBinary(value.TLong, Mul)
	case bytecode.Fmul:
		e.OpBinary(value.TFloat, Mul)
	case bytecode.Dmul:
		e.OpBinary(value.TDouble, Mul)
	case bytecode.Idiv:
		e.OpBinary(value.TInt, Div)
	case bytecode.Ldiv:
		e.OpBinary(value.TLong, Div)
	case bytecode.Fdiv:
		e.OpBinary(value.TFloat, Div)
	case bytecode.Ddiv:
		e.OpBinary(value.TDouble, Div)
	case bytecode.Irem:
		e.OpBinary(value.TInt, Rem)
	case bytecode.Lrem:
		e.OpBinary(value.TLong, Rem)
	case bytecode.Frem:
		e.OpBinary(value.TFloat, Rem)
	case bytecode.Drem:
		e.OpBinary(value.TDouble, Rem)
	case bytecode.Ineg:
		e.OpUnaryNeg(value.TInt)
	case bytecode.Lneg:
		e.OpUnaryNeg(value.TLong)
	case bytecode.Fneg:
		e.OpUnaryNeg(value.TFloat)
	case bytecode.Dneg:
		e.OpUnaryNeg(value.TDouble)
	case bytecode.Ishl:
		e.OpBinary(value.TInt, Shl)
	case bytecode.Lshl:
		e.OpBinary(value.TLong, Shl)
	case bytecode.Ishr:
		e.OpBinary(value.TInt, Shr)
	case bytecode.Lshr:
		e.OpBinary(value.TLong, Shr)
	case bytecode.Iushr:
		e.OpBinary(value.TInt, Ushr)
	case bytecode.Lushr:
		e.OpBinary(value.TLong, Ushr)
	case bytecode.Iand:
		e.OpBinary(value.TInt, And)
	case bytecode.Land:
		e.OpBinary(value.TLong, And)
	case bytecode.Ior:
		e.OpBinary(value.TInt, Or)
	case bytecode.Lor:
		e.OpBinary(value.TLong, Or)
	case bytecode.Ixor:
		e.OpBinary(value.TInt, Xor)
	case bytecode.Lxor:
		e.OpBinary(value.TLong, Xor)
	case bytecode.Iinc:
		e.OpIinc(uint16(u8(code, pos+1)), int32(i8(code, pos+2)))

	case bytecode.I2l:
		e.OpConvert(I2L)
	case bytecode.I2f:
		e.OpConvert(I2F)
	case bytecode.I2d:
		e.OpConvert(I2D)
	case bytecode.L2i:
		e.OpConvert(L2I)
	case bytecode.L2f:
		e.OpConvert(L2F)
	case bytecode.L2d:
		e.OpConvert(L2D)
	case bytecode.F2i:
		e.OpConvert(F2I)
	case bytecode.F2l:
		e.OpConvert(F2L)
	case bytecode.F2d:
		e.OpConvert(F2D)
	case bytecode.D2i:
		e.OpConvert(D2I)
	case bytecode.D2l:
		e.OpConvert(D2L)
	case bytecode.D2f:
		e.OpConvert(D2F)
	case bytecode.I2b:
		e.OpConvert(I2B)
	case bytecode.I2c:
		e.OpConvert(I2C)
	case bytecode.I2s:
		e.OpConvert(I2S)

	case bytecode.Lcmp:
		e.OpLcmp()
	case bytecode.Fcmpl:
		e.OpCmp(value.TFloat, false)
	case bytecode.Fcmpg:
		e.OpCmp(value.TFloat, true)
	case bytecode.Dcmpl:
		e.OpCmp(value.TDouble, false)
	case bytecode.Dcmpg:
		e.OpCmp(value.TDouble, true)

	case bytecode.Ifeq, bytecode.Ifne, bytecode.Iflt, bytecode.Ifge, bytecode.Ifgt, bytecode.Ifle:
		id, err := blockAt(blocks, bytecode.BranchOffset16(code, pos))
		if err != nil {
			return err
		}
		e.OpIf(ifCmpOpOf[op], id)
	case bytecode.IfIcmpeq, bytecode.IfIcmpne, bytecode.IfIcmplt, bytecode.IfIcmpge, bytecode.IfIcmpgt, bytecode.IfIcmple:
		id, err := blockAt(blocks, bytecode.BranchOffset16(code, pos))
		if err != nil {
			return err
		}
		e.OpIfCmp(value.TInt, ifCmpOpOf[op], id)
	case bytecode.IfAcmpeq, bytecode.IfAcmpne:
		id, err := blockAt(blocks, bytecode.BranchOffset16(code, pos))
		if err != nil {
			return err
		}
		e.OpIfCmp(value.TRef, ifCmpOpOf[op], id)
	case bytecode.Ifnull:
		id, err := blockAt(blocks, bytecode.BranchOffset16(code, pos))
		if err != nil {
			return err
		}
		e.OpIfNull(id)
	case bytecode.Ifnonnull:
		id, err := blockAt(blocks, bytecode.BranchOffset16(code, pos))
		if err != nil {
			return err
		}
		e.OpIfNonnull(id)
	case bytecode.Goto:
		id, err := blockAt(blocks, bytecode.BranchOffset16(code, pos))
		if err != nil {
			return err
		}
		e.OpGoto(id)
	case bytecode.GotoW:
		id, err := blockAt(blocks, bytecode.BranchOffset32(code, pos))
		if err != nil {
			return err
		}
		e.OpGoto(id)
	case bytecode.Tableswitch:
		return decodeTableswitch(code, pos, blocks, e)

	case bytecode.Ireturn, bytecode.Lreturn, bytecode.Freturn, bytecode.Dreturn, bytecode.Areturn:
		e.OpRet()
	case bytecode.Return:
		e.OpRetVoid()

	case bytecode.Getstatic:
		f, err := cp.Field(u16(code, pos+1))
		if err != nil {
			return err
		}
		e.OpGetStatic(f)
	case bytecode.Putstatic:
		f, err := cp.Field(u16(code, pos+1))
		if err != nil {
			return err
		}
		e.OpPutStatic(f)
	case bytecode.Getfield:
		f, err := cp.Field(u16(code, pos+1))
		if err != nil {
			return err
		}
		e.OpGetField(f)
	case bytecode.Putfield:
		f, err := cp.Field(u16(code, pos+1))
		if err != nil {
			return err
		}
		e.OpPutField(f)

	case bytecode.Invokevirtual:
		mm, err := cp.Method(u16(code, pos+1))
		if err != nil {
			return err
		}
		e.OpInvokeVirtual(mm)
	case bytecode.Invokespecial:
		mm, err := cp.Method(u16(code, pos+1))
		if err != nil {
			return err
		}
		e.OpInvokeSpecial(mm)
	case bytecode.Invokestatic:
		mm, err := cp.Method(u16(code, pos+1))
		if err != nil {
			return err
		}
		e.OpInvokeStatic(mm)
	case bytecode.Invokeinterface:
		mm, err := cp.Method(u16(code, pos+1))
		if err != nil {
			return err
		}
		e.OpInvokeInterface(mm)

	case bytecode.New:
		k, err := cp.Klass(u16(code, pos+1))
		if err != nil {
			return err
		}
		e.OpNew(k)
	case bytecode.Newarray:
		e.OpNewArray(class.PrimType(u8(code, pos+1)))
	case bytecode.Anewarray:
		elem, err := cp.Klass(u16(code, pos+1))
		if err != nil {
			return err
		}
		e.OpANewArray(class.ArrayKlassOf(elem))
	case bytecode.Multianewarray:
		k, err := cp.Klass(u16(code, pos+1))
		if err != nil {
			return err
		}
		return e.OpMultiANewArray(k, u8(code, pos+3))
	case bytecode.Arraylength:
		e.OpArrayLength()
	case bytecode.Athrow:
		return e.OpAThrow()
	case bytecode.Checkcast:
		k, err := cp.Klass(u16(code, pos+1))
		if err != nil {
			return err
		}
		e.OpCheckCast(k)
	case bytecode.Instanceof:
		k, err := cp.Klass(u16(code, pos+1))
		if err != nil {
			return err
		}
		e.OpInstanceOf(k)
	case bytecode.Monitorenter:
		e.OpMonitorEnter()
	case bytecode.Monitorexit:
		e.OpMonitorExit()

	default:
		return fmt.Errorf("%w: opcode %d", ErrUnsupportedOp, op)
	}
	return nil
}

var ifCmpOpOf = map[bytecode.Op]CmpOp{
	bytecode.Ifeq: Eq, bytecode.Ifne: Ne, bytecode.Iflt: Lt, bytecode.Ifge: Ge, bytecode.Ifgt: Gt, bytecode.Ifle: Le,
	bytecode.IfIcmpeq: Eq, bytecode.IfIcmpne: Ne, bytecode.IfIcmplt: Lt, bytecode.IfIcmpge: Ge, bytecode.IfIcmpgt: Gt, bytecode.IfIcmple: Le,
	bytecode.IfAcmpeq: Eq, bytecode.IfAcmpne: Ne,
}

func decodeLdc(cp *class.ConstantPool, idx uint16, e Emitter) error {
	if i, err := cp.Int(idx); err == nil {
		e.OpConst(value.TInt, value.To(i))
		return nil
	}
	if f, err := cp.Float(idx); err == nil {
		e.OpConst(value.TFloat, value.To(f))
		return nil
	}
	if s, err := cp.StringRef(idx); err == nil {
		e.OpConst(value.TRef, s)
		return nil
	}
	return fmt.Errorf("%w: ldc of non-numeric, non-String constant at index %d", ErrUnsupportedOp, idx)
}

func decodeLdc2(cp *class.ConstantPool, idx uint16, e Emitter) error {
	if l, err := cp.Long(idx); err == nil {
		e.OpConst(value.TLong, value.To(l))
		return nil
	}
	if d, err := cp.Double(idx); err == nil {
		e.OpConst(value.TDouble, value.To(d))
		return nil
	}
	return fmt.Errorf("%w: ldc2_w of non wide-numeric constant at index %d", ErrUnsupportedOp, idx)
}

func decodeTableswitch(code []byte, pos int, blocks *scan.Blocks, e Emitter) error {
	defOff, low, high, table := bytecode.TableswitchHeader(code, pos)
	def, err := blockAt(blocks, pos+int(defOff))
	if err != nil {
		return err
	}
	targets := make([]scan.BlockID, len(table))
	for i, off := range table {
		id, err := blockAt(blocks, pos+int(off))
		if err != nil {
			return err
		}
		targets[i] = id
	}
	e.OpTableswitch(low, high, def, targets)
	return nil
}
