package interp

import (
	"github.com/hornet-go/hornet/translate"
	"github.com/hornet-go/hornet/value"
)

// opHandler executes one trampoline instruction against ec, already past its
// tag byte; op is that tag, passed through for the handlers shared across
// several TOp values (opBinary, opUnaryNeg, opConvert, opIf...) that need to
// know which one fired. done reports a TRet/TRetVoid was reached; result is
// only meaningful when done is true.
type opHandler func(ec *execCtx, op translate.TOp) (done bool, result value.Value, err error)

// dispatch is the direct-threaded dispatch table, the generalization of
// exec.VM's funcTable[256]func() (§9 "a single dense dispatch keyed by the
// opcode tag"). Handlers live in stack.go, arith.go, control.go, mem.go and
// invoke.go, grouped by concern, and are wired in here by TOp value so the
// table's shape stays readable as one list.
var dispatch [256]opHandler

func init() {
	dispatch[translate.TNop] = opNop

	dispatch[translate.TIconst] = opIconst
	dispatch[translate.TLconst] = opLconst
	dispatch[translate.TFconst] = opFconst
	dispatch[translate.TDconst] = opDconst
	dispatch[translate.TAconstNull] = opAconstNull
	dispatch[translate.TRconst] = opRconst

	dispatch[translate.TIload] = opLoad
	dispatch[translate.TLload] = opLoad
	dispatch[translate.TFload] = opLoad
	dispatch[translate.TDload] = opLoad
	dispatch[translate.TAload] = opLoad
	dispatch[translate.TIstore] = opStore
	dispatch[translate.TLstore] = opStore
	dispatch[translate.TFstore] = opStore
	dispatch[translate.TDstore] = opStore
	dispatch[translate.TAstore] = opStore

	for _, op := range []translate.TOp{
		translate.TIaload, translate.TLaload, translate.TFaload, translate.TDaload,
		translate.TAaload, translate.TBaload, translate.TCaload, translate.TSaload,
	} {
		dispatch[op] = opArrayLoad
	}
	for _, op := range []translate.TOp{
		translate.TIastore, translate.TLastore, translate.TFastore, translate.TDastore,
		translate.TAastore, translate.TBastore, translate.TCastore, translate.TSastore,
	} {
		dispatch[op] = opArrayStore
	}

	dispatch[translate.TPop] = opPop
	dispatch[translate.TPop2] = opPop2
	dispatch[translate.TDup] = opDup
	dispatch[translate.TDupX1] = opDupX1
	dispatch[translate.TDupX2] = opDupX2
	dispatch[translate.TDup2] = opDup2
	dispatch[translate.TDup2X1] = opDup2X1
	dispatch[translate.TSwap] = opSwap

	for _, op := range []translate.TOp{
		translate.TIadd, translate.TLadd, translate.TFadd, translate.TDadd,
		translate.TIsub, translate.TLsub, translate.TFsub, translate.TDsub,
		translate.TImul, translate.TLmul, translate.TFmul, translate.TDmul,
		translate.TIdiv, translate.TLdiv, translate.TFdiv, translate.TDdiv,
		translate.TIrem, translate.TLrem, translate.TFrem, translate.TDrem,
		translate.TIshl, translate.TLshl, translate.TIshr, translate.TLshr,
		translate.TIushr, translate.TLushr, translate.TIand, translate.TLand,
		translate.TIor, translate.TLor, translate.TIxor, translate.TLxor,
	} {
		dispatch[op] = opBinary
	}
	dispatch[translate.TIneg] = opUnaryNeg
	dispatch[translate.TLneg] = opUnaryNeg
	dispatch[translate.TFneg] = opUnaryNeg
	dispatch[translate.TDneg] = opUnaryNeg
	dispatch[translate.TIinc] = opIinc

	for _, op := range []translate.TOp{
		translate.TI2l, translate.TI2f, translate.TI2d, translate.TL2i, translate.TL2f, translate.TL2d,
		translate.TF2i, translate.TF2l, translate.TF2d, translate.TD2i, translate.TD2l, translate.TD2f,
		translate.TI2b, translate.TI2c, translate.TI2s,
	} {
		dispatch[op] = opConvert
	}

	dispatch[translate.TLcmp] = opLcmp
	dispatch[translate.TFcmpl] = opFcmp
	dispatch[translate.TFcmpg] = opFcmp
	dispatch[translate.TDcmpl] = opDcmp
	dispatch[translate.TDcmpg] = opDcmp

	for _, op := range []translate.TOp{
		translate.TIfeq, translate.TIfne, translate.TIflt, translate.TIfge, translate.TIfgt, translate.TIfle,
	} {
		dispatch[op] = opIf
	}
	for _, op := range []translate.TOp{
		translate.TIfIcmpeq, translate.TIfIcmpne, translate.TIfIcmplt,
		translate.TIfIcmpge, translate.TIfIcmpgt, translate.TIfIcmple,
		translate.TIfAcmpeq, translate.TIfAcmpne,
	} {
		dispatch[op] = opIfCmp
	}
	dispatch[translate.TIfnull] = opIfNull
	dispatch[translate.TIfnonnull] = opIfNonnull
	dispatch[translate.TGoto] = opGoto
	dispatch[translate.TTableswitch] = opTableswitch

	dispatch[translate.TRet] = opRet
	dispatch[translate.TRetVoid] = opRetVoid

	dispatch[translate.TGetstatic] = opGetStatic
	dispatch[translate.TPutstatic] = opPutStatic
	dispatch[translate.TGetfield] = opGetField
	dispatch[translate.TPutfield] = opPutField

	dispatch[translate.TInvokevirtual] = opInvokeVirtual
	dispatch[translate.TInvokespecial] = opInvokeSpecial
	dispatch[translate.TInvokestatic] = opInvokeStatic
	dispatch[translate.TInvokeinterface] = opInvokeVirtual

	dispatch[translate.TNew] = opNew
	dispatch[translate.TNewarray] = opNewArray
	dispatch[translate.TAnewarray] = opANewArray
	dispatch[translate.TArraylength] = opArrayLength
	dispatch[translate.TCheckcast] = opCheckCast
	dispatch[translate.TInstanceof] = opInstanceOf
	dispatch[translate.TMonitorenter] = opMonitorEnter
	dispatch[translate.TMonitorexit] = opMonitorExit
}

func opNop(ec *execCtx, op translate.TOp) (bool, value.Value, error) { return false, value.Zero, nil }
