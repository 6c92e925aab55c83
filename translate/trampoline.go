// Package translate lowers a method's source bytecode into the internal
// trampoline instruction stream the interpreter consumes (§4.2). It is
// structured the way exec/internal/compile.Compile is: decode one source
// instruction, possibly specialize or rewrite it, and append the resolved
// form (with branch placeholders) to a growing buffer that gets backpatched
// once every block's final offset is known.
package translate

// TOp is one trampoline (internal) opcode. Its numeric value is the
// dispatch-table index the interpreter indexes directly (§9 "a single
// dense dispatch keyed by the opcode tag"), so the ordering below, once
// chosen, must stay stable.
type TOp byte

const (
	TNop TOp = iota

	TIconst
	TLconst
	TFconst
	TDconst
	TAconstNull

	TIload
	TLload
	TFload
	TDload
	TAload
	TIstore
	TLstore
	TFstore
	TDstore
	TAstore

	TIaload
	TLaload
	TFaload
	TDaload
	TAaload
	TBaload
	TCaload
	TSaload
	TIastore
	TLastore
	TFastore
	TDastore
	TAastore
	TBastore
	TCastore
	TSastore

	TPop
	TPop2
	TDup
	TDupX1
	TDupX2
	TDup2
	TDup2X1
	TSwap

	TIadd
	TLadd
	TFadd
	TDadd
	TIsub
	TLsub
	TFsub
	TDsub
	TImul
	TLmul
	TFmul
	TDmul
	TIdiv
	TLdiv
	TFdiv
	TDdiv
	TIrem
	TLrem
	TFrem
	TDrem
	TIneg
	TLneg
	TFneg
	TDneg
	TIshl
	TLshl
	TIshr
	TLshr
	TIushr
	TLushr
	TIand
	TLand
	TIor
	TLor
	TIxor
	TLxor
	TIinc

	TI2l
	TI2f
	TI2d
	TL2i
	TL2f
	TL2d
	TF2i
	TF2l
	TF2d
	TD2i
	TD2l
	TD2f
	TI2b
	TI2c
	TI2s

	TLcmp
	TFcmpl
	TFcmpg
	TDcmpl
	TDcmpg

	TIfeq
	TIfne
	TIflt
	TIfge
	TIfgt
	TIfle
	TIfIcmpeq
	TIfIcmpne
	TIfIcmplt
	TIfIcmpge
	TIfIcmpgt
	TIfIcmple
	TIfAcmpeq
	TIfAcmpne
	TIfnull
	TIfnonnull
	TGoto
	TTableswitch

	TRet
	TRetVoid

	TGetstatic
	TPutstatic
	TGetfield
	TPutfield

	TInvokevirtual
	TInvokespecial
	TInvokestatic
	TInvokeinterface

	TNew
	TNewarray
	TAnewarray
	TMultianewarray
	TArraylength
	TAthrow
	TCheckcast
	TInstanceof
	TMonitorenter
	TMonitorexit

	// TRconst pushes a reference constant resolved from the constant pool
	// (ldc of a String, §4.2); appended last rather than alongside
	// TIconst/TLconst/... so every previously-assigned tag keeps its value.
	TRconst

	tOpCount
)
