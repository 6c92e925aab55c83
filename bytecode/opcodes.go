// Package bytecode names the classic Java class-file instruction set (the
// "source bytecode" the scanner and translator consume) and knows how to
// measure each instruction's length, including the variable-width
// tableswitch/lookupswitch forms. It plays the role disasm.go and
// wasm/operators play for wagon: a stable numeric opcode table plus the
// decode-one-instruction primitive everything else builds on.
package bytecode

import "fmt"

// Op is one opcode byte of the classic class-file instruction set.
type Op byte

const (
	Nop         Op = 0
	AconstNull  Op = 1
	IconstM1    Op = 2
	Iconst0     Op = 3
	Iconst1     Op = 4
	Iconst2     Op = 5
	Iconst3     Op = 6
	Iconst4     Op = 7
	Iconst5     Op = 8
	Lconst0     Op = 9
	Lconst1     Op = 10
	Fconst0     Op = 11
	Fconst1     Op = 12
	Fconst2     Op = 13
	Dconst0     Op = 14
	Dconst1     Op = 15
	Bipush      Op = 16
	Sipush      Op = 17
	Ldc         Op = 18
	LdcW        Op = 19
	Ldc2W       Op = 20
	Iload       Op = 21
	Lload       Op = 22
	Fload       Op = 23
	Dload       Op = 24
	Aload       Op = 25
	Iload0      Op = 26
	Iload1      Op = 27
	Iload2      Op = 28
	Iload3      Op = 29
	Lload0      Op = 30
	Lload1      Op = 31
	Lload2      Op = 32
	Lload3      Op = 33
	Fload0      Op = 34
	Fload1      Op = 35
	Fload2      Op = 36
	Fload3      Op = 37
	Dload0      Op = 38
	Dload1      Op = 39
	Dload2      Op = 40
	Dload3      Op = 41
	Aload0      Op = 42
	Aload1      Op = 43
	Aload2      Op = 44
	Aload3      Op = 45
	Iaload      Op = 46
	Laload      Op = 47
	Faload      Op = 48
	Daload      Op = 49
	Aaload      Op = 50
	Baload      Op = 51
	Caload      Op = 52
	Saload      Op = 53
	Istore      Op = 54
	Lstore      Op = 55
	Fstore      Op = 56
	Dstore      Op = 57
	Astore      Op = 58
	Istore0     Op = 59
	Istore1     Op = 60
	Istore2     Op = 61
	Istore3     Op = 62
	Lstore0     Op = 63
	Lstore1     Op = 64
	Lstore2     Op = 65
	Lstore3     Op = 66
	Fstore0     Op = 67
	Fstore1     Op = 68
	Fstore2     Op = 69
	Fstore3     Op = 70
	Dstore0     Op = 71
	Dstore1     Op = 72
	Dstore2     Op = 73
	Dstore3     Op = 74
	Astore0     Op = 75
	Astore1     Op = 76
	Astore2     Op = 77
	Astore3     Op = 78
	Iastore     Op = 79
	Lastore     Op = 80
	Fastore     Op = 81
	Dastore     Op = 82
	Aastore     Op = 83
	Bastore     Op = 84
	Castore     Op = 85
	Sastore     Op = 86
	Pop         Op = 87
	Pop2        Op = 88
	Dup         Op = 89
	DupX1       Op = 90
	DupX2       Op = 91
	Dup2        Op = 92
	Dup2X1      Op = 93
	Dup2X2      Op = 94
	Swap        Op = 95
	Iadd        Op = 96
	Ladd        Op = 97
	Fadd        Op = 98
	Dadd        Op = 99
	Isub        Op = 100
	Lsub        Op = 101
	Fsub        Op = 102
	Dsub        Op = 103
	Imul        Op = 104
	Lmul        Op = 105
	Fmul        Op = 106
	Dmul        Op = 107
	Idiv        Op = 108
	Ldiv        Op = 109
	Fdiv        Op = 110
	Ddiv        Op = 111
	Irem        Op = 112
	Lrem        Op = 113
	Frem        Op = 114
	Drem        Op = 115
	Ineg        Op = 116
	Lneg        Op = 117
	Fneg        Op = 118
	Dneg        Op = 119
	Ishl        Op = 120
	Lshl        Op = 121
	Ishr        Op = 122
	Lshr        Op = 123
	Iushr       Op = 124
	Lushr       Op = 125
	Iand        Op = 126
	Land        Op = 127
	Ior         Op = 128
	Lor         Op = 129
	Ixor        Op = 130
	Lxor        Op = 131
	Iinc        Op = 132
	I2l         Op = 133
	I2f         Op = 134
	I2d         Op = 135
	L2i         Op = 136
	L2f         Op = 137
	L2d         Op = 138
	F2i         Op = 139
	F2l         Op = 140
	F2d         Op = 141
	D2i         Op = 142
	D2l         Op = 143
	D2f         Op = 144
	I2b         Op = 145
	I2c         Op = 146
	I2s         Op = 147
	Lcmp        Op = 148
	Fcmpl       Op = 149
	Fcmpg       Op = 150
	Dcmpl       Op = 151
	Dcmpg       Op = 152
	Ifeq        Op = 153
	Ifne        Op = 154
	Iflt        Op = 155
	Ifge        Op = 156
	Ifgt        Op = 157
	Ifle        Op = 158
	IfIcmpeq    Op = 159
	IfIcmpne    Op = 160
	IfIcmplt    Op = 161
	IfIcmpge    Op = 162
	IfIcmpgt    Op = 163
	IfIcmple    Op = 164
	IfAcmpeq    Op = 165
	IfAcmpne    Op = 166
	Goto        Op = 167
	Jsr         Op = 168
	Ret         Op = 169
	Tableswitch Op = 170
	Lookupswitch Op = 171
	Ireturn     Op = 172
	Lreturn     Op = 173
	Freturn     Op = 174
	Dreturn     Op = 175
	Areturn     Op = 176
	Return      Op = 177
	Getstatic   Op = 178
	Putstatic   Op = 179
	Getfield    Op = 180
	Putfield    Op = 181
	Invokevirtual   Op = 182
	Invokespecial   Op = 183
	Invokestatic    Op = 184
	Invokeinterface Op = 185
	Invokedynamic   Op = 186
	New             Op = 187
	Newarray        Op = 188
	Anewarray       Op = 189
	Arraylength     Op = 190
	Athrow          Op = 191
	Checkcast       Op = 192
	Instanceof      Op = 193
	Monitorenter    Op = 194
	Monitorexit     Op = 195
	Wide            Op = 196
	Multianewarray  Op = 197
	Ifnull          Op = 198
	Ifnonnull       Op = 199
	GotoW           Op = 200
	JsrW            Op = 201
)

// fixedLen holds the instruction length (including the opcode byte) for
// every opcode whose length does not depend on alignment or an embedded
// count, mirroring the "decode one instruction and advance" step every
// bytecode consumer (scan, translate, disassemblers) needs (grounded on the
// decode-and-advance shape of exec/vm.go's fetch* helpers, generalized from
// fixed WebAssembly operand widths to the class-file format's per-opcode
// table).
var fixedLen = map[Op]int{
	Nop: 1, AconstNull: 1,
	IconstM1: 1, Iconst0: 1, Iconst1: 1, Iconst2: 1, Iconst3: 1, Iconst4: 1, Iconst5: 1,
	Lconst0: 1, Lconst1: 1,
	Fconst0: 1, Fconst1: 1, Fconst2: 1,
	Dconst0: 1, Dconst1: 1,
	Bipush: 2, Sipush: 3,
	Ldc: 2, LdcW: 3, Ldc2W: 3,
	Iload: 2, Lload: 2, Fload: 2, Dload: 2, Aload: 2,
	Iload0: 1, Iload1: 1, Iload2: 1, Iload3: 1,
	Lload0: 1, Lload1: 1, Lload2: 1, Lload3: 1,
	Fload0: 1, Fload1: 1, Fload2: 1, Fload3: 1,
	Dload0: 1, Dload1: 1, Dload2: 1, Dload3: 1,
	Aload0: 1, Aload1: 1, Aload2: 1, Aload3: 1,
	Iaload: 1, Laload: 1, Faload: 1, Daload: 1, Aaload: 1, Baload: 1, Caload: 1, Saload: 1,
	Istore: 2, Lstore: 2, Fstore: 2, Dstore: 2, Astore: 2,
	Istore0: 1, Istore1: 1, Istore2: 1, Istore3: 1,
	Lstore0: 1, Lstore1: 1, Lstore2: 1, Lstore3: 1,
	Fstore0: 1, Fstore1: 1, Fstore2: 1, Fstore3: 1,
	Dstore0: 1, Dstore1: 1, Dstore2: 1, Dstore3: 1,
	Astore0: 1, Astore1: 1, Astore2: 1, Astore3: 1,
	Iastore: 1, Lastore: 1, Fastore: 1, Dastore: 1, Aastore: 1, Bastore: 1, Castore: 1, Sastore: 1,
	Pop: 1, Pop2: 1, Dup: 1, DupX1: 1, DupX2: 1, Dup2: 1, Dup2X1: 1, Dup2X2: 1, Swap: 1,
	Iadd: 1, Ladd: 1, Fadd: 1, Dadd: 1,
	Isub: 1, Lsub: 1, Fsub: 1, Dsub: 1,
	Imul: 1, Lmul: 1, Fmul: 1, Dmul: 1,
	Idiv: 1, Ldiv: 1, Fdiv: 1, Ddiv: 1,
	Irem: 1, Lrem: 1, Frem: 1, Drem: 1,
	Ineg: 1, Lneg: 1, Fneg: 1, Dneg: 1,
	Ishl: 1, Lshl: 1, Ishr: 1, Lshr: 1, Iushr: 1, Lushr: 1,
	Iand: 1, Land: 1, Ior: 1, Lor: 1, Ixor: 1, Lxor: 1,
	Iinc: 3,
	I2l: 1, I2f: 1, I2d: 1, L2i: 1, L2f: 1, L2d: 1, F2i: 1, F2l: 1, F2d: 1, D2i: 1, D2l: 1, D2f: 1,
	I2b: 1, I2c: 1, I2s: 1,
	Lcmp: 1, Fcmpl: 1, Fcmpg: 1, Dcmpl: 1, Dcmpg: 1,
	Ifeq: 3, Ifne: 3, Iflt: 3, Ifge: 3, Ifgt: 3, Ifle: 3,
	IfIcmpeq: 3, IfIcmpne: 3, IfIcmplt: 3, IfIcmpge: 3, IfIcmpgt: 3, IfIcmple: 3,
	IfAcmpeq: 3, IfAcmpne: 3,
	Goto: 3, Jsr: 3, Ret: 2,
	Ireturn: 1, Lreturn: 1, Freturn: 1, Dreturn: 1, Areturn: 1, Return: 1,
	Getstatic: 3, Putstatic: 3, Getfield: 3, Putfield: 3,
	Invokevirtual: 3, Invokespecial: 3, Invokestatic: 3,
	Invokeinterface: 5, Invokedynamic: 5,
	New: 3, Newarray: 2, Anewarray: 3,
	Arraylength: 1, Athrow: 1,
	Checkcast: 3, Instanceof: 3,
	Monitorenter: 1, Monitorexit: 1,
	Multianewarray: 4,
	Ifnull: 3, Ifnonnull: 3,
	GotoW: 5, JsrW: 5,
}

// ErrUnknownOpcode is returned by Len when pos does not begin a
// recognized instruction (§4.1 "Unknown opcode -> fails with
// malformed-bytecode").
var ErrUnknownOpcode = fmt.Errorf("bytecode: unknown opcode")

// ErrTruncated is returned when an instruction's fixed or computed operand
// bytes run past the end of code.
var ErrTruncated = fmt.Errorf("bytecode: truncated instruction")

// Len returns the total length in bytes (opcode plus operands) of the
// instruction starting at pos in code, including the variable-width
// tableswitch/lookupswitch padding-plus-table forms. wide-prefixed
// instructions are rejected with ErrUnknownOpcode: wide-operand variants
// are out of scope.
func Len(code []byte, pos int) (int, error) {
	if pos < 0 || pos >= len(code) {
		return 0, ErrTruncated
	}
	op := Op(code[pos])
	if op == Wide {
		return 0, ErrUnknownOpcode
	}
	if n, ok := fixedLen[op]; ok {
		if pos+n > len(code) {
			return 0, ErrTruncated
		}
		return n, nil
	}
	switch op {
	case Tableswitch:
		return tableswitchLen(code, pos)
	case Lookupswitch:
		return lookupswitchLen(code, pos)
	default:
		return 0, ErrUnknownOpcode
	}
}

// padLen is the number of zero-padding bytes following a
// tableswitch/lookupswitch opcode byte, bringing the following int32s onto
// a 4-byte boundary relative to the start of the method's code.
func padLen(pos int) int {
	return (4 - (pos+1)%4) % 4
}

func tableswitchLen(code []byte, pos int) (int, error) {
	pad := padLen(pos)
	header := pos + 1 + pad
	if header+12 > len(code) {
		return 0, ErrTruncated
	}
	low := int32(beUint32(code[header+4:]))
	high := int32(beUint32(code[header+8:]))
	n := int(high-low) + 1
	if n < 0 {
		return 0, ErrTruncated
	}
	total := 1 + pad + 12 + n*4
	if pos+total > len(code) {
		return 0, ErrTruncated
	}
	return total, nil
}

func lookupswitchLen(code []byte, pos int) (int, error) {
	pad := padLen(pos)
	header := pos + 1 + pad
	if header+8 > len(code) {
		return 0, ErrTruncated
	}
	n := int(beUint32(code[header+4:]))
	if n < 0 {
		return 0, ErrTruncated
	}
	total := 1 + pad + 8 + n*8
	if pos+total > len(code) {
		return 0, ErrTruncated
	}
	return total, nil
}

func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// TableswitchHeader decodes the default/low/high fields and per-entry
// target table at pos, returning them as relative byte offsets (as stored
// in the class file, relative to pos) for the scanner/translator to resolve
// to absolute positions.
func TableswitchHeader(code []byte, pos int) (def int32, low int32, high int32, table []int32) {
	pad := padLen(pos)
	header := pos + 1 + pad
	def = int32(beUint32(code[header:]))
	low = int32(beUint32(code[header+4:]))
	high = int32(beUint32(code[header+8:]))
	n := int(high-low) + 1
	table = make([]int32, n)
	for i := 0; i < n; i++ {
		table[i] = int32(beUint32(code[header+12+i*4:]))
	}
	return
}

// LookupswitchHeader decodes the default offset and the (key, offset)
// pairs of a lookupswitch at pos.
func LookupswitchHeader(code []byte, pos int) (def int32, keys []int32, offsets []int32) {
	pad := padLen(pos)
	header := pos + 1 + pad
	def = int32(beUint32(code[header:]))
	n := int(beUint32(code[header+4:]))
	keys = make([]int32, n)
	offsets = make([]int32, n)
	for i := 0; i < n; i++ {
		keys[i] = int32(beUint32(code[header+8+i*8:]))
		offsets[i] = int32(beUint32(code[header+8+i*8+4:]))
	}
	return
}

// IsBranch reports whether op transfers control to a target embedded in its
// own operands (conditional branches, goto, tableswitch, lookupswitch,
// ret) — the opcodes §4.1 names as sources of basic-block boundaries.
func (op Op) IsBranch() bool {
	switch op {
	case Ifeq, Ifne, Iflt, Ifge, Ifgt, Ifle,
		IfIcmpeq, IfIcmpne, IfIcmplt, IfIcmpge, IfIcmpgt, IfIcmple,
		IfAcmpeq, IfAcmpne, Ifnull, Ifnonnull,
		Goto, GotoW, Jsr, JsrW, Ret,
		Tableswitch, Lookupswitch:
		return true
	}
	return false
}

// IsConditional reports whether op branches only conditionally, i.e. also
// falls through to the next instruction (unlike goto/tableswitch/ret).
func (op Op) IsConditional() bool {
	switch op {
	case Ifeq, Ifne, Iflt, Ifge, Ifgt, Ifle,
		IfIcmpeq, IfIcmpne, IfIcmplt, IfIcmpge, IfIcmpgt, IfIcmple,
		IfAcmpeq, IfAcmpne, Ifnull, Ifnonnull:
		return true
	}
	return false
}

// IsTerminator reports whether op ends a basic block unconditionally
// without a single successor at the next instruction (return family,
// athrow, goto, tableswitch, lookupswitch, ret).
func (op Op) IsTerminator() bool {
	switch op {
	case Ireturn, Lreturn, Freturn, Dreturn, Areturn, Return, Athrow,
		Goto, GotoW, Tableswitch, Lookupswitch, Ret:
		return true
	}
	return false
}

// BranchOffset16 reads the 16-bit signed branch offset embedded at pos+1
// for the if*/goto family, returning the absolute target position.
func BranchOffset16(code []byte, pos int) int {
	off := int16(uint16(code[pos+1])<<8 | uint16(code[pos+2]))
	return pos + int(off)
}

// BranchOffset32 reads the 32-bit signed branch offset for goto_w/jsr_w.
func BranchOffset32(code []byte, pos int) int {
	off := int32(beUint32(code[pos+1:]))
	return pos + int(off)
}
