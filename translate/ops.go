package translate

// ArithOp names a typed binary arithmetic operator, specialized per
// value.Type at emission time (§4.2 "Type-to-opcode specialization").
type ArithOp uint8

const (
	Add ArithOp = iota
	Sub
	Mul
	Div
	Rem
	And
	Or
	Xor
	Shl
	Shr
	Ushr
)

// CmpOp names the comparison predicate of an if/if_cmp branch.
type CmpOp uint8

const (
	Eq CmpOp = iota
	Ne
	Lt
	Ge
	Gt
	Le
)

// ConvertKind enumerates the fixed set of JVM numeric conversions; unlike
// Arith/CmpOp this is not a (from,to value.Type) cross product because the
// valid conversions are a small, fixed list rather than every pairing
// (§4.3 "Conversions").
type ConvertKind uint8

const (
	I2L ConvertKind = iota
	I2F
	I2D
	L2I
	L2F
	L2D
	F2I
	F2L
	F2D
	D2I
	D2L
	D2F
	I2B
	I2C
	I2S
)
