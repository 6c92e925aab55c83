package class

import "fmt"

// PrimType enumerates the newarray atype tags of the JVM spec (§4.3
// "newarray(atype)"), used to look up the klass of a primitive array.
type PrimType uint8

const (
	TBoolean PrimType = 4
	TChar    PrimType = 5
	TFloat   PrimType = 6
	TDouble  PrimType = 7
	TByte    PrimType = 8
	TShort   PrimType = 9
	TInt     PrimType = 10
	TLong    PrimType = 11
)

// ElemSize returns the per-element size in bytes backing a primitive array
// of this kind, used by the heap allocator.
func (t PrimType) ElemSize() int {
	switch t {
	case TBoolean, TByte:
		return 1
	case TChar, TShort:
		return 2
	case TFloat, TInt:
		return 4
	case TDouble, TLong:
		return 8
	default:
		panic(fmt.Sprintf("class: unknown primitive array type %d", t))
	}
}

func (t PrimType) String() string {
	switch t {
	case TBoolean:
		return "boolean"
	case TChar:
		return "char"
	case TFloat:
		return "float"
	case TDouble:
		return "double"
	case TByte:
		return "byte"
	case TShort:
		return "short"
	case TInt:
		return "int"
	case TLong:
		return "long"
	default:
		return "<unknown primitive type>"
	}
}
