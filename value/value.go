// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package value implements the uniform 64-bit operand-stack cell shared by
// the frame, translator and interpreter: a value_t in the source spec.
package value

import (
	"math"
	"unsafe"
)

// Value is a 64-bit cell that holds any of the primitive JVM-ish types the
// core operates on, or a reference. Category-2 source types (long, double)
// fit in a single cell here, unlike the two-slot source layout — a
// simplification the spec calls for explicitly.
type Value uint64

// Zero is the zero value of every Value kind: 0, 0.0, or a nil reference.
const Zero Value = 0

// Type tags the kind of value a Value cell is meant to hold. It exists for
// the translator's type-to-opcode specialization (§4.2); the interpreter
// itself never inspects it, trusting the translator the way the source
// trusts the verifier.
type Type uint8

const (
	TInt Type = iota
	TLong
	TFloat
	TDouble
	TRef
)

func (t Type) String() string {
	switch t {
	case TInt:
		return "int"
	case TLong:
		return "long"
	case TFloat:
		return "float"
	case TDouble:
		return "double"
	case TRef:
		return "ref"
	default:
		return "<unknown type>"
	}
}

// Numeric is the set of Go types To/From coerce a Value to and from.
type Numeric interface {
	~int32 | ~int64 | ~uint32 | ~uint64 | ~float32 | ~float64
}

// To packs a numeric Go value into a Value cell by bit-level reinterpretation.
func To[T Numeric](v T) Value {
	switch x := any(v).(type) {
	case int32:
		return Value(uint32(x))
	case int64:
		return Value(uint64(x))
	case uint32:
		return Value(x)
	case uint64:
		return Value(x)
	case float32:
		return Value(math.Float32bits(x))
	case float64:
		return Value(math.Float64bits(x))
	default:
		panic("value: unsupported numeric type")
	}
}

// From unpacks a Value cell back into T by bit-level reinterpretation.
func From[T Numeric](v Value) T {
	var zero T
	switch any(zero).(type) {
	case int32:
		return any(int32(uint32(v))).(T)
	case int64:
		return any(int64(v)).(T)
	case uint32:
		return any(uint32(v)).(T)
	case uint64:
		return any(uint64(v)).(T)
	case float32:
		return any(math.Float32frombits(uint32(v))).(T)
	case float64:
		return any(math.Float64frombits(uint64(v))).(T)
	default:
		panic("value: unsupported numeric type")
	}
}

// Ref packs an arbitrary heap pointer (object or array) into a Value.
// The pointer survives as a bit pattern only; nothing here keeps the
// pointee alive against Go's garbage collector. heap.GC is responsible for
// holding a strong reference to every object/array it allocates for the
// life of the VM (see heap package and DESIGN.md OQ-1) so that boxing a
// pointer into a Value is safe even though locals/ostack slices are opaque
// uint64 words to the real GC.
func Ref(p unsafe.Pointer) Value {
	return Value(uintptr(p))
}

// Deref unpacks a reference cell back into an unsafe.Pointer. A zero Value
// unpacks to nil, matching the JVM's aconst_null / null reference.
func Deref(v Value) unsafe.Pointer {
	return unsafe.Pointer(uintptr(v))
}

// IsNullRef reports whether v is the null reference.
func IsNullRef(v Value) bool {
	return v == Zero
}
