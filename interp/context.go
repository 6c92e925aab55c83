package interp

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/hornet-go/hornet/class"
	"github.com/hornet-go/hornet/frame"
	"github.com/hornet-go/hornet/thread"
	"github.com/hornet-go/hornet/value"
)

// execCtx is one method activation's interpretation state: the trampoline
// buffer, the frame it operates on, and the running thread/interpreter it
// was invoked from. Unlike exec.VM's single mutable vm.ctx (wagon never
// recurses back into itself through the Go call stack), a fresh execCtx is
// created per call so Java-to-Java recursion — ordinary recursive Go calls
// to (*Interp).Execute — just works (§5 "re-entrant calls into the
// backend execute").
type execCtx struct {
	it   *Interp
	t    *thread.Thread
	m    *class.Method
	f    *frame.Frame
	code []byte
	pc   int
}

func (ec *execCtx) u8() uint8 {
	v := ec.code[ec.pc]
	ec.pc++
	return v
}

func (ec *execCtx) i8() int8 { return int8(ec.u8()) }

func (ec *execCtx) u16() uint16 {
	v := binary.BigEndian.Uint16(ec.code[ec.pc:])
	ec.pc += 2
	return v
}

func (ec *execCtx) i32() int32 {
	v := binary.BigEndian.Uint32(ec.code[ec.pc:])
	ec.pc += 4
	return int32(v)
}

func (ec *execCtx) i64() int64 {
	v := binary.BigEndian.Uint64(ec.code[ec.pc:])
	ec.pc += 8
	return int64(v)
}

func (ec *execCtx) f32() float32 {
	return math.Float32frombits(uint32(ec.i32()))
}

func (ec *execCtx) f64() float64 {
	return math.Float64frombits(uint64(ec.i64()))
}

func (ec *execCtx) ptrField() *class.Field {
	p := uintptr(ec.i64())
	return (*class.Field)(unsafe.Pointer(p))
}

func (ec *execCtx) ptrMethod() *class.Method {
	p := uintptr(ec.i64())
	return (*class.Method)(unsafe.Pointer(p))
}

func (ec *execCtx) ptrKlass() *class.Klass {
	p := uintptr(ec.i64())
	return (*class.Klass)(unsafe.Pointer(p))
}

// push/pop/top delegate to the frame's operand stack.
func (ec *execCtx) push(v value.Value)  { ec.f.Push(v) }
func (ec *execCtx) pop() value.Value    { return ec.f.Pop() }
func (ec *execCtx) top() value.Value    { return ec.f.Top() }
func (ec *execCtx) local(i uint16) value.Value {
	return ec.f.Locals[i]
}
func (ec *execCtx) setLocal(i uint16, v value.Value) { ec.f.Locals[i] = v }
