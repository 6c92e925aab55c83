// Package frame provides the per-invocation operand stack/locals storage
// (§3 Frame) and a slab-backed Pool that recycles that storage across calls,
// the way exec.VM reuses vm.ctx.stack across ExecCode invocations rather
// than allocating fresh per call.
package frame

import (
	"github.com/hornet-go/hornet/value"
)

// Frame is one activation record: a fixed-size locals array plus an operand
// stack, both indexed by the trampoline's resolved slot/depth immediates
// (§3, §4.3).
type Frame struct {
	Locals []value.Value
	stack  []value.Value
	PC     int

	slab int // slab slot index when pool-backed, -1 when heap-allocated
}

// Push appends v to the operand stack.
func (f *Frame) Push(v value.Value) {
	f.stack = append(f.stack, v)
}

// Pop removes and returns the top of the operand stack. It panics on
// underflow, matching exec.VM's popUint64 style of trusting the translator
// to have produced stack-balanced trampoline code (§5 — malformed bytecode
// is rejected earlier, at scan/translate time, not re-checked per pop).
func (f *Frame) Pop() value.Value {
	n := len(f.stack)
	v := f.stack[n-1]
	f.stack = f.stack[:n-1]
	return v
}

// Top returns the top of the operand stack without removing it (dup family,
// §4.3).
func (f *Frame) Top() value.Value {
	return f.stack[len(f.stack)-1]
}

// Depth reports the current operand-stack depth.
func (f *Frame) Depth() int {
	return len(f.stack)
}

// reset clears a recycled frame back to an empty, zeroed state before it is
// handed out again.
func (f *Frame) reset(locals []value.Value) {
	for i := range locals {
		locals[i] = value.Zero
	}
	f.Locals = locals
	f.stack = f.stack[:0]
	f.PC = 0
}
