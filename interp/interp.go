// Package interp is the direct-threaded interpreter (§4.3): it drives the
// dispatch table in dispatch.go/stack.go/arith.go/control.go/mem.go/invoke.go
// over a method's translated trampoline, the way exec.VM.execCode drives its
// funcTable over wagon's compiled instruction stream.
package interp

import (
	"errors"
	"fmt"

	"github.com/hornet-go/hornet/class"
	"github.com/hornet-go/hornet/ffi"
	"github.com/hornet-go/hornet/frame"
	"github.com/hornet-go/hornet/heap"
	"github.com/hornet-go/hornet/thread"
	"github.com/hornet-go/hornet/translate"
	"github.com/hornet-go/hornet/value"
)

// Interp is the concrete thread.Backend this core ships: it owns the heap
// and native-call adapter every thread's method calls ultimately reach, plus
// a small private thread used only to run <clinit> (§5 "class
// initialization is a global, once-per-class gate, not tied to any calling
// thread's identity").
type Interp struct {
	gc  *heap.GC
	ffi *ffi.Adapter

	initThread *thread.Thread
}

// New wires an Interp to a heap and native-method registry, the two
// collaborators every program depends on (§1).
func New(gc *heap.GC, adapter *ffi.Adapter) (*Interp, error) {
	it := &Interp{gc: gc, ffi: adapter}
	initPool, err := frame.NewPool(4)
	if err != nil {
		return nil, err
	}
	it.initThread = thread.New(initPool, it)
	return it, nil
}

// classInit runs k's <clinit> if declared, using the interpreter's private
// init thread rather than borrowing whichever caller thread first touched
// k, matching the once-per-class (not once-per-thread) guarantee
// class.Klass.Init already provides via sync.Once.
func (it *Interp) classInit(k *class.Klass) error {
	clinit := k.LookupMethodDeclared("<clinit>", "()V")
	if clinit == nil {
		return nil
	}
	_, err := it.initThread.Execute(clinit, nil)
	return err
}

// Execute implements thread.Backend: it ensures m's declaring klass is
// initialized, then either hands off to the native-call adapter or runs m's
// trampoline, lazily translated on first use via class.Method.Trampoline
// (§5).
func (it *Interp) Execute(t *thread.Thread, m *class.Method, f *frame.Frame) (value.Value, error) {
	if err := m.Klass.Init(it.classInit); err != nil {
		return value.Zero, err
	}
	if m.IsNative() {
		result, err := it.ffi.Invoke(m, f)
		if errors.Is(err, ffi.ErrUnsatisfiedLink) {
			// ffi.Invoke's error is concrete to the registry lookup; wrap it
			// in the interp-level sentinel so callers that only import interp
			// (not ffi) can still match it with errors.Is.
			err = fmt.Errorf("%w: %s", ErrUnsatisfiedLink, err)
		}
		return result, err
	}
	code, err := m.Trampoline(translate.Translate)
	if err != nil {
		return value.Zero, err
	}
	return it.run(t, m, f, code)
}

// run is the direct-threaded dispatch loop: fetch a tag, advance past it,
// invoke the matching handler, repeat until a handler reports done (§4.3,
// §9 "a single dense dispatch keyed by the opcode tag").
func (it *Interp) run(t *thread.Thread, m *class.Method, f *frame.Frame, code []byte) (value.Value, error) {
	ec := &execCtx{it: it, t: t, m: m, f: f, code: code}
	for ec.pc < len(code) {
		startPC := ec.pc
		op := translate.TOp(ec.u8())
		h := dispatch[op]
		if h == nil {
			return value.Zero, UnknownOpcodeError{Op: byte(op)}
		}
		if Debug {
			logger.Printf("%s.%s @%d: op=%d", m.Klass.Name, m.Name, startPC, op)
		}
		done, result, err := h(ec, op)
		if err != nil {
			return value.Zero, fmt.Errorf("interp: %s.%s at %d: %w", m.Klass.Name, m.Name, startPC, err)
		}
		if done {
			return result, nil
		}
	}
	return value.Zero, nil
}
