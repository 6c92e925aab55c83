// Package thread models the execution context a bytecode call runs under:
// an identity usable as a monitor owner token, and a per-thread Frame pool
// (§5). Go has no public goroutine-local storage, so every operation that
// the source would resolve implicitly off the running OS thread — which
// frame pool to draw from, who currently owns a monitor — takes a
// *Thread parameter explicitly instead.
package thread

import (
	"sync/atomic"

	"github.com/hornet-go/hornet/class"
	"github.com/hornet-go/hornet/frame"
	"github.com/hornet-go/hornet/value"
)

var nextID int64

// Thread is the caller-visible unit of execution. Its pointer identity is
// used as the monitor-ownership token (§5), so two Threads are never equal
// even if constructed with identical arguments.
type Thread struct {
	id      int64
	pool    *frame.Pool
	backend Backend
}

// Backend executes one method invocation on behalf of a Thread, given an
// already-populated Frame (locals holding the arguments, per JVM calling
// convention: `this` then declared args at the low indices for instance
// methods). It is implemented by the interp package; this package only
// defines the seam so thread does not depend on interp (avoiding an import
// cycle, since interp depends on thread for frame pooling and monitor
// identity).
type Backend interface {
	Execute(t *Thread, m *class.Method, f *frame.Frame) (value.Value, error)
}

// New returns a Thread drawing its frames from pool and dispatching
// invocations to backend.
func New(pool *frame.Pool, backend Backend) *Thread {
	return &Thread{id: atomic.AddInt64(&nextID, 1), pool: pool, backend: backend}
}

// ID returns the thread's unique, process-lifetime identity number, useful
// for logging.
func (t *Thread) ID() int64 { return t.id }

// MakeFrame acquires a Frame sized for m from the thread's pool: at least
// m.MaxLocals locals, and never fewer than m.ArgsCount.
func (t *Thread) MakeFrame(m *class.Method) *frame.Frame {
	n := m.MaxLocals
	if m.ArgsCount > n {
		n = m.ArgsCount
	}
	return t.pool.Acquire(n)
}

// FreeFrame returns f to the thread's pool once a call using it has
// returned.
func (t *Thread) FreeFrame(f *frame.Frame) {
	t.pool.Release(f)
}

// Execute runs m to completion on t, populating locals from args first
// (§4.3 invoke* family hands the callee its arguments this way).
func (t *Thread) Execute(m *class.Method, args []value.Value) (value.Value, error) {
	f := t.MakeFrame(m)
	defer t.FreeFrame(f)
	copy(f.Locals, args)
	return t.backend.Execute(t, m, f)
}
