// Package ffi is the native-call adapter (§4.4): it bridges a declared
// native method to a Go function, building the argument vector the way a
// real JNI shim builds jvalue[] for a JNIEXPORT entry point.
package ffi

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/hornet-go/hornet/class"
	"github.com/hornet-go/hornet/frame"
	"github.com/hornet-go/hornet/value"
)

// ErrUnsatisfiedLink is returned when a native method has no registered
// Go implementation under its JNI-mangled name.
var ErrUnsatisfiedLink = fmt.Errorf("ffi: unsatisfied link error")

// Env names the "JNIEnv*" slot of the real JNI calling convention's first
// parameter. No Env value is passed: Invoke puts value.Zero in argument
// zero of every native call, exposing no JNI functionality (§4.4 Non-goals).
type Env struct{}

// NativeFunc is the Go-side implementation of a declared native method. args
// is (env, klass-as-ref-if-static-else-this, declared args...), mirroring
// JNI's (JNIEnv*, jclass|jobject, ...) signature.
type NativeFunc func(args []value.Value) (value.Value, error)

// Registry maps a method's JNI-mangled symbol name to its Go implementation,
// the "native method table" a real JVM builds from dlopen'd shared objects.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]NativeFunc
}

// NewRegistry returns an empty native-method table.
func NewRegistry() *Registry {
	return &Registry{funcs: map[string]NativeFunc{}}
}

// Register binds symbol to fn, overwriting any previous binding — the
// embedder's analogue of JNI's RegisterNatives.
func (r *Registry) Register(symbol string, fn NativeFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[symbol] = fn
}

func (r *Registry) lookup(symbol string) (NativeFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[symbol]
	return fn, ok
}

// Adapter invokes a native method against a Registry, handling the
// frame-to-argument-vector translation.
type Adapter struct {
	Registry *Registry
}

// NewAdapter returns an Adapter bound to reg.
func NewAdapter(reg *Registry) *Adapter {
	return &Adapter{Registry: reg}
}

// Invoke reads m's declared arguments out of f's Locals (plus the receiver,
// for an instance method) and calls the registered native function, pushing
// nothing itself — the caller (interp) pushes the returned value if m is
// non-void (§4.4 "native dispatch hands off to the FFI adapter, which
// returns a single value.Value the caller treats exactly like any other
// invoke result").
//
// Locals, not the operand stack, is where arguments live by the time a
// native method runs: thread.Execute populates a callee's Locals directly
// from the args slice its caller built (this, then declared args, for an
// instance method; declared args alone for a static one) and leaves the
// callee's operand stack empty, the same convention every translated
// method body's iload/istore trampoline ops assume.
func (a *Adapter) Invoke(m *class.Method, f *frame.Frame) (value.Value, error) {
	fn, ok := a.Registry.lookup(m.JNIName())
	if !ok {
		return value.Zero, fmt.Errorf("%w: %s", ErrUnsatisfiedLink, m.JNIName())
	}

	declared := len(m.ArgTypes)
	args := make([]value.Value, declared+2)
	args[0] = value.Zero // Env placeholder
	if !m.IsStatic() {
		args[1] = f.Locals[0]
		copy(args[2:], f.Locals[1:1+declared])
	} else {
		// No receiver object for a static call; box the klass itself,
		// mirroring JNI's jclass argument.
		args[1] = value.Ref(unsafe.Pointer(m.Klass))
		copy(args[2:], f.Locals[0:declared])
	}

	return fn(args)
}
