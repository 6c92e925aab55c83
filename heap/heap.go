// Package heap provides object and array storage for the interpreter: typed
// slot access, with array indices bounds-checked in the style of
// exec/memory.go's inBounds check but reported as ErrArrayIndexOutOfBounds
// rather than a panic, plus the per-object monitor
// monitorenter/exit needs (§4.3) and the GC collaborator (§1) this core
// realizes as permanent retention rather than real collection (§9, OQ-1).
package heap

import (
	"errors"
	"sync"
	"unsafe"

	"github.com/hornet-go/hornet/class"
	"github.com/hornet-go/hornet/value"
)

// ErrNullDereference is returned (wrapped) when an operation is attempted
// against a nil Object/Array handle.
var ErrNullDereference = errors.New("heap: null dereference")

// ErrArrayIndexOutOfBounds mirrors the JVM ArrayIndexOutOfBoundsException
// condition (§4.3 arrayload/arraystore edge case).
var ErrArrayIndexOutOfBounds = errors.New("heap: array index out of bounds")

// ErrOutOfMemory is returned by New* when an allocation cannot be satisfied,
// the allocator's analogue of the source's bytecodeInterpreter OOM trap.
var ErrOutOfMemory = errors.New("heap: out of memory")

// monitor is a recursive per-object lock, owned by thread identity rather
// than goroutine id (§5): Go has no public goroutine-local storage, so the
// owner is whatever *thread.Thread pointer last entered it, passed in
// explicitly by every caller instead of discovered implicitly.
type monitor struct {
	mu     sync.Mutex
	owner  interface{}
	depth  int
	notify *sync.Cond
}

func newMonitor() *monitor {
	m := &monitor{}
	m.notify = sync.NewCond(&m.mu)
	return m
}

// Enter acquires the monitor on behalf of owner, blocking if another owner
// holds it, and re-entering transparently if owner already holds it
// (monitorenter's recursive-lock requirement, §4.3).
func (m *monitor) Enter(owner interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for m.owner != nil && m.owner != owner {
		m.notify.Wait()
	}
	m.owner = owner
	m.depth++
}

// Exit releases one level of recursion, fully releasing the monitor to
// waiters once depth reaches zero (monitorexit, §4.3).
func (m *monitor) Exit(owner interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.owner != owner {
		return errors.New("heap: monitorexit by non-owner")
	}
	m.depth--
	if m.depth == 0 {
		m.owner = nil
		m.notify.Signal()
	}
	return nil
}

// Object is a heap-allocated instance of a klass: one value.Value slot per
// declared instance field, indexed by field.Offset (§3).
type Object struct {
	Klass  *class.Klass
	Fields []value.Value
	mon    monitor
}

// GetField reads the slot for f, returning ErrNullDereference-wrapping
// behavior is the caller's job (interp checks o != nil before calling).
func (o *Object) GetField(f *class.Field) value.Value {
	return o.Fields[f.Offset]
}

// SetField writes the slot for f.
func (o *Object) SetField(f *class.Field, v value.Value) {
	o.Fields[f.Offset] = v
}

// Monitor returns the object's recursive lock for monitorenter/exit.
func (o *Object) Monitor() *monitor { return &o.mon }

// Array is a heap-allocated, homogeneously-typed array: its elements are
// stored as a flat []value.Value regardless of primitive width, trading the
// source's packed-byte array representation for simplicity consistent with
// the uniform Value cell model (§3); ElemType/ElemKlass records what the
// array holds for checkcast/instanceof and the classfile's per-element-size
// accounting.
type Array struct {
	Klass     *class.Klass
	ElemType  value.Type
	ElemKlass *class.Klass // non-nil when ElemType == value.TRef and elements are objects
	Elements  []value.Value
	mon       monitor
}

// Len returns the array's element count (arraylength, §4.3).
func (a *Array) Len() int { return len(a.Elements) }

// Get returns element i, or ErrArrayIndexOutOfBounds if i is out of range
// (§4.3 arrayload edge case).
func (a *Array) Get(i int32) (value.Value, error) {
	if i < 0 || int(i) >= len(a.Elements) {
		return value.Zero, ErrArrayIndexOutOfBounds
	}
	return a.Elements[i], nil
}

// Set writes element i, or returns ErrArrayIndexOutOfBounds (§4.3
// arraystore edge case).
func (a *Array) Set(i int32, v value.Value) error {
	if i < 0 || int(i) >= len(a.Elements) {
		return ErrArrayIndexOutOfBounds
	}
	a.Elements[i] = v
	return nil
}

// Monitor returns the array's recursive lock.
func (a *Array) Monitor() *monitor { return &a.mon }

// GC retains every Object/Array it has ever been handed for the life of the
// process: this core never frees heap memory (§9 Non-goal — "A garbage
// collector is not modeled"), so boxing a heap pointer into an opaque
// value.Value via value.Ref is safe only because GC, not Go's collector,
// keeps the pointee alive (OQ-1: value.Value is a uint64 word invisible to
// runtime.GC, so something must hold the strong reference on its behalf).
type GC struct {
	mu      sync.Mutex
	objects []*Object
	arrays  []*Array
}

// NewGC returns an empty retention set.
func NewGC() *GC {
	return &GC{}
}

// NewObject allocates o's instance fields and registers it for retention.
func (g *GC) NewObject(k *class.Klass) (*Object, error) {
	n := 0
	for c := k; c != nil; c = c.Super {
		for _, f := range c.Fields {
			if !f.IsStatic() && f.Offset >= n {
				n = f.Offset + 1
			}
		}
	}
	o := &Object{Klass: k, Fields: make([]value.Value, n)}
	g.mu.Lock()
	g.objects = append(g.objects, o)
	g.mu.Unlock()
	return o, nil
}

// NewArray allocates an array of count elements of elemType and registers
// it for retention. Negative count is rejected with ErrOutOfMemory, the
// analogue of NegativeArraySizeException (§4.3 newarray edge case).
func (g *GC) NewArray(k *class.Klass, elemType value.Type, elemKlass *class.Klass, count int32) (*Array, error) {
	if count < 0 {
		return nil, ErrOutOfMemory
	}
	a := &Array{Klass: k, ElemType: elemType, ElemKlass: elemKlass, Elements: make([]value.Value, count)}
	g.mu.Lock()
	g.arrays = append(g.arrays, a)
	g.mu.Unlock()
	return a, nil
}

// header is a type-punning view onto the first field shared by Object and
// Array: both declare Klass *class.Klass first, so reading through header
// is safe regardless of which one p actually points to. Nothing besides
// Klass is ever accessed through this view (§4.3 checkcast/instanceof need
// a runtime klass without knowing object-vs-array ahead of time).
type header struct {
	Klass *class.Klass
}

// KlassOf returns the runtime klass of a heap pointer boxed in a
// value.Value, or nil for a null reference.
func KlassOf(p unsafe.Pointer) *class.Klass {
	if p == nil {
		return nil
	}
	return (*header)(p).Klass
}

// MonitorOf returns the recursive lock owned by the object or array at p,
// dispatching on the runtime klass's IsArray flag since p alone doesn't
// carry that distinction (monitorenter/exit, §4.3).
func MonitorOf(p unsafe.Pointer) *monitor {
	k := KlassOf(p)
	if k == nil {
		return nil
	}
	if k.IsArray {
		return (*Array)(p).Monitor()
	}
	return (*Object)(p).Monitor()
}

// Stats reports the number of live (ever-allocated) objects and arrays, for
// diagnostics and tests; this core has no notion of reachability so "live"
// here means "not yet forgotten," which is to say: always.
func (g *GC) Stats() (objects, arrays int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.objects), len(g.arrays)
}
