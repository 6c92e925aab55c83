package class

import (
	"sync"

	"github.com/hornet-go/hornet/value"
)

// Initializer runs a class's <clinit> (or, in this simplified core, whatever
// the class loader collaborator considers "class initialization"). It is
// supplied by the embedder, not by this package, since running bytecode is
// the interpreter's job (§1: the class loader/initializer is an external
// collaborator, exposed here only as the Init entry point it must drive).
type Initializer func(*Klass) error

// Klass carries static storage, a vtable for virtual lookup, a subclass
// test, and an idempotent Init — exactly the four responsibilities §3
// assigns to klass.
type Klass struct {
	Name   string
	Super  *Klass
	Access AccessFlags

	Fields  []*Field
	Methods []*Method

	StaticValues []value.Value

	// ConstantPool is this class's resolved constant table, kept around
	// past class-load time because the translator still needs it to
	// resolve a method's raw bytecode operand indices into the same
	// *Field/*Method/*Klass handles klass-building already resolved once
	// (§4.2 "resolved to direct handles... embedded inline as
	// immediates" happens at translate time, not parse time).
	ConstantPool *ConstantPool

	// Array klasses: IsArray is set for both primitive and reference array
	// types. ComponentKlass is non-nil for object/array element types;
	// PrimitiveElem is valid when ComponentKlass is nil.
	IsArray       bool
	ComponentKlass *Klass
	PrimitiveElem  PrimType

	initOnce sync.Once
	initErr  error

	mu sync.Mutex // guards lazily-built vtable cache only
	vtable map[methodKey]*Method
}

// Init triggers class initialization at most once, guaranteeing concurrent
// first-touches observe a fully initialized class (§5). Superclasses are
// initialized first, matching real JVM class-initialization order.
func (k *Klass) Init(init Initializer) error {
	k.initOnce.Do(func() {
		if k.Super != nil {
			if err := k.Super.Init(init); err != nil {
				k.initErr = err
				return
			}
		}
		if init != nil {
			k.initErr = init(k)
		}
	})
	return k.initErr
}

// IsSubclassOf reports whether k is other or a (transitive) subclass of
// other, the test checkcast/instanceof rely on (§4.3).
func (k *Klass) IsSubclassOf(other *Klass) bool {
	for c := k; c != nil; c = c.Super {
		if c == other {
			return true
		}
	}
	return false
}

// LookupField finds a field declared on k or an ancestor, by name.
func (k *Klass) LookupField(name string) *Field {
	for c := k; c != nil; c = c.Super {
		for _, f := range c.Fields {
			if f.Name == name {
				return f
			}
		}
	}
	return nil
}

// LookupMethodDeclared resolves a (name, descriptor) pair to the concrete
// method found by walking from k up through its superclasses — the
// "symbolic reference resolution" step the constant pool performs once,
// ahead of any virtual dispatch (§4.2).
func (k *Klass) LookupMethodDeclared(name, descriptor string) *Method {
	for c := k; c != nil; c = c.Super {
		for _, m := range c.Methods {
			if m.Name == name && m.Descriptor == descriptor {
				return m
			}
		}
	}
	return nil
}

// LookupMethod resolves a (name, descriptor) pair against k's vtable: the
// method actually invoked when k is a receiver's *runtime* class for
// invokevirtual/invokeinterface (§4.3). The vtable is built lazily and
// cached; building it is idempotent so a race just repeats harmless work
// under the mutex.
func (k *Klass) LookupMethod(name, descriptor string) (*Method, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.vtable == nil {
		k.vtable = k.buildVtable()
	}
	m, ok := k.vtable[methodKey{name, descriptor}]
	if !ok {
		return nil, UnresolvedMethodError{Klass: k.Name, Name: name, Descriptor: descriptor}
	}
	return m, nil
}

func (k *Klass) buildVtable() map[methodKey]*Method {
	vt := map[methodKey]*Method{}
	if k.Super != nil {
		for key, m := range k.Super.buildVtable() {
			vt[key] = m
		}
	}
	for _, m := range k.Methods {
		if m.IsStatic() {
			continue
		}
		vt[methodKey{m.Name, m.Descriptor}] = m
	}
	return vt
}
