package class

import (
	"sync"

	"github.com/hornet-go/hornet/value"
)

// Method is immutable after class load except for its lazily-populated
// trampoline, which is translated at most once per method (§3, §5) behind
// a sync.Once — the idiomatic Go realization of the source's
// per-method/per-class double-checked-init requirement.
type Method struct {
	Klass      *Klass
	Name       string
	Descriptor string
	Access     AccessFlags

	ArgsCount  int
	MaxLocals  int
	ArgTypes   []value.Type
	ReturnType value.Type
	IsVoid     bool

	Code []byte // raw source bytecode; nil for native/abstract methods.

	translateOnce sync.Once
	trampoline    []byte
	translateErr  error
}

func (m *Method) IsStatic() bool   { return m.Access.IsStatic() }
func (m *Method) IsNative() bool   { return m.Access.IsNative() }
func (m *Method) IsAbstract() bool { return m.Access.IsAbstract() }

// JNIName returns the JNI-mangled symbol name for a native method, following
// the standard Java_pkg_Class_method scheme (§4.4). Mangling of '_', ';',
// '[' and non-ASCII characters per JNI rules is intentionally not
// implemented — method and class names used with the native-call adapter in
// this core are expected to be mangle-safe identifiers.
func (m *Method) JNIName() string {
	return "Java_" + m.Klass.Name + "_" + m.Name
}

// Trampoline returns the cached internal instruction stream for the method,
// translating it on first use. translate is supplied by the interp package
// to avoid an import cycle (class must not depend on translate/interp).
func (m *Method) Trampoline(translate func(*Method) ([]byte, error)) ([]byte, error) {
	m.translateOnce.Do(func() {
		m.trampoline, m.translateErr = translate(m)
	})
	return m.trampoline, m.translateErr
}

// key identifies a method by (name, descriptor) for vtable lookup (§4.3's
// "(name, descriptor)" resolution).
type methodKey struct {
	name, descriptor string
}
