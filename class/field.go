package class

import "github.com/hornet-go/hornet/value"

// Field is an immutable handle to a class or instance field, carrying the
// owning klass and the storage offset the interpreter indexes
// klass.StaticValues (static fields) or an object's slot storage (instance
// fields) with (§3).
type Field struct {
	Klass      *Klass
	Name       string
	Descriptor string
	Access     AccessFlags
	Type       value.Type
	Offset     int
}

func (f *Field) IsStatic() bool { return f.Access.IsStatic() }
