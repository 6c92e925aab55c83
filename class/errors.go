package class

import "fmt"

// InvalidConstantPoolIndexError is returned when a bytecode operand or
// another constant-pool entry refers to an out-of-range or wrongly-typed
// constant pool slot.
type InvalidConstantPoolIndexError struct {
	Index uint16
	Want  string
}

func (e InvalidConstantPoolIndexError) Error() string {
	return fmt.Sprintf("class: invalid constant pool index %d (wanted %s)", e.Index, e.Want)
}

// UnresolvedMethodError is returned by vtable lookup when no method with the
// given name and descriptor exists on the klass or any of its superclasses.
type UnresolvedMethodError struct {
	Klass, Name, Descriptor string
}

func (e UnresolvedMethodError) Error() string {
	return fmt.Sprintf("class: %s has no method %s%s", e.Klass, e.Name, e.Descriptor)
}
