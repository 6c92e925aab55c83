package interp

import (
	"github.com/hornet-go/hornet/class"
	"github.com/hornet-go/hornet/heap"
	"github.com/hornet-go/hornet/translate"
	"github.com/hornet-go/hornet/value"
)

// popArgs pops n declared arguments off the stack in reverse (they were
// pushed left to right), restoring source order into the returned slice
// starting at offset.
func popArgs(ec *execCtx, n, offset int, out []value.Value) {
	for i := n - 1; i >= 0; i-- {
		out[offset+i] = ec.pop()
	}
}

// opInvokeVirtual handles both invokevirtual and invokeinterface: resolve
// the receiver's runtime klass and re-dispatch (name, descriptor) through
// its vtable (§4.3). Interfaces are not modeled separately (§9
// simplification), so invokeinterface shares this handler.
func opInvokeVirtual(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	m := ec.ptrMethod()
	declared := len(m.ArgTypes)
	args := make([]value.Value, declared+1)
	popArgs(ec, declared, 1, args)
	recv := ec.pop()
	if value.IsNullRef(recv) {
		return false, value.Zero, heap.ErrNullDereference
	}
	args[0] = recv
	rk := heap.KlassOf(value.Deref(recv))
	actual, err := rk.LookupMethod(m.Name, m.Descriptor)
	if err != nil {
		return false, value.Zero, err
	}
	return callAndPush(ec, actual, args)
}

// opInvokeSpecial dispatches directly to the resolved method — constructors,
// private methods, and super calls bypass the vtable (§4.3).
func opInvokeSpecial(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	m := ec.ptrMethod()
	declared := len(m.ArgTypes)
	args := make([]value.Value, declared+1)
	popArgs(ec, declared, 1, args)
	recv := ec.pop()
	if value.IsNullRef(recv) {
		return false, value.Zero, heap.ErrNullDereference
	}
	args[0] = recv
	return callAndPush(ec, m, args)
}

func opInvokeStatic(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	m := ec.ptrMethod()
	declared := len(m.ArgTypes)
	args := make([]value.Value, declared)
	popArgs(ec, declared, 0, args)
	return callAndPush(ec, m, args)
}

// callAndPush runs m to completion on ec's thread and pushes its result
// unless m is void, then continues the caller's loop (§4.3 "invocation
// recurses through the backend's Execute, an ordinary Go call").
func callAndPush(ec *execCtx, m *class.Method, args []value.Value) (bool, value.Value, error) {
	result, err := ec.t.Execute(m, args)
	if err != nil {
		return false, value.Zero, err
	}
	if !m.IsVoid {
		ec.push(result)
	}
	return false, value.Zero, nil
}
