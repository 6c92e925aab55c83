package interp

import (
	"unsafe"

	"github.com/hornet-go/hornet/class"
	"github.com/hornet-go/hornet/heap"
	"github.com/hornet-go/hornet/translate"
	"github.com/hornet-go/hornet/value"
)

func opArrayLoad(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	idx := value.From[int32](ec.pop())
	ref := ec.pop()
	if value.IsNullRef(ref) {
		return false, value.Zero, heap.ErrNullDereference
	}
	arr := (*heap.Array)(value.Deref(ref))
	v, err := arr.Get(idx)
	if err != nil {
		return false, value.Zero, err
	}
	ec.push(v)
	return false, value.Zero, nil
}

func opArrayStore(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	v := ec.pop()
	idx := value.From[int32](ec.pop())
	ref := ec.pop()
	if value.IsNullRef(ref) {
		return false, value.Zero, heap.ErrNullDereference
	}
	arr := (*heap.Array)(value.Deref(ref))
	if err := arr.Set(idx, v); err != nil {
		return false, value.Zero, err
	}
	return false, value.Zero, nil
}

func opGetStatic(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	f := ec.ptrField()
	if err := f.Klass.Init(ec.it.classInit); err != nil {
		return false, value.Zero, err
	}
	ec.push(f.Klass.StaticValues[f.Offset])
	return false, value.Zero, nil
}

func opPutStatic(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	f := ec.ptrField()
	if err := f.Klass.Init(ec.it.classInit); err != nil {
		return false, value.Zero, err
	}
	f.Klass.StaticValues[f.Offset] = ec.pop()
	return false, value.Zero, nil
}

func opGetField(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	f := ec.ptrField()
	ref := ec.pop()
	if value.IsNullRef(ref) {
		return false, value.Zero, heap.ErrNullDereference
	}
	obj := (*heap.Object)(value.Deref(ref))
	ec.push(obj.GetField(f))
	return false, value.Zero, nil
}

func opPutField(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	f := ec.ptrField()
	v := ec.pop()
	ref := ec.pop()
	if value.IsNullRef(ref) {
		return false, value.Zero, heap.ErrNullDereference
	}
	obj := (*heap.Object)(value.Deref(ref))
	obj.SetField(f, v)
	return false, value.Zero, nil
}

func opNew(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	k := ec.ptrKlass()
	if err := k.Init(ec.it.classInit); err != nil {
		return false, value.Zero, err
	}
	obj, err := ec.it.gc.NewObject(k)
	if err != nil {
		return false, value.Zero, err
	}
	ec.push(value.Ref(unsafe.Pointer(obj)))
	return false, value.Zero, nil
}

var primValueType = map[class.PrimType]value.Type{
	class.TBoolean: value.TInt, class.TByte: value.TInt, class.TChar: value.TInt, class.TShort: value.TInt,
	class.TInt: value.TInt, class.TLong: value.TLong, class.TFloat: value.TFloat, class.TDouble: value.TDouble,
}

func opNewArray(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	atype := class.PrimType(ec.u8())
	count := value.From[int32](ec.pop())
	k := class.PrimArrayKlassOf(atype)
	arr, err := ec.it.gc.NewArray(k, primValueType[atype], nil, count)
	if err != nil {
		return false, value.Zero, err
	}
	ec.push(value.Ref(unsafe.Pointer(arr)))
	return false, value.Zero, nil
}

func opANewArray(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	arrKlass := ec.ptrKlass()
	count := value.From[int32](ec.pop())
	arr, err := ec.it.gc.NewArray(arrKlass, value.TRef, arrKlass.ComponentKlass, count)
	if err != nil {
		return false, value.Zero, err
	}
	ec.push(value.Ref(unsafe.Pointer(arr)))
	return false, value.Zero, nil
}

func opArrayLength(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	ref := ec.pop()
	if value.IsNullRef(ref) {
		return false, value.Zero, heap.ErrNullDereference
	}
	arr := (*heap.Array)(value.Deref(ref))
	ec.push(value.To(int32(arr.Len())))
	return false, value.Zero, nil
}

// opCheckCast peeks (never pops) the reference on top of the stack: on a
// successful cast the value is left exactly as it was (§9, confirming the
// source's checkcast-doesn't-pop-on-success behavior is intentional, not a
// bug).
func opCheckCast(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	target := ec.ptrKlass()
	v := ec.top()
	if value.IsNullRef(v) {
		return false, value.Zero, nil
	}
	rk := heap.KlassOf(value.Deref(v))
	if rk == nil || !rk.IsSubclassOf(target) {
		name := "<unknown>"
		if rk != nil {
			name = rk.Name
		}
		return false, value.Zero, ClassCastError{From: name, To: target.Name}
	}
	return false, value.Zero, nil
}

// opInstanceOf pops the reference and pushes 1 if it is a (sub)instance of
// the target klass, 0 otherwise — the non-inverted result (§9 fixes the
// source's inverted instanceof).
func opInstanceOf(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	target := ec.ptrKlass()
	v := ec.pop()
	if value.IsNullRef(v) {
		ec.push(value.To(int32(0)))
		return false, value.Zero, nil
	}
	rk := heap.KlassOf(value.Deref(v))
	result := int32(0)
	if rk != nil && rk.IsSubclassOf(target) {
		result = 1
	}
	ec.push(value.To(result))
	return false, value.Zero, nil
}

func opMonitorEnter(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	ref := ec.pop()
	if value.IsNullRef(ref) {
		return false, value.Zero, heap.ErrNullDereference
	}
	heap.MonitorOf(value.Deref(ref)).Enter(ec.t)
	return false, value.Zero, nil
}

func opMonitorExit(ec *execCtx, op translate.TOp) (bool, value.Value, error) {
	ref := ec.pop()
	if value.IsNullRef(ref) {
		return false, value.Zero, heap.ErrNullDereference
	}
	if err := heap.MonitorOf(value.Deref(ref)).Exit(ec.t); err != nil {
		return false, value.Zero, err
	}
	return false, value.Zero, nil
}
