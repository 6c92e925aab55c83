package class

import "sync"

// arrayKlasses caches the synthetic Klass used to represent "array of X"
// for every element klass/primitive type seen so far. Array klasses carry
// no fields or methods of their own in this core — they exist only so
// checkcast/instanceof/arraylength have a *Klass to hang off of — so one
// instance per element type suffices and can be shared freely (§4.3
// newarray/anewarray).
var (
	refArrayMu sync.Mutex
	refArrays  = map[*Klass]*Klass{}

	primArrayMu sync.Mutex
	primArrays  = map[PrimType]*Klass{}
)

// ArrayKlassOf returns the (possibly newly created) Klass representing an
// array of elem, memoized so repeated anewarray of the same element klass
// shares one array klass.
func ArrayKlassOf(elem *Klass) *Klass {
	refArrayMu.Lock()
	defer refArrayMu.Unlock()
	if k, ok := refArrays[elem]; ok {
		return k
	}
	k := &Klass{Name: "[" + elem.Name, IsArray: true, ComponentKlass: elem, Access: AccPublic | AccFinal}
	refArrays[elem] = k
	return k
}

// PrimArrayKlassOf returns the Klass representing an array of the given
// primitive element kind (newarray's atype operand, §4.3).
func PrimArrayKlassOf(atype PrimType) *Klass {
	primArrayMu.Lock()
	defer primArrayMu.Unlock()
	if k, ok := primArrays[atype]; ok {
		return k
	}
	k := &Klass{Name: "[" + atype.String(), IsArray: true, PrimitiveElem: atype, Access: AccPublic | AccFinal}
	primArrays[atype] = k
	return k
}
