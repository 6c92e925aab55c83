package class

import (
	"fmt"
	"unsafe"

	"github.com/hornet-go/hornet/value"
)

// ConstantPool is the parsed per-class constant table the class-file parser
// hands the translator; it plays the role of hornet's constant_pool but
// resolves entries eagerly into the direct *Field/*Method/*Klass handles
// §3/§4.2 describe, instead of deferring resolution to first use.
type ConstantPool struct {
	entries []cpEntry
}

type cpKind uint8

const (
	cpInvalid cpKind = iota
	cpInt
	cpLong
	cpFloat
	cpDouble
	cpString
	cpUTF8
	cpClassRef
	cpFieldRef
	cpMethodRef
	cpInterfaceMethodRef
	cpNameAndType
)

type cpEntry struct {
	kind cpKind

	ival   int32
	lval   int64
	fval   float32
	dval   float64
	sval   string
	strRef *string // lazily interned String constant, boxed by StringRef
	klass  *Klass
	field  *Field
	method *Method

	// deferred fields, resolved by ResolveLinks after the whole pool and
	// class hierarchy are available (mirrors javac's forward-reference
	// tolerance within a single class file).
	nameIdx, typeIdx     uint16
	classIdx             uint16
	nameAndTypeIdx       uint16
}

// NewConstantPool allocates a pool with room for size entries (slot 0 is
// unused, matching the class-file format's 1-based indexing).
func NewConstantPool(size uint16) *ConstantPool {
	return &ConstantPool{entries: make([]cpEntry, size)}
}

func (cp *ConstantPool) SetUTF8(i uint16, s string) {
	cp.entries[i] = cpEntry{kind: cpUTF8, sval: s}
}

func (cp *ConstantPool) SetInt(i uint16, v int32)      { cp.entries[i] = cpEntry{kind: cpInt, ival: v} }
func (cp *ConstantPool) SetLong(i uint16, v int64)     { cp.entries[i] = cpEntry{kind: cpLong, lval: v} }
func (cp *ConstantPool) SetFloat(i uint16, v float32)  { cp.entries[i] = cpEntry{kind: cpFloat, fval: v} }
func (cp *ConstantPool) SetDouble(i uint16, v float64) { cp.entries[i] = cpEntry{kind: cpDouble, dval: v} }

func (cp *ConstantPool) SetClassRef(i, nameIdx uint16) {
	cp.entries[i] = cpEntry{kind: cpClassRef, nameIdx: nameIdx}
}

func (cp *ConstantPool) SetNameAndType(i, nameIdx, typeIdx uint16) {
	cp.entries[i] = cpEntry{kind: cpNameAndType, nameIdx: nameIdx, typeIdx: typeIdx}
}

func (cp *ConstantPool) SetFieldRef(i, classIdx, natIdx uint16) {
	cp.entries[i] = cpEntry{kind: cpFieldRef, classIdx: classIdx, nameAndTypeIdx: natIdx}
}

func (cp *ConstantPool) SetMethodRef(i, classIdx, natIdx uint16) {
	cp.entries[i] = cpEntry{kind: cpMethodRef, classIdx: classIdx, nameAndTypeIdx: natIdx}
}

func (cp *ConstantPool) SetInterfaceMethodRef(i, classIdx, natIdx uint16) {
	cp.entries[i] = cpEntry{kind: cpInterfaceMethodRef, classIdx: classIdx, nameAndTypeIdx: natIdx}
}

func (cp *ConstantPool) SetString(i, utf8Idx uint16) {
	cp.entries[i] = cpEntry{kind: cpString, nameIdx: utf8Idx}
}

// UTF8 returns the UTF-8 string at idx.
func (cp *ConstantPool) UTF8(idx uint16) (string, error) {
	if int(idx) >= len(cp.entries) || cp.entries[idx].kind != cpUTF8 {
		return "", InvalidConstantPoolIndexError{Index: idx, Want: "utf8"}
	}
	return cp.entries[idx].sval, nil
}

func (cp *ConstantPool) NameAndType(idx uint16) (name, desc string, err error) {
	if int(idx) >= len(cp.entries) || cp.entries[idx].kind != cpNameAndType {
		return "", "", InvalidConstantPoolIndexError{Index: idx, Want: "NameAndType"}
	}
	e := cp.entries[idx]
	name, err = cp.UTF8(e.nameIdx)
	if err != nil {
		return "", "", err
	}
	desc, err = cp.UTF8(e.typeIdx)
	return name, desc, err
}

func (cp *ConstantPool) ClassName(idx uint16) (string, error) {
	if int(idx) >= len(cp.entries) || cp.entries[idx].kind != cpClassRef {
		return "", InvalidConstantPoolIndexError{Index: idx, Want: "Class"}
	}
	return cp.UTF8(cp.entries[idx].nameIdx)
}

// Int, Long, Float, Double, String return the resolved immediate value of a
// numeric/string constant-pool entry, for ldc/ldc2_w translation.
func (cp *ConstantPool) check(idx uint16, k cpKind, want string) error {
	if int(idx) >= len(cp.entries) || cp.entries[idx].kind != k {
		return InvalidConstantPoolIndexError{Index: idx, Want: want}
	}
	return nil
}

func (cp *ConstantPool) Int(idx uint16) (int32, error) {
	if err := cp.check(idx, cpInt, "int"); err != nil {
		return 0, err
	}
	return cp.entries[idx].ival, nil
}

func (cp *ConstantPool) Long(idx uint16) (int64, error) {
	if err := cp.check(idx, cpLong, "long"); err != nil {
		return 0, err
	}
	return cp.entries[idx].lval, nil
}

func (cp *ConstantPool) Float(idx uint16) (float32, error) {
	if err := cp.check(idx, cpFloat, "float"); err != nil {
		return 0, err
	}
	return cp.entries[idx].fval, nil
}

func (cp *ConstantPool) Double(idx uint16) (float64, error) {
	if err := cp.check(idx, cpDouble, "double"); err != nil {
		return 0, err
	}
	return cp.entries[idx].dval, nil
}

func (cp *ConstantPool) String(idx uint16) (string, error) {
	if err := cp.check(idx, cpString, "String"); err != nil {
		return "", err
	}
	return cp.UTF8(cp.entries[idx].nameIdx)
}

// StringRef resolves a String constant and returns it boxed as a
// value.Value reference (ldc's "String -> interned object reference" case,
// §4.2). Interning happens once per entry, not once per ldc execution: the
// pointer is stable for as long as the owning ConstantPool is, which is the
// life of the process under this core's no-class-unloading Non-goal, so no
// separate heap.GC registration is needed to keep it alive.
func (cp *ConstantPool) StringRef(idx uint16) (value.Value, error) {
	if err := cp.check(idx, cpString, "String"); err != nil {
		return value.Zero, err
	}
	e := &cp.entries[idx]
	if e.strRef == nil {
		s, err := cp.UTF8(e.nameIdx)
		if err != nil {
			return value.Zero, err
		}
		e.strRef = &s
	}
	return value.Ref(unsafe.Pointer(e.strRef)), nil
}

// ResolveLinks resolves Class/Fieldref/Methodref entries into direct
// *Klass/*Field/*Method handles once the whole constant pool has been read
// and a klass lookup function (backed by the class loader collaborator) is
// available. This is what §4.2 means by "resolved to direct handles and
// embedded inline as immediates": resolution happens once, here, not on
// every bytecode decode. References to self's own name resolve to self
// without calling lookup.
func (cp *ConstantPool) ResolveLinks(lookup KlassLookup, self *Klass) error {
	if self != nil {
		outer := lookup
		lookup = func(name string) (*Klass, error) {
			if name == self.Name {
				return self, nil
			}
			return outer(name)
		}
	}
	for i := range cp.entries {
		e := &cp.entries[i]
		switch e.kind {
		case cpClassRef:
			name, err := cp.UTF8(e.nameIdx)
			if err != nil {
				return err
			}
			k, err := lookup(name)
			if err != nil {
				return err
			}
			e.klass = k
		}
	}
	for i := range cp.entries {
		e := &cp.entries[i]
		switch e.kind {
		case cpFieldRef:
			k, err := cp.ClassName(e.classIdx)
			if err != nil {
				return err
			}
			owner, err := lookup(k)
			if err != nil {
				return err
			}
			name, desc, err := cp.NameAndType(e.nameAndTypeIdx)
			if err != nil {
				return err
			}
			f := owner.LookupField(name)
			if f == nil {
				return fmt.Errorf("class: %s has no field %s (%s)", owner.Name, name, desc)
			}
			e.field = f
		case cpMethodRef, cpInterfaceMethodRef:
			k, err := cp.ClassName(e.classIdx)
			if err != nil {
				return err
			}
			owner, err := lookup(k)
			if err != nil {
				return err
			}
			name, desc, err := cp.NameAndType(e.nameAndTypeIdx)
			if err != nil {
				return err
			}
			m := owner.LookupMethodDeclared(name, desc)
			if m == nil {
				return UnresolvedMethodError{Klass: owner.Name, Name: name, Descriptor: desc}
			}
			e.method = m
		}
	}
	return nil
}

// Klass returns the resolved klass for a resolved Class constant-pool entry.
func (cp *ConstantPool) Klass(idx uint16) (*Klass, error) {
	if err := cp.check(idx, cpClassRef, "Class"); err != nil {
		return nil, err
	}
	return cp.entries[idx].klass, nil
}

// Field returns the resolved field for a Fieldref entry.
func (cp *ConstantPool) Field(idx uint16) (*Field, error) {
	if int(idx) >= len(cp.entries) || cp.entries[idx].kind != cpFieldRef {
		return nil, InvalidConstantPoolIndexError{Index: idx, Want: "Fieldref"}
	}
	return cp.entries[idx].field, nil
}

// Method returns the resolved method for a Methodref/InterfaceMethodref entry.
func (cp *ConstantPool) Method(idx uint16) (*Method, error) {
	if int(idx) >= len(cp.entries) {
		return nil, InvalidConstantPoolIndexError{Index: idx, Want: "Methodref"}
	}
	e := cp.entries[idx]
	if e.kind != cpMethodRef && e.kind != cpInterfaceMethodRef {
		return nil, InvalidConstantPoolIndexError{Index: idx, Want: "Methodref"}
	}
	return e.method, nil
}

// KlassLookup resolves a binary class name to a loaded *Klass; it stands in
// for the class loader collaborator (§1).
type KlassLookup func(name string) (*Klass, error)
