// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package classfile parses the classic Java class-file format (network byte
// order) into the *class.Klass/*class.Method/*class.Field handles the
// scan/translate/interp core consumes. spec.md §1 treats the parser as an
// external collaborator; this package is the minimal concrete realization
// of that collaborator needed to drive the core end-to-end — no bytecode
// verification, no annotations, no generic signatures (§1 Non-goals).
package classfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/hornet-go/hornet/class"
	"github.com/hornet-go/hornet/value"
)

const magic = 0xCAFEBABE

const (
	cpUTF8               = 1
	cpInteger             = 3
	cpFloat               = 4
	cpLong                = 5
	cpDouble              = 6
	cpClass               = 7
	cpString              = 8
	cpFieldref            = 9
	cpMethodref           = 10
	cpInterfaceMethodref  = 11
	cpNameAndType         = 12
	cpMethodHandle        = 15
	cpMethodType          = 16
	cpInvokeDynamic       = 18
)

const attrCode = "Code"

// ErrBadMagic is returned when the input does not start with the class-file
// magic number 0xCAFEBABE.
var ErrBadMagic = fmt.Errorf("classfile: bad magic number")

// reader wraps an io.Reader with the big-endian fixed-width primitives the
// class-file format uses throughout (u1/u2/u4/u8), mirroring the role of
// wasm/read.go's helpers but for network byte order instead of LEB128.
type reader struct {
	r   io.Reader
	err error
}

func (rd *reader) u1() uint8 {
	var b [1]byte
	rd.read(b[:])
	return b[0]
}

func (rd *reader) u2() uint16 {
	var b [2]byte
	rd.read(b[:])
	return binary.BigEndian.Uint16(b[:])
}

func (rd *reader) u4() uint32 {
	var b [4]byte
	rd.read(b[:])
	return binary.BigEndian.Uint32(b[:])
}

func (rd *reader) u8() uint64 {
	var b [8]byte
	rd.read(b[:])
	return binary.BigEndian.Uint64(b[:])
}

func (rd *reader) bytes(n int) []byte {
	b := make([]byte, n)
	rd.read(b)
	return b
}

func (rd *reader) read(b []byte) {
	if rd.err != nil {
		return
	}
	_, rd.err = io.ReadFull(rd.r, b)
}

// rawField/rawMethod hold the bytes needed to finish constructing a
// *class.Field/*class.Method once the constant pool is fully parsed.
type rawField struct {
	access     class.AccessFlags
	nameIdx    uint16
	descIdx    uint16
}

type rawMethod struct {
	access  class.AccessFlags
	nameIdx uint16
	descIdx uint16
	code    []byte
	maxLocals int
}

// Parse reads a single class file from r and returns its *class.Klass, with
// the constant pool's Class/Fieldref/Methodref entries resolved via lookup
// (the class loader collaborator, §1).
func Parse(r io.Reader, lookup class.KlassLookup) (*class.Klass, error) {
	rd := &reader{r: r}

	if rd.u4() != magic {
		return nil, ErrBadMagic
	}
	rd.u2() // minor version
	rd.u2() // major version

	cpCount := rd.u2()
	cp := class.NewConstantPool(cpCount)
	if err := readConstantPool(rd, cp, cpCount); err != nil {
		return nil, err
	}
	if rd.err != nil {
		return nil, rd.err
	}

	access := class.AccessFlags(rd.u2())
	thisClassIdx := rd.u2()
	superClassIdx := rd.u2()

	thisName, err := cpClassNameRaw(cp, thisClassIdx)
	if err != nil {
		return nil, err
	}

	k := &class.Klass{Name: thisName, Access: access}

	if superClassIdx != 0 {
		superName, err := cpClassNameRaw(cp, superClassIdx)
		if err != nil {
			return nil, err
		}
		super, err := lookup(superName)
		if err != nil {
			return nil, fmt.Errorf("classfile: resolving superclass %s: %w", superName, err)
		}
		k.Super = super
	}

	ifaceCount := rd.u2()
	for i := uint16(0); i < ifaceCount; i++ {
		rd.u2() // interface class index; interfaces are not modeled (§9 simplification)
	}

	fieldCount := rd.u2()
	rawFields := make([]rawField, fieldCount)
	for i := range rawFields {
		rawFields[i], err = readFieldInfo(rd, cp)
		if err != nil {
			return nil, err
		}
	}

	methodCount := rd.u2()
	rawMethods := make([]rawMethod, methodCount)
	for i := range rawMethods {
		rawMethods[i], err = readMethodInfo(rd, cp)
		if err != nil {
			return nil, err
		}
	}

	// Class attributes (e.g. SourceFile) are skipped; none are in scope.
	classAttrCount := rd.u2()
	for i := uint16(0); i < classAttrCount; i++ {
		if err := skipAttribute(rd, cp); err != nil {
			return nil, err
		}
	}
	if rd.err != nil {
		return nil, rd.err
	}

	// Instance field offsets continue after the superclasses' slots, since
	// heap.NewObject gives an object one slot per offset over the hierarchy.
	offset := 0
	for c := k.Super; c != nil; c = c.Super {
		for _, f := range c.Fields {
			if !f.IsStatic() && f.Offset >= offset {
				offset = f.Offset + 1
			}
		}
	}
	var staticCount int
	for _, rf := range rawFields {
		name, err := cp.UTF8(rf.nameIdx)
		if err != nil {
			return nil, err
		}
		desc, err := cp.UTF8(rf.descIdx)
		if err != nil {
			return nil, err
		}
		ft, err := class.ParseFieldDescriptor(desc)
		if err != nil {
			return nil, err
		}
		f := &class.Field{
			Klass:      k,
			Name:       name,
			Descriptor: desc,
			Access:     rf.access,
			Type:       ft,
		}
		if rf.access.IsStatic() {
			f.Offset = staticCount
			staticCount++
		} else {
			f.Offset = offset
			offset++
		}
		k.Fields = append(k.Fields, f)
	}
	k.StaticValues = make([]value.Value, staticCount)

	for _, rm := range rawMethods {
		name, err := cp.UTF8(rm.nameIdx)
		if err != nil {
			return nil, err
		}
		desc, err := cp.UTF8(rm.descIdx)
		if err != nil {
			return nil, err
		}
		md, err := class.ParseMethodDescriptor(desc)
		if err != nil {
			return nil, err
		}
		argsCount := len(md.ArgTypes)
		if !rm.access.IsStatic() {
			argsCount++ // `this` occupies locals[0]
		}
		m := &class.Method{
			Klass:      k,
			Name:       name,
			Descriptor: desc,
			Access:     rm.access,
			ArgsCount:  argsCount,
			MaxLocals:  rm.maxLocals,
			ArgTypes:   md.ArgTypes,
			ReturnType: md.ReturnType,
			IsVoid:     md.IsVoid,
			Code:       rm.code,
		}
		if m.MaxLocals < m.ArgsCount {
			m.MaxLocals = m.ArgsCount
		}
		k.Methods = append(k.Methods, m)
	}

	if err := cp.ResolveLinks(lookup, k); err != nil {
		return nil, err
	}
	k.ConstantPool = cp

	return k, nil
}

func readConstantPool(rd *reader, cp *class.ConstantPool, count uint16) error {
	for i := uint16(1); i < count; i++ {
		tag := rd.u1()
		switch tag {
		case cpUTF8:
			n := rd.u2()
			cp.SetUTF8(i, string(rd.bytes(int(n))))
		case cpInteger:
			cp.SetInt(i, int32(rd.u4()))
		case cpFloat:
			cp.SetFloat(i, math.Float32frombits(rd.u4()))
		case cpLong:
			cp.SetLong(i, int64(rd.u8()))
			i++ // longs/doubles occupy two constant-pool slots
		case cpDouble:
			cp.SetDouble(i, math.Float64frombits(rd.u8()))
			i++
		case cpClass:
			cp.SetClassRef(i, rd.u2())
		case cpString:
			cp.SetString(i, rd.u2())
		case cpFieldref:
			classIdx := rd.u2()
			natIdx := rd.u2()
			cp.SetFieldRef(i, classIdx, natIdx)
		case cpMethodref:
			classIdx := rd.u2()
			natIdx := rd.u2()
			cp.SetMethodRef(i, classIdx, natIdx)
		case cpInterfaceMethodref:
			classIdx := rd.u2()
			natIdx := rd.u2()
			cp.SetInterfaceMethodRef(i, classIdx, natIdx)
		case cpNameAndType:
			nameIdx := rd.u2()
			typeIdx := rd.u2()
			cp.SetNameAndType(i, nameIdx, typeIdx)
		case cpMethodHandle:
			rd.u1()
			rd.u2()
		case cpMethodType:
			rd.u2()
		case cpInvokeDynamic:
			rd.u2()
			rd.u2()
		default:
			return fmt.Errorf("classfile: unknown constant pool tag %d at index %d", tag, i)
		}
		if rd.err != nil {
			return rd.err
		}
	}
	return nil
}

func cpClassNameRaw(cp *class.ConstantPool, idx uint16) (string, error) {
	return cp.ClassName(idx)
}

func readFieldInfo(rd *reader, cp *class.ConstantPool) (rawField, error) {
	access := class.AccessFlags(rd.u2())
	nameIdx := rd.u2()
	descIdx := rd.u2()
	attrCount := rd.u2()
	for i := uint16(0); i < attrCount; i++ {
		if err := skipAttribute(rd, cp); err != nil {
			return rawField{}, err
		}
	}
	return rawField{access: access, nameIdx: nameIdx, descIdx: descIdx}, rd.err
}

func readMethodInfo(rd *reader, cp *class.ConstantPool) (rawMethod, error) {
	access := class.AccessFlags(rd.u2())
	nameIdx := rd.u2()
	descIdx := rd.u2()
	attrCount := rd.u2()

	var code []byte
	var maxLocals int
	for i := uint16(0); i < attrCount; i++ {
		nameIdx := rd.u2()
		length := rd.u4()
		name, err := cp.UTF8(nameIdx)
		if err != nil {
			return rawMethod{}, err
		}
		body := rd.bytes(int(length))
		if rd.err != nil {
			return rawMethod{}, rd.err
		}
		if name == attrCode {
			c, ml, err := parseCodeAttribute(body, cp)
			if err != nil {
				return rawMethod{}, err
			}
			code = c
			maxLocals = ml
		}
	}

	return rawMethod{access: access, nameIdx: nameIdx, descIdx: descIdx, code: code, maxLocals: maxLocals}, rd.err
}

// parseCodeAttribute extracts the raw bytecode and max_locals from a Code
// attribute body, discarding the exception table and nested attributes
// (athrow/exception handling is out of scope, §1).
func parseCodeAttribute(body []byte, cp *class.ConstantPool) ([]byte, int, error) {
	br := &reader{r: bytes.NewReader(body)}
	br.u2() // max_stack
	maxLocals := br.u2()
	codeLength := br.u4()
	code := br.bytes(int(codeLength))
	if br.err != nil {
		return nil, 0, br.err
	}

	excTableLen := br.u2()
	for i := uint16(0); i < excTableLen; i++ {
		br.u2()
		br.u2()
		br.u2()
		br.u2()
	}

	attrCount := br.u2()
	for i := uint16(0); i < attrCount; i++ {
		if err := skipAttribute(br, cp); err != nil {
			return nil, 0, err
		}
	}

	return code, int(maxLocals), br.err
}

func skipAttribute(rd *reader, cp *class.ConstantPool) error {
	rd.u2() // name index
	length := rd.u4()
	rd.bytes(int(length))
	return rd.err
}
