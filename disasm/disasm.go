// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm prints a human-readable listing of a method's raw,
// pre-translation bytecode — the class-file analogue of wagon's WebAssembly
// function disassembler, rewritten around bytecode.Len's decode-and-advance
// primitive instead of a nested block/LEB128 walk, since class-file code is
// a flat instruction stream with branch offsets rather than WebAssembly's
// nested block structure.
package disasm

import (
	"fmt"
	"strings"

	"github.com/hornet-go/hornet/bytecode"
	"github.com/hornet-go/hornet/class"
)

// Instr is one decoded source-bytecode instruction: its offset, opcode, and
// a pre-formatted rendering of its operands (constant-pool index, branch
// target, or immediate, depending on the opcode).
type Instr struct {
	Offset int
	Op     bytecode.Op
	Text   string
}

// Disassemble decodes every instruction in m's raw Code in order, the way
// Disassemble walked a WebAssembly function body one opcode at a time.
func Disassemble(m *class.Method) ([]Instr, error) {
	code := m.Code
	var out []Instr
	for pos := 0; pos < len(code); {
		n, err := bytecode.Len(code, pos)
		if err != nil {
			return out, fmt.Errorf("disasm: %s.%s at %d: %w", m.Klass.Name, m.Name, pos, err)
		}
		op := bytecode.Op(code[pos])
		out = append(out, Instr{Offset: pos, Op: op, Text: operandText(code, pos, op)})
		pos += n
	}
	return out, nil
}

// String renders a full listing, one instruction per line, matching the
// plain "offset: mnemonic operands" layout every JVM disassembler uses.
func String(instrs []Instr) string {
	var b strings.Builder
	for _, in := range instrs {
		fmt.Fprintf(&b, "%4d: %-16s%s\n", in.Offset, opName(in.Op), in.Text)
	}
	return b.String()
}

func operandText(code []byte, pos int, op bytecode.Op) string {
	switch op {
	case bytecode.Bipush:
		return fmt.Sprintf("%d", int8(code[pos+1]))
	case bytecode.Sipush:
		return fmt.Sprintf("%d", int16(uint16(code[pos+1])<<8|uint16(code[pos+2])))
	case bytecode.Ldc:
		return fmt.Sprintf("#%d", code[pos+1])
	case bytecode.LdcW, bytecode.Ldc2W:
		return fmt.Sprintf("#%d", uint16(code[pos+1])<<8|uint16(code[pos+2]))
	case bytecode.Iload, bytecode.Lload, bytecode.Fload, bytecode.Dload, bytecode.Aload,
		bytecode.Istore, bytecode.Lstore, bytecode.Fstore, bytecode.Dstore, bytecode.Astore,
		bytecode.Newarray, bytecode.Ret:
		return fmt.Sprintf("%d", code[pos+1])
	case bytecode.Iinc:
		return fmt.Sprintf("%d, %d", code[pos+1], int8(code[pos+2]))
	case bytecode.Ifeq, bytecode.Ifne, bytecode.Iflt, bytecode.Ifge, bytecode.Ifgt, bytecode.Ifle,
		bytecode.IfIcmpeq, bytecode.IfIcmpne, bytecode.IfIcmplt, bytecode.IfIcmpge, bytecode.IfIcmpgt, bytecode.IfIcmple,
		bytecode.IfAcmpeq, bytecode.IfAcmpne, bytecode.Ifnull, bytecode.Ifnonnull, bytecode.Goto, bytecode.Jsr:
		return fmt.Sprintf("-> %d", bytecode.BranchOffset16(code, pos))
	case bytecode.GotoW, bytecode.JsrW:
		return fmt.Sprintf("-> %d", bytecode.BranchOffset32(code, pos))
	case bytecode.Getstatic, bytecode.Putstatic, bytecode.Getfield, bytecode.Putfield,
		bytecode.Invokevirtual, bytecode.Invokespecial, bytecode.Invokestatic, bytecode.Invokeinterface,
		bytecode.New, bytecode.Anewarray, bytecode.Checkcast, bytecode.Instanceof, bytecode.Multianewarray:
		return fmt.Sprintf("#%d", uint16(code[pos+1])<<8|uint16(code[pos+2]))
	case bytecode.Tableswitch:
		def, low, high, table := bytecode.TableswitchHeader(code, pos)
		return fmt.Sprintf("low=%d high=%d default=%d cases=%v", low, high, pos+int(def), table)
	case bytecode.Lookupswitch:
		def, keys, offsets := bytecode.LookupswitchHeader(code, pos)
		return fmt.Sprintf("default=%d keys=%v offsets=%v", pos+int(def), keys, offsets)
	default:
		return ""
	}
}

var opNames = map[bytecode.Op]string{
	bytecode.Nop: "nop", bytecode.AconstNull: "aconst_null",
	bytecode.Iconst0: "iconst_0", bytecode.Iconst1: "iconst_1", bytecode.Iconst2: "iconst_2",
	bytecode.Iconst3: "iconst_3", bytecode.Iconst4: "iconst_4", bytecode.Iconst5: "iconst_5",
	bytecode.Bipush: "bipush", bytecode.Sipush: "sipush", bytecode.Ldc: "ldc",
	bytecode.LdcW: "ldc_w", bytecode.Ldc2W: "ldc2_w",
	bytecode.Iload: "iload", bytecode.Iload0: "iload_0", bytecode.Iload1: "iload_1",
	bytecode.Iload2: "iload_2", bytecode.Iload3: "iload_3",
	bytecode.Iadd: "iadd", bytecode.Isub: "isub", bytecode.Imul: "imul", bytecode.Idiv: "idiv",
	bytecode.Iinc: "iinc",
	bytecode.Ifeq: "ifeq", bytecode.IfIcmplt: "if_icmplt", bytecode.Goto: "goto",
	bytecode.Tableswitch: "tableswitch", bytecode.Lookupswitch: "lookupswitch",
	bytecode.Ireturn: "ireturn", bytecode.Return: "return",
	bytecode.Getstatic: "getstatic", bytecode.Putstatic: "putstatic",
	bytecode.Getfield: "getfield", bytecode.Putfield: "putfield",
	bytecode.Invokevirtual: "invokevirtual", bytecode.Invokespecial: "invokespecial",
	bytecode.Invokestatic: "invokestatic", bytecode.Invokeinterface: "invokeinterface",
	bytecode.New: "new", bytecode.Newarray: "newarray", bytecode.Anewarray: "anewarray",
	bytecode.Arraylength: "arraylength", bytecode.Checkcast: "checkcast", bytecode.Instanceof: "instanceof",
	bytecode.Monitorenter: "monitorenter", bytecode.Monitorexit: "monitorexit",
	bytecode.Dup: "dup", bytecode.Pop: "pop", bytecode.Swap: "swap",
}

// opName falls back to a numeric rendering for mnemonics not worth naming
// individually in a debug listing (most conversions, comparisons, and
// per-type load/store variants decode identically in shape).
func opName(op bytecode.Op) string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("op(%d)", op)
}
