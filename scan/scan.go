// Package scan implements the control-flow scanner: the first pass over a
// method's source bytecode that discovers basic-block boundaries from
// branch targets and fall-through successors (§4.1). It is grounded on
// exec/internal/compile.Compile's block-bookkeeping idiom, adapted from
// WebAssembly's nesting-depth block map to a BlockId arena (§9 "place
// blocks in an arena indexed by a small integer BlockId"), since classic
// class-file bytecode branches via absolute offsets rather than structured
// nesting depths.
package scan

import (
	"fmt"
	"sort"

	"github.com/hornet-go/hornet/bytecode"
)

// BlockID indexes into Blocks.list; it replaces the source's
// reference-counted block pointers per the arena re-architecture note.
type BlockID int

// Block is a half-open byte range [Start, End) over the source bytecode
// with a single entry point and no internal branch targets (§3).
type Block struct {
	Start, End int
}

// Blocks is the scanner's output: every block, addressable both by its
// start offset and by position in source order.
type Blocks struct {
	list     []Block
	byStart  map[int]BlockID
}

// Len returns the number of blocks.
func (b *Blocks) Len() int { return len(b.list) }

// At returns the block with the given id.
func (b *Blocks) At(id BlockID) Block { return b.list[id] }

// StartingAt returns the BlockID of the block beginning exactly at offset,
// and whether one exists (§3 "Every block appears exactly once in both the
// map and the list").
func (b *Blocks) StartingAt(offset int) (BlockID, bool) {
	id, ok := b.byStart[offset]
	return id, ok
}

// ErrMalformedBytecode is returned when a branch target falls outside the
// method body or an opcode cannot be decoded (§4.1 error conditions).
type ErrMalformedBytecode struct {
	Reason string
	Offset int
}

func (e ErrMalformedBytecode) Error() string {
	return fmt.Sprintf("scan: malformed bytecode at %d: %s", e.Offset, e.Reason)
}

// Scan discovers basic-block boundaries in code and returns them in source
// order. It never needs the constant pool: targets are already absolute
// byte offsets in the class-file encoding.
func Scan(code []byte) (*Blocks, error) {
	if len(code) == 0 {
		return &Blocks{byStart: map[int]BlockID{}}, nil
	}

	bounds := map[int]bool{0: true}
	pos := 0
	for pos < len(code) {
		n, err := bytecode.Len(code, pos)
		if err != nil {
			return nil, ErrMalformedBytecode{Reason: err.Error(), Offset: pos}
		}
		op := bytecode.Op(code[pos])
		if op.IsBranch() {
			targets, err := branchTargets(code, pos, op)
			if err != nil {
				return nil, err
			}
			for _, t := range targets {
				if t < 0 || t >= len(code) {
					return nil, ErrMalformedBytecode{Reason: "branch target out of bounds", Offset: pos}
				}
				bounds[t] = true
			}
			if pos+n < len(code) && !op.IsTerminator() {
				bounds[pos+n] = true
			}
		}
		pos += n
	}

	offsets := make([]int, 0, len(bounds))
	for o := range bounds {
		offsets = append(offsets, o)
	}
	sort.Ints(offsets)

	b := &Blocks{byStart: make(map[int]BlockID, len(offsets))}
	for i, start := range offsets {
		end := len(code)
		if i+1 < len(offsets) {
			end = offsets[i+1]
		}
		b.byStart[start] = BlockID(len(b.list))
		b.list = append(b.list, Block{Start: start, End: end})
	}
	return b, nil
}

// branchTargets returns every absolute byte offset op (at pos) can transfer
// control to: one for the if*/goto/jsr family, one default plus one per
// case for table/lookupswitch.
func branchTargets(code []byte, pos int, op bytecode.Op) ([]int, error) {
	switch op {
	case bytecode.GotoW, bytecode.JsrW:
		return []int{bytecode.BranchOffset32(code, pos)}, nil
	case bytecode.Ret:
		// ret's target is a runtime local-variable value, not a static
		// offset; it introduces no static successor edge (§1 Non-goal:
		// jsr/ret subroutines are not modeled beyond basic-block splitting
		// of everything else).
		return nil, nil
	case bytecode.Tableswitch:
		def, low, high, table := bytecode.TableswitchHeader(code, pos)
		if high < low {
			return nil, ErrMalformedBytecode{Reason: "tableswitch high < low", Offset: pos}
		}
		targets := make([]int, 0, len(table)+1)
		targets = append(targets, pos+int(def))
		for _, off := range table {
			targets = append(targets, pos+int(off))
		}
		return targets, nil
	case bytecode.Lookupswitch:
		def, _, offsets := bytecode.LookupswitchHeader(code, pos)
		targets := make([]int, 0, len(offsets)+1)
		targets = append(targets, pos+int(def))
		for _, off := range offsets {
			targets = append(targets, pos+int(off))
		}
		return targets, nil
	default:
		return []int{bytecode.BranchOffset16(code, pos)}, nil
	}
}
