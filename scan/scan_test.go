package scan

import (
	"testing"

	"github.com/hornet-go/hornet/bytecode"
)

// TestScanCoversCode checks that the blocks returned by Scan partition the
// whole method body with no gaps and no overlaps (§8 "Scan covers code").
func TestScanCoversCode(t *testing.T) {
	code := []byte{
		byte(bytecode.Iconst0), byte(bytecode.Istore0),
		byte(bytecode.Iload0), byte(bytecode.Ifeq), 0, 4,
		byte(bytecode.Goto), 0, 3,
		byte(bytecode.Return),
	}
	blocks, err := Scan(code)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	pos := 0
	for i := 0; i < blocks.Len(); i++ {
		b := blocks.At(BlockID(i))
		if b.Start != pos {
			t.Fatalf("block %d starts at %d, want %d (gap or overlap)", i, b.Start, pos)
		}
		pos = b.End
	}
	if pos != len(code) {
		t.Fatalf("blocks end at %d, want %d", pos, len(code))
	}
}

// TestBlockBoundaryCoverage checks that every branch target and every
// fall-through successor begins its own block (§8 "Block boundary
// coverage").
func TestBlockBoundaryCoverage(t *testing.T) {
	code := []byte{
		byte(bytecode.Iload0), byte(bytecode.Ifeq), 0, 4, // 0..3: ifeq falls through to 4, branches to 5
		byte(bytecode.Iconst1), byte(bytecode.Ireturn), // 4..5
		byte(bytecode.Iconst0), byte(bytecode.Ireturn), // 6..7
	}
	blocks, err := Scan(code)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	for _, want := range []int{0, 4, 5} {
		if _, ok := blocks.StartingAt(want); !ok {
			t.Fatalf("expected a block boundary at offset %d", want)
		}
	}
}

func TestScanRejectsOutOfBoundsBranch(t *testing.T) {
	code := []byte{byte(bytecode.Goto), 0x7F, 0xFF} // huge forward offset
	if _, err := Scan(code); err == nil {
		t.Fatal("expected a malformed-bytecode error for an out-of-bounds branch target")
	}
}

func TestScanEmptyCode(t *testing.T) {
	blocks, err := Scan(nil)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if blocks.Len() != 0 {
		t.Fatalf("got %d blocks for empty code, want 0", blocks.Len())
	}
}

func TestScanTableswitchTargetsEachStartABlock(t *testing.T) {
	code := []byte{byte(bytecode.Iload0), byte(bytecode.Tableswitch)}
	tsPos := 1
	pad := (4 - (tsPos+1)%4) % 4
	code = append(code, make([]byte, pad)...)
	put32 := func(v int32) { code = append(code, byte(v>>24), byte(v>>16), byte(v>>8), byte(v)) }
	headerLen := 12 + 2*4 // default/low/high + 2 case offsets
	switchLen := 1 + pad + headerLen
	case0Rel := switchLen     // first case body starts right after the switch
	case1Rel := switchLen + 2 // each case body below is 2 bytes (iconst, ireturn)
	defaultRel := switchLen + 4
	put32(int32(defaultRel))
	put32(0) // low
	put32(1) // high
	put32(int32(case0Rel))
	put32(int32(case1Rel))
	code = append(code,
		byte(bytecode.Iconst1), byte(bytecode.Ireturn), // case 0 body
		byte(bytecode.Iconst2), byte(bytecode.Ireturn), // case 1 body
		byte(bytecode.Iconst0), byte(bytecode.Ireturn), // default body
	)

	blocks, err := Scan(code)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	for _, want := range []int{tsPos + case0Rel, tsPos + case1Rel, tsPos + defaultRel} {
		if _, ok := blocks.StartingAt(want); !ok {
			t.Fatalf("expected a block boundary at tableswitch target %d", want)
		}
	}
}
