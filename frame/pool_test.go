package frame

import (
	"testing"

	"github.com/hornet-go/hornet/value"
)

func TestAcquireReleaseRecyclesSlabSlot(t *testing.T) {
	p, err := NewPool(1)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer p.Close()

	f1 := p.Acquire(4)
	if len(f1.Locals) != 4 {
		t.Fatalf("len(Locals) = %d, want 4", len(f1.Locals))
	}
	if f1.slab != 0 {
		t.Fatalf("first Acquire should draw slab slot 0, got %d", f1.slab)
	}
	p.Release(f1)

	f2 := p.Acquire(4)
	if f2.slab != 0 {
		t.Fatalf("Acquire after Release should reuse slab slot 0, got %d", f2.slab)
	}
}

func TestAcquireOverflowsToHeapBeyondSlabCapacity(t *testing.T) {
	p, err := NewPool(1)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer p.Close()

	held := p.Acquire(4) // takes the pool's only slab slot
	overflow := p.Acquire(4)
	if overflow.slab != -1 {
		t.Fatalf("second concurrent Acquire should overflow to heap (slab = -1), got %d", overflow.slab)
	}
	p.Release(held)
	p.Release(overflow)
}

func TestAcquireOverflowsWhenLocalsExceedCellsPerFrame(t *testing.T) {
	p, err := NewPool(4)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer p.Close()

	f := p.Acquire(cellsPerFrame + 1)
	if f.slab != -1 {
		t.Fatalf("a frame wider than cellsPerFrame should overflow to heap, got slab %d", f.slab)
	}
	if len(f.Locals) != cellsPerFrame+1 {
		t.Fatalf("len(Locals) = %d, want %d", len(f.Locals), cellsPerFrame+1)
	}
	p.Release(f)
}

func TestAcquiredFrameLocalsAreZeroed(t *testing.T) {
	p, err := NewPool(2)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer p.Close()

	f := p.Acquire(4)
	for i, v := range f.Locals {
		if v != value.Zero {
			t.Fatalf("Locals[%d] = %v on a fresh Acquire, want Zero", i, v)
		}
	}
	f.Locals[0] = value.To(int32(7))
	p.Release(f)

	f2 := p.Acquire(4) // should reuse the same slab slot, re-zeroed
	if f2.Locals[0] != value.Zero {
		t.Fatalf("recycled frame's Locals[0] = %v, want Zero", f2.Locals[0])
	}
}
