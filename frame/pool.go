package frame

import (
	"sync"
	"unsafe"

	"github.com/edsrzf/mmap-go"

	"github.com/hornet-go/hornet/value"
)

// cellsPerFrame bounds how many value.Value slots a single pooled Frame's
// locals may use. Methods whose MaxLocals exceeds this fall back to a
// heap-allocated Frame, the same "pool when it fits, allocate otherwise"
// pattern exec.VM uses by reusing vm.ctx.stack only when its capacity
// already covers compiled.maxDepth (exec/vm.go's ExecCode).
const cellsPerFrame = 256

// Pool is a per-thread frame allocator backed by one mmap'd slab of
// value.Value-sized cells (§9 "Per-thread frame pools: substitute a
// thread-local slab allocator for the source's native per-thread stack").
// It repurposes the mmap-go dependency — elsewhere used to map executable
// JIT code pages — as plain read/write memory holding Frame locals storage
// instead; jitcall-style execution is a Non-goal here, but the
// map-one-region-then-hand-out-slices idiom transfers directly. The operand
// stack, which grows and shrinks per instruction rather than being sized
// once at call time, stays a regular Go slice.
type Pool struct {
	mu     sync.Mutex
	region mmap.MMap
	cells  []value.Value
	free   []int // indices of available frame slots into cells, by slabIndex*cellsPerFrame
	slots  int
	heap   sync.Pool // overflow allocator for frames too big to fit a slot
}

// NewPool mmaps a slab able to serve slots frames of cellsPerFrame cells
// each, and returns the Pool managing it.
func NewPool(slots int) (*Pool, error) {
	if slots <= 0 {
		slots = 64
	}
	byteLen := slots * cellsPerFrame * int(unsafe.Sizeof(value.Value(0)))
	region, err := mmap.MapRegion(nil, byteLen, mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return nil, err
	}
	cells := unsafe.Slice((*value.Value)(unsafe.Pointer(&region[0])), slots*cellsPerFrame)

	p := &Pool{region: region, cells: cells, slots: slots}
	p.free = make([]int, slots)
	for i := range p.free {
		p.free[i] = i
	}
	p.heap.New = func() interface{} { return &Frame{} }
	return p, nil
}

// Close unmaps the pool's backing slab. It must not be called while any
// Frame acquired from the pool is still in use.
func (p *Pool) Close() error {
	return p.region.Unmap()
}

// Acquire returns a zeroed Frame with room for numLocals locals, drawn from
// the mmap'd slab when it fits in one slot and from the heap overflow pool
// otherwise.
func (p *Pool) Acquire(numLocals int) *Frame {
	if numLocals <= cellsPerFrame {
		p.mu.Lock()
		if n := len(p.free); n > 0 {
			idx := p.free[n-1]
			p.free = p.free[:n-1]
			p.mu.Unlock()
			start := idx * cellsPerFrame
			f := &Frame{slab: idx}
			f.reset(p.cells[start : start+numLocals : start+cellsPerFrame])
			return f
		}
		p.mu.Unlock()
	}
	f := p.heap.Get().(*Frame)
	f.slab = -1
	f.reset(make([]value.Value, numLocals))
	return f
}

// Release returns f to the slab slot it was carved from, or to the heap
// overflow pool if it was allocated there.
func (p *Pool) Release(f *Frame) {
	if f.slab < 0 {
		p.heap.Put(f)
		return
	}
	p.mu.Lock()
	p.free = append(p.free, f.slab)
	p.mu.Unlock()
}
