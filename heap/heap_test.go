package heap

import (
	"testing"
	"unsafe"

	"github.com/hornet-go/hornet/class"
	"github.com/hornet-go/hornet/value"
)

func TestNewObjectFieldAccess(t *testing.T) {
	k := &class.Klass{Name: "Point"}
	fx := &class.Field{Klass: k, Name: "x", Type: value.TInt, Offset: 0}
	fy := &class.Field{Klass: k, Name: "y", Type: value.TInt, Offset: 1}
	k.Fields = []*class.Field{fx, fy}

	gc := NewGC()
	o, err := gc.NewObject(k)
	if err != nil {
		t.Fatalf("NewObject: %v", err)
	}
	o.SetField(fx, value.To(int32(3)))
	o.SetField(fy, value.To(int32(4)))
	if got := value.From[int32](o.GetField(fx)); got != 3 {
		t.Fatalf("GetField(x) = %d, want 3", got)
	}
	if got := value.From[int32](o.GetField(fy)); got != 4 {
		t.Fatalf("GetField(y) = %d, want 4", got)
	}
}

func TestNewArrayBounds(t *testing.T) {
	gc := NewGC()
	a, err := gc.NewArray(nil, value.TInt, nil, 3)
	if err != nil {
		t.Fatalf("NewArray: %v", err)
	}
	if a.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", a.Len())
	}
	if err := a.Set(1, value.To(int32(42))); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := a.Get(1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if value.From[int32](got) != 42 {
		t.Fatalf("Get(1) = %d, want 42", value.From[int32](got))
	}
	if _, err := a.Get(3); err != ErrArrayIndexOutOfBounds {
		t.Fatalf("Get(3) err = %v, want ErrArrayIndexOutOfBounds", err)
	}
	if err := a.Set(-1, value.Zero); err != ErrArrayIndexOutOfBounds {
		t.Fatalf("Set(-1) err = %v, want ErrArrayIndexOutOfBounds", err)
	}
}

func TestNewArrayNegativeCountFails(t *testing.T) {
	gc := NewGC()
	if _, err := gc.NewArray(nil, value.TInt, nil, -1); err != ErrOutOfMemory {
		t.Fatalf("NewArray(-1) err = %v, want ErrOutOfMemory", err)
	}
}

func TestMonitorReentrant(t *testing.T) {
	m := newMonitor()
	owner := "thread-1"
	m.Enter(owner)
	m.Enter(owner) // re-entrant: must not deadlock
	if err := m.Exit(owner); err != nil {
		t.Fatalf("Exit (inner): %v", err)
	}
	if m.owner != owner {
		t.Fatalf("monitor released after inner Exit, want still held at depth 1")
	}
	if err := m.Exit(owner); err != nil {
		t.Fatalf("Exit (outer): %v", err)
	}
	if m.owner != nil {
		t.Fatalf("monitor still held after balanced Enter/Exit pairs")
	}
}

func TestMonitorExitByNonOwnerFails(t *testing.T) {
	m := newMonitor()
	m.Enter("owner")
	if err := m.Exit("someone-else"); err == nil {
		t.Fatal("expected an error exiting a monitor held by another owner")
	}
}

func TestKlassOfAndMonitorOf(t *testing.T) {
	k := &class.Klass{Name: "Thing"}
	gc := NewGC()
	o, err := gc.NewObject(k)
	if err != nil {
		t.Fatalf("NewObject: %v", err)
	}
	p := unsafe.Pointer(o)
	if got := KlassOf(p); got != k {
		t.Fatalf("KlassOf = %v, want %v", got, k)
	}
	if KlassOf(nil) != nil {
		t.Fatal("KlassOf(nil) should return nil")
	}
	if mon := MonitorOf(p); mon == nil {
		t.Fatal("MonitorOf returned nil for a live object")
	}
}

func TestGCStats(t *testing.T) {
	gc := NewGC()
	k := &class.Klass{Name: "T"}
	objs, arrs := gc.Stats()
	if objs != 0 || arrs != 0 {
		t.Fatalf("fresh GC Stats = (%d, %d), want (0, 0)", objs, arrs)
	}
	if _, err := gc.NewObject(k); err != nil {
		t.Fatalf("NewObject: %v", err)
	}
	if _, err := gc.NewArray(k, value.TInt, nil, 1); err != nil {
		t.Fatalf("NewArray: %v", err)
	}
	objs, arrs = gc.Stats()
	if objs != 1 || arrs != 1 {
		t.Fatalf("Stats after one alloc each = (%d, %d), want (1, 1)", objs, arrs)
	}
}
