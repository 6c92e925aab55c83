package thread

import (
	"testing"

	"github.com/hornet-go/hornet/class"
	"github.com/hornet-go/hornet/frame"
	"github.com/hornet-go/hornet/value"
)

// recordingBackend captures the Thread and Frame it was invoked with, so
// tests can assert Execute wired them through correctly without needing a
// real interpreter.
type recordingBackend struct {
	gotLocals []value.Value
	gotThread *Thread
	result    value.Value
	err       error
}

func (b *recordingBackend) Execute(t *Thread, m *class.Method, f *frame.Frame) (value.Value, error) {
	b.gotThread = t
	b.gotLocals = append([]value.Value(nil), f.Locals...)
	return b.result, b.err
}

func newTestPool(t *testing.T) *frame.Pool {
	p, err := frame.NewPool(4)
	if err != nil {
		t.Fatalf("frame.NewPool: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestNewAssignsDistinctIDs(t *testing.T) {
	p := newTestPool(t)
	b := &recordingBackend{}
	t1 := New(p, b)
	t2 := New(p, b)
	if t1.ID() == t2.ID() {
		t.Fatalf("two Threads got the same ID %d", t1.ID())
	}
}

func TestExecuteCopiesArgsIntoLocals(t *testing.T) {
	p := newTestPool(t)
	b := &recordingBackend{result: value.To(int32(42))}
	th := New(p, b)

	m := &class.Method{Name: "add", MaxLocals: 3}
	args := []value.Value{value.To(int32(1)), value.To(int32(2))}

	result, err := th.Execute(m, args)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if value.From[int32](result) != 42 {
		t.Fatalf("result = %d, want 42", value.From[int32](result))
	}
	if b.gotThread != th {
		t.Fatal("backend was not handed the calling Thread")
	}
	if len(b.gotLocals) != 3 {
		t.Fatalf("len(Locals) = %d, want MaxLocals (3)", len(b.gotLocals))
	}
	if value.From[int32](b.gotLocals[0]) != 1 || value.From[int32](b.gotLocals[1]) != 2 {
		t.Fatalf("Locals = %v, want args copied into the low slots", b.gotLocals)
	}
	if b.gotLocals[2] != value.Zero {
		t.Fatalf("Locals[2] = %v, want Zero (uncopied slot)", b.gotLocals[2])
	}
}

func TestExecutePropagatesBackendError(t *testing.T) {
	p := newTestPool(t)
	wantErr := &class.UnresolvedMethodError{Klass: "T", Name: "m", Descriptor: "()I"}
	b := &recordingBackend{err: wantErr}
	th := New(p, b)

	m := &class.Method{Name: "m", MaxLocals: 0}
	if _, err := th.Execute(m, nil); err != wantErr {
		t.Fatalf("Execute err = %v, want %v", err, wantErr)
	}
}

func TestMakeFrameFreeFrameRoundTrip(t *testing.T) {
	p := newTestPool(t)
	th := New(p, &recordingBackend{})

	m := &class.Method{Name: "m", MaxLocals: 2}
	f := th.MakeFrame(m)
	if len(f.Locals) != 2 {
		t.Fatalf("len(Locals) = %d, want 2", len(f.Locals))
	}
	th.FreeFrame(f)

	f2 := th.MakeFrame(m)
	th.FreeFrame(f2)
}
