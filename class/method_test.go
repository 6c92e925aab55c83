package class

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

// TestIdempotentTranslation checks that Method.Trampoline translates a
// method's bytecode at most once, even when several callers race to
// trigger the first translation, and that every caller observes the
// identical cached result afterward (§8 "idempotent translation" —
// translate here stands in for interp's real translator/fake backend,
// isolating the sync.Once guarantee from the translator itself).
func TestIdempotentTranslation(t *testing.T) {
	m := &Method{Klass: &Klass{Name: "T"}, Name: "m", Descriptor: "()I"}

	var calls int32
	translate := func(*Method) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return []byte{1, 2, 3}, nil
	}

	const n = 8
	var wg sync.WaitGroup
	results := make([][]byte, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := m.Trampoline(translate)
			if err != nil {
				t.Errorf("Trampoline: %v", err)
				return
			}
			results[i] = out
		}(i)
	}
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("translate invoked %d times across %d racing callers, want exactly 1", got, n)
	}
	for i, out := range results {
		if len(out) != 3 || out[0] != 1 || out[1] != 2 || out[2] != 3 {
			t.Fatalf("results[%d] = %v, want [1 2 3]", i, out)
		}
	}

	// A call arriving after the race has settled must still reuse the
	// cached trampoline rather than translating again.
	out, err := m.Trampoline(translate)
	if err != nil {
		t.Fatalf("Trampoline (post-race call): %v", err)
	}
	if len(out) != 3 || out[0] != 1 {
		t.Fatalf("cached trampoline changed shape: %v", out)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("translate invoked %d times after a later call, want still 1", got)
	}
}

// TestTrampolineCachesErrors checks that a failed translation is also
// cached: a method whose bytecode cannot be translated must not retry the
// translator on every execution attempt.
func TestTrampolineCachesErrors(t *testing.T) {
	m := &Method{Klass: &Klass{Name: "T"}, Name: "bad", Descriptor: "()V"}

	wantErr := errors.New("bogus translation failure")
	var calls int32
	translate := func(*Method) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return nil, wantErr
	}

	for i := 0; i < 3; i++ {
		if _, err := m.Trampoline(translate); err != wantErr {
			t.Fatalf("call %d: err = %v, want %v", i, err, wantErr)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("translate invoked %d times across 3 failed calls, want exactly 1", got)
	}
}
