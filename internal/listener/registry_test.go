package listener

import (
	"sync"
	"testing"
)

type stub struct{ name string }

func TestAddRemoveBookkeeping(t *testing.T) {
	r := NewRegistry[*stub](nil)
	b1, b2 := &stub{"b1"}, &stub{"b2"}

	r.Add(b1)
	r.Add(b2)
	if r.Len() != 2 {
		t.Fatalf("expected 2 listeners, got %d", r.Len())
	}

	r.Remove(b1)
	if r.Len() != 1 {
		t.Fatalf("expected 1 listener after remove, got %d", r.Len())
	}

	// Removing an absent listener is a no-op
	r.Remove(b1)
	if r.Len() != 1 {
		t.Fatalf("expected 1 listener after removing absent listener, got %d", r.Len())
	}

	r.Remove(b2)
	if r.Len() != 0 {
		t.Fatalf("expected 0 listeners, got %d", r.Len())
	}
}

func TestAddAllRemoveAllClear(t *testing.T) {
	r := NewRegistry[*stub](nil)
	b1, b2 := &stub{"b1"}, &stub{"b2"}

	r.AddAll(b1, b2)
	if r.Len() != 2 {
		t.Fatalf("expected 2 listeners, got %d", r.Len())
	}
	r.RemoveAll(b1, b2)
	if r.Len() != 0 {
		t.Fatalf("expected 0 listeners, got %d", r.Len())
	}

	r.AddAll(b1, b2)
	r.Clear()
	if r.Len() != 0 {
		t.Fatalf("expected 0 listeners after clear, got %d", r.Len())
	}
	if snap := r.Snapshot(); len(snap) != 0 {
		t.Fatalf("expected empty snapshot, got %d entries", len(snap))
	}
}

func TestDuplicatesAndOrder(t *testing.T) {
	r := NewRegistry[*stub](nil)
	a, b, c := &stub{"a"}, &stub{"b"}, &stub{"c"}

	r.AddAll(a, b, a, c)

	snap := r.Snapshot()
	want := []*stub{a, b, a, c}
	if len(snap) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(snap))
	}
	for i := range want {
		if snap[i] != want[i] {
			t.Fatalf("entry %d: expected %s, got %s", i, want[i].name, snap[i].name)
		}
	}

	// Remove drops only the first occurrence
	r.Remove(a)
	snap = r.Snapshot()
	if len(snap) != 3 || snap[0] != b || snap[1] != a || snap[2] != c {
		t.Fatalf("unexpected order after Remove: %v", names(snap))
	}

	// RemoveAll drops every occurrence
	r.Add(a)
	r.RemoveAll(a)
	snap = r.Snapshot()
	if len(snap) != 2 || snap[0] != b || snap[1] != c {
		t.Fatalf("unexpected order after RemoveAll: %v", names(snap))
	}
}

func TestSnapshotIsolatedFromMutation(t *testing.T) {
	r := NewRegistry[*stub](nil)
	a, b := &stub{"a"}, &stub{"b"}
	r.AddAll(a, b)

	snap := r.Snapshot()
	r.Remove(a)
	r.Clear()

	if len(snap) != 2 || snap[0] != a || snap[1] != b {
		t.Fatalf("snapshot changed after registry mutation: %v", names(snap))
	}
}

func TestSharedMutex(t *testing.T) {
	var mu sync.Mutex
	frames := NewRegistry[*stub](&mu)
	errs := NewRegistry[*stub](&mu)

	mu.Lock()
	done := make(chan struct{})
	go func() {
		frames.Add(&stub{"x"})
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Add should block while the shared mutex is held")
	default:
	}
	mu.Unlock()
	<-done

	errs.Add(&stub{"y"})
	if frames.Len() != 1 || errs.Len() != 1 {
		t.Fatalf("expected one listener in each registry, got %d and %d", frames.Len(), errs.Len())
	}
}

func TestConcurrentMutationAndEnumeration(t *testing.T) {
	r := NewRegistry[*stub](nil)
	var wg sync.WaitGroup

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				p := &stub{}
				r.Add(p)
				_ = r.Snapshot()
				r.Remove(p)
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			for _, p := range r.Snapshot() {
				if p == nil {
					t.Error("snapshot contained a nil listener")
					return
				}
			}
		}
	}()

	wg.Wait()
	if r.Len() != 0 {
		t.Fatalf("expected registry to be empty, got %d", r.Len())
	}
}

func names(ps []*stub) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.name
	}
	return out
}

type handler interface{ handle() }

type handlerFunc func()

func (f handlerFunc) handle() { f() }

type pointerHandler struct{}

func (*pointerHandler) handle() {}

func TestUncomparableListenersNeverMatch(t *testing.T) {
	r := NewRegistry[handler](nil)
	fn := handlerFunc(func() {})
	p := &pointerHandler{}

	r.AddAll(fn, p, fn)
	if r.Len() != 3 {
		t.Fatalf("expected 3 listeners, got %d", r.Len())
	}

	// Func-typed listeners cannot be matched, and removing them must not panic
	r.Remove(fn)
	r.RemoveAll(fn)
	if r.Len() != 3 {
		t.Fatalf("expected func listeners to stay registered, got %d", r.Len())
	}

	// Comparable listeners are still matched past uncomparable entries
	r.Remove(p)
	if r.Len() != 2 {
		t.Fatalf("expected 2 listeners after removing the pointer, got %d", r.Len())
	}

	r.Clear()
	if r.Len() != 0 {
		t.Fatalf("expected 0 listeners after clear, got %d", r.Len())
	}
}
