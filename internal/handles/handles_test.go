package handles

import (
	"sync"
	"testing"
)

func TestRegisterAndLookup(t *testing.T) {
	type pending struct {
		Op string
	}

	p := &pending{Op: "join"}
	h := Register(p)
	defer Unregister(h)

	if h == 0 {
		t.Fatal("Register should return a non-zero handle")
	}

	got, ok := LookupAs[*pending](h)
	if !ok {
		t.Fatalf("LookupAs returned wrong type: %T", Lookup(h))
	}
	if got != p {
		t.Errorf("LookupAs returned a different object: %+v", got)
	}
}

func TestLookupAsWrongType(t *testing.T) {
	h := Register("participant")
	defer Unregister(h)

	if _, ok := LookupAs[int](h); ok {
		t.Error("LookupAs should fail for a mismatched type")
	}
}

func TestUnregister(t *testing.T) {
	h := Register("sink")
	Unregister(h)

	if Lookup(h) != nil {
		t.Error("expected nil after Unregister")
	}
	Unregister(h)
}

func TestUnregisterTwice(t *testing.T) {
	before := Count()
	h := Register(42)
	Unregister(h)
	Unregister(h)
	if n := Count(); n != before {
		t.Errorf("Count = %d after double Unregister, want %d", n, before)
	}
}

func TestLookupNonExistent(t *testing.T) {
	if Lookup(999999) != nil {
		t.Error("Lookup of an unknown handle should return nil")
	}
}

func TestConcurrentAccess(t *testing.T) {
	const goroutines = 64
	const ops = 100

	before := Count()

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < ops; j++ {
				h := Register([2]int{id, j})
				if Lookup(h) == nil {
					t.Errorf("Lookup returned nil for handle %d", h)
				}
				Unregister(h)
			}
		}(i)
	}
	wg.Wait()

	if got := Count(); got != before {
		t.Errorf("Count = %d after balanced register/unregister, want %d", got, before)
	}
}

func TestHandlesAreUnique(t *testing.T) {
	seen := make(map[uintptr]bool)
	for i := 0; i < 1000; i++ {
		h := Register(i)
		if seen[h] {
			t.Errorf("handle %d was returned twice", h)
		}
		seen[h] = true
	}
	for h := range seen {
		Unregister(h)
	}
}
