package registry

import (
	"sync"
	"testing"
)

func TestAllocator_Monotonic(t *testing.T) {
	var a Allocator

	prev := Handle(0)
	for i := 0; i < 1000; i++ {
		h := a.Next()
		if h <= prev {
			t.Fatalf("handle %d not greater than previous %d", h, prev)
		}
		prev = h
	}
}

func TestAllocator_FirstHandleIsOne(t *testing.T) {
	var a Allocator

	if h := a.Next(); h != 1 {
		t.Errorf("first handle = %d, want 1", h)
	}
}

func TestAllocator_NoReuseUnderConcurrency(t *testing.T) {
	var a Allocator

	const (
		workers = 8
		perW    = 500
	)

	results := make([][]Handle, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			out := make([]Handle, 0, perW)
			for i := 0; i < perW; i++ {
				out = append(out, a.Next())
			}
			results[w] = out
		}(w)
	}
	wg.Wait()

	seen := make(map[Handle]struct{}, workers*perW)
	for _, out := range results {
		for _, h := range out {
			if _, dup := seen[h]; dup {
				t.Fatalf("handle %d issued twice", h)
			}
			seen[h] = struct{}{}
		}
	}
	if len(seen) != workers*perW {
		t.Errorf("issued %d unique handles, want %d", len(seen), workers*perW)
	}
}

func TestTable_InsertGetRemove(t *testing.T) {
	tbl := NewTable[string]()
	var a Allocator

	h := a.Next()
	if err := tbl.Insert(h, "alpha"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	v, ok := tbl.Get(h)
	if !ok {
		t.Fatal("Get missed a live handle")
	}
	if v != "alpha" {
		t.Errorf("Get = %q, want %q", v, "alpha")
	}

	tbl.Remove(h)
	if _, ok := tbl.Get(h); ok {
		t.Error("Get resolved a removed handle")
	}
}

func TestTable_DuplicateInsert(t *testing.T) {
	tbl := NewTable[int]()

	if err := tbl.Insert(7, 1); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := tbl.Insert(7, 2); err != ErrDuplicateHandle {
		t.Errorf("duplicate Insert = %v, want ErrDuplicateHandle", err)
	}

	// The original value must survive the rejected insert.
	v, _ := tbl.Get(7)
	if v != 1 {
		t.Errorf("Get after duplicate insert = %d, want 1", v)
	}
}

func TestTable_RemoveIdempotent(t *testing.T) {
	tbl := NewTable[string]()

	// Removing a handle that was never registered must not panic or error.
	tbl.Remove(42)

	if err := tbl.Insert(42, "x"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	tbl.Remove(42)
	tbl.Remove(42)

	if tbl.Len() != 0 {
		t.Errorf("Len = %d after removals, want 0", tbl.Len())
	}
}

func TestTable_Pop(t *testing.T) {
	tbl := NewTable[string]()

	if _, ok := tbl.Pop(1); ok {
		t.Error("Pop on empty table reported a hit")
	}

	if err := tbl.Insert(1, "x"); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	v, ok := tbl.Pop(1)
	if !ok || v != "x" {
		t.Errorf("Pop = (%q, %v), want (%q, true)", v, ok, "x")
	}
	if _, ok := tbl.Get(1); ok {
		t.Error("handle still resolves after Pop")
	}
}

func TestTable_RangeAndLen(t *testing.T) {
	tbl := NewTable[int]()
	var a Allocator

	want := make(map[Handle]int)
	for i := 0; i < 50; i++ {
		h := a.Next()
		want[h] = i
		if err := tbl.Insert(h, i); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	if tbl.Len() != len(want) {
		t.Fatalf("Len = %d, want %d", tbl.Len(), len(want))
	}

	got := make(map[Handle]int)
	tbl.Range(func(h Handle, v int) bool {
		got[h] = v
		return true
	})
	if len(got) != len(want) {
		t.Fatalf("Range visited %d entries, want %d", len(got), len(want))
	}
	for h, v := range want {
		if got[h] != v {
			t.Errorf("Range saw %d for handle %d, want %d", got[h], h, v)
		}
	}
}

func TestTable_ConcurrentAccess(t *testing.T) {
	tbl := NewTable[int]()
	var a Allocator

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				h := a.Next()
				if err := tbl.Insert(h, i); err != nil {
					t.Errorf("Insert failed: %v", err)
					return
				}
				if _, ok := tbl.Get(h); !ok {
					t.Errorf("Get missed freshly inserted handle %d", h)
					return
				}
				tbl.Remove(h)
			}
		}()
	}
	wg.Wait()

	if tbl.Len() != 0 {
		t.Errorf("Len = %d after balanced insert/remove, want 0", tbl.Len())
	}
}
