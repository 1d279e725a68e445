package fidtable

import "testing"

func TestAllocateDuplicate(t *testing.T) {
	tab := New()
	if _, ok := tab.Allocate(1, nil); !ok {
		t.Fatal("first Allocate should succeed")
	}
	if _, ok := tab.Allocate(1, nil); ok {
		t.Fatal("second Allocate of the same fid should fail")
	}
}

func TestLookupUnknown(t *testing.T) {
	tab := New()
	if _, ok := tab.Lookup(99); ok {
		t.Fatal("Lookup of an unallocated fid should fail")
	}
}

func TestRemoveFinalizesAtZeroRefcount(t *testing.T) {
	tab := New()
	tab.Allocate(1, "state")
	finalized := false
	if ok := tab.Remove(1, func(r *Record) { finalized = true }); !ok {
		t.Fatal("Remove of an allocated fid should succeed")
	}
	if !finalized {
		t.Fatal("Remove with no outstanding pins should finalize immediately")
	}
	if _, ok := tab.Lookup(1); ok {
		t.Fatal("fid should be gone after Remove")
	}
}

func TestRemoveDefersWhilePinned(t *testing.T) {
	tab := New()
	tab.Allocate(1, nil)
	r, ok := tab.Lookup(1)
	if !ok {
		t.Fatal("Lookup should find the fid")
	}

	finalized := false
	tab.Remove(1, func(*Record) { finalized = true })
	if finalized {
		t.Fatal("Remove should not finalize while a Lookup reference is outstanding")
	}

	tab.Unpin(r, func(*Record) { finalized = true })
	if !finalized {
		t.Fatal("finalize should fire once the last pinned reference is released")
	}
}

func TestResetClearsUnpinnedFids(t *testing.T) {
	tab := New()
	tab.Allocate(1, nil)
	tab.Allocate(2, nil)

	var finalizedCount int
	tab.Reset(func(*Record) { finalizedCount++ })

	if tab.Len() != 0 {
		t.Fatalf("table should be empty after Reset, has %d entries", tab.Len())
	}
	if finalizedCount != 2 {
		t.Fatalf("finalizedCount = %d, want 2", finalizedCount)
	}
	if _, ok := tab.Allocate(1, nil); !ok {
		t.Fatal("fid 1 should be reusable after Reset")
	}
}

func TestResetDefersFinalizeForPinnedFid(t *testing.T) {
	tab := New()
	tab.Allocate(1, nil)
	r, ok := tab.Lookup(1)
	if !ok {
		t.Fatal("Lookup should find the fid")
	}

	var finalizedCount int
	tab.Reset(func(*Record) { finalizedCount++ })
	if finalizedCount != 0 {
		t.Fatalf("finalizedCount = %d, want 0 while a Lookup reference is outstanding", finalizedCount)
	}
	if tab.Len() != 0 {
		t.Fatalf("table should be empty after Reset, has %d entries", tab.Len())
	}

	tab.Unpin(r, func(*Record) { finalizedCount++ })
	if finalizedCount != 1 {
		t.Fatalf("finalizedCount = %d, want 1 once the last pinned reference is released", finalizedCount)
	}
}
