// Package fidtable manages the set of fids a connection has allocated:
// a concurrency-safe map of reference-counted records whose
// finalization is deferred past any outstanding pin.
package fidtable

import (
	"sync"
)

// A Record is the table's view of one allocated fid. Core code never
// constructs a Record directly; it is returned by Allocate and mutated
// only through the table.
type Record struct {
	Fid   uint32
	State interface{} // backend-opaque per-fid state

	mu       sync.Mutex
	refcount int
	pinned   bool // true while a handler holds a Lookup'd reference
	deferred bool // Remove was called while pinned; finalize on last Unpin
}

// Table is a concurrency-safe map from fid number to Record. The zero
// value is not usable; construct one with New.
type Table struct {
	mu   sync.Mutex
	fids map[uint32]*Record
}

// New returns an empty Table.
func New() *Table {
	return &Table{fids: make(map[uint32]*Record)}
}

// Allocate adds a new Record for fid with refcount 1. It fails if fid is
// already present, matching 9P's requirement that Tattach/Twalk-with-
// newfid name a fid the client hasn't already used.
func (t *Table) Allocate(fid uint32, state interface{}) (*Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.fids[fid]; ok {
		return nil, false
	}
	r := &Record{Fid: fid, State: state, refcount: 1}
	t.fids[fid] = r
	return r, true
}

// Lookup finds the Record for fid and pins it, incrementing its
// refcount. The caller must call Unpin when done using the Record.
func (t *Table) Lookup(fid uint32) (*Record, bool) {
	t.mu.Lock()
	r, ok := t.fids[fid]
	t.mu.Unlock()
	if !ok {
		return nil, false
	}
	r.mu.Lock()
	r.refcount++
	r.pinned = true
	r.mu.Unlock()
	return r, true
}

// Unpin releases a reference obtained from Lookup. If Remove was called
// on this fid while it was pinned, and this is the last reference,
// finalize fires now and onFinalize is invoked.
func (t *Table) Unpin(r *Record, onFinalize func(*Record)) {
	r.mu.Lock()
	r.refcount--
	held := r.refcount
	if !r.deferred {
		held-- // the allocation's own reference is not a pin
	}
	r.pinned = held > 0
	finalize := r.deferred && r.refcount == 0
	r.mu.Unlock()
	if finalize && onFinalize != nil {
		onFinalize(r)
	}
}

// Remove decrements fid's refcount for the allocation itself (the
// reference implicitly held since Allocate). If the refcount reaches
// zero, onFinalize is called immediately with the Record so the backend
// can release any associated resources (its freefid hook); otherwise
// finalization is deferred until the last pinned Lookup is Unpin'd.
func (t *Table) Remove(fid uint32, onFinalize func(*Record)) bool {
	t.mu.Lock()
	r, ok := t.fids[fid]
	if ok {
		delete(t.fids, fid)
	}
	t.mu.Unlock()
	if !ok {
		return false
	}
	r.mu.Lock()
	r.refcount--
	finalize := r.refcount == 0
	if !finalize {
		r.deferred = true
	}
	r.mu.Unlock()
	if finalize && onFinalize != nil {
		onFinalize(r)
	}
	return true
}

// Reset clears every entry from the table, as happens when a connection
// renegotiates its version. Each discarded Record loses the
// table's own reference exactly like Remove would; a Record still
// pinned by an in-flight request is left for its holder to Unpin
// normally, since a version reset does not interrupt in-flight
// requests, and onFinalize fires only once that last pin is released.
func (t *Table) Reset(onFinalize func(*Record)) {
	t.mu.Lock()
	fids := t.fids
	t.fids = make(map[uint32]*Record)
	t.mu.Unlock()

	for _, r := range fids {
		r.mu.Lock()
		r.refcount--
		finalize := r.refcount == 0
		if !finalize {
			r.deferred = true
		}
		r.mu.Unlock()
		if finalize && onFinalize != nil {
			onFinalize(r)
		}
	}
}

// Len reports how many fids are currently allocated.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.fids)
}
