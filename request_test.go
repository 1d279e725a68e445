package lib9p

import (
	"testing"
	"time"

	"github.com/kozmagabor/lib9p/proto"
)

func TestAsyncRespondViaEJUSTRETURN(t *testing.T) {
	backend := &fakeBackend{}
	tr := newFakeTransport()
	c := NewConnection(backend, tr)
	mustVersion(t, c, tr, "9P2000")

	c.AllocFid(1, proto.Qid{Path: 1}, nil)

	backend.read = func(r *Request, tt proto.Tread) (proto.Rread, Errno) {
		go r.Respond(proto.Rread{Data: []byte("async")}, Success)
		return proto.Rread{}, EJUSTRETURN
	}

	segs := encode(t, proto.TypeTread, 3, proto.Tread{Fid: 1, Count: 5}, proto.Original)
	if err := c.Deliver(segs, "a1"); err != nil {
		t.Fatal(err)
	}
	msgs := tr.waitForCount(t, 2)
	if msgs[1].typ != proto.TypeRread {
		t.Fatalf("got type %d, want Rread from async Respond", msgs[1].typ)
	}
}

func TestRespondIsIdempotent(t *testing.T) {
	backend := &fakeBackend{}
	tr := newFakeTransport()
	c := NewConnection(backend, tr)
	mustVersion(t, c, tr, "9P2000")
	c.AllocFid(1, proto.Qid{Path: 1}, nil)

	var req *Request
	done := make(chan struct{})
	backend.read = func(r *Request, tt proto.Tread) (proto.Rread, Errno) {
		req = r
		close(done)
		return proto.Rread{Data: []byte("x")}, Success
	}

	segs := encode(t, proto.TypeTread, 4, proto.Tread{Fid: 1, Count: 1}, proto.Original)
	if err := c.Deliver(segs, "a1"); err != nil {
		t.Fatal(err)
	}
	<-done
	tr.waitForCount(t, 2)

	// A second Respond call on an already-answered request must not send
	// another response or panic (req.conn.finish touches the fid/tag
	// tables again otherwise).
	req.Respond(proto.Rread{Data: []byte("y")}, Success)
	time.Sleep(10 * time.Millisecond)
	if n := len(tr.snapshot()); n != 2 {
		t.Fatalf("got %d responses, want 2 (a second Respond must be a no-op)", n)
	}
}

func TestClunkWhilePinnedDefersFreefid(t *testing.T) {
	backend := &fakeBackend{}
	tr := newFakeTransport()
	c := NewConnection(backend, tr)
	mustVersion(t, c, tr, "9P2000")

	c.AllocFid(1, proto.Qid{Path: 1}, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	backend.read = func(r *Request, tt proto.Tread) (proto.Rread, Errno) {
		close(started)
		<-release
		return proto.Rread{Data: []byte("x")}, Success
	}

	segs := encode(t, proto.TypeTread, 10, proto.Tread{Fid: 1, Count: 1}, proto.Original)
	if err := c.Deliver(segs, "read"); err != nil {
		t.Fatal(err)
	}
	<-started

	// The fid is pinned by the in-flight Tread; Tclunk must not finalize
	// it (call Freefid) until that Tread's response has been sent.
	segs = encode(t, proto.TypeTclunk, 11, proto.Tclunk{Fid: 1}, proto.Original)
	if err := c.Deliver(segs, "clunk"); err != nil {
		t.Fatal(err)
	}

	time.Sleep(20 * time.Millisecond)
	backend.mu.Lock()
	freedSoFar := len(backend.freed)
	backend.mu.Unlock()
	if freedSoFar != 0 {
		t.Fatalf("Freefid fired before the pinning Tread completed")
	}

	close(release)
	// Rversion, then Rclunk (sent as soon as the fid is removed, without
	// waiting for the pinning Tread), then Rread.
	tr.waitForCount(t, 3)

	backend.mu.Lock()
	defer backend.mu.Unlock()
	if len(backend.freed) != 1 || backend.freed[0] != 1 {
		t.Fatalf("freed = %v, want [1] once the pinning request completed", backend.freed)
	}
}
