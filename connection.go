package lib9p

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kozmagabor/lib9p/internal/fidtable"
	"github.com/kozmagabor/lib9p/internal/reqtable"
	"github.com/kozmagabor/lib9p/internal/workerpool"
	"github.com/kozmagabor/lib9p/proto"
)

// errConnClosing is returned by Deliver once a Connection has entered
// stateClosing: no further input is accepted, not even a fresh
// Tversion, and no response is sent for the rejected message.
var errConnClosing = errors.New("9p: connection is closing")

type connState int

const (
	stateFresh connState = iota // Tversion not received yet
	stateNegotiated
	stateClosing
)

// A Connection is the server-side state machine for one 9P session:
// version negotiation, the fid table, the in-flight request table, and
// the worker pool that runs backend handlers. A Connection must be
// created with NewConnection; its Deliver method is the entry point
// fed by whatever owns the transport's read loop.
type Connection struct {
	backend    Backend
	transport  Transport
	log        Logger
	maxMsize   uint32
	maxVersion proto.Dialect
	workers    int

	mu      sync.Mutex
	state   connState
	dialect proto.Dialect
	msize   uint32

	fids *fidtable.Table
	reqs *reqtable.Table
	pool *workerpool.Pool

	reqMu    sync.Mutex
	liveReqs map[uint16]*Request

	flushMu      sync.Mutex
	flushWaiters map[uint16][]*Request
}

// A ConnOption customizes a Connection constructed by NewConnection.
type ConnOption func(*Connection)

// WithWorkers overrides the number of worker goroutines a Connection
// dispatches requests onto. The default is proto.DefaultWorkers.
func WithWorkers(n int) ConnOption {
	return func(c *Connection) { c.workers = n }
}

// WithMaxMsize overrides the largest msize a Connection will agree to
// during version negotiation. The default is proto.DefaultMsize.
func WithMaxMsize(n uint32) ConnOption {
	return func(c *Connection) { c.maxMsize = n }
}

// WithMaxVersion overrides the highest dialect a Connection will
// negotiate, regardless of what a client's Tversion requests. The
// default is proto.DefaultMaxVersion (9P2000.L). A server that only
// wants to speak plain 9P2000, say, sets this to proto.Original so a
// client's 9P2000.L request is answered with 9P2000 instead.
func WithMaxVersion(d proto.Dialect) ConnOption {
	return func(c *Connection) { c.maxVersion = d }
}

// WithLogger attaches a Logger to a Connection. The default is a
// Logger that discards everything. WithLogger(nil) restores that
// default rather than leaving the Connection with no Logger at all.
func WithLogger(l Logger) ConnOption {
	return func(c *Connection) {
		if l == nil {
			l = discardLogger{}
		}
		c.log = l
	}
}

// NewConnection creates a Connection bound to backend and transport, in
// stateFresh, awaiting its first Tversion.
func NewConnection(backend Backend, transport Transport, opts ...ConnOption) *Connection {
	c := &Connection{
		backend:      backend,
		transport:    transport,
		log:          discardLogger{},
		maxMsize:     proto.DefaultMsize,
		maxVersion:   proto.DefaultMaxVersion,
		workers:      proto.DefaultWorkers,
		msize:        proto.DefaultMsize,
		fids:         fidtable.New(),
		reqs:         reqtable.New(),
		liveReqs:     make(map[uint16]*Request),
		flushWaiters: make(map[uint16][]*Request),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.pool = workerpool.New(c.workers)
	return c
}

func (c *Connection) snapshot() (proto.Dialect, uint32, connState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dialect, c.msize, c.state
}

// AllocFid registers a new fid for the backend, failing if num is
// already in use. Called by a Backend handler (typically Attach or
// Walk) once it has decided a new fid should come into existence.
func (c *Connection) AllocFid(num uint32, qid proto.Qid, state interface{}) (*Fid, bool) {
	f := &Fid{Num: num, Qid: qid, State: state}
	if _, ok := c.fids.Allocate(num, f); !ok {
		return nil, false
	}
	return f, true
}

// RemoveFid drops num from the fid table. If nothing else has it
// pinned, Backend.Freefid is called before RemoveFid returns; otherwise
// it is deferred until the last pinned reference is released.
func (c *Connection) RemoveFid(num uint32) bool {
	return c.fids.Remove(num, c.finalizeFid)
}

func (c *Connection) lookupFid(num uint32) (*Fid, func(), bool) {
	rec, ok := c.fids.Lookup(num)
	if !ok {
		return nil, nil, false
	}
	f, _ := rec.State.(*Fid)
	release := func() { c.fids.Unpin(rec, c.finalizeFid) }
	return f, release, true
}

func (c *Connection) finalizeFid(rec *fidtable.Record) {
	if f, ok := rec.State.(*Fid); ok {
		c.backend.Freefid(f)
	}
}

// Deliver hands one complete, framed 9P message (its scatter-gather
// segments, starting at the size field) to the connection for
// processing. aux is passed back to the Transport unchanged when a
// response to this message, or any Tflush it provokes, is sent. Deliver
// does not block on the backend; it returns as soon as the message has
// been decoded and queued (or, for Tversion and a Tflush whose target
// is not running, answered directly; a Tflush of a running request has
// its Rflush sent after that request's response).
//
// Decoded bulk payloads (Twrite.Data) may alias segs rather than copy
// from them; a transport that recycles its receive buffers must keep
// segs alive until the response for this message has been handed to
// SendResponse.
func (c *Connection) Deliver(segs [][]byte, aux interface{}) error {
	total := proto.TotalLen(segs)
	b, err := proto.NewBuffer(proto.Decoding, segs, total)
	if err != nil {
		return err
	}
	hdr, err := proto.DecodeHeader(b)
	if err != nil {
		return err
	}

	dialect, _, state := c.snapshot()

	if state == stateClosing {
		// Closing rejects further input outright, including a fresh
		// Tversion - there is no coming back from Close.
		return errConnClosing
	}

	if hdr.Type == proto.TypeTversion {
		body, err := proto.Decode(b, hdr.Type, proto.Original)
		if err != nil {
			return c.sendError(hdr.Tag, proto.Original, aux, EINVAL, err)
		}
		return c.handleVersion(hdr.Tag, body.(proto.Tversion), aux)
	}

	if state != stateNegotiated {
		return c.sendError(hdr.Tag, dialect, aux, EINVAL, fmt.Errorf("9p: Tversion required before any other message"))
	}

	body, err := proto.Decode(b, hdr.Type, dialect)
	if err != nil {
		if proto.IsMalformed(err) {
			return c.sendError(hdr.Tag, dialect, aux, EINVAL, err)
		}
		return err
	}

	if hdr.Type == proto.TypeTflush {
		return c.handleFlush(hdr.Tag, body.(proto.Tflush), aux, dialect)
	}

	return c.handleRequest(hdr.Tag, hdr.Type, body, aux, dialect)
}

func (c *Connection) handleVersion(tag uint16, t proto.Tversion, aux interface{}) error {
	d, ok := proto.ParseDialect(t.Version)

	c.mu.Lock()
	if !ok {
		c.mu.Unlock()
		return c.encodeAndSend(aux, proto.TypeRversion, tag, proto.Rversion{Msize: 0, Version: "unknown"}, proto.Original)
	}

	msize := t.Msize
	if msize > c.maxMsize {
		msize = c.maxMsize
	}
	d = proto.Min(d, c.maxVersion)
	c.dialect = d
	c.msize = msize
	c.state = stateNegotiated
	c.mu.Unlock()

	// Version negotiation discards all previously allocated fids.
	// Requests already dispatched to the worker pool are left to finish
	// on their own; the pool has no preemption. The request table is not
	// cleared, so their tags stay in use and their responses are still
	// sent once their handlers complete.
	c.fids.Reset(c.finalizeFid)

	return c.encodeAndSend(aux, proto.TypeRversion, tag, proto.Rversion{Msize: msize, Version: d.String()}, d)
}

func (c *Connection) handleFlush(tag uint16, t proto.Tflush, aux interface{}, dialect proto.Dialect) error {
	if !c.reqs.MarkFlushing(t.Oldtag) {
		// Case (a): the tag named by Tflush is not outstanding, either
		// because it never existed or has already been answered.
		return c.encodeAndSend(aux, proto.TypeRflush, tag, proto.Rflush{}, dialect)
	}

	if c.pool.Cancel(t.Oldtag) {
		// Case (b): the request was still sitting in the queue and
		// never reached the backend; drop it without a response of its
		// own and answer the flush immediately.
		c.reqMu.Lock()
		oldreq := c.liveReqs[t.Oldtag]
		delete(c.liveReqs, t.Oldtag)
		c.reqMu.Unlock()
		if oldreq != nil {
			if oldreq.cancel != nil {
				oldreq.cancel()
			}
			if oldreq.releaseFid != nil {
				oldreq.releaseFid()
			}
		}
		c.reqs.Remove(t.Oldtag)
		return c.encodeAndSend(aux, proto.TypeRflush, tag, proto.Rflush{}, dialect)
	}

	// Case (c): the request is already running. Defer the Rflush until
	// its real response goes out, guaranteeing ordering, and cancel its
	// context so a cooperative handler can abandon the work early.
	flushReq := &Request{Tag: tag, conn: c, aux: aux, Dialect: dialect}
	c.flushMu.Lock()
	c.flushWaiters[t.Oldtag] = append(c.flushWaiters[t.Oldtag], flushReq)
	c.flushMu.Unlock()

	// The target may have completed between MarkFlushing and the append
	// above, in which case finish has already drained (and missed) our
	// waiter. Its response is on the wire by the time its tag leaves the
	// request table, so draining the waiter ourselves here still emits
	// Rflush strictly after it. The map delete under flushMu makes the
	// two drains mutually exclusive: whichever side takes the slice
	// sends each Rflush exactly once.
	if _, live := c.reqs.Lookup(t.Oldtag); !live {
		c.flushMu.Lock()
		waiters := c.flushWaiters[t.Oldtag]
		delete(c.flushWaiters, t.Oldtag)
		c.flushMu.Unlock()
		for _, fr := range waiters {
			c.encodeAndSend(fr.aux, proto.TypeRflush, fr.Tag, proto.Rflush{}, fr.Dialect)
		}
		return nil
	}

	c.reqMu.Lock()
	oldreq := c.liveReqs[t.Oldtag]
	c.reqMu.Unlock()
	if oldreq != nil && oldreq.cancel != nil {
		oldreq.cancel()
	}
	return nil
}

func (c *Connection) handleRequest(tag uint16, typ uint8, body proto.Fcall, aux interface{}, dialect proto.Dialect) error {
	if !c.reqs.Add(tag, struct{}{}) {
		return c.sendError(tag, dialect, aux, EINVAL, fmt.Errorf("9p: tag %d already in use", tag))
	}

	ctx, cancel := context.WithCancel(context.Background())
	req := &Request{
		Tag:     tag,
		Type:    typ,
		Dialect: dialect,
		Body:    body,
		conn:    c,
		aux:     aux,
		ctx:     ctx,
		cancel:  cancel,
	}

	if fidNum, ok := primaryFid(body); ok {
		fid, release, ok := c.lookupFid(fidNum)
		if !ok {
			c.reqs.Remove(tag)
			cancel()
			return c.sendError(tag, dialect, aux, EBADF, fmt.Errorf("9p: fid %d not found", fidNum))
		}
		req.Fid = fid
		req.releaseFid = release
	}

	c.reqMu.Lock()
	c.liveReqs[tag] = req
	c.reqMu.Unlock()

	c.pool.Submit(tag, func() { c.runBackend(req) })
	return nil
}

// runBackend invokes callBackend with panic recovery. A panicking
// handler has not called Respond, so the request would
// otherwise hang forever (its tag never freed, its Tflush - if any -
// never answered); recovering turns it into an ordinary EIO response
// instead of taking down a worker goroutine.
func (c *Connection) runBackend(req *Request) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Printf("9p: panic handling tag %d: %v", req.Tag, r)
			req.Respond(nil, EIO)
		}
	}()
	c.callBackend(req)
}

// primaryFid reports the fid field a request body is scoped to, for
// message types whose fid must already exist. Types that introduce a
// brand new fid (Tattach's Fid, Twalk's Newfid, Txattrwalk's Newfid) are
// not reported here; the backend allocates those explicitly through
// AllocFid once it knows the operation succeeded.
func primaryFid(body proto.Fcall) (uint32, bool) {
	switch m := body.(type) {
	case proto.Twalk:
		return m.Fid, true
	case proto.Topen:
		return m.Fid, true
	case proto.Tcreate:
		return m.Fid, true
	case proto.Tread:
		return m.Fid, true
	case proto.Twrite:
		return m.Fid, true
	case proto.Tclunk:
		return m.Fid, true
	case proto.Tremove:
		return m.Fid, true
	case proto.Tstat:
		return m.Fid, true
	case proto.Twstat:
		return m.Fid, true
	case proto.Tgetattr:
		return m.Fid, true
	case proto.Tsetattr:
		return m.Fid, true
	case proto.Txattrwalk:
		return m.Fid, true
	case proto.Treaddir:
		return m.Fid, true
	case proto.Tfsync:
		return m.Fid, true
	case proto.Tlock:
		return m.Fid, true
	case proto.Tgetlock:
		return m.Fid, true
	case proto.Tlink:
		return m.Fid, true
	case proto.Tmkdir:
		return m.Dfid, true
	case proto.Trename:
		return m.Fid, true
	case proto.Treadlink:
		return m.Fid, true
	case proto.Tstatfs:
		return m.Fid, true
	case proto.Tmknod:
		return m.Dfid, true
	case proto.Trenameat:
		return m.Olddirfid, true
	case proto.Tunlinkat:
		return m.Dirfid, true
	}
	return 0, false
}

func (c *Connection) finish(req *Request, body proto.Fcall, errno Errno) {
	if req.releaseFid != nil {
		req.releaseFid()
	}
	if req.cancel != nil {
		req.cancel()
	}

	var typ uint8
	var out proto.Fcall
	if errno == Success {
		typ = responseType(req.Type)
		out = body
	} else if req.Dialect == proto.L {
		typ = proto.TypeRlerror
		out = proto.Rlerror{Errno: uint32(errno)}
	} else {
		typ = proto.TypeRerror
		ename := errno.String()
		if er, ok := body.(proto.Rerror); ok && er.Ename != "" {
			ename = er.Ename
		}
		out = proto.Rerror{Ename: ename, Errno: uint32(errno)}
	}

	c.encodeAndSend(req.aux, typ, req.Tag, out, req.Dialect)

	c.reqMu.Lock()
	delete(c.liveReqs, req.Tag)
	c.reqMu.Unlock()
	c.reqs.Remove(req.Tag)

	c.flushMu.Lock()
	waiters := c.flushWaiters[req.Tag]
	delete(c.flushWaiters, req.Tag)
	c.flushMu.Unlock()
	for _, fr := range waiters {
		c.encodeAndSend(fr.aux, proto.TypeRflush, fr.Tag, proto.Rflush{}, fr.Dialect)
	}
}

func (c *Connection) sendError(tag uint16, dialect proto.Dialect, aux interface{}, errno Errno, err error) error {
	if dialect == proto.L {
		return c.encodeAndSend(aux, proto.TypeRlerror, tag, proto.Rlerror{Errno: uint32(errno)}, dialect)
	}
	return c.encodeAndSend(aux, proto.TypeRerror, tag, proto.Rerror{Ename: err.Error(), Errno: uint32(errno)}, dialect)
}

// encodeAndSend packs typ/tag/body into a buffer obtained from the
// Transport and hands it back for sending. Since the wire size prefix
// must be known before the buffer is requested, the body is encoded
// once into a scratch buffer to learn its length.
func (c *Connection) encodeAndSend(aux interface{}, typ uint8, tag uint16, body proto.Fcall, dialect proto.Dialect) error {
	_, msize, _ := c.snapshot()
	if msize == 0 {
		msize = proto.DefaultMsize
	}
	scratch := make([]byte, msize)
	sb, err := proto.NewBuffer(proto.Encoding, [][]byte{scratch}, len(scratch))
	if err != nil {
		return err
	}
	if err := proto.Encode(sb, typ, tag, body, dialect); err != nil {
		return err
	}
	bodyLen := len(scratch) - sb.Remaining()
	total := 4 + bodyLen

	segs, err := c.transport.GetResponseBuffer(aux, total)
	if err != nil {
		return err
	}
	fb, err := proto.NewBuffer(proto.Encoding, segs, total)
	if err != nil {
		return err
	}
	if err := fb.WriteUint32(uint32(total)); err != nil {
		return err
	}
	if err := fb.WriteBytes(scratch[:bodyLen]); err != nil {
		return err
	}
	written := total - fb.Remaining()
	if err := c.transport.SendResponse(aux, proto.Truncate(segs, written)); err != nil {
		// A failed send is fatal to the connection: the transport is
		// presumed wedged or gone, so there is no point accepting further
		// requests. This does not itself drain the worker pool or clunk
		// fids; the embedder is expected to call Close once its transport
		// loop observes the same failure.
		c.mu.Lock()
		c.state = stateClosing
		c.mu.Unlock()
		c.log.Printf("9p: send failed on tag %d, type %d: %v; connection closing", tag, typ, err)
		return err
	}
	return nil
}

// Close tears the connection down: no more requests are accepted, the
// worker pool is drained, and every remaining fid is finalized through
// the backend.
func (c *Connection) Close() error {
	c.mu.Lock()
	c.state = stateClosing
	c.mu.Unlock()
	c.pool.Close()
	c.fids.Reset(c.finalizeFid)
	return nil
}
