package lib9p

import (
	"context"
	"sync/atomic"

	"github.com/kozmagabor/lib9p/proto"
)

// A Request represents one decoded client message, from the moment its
// fid arguments have been resolved until its response has been sent.
// Request is never constructed directly by backend code.
type Request struct {
	Tag     uint16
	Type    uint8
	Dialect proto.Dialect
	Body    proto.Fcall

	// Fid is the primary fid the request operates on: already looked up
	// and pinned by the core before the backend ever sees the request.
	// It is nil if the message type carries no fid.
	Fid *Fid

	conn       *Connection
	aux        interface{}
	ctx        context.Context
	cancel     context.CancelFunc
	responded  int32
	releaseFid func()
}

// Context is cancelled when the request is flushed (a Tflush names its
// tag) and once the request has been answered. Closing the Connection
// does not cancel it. Long-running backend handlers should select on it
// to abandon flushed work promptly.
func (r *Request) Context() context.Context { return r.ctx }

// Respond completes the request with either a successful response body
// (errno == Success) or an error (errno != Success, in which case body
// is ignored, except that under 9P2000 and 9P2000.u a proto.Rerror body
// with a non-empty Ename supplies the error string). It is the backend's job to call Respond exactly once:
// either it is called implicitly by the core right after a handler
// returns something other than EJUSTRETURN, or the handler returns
// EJUSTRETURN and the backend calls Respond itself later, from any
// goroutine. Calling Respond more than once is a no-op after the
// first; this is safe to race, since an async handler may call Respond
// from a goroutine other than the one that decided to give up on it.
func (r *Request) Respond(body proto.Fcall, errno Errno) {
	if !atomic.CompareAndSwapInt32(&r.responded, 0, 1) {
		return
	}
	r.conn.finish(r, body, errno)
}

// LookupFid resolves and pins a fid other than Request.Fid, for
// instance the second fid named by Tlink or Trename. The caller must
// call the returned release func once it is done with the Fid.
func (r *Request) LookupFid(num uint32) (fid *Fid, release func(), ok bool) {
	return r.conn.lookupFid(num)
}
