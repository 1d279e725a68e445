package lib9p

import "github.com/kozmagabor/lib9p/proto"

// A Fid is a connection's view of one client-assigned fid: the client's
// handle on some file in the backend's hierarchy. Fid is never
// constructed directly by backend code; it comes from AllocFid, from a
// Request's Fid field, or from Request.LookupFid.
type Fid struct {
	Num      uint32
	Qid      proto.Qid
	OpenMode uint8 // set once Open/Lopen has succeeded; 0 until then
	Opened   bool
	State    interface{} // backend-owned; never touched by core code
}
