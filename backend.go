package lib9p

import "github.com/kozmagabor/lib9p/proto"

// Backend implements the filesystem semantics behind a Connection. Core
// code never interprets a request's meaning; it decodes the message,
// resolves any fid arguments to Fids, and calls the matching Backend
// method. A method may answer synchronously by returning something
// other than EJUSTRETURN, or it may return EJUSTRETURN and answer later,
// from any goroutine, by calling Request.Respond.
//
// Implementing the actual filesystem is outside this package's scope;
// Backend exists so that one can be plugged in.
type Backend interface {
	Auth(r *Request, t proto.Tauth) (proto.Rauth, Errno)
	Attach(r *Request, t proto.Tattach) (proto.Rattach, Errno)
	Walk(r *Request, t proto.Twalk) (proto.Rwalk, Errno)
	Open(r *Request, t proto.Topen) (proto.Ropen, Errno)
	Create(r *Request, t proto.Tcreate) (proto.Rcreate, Errno)
	Read(r *Request, t proto.Tread) (proto.Rread, Errno)
	Write(r *Request, t proto.Twrite) (proto.Rwrite, Errno)
	Remove(r *Request, t proto.Tremove) (proto.Rremove, Errno)
	Stat(r *Request, t proto.Tstat) (proto.Rstat, Errno)
	Wstat(r *Request, t proto.Twstat) (proto.Rwstat, Errno)

	Getattr(r *Request, t proto.Tgetattr) (proto.Rgetattr, Errno)
	Setattr(r *Request, t proto.Tsetattr) (proto.Rsetattr, Errno)
	Xattrwalk(r *Request, t proto.Txattrwalk) (proto.Rxattrwalk, Errno)
	Readdir(r *Request, t proto.Treaddir) (proto.Rreaddir, Errno)
	Fsync(r *Request, t proto.Tfsync) (proto.Rfsync, Errno)
	Lock(r *Request, t proto.Tlock) (proto.Rlock, Errno)
	Getlock(r *Request, t proto.Tgetlock) (proto.Rgetlock, Errno)
	Link(r *Request, t proto.Tlink) (proto.Rlink, Errno)
	Mkdir(r *Request, t proto.Tmkdir) (proto.Rmkdir, Errno)
	Rename(r *Request, t proto.Trename) (proto.Rrename, Errno)
	Readlink(r *Request, t proto.Treadlink) (proto.Rreadlink, Errno)
	Statfs(r *Request, t proto.Tstatfs) (proto.Rstatfs, Errno)
	Mknod(r *Request, t proto.Tmknod) (proto.Rmknod, Errno)
	Renameat(r *Request, t proto.Trenameat) (proto.Rrenameat, Errno)
	Unlinkat(r *Request, t proto.Tunlinkat) (proto.Runlinkat, Errno)

	// Freefid is called once a fid's refcount reaches zero: either
	// immediately inside Tclunk/Tremove's handling, or later, once every
	// in-flight request that had pinned the fid has completed. The
	// backend should release whatever it stored in Fid.State here.
	Freefid(fid *Fid)
}
