package lib9p

import "github.com/kozmagabor/lib9p/proto"

// responseType returns the wire type byte of the successful response to
// a request of the given type. Tversion and Tflush are handled directly
// by the connection and never reach here.
func responseType(reqType uint8) uint8 {
	switch reqType {
	case proto.TypeTauth:
		return proto.TypeRauth
	case proto.TypeTattach:
		return proto.TypeRattach
	case proto.TypeTwalk:
		return proto.TypeRwalk
	case proto.TypeTopen:
		return proto.TypeRopen
	case proto.TypeTcreate:
		return proto.TypeRcreate
	case proto.TypeTread:
		return proto.TypeRread
	case proto.TypeTwrite:
		return proto.TypeRwrite
	case proto.TypeTclunk:
		return proto.TypeRclunk
	case proto.TypeTremove:
		return proto.TypeRremove
	case proto.TypeTstat:
		return proto.TypeRstat
	case proto.TypeTwstat:
		return proto.TypeRwstat
	case proto.TypeTgetattr:
		return proto.TypeRgetattr
	case proto.TypeTsetattr:
		return proto.TypeRsetattr
	case proto.TypeTxattrwalk:
		return proto.TypeRxattrwalk
	case proto.TypeTreaddir:
		return proto.TypeRreaddir
	case proto.TypeTfsync:
		return proto.TypeRfsync
	case proto.TypeTlock:
		return proto.TypeRlock
	case proto.TypeTgetlock:
		return proto.TypeRgetlock
	case proto.TypeTlink:
		return proto.TypeRlink
	case proto.TypeTmkdir:
		return proto.TypeRmkdir
	case proto.TypeTrename:
		return proto.TypeRrename
	case proto.TypeTreadlink:
		return proto.TypeRreadlink
	case proto.TypeTstatfs:
		return proto.TypeRstatfs
	case proto.TypeTmknod:
		return proto.TypeRmknod
	case proto.TypeTrenameat:
		return proto.TypeRrenameat
	case proto.TypeTunlinkat:
		return proto.TypeRunlinkat
	}
	return proto.TypeRerror
}

// callBackend invokes the Backend method matching req.Body, and, unless
// the handler returned EJUSTRETURN, completes the request with whatever
// it returned.
func (c *Connection) callBackend(req *Request) {
	switch m := req.Body.(type) {
	case proto.Tauth:
		resp, errno := c.backend.Auth(req, m)
		if errno != EJUSTRETURN {
			req.Respond(resp, errno)
		}
	case proto.Tattach:
		resp, errno := c.backend.Attach(req, m)
		if errno != EJUSTRETURN {
			req.Respond(resp, errno)
		}
	case proto.Twalk:
		resp, errno := c.backend.Walk(req, m)
		if errno != EJUSTRETURN {
			req.Respond(resp, errno)
		}
	case proto.Topen:
		resp, errno := c.backend.Open(req, m)
		if errno != EJUSTRETURN {
			req.Respond(resp, errno)
		}
	case proto.Tcreate:
		resp, errno := c.backend.Create(req, m)
		if errno != EJUSTRETURN {
			req.Respond(resp, errno)
		}
	case proto.Tread:
		resp, errno := c.backend.Read(req, m)
		if errno != EJUSTRETURN {
			req.Respond(resp, errno)
		}
	case proto.Twrite:
		resp, errno := c.backend.Write(req, m)
		if errno != EJUSTRETURN {
			req.Respond(resp, errno)
		}
	case proto.Tclunk:
		errno := Success
		if ok := c.RemoveFid(m.Fid); !ok {
			errno = EBADF
		}
		req.Respond(proto.Rclunk{}, errno)
	case proto.Tremove:
		resp, errno := c.backend.Remove(req, m)
		if errno != EJUSTRETURN {
			c.RemoveFid(m.Fid)
			req.Respond(resp, errno)
		}
	case proto.Tstat:
		resp, errno := c.backend.Stat(req, m)
		if errno != EJUSTRETURN {
			req.Respond(resp, errno)
		}
	case proto.Twstat:
		resp, errno := c.backend.Wstat(req, m)
		if errno != EJUSTRETURN {
			req.Respond(resp, errno)
		}
	case proto.Tgetattr:
		resp, errno := c.backend.Getattr(req, m)
		if errno != EJUSTRETURN {
			req.Respond(resp, errno)
		}
	case proto.Tsetattr:
		resp, errno := c.backend.Setattr(req, m)
		if errno != EJUSTRETURN {
			req.Respond(resp, errno)
		}
	case proto.Txattrwalk:
		resp, errno := c.backend.Xattrwalk(req, m)
		if errno != EJUSTRETURN {
			req.Respond(resp, errno)
		}
	case proto.Treaddir:
		resp, errno := c.backend.Readdir(req, m)
		if errno != EJUSTRETURN {
			req.Respond(resp, errno)
		}
	case proto.Tfsync:
		resp, errno := c.backend.Fsync(req, m)
		if errno != EJUSTRETURN {
			req.Respond(resp, errno)
		}
	case proto.Tlock:
		resp, errno := c.backend.Lock(req, m)
		if errno != EJUSTRETURN {
			req.Respond(resp, errno)
		}
	case proto.Tgetlock:
		resp, errno := c.backend.Getlock(req, m)
		if errno != EJUSTRETURN {
			req.Respond(resp, errno)
		}
	case proto.Tlink:
		resp, errno := c.backend.Link(req, m)
		if errno != EJUSTRETURN {
			req.Respond(resp, errno)
		}
	case proto.Tmkdir:
		resp, errno := c.backend.Mkdir(req, m)
		if errno != EJUSTRETURN {
			req.Respond(resp, errno)
		}
	case proto.Trename:
		resp, errno := c.backend.Rename(req, m)
		if errno != EJUSTRETURN {
			req.Respond(resp, errno)
		}
	case proto.Treadlink:
		resp, errno := c.backend.Readlink(req, m)
		if errno != EJUSTRETURN {
			req.Respond(resp, errno)
		}
	case proto.Tstatfs:
		resp, errno := c.backend.Statfs(req, m)
		if errno != EJUSTRETURN {
			req.Respond(resp, errno)
		}
	case proto.Tmknod:
		resp, errno := c.backend.Mknod(req, m)
		if errno != EJUSTRETURN {
			req.Respond(resp, errno)
		}
	case proto.Trenameat:
		resp, errno := c.backend.Renameat(req, m)
		if errno != EJUSTRETURN {
			req.Respond(resp, errno)
		}
	case proto.Tunlinkat:
		resp, errno := c.backend.Unlinkat(req, m)
		if errno != EJUSTRETURN {
			req.Respond(resp, errno)
		}
	default:
		req.Respond(nil, EINVAL)
	}
}
