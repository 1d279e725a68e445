package lib9p

import (
	"sync"

	"github.com/kozmagabor/lib9p/proto"
)

// A Server holds the configuration shared by every Connection it
// creates: the Backend they all dispatch to, and policy like the
// largest msize to negotiate and how many workers each connection gets.
// A Server must be created with NewServer.
type Server struct {
	backend Backend
	opts    []ConnOption

	mu    sync.Mutex
	conns map[*Connection]struct{}
}

// A ServerOption customizes a Server constructed by NewServer.
type ServerOption func(*Server)

// WithServerWorkers sets the worker count every Connection the Server
// creates will use, unless overridden per-connection.
func WithServerWorkers(n int) ServerOption {
	return func(s *Server) { s.opts = append(s.opts, WithWorkers(n)) }
}

// WithServerMaxMsize sets the largest msize every Connection the Server
// creates will negotiate, unless overridden per-connection.
func WithServerMaxMsize(n uint32) ServerOption {
	return func(s *Server) { s.opts = append(s.opts, WithMaxMsize(n)) }
}

// WithServerMaxVersion sets the highest dialect every Connection the
// Server creates will negotiate, unless overridden per-connection. The
// default is proto.DefaultMaxVersion (9P2000.L).
func WithServerMaxVersion(d proto.Dialect) ServerOption {
	return func(s *Server) { s.opts = append(s.opts, WithMaxVersion(d)) }
}

// WithServerLogger attaches a Logger to every Connection the Server
// creates.
func WithServerLogger(l Logger) ServerOption {
	return func(s *Server) { s.opts = append(s.opts, WithLogger(l)) }
}

// NewServer creates a Server backed by backend.
func NewServer(backend Backend, opts ...ServerOption) *Server {
	s := &Server{backend: backend, conns: make(map[*Connection]struct{})}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewConnection creates and registers a Connection for transport. The
// Server keeps track of every Connection it has created until Forget is
// called for it or the Server itself is closed; closing the Connection
// alone does not remove it. This lets backends needing to invalidate state
// across sessions (for instance, after a file is renamed out from under
// another client's fid) have a way to enumerate them.
func (s *Server) NewConnection(transport Transport, opts ...ConnOption) *Connection {
	c := NewConnection(s.backend, transport, append(append([]ConnOption{}, s.opts...), opts...)...)
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
	return c
}

// Forget removes a Connection from the Server's registry once it has
// been closed. Callers that close a Connection obtained from
// NewConnection should call Forget afterward.
func (s *Server) Forget(c *Connection) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
}

// Connections returns a snapshot of every Connection currently
// registered with the Server.
func (s *Server) Connections() []*Connection {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Connection, 0, len(s.conns))
	for c := range s.conns {
		out = append(out, c)
	}
	return out
}

// Close closes every Connection the Server has created.
func (s *Server) Close() error {
	s.mu.Lock()
	conns := make([]*Connection, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.conns = make(map[*Connection]struct{})
	s.mu.Unlock()

	var firstErr error
	for _, c := range conns {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
