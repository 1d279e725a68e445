/*
Package lib9p implements the server-side core of the 9P file protocol:
wire encoding for the 9P2000, 9P2000.u and 9P2000.L dialects (package
proto), connection and fid lifecycle management, and flush-aware
request dispatch onto a worker pool.

lib9p does not implement a filesystem, a network transport, 9P's
client role, or authentication beyond passing an afid through to a
Backend. Those are the responsibility of whoever plugs a Backend and a
Transport into a Connection.
*/
package lib9p
