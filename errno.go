package lib9p

// Errno is the result of a backend operation: 0 means success, any
// other positive value is an error code meaningful to the backend and
// carried back to the client as Rerror's numeric field (9P2000.u) or
// Rlerror (9P2000.L). Under plain 9P2000, a non-zero Errno is reported
// with a generic string and no number, since 9P2000 has no errno wire
// field.
type Errno int32

// Success is the zero Errno: the operation completed and the response
// value returned alongside it is valid.
const Success Errno = 0

// EJUSTRETURN is a distinguished Errno a backend handler may return in
// place of a real error code to mean "I'm not done yet; I'll call
// Request.Respond myself, from any goroutine, once the real result is
// ready." No request is considered complete until either its handler
// returns something other than EJUSTRETURN, or Respond is called
// explicitly.
const EJUSTRETURN Errno = -1

// A handful of errno values commonly needed by backends, with the usual
// POSIX meanings. Backends are free to return any other positive value;
// these are not an exhaustive enum.
const (
	EPERM     Errno = 1
	ENOENT    Errno = 2
	EIO       Errno = 5
	EBADF     Errno = 9
	EACCES    Errno = 13
	EEXIST    Errno = 17
	ENOTDIR   Errno = 20
	EISDIR    Errno = 21
	EINVAL    Errno = 22
	ENOSPC    Errno = 28
	ENOTEMPTY Errno = 39
)

func (e Errno) String() string {
	switch e {
	case Success:
		return "success"
	case EJUSTRETURN:
		return "just return"
	case EPERM:
		return "operation not permitted"
	case ENOENT:
		return "no such file or directory"
	case EIO:
		return "input/output error"
	case EBADF:
		return "bad file descriptor"
	case EACCES:
		return "permission denied"
	case EEXIST:
		return "file exists"
	case ENOTDIR:
		return "not a directory"
	case EISDIR:
		return "is a directory"
	case EINVAL:
		return "invalid argument"
	case ENOSPC:
		return "no space left on device"
	case ENOTEMPTY:
		return "directory not empty"
	default:
		return "unknown error"
	}
}
