package proto

// Dialect identifies one of the three 9P wire dialects this package
// understands. Dialects are ordered: a server negotiates the lowest of
// what the client asked for and what it is willing to speak.
type Dialect int

const (
	// Unknown is returned by ParseDialect for a version string the
	// package does not recognize. A connection given such a version
	// replies with the literal string "unknown" and leaves its state
	// unchanged: one that had not negotiated yet keeps refusing other
	// requests until another Tversion arrives.
	Unknown Dialect = iota

	// Original is the 9P2000 dialect: no .u extension fields, no .L
	// messages.
	Original

	// U is 9P2000.u: adds an extension string and numeric uid/gid/muid
	// to Stat, and a numeric errno alongside Rerror's string.
	U

	// L is 9P2000.L: legacy stat/wstat and Rerror are supplanted by
	// getattr/setattr and Rlerror for most traffic, and a family of
	// Linux-flavored operations becomes available.
	L
)

func (d Dialect) String() string {
	switch d {
	case Original:
		return "9P2000"
	case U:
		return "9P2000.u"
	case L:
		return "9P2000.L"
	default:
		return "unknown"
	}
}

// ParseDialect parses the version string carried in a Tversion/Rversion
// message. ok is false if the string does not exactly match one of the
// three dialects this package speaks; callers must treat that as "unknown",
// not silently fall back to Original.
func ParseDialect(s string) (d Dialect, ok bool) {
	switch s {
	case "9P2000":
		return Original, true
	case "9P2000.u":
		return U, true
	case "9P2000.L":
		return L, true
	default:
		return Unknown, false
	}
}

// Min returns the lower of two dialects, comparing the order in which
// they were declared above (Original < U < L).
func Min(a, b Dialect) Dialect {
	if a < b {
		return a
	}
	return b
}

// DefaultMaxVersion is the highest dialect a Connection negotiates when
// no max-version policy is configured.
const DefaultMaxVersion = L
