package proto

// Protocol-wide limits and defaults.

// DefaultMsize is the msize assumed for a connection before Tversion
// negotiation completes.
const DefaultMsize = 8192

// MaxIOV is the maximum number of scatter-gather segments a Buffer may
// span.
const MaxIOV = 8

// DefaultWorkers is the default size of a connection's worker pool.
const DefaultWorkers = 8

// MaxWElem is the maximum number of path elements in a single Twalk.
const MaxWElem = 16

// MaxFilenameLen is the maximum length, in bytes, of a single path
// element or stat name.
const MaxFilenameLen = 512

// MaxUidLen is the maximum length, in bytes, of a uid/gid/muid string in
// a legacy or .u stat structure.
const MaxUidLen = 45

// MaxVersionLen is the maximum length of the negotiated version string.
const MaxVersionLen = 32

// NoTag is the distinguished tag used on a Tversion request, the only
// message allowed before a connection has negotiated a version.
const NoTag uint16 = 0xFFFF

// NoFid is the distinguished fid value meaning "no fid", used as afid in
// Tauth/Tattach when a client does not wish to authenticate.
const NoFid uint32 = 0xFFFFFFFF

// minimum on-wire size of a stat structure, not counting name/uid/gid/muid
const minStatLen = 2 + 2 + 4 + 13 + 4 + 4 + 4 + 8
const minStatLenU = minStatLen + 4 + 4 + 4

// MaxStatLen bounds the on-wire size of a single Stat, including the
// longest permissible name/uid/gid/muid/extension strings.
const MaxStatLen = minStatLenU + (MaxFilenameLen+2)*5 + (MaxUidLen+2)*3
