package proto

import "fmt"

// A Qid is the server's unique identification for the file being
// accessed. Two files on the same server hierarchy are the same file if
// and only if their Qids are equal.
type Qid struct {
	Type    QidType
	Version uint32
	Path    uint64
}

func (q Qid) String() string {
	return fmt.Sprintf("(%05x %d %s)", q.Path, q.Version, q.Type)
}

// QidType is the type of a file (directory, append-only, etc), stored as
// a bit vector corresponding to the high 8 bits of the file's mode word.
type QidType uint8

const (
	QTDIR     QidType = 0x80 // directories
	QTAPPEND  QidType = 0x40 // append only files
	QTEXCL    QidType = 0x20 // exclusive use files
	QTMOUNT   QidType = 0x10 // mounted channel
	QTAUTH    QidType = 0x08 // authentication file (afid)
	QTTMP     QidType = 0x04 // non-backed-up file
	QTSYMLINK QidType = 0x02 // 9P2000.L symlink
	QTFILE    QidType = 0x00
)

func (t QidType) String() string {
	var s string
	add := func(bit QidType, c byte) {
		if t&bit != 0 {
			s += string(c)
		}
	}
	add(QTDIR, 'd')
	add(QTAPPEND, 'a')
	add(QTEXCL, 'l')
	add(QTMOUNT, 'm')
	add(QTAUTH, 'A')
	add(QTTMP, 't')
	add(QTSYMLINK, 'L')
	if s == "" {
		return "-"
	}
	return s
}
