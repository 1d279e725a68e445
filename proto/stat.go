package proto

import "fmt"

// A Stat describes a file's metadata. Under 9P2000 it carries only the
// legacy fields; under 9P2000.u it additionally carries Extension and
// the three numeric ids. Under 9P2000.L, Stat is still what Rstat and
// Twstat carry (with the legacy fields only), but most metadata traffic
// uses Tgetattr/Tsetattr instead.
type Stat struct {
	Type   uint16
	Dev    uint32
	Qid    Qid
	Mode   uint32
	Atime  uint32
	Mtime  uint32
	Length uint64
	Name   string
	Uid    string
	Gid    string
	Muid   string

	// 9P2000.u-only fields. Zero/empty under 9P2000 and 9P2000.L.
	Extension string
	NUid      uint32
	NGid      uint32
	NMuid     uint32
}

func (s Stat) String() string {
	return fmt.Sprintf("qid=%s mode=%o name=%q uid=%q gid=%q muid=%q length=%d",
		s.Qid, s.Mode, s.Name, s.Uid, s.Gid, s.Muid, s.Length)
}

// SizeofStat computes the exact on-wire byte length of s under dialect d,
// not counting the leading 2-byte size prefix, without serializing
// anything. PackStat always writes exactly this many bytes after the
// prefix.
func SizeofStat(s Stat, d Dialect) uint16 {
	n := 2 + 4 + 13 + 4 + 4 + 4 + 8
	n += sizeofString(s.Name) + sizeofString(s.Uid) + sizeofString(s.Gid) + sizeofString(s.Muid)
	if d == U {
		n += sizeofString(s.Extension) + 4 + 4 + 4
	}
	return uint16(n)
}

// PackStat encodes s into b as a dialect-appropriate Stat structure,
// prefixed with its own 2-byte size.
func PackStat(b *Buffer, s Stat, d Dialect) error {
	size := SizeofStat(s, d)
	if int(size) > MaxStatLen {
		return errLongStat
	}
	if err := b.WriteUint16(size); err != nil {
		return err
	}
	if err := b.WriteUint16(s.Type); err != nil {
		return err
	}
	if err := b.WriteUint32(s.Dev); err != nil {
		return err
	}
	if err := b.WriteQid(s.Qid); err != nil {
		return err
	}
	if err := b.WriteUint32(s.Mode); err != nil {
		return err
	}
	if err := b.WriteUint32(s.Atime); err != nil {
		return err
	}
	if err := b.WriteUint32(s.Mtime); err != nil {
		return err
	}
	if err := b.WriteUint64(s.Length); err != nil {
		return err
	}
	for _, str := range []string{s.Name, s.Uid, s.Gid, s.Muid} {
		if err := b.WriteString(str); err != nil {
			return err
		}
	}
	if d == U {
		if err := b.WriteString(s.Extension); err != nil {
			return err
		}
		if err := b.WriteUint32(s.NUid); err != nil {
			return err
		}
		if err := b.WriteUint32(s.NGid); err != nil {
			return err
		}
		if err := b.WriteUint32(s.NMuid); err != nil {
			return err
		}
	}
	return nil
}

// UnpackStat decodes a dialect-appropriate Stat structure from b,
// including its leading 2-byte size prefix. Decoding fails with a
// malformed-message error if the declared size doesn't leave enough room
// for the fixed fields, or if any name/uid/gid/muid string exceeds the
// package's length limits.
func UnpackStat(b *Buffer, d Dialect) (Stat, error) {
	var s Stat

	size, err := b.ReadUint16()
	if err != nil {
		return s, err
	}
	minLen := minStatLen
	if d == U {
		minLen = minStatLenU
	}
	if int(size) < minLen-2 {
		return s, errShortStat
	}
	if int(size) > MaxStatLen {
		return s, errLongStat
	}

	raw, err := b.ReadBytes(int(size))
	if err != nil {
		return s, err
	}
	sub, err := NewBuffer(Decoding, [][]byte{raw}, len(raw))
	if err != nil {
		return s, err
	}

	if s.Type, err = sub.ReadUint16(); err != nil {
		return s, err
	}
	if s.Dev, err = sub.ReadUint32(); err != nil {
		return s, err
	}
	if s.Qid, err = sub.ReadQid(); err != nil {
		return s, err
	}
	if s.Mode, err = sub.ReadUint32(); err != nil {
		return s, err
	}
	if s.Atime, err = sub.ReadUint32(); err != nil {
		return s, err
	}
	if s.Mtime, err = sub.ReadUint32(); err != nil {
		return s, err
	}
	if s.Length, err = sub.ReadUint64(); err != nil {
		return s, err
	}
	if s.Name, err = readLimitedString(sub, MaxFilenameLen); err != nil {
		return s, err
	}
	if s.Uid, err = readLimitedString(sub, MaxUidLen); err != nil {
		return s, err
	}
	if s.Gid, err = readLimitedString(sub, MaxUidLen); err != nil {
		return s, err
	}
	if s.Muid, err = readLimitedString(sub, MaxUidLen); err != nil {
		return s, err
	}
	if d == U {
		if s.Extension, err = readLimitedString(sub, MaxFilenameLen); err != nil {
			return s, err
		}
		if s.NUid, err = sub.ReadUint32(); err != nil {
			return s, err
		}
		if s.NGid, err = sub.ReadUint32(); err != nil {
			return s, err
		}
		if s.NMuid, err = sub.ReadUint32(); err != nil {
			return s, err
		}
	}
	return s, nil
}

func readLimitedString(b *Buffer, limit int) (string, error) {
	s, err := b.ReadString()
	if err != nil {
		return "", err
	}
	if len(s) > limit {
		return "", errMalformed
	}
	return s, nil
}
