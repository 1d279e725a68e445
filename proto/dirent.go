package proto

// A Dirent is one entry of a 9P2000.L Treaddir response: a sequence of
// these, back to back, makes up the Rreaddir payload. On the wire the
// field order is qid, offset, type, name.
type Dirent struct {
	Qid    Qid
	Offset uint64
	Type   uint8
	Name   string
}

// SizeofDirent returns the on-wire length of d.
func SizeofDirent(d Dirent) int {
	return 13 + 8 + 1 + sizeofString(d.Name)
}

// PackDirent encodes d into b.
func PackDirent(b *Buffer, d Dirent) error {
	if err := b.WriteQid(d.Qid); err != nil {
		return err
	}
	if err := b.WriteUint64(d.Offset); err != nil {
		return err
	}
	if err := b.WriteUint8(d.Type); err != nil {
		return err
	}
	return b.WriteString(d.Name)
}

// UnpackDirent decodes a single Dirent from b.
func UnpackDirent(b *Buffer) (Dirent, error) {
	var d Dirent
	var err error
	if d.Qid, err = b.ReadQid(); err != nil {
		return d, err
	}
	if d.Offset, err = b.ReadUint64(); err != nil {
		return d, err
	}
	if d.Type, err = b.ReadUint8(); err != nil {
		return d, err
	}
	if d.Name, err = readLimitedString(b, MaxFilenameLen); err != nil {
		return d, err
	}
	return d, nil
}

// PackDirents encodes a sequence of Dirents back to back, stopping (and
// returning the count actually written) if one would not fit in the
// remaining capacity of b. This is how a Treaddir handler fills an
// Rreaddir payload up to the requested count.
func PackDirents(b *Buffer, ents []Dirent) (n int, err error) {
	for _, d := range ents {
		if SizeofDirent(d) > b.Remaining() {
			return n, nil
		}
		if err := PackDirent(b, d); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// UnpackDirents decodes every Dirent in b until it is exhausted.
func UnpackDirents(b *Buffer) ([]Dirent, error) {
	var out []Dirent
	for b.Remaining() > 0 {
		d, err := UnpackDirent(b)
		if err != nil {
			return out, err
		}
		out = append(out, d)
	}
	return out, nil
}
