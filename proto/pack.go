package proto

import (
	"encoding/binary"
	"math"
)

// Integer and string primitives built on top of Buffer's byte-level
// cursor. Integers are little-endian; strings are length-prefixed
// uint16, no terminator.

func (b *Buffer) ReadUint8() (uint8, error) {
	p, err := b.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

func (b *Buffer) ReadUint16() (uint16, error) {
	p, err := b.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(p), nil
}

func (b *Buffer) ReadUint32() (uint32, error) {
	p, err := b.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(p), nil
}

func (b *Buffer) ReadUint64() (uint64, error) {
	p, err := b.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(p), nil
}

// ReadString reads a 2-byte length followed by that many bytes. A zero
// length is a valid empty string.
func (b *Buffer) ReadString() (string, error) {
	n, err := b.ReadUint16()
	if err != nil {
		return "", err
	}
	p, err := b.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	return string(p), nil
}

// ReadQid reads a 13-byte Qid.
func (b *Buffer) ReadQid() (Qid, error) {
	p, err := b.ReadBytes(13)
	if err != nil {
		return Qid{}, err
	}
	return Qid{
		Type:    QidType(p[0]),
		Version: binary.LittleEndian.Uint32(p[1:5]),
		Path:    binary.LittleEndian.Uint64(p[5:13]),
	}, nil
}

func (b *Buffer) WriteUint8(v uint8) error {
	return b.WriteBytes([]byte{v})
}

func (b *Buffer) WriteUint16(v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return b.WriteBytes(buf[:])
}

func (b *Buffer) WriteUint32(v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return b.WriteBytes(buf[:])
}

func (b *Buffer) WriteUint64(v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return b.WriteBytes(buf[:])
}

// WriteString writes a 2-byte length followed by s.
func (b *Buffer) WriteString(s string) error {
	if len(s) > math.MaxUint16 {
		return errLongString
	}
	if err := b.WriteUint16(uint16(len(s))); err != nil {
		return err
	}
	return b.WriteBytes([]byte(s))
}

// WriteQid writes a 13-byte Qid.
func (b *Buffer) WriteQid(q Qid) error {
	var buf [13]byte
	buf[0] = byte(q.Type)
	binary.LittleEndian.PutUint32(buf[1:5], q.Version)
	binary.LittleEndian.PutUint64(buf[5:13], q.Path)
	return b.WriteBytes(buf[:])
}

// sizeofString returns the on-wire length of a length-prefixed string.
func sizeofString(s string) int { return 2 + len(s) }
