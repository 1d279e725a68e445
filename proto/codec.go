package proto

// Header is the fixed-size preamble common to every 9P message: a
// 4-byte size (the whole message, including these 7 bytes), a 1-byte
// type, and a 2-byte tag.
type Header struct {
	Size uint32
	Type uint8
	Tag  uint16
}

// DecodeHeader reads a Header off the front of b, without consuming the
// rest of the message body.
func DecodeHeader(b *Buffer) (Header, error) {
	var h Header
	var err error
	if h.Size, err = b.ReadUint32(); err != nil {
		return h, err
	}
	if h.Type, err = b.ReadUint8(); err != nil {
		return h, err
	}
	if h.Tag, err = b.ReadUint16(); err != nil {
		return h, err
	}
	return h, nil
}

// Decode reads a message body of the given wire type from b, under
// dialect d. b's cursor must already be positioned past the Header (see
// DecodeHeader). Decode returns errBadDialect for a message type that
// does not exist in d, and errUnsupportedOp for a type byte this
// package has never heard of.
func Decode(b *Buffer, typ uint8, d Dialect) (Fcall, error) {
	switch typ {
	case TypeTversion:
		return decodeTversion(b)
	case TypeRversion:
		return decodeRversion(b)
	case TypeTauth:
		return decodeTauth(b, d)
	case TypeRauth:
		return decodeRauth(b)
	case TypeTattach:
		return decodeTattach(b, d)
	case TypeRattach:
		return decodeRattach(b)
	case TypeRerror:
		return decodeRerror(b, d)
	case TypeRlerror:
		if d != L {
			return nil, errBadDialect
		}
		return decodeRlerror(b)
	case TypeTflush:
		return decodeTflush(b)
	case TypeRflush:
		return Rflush{}, nil
	case TypeTwalk:
		return decodeTwalk(b)
	case TypeRwalk:
		return decodeRwalk(b)
	case TypeTopen:
		return decodeTopen(b)
	case TypeRopen:
		return decodeRopen(b)
	case TypeTcreate:
		return decodeTcreate(b, d)
	case TypeRcreate:
		return decodeRcreate(b)
	case TypeTread:
		return decodeTread(b)
	case TypeRread:
		return decodeRread(b)
	case TypeTwrite:
		return decodeTwrite(b)
	case TypeRwrite:
		return decodeRwrite(b)
	case TypeTclunk:
		return decodeTclunk(b)
	case TypeRclunk:
		return Rclunk{}, nil
	case TypeTremove:
		return decodeTremove(b)
	case TypeRremove:
		return Rremove{}, nil
	case TypeTstat:
		return decodeTstat(b)
	case TypeRstat:
		return decodeRstat(b, d)
	case TypeTwstat:
		return decodeTwstat(b, d)
	case TypeRwstat:
		return Rwstat{}, nil

	case TypeTstatfs, TypeRstatfs, TypeTmknod, TypeRmknod, TypeTrename, TypeRrename,
		TypeTreadlink, TypeRreadlink, TypeTgetattr, TypeRgetattr, TypeTsetattr, TypeRsetattr,
		TypeTxattrwalk, TypeRxattrwalk, TypeTreaddir, TypeRreaddir, TypeTfsync, TypeRfsync,
		TypeTlock, TypeRlock, TypeTgetlock, TypeRgetlock, TypeTlink, TypeRlink,
		TypeTmkdir, TypeRmkdir, TypeTrenameat, TypeRrenameat, TypeTunlinkat, TypeRunlinkat:
		if d != L {
			return nil, errBadDialect
		}
		return decodeDotL(b, typ)
	}
	return nil, errUnsupportedOp
}

func decodeDotL(b *Buffer, typ uint8) (Fcall, error) {
	switch typ {
	case TypeTstatfs:
		fid, err := b.ReadUint32()
		return Tstatfs{Fid: fid}, err
	case TypeRstatfs:
		return decodeRstatfs(b)
	case TypeTmknod:
		return decodeTmknod(b)
	case TypeRmknod:
		q, err := b.ReadQid()
		return Rmknod{Qid: q}, err
	case TypeTrename:
		return decodeTrename(b)
	case TypeRrename:
		return Rrename{}, nil
	case TypeTreadlink:
		fid, err := b.ReadUint32()
		return Treadlink{Fid: fid}, err
	case TypeRreadlink:
		s, err := readLimitedString(b, MaxFilenameLen)
		return Rreadlink{Target: s}, err
	case TypeTgetattr:
		return decodeTgetattr(b)
	case TypeRgetattr:
		return decodeRgetattr(b)
	case TypeTsetattr:
		return decodeTsetattr(b)
	case TypeRsetattr:
		return Rsetattr{}, nil
	case TypeTxattrwalk:
		return decodeTxattrwalk(b)
	case TypeRxattrwalk:
		n, err := b.ReadUint64()
		return Rxattrwalk{Size: n}, err
	case TypeTreaddir:
		return decodeTreaddir(b)
	case TypeRreaddir:
		return decodeRreaddir(b)
	case TypeTfsync:
		return decodeTfsync(b)
	case TypeRfsync:
		return Rfsync{}, nil
	case TypeTlock:
		return decodeTlock(b)
	case TypeRlock:
		st, err := b.ReadUint8()
		return Rlock{Status: st}, err
	case TypeTgetlock:
		return decodeTgetlock(b)
	case TypeRgetlock:
		return decodeRgetlock(b)
	case TypeTlink:
		return decodeTlink(b)
	case TypeRlink:
		return Rlink{}, nil
	case TypeTmkdir:
		return decodeTmkdir(b)
	case TypeRmkdir:
		q, err := b.ReadQid()
		return Rmkdir{Qid: q}, err
	case TypeTrenameat:
		return decodeTrenameat(b)
	case TypeRrenameat:
		return Rrenameat{}, nil
	case TypeTunlinkat:
		return decodeTunlinkat(b)
	case TypeRunlinkat:
		return Runlinkat{}, nil
	}
	return nil, errUnsupportedOp
}

func decodeTversion(b *Buffer) (Fcall, error) {
	msize, err := b.ReadUint32()
	if err != nil {
		return nil, err
	}
	v, err := readLimitedString(b, MaxVersionLen)
	if err != nil {
		return nil, err
	}
	return Tversion{Msize: msize, Version: v}, nil
}

func decodeRversion(b *Buffer) (Fcall, error) {
	msize, err := b.ReadUint32()
	if err != nil {
		return nil, err
	}
	v, err := readLimitedString(b, MaxVersionLen)
	if err != nil {
		return nil, err
	}
	return Rversion{Msize: msize, Version: v}, nil
}

func decodeTauth(b *Buffer, d Dialect) (Fcall, error) {
	var t Tauth
	var err error
	if t.Afid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if t.Uname, err = readLimitedString(b, MaxUidLen); err != nil {
		return nil, err
	}
	if t.Aname, err = readLimitedString(b, MaxFilenameLen); err != nil {
		return nil, err
	}
	if d == U {
		if t.NUname, err = b.ReadUint32(); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func decodeRauth(b *Buffer) (Fcall, error) {
	q, err := b.ReadQid()
	return Rauth{Aqid: q}, err
}

func decodeTattach(b *Buffer, d Dialect) (Fcall, error) {
	var t Tattach
	var err error
	if t.Fid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if t.Afid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if t.Uname, err = readLimitedString(b, MaxUidLen); err != nil {
		return nil, err
	}
	if t.Aname, err = readLimitedString(b, MaxFilenameLen); err != nil {
		return nil, err
	}
	if d == U {
		if t.NUname, err = b.ReadUint32(); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func decodeRattach(b *Buffer) (Fcall, error) {
	q, err := b.ReadQid()
	return Rattach{Qid: q}, err
}

func decodeRerror(b *Buffer, d Dialect) (Fcall, error) {
	ename, err := readLimitedString(b, MaxFilenameLen)
	if err != nil {
		return nil, err
	}
	r := Rerror{Ename: ename}
	if d == U {
		if r.Errno, err = b.ReadUint32(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func decodeRlerror(b *Buffer) (Fcall, error) {
	errno, err := b.ReadUint32()
	return Rlerror{Errno: errno}, err
}

func decodeTflush(b *Buffer) (Fcall, error) {
	old, err := b.ReadUint16()
	return Tflush{Oldtag: old}, err
}

func decodeTwalk(b *Buffer) (Fcall, error) {
	var t Twalk
	var err error
	if t.Fid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if t.Newfid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	n, err := b.ReadUint16()
	if err != nil {
		return nil, err
	}
	if int(n) > MaxWElem {
		return nil, errTooManyWname
	}
	t.Wname = make([]string, n)
	for i := range t.Wname {
		if t.Wname[i], err = readLimitedString(b, MaxFilenameLen); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func decodeRwalk(b *Buffer) (Fcall, error) {
	n, err := b.ReadUint16()
	if err != nil {
		return nil, err
	}
	if int(n) > MaxWElem {
		return nil, errTooManyWname
	}
	r := Rwalk{Wqid: make([]Qid, n)}
	for i := range r.Wqid {
		if r.Wqid[i], err = b.ReadQid(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func decodeTopen(b *Buffer) (Fcall, error) {
	var t Topen
	var err error
	if t.Fid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	t.Mode, err = b.ReadUint8()
	return t, err
}

func decodeRopen(b *Buffer) (Fcall, error) {
	var r Ropen
	var err error
	if r.Qid, err = b.ReadQid(); err != nil {
		return nil, err
	}
	r.IOUnit, err = b.ReadUint32()
	return r, err
}

func decodeTcreate(b *Buffer, d Dialect) (Fcall, error) {
	var t Tcreate
	var err error
	if t.Fid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if t.Name, err = readLimitedString(b, MaxFilenameLen); err != nil {
		return nil, err
	}
	if t.Perm, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if t.Mode, err = b.ReadUint8(); err != nil {
		return nil, err
	}
	if d == U {
		if t.Extension, err = readLimitedString(b, MaxFilenameLen); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func decodeRcreate(b *Buffer) (Fcall, error) {
	var r Rcreate
	var err error
	if r.Qid, err = b.ReadQid(); err != nil {
		return nil, err
	}
	r.IOUnit, err = b.ReadUint32()
	return r, err
}

func decodeTread(b *Buffer) (Fcall, error) {
	var t Tread
	var err error
	if t.Fid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if t.Offset, err = b.ReadUint64(); err != nil {
		return nil, err
	}
	t.Count, err = b.ReadUint32()
	return t, err
}

func decodeRread(b *Buffer) (Fcall, error) {
	n, err := b.ReadUint32()
	if err != nil {
		return nil, err
	}
	data, err := b.ReadBytes(int(n))
	return Rread{Data: data}, err
}

func decodeTwrite(b *Buffer) (Fcall, error) {
	var t Twrite
	var err error
	if t.Fid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if t.Offset, err = b.ReadUint64(); err != nil {
		return nil, err
	}
	n, err := b.ReadUint32()
	if err != nil {
		return nil, err
	}
	t.Data, err = b.ReadBytes(int(n))
	return t, err
}

func decodeRwrite(b *Buffer) (Fcall, error) {
	n, err := b.ReadUint32()
	return Rwrite{Count: n}, err
}

func decodeTclunk(b *Buffer) (Fcall, error) {
	fid, err := b.ReadUint32()
	return Tclunk{Fid: fid}, err
}

func decodeTremove(b *Buffer) (Fcall, error) {
	fid, err := b.ReadUint32()
	return Tremove{Fid: fid}, err
}

func decodeTstat(b *Buffer) (Fcall, error) {
	fid, err := b.ReadUint32()
	return Tstat{Fid: fid}, err
}

func decodeRstat(b *Buffer, d Dialect) (Fcall, error) {
	s, err := UnpackStat(b, d)
	return Rstat{Stat: s}, err
}

func decodeTwstat(b *Buffer, d Dialect) (Fcall, error) {
	var t Twstat
	var err error
	if t.Fid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	t.Stat, err = UnpackStat(b, d)
	return t, err
}

func decodeRstatfs(b *Buffer) (Fcall, error) {
	var r Rstatfs
	var err error
	for _, p := range []*uint32{&r.Type, &r.Bsize} {
		if *p, err = b.ReadUint32(); err != nil {
			return nil, err
		}
	}
	for _, p := range []*uint64{&r.Blocks, &r.Bfree, &r.Bavail, &r.Files, &r.Ffree, &r.Fsid} {
		if *p, err = b.ReadUint64(); err != nil {
			return nil, err
		}
	}
	r.Namelen, err = b.ReadUint32()
	return r, err
}

func decodeTmknod(b *Buffer) (Fcall, error) {
	var t Tmknod
	var err error
	if t.Dfid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if t.Name, err = readLimitedString(b, MaxFilenameLen); err != nil {
		return nil, err
	}
	if t.Mode, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if t.Major, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if t.Minor, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	t.Gid, err = b.ReadUint32()
	return t, err
}

func decodeTrename(b *Buffer) (Fcall, error) {
	var t Trename
	var err error
	if t.Fid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if t.Dfid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	t.Name, err = readLimitedString(b, MaxFilenameLen)
	return t, err
}

func readTime(b *Buffer) (Time, error) {
	var t Time
	var err error
	if t.Sec, err = b.ReadUint64(); err != nil {
		return t, err
	}
	t.Nsec, err = b.ReadUint64()
	return t, err
}

func writeTime(b *Buffer, t Time) error {
	if err := b.WriteUint64(t.Sec); err != nil {
		return err
	}
	return b.WriteUint64(t.Nsec)
}

func decodeTgetattr(b *Buffer) (Fcall, error) {
	var t Tgetattr
	var err error
	if t.Fid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	t.RequestMask, err = b.ReadUint64()
	return t, err
}

func decodeRgetattr(b *Buffer) (Fcall, error) {
	var r Rgetattr
	var err error
	if r.Valid, err = b.ReadUint64(); err != nil {
		return nil, err
	}
	if r.Qid, err = b.ReadQid(); err != nil {
		return nil, err
	}
	if r.Mode, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if r.Uid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if r.Gid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	for _, p := range []*uint64{&r.Nlink, &r.Rdev, &r.Size, &r.Blksize, &r.Blocks} {
		if *p, err = b.ReadUint64(); err != nil {
			return nil, err
		}
	}
	for _, p := range []*Time{&r.Atime, &r.Mtime, &r.Ctime, &r.Btime} {
		if *p, err = readTime(b); err != nil {
			return nil, err
		}
	}
	if r.Gen, err = b.ReadUint64(); err != nil {
		return nil, err
	}
	r.DataVersion, err = b.ReadUint64()
	return r, err
}

func decodeTsetattr(b *Buffer) (Fcall, error) {
	var t Tsetattr
	var err error
	if t.Fid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if t.Valid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if t.Mode, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if t.Uid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if t.Gid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if t.Size, err = b.ReadUint64(); err != nil {
		return nil, err
	}
	if t.Atime, err = readTime(b); err != nil {
		return nil, err
	}
	t.Mtime, err = readTime(b)
	return t, err
}

func decodeTxattrwalk(b *Buffer) (Fcall, error) {
	var t Txattrwalk
	var err error
	if t.Fid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if t.Newfid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	t.Name, err = readLimitedString(b, MaxFilenameLen)
	return t, err
}

func decodeTreaddir(b *Buffer) (Fcall, error) {
	var t Treaddir
	var err error
	if t.Fid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if t.Offset, err = b.ReadUint64(); err != nil {
		return nil, err
	}
	t.Count, err = b.ReadUint32()
	return t, err
}

func decodeRreaddir(b *Buffer) (Fcall, error) {
	n, err := b.ReadUint32()
	if err != nil {
		return nil, err
	}
	data, err := b.ReadBytes(int(n))
	return Rreaddir{Data: data}, err
}

func decodeTfsync(b *Buffer) (Fcall, error) {
	var t Tfsync
	var err error
	if t.Fid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	t.Datasync, err = b.ReadUint32()
	return t, err
}

func decodeTlock(b *Buffer) (Fcall, error) {
	var t Tlock
	var err error
	if t.Fid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if t.Type, err = b.ReadUint8(); err != nil {
		return nil, err
	}
	if t.Flags, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if t.Start, err = b.ReadUint64(); err != nil {
		return nil, err
	}
	if t.Length, err = b.ReadUint64(); err != nil {
		return nil, err
	}
	if t.ProcID, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	t.ClientID, err = readLimitedString(b, MaxUidLen)
	return t, err
}

func decodeTgetlock(b *Buffer) (Fcall, error) {
	var t Tgetlock
	var err error
	if t.Fid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if t.Type, err = b.ReadUint8(); err != nil {
		return nil, err
	}
	if t.Start, err = b.ReadUint64(); err != nil {
		return nil, err
	}
	if t.Length, err = b.ReadUint64(); err != nil {
		return nil, err
	}
	if t.ProcID, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	t.ClientID, err = readLimitedString(b, MaxUidLen)
	return t, err
}

func decodeRgetlock(b *Buffer) (Fcall, error) {
	var r Rgetlock
	var err error
	if r.Type, err = b.ReadUint8(); err != nil {
		return nil, err
	}
	if r.Start, err = b.ReadUint64(); err != nil {
		return nil, err
	}
	if r.Length, err = b.ReadUint64(); err != nil {
		return nil, err
	}
	if r.ProcID, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	r.ClientID, err = readLimitedString(b, MaxUidLen)
	return r, err
}

func decodeTlink(b *Buffer) (Fcall, error) {
	var t Tlink
	var err error
	if t.Dfid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if t.Fid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	t.Name, err = readLimitedString(b, MaxFilenameLen)
	return t, err
}

func decodeTmkdir(b *Buffer) (Fcall, error) {
	var t Tmkdir
	var err error
	if t.Dfid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if t.Name, err = readLimitedString(b, MaxFilenameLen); err != nil {
		return nil, err
	}
	if t.Mode, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	t.Gid, err = b.ReadUint32()
	return t, err
}

func decodeTrenameat(b *Buffer) (Fcall, error) {
	var t Trenameat
	var err error
	if t.Olddirfid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if t.Oldname, err = readLimitedString(b, MaxFilenameLen); err != nil {
		return nil, err
	}
	if t.Newdirfid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	t.Newname, err = readLimitedString(b, MaxFilenameLen)
	return t, err
}

func decodeTunlinkat(b *Buffer) (Fcall, error) {
	var t Tunlinkat
	var err error
	if t.Dirfid, err = b.ReadUint32(); err != nil {
		return nil, err
	}
	if t.Name, err = readLimitedString(b, MaxFilenameLen); err != nil {
		return nil, err
	}
	t.Flags, err = b.ReadUint32()
	return t, err
}

// Encode writes the type byte, tag, and body's own fields into b. The
// 4-byte size prefix is the caller's to write, since the total is not
// known until encoding completes. d selects which dialect-specific
// fields to emit, and must agree with whatever dialect body was meant
// for; Encode does not attempt to infer a message's type from its Go
// type beyond that switch.
func Encode(b *Buffer, typ uint8, tag uint16, body Fcall, d Dialect) error {
	if err := b.WriteUint8(typ); err != nil {
		return err
	}
	if err := b.WriteUint16(tag); err != nil {
		return err
	}
	return encodeBody(b, body, d)
}

func encodeBody(b *Buffer, body Fcall, d Dialect) error {
	switch m := body.(type) {
	case Tversion:
		if err := b.WriteUint32(m.Msize); err != nil {
			return err
		}
		return b.WriteString(m.Version)
	case Rversion:
		if err := b.WriteUint32(m.Msize); err != nil {
			return err
		}
		return b.WriteString(m.Version)
	case Tauth:
		if err := b.WriteUint32(m.Afid); err != nil {
			return err
		}
		if err := b.WriteString(m.Uname); err != nil {
			return err
		}
		if err := b.WriteString(m.Aname); err != nil {
			return err
		}
		if d == U {
			return b.WriteUint32(m.NUname)
		}
		return nil
	case Rauth:
		return b.WriteQid(m.Aqid)
	case Tattach:
		if err := b.WriteUint32(m.Fid); err != nil {
			return err
		}
		if err := b.WriteUint32(m.Afid); err != nil {
			return err
		}
		if err := b.WriteString(m.Uname); err != nil {
			return err
		}
		if err := b.WriteString(m.Aname); err != nil {
			return err
		}
		if d == U {
			return b.WriteUint32(m.NUname)
		}
		return nil
	case Rattach:
		return b.WriteQid(m.Qid)
	case Rerror:
		if err := b.WriteString(m.Ename); err != nil {
			return err
		}
		if d == U {
			return b.WriteUint32(m.Errno)
		}
		return nil
	case Rlerror:
		return b.WriteUint32(m.Errno)
	case Tflush:
		return b.WriteUint16(m.Oldtag)
	case Rflush:
		return nil
	case Twalk:
		if err := b.WriteUint32(m.Fid); err != nil {
			return err
		}
		if err := b.WriteUint32(m.Newfid); err != nil {
			return err
		}
		if len(m.Wname) > MaxWElem {
			return errTooManyWname
		}
		if err := b.WriteUint16(uint16(len(m.Wname))); err != nil {
			return err
		}
		for _, s := range m.Wname {
			if err := b.WriteString(s); err != nil {
				return err
			}
		}
		return nil
	case Rwalk:
		if len(m.Wqid) > MaxWElem {
			return errTooManyWname
		}
		if err := b.WriteUint16(uint16(len(m.Wqid))); err != nil {
			return err
		}
		for _, q := range m.Wqid {
			if err := b.WriteQid(q); err != nil {
				return err
			}
		}
		return nil
	case Topen:
		if err := b.WriteUint32(m.Fid); err != nil {
			return err
		}
		return b.WriteUint8(m.Mode)
	case Ropen:
		if err := b.WriteQid(m.Qid); err != nil {
			return err
		}
		return b.WriteUint32(m.IOUnit)
	case Tcreate:
		if err := b.WriteUint32(m.Fid); err != nil {
			return err
		}
		if err := b.WriteString(m.Name); err != nil {
			return err
		}
		if err := b.WriteUint32(m.Perm); err != nil {
			return err
		}
		if err := b.WriteUint8(m.Mode); err != nil {
			return err
		}
		if d == U {
			return b.WriteString(m.Extension)
		}
		return nil
	case Rcreate:
		if err := b.WriteQid(m.Qid); err != nil {
			return err
		}
		return b.WriteUint32(m.IOUnit)
	case Tread:
		if err := b.WriteUint32(m.Fid); err != nil {
			return err
		}
		if err := b.WriteUint64(m.Offset); err != nil {
			return err
		}
		return b.WriteUint32(m.Count)
	case Rread:
		if err := b.WriteUint32(uint32(len(m.Data))); err != nil {
			return err
		}
		return b.WriteBytes(m.Data)
	case Twrite:
		if err := b.WriteUint32(m.Fid); err != nil {
			return err
		}
		if err := b.WriteUint64(m.Offset); err != nil {
			return err
		}
		if err := b.WriteUint32(uint32(len(m.Data))); err != nil {
			return err
		}
		return b.WriteBytes(m.Data)
	case Rwrite:
		return b.WriteUint32(m.Count)
	case Tclunk:
		return b.WriteUint32(m.Fid)
	case Rclunk:
		return nil
	case Tremove:
		return b.WriteUint32(m.Fid)
	case Rremove:
		return nil
	case Tstat:
		return b.WriteUint32(m.Fid)
	case Rstat:
		return PackStat(b, m.Stat, d)
	case Twstat:
		if err := b.WriteUint32(m.Fid); err != nil {
			return err
		}
		return PackStat(b, m.Stat, d)
	case Rwstat:
		return nil

	case Tstatfs:
		return b.WriteUint32(m.Fid)
	case Rstatfs:
		if err := b.WriteUint32(m.Type); err != nil {
			return err
		}
		if err := b.WriteUint32(m.Bsize); err != nil {
			return err
		}
		for _, v := range []uint64{m.Blocks, m.Bfree, m.Bavail, m.Files, m.Ffree, m.Fsid} {
			if err := b.WriteUint64(v); err != nil {
				return err
			}
		}
		return b.WriteUint32(m.Namelen)
	case Tmknod:
		if err := b.WriteUint32(m.Dfid); err != nil {
			return err
		}
		if err := b.WriteString(m.Name); err != nil {
			return err
		}
		if err := b.WriteUint32(m.Mode); err != nil {
			return err
		}
		if err := b.WriteUint32(m.Major); err != nil {
			return err
		}
		if err := b.WriteUint32(m.Minor); err != nil {
			return err
		}
		return b.WriteUint32(m.Gid)
	case Rmknod:
		return b.WriteQid(m.Qid)
	case Trename:
		if err := b.WriteUint32(m.Fid); err != nil {
			return err
		}
		if err := b.WriteUint32(m.Dfid); err != nil {
			return err
		}
		return b.WriteString(m.Name)
	case Rrename:
		return nil
	case Treadlink:
		return b.WriteUint32(m.Fid)
	case Rreadlink:
		return b.WriteString(m.Target)
	case Tgetattr:
		if err := b.WriteUint32(m.Fid); err != nil {
			return err
		}
		return b.WriteUint64(m.RequestMask)
	case Rgetattr:
		if err := b.WriteUint64(m.Valid); err != nil {
			return err
		}
		if err := b.WriteQid(m.Qid); err != nil {
			return err
		}
		if err := b.WriteUint32(m.Mode); err != nil {
			return err
		}
		if err := b.WriteUint32(m.Uid); err != nil {
			return err
		}
		if err := b.WriteUint32(m.Gid); err != nil {
			return err
		}
		for _, v := range []uint64{m.Nlink, m.Rdev, m.Size, m.Blksize, m.Blocks} {
			if err := b.WriteUint64(v); err != nil {
				return err
			}
		}
		for _, t := range []Time{m.Atime, m.Mtime, m.Ctime, m.Btime} {
			if err := writeTime(b, t); err != nil {
				return err
			}
		}
		if err := b.WriteUint64(m.Gen); err != nil {
			return err
		}
		return b.WriteUint64(m.DataVersion)
	case Tsetattr:
		if err := b.WriteUint32(m.Fid); err != nil {
			return err
		}
		if err := b.WriteUint32(m.Valid); err != nil {
			return err
		}
		if err := b.WriteUint32(m.Mode); err != nil {
			return err
		}
		if err := b.WriteUint32(m.Uid); err != nil {
			return err
		}
		if err := b.WriteUint32(m.Gid); err != nil {
			return err
		}
		if err := b.WriteUint64(m.Size); err != nil {
			return err
		}
		if err := writeTime(b, m.Atime); err != nil {
			return err
		}
		return writeTime(b, m.Mtime)
	case Rsetattr:
		return nil
	case Txattrwalk:
		if err := b.WriteUint32(m.Fid); err != nil {
			return err
		}
		if err := b.WriteUint32(m.Newfid); err != nil {
			return err
		}
		return b.WriteString(m.Name)
	case Rxattrwalk:
		return b.WriteUint64(m.Size)
	case Treaddir:
		if err := b.WriteUint32(m.Fid); err != nil {
			return err
		}
		if err := b.WriteUint64(m.Offset); err != nil {
			return err
		}
		return b.WriteUint32(m.Count)
	case Rreaddir:
		if err := b.WriteUint32(uint32(len(m.Data))); err != nil {
			return err
		}
		return b.WriteBytes(m.Data)
	case Tfsync:
		if err := b.WriteUint32(m.Fid); err != nil {
			return err
		}
		return b.WriteUint32(m.Datasync)
	case Rfsync:
		return nil
	case Tlock:
		if err := b.WriteUint32(m.Fid); err != nil {
			return err
		}
		if err := b.WriteUint8(m.Type); err != nil {
			return err
		}
		if err := b.WriteUint32(m.Flags); err != nil {
			return err
		}
		if err := b.WriteUint64(m.Start); err != nil {
			return err
		}
		if err := b.WriteUint64(m.Length); err != nil {
			return err
		}
		if err := b.WriteUint32(m.ProcID); err != nil {
			return err
		}
		return b.WriteString(m.ClientID)
	case Rlock:
		return b.WriteUint8(m.Status)
	case Tgetlock:
		if err := b.WriteUint32(m.Fid); err != nil {
			return err
		}
		if err := b.WriteUint8(m.Type); err != nil {
			return err
		}
		if err := b.WriteUint64(m.Start); err != nil {
			return err
		}
		if err := b.WriteUint64(m.Length); err != nil {
			return err
		}
		if err := b.WriteUint32(m.ProcID); err != nil {
			return err
		}
		return b.WriteString(m.ClientID)
	case Rgetlock:
		if err := b.WriteUint8(m.Type); err != nil {
			return err
		}
		if err := b.WriteUint64(m.Start); err != nil {
			return err
		}
		if err := b.WriteUint64(m.Length); err != nil {
			return err
		}
		if err := b.WriteUint32(m.ProcID); err != nil {
			return err
		}
		return b.WriteString(m.ClientID)
	case Tlink:
		if err := b.WriteUint32(m.Dfid); err != nil {
			return err
		}
		if err := b.WriteUint32(m.Fid); err != nil {
			return err
		}
		return b.WriteString(m.Name)
	case Rlink:
		return nil
	case Tmkdir:
		if err := b.WriteUint32(m.Dfid); err != nil {
			return err
		}
		if err := b.WriteString(m.Name); err != nil {
			return err
		}
		if err := b.WriteUint32(m.Mode); err != nil {
			return err
		}
		return b.WriteUint32(m.Gid)
	case Rmkdir:
		return b.WriteQid(m.Qid)
	case Trenameat:
		if err := b.WriteUint32(m.Olddirfid); err != nil {
			return err
		}
		if err := b.WriteString(m.Oldname); err != nil {
			return err
		}
		if err := b.WriteUint32(m.Newdirfid); err != nil {
			return err
		}
		return b.WriteString(m.Newname)
	case Rrenameat:
		return nil
	case Tunlinkat:
		if err := b.WriteUint32(m.Dirfid); err != nil {
			return err
		}
		if err := b.WriteString(m.Name); err != nil {
			return err
		}
		return b.WriteUint32(m.Flags)
	case Runlinkat:
		return nil
	}
	return errUnsupportedOp
}
