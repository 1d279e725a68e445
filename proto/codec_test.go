package proto

import (
	"bytes"
	"reflect"
	"testing"
)

// roundTrip encodes m under dialect d, decodes it back, and checks that
// the result matches.
func roundTrip(t *testing.T, typ uint8, d Dialect, m Fcall) {
	t.Helper()
	buf := make([]byte, 4096)
	wb, err := NewBuffer(Encoding, [][]byte{buf}, len(buf))
	if err != nil {
		t.Fatalf("NewBuffer: %s", err)
	}
	if err := Encode(wb, typ, 0, m, d); err != nil {
		t.Fatalf("encode %T: %s", m, err)
	}
	n := wb.offset()

	rb, err := NewBuffer(Decoding, [][]byte{buf[:n]}, n)
	if err != nil {
		t.Fatalf("NewBuffer: %s", err)
	}
	typByte, err := rb.ReadUint8()
	if err != nil {
		t.Fatalf("read type: %s", err)
	}
	tag, err := rb.ReadUint16()
	if err != nil {
		t.Fatalf("read tag: %s", err)
	}
	if typByte != typ {
		t.Fatalf("type byte = %d, want %d", typByte, typ)
	}
	if tag != 0 {
		t.Fatalf("tag = %d, want 0", tag)
	}
	got, err := Decode(rb, typ, d)
	if err != nil {
		t.Fatalf("decode %T: %s", m, err)
	}
	if !reflect.DeepEqual(got, m) {
		t.Errorf("round trip %T: got %#v, want %#v", m, got, m)
	}
}

func encodeWithTag(t *testing.T, typ uint8, tag uint16, d Dialect, m Fcall) []byte {
	t.Helper()
	buf := make([]byte, 4096)
	wb, err := NewBuffer(Encoding, [][]byte{buf}, len(buf))
	if err != nil {
		t.Fatalf("NewBuffer: %s", err)
	}
	if err := Encode(wb, typ, tag, m, d); err != nil {
		t.Fatalf("Encode: %s", err)
	}
	return buf[:wb.offset()]
}

func TestRoundTripOriginal(t *testing.T) {
	q := Qid{Type: QTDIR, Version: 1, Path: 42}
	cases := []struct {
		typ uint8
		m   Fcall
	}{
		{TypeTversion, Tversion{Msize: 8192, Version: "9P2000"}},
		{TypeRversion, Rversion{Msize: 8192, Version: "9P2000"}},
		{TypeTauth, Tauth{Afid: 1, Uname: "glenda", Aname: ""}},
		{TypeRauth, Rauth{Aqid: q}},
		{TypeTattach, Tattach{Fid: 1, Afid: NoFid, Uname: "glenda", Aname: ""}},
		{TypeRattach, Rattach{Qid: q}},
		{TypeRerror, Rerror{Ename: "no such file"}},
		{TypeTflush, Tflush{Oldtag: 7}},
		{TypeRflush, Rflush{}},
		{TypeTwalk, Twalk{Fid: 1, Newfid: 2, Wname: []string{"usr", "glenda"}}},
		{TypeRwalk, Rwalk{Wqid: []Qid{q, q}}},
		{TypeTopen, Topen{Fid: 1, Mode: 0}},
		{TypeRopen, Ropen{Qid: q, IOUnit: 0}},
		{TypeTcreate, Tcreate{Fid: 1, Name: "file", Perm: 0644, Mode: 1}},
		{TypeRcreate, Rcreate{Qid: q, IOUnit: 8192}},
		{TypeTread, Tread{Fid: 1, Offset: 0, Count: 100}},
		{TypeRread, Rread{Data: []byte("hello")}},
		{TypeTwrite, Twrite{Fid: 1, Offset: 0, Data: []byte("hello")}},
		{TypeRwrite, Rwrite{Count: 5}},
		{TypeTclunk, Tclunk{Fid: 1}},
		{TypeRclunk, Rclunk{}},
		{TypeTremove, Tremove{Fid: 1}},
		{TypeRremove, Rremove{}},
		{TypeTstat, Tstat{Fid: 1}},
		{TypeRstat, Rstat{Stat: Stat{Qid: q, Name: "file", Uid: "glenda", Gid: "glenda", Muid: "glenda"}}},
		{TypeTwstat, Twstat{Fid: 1, Stat: Stat{Qid: q, Name: "file", Uid: "glenda", Gid: "glenda", Muid: "glenda"}}},
		{TypeRwstat, Rwstat{}},
	}
	for _, c := range cases {
		roundTrip(t, c.typ, Original, c.m)
	}
}

func TestRoundTripDotU(t *testing.T) {
	q := Qid{Type: QTFILE, Version: 3, Path: 99}
	cases := []struct {
		typ uint8
		m   Fcall
	}{
		{TypeTauth, Tauth{Afid: 1, Uname: "glenda", Aname: "", NUname: 1001}},
		{TypeTattach, Tattach{Fid: 1, Afid: NoFid, Uname: "glenda", Aname: "", NUname: 1001}},
		{TypeRerror, Rerror{Ename: "permission denied", Errno: 13}},
		{TypeTcreate, Tcreate{Fid: 1, Name: "link", Perm: 0777, Mode: 0, Extension: "/target"}},
		{TypeRstat, Rstat{Stat: Stat{Qid: q, Name: "f", Uid: "glenda", Gid: "glenda", Muid: "glenda", Extension: "", NUid: 1001, NGid: 1001, NMuid: 1001}}},
	}
	for _, c := range cases {
		roundTrip(t, c.typ, U, c.m)
	}
}

func TestRoundTripDotL(t *testing.T) {
	q := Qid{Type: QTFILE, Version: 0, Path: 7}
	cases := []struct {
		typ uint8
		m   Fcall
	}{
		{TypeRlerror, Rlerror{Errno: 2}},
		{TypeTstatfs, Tstatfs{Fid: 1}},
		{TypeRstatfs, Rstatfs{Type: 1, Bsize: 4096, Blocks: 100, Bfree: 50, Bavail: 50, Files: 10, Ffree: 5, Fsid: 1, Namelen: 255}},
		{TypeTgetattr, Tgetattr{Fid: 1, RequestMask: 0x3fff}},
		{TypeRgetattr, Rgetattr{Valid: 0x3fff, Qid: q, Mode: 0100644, Uid: 1001, Gid: 1001, Nlink: 1, Size: 10}},
		{TypeTsetattr, Tsetattr{Fid: 1, Valid: 1, Mode: 0644}},
		{TypeRsetattr, Rsetattr{}},
		{TypeTxattrwalk, Txattrwalk{Fid: 1, Newfid: 2, Name: "user.foo"}},
		{TypeRxattrwalk, Rxattrwalk{Size: 4}},
		{TypeTreaddir, Treaddir{Fid: 1, Offset: 0, Count: 4096}},
		{TypeRreaddir, Rreaddir{Data: []byte("entries")}},
		{TypeTfsync, Tfsync{Fid: 1}},
		{TypeTlock, Tlock{Fid: 1, Type: 0, Flags: 0, Start: 0, Length: 0, ProcID: 99, ClientID: "host"}},
		{TypeRlock, Rlock{Status: 0}},
		{TypeTgetlock, Tgetlock{Fid: 1, Type: 0, Start: 0, Length: 0, ProcID: 99, ClientID: "host"}},
		{TypeRgetlock, Rgetlock{Type: 2, Start: 0, Length: 0, ProcID: 99, ClientID: "host"}},
		{TypeTlink, Tlink{Dfid: 1, Fid: 2, Name: "link"}},
		{TypeRlink, Rlink{}},
		{TypeTmkdir, Tmkdir{Dfid: 1, Name: "dir", Mode: 0755, Gid: 1001}},
		{TypeRmkdir, Rmkdir{Qid: q}},
		{TypeTrename, Trename{Fid: 1, Dfid: 2, Name: "newname"}},
		{TypeRrename, Rrename{}},
		{TypeTreadlink, Treadlink{Fid: 1}},
		{TypeRreadlink, Rreadlink{Target: "/elsewhere"}},
		{TypeTmknod, Tmknod{Dfid: 1, Name: "dev", Mode: 0600, Major: 1, Minor: 2, Gid: 0}},
		{TypeRmknod, Rmknod{Qid: q}},
		{TypeTrenameat, Trenameat{Olddirfid: 1, Oldname: "a", Newdirfid: 2, Newname: "b"}},
		{TypeRrenameat, Rrenameat{}},
		{TypeTunlinkat, Tunlinkat{Dirfid: 1, Name: "a", Flags: 0}},
		{TypeRunlinkat, Runlinkat{}},
	}
	for _, c := range cases {
		roundTrip(t, c.typ, L, c.m)
	}
}

func TestDecodeRejectsWrongDialect(t *testing.T) {
	buf := encodeWithTag(t, TypeTgetattr, 1, L, Tgetattr{Fid: 1, RequestMask: 1})
	rb, err := NewBuffer(Decoding, [][]byte{buf}, len(buf))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := rb.ReadUint8(); err != nil {
		t.Fatal(err)
	}
	if _, err := rb.ReadUint16(); err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(rb, TypeTgetattr, Original); err != errBadDialect {
		t.Fatalf("Decode under wrong dialect: got %v, want errBadDialect", err)
	}
}

func TestDecodeHeader(t *testing.T) {
	var hdr bytes.Buffer
	hdr.Write([]byte{19, 0, 0, 0})
	hdr.WriteByte(TypeTclunk)
	hdr.Write([]byte{5, 0})
	b, err := NewBuffer(Decoding, [][]byte{hdr.Bytes()}, hdr.Len())
	if err != nil {
		t.Fatal(err)
	}
	h, err := DecodeHeader(b)
	if err != nil {
		t.Fatal(err)
	}
	if h.Size != 19 || h.Type != TypeTclunk || h.Tag != 5 {
		t.Fatalf("DecodeHeader = %+v", h)
	}
}

func TestTwalkTooManyElements(t *testing.T) {
	wname := make([]string, MaxWElem+1)
	for i := range wname {
		wname[i] = "x"
	}
	buf := make([]byte, 4096)
	wb, _ := NewBuffer(Encoding, [][]byte{buf}, len(buf))
	if err := encodeBody(wb, Twalk{Fid: 1, Newfid: 2, Wname: wname}, Original); err != errTooManyWname {
		t.Fatalf("encode too many wname: got %v, want errTooManyWname", err)
	}
}

func TestUnsupportedType(t *testing.T) {
	buf := []byte{}
	b, _ := NewBuffer(Decoding, [][]byte{buf}, 0)
	if _, err := Decode(b, 255, Original); err != errUnsupportedOp {
		t.Fatalf("Decode unknown type: got %v, want errUnsupportedOp", err)
	}
}
