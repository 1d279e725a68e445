package proto

import "testing"

// FuzzDecode exercises DecodeHeader/Decode against arbitrary bytes. The
// only invariant under test is "never panic" - malformed input must
// come back as an error, never a crash, since a client on the wire
// controls every byte that reaches this decoder.
func FuzzDecode(f *testing.F) {
	seed := func(typ uint8, tag uint16, d Dialect, m Fcall) {
		buf := make([]byte, 4096)
		b, err := NewBuffer(Encoding, [][]byte{buf}, len(buf))
		if err != nil {
			return
		}
		if err := Encode(b, typ, tag, m, d); err != nil {
			return
		}
		n := len(buf) - b.Remaining()
		f.Add(buf[:n], uint8(d))
	}

	seed(TypeTversion, NoTag, Original, Tversion{Msize: 8192, Version: "9P2000"})
	seed(TypeTwalk, 1, Original, Twalk{Fid: 1, Newfid: 2, Wname: []string{"a", "b"}})
	seed(TypeTread, 1, Original, Tread{Fid: 1, Offset: 0, Count: 4096})
	seed(TypeTwrite, 1, Original, Twrite{Fid: 1, Offset: 0, Data: []byte("hello")})
	seed(TypeTwstat, 1, U, Twstat{Fid: 1, Stat: Stat{Name: "f", Uid: "u", Gid: "g", Muid: "m"}})
	seed(TypeTgetattr, 1, L, Tgetattr{Fid: 1, RequestMask: 0x3fff})
	seed(TypeTrenameat, 1, L, Trenameat{Olddirfid: 1, Oldname: "a", Newdirfid: 2, Newname: "b"})
	f.Add([]byte{}, uint8(Original))
	f.Add([]byte{0xff}, uint8(L))

	f.Fuzz(func(t *testing.T, data []byte, dRaw uint8) {
		d := Dialect(dRaw % 4)
		b, err := NewBuffer(Decoding, [][]byte{data}, len(data))
		if err != nil {
			return
		}
		hdr, err := DecodeHeader(b)
		if err != nil {
			return
		}
		_, _ = Decode(b, hdr.Type, d)
	})
}
