package cache

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const (
	wireVersion byte = 1
	wireHeader       = 4 + 1 + 8 + 8 + 4
)

// ErrCorrupt is returned when stored bytes are not a framed entry.
var ErrCorrupt = errors.New("cache: corrupt entry")

var wireMagic = [...]byte{'W', 'L', 'N', 'C'}

// EncodeEntry frames a payload:
//
//	magic(4) | ver(1) | gen(u64 be) | storedAt unix nanos(i64 be) | len(u32 be) | payload
func EncodeEntry(gen uint64, storedAt time.Time, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(wireHeader + len(payload))

	buf.Write(wireMagic[:])
	buf.WriteByte(wireVersion)

	var u8 [8]byte
	binary.BigEndian.PutUint64(u8[:], gen)
	buf.Write(u8[:])
	binary.BigEndian.PutUint64(u8[:], uint64(storedAt.UnixNano()))
	buf.Write(u8[:])

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// DecodeEntry reverses EncodeEntry.
func DecodeEntry(b []byte) (gen uint64, storedAt time.Time, payload []byte, err error) {
	if len(b) < wireHeader || !bytes.Equal(b[:4], wireMagic[:]) || b[4] != wireVersion {
		return 0, time.Time{}, nil, ErrCorrupt
	}
	off := 5
	gen = binary.BigEndian.Uint64(b[off : off+8])
	off += 8
	storedAt = time.Unix(0, int64(binary.BigEndian.Uint64(b[off:off+8])))
	off += 8
	n := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	if n > len(b)-off {
		return 0, time.Time{}, nil, ErrCorrupt
	}
	return gen, storedAt, b[off : off+n], nil
}
