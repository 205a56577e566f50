package codec

import (
	"errors"
	"fmt"
	"io"
)

// MaxVarintLen is the largest number of bytes a varint-encoded 64-bit
// integer can occupy: 10 bytes of 7 payload bits each.
const MaxVarintLen = 10

// ErrMalformedVarint indicates a varint whose continuation bits never
// terminate within MaxVarintLen bytes, or one that overflows 64 bits.
var ErrMalformedVarint = errors.New("malformed varint")

// ZigZagEncode maps a signed 64-bit integer onto an unsigned one so that
// values of small magnitude stay numerically small: 0->0, -1->1, 1->2,
// -2->3. The sign extension uses an arithmetic shift on int64, which keeps
// the mapping exact for the full range including math.MinInt64.
func ZigZagEncode(n int64) uint64 {
	return uint64(n<<1) ^ uint64(n>>63)
}

// ZigZagDecode is the exact inverse of ZigZagEncode.
func ZigZagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// AppendUvarint appends the base-128 varint encoding of u to buf: 7 bits
// per byte, low-order group first, high bit set on every byte except the
// last. The output is minimal length; zero encodes as a single 0x00 byte.
func AppendUvarint(buf []byte, u uint64) []byte {
	for u > 0x7F {
		buf = append(buf, byte(u)|0x80)
		u >>= 7
	}
	return append(buf, byte(u))
}

// AppendLong appends the zigzag-varint encoding of n to buf. This is the
// wire form Avro calls "long" and uses for every integer in the container
// format: field values, string lengths, block counts and block sizes.
func AppendLong(buf []byte, n int64) []byte {
	return AppendUvarint(buf, ZigZagEncode(n))
}

// EncodeLong returns the zigzag-varint encoding of n.
func EncodeLong(n int64) []byte {
	return AppendLong(nil, n)
}

// DecodeUvarint decodes a base-128 varint from the front of data and
// returns the value and the number of bytes consumed.
func DecodeUvarint(data []byte) (uint64, int, error) {
	var x uint64
	var s uint
	for i := 0; i < len(data); i++ {
		if i >= MaxVarintLen {
			return 0, 0, fmt.Errorf("%w: continuation past %d bytes", ErrMalformedVarint, MaxVarintLen)
		}
		b := data[i]
		if b < 0x80 {
			if i == MaxVarintLen-1 && b > 1 {
				return 0, 0, fmt.Errorf("%w: value overflows 64 bits", ErrMalformedVarint)
			}
			return x | uint64(b)<<s, i + 1, nil
		}
		x |= uint64(b&0x7F) << s
		s += 7
	}
	return 0, 0, fmt.Errorf("%w: truncated input", ErrMalformedVarint)
}

// DecodeLong decodes a zigzag-varint from the front of data.
func DecodeLong(data []byte) (int64, int, error) {
	u, n, err := DecodeUvarint(data)
	if err != nil {
		return 0, 0, err
	}
	return ZigZagDecode(u), n, nil
}

// ReadUvarint reads a base-128 varint from r. A clean io.EOF before the
// first byte is returned as io.EOF so callers can distinguish end-of-input
// at a boundary; EOF in the middle of a sequence is io.ErrUnexpectedEOF.
func ReadUvarint(r io.ByteReader) (uint64, error) {
	var x uint64
	var s uint
	for i := 0; ; i++ {
		if i >= MaxVarintLen {
			return 0, fmt.Errorf("%w: continuation past %d bytes", ErrMalformedVarint, MaxVarintLen)
		}
		b, err := r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && i > 0 {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}
		if b < 0x80 {
			if i == MaxVarintLen-1 && b > 1 {
				return 0, fmt.Errorf("%w: value overflows 64 bits", ErrMalformedVarint)
			}
			return x | uint64(b)<<s, nil
		}
		x |= uint64(b&0x7F) << s
		s += 7
	}
}

// ReadLong reads a zigzag-varint from r.
func ReadLong(r io.ByteReader) (int64, error) {
	u, err := ReadUvarint(r)
	if err != nil {
		return 0, err
	}
	return ZigZagDecode(u), nil
}
