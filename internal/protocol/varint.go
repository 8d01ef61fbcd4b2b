// Package protocol implements the binary status-query wire format: the
// 7-bit variable-length integer codec, length-prefixed packet framing,
// and the JSON status response body.
package protocol

import "errors"

// MaxVarintLen is the longest legal VarInt encoding for a 32-bit value.
const MaxVarintLen = 5

var (
	// ErrShortBuffer means the buffer ended mid-value. Callers that read
	// from a stream should accumulate more bytes and retry.
	ErrShortBuffer = errors.New("varint: short buffer")

	// ErrVarintTooLong means a continuation bit was still set after the
	// maximum number of bytes. The stream is malformed, not incomplete.
	ErrVarintTooLong = errors.New("varint: exceeds 5 bytes")
)

// AppendVarint appends the VarInt encoding of v to dst and returns the
// extended slice. Each byte carries 7 data bits, least-significant group
// first; the high bit marks continuation. v is treated as unsigned.
func AppendVarint(dst []byte, v int32) []byte {
	u := uint32(v)
	for u >= 0x80 {
		dst = append(dst, byte(u)|0x80)
		u >>= 7
	}
	return append(dst, byte(u))
}

// ReadVarint decodes a VarInt from the front of buf, returning the value
// and the number of bytes consumed. A truncated value yields
// ErrShortBuffer; more than MaxVarintLen continuation bytes yields
// ErrVarintTooLong.
func ReadVarint(buf []byte) (int32, int, error) {
	var u uint32
	for i := 0; i < MaxVarintLen; i++ {
		if i >= len(buf) {
			return 0, 0, ErrShortBuffer
		}
		b := buf[i]
		u |= uint32(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return int32(u), i + 1, nil
		}
	}
	return 0, 0, ErrVarintTooLong
}

// VarintLen reports how many bytes AppendVarint would write for v.
func VarintLen(v int32) int {
	n := 1
	for u := uint32(v); u >= 0x80; u >>= 7 {
		n++
	}
	return n
}
