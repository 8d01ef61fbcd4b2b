package protocol

import "errors"

// ResponseAssembler accumulates raw socket chunks until a complete
// length-prefixed packet is buffered. Status responses carrying a favicon
// routinely exceed a single read, so the reader feeds chunks here instead
// of parsing the first one it sees.
type ResponseAssembler struct {
	buf  []byte
	want int // total packet size incl. length prefix; -1 until known
}

// NewResponseAssembler returns an empty assembler.
func NewResponseAssembler() *ResponseAssembler {
	return &ResponseAssembler{want: -1}
}

// Feed appends a chunk and reports whether the full packet is now
// buffered. A malformed or oversized length prefix is an error; a prefix
// that simply has not fully arrived yet is not.
func (a *ResponseAssembler) Feed(chunk []byte) (bool, error) {
	a.buf = append(a.buf, chunk...)
	if a.want < 0 {
		length, n, err := ReadVarint(a.buf)
		if errors.Is(err, ErrShortBuffer) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if length < 0 || length > maxPacketLen {
			return false, ErrPacketSize
		}
		a.want = n + int(length)
	}
	return len(a.buf) >= a.want, nil
}

// Envelope returns the assembled packet bytes, trimmed to the declared
// length. Only valid once Feed has reported done.
func (a *ResponseAssembler) Envelope() []byte {
	if a.want < 0 || len(a.buf) < a.want {
		return nil
	}
	return a.buf[:a.want]
}

// Len reports how many bytes are currently buffered.
func (a *ResponseAssembler) Len() int { return len(a.buf) }
