package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestFrame_ParseEnvelope_RoundTrip(t *testing.T) {
	cases := []struct {
		id      int32
		payload []byte
	}{
		{0, nil},
		{0, []byte("hello")},
		{5, bytes.Repeat([]byte{0xab}, 300)},
	}
	for _, c := range cases {
		id, payload, err := ParseEnvelope(Frame(c.id, c.payload))
		if err != nil {
			t.Fatalf("ParseEnvelope: %v", err)
		}
		if id != c.id {
			t.Fatalf("id: got %d want %d", id, c.id)
		}
		if !bytes.Equal(payload, c.payload) {
			t.Fatalf("payload mismatch: got %x want %x", payload, c.payload)
		}
	}
}

func TestHandshake_WireBytes(t *testing.T) {
	got := Handshake("play.example.com", 25565, 763)

	want := []byte{0xfb, 0x05} // protocol 763
	want = append(want, 16)    // host length
	want = append(want, "play.example.com"...)
	want = append(want, 0x63, 0xdd) // port 25565 big-endian
	want = append(want, 0x01)       // next state: status

	if !bytes.Equal(got, want) {
		t.Fatalf("handshake bytes:\ngot  %x\nwant %x", got, want)
	}
}

func TestStatusRequest_Empty(t *testing.T) {
	if len(StatusRequest()) != 0 {
		t.Fatalf("status request payload must be empty")
	}
	// Framed form is exactly length=1, id=0.
	if got := Frame(StatusRequestID, StatusRequest()); !bytes.Equal(got, []byte{0x01, 0x00}) {
		t.Fatalf("framed status request: got %x", got)
	}
}

func TestParseEnvelope_Truncated(t *testing.T) {
	full := Frame(0, []byte("payload"))
	if _, _, err := ParseEnvelope(full[:len(full)-2]); !errors.Is(err, ErrTrailingGap) {
		t.Fatalf("want ErrTrailingGap, got %v", err)
	}
}

func TestParseEnvelope_AbsurdLength(t *testing.T) {
	buf := AppendVarint(nil, 1<<25)
	if _, _, err := ParseEnvelope(buf); !errors.Is(err, ErrPacketSize) {
		t.Fatalf("want ErrPacketSize, got %v", err)
	}
}

func TestResponseAssembler_OneShot(t *testing.T) {
	pkt := Frame(0, []byte("abc"))
	a := NewResponseAssembler()
	done, err := a.Feed(pkt)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if !done {
		t.Fatalf("want done after full packet")
	}
	if !bytes.Equal(a.Envelope(), pkt) {
		t.Fatalf("envelope mismatch")
	}
}

func TestResponseAssembler_Fragmented(t *testing.T) {
	// A large payload split into small chunks, including a split inside
	// the length prefix itself.
	pkt := Frame(0, bytes.Repeat([]byte{0x42}, 5000))
	a := NewResponseAssembler()
	for i := 0; i < len(pkt); i += 7 {
		end := i + 7
		if end > len(pkt) {
			end = len(pkt)
		}
		done, err := a.Feed(pkt[i:end])
		if err != nil {
			t.Fatalf("Feed at %d: %v", i, err)
		}
		if done != (end == len(pkt)) {
			t.Fatalf("done=%v at byte %d of %d", done, end, len(pkt))
		}
	}
	if !bytes.Equal(a.Envelope(), pkt) {
		t.Fatalf("reassembled envelope mismatch")
	}
}

func TestResponseAssembler_TrailingBytesIgnored(t *testing.T) {
	pkt := Frame(0, []byte("abc"))
	a := NewResponseAssembler()
	done, err := a.Feed(append(append([]byte{}, pkt...), 0xde, 0xad))
	if err != nil || !done {
		t.Fatalf("Feed: done=%v err=%v", done, err)
	}
	if !bytes.Equal(a.Envelope(), pkt) {
		t.Fatalf("envelope must trim trailing bytes")
	}
}

func TestResponseAssembler_BadLength(t *testing.T) {
	a := NewResponseAssembler()
	if _, err := a.Feed(AppendVarint(nil, 1<<25)); !errors.Is(err, ErrPacketSize) {
		t.Fatalf("want ErrPacketSize, got %v", err)
	}
}
