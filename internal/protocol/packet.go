package protocol

import (
	"errors"
	"fmt"
)

// Packet IDs for the status flow. Handshake, status request, and status
// response all use id 0 in their respective states.
const (
	HandshakeID      int32 = 0x00
	StatusRequestID  int32 = 0x00
	StatusResponseID int32 = 0x00
)

// DefaultProtocolVersion is the protocol number declared in the handshake.
const DefaultProtocolVersion int32 = 763

// nextStateStatus is the handshake next-state field for a status query.
const nextStateStatus int32 = 1

// maxPacketLen caps a declared packet length. The protocol's own limit;
// anything larger is a framing error, not a bigger allocation.
const maxPacketLen = 1 << 21

var (
	ErrBadPacket   = errors.New("packet: unexpected packet id")
	ErrPacketSize  = errors.New("packet: declared length out of range")
	ErrTrailingGap = errors.New("packet: payload shorter than declared")
)

// Handshake builds the handshake payload: VarInt(protocol), VarInt(len(host)),
// host bytes, big-endian uint16 port, VarInt(nextState=1). No length prefix.
func Handshake(host string, port uint16, protocol int32) []byte {
	out := make([]byte, 0, len(host)+12)
	out = AppendVarint(out, protocol)
	out = AppendVarint(out, int32(len(host)))
	out = append(out, host...)
	out = append(out, byte(port>>8), byte(port))
	return AppendVarint(out, nextStateStatus)
}

// StatusRequest builds the status request payload, which is empty.
func StatusRequest() []byte { return nil }

// Frame wraps a payload into a wire packet: VarInt(total length) followed
// by VarInt(packetId) and the payload. This is what goes on the socket.
func Frame(id int32, payload []byte) []byte {
	inner := VarintLen(id) + len(payload)
	out := make([]byte, 0, VarintLen(int32(inner))+inner)
	out = AppendVarint(out, int32(inner))
	out = AppendVarint(out, id)
	return append(out, payload...)
}

// ParseEnvelope is the inverse of Frame for a fully-buffered packet: it
// reads the length prefix and packet id and returns the id plus the
// remaining payload bytes. The buffer must hold the whole packet.
func ParseEnvelope(buf []byte) (int32, []byte, error) {
	length, n, err := ReadVarint(buf)
	if err != nil {
		return 0, nil, fmt.Errorf("packet length: %w", err)
	}
	if length < 0 || length > maxPacketLen {
		return 0, nil, ErrPacketSize
	}
	body := buf[n:]
	if len(body) < int(length) {
		return 0, nil, ErrTrailingGap
	}
	body = body[:length]
	id, n, err := ReadVarint(body)
	if err != nil {
		return 0, nil, fmt.Errorf("packet id: %w", err)
	}
	return id, body[n:], nil
}
