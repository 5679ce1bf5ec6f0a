// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package atca

import (
	"encoding/binary"
	"fmt"
)

// ChecksumFunc computes the frame checksum over count..data.
type ChecksumFunc func(data []byte) uint16

// Option configures a PacketBuilder.
type Option func(*PacketBuilder)

// WithChecksum replaces the default CRC16.
func WithChecksum(fn ChecksumFunc) Option {
	return func(b *PacketBuilder) {
		if fn != nil {
			b.checksum = fn
		}
	}
}

// PacketBuilder holds the scratch buffer a frame is assembled in. A builder
// must not be used for two frames concurrently; callers building frames in
// parallel need one builder (and buffer) each.
type PacketBuilder struct {
	buf      []byte
	checksum ChecksumFunc
}

// NewPacketBuilder returns a builder assembling frames in buf. A nil buf
// allocates MaxPacketSize bytes.
func NewPacketBuilder(buf []byte, opts ...Option) PacketBuilder {
	if buf == nil {
		buf = make([]byte, MaxPacketSize)
	}
	b := PacketBuilder{buf: buf, checksum: CRC16}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// Checksum returns the checksum function used by this builder.
func (b PacketBuilder) Checksum() ChecksumFunc {
	return b.checksum
}

// Opcode starts a frame for op. A PacketDraft is only reachable through
// this call, so every frame carries an opcode.
func (b PacketBuilder) Opcode(op OpCode) PacketDraft {
	return PacketDraft{builder: b, opcode: op}
}

// PacketDraft accumulates the fields of one frame. Setters return an updated
// copy; the receiver is left untouched.
type PacketDraft struct {
	builder     PacketBuilder
	opcode      OpCode
	mode        uint8
	param2      uint16
	data        []byte
	dataLength  int // padded payload length, 0 means len(data)
	responseLen int
}

// Mode sets the mode byte (the chip's param1).
func (d PacketDraft) Mode(mode uint8) PacketDraft {
	d.mode = mode
	return d
}

// Param2 sets the 16-bit second parameter.
func (d PacketDraft) Param2(param2 uint16) PacketDraft {
	d.param2 = param2
	return d
}

// Data sets the payload. The bytes are copied when the frame is built.
func (d PacketDraft) Data(data []byte) PacketDraft {
	d.data = data
	return d
}

// DataLength fixes the payload length; shorter data is zero padded.
func (d PacketDraft) DataLength(n int) PacketDraft {
	d.dataLength = n
	return d
}

// ResponseLength sets the number of data bytes the reply carries. Zero means
// the reply is a status byte.
func (d PacketDraft) ResponseLength(n int) PacketDraft {
	d.responseLen = n
	return d
}

// Build assembles the frame and returns it as an owned Packet. Building the
// same draft twice yields identical bytes. On error no Packet is returned.
func (d PacketDraft) Build() (*Packet, error) {
	op := fmt.Sprintf("build %s", d.opcode)

	payloadLen := len(d.data)
	if d.dataLength != 0 {
		if d.dataLength < len(d.data) {
			return nil, invalidSize(op, "data is %d bytes, fixed length is %d", len(d.data), d.dataLength)
		}
		payloadLen = d.dataLength
	}
	if payloadLen > MaxDataSize {
		return nil, invalidSize(op, "data is %d bytes (max %d)", payloadLen, MaxDataSize)
	}
	if d.responseLen < 0 {
		return nil, invalidSize(op, "negative response length %d", d.responseLen)
	}

	count := CommandSizeMin + payloadLen
	total := 1 + count
	buf := d.builder.buf
	if len(buf) < total {
		return nil, invalidSize(op, "scratch buffer is %d bytes, frame needs %d", len(buf), total)
	}
	checksum := d.builder.checksum
	if checksum == nil {
		checksum = CRC16
	}

	frame := buf[:total]
	frame[idxWordAddress] = WordAddressCommand
	frame[idxCount] = uint8(count)
	frame[idxOpcode] = uint8(d.opcode)
	frame[idxMode] = d.mode
	binary.LittleEndian.PutUint16(frame[idxParam2:idxData], d.param2)
	n := copy(frame[idxData:], d.data)
	clear(frame[idxData+n : idxData+payloadLen])
	crc := checksum(frame[idxCount : idxData+payloadLen])
	binary.LittleEndian.PutUint16(frame[idxData+payloadLen:], crc)

	raw := make([]byte, total)
	copy(raw, frame)
	return &Packet{raw: raw, responseLen: d.responseLen, checksum: checksum}, nil
}

// Packet is a finished command frame. It owns its bytes and never changes.
type Packet struct {
	raw         []byte
	responseLen int
	checksum    ChecksumFunc
}

// Bytes returns a copy of the transmit buffer, word address included.
func (p *Packet) Bytes() []byte {
	return append([]byte(nil), p.raw...)
}

// Command returns a copy of the frame without the word address byte.
func (p *Packet) Command() []byte {
	return append([]byte(nil), p.raw[idxCount:]...)
}

// Len returns the transmit length in bytes.
func (p *Packet) Len() int {
	return len(p.raw)
}

// Count returns the frame's count byte.
func (p *Packet) Count() uint8 {
	return p.raw[idxCount]
}

// OpCode returns the frame's op-code.
func (p *Packet) OpCode() OpCode {
	return OpCode(p.raw[idxOpcode])
}

// Mode returns the frame's mode byte.
func (p *Packet) Mode() uint8 {
	return p.raw[idxMode]
}

// Param2 returns the frame's second parameter.
func (p *Packet) Param2() uint16 {
	return binary.LittleEndian.Uint16(p.raw[idxParam2:idxData])
}

// Data returns a copy of the payload.
func (p *Packet) Data() []byte {
	return append([]byte(nil), p.raw[idxData:len(p.raw)-CRCSize]...)
}

// CRC returns the frame's checksum.
func (p *Packet) CRC() uint16 {
	return binary.LittleEndian.Uint16(p.raw[len(p.raw)-CRCSize:])
}

// ResponseLen returns the number of data bytes the reply carries on success,
// 0 when the reply is a bare status byte.
func (p *Packet) ResponseLen() int {
	return p.responseLen
}

// ResponseSize returns the length of a successful reply frame.
func (p *Packet) ResponseSize() int {
	if p.responseLen == 0 {
		return ResponseSizeMin
	}
	return 1 + p.responseLen + CRCSize
}

// DecodeResponse validates a raw reply to this packet and returns its data.
// Status-only commands return the single status byte.
func (p *Packet) DecodeResponse(raw []byte) ([]byte, error) {
	data, err := DecodeResponse(raw, p.checksum)
	if err != nil {
		return nil, err
	}
	if p.responseLen == 0 {
		return data, nil
	}
	if len(data) != p.responseLen {
		return nil, invalidSize(fmt.Sprintf("%s response", p.OpCode()), "got %d data bytes, want %d", len(data), p.responseLen)
	}
	return data, nil
}

// DecodeResponse validates a reply frame [count][data...][crc lo][crc hi] and
// returns a copy of its data. A 4-byte frame carries a status byte; a
// non-success status is returned as an error of the matching kind. A nil
// checksum uses CRC16.
func DecodeResponse(raw []byte, checksum ChecksumFunc) ([]byte, error) {
	const op = "decode response"
	if checksum == nil {
		checksum = CRC16
	}
	if len(raw) < ResponseSizeMin {
		return nil, invalidSize(op, "reply is %d bytes (min %d)", len(raw), ResponseSizeMin)
	}
	count := int(raw[0])
	if count < ResponseSizeMin || count > len(raw) {
		return nil, invalidSize(op, "count byte %d does not fit a %d-byte reply", count, len(raw))
	}
	frame := raw[:count]
	want := binary.LittleEndian.Uint16(frame[count-CRCSize:])
	got := checksum(frame[:count-CRCSize])
	if got != want {
		return nil, newError(KindChecksum, op, "got 0x%04X, frame carries 0x%04X", got, want)
	}
	data := append([]byte(nil), frame[1:count-CRCSize]...)
	if count == ResponseSizeMin {
		if err := StatusError(data[0]); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// EncodeResponse frames data as the chip would reply. It is the inverse of
// DecodeResponse and is used to replay recorded exchanges and in tests.
func EncodeResponse(data []byte, checksum ChecksumFunc) ([]byte, error) {
	if checksum == nil {
		checksum = CRC16
	}
	count := 1 + len(data) + CRCSize
	if len(data) == 0 || count > 0xFF {
		return nil, invalidSize("encode response", "data is %d bytes", len(data))
	}
	frame := make([]byte, 0, count)
	frame = append(frame, uint8(count))
	frame = append(frame, data...)
	return binary.LittleEndian.AppendUint16(frame, checksum(frame)), nil
}
