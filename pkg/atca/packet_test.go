// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package atca

import (
	"bytes"
	"errors"
	"testing"
)

func TestPacketBuilder_ShaStart(t *testing.T) {
	buf := make([]byte, 0xFF)
	p, err := NewSha(NewPacketBuilder(buf)).Start()
	if err != nil {
		t.Fatalf("Start() unexpected error: %v", err)
	}

	packet := p.Bytes()
	if packet[0x01] != 0x07 {
		t.Errorf("count = 0x%02X, want 0x07", packet[0x01])
	}
	if packet[0x02] != uint8(OpSha) {
		t.Errorf("opcode = 0x%02X, want 0x%02X", packet[0x02], uint8(OpSha))
	}
	if packet[0x03] != ShaModeStart {
		t.Errorf("mode = 0x%02X, want 0x%02X", packet[0x03], ShaModeStart)
	}
	if !bytes.Equal(packet[0x04:0x06], []byte{0x00, 0x00}) {
		t.Errorf("param2 = % X, want 00 00", packet[0x04:0x06])
	}

	want := []byte{0x03, 0x07, 0x47, 0x00, 0x00, 0x00, 0x2E, 0x85}
	if !bytes.Equal(packet, want) {
		t.Errorf("Bytes() = % X, want % X", packet, want)
	}
}

func TestPacketDraft_Layout(t *testing.T) {
	p, err := NewPacketBuilder(nil).
		Opcode(OpWrite).
		Mode(0x82).
		Param2(0x0118).
		Data([]byte{0xAA, 0xBB, 0xCC}).
		Build()
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}

	raw := p.Bytes()
	if len(raw) != 1+CommandSizeMin+3 {
		t.Fatalf("len(Bytes()) = %d, want %d", len(raw), 1+CommandSizeMin+3)
	}
	if raw[0] != WordAddressCommand {
		t.Errorf("word address = 0x%02X, want 0x%02X", raw[0], WordAddressCommand)
	}
	if p.Count() != 10 {
		t.Errorf("Count() = %d, want 10", p.Count())
	}
	if p.OpCode() != OpWrite {
		t.Errorf("OpCode() = %s, want %s", p.OpCode(), OpWrite)
	}
	if p.Mode() != 0x82 {
		t.Errorf("Mode() = 0x%02X, want 0x82", p.Mode())
	}
	if !bytes.Equal(raw[4:6], []byte{0x18, 0x01}) {
		t.Errorf("param2 bytes = % X, want 18 01 (little endian)", raw[4:6])
	}
	if p.Param2() != 0x0118 {
		t.Errorf("Param2() = 0x%04X, want 0x0118", p.Param2())
	}
	if !bytes.Equal(p.Data(), []byte{0xAA, 0xBB, 0xCC}) {
		t.Errorf("Data() = % X, want AA BB CC", p.Data())
	}

	crc := CRC16(raw[1 : len(raw)-2])
	if p.CRC() != crc {
		t.Errorf("CRC() = 0x%04X, want 0x%04X", p.CRC(), crc)
	}
	if raw[len(raw)-2] != byte(crc) || raw[len(raw)-1] != byte(crc>>8) {
		t.Errorf("crc bytes = % X, want little endian 0x%04X", raw[len(raw)-2:], crc)
	}
	if !bytes.Equal(p.Command(), raw[1:]) {
		t.Errorf("Command() = % X, want % X", p.Command(), raw[1:])
	}
}

func TestPacketDraft_BuildIsRepeatable(t *testing.T) {
	buf := make([]byte, MaxPacketSize)
	draft := NewPacketBuilder(buf).
		Opcode(OpAes).
		Mode(AesModeEncrypt).
		Param2(2).
		Data([]byte{1, 2, 3}).
		DataLength(AesBlockSize)

	first, err := draft.Build()
	if err != nil {
		t.Fatalf("first Build() unexpected error: %v", err)
	}
	// Dirty the scratch buffer between builds.
	for i := range buf {
		buf[i] = 0xEE
	}
	second, err := draft.Build()
	if err != nil {
		t.Fatalf("second Build() unexpected error: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Errorf("builds differ:\n  % X\n  % X", first.Bytes(), second.Bytes())
	}
	wantData := append([]byte{1, 2, 3}, make([]byte, 13)...)
	if !bytes.Equal(second.Data(), wantData) {
		t.Errorf("Data() = % X, want zero padded % X", second.Data(), wantData)
	}
}

func TestPacketDraft_SettersDoNotMutate(t *testing.T) {
	base := NewPacketBuilder(nil).Opcode(OpRead)
	_ = base.Mode(0x80).Param2(0x1234)

	p, err := base.Build()
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}
	if p.Mode() != 0 || p.Param2() != 0 {
		t.Errorf("base draft changed: mode=0x%02X param2=0x%04X", p.Mode(), p.Param2())
	}
}

func TestPacket_IsOwned(t *testing.T) {
	buf := make([]byte, MaxPacketSize)
	p, err := NewInfo(NewPacketBuilder(buf)).Revision()
	if err != nil {
		t.Fatalf("Revision() unexpected error: %v", err)
	}
	want := p.Bytes()

	clear(buf)
	got := p.Bytes()
	got[2] = 0xFF
	if !bytes.Equal(p.Bytes(), want) {
		t.Errorf("packet changed after touching scratch and returned slice: % X", p.Bytes())
	}
}

func TestPacketDraft_Errors(t *testing.T) {
	tests := []struct {
		name  string
		draft PacketDraft
	}{
		{
			name:  "payload too large",
			draft: NewPacketBuilder(nil).Opcode(OpWrite).Data(make([]byte, MaxDataSize+1)),
		},
		{
			name:  "fixed length shorter than data",
			draft: NewPacketBuilder(nil).Opcode(OpAes).Data(make([]byte, 17)).DataLength(16),
		},
		{
			name:  "scratch buffer too small",
			draft: NewPacketBuilder(make([]byte, 4)).Opcode(OpInfo),
		},
		{
			name:  "negative response length",
			draft: NewPacketBuilder(nil).Opcode(OpInfo).ResponseLength(-1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.draft.Build()
			if !errors.Is(err, ErrInvalidSize) {
				t.Errorf("Build() error = %v, want ErrInvalidSize", err)
			}
			if p != nil {
				t.Errorf("Build() returned a packet alongside an error")
			}
		})
	}
}

func TestPacketDraft_MaxPayload(t *testing.T) {
	p, err := NewPacketBuilder(nil).Opcode(OpWrite).Data(make([]byte, MaxDataSize)).Build()
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}
	if p.Len() != MaxPacketSize {
		t.Errorf("Len() = %d, want %d", p.Len(), MaxPacketSize)
	}
}

func TestWithChecksum(t *testing.T) {
	fixed := func([]byte) uint16 { return 0xBEEF }
	b := NewPacketBuilder(nil, WithChecksum(fixed))

	p, err := NewRandom(b).Random()
	if err != nil {
		t.Fatalf("Random() unexpected error: %v", err)
	}
	raw := p.Bytes()
	if raw[len(raw)-2] != 0xEF || raw[len(raw)-1] != 0xBE {
		t.Errorf("crc bytes = % X, want EF BE", raw[len(raw)-2:])
	}

	reply := []byte{0x04, 0x00, 0xEF, 0xBE}
	lock, err := NewLock(b).Zone(ZoneConfig)
	if err != nil {
		t.Fatalf("Zone() unexpected error: %v", err)
	}
	if _, err := lock.DecodeResponse(reply); err != nil {
		t.Errorf("DecodeResponse() with injected checksum: %v", err)
	}
}

func TestDecodeResponse(t *testing.T) {
	tests := []struct {
		name     string
		raw      []byte
		wantData []byte
		wantKind ErrorKind
	}{
		{
			name:     "success status",
			raw:      []byte{0x04, 0x00, 0x03, 0x40},
			wantData: []byte{0x00},
		},
		{
			name:     "execution error status",
			raw:      []byte{0x04, 0x0F, 0x23, 0x42},
			wantKind: KindExecutionError,
		},
		{
			name:     "wake status",
			raw:      []byte{0x04, 0x11, 0x33, 0x43},
			wantKind: KindWakeReceived,
		},
		{
			name:     "bad crc",
			raw:      []byte{0x04, 0x00, 0x00, 0x00},
			wantKind: KindChecksum,
		},
		{
			name:     "too short",
			raw:      []byte{0x04, 0x00},
			wantKind: KindInvalidSize,
		},
		{
			name:     "count beyond buffer",
			raw:      []byte{0x09, 0x00, 0x03, 0x40},
			wantKind: KindInvalidSize,
		},
		{
			name:     "count below minimum",
			raw:      []byte{0x03, 0x00, 0x03, 0x40},
			wantKind: KindInvalidSize,
		},
		{
			name:     "trailing bytes after frame",
			raw:      []byte{0x04, 0x00, 0x03, 0x40, 0xFF, 0xFF},
			wantData: []byte{0x00},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := DecodeResponse(tt.raw, nil)
			if tt.wantKind != KindUnknown {
				if KindOf(err) != tt.wantKind {
					t.Fatalf("DecodeResponse() error = %v, want kind %s", err, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeResponse() unexpected error: %v", err)
			}
			if !bytes.Equal(data, tt.wantData) {
				t.Errorf("DecodeResponse() = % X, want % X", data, tt.wantData)
			}
		})
	}
}

func TestEncodeResponse_RoundTrip(t *testing.T) {
	data := []byte{0x00, 0x00, 0x60, 0x03}
	raw, err := EncodeResponse(data, nil)
	if err != nil {
		t.Fatalf("EncodeResponse() unexpected error: %v", err)
	}
	if raw[0] != 7 {
		t.Errorf("count = %d, want 7", raw[0])
	}

	p, err := NewInfo(NewPacketBuilder(nil)).Revision()
	if err != nil {
		t.Fatalf("Revision() unexpected error: %v", err)
	}
	if p.ResponseSize() != len(raw) {
		t.Errorf("ResponseSize() = %d, want %d", p.ResponseSize(), len(raw))
	}
	got, err := p.DecodeResponse(raw)
	if err != nil {
		t.Fatalf("DecodeResponse() unexpected error: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("DecodeResponse() = % X, want % X", got, data)
	}

	if _, err := EncodeResponse(nil, nil); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("EncodeResponse(nil) error = %v, want ErrInvalidSize", err)
	}
}

func TestPacketDecodeResponse_LengthMismatch(t *testing.T) {
	p, err := NewSha(NewPacketBuilder(nil)).End()
	if err != nil {
		t.Fatalf("End() unexpected error: %v", err)
	}
	raw, _ := EncodeResponse(make([]byte, 16), nil)
	if _, err := p.DecodeResponse(raw); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("DecodeResponse() error = %v, want ErrInvalidSize", err)
	}

	status, _ := EncodeResponse([]byte{StatusParseError}, nil)
	if _, err := p.DecodeResponse(status); KindOf(err) != KindParseError {
		t.Errorf("DecodeResponse() error = %v, want parse error status", err)
	}
}
