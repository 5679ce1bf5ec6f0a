// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package atca

import (
	"strings"
	"testing"
)

func TestFormatOpCode_AllKnown(t *testing.T) {
	seen := map[string]OpCode{}
	for _, op := range OpCodes {
		name := FormatOpCode(op)
		if name == "UNKNOWN" {
			t.Errorf("FormatOpCode(0x%02X) = UNKNOWN", uint8(op))
		}
		if prev, dup := seen[name]; dup {
			t.Errorf("FormatOpCode(0x%02X) and FormatOpCode(0x%02X) both %q", uint8(op), uint8(prev), name)
		}
		seen[name] = op
		if !op.Valid() {
			t.Errorf("OpCode(0x%02X).Valid() = false", uint8(op))
		}
	}
	if OpCode(0xFE).Valid() || FormatOpCode(0xFE) != "UNKNOWN" {
		t.Error("0xFE treated as a known op-code")
	}
}

func TestFormatMode(t *testing.T) {
	tests := []struct {
		op   OpCode
		mode uint8
		want string
	}{
		{OpRead, 0x82, "data block"},
		{OpWrite, 0x00, "config word"},
		{OpLock, 0x80, "config zone"},
		{OpLock, 0x81, "data zone"},
		{OpLock, 0x96, "slot 5"},
		{OpSha, ShaModeEnd, "end"},
		{OpAes, AesModeDecrypt, "decrypt"},
		{OpInfo, InfoModeRevision, "revision"},
		{OpGenDig, GenDigZoneData, "data zone"},
		{OpCounter, 0x01, "0x01"},
	}

	for _, tt := range tests {
		if got := FormatMode(tt.op, tt.mode); got != tt.want {
			t.Errorf("FormatMode(%s, 0x%02X) = %q, want %q", tt.op, tt.mode, got, tt.want)
		}
	}
}

func TestFormatPacket(t *testing.T) {
	p, err := NewRead(NewPacketBuilder(nil)).Slot(3, 1)
	if err != nil {
		t.Fatalf("Slot() unexpected error: %v", err)
	}
	out := FormatPacket(p)
	for _, want := range []string{"READ (0x02)", "mode=data block", "param2=0x0118", "slot 3 block 1 offset 0", "Frame: 03 07 02 82 18 01"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatPacket() missing %q:\n%s", want, out)
		}
	}
}

func TestFormatResponse(t *testing.T) {
	b := NewPacketBuilder(nil)

	info, _ := NewInfo(b).Revision()
	if out := FormatResponse(info, []byte{0x00, 0x00, 0x60, 0x03}); !strings.Contains(out, "Revision: 00 00 60 03") {
		t.Errorf("FormatResponse(info) = %q", out)
	}

	serial, _ := NewRead(b).Serial()
	block := make([]byte, 32)
	block[0] = 0x01
	block[8] = 0xEE
	if out := FormatResponse(serial, block); !strings.Contains(out, "Serial: 01 00 00 00 EE 00 00 00 00") {
		t.Errorf("FormatResponse(serial) = %q", out)
	}

	lock, _ := NewLock(b).Zone(ZoneData)
	if out := FormatResponse(lock, []byte{0x00}); !strings.Contains(out, "success") {
		t.Errorf("FormatResponse(lock) = %q", out)
	}
}

func TestFormatHex(t *testing.T) {
	if got := FormatHex([]byte{0x0A, 0xFF, 0x00}); got != "0A FF 00" {
		t.Errorf("FormatHex() = %q, want %q", got, "0A FF 00")
	}
	if got := FormatHex(nil); got != "(none)" {
		t.Errorf("FormatHex(nil) = %q, want (none)", got)
	}
}
