// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package atca

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// FormatOpCode returns the human-readable name for an op-code
func FormatOpCode(op OpCode) string {
	switch op {
	case OpCheckMac:
		return "CHECKMAC"
	case OpDeriveKey:
		return "DERIVEKEY"
	case OpInfo:
		return "INFO"
	case OpGenDig:
		return "GENDIG"
	case OpGenKey:
		return "GENKEY"
	case OpHMac:
		return "HMAC"
	case OpLock:
		return "LOCK"
	case OpMac:
		return "MAC"
	case OpNonce:
		return "NONCE"
	case OpPause:
		return "PAUSE"
	case OpPrivWrite:
		return "PRIVWRITE"
	case OpRandom:
		return "RANDOM"
	case OpRead:
		return "READ"
	case OpSign:
		return "SIGN"
	case OpUpdateExtra:
		return "UPDATEEXTRA"
	case OpVerify:
		return "VERIFY"
	case OpWrite:
		return "WRITE"
	case OpEcdh:
		return "ECDH"
	case OpCounter:
		return "COUNTER"
	case OpSha:
		return "SHA"
	case OpAes:
		return "AES"
	case OpKdf:
		return "KDF"
	case OpSecureBoot:
		return "SECUREBOOT"
	case OpSelfTest:
		return "SELFTEST"
	default:
		return "UNKNOWN"
	}
}

// FormatMode describes the mode byte of a command
func FormatMode(op OpCode, mode uint8) string {
	switch op {
	case OpRead, OpWrite:
		size := SizeWord
		if mode&modeReadWrite32 != 0 {
			size = SizeBlock
		}
		return fmt.Sprintf("%s %s", Zone(mode&modeZoneMask), size)

	case OpLock:
		switch mode &^ lockNoCRC & 0x03 {
		case lockZoneConfig:
			return "config zone"
		case lockZoneData:
			return "data zone"
		case lockZoneDataSlot:
			return fmt.Sprintf("slot %d", (mode>>2)&0x0F)
		}

	case OpSha:
		switch mode {
		case ShaModeStart:
			return "start"
		case ShaModeUpdate:
			return "update"
		case ShaModeEnd:
			return "end"
		case ShaModePublic:
			return "public"
		}

	case OpAes:
		switch mode {
		case AesModeEncrypt:
			return "encrypt"
		case AesModeDecrypt:
			return "decrypt"
		}

	case OpInfo:
		if mode == InfoModeRevision {
			return "revision"
		}

	case OpRandom:
		if mode == RandomModeSeedUpdate {
			return "seed update"
		}

	case OpGenDig:
		switch mode {
		case GenDigZoneConfig:
			return "config zone"
		case GenDigZoneOtp:
			return "otp zone"
		case GenDigZoneData:
			return "data zone"
		}
	}
	return fmt.Sprintf("0x%02X", mode)
}

// FormatAddress describes a Read/Write address for the zone selected by mode
func FormatAddress(mode uint8, addr uint16) string {
	if Zone(mode&modeZoneMask) == ZoneData {
		return fmt.Sprintf("slot %d block %d offset %d", (addr>>3)&0x0F, addr>>8, addr&0x07)
	}
	return fmt.Sprintf("block %d offset %d", (addr>>3)&0x1F, addr&0x07)
}

// FormatPacket formats a command frame into a human-readable string
func FormatPacket(p *Packet) string {
	op := p.OpCode()
	result := fmt.Sprintf("%s (0x%02X) mode=%s param2=0x%04X len=%d crc=0x%04X\n",
		FormatOpCode(op), uint8(op), FormatMode(op, p.Mode()), p.Param2(), p.Count(), p.CRC())

	switch op {
	case OpRead, OpWrite:
		result += fmt.Sprintf("  Address: %s\n", FormatAddress(p.Mode(), p.Param2()))
	case OpAes, OpGenDig:
		result += fmt.Sprintf("  Key: slot %d\n", p.Param2())
	}

	if data := p.Data(); len(data) > 0 {
		result += fmt.Sprintf("  Data: %s\n", FormatHex(data))
	}
	result += fmt.Sprintf("  Frame: %s\n", FormatHex(p.Bytes()))
	return result
}

// FormatResponse renders reply data as the value type the command returns
func FormatResponse(p *Packet, data []byte) string {
	if p.ResponseLen() == 0 {
		if len(data) == 1 {
			return fmt.Sprintf("  Status: %s\n", FormatStatus(data[0]))
		}
		return fmt.Sprintf("  Data: %s\n", FormatHex(data))
	}

	switch p.OpCode() {
	case OpInfo:
		if w, err := ParseWord(data); err == nil {
			return fmt.Sprintf("  Revision: %s (0x%08X)\n", FormatHex(w.Bytes()), w.Revision())
		}
	case OpSha:
		if d, err := ParseDigest(data); err == nil {
			return fmt.Sprintf("  Digest: %s\n", FormatHex(d.Bytes()))
		}
	case OpRandom:
		if n, err := ParseNonce(data); err == nil {
			return fmt.Sprintf("  Random: %s\n", FormatHex(n.Bytes()))
		}
	case OpAes:
		return fmt.Sprintf("  Block: %s\n", FormatHex(data))
	case OpRead:
		result := fmt.Sprintf("  Data: %s\n", FormatHex(data))
		if Zone(p.Mode()&modeZoneMask) == ZoneConfig && p.Param2() == 0 && len(data) == BlockSize {
			if s, err := ParseSerial(data); err == nil {
				result += fmt.Sprintf("  Serial: %s\n", FormatHex(s.Bytes()))
			}
		}
		return result
	}
	return fmt.Sprintf("  Data: %s\n", FormatHex(data))
}

// FormatStatus returns a status byte with its meaning
func FormatStatus(code byte) string {
	if code == StatusSuccess {
		return "success (0x00)"
	}
	return fmt.Sprintf("%s (0x%02X)", StatusKind(code), code)
}

// FormatHex renders bytes as space separated upper case hex
func FormatHex(b []byte) string {
	if len(b) == 0 {
		return "(none)"
	}
	s := strings.ToUpper(hex.EncodeToString(b))
	var sb strings.Builder
	for i := 0; i < len(s); i += 2 {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(s[i : i+2])
	}
	return sb.String()
}
