// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package atca builds command frames for the ATECC608 secure element and
// decodes its replies.
//
// The package covers the command layer only: packet framing with the chip's
// CRC-16, memory addressing (zone, slot, block, offset), per-command
// builders with their validation rules, and fixed-size response values.
// Moving bytes to and from the chip is left to the caller.
//
// A typical round trip:
//
//	b := atca.NewPacketBuilder(nil)
//	p, err := atca.NewInfo(b).Revision()
//	if err != nil {
//		return err
//	}
//	// write p.Bytes() to the bus, read p.ResponseSize() bytes into raw
//	data, err := p.DecodeResponse(raw)
//	if err != nil {
//		return err
//	}
//	rev, err := atca.ParseWord(data)
package atca

// Frame layout
const (
	// WordAddressCommand is the transmit prefix selecting the command register.
	// It is part of the transport framing and not covered by the CRC.
	WordAddressCommand = 0x03

	// CommandSizeMin is count + opcode + mode + param2 (2) + crc (2).
	CommandSizeMin = 7

	// CommandSizeMax is the largest command the chip accepts.
	CommandSizeMax = 4*36 + CommandSizeMin

	// MaxDataSize is the largest payload a single command can carry.
	MaxDataSize = CommandSizeMax - CommandSizeMin

	// MaxPacketSize is the transmit buffer size needed for any command.
	MaxPacketSize = 1 + CommandSizeMax

	// ResponseSizeMin is count + status + crc (2).
	ResponseSizeMin = 4

	// CRCSize is the size of the trailing checksum.
	CRCSize = 2
)

// Offsets into Packet.Bytes()
const (
	idxWordAddress = 0
	idxCount       = 1
	idxOpcode      = 2
	idxMode        = 3
	idxParam2      = 4
	idxData        = 6
)

// OpCode is a one-byte instruction code of the chip's command set.
type OpCode uint8

// Command op-codes
const (
	OpCheckMac    OpCode = 0x28
	OpDeriveKey   OpCode = 0x1C
	OpInfo        OpCode = 0x30
	OpGenDig      OpCode = 0x15
	OpGenKey      OpCode = 0x40
	OpHMac        OpCode = 0x11
	OpLock        OpCode = 0x17
	OpMac         OpCode = 0x08
	OpNonce       OpCode = 0x16
	OpPause       OpCode = 0x01
	OpPrivWrite   OpCode = 0x46
	OpRandom      OpCode = 0x1B
	OpRead        OpCode = 0x02
	OpSign        OpCode = 0x41
	OpUpdateExtra OpCode = 0x20
	OpVerify      OpCode = 0x45
	OpWrite       OpCode = 0x12
	OpEcdh        OpCode = 0x43
	OpCounter     OpCode = 0x24
	OpSha         OpCode = 0x47
	OpAes         OpCode = 0x51
	OpKdf         OpCode = 0x56
	OpSecureBoot  OpCode = 0x80
	OpSelfTest    OpCode = 0x77
)

// OpCodes lists every op-code of the command set in ascending order.
var OpCodes = [...]OpCode{
	OpPause, OpRead, OpMac, OpHMac, OpWrite, OpGenDig, OpNonce, OpLock,
	OpRandom, OpDeriveKey, OpUpdateExtra, OpCounter, OpCheckMac, OpInfo,
	OpGenKey, OpSign, OpEcdh, OpVerify, OpPrivWrite, OpSha, OpAes, OpKdf,
	OpSelfTest, OpSecureBoot,
}

// String returns the command name, e.g. "SHA".
func (op OpCode) String() string {
	return FormatOpCode(op)
}

// Valid reports whether op belongs to the command set.
func (op OpCode) Valid() bool {
	for _, known := range OpCodes {
		if op == known {
			return true
		}
	}
	return false
}

// Info modes
const (
	InfoModeRevision = 0x00
)

// Lock modes
const (
	lockZoneConfig   = 0x00
	lockZoneData     = 0x01
	lockZoneDataSlot = 0x02
	lockNoCRC        = 0x80
)

// SHA modes
const (
	// ShaModeStart initializes the SHA-256 context; it takes no message.
	ShaModeStart = 0x00

	// ShaModeUpdate adds message bytes to the context.
	ShaModeUpdate = 0x01

	// ShaModeEnd completes the calculation and returns the digest.
	ShaModeEnd = 0x02

	// ShaModePublic adds the 64-byte public key in a slot to the context.
	ShaModePublic = 0x03

	// ShaUpdateMax bounds a single update payload (exclusive).
	ShaUpdateMax = 64
)

// AES modes
const (
	AesModeEncrypt = 0x00
	AesModeDecrypt = 0x01

	// AesBlockSize is the only payload size the AES command accepts.
	AesBlockSize = 16
)

// Random modes
const (
	RandomModeSeedUpdate = 0x00

	// RandomSize is the number of bytes returned by Random.
	RandomSize = 32
)

// GenDig zones
const (
	GenDigZoneConfig = 0x00
	GenDigZoneOtp    = 0x01
	GenDigZoneData   = 0x02
)

// Nonce modes
const (
	NonceModeMask            = 0x03 // bits 2 to 7 are 0
	NonceModeSeedUpdate      = 0x00
	NonceModeNoSeedUpdate    = 0x01
	NonceModeInvalid         = 0x02
	NonceModePassthrough     = 0x03
	NonceModeInputLenMask    = 0x20
	NonceModeInputLen32      = 0x00
	NonceModeInputLen64      = 0x20
	NonceModeTargetMask      = 0xC0
	NonceModeTargetTempKey   = 0x00
	NonceModeTargetMsgDigBuf = 0x40
	NonceModeTargetAltKeyBuf = 0x80
)

// Sign modes
const (
	SignNonceTargetMsgDigBuf = 0x00
	SignModeSourceMsgDigBuf  = 0x00
)

// Chip status codes carried in a 4-byte reply
const (
	StatusSuccess         = 0x00
	StatusMiscompare      = 0x01
	StatusParseError      = 0x03
	StatusEccFault        = 0x05
	StatusSelfTestError   = 0x07
	StatusHealthTestError = 0x08
	StatusExecutionError  = 0x0F
	StatusWakeReceived    = 0x11
	StatusWatchdogExpire  = 0xEE
	StatusCommError       = 0xFF
)
