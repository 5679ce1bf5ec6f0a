// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package atca

import "fmt"

// Size is a transfer granularity for memory reads and writes.
type Size int

// Transfer sizes
const (
	SizeWord  Size = 4
	SizeBlock Size = 32
)

// Len returns the number of bytes moved by one transfer of this size.
func (s Size) Len() int {
	return int(s)
}

func (s Size) String() string {
	switch s {
	case SizeWord:
		return "word"
	case SizeBlock:
		return "block"
	default:
		return fmt.Sprintf("size(%d)", int(s))
	}
}

// Valid reports whether s is one of the chip's transfer sizes.
func (s Size) Valid() bool {
	return s == SizeWord || s == SizeBlock
}

// Zone is a region of the chip's memory.
type Zone uint8

// Memory zones, values are the zone selector bits of the mode byte.
const (
	ZoneConfig Zone = 0x00
	ZoneOtp    Zone = 0x01
	ZoneData   Zone = 0x02
)

const (
	modeZoneMask    = 0x03
	modeReadWrite32 = 0x80

	wordsPerBlock = 8

	configZoneBlocks = 4 // 128 bytes
	otpZoneBlocks    = 2 // 64 bytes
)

func (z Zone) String() string {
	switch z {
	case ZoneConfig:
		return "config"
	case ZoneOtp:
		return "otp"
	case ZoneData:
		return "data"
	default:
		return fmt.Sprintf("zone(%d)", uint8(z))
	}
}

// Valid reports whether z names one of the chip's zones.
func (z Zone) Valid() bool {
	return z == ZoneConfig || z == ZoneOtp || z == ZoneData
}

// Blocks returns the number of 32-byte blocks in a Config or Otp zone.
// The Data zone is sized per slot, see Slot.Blocks.
func (z Zone) Blocks() int {
	switch z {
	case ZoneConfig:
		return configZoneBlocks
	case ZoneOtp:
		return otpZoneBlocks
	default:
		return 0
	}
}

// Addr returns the address of a word inside the Config or Otp zone. offset is
// a word index within the block. Data zone locations need a slot, use SlotAddr.
func (z Zone) Addr(block, offset uint8) (uint16, error) {
	switch z {
	case ZoneConfig, ZoneOtp:
		if int(block) >= z.Blocks() {
			return 0, badParam("address", "block %d out of range for %s zone (max %d)", block, z, z.Blocks()-1)
		}
		if offset >= wordsPerBlock {
			return 0, badParam("address", "word offset %d out of range (max %d)", offset, wordsPerBlock-1)
		}
		return uint16(block)<<3 | uint16(offset), nil
	case ZoneData:
		return 0, badParam("address", "data zone requires slot addressing")
	default:
		return 0, badParam("address", "unknown zone 0x%02X", uint8(z))
	}
}

// SlotAddr returns the address of a block inside a Data zone slot.
func (z Zone) SlotAddr(slot Slot, block uint8) (uint16, error) {
	if z != ZoneData {
		return 0, badParam("slot address", "%s zone has no slots", z)
	}
	if !slot.Valid() {
		return 0, badParam("slot address", "slot %d out of range (max %d)", slot, MaxSlot)
	}
	if int(block) >= slot.Blocks() {
		return 0, badParam("slot address", "block %d out of range for slot %d (max %d)", block, slot, slot.Blocks()-1)
	}
	return uint16(slot)<<3 | uint16(block)<<8, nil
}

// Encode returns the mode byte for a read or write of the given size.
func (z Zone) Encode(size Size) uint8 {
	mode := uint8(z) & modeZoneMask
	if size == SizeBlock {
		mode |= modeReadWrite32
	}
	return mode
}

// LockMode returns the Lock command mode for locking the whole zone.
// The Otp zone is locked together with Data and cannot be a lock target.
func (z Zone) LockMode() (uint8, error) {
	switch z {
	case ZoneConfig:
		return lockZoneConfig | lockNoCRC, nil
	case ZoneData:
		return lockZoneData | lockNoCRC, nil
	default:
		return 0, badParam("lock", "%s zone cannot be locked", z)
	}
}

// Slot identifies a key or data slot in the Data zone.
type Slot uint8

// MaxSlot is the highest slot number.
const MaxSlot Slot = 15

// ParseSlot converts an integer into a Slot.
func ParseSlot(n int) (Slot, error) {
	if n < 0 || n > int(MaxSlot) {
		return 0, badParam("slot", "slot %d out of range (0-%d)", n, MaxSlot)
	}
	return Slot(n), nil
}

// Valid reports whether s is within the slot range.
func (s Slot) Valid() bool {
	return s <= MaxSlot
}

// IsPrivateKey reports whether the slot can hold private or symmetric key
// material. Slots 0-7 are the key slots.
func (s Slot) IsPrivateKey() bool {
	return s < 8
}

// Size returns the slot capacity in bytes.
func (s Slot) Size() int {
	switch {
	case s < 8:
		return 36
	case s == 8:
		return 416
	case s <= MaxSlot:
		return 72
	default:
		return 0
	}
}

// Blocks returns the number of 32-byte blocks needed to cover the slot.
func (s Slot) Blocks() int {
	return (s.Size() + SizeBlock.Len() - 1) / SizeBlock.Len()
}

// LockMode returns the Lock command mode for locking this slot alone.
func (s Slot) LockMode() (uint8, error) {
	if !s.Valid() {
		return 0, badParam("lock", "slot %d out of range (max %d)", s, MaxSlot)
	}
	return uint8(s)<<2 | lockZoneDataSlot | lockNoCRC, nil
}
