// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package atca

// Command builders wrap a PacketBuilder and expose one method per command
// variant. Each method validates its arguments, computes address and mode,
// and returns a finished Packet. Most commands reply with a status byte only;
// the reply type of data-returning commands is noted on the method.

// Info builds Info commands.
type Info struct{ b PacketBuilder }

// NewInfo returns an Info builder.
func NewInfo(b PacketBuilder) Info { return Info{b} }

// Revision reads the device revision. The reply is a Word.
func (c Info) Revision() (*Packet, error) {
	return c.b.Opcode(OpInfo).
		Mode(InfoModeRevision).
		ResponseLength(SizeWord.Len()).
		Build()
}

// Lock builds Lock commands.
type Lock struct{ b PacketBuilder }

// NewLock returns a Lock builder.
func NewLock(b PacketBuilder) Lock { return Lock{b} }

// Zone locks the Config or Data zone. Otp is rejected with ErrBadParam.
func (c Lock) Zone(zone Zone) (*Packet, error) {
	mode, err := zone.LockMode()
	if err != nil {
		return nil, err
	}
	return c.b.Opcode(OpLock).Mode(mode).Build()
}

// Slot locks a single Data zone slot.
func (c Lock) Slot(slot Slot) (*Packet, error) {
	mode, err := slot.LockMode()
	if err != nil {
		return nil, err
	}
	return c.b.Opcode(OpLock).Mode(mode).Build()
}

// Read builds Read commands.
type Read struct{ b PacketBuilder }

// NewRead returns a Read builder.
func NewRead(b PacketBuilder) Read { return Read{b} }

// Slot reads one block of a Data zone slot. The reply is a Block.
func (c Read) Slot(slot Slot, block uint8) (*Packet, error) {
	addr, err := ZoneData.SlotAddr(slot, block)
	if err != nil {
		return nil, err
	}
	return c.b.Opcode(OpRead).
		Mode(ZoneData.Encode(SizeBlock)).
		Param2(addr).
		ResponseLength(SizeBlock.Len()).
		Build()
}

// Read reads a word or block of the Config or Otp zone. The reply is a Word
// or a Block depending on size.
func (c Read) Read(zone Zone, size Size, block, offset uint8) (*Packet, error) {
	if !size.Valid() {
		return nil, badParam("read", "unsupported size %d", int(size))
	}
	addr, err := zone.Addr(block, offset)
	if err != nil {
		return nil, err
	}
	return c.b.Opcode(OpRead).
		Mode(zone.Encode(size)).
		Param2(addr).
		ResponseLength(size.Len()).
		Build()
}

// Serial reads the first Config zone block, which holds the serial number.
// Parse the reply data with ParseSerial.
func (c Read) Serial() (*Packet, error) {
	return c.Read(ZoneConfig, SizeBlock, 0, 0)
}

// Write builds Write commands.
type Write struct{ b PacketBuilder }

// NewWrite returns a Write builder.
func NewWrite(b PacketBuilder) Write { return Write{b} }

// Slot writes one block of a Data zone slot.
func (c Write) Slot(slot Slot, block uint8, data Block) (*Packet, error) {
	addr, err := ZoneData.SlotAddr(slot, block)
	if err != nil {
		return nil, err
	}
	return c.b.Opcode(OpWrite).
		Mode(ZoneData.Encode(SizeBlock)).
		Param2(addr).
		Data(data[:]).
		Build()
}

// Write writes a word or block to the Config or Otp zone. data must be
// exactly size.Len() bytes.
func (c Write) Write(zone Zone, size Size, block, offset uint8, data []byte) (*Packet, error) {
	if !size.Valid() {
		return nil, badParam("write", "unsupported size %d", int(size))
	}
	if len(data) != size.Len() {
		return nil, badParam("write", "data is %d bytes, %s needs %d", len(data), size, size.Len())
	}
	addr, err := zone.Addr(block, offset)
	if err != nil {
		return nil, err
	}
	return c.b.Opcode(OpWrite).
		Mode(zone.Encode(size)).
		Param2(addr).
		Data(data).
		Build()
}

// Sha builds SHA-256 commands. A hash is computed by Start, any number of
// Update calls, then End. The chip enforces the order; each call here only
// produces an independent frame.
type Sha struct{ b PacketBuilder }

// NewSha returns a Sha builder.
func NewSha(b PacketBuilder) Sha { return Sha{b} }

// Start resets the chip's SHA context.
func (c Sha) Start() (*Packet, error) {
	return c.b.Opcode(OpSha).Mode(ShaModeStart).Build()
}

// Update feeds fewer than 64 bytes into the context.
func (c Sha) Update(data []byte) (*Packet, error) {
	if len(data) >= ShaUpdateMax {
		return nil, badParam("sha update", "data is %d bytes, must be under %d", len(data), ShaUpdateMax)
	}
	return c.b.Opcode(OpSha).
		Mode(ShaModeUpdate).
		Param2(uint16(len(data))).
		Data(data).
		Build()
}

// End completes the hash. The reply is a Digest.
func (c Sha) End() (*Packet, error) {
	return c.b.Opcode(OpSha).
		Mode(ShaModeEnd).
		ResponseLength(DigestSize).
		Build()
}

// Aes builds AES-128 ECB commands keyed by a slot.
type Aes struct{ b PacketBuilder }

// NewAes returns an Aes builder.
func NewAes(b PacketBuilder) Aes { return Aes{b} }

// Encrypt encrypts up to 16 bytes, zero padded to a full block. The reply is
// the 16-byte ciphertext.
func (c Aes) Encrypt(slot Slot, plaintext []byte) (*Packet, error) {
	if !slot.IsPrivateKey() {
		return nil, badParam("aes encrypt", "slot %d does not hold key material", slot)
	}
	if len(plaintext) > AesBlockSize {
		return nil, invalidSize("aes encrypt", "plaintext is %d bytes (max %d)", len(plaintext), AesBlockSize)
	}
	return c.b.Opcode(OpAes).
		Mode(AesModeEncrypt).
		Param2(uint16(slot)).
		Data(plaintext).
		DataLength(AesBlockSize).
		ResponseLength(AesBlockSize).
		Build()
}

// Decrypt decrypts exactly 16 bytes. The reply is the 16-byte plaintext.
func (c Aes) Decrypt(slot Slot, ciphertext []byte) (*Packet, error) {
	if !slot.IsPrivateKey() {
		return nil, badParam("aes decrypt", "slot %d does not hold key material", slot)
	}
	if len(ciphertext) != AesBlockSize {
		return nil, invalidSize("aes decrypt", "ciphertext is %d bytes, want %d", len(ciphertext), AesBlockSize)
	}
	return c.b.Opcode(OpAes).
		Mode(AesModeDecrypt).
		Param2(uint16(slot)).
		Data(ciphertext).
		DataLength(AesBlockSize).
		ResponseLength(AesBlockSize).
		Build()
}

// Random builds Random commands.
type Random struct{ b PacketBuilder }

// NewRandom returns a Random builder.
func NewRandom(b PacketBuilder) Random { return Random{b} }

// Random requests 32 random bytes and updates the RNG seed.
func (c Random) Random() (*Packet, error) {
	return c.b.Opcode(OpRandom).
		Mode(RandomModeSeedUpdate).
		ResponseLength(RandomSize).
		Build()
}

// GenDig builds GenDig commands.
type GenDig struct{ b PacketBuilder }

// NewGenDig returns a GenDig builder.
func NewGenDig(b PacketBuilder) GenDig { return GenDig{b} }

// GenDig combines the key in keyID with TempKey using SHA-256. TempKey must
// already hold a valid nonce; sequencing the Nonce command is up to the caller.
func (c GenDig) GenDig(keyID Slot) (*Packet, error) {
	if !keyID.Valid() {
		return nil, badParam("gendig", "key id %d out of range (max %d)", keyID, MaxSlot)
	}
	return c.b.Opcode(OpGenDig).
		Mode(GenDigZoneData).
		Param2(uint16(keyID)).
		Build()
}

// NonceCmd builds Nonce commands. Its operations are not supported yet; the
// order in which nonces must be loaded relative to Aes and Sign is still open.
type NonceCmd struct{ b PacketBuilder }

// NewNonceCmd returns a Nonce builder.
func NewNonceCmd(b PacketBuilder) NonceCmd { return NonceCmd{b} }

// Nonce combines a host-supplied value with an internal random number.
func (c NonceCmd) Nonce() (*Packet, error) { return nil, unimplemented("nonce") }

// Load writes a fixed value directly into TempKey or the message digest buffer.
func (c NonceCmd) Load() (*Packet, error) { return nil, unimplemented("nonce load") }

// Rand generates a fresh random nonce and returns the random number.
func (c NonceCmd) Rand() (*Packet, error) { return nil, unimplemented("nonce rand") }

// Challenge loads a host challenge into TempKey without mixing in randomness.
func (c NonceCmd) Challenge() (*Packet, error) { return nil, unimplemented("nonce challenge") }

// ChallengeSeedUpdate loads a challenge and updates the internal RNG seed.
func (c NonceCmd) ChallengeSeedUpdate() (*Packet, error) {
	return nil, unimplemented("nonce challenge seed update")
}

// Sign builds Sign commands. Not supported yet.
type Sign struct{ b PacketBuilder }

// NewSign returns a Sign builder.
func NewSign(b PacketBuilder) Sign { return Sign{b} }

// External signs a digest previously loaded into the message digest buffer.
// The reply would be a Signature.
func (c Sign) External(keyID Slot) (*Packet, error) {
	return nil, unimplemented("sign external")
}

// GenKey builds GenKey commands. Not supported yet.
type GenKey struct{ b PacketBuilder }

// NewGenKey returns a GenKey builder.
func NewGenKey(b PacketBuilder) GenKey { return GenKey{b} }

// Private generates a private key in keyID and returns its public key.
func (c GenKey) Private(keyID Slot) (*Packet, error) {
	return nil, unimplemented("genkey private")
}

// Public recomputes the public key of the private key in keyID.
func (c GenKey) Public(keyID Slot) (*Packet, error) {
	return nil, unimplemented("genkey public")
}
