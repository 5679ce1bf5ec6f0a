// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package atca

import (
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// Response value sizes
const (
	WordSize            = 4
	BlockSize           = 32
	SerialSize          = 9
	DigestSize          = 32
	SignatureSize       = 64
	PremasterSecretSize = 32
	NonceSize           = 32
)

// Word is a 4-byte value, e.g. the device revision.
type Word [WordSize]byte

// ParseWord copies a 4-byte reply into a Word.
func ParseWord(buf []byte) (Word, error) {
	var w Word
	if len(buf) != WordSize {
		return w, invalidSize("parse word", "got %d bytes, want %d", len(buf), WordSize)
	}
	copy(w[:], buf)
	return w, nil
}

// Bytes returns the word's bytes.
func (w Word) Bytes() []byte { return w[:] }

// Block is a 32-byte memory block.
type Block [BlockSize]byte

// ParseBlock copies a 32-byte reply into a Block.
func ParseBlock(buf []byte) (Block, error) {
	var b Block
	if len(buf) != BlockSize {
		return b, invalidSize("parse block", "got %d bytes, want %d", len(buf), BlockSize)
	}
	copy(b[:], buf)
	return b, nil
}

// Bytes returns the block's bytes.
func (b Block) Bytes() []byte { return b[:] }

// Serial is the chip's unique 9-byte serial number.
type Serial [SerialSize]byte

// ParseSerial extracts the serial number from Config zone block 0. The serial
// is stored in bytes 0-3 and 8-12; the bytes between hold the revision.
func ParseSerial(buf []byte) (Serial, error) {
	var s Serial
	if len(buf) != BlockSize {
		return s, invalidSize("parse serial", "got %d bytes, want %d", len(buf), BlockSize)
	}
	copy(s[0:4], buf[0:4])
	copy(s[4:9], buf[8:13])
	return s, nil
}

// Bytes returns the serial's bytes.
func (s Serial) Bytes() []byte { return s[:] }

// Digest is a SHA-256 output.
type Digest [DigestSize]byte

// ParseDigest copies a 32-byte reply into a Digest.
func ParseDigest(buf []byte) (Digest, error) {
	var d Digest
	if len(buf) != DigestSize {
		return d, invalidSize("parse digest", "got %d bytes, want %d", len(buf), DigestSize)
	}
	copy(d[:], buf)
	return d, nil
}

// Bytes returns the digest's bytes.
func (d Digest) Bytes() []byte { return d[:] }

// Signature is a P-256 ECDSA signature: R then S, each 32 bytes big endian.
// No curve checks are done here; verification is the caller's business.
type Signature [SignatureSize]byte

// ParseSignature copies a 64-byte reply into a Signature.
func ParseSignature(buf []byte) (Signature, error) {
	var s Signature
	if len(buf) != SignatureSize {
		return s, invalidSize("parse signature", "got %d bytes, want %d", len(buf), SignatureSize)
	}
	copy(s[:], buf)
	return s, nil
}

// Bytes returns R||S.
func (s Signature) Bytes() []byte { return s[:] }

// R returns the R integer.
func (s Signature) R() *big.Int { return new(big.Int).SetBytes(s[:32]) }

// S returns the S integer.
func (s Signature) S() *big.Int { return new(big.Int).SetBytes(s[32:]) }

// ASN1 returns the DER encoding of (R, S) as accepted by ecdsa.VerifyASN1.
func (s Signature) ASN1() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(s.R())
		b.AddASN1BigInt(s.S())
	})
	return b.Bytes()
}

// ParseSignatureASN1 converts a DER encoded (R, S) pair into a Signature.
func ParseSignatureASN1(der []byte) (Signature, error) {
	var sig Signature
	r, s := new(big.Int), new(big.Int)
	input := cryptobyte.String(der)
	var inner cryptobyte.String
	if !input.ReadASN1(&inner, asn1.SEQUENCE) || !input.Empty() ||
		!inner.ReadASN1Integer(r) || !inner.ReadASN1Integer(s) || !inner.Empty() {
		return sig, badParam("parse signature", "malformed DER signature")
	}
	if r.Sign() < 0 || s.Sign() < 0 || r.BitLen() > 256 || s.BitLen() > 256 {
		return sig, badParam("parse signature", "integer out of range for P-256")
	}
	r.FillBytes(sig[:32])
	s.FillBytes(sig[32:])
	return sig, nil
}

// PremasterSecret is the 32-byte shared secret produced by ECDH.
type PremasterSecret [PremasterSecretSize]byte

// ParsePremasterSecret copies a 32-byte reply into a PremasterSecret.
func ParsePremasterSecret(buf []byte) (PremasterSecret, error) {
	var p PremasterSecret
	if len(buf) != PremasterSecretSize {
		return p, invalidSize("parse premaster secret", "got %d bytes, want %d", len(buf), PremasterSecretSize)
	}
	copy(p[:], buf)
	return p, nil
}

// Bytes returns the secret's bytes.
func (p PremasterSecret) Bytes() []byte { return p[:] }

// Nonce is a 32-byte nonce or random value.
type Nonce [NonceSize]byte

// ParseNonce copies a 32-byte reply into a Nonce.
func ParseNonce(buf []byte) (Nonce, error) {
	var n Nonce
	if len(buf) != NonceSize {
		return n, invalidSize("parse nonce", "got %d bytes, want %d", len(buf), NonceSize)
	}
	copy(n[:], buf)
	return n, nil
}

// Bytes returns the nonce's bytes.
func (n Nonce) Bytes() []byte { return n[:] }

// Revision returns the device revision packed in an Info reply.
func (w Word) Revision() uint32 {
	return uint32(w[0])<<24 | uint32(w[1])<<16 | uint32(w[2])<<8 | uint32(w[3])
}
