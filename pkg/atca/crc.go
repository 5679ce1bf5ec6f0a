// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package atca

// CRC-16 configuration used by the chip
const (
	crcPolynomial = 0x8005
	crcInitial    = 0x0000
)

// CRC16 computes the chip's checksum over data. Bits are fed least
// significant first; the result is transmitted little endian.
func CRC16(data []byte) uint16 {
	crc := uint16(crcInitial)
	for _, b := range data {
		for shift := uint8(0x01); shift != 0; shift <<= 1 {
			dataBit := b&shift != 0
			crcBit := crc&0x8000 != 0
			crc <<= 1
			if dataBit != crcBit {
				crc ^= crcPolynomial
			}
		}
	}
	return crc
}
