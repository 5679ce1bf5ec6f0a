// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Thermoquad/cryptoauth/pkg/atca"
)

// frameCommand maps a CLI command name and its arguments to a frame builder
type frameCommand struct {
	Name  string
	Usage string // argument synopsis
	Help  string
	NArgs int
	Build func(b atca.PacketBuilder, args []string) (*atca.Packet, error)
}

var frameCommands = indexFrameCommands(frameCommandTable())

func indexFrameCommands(list []frameCommand) map[string]frameCommand {
	m := make(map[string]frameCommand, len(list))
	for _, c := range list {
		m[c.Name] = c
	}
	return m
}

// lookupFrameCommand finds a command by name and checks its argument count
func lookupFrameCommand(name string, args []string) (frameCommand, error) {
	c, ok := frameCommands[name]
	if !ok {
		return c, fmt.Errorf("unknown command %q (one of: %s)", name, strings.Join(frameCommandNames(), ", "))
	}
	if len(args) != c.NArgs {
		return c, fmt.Errorf("%s takes %d argument(s): %s %s", name, c.NArgs, name, c.Usage)
	}
	return c, nil
}

// buildFrame builds the frame for a named command with a fresh builder
func buildFrame(name string, args []string) (*atca.Packet, error) {
	c, err := lookupFrameCommand(name, args)
	if err != nil {
		return nil, err
	}
	return c.Build(atca.NewPacketBuilder(nil), args)
}

func frameCommandNames() []string {
	names := make([]string, 0, len(frameCommands))
	for name := range frameCommands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// frameCommandHelp lists the commands for cobra's Long text
func frameCommandHelp() string {
	var b strings.Builder
	for _, name := range frameCommandNames() {
		c := frameCommands[name]
		fmt.Fprintf(&b, "  %-36s %s\n", strings.TrimSpace(c.Name+" "+c.Usage), c.Help)
	}
	return b.String()
}

//////////////////////////////////////////////////////////////
// Argument parsing
//////////////////////////////////////////////////////////////

func parseZone(s string) (atca.Zone, error) {
	switch strings.ToLower(s) {
	case "config", "0":
		return atca.ZoneConfig, nil
	case "otp", "1":
		return atca.ZoneOtp, nil
	case "data", "2":
		return atca.ZoneData, nil
	}
	return 0, fmt.Errorf("invalid zone %q (config, otp or data)", s)
}

func parseSize(s string) (atca.Size, error) {
	switch strings.ToLower(s) {
	case "word", "4":
		return atca.SizeWord, nil
	case "block", "32":
		return atca.SizeBlock, nil
	}
	return 0, fmt.Errorf("invalid size %q (word or block)", s)
}

func parseUint8(name, s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return uint8(v), nil
}

func parseSlotArg(s string) (atca.Slot, error) {
	v, err := strconv.ParseInt(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid slot %q: %w", s, err)
	}
	return atca.ParseSlot(int(v))
}

// parseHex accepts hex with optional spaces, colons or a 0x prefix
func parseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	s = strings.NewReplacer(" ", "", ":", "", "\t", "", "\n", "").Replace(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return b, nil
}

//////////////////////////////////////////////////////////////
// Command table
//////////////////////////////////////////////////////////////

func frameCommandTable() []frameCommand {
	return []frameCommand{
		{
			Name: "info", Help: "read the device revision",
			Build: func(b atca.PacketBuilder, args []string) (*atca.Packet, error) {
				return atca.NewInfo(b).Revision()
			},
		},

		{
			Name: "lock-zone", Usage: "<zone>", NArgs: 1, Help: "lock the config or data zone",
			Build: func(b atca.PacketBuilder, args []string) (*atca.Packet, error) {
				zone, err := parseZone(args[0])
				if err != nil {
					return nil, err
				}
				return atca.NewLock(b).Zone(zone)
			},
		},

		{
			Name: "lock-slot", Usage: "<slot>", NArgs: 1, Help: "lock one data zone slot",
			Build: func(b atca.PacketBuilder, args []string) (*atca.Packet, error) {
				slot, err := parseSlotArg(args[0])
				if err != nil {
					return nil, err
				}
				return atca.NewLock(b).Slot(slot)
			},
		},

		{
			Name: "read", Usage: "<zone> <size> <block> <offset>", NArgs: 4, Help: "read a config or otp word/block",
			Build: func(b atca.PacketBuilder, args []string) (*atca.Packet, error) {
				zone, size, block, offset, err := parseZoneArgs(args)
				if err != nil {
					return nil, err
				}
				return atca.NewRead(b).Read(zone, size, block, offset)
			},
		},

		{
			Name: "read-slot", Usage: "<slot> <block>", NArgs: 2, Help: "read one block of a data slot",
			Build: func(b atca.PacketBuilder, args []string) (*atca.Packet, error) {
				slot, block, err := parseSlotBlock(args)
				if err != nil {
					return nil, err
				}
				return atca.NewRead(b).Slot(slot, block)
			},
		},

		{
			Name: "read-serial", Help: "read config block 0 (serial number)",
			Build: func(b atca.PacketBuilder, args []string) (*atca.Packet, error) {
				return atca.NewRead(b).Serial()
			},
		},

		{
			Name: "write", Usage: "<zone> <size> <block> <offset> <hex>", NArgs: 5, Help: "write a config or otp word/block",
			Build: func(b atca.PacketBuilder, args []string) (*atca.Packet, error) {
				zone, size, block, offset, err := parseZoneArgs(args[:4])
				if err != nil {
					return nil, err
				}
				data, err := parseHex(args[4])
				if err != nil {
					return nil, err
				}
				return atca.NewWrite(b).Write(zone, size, block, offset, data)
			},
		},

		{
			Name: "write-slot", Usage: "<slot> <block> <hex>", NArgs: 3, Help: "write one 32-byte block of a data slot",
			Build: func(b atca.PacketBuilder, args []string) (*atca.Packet, error) {
				slot, block, err := parseSlotBlock(args[:2])
				if err != nil {
					return nil, err
				}
				data, err := parseHex(args[2])
				if err != nil {
					return nil, err
				}
				blk, err := atca.ParseBlock(data)
				if err != nil {
					return nil, err
				}
				return atca.NewWrite(b).Slot(slot, block, blk)
			},
		},

		{
			Name: "sha-start", Help: "start a SHA-256 computation",
			Build: func(b atca.PacketBuilder, args []string) (*atca.Packet, error) {
				return atca.NewSha(b).Start()
			},
		},

		{
			Name: "sha-update", Usage: "<hex>", NArgs: 1, Help: "feed up to 63 bytes into SHA-256",
			Build: func(b atca.PacketBuilder, args []string) (*atca.Packet, error) {
				data, err := parseHex(args[0])
				if err != nil {
					return nil, err
				}
				return atca.NewSha(b).Update(data)
			},
		},

		{
			Name: "sha-end", Help: "finish SHA-256 and return the digest",
			Build: func(b atca.PacketBuilder, args []string) (*atca.Packet, error) {
				return atca.NewSha(b).End()
			},
		},

		{
			Name: "aes-encrypt", Usage: "<slot> <hex>", NArgs: 2, Help: "AES-128 encrypt up to 16 bytes",
			Build: func(b atca.PacketBuilder, args []string) (*atca.Packet, error) {
				slot, data, err := parseSlotHex(args)
				if err != nil {
					return nil, err
				}
				return atca.NewAes(b).Encrypt(slot, data)
			},
		},

		{
			Name: "aes-decrypt", Usage: "<slot> <hex>", NArgs: 2, Help: "AES-128 decrypt 16 bytes",
			Build: func(b atca.PacketBuilder, args []string) (*atca.Packet, error) {
				slot, data, err := parseSlotHex(args)
				if err != nil {
					return nil, err
				}
				return atca.NewAes(b).Decrypt(slot, data)
			},
		},

		{
			Name: "random", Help: "request 32 random bytes",
			Build: func(b atca.PacketBuilder, args []string) (*atca.Packet, error) {
				return atca.NewRandom(b).Random()
			},
		},

		{
			Name: "gendig", Usage: "<slot>", NArgs: 1, Help: "mix a data slot key into TempKey",
			Build: func(b atca.PacketBuilder, args []string) (*atca.Packet, error) {
				slot, err := parseSlotArg(args[0])
				if err != nil {
					return nil, err
				}
				return atca.NewGenDig(b).GenDig(slot)
			},
		},
	}
}

func parseZoneArgs(args []string) (atca.Zone, atca.Size, uint8, uint8, error) {
	zone, err := parseZone(args[0])
	if err != nil {
		return 0, 0, 0, 0, err
	}
	size, err := parseSize(args[1])
	if err != nil {
		return 0, 0, 0, 0, err
	}
	block, err := parseUint8("block", args[2])
	if err != nil {
		return 0, 0, 0, 0, err
	}
	offset, err := parseUint8("offset", args[3])
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return zone, size, block, offset, nil
}

func parseSlotBlock(args []string) (atca.Slot, uint8, error) {
	slot, err := parseSlotArg(args[0])
	if err != nil {
		return 0, 0, err
	}
	block, err := parseUint8("block", args[1])
	if err != nil {
		return 0, 0, err
	}
	return slot, block, nil
}

func parseSlotHex(args []string) (atca.Slot, []byte, error) {
	slot, err := parseSlotArg(args[0])
	if err != nil {
		return 0, nil, err
	}
	data, err := parseHex(args[1])
	if err != nil {
		return 0, nil, err
	}
	return slot, data, nil
}
