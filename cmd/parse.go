// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/Thermoquad/cryptoauth/pkg/atca"
	"github.com/spf13/cobra"
)

var parseDataOnly bool

var parseCmd = &cobra.Command{
	Use:   "parse <type> <hex>",
	Short: "Decode a reply frame",
	Long: `Decode a raw reply frame [count][data][crc] and render its data.

Types:
  status     single status byte
  word       4 bytes (device revision)
  block      32-byte memory block
  serial     9-byte serial number from config block 0
  digest     SHA-256 digest
  signature  64-byte R||S signature, also printed as DER
  nonce      32 random bytes
  premaster  32-byte ECDH shared secret

With --data the hex is taken as bare reply data, without count or CRC.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().BoolVar(&parseDataOnly, "data", false, "Input is reply data without framing")
}

func runParse(cmd *cobra.Command, args []string) error {
	raw, err := parseHex(strings.Join(args[1:], ""))
	if err != nil {
		return err
	}

	data := raw
	if !parseDataOnly {
		data, err = atca.DecodeResponse(raw, nil)
		if err != nil {
			if atca.IsStatusError(err) {
				fmt.Fprintf(cmd.OutOrStdout(), "Status: %s\n", atca.FormatStatus(raw[1]))
			}
			return err
		}
	}
	return renderReply(cmd.OutOrStdout(), args[0], data)
}

// renderReply prints reply data as the named value type
func renderReply(w io.Writer, kind string, data []byte) error {
	switch strings.ToLower(kind) {
	case "status":
		if len(data) != 1 {
			return fmt.Errorf("status reply carries %d bytes, want 1", len(data))
		}
		fmt.Fprintf(w, "Status: %s\n", atca.FormatStatus(data[0]))

	case "word":
		v, err := atca.ParseWord(data)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Word: %s (revision 0x%08X)\n", atca.FormatHex(v.Bytes()), v.Revision())

	case "block":
		v, err := atca.ParseBlock(data)
		if err != nil {
			return err
		}
		for i := 0; i < atca.BlockSize; i += atca.WordSize {
			fmt.Fprintf(w, "Word %d: %s\n", i/atca.WordSize, atca.FormatHex(v[i:i+atca.WordSize]))
		}

	case "serial":
		v, err := atca.ParseSerial(data)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Serial: %s\n", strings.ToUpper(hex.EncodeToString(v.Bytes())))

	case "digest":
		v, err := atca.ParseDigest(data)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Digest: %s\n", hex.EncodeToString(v.Bytes()))

	case "signature":
		v, err := atca.ParseSignature(data)
		if err != nil {
			return err
		}
		der, err := v.ASN1()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "R: %064x\n", v.R())
		fmt.Fprintf(w, "S: %064x\n", v.S())
		fmt.Fprintf(w, "DER: %s\n", hex.EncodeToString(der))

	case "nonce", "random":
		v, err := atca.ParseNonce(data)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Nonce: %s\n", hex.EncodeToString(v.Bytes()))

	case "premaster":
		v, err := atca.ParsePremasterSecret(data)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Premaster secret: %s\n", hex.EncodeToString(v.Bytes()))

	default:
		return fmt.Errorf("unknown reply type %q", kind)
	}
	return nil
}
