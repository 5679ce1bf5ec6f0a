// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/cryptoauth/pkg/atca"
	"github.com/spf13/cobra"
)

var buildRaw bool

var buildCmd = &cobra.Command{
	Use:   "build <command> [args...]",
	Short: "Build a command frame and print it",
	Long: `Build the transmit frame for a command without sending it.

The frame is printed as hex, word address first, followed by a breakdown of
its fields. With --raw only the hex is printed.

Commands:
` + frameCommandHelp() + `
Zones are config, otp or data. Sizes are word or block. Numbers accept 0x
prefixes. Hex data may contain spaces or colons.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().BoolVar(&buildRaw, "raw", false, "Print only the frame hex")
}

func runBuild(cmd *cobra.Command, args []string) error {
	p, err := buildFrame(args[0], args[1:])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if buildRaw {
		fmt.Fprintln(out, atca.FormatHex(p.Bytes()))
		return nil
	}
	fmt.Fprint(out, atca.FormatPacket(p))
	fmt.Fprintf(out, "  Reply: %d bytes\n", p.ResponseSize())
	return nil
}
