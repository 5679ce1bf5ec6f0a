// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"

	"github.com/Thermoquad/cryptoauth/pkg/atca"
	"github.com/Thermoquad/cryptoauth/pkg/transcript"
	"github.com/spf13/cobra"
)

var (
	transcriptStatsOnly bool
	transcriptOpFilter  string
)

var transcriptCmd = &cobra.Command{
	Use:   "transcript <file>",
	Short: "Print a recorded transcript",
	Long: `Print the exchanges recorded with send --record, followed by statistics.

Each exchange is shown with its command frame, raw reply and decoded data or
error. Use --op to show only one command (e.g. --op SHA).`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscript,
}

func init() {
	rootCmd.AddCommand(transcriptCmd)
	transcriptCmd.Flags().BoolVar(&transcriptStatsOnly, "stats", false, "Print statistics only")
	transcriptCmd.Flags().StringVar(&transcriptOpFilter, "op", "", "Only show exchanges for this op-code name")
}

func runTranscript(cmd *cobra.Command, args []string) error {
	records, err := transcript.ReadFile(args[0])
	if err != nil {
		return err
	}
	printTranscript(cmd.OutOrStdout(), records, transcriptOpFilter, transcriptStatsOnly)
	return nil
}

func printTranscript(w io.Writer, records []transcript.Record, opFilter string, statsOnly bool) {
	stats := transcript.NewStatistics()
	for i, r := range records {
		if opFilter != "" && atca.FormatOpCode(r.OpCode) != opFilter {
			continue
		}
		stats.Update(r)
		if statsOnly {
			continue
		}

		fmt.Fprintf(w, "[%s] #%d %s mode=%s param2=0x%04X\n",
			r.Timestamp.Format("15:04:05.000"), i, atca.FormatOpCode(r.OpCode),
			atca.FormatMode(r.OpCode, r.Mode), r.Param2)
		fmt.Fprintf(w, "  Frame: %s\n", atca.FormatHex(r.Command))
		fmt.Fprintf(w, "  Reply: %s\n", atca.FormatHex(r.Response))
		if r.Error != "" {
			fmt.Fprintf(w, "  Error: %s\n", r.Error)
			continue
		}
		if data, err := atca.DecodeResponse(r.Response, nil); err == nil {
			fmt.Fprintf(w, "  Data: %s\n", atca.FormatHex(data))
		}
	}
	fmt.Fprintln(w)
	fmt.Fprint(w, stats.Format())
}
