// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Thermoquad/cryptoauth/pkg/atca"
	"github.com/Thermoquad/cryptoauth/pkg/transcript"
	"github.com/spf13/cobra"
)

var recordPath string

var sendCmd = &cobra.Command{
	Use:   "send <command> [args...]",
	Short: "Send a command frame and decode the reply",
	Long: `Build a command frame, write it to the connection and wait for one reply.

The reply is checked (count, CRC, chip status) and rendered as the value the
command returns. No retries are made; the chip must already be awake.

Commands are the same as for build.

Exit codes:
  0 - Reply received and decoded
  1 - Bad arguments, timeout, or a reply carrying an error
  2 - Connection error`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVar(&recordPath, "record", "", "Append the exchange to a transcript file")
}

func runSend(cmd *cobra.Command, args []string) error {
	p, err := buildFrame(args[0], args[1:])
	if err != nil {
		return err
	}

	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()
	slog.Debug("connected", "connection", connInfo)

	var rec *transcript.Writer
	if recordPath != "" {
		rec, err = transcript.Create(recordPath)
		if err != nil {
			return err
		}
		defer rec.Close()
	}

	return sendFrame(cmd.OutOrStdout(), conn, p, rec)
}

// sendFrame performs one exchange, prints the outcome and records it if rec
// is set. The returned error is the transport or decode failure.
func sendFrame(w io.Writer, conn Connection, p *atca.Packet, rec *transcript.Writer) error {
	fmt.Fprint(w, atca.FormatPacket(p))

	res, err := newLink(conn).exchange(p, replyTimeout)
	if res == nil {
		return err
	}
	if err == nil {
		err = res.Err
	}

	if rec != nil {
		if werr := rec.Write(transcript.NewRecord(p, res.Reply, err, res.Duration)); werr != nil {
			slog.Warn("failed to record exchange", "error", werr)
		}
	}

	if err != nil {
		if len(res.Reply) > 0 {
			fmt.Fprintf(w, "  Reply: %s\n", atca.FormatHex(res.Reply))
		}
		return err
	}

	fmt.Fprintf(w, "  Reply: %s (%s)\n", atca.FormatHex(res.Reply), res.Duration)
	fmt.Fprint(w, atca.FormatResponse(p, res.Data))
	return nil
}
