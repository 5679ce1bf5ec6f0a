// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Thermoquad/cryptoauth/pkg/atca"
	"github.com/Thermoquad/cryptoauth/pkg/transcript"
	"github.com/spf13/cobra"
)

var (
	pingCount    int
	pingInterval time.Duration
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Test the link by reading the device revision",
	Long: `Send Info (revision) commands and wait for valid replies.

This verifies that frames reach the chip and that replies come back intact
(count and CRC). Each round trip time is printed, followed by a summary.

Exit codes:
  0 - All pings answered
  1 - One or more pings failed or timed out
  2 - Connection error`,
	RunE: runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
	pingCmd.Flags().IntVar(&pingCount, "count", 3, "Number of pings to send")
	pingCmd.Flags().DurationVar(&pingInterval, "interval", 100*time.Millisecond, "Delay between pings")
}

func runPing(cmd *cobra.Command, args []string) error {
	conn, connInfo, err := OpenConnection()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer conn.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Cryptoauth - Ping\n")
	fmt.Fprintf(out, "Connection: %s\n", connInfo)
	fmt.Fprintf(out, "Timeout: %s per ping\n\n", replyTimeout)

	stats, err := ping(out, conn, pingCount, pingInterval)
	if err != nil {
		return err
	}
	if stats.Succeeded != stats.TotalExchanges {
		os.Exit(1)
	}
	return nil
}

// ping sends count Info commands and prints one line per reply
func ping(w io.Writer, conn Connection, count int, interval time.Duration) (*transcript.Statistics, error) {
	p, err := atca.NewInfo(atca.NewPacketBuilder(nil)).Revision()
	if err != nil {
		return nil, err
	}

	l := newLink(conn)
	stats := transcript.NewStatistics()
	for i := 1; i <= count; i++ {
		fmt.Fprintf(w, "Ping %d/%d: ", i, count)

		res, err := l.exchange(p, replyTimeout)
		var reply []byte
		var elapsed time.Duration
		if res != nil {
			reply, elapsed = res.Reply, res.Duration
			if err == nil {
				err = res.Err
			}
		}
		stats.Update(transcript.NewRecord(p, reply, err, elapsed))

		if err != nil {
			fmt.Fprintf(w, "FAILED: %v\n", err)
		} else {
			word, _ := atca.ParseWord(res.Data)
			fmt.Fprintf(w, "revision 0x%08X, rtt=%v\n", word.Revision(), elapsed.Round(time.Millisecond))
		}

		if i < count {
			time.Sleep(interval)
		}
	}

	fmt.Fprintf(w, "\n--- Ping statistics ---\n")
	fmt.Fprintf(w, "%d pings sent, %d replies, %.0f%% failed\n",
		stats.TotalExchanges, stats.Succeeded, stats.ErrorRate()*100)
	return stats, nil
}
