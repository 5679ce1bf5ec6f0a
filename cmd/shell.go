// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/Thermoquad/cryptoauth/pkg/atca"
	"github.com/Thermoquad/cryptoauth/pkg/transcript"
	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive command prompt",
	Long: `Start a prompt for building, sending and parsing frames.

Without --port or --url the shell works offline and send is unavailable.
Exchanges made in the shell are recorded when --record is given.`,
	RunE: runShell,
}

func init() {
	rootCmd.AddCommand(shellCmd)
	shellCmd.Flags().StringVar(&recordPath, "record", "", "Append exchanges to a transcript file")
}

// shell executes prompt lines against an optional connection
type shell struct {
	out   io.Writer
	link  *link // nil when offline
	rec   *transcript.Writer
	stats *transcript.Statistics
}

func newShell(out io.Writer, conn Connection, rec *transcript.Writer) *shell {
	sh := &shell{out: out, rec: rec, stats: transcript.NewStatistics()}
	if conn != nil {
		sh.link = newLink(conn)
	}
	return sh
}

func runShell(cmd *cobra.Command, args []string) error {
	var conn Connection
	prompt := "atca> "
	if portName != "" || wsURL != "" {
		var connInfo string
		var err error
		conn, connInfo, err = OpenConnection()
		if err != nil {
			return fmt.Errorf("failed to open connection: %w", err)
		}
		defer conn.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "Connection: %s\n", connInfo)
		prompt = "atca*> "
	}

	var rec *transcript.Writer
	if recordPath != "" {
		var err error
		rec, err = transcript.Create(recordPath)
		if err != nil {
			return err
		}
		defer rec.Close()
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    shellCompleter(),
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	sh := newShell(rl.Stdout(), conn, rec)
	sh.printHelp()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err != nil {
			return nil
		}
		if sh.exec(line) {
			return nil
		}
	}
}

func shellCompleter() *readline.PrefixCompleter {
	names := make([]readline.PrefixCompleterInterface, 0, len(frameCommands))
	for _, name := range frameCommandNames() {
		names = append(names, readline.PcItem(name))
	}
	types := []readline.PrefixCompleterInterface{}
	for _, t := range []string{"status", "word", "block", "serial", "digest", "signature", "nonce", "premaster"} {
		types = append(types, readline.PcItem(t))
	}
	return readline.NewPrefixCompleter(
		readline.PcItem("build", names...),
		readline.PcItem("send", names...),
		readline.PcItem("parse", types...),
		readline.PcItem("stats"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
}

// exec runs one line and reports whether the shell should exit
func (s *shell) exec(line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	args := parts[1:]

	switch strings.ToLower(parts[0]) {
	case "help", "?":
		s.printHelp()

	case "build", "b":
		if len(args) == 0 {
			fmt.Fprintln(s.out, "usage: build <command> [args...]")
			return false
		}
		p, err := buildFrame(args[0], args[1:])
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
			return false
		}
		fmt.Fprint(s.out, atca.FormatPacket(p))

	case "send", "s":
		if s.link == nil {
			fmt.Fprintln(s.out, "error: no connection (start with --port or --url)")
			return false
		}
		if len(args) == 0 {
			fmt.Fprintln(s.out, "usage: send <command> [args...]")
			return false
		}
		p, err := buildFrame(args[0], args[1:])
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
			return false
		}
		s.send(p)

	case "parse", "p":
		if len(args) < 2 {
			fmt.Fprintln(s.out, "usage: parse <type> <hex>")
			return false
		}
		if err := s.parse(args[0], strings.Join(args[1:], "")); err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}

	case "stats":
		fmt.Fprint(s.out, s.stats.Format())

	case "exit", "quit", "q":
		return true

	default:
		fmt.Fprintf(s.out, "unknown command %q, try help\n", parts[0])
	}
	return false
}

func (s *shell) send(p *atca.Packet) {
	res, err := s.link.exchange(p, replyTimeout)
	var reply []byte
	if res != nil {
		reply = res.Reply
		if err == nil {
			err = res.Err
		}
	}
	rec := transcript.NewRecord(p, reply, err, 0)
	if res != nil {
		rec.Duration = res.Duration
	}
	s.stats.Update(rec)
	if s.rec != nil {
		if werr := s.rec.Write(rec); werr != nil {
			fmt.Fprintf(s.out, "warning: failed to record: %v\n", werr)
		}
	}

	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "  Reply: %s\n", atca.FormatHex(res.Reply))
	fmt.Fprint(s.out, atca.FormatResponse(p, res.Data))
}

func (s *shell) parse(kind, hexStr string) error {
	raw, err := parseHex(hexStr)
	if err != nil {
		return err
	}
	data, err := atca.DecodeResponse(raw, nil)
	if err != nil {
		return err
	}
	return renderReply(s.out, kind, data)
}

func (s *shell) printHelp() {
	fmt.Fprintln(s.out, "Commands:")
	fmt.Fprintln(s.out, "  build <command> [args...]   build and show a frame")
	fmt.Fprintln(s.out, "  send <command> [args...]    send a frame and decode the reply")
	fmt.Fprintln(s.out, "  parse <type> <hex>          decode a reply frame")
	fmt.Fprintln(s.out, "  stats                       exchange statistics")
	fmt.Fprintln(s.out, "  exit                        leave the shell")
	fmt.Fprintln(s.out)
	fmt.Fprint(s.out, frameCommandHelp())
}
