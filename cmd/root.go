// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Exchange and output flags
	replyTimeout time.Duration
	verbose      bool
	configPath   string
)

var rootCmd = &cobra.Command{
	Use:   "cryptoauth",
	Short: "ATECC608 command builder and exchange tool",
	Long: `Cryptoauth - A CLI tool for building, sending and decoding ATECC608
secure element command frames.

Frames can be built and inspected offline, decoded from captured replies, or
sent to a chip behind a serial bridge or a WebSocket bridge.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

Defaults may be kept in a YAML file passed with --config. Flags given on the
command line override the file.

For WebSocket authentication, the password is read from the CRYPTOAUTH_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version:           "0.3.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().DurationVar(&replyTimeout, "timeout", 2*time.Second, "Time to wait for a reply frame")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log frames and replies at debug level")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML file with default flag values")
}

// setup loads the config file and installs the logger before any command runs
func setup(cmd *cobra.Command, args []string) error {
	if configPath != "" {
		cfg, err := LoadConfig(configPath)
		if err != nil {
			return err
		}
		if err := cfg.Apply(cmd.Flags()); err != nil {
			return err
		}
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
