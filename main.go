// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Cryptoauth - ATECC608 command builder and exchange tool
//
// A CLI tool for building, sending and decoding ATECC608 secure element
// command frames.

package main

import (
	"os"

	"github.com/Thermoquad/cryptoauth/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
