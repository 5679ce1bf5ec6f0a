// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config holds flag defaults read from a YAML file.
//
//	port: /dev/ttyUSB0
//	baud: 115200
//	timeout: 2s
//	websocket:
//	  url: wss://bridge.local/atecc
//	  username: admin
//	  no_ssl_verify: true
type Config struct {
	Port      string          `yaml:"port"`
	Baud      int             `yaml:"baud"`
	Timeout   string          `yaml:"timeout"`
	Verbose   bool            `yaml:"verbose"`
	Record    string          `yaml:"record"`
	WebSocket WebSocketConfig `yaml:"websocket"`
}

// WebSocketConfig is the websocket section of Config.
type WebSocketConfig struct {
	URL         string `yaml:"url"`
	Username    string `yaml:"username"`
	NoSSLVerify bool   `yaml:"no_ssl_verify"`
}

// LoadConfig reads and parses a config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML config data. Unknown keys are rejected.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.Baud < 0 {
		return nil, fmt.Errorf("invalid config: baud %d", cfg.Baud)
	}
	if cfg.Timeout != "" {
		if _, err := time.ParseDuration(cfg.Timeout); err != nil {
			return nil, fmt.Errorf("invalid config: timeout: %w", err)
		}
	}
	return &cfg, nil
}

// Apply sets every flag the user did not pass explicitly from the config.
// Flags missing from the set (e.g. --record outside send) are skipped.
func (c *Config) Apply(flags *pflag.FlagSet) error {
	set := func(name, value string) error {
		if value == "" {
			return nil
		}
		f := flags.Lookup(name)
		if f == nil || f.Changed {
			return nil
		}
		if err := f.Value.Set(value); err != nil {
			return fmt.Errorf("config %s: %w", name, err)
		}
		return nil
	}

	baud := ""
	if c.Baud != 0 {
		baud = strconv.Itoa(c.Baud)
	}
	verbose := ""
	if c.Verbose {
		verbose = "true"
	}
	noSSLVerify := ""
	if c.WebSocket.NoSSLVerify {
		noSSLVerify = "true"
	}

	for _, kv := range [][2]string{
		{"port", c.Port},
		{"baud", baud},
		{"timeout", c.Timeout},
		{"verbose", verbose},
		{"record", c.Record},
		{"url", c.WebSocket.URL},
		{"username", c.WebSocket.Username},
		{"no-ssl-verify", noSSLVerify},
	} {
		if err := set(kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}
