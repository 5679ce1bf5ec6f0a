// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
port: /dev/ttyACM0
baud: 57600
timeout: 500ms
record: exchanges.cbor
websocket:
  url: wss://bridge.local/atecc
  username: admin
  no_ssl_verify: true
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, "/dev/ttyACM0", cfg.Port)
	assert.Equal(t, 57600, cfg.Baud)
	assert.Equal(t, "500ms", cfg.Timeout)
	assert.Equal(t, "wss://bridge.local/atecc", cfg.WebSocket.URL)
	assert.True(t, cfg.WebSocket.NoSSLVerify)
}

func TestParseConfig_Empty(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, Config{}, *cfg)
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"unknown key":   "serial: /dev/ttyUSB0\n",
		"bad timeout":   "timeout: soon\n",
		"negative baud": "baud: -1\n",
		"not yaml":      "port: [\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cryptoauth.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "admin", cfg.WebSocket.Username)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigApply_FlagsWin(t *testing.T) {
	var (
		port    string
		baud    int
		timeout time.Duration
		url     string
		noSSL   bool
	)
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.StringVar(&port, "port", "", "")
	flags.IntVar(&baud, "baud", 115200, "")
	flags.DurationVar(&timeout, "timeout", 2*time.Second, "")
	flags.StringVar(&url, "url", "", "")
	flags.BoolVar(&noSSL, "no-ssl-verify", false, "")
	require.NoError(t, flags.Parse([]string{"--port", "/dev/ttyUSB1"}))

	cfg, err := ParseConfig([]byte(sampleConfig))
	require.NoError(t, err)
	require.NoError(t, cfg.Apply(flags))

	assert.Equal(t, "/dev/ttyUSB1", port, "explicit flag kept")
	assert.Equal(t, 57600, baud)
	assert.Equal(t, 500*time.Millisecond, timeout)
	assert.Equal(t, "wss://bridge.local/atecc", url)
	assert.True(t, noSSL)
}

func TestConfigApply_BadValue(t *testing.T) {
	var record int
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.IntVar(&record, "record", 0, "")

	cfg := &Config{Record: "out.yaml"}
	err := cfg.Apply(flags)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config record")
	assert.Equal(t, 0, record)
}
