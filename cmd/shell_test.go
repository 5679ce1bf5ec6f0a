// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bytes"
	"testing"

	"github.com/Thermoquad/cryptoauth/pkg/atca"
	"github.com/Thermoquad/cryptoauth/pkg/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShell_Offline(t *testing.T) {
	var out bytes.Buffer
	sh := newShell(&out, nil, nil)

	assert.False(t, sh.exec("build sha-start"))
	assert.Contains(t, out.String(), "03 07 47 00 00 00 2E 85")

	out.Reset()
	assert.False(t, sh.exec("send info"))
	assert.Contains(t, out.String(), "no connection")

	out.Reset()
	assert.False(t, sh.exec("parse status 04 0F 23 42"))
	assert.Contains(t, out.String(), "execution error")

	out.Reset()
	assert.False(t, sh.exec("build lock-zone otp"))
	assert.Contains(t, out.String(), "error: atca: lock: bad parameter")

	out.Reset()
	assert.False(t, sh.exec("frobnicate"))
	assert.Contains(t, out.String(), "unknown command")

	assert.False(t, sh.exec("   "))
	assert.True(t, sh.exec("exit"))
}

func TestShell_Send(t *testing.T) {
	reply := mustEncode(t, bytes.Repeat([]byte{0x11}, atca.RandomSize))
	conn := newFakeConn(t, reply)

	var log bytes.Buffer
	var out bytes.Buffer
	sh := newShell(&out, conn, transcript.NewWriter(&log))

	assert.False(t, sh.exec("send random"))
	assert.Contains(t, out.String(), "Random: 11 11")
	assert.Equal(t, uint64(1), sh.stats.Succeeded)

	records, err := transcript.ReadAll(&log)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, atca.OpRandom, records[0].OpCode)

	out.Reset()
	sh.exec("stats")
	assert.Contains(t, out.String(), "Exchanges: 1")
}
