// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Thermoquad/cryptoauth/pkg/atca"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bridgeServer answers every binary frame with reply, split in two binary
// messages with a text message in between. It requires Basic auth when user
// is set.
func bridgeServer(t *testing.T, user, pass string, reply []byte) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user != "" {
			u, p, ok := r.BasicAuth()
			if !ok || u != user || p != pass {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			mt, _, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if mt != websocket.BinaryMessage {
				continue
			}
			half := len(reply) / 2
			_ = conn.WriteMessage(websocket.BinaryMessage, reply[:half])
			_ = conn.WriteMessage(websocket.TextMessage, []byte("bridge: busy"))
			_ = conn.WriteMessage(websocket.BinaryMessage, reply[half:])
		}
	}))
}

func wsURLFor(s *httptest.Server) string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func TestWebSocketConnection_Exchange(t *testing.T) {
	reply, err := atca.EncodeResponse([]byte{0x00, 0x00, 0x60, 0x03}, nil)
	require.NoError(t, err)
	srv := bridgeServer(t, "admin", "secret", reply)
	defer srv.Close()

	conn, err := OpenWebSocketConnection(wsURLFor(srv), "admin", "secret", false)
	require.NoError(t, err)
	defer conn.Close()

	p, err := atca.NewInfo(atca.NewPacketBuilder(nil)).Revision()
	require.NoError(t, err)

	res, err := newLink(conn).exchange(p, 2*time.Second)
	require.NoError(t, err)
	require.NoError(t, res.Err)
	assert.Equal(t, reply, res.Reply)
	assert.Equal(t, []byte{0x00, 0x00, 0x60, 0x03}, res.Data)
}

func TestOpenWebSocketConnection_Errors(t *testing.T) {
	srv := bridgeServer(t, "admin", "secret", []byte{0x04, 0x00, 0x03, 0x40})
	defer srv.Close()

	_, err := OpenWebSocketConnection(wsURLFor(srv), "admin", "wrong", false)
	assert.ErrorContains(t, err, "HTTP 401")

	_, err = OpenWebSocketConnection("http://example.com", "", "", false)
	assert.ErrorContains(t, err, "unsupported URL scheme")

	_, err = OpenWebSocketConnection("://bad", "", "", false)
	assert.ErrorContains(t, err, "invalid URL")
}

func TestGetPassword_FromEnv(t *testing.T) {
	t.Setenv(PasswordEnv, "hunter2")
	pw, err := GetPassword()
	require.NoError(t, err)
	assert.Equal(t, "hunter2", pw)
}

func TestOpenConnection_NoTarget(t *testing.T) {
	_, _, err := OpenConnection()
	assert.ErrorContains(t, err, "either --port or --url")
}
