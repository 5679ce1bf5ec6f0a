// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Thermoquad/cryptoauth/pkg/atca"
)

// ErrReplyTimeout is returned when no complete reply arrives in time
var ErrReplyTimeout = errors.New("timed out waiting for reply")

// exchangeResult is the outcome of one command/reply round trip
type exchangeResult struct {
	Reply    []byte // raw reply frame, possibly partial on error
	Data     []byte // decoded reply data
	Duration time.Duration
	Err      error // decode error; transport errors are returned separately
}

// ReadReply reads one reply frame: the count byte, then the rest of the frame.
// A nil frame means nothing was read.
func ReadReply(r io.Reader) ([]byte, error) {
	var count [1]byte
	if _, err := io.ReadFull(r, count[:]); err != nil {
		return nil, err
	}
	n := int(count[0])
	if n < atca.ResponseSizeMin {
		return count[:], fmt.Errorf("reply count byte %d below minimum %d", n, atca.ResponseSizeMin)
	}
	frame := make([]byte, n)
	frame[0] = count[0]
	if _, err := io.ReadFull(r, frame[1:]); err != nil {
		return frame, err
	}
	return frame, nil
}

type readResult struct {
	frame []byte
	err   error
}

// link owns the single reader of a connection. Frames are read by one
// goroutine for the lifetime of the connection, so an exchange that gives up
// never leaves a second reader behind.
type link struct {
	conn   Connection
	frames chan readResult
	start  sync.Once
	err    error // terminal read error, set before frames is closed
}

func newLink(conn Connection) *link {
	return &link{conn: conn, frames: make(chan readResult, 4)}
}

func (l *link) readLoop() {
	defer close(l.frames)
	for {
		frame, err := ReadReply(l.conn)
		switch {
		case err == nil:
			l.frames <- readResult{frame: frame}
		case frame == nil && errors.Is(err, ErrReplyTimeout):
			// Idle serial line
		case frame != nil:
			// Garbage or a truncated frame; report it and resync on the next byte
			l.frames <- readResult{frame: frame, err: err}
		default:
			l.err = err
			return
		}
	}
}

// drain drops replies that arrived after an earlier exchange gave up
func (l *link) drain() {
	for {
		select {
		case rr, ok := <-l.frames:
			if !ok {
				return
			}
			slog.Debug("dropped stale reply", "frame", atca.FormatHex(rr.frame), "error", rr.err)
		default:
			return
		}
	}
}

// exchange writes p, waits up to timeout for the reply and decodes it.
// A transport failure is returned as an error; a reply that arrives but fails
// to decode is reported in the result.
func (l *link) exchange(p *atca.Packet, timeout time.Duration) (*exchangeResult, error) {
	l.start.Do(func() { go l.readLoop() })
	l.drain()

	slog.Debug("send", "op", p.OpCode().String(), "frame", atca.FormatHex(p.Bytes()))

	start := time.Now()
	if _, err := l.conn.Write(p.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to write frame: %w", err)
	}

	var timeoutChan <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutChan = timer.C
	}

	select {
	case rr, ok := <-l.frames:
		res := &exchangeResult{Reply: rr.frame, Duration: time.Since(start)}
		if !ok {
			return res, fmt.Errorf("failed to read reply: %w", l.err)
		}
		if rr.err != nil {
			if errors.Is(rr.err, ErrReplyTimeout) {
				return res, ErrReplyTimeout
			}
			return res, fmt.Errorf("failed to read reply: %w", rr.err)
		}
		slog.Debug("recv", "op", p.OpCode().String(), "frame", atca.FormatHex(rr.frame), "elapsed", res.Duration)
		res.Data, res.Err = p.DecodeResponse(rr.frame)
		return res, nil

	case <-timeoutChan:
		return &exchangeResult{Duration: time.Since(start)}, ErrReplyTimeout
	}
}
