// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package atca

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure reported by this package.
type ErrorKind int

// Error kinds
const (
	KindUnknown ErrorKind = iota
	// KindBadParam is a structurally invalid argument: unsupported zone,
	// ineligible slot, address out of range.
	KindBadParam
	// KindInvalidSize is a payload or response whose length does not match
	// what the command requires.
	KindInvalidSize
	// KindUnimplemented is returned by commands whose framing is not supported yet.
	KindUnimplemented
	// KindChecksum is a reply whose CRC does not match its contents.
	KindChecksum

	// Chip status kinds, see StatusKind.
	KindMiscompare
	KindParseError
	KindEccFault
	KindSelfTestError
	KindHealthTestError
	KindExecutionError
	KindWakeReceived
	KindWatchdogExpire
	KindCommError
	KindUnknownStatus
)

var kindNames = map[ErrorKind]string{
	KindUnknown:         "unknown error",
	KindBadParam:        "bad parameter",
	KindInvalidSize:     "invalid size",
	KindUnimplemented:   "unimplemented",
	KindChecksum:        "checksum mismatch",
	KindMiscompare:      "checkmac or verify miscompare",
	KindParseError:      "parse error",
	KindEccFault:        "ecc fault",
	KindSelfTestError:   "self test error",
	KindHealthTestError: "health test error",
	KindExecutionError:  "execution error",
	KindWakeReceived:    "wake received",
	KindWatchdogExpire:  "watchdog about to expire",
	KindCommError:       "communication error",
	KindUnknownStatus:   "unknown status",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("error kind %d", int(k))
}

// Error is the error type returned by builders, parsers and reply decoding.
type Error struct {
	Kind ErrorKind
	// Op names the operation that failed, e.g. "aes encrypt".
	Op string
	// Status is the chip status byte for status kinds.
	Status byte
	Msg    string
}

func (e *Error) Error() string {
	s := "atca: "
	if e.Op != "" {
		s += e.Op + ": "
	}
	s += e.Kind.String()
	if e.Kind >= KindMiscompare {
		s += fmt.Sprintf(" (status 0x%02X)", e.Status)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrBadParam)
// holds for every bad-parameter failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is
var (
	ErrBadParam      = &Error{Kind: KindBadParam}
	ErrInvalidSize   = &Error{Kind: KindInvalidSize}
	ErrUnimplemented = &Error{Kind: KindUnimplemented}
	ErrChecksum      = &Error{Kind: KindChecksum}
)

func newError(kind ErrorKind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func badParam(op, format string, args ...interface{}) *Error {
	return newError(KindBadParam, op, format, args...)
}

func invalidSize(op, format string, args ...interface{}) *Error {
	return newError(KindInvalidSize, op, format, args...)
}

func unimplemented(op string) *Error {
	return &Error{Kind: KindUnimplemented, Op: op}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// StatusKind classifies a chip status byte. StatusSuccess maps to KindUnknown.
func StatusKind(code byte) ErrorKind {
	switch code {
	case StatusSuccess:
		return KindUnknown
	case StatusMiscompare:
		return KindMiscompare
	case StatusParseError:
		return KindParseError
	case StatusEccFault:
		return KindEccFault
	case StatusSelfTestError:
		return KindSelfTestError
	case StatusHealthTestError:
		return KindHealthTestError
	case StatusExecutionError:
		return KindExecutionError
	case StatusWakeReceived:
		return KindWakeReceived
	case StatusWatchdogExpire:
		return KindWatchdogExpire
	case StatusCommError:
		return KindCommError
	default:
		return KindUnknownStatus
	}
}

// StatusError returns the error for a non-success status byte, nil for success.
func StatusError(code byte) error {
	if code == StatusSuccess {
		return nil
	}
	return &Error{Kind: StatusKind(code), Op: "status", Status: code}
}

// IsStatusError reports whether err carries a chip status code.
func IsStatusError(err error) bool {
	return KindOf(err) >= KindMiscompare
}
