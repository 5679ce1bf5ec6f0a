// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package atca

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorIs(t *testing.T) {
	err := badParam("lock", "otp zone cannot be locked")
	wrapped := fmt.Errorf("send: %w", err)

	if !errors.Is(wrapped, ErrBadParam) {
		t.Error("wrapped bad param error does not match ErrBadParam")
	}
	if errors.Is(wrapped, ErrInvalidSize) {
		t.Error("bad param error matches ErrInvalidSize")
	}
	if KindOf(wrapped) != KindBadParam {
		t.Errorf("KindOf() = %s, want %s", KindOf(wrapped), KindBadParam)
	}
	if KindOf(errors.New("other")) != KindUnknown {
		t.Error("KindOf() of a foreign error is not KindUnknown")
	}
}

func TestErrorMessage(t *testing.T) {
	err := invalidSize("aes decrypt", "ciphertext is %d bytes, want %d", 3, 16)
	want := "atca: aes decrypt: invalid size: ciphertext is 3 bytes, want 16"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	status := StatusError(StatusEccFault)
	if !strings.Contains(status.Error(), "status 0x05") {
		t.Errorf("Error() = %q, want status code", status.Error())
	}
}

func TestStatusKind(t *testing.T) {
	tests := []struct {
		code byte
		want ErrorKind
	}{
		{StatusSuccess, KindUnknown},
		{StatusMiscompare, KindMiscompare},
		{StatusParseError, KindParseError},
		{StatusEccFault, KindEccFault},
		{StatusSelfTestError, KindSelfTestError},
		{StatusHealthTestError, KindHealthTestError},
		{StatusExecutionError, KindExecutionError},
		{StatusWakeReceived, KindWakeReceived},
		{StatusWatchdogExpire, KindWatchdogExpire},
		{StatusCommError, KindCommError},
		{0x42, KindUnknownStatus},
	}

	for _, tt := range tests {
		if got := StatusKind(tt.code); got != tt.want {
			t.Errorf("StatusKind(0x%02X) = %s, want %s", tt.code, got, tt.want)
		}
	}

	if StatusError(StatusSuccess) != nil {
		t.Error("StatusError(success) is not nil")
	}
	if !IsStatusError(StatusError(StatusCommError)) {
		t.Error("IsStatusError() false for a status error")
	}
	if IsStatusError(ErrBadParam) {
		t.Error("IsStatusError() true for a parameter error")
	}
}
