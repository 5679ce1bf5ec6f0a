// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transcript

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Thermoquad/cryptoauth/pkg/atca"
)

// Statistics tracks exchange counts and error rates over a transcript
type Statistics struct {
	StartTime time.Time
	EndTime   time.Time

	// Counters
	TotalExchanges uint64
	Succeeded      uint64
	ChecksumErrors uint64
	SizeErrors     uint64
	StatusErrors   uint64
	OtherErrors    uint64

	PerOpCode map[atca.OpCode]uint64
	PerStatus map[atca.ErrorKind]uint64
	Sessions  map[string]uint64

	// Average round trip of exchanges that carried a duration
	AverageDuration time.Duration
	totalDuration   time.Duration
	timedExchanges  uint64
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	return &Statistics{
		PerOpCode: make(map[atca.OpCode]uint64),
		PerStatus: make(map[atca.ErrorKind]uint64),
		Sessions:  make(map[string]uint64),
	}
}

// Update counts one record
func (s *Statistics) Update(r Record) {
	s.TotalExchanges++
	s.PerOpCode[r.OpCode]++
	if r.Session != "" {
		s.Sessions[r.Session]++
	}

	if s.StartTime.IsZero() || r.Timestamp.Before(s.StartTime) {
		s.StartTime = r.Timestamp
	}
	if r.Timestamp.After(s.EndTime) {
		s.EndTime = r.Timestamp
	}

	if r.Duration > 0 {
		s.totalDuration += r.Duration
		s.timedExchanges++
		s.AverageDuration = s.totalDuration / time.Duration(s.timedExchanges)
	}

	if r.Error == "" {
		s.Succeeded++
		return
	}

	switch {
	case r.ErrorKind == atca.KindChecksum:
		s.ChecksumErrors++
	case r.ErrorKind == atca.KindInvalidSize:
		s.SizeErrors++
	case r.ErrorKind >= atca.KindMiscompare:
		s.StatusErrors++
		s.PerStatus[r.ErrorKind]++
	default:
		s.OtherErrors++
	}
}

// Collect builds statistics for a set of records
func Collect(records []Record) *Statistics {
	s := NewStatistics()
	for _, r := range records {
		s.Update(r)
	}
	return s
}

// ErrorRate returns the fraction of failed exchanges
func (s *Statistics) ErrorRate() float64 {
	if s.TotalExchanges == 0 {
		return 0
	}
	return float64(s.TotalExchanges-s.Succeeded) / float64(s.TotalExchanges)
}

// Format returns a human-readable summary
func (s *Statistics) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Exchanges: %d (ok %d, failed %d, %.1f%% error rate)\n",
		s.TotalExchanges, s.Succeeded, s.TotalExchanges-s.Succeeded, s.ErrorRate()*100)
	if len(s.Sessions) > 0 {
		fmt.Fprintf(&b, "Sessions: %d\n", len(s.Sessions))
	}
	if !s.StartTime.IsZero() {
		fmt.Fprintf(&b, "Span: %s - %s\n", s.StartTime.Format(time.RFC3339), s.EndTime.Format(time.RFC3339))
	}
	if s.timedExchanges > 0 {
		fmt.Fprintf(&b, "Average round trip: %s\n", s.AverageDuration)
	}
	fmt.Fprintf(&b, "Checksum errors: %d, Size errors: %d, Status errors: %d, Other: %d\n",
		s.ChecksumErrors, s.SizeErrors, s.StatusErrors, s.OtherErrors)

	ops := make([]atca.OpCode, 0, len(s.PerOpCode))
	for op := range s.PerOpCode {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	for _, op := range ops {
		fmt.Fprintf(&b, "  %-12s %d\n", atca.FormatOpCode(op), s.PerOpCode[op])
	}

	kinds := make([]atca.ErrorKind, 0, len(s.PerStatus))
	for k := range s.PerStatus {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	for _, k := range kinds {
		fmt.Fprintf(&b, "  status %-24s %d\n", k, s.PerStatus[k])
	}
	return b.String()
}
