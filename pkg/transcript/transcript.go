// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package transcript records command/reply exchanges with a secure element
// as a stream of CBOR records, and reads them back.
package transcript

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/Thermoquad/cryptoauth/pkg/atca"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// Record is one exchange. CBOR encoding uses integer keys for compactness.
type Record struct {
	// Timestamp when the command was sent.
	Timestamp time.Time `cbor:"1,keyasint"`

	// OpCode of the command.
	OpCode atca.OpCode `cbor:"2,keyasint"`

	// Mode and Param2 as framed.
	Mode   uint8  `cbor:"3,keyasint"`
	Param2 uint16 `cbor:"4,keyasint"`

	// Command is the transmitted frame, word address included.
	Command []byte `cbor:"5,keyasint"`

	// Response is the raw reply as read from the transport.
	Response []byte `cbor:"6,keyasint,omitempty"`

	// Error is the decode or transport error, if any.
	Error string `cbor:"7,keyasint,omitempty"`

	// ErrorKind classifies Error when it came from the atca package.
	ErrorKind atca.ErrorKind `cbor:"8,keyasint,omitempty"`

	// Duration of the round trip.
	Duration time.Duration `cbor:"9,keyasint,omitempty"`

	// Session groups records written by one Writer.
	Session string `cbor:"10,keyasint,omitempty"`
}

// NewRecord fills a record from a packet and the outcome of its exchange.
func NewRecord(p *atca.Packet, response []byte, err error, duration time.Duration) Record {
	r := Record{
		Timestamp: time.Now(),
		OpCode:    p.OpCode(),
		Mode:      p.Mode(),
		Param2:    p.Param2(),
		Command:   p.Bytes(),
		Response:  append([]byte(nil), response...),
		Duration:  duration,
	}
	if err != nil {
		r.Error = err.Error()
		r.ErrorKind = atca.KindOf(err)
	}
	return r
}

// encMode encodes records with nanosecond timestamps and deterministic maps.
var encMode cbor.EncMode

// decMode decodes records.
var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
		Time:        cbor.TimeRFC3339Nano,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create transcript CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyQuiet,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create transcript CBOR decoder mode: %v", err))
	}
}

// Writer appends records to an io.Writer. It is safe for concurrent use.
type Writer struct {
	mu      sync.Mutex
	encoder *cbor.Encoder
	closer  io.Closer
	session string
}

// NewWriter returns a Writer encoding to w. Every writer gets a fresh
// session ID.
func NewWriter(w io.Writer) *Writer {
	return &Writer{encoder: encMode.NewEncoder(w), session: uuid.New().String()}
}

// Session returns the ID stamped on records that carry none.
func (w *Writer) Session() string {
	return w.session
}

// Create opens path for appending, creating it with mode 0644 if needed.
func Create(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript %s: %w", path, err)
	}
	w := NewWriter(f)
	w.closer = f
	return w, nil
}

// Write appends one record.
func (w *Writer) Write(r Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if r.Session == "" {
		r.Session = w.session
	}
	if err := w.encoder.Encode(r); err != nil {
		return fmt.Errorf("failed to encode transcript record: %w", err)
	}
	return nil
}

// Close closes the underlying file when the writer was opened with Create.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closer == nil {
		return nil
	}
	err := w.closer.Close()
	w.closer = nil
	return err
}

// Reader reads records from a stream.
type Reader struct {
	decoder *cbor.Decoder
}

// NewReader returns a Reader decoding from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{decoder: decMode.NewDecoder(r)}
}

// Next returns the next record, or io.EOF at the end of the stream.
func (r *Reader) Next() (Record, error) {
	var rec Record
	if err := r.decoder.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, fmt.Errorf("failed to decode transcript record: %w", err)
	}
	return rec, nil
}

// ReadAll reads every record from r.
func ReadAll(r io.Reader) ([]Record, error) {
	reader := NewReader(r)
	var records []Record
	for {
		rec, err := reader.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}

// ReadFile reads every record from the file at path.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript %s: %w", path, err)
	}
	defer f.Close()
	return ReadAll(f)
}
