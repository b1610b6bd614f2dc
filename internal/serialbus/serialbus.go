// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package serialbus drives a serial-attached CAN/LIN adapter as the bus
// driver kept external to the isotp session engine: the engine only ever
// sees raw frame bytes, never a port handle.
package serialbus

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// BusTransport is the minimal contract the console's pump loops need from a
// bus link: read one inbound frame, write one outbound frame. Implementations
// own their own framing (length-prefix, delimiter, ...); callers never see
// raw port bytes.
type BusTransport interface {
	ReadFrame() ([]byte, error)
	WriteFrame(frame []byte) error
	Close() error
}

// frameBudget is the largest frame this transport will read or write,
// matching the CAN-FD ceiling; classic/LIN adapters simply never approach it.
const frameBudget = 64

// Port wraps a go.bug.st/serial connection behind BusTransport using a
// simple length-prefixed framing: one byte giving the frame length, followed
// by that many payload bytes. This keeps the wire-level framing independent
// of whatever escape/length convention the ISO-TP payload itself uses.
type Port struct {
	port   serial.Port
	reader *bufio.Reader
}

// Config describes how to open the serial link to the adapter.
type Config struct {
	Device   string
	BaudRate int
}

// Open opens the named serial device at the configured baud rate.
func Open(cfg Config) (*Port, error) {
	mode := &serial.Mode{BaudRate: cfg.BaudRate}
	port, err := serial.Open(cfg.Device, mode)
	if err != nil {
		return nil, fmt.Errorf("serialbus: opening %s: %w", cfg.Device, err)
	}
	if err := port.SetReadTimeout(200 * time.Millisecond); err != nil {
		port.Close()
		return nil, fmt.Errorf("serialbus: setting read timeout: %w", err)
	}
	return &Port{port: port, reader: bufio.NewReader(port)}, nil
}

// ReadFrame blocks until one length-prefixed frame has been read off the
// wire, or the underlying port read fails.
func (p *Port) ReadFrame() ([]byte, error) {
	length, err := p.reader.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("serialbus: reading frame length: %w", err)
	}
	if int(length) > frameBudget {
		return nil, fmt.Errorf("serialbus: frame length %d exceeds budget %d", length, frameBudget)
	}
	frame := make([]byte, length)
	// bufio.Reader.Read makes at most one Read call on the wrapped port and
	// may return fewer bytes than requested; io.ReadFull retries until frame
	// is full (or the link genuinely fails), so a short read on real serial
	// hardware surfaces as an error instead of a silently truncated frame.
	if _, err := io.ReadFull(p.reader, frame); err != nil {
		return nil, fmt.Errorf("serialbus: reading frame body: %w", err)
	}
	return frame, nil
}

// WriteFrame writes one length-prefixed frame to the wire.
func (p *Port) WriteFrame(frame []byte) error {
	if len(frame) > frameBudget {
		return fmt.Errorf("serialbus: frame length %d exceeds budget %d", len(frame), frameBudget)
	}
	buf := make([]byte, 1+len(frame))
	buf[0] = byte(len(frame))
	copy(buf[1:], frame)
	if _, err := p.port.Write(buf); err != nil {
		return fmt.Errorf("serialbus: writing frame: %w", err)
	}
	return nil
}

// Close releases the underlying serial port.
func (p *Port) Close() error {
	return p.port.Close()
}

var _ BusTransport = (*Port)(nil)
