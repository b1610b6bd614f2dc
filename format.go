// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package isotp

// Format selects the wire-format variant of a Session.
//
// The format affects only length-field parsing/encoding and Flow-Control
// applicability (LIN has no Flow-Control frame); the frame-kind dispatch
// and state machine are identical across all three.
type Format uint8

const (
	// Classic is ISO 15765-2 classic CAN: 8-byte frames, 12-bit First-Frame
	// length field, 7-byte max Single-Frame payload.
	Classic Format = iota
	// FD is ISO 15765-2 CAN-FD: up to 64-byte frames, 32-bit big-endian
	// First-Frame length field behind the FD escape nibble.
	FD
	// LIN is ISO 17987-2: 8-byte frames like Classic, but no Flow-Control
	// frame exists on the bus — LIN masters/slaves regulate pacing out of
	// band.
	LIN
)

// profile is the single source of truth for a Format's frame-shape
// constants: header lengths, maximum Single-Frame payload, and whether
// Flow-Control exists on this bus at all.
//
// One function, one switch, no scattered magic numbers.
type profile struct {
	// sfHeaderLen is the Single-Frame header length this format uses
	// (classic/LIN: 1 byte, kind nibble + length nibble; FD: 2 bytes,
	// escape nibble + 1-byte length).
	sfHeaderLen int
	// sfMaxPayload is the largest payload a Single Frame of this format can
	// carry (classic: 7, FD escape raises this considerably, LIN: 6 once
	// an addressing byte is reserved by the caller — but addressing is
	// the caller's concern, so here LIN behaves like classic).
	sfMaxPayload int
	// ffHeaderLen is the First-Frame header length this format uses
	// (classic/LIN: 2 bytes, kind nibble + 12-bit length split across bytes
	// 0-1; FD: 6 bytes, escape nibble + 32-bit length + reserved byte).
	ffHeaderLen int
	// cfHeaderLen is the Consecutive-Frame header length: always 1 byte,
	// for every format (see SPEC_FULL.md).
	cfHeaderLen int
	// hasFlowControl reports whether Flow-Control frames exist on this
	// bus at all.
	hasFlowControl bool
}

func profileFor(f Format) profile {
	switch f {
	case FD:
		return profile{
			sfHeaderLen:    2, // escape nibble + 1-byte length
			sfMaxPayload:   62,
			ffHeaderLen:    6, // escape nibble + 32-bit big-endian length
			cfHeaderLen:    1,
			hasFlowControl: true,
		}
	case LIN:
		return profile{
			sfHeaderLen:    1,
			sfMaxPayload:   7,
			ffHeaderLen:    2,
			cfHeaderLen:    1,
			hasFlowControl: false,
		}
	default: // Classic
		return profile{
			sfHeaderLen:    1,
			sfMaxPayload:   7,
			ffHeaderLen:    2,
			cfHeaderLen:    1,
			hasFlowControl: true,
		}
	}
}

// MaxSingleFramePayload returns the largest payload a Single Frame of this
// Format can carry within a bus frame of frameBudget bytes (8 for
// classic/LIN, typically 64 for FD). It is exported so callers can size
// buffers and choose Single-vs-First without duplicating the table in
// format.go (see DESIGN.md).
func MaxSingleFramePayload(f Format, frameBudget int) int {
	p := profileFor(f)
	budget := frameBudget - p.sfHeaderLen
	if budget < 0 {
		return 0
	}
	if budget > p.sfMaxPayload {
		return p.sfMaxPayload
	}
	return budget
}

// MaxFirstFrameHeaderLen returns the First-Frame header length (bytes
// before the payload starts) for this Format.
func MaxFirstFrameHeaderLen(f Format) int {
	return profileFor(f).ffHeaderLen
}

// minBufferLen is the smallest TX/RX buffer New and UseRxBuffer will accept
// for this Format: the widest header this Format's wire ever carries (the
// First-Frame header, or the 3-byte Flow-Control header on formats that
// have one, whichever is larger). A buffer narrower than this cannot hold
// even the minimum frame this Format requires (see ErrBufferTooSmall).
func minBufferLen(f Format) int {
	p := profileFor(f)
	n := p.ffHeaderLen
	if p.hasFlowControl && fcHeaderLen > n {
		n = fcHeaderLen
	}
	return n
}
