// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package isotp

// Kind is the frame-kind nibble carried in the upper nibble of byte 0 of
// every ISO-TP frame.
type Kind uint8

const (
	KindSingle      Kind = 0
	KindFirst       Kind = 1
	KindConsecutive Kind = 2
	KindFlowControl Kind = 3
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "Single"
	case KindFirst:
		return "First"
	case KindConsecutive:
		return "Consecutive"
	case KindFlowControl:
		return "FlowControl"
	default:
		return "Unknown"
	}
}

// FCFlag is the 4-bit flag carried in a Flow-Control frame's low nibble.
type FCFlag uint8

const (
	FCContinueToSend FCFlag = 0
	FCWait           FCFlag = 1
	FCOverflowAbort  FCFlag = 2
)

const fdEscapeNibble = 0x0

// classify reads the frame-kind nibble out of the first byte of a frame.
// The caller must already have validated frameLen >= 2 (see CanRx).
func classify(b0 byte) Kind {
	return Kind(b0 >> 4)
}

// decodedLength is the result of parsing a Single or First frame's
// length-field: the declared payload/total length plus the byte offset at
// which frame data begins.
type decodedLength struct {
	length     uint32
	dataOffset int
	ok         bool
}

// decodeSingleLength parses a Single-Frame header and returns the declared
// payload length and the offset its data starts at. A false ok means the
// frame was malformed for this Format (classic/LIN length nibble of 0,
// FD frame not using the escape nibble, frame shorter than its own
// header, or -- FD only -- a declared length of 0).
//
// Which layout applies is decided by the session's configured Format, not
// by sniffing the nibble: ISO 15765-2:2016 ties the FD escape form to the
// session's addressing/format configuration, not to a per-frame guess
// (see DESIGN.md). A classic/LIN First Frame legitimately has a zero
// length-MSB nibble whenever its declared total length is <= 255, so
// treating nibble==0 as "must be FD escape" regardless of Format would
// misclassify the common case.
func decodeSingleLength(f Format, frame []byte) decodedLength {
	if len(frame) < 1 {
		return decodedLength{}
	}
	nibble := frame[0] & 0x0F
	if f == FD {
		if nibble != fdEscapeNibble {
			return decodedLength{}
		}
		if len(frame) < 2 {
			return decodedLength{}
		}
		l := uint32(frame[1])
		if l == 0 {
			return decodedLength{}
		}
		return decodedLength{length: l, dataOffset: 2, ok: true}
	}
	if nibble == 0 {
		return decodedLength{}
	}
	return decodedLength{length: uint32(nibble), dataOffset: 1, ok: true}
}

// decodeFirstLength parses a First-Frame header and returns the declared
// total transmission length and the offset its (partial) data starts at.
// See decodeSingleLength's comment: the escape-vs-classic layout choice is
// driven by Format, never by the nibble value alone.
func decodeFirstLength(f Format, frame []byte) decodedLength {
	if len(frame) < 1 {
		return decodedLength{}
	}
	nibble := frame[0] & 0x0F
	if f == FD {
		if nibble != fdEscapeNibble {
			return decodedLength{}
		}
		if len(frame) < 6 {
			return decodedLength{}
		}
		l := uint32(frame[1])<<24 | uint32(frame[2])<<16 | uint32(frame[3])<<8 | uint32(frame[4])
		return decodedLength{length: l, dataOffset: 6, ok: true}
	}
	if len(frame) < 2 {
		return decodedLength{}
	}
	l := uint32(nibble)<<8 | uint32(frame[1])
	return decodedLength{length: l, dataOffset: 2, ok: true}
}

// encodeSingle writes a Single Frame carrying payload into dst, which must
// be at least len(payload)+header bytes long. It returns the number of
// bytes written, or 0 if payload does not fit the Format's Single-Frame
// envelope.
func encodeSingle(dst []byte, f Format, payload []byte) int {
	l := len(payload)
	p := profileFor(f)
	if l == 0 || l > p.sfMaxPayload {
		return 0
	}
	if f == FD {
		if len(dst) < 2+l {
			return 0
		}
		dst[0] = byte(KindSingle) << 4
		dst[1] = byte(l)
		copy(dst[2:], payload)
		return 2 + l
	}
	if len(dst) < 1+l {
		return 0
	}
	dst[0] = byte(KindSingle)<<4 | byte(l)
	copy(dst[1:], payload)
	return 1 + l
}

// encodeFirst writes a First Frame declaring totalLen and carrying the
// leading slice of payload into dst. It returns the number of bytes
// written and the number of payload bytes consumed.
func encodeFirst(dst []byte, f Format, totalLen uint32, payload []byte) (n int, consumed int) {
	p := profileFor(f)
	if len(dst) < p.ffHeaderLen {
		return 0, 0
	}
	avail := len(dst) - p.ffHeaderLen
	consumed = len(payload)
	if consumed > avail {
		consumed = avail
	}
	if f == FD {
		dst[0] = byte(KindFirst) << 4
		dst[1] = byte(totalLen >> 24)
		dst[2] = byte(totalLen >> 16)
		dst[3] = byte(totalLen >> 8)
		dst[4] = byte(totalLen)
		// byte 5 is reserved/unused in this escape layout; leave zeroed.
		dst[5] = 0
		copy(dst[6:], payload[:consumed])
		return 6 + consumed, consumed
	}
	dst[0] = byte(KindFirst)<<4 | byte((totalLen>>8)&0x0F)
	dst[1] = byte(totalLen)
	copy(dst[2:], payload[:consumed])
	return 2 + consumed, consumed
}

// encodeConsecutive writes a Consecutive Frame with the given 4-bit
// sequence index, carrying the leading slice of payload into dst. The
// header length comes from the Format's profile (always 1 byte in this
// implementation -- see the cfHeaderLen comment in format.go) rather than
// a literal, so a future format with a different Consecutive-Frame shape
// only needs a profile change.
func encodeConsecutive(dst []byte, f Format, index uint8, payload []byte) (n int, consumed int) {
	hdr := profileFor(f).cfHeaderLen
	if len(dst) < hdr {
		return 0, 0
	}
	avail := len(dst) - hdr
	consumed = len(payload)
	if consumed > avail {
		consumed = avail
	}
	dst[0] = byte(KindConsecutive)<<4 | (index & 0x0F)
	copy(dst[hdr:], payload[:consumed])
	return hdr + consumed, consumed
}

// decodeConsecutiveIndex extracts the 4-bit sequence index and data offset
// from a Consecutive Frame.
func decodeConsecutiveIndex(f Format, frame []byte) (index uint8, dataOffset int, ok bool) {
	hdr := profileFor(f).cfHeaderLen
	if len(frame) < hdr {
		return 0, 0, false
	}
	return frame[0] & 0x0F, hdr, true
}

const fcHeaderLen = 3

// encodeFC writes a Flow-Control frame into dst.
func encodeFC(dst []byte, flag FCFlag, blockSize uint8, sepTimeUs uint32) int {
	if len(dst) < fcHeaderLen {
		return 0
	}
	dst[0] = byte(KindFlowControl)<<4 | byte(flag)&0x0F
	dst[1] = blockSize
	dst[2] = encodeSeparationTime(sepTimeUs)
	return fcHeaderLen
}

// decodeFC extracts the flag, block size, and separation time (decoded to
// microseconds) from a Flow-Control frame.
func decodeFC(frame []byte) (flag FCFlag, blockSize uint8, sepTimeUs uint32, ok bool) {
	if len(frame) < fcHeaderLen {
		return 0, 0, 0, false
	}
	flag = FCFlag(frame[0] & 0x0F)
	blockSize = frame[1]
	sepTimeUs = decodeSeparationTime(frame[2])
	return flag, blockSize, sepTimeUs, true
}
