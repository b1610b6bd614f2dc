// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package isotp

// State is one of the five states a Session can be in.
type State uint8

const (
	StateIdle State = iota
	StateTransmitting
	StateTransmittingAwaitingFC
	StateReceiving
	StateReceived
)

func (st State) String() string {
	switch st {
	case StateIdle:
		return "Idle"
	case StateTransmitting:
		return "Transmitting"
	case StateTransmittingAwaitingFC:
		return "TransmittingAwaitingFC"
	case StateReceiving:
		return "Receiving"
	case StateReceived:
		return "Received"
	default:
		return "Unknown"
	}
}

// fcUnbounded is the sentinel value of the FC-allowed-frames counter
// meaning "unbounded, no Flow-Control required" -- the max unsigned 16-bit
// value.
const fcUnbounded uint32 = 0xFFFF

// Session is a single endpoint of a bidirectional ISO-TP transfer. It
// holds borrowed TX/RX buffers and drives frame classification, buffer
// assembly, and Flow-Control accounting; see the package doc comment.
//
// Session is a flat struct rather than a tagged union per live state:
// every state shares the same live fields (offset, fullLen, the index
// tracker, FC accounting), so a Go sum-type split by state would only
// duplicate those fields per variant without removing a genuine
// invalid-state combination -- the handler preconditions already enforce
// the guards a tagged union would buy (see DESIGN.md).
//
// Session is not safe for concurrent use. UseRxBuffer, Send, CanRx, and
// CanTx on one Session must be serialized by the caller; separate Sessions
// are fully independent.
type Session struct {
	format Format
	opts   Options
	sink   EventSink

	txBuf []byte
	rxBuf []byte

	state State

	fullLen uint32
	offset  int

	fcAllowed   uint32
	fcBlockSize uint8
	fcSepUs     uint32

	nextIndex uint8
}

// New constructs a Session bound to format, notifying sink of protocol
// events (a nil sink is replaced with NoopEventSink), with txBuf and rxBuf
// as its borrowed TX/RX buffers. The session starts in StateIdle.
func New(format Format, sink EventSink, txBuf, rxBuf []byte, opts ...Option) (*Session, error) {
	if len(txBuf) == 0 || len(rxBuf) == 0 {
		return nil, ErrInvalidArgument
	}
	if min := minBufferLen(format); len(txBuf) < min || len(rxBuf) < min {
		return nil, ErrBufferTooSmall
	}
	if sink == nil {
		sink = NoopEventSink{}
	}
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}
	s := &Session{
		format: format,
		opts:   o,
		sink:   sink,
		txBuf:  txBuf,
		rxBuf:  rxBuf,
	}
	s.Idle()
	return s, nil
}

// State returns the session's current state.
func (s *Session) State() State { return s.state }

// Format returns the session's configured wire-format variant.
func (s *Session) Format() Format { return s.format }

// TransmissionLength returns the full payload size of the in-progress (or
// just-completed) transfer.
func (s *Session) TransmissionLength() uint32 { return s.fullLen }

// BufferOffset returns the number of bytes produced (while transmitting)
// or consumed (while receiving) so far.
func (s *Session) BufferOffset() int { return s.offset }

// RxBuffer returns the session's currently bound RX buffer.
func (s *Session) RxBuffer() []byte { return s.rxBuf }

// TxBuffer returns the session's currently bound TX buffer.
func (s *Session) TxBuffer() []byte { return s.txBuf }

// UseRxBuffer rebinds the RX buffer. This is only valid in StateIdle, or
// in StateReceiving before any bytes have been written (BufferOffset() ==
// 0) -- the window OnMemAssign fires in.
func (s *Session) UseRxBuffer(buf []byte) error {
	if len(buf) == 0 {
		return ErrInvalidArgument
	}
	if len(buf) < minBufferLen(s.format) {
		return ErrBufferTooSmall
	}
	if s.state == StateIdle || (s.state == StateReceiving && s.offset == 0) {
		s.rxBuf = buf
		return nil
	}
	return ErrNotIdle
}

// Idle forces the session back to StateIdle, abandoning any in-flight
// transfer without bus-level notification, and resets its live fields
// (offset, full length, FC accounting, consecutive-index tracker) to
// their configured defaults. Configuration (Format, Options, buffers,
// sink) is untouched.
func (s *Session) Idle() {
	s.resetLiveFields()
	s.state = StateIdle
}

// resetLiveFields resets the per-transfer fields to their configured
// defaults, independent of which state is entered next.
func (s *Session) resetLiveFields() {
	s.offset = 0
	s.fullLen = 0
	s.nextIndex = s.opts.ConsecutiveIndexFirst
	s.fcBlockSize = s.opts.DefaultBlockSize
	s.fcSepUs = s.opts.DefaultSeparationMicros
	if !profileFor(s.format).hasFlowControl || s.opts.DefaultBlockSize == 0 {
		s.fcAllowed = fcUnbounded
	} else {
		s.fcAllowed = uint32(s.opts.DefaultBlockSize)
	}
}

// nextConsecutiveIndex advances the wrapping consecutive-index tracker.
func (s *Session) nextConsecutiveIndex(i uint8) uint8 {
	if i >= s.opts.ConsecutiveIndexEnd {
		return s.opts.ConsecutiveIndexStart
	}
	return i + 1
}

// Send accepts a new outbound message. Only valid from StateIdle -- a
// caller mid-transfer must call Idle first. Copies min(len(data),
// len(TxBuffer())) bytes into the TX buffer and arms StateTransmitting;
// the first outbound frame is produced by the next CanTx call.
func (s *Session) Send(data []byte) (int, error) {
	if s.state != StateIdle {
		return 0, ErrNotIdle
	}
	n := copy(s.txBuf, data)
	s.resetLiveFields()
	s.fullLen = uint32(n)
	// A fresh transfer always waits for the peer's mandatory Flow-Control
	// reply immediately after the First Frame (see SPEC_FULL.md); Single
	// Frame transfers complete before this counter is ever consulted.
	if !profileFor(s.format).hasFlowControl {
		s.fcAllowed = fcUnbounded
	} else {
		s.fcAllowed = 1
	}
	s.state = StateTransmitting
	return n, nil
}

// CanRx feeds one inbound bus frame into the session. Frames shorter than
// 2 bytes cannot be reliably classified and are silently dropped; every
// other malformed or out-of-place frame is reported through EventSink,
// never via a returned error -- protocol faults are local and never
// fatal to the Session.
func (s *Session) CanRx(frame []byte) {
	if len(frame) < 2 {
		return
	}
	if s.state == StateReceived {
		// Busy: the application has not yet consumed the completed
		// buffer (via Idle). Every inbound kind is a pure no-op here,
		// not an error.
		return
	}
	switch classify(frame[0]) {
	case KindSingle:
		s.handleSingle(frame)
	case KindFirst:
		s.handleFirst(frame)
	case KindConsecutive:
		s.handleConsecutive(frame)
	case KindFlowControl:
		s.handleFC(frame)
	default:
		s.sink.OnInvalidFrame(s, classify(frame[0]), frame)
	}
}

// enterReceiving resets live fields and arms StateReceiving, seeding the
// FC-allowed-frames counter to 1 (formats with Flow-Control) so the next
// CanTx call emits the mandatory Flow-Control reply (see SPEC_FULL.md).
func (s *Session) enterReceiving() {
	s.resetLiveFields()
	if !profileFor(s.format).hasFlowControl {
		s.fcAllowed = fcUnbounded
	} else {
		s.fcAllowed = 1
	}
	s.state = StateReceiving
}

func (s *Session) handleSingle(frame []byte) {
	dl := decodeSingleLength(s.format, frame)
	if !dl.ok {
		s.sink.OnInvalidFrame(s, KindSingle, frame)
		return
	}
	if len(frame) < dl.dataOffset+int(dl.length) {
		s.sink.OnInvalidFrame(s, KindSingle, frame)
		return
	}

	s.enterReceiving()
	s.sink.OnMemAssign(s, dl.length)
	if dl.length > uint32(len(s.rxBuf)) {
		s.sink.OnTransmissionTooLarge(s, frame, dl.length)
		return
	}

	s.fullLen = dl.length
	copy(s.rxBuf, frame[dl.dataOffset:dl.dataOffset+int(dl.length)])
	s.offset = int(dl.length)
	s.state = StateReceived

	data := s.rxBuf[:dl.length]
	s.sink.OnPeekFirstFrame(s, frame, data)
	s.sink.OnTransmissionRx(s)
}

func (s *Session) handleFirst(frame []byte) {
	dl := decodeFirstLength(s.format, frame)
	if !dl.ok {
		s.sink.OnInvalidFrame(s, KindFirst, frame)
		return
	}

	s.enterReceiving()
	s.sink.OnMemAssign(s, dl.length)
	if dl.length > uint32(len(s.rxBuf)) {
		s.sink.OnTransmissionTooLarge(s, frame, dl.length)
		return
	}

	s.fullLen = dl.length
	packetLen := len(frame) - dl.dataOffset
	if uint32(packetLen) > dl.length {
		packetLen = int(dl.length)
	}
	if packetLen < 0 {
		packetLen = 0
	}
	copy(s.rxBuf, frame[dl.dataOffset:dl.dataOffset+packetLen])
	s.offset = packetLen

	// The First Frame implicitly claims the configured first consecutive
	// index; the first Consecutive Frame this transfer expects carries the
	// next one.
	s.nextIndex = s.nextConsecutiveIndex(s.nextIndex)

	if s.fcAllowed != fcUnbounded && s.fcAllowed > 0 {
		s.fcAllowed--
	}

	data := s.rxBuf[:packetLen]
	s.sink.OnPeekFirstFrame(s, frame, data)
	// State remains StateReceiving.
}

func (s *Session) handleConsecutive(frame []byte) {
	if s.state != StateReceiving {
		s.sink.OnUnexpectedFrameType(s, frame)
		return
	}
	idx, dataOffset, ok := decodeConsecutiveIndex(s.format, frame)
	if !ok {
		s.sink.OnInvalidFrame(s, KindConsecutive, frame)
		return
	}
	expected := s.nextIndex
	if idx != expected {
		s.sink.OnConsecutiveOutOfOrder(s, frame, expected, idx)
		return
	}
	s.nextIndex = s.nextConsecutiveIndex(expected)

	bytesRemaining := int(s.fullLen) - s.offset
	payload := frame[dataOffset:]
	n := len(payload)
	if n > bytesRemaining {
		n = bytesRemaining
	}
	if n < 0 {
		n = 0
	}
	start := s.offset
	copy(s.rxBuf[start:start+n], payload[:n])
	s.offset += n

	s.sink.OnPeekConsecutiveFrame(s, frame, s.rxBuf[start:start+n], start)

	if s.offset >= int(s.fullLen) {
		s.state = StateReceived
		s.sink.OnTransmissionRx(s)
	}
}

func (s *Session) handleFC(frame []byte) {
	if s.state != StateTransmitting && s.state != StateTransmittingAwaitingFC {
		s.sink.OnUnexpectedFrameType(s, frame)
		return
	}
	if !profileFor(s.format).hasFlowControl {
		// LIN has no Flow-Control frame; observing one is unexpected.
		s.sink.OnUnexpectedFrameType(s, frame)
		return
	}
	flag, bs, sepUs, ok := decodeFC(frame)
	if !ok {
		s.sink.OnInvalidFrame(s, KindFlowControl, frame)
		return
	}
	switch flag {
	case FCContinueToSend:
		s.state = StateTransmitting
	case FCWait:
		s.state = StateTransmittingAwaitingFC
	case FCOverflowAbort:
		s.sink.OnPartnerAbortedTransfer(s, frame)
		return
	default:
		s.sink.OnInvalidFrame(s, KindFlowControl, frame)
		return
	}
	if bs == 0 {
		s.fcAllowed = fcUnbounded
	} else {
		s.fcAllowed = uint32(bs)
	}
	s.fcBlockSize = bs
	s.fcSepUs = sepUs
}

// CanTx asks the session whether it owes the bus an outbound frame right
// now and, if so, serializes it into out (whose length is the frame
// budget for this call -- 8 for classic/LIN, typically 64 for FD). It
// returns the number of bytes written (0 meaning "nothing to send") and
// the separation time (microseconds) the caller should wait before its
// next CanTx call.
func (s *Session) CanTx(out []byte) (n int, sepUs uint32) {
	switch s.state {
	case StateTransmitting:
		return s.canTxTransmitting(out)
	case StateReceiving:
		return s.canTxReceiving(out)
	default: // Idle, Received, TransmittingAwaitingFC
		return 0, 0
	}
}

func (s *Session) canTxTransmitting(out []byte) (int, uint32) {
	if s.offset == 0 {
		maxSF := MaxSingleFramePayload(s.format, len(out))
		if int(s.fullLen) <= maxSF {
			n := encodeSingle(out, s.format, s.txBuf[:s.fullLen])
			if n == 0 {
				return 0, 0
			}
			s.offset = int(s.fullLen)
			s.state = StateIdle
			return s.padAndEmit(out, n), 0
		}

		n, consumed := encodeFirst(out, s.format, s.fullLen, s.txBuf[:s.fullLen])
		if n == 0 {
			return 0, 0
		}
		s.offset = consumed
		s.nextIndex = s.nextConsecutiveIndex(s.nextIndex)
		return s.finishTransmittingFrame(out, n, 0)
	}

	n, consumed := encodeConsecutive(out, s.format, s.nextIndex, s.txBuf[s.offset:s.fullLen])
	if n == 0 {
		return 0, 0
	}
	s.nextIndex = s.nextConsecutiveIndex(s.nextIndex)
	s.offset += consumed
	sepUs := s.fcSepUs

	if s.offset >= int(s.fullLen) {
		s.state = StateIdle
		return s.padAndEmit(out, n), sepUs
	}
	return s.finishTransmittingFrame(out, n, sepUs)
}

// finishTransmittingFrame applies block-size throttling after a First or
// Consecutive frame that did not complete the transfer: decrement the
// FC-allowed-frames counter and, if it has run out, stop producing
// further frames until a Flow-Control frame arrives.
func (s *Session) finishTransmittingFrame(out []byte, n int, sepUs uint32) (int, uint32) {
	if s.fcAllowed != fcUnbounded {
		if s.fcAllowed > 0 {
			s.fcAllowed--
		}
		if s.fcAllowed == 0 && profileFor(s.format).hasFlowControl {
			s.state = StateTransmittingAwaitingFC
		}
	}
	return s.padAndEmit(out, n), sepUs
}

func (s *Session) canTxReceiving(out []byte) (int, uint32) {
	if !profileFor(s.format).hasFlowControl {
		return 0, 0
	}
	if s.fcAllowed != 0 {
		return 0, 0
	}
	n := encodeFC(out, FCContinueToSend, s.opts.DefaultBlockSize, s.opts.DefaultSeparationMicros)
	if n == 0 {
		return 0, 0
	}
	if s.opts.DefaultBlockSize == 0 {
		s.fcAllowed = fcUnbounded
	} else {
		s.fcAllowed = uint32(s.opts.DefaultBlockSize)
	}
	return s.padAndEmit(out, n), 0
}

// padAndEmit pads a produced frame up to the bus frame width when padding
// is enabled, fires OnCanTx with the final bytes, and returns the final
// length.
func (s *Session) padAndEmit(out []byte, n int) int {
	final := n
	if s.opts.PaddingEnabled {
		target := len(out)
		if s.format != FD && target > 8 {
			target = 8
		}
		for i := n; i < target; i++ {
			out[i] = s.opts.PaddingByte
		}
		if target > final {
			final = target
		}
	}
	s.sink.OnCanTx(s, out[:final])
	return final
}
