// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package isotp

// EventSink receives every notification the state machine emits. Rather
// than one optional function-pointer slot per event kind, this package
// collects them into a single interface with one method per variant (see
// DESIGN.md): implementations get exhaustive, compiler-checked handling,
// and embedding NoopEventSink lets callers override only the events they
// care about.
//
// None of these methods may block, and none may call back into the
// Session from a different goroutine than the one driving CanRx/CanTx —
// but they may call Idle or Send re-entrantly.
//
// Peek and error callbacks receive both the originating raw frame bytes
// and, where applicable, the decoded payload slice, so a logging sink can
// show either the wire bytes or the application data without re-decoding.
type EventSink interface {
	// OnTransmissionRx fires once a complete inbound message sits in
	// RxBuffer()[0:TransmissionLength()]. The session remains in
	// StateReceived until the callback (or a later caller action) invokes
	// Idle; Send returns ErrNotIdle until then.
	OnTransmissionRx(s *Session)

	// OnPeekFirstFrame fires from a Single or First frame handler, before
	// the transfer necessarily completes, letting layered protocols
	// inspect the leading bytes early.
	OnPeekFirstFrame(s *Session, raw, data []byte)

	// OnPeekConsecutiveFrame fires after each accepted Consecutive frame.
	// startIdx is the buffer offset data was written at.
	OnPeekConsecutiveFrame(s *Session, raw, data []byte, startIdx int)

	// OnMemAssign fires from the Single/First handler with the
	// just-learned total length, before payload bytes are copied, so the
	// application can swap in a differently sized RX buffer via
	// UseRxBuffer first.
	OnMemAssign(s *Session, indicatedLength uint32)

	// OnCanTx fires after CanTx produces a frame, with the final
	// (possibly padded) bytes that were written to out.
	OnCanTx(s *Session, frame []byte)

	// OnInvalidFrame fires for a malformed or format-inconsistent frame.
	OnInvalidFrame(s *Session, kind Kind, raw []byte)

	// OnUnexpectedFrameType fires for a well-formed frame whose kind is
	// disallowed in the session's current state.
	OnUnexpectedFrameType(s *Session, raw []byte)

	// OnPartnerAbortedTransfer fires when a Flow-Control OverflowAbort
	// arrives while transmitting. The session does not reset itself;
	// the callback is expected to call Idle.
	OnPartnerAbortedTransfer(s *Session, raw []byte)

	// OnTransmissionTooLarge fires when a Single/First frame declares a
	// total length exceeding the bound RX buffer.
	OnTransmissionTooLarge(s *Session, raw []byte, requested uint32)

	// OnConsecutiveOutOfOrder fires when a Consecutive frame's sequence
	// index does not match the expected one.
	OnConsecutiveOutOfOrder(s *Session, raw []byte, expected, received uint8)
}

// NoopEventSink implements EventSink with empty methods. Embed it in a
// concrete sink to override only the events relevant to a given use.
type NoopEventSink struct{}

func (NoopEventSink) OnTransmissionRx(*Session)                                  {}
func (NoopEventSink) OnPeekFirstFrame(*Session, []byte, []byte)                  {}
func (NoopEventSink) OnPeekConsecutiveFrame(*Session, []byte, []byte, int)       {}
func (NoopEventSink) OnMemAssign(*Session, uint32)                               {}
func (NoopEventSink) OnCanTx(*Session, []byte)                                   {}
func (NoopEventSink) OnInvalidFrame(*Session, Kind, []byte)                      {}
func (NoopEventSink) OnUnexpectedFrameType(*Session, []byte)                     {}
func (NoopEventSink) OnPartnerAbortedTransfer(*Session, []byte)                  {}
func (NoopEventSink) OnTransmissionTooLarge(*Session, []byte, uint32)            {}
func (NoopEventSink) OnConsecutiveOutOfOrder(*Session, []byte, uint8, uint8)     {}

var _ EventSink = NoopEventSink{}
