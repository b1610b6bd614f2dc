// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package isotp

import "errors"

// Sentinel errors for hard API-contract violations — misuse the caller can
// and should check for at the call site. Protocol-level faults observed on
// the wire (malformed frames, out-of-order indices, peer aborts, ...) are
// never reported this way; they are delivered structurally through
// EventSink (see events.go), per the propagation policy in the package's
// governing specification: the core never fails the session object itself,
// it notifies and keeps accepting input.
var (
	// ErrInvalidArgument reports a nil buffer, non-positive length, or an
	// otherwise malformed configuration passed to a constructor or setter.
	ErrInvalidArgument = errors.New("isotp: invalid argument")

	// ErrBufferTooSmall reports that a caller-supplied buffer cannot hold
	// even the minimum frame this Format requires.
	ErrBufferTooSmall = errors.New("isotp: buffer too small")

	// ErrNotIdle reports an operation (UseRxBuffer, Send) attempted outside
	// the state window allowed for it.
	ErrNotIdle = errors.New("isotp: session is not in a state that allows this operation")
)
