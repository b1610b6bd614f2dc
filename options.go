// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package isotp

// Options configures the static, session-lifetime configuration: padding
// policy, consecutive-index domain, and the defaults used to seed
// Flow-Control accounting.
type Options struct {
	// PaddingEnabled, when true, pads every produced outbound frame with
	// PaddingByte up to the bus frame width: 8 bytes for classic/LIN, the
	// full length of CanTx's out slice for FD.
	PaddingEnabled bool
	// PaddingByte is the fill value used when PaddingEnabled is true.
	PaddingByte byte

	// ConsecutiveIndexFirst is the index value a fresh transfer (First
	// Frame sent/received) starts counting from.
	ConsecutiveIndexFirst uint8
	// ConsecutiveIndexStart and ConsecutiveIndexEnd bound the closed range
	// the consecutive-index tracker wraps within.
	ConsecutiveIndexStart uint8
	ConsecutiveIndexEnd   uint8

	// DefaultBlockSize is the block-size value advertised in outbound
	// Flow-Control frames and the value the allowed-frames counter resets
	// to after such a frame is produced. 0 means unlimited.
	DefaultBlockSize uint8
	// DefaultSeparationMicros is the STmin value (microseconds)
	// advertised in outbound Flow-Control frames.
	DefaultSeparationMicros uint32
}

var defaultOptions = Options{
	PaddingEnabled:          false,
	PaddingByte:             0xFF,
	ConsecutiveIndexFirst:   0,
	ConsecutiveIndexStart:   0,
	ConsecutiveIndexEnd:     15,
	DefaultBlockSize:        0,
	DefaultSeparationMicros: 0,
}

// Option configures a Session at construction time.
type Option func(*Options)

// WithPadding enables outbound frame padding with the given fill byte.
func WithPadding(fill byte) Option {
	return func(o *Options) {
		o.PaddingEnabled = true
		o.PaddingByte = fill
	}
}

// WithoutPadding disables outbound frame padding (the default).
func WithoutPadding() Option {
	return func(o *Options) { o.PaddingEnabled = false }
}

// WithConsecutiveIndexDomain sets the closed [start, end] range the
// consecutive-index tracker wraps within, and the value a fresh transfer
// starts from. The default is the standard ISO-TP domain, 0/0/15.
func WithConsecutiveIndexDomain(first, start, end uint8) Option {
	return func(o *Options) {
		o.ConsecutiveIndexFirst = first
		o.ConsecutiveIndexStart = start
		o.ConsecutiveIndexEnd = end
	}
}

// WithBlockSize sets the default Flow-Control block size advertised by
// this session (0 = unlimited).
func WithBlockSize(bs uint8) Option {
	return func(o *Options) { o.DefaultBlockSize = bs }
}

// WithSeparationTimeMicros sets the default STmin (microseconds)
// advertised by this session.
func WithSeparationTimeMicros(us uint32) Option {
	return func(o *Options) { o.DefaultSeparationMicros = us }
}
