// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package isotp

// Separation-time (STmin) byte <-> microsecond conversion:
//
//	0x00          -> 0 us (back-to-back permitted)
//	0x01..0x7F    -> that value in milliseconds (1000 us/step)
//	0xF1..0xF9    -> (byte-0xF0)*100 us (100..900 us)
//	anything else -> 0 us on decode; invalid requested delays clamp to
//	                 0 on encode.
//
// The codec is pure and stateless; it never touches a Session.

const (
	sepTimeMsMax       = 0x7F
	sepTimeMicroLow    = 0xF1
	sepTimeMicroHigh   = 0xF9
	microsPerMillistep = 1000
	microsPerMicrostep = 100
)

// decodeSeparationTime converts a wire STmin byte to a delay in
// microseconds. Unrepresentable byte values decode to 0.
func decodeSeparationTime(b byte) uint32 {
	switch {
	case b == 0x00:
		return 0
	case b <= sepTimeMsMax:
		return uint32(b) * microsPerMillistep
	case b >= sepTimeMicroLow && b <= sepTimeMicroHigh:
		return uint32(b-0xF0) * microsPerMicrostep
	default:
		return 0
	}
}

// encodeSeparationTime converts a delay in microseconds to its wire STmin
// byte. Values outside the representable domain {0, 100..900 step 100,
// 1000..127000 step 1000} (e.g. 950us or 1500us) clamp to 0x00, i.e. 0us;
// they are not rounded to a nearby representable value.
func encodeSeparationTime(us uint32) byte {
	switch {
	case us == 0:
		return 0x00
	case us%microsPerMillistep == 0 && us/microsPerMillistep <= sepTimeMsMax && us/microsPerMillistep >= 1:
		return byte(us / microsPerMillistep)
	case us%microsPerMicrostep == 0 && us >= 100 && us <= 900:
		return byte(us/microsPerMicrostep) + 0xF0
	default:
		return 0x00
	}
}
