// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package isotp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_classify(t *testing.T) {
	assert.Equal(t, KindSingle, classify(0x03))
	assert.Equal(t, KindFirst, classify(0x10))
	assert.Equal(t, KindConsecutive, classify(0x21))
	assert.Equal(t, KindFlowControl, classify(0x30))
}

func Test_encodeSingle_classic(t *testing.T) {
	dst := make([]byte, 8)
	n := encodeSingle(dst, Classic, []byte{0x11, 0x22, 0x33})
	require.Equal(t, 4, n)
	assert.Equal(t, []byte{0x03, 0x11, 0x22, 0x33}, dst[:n])
}

func Test_encodeSingle_rejectsOversizedPayload(t *testing.T) {
	dst := make([]byte, 8)
	n := encodeSingle(dst, Classic, make([]byte, 8))
	assert.Equal(t, 0, n)
}

func Test_decodeSingleLength_classic(t *testing.T) {
	dl := decodeSingleLength(Classic, []byte{0x03, 0x11, 0x22, 0x33})
	require.True(t, dl.ok)
	assert.Equal(t, uint32(3), dl.length)
	assert.Equal(t, 1, dl.dataOffset)
}

func Test_decodeSingleLength_classicZeroNibbleInvalid(t *testing.T) {
	dl := decodeSingleLength(Classic, []byte{0x00, 0x00})
	assert.False(t, dl.ok)
}

func Test_decodeSingleLength_fdEscape(t *testing.T) {
	frame := []byte{0x00, 0x05, 1, 2, 3, 4, 5}
	dl := decodeSingleLength(FD, frame)
	require.True(t, dl.ok)
	assert.Equal(t, uint32(5), dl.length)
	assert.Equal(t, 2, dl.dataOffset)
}

func Test_decodeSingleLength_fdEscapeRejectedOutsideFD(t *testing.T) {
	// A frame whose low nibble is 0 is only a valid escape when the
	// session itself is configured for FD; a Classic session must reject
	// it rather than silently reinterpreting bytes.
	dl := decodeSingleLength(Classic, []byte{0x00, 0x05, 1, 2, 3, 4, 5})
	assert.False(t, dl.ok)
}

func Test_encodeFirst_decodeFirst_classic(t *testing.T) {
	payload := make([]byte, 20)
	for i := range payload {
		payload[i] = byte(i + 1)
	}
	dst := make([]byte, 8)
	n, consumed := encodeFirst(dst, Classic, 20, payload)
	require.Equal(t, 8, n)
	assert.Equal(t, 6, consumed)
	assert.Equal(t, []byte{0x10, 0x14, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06}, dst[:n])

	dl := decodeFirstLength(Classic, dst)
	require.True(t, dl.ok)
	assert.Equal(t, uint32(20), dl.length)
	assert.Equal(t, 2, dl.dataOffset)
}

func Test_decodeFirstLength_classicZeroMSBNibbleIsValid(t *testing.T) {
	// A First Frame whose total length is <= 255 legitimately has a
	// length-MSB nibble of 0; this must not be misread as an FD escape.
	dl := decodeFirstLength(Classic, []byte{0x10, 0x14, 1, 2, 3, 4, 5, 6})
	require.True(t, dl.ok)
	assert.Equal(t, uint32(20), dl.length)
}

func Test_encodeFirst_decodeFirst_fd(t *testing.T) {
	payload := make([]byte, 300)
	dst := make([]byte, 64)
	n, consumed := encodeFirst(dst, FD, 300, payload)
	require.Equal(t, 64, n)
	assert.Equal(t, 58, consumed)
	assert.Equal(t, byte(0x00), dst[0]&0x0F)
	assert.Equal(t, []byte{0x00, 0x00, 0x01, 0x2C}, dst[1:5])

	dl := decodeFirstLength(FD, dst)
	require.True(t, dl.ok)
	assert.Equal(t, uint32(300), dl.length)
	assert.Equal(t, 6, dl.dataOffset)
}

func Test_encodeConsecutive_decodeIndex(t *testing.T) {
	dst := make([]byte, 8)
	n, consumed := encodeConsecutive(dst, Classic, 1, []byte{0x07, 0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D})
	require.Equal(t, 8, n)
	assert.Equal(t, 7, consumed)
	assert.Equal(t, []byte{0x21, 0x07, 0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D}, dst[:n])

	idx, off, ok := decodeConsecutiveIndex(Classic, dst)
	require.True(t, ok)
	assert.Equal(t, uint8(1), idx)
	assert.Equal(t, 1, off)
}

func Test_encodeDecodeFC(t *testing.T) {
	dst := make([]byte, 8)
	n := encodeFC(dst, FCContinueToSend, 2, 500)
	require.Equal(t, 3, n)
	assert.Equal(t, []byte{0x30, 0x02, 0xF5}, dst[:n])

	flag, bs, sepUs, ok := decodeFC(dst[:n])
	require.True(t, ok)
	assert.Equal(t, FCContinueToSend, flag)
	assert.Equal(t, uint8(2), bs)
	assert.Equal(t, uint32(500), sepUs)
}

func Test_decodeFC_tooShort(t *testing.T) {
	_, _, _, ok := decodeFC([]byte{0x30, 0x00})
	assert.False(t, ok)
}
