// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package isotp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_defaultOptions(t *testing.T) {
	assert.False(t, defaultOptions.PaddingEnabled)
	assert.Equal(t, byte(0xFF), defaultOptions.PaddingByte)
	assert.Equal(t, uint8(0), defaultOptions.ConsecutiveIndexFirst)
	assert.Equal(t, uint8(0), defaultOptions.ConsecutiveIndexStart)
	assert.Equal(t, uint8(15), defaultOptions.ConsecutiveIndexEnd)
	assert.Equal(t, uint8(0), defaultOptions.DefaultBlockSize)
}

func Test_WithPadding(t *testing.T) {
	o := defaultOptions
	WithPadding(0xAA)(&o)
	assert.True(t, o.PaddingEnabled)
	assert.Equal(t, byte(0xAA), o.PaddingByte)
}

func Test_WithConsecutiveIndexDomain(t *testing.T) {
	o := defaultOptions
	WithConsecutiveIndexDomain(3, 3, 3)(&o)
	assert.Equal(t, uint8(3), o.ConsecutiveIndexFirst)
	assert.Equal(t, uint8(3), o.ConsecutiveIndexStart)
	assert.Equal(t, uint8(3), o.ConsecutiveIndexEnd)
}

func Test_WithBlockSizeAndSeparationTime(t *testing.T) {
	o := defaultOptions
	WithBlockSize(4)(&o)
	WithSeparationTimeMicros(2000)(&o)
	assert.Equal(t, uint8(4), o.DefaultBlockSize)
	assert.Equal(t, uint32(2000), o.DefaultSeparationMicros)
}
