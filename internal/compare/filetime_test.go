package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSameFileTimeWithinTolerance(t *testing.T) {
	assert.True(t, SameFileTime(100, 100, 2, nil))
	assert.True(t, SameFileTime(100, 102, 2, nil))
	assert.True(t, SameFileTime(102, 100, 2, nil))
}

func TestSameFileTimeExactBoundary(t *testing.T) {
	// delta == tolerance -> equal; delta == tolerance+1 -> newer
	assert.True(t, SameFileTime(100, 110, 10, nil))
	assert.False(t, SameFileTime(100, 111, 10, nil))
}

func TestSameFileTimeZeroTolerance(t *testing.T) {
	assert.True(t, SameFileTime(100, 100, 0, nil))
	assert.False(t, SameFileTime(100, 101, 0, nil))
}

func TestSameFileTimeIgnoresWholeMinuteShifts(t *testing.T) {
	const hour = 3600
	// a one-hour timezone shift is accepted when whitelisted
	assert.False(t, SameFileTime(1000, 1000+hour, 2, nil))
	assert.True(t, SameFileTime(1000, 1000+hour, 2, []uint{60}))
	assert.True(t, SameFileTime(1000+hour, 1000, 2, []uint{60}))

	// residual after subtracting the shift must stay within tolerance
	assert.True(t, SameFileTime(1000, 1000+hour+2, 2, []uint{60}))
	assert.False(t, SameFileTime(1000, 1000+hour+3, 2, []uint{60}))

	// an unrelated shift does not help
	assert.False(t, SameFileTime(1000, 1000+hour, 2, []uint{30}))
}
