package filters

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSoftFilterNull(t *testing.T) {
	f := NewSoftFilter(nil, nil, nil, nil)
	assert.True(t, f.IsNull())
	assert.True(t, f.MatchTime(0))
	assert.True(t, f.MatchSize(0))
	assert.True(t, f.MatchFolder())
}

func TestSoftFilterTimeWindow(t *testing.T) {
	from, to := int64(100), int64(200)
	f := NewSoftFilter(&from, &to, nil, nil)
	assert.False(t, f.IsNull())

	assert.True(t, f.MatchTime(100)) // inclusive bounds
	assert.True(t, f.MatchTime(200))
	assert.False(t, f.MatchTime(99))
	assert.False(t, f.MatchTime(201))

	// active filter deactivates folders
	assert.False(t, f.MatchFolder())
}

func TestSoftFilterSizeSpan(t *testing.T) {
	min, max := uint64(10), uint64(100)
	f := NewSoftFilter(nil, nil, &min, &max)

	assert.True(t, f.MatchSize(10))
	assert.True(t, f.MatchSize(100))
	assert.False(t, f.MatchSize(9))
	assert.False(t, f.MatchSize(101))
	assert.False(t, f.MatchFolder())
}

func TestSoftFilterOpenBounds(t *testing.T) {
	min := uint64(10)
	f := NewSoftFilter(nil, nil, &min, nil)
	assert.True(t, f.MatchSize(1<<40))
	assert.True(t, f.MatchTime(-1))
}
