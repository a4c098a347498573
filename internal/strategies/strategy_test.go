package strategies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wuhui20091515/FreeFileSync/pkg/models"
)

func TestFromName(t *testing.T) {
	for _, name := range []string{"two-way", "mirror", "update"} {
		strategy, err := FromName(name, false)
		require.NoError(t, err)
		assert.Equal(t, name, strategy.Name())
		assert.NotEmpty(t, strategy.Description())
	}

	_, err := FromName("bogus", false)
	assert.Error(t, err)
}

func TestTwoWayAlwaysDetectsMoves(t *testing.T) {
	strategy, err := FromName("two-way", false)
	require.NoError(t, err)
	assert.True(t, strategy.Config().DetectMovesEnabled())
}

func TestMirrorConfig(t *testing.T) {
	strategy := NewMirrorStrategy(true)
	cfg := strategy.Config()
	assert.Equal(t, models.VariantMirror, cfg.Variant)
	assert.Equal(t, models.MirrorSet(), cfg.Custom)
	assert.True(t, cfg.DetectMovesEnabled())

	assert.False(t, NewMirrorStrategy(false).Config().DetectMovesEnabled())
}

func TestUpdateConfigNeverDeletesRight(t *testing.T) {
	cfg := NewUpdateStrategy(false).Config()
	set := models.ExtractDirections(cfg)
	assert.Equal(t, models.DirNone, set.ExRightOnly)
	assert.Equal(t, models.DirRight, set.ExLeftOnly)
}
