package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqualNamesUnicodeNormalization(t *testing.T) {
	// "\u00e9" composed vs "e"+combining accent, as macOS stores names
	composed := "caf\u00e9.txt"
	decomposed := "cafe\u0301.txt"
	assert.NotEqual(t, composed, decomposed)
	assert.True(t, EqualNames(composed, decomposed))

	// case stays significant
	assert.False(t, EqualNames("A.txt", "a.txt"))
}

func TestNormalizeNameComposesDecomposedForms(t *testing.T) {
	assert.Equal(t, "caf\u00e9", NormalizeName("cafe\u0301"))
	// plain ASCII passes through untouched
	assert.Equal(t, "plain.txt", NormalizeName("plain.txt"))
}

func TestDirectionFlip(t *testing.T) {
	assert.Equal(t, DirRight, DirLeft.Flip())
	assert.Equal(t, DirLeft, DirRight.Flip())
	assert.Equal(t, DirNone, DirNone.Flip())
}

func TestDirectionSetFlip(t *testing.T) {
	flipped := UpdateSet().Flip()
	assert.Equal(t, DirNone, flipped.ExLeftOnly)
	assert.Equal(t, DirLeft, flipped.ExRightOnly)
	assert.Equal(t, DirNone, flipped.LeftNewer)
	assert.Equal(t, DirLeft, flipped.RightNewer)
	assert.Equal(t, DirLeft, flipped.Different)
	assert.Equal(t, DirNone, flipped.Conflict)

	// flipping twice restores the original
	assert.Equal(t, MirrorSet(), MirrorSet().Flip().Flip())
}

func TestCategoryFlip(t *testing.T) {
	assert.Equal(t, CatRightOnly, CatLeftOnly.Flip())
	assert.Equal(t, CatLeftNewer, CatRightNewer.Flip())
	assert.Equal(t, CatConflict, CatConflict.Flip())
	assert.Equal(t, CatEqual, CatEqual.Flip())
}

func TestParseCompareVariant(t *testing.T) {
	v, err := ParseCompareVariant("time-size")
	assert.NoError(t, err)
	assert.Equal(t, CompareTimeSize, v)

	_, err = ParseCompareVariant("bogus")
	assert.Error(t, err)
}

func TestExtractDirections(t *testing.T) {
	assert.Equal(t, MirrorSet(), ExtractDirections(DirectionConfig{Variant: VariantMirror}))
	assert.Equal(t, UpdateSet(), ExtractDirections(DirectionConfig{Variant: VariantUpdate}))
	custom := DirectionSet{ExLeftOnly: DirLeft}
	assert.Equal(t, custom, ExtractDirections(DirectionConfig{Variant: VariantCustom, Custom: custom}))
	assert.Equal(t, TwoWayUpdateSet(), ExtractDirections(DirectionConfig{Variant: VariantTwoWay}))
}

func TestDetectMovesEnabled(t *testing.T) {
	assert.True(t, DirectionConfig{Variant: VariantTwoWay}.DetectMovesEnabled())
	assert.True(t, DirectionConfig{Variant: VariantMirror, DetectMovedFiles: true}.DetectMovesEnabled())
	assert.False(t, DirectionConfig{Variant: VariantMirror}.DetectMovesEnabled())
}
