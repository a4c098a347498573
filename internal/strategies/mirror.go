package strategies

import "github.com/wuhui20091515/FreeFileSync/pkg/models"

// MirrorStrategy makes the right side an exact copy of the left: right-only
// items are deleted, everything else copies left to right
type MirrorStrategy struct {
	detectMoves bool
}

// NewMirrorStrategy creates the mirror policy; detectMoves opts into
// rename detection via the last-sync database
func NewMirrorStrategy(detectMoves bool) *MirrorStrategy {
	return &MirrorStrategy{detectMoves: detectMoves}
}

// Name implements Strategy
func (s *MirrorStrategy) Name() string { return string(models.VariantMirror) }

// Config implements Strategy
func (s *MirrorStrategy) Config() models.DirectionConfig {
	return models.DirectionConfig{
		Variant:          models.VariantMirror,
		Custom:           models.MirrorSet(),
		DetectMovedFiles: s.detectMoves,
	}
}

// Description implements Strategy
func (s *MirrorStrategy) Description() string {
	return "Create a mirror backup of the left folder by adapting the right folder to match"
}
