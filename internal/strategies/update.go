package strategies

import "github.com/wuhui20091515/FreeFileSync/pkg/models"

// UpdateStrategy copies new and newer files from left to right; nothing is
// ever deleted on the right
type UpdateStrategy struct {
	detectMoves bool
}

// NewUpdateStrategy creates the update policy
func NewUpdateStrategy(detectMoves bool) *UpdateStrategy {
	return &UpdateStrategy{detectMoves: detectMoves}
}

// Name implements Strategy
func (s *UpdateStrategy) Name() string { return string(models.VariantUpdate) }

// Config implements Strategy
func (s *UpdateStrategy) Config() models.DirectionConfig {
	return models.DirectionConfig{
		Variant:          models.VariantUpdate,
		Custom:           models.UpdateSet(),
		DetectMovedFiles: s.detectMoves,
	}
}

// Description implements Strategy
func (s *UpdateStrategy) Description() string {
	return "Copy new and updated files to the right folder"
}
