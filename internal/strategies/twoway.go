package strategies

import "github.com/wuhui20091515/FreeFileSync/pkg/models"

// TwoWayStrategy reconciles both sides against the last-sync database:
// changes propagate toward the unchanged side, double changes become
// conflicts. Move detection is always on when a database exists.
type TwoWayStrategy struct{}

// NewTwoWayStrategy creates the two-way policy
func NewTwoWayStrategy() *TwoWayStrategy { return &TwoWayStrategy{} }

// Name implements Strategy
func (s *TwoWayStrategy) Name() string { return string(models.VariantTwoWay) }

// Config implements Strategy
func (s *TwoWayStrategy) Config() models.DirectionConfig {
	return models.DirectionConfig{Variant: models.VariantTwoWay, DetectMovedFiles: true}
}

// Description implements Strategy
func (s *TwoWayStrategy) Description() string {
	return "Identify and propagate changes on both sides; deletions, moves and conflicts are detected automatically"
}
