// Package strategies provides the named direction-policy presets selectable
// from configuration
package strategies

import (
	"fmt"

	"github.com/wuhui20091515/FreeFileSync/pkg/models"
)

// Strategy maps a policy name onto its direction configuration
type Strategy interface {
	// Name returns the configuration name of the strategy
	Name() string
	// Config returns the direction configuration the resolver consumes
	Config() models.DirectionConfig
	// Description explains the strategy in one line
	Description() string
}

// FromName resolves a configured strategy name
func FromName(name string, detectMoves bool) (Strategy, error) {
	switch models.SyncVariant(name) {
	case models.VariantTwoWay:
		return NewTwoWayStrategy(), nil
	case models.VariantMirror:
		return NewMirrorStrategy(detectMoves), nil
	case models.VariantUpdate:
		return NewUpdateStrategy(detectMoves), nil
	}
	return nil, fmt.Errorf("unknown sync variant: %q", name)
}
