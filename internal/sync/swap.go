package sync

import (
	"github.com/wuhui20091515/FreeFileSync/internal/core/interfaces"
	"github.com/wuhui20091515/FreeFileSync/internal/hierarchy"
)

// SwapSides flips left and right of the given base pairs and re-resolves all
// sync directions under the (already mirrored) policies
func SwapSides(policies []DirectionPolicy, loader interfaces.LastSyncLoader,
	cb interfaces.ProgressCallback) error {
	for _, policy := range policies {
		policy.Base.Flip()
	}
	return RedetermineSyncDirections(policies, loader, cb)
}

// AllElementsEqual reports whether nothing needs synchronization
func AllElementsEqual(bases []*hierarchy.BaseFolderPair) bool {
	for _, base := range bases {
		if !base.AllCategoryEqual() {
			return false
		}
	}
	return true
}
