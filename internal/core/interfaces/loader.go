package interfaces

import "github.com/wuhui20091515/FreeFileSync/pkg/models"

// LastSyncLoader supplies the parsed last-synchronized state for a base pair.
// Implementations may block and report progress through the callback; load
// errors degrade to "no database available" (nil root, non-nil error).
type LastSyncLoader interface {
	LoadLastSyncState(left, right AbstractPath, cb ProgressCallback) (*models.InSyncFolder, error)
}
