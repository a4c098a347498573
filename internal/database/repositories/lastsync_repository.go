// Package repositories implements the persistence layer above the BoltDB
// store
package repositories

import (
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/wuhui20091515/FreeFileSync/internal/core/interfaces"
	"github.com/wuhui20091515/FreeFileSync/internal/database"
	"github.com/wuhui20091515/FreeFileSync/pkg/logger"
	"github.com/wuhui20091515/FreeFileSync/pkg/models"
)

// LastSyncRepository loads and saves the last-synchronized state per base
// pair. It implements interfaces.LastSyncLoader.
type LastSyncRepository struct {
	db     *database.Manager
	logger *zap.Logger
}

// NewLastSyncRepository creates a repository over an open database
func NewLastSyncRepository(db *database.Manager) *LastSyncRepository {
	return &LastSyncRepository{
		db:     db,
		logger: logger.Get().With(zap.String("component", "lastsync_repository")),
	}
}

// pairKey identifies a base pair by both root path phrases. The comparison
// variant is stored per record, not in the key: a variant switch must find
// the previous state to judge its staleness.
func pairKey(left, right interfaces.AbstractPath) []byte {
	return []byte(fmt.Sprintf("%s|%s",
		left.Device.PathPhrase(left.Path), right.Device.PathPhrase(right.Path)))
}

// LoadLastSyncState implements interfaces.LastSyncLoader. A missing record
// yields (nil, nil): the base pair falls back to "no database available".
func (r *LastSyncRepository) LoadLastSyncState(left, right interfaces.AbstractPath,
	cb interfaces.ProgressCallback) (*models.InSyncFolder, error) {
	if cb != nil {
		if err := cb.UpdateStatus(fmt.Sprintf("Loading synchronization database for %s...",
			left.DisplayPath())); err != nil {
			return nil, err
		}
	}

	var root *models.InSyncFolder
	err := r.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(database.BucketLastSync)).Get(pairKey(left, right))
		if data == nil {
			return nil
		}
		root = &models.InSyncFolder{}
		return json.Unmarshal(data, root)
	})
	if err != nil {
		r.logger.Warn("Failed to load last-sync state",
			zap.String("left", left.DisplayPath()),
			zap.String("right", right.DisplayPath()),
			zap.Error(err))
		return nil, err
	}
	return root, nil
}

// SaveLastSyncState persists the new in-sync state after a successful run
func (r *LastSyncRepository) SaveLastSyncState(left, right interfaces.AbstractPath,
	root *models.InSyncFolder) error {
	data, err := json.Marshal(root)
	if err != nil {
		return err
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(database.BucketLastSync)).Put(pairKey(left, right), data)
	})
}

// DeleteLastSyncState drops the stored state of a base pair
func (r *LastSyncRepository) DeleteLastSyncState(left, right interfaces.AbstractPath) error {
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(database.BucketLastSync)).Delete(pairKey(left, right))
	})
}
