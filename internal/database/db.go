// Package database provides the BoltDB store holding the persisted
// last-synchronized state
package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/wuhui20091515/FreeFileSync/pkg/logger"
)

// Database buckets
const (
	// BucketLastSync stores one InSyncFolder tree per base pair
	BucketLastSync = "last_sync"

	// BucketSessions stores per-run summary records
	BucketSessions = "sessions"
)

// Manager manages the BoltDB database connection
type Manager struct {
	DB      *bolt.DB
	path    string
	logger  *zap.Logger
	mu      sync.Mutex
	isOpen  bool
	options *Options
}

// Options represents database options
type Options struct {
	Path     string        `json:"path"`
	FileMode uint32        `json:"file_mode"`
	Timeout  time.Duration `json:"timeout"`
	ReadOnly bool          `json:"read_only"`
}

// DefaultOptions returns default database options
func DefaultOptions() *Options {
	home, _ := os.UserHomeDir()
	return &Options{
		Path:     filepath.Join(home, ".ffsync", "ffsync.db"),
		FileMode: 0600,
		Timeout:  1 * time.Second,
	}
}

// NewManager creates a new database manager
func NewManager(options *Options) *Manager {
	if options == nil {
		options = DefaultOptions()
	}
	return &Manager{
		path:    options.Path,
		logger:  logger.Get(),
		options: options,
	}
}

// Open opens the database connection and creates the buckets
func (m *Manager) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isOpen {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0700); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bolt.Open(m.path, os.FileMode(m.options.FileMode), &bolt.Options{
		Timeout:  m.options.Timeout,
		ReadOnly: m.options.ReadOnly,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	m.DB = db
	m.isOpen = true

	if m.options.ReadOnly {
		return nil
	}
	return db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range []string{BucketLastSync, BucketSessions} {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
}

// Close closes the database connection
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.isOpen {
		return nil
	}
	m.isOpen = false
	return m.DB.Close()
}

// View runs a read-only transaction
func (m *Manager) View(fn func(tx *bolt.Tx) error) error {
	return m.DB.View(fn)
}

// Update runs a read-write transaction
func (m *Manager) Update(fn func(tx *bolt.Tx) error) error {
	return m.DB.Update(fn)
}
