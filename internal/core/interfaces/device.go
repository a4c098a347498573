package interfaces

import (
	"time"

	"github.com/wuhui20091515/FreeFileSync/pkg/models"
)

// ItemType classifies a storage item
type ItemType int8

const (
	// ItemFile is a regular file
	ItemFile ItemType = iota
	// ItemFolder is a directory
	ItemFolder
	// ItemSymlink is a symbolic link
	ItemSymlink
)

// String returns the display name of the item type
func (t ItemType) String() string {
	switch t {
	case ItemFolder:
		return "folder"
	case ItemSymlink:
		return "symlink"
	}
	return "file"
}

// DirEntry is a single child of a folder listing
type DirEntry struct {
	Name string
	Type ItemType
}

// IOCallback receives unbuffered byte deltas during stream copies. Returning
// an error aborts the transfer.
type IOCallback func(bytesDelta int64) error

// FileCopyResult reports the outcome of a completed file copy. A failure to
// set the target modification time is a non-fatal anomaly carried in
// ErrorModTime rather than raised as an error.
type FileCopyResult struct {
	FileSize     uint64
	ModTime      int64
	SourcePrint  uint64
	TargetPrint  uint64
	ErrorModTime error
}

// InputStream reads a file from a device. Read follows io.Reader semantics.
type InputStream interface {
	Read(buf []byte) (int, error)
	// BlockSize is the device's preferred transfer granularity; always > 0
	BlockSize() int
	Close() error
}

// FinalizeResult reports the outcome of closing an output stream
type FinalizeResult struct {
	TargetPrint  uint64
	ErrorModTime error
}

// OutputStream writes a new file on a device. Exactly one of Finalize or
// Cancel must be called; Cancel removes the partially written target.
type OutputStream interface {
	Write(buf []byte) (int, error)
	// Finalize closes the stream, then stamps the modification time (closing
	// first is required for correctness on certain network shares)
	Finalize() (*FinalizeResult, error)
	Cancel()
}

// TraverserCallback receives the events of one folder traversal. OnFolder
// returns the callback for the subfolder, or nil to prune. The error-handler
// results steer retry behavior for folder-level and item-level failures.
type TraverserCallback interface {
	OnFile(name string, attr models.FileAttributes) error
	OnSymlink(name string, attr models.LinkAttributes) error
	OnFolder(name string, attr models.FolderAttributes) (TraverserCallback, error)
	// OnDirError is invoked when listing the folder itself failed; the folder
	// contents must be considered incomplete
	OnDirError(err error) (ErrorHandling, error)
	// OnItemError is invoked when reading metadata of a single child failed
	OnItemError(err error, itemName string) (ErrorHandling, error)
}

// ErrorHandling is a traverser error-handler decision
type ErrorHandling int8

const (
	// ErrorRetry repeats the failed operation
	ErrorRetry ErrorHandling = iota
	// ErrorIgnore skips the failed item or folder
	ErrorIgnore
)

// TraverserWorkloadItem pairs a start folder with its callback
type TraverserWorkloadItem struct {
	Path     Path
	Callback TraverserCallback
}

// Device is the abstract filesystem handle: every component addresses storage
// only through this interface. Implementations must be safe for concurrent
// use ("thread-safe like an integer").
type Device interface {
	// Kind names the device family (e.g. "native", "gdrive", "memory")
	Kind() string
	// EqualTo reports device equivalence within the same kind
	EqualTo(other Device) bool
	// DisplayPath renders a device-relative path for the user
	DisplayPath(p Path) string
	// PathPhrase renders a path so the factory can reconstruct it
	PathPhrase(p Path) string
	// Timeout is the device's declared access timeout; 0 means none declared
	Timeout() time.Duration

	// GetItemType stats a path. Fast; does not distinguish missing from error.
	GetItemType(p Path) (ItemType, error)
	// ItemStillExists performs a case-sensitive name search by traversing
	// ancestors so it reliably reports "definitely not there". Used when
	// GetItemType fails and the caller must decide retry versus accept.
	ItemStillExists(p Path) (ItemType, bool, error)
	// ListFolder enumerates the direct children of a folder
	ListFolder(p Path) ([]DirEntry, error)

	// CreateFolderPlain creates a folder; fails with TargetExisting if present
	CreateFolderPlain(p Path) error
	RemoveFilePlain(p Path) error
	RemoveSymlinkPlain(p Path) error
	// RemoveFolderPlain removes an empty folder
	RemoveFolderPlain(p Path) error

	// MoveAndRename renames within this device; it fails with MoveUnsupported
	// when the device cannot rename between the two paths. With
	// replaceExisting false, a pre-existing target fails with TargetExisting
	// unless source and target are the same underlying item by fingerprint
	// (idempotent renames must not fail).
	MoveAndRename(from, to Path, replaceExisting bool) error

	OpenInput(p Path) (InputStream, error)
	// OpenOutput creates a new file; sizeHint preallocates, modTime is
	// stamped during Finalize. Fails with TargetExisting if present.
	OpenOutput(p Path, sizeHint *uint64, modTime *int64) (OutputStream, error)
	// CopyNewFile copies a file within this device; the target must not exist
	CopyNewFile(from, to Path, ioNotify IOCallback) (*FileCopyResult, error)

	ReadSymlink(p Path) (string, error)
	CreateSymlink(p Path, target string, modTime *int64) error
	// CopyOwnerAndPermissions copies owner and mode within this device; mode
	// is skipped for symlinks
	CopyOwnerAndPermissions(from, to Path) error

	// GetFreeDiskSpace returns available bytes, or a negative value when the
	// device cannot tell
	GetFreeDiskSpace(p Path) (int64, error)
	// SupportsRecycleBin probes whether items under p can be recycled
	SupportsRecycleBin(p Path) (bool, error)
	// RecycleItemIfExists moves an item to the device's recycle bin; a
	// missing item is not an error
	RecycleItemIfExists(p Path) error

	// TraverseFolder runs the traversal workload with at most parallelOps
	// concurrent folder listings
	TraverseFolder(workload []TraverserWorkloadItem, parallelOps int) error
}
