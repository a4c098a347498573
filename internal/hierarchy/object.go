// Package hierarchy implements the in-memory forest of item pairs produced by
// scanning: BaseFolderPair -> FolderPair -> {FilePair, SymlinkPair,
// FolderPair...}. Each node holds left-side and right-side attributes plus the
// computed category and resolved sync direction.
package hierarchy

import (
	"github.com/google/uuid"

	"github.com/wuhui20091515/FreeFileSync/internal/core/interfaces"
	"github.com/wuhui20091515/FreeFileSync/pkg/models"
)

// NodeID is the stable identifier of a tree node; move references are weak
// pointers by NodeID, never ownership.
type NodeID string

// NilNodeID is the unset node reference
const NilNodeID NodeID = ""

func newNodeID() NodeID {
	return NodeID(uuid.NewString())
}

// FsObject is any pair node: file, symlink, or folder
type FsObject interface {
	ID() NodeID
	// Name returns the item name on the given side; for a side-empty node it
	// falls back to the present side's name
	Name(side models.Side) string
	NameAny() string
	IsEmpty(side models.Side) bool

	Category() models.Category
	// CategoryDescription is the textual reason attached to CatConflict and
	// CatDifferentMetadata
	CategoryDescription() string
	SetCategory(cat models.Category, descr string)

	SyncDir() models.SyncDirection
	// ConflictMessage is non-empty iff the resolved direction is "conflict"
	ConflictMessage() string
	SetSyncDir(dir models.SyncDirection)
	SetSyncDirConflict(msg string)

	IsActive() bool
	SetActive(active bool)

	RelPath(side models.Side) interfaces.Path
	// RelPathAny returns the relative path using the left side, falling back
	// to the right for side-empty components
	RelPathAny() interfaces.Path
	AbstractPath(side models.Side) interfaces.AbstractPath

	Base() *BaseFolderPair
	Parent() *ContainerObject

	// RemoveSide clears the given side's attributes after a physical delete;
	// folders clear recursively
	RemoveSide(side models.Side)

	flip()
}

// objectBase carries the state shared by all pair nodes
type objectBase struct {
	id          NodeID
	nameLeft    string
	nameRight   string
	parent      *ContainerObject
	base        *BaseFolderPair
	cat         models.Category
	catDescr    string
	dir         models.SyncDirection
	conflictMsg string
	active      bool
}

func (o *objectBase) init(parent *ContainerObject, nameLeft, nameRight string) {
	o.id = newNodeID()
	o.nameLeft = nameLeft
	o.nameRight = nameRight
	o.parent = parent
	o.base = parent.baseFolder
	o.active = true
}

// ID returns the stable node identifier
func (o *objectBase) ID() NodeID { return o.id }

// Name returns the item name on the given side, falling back to the other
// side when this one is empty
func (o *objectBase) Name(side models.Side) string {
	if side == models.SideLeft {
		if o.nameLeft != "" {
			return o.nameLeft
		}
		return o.nameRight
	}
	if o.nameRight != "" {
		return o.nameRight
	}
	return o.nameLeft
}

// NameAny returns the left name, falling back to the right
func (o *objectBase) NameAny() string { return o.Name(models.SideLeft) }

// SetName records the item name of one side, e.g. after the executor created
// the item there
func (o *objectBase) SetName(side models.Side, name string) {
	if side == models.SideLeft {
		o.nameLeft = name
	} else {
		o.nameRight = name
	}
}

// Category returns the comparison category
func (o *objectBase) Category() models.Category { return o.cat }

// CategoryDescription returns the reason attached to conflict categories
func (o *objectBase) CategoryDescription() string { return o.catDescr }

// SetCategory records the comparison category and its optional reason
func (o *objectBase) SetCategory(cat models.Category, descr string) {
	o.cat = cat
	o.catDescr = descr
}

// SyncDir returns the resolved direction; DirNone with a non-empty
// ConflictMessage means "unresolved conflict"
func (o *objectBase) SyncDir() models.SyncDirection { return o.dir }

// ConflictMessage returns the conflict annotation, if any
func (o *objectBase) ConflictMessage() string { return o.conflictMsg }

// SetSyncDir resolves the item to a direction and clears any conflict
func (o *objectBase) SetSyncDir(dir models.SyncDirection) {
	o.dir = dir
	o.conflictMsg = ""
}

// SetSyncDirConflict marks the item as an unresolvable conflict
func (o *objectBase) SetSyncDirConflict(msg string) {
	o.dir = models.DirNone
	o.conflictMsg = msg
}

// IsActive reports whether filtering left the item enabled
func (o *objectBase) IsActive() bool { return o.active }

// SetActive records the filter decision
func (o *objectBase) SetActive(active bool) { o.active = active }

// Base returns the owning base pair
func (o *objectBase) Base() *BaseFolderPair { return o.base }

// Parent returns the containing folder's child list
func (o *objectBase) Parent() *ContainerObject { return o.parent }

// RelPath builds the device-relative path of the item on the given side
func (o *objectBase) RelPath(side models.Side) interfaces.Path {
	if o.parent == nil || o.parent.owner == nil {
		return interfaces.MakePath(o.Name(side))
	}
	return o.parent.owner.RelPath(side).Append(o.Name(side))
}

// RelPathAny builds the relative path preferring left-side names
func (o *objectBase) RelPathAny() interfaces.Path {
	return o.RelPath(models.SideLeft)
}

// AbstractPath resolves the item's full path on the given side
func (o *objectBase) AbstractPath(side models.Side) interfaces.AbstractPath {
	return o.base.AbstractPath(side).AppendRel(o.RelPath(side))
}

func (o *objectBase) flipBase() {
	o.nameLeft, o.nameRight = o.nameRight, o.nameLeft
	o.cat = o.cat.Flip()
	o.dir = o.dir.Flip()
}
