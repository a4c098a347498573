package hierarchy

import (
	"github.com/wuhui20091515/FreeFileSync/internal/core/interfaces"
	"github.com/wuhui20091515/FreeFileSync/pkg/models"
)

// BaseFolderPair is the root of one pair tree: a configured (left root, right
// root) pair plus the comparison settings it was scanned with.
type BaseFolderPair struct {
	ContainerObject
	leftPath               interfaces.AbstractPath
	rightPath              interfaces.AbstractPath
	variant                models.CompareVariant
	fileTimeTolerance      int // seconds
	ignoreTimeShiftMinutes []uint
	filesByID              map[NodeID]*FilePair
}

// NewBaseFolderPair creates an empty pair tree for the given roots
func NewBaseFolderPair(left, right interfaces.AbstractPath, variant models.CompareVariant,
	fileTimeToleranceSec int, ignoreTimeShiftMinutes []uint) *BaseFolderPair {
	base := &BaseFolderPair{
		leftPath:               left,
		rightPath:              right,
		variant:                variant,
		fileTimeTolerance:      fileTimeToleranceSec,
		ignoreTimeShiftMinutes: ignoreTimeShiftMinutes,
		filesByID:              make(map[NodeID]*FilePair),
	}
	base.ContainerObject.baseFolder = base
	return base
}

// AbstractPath returns the configured root of the given side
func (b *BaseFolderPair) AbstractPath(side models.Side) interfaces.AbstractPath {
	if side == models.SideLeft {
		return b.leftPath
	}
	return b.rightPath
}

// CompareVariant returns the variant the tree was categorized with
func (b *BaseFolderPair) CompareVariant() models.CompareVariant { return b.variant }

// FileTimeTolerance returns the comparison time tolerance in seconds
func (b *BaseFolderPair) FileTimeTolerance() int { return b.fileTimeTolerance }

// IgnoreTimeShiftMinutes returns the whitelisted timezone-shift multiples
func (b *BaseFolderPair) IgnoreTimeShiftMinutes() []uint { return b.ignoreTimeShiftMinutes }

// FileByID resolves a move reference to its file pair, or nil
func (b *BaseFolderPair) FileByID(id NodeID) *FilePair {
	if id == NilNodeID {
		return nil
	}
	return b.filesByID[id]
}

func (b *BaseFolderPair) registerFile(file *FilePair)   { b.filesByID[file.id] = file }
func (b *BaseFolderPair) unregisterFile(file *FilePair) { delete(b.filesByID, file.id) }

// Flip swaps the left and right sides of the whole tree, including root
// paths, attributes, names, categories, and directions
func (b *BaseFolderPair) Flip() {
	b.leftPath, b.rightPath = b.rightPath, b.leftPath
	b.flipChildren()
}

// RemoveEmpty prunes all pairs that became empty on both sides, e.g. after a
// bulk delete
func (b *BaseFolderPair) RemoveEmpty() {
	b.removeEmptyChildren()
}

// AllCategoryEqual reports whether every item in the tree is categorized
// equal; such trees need no database load and no direction resolution
func (b *BaseFolderPair) AllCategoryEqual() bool {
	return allCategoryEqual(&b.ContainerObject)
}

func allCategoryEqual(c *ContainerObject) bool {
	for _, file := range c.files {
		if file.Category() != models.CatEqual {
			return false
		}
	}
	for _, link := range c.symlinks {
		if link.Category() != models.CatEqual {
			return false
		}
	}
	for _, folder := range c.folders {
		if folder.Category() != models.CatEqual || !allCategoryEqual(&folder.ContainerObject) {
			return false
		}
	}
	return true
}
