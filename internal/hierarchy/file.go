package hierarchy

import "github.com/wuhui20091515/FreeFileSync/pkg/models"

// FilePair is a file item with left-side and right-side attributes. Either
// side may be empty (nil), never both.
type FilePair struct {
	objectBase
	left    *models.FileAttributes
	right   *models.FileAttributes
	moveRef NodeID
}

// IsEmpty reports whether the file does not exist on the given side
func (f *FilePair) IsEmpty(side models.Side) bool {
	return f.attributes(side) == nil
}

func (f *FilePair) attributes(side models.Side) *models.FileAttributes {
	if side == models.SideLeft {
		return f.left
	}
	return f.right
}

// Attributes returns the scanned attributes of the given side, or nil
func (f *FilePair) Attributes(side models.Side) *models.FileAttributes {
	return f.attributes(side)
}

// SetAttributes replaces the attributes of the given side; nil empties it
func (f *FilePair) SetAttributes(side models.Side, attr *models.FileAttributes) {
	if side == models.SideLeft {
		f.left = attr
	} else {
		f.right = attr
	}
}

// ModTime returns the modification time of the given side in Unix seconds
func (f *FilePair) ModTime(side models.Side) int64 {
	if attr := f.attributes(side); attr != nil {
		return attr.ModTime
	}
	return 0
}

// FileSize returns the size of the given side in bytes
func (f *FilePair) FileSize(side models.Side) uint64 {
	if attr := f.attributes(side); attr != nil {
		return attr.Size
	}
	return 0
}

// FilePrint returns the device-persistent file identifier of the given side;
// 0 means unknown
func (f *FilePair) FilePrint(side models.Side) uint64 {
	if attr := f.attributes(side); attr != nil {
		return attr.FilePrint
	}
	return 0
}

// ClearFilePrint discards an ambiguous file identifier (hardlink or alias
// duplicates found by the move detector)
func (f *FilePair) ClearFilePrint(side models.Side) {
	if attr := f.attributes(side); attr != nil {
		attr.FilePrint = 0
	}
}

// MoveRef returns the move-pair partner's node id, or NilNodeID
func (f *FilePair) MoveRef() NodeID { return f.moveRef }

// SetMoveRef links this file to its move-pair partner. The references of a
// linked pair must be mutually consistent or both nil.
func (f *FilePair) SetMoveRef(id NodeID) { f.moveRef = id }

// RemoveSide clears the given side after a physical delete and re-derives the
// category from the remaining side
func (f *FilePair) RemoveSide(side models.Side) {
	if side == models.SideLeft {
		f.left = nil
		f.nameLeft = ""
	} else {
		f.right = nil
		f.nameRight = ""
	}
	f.moveRef = NilNodeID
	f.recategorizeAfterRemove(f.left != nil, f.right != nil)
}

func (o *objectBase) recategorizeAfterRemove(haveLeft, haveRight bool) {
	switch {
	case haveLeft && !haveRight:
		o.SetCategory(models.CatLeftOnly, "")
	case !haveLeft && haveRight:
		o.SetCategory(models.CatRightOnly, "")
	default:
		o.SetCategory(models.CatEqual, "")
		o.SetSyncDir(models.DirNone)
	}
}

func (f *FilePair) flip() {
	f.left, f.right = f.right, f.left
	f.flipBase()
}
