package hierarchy

import "github.com/wuhui20091515/FreeFileSync/pkg/models"

// FolderPair is a folder item with left-side and right-side attributes plus
// its children
type FolderPair struct {
	objectBase
	ContainerObject
	left  *models.FolderAttributes
	right *models.FolderAttributes
}

// IsEmpty reports whether the folder does not exist on the given side
func (d *FolderPair) IsEmpty(side models.Side) bool {
	return d.attributes(side) == nil
}

func (d *FolderPair) attributes(side models.Side) *models.FolderAttributes {
	if side == models.SideLeft {
		return d.left
	}
	return d.right
}

// Attributes returns the scanned attributes of the given side, or nil
func (d *FolderPair) Attributes(side models.Side) *models.FolderAttributes {
	return d.attributes(side)
}

// SetAttributes replaces the attributes of the given side; nil empties it
func (d *FolderPair) SetAttributes(side models.Side, attr *models.FolderAttributes) {
	if side == models.SideLeft {
		d.left = attr
	} else {
		d.right = attr
	}
}

// RemoveSide clears the given side of the folder and of every descendant
// after a recursive physical delete
func (d *FolderPair) RemoveSide(side models.Side) {
	if side == models.SideLeft {
		d.left = nil
		d.nameLeft = ""
	} else {
		d.right = nil
		d.nameRight = ""
	}
	for _, file := range d.files {
		if !file.IsEmpty(side) {
			file.RemoveSide(side)
		}
	}
	for _, link := range d.symlinks {
		if !link.IsEmpty(side) {
			link.RemoveSide(side)
		}
	}
	for _, folder := range d.folders {
		if !folder.IsEmpty(side) {
			folder.RemoveSide(side)
		}
	}
	d.recategorizeAfterRemove(d.left != nil, d.right != nil)
}

func (d *FolderPair) flip() {
	d.left, d.right = d.right, d.left
	d.flipBase()
	d.flipChildren()
}
