package hierarchy

import "github.com/wuhui20091515/FreeFileSync/pkg/models"

// SymlinkPair is a symbolic-link item with left-side and right-side attributes
type SymlinkPair struct {
	objectBase
	left  *models.LinkAttributes
	right *models.LinkAttributes
}

// IsEmpty reports whether the symlink does not exist on the given side
func (l *SymlinkPair) IsEmpty(side models.Side) bool {
	return l.attributes(side) == nil
}

func (l *SymlinkPair) attributes(side models.Side) *models.LinkAttributes {
	if side == models.SideLeft {
		return l.left
	}
	return l.right
}

// Attributes returns the scanned attributes of the given side, or nil
func (l *SymlinkPair) Attributes(side models.Side) *models.LinkAttributes {
	return l.attributes(side)
}

// SetAttributes replaces the attributes of the given side; nil empties it
func (l *SymlinkPair) SetAttributes(side models.Side, attr *models.LinkAttributes) {
	if side == models.SideLeft {
		l.left = attr
	} else {
		l.right = attr
	}
}

// ModTime returns the modification time of the given side in Unix seconds
func (l *SymlinkPair) ModTime(side models.Side) int64 {
	if attr := l.attributes(side); attr != nil {
		return attr.ModTime
	}
	return 0
}

// RemoveSide clears the given side after a physical delete and re-derives the
// category from the remaining side
func (l *SymlinkPair) RemoveSide(side models.Side) {
	if side == models.SideLeft {
		l.left = nil
		l.nameLeft = ""
	} else {
		l.right = nil
		l.nameRight = ""
	}
	l.recategorizeAfterRemove(l.left != nil, l.right != nil)
}

func (l *SymlinkPair) flip() {
	l.left, l.right = l.right, l.left
	l.flipBase()
}
