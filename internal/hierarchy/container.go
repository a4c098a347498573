package hierarchy

import (
	"sort"

	"github.com/wuhui20091515/FreeFileSync/pkg/models"
)

// ContainerObject holds the children of a folder level: files, symlinks, and
// subfolders. Siblings are kept in case-sensitive name order.
type ContainerObject struct {
	files      []*FilePair
	symlinks   []*SymlinkPair
	folders    []*FolderPair
	owner      *FolderPair // nil at the base root
	baseFolder *BaseFolderPair
}

// Files returns the file children
func (c *ContainerObject) Files() []*FilePair { return c.files }

// Symlinks returns the symlink children
func (c *ContainerObject) Symlinks() []*SymlinkPair { return c.symlinks }

// Folders returns the subfolder children
func (c *ContainerObject) Folders() []*FolderPair { return c.folders }

// AddFile creates a file pair below this container. A nil attribute pointer
// marks that side as empty; a pair must not be empty on both sides.
func (c *ContainerObject) AddFile(nameLeft, nameRight string, left, right *models.FileAttributes) *FilePair {
	file := &FilePair{left: left, right: right}
	file.init(c, nameLeft, nameRight)
	c.files = append(c.files, file)
	c.baseFolder.registerFile(file)
	return file
}

// AddSymlink creates a symlink pair below this container
func (c *ContainerObject) AddSymlink(nameLeft, nameRight string, left, right *models.LinkAttributes) *SymlinkPair {
	link := &SymlinkPair{left: left, right: right}
	link.init(c, nameLeft, nameRight)
	c.symlinks = append(c.symlinks, link)
	return link
}

// AddFolder creates a folder pair below this container
func (c *ContainerObject) AddFolder(nameLeft, nameRight string, left, right *models.FolderAttributes) *FolderPair {
	folder := &FolderPair{left: left, right: right}
	folder.init(c, nameLeft, nameRight)
	folder.ContainerObject.owner = folder
	folder.ContainerObject.baseFolder = c.baseFolder
	c.folders = append(c.folders, folder)
	return folder
}

// SortChildren orders all siblings case-sensitively by name, recursively.
// Engine passes rely on this for deterministic processing order.
func (c *ContainerObject) SortChildren() {
	sort.Slice(c.files, func(i, j int) bool { return c.files[i].NameAny() < c.files[j].NameAny() })
	sort.Slice(c.symlinks, func(i, j int) bool { return c.symlinks[i].NameAny() < c.symlinks[j].NameAny() })
	sort.Slice(c.folders, func(i, j int) bool { return c.folders[i].NameAny() < c.folders[j].NameAny() })
	for _, folder := range c.folders {
		folder.SortChildren()
	}
}

// removeEmptyChildren prunes pairs that became empty on both sides
func (c *ContainerObject) removeEmptyChildren() {
	files := c.files[:0]
	for _, file := range c.files {
		if !file.IsEmpty(models.SideLeft) || !file.IsEmpty(models.SideRight) {
			files = append(files, file)
		} else {
			c.baseFolder.unregisterFile(file)
		}
	}
	c.files = files

	links := c.symlinks[:0]
	for _, link := range c.symlinks {
		if !link.IsEmpty(models.SideLeft) || !link.IsEmpty(models.SideRight) {
			links = append(links, link)
		}
	}
	c.symlinks = links

	folders := c.folders[:0]
	for _, folder := range c.folders {
		folder.removeEmptyChildren()
		if !folder.IsEmpty(models.SideLeft) || !folder.IsEmpty(models.SideRight) ||
			len(folder.files) > 0 || len(folder.symlinks) > 0 || len(folder.folders) > 0 {
			folders = append(folders, folder)
		}
	}
	c.folders = folders
}

func (c *ContainerObject) flipChildren() {
	for _, file := range c.files {
		file.flip()
	}
	for _, link := range c.symlinks {
		link.flip()
	}
	for _, folder := range c.folders {
		folder.flip()
	}
}
