// Package fsops provides the device-generic filesystem operations built on
// top of the Device abstraction: recursive creation and removal, cross-device
// guards, and transactional file copies.
package fsops

import (
	"fmt"

	"github.com/wuhui20091515/FreeFileSync/internal/core/interfaces"
	ffserrors "github.com/wuhui20091515/FreeFileSync/pkg/errors"
)

// TempFileEnding marks copy-in-progress artifacts. The suffix is a
// cross-component contract: one-side-only items carrying it are always
// scheduled for deletion regardless of policy.
const TempFileEnding = ".ffs_tmp"

// CreateFolderIfMissingRecursion creates a folder and any missing parents.
// Returns true when the folder already existed; racing creators are
// tolerated.
func CreateFolderIfMissingRecursion(ap interfaces.AbstractPath) (bool, error) {
	err := ap.Device.CreateFolderPlain(ap.Path)
	if err == nil {
		return false, nil
	}
	if ffserrors.IsTargetExisting(err) {
		return true, nil
	}

	parent, ok := ap.Parent()
	if !ok {
		// device root must exist
		return true, nil
	}
	if _, err := CreateFolderIfMissingRecursion(parent); err != nil {
		return false, err
	}
	switch err := ap.Device.CreateFolderPlain(ap.Path); {
	case err == nil:
		return false, nil
	case ffserrors.IsTargetExisting(err):
		return true, nil
	default:
		return false, err
	}
}

// itemDefinitelyGone probes whether a failed removal can be accepted because
// the item does not exist
func itemDefinitelyGone(ap interfaces.AbstractPath) bool {
	_, exists, err := ap.Device.ItemStillExists(ap.Path)
	return err == nil && !exists
}

// RemoveFileIfExists deletes a file; a missing file is not an error
func RemoveFileIfExists(ap interfaces.AbstractPath) error {
	err := ap.Device.RemoveFilePlain(ap.Path)
	if err != nil && itemDefinitelyGone(ap) {
		return nil
	}
	return err
}

// RemoveSymlinkIfExists deletes a symlink; a missing symlink is not an error
func RemoveSymlinkIfExists(ap interfaces.AbstractPath) error {
	err := ap.Device.RemoveSymlinkPlain(ap.Path)
	if err != nil && itemDefinitelyGone(ap) {
		return nil
	}
	return err
}

// RemoveFolderIfExistsRecursion deletes a folder subtree. Traversal is
// deferred-recursive: children are listed first, files deleted, then
// symlinks, then subfolders are descended, and folders removed innermost
// first, so stack depth stays bounded by an explicit work list. The
// callbacks fire before each file and folder deletion and may cancel.
func RemoveFolderIfExistsRecursion(ap interfaces.AbstractPath,
	onBeforeFileDeletion, onBeforeFolderDeletion func(displayPath string) error) error {

	if _, err := ap.Device.GetItemType(ap.Path); err != nil {
		if itemDefinitelyGone(ap) {
			return nil
		}
		return err
	}

	// breadth-first listing pass: delete leaf items, queue folders
	pending := []interfaces.AbstractPath{ap}
	var folders []interfaces.AbstractPath
	for len(pending) > 0 {
		folder := pending[0]
		pending = pending[1:]
		folders = append(folders, folder)

		entries, err := folder.Device.ListFolder(folder.Path)
		if err != nil {
			return err
		}
		var symlinks, subfolders []interfaces.AbstractPath
		for _, entry := range entries {
			child := folder.Append(entry.Name)
			switch entry.Type {
			case interfaces.ItemFile:
				if onBeforeFileDeletion != nil {
					if err := onBeforeFileDeletion(child.DisplayPath()); err != nil {
						return err
					}
				}
				if err := child.Device.RemoveFilePlain(child.Path); err != nil {
					return err
				}
			case interfaces.ItemSymlink:
				symlinks = append(symlinks, child)
			case interfaces.ItemFolder:
				subfolders = append(subfolders, child)
			}
		}
		for _, link := range symlinks {
			if onBeforeFileDeletion != nil {
				if err := onBeforeFileDeletion(link.DisplayPath()); err != nil {
					return err
				}
			}
			if err := link.Device.RemoveSymlinkPlain(link.Path); err != nil {
				return err
			}
		}
		pending = append(pending, subfolders...)
	}

	// innermost folders first
	for i := len(folders) - 1; i >= 0; i-- {
		folder := folders[i]
		if onBeforeFolderDeletion != nil {
			if err := onBeforeFolderDeletion(folder.DisplayPath()); err != nil {
				return err
			}
		}
		if err := folder.Device.RemoveFolderPlain(folder.Path); err != nil {
			return err
		}
	}
	return nil
}

// MoveAndRename renames an item, failing with MoveUnsupported across
// non-equivalent devices so callers can fall back to copy plus delete
func MoveAndRename(from, to interfaces.AbstractPath, replaceExisting bool) error {
	if !interfaces.EquivalentDevices(from.Device, to.Device) {
		return ffserrors.NewMoveUnsupported(
			fmt.Sprintf("Cannot move %s to %s", from.DisplayPath(), to.DisplayPath()),
			"paths are on different devices")
	}
	return from.Device.MoveAndRename(from.Path, to.Path, replaceExisting)
}

// CopySymlink recreates a symlink at the target path; works across devices
func CopySymlink(src, dst interfaces.AbstractPath, modTime *int64) error {
	target, err := src.Device.ReadSymlink(src.Path)
	if err != nil {
		return err
	}
	return dst.Device.CreateSymlink(dst.Path, target, modTime)
}

// CopyNewFolder creates the target folder; permissions are copied only
// between equivalent devices
func CopyNewFolder(src, dst interfaces.AbstractPath, copyPermissions bool) error {
	if err := dst.Device.CreateFolderPlain(dst.Path); err != nil {
		return err
	}
	if copyPermissions && interfaces.EquivalentDevices(src.Device, dst.Device) {
		return src.Device.CopyOwnerAndPermissions(src.Path, dst.Path)
	}
	return nil
}
