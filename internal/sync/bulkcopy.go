package sync

import (
	"github.com/wuhui20091515/FreeFileSync/internal/core/interfaces"
	"github.com/wuhui20091515/FreeFileSync/internal/fsops"
	"github.com/wuhui20091515/FreeFileSync/internal/hierarchy"
	ffserrors "github.com/wuhui20091515/FreeFileSync/pkg/errors"
	"github.com/wuhui20091515/FreeFileSync/pkg/models"
)

const (
	txtCreatingFile   = "Creating file %x"
	txtCreatingFolder = "Creating folder %x"
	txtCreatingLink   = "Creating symbolic link %x"
)

// CopyToAlternateFolder copies the selected items of both sides into a
// separate target folder, outside the regular synchronization flow. Already
// completed items survive a cancellation.
func CopyToAlternateFolder(selectionLeft, selectionRight []hierarchy.FsObject,
	targetFolder interfaces.AbstractPath, keepRelPaths, overwriteIfExists bool,
	cb interfaces.ProgressCallback) error {

	// drop side-empty rows for correct stats
	rowsLeft := dropEmptyRows(selectionLeft, models.SideLeft)
	rowsRight := dropEmptyRows(selectionRight, models.SideRight)

	itemTotal := len(rowsLeft) + len(rowsRight)
	var bytesTotal int64
	for _, obj := range rowsLeft {
		if file, ok := obj.(*hierarchy.FilePair); ok {
			bytesTotal += int64(file.FileSize(models.SideLeft))
		}
	}
	for _, obj := range rowsRight {
		if file, ok := obj.(*hierarchy.FilePair); ok {
			bytesTotal += int64(file.FileSize(models.SideRight))
		}
	}

	if cb != nil {
		if err := cb.InitNewPhase(itemTotal, bytesTotal, interfaces.PhaseNone); err != nil {
			return err
		}
	}

	if err := copyToAlternateFolderFrom(rowsLeft, models.SideLeft, targetFolder,
		keepRelPaths, overwriteIfExists, cb); err != nil {
		return err
	}
	return copyToAlternateFolderFrom(rowsRight, models.SideRight, targetFolder,
		keepRelPaths, overwriteIfExists, cb)
}

func dropEmptyRows(rows []hierarchy.FsObject, side models.Side) []hierarchy.FsObject {
	kept := make([]hierarchy.FsObject, 0, len(rows))
	for _, obj := range rows {
		if obj != nil && !obj.IsEmpty(side) {
			kept = append(kept, obj)
		}
	}
	return kept
}

func copyToAlternateFolderFrom(rows []hierarchy.FsObject, side models.Side,
	targetFolder interfaces.AbstractPath, keepRelPaths, overwriteIfExists bool,
	cb interfaces.ProgressCallback) error {

	// copyItem runs one plain copy with retry-once-after-creating-parents
	// semantics: best amortized performance when "already existing" is the
	// most common failure
	copyItem := func(targetPath interfaces.AbstractPath,
		copyItemPlain func(deleteTargetItem func() error) error) error {

		var deletionError error
		tryDeleteTargetItem := func() error {
			if overwriteIfExists {
				if err := targetPath.Device.RemoveFilePlain(targetPath.Path); err != nil {
					deletionError = err // probably "not existing"; defer evaluation
				}
			}
			return nil
		}

		err := copyItemPlain(tryDeleteTargetItem)
		if err == nil {
			return nil
		}
		if ffserrors.IsCancelled(err) {
			return err
		}

		alreadyExisting := false
		if _, terr := targetPath.Device.GetItemType(targetPath.Path); terr == nil {
			alreadyExisting = true
		}
		if alreadyExisting {
			if deletionError != nil {
				return deletionError
			}
			return err
		}

		// parent folder missing => create and retry once
		if parent, ok := targetPath.Parent(); ok {
			if _, err := fsops.CreateFolderIfMissingRecursion(parent); err != nil {
				return err
			}
		}
		return copyItemPlain(nil)
	}

	for _, obj := range rows {
		relPath := interfaces.MakePath(obj.Name(side))
		if keepRelPaths {
			relPath = obj.RelPath(side)
		}
		sourcePath := obj.AbstractPath(side)
		targetPath := targetFolder.AppendRel(relPath)

		var itemErr error
		hierarchy.VisitFsObject(obj,
			func(folder *hierarchy.FolderPair) {
				itemErr = tryReportingError(func() error {
					if err := notifyItemAction(cb, txtCreatingFolder, targetPath.DisplayPath()); err != nil {
						return err
					}
					// "already exists" is tolerated: intermediate parents may
					// have been created for earlier rows
					if _, err := fsops.CreateFolderIfMissingRecursion(targetPath); err != nil {
						return err
					}
					reportDelta(cb, 1, 0)
					return nil
				}, cb)
			},
			func(file *hierarchy.FilePair) {
				itemErr = tryReportingError(func() error {
					if err := notifyItemAction(cb, txtCreatingFile, targetPath.DisplayPath()); err != nil {
						return err
					}
					attr := file.Attributes(side)
					err := copyItem(targetPath, func(deleteTargetItem func() error) error {
						_, copyErr := fsops.CopyFileTransactional(sourcePath, *attr, targetPath,
							true, deleteTargetItem, func(bytesDelta int64) error {
								reportDelta(cb, 0, bytesDelta)
								return requestUpdate(cb)
							})
						return copyErr
					})
					if err != nil {
						return err
					}
					reportDelta(cb, 1, 0)
					return nil
				}, cb)
			},
			func(link *hierarchy.SymlinkPair) {
				itemErr = tryReportingError(func() error {
					if err := notifyItemAction(cb, txtCreatingLink, targetPath.DisplayPath()); err != nil {
						return err
					}
					if overwriteIfExists {
						if err := fsops.RemoveSymlinkIfExists(targetPath); err != nil {
							return err
						}
					}
					attr := link.Attributes(side)
					if err := fsops.CopySymlink(sourcePath, targetPath, &attr.ModTime); err != nil {
						return err
					}
					reportDelta(cb, 1, 0)
					return nil
				}, cb)
			})
		if itemErr != nil {
			return itemErr
		}
		if err := requestUpdate(cb); err != nil {
			return err
		}
	}
	return nil
}
