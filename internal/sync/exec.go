package sync

import (
	"github.com/wuhui20091515/FreeFileSync/internal/core/interfaces"
	"github.com/wuhui20091515/FreeFileSync/internal/fsops"
	"github.com/wuhui20091515/FreeFileSync/internal/hierarchy"
	ffserrors "github.com/wuhui20091515/FreeFileSync/pkg/errors"
	"github.com/wuhui20091515/FreeFileSync/pkg/models"
)

const txtUpdatingFile = "Updating file %x"

// ExecuteConfig controls how resolved directions are applied
type ExecuteConfig struct {
	UseRecycleBin   bool
	CopyPermissions bool
}

// ExecuteResult summarizes one executor run
type ExecuteResult struct {
	ItemsProcessed int
	BytesCopied    int64
	Conflicts      int
}

// executor applies the resolved sync directions of one base pair
type executor struct {
	cfg    ExecuteConfig
	cb     interfaces.ProgressCallback
	result ExecuteResult
}

// ExecuteDirections applies every active, resolved direction of a base pair:
// folder creations, transactional file copies, symlink copies, deletions,
// and the move-pair rename fast path. Conflicts and inactive items are
// skipped. The pair tree is updated in place so it reflects the disk state
// afterwards.
func ExecuteDirections(base *hierarchy.BaseFolderPair, cfg ExecuteConfig,
	cb interfaces.ProgressCallback) (ExecuteResult, error) {

	e := &executor{cfg: cfg, cb: cb}

	items, bytes := countWorkload(&base.ContainerObject)
	if cb != nil {
		if err := cb.InitNewPhase(items, bytes, interfaces.PhaseSynchronizing); err != nil {
			return e.result, err
		}
	}

	if err := e.executeMoves(base); err != nil {
		return e.result, err
	}
	err := e.processContainer(&base.ContainerObject)
	base.RemoveEmpty()
	return e.result, err
}

func needsAction(obj hierarchy.FsObject) bool {
	return obj.IsActive() && obj.ConflictMessage() == "" && obj.SyncDir() != models.DirNone
}

func countWorkload(container *hierarchy.ContainerObject) (items int, bytes int64) {
	for _, file := range container.Files() {
		if needsAction(file) {
			items++
			source := sourceSideOf(file.SyncDir())
			if !file.IsEmpty(source) {
				bytes += int64(file.FileSize(source))
			}
		}
	}
	for _, link := range container.Symlinks() {
		if needsAction(link) {
			items++
		}
	}
	for _, folder := range container.Folders() {
		if needsAction(folder) {
			items++
		}
		subItems, subBytes := countWorkload(&folder.ContainerObject)
		items += subItems
		bytes += subBytes
	}
	return items, bytes
}

// sourceSideOf maps a direction onto the side supplying the data
func sourceSideOf(dir models.SyncDirection) models.Side {
	if dir == models.DirLeft {
		return models.SideRight
	}
	return models.SideLeft
}

// executeMoves renames detected move pairs in place of delete plus copy.
// A rename the device cannot perform falls back to the regular pass.
func (e *executor) executeMoves(base *hierarchy.BaseFolderPair) error {
	var moved []*hierarchy.FilePair
	collectMoves(&base.ContainerObject, &moved)

	handled := make(map[hierarchy.NodeID]bool)
	for _, file := range moved {
		if handled[file.ID()] || !needsAction(file) {
			continue
		}
		partner := base.FileByID(file.MoveRef())
		if partner == nil || partner.MoveRef() != file.ID() {
			continue
		}
		handled[file.ID()] = true
		handled[partner.ID()] = true

		dir := file.SyncDir()
		target := sourceSideOf(dir).Other()

		// the creation node is empty on the target side, the deletion node
		// still has the old item there
		creation, deletion := file, partner
		if creation.IsEmpty(target) == deletion.IsEmpty(target) {
			continue
		}
		if !creation.IsEmpty(target) {
			creation, deletion = deletion, creation
		}

		from := deletion.AbstractPath(target)
		to := creation.Base().AbstractPath(target).AppendRel(creation.RelPath(sourceSideOf(dir)))

		err := tryReportingError(func() error {
			if err := notifyItemAction(e.cb, "Moving file %x", from.DisplayPath()+" -> "+to.DisplayPath()); err != nil {
				return err
			}
			if parent, ok := to.Parent(); ok {
				if _, err := fsops.CreateFolderIfMissingRecursion(parent); err != nil {
					return err
				}
			}
			if err := fsops.MoveAndRename(from, to, false); err != nil {
				if ffserrors.IsMoveUnsupported(err) {
					// fall back to copy plus delete in the regular pass
					handled[file.ID()] = false
					handled[partner.ID()] = false
					return nil
				}
				return err
			}

			attr := *deletion.Attributes(target)
			creation.SetAttributes(target, &attr)
			creation.SetName(target, to.Name())
			creation.SetCategory(models.CatEqual, "")
			creation.SetSyncDir(models.DirNone)
			creation.SetMoveRef(hierarchy.NilNodeID)
			deletion.SetMoveRef(hierarchy.NilNodeID)
			deletion.RemoveSide(target)
			reportDelta(e.cb, 2, 0)
			e.result.ItemsProcessed += 2
			return nil
		}, e.cb)
		if err != nil {
			return err
		}
	}
	return nil
}

func collectMoves(container *hierarchy.ContainerObject, out *[]*hierarchy.FilePair) {
	for _, file := range container.Files() {
		if file.MoveRef() != hierarchy.NilNodeID {
			*out = append(*out, file)
		}
	}
	for _, folder := range container.Folders() {
		collectMoves(&folder.ContainerObject, out)
	}
}

func (e *executor) processContainer(container *hierarchy.ContainerObject) error {
	// folders first: creations must precede their content
	for _, folder := range container.Folders() {
		if err := e.processFolder(folder); err != nil {
			return err
		}
	}
	for _, file := range container.Files() {
		if err := e.processFile(file); err != nil {
			return err
		}
	}
	for _, link := range container.Symlinks() {
		if err := e.processSymlink(link); err != nil {
			return err
		}
	}
	return nil
}

func (e *executor) processFolder(folder *hierarchy.FolderPair) error {
	if folder.ConflictMessage() != "" {
		e.result.Conflicts++
	}
	if !needsAction(folder) {
		return e.processContainer(&folder.ContainerObject)
	}
	dir := folder.SyncDir()
	target := sourceSideOf(dir).Other()

	if folder.IsEmpty(sourceSideOf(dir)) {
		// delete the whole subtree on the target side
		if err := e.deleteItem(folder, target, txtDeletingFolder, txtRecyclingFolder); err != nil {
			return err
		}
		return nil // nothing left to recurse into on that side
	}

	targetPath := folder.Base().AbstractPath(target).AppendRel(folder.RelPath(sourceSideOf(dir)))
	if err := tryReportingError(func() error {
		if err := notifyItemAction(e.cb, txtCreatingFolder, targetPath.DisplayPath()); err != nil {
			return err
		}
		if _, err := fsops.CreateFolderIfMissingRecursion(targetPath); err != nil {
			return err
		}
		if e.cfg.CopyPermissions {
			sourcePath := folder.AbstractPath(sourceSideOf(dir))
			if interfaces.EquivalentDevices(sourcePath.Device, targetPath.Device) {
				if err := sourcePath.Device.CopyOwnerAndPermissions(sourcePath.Path, targetPath.Path); err != nil {
					return err
				}
			}
		}
		attr := *folder.Attributes(sourceSideOf(dir))
		folder.SetAttributes(target, &attr)
		folder.SetName(target, targetPath.Name())
		folder.SetCategory(models.CatEqual, "")
		folder.SetSyncDir(models.DirNone)
		reportDelta(e.cb, 1, 0)
		e.result.ItemsProcessed++
		return nil
	}, e.cb); err != nil {
		return err
	}
	return e.processContainer(&folder.ContainerObject)
}

func (e *executor) processFile(file *hierarchy.FilePair) error {
	if file.ConflictMessage() != "" {
		e.result.Conflicts++
	}
	if !needsAction(file) {
		return nil
	}
	dir := file.SyncDir()
	source := sourceSideOf(dir)
	target := source.Other()

	if file.IsEmpty(source) {
		return e.deleteItem(file, target, txtDeletingFile, txtRecyclingFile)
	}

	sourcePath := file.AbstractPath(source)
	targetPath := file.Base().AbstractPath(target).AppendRel(file.RelPath(source))
	overwrite := !file.IsEmpty(target)

	return tryReportingError(func() error {
		template := txtCreatingFile
		if overwrite {
			template = txtUpdatingFile
		}
		if err := notifyItemAction(e.cb, template, targetPath.DisplayPath()); err != nil {
			return err
		}

		attr := *file.Attributes(source)
		var deleteTarget func() error
		if overwrite {
			oldTarget := file.AbstractPath(target)
			deleteTarget = func() error {
				if e.cfg.UseRecycleBin {
					return oldTarget.Device.RecycleItemIfExists(oldTarget.Path)
				}
				return fsops.RemoveFileIfExists(oldTarget)
			}
		}

		result, err := fsops.CopyFileTransactional(sourcePath, attr, targetPath, true,
			deleteTarget, func(bytesDelta int64) error {
				reportDelta(e.cb, 0, bytesDelta)
				e.result.BytesCopied += bytesDelta
				return requestUpdate(e.cb)
			})
		if err != nil {
			return err
		}
		if result.ErrorModTime != nil && e.cb != nil {
			// non-fatal anomaly: the copied file is kept
			e.cb.LogInfo(result.ErrorModTime.Error())
		}
		if e.cfg.CopyPermissions && interfaces.EquivalentDevices(sourcePath.Device, targetPath.Device) {
			if err := sourcePath.Device.CopyOwnerAndPermissions(sourcePath.Path, targetPath.Path); err != nil {
				return err
			}
		}

		file.SetAttributes(target, &models.FileAttributes{
			ModTime:   attr.ModTime,
			Size:      result.FileSize,
			FilePrint: result.TargetPrint,
		})
		file.SetName(target, targetPath.Name())
		file.SetCategory(models.CatEqual, "")
		file.SetSyncDir(models.DirNone)
		reportDelta(e.cb, 1, 0)
		e.result.ItemsProcessed++
		return nil
	}, e.cb)
}

func (e *executor) processSymlink(link *hierarchy.SymlinkPair) error {
	if link.ConflictMessage() != "" {
		e.result.Conflicts++
	}
	if !needsAction(link) {
		return nil
	}
	dir := link.SyncDir()
	source := sourceSideOf(dir)
	target := source.Other()

	if link.IsEmpty(source) {
		return e.deleteItem(link, target, txtDeletingLink, txtRecyclingLink)
	}

	sourcePath := link.AbstractPath(source)
	targetPath := link.Base().AbstractPath(target).AppendRel(link.RelPath(source))

	return tryReportingError(func() error {
		if err := notifyItemAction(e.cb, txtCreatingLink, targetPath.DisplayPath()); err != nil {
			return err
		}
		if !link.IsEmpty(target) {
			oldTarget := link.AbstractPath(target)
			if err := fsops.RemoveSymlinkIfExists(oldTarget); err != nil {
				return err
			}
		}
		attr := *link.Attributes(source)
		if err := fsops.CopySymlink(sourcePath, targetPath, &attr.ModTime); err != nil {
			return err
		}
		link.SetName(target, targetPath.Name())
		// write the source attributes through to the model
		newAttr := attr
		link.SetAttributes(target, &newAttr)
		link.SetCategory(models.CatEqual, "")
		link.SetSyncDir(models.DirNone)
		reportDelta(e.cb, 1, 0)
		e.result.ItemsProcessed++
		return nil
	}, e.cb)
}

func (e *executor) deleteItem(obj hierarchy.FsObject, target models.Side,
	txtDelete, txtRecycle string) error {
	itemPath := obj.AbstractPath(target)
	return tryReportingError(func() error {
		template := txtDelete
		if e.cfg.UseRecycleBin {
			template = txtRecycle
		}
		if err := notifyItemAction(e.cb, template, itemPath.DisplayPath()); err != nil {
			return err
		}

		var err error
		if e.cfg.UseRecycleBin {
			err = itemPath.Device.RecycleItemIfExists(itemPath.Path)
		} else {
			switch obj.(type) {
			case *hierarchy.FolderPair:
				err = fsops.RemoveFolderIfExistsRecursion(itemPath, nil, nil)
			case *hierarchy.SymlinkPair:
				err = fsops.RemoveSymlinkIfExists(itemPath)
			default:
				err = fsops.RemoveFileIfExists(itemPath)
			}
		}
		if err != nil {
			return err
		}
		obj.RemoveSide(target)
		reportDelta(e.cb, 1, 0)
		e.result.ItemsProcessed++
		return nil
	}, e.cb)
}
