package sync

import (
	"strings"

	"github.com/wuhui20091515/FreeFileSync/internal/compare"
	"github.com/wuhui20091515/FreeFileSync/internal/core/interfaces"
	"github.com/wuhui20091515/FreeFileSync/internal/fsops"
	"github.com/wuhui20091515/FreeFileSync/internal/hierarchy"
	ffserrors "github.com/wuhui20091515/FreeFileSync/pkg/errors"
	"github.com/wuhui20091515/FreeFileSync/pkg/models"
)

// Conflict annotations written by the two-way resolver
const (
	txtBothSidesChanged = "Both sides have changed since last synchronization."
	txtNoSideChanged    = "Cannot determine sync-direction: No change since last synchronization."
	txtDbNotInSync      = "Cannot determine sync-direction: The database entry is not in sync considering current settings."
	txtCannotCategorize = "Cannot categorize item."

	msgFirstSync = "Setting directions for first synchronization: Old files will be overwritten with newer files."
)

// DirectionPolicy pairs one base folder with its direction configuration
type DirectionPolicy struct {
	Base   *hierarchy.BaseFolderPair
	Config models.DirectionConfig
}

// RedetermineSyncDirections resolves the sync direction of every item in the
// given base pairs. Two-way pairs and one-way pairs with move detection
// consult the last-sync state through the loader; load failures degrade to
// "no database available". Directions are set best-effort even when the
// callback cancels during database loading.
func RedetermineSyncDirections(policies []DirectionPolicy, loader interfaces.LastSyncLoader,
	cb interfaces.ProgressCallback) (err error) {
	if len(policies) == 0 {
		return nil
	}

	allEqual := make(map[*hierarchy.BaseFolderPair]bool)
	lastStates := make(map[*hierarchy.BaseFolderPair]*models.InSyncFolder)

	// best effort: always set sync directions, even after cancellation
	defer func() {
		for _, policy := range policies {
			if allEqual[policy.Base] {
				continue
			}
			db := lastStates[policy.Base]

			if policy.Config.Variant == models.VariantTwoWay {
				if db != nil {
					redetermineTwoWay(policy.Base, db)
				} else {
					if cb != nil {
						cb.LogInfo(msgFirstSync + " " +
							policy.Base.AbstractPath(models.SideLeft).DisplayPath() + " <-> " +
							policy.Base.AbstractPath(models.SideRight).DisplayPath())
					}
					applyDirectionSet(models.TwoWayUpdateSet(), &policy.Base.ContainerObject)
				}
			} else {
				applyDirectionSet(models.ExtractDirections(policy.Config), &policy.Base.ContainerObject)
			}

			if db != nil && policy.Config.DetectMovesEnabled() {
				detectMovedFiles(policy.Base, db)
			}
		}
	}()

	// (try to) load the last-sync state for the pairs that need it
	for _, policy := range policies {
		if !policy.Config.DetectMovesEnabled() {
			continue
		}
		if policy.Base.AllCategoryEqual() {
			// nothing to resolve: don't even try to open the database
			allEqual[policy.Base] = true
			continue
		}
		if loader == nil {
			continue
		}
		base := policy.Base
		var db *models.InSyncFolder
		loadErr := tryReportingError(func() error {
			var e error
			db, e = loader.LoadLastSyncState(
				base.AbstractPath(models.SideLeft), base.AbstractPath(models.SideRight), cb)
			return e
		}, cb)
		if ffserrors.IsCancelled(loadErr) {
			return loadErr
		}
		if db != nil {
			lastStates[base] = db
		}
	}

	if cb != nil {
		if err := cb.UpdateStatus("Calculating sync directions..."); err != nil {
			return err
		}
		if err := cb.RequestUIUpdate(true); err != nil {
			return err
		}
	}
	return nil
}

// hasTempSuffix reports whether a one-side-only item is an abandoned
// copy-in-progress artifact
func hasTempSuffix(name string) bool {
	return strings.HasSuffix(name, fsops.TempFileEnding)
}

// sweepTempItem schedules abandoned temporary items for deletion regardless
// of policy. Returns true when the item was handled.
func sweepTempItem(obj hierarchy.FsObject) bool {
	switch obj.Category() {
	case models.CatLeftOnly:
		if hasTempSuffix(obj.Name(models.SideLeft)) {
			obj.SetSyncDir(models.DirLeft)
			return true
		}
	case models.CatRightOnly:
		if hasTempSuffix(obj.Name(models.SideRight)) {
			obj.SetSyncDir(models.DirRight)
			return true
		}
	}
	return false
}

// applyDirectionSet maps categories onto directions by explicit policy
func applyDirectionSet(set models.DirectionSet, container *hierarchy.ContainerObject) {
	for _, file := range container.Files() {
		if sweepTempItem(file) {
			continue
		}
		applyPolicyToItem(set, file)
	}
	for _, link := range container.Symlinks() {
		if sweepTempItem(link) {
			continue
		}
		applyPolicyToItem(set, link)
	}
	for _, folder := range container.Folders() {
		// abandoned temporary folders are deleted with their whole subtree
		if sweepTempItem(folder) {
			SetSyncDirectionRec(folder.SyncDir(), folder)
			continue
		}
		applyPolicyToItem(set, folder)
		applyDirectionSet(set, &folder.ContainerObject)
	}
}

// applyPolicyToItem writes one item's direction. Folders carry no
// newer/different categories, so those slots simply never fire for them.
func applyPolicyToItem(set models.DirectionSet, obj hierarchy.FsObject) {
	switch obj.Category() {
	case models.CatEqual:
		obj.SetSyncDir(models.DirNone)
	case models.CatLeftOnly:
		obj.SetSyncDir(set.ExLeftOnly)
	case models.CatRightOnly:
		obj.SetSyncDir(set.ExRightOnly)
	case models.CatLeftNewer:
		obj.SetSyncDir(set.LeftNewer)
	case models.CatRightNewer:
		obj.SetSyncDir(set.RightNewer)
	case models.CatDifferentContent:
		obj.SetSyncDir(set.Different)
	case models.CatConflict, models.CatDifferentMetadata:
		// use the setting from "conflict/cannot categorize"
		if set.Conflict == models.DirNone {
			descr := obj.CategoryDescription()
			if descr == "" {
				descr = txtCannotCategorize
			}
			obj.SetSyncDirConflict(descr) // take over the category conflict
		} else {
			obj.SetSyncDir(set.Conflict)
		}
	}
}

// SetSyncDirectionRec overrides the direction of an item and, for folders,
// every descendant. Items categorized equal keep direction none.
func SetSyncDirectionRec(dir models.SyncDirection, obj hierarchy.FsObject) {
	setDirIfNotEqual := func(o hierarchy.FsObject) {
		if o.Category() != models.CatEqual {
			o.SetSyncDir(dir)
		}
	}
	setDirIfNotEqual(obj)
	if folder, ok := obj.(*hierarchy.FolderPair); ok {
		hierarchy.VisitContainer(&folder.ContainerObject,
			func(sub *hierarchy.FolderPair) { setDirIfNotEqual(sub) },
			func(file *hierarchy.FilePair) { setDirIfNotEqual(file) },
			func(link *hierarchy.SymlinkPair) { setDirIfNotEqual(link) })
	}
}

//---------------------------------------------------------------------------
// two-way reconciliation against the last-sync state

// matchesDbEntryFile checks whether one side of a file still looks like the
// recorded state: size plus mod-time within FAT precision and time-shift
// allowance. File prints are deliberately not consulted: moving data to
// another medium is not a change the user sees.
func matchesDbEntryFile(file *hierarchy.FilePair, side models.Side,
	dbFile *models.InSyncFile, shifts []uint) bool {
	if file.IsEmpty(side) {
		return dbFile == nil
	}
	if dbFile == nil {
		return false
	}
	descr := dbFile.Left
	if side == models.SideRight {
		descr = dbFile.Right
	}
	return compare.SameFileTime(file.ModTime(side), descr.ModTime, compare.FATTimePrecisionSec, shifts) &&
		file.FileSize(side) == dbFile.Size
}

// stillInSyncFile checks whether the database record itself is still
// acceptable under the current comparison variant
func stillInSyncFile(dbFile *models.InSyncFile, variant models.CompareVariant,
	toleranceSec int, shifts []uint) bool {
	switch variant {
	case models.CompareTimeSize:
		if dbFile.CmpVariant == models.CompareContent {
			// certainly good enough for a time-size comparison
			return true
		}
		return compare.SameFileTime(dbFile.Left.ModTime, dbFile.Right.ModTime, toleranceSec, shifts)
	case models.CompareContent:
		return dbFile.CmpVariant == models.CompareContent
	default: // models.CompareSize: a weak invariant that always holds
		return true
	}
}

func matchesDbEntrySymlink(link *hierarchy.SymlinkPair, side models.Side,
	dbLink *models.InSyncSymlink, shifts []uint) bool {
	if link.IsEmpty(side) {
		return dbLink == nil
	}
	if dbLink == nil {
		return false
	}
	descr := dbLink.Left
	if side == models.SideRight {
		descr = dbLink.Right
	}
	return compare.SameFileTime(link.ModTime(side), descr.ModTime, compare.FATTimePrecisionSec, shifts)
}

func stillInSyncSymlink(dbLink *models.InSyncSymlink, variant models.CompareVariant,
	toleranceSec int, shifts []uint) bool {
	switch variant {
	case models.CompareTimeSize:
		if dbLink.CmpVariant == models.CompareContent || dbLink.CmpVariant == models.CompareSize {
			return true
		}
		return compare.SameFileTime(dbLink.Left.ModTime, dbLink.Right.ModTime, toleranceSec, shifts)
	default: // content and size both categorize symlinks by target
		return dbLink.CmpVariant == models.CompareContent || dbLink.CmpVariant == models.CompareSize
	}
}

// matchesDbEntryFolder treats a straw-man marker as "not really there"
func matchesDbEntryFolder(folder *hierarchy.FolderPair, side models.Side,
	dbFolder *models.InSyncFolder) bool {
	haveDbEntry := dbFolder != nil && dbFolder.Status != models.FolderStatusStrawMan
	return haveDbEntry == !folder.IsEmpty(side)
}

type twoWayResolver struct {
	variant   models.CompareVariant
	tolerance int
	shifts    []uint
}

func redetermineTwoWay(base *hierarchy.BaseFolderPair, db *models.InSyncFolder) {
	r := &twoWayResolver{
		variant:   base.CompareVariant(),
		tolerance: base.FileTimeTolerance(),
		shifts:    base.IgnoreTimeShiftMinutes(),
	}
	r.recurse(&base.ContainerObject, db, db)
}

// dbEntriesFor looks up the database record through both name keys; they
// differ when the two sides stored different case or normalization
func dbEntriesFor[T any](obj hierarchy.FsObject, dbFolderL, dbFolderR *models.InSyncFolder,
	lookup func(*models.InSyncFolder, string) T) (entryL, entryR T) {
	nameL := obj.Name(models.SideLeft)
	nameR := obj.Name(models.SideRight)
	entryL = lookup(dbFolderL, nameL)
	entryR = entryL
	if dbFolderL != dbFolderR || !models.EqualNames(nameL, nameR) {
		entryR = lookup(dbFolderR, nameR)
	}
	return entryL, entryR
}

func (r *twoWayResolver) recurse(container *hierarchy.ContainerObject, dbFolderL, dbFolderR *models.InSyncFolder) {
	for _, file := range container.Files() {
		r.processFile(file, dbFolderL, dbFolderR)
	}
	for _, link := range container.Symlinks() {
		r.processSymlink(link, dbFolderL, dbFolderR)
	}
	for _, folder := range container.Folders() {
		r.processFolder(folder, dbFolderL, dbFolderR)
	}
}

func (r *twoWayResolver) processFile(file *hierarchy.FilePair, dbFolderL, dbFolderR *models.InSyncFolder) {
	if file.Category() == models.CatEqual {
		file.SetSyncDir(models.DirNone)
		return
	}
	if sweepTempItem(file) {
		return
	}

	dbEntryL, dbEntryR := dbEntriesFor(file, dbFolderL, dbFolderR,
		func(f *models.InSyncFolder, name string) *models.InSyncFile { return f.FileByName(name) })

	changeOnLeft := !matchesDbEntryFile(file, models.SideLeft, dbEntryL, r.shifts)
	changeOnRight := !matchesDbEntryFile(file, models.SideRight, dbEntryR, r.shifts)

	if changeOnLeft != changeOnRight {
		// a stale database record cannot arbitrate: flag instead of guessing
		if (dbEntryL != nil && !stillInSyncFile(dbEntryL, r.variant, r.tolerance, r.shifts)) ||
			(dbEntryR != nil && !stillInSyncFile(dbEntryR, r.variant, r.tolerance, r.shifts)) {
			file.SetSyncDirConflict(txtDbNotInSync)
		} else if changeOnLeft {
			file.SetSyncDir(models.DirRight)
		} else {
			file.SetSyncDir(models.DirLeft)
		}
	} else {
		if changeOnLeft {
			file.SetSyncDirConflict(txtBothSidesChanged)
		} else {
			file.SetSyncDirConflict(txtNoSideChanged)
		}
	}
}

func (r *twoWayResolver) processSymlink(link *hierarchy.SymlinkPair, dbFolderL, dbFolderR *models.InSyncFolder) {
	if link.Category() == models.CatEqual {
		link.SetSyncDir(models.DirNone)
		return
	}
	if sweepTempItem(link) {
		return
	}

	dbEntryL, dbEntryR := dbEntriesFor(link, dbFolderL, dbFolderR,
		func(f *models.InSyncFolder, name string) *models.InSyncSymlink { return f.SymlinkByName(name) })

	changeOnLeft := !matchesDbEntrySymlink(link, models.SideLeft, dbEntryL, r.shifts)
	changeOnRight := !matchesDbEntrySymlink(link, models.SideRight, dbEntryR, r.shifts)

	if changeOnLeft != changeOnRight {
		if (dbEntryL != nil && !stillInSyncSymlink(dbEntryL, r.variant, r.tolerance, r.shifts)) ||
			(dbEntryR != nil && !stillInSyncSymlink(dbEntryR, r.variant, r.tolerance, r.shifts)) {
			link.SetSyncDirConflict(txtDbNotInSync)
		} else if changeOnLeft {
			link.SetSyncDir(models.DirRight)
		} else {
			link.SetSyncDir(models.DirLeft)
		}
	} else {
		if changeOnLeft {
			link.SetSyncDirConflict(txtBothSidesChanged)
		} else {
			link.SetSyncDirConflict(txtNoSideChanged)
		}
	}
}

func (r *twoWayResolver) processFolder(folder *hierarchy.FolderPair, dbFolderL, dbFolderR *models.InSyncFolder) {
	cat := folder.Category()

	// abandoned temporary folders: delete the whole subtree, don't recurse
	if sweepTempItem(folder) {
		SetSyncDirectionRec(folder.SyncDir(), folder)
		return
	}

	dbEntryL, dbEntryR := dbEntriesFor(folder, dbFolderL, dbFolderR,
		func(f *models.InSyncFolder, name string) *models.InSyncFolder { return f.FolderByName(name) })

	if cat == models.CatEqual {
		folder.SetSyncDir(models.DirNone)
	} else {
		changeOnLeft := !matchesDbEntryFolder(folder, models.SideLeft, dbEntryL)
		changeOnRight := !matchesDbEntryFolder(folder, models.SideRight, dbEntryR)

		if changeOnLeft != changeOnRight {
			if changeOnLeft {
				folder.SetSyncDir(models.DirRight)
			} else {
				folder.SetSyncDir(models.DirLeft)
			}
		} else {
			if changeOnLeft {
				folder.SetSyncDirConflict(txtBothSidesChanged)
			} else {
				folder.SetSyncDirConflict(txtNoSideChanged)
			}
		}
	}

	// straw-man entries stay traversable for their descendants
	r.recurse(&folder.ContainerObject, dbEntryL, dbEntryR)
}
