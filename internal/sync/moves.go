package sync

import (
	"sort"

	"github.com/wuhui20091515/FreeFileSync/internal/hierarchy"
	"github.com/wuhui20091515/FreeFileSync/pkg/models"
)

/* Detect renamed files:

     X  ->  |_|      create right
    |_| ->   Y       delete right

   resolve as: rename Y to X on the right.

   Evidence chain per side: the database record associates with a still-present
   one-side-only file either by path (priority) or by file print, and the
   candidate must match the record's size and date exactly. File prints are
   unreliable on FAT-family filesystems after moves, which is why the path
   association exists at all. */

type moveDetector struct {
	variant   models.CompareVariant
	tolerance int
	shifts    []uint

	// all files carrying a non-zero print, for the duplicate purge
	filesLeft  []*hierarchy.FilePair
	filesRight []*hierarchy.FilePair

	exLeftOnlyByID    map[uint64]*hierarchy.FilePair
	exRightOnlyByID   map[uint64]*hierarchy.FilePair
	exLeftOnlyByPath  map[*models.InSyncFile]*hierarchy.FilePair
	exRightOnlyByPath map[*models.InSyncFile]*hierarchy.FilePair
}

// detectMovedFiles pairs one-side-only deletions with opposite-side creations
// when the last-sync state ties them to the same file. Linked pairs receive
// mutually consistent move references.
func detectMovedFiles(base *hierarchy.BaseFolderPair, db *models.InSyncFolder) {
	d := &moveDetector{
		variant:           base.CompareVariant(),
		tolerance:         base.FileTimeTolerance(),
		shifts:            base.IgnoreTimeShiftMinutes(),
		exLeftOnlyByID:    make(map[uint64]*hierarchy.FilePair),
		exRightOnlyByID:   make(map[uint64]*hierarchy.FilePair),
		exLeftOnlyByPath:  make(map[*models.InSyncFile]*hierarchy.FilePair),
		exRightOnlyByPath: make(map[*models.InSyncFile]*hierarchy.FilePair),
	}
	d.recurse(&base.ContainerObject, db, db)

	purgeDuplicates(d.filesLeft, models.SideLeft, d.exLeftOnlyByID)
	purgeDuplicates(d.filesRight, models.SideRight, d.exRightOnlyByID)

	if (len(d.exLeftOnlyByID) > 0 || len(d.exLeftOnlyByPath) > 0) &&
		(len(d.exRightOnlyByID) > 0 || len(d.exRightOnlyByPath) > 0) {
		d.detectMovePairs(db)
	}
}

func (d *moveDetector) recurse(container *hierarchy.ContainerObject, dbFolderL, dbFolderR *models.InSyncFolder) {
	for _, file := range container.Files() {
		// collect *all* prints for the uniqueness check
		if file.FilePrint(models.SideLeft) != 0 {
			d.filesLeft = append(d.filesLeft, file)
		}
		if file.FilePrint(models.SideRight) != 0 {
			d.filesRight = append(d.filesRight, file)
		}

		switch file.Category() {
		case models.CatLeftOnly:
			if dbEntry := dbFolderL.FileByName(file.Name(models.SideLeft)); dbEntry != nil {
				d.exLeftOnlyByPath[dbEntry] = file
			}
		case models.CatRightOnly:
			if dbEntry := dbFolderR.FileByName(file.Name(models.SideRight)); dbEntry != nil {
				d.exRightOnlyByPath[dbEntry] = file
			}
		}
	}

	for _, folder := range container.Folders() {
		dbEntryL, dbEntryR := dbEntriesFor(folder, dbFolderL, dbFolderR,
			func(f *models.InSyncFolder, name string) *models.InSyncFolder { return f.FolderByName(name) })
		d.recurse(&folder.ContainerObject, dbEntryL, dbEntryR)
	}
}

// purgeDuplicates clears every member of a run of equal file prints: these
// are hardlink or alias ambiguities that would yield false pairings. Only the
// remaining unique-print, one-side-only files become lookup candidates.
func purgeDuplicates(files []*hierarchy.FilePair, side models.Side,
	exOneSideByID map[uint64]*hierarchy.FilePair) {
	if len(files) == 0 {
		return
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].FilePrint(side) < files[j].FilePrint(side)
	})

	for i := 0; i < len(files); {
		j := i + 1
		for j < len(files) && files[j].FilePrint(side) == files[i].FilePrint(side) {
			j++
		}
		if j-i >= 2 {
			// duplicate file print: NTFS hard link or alias? do not guess
			for k := i; k < j; k++ {
				files[k].ClearFilePrint(side)
			}
		}
		i = j
	}

	oneSideOnlyTag := models.CatLeftOnly
	if side == models.SideRight {
		oneSideOnlyTag = models.CatRightOnly
	}
	for _, file := range files {
		if file.Category() != oneSideOnlyTag {
			continue
		}
		if print := file.FilePrint(side); print != 0 { // duplicates were cleared above
			exOneSideByID[print] = file
		}
	}
}

func (d *moveDetector) detectMovePairs(container *models.InSyncFolder) {
	for _, dbFile := range container.Files {
		d.findAndSetMovePair(dbFile)
	}
	for _, subFolder := range container.Folders {
		d.detectMovePairs(subFolder)
	}
}

// sameSizeAndDate matches the database record exactly, without FAT tolerance:
// the recorded metadata is either scan-precise or copy-time-estimated, both
// fine at second precision. A tolerance would break the lookup's equivalence
// relation (no transitivity).
func sameSizeAndDate(file *hierarchy.FilePair, side models.Side, dbFile *models.InSyncFile) bool {
	descr := dbFile.Left
	if side == models.SideRight {
		descr = dbFile.Right
	}
	return file.FileSize(side) == dbFile.Size && file.ModTime(side) == descr.ModTime
}

// assocFilePair finds the one-side-only candidate for a database record:
// path association wins over print association, even if only the latter
// matches size and date
func (d *moveDetector) assocFilePair(side models.Side, dbFile *models.InSyncFile) *hierarchy.FilePair {
	byPath := d.exLeftOnlyByPath
	byID := d.exLeftOnlyByID
	descr := dbFile.Left
	if side == models.SideRight {
		byPath = d.exRightOnlyByPath
		byID = d.exRightOnlyByID
		descr = dbFile.Right
	}
	if file, ok := byPath[dbFile]; ok {
		return file
	}
	if descr.FilePrint != 0 {
		if file, ok := byID[descr.FilePrint]; ok {
			return file
		}
	}
	return nil
}

func (d *moveDetector) findAndSetMovePair(dbFile *models.InSyncFile) {
	if !stillInSyncFile(dbFile, d.variant, d.tolerance, d.shifts) {
		return
	}
	fileLeftOnly := d.assocFilePair(models.SideLeft, dbFile)
	if fileLeftOnly == nil || !sameSizeAndDate(fileLeftOnly, models.SideLeft, dbFile) {
		return
	}
	fileRightOnly := d.assocFilePair(models.SideRight, dbFile)
	if fileRightOnly == nil || !sameSizeAndDate(fileRightOnly, models.SideRight, dbFile) {
		return
	}
	// a candidate already paired is skipped
	if fileLeftOnly.MoveRef() == hierarchy.NilNodeID && fileRightOnly.MoveRef() == hierarchy.NilNodeID {
		fileLeftOnly.SetMoveRef(fileRightOnly.ID())
		fileRightOnly.SetMoveRef(fileLeftOnly.ID())
	}
}
