package sync

import (
	"strings"

	"github.com/wuhui20091515/FreeFileSync/internal/core/interfaces"
	"github.com/wuhui20091515/FreeFileSync/internal/fsops"
	"github.com/wuhui20091515/FreeFileSync/internal/hierarchy"
	"github.com/wuhui20091515/FreeFileSync/pkg/models"
)

const (
	txtRecyclingFile   = "Moving file %x to the recycle bin"
	txtRecyclingFolder = "Moving folder %x to the recycle bin"
	txtRecyclingLink   = "Moving symbolic link %x to the recycle bin"
	txtDeletingFile    = "Deleting file %x"
	txtDeletingFolder  = "Deleting folder %x"
	txtDeletingLink    = "Deleting symbolic link %x"
)

// DeleteFromGridAndDisk deletes the selected items from disk and from the
// pair-tree model. Per item, the model update happens only after a
// successful delete, so an abort leaves the model consistent with disk.
// Afterwards (even on cancellation) the directions of half-emptied pairs are
// re-derived from the base's policy and empty subtrees are pruned.
func DeleteFromGridAndDisk(selectionLeft, selectionRight []hierarchy.FsObject,
	policies []DirectionPolicy, useRecycleBin bool, warnRecyclerMissing *bool,
	cb interfaces.ProgressCallback) (err error) {
	if len(policies) == 0 {
		return nil
	}

	baseConfigs := make(map[*hierarchy.BaseFolderPair]models.DirectionConfig, len(policies))
	for _, policy := range policies {
		baseConfigs[policy.Base] = policy.Config
	}

	deleteLeft := dropEmptyRows(selectionLeft, models.SideLeft)
	deleteRight := dropEmptyRows(selectionRight, models.SideRight)

	if cb != nil {
		if err := cb.InitNewPhase(len(deleteLeft)+len(deleteRight), 0, interfaces.PhaseNone); err != nil {
			return err
		}
	}

	// ensure cleanup: re-derivation of sync directions and removal of
	// invalid rows, no matter how the deletion pass ends
	defer func() {
		seen := make(map[hierarchy.FsObject]bool)
		for _, rows := range [][]hierarchy.FsObject{deleteLeft, deleteRight} {
			for _, obj := range rows {
				if seen[obj] {
					continue
				}
				seen[obj] = true

				if obj.IsEmpty(models.SideLeft) == obj.IsEmpty(models.SideRight) {
					continue // deleted on both sides, or untouched
				}
				cfg, ok := baseConfigs[obj.Base()]
				if !ok {
					continue
				}
				// no full redetermination: the user may have entered manual
				// direction changes already
				var newDir models.SyncDirection
				if cfg.Variant == models.VariantTwoWay {
					newDir = models.DirLeft
					if obj.IsEmpty(models.SideLeft) {
						newDir = models.DirRight
					}
				} else {
					set := models.ExtractDirections(cfg)
					newDir = set.ExLeftOnly
					if obj.IsEmpty(models.SideLeft) {
						newDir = set.ExRightOnly
					}
				}
				SetSyncDirectionRec(newDir, obj)
			}
		}
		for _, policy := range policies {
			policy.Base.RemoveEmpty()
		}
	}()

	// recycler capability probe, memoized per distinct base folder
	recyclerSupported := make(map[string]bool)
	hasRecycler := func(baseFolderPath interfaces.AbstractPath) bool {
		key := baseFolderPath.DisplayPath()
		if supported, ok := recyclerSupported[key]; ok {
			return supported
		}
		supported := false
		probeErr := tryReportingError(func() error {
			var e error
			supported, e = baseFolderPath.Device.SupportsRecycleBin(baseFolderPath.Path)
			return e
		}, cb)
		if probeErr != nil {
			supported = false
		}
		recyclerSupported[key] = supported
		return supported
	}

	categorize := func(rows []hierarchy.FsObject, side models.Side) (recycler, permanent []hierarchy.FsObject) {
		for _, obj := range rows {
			if useRecycleBin && hasRecycler(obj.Base().AbstractPath(side)) {
				recycler = append(recycler, obj)
			} else {
				permanent = append(permanent, obj)
			}
		}
		return recycler, permanent
	}

	recyclerLeft, permanentLeft := categorize(deleteLeft, models.SideLeft)
	recyclerRight, permanentRight := categorize(deleteRight, models.SideRight)

	if useRecycleBin {
		var missing []string
		for path, supported := range recyclerSupported {
			if !supported {
				missing = append(missing, path)
			}
		}
		if len(missing) > 0 && cb != nil {
			cb.ReportWarning("The recycle bin is not supported by the following folders. "+
				"Deleted or overwritten files will not be able to be restored:\n"+
				strings.Join(missing, "\n"), warnRecyclerMissing)
		}
	}

	// left before right for deterministic logs
	if err := deleteFromDiskOneSide(recyclerLeft, models.SideLeft, true, cb); err != nil {
		return err
	}
	if err := deleteFromDiskOneSide(permanentLeft, models.SideLeft, false, cb); err != nil {
		return err
	}
	if err := deleteFromDiskOneSide(recyclerRight, models.SideRight, true, cb); err != nil {
		return err
	}
	return deleteFromDiskOneSide(permanentRight, models.SideRight, false, cb)
}

func deleteFromDiskOneSide(rows []hierarchy.FsObject, side models.Side,
	useRecycleBin bool, cb interfaces.ProgressCallback) error {

	txtFile, txtFolder, txtLink := txtDeletingFile, txtDeletingFolder, txtDeletingLink
	if useRecycleBin {
		txtFile, txtFolder, txtLink = txtRecyclingFile, txtRecyclingFolder, txtRecyclingLink
	}

	for _, obj := range rows {
		if err := tryReportingError(func() error {
			// the element may be gone already, e.g. its parent folder was
			// deleted first
			if obj.IsEmpty(side) {
				reportDelta(cb, 1, 0)
				return nil
			}
			itemPath := obj.AbstractPath(side)

			var opErr error
			hierarchy.VisitFsObject(obj,
				func(folder *hierarchy.FolderPair) {
					if useRecycleBin {
						if opErr = notifyItemAction(cb, txtFolder, itemPath.DisplayPath()); opErr != nil {
							return
						}
						if opErr = itemPath.Device.RecycleItemIfExists(itemPath.Path); opErr == nil {
							reportDelta(cb, 1, 0)
						}
					} else {
						opErr = fsops.RemoveFolderIfExistsRecursion(itemPath,
							func(displayPath string) error {
								if err := notifyItemAction(cb, txtFile, displayPath); err != nil {
									return err
								}
								reportDelta(cb, 1, 0)
								return nil
							},
							func(displayPath string) error {
								if err := notifyItemAction(cb, txtFolder, displayPath); err != nil {
									return err
								}
								reportDelta(cb, 1, 0)
								return nil
							})
					}
				},
				func(file *hierarchy.FilePair) {
					if opErr = notifyItemAction(cb, txtFile, itemPath.DisplayPath()); opErr != nil {
						return
					}
					if useRecycleBin {
						opErr = itemPath.Device.RecycleItemIfExists(itemPath.Path)
					} else {
						opErr = fsops.RemoveFileIfExists(itemPath)
					}
					if opErr == nil {
						reportDelta(cb, 1, 0)
					}
				},
				func(link *hierarchy.SymlinkPair) {
					if opErr = notifyItemAction(cb, txtLink, itemPath.DisplayPath()); opErr != nil {
						return
					}
					if useRecycleBin {
						opErr = itemPath.Device.RecycleItemIfExists(itemPath.Path)
					} else {
						opErr = fsops.RemoveSymlinkIfExists(itemPath)
					}
					if opErr == nil {
						reportDelta(cb, 1, 0)
					}
				})
			if opErr != nil {
				return opErr
			}

			obj.RemoveSide(side)
			return nil
		}, cb); err != nil {
			return err
		}

		// remain transactional: allow aborting only after the model update
		if err := requestUpdate(cb); err != nil {
			return err
		}
	}
	return nil
}
