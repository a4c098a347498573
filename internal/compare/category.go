package compare

import "github.com/wuhui20091515/FreeFileSync/pkg/models"

// Conflict reasons preserved through to the direction resolver
const (
	descrSameDateDifferentSize  = "Files have the same date but a different size."
	descrFolderSymlinkMismatch  = "One folder is a followed symbolic link, the other is not."
	descrContentUnknown         = "File contents could not be compared."
	descrSymlinkTargetUnknown   = "Symbolic link targets could not be compared."
	descrFollowedSymlinkOneSide = "One file is a followed symbolic link, the other is not."
)

// ClassifyFile assigns the category of a file pair under the given comparison
// variant. contentEqual must be supplied for the content variant when both
// sides exist; nil means the contents could not be read.
func ClassifyFile(left, right *models.FileAttributes, variant models.CompareVariant,
	toleranceSec int, ignoreTimeShiftMinutes []uint, contentEqual *bool) (models.Category, string) {
	if left == nil {
		return models.CatRightOnly, ""
	}
	if right == nil {
		return models.CatLeftOnly, ""
	}

	switch variant {
	case models.CompareContent:
		if contentEqual == nil {
			return models.CatConflict, descrContentUnknown
		}
		if *contentEqual {
			// modification times are ignored under content comparison
			return models.CatEqual, ""
		}
		return models.CatDifferentContent, ""

	case models.CompareSize:
		if left.Size == right.Size {
			return models.CatEqual, ""
		}
		return models.CatDifferentContent, ""

	default: // models.CompareTimeSize
		timesMatch := SameFileTime(left.ModTime, right.ModTime, toleranceSec, ignoreTimeShiftMinutes)
		sameSize := left.Size == right.Size

		switch {
		case sameSize && timesMatch:
			if left.IsFollowedSymlink != right.IsFollowedSymlink {
				return models.CatDifferentMetadata, descrFollowedSymlinkOneSide
			}
			return models.CatEqual, ""
		case sameSize:
			if left.ModTime > right.ModTime {
				return models.CatLeftNewer, ""
			}
			return models.CatRightNewer, ""
		case timesMatch:
			// same time, different content: cannot pick a side
			return models.CatConflict, descrSameDateDifferentSize
		default:
			return models.CatDifferentContent, ""
		}
	}
}

// ClassifySymlink assigns the category of a symlink pair. The target strings
// are consulted for the content and size variants only; nil pointers mean the
// target could not be read.
func ClassifySymlink(left, right *models.LinkAttributes, targetLeft, targetRight *string,
	variant models.CompareVariant, toleranceSec int, ignoreTimeShiftMinutes []uint) (models.Category, string) {
	if left == nil {
		return models.CatRightOnly, ""
	}
	if right == nil {
		return models.CatLeftOnly, ""
	}

	if variant == models.CompareTimeSize {
		if SameFileTime(left.ModTime, right.ModTime, toleranceSec, ignoreTimeShiftMinutes) {
			return models.CatEqual, ""
		}
		if left.ModTime > right.ModTime {
			return models.CatLeftNewer, ""
		}
		return models.CatRightNewer, ""
	}

	// content and size variants both require equal link targets
	if targetLeft == nil || targetRight == nil {
		return models.CatConflict, descrSymlinkTargetUnknown
	}
	if *targetLeft == *targetRight {
		return models.CatEqual, ""
	}
	return models.CatDifferentContent, ""
}

// ClassifyFolder assigns the category of a folder pair: metadata-only compare
func ClassifyFolder(left, right *models.FolderAttributes) (models.Category, string) {
	if left == nil {
		return models.CatRightOnly, ""
	}
	if right == nil {
		return models.CatLeftOnly, ""
	}
	if left.IsFollowedSymlink != right.IsFollowedSymlink {
		return models.CatDifferentMetadata, descrFolderSymlinkMismatch
	}
	return models.CatEqual, ""
}
