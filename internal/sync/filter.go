package sync

import (
	"github.com/wuhui20091515/FreeFileSync/internal/filters"
	"github.com/wuhui20091515/FreeFileSync/internal/hierarchy"
	"github.com/wuhui20091515/FreeFileSync/pkg/models"
)

// FilterStrategy selects how a filter result combines with the existing
// active flag
type FilterStrategy int8

const (
	// StrategySet overwrites the active flag; used for a full re-apply
	StrategySet FilterStrategy = iota
	// StrategyAnd keeps an item active only if it was active before AND the
	// filter passes; used for additive tightening
	StrategyAnd
	// a hypothetical "or" strategy is unsound with subtree exclusion below
)

func (s FilterStrategy) evaluate(obj hierarchy.FsObject) bool {
	if s == StrategyAnd {
		return obj.IsActive()
	}
	return true
}

// inOrExcludeAllRows forces the active flag of every item below a container
func inOrExcludeAllRows(container *hierarchy.ContainerObject, include bool) {
	for _, file := range container.Files() {
		file.SetActive(include)
	}
	for _, link := range container.Symlinks() {
		link.SetActive(include)
	}
	for _, folder := range container.Folders() {
		folder.SetActive(include)
		inOrExcludeAllRows(&folder.ContainerObject, include)
	}
}

// SetActiveStatus forces the active flag of an item and all descendants
func SetActiveStatus(status bool, obj hierarchy.FsObject) {
	obj.SetActive(status)
	if folder, ok := obj.(*hierarchy.FolderPair); ok {
		inOrExcludeAllRows(&folder.ContainerObject, status)
	}
}

// ApplyHardFilter evaluates the path filter over a whole base pair
func ApplyHardFilter(base *hierarchy.BaseFolderPair, filter filters.PathFilter, strategy FilterStrategy) {
	applyHardFilter(&base.ContainerObject, filter, strategy)
}

func applyHardFilter(container *hierarchy.ContainerObject, filter filters.PathFilter, strategy FilterStrategy) {
	for _, file := range container.Files() {
		if strategy.evaluate(file) {
			file.SetActive(filter.PassFileFilter(file.RelPathAny()))
		}
	}
	for _, link := range container.Symlinks() {
		if strategy.evaluate(link) {
			link.SetActive(filter.PassFileFilter(link.RelPathAny()))
		}
	}
	for _, folder := range container.Folders() {
		passed, childItemMightMatch := filter.PassDirFilter(folder.RelPathAny())
		if strategy.evaluate(folder) {
			folder.SetActive(passed)
		}
		if !childItemMightMatch {
			// same pruning logic as directory traversal: no descendant can
			// match, so deactivate the subtree and stop recursing
			inOrExcludeAllRows(&folder.ContainerObject, false)
			continue
		}
		applyHardFilter(&folder.ContainerObject, filter, strategy)
	}
}

// ApplySoftFilter evaluates the time/size filter over a whole base pair. A
// null filter is skipped under StrategyAnd since it cannot change anything.
func ApplySoftFilter(base *hierarchy.BaseFolderPair, soft *filters.SoftFilter, strategy FilterStrategy) {
	if soft.IsNull() && strategy == StrategyAnd {
		return
	}
	applySoftFilter(&base.ContainerObject, soft, strategy)
}

func applySoftFilter(container *hierarchy.ContainerObject, soft *filters.SoftFilter, strategy FilterStrategy) {
	matchFile := func(file *hierarchy.FilePair, side models.Side) bool {
		return soft.MatchSize(file.FileSize(side)) && soft.MatchTime(file.ModTime(side))
	}
	for _, file := range container.Files() {
		if !strategy.evaluate(file) {
			continue
		}
		switch {
		case file.IsEmpty(models.SideLeft):
			file.SetActive(matchFile(file, models.SideRight))
		case file.IsEmpty(models.SideRight):
			file.SetActive(matchFile(file, models.SideLeft))
		default:
			// for two-sided items either side matching keeps the row
			file.SetActive(matchFile(file, models.SideLeft) || matchFile(file, models.SideRight))
		}
	}
	for _, link := range container.Symlinks() {
		if !strategy.evaluate(link) {
			continue
		}
		switch {
		case link.IsEmpty(models.SideLeft):
			link.SetActive(soft.MatchTime(link.ModTime(models.SideRight)))
		case link.IsEmpty(models.SideRight):
			link.SetActive(soft.MatchTime(link.ModTime(models.SideLeft)))
		default:
			link.SetActive(soft.MatchTime(link.ModTime(models.SideLeft)) ||
				soft.MatchTime(link.ModTime(models.SideRight)))
		}
	}
	for _, folder := range container.Folders() {
		if strategy.evaluate(folder) {
			// an active time/size filter drops all folders: gets rid of
			// empty-folder noise
			folder.SetActive(soft.MatchFolder())
		}
		applySoftFilter(&folder.ContainerObject, soft, strategy)
	}
}

// ApplyFiltering runs the full filter pass: "set" the hard filter, then
// "and" the soft filter
func ApplyFiltering(base *hierarchy.BaseFolderPair, hard filters.PathFilter, soft *filters.SoftFilter) {
	ApplyHardFilter(base, hard, StrategySet)
	if soft != nil {
		ApplySoftFilter(base, soft, StrategyAnd)
	}
}

// ApplyTimeSpanFilter keeps items whose modification time on either present
// side falls inside [timeFrom, timeTo]. Folders are always deactivated;
// their descendants are still evaluated.
func ApplyTimeSpanFilter(base *hierarchy.BaseFolderPair, timeFrom, timeTo int64) {
	applyTimeSpan(&base.ContainerObject, timeFrom, timeTo)
}

func applyTimeSpan(container *hierarchy.ContainerObject, timeFrom, timeTo int64) {
	inSpan := func(modTime int64) bool {
		return timeFrom <= modTime && modTime <= timeTo
	}
	for _, file := range container.Files() {
		switch {
		case file.IsEmpty(models.SideLeft):
			file.SetActive(inSpan(file.ModTime(models.SideRight)))
		case file.IsEmpty(models.SideRight):
			file.SetActive(inSpan(file.ModTime(models.SideLeft)))
		default:
			file.SetActive(inSpan(file.ModTime(models.SideLeft)) || inSpan(file.ModTime(models.SideRight)))
		}
	}
	for _, link := range container.Symlinks() {
		switch {
		case link.IsEmpty(models.SideLeft):
			link.SetActive(inSpan(link.ModTime(models.SideRight)))
		case link.IsEmpty(models.SideRight):
			link.SetActive(inSpan(link.ModTime(models.SideLeft)))
		default:
			link.SetActive(inSpan(link.ModTime(models.SideLeft)) || inSpan(link.ModTime(models.SideRight)))
		}
	}
	for _, folder := range container.Folders() {
		folder.SetActive(false)
		applyTimeSpan(&folder.ContainerObject, timeFrom, timeTo)
	}
}
