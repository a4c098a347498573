package sync

import (
	"strings"

	"github.com/wuhui20091515/FreeFileSync/internal/core/interfaces"
	"github.com/wuhui20091515/FreeFileSync/internal/filters"
)

// PathDependency describes two base folders where one contains the other:
// such configurations read and write the same storage area
type PathDependency struct {
	BasePathParent interfaces.AbstractPath
	BasePathChild  interfaces.AbstractPath
	// RelPath is the child base folder relative to the parent base folder
	RelPath interfaces.Path
}

// GetPathDependency checks two base folders for an ancestor relationship on
// the same device. The dependency is suppressed when the ancestor's hard
// filter certainly excludes the descendant's relative path.
func GetPathDependency(basePathL interfaces.AbstractPath, filterL filters.PathFilter,
	basePathR interfaces.AbstractPath, filterR filters.PathFilter) *PathDependency {
	if basePathL.IsNull() || basePathR.IsNull() {
		return nil
	}
	if !interfaces.EquivalentDevices(basePathL.Device, basePathR.Device) {
		return nil
	}

	compsL := basePathL.Path.Components()
	compsR := basePathR.Path.Components()

	leftParent := len(compsL) <= len(compsR)
	compsParent, compsChild := compsL, compsR
	if !leftParent {
		compsParent, compsChild = compsR, compsL
	}
	for i, comp := range compsParent {
		if !strings.EqualFold(comp, compsChild[i]) {
			return nil
		}
	}

	relPath := interfaces.Path(strings.Join(compsChild[len(compsParent):], "/"))

	basePathParent, basePathChild := basePathL, basePathR
	filterParent := filterL
	if !leftParent {
		basePathParent, basePathChild = basePathR, basePathL
		filterParent = filterR
	}

	// a filter check is easy but still insufficient in general: the user may
	// have deactivated the overlapping items manually
	if relPath.IsRoot() {
		return &PathDependency{basePathParent, basePathChild, relPath}
	}
	passed, childItemMightMatch := filterParent.PassDirFilter(relPath)
	if passed || childItemMightMatch {
		return &PathDependency{basePathParent, basePathChild, relPath}
	}
	return nil
}
