// Package compare assigns comparison categories to scanned item pairs and
// builds pair trees from two device roots.
package compare

// FATTimePrecisionSec is the write-time precision of FAT filesystems. It is
// applied universally when matching scan results against the last-sync
// database, independent of the user's comparison tolerance.
const FATTimePrecisionSec = 2

// DefaultFileTimeToleranceSec is the default comparison tolerance
const DefaultFileTimeToleranceSec = FATTimePrecisionSec

// SameFileTime compares two modification times within a tolerance, modulo the
// whitelisted timezone-shift multiples. Each shift entry is a whole number of
// minutes; the times match if the residual after subtracting any shift is
// within tolerance.
func SameFileTime(lhs, rhs int64, toleranceSec int, ignoreTimeShiftMinutes []uint) bool {
	delta := lhs - rhs
	if delta < 0 {
		delta = -delta
	}
	if delta <= int64(toleranceSec) {
		return true
	}
	for _, minutes := range ignoreTimeShiftMinutes {
		residual := delta - int64(minutes)*60
		if residual < 0 {
			residual = -residual
		}
		if residual <= int64(toleranceSec) {
			return true
		}
	}
	return false
}
