package filters

// SoftFilter restricts items by modification-time range and size range. When
// any restriction is active, all folders are deactivated to drop
// empty-folder noise.
type SoftFilter struct {
	timeFrom   *int64 // unix seconds, inclusive
	timeTo     *int64
	sizeMin    *uint64 // bytes, inclusive
	sizeMax    *uint64
	timeActive bool
	sizeActive bool
}

// NewSoftFilter builds a time/size filter; nil bounds are open
func NewSoftFilter(timeFrom, timeTo *int64, sizeMin, sizeMax *uint64) *SoftFilter {
	return &SoftFilter{
		timeFrom:   timeFrom,
		timeTo:     timeTo,
		sizeMin:    sizeMin,
		sizeMax:    sizeMax,
		timeActive: timeFrom != nil || timeTo != nil,
		sizeActive: sizeMin != nil || sizeMax != nil,
	}
}

// IsNull reports whether the filter cannot exclude anything
func (f *SoftFilter) IsNull() bool {
	return !f.timeActive && !f.sizeActive
}

// MatchTime checks a modification time against the time window
func (f *SoftFilter) MatchTime(modTime int64) bool {
	if f.timeFrom != nil && modTime < *f.timeFrom {
		return false
	}
	if f.timeTo != nil && modTime > *f.timeTo {
		return false
	}
	return true
}

// MatchSize checks a file size against the size span
func (f *SoftFilter) MatchSize(size uint64) bool {
	if f.sizeMin != nil && size < *f.sizeMin {
		return false
	}
	if f.sizeMax != nil && size > *f.sizeMax {
		return false
	}
	return true
}

// MatchFolder reports whether folders stay active under this filter
func (f *SoftFilter) MatchFolder() bool {
	return f.IsNull()
}
