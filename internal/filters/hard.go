// Package filters implements the hard (path-pattern) and soft (time/size)
// filters that drive each item's active flag.
package filters

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/wuhui20091515/FreeFileSync/internal/core/interfaces"
)

// PathFilter decides whether a relative path takes part in synchronization
type PathFilter interface {
	// PassFileFilter evaluates a file or symlink path
	PassFileFilter(relPath interfaces.Path) bool
	// PassDirFilter evaluates a folder path. childItemMightMatch hints whether
	// any descendant could still pass, so traversal can prune whole subtrees.
	PassDirFilter(relPath interfaces.Path) (passed, childItemMightMatch bool)
}

type pattern struct {
	glob    string // forward-slash doublestar pattern, no leading separator
	dirOnly bool   // trailing separator in the source phrase
	anyDir  bool   // no separator in the source phrase: matches at any depth
}

// NameFilter is the hard filter: include-pattern list AND NOT
// exclude-pattern list, evaluated per relative path
type NameFilter struct {
	include []pattern
	exclude []pattern
}

// SplitFilterPhrase splits a filter phrase into its raw pattern entries;
// entries are separated by '|', ';', or line breaks
func SplitFilterPhrase(phrase string) []string {
	fields := strings.FieldsFunc(phrase, func(r rune) bool {
		return r == '|' || r == ';' || r == '\n' || r == '\r'
	})
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func parsePatterns(phrase string) []pattern {
	var out []pattern
	for _, raw := range SplitFilterPhrase(phrase) {
		p := pattern{}
		raw = strings.ReplaceAll(raw, "\\", "/")
		raw = strings.TrimPrefix(raw, "/")
		if strings.HasSuffix(raw, "/") {
			p.dirOnly = true
			raw = strings.TrimSuffix(raw, "/")
		}
		if raw == "" {
			continue
		}
		p.anyDir = !strings.Contains(raw, "/")
		p.glob = raw
		out = append(out, p)
	}
	return out
}

// NewNameFilter builds a hard filter from an include phrase and an exclude
// phrase. An empty include phrase includes everything.
func NewNameFilter(includePhrase, excludePhrase string) *NameFilter {
	return &NameFilter{
		include: parsePatterns(includePhrase),
		exclude: parsePatterns(excludePhrase),
	}
}

// IsNull reports whether the filter cannot exclude anything
func (f *NameFilter) IsNull() bool {
	return len(f.exclude) == 0 && len(f.include) == 0
}

// Merge combines this filter with another one: both include lists must pass,
// either exclude list rejects
func (f *NameFilter) Merge(other *NameFilter) *NameFilter {
	if other == nil {
		return f
	}
	merged := &NameFilter{}
	merged.include = append(append([]pattern{}, f.include...), other.include...)
	merged.exclude = append(append([]pattern{}, f.exclude...), other.exclude...)
	return merged
}

func (p pattern) matches(rel string, isDir bool) bool {
	if p.dirOnly && !isDir {
		return false
	}
	if strings.HasSuffix(p.glob, "/**") {
		// "<dir>/**" matches the folder's contents, not the folder itself
		if ok, _ := doublestar.Match(strings.TrimSuffix(p.glob, "/**"), rel); ok {
			return false
		}
	}
	if ok, _ := doublestar.Match(p.glob, rel); ok {
		return true
	}
	if p.anyDir {
		if ok, _ := doublestar.Match("**/"+p.glob, rel); ok {
			return true
		}
	}
	return false
}

// couldMatchBelow reports whether the pattern might match some descendant of
// the folder at rel. Conservative: false only when provably impossible.
func (p pattern) couldMatchBelow(rel string) bool {
	if p.anyDir || strings.Contains(p.glob, "**") {
		return true
	}
	patComps := strings.Split(p.glob, "/")
	relComps := strings.Split(rel, "/")
	if len(patComps) <= len(relComps) {
		return false
	}
	for i, comp := range relComps {
		if ok, _ := doublestar.Match(patComps[i], comp); !ok {
			return false
		}
	}
	return true
}

func (f *NameFilter) includeMatches(rel string, isDir bool) bool {
	if len(f.include) == 0 {
		return true
	}
	for _, p := range f.include {
		if p.matches(rel, isDir) {
			return true
		}
	}
	return false
}

func (f *NameFilter) excludeMatches(rel string, isDir bool) bool {
	for _, p := range f.exclude {
		if p.matches(rel, isDir) {
			return true
		}
	}
	return false
}

// PassFileFilter implements PathFilter
func (f *NameFilter) PassFileFilter(relPath interfaces.Path) bool {
	rel := string(relPath)
	return f.includeMatches(rel, false) && !f.excludeMatches(rel, false)
}

// PassDirFilter implements PathFilter. An excluded folder excludes its whole
// subtree: childItemMightMatch is false.
func (f *NameFilter) PassDirFilter(relPath interfaces.Path) (bool, bool) {
	rel := string(relPath)
	if f.excludeMatches(rel, true) {
		return false, false
	}
	if f.includeMatches(rel, true) {
		return true, true
	}
	for _, p := range f.include {
		if p.couldMatchBelow(rel) {
			return false, true
		}
	}
	return false, false
}
