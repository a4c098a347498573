// Package interfaces defines the core contracts of the sync engine: the
// device abstraction, stream and traversal types, the progress callback, and
// the last-sync state loader.
package interfaces

import "strings"

// Path is a device-relative item path: forward-slash separated name
// components with no leading or trailing separator. The empty Path addresses
// the device root.
type Path string

// MakePath normalizes a raw path string into a Path
func MakePath(raw string) Path {
	raw = strings.ReplaceAll(raw, "\\", "/")
	parts := strings.Split(raw, "/")
	kept := parts[:0]
	for _, p := range parts {
		if p != "" && p != "." {
			kept = append(kept, p)
		}
	}
	return Path(strings.Join(kept, "/"))
}

// IsRoot reports whether the path addresses the device root
func (p Path) IsRoot() bool {
	return p == ""
}

// Append joins additional name components onto the path
func (p Path) Append(names ...string) Path {
	parts := make([]string, 0, len(names)+1)
	if p != "" {
		parts = append(parts, string(p))
	}
	for _, n := range names {
		if n != "" {
			parts = append(parts, n)
		}
	}
	return MakePath(strings.Join(parts, "/"))
}

// Parent returns the parent path; ok is false at the root
func (p Path) Parent() (Path, bool) {
	if p.IsRoot() {
		return "", false
	}
	idx := strings.LastIndexByte(string(p), '/')
	if idx < 0 {
		return "", true
	}
	return p[:idx], true
}

// Name returns the last path component, or "" at the root
func (p Path) Name() string {
	if p.IsRoot() {
		return ""
	}
	idx := strings.LastIndexByte(string(p), '/')
	return string(p[idx+1:])
}

// Components splits the path into its name components
func (p Path) Components() []string {
	if p.IsRoot() {
		return nil
	}
	return strings.Split(string(p), "/")
}

// IsAncestorOf reports whether p is a strict ancestor of other
func (p Path) IsAncestorOf(other Path) bool {
	if p.IsRoot() {
		return !other.IsRoot()
	}
	return strings.HasPrefix(string(other), string(p)+"/")
}

// AbstractPath pairs a Device with a device-relative Path
type AbstractPath struct {
	Device Device
	Path   Path
}

// Append joins additional name components onto the abstract path
func (ap AbstractPath) Append(names ...string) AbstractPath {
	return AbstractPath{Device: ap.Device, Path: ap.Path.Append(names...)}
}

// AppendRel joins a relative path onto the abstract path
func (ap AbstractPath) AppendRel(rel Path) AbstractPath {
	return ap.Append(rel.Components()...)
}

// Parent returns the parent abstract path; ok is false at the device root
func (ap AbstractPath) Parent() (AbstractPath, bool) {
	parent, ok := ap.Path.Parent()
	if !ok {
		return AbstractPath{}, false
	}
	return AbstractPath{Device: ap.Device, Path: parent}, true
}

// Name returns the last path component
func (ap AbstractPath) Name() string {
	return ap.Path.Name()
}

// DisplayPath renders the path for status lines and logs
func (ap AbstractPath) DisplayPath() string {
	if ap.Device == nil {
		return string(ap.Path)
	}
	return ap.Device.DisplayPath(ap.Path)
}

// IsNull reports whether the abstract path has no device bound
func (ap AbstractPath) IsNull() bool {
	return ap.Device == nil
}

// EquivalentDevices reports whether two devices address the same storage:
// only then do two-path operations like rename work natively. Cross-device
// operations fall back to generic copy plus delete.
func EquivalentDevices(a, b Device) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Kind() == b.Kind() && a.EqualTo(b)
}
