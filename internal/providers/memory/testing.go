package memory

import (
	"sort"

	"github.com/wuhui20091515/FreeFileSync/internal/core/interfaces"
	ffserrors "github.com/wuhui20091515/FreeFileSync/pkg/errors"
)

// Test construction helpers. They panic on misuse so test setup stays terse.

// MustMkdirAll creates a folder chain
func (d *Device) MustMkdirAll(path string) {
	p := interfaces.MakePath(path)
	comps := p.Components()
	cur := interfaces.Path("")
	for _, comp := range comps {
		cur = cur.Append(comp)
		if err := d.CreateFolderPlain(cur); err != nil && !ffserrors.IsTargetExisting(err) {
			panic(err)
		}
	}
}

// MustWriteFile creates a file with the given content and mod time, creating
// parents as needed. Returns the assigned file print.
func (d *Device) MustWriteFile(path string, data []byte, modTime int64) uint64 {
	p := interfaces.MakePath(path)
	if parent, ok := p.Parent(); ok && !parent.IsRoot() {
		d.MustMkdirAll(string(parent))
	}
	out, err := d.OpenOutput(p, nil, &modTime)
	if err != nil {
		panic(err)
	}
	if _, err := out.Write(data); err != nil {
		panic(err)
	}
	if _, err := out.Finalize(); err != nil {
		panic(err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.lookup(p)
	if err != nil {
		panic(err)
	}
	n.modTime = modTime
	return n.print
}

// MustSymlink creates a symlink, creating parents as needed
func (d *Device) MustSymlink(path, target string, modTime int64) {
	p := interfaces.MakePath(path)
	if parent, ok := p.Parent(); ok && !parent.IsRoot() {
		d.MustMkdirAll(string(parent))
	}
	if err := d.CreateSymlink(p, target, &modTime); err != nil {
		panic(err)
	}
}

// SetFilePrint overrides the fingerprint of an existing file
func (d *Device) SetFilePrint(path string, print uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.lookup(interfaces.MakePath(path))
	if err != nil {
		panic(err)
	}
	n.print = print
}

// Exists reports whether any item lives at the path
func (d *Device) Exists(path string) bool {
	_, exists, _ := d.ItemStillExists(interfaces.MakePath(path))
	return exists
}

// ReadFile returns a file's content, or nil when missing
func (d *Device) ReadFile(path string) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.lookup(interfaces.MakePath(path))
	if err != nil || n.typ != interfaces.ItemFile {
		return nil
	}
	return append([]byte(nil), n.data...)
}

// Recycled lists the paths moved to the volume's recycle bin, sorted
func (d *Device) Recycled() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	paths := make([]string, 0, len(d.recycled))
	for p := range d.recycled {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
