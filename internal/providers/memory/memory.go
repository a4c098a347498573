// Package memory implements an in-memory Device. It backs engine tests and
// dry runs with full fidelity: fingerprints, recycle bin, traversal, and
// failure injection for the non-fatal mod-time anomaly.
package memory

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/wuhui20091515/FreeFileSync/internal/core/interfaces"
	ffserrors "github.com/wuhui20091515/FreeFileSync/pkg/errors"
	"github.com/wuhui20091515/FreeFileSync/pkg/models"
)

type node struct {
	typ      interfaces.ItemType
	children map[string]*node // folders only
	data     []byte           // files only
	target   string           // symlinks only
	modTime  int64
	print    uint64
}

func newFolder() *node {
	return &node{typ: interfaces.ItemFolder, children: make(map[string]*node)}
}

// Device is an in-memory filesystem rooted at a named volume
type Device struct {
	mu               sync.Mutex
	name             string
	root             *node
	nextPrint        uint64
	recycled         map[string]*node
	recycleSupported bool

	// FailModTime makes every Finalize report a non-fatal mod-time error
	FailModTime bool
}

// New creates an empty volume with recycle-bin support enabled
func New(name string) *Device {
	return &Device{
		name:             name,
		root:             newFolder(),
		recycled:         make(map[string]*node),
		recycleSupported: true,
	}
}

// SetRecycleSupported toggles the recycle-bin capability probe
func (d *Device) SetRecycleSupported(supported bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.recycleSupported = supported
}

// Kind implements interfaces.Device
func (d *Device) Kind() string { return "memory" }

// EqualTo implements interfaces.Device: each volume is its own device
func (d *Device) EqualTo(other interfaces.Device) bool {
	o, ok := other.(*Device)
	return ok && o == d
}

// DisplayPath implements interfaces.Device
func (d *Device) DisplayPath(p interfaces.Path) string {
	return d.name + ":/" + string(p)
}

// PathPhrase implements interfaces.Device
func (d *Device) PathPhrase(p interfaces.Path) string {
	return "mem:" + d.name + "/" + string(p)
}

// Timeout implements interfaces.Device
func (d *Device) Timeout() time.Duration { return 0 }

func (d *Device) notFound(p interfaces.Path) error {
	return ffserrors.NewFileError(fmt.Sprintf("Item %s not found", d.DisplayPath(p)), "ENOENT", nil)
}

// lookup resolves a path; the caller must hold the lock
func (d *Device) lookup(p interfaces.Path) (*node, error) {
	cur := d.root
	for _, comp := range p.Components() {
		if cur.typ != interfaces.ItemFolder {
			return nil, d.notFound(p)
		}
		next, ok := cur.children[comp]
		if !ok {
			return nil, d.notFound(p)
		}
		cur = next
	}
	return cur, nil
}

func (d *Device) lookupFolder(p interfaces.Path) (*node, error) {
	n, err := d.lookup(p)
	if err != nil {
		return nil, err
	}
	if n.typ != interfaces.ItemFolder {
		return nil, ffserrors.NewFileError(fmt.Sprintf("%s is not a folder", d.DisplayPath(p)), "ENOTDIR", nil)
	}
	return n, nil
}

// GetItemType implements interfaces.Device
func (d *Device) GetItemType(p interfaces.Path) (interfaces.ItemType, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.lookup(p)
	if err != nil {
		return 0, err
	}
	return n.typ, nil
}

// ItemStillExists implements interfaces.Device. Lookups are exact and
// case-sensitive, so the ancestor search degenerates to a plain walk.
func (d *Device) ItemStillExists(p interfaces.Path) (interfaces.ItemType, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.lookup(p)
	if err != nil {
		return 0, false, nil
	}
	return n.typ, true, nil
}

// ListFolder implements interfaces.Device
func (d *Device) ListFolder(p interfaces.Path) ([]interfaces.DirEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	folder, err := d.lookupFolder(p)
	if err != nil {
		return nil, err
	}
	entries := make([]interfaces.DirEntry, 0, len(folder.children))
	for name, child := range folder.children {
		entries = append(entries, interfaces.DirEntry{Name: name, Type: child.typ})
	}
	return entries, nil
}

// CreateFolderPlain implements interfaces.Device
func (d *Device) CreateFolderPlain(p interfaces.Path) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.createFolderLocked(p)
}

func (d *Device) createFolderLocked(p interfaces.Path) error {
	parent, ok := p.Parent()
	if !ok {
		return ffserrors.NewTargetExisting(fmt.Sprintf("Folder %s already exists", d.DisplayPath(p)), "root")
	}
	folder, err := d.lookupFolder(parent)
	if err != nil {
		return err
	}
	if _, exists := folder.children[p.Name()]; exists {
		return ffserrors.NewTargetExisting(fmt.Sprintf("Item %s already exists", d.DisplayPath(p)), "EEXIST")
	}
	folder.children[p.Name()] = newFolder()
	return nil
}

func (d *Device) removePlain(p interfaces.Path, want interfaces.ItemType) error {
	parent, ok := p.Parent()
	if !ok {
		return ffserrors.NewFileError("Cannot remove device root", d.DisplayPath(p), nil)
	}
	folder, err := d.lookupFolder(parent)
	if err != nil {
		return err
	}
	child, exists := folder.children[p.Name()]
	if !exists {
		return d.notFound(p)
	}
	if child.typ != want {
		return ffserrors.NewFileError(
			fmt.Sprintf("Item %s is a %s, expected %s", d.DisplayPath(p), child.typ, want), "EINVAL", nil)
	}
	if want == interfaces.ItemFolder && len(child.children) > 0 {
		return ffserrors.NewFileError(fmt.Sprintf("Folder %s is not empty", d.DisplayPath(p)), "ENOTEMPTY", nil)
	}
	delete(folder.children, p.Name())
	return nil
}

// RemoveFilePlain implements interfaces.Device
func (d *Device) RemoveFilePlain(p interfaces.Path) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.removePlain(p, interfaces.ItemFile)
}

// RemoveSymlinkPlain implements interfaces.Device
func (d *Device) RemoveSymlinkPlain(p interfaces.Path) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.removePlain(p, interfaces.ItemSymlink)
}

// RemoveFolderPlain implements interfaces.Device
func (d *Device) RemoveFolderPlain(p interfaces.Path) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.removePlain(p, interfaces.ItemFolder)
}

// MoveAndRename implements interfaces.Device
func (d *Device) MoveAndRename(from, to interfaces.Path, replaceExisting bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	fromParentPath, ok := from.Parent()
	if !ok {
		return ffserrors.NewFileError("Cannot move device root", d.DisplayPath(from), nil)
	}
	fromParent, err := d.lookupFolder(fromParentPath)
	if err != nil {
		return err
	}
	src, exists := fromParent.children[from.Name()]
	if !exists {
		return d.notFound(from)
	}

	toParentPath, ok := to.Parent()
	if !ok {
		return ffserrors.NewFileError("Cannot replace device root", d.DisplayPath(to), nil)
	}
	toParent, err := d.lookupFolder(toParentPath)
	if err != nil {
		return err
	}
	if existing, exists := toParent.children[to.Name()]; exists && !replaceExisting {
		// same underlying item by fingerprint: idempotent rename must not fail
		if existing != src && (existing.print == 0 || existing.print != src.print) {
			return ffserrors.NewTargetExisting(fmt.Sprintf("Item %s already exists", d.DisplayPath(to)), "EEXIST")
		}
	}
	delete(fromParent.children, from.Name())
	toParent.children[to.Name()] = src
	return nil
}

// memInputStream reads a snapshot of a file's bytes
type memInputStream struct{ r *bytes.Reader }

func (s *memInputStream) Read(buf []byte) (int, error) { return s.r.Read(buf) }
func (s *memInputStream) BlockSize() int               { return 64 * 1024 }
func (s *memInputStream) Close() error                 { return nil }

// OpenInput implements interfaces.Device
func (d *Device) OpenInput(p interfaces.Path) (interfaces.InputStream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.lookup(p)
	if err != nil {
		return nil, err
	}
	if n.typ != interfaces.ItemFile {
		return nil, ffserrors.NewFileError(fmt.Sprintf("%s is not a file", d.DisplayPath(p)), "EISDIR", nil)
	}
	return &memInputStream{r: bytes.NewReader(append([]byte(nil), n.data...))}, nil
}

type memOutputStream struct {
	device  *Device
	path    interfaces.Path
	buf     bytes.Buffer
	modTime *int64
	done    bool
}

func (s *memOutputStream) Write(buf []byte) (int, error) {
	return s.buf.Write(buf)
}

func (s *memOutputStream) Finalize() (*interfaces.FinalizeResult, error) {
	s.device.mu.Lock()
	defer s.device.mu.Unlock()
	s.done = true

	parent, _ := s.path.Parent()
	folder, err := s.device.lookupFolder(parent)
	if err != nil {
		return nil, err
	}
	s.device.nextPrint++
	n := &node{typ: interfaces.ItemFile, data: s.buf.Bytes(), print: s.device.nextPrint}
	folder.children[s.path.Name()] = n

	result := &interfaces.FinalizeResult{TargetPrint: n.print}
	if s.device.FailModTime {
		result.ErrorModTime = ffserrors.NewFileError(
			fmt.Sprintf("Cannot set modification time of %s", s.device.DisplayPath(s.path)), "EPERM", nil)
	} else if s.modTime != nil {
		n.modTime = *s.modTime
	}
	return result, nil
}

func (s *memOutputStream) Cancel() {
	s.done = true
}

// OpenOutput implements interfaces.Device
func (d *Device) OpenOutput(p interfaces.Path, sizeHint *uint64, modTime *int64) (interfaces.OutputStream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	parent, ok := p.Parent()
	if !ok {
		return nil, ffserrors.NewFileError("Cannot write to device root", d.DisplayPath(p), nil)
	}
	folder, err := d.lookupFolder(parent)
	if err != nil {
		return nil, err
	}
	if _, exists := folder.children[p.Name()]; exists {
		return nil, ffserrors.NewTargetExisting(fmt.Sprintf("Item %s already exists", d.DisplayPath(p)), "EEXIST")
	}
	return &memOutputStream{device: d, path: p, modTime: modTime}, nil
}

// CopyNewFile implements interfaces.Device
func (d *Device) CopyNewFile(from, to interfaces.Path, ioNotify interfaces.IOCallback) (*interfaces.FileCopyResult, error) {
	d.mu.Lock()
	src, err := d.lookup(from)
	if err != nil {
		d.mu.Unlock()
		return nil, err
	}
	if src.typ != interfaces.ItemFile {
		d.mu.Unlock()
		return nil, ffserrors.NewFileError(fmt.Sprintf("%s is not a file", d.DisplayPath(from)), "EISDIR", nil)
	}
	data := append([]byte(nil), src.data...)
	modTime := src.modTime
	srcPrint := src.print
	d.mu.Unlock()

	if ioNotify != nil {
		if err := ioNotify(int64(len(data))); err != nil {
			return nil, err
		}
	}

	out, err := d.OpenOutput(to, nil, &modTime)
	if err != nil {
		return nil, err
	}
	if _, err := out.Write(data); err != nil {
		out.Cancel()
		return nil, err
	}
	fin, err := out.Finalize()
	if err != nil {
		return nil, err
	}
	return &interfaces.FileCopyResult{
		FileSize:     uint64(len(data)),
		ModTime:      modTime,
		SourcePrint:  srcPrint,
		TargetPrint:  fin.TargetPrint,
		ErrorModTime: fin.ErrorModTime,
	}, nil
}

// ReadSymlink implements interfaces.Device
func (d *Device) ReadSymlink(p interfaces.Path) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, err := d.lookup(p)
	if err != nil {
		return "", err
	}
	if n.typ != interfaces.ItemSymlink {
		return "", ffserrors.NewFileError(fmt.Sprintf("%s is not a symlink", d.DisplayPath(p)), "EINVAL", nil)
	}
	return n.target, nil
}

// CreateSymlink implements interfaces.Device
func (d *Device) CreateSymlink(p interfaces.Path, target string, modTime *int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	parent, ok := p.Parent()
	if !ok {
		return ffserrors.NewFileError("Cannot write to device root", d.DisplayPath(p), nil)
	}
	folder, err := d.lookupFolder(parent)
	if err != nil {
		return err
	}
	if _, exists := folder.children[p.Name()]; exists {
		return ffserrors.NewTargetExisting(fmt.Sprintf("Item %s already exists", d.DisplayPath(p)), "EEXIST")
	}
	n := &node{typ: interfaces.ItemSymlink, target: target}
	if modTime != nil {
		n.modTime = *modTime
	}
	folder.children[p.Name()] = n
	return nil
}

// CopyOwnerAndPermissions implements interfaces.Device; a no-op here
func (d *Device) CopyOwnerAndPermissions(from, to interfaces.Path) error { return nil }

// GetFreeDiskSpace implements interfaces.Device
func (d *Device) GetFreeDiskSpace(p interfaces.Path) (int64, error) {
	return 1 << 40, nil
}

// SupportsRecycleBin implements interfaces.Device
func (d *Device) SupportsRecycleBin(p interfaces.Path) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.recycleSupported, nil
}

// RecycleItemIfExists implements interfaces.Device
func (d *Device) RecycleItemIfExists(p interfaces.Path) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.recycleSupported {
		return ffserrors.NewNotSupported(fmt.Sprintf("The recycle bin is not available for %s", d.DisplayPath(p)))
	}
	parent, ok := p.Parent()
	if !ok {
		return ffserrors.NewFileError("Cannot recycle device root", d.DisplayPath(p), nil)
	}
	folder, err := d.lookupFolder(parent)
	if err != nil {
		return err
	}
	child, exists := folder.children[p.Name()]
	if !exists {
		return nil
	}
	delete(folder.children, p.Name())
	d.recycled[string(p)] = child
	return nil
}

// TraverseFolder implements interfaces.Device. parallelOps is accepted for
// contract compatibility; an in-memory walk gains nothing from fan-out.
func (d *Device) TraverseFolder(workload []interfaces.TraverserWorkloadItem, parallelOps int) error {
	for _, item := range workload {
		d.mu.Lock()
		folder, err := d.lookupFolder(item.Path)
		d.mu.Unlock()
		if err != nil {
			if handling, herr := item.Callback.OnDirError(err); herr != nil {
				return herr
			} else if handling == interfaces.ErrorRetry {
				return d.TraverseFolder([]interfaces.TraverserWorkloadItem{item}, parallelOps)
			}
			continue
		}
		if err := d.traverse(folder, item.Callback); err != nil {
			return err
		}
	}
	return nil
}

func (d *Device) traverse(folder *node, cb interfaces.TraverserCallback) error {
	d.mu.Lock()
	type childEntry struct {
		name string
		node *node
	}
	children := make([]childEntry, 0, len(folder.children))
	for name, child := range folder.children {
		children = append(children, childEntry{name, child})
	}
	d.mu.Unlock()

	for _, entry := range children {
		switch entry.node.typ {
		case interfaces.ItemFile:
			attr := models.FileAttributes{
				ModTime:   entry.node.modTime,
				Size:      uint64(len(entry.node.data)),
				FilePrint: entry.node.print,
			}
			if err := cb.OnFile(entry.name, attr); err != nil {
				return err
			}
		case interfaces.ItemSymlink:
			if err := cb.OnSymlink(entry.name, models.LinkAttributes{ModTime: entry.node.modTime}); err != nil {
				return err
			}
		case interfaces.ItemFolder:
			sub, err := cb.OnFolder(entry.name, models.FolderAttributes{})
			if err != nil {
				return err
			}
			if sub != nil {
				if err := d.traverse(entry.node, sub); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
