// Package native implements the Device abstraction for the local filesystem.
// One device instance covers the whole local namespace; paths are relative to
// the filesystem root.
package native

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wuhui20091515/FreeFileSync/internal/core/interfaces"
	ffserrors "github.com/wuhui20091515/FreeFileSync/pkg/errors"
	"github.com/wuhui20091515/FreeFileSync/pkg/models"
)

// blockSize is the preferred transfer granularity for local disks
const blockSize = 128 * 1024

// Device is the native-local filesystem
type Device struct{}

// New returns the local filesystem device
func New() *Device { return &Device{} }

// Kind implements interfaces.Device
func (d *Device) Kind() string { return "native" }

// EqualTo implements interfaces.Device: all native handles address the same
// local namespace
func (d *Device) EqualTo(other interfaces.Device) bool {
	_, ok := other.(*Device)
	return ok
}

func (d *Device) abs(p interfaces.Path) string {
	return string(os.PathSeparator) + filepath.FromSlash(string(p))
}

// DisplayPath implements interfaces.Device
func (d *Device) DisplayPath(p interfaces.Path) string { return d.abs(p) }

// PathPhrase implements interfaces.Device
func (d *Device) PathPhrase(p interfaces.Path) string { return d.abs(p) }

// Timeout implements interfaces.Device: local disks declare none
func (d *Device) Timeout() time.Duration { return 0 }

func wrapOsError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	if os.IsExist(err) {
		return ffserrors.NewTargetExisting(fmt.Sprintf("Cannot %s %s", op, path), err.Error())
	}
	return ffserrors.NewFileError(fmt.Sprintf("Cannot %s %s", op, path), err.Error(), err)
}

func itemTypeOf(mode os.FileMode) interfaces.ItemType {
	switch {
	case mode&os.ModeSymlink != 0:
		return interfaces.ItemSymlink
	case mode.IsDir():
		return interfaces.ItemFolder
	default:
		return interfaces.ItemFile
	}
}

// GetItemType implements interfaces.Device
func (d *Device) GetItemType(p interfaces.Path) (interfaces.ItemType, error) {
	fi, err := os.Lstat(d.abs(p))
	if err != nil {
		return 0, wrapOsError("access", d.abs(p), err)
	}
	return itemTypeOf(fi.Mode()), nil
}

// ItemStillExists implements interfaces.Device: when the plain stat fails,
// the parent chain is searched with exact, case-sensitive name comparison so
// "definitely not there" is reliable even on case-insensitive filesystems.
func (d *Device) ItemStillExists(p interfaces.Path) (interfaces.ItemType, bool, error) {
	fi, err := os.Lstat(d.abs(p))
	if err == nil {
		return itemTypeOf(fi.Mode()), true, nil
	}
	if !os.IsNotExist(err) {
		return 0, false, wrapOsError("access", d.abs(p), err)
	}

	parent, ok := p.Parent()
	if !ok {
		return 0, false, nil
	}
	_, parentExists, perr := d.ItemStillExists(parent)
	if perr != nil || !parentExists {
		return 0, false, perr
	}
	entries, err := os.ReadDir(d.abs(parent))
	if err != nil {
		return 0, false, wrapOsError("enumerate", d.abs(parent), err)
	}
	for _, entry := range entries {
		if entry.Name() == p.Name() {
			info, err := entry.Info()
			if err != nil {
				return 0, false, wrapOsError("access", d.abs(p), err)
			}
			return itemTypeOf(info.Mode()), true, nil
		}
	}
	return 0, false, nil
}

// ListFolder implements interfaces.Device
func (d *Device) ListFolder(p interfaces.Path) ([]interfaces.DirEntry, error) {
	entries, err := os.ReadDir(d.abs(p))
	if err != nil {
		return nil, wrapOsError("enumerate", d.abs(p), err)
	}
	out := make([]interfaces.DirEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, interfaces.DirEntry{Name: entry.Name(), Type: itemTypeOf(entry.Type())})
	}
	return out, nil
}

// CreateFolderPlain implements interfaces.Device
func (d *Device) CreateFolderPlain(p interfaces.Path) error {
	return wrapOsError("create folder", d.abs(p), os.Mkdir(d.abs(p), 0755))
}

// RemoveFilePlain implements interfaces.Device
func (d *Device) RemoveFilePlain(p interfaces.Path) error {
	return wrapOsError("delete file", d.abs(p), os.Remove(d.abs(p)))
}

// RemoveSymlinkPlain implements interfaces.Device
func (d *Device) RemoveSymlinkPlain(p interfaces.Path) error {
	return wrapOsError("delete symbolic link", d.abs(p), os.Remove(d.abs(p)))
}

// RemoveFolderPlain implements interfaces.Device
func (d *Device) RemoveFolderPlain(p interfaces.Path) error {
	return wrapOsError("delete folder", d.abs(p), os.Remove(d.abs(p)))
}

// MoveAndRename implements interfaces.Device
func (d *Device) MoveAndRename(from, to interfaces.Path, replaceExisting bool) error {
	if !replaceExisting {
		if targetInfo, err := os.Lstat(d.abs(to)); err == nil {
			// same underlying inode by fingerprint: idempotent renames succeed
			srcInfo, serr := os.Lstat(d.abs(from))
			if serr != nil || filePrint(targetInfo) == 0 || filePrint(targetInfo) != filePrint(srcInfo) {
				return ffserrors.NewTargetExisting(
					fmt.Sprintf("Cannot move %s to %s", d.abs(from), d.abs(to)), "target exists")
			}
		}
	}
	if err := os.Rename(d.abs(from), d.abs(to)); err != nil {
		if isCrossDevice(err) {
			return ffserrors.NewMoveUnsupported(
				fmt.Sprintf("Cannot move %s to %s", d.abs(from), d.abs(to)), "cross-device link")
		}
		return wrapOsError("move", d.abs(from), err)
	}
	return nil
}

type fileInputStream struct{ f *os.File }

func (s *fileInputStream) Read(buf []byte) (int, error) { return s.f.Read(buf) }
func (s *fileInputStream) BlockSize() int               { return blockSize }
func (s *fileInputStream) Close() error                 { return s.f.Close() }

// OpenInput implements interfaces.Device
func (d *Device) OpenInput(p interfaces.Path) (interfaces.InputStream, error) {
	f, err := os.Open(d.abs(p))
	if err != nil {
		return nil, wrapOsError("read", d.abs(p), err)
	}
	return &fileInputStream{f: f}, nil
}

type fileOutputStream struct {
	f        *os.File
	path     string
	modTime  *int64
	sizeHint *uint64
	written  int64
	done     bool
}

func (s *fileOutputStream) Write(buf []byte) (int, error) {
	n, err := s.f.Write(buf)
	s.written += int64(n)
	if err != nil {
		return n, wrapOsError("write", s.path, err)
	}
	return n, nil
}

func (s *fileOutputStream) Finalize() (*interfaces.FinalizeResult, error) {
	s.done = true
	if s.sizeHint != nil && s.written != int64(*s.sizeHint) {
		if err := s.f.Truncate(s.written); err != nil {
			s.f.Close()
			os.Remove(s.path)
			return nil, wrapOsError("write", s.path, err)
		}
	}
	// close before setting the modification time
	if err := s.f.Close(); err != nil {
		os.Remove(s.path)
		return nil, wrapOsError("write", s.path, err)
	}

	result := &interfaces.FinalizeResult{}
	if s.modTime != nil {
		t := time.Unix(*s.modTime, 0)
		if err := os.Chtimes(s.path, t, t); err != nil {
			result.ErrorModTime = wrapOsError("set modification time of", s.path, err)
		}
	}
	if fi, err := os.Lstat(s.path); err == nil {
		result.TargetPrint = filePrint(fi)
	}
	return result, nil
}

func (s *fileOutputStream) Cancel() {
	if s.done {
		return
	}
	s.done = true
	s.f.Close()
	os.Remove(s.path)
}

// OpenOutput implements interfaces.Device
func (d *Device) OpenOutput(p interfaces.Path, sizeHint *uint64, modTime *int64) (interfaces.OutputStream, error) {
	path := d.abs(p)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, wrapOsError("create file", path, err)
	}
	if sizeHint != nil && *sizeHint > 0 {
		// preallocate the final size
		if err := f.Truncate(int64(*sizeHint)); err != nil {
			f.Close()
			os.Remove(path)
			return nil, wrapOsError("create file", path, err)
		}
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			f.Close()
			os.Remove(path)
			return nil, wrapOsError("create file", path, err)
		}
	}
	return &fileOutputStream{f: f, path: path, modTime: modTime, sizeHint: sizeHint}, nil
}

// CopyNewFile implements interfaces.Device
func (d *Device) CopyNewFile(from, to interfaces.Path, ioNotify interfaces.IOCallback) (*interfaces.FileCopyResult, error) {
	srcInfo, err := os.Lstat(d.abs(from))
	if err != nil {
		return nil, wrapOsError("read", d.abs(from), err)
	}
	in, err := d.OpenInput(from)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	size := uint64(srcInfo.Size())
	modTime := srcInfo.ModTime().Unix()
	out, err := d.OpenOutput(to, &size, &modTime)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, blockSize)
	var copied uint64
	for {
		n, readErr := in.Read(buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				out.Cancel()
				return nil, err
			}
			copied += uint64(n)
			if ioNotify != nil {
				if err := ioNotify(int64(n)); err != nil {
					out.Cancel()
					return nil, err
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			out.Cancel()
			return nil, wrapOsError("read", d.abs(from), readErr)
		}
	}
	fin, err := out.Finalize()
	if err != nil {
		return nil, err
	}
	return &interfaces.FileCopyResult{
		FileSize:     copied,
		ModTime:      modTime,
		SourcePrint:  filePrint(srcInfo),
		TargetPrint:  fin.TargetPrint,
		ErrorModTime: fin.ErrorModTime,
	}, nil
}

// ReadSymlink implements interfaces.Device
func (d *Device) ReadSymlink(p interfaces.Path) (string, error) {
	target, err := os.Readlink(d.abs(p))
	if err != nil {
		return "", wrapOsError("read symbolic link", d.abs(p), err)
	}
	return target, nil
}

// CreateSymlink implements interfaces.Device
func (d *Device) CreateSymlink(p interfaces.Path, target string, modTime *int64) error {
	if err := os.Symlink(target, d.abs(p)); err != nil {
		return wrapOsError("create symbolic link", d.abs(p), err)
	}
	return nil
}

// CopyOwnerAndPermissions implements interfaces.Device; mode is skipped for
// symlinks
func (d *Device) CopyOwnerAndPermissions(from, to interfaces.Path) error {
	fi, err := os.Lstat(d.abs(from))
	if err != nil {
		return wrapOsError("access", d.abs(from), err)
	}
	if err := copyOwner(d.abs(from), d.abs(to), fi); err != nil {
		return err
	}
	if fi.Mode()&os.ModeSymlink != 0 {
		return nil
	}
	return wrapOsError("set permissions of", d.abs(to), os.Chmod(d.abs(to), fi.Mode().Perm()))
}

// GetFreeDiskSpace implements interfaces.Device
func (d *Device) GetFreeDiskSpace(p interfaces.Path) (int64, error) {
	return freeDiskSpace(d.abs(p))
}

// TraverseFolder implements interfaces.Device: folder-level fan-out bounded
// by parallelOps
func (d *Device) TraverseFolder(workload []interfaces.TraverserWorkloadItem, parallelOps int) error {
	if parallelOps < 1 {
		parallelOps = 1
	}
	g := new(errgroup.Group)
	g.SetLimit(parallelOps)
	for _, item := range workload {
		item := item
		g.Go(func() error { return d.walkFolder(g, item.Path, item.Callback) })
	}
	return g.Wait()
}

func (d *Device) walkFolder(g *errgroup.Group, p interfaces.Path, cb interfaces.TraverserCallback) error {
	var entries []os.DirEntry
	for {
		var err error
		entries, err = os.ReadDir(d.abs(p))
		if err == nil {
			break
		}
		handling, herr := cb.OnDirError(wrapOsError("enumerate", d.abs(p), err))
		if herr != nil {
			return herr
		}
		if handling == interfaces.ErrorIgnore {
			return nil
		}
	}

	for _, entry := range entries {
		child := p.Append(entry.Name())
		info, err := entry.Info()
		if err != nil {
			// retry for a single item degenerates to skip: the listing
			// snapshot is stale either way
			if _, herr := cb.OnItemError(wrapOsError("access", d.abs(child), err), entry.Name()); herr != nil {
				return herr
			}
			continue
		}
		switch itemTypeOf(info.Mode()) {
		case interfaces.ItemFile:
			attr := models.FileAttributes{
				ModTime:   info.ModTime().Unix(),
				Size:      uint64(info.Size()),
				FilePrint: filePrint(info),
			}
			if err := cb.OnFile(entry.Name(), attr); err != nil {
				return err
			}
		case interfaces.ItemSymlink:
			if err := cb.OnSymlink(entry.Name(), models.LinkAttributes{ModTime: info.ModTime().Unix()}); err != nil {
				return err
			}
		case interfaces.ItemFolder:
			sub, err := cb.OnFolder(entry.Name(), models.FolderAttributes{})
			if err != nil {
				return err
			}
			if sub == nil {
				continue
			}
			if !g.TryGo(func() error { return d.walkFolder(g, child, sub) }) {
				// all slots busy: descend synchronously instead of deadlocking
				if err := d.walkFolder(g, child, sub); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
