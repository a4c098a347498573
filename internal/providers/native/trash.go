package native

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wuhui20091515/FreeFileSync/internal/core/interfaces"
)

// trashRoot locates the XDG trash directory, or "" when unavailable
func trashRoot() string {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "Trash")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "Trash")
}

// SupportsRecycleBin implements interfaces.Device: recycling works when the
// item lives on the same mounted filesystem as the user's trash directory,
// since the move must be a rename
func (d *Device) SupportsRecycleBin(p interfaces.Path) (bool, error) {
	trash := trashRoot()
	if trash == "" {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Join(trash, "files"), 0700); err != nil {
		return false, nil
	}
	probe := d.abs(p)
	for {
		if _, err := os.Lstat(probe); err == nil {
			break
		}
		parent := filepath.Dir(probe)
		if parent == probe {
			break
		}
		probe = parent
	}
	return sameFilesystem(probe, filepath.Join(trash, "files")), nil
}

// RecycleItemIfExists implements interfaces.Device following the XDG trash
// layout: the item moves to Trash/files and a sidecar .trashinfo records its
// origin. A missing item is not an error.
func (d *Device) RecycleItemIfExists(p interfaces.Path) error {
	src := d.abs(p)
	if _, err := os.Lstat(src); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return wrapOsError("access", src, err)
	}

	trash := trashRoot()
	filesDir := filepath.Join(trash, "files")
	infoDir := filepath.Join(trash, "info")
	for _, dir := range []string{filesDir, infoDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return wrapOsError("create folder", dir, err)
		}
	}

	base := filepath.Base(src)
	target := filepath.Join(filesDir, base)
	for i := 2; ; i++ {
		if _, err := os.Lstat(target); os.IsNotExist(err) {
			break
		}
		target = filepath.Join(filesDir, fmt.Sprintf("%s.%d", base, i))
	}

	info := fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		src, time.Now().Format("2006-01-02T15:04:05"))
	infoPath := filepath.Join(infoDir, filepath.Base(target)+".trashinfo")
	if err := os.WriteFile(infoPath, []byte(info), 0600); err != nil {
		return wrapOsError("write", infoPath, err)
	}
	if err := os.Rename(src, target); err != nil {
		os.Remove(infoPath)
		return wrapOsError("recycle", src, err)
	}
	return nil
}
