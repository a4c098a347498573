//go:build unix

package native

import (
	"errors"
	"os"
	"syscall"
)

// filePrint derives the device-persistent file identifier from the inode
func filePrint(fi os.FileInfo) uint64 {
	if st, ok := fi.Sys().(*syscall.Stat_t); ok {
		return st.Ino
	}
	return 0
}

func isCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}

func copyOwner(from, to string, fi os.FileInfo) error {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return nil
	}
	if err := os.Lchown(to, int(st.Uid), int(st.Gid)); err != nil {
		return wrapOsError("set owner of", to, err)
	}
	return nil
}

func freeDiskSpace(path string) (int64, error) {
	var st syscall.Statfs_t
	if err := syscall.Statfs(path, &st); err != nil {
		return -1, wrapOsError("query free space of", path, err)
	}
	return int64(st.Bavail) * int64(st.Bsize), nil
}

// sameFilesystem reports whether two paths live on the same mounted device
func sameFilesystem(a, b string) bool {
	var stA, stB syscall.Stat_t
	if err := syscall.Stat(a, &stA); err != nil {
		return false
	}
	if err := syscall.Stat(b, &stB); err != nil {
		return false
	}
	return stA.Dev == stB.Dev
}
