package fsops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wuhui20091515/FreeFileSync/internal/core/interfaces"
	"github.com/wuhui20091515/FreeFileSync/internal/providers/memory"
	ffserrors "github.com/wuhui20091515/FreeFileSync/pkg/errors"
	"github.com/wuhui20091515/FreeFileSync/pkg/models"
)

func ap(dev *memory.Device, path string) interfaces.AbstractPath {
	return interfaces.AbstractPath{Device: dev, Path: interfaces.MakePath(path)}
}

func TestCreateFolderIfMissingRecursion(t *testing.T) {
	dev := memory.New("vol")

	existed, err := CreateFolderIfMissingRecursion(ap(dev, "a/b/c"))
	require.NoError(t, err)
	assert.False(t, existed)
	assert.True(t, dev.Exists("a/b/c"))

	existed, err = CreateFolderIfMissingRecursion(ap(dev, "a/b/c"))
	require.NoError(t, err)
	assert.True(t, existed)
}

func TestRemoveIfExistsToleratesMissing(t *testing.T) {
	dev := memory.New("vol")
	dev.MustWriteFile("f.txt", []byte("x"), 1)

	require.NoError(t, RemoveFileIfExists(ap(dev, "f.txt")))
	require.NoError(t, RemoveFileIfExists(ap(dev, "f.txt"))) // already gone
	require.NoError(t, RemoveSymlinkIfExists(ap(dev, "missing-link")))
}

func TestRemoveFolderRecursionOrder(t *testing.T) {
	dev := memory.New("vol")
	dev.MustWriteFile("top/inner/deep.txt", []byte("x"), 1)
	dev.MustWriteFile("top/file.txt", []byte("y"), 1)
	dev.MustSymlink("top/link", "target", 1)

	var files, folders []string
	err := RemoveFolderIfExistsRecursion(ap(dev, "top"),
		func(displayPath string) error {
			files = append(files, displayPath)
			return nil
		},
		func(displayPath string) error {
			folders = append(folders, displayPath)
			return nil
		})
	require.NoError(t, err)
	assert.False(t, dev.Exists("top"))

	assert.Len(t, files, 3) // two files plus the symlink
	// innermost folder deleted first, the root folder last
	require.Len(t, folders, 2)
	assert.Equal(t, "vol:/top/inner", folders[0])
	assert.Equal(t, "vol:/top", folders[1])
}

func TestRemoveFolderRecursionMissingFolder(t *testing.T) {
	dev := memory.New("vol")
	require.NoError(t, RemoveFolderIfExistsRecursion(ap(dev, "not-there"), nil, nil))
}

func TestMoveAndRenameCrossDevice(t *testing.T) {
	a := memory.New("a")
	b := memory.New("b")
	a.MustWriteFile("f.txt", []byte("x"), 1)

	err := MoveAndRename(ap(a, "f.txt"), ap(b, "f.txt"), false)
	require.Error(t, err)
	assert.True(t, ffserrors.IsMoveUnsupported(err))
}

func TestCopyFileTransactional(t *testing.T) {
	src := memory.New("src")
	src.MustWriteFile("f.txt", []byte("payload"), 123)
	dst := memory.New("dst")

	attr := models.FileAttributes{ModTime: 123, Size: 7}
	result, err := CopyFileTransactional(ap(src, "f.txt"), attr, ap(dst, "f.txt"), true, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, []byte("payload"), dst.ReadFile("f.txt"))
	assert.Equal(t, uint64(7), result.FileSize)
	assert.NotZero(t, result.TargetPrint)
	assert.False(t, dst.Exists("f.txt"+TempFileEnding))
}

func TestCopyFileTransactionalTargetExists(t *testing.T) {
	src := memory.New("src")
	src.MustWriteFile("f.txt", []byte("new"), 123)
	dst := memory.New("dst")
	dst.MustWriteFile("f.txt", []byte("old"), 50)

	attr := models.FileAttributes{ModTime: 123, Size: 3}

	// without a pre-delete step the rename refuses to clobber
	_, err := CopyFileTransactional(ap(src, "f.txt"), attr, ap(dst, "f.txt"), true, nil, nil)
	require.Error(t, err)
	assert.True(t, ffserrors.IsTargetExisting(err))
	assert.Equal(t, []byte("old"), dst.ReadFile("f.txt"))
	assert.False(t, dst.Exists("f.txt"+TempFileEnding))

	// the injected pre-delete step makes room
	deleteTarget := func() error { return RemoveFileIfExists(ap(dst, "f.txt")) }
	_, err = CopyFileTransactional(ap(src, "f.txt"), attr, ap(dst, "f.txt"), true, deleteTarget, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), dst.ReadFile("f.txt"))
}

func TestCopyFileTransactionalCancellationCleansUp(t *testing.T) {
	src := memory.New("src")
	src.MustWriteFile("f.txt", []byte("data"), 123)
	dst := memory.New("dst")

	attr := models.FileAttributes{ModTime: 123, Size: 4}
	_, err := CopyFileTransactional(ap(src, "f.txt"), attr, ap(dst, "f.txt"), true, nil,
		func(bytesDelta int64) error { return ffserrors.ErrCancelled })
	require.Error(t, err)
	assert.True(t, ffserrors.IsCancelled(err))

	// neither the target nor the intermediate file survives
	assert.False(t, dst.Exists("f.txt"))
	assert.False(t, dst.Exists("f.txt"+TempFileEnding))
}

func TestCopySymlinkAcrossDevices(t *testing.T) {
	src := memory.New("src")
	src.MustSymlink("link", "some/target", 99)
	dst := memory.New("dst")

	modTime := int64(99)
	require.NoError(t, CopySymlink(ap(src, "link"), ap(dst, "link"), &modTime))
	target, err := dst.ReadSymlink(interfaces.MakePath("link"))
	require.NoError(t, err)
	assert.Equal(t, "some/target", target)
}

func TestCopyNewFolder(t *testing.T) {
	src := memory.New("src")
	src.MustMkdirAll("dir")
	dst := memory.New("dst")

	require.NoError(t, CopyNewFolder(ap(src, "dir"), ap(dst, "dir"), false))
	assert.True(t, dst.Exists("dir"))

	err := CopyNewFolder(ap(src, "dir"), ap(dst, "dir"), false)
	assert.True(t, ffserrors.IsTargetExisting(err))
}
