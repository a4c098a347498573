package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wuhui20091515/FreeFileSync/internal/compare"
	"github.com/wuhui20091515/FreeFileSync/internal/core/interfaces"
	"github.com/wuhui20091515/FreeFileSync/internal/hierarchy"
	"github.com/wuhui20091515/FreeFileSync/internal/providers/memory"
	"github.com/wuhui20091515/FreeFileSync/pkg/models"
)

// scanVolumes builds a categorized pair tree over two populated volumes
func scanVolumes(t *testing.T, left, right *memory.Device) *hierarchy.BaseFolderPair {
	t.Helper()
	base, err := compare.ScanBasePair(
		interfaces.AbstractPath{Device: left, Path: ""},
		interfaces.AbstractPath{Device: right, Path: ""},
		compare.ScanConfig{Variant: models.CompareTimeSize}, newRecordingCallback())
	require.NoError(t, err)
	return base
}

func findFilePair(c *hierarchy.ContainerObject, relPath string) *hierarchy.FilePair {
	var found *hierarchy.FilePair
	var walk func(c *hierarchy.ContainerObject)
	walk = func(c *hierarchy.ContainerObject) {
		for _, file := range c.Files() {
			if string(file.RelPathAny()) == relPath {
				found = file
			}
		}
		for _, folder := range c.Folders() {
			walk(&folder.ContainerObject)
		}
	}
	walk(c)
	return found
}

func findFolderPair(c *hierarchy.ContainerObject, relPath string) *hierarchy.FolderPair {
	var found *hierarchy.FolderPair
	var walk func(c *hierarchy.ContainerObject)
	walk = func(c *hierarchy.ContainerObject) {
		for _, folder := range c.Folders() {
			if string(folder.RelPathAny()) == relPath {
				found = folder
			}
			walk(&folder.ContainerObject)
		}
	}
	walk(c)
	return found
}

func TestCopyToAlternateFolderKeepRelPaths(t *testing.T) {
	left := memory.New("left")
	left.MustWriteFile("docs/a.txt", []byte("hello"), 100)
	left.MustWriteFile("b.txt", []byte("world"), 200)
	right := memory.New("right")

	base := scanVolumes(t, left, right)
	target := memory.New("target")
	targetPath := interfaces.AbstractPath{Device: target, Path: "out"}
	target.MustMkdirAll("out")

	selection := []hierarchy.FsObject{
		findFolderPair(&base.ContainerObject, "docs"),
		findFilePair(&base.ContainerObject, "docs/a.txt"),
		findFilePair(&base.ContainerObject, "b.txt"),
	}
	require.NotContains(t, selection, nil)

	cb := newRecordingCallback()
	require.NoError(t, CopyToAlternateFolder(selection, nil, targetPath, true, false, cb))

	assert.Equal(t, []byte("hello"), target.ReadFile("out/docs/a.txt"))
	assert.Equal(t, []byte("world"), target.ReadFile("out/b.txt"))
	assert.Equal(t, 3, cb.items)
}

func TestCopyToAlternateFolderFlat(t *testing.T) {
	left := memory.New("left")
	left.MustWriteFile("docs/a.txt", []byte("hello"), 100)
	right := memory.New("right")

	base := scanVolumes(t, left, right)
	target := memory.New("target")
	target.MustMkdirAll("out")
	targetPath := interfaces.AbstractPath{Device: target, Path: "out"}

	selection := []hierarchy.FsObject{findFilePair(&base.ContainerObject, "docs/a.txt")}
	require.NoError(t, CopyToAlternateFolder(selection, nil, targetPath, false, false, newRecordingCallback()))

	// without rel paths only the item name is kept
	assert.Equal(t, []byte("hello"), target.ReadFile("out/a.txt"))
	assert.False(t, target.Exists("out/docs/a.txt"))
}

func TestCopyToAlternateFolderOverwrite(t *testing.T) {
	left := memory.New("left")
	left.MustWriteFile("a.txt", []byte("new content"), 100)
	right := memory.New("right")
	base := scanVolumes(t, left, right)

	target := memory.New("target")
	target.MustWriteFile("out/a.txt", []byte("old"), 50)
	targetPath := interfaces.AbstractPath{Device: target, Path: "out"}

	selection := []hierarchy.FsObject{findFilePair(&base.ContainerObject, "a.txt")}

	// without overwrite the existing target is an error, surfaced then skipped
	cb := newRecordingCallback()
	require.NoError(t, CopyToAlternateFolder(selection, nil, targetPath, true, false, cb))
	assert.NotEmpty(t, cb.reportedErrs)
	assert.Equal(t, []byte("old"), target.ReadFile("out/a.txt"))

	require.NoError(t, CopyToAlternateFolder(selection, nil, targetPath, true, true, newRecordingCallback()))
	assert.Equal(t, []byte("new content"), target.ReadFile("out/a.txt"))
}

func TestCopyToAlternateFolderCreatesMissingParents(t *testing.T) {
	left := memory.New("left")
	left.MustWriteFile("deep/nested/a.txt", []byte("x"), 100)
	right := memory.New("right")
	base := scanVolumes(t, left, right)

	target := memory.New("target")
	target.MustMkdirAll("out")
	targetPath := interfaces.AbstractPath{Device: target, Path: "out"}

	// only the file selected: its parent chain must be created on demand
	selection := []hierarchy.FsObject{findFilePair(&base.ContainerObject, "deep/nested/a.txt")}
	require.NoError(t, CopyToAlternateFolder(selection, nil, targetPath, true, false, newRecordingCallback()))
	assert.Equal(t, []byte("x"), target.ReadFile("out/deep/nested/a.txt"))
}

func TestDeleteFromGridRecycles(t *testing.T) {
	left := memory.New("left")
	left.MustWriteFile("a.txt", []byte("x"), 100)
	right := memory.New("right")
	right.MustWriteFile("a.txt", []byte("x"), 100)

	base := scanVolumes(t, left, right)
	file := findFilePair(&base.ContainerObject, "a.txt")
	require.NotNil(t, file)

	policies := twoWayPolicy(base)
	warn := true
	cb := newRecordingCallback()
	require.NoError(t, DeleteFromGridAndDisk(
		[]hierarchy.FsObject{file}, nil, policies, true, &warn, cb))

	assert.False(t, left.Exists("a.txt"))
	assert.Equal(t, []string{"a.txt"}, left.Recycled())
	assert.True(t, right.Exists("a.txt"))
	assert.Empty(t, cb.warnings)

	// half-emptied pair: direction re-derived away from the empty side
	assert.True(t, file.IsEmpty(models.SideLeft))
	assert.Equal(t, models.DirRight, file.SyncDir())
}

func TestDeleteFromGridPermanentFallbackWarnsOnce(t *testing.T) {
	left := memory.New("left")
	left.SetRecycleSupported(false)
	left.MustWriteFile("a.txt", []byte("x"), 100)
	left.MustWriteFile("b.txt", []byte("y"), 100)
	right := memory.New("right")

	base := scanVolumes(t, left, right)
	rows := []hierarchy.FsObject{
		findFilePair(&base.ContainerObject, "a.txt"),
		findFilePair(&base.ContainerObject, "b.txt"),
	}

	warn := true
	cb := newRecordingCallback()
	require.NoError(t, DeleteFromGridAndDisk(rows, nil, twoWayPolicy(base), true, &warn, cb))

	// recycler probe failed: deleted permanently, one warning for the batch
	assert.False(t, left.Exists("a.txt"))
	assert.False(t, left.Exists("b.txt"))
	assert.Empty(t, left.Recycled())
	assert.Len(t, cb.warnings, 1)
}

func TestDeleteFromGridPrunesEmptyRows(t *testing.T) {
	left := memory.New("left")
	left.MustWriteFile("a.txt", []byte("x"), 100)
	right := memory.New("right")
	right.MustWriteFile("a.txt", []byte("x"), 100)

	base := scanVolumes(t, left, right)
	file := findFilePair(&base.ContainerObject, "a.txt")

	require.NoError(t, DeleteFromGridAndDisk(
		[]hierarchy.FsObject{file}, []hierarchy.FsObject{file},
		twoWayPolicy(base), false, nil, newRecordingCallback()))

	assert.False(t, left.Exists("a.txt"))
	assert.False(t, right.Exists("a.txt"))
	// the pair is empty on both sides now and must leave the model
	assert.Nil(t, findFilePair(&base.ContainerObject, "a.txt"))
}

func TestDeleteFolderRecursively(t *testing.T) {
	left := memory.New("left")
	left.MustWriteFile("dir/inner/file.txt", []byte("x"), 100)
	left.MustWriteFile("dir/top.txt", []byte("y"), 100)
	right := memory.New("right")

	base := scanVolumes(t, left, right)
	folder := findFolderPair(&base.ContainerObject, "dir")
	require.NotNil(t, folder)

	cb := newRecordingCallback()
	require.NoError(t, DeleteFromGridAndDisk(
		[]hierarchy.FsObject{folder}, nil, twoWayPolicy(base), false, nil, cb))

	assert.False(t, left.Exists("dir"))
	assert.Nil(t, findFolderPair(&base.ContainerObject, "dir"))
}
