package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wuhui20091515/FreeFileSync/internal/core/interfaces"
	"github.com/wuhui20091515/FreeFileSync/internal/providers/memory"
	"github.com/wuhui20091515/FreeFileSync/pkg/models"
)

func testBase() *BaseFolderPair {
	left := interfaces.AbstractPath{Device: memory.New("left"), Path: "root-l"}
	right := interfaces.AbstractPath{Device: memory.New("right"), Path: "root-r"}
	return NewBaseFolderPair(left, right, models.CompareTimeSize, 2, nil)
}

func TestRelPathWalksParents(t *testing.T) {
	base := testBase()
	sub := base.AddFolder("sub", "sub", &models.FolderAttributes{}, &models.FolderAttributes{})
	file := sub.AddFile("a.txt", "a.txt",
		&models.FileAttributes{ModTime: 1, Size: 2}, &models.FileAttributes{ModTime: 1, Size: 2})

	assert.Equal(t, interfaces.Path("sub/a.txt"), file.RelPath(models.SideLeft))
	assert.Equal(t, "root-l/sub/a.txt", string(file.AbstractPath(models.SideLeft).Path))
	assert.Equal(t, "root-r/sub/a.txt", string(file.AbstractPath(models.SideRight).Path))
}

func TestSideEmptyNameFallsBack(t *testing.T) {
	base := testBase()
	file := base.AddFile("", "only-right.txt", nil, &models.FileAttributes{ModTime: 1, Size: 2})

	assert.True(t, file.IsEmpty(models.SideLeft))
	assert.False(t, file.IsEmpty(models.SideRight))
	assert.Equal(t, "only-right.txt", file.Name(models.SideLeft))
	assert.Equal(t, "only-right.txt", file.NameAny())
}

func TestPerSideNamesDifferInCase(t *testing.T) {
	base := testBase()
	file := base.AddFile("Readme.MD", "readme.md",
		&models.FileAttributes{ModTime: 1, Size: 2}, &models.FileAttributes{ModTime: 1, Size: 2})

	assert.Equal(t, "Readme.MD", file.Name(models.SideLeft))
	assert.Equal(t, "readme.md", file.Name(models.SideRight))
	assert.Equal(t, interfaces.Path("readme.md"), file.RelPath(models.SideRight))
}

func TestFlipSwapsEverything(t *testing.T) {
	base := testBase()
	file := base.AddFile("a.txt", "a.txt", &models.FileAttributes{ModTime: 5, Size: 1}, nil)
	file.SetCategory(models.CatLeftOnly, "")
	file.SetSyncDir(models.DirRight)

	base.Flip()

	assert.Equal(t, "root-r", string(base.AbstractPath(models.SideLeft).Path))
	assert.True(t, file.IsEmpty(models.SideLeft))
	assert.Equal(t, models.CatRightOnly, file.Category())
	assert.Equal(t, models.DirLeft, file.SyncDir())
	assert.Equal(t, int64(5), file.ModTime(models.SideRight))
}

func TestMoveRefResolution(t *testing.T) {
	base := testBase()
	a := base.AddFile("a", "", &models.FileAttributes{ModTime: 1, Size: 1}, nil)
	b := base.AddFile("", "b", nil, &models.FileAttributes{ModTime: 1, Size: 1})

	a.SetMoveRef(b.ID())
	b.SetMoveRef(a.ID())

	assert.Equal(t, b, base.FileByID(a.MoveRef()))
	assert.Equal(t, a, base.FileByID(b.MoveRef()))
	assert.Nil(t, base.FileByID(NilNodeID))
}

func TestRemoveSideAndPrune(t *testing.T) {
	base := testBase()
	file := base.AddFile("a.txt", "a.txt",
		&models.FileAttributes{ModTime: 1, Size: 1}, &models.FileAttributes{ModTime: 1, Size: 1})
	file.SetCategory(models.CatEqual, "")

	file.RemoveSide(models.SideLeft)
	assert.Equal(t, models.CatRightOnly, file.Category())
	require.Len(t, base.Files(), 1)

	file.RemoveSide(models.SideRight)
	base.RemoveEmpty()
	assert.Empty(t, base.Files())
	assert.Nil(t, base.FileByID(file.ID()))
}

func TestFolderRemoveSideIsRecursive(t *testing.T) {
	base := testBase()
	folder := base.AddFolder("dir", "dir", &models.FolderAttributes{}, &models.FolderAttributes{})
	inner := folder.AddFile("f", "f",
		&models.FileAttributes{ModTime: 1, Size: 1}, &models.FileAttributes{ModTime: 1, Size: 1})

	folder.RemoveSide(models.SideRight)

	assert.True(t, folder.IsEmpty(models.SideRight))
	assert.True(t, inner.IsEmpty(models.SideRight))
	assert.Equal(t, models.CatLeftOnly, inner.Category())
}

func TestSortChildren(t *testing.T) {
	base := testBase()
	base.AddFile("b", "b", &models.FileAttributes{}, &models.FileAttributes{})
	base.AddFile("a", "a", &models.FileAttributes{}, &models.FileAttributes{})
	base.AddFile("B", "B", &models.FileAttributes{}, &models.FileAttributes{})
	base.SortChildren()

	var names []string
	for _, f := range base.Files() {
		names = append(names, f.NameAny())
	}
	// case-sensitive byte order
	assert.Equal(t, []string{"B", "a", "b"}, names)
}

func TestAllCategoryEqual(t *testing.T) {
	base := testBase()
	folder := base.AddFolder("d", "d", &models.FolderAttributes{}, &models.FolderAttributes{})
	folder.SetCategory(models.CatEqual, "")
	file := folder.AddFile("f", "f", &models.FileAttributes{}, &models.FileAttributes{})
	file.SetCategory(models.CatEqual, "")
	assert.True(t, base.AllCategoryEqual())

	file.SetCategory(models.CatLeftNewer, "")
	assert.False(t, base.AllCategoryEqual())
}

func TestVisitContainerOrder(t *testing.T) {
	base := testBase()
	folder := base.AddFolder("d", "d", &models.FolderAttributes{}, &models.FolderAttributes{})
	folder.AddFile("inner", "inner", &models.FileAttributes{}, &models.FileAttributes{})
	base.AddFile("top", "top", &models.FileAttributes{}, &models.FileAttributes{})

	var visited []string
	VisitContainer(&base.ContainerObject,
		func(f *FolderPair) { visited = append(visited, "dir:"+f.NameAny()) },
		func(f *FilePair) { visited = append(visited, "file:"+f.NameAny()) },
		nil)

	// descendants come before their folder
	assert.Equal(t, []string{"file:top", "file:inner", "dir:d"}, visited)
}
