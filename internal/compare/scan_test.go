package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wuhui20091515/FreeFileSync/internal/core/interfaces"
	"github.com/wuhui20091515/FreeFileSync/internal/hierarchy"
	"github.com/wuhui20091515/FreeFileSync/internal/providers/memory"
	"github.com/wuhui20091515/FreeFileSync/pkg/models"
)

func scanPair(t *testing.T, left, right *memory.Device, variant models.CompareVariant) *hierarchy.BaseFolderPair {
	t.Helper()
	base, err := ScanBasePair(
		interfaces.AbstractPath{Device: left, Path: ""},
		interfaces.AbstractPath{Device: right, Path: ""},
		ScanConfig{Variant: variant}, nil)
	require.NoError(t, err)
	return base
}

func categoriesByPath(base *hierarchy.BaseFolderPair) map[string]models.Category {
	out := make(map[string]models.Category)
	var walk func(c *hierarchy.ContainerObject)
	walk = func(c *hierarchy.ContainerObject) {
		for _, f := range c.Files() {
			out[string(f.RelPathAny())] = f.Category()
		}
		for _, l := range c.Symlinks() {
			out[string(l.RelPathAny())] = l.Category()
		}
		for _, d := range c.Folders() {
			out[string(d.RelPathAny())] = d.Category()
			walk(&d.ContainerObject)
		}
	}
	walk(&base.ContainerObject)
	return out
}

func TestScanCategorizesTimeSize(t *testing.T) {
	left := memory.New("left")
	left.MustWriteFile("equal.txt", []byte("aa"), 100)
	left.MustWriteFile("newer-left.txt", []byte("aa"), 300)
	left.MustWriteFile("only-left.txt", []byte("aa"), 100)
	left.MustWriteFile("sub/nested.txt", []byte("aa"), 100)

	right := memory.New("right")
	right.MustWriteFile("equal.txt", []byte("bb"), 100) // same size and time
	right.MustWriteFile("newer-left.txt", []byte("aa"), 100)
	right.MustWriteFile("only-right.txt", []byte("aa"), 100)
	right.MustWriteFile("sub/nested.txt", []byte("aa"), 100)

	base := scanPair(t, left, right, models.CompareTimeSize)
	cats := categoriesByPath(base)

	assert.Equal(t, models.CatEqual, cats["equal.txt"])
	assert.Equal(t, models.CatLeftNewer, cats["newer-left.txt"])
	assert.Equal(t, models.CatLeftOnly, cats["only-left.txt"])
	assert.Equal(t, models.CatRightOnly, cats["only-right.txt"])
	assert.Equal(t, models.CatEqual, cats["sub"])
	assert.Equal(t, models.CatEqual, cats["sub/nested.txt"])
}

func TestScanContentVariantComparesBytes(t *testing.T) {
	left := memory.New("left")
	left.MustWriteFile("same.txt", []byte("identical"), 100)
	left.MustWriteFile("diff.txt", []byte("aaaa"), 100)

	right := memory.New("right")
	right.MustWriteFile("same.txt", []byte("identical"), 999) // time ignored
	right.MustWriteFile("diff.txt", []byte("bbbb"), 100)

	base := scanPair(t, left, right, models.CompareContent)
	cats := categoriesByPath(base)

	assert.Equal(t, models.CatEqual, cats["same.txt"])
	assert.Equal(t, models.CatDifferentContent, cats["diff.txt"])
}

func TestScanSymlinks(t *testing.T) {
	left := memory.New("left")
	left.MustSymlink("link", "target-a", 100)
	right := memory.New("right")
	right.MustSymlink("link", "target-b", 100)

	base := scanPair(t, left, right, models.CompareTimeSize)
	cats := categoriesByPath(base)
	assert.Equal(t, models.CatEqual, cats["link"]) // same mod time

	base = scanPair(t, left, right, models.CompareContent)
	cats = categoriesByPath(base)
	assert.Equal(t, models.CatDifferentContent, cats["link"]) // targets differ
}

func TestScanPicksUpFilePrints(t *testing.T) {
	left := memory.New("left")
	left.MustWriteFile("f.txt", []byte("x"), 100)
	left.SetFilePrint("f.txt", 77)
	right := memory.New("right")

	base := scanPair(t, left, right, models.CompareTimeSize)
	var file *hierarchy.FilePair
	for _, f := range base.Files() {
		file = f
	}
	require.NotNil(t, file)
	assert.Equal(t, uint64(77), file.FilePrint(models.SideLeft))
}

func TestScanSiblingOrderIsSorted(t *testing.T) {
	left := memory.New("left")
	left.MustWriteFile("zebra.txt", []byte("x"), 100)
	left.MustWriteFile("alpha.txt", []byte("x"), 100)
	left.MustWriteFile("Beta.txt", []byte("x"), 100)
	right := memory.New("right")

	base := scanPair(t, left, right, models.CompareTimeSize)
	var names []string
	for _, f := range base.Files() {
		names = append(names, f.NameAny())
	}
	assert.Equal(t, []string{"Beta.txt", "alpha.txt", "zebra.txt"}, names)
}
