package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wuhui20091515/FreeFileSync/pkg/models"
)

func fileAttr(modTime int64, size uint64) *models.FileAttributes {
	return &models.FileAttributes{ModTime: modTime, Size: size}
}

func TestClassifyFileOneSided(t *testing.T) {
	cat, _ := ClassifyFile(fileAttr(100, 10), nil, models.CompareTimeSize, 2, nil, nil)
	assert.Equal(t, models.CatLeftOnly, cat)

	cat, _ = ClassifyFile(nil, fileAttr(100, 10), models.CompareTimeSize, 2, nil, nil)
	assert.Equal(t, models.CatRightOnly, cat)
}

func TestClassifyFileTimeSize(t *testing.T) {
	// same size, times match
	cat, _ := ClassifyFile(fileAttr(100, 10), fileAttr(101, 10), models.CompareTimeSize, 2, nil, nil)
	assert.Equal(t, models.CatEqual, cat)

	// same size, times differ
	cat, _ = ClassifyFile(fileAttr(200, 10), fileAttr(100, 10), models.CompareTimeSize, 2, nil, nil)
	assert.Equal(t, models.CatLeftNewer, cat)
	cat, _ = ClassifyFile(fileAttr(100, 10), fileAttr(200, 10), models.CompareTimeSize, 2, nil, nil)
	assert.Equal(t, models.CatRightNewer, cat)

	// same time, different size: cannot pick a side
	cat, descr := ClassifyFile(fileAttr(100, 10), fileAttr(100, 20), models.CompareTimeSize, 2, nil, nil)
	assert.Equal(t, models.CatConflict, cat)
	assert.NotEmpty(t, descr)

	// different size and different time
	cat, _ = ClassifyFile(fileAttr(200, 10), fileAttr(100, 20), models.CompareTimeSize, 2, nil, nil)
	assert.Equal(t, models.CatDifferentContent, cat)
}

func TestClassifyFileContent(t *testing.T) {
	equal := true
	differ := false

	// mod times are irrelevant under content comparison
	cat, _ := ClassifyFile(fileAttr(100, 10), fileAttr(999, 10), models.CompareContent, 2, nil, &equal)
	assert.Equal(t, models.CatEqual, cat)

	cat, _ = ClassifyFile(fileAttr(100, 10), fileAttr(100, 10), models.CompareContent, 2, nil, &differ)
	assert.Equal(t, models.CatDifferentContent, cat)

	// unreadable contents cannot be categorized
	cat, descr := ClassifyFile(fileAttr(100, 10), fileAttr(100, 10), models.CompareContent, 2, nil, nil)
	assert.Equal(t, models.CatConflict, cat)
	assert.NotEmpty(t, descr)
}

func TestClassifyFileSize(t *testing.T) {
	cat, _ := ClassifyFile(fileAttr(100, 10), fileAttr(999, 10), models.CompareSize, 2, nil, nil)
	assert.Equal(t, models.CatEqual, cat)

	cat, _ = ClassifyFile(fileAttr(100, 10), fileAttr(100, 11), models.CompareSize, 2, nil, nil)
	assert.Equal(t, models.CatDifferentContent, cat)
}

func TestClassifyFileFollowedSymlinkMetadata(t *testing.T) {
	left := &models.FileAttributes{ModTime: 100, Size: 10, IsFollowedSymlink: true}
	right := &models.FileAttributes{ModTime: 100, Size: 10}
	cat, _ := ClassifyFile(left, right, models.CompareTimeSize, 2, nil, nil)
	assert.Equal(t, models.CatDifferentMetadata, cat)
}

func linkAttr(modTime int64) *models.LinkAttributes {
	return &models.LinkAttributes{ModTime: modTime}
}

func TestClassifySymlinkTimeSize(t *testing.T) {
	cat, _ := ClassifySymlink(linkAttr(100), linkAttr(101), nil, nil, models.CompareTimeSize, 2, nil)
	assert.Equal(t, models.CatEqual, cat)

	cat, _ = ClassifySymlink(linkAttr(200), linkAttr(100), nil, nil, models.CompareTimeSize, 2, nil)
	assert.Equal(t, models.CatLeftNewer, cat)

	cat, _ = ClassifySymlink(linkAttr(100), linkAttr(200), nil, nil, models.CompareTimeSize, 2, nil)
	assert.Equal(t, models.CatRightNewer, cat)
}

func TestClassifySymlinkByTarget(t *testing.T) {
	a, b := "target/a", "target/b"

	cat, _ := ClassifySymlink(linkAttr(100), linkAttr(999), &a, &a, models.CompareContent, 2, nil)
	assert.Equal(t, models.CatEqual, cat)

	cat, _ = ClassifySymlink(linkAttr(100), linkAttr(100), &a, &b, models.CompareSize, 2, nil)
	assert.Equal(t, models.CatDifferentContent, cat)
}

func TestClassifyFolder(t *testing.T) {
	cat, _ := ClassifyFolder(&models.FolderAttributes{}, &models.FolderAttributes{})
	assert.Equal(t, models.CatEqual, cat)

	cat, _ = ClassifyFolder(&models.FolderAttributes{}, nil)
	assert.Equal(t, models.CatLeftOnly, cat)

	cat, descr := ClassifyFolder(
		&models.FolderAttributes{IsFollowedSymlink: true}, &models.FolderAttributes{})
	assert.Equal(t, models.CatDifferentMetadata, cat)
	assert.NotEmpty(t, descr)
}
