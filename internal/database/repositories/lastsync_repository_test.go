package repositories

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wuhui20091515/FreeFileSync/internal/core/interfaces"
	"github.com/wuhui20091515/FreeFileSync/internal/database"
	"github.com/wuhui20091515/FreeFileSync/internal/providers/memory"
	"github.com/wuhui20091515/FreeFileSync/pkg/models"
)

func openTestDB(t *testing.T) *database.Manager {
	t.Helper()
	db := database.NewManager(&database.Options{
		Path:     filepath.Join(t.TempDir(), "test.db"),
		FileMode: 0600,
	})
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLastSyncRoundTrip(t *testing.T) {
	repo := NewLastSyncRepository(openTestDB(t))
	left := interfaces.AbstractPath{Device: memory.New("left"), Path: "root"}
	right := interfaces.AbstractPath{Device: memory.New("right"), Path: "root"}

	state := models.NewInSyncFolder(models.FolderStatusNormal)
	state.Files["a.txt"] = &models.InSyncFile{
		Left:       models.DescrFile{ModTime: 100, FilePrint: 7},
		Right:      models.DescrFile{ModTime: 102, FilePrint: 9},
		Size:       42,
		CmpVariant: models.CompareTimeSize,
	}
	sub := models.NewInSyncFolder(models.FolderStatusStrawMan)
	sub.Symlinks["link"] = &models.InSyncSymlink{
		Left:       models.DescrLink{ModTime: 5},
		Right:      models.DescrLink{ModTime: 5},
		CmpVariant: models.CompareTimeSize,
	}
	state.Folders["sub"] = sub

	require.NoError(t, repo.SaveLastSyncState(left, right, state))

	loaded, err := repo.LoadLastSyncState(left, right, nil)
	require.NoError(t, err)
	require.NotNil(t, loaded)

	require.Contains(t, loaded.Files, "a.txt")
	assert.Equal(t, uint64(42), loaded.Files["a.txt"].Size)
	assert.Equal(t, uint64(7), loaded.Files["a.txt"].Left.FilePrint)
	require.Contains(t, loaded.Folders, "sub")
	assert.Equal(t, models.FolderStatusStrawMan, loaded.Folders["sub"].Status)
	assert.Contains(t, loaded.Folders["sub"].Symlinks, "link")
}

func TestLoadMissingStateReturnsNil(t *testing.T) {
	repo := NewLastSyncRepository(openTestDB(t))
	left := interfaces.AbstractPath{Device: memory.New("left"), Path: "never-synced"}
	right := interfaces.AbstractPath{Device: memory.New("right"), Path: "never-synced"}

	loaded, err := repo.LoadLastSyncState(left, right, nil)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestDeleteLastSyncState(t *testing.T) {
	repo := NewLastSyncRepository(openTestDB(t))
	left := interfaces.AbstractPath{Device: memory.New("left"), Path: "r"}
	right := interfaces.AbstractPath{Device: memory.New("right"), Path: "r"}

	require.NoError(t, repo.SaveLastSyncState(left, right, models.NewInSyncFolder(models.FolderStatusNormal)))
	require.NoError(t, repo.DeleteLastSyncState(left, right))

	loaded, err := repo.LoadLastSyncState(left, right, nil)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestDistinctPairsAreIsolated(t *testing.T) {
	repo := NewLastSyncRepository(openTestDB(t))
	devL, devR := memory.New("left"), memory.New("right")
	pairA := [2]interfaces.AbstractPath{{Device: devL, Path: "a"}, {Device: devR, Path: "a"}}
	pairB := [2]interfaces.AbstractPath{{Device: devL, Path: "b"}, {Device: devR, Path: "b"}}

	stateA := models.NewInSyncFolder(models.FolderStatusNormal)
	stateA.Files["only-in-a.txt"] = &models.InSyncFile{Size: 1, CmpVariant: models.CompareSize}
	require.NoError(t, repo.SaveLastSyncState(pairA[0], pairA[1], stateA))

	loaded, err := repo.LoadLastSyncState(pairB[0], pairB[1], nil)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}
