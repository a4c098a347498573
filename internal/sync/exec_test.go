package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wuhui20091515/FreeFileSync/internal/providers/memory"
	"github.com/wuhui20091515/FreeFileSync/pkg/models"
)

func TestExecuteMirror(t *testing.T) {
	left := memory.New("left")
	left.MustWriteFile("a.txt", []byte("abc"), 100)
	left.MustWriteFile("sub/b.txt", []byte("bb"), 150)
	right := memory.New("right")
	right.MustWriteFile("a.txt", []byte("stale!"), 50)
	right.MustWriteFile("extra.txt", []byte("zz"), 60)

	base := scanVolumes(t, left, right)
	policies := []DirectionPolicy{{Base: base, Config: models.DirectionConfig{
		Variant: models.VariantMirror, Custom: models.MirrorSet()}}}
	require.NoError(t, RedetermineSyncDirections(policies, nil, newRecordingCallback()))

	result, err := ExecuteDirections(base, ExecuteConfig{}, newRecordingCallback())
	require.NoError(t, err)

	assert.Equal(t, []byte("abc"), right.ReadFile("a.txt"))
	assert.Equal(t, []byte("bb"), right.ReadFile("sub/b.txt"))
	assert.False(t, right.Exists("extra.txt"))
	assert.True(t, left.Exists("a.txt"))
	assert.Equal(t, 4, result.ItemsProcessed) // a.txt, sub, sub/b.txt, extra.txt
	assert.Zero(t, result.Conflicts)
}

func TestExecuteTwoWayPropagatesBothWays(t *testing.T) {
	left := memory.New("left")
	left.MustWriteFile("newer-left.txt", []byte("L2"), 200)
	right := memory.New("right")
	right.MustWriteFile("newer-left.txt", []byte("L1"), 100)
	right.MustWriteFile("only-right.txt", []byte("R"), 100)

	base := scanVolumes(t, left, right)
	require.NoError(t, RedetermineSyncDirections(twoWayPolicy(base), nil, newRecordingCallback()))

	_, err := ExecuteDirections(base, ExecuteConfig{}, newRecordingCallback())
	require.NoError(t, err)

	// first run without a database: newer wins, one-sided items are copied
	assert.Equal(t, []byte("L2"), right.ReadFile("newer-left.txt"))
	assert.Equal(t, []byte("R"), left.ReadFile("only-right.txt"))
}

func TestExecuteMoveFastPath(t *testing.T) {
	left := memory.New("left")
	left.MustWriteFile("moved/c.txt", []byte("Z"), 50)
	left.SetFilePrint("moved/c.txt", 42)
	right := memory.New("right")
	right.MustWriteFile("sub/c.txt", []byte("Z"), 50)
	right.SetFilePrint("sub/c.txt", 42)

	base := scanVolumes(t, left, right)

	db := models.NewInSyncFolder(models.FolderStatusNormal)
	dbSub := models.NewInSyncFolder(models.FolderStatusNormal)
	dbSub.Files["c.txt"] = &models.InSyncFile{
		Left:       models.DescrFile{ModTime: 50, FilePrint: 42},
		Right:      models.DescrFile{ModTime: 50, FilePrint: 42},
		Size:       1,
		CmpVariant: models.CompareTimeSize,
	}
	db.Folders["sub"] = dbSub

	require.NoError(t, RedetermineSyncDirections(twoWayPolicy(base), &stubLoader{root: db}, newRecordingCallback()))

	newLoc := findFilePair(&base.ContainerObject, "moved/c.txt")
	require.NotNil(t, newLoc)
	require.NotEqual(t, "", string(newLoc.MoveRef()))

	_, err := ExecuteDirections(base, ExecuteConfig{}, newRecordingCallback())
	require.NoError(t, err)

	// renamed on the right instead of delete plus copy
	assert.Equal(t, []byte("Z"), right.ReadFile("moved/c.txt"))
	assert.False(t, right.Exists("sub/c.txt"))
	assert.False(t, right.Exists("sub"))
	assert.Empty(t, right.Recycled())
}

func TestExecuteSkipsConflictsAndInactive(t *testing.T) {
	left := memory.New("left")
	left.MustWriteFile("conflict.txt", []byte("aaa"), 100)
	left.MustWriteFile("filtered.txt", []byte("f"), 100)
	right := memory.New("right")
	right.MustWriteFile("conflict.txt", []byte("bbbb"), 100)

	base := scanVolumes(t, left, right)
	require.NoError(t, RedetermineSyncDirections(twoWayPolicy(base), nil, newRecordingCallback()))

	filtered := findFilePair(&base.ContainerObject, "filtered.txt")
	filtered.SetActive(false)

	result, err := ExecuteDirections(base, ExecuteConfig{}, newRecordingCallback())
	require.NoError(t, err)

	// same time, different size: unresolvable without a database
	assert.Equal(t, []byte("aaa"), left.ReadFile("conflict.txt"))
	assert.Equal(t, []byte("bbbb"), right.ReadFile("conflict.txt"))
	assert.Equal(t, 1, result.Conflicts)
	assert.False(t, right.Exists("filtered.txt"))
}

func TestExecuteUsesRecycleBinForOverwrites(t *testing.T) {
	left := memory.New("left")
	left.MustWriteFile("a.txt", []byte("new"), 200)
	right := memory.New("right")
	right.MustWriteFile("a.txt", []byte("old"), 100)

	base := scanVolumes(t, left, right)
	policies := []DirectionPolicy{{Base: base, Config: models.DirectionConfig{
		Variant: models.VariantMirror, Custom: models.MirrorSet()}}}
	require.NoError(t, RedetermineSyncDirections(policies, nil, newRecordingCallback()))

	_, err := ExecuteDirections(base, ExecuteConfig{UseRecycleBin: true}, newRecordingCallback())
	require.NoError(t, err)

	assert.Equal(t, []byte("new"), right.ReadFile("a.txt"))
	assert.Equal(t, []string{"a.txt"}, right.Recycled())
}

func TestBuildInSyncStateAfterExecute(t *testing.T) {
	left := memory.New("left")
	left.MustWriteFile("a.txt", []byte("abc"), 100)
	left.MustWriteFile("sub/b.txt", []byte("bb"), 150)
	right := memory.New("right")

	base := scanVolumes(t, left, right)
	policies := []DirectionPolicy{{Base: base, Config: models.DirectionConfig{
		Variant: models.VariantMirror, Custom: models.MirrorSet()}}}
	require.NoError(t, RedetermineSyncDirections(policies, nil, newRecordingCallback()))
	_, err := ExecuteDirections(base, ExecuteConfig{}, newRecordingCallback())
	require.NoError(t, err)

	state := BuildInSyncState(base)

	require.Contains(t, state.Files, "a.txt")
	assert.Equal(t, uint64(3), state.Files["a.txt"].Size)
	assert.Equal(t, int64(100), state.Files["a.txt"].Left.ModTime)
	assert.Equal(t, int64(100), state.Files["a.txt"].Right.ModTime)
	assert.Equal(t, models.CompareTimeSize, state.Files["a.txt"].CmpVariant)

	require.Contains(t, state.Folders, "sub")
	assert.Equal(t, models.FolderStatusNormal, state.Folders["sub"].Status)
	assert.Contains(t, state.Folders["sub"].Files, "b.txt")
}

func TestBuildInSyncStateSkipsUnresolvedItems(t *testing.T) {
	left := memory.New("left")
	left.MustWriteFile("conflict.txt", []byte("aaa"), 100)
	right := memory.New("right")
	right.MustWriteFile("conflict.txt", []byte("bbbb"), 100)

	base := scanVolumes(t, left, right)
	require.NoError(t, RedetermineSyncDirections(twoWayPolicy(base), nil, newRecordingCallback()))

	state := BuildInSyncState(base)
	assert.NotContains(t, state.Files, "conflict.txt")
}
