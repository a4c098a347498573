package sync

import (
	"strings"

	"github.com/wuhui20091515/FreeFileSync/internal/compare"
	"github.com/wuhui20091515/FreeFileSync/internal/core/interfaces"
	"github.com/wuhui20091515/FreeFileSync/internal/hierarchy"
	"github.com/wuhui20091515/FreeFileSync/internal/providers/memory"
	"github.com/wuhui20091515/FreeFileSync/pkg/models"
)

// recordingCallback captures progress traffic for assertions
type recordingCallback struct {
	logs          []string
	warnings      []string
	reportedErrs  []string
	statusLines   []string
	errorResponse interfaces.ErrorResponse
	items         int
	bytes         int64
}

func newRecordingCallback() *recordingCallback {
	return &recordingCallback{errorResponse: interfaces.ResponseIgnore}
}

func (c *recordingCallback) InitNewPhase(itemTotal int, byteTotal int64, phase interfaces.ProcessPhase) error {
	return nil
}
func (c *recordingCallback) ReportDelta(itemDelta int, byteDelta int64) {
	c.items += itemDelta
	c.bytes += byteDelta
}
func (c *recordingCallback) UpdateStatus(msg string) error {
	c.statusLines = append(c.statusLines, msg)
	return nil
}
func (c *recordingCallback) LogInfo(msg string) {
	c.logs = append(c.logs, msg)
}
func (c *recordingCallback) RequestUIUpdate(force bool) error { return nil }
func (c *recordingCallback) ReportWarning(msg string, warnActive *bool) {
	c.warnings = append(c.warnings, msg)
}
func (c *recordingCallback) ReportError(msg string, retryNumber int) interfaces.ErrorResponse {
	c.reportedErrs = append(c.reportedErrs, msg)
	return c.errorResponse
}

func (c *recordingCallback) loggedContaining(substr string) bool {
	for _, line := range c.logs {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

// stubLoader hands out a fixed last-sync state
type stubLoader struct {
	root *models.InSyncFolder
	err  error
}

func (l *stubLoader) LoadLastSyncState(left, right interfaces.AbstractPath,
	cb interfaces.ProgressCallback) (*models.InSyncFolder, error) {
	return l.root, l.err
}

// newTestBase builds an empty pair tree over two fresh in-memory volumes
func newTestBase(variant models.CompareVariant) *hierarchy.BaseFolderPair {
	left := interfaces.AbstractPath{Device: memory.New("left"), Path: ""}
	right := interfaces.AbstractPath{Device: memory.New("right"), Path: ""}
	return hierarchy.NewBaseFolderPair(left, right, variant, compare.DefaultFileTimeToleranceSec, nil)
}

func fa(modTime int64, size uint64, print uint64) *models.FileAttributes {
	return &models.FileAttributes{ModTime: modTime, Size: size, FilePrint: print}
}

// addClassifiedFile creates a file pair and assigns its category from the
// base's comparison settings
func addClassifiedFile(c *hierarchy.ContainerObject, base *hierarchy.BaseFolderPair,
	name string, left, right *models.FileAttributes) *hierarchy.FilePair {
	nameLeft, nameRight := name, name
	if left == nil {
		nameLeft = ""
	}
	if right == nil {
		nameRight = ""
	}
	file := c.AddFile(nameLeft, nameRight, left, right)
	cat, descr := compare.ClassifyFile(left, right, base.CompareVariant(),
		base.FileTimeTolerance(), base.IgnoreTimeShiftMinutes(), nil)
	file.SetCategory(cat, descr)
	return file
}

func addBothSidesFolder(c *hierarchy.ContainerObject, name string) *hierarchy.FolderPair {
	folder := c.AddFolder(name, name, &models.FolderAttributes{}, &models.FolderAttributes{})
	folder.SetCategory(models.CatEqual, "")
	return folder
}

func twoWayPolicy(base *hierarchy.BaseFolderPair) []DirectionPolicy {
	return []DirectionPolicy{{Base: base, Config: models.DirectionConfig{
		Variant: models.VariantTwoWay, DetectMovedFiles: true}}}
}
