package compare

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wuhui20091515/FreeFileSync/internal/core/interfaces"
	ffserrors "github.com/wuhui20091515/FreeFileSync/pkg/errors"
	"github.com/wuhui20091515/FreeFileSync/internal/hierarchy"
	"github.com/wuhui20091515/FreeFileSync/pkg/models"
)

// ScanConfig bundles the comparison settings of one base pair
type ScanConfig struct {
	Variant                models.CompareVariant
	FileTimeToleranceSec   int
	IgnoreTimeShiftMinutes []uint
	ParallelOps            int
}

// scannedDir is the raw single-side listing collected during traversal
type scannedDir struct {
	files map[string]models.FileAttributes
	links map[string]models.LinkAttributes
	dirs  map[string]*scannedDir
	attrs map[string]models.FolderAttributes // per child dir name
}

func newScannedDir() *scannedDir {
	return &scannedDir{
		files: make(map[string]models.FileAttributes),
		links: make(map[string]models.LinkAttributes),
		dirs:  make(map[string]*scannedDir),
		attrs: make(map[string]models.FolderAttributes),
	}
}

// dirCollector adapts the device traverser to scannedDir; one traversal may
// run folder listings in parallel, so all mutation is serialized
type dirCollector struct {
	mu  *sync.Mutex
	dir *scannedDir
	cb  interfaces.ProgressCallback
}

func (c *dirCollector) OnFile(name string, attr models.FileAttributes) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dir.files[name] = attr
	return nil
}

func (c *dirCollector) OnSymlink(name string, attr models.LinkAttributes) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dir.links[name] = attr
	return nil
}

func (c *dirCollector) OnFolder(name string, attr models.FolderAttributes) (interfaces.TraverserCallback, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sub := newScannedDir()
	c.dir.dirs[name] = sub
	c.dir.attrs[name] = attr
	return &dirCollector{mu: c.mu, dir: sub, cb: c.cb}, nil
}

func (c *dirCollector) OnDirError(err error) (interfaces.ErrorHandling, error) {
	return reportTraversalError(c.cb, err)
}

func (c *dirCollector) OnItemError(err error, itemName string) (interfaces.ErrorHandling, error) {
	return reportTraversalError(c.cb, err)
}

func reportTraversalError(cb interfaces.ProgressCallback, err error) (interfaces.ErrorHandling, error) {
	if cb == nil {
		return interfaces.ErrorIgnore, nil
	}
	switch cb.ReportError(err.Error(), 0) {
	case interfaces.ResponseRetry:
		return interfaces.ErrorRetry, nil
	case interfaces.ResponseIgnore:
		return interfaces.ErrorIgnore, nil
	default:
		return interfaces.ErrorIgnore, ffserrors.ErrCancelled
	}
}

// scanner merges the two single-side listings into one categorized pair tree
type scanner struct {
	cfg ScanConfig
	cb  interfaces.ProgressCallback
}

// ScanBasePair scans both roots and builds the categorized pair tree. The two
// sides are traversed concurrently, one traversal per device.
func ScanBasePair(left, right interfaces.AbstractPath, cfg ScanConfig,
	cb interfaces.ProgressCallback) (*hierarchy.BaseFolderPair, error) {
	if cfg.Variant == "" {
		cfg.Variant = models.CompareTimeSize
	}
	if cfg.FileTimeToleranceSec == 0 {
		cfg.FileTimeToleranceSec = DefaultFileTimeToleranceSec
	}
	if cfg.ParallelOps <= 0 {
		cfg.ParallelOps = 1
	}

	if cb != nil {
		if err := cb.InitNewPhase(0, 0, interfaces.PhaseScanning); err != nil {
			return nil, err
		}
		if err := cb.UpdateStatus(fmt.Sprintf("Comparing %s with %s...",
			left.DisplayPath(), right.DisplayPath())); err != nil {
			return nil, err
		}
	}

	var leftRoot, rightRoot *scannedDir
	var g errgroup.Group
	g.Go(func() (err error) {
		leftRoot, err = scanSide(left, cfg.ParallelOps, cb)
		return err
	})
	g.Go(func() (err error) {
		rightRoot, err = scanSide(right, cfg.ParallelOps, cb)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	base := hierarchy.NewBaseFolderPair(left, right, cfg.Variant,
		cfg.FileTimeToleranceSec, cfg.IgnoreTimeShiftMinutes)

	s := &scanner{cfg: cfg, cb: cb}
	if err := s.merge(&base.ContainerObject, leftRoot, rightRoot, left, right); err != nil {
		return nil, err
	}
	base.SortChildren()
	return base, nil
}

func scanSide(root interfaces.AbstractPath, parallelOps int, cb interfaces.ProgressCallback) (*scannedDir, error) {
	dir := newScannedDir()
	collector := &dirCollector{mu: &sync.Mutex{}, dir: dir, cb: cb}
	workload := []interfaces.TraverserWorkloadItem{{Path: root.Path, Callback: collector}}
	if err := root.Device.TraverseFolder(workload, parallelOps); err != nil {
		return nil, err
	}
	return dir, nil
}

// matchNames pairs the names of both sides: exact, case-sensitive match
// first, Unicode-normalized equality second. Returns left->right name
// pairings plus the unmatched right names.
func matchNames(leftNames, rightNames []string) (pairs map[string]string, rightOnly []string) {
	pairs = make(map[string]string, len(leftNames))
	exact := make(map[string]bool, len(rightNames))
	normalized := make(map[string]string, len(rightNames))
	for _, name := range rightNames {
		exact[name] = true
		normalized[models.NormalizeName(name)] = name
	}
	consumed := make(map[string]bool, len(rightNames))
	for _, name := range leftNames {
		if exact[name] && !consumed[name] {
			pairs[name] = name
			consumed[name] = true
			continue
		}
		if match, ok := normalized[models.NormalizeName(name)]; ok && !consumed[match] {
			pairs[name] = match
			consumed[match] = true
		}
	}
	for _, name := range rightNames {
		if !consumed[name] {
			rightOnly = append(rightOnly, name)
		}
	}
	sort.Strings(rightOnly)
	return pairs, rightOnly
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *scanner) merge(container *hierarchy.ContainerObject, leftDir, rightDir *scannedDir,
	leftPath, rightPath interfaces.AbstractPath) error {
	if err := s.mergeFiles(container, leftDir, rightDir, leftPath, rightPath); err != nil {
		return err
	}
	if err := s.mergeSymlinks(container, leftDir, rightDir, leftPath, rightPath); err != nil {
		return err
	}
	return s.mergeFolders(container, leftDir, rightDir, leftPath, rightPath)
}

func (s *scanner) mergeFiles(container *hierarchy.ContainerObject, leftDir, rightDir *scannedDir,
	leftPath, rightPath interfaces.AbstractPath) error {
	leftNames := sortedKeys(leftDir.files)
	pairs, rightOnly := matchNames(leftNames, sortedKeys(rightDir.files))

	for _, name := range leftNames {
		leftAttr := leftDir.files[name]
		rightName, matched := pairs[name]
		var rightAttrPtr *models.FileAttributes
		if matched {
			rightAttr := rightDir.files[rightName]
			rightAttrPtr = &rightAttr
		} else {
			rightName = ""
		}
		file := container.AddFile(name, rightName, &leftAttr, rightAttrPtr)

		var contentEqual *bool
		if s.cfg.Variant == models.CompareContent && rightAttrPtr != nil {
			equal, err := s.contentEqual(leftPath.Append(name), rightPath.Append(rightName),
				leftAttr.Size, rightAttrPtr.Size)
			if err == nil {
				contentEqual = &equal
			}
		}
		cat, descr := ClassifyFile(file.Attributes(models.SideLeft), file.Attributes(models.SideRight),
			s.cfg.Variant, s.cfg.FileTimeToleranceSec, s.cfg.IgnoreTimeShiftMinutes, contentEqual)
		file.SetCategory(cat, descr)
	}
	for _, name := range rightOnly {
		rightAttr := rightDir.files[name]
		file := container.AddFile("", name, nil, &rightAttr)
		file.SetCategory(models.CatRightOnly, "")
	}
	return s.poll()
}

func (s *scanner) mergeSymlinks(container *hierarchy.ContainerObject, leftDir, rightDir *scannedDir,
	leftPath, rightPath interfaces.AbstractPath) error {
	leftNames := sortedKeys(leftDir.links)
	pairs, rightOnly := matchNames(leftNames, sortedKeys(rightDir.links))

	for _, name := range leftNames {
		leftAttr := leftDir.links[name]
		rightName, matched := pairs[name]
		var rightAttrPtr *models.LinkAttributes
		if matched {
			rightAttr := rightDir.links[rightName]
			rightAttrPtr = &rightAttr
		} else {
			rightName = ""
		}
		link := container.AddSymlink(name, rightName, &leftAttr, rightAttrPtr)

		var targetLeft, targetRight *string
		if s.cfg.Variant != models.CompareTimeSize && rightAttrPtr != nil {
			if target, err := leftPath.Device.ReadSymlink(leftPath.Path.Append(name)); err == nil {
				targetLeft = &target
			}
			if target, err := rightPath.Device.ReadSymlink(rightPath.Path.Append(rightName)); err == nil {
				targetRight = &target
			}
		}
		cat, descr := ClassifySymlink(link.Attributes(models.SideLeft), link.Attributes(models.SideRight),
			targetLeft, targetRight, s.cfg.Variant, s.cfg.FileTimeToleranceSec, s.cfg.IgnoreTimeShiftMinutes)
		link.SetCategory(cat, descr)
	}
	for _, name := range rightOnly {
		rightAttr := rightDir.links[name]
		link := container.AddSymlink("", name, nil, &rightAttr)
		link.SetCategory(models.CatRightOnly, "")
	}
	return s.poll()
}

func (s *scanner) mergeFolders(container *hierarchy.ContainerObject, leftDir, rightDir *scannedDir,
	leftPath, rightPath interfaces.AbstractPath) error {
	leftNames := sortedKeys(leftDir.dirs)
	pairs, rightOnly := matchNames(leftNames, sortedKeys(rightDir.dirs))

	for _, name := range leftNames {
		leftAttr := leftDir.attrs[name]
		rightName, matched := pairs[name]
		var rightAttrPtr *models.FolderAttributes
		var rightSub *scannedDir
		if matched {
			rightAttr := rightDir.attrs[rightName]
			rightAttrPtr = &rightAttr
			rightSub = rightDir.dirs[rightName]
		} else {
			rightName = ""
			rightSub = newScannedDir()
		}
		folder := container.AddFolder(name, rightName, &leftAttr, rightAttrPtr)
		cat, descr := ClassifyFolder(folder.Attributes(models.SideLeft), folder.Attributes(models.SideRight))
		folder.SetCategory(cat, descr)

		if err := s.merge(&folder.ContainerObject, leftDir.dirs[name], rightSub,
			leftPath.Append(name), rightPath.Append(rightName)); err != nil {
			return err
		}
	}
	for _, name := range rightOnly {
		rightAttr := rightDir.attrs[name]
		folder := container.AddFolder("", name, nil, &rightAttr)
		folder.SetCategory(models.CatRightOnly, "")
		if err := s.merge(&folder.ContainerObject, newScannedDir(), rightDir.dirs[name],
			leftPath, rightPath.Append(name)); err != nil {
			return err
		}
	}
	return nil
}

// contentEqual compares two files byte by byte
func (s *scanner) contentEqual(left, right interfaces.AbstractPath, sizeLeft, sizeRight uint64) (bool, error) {
	if sizeLeft != sizeRight {
		return false, nil
	}
	inLeft, err := left.Device.OpenInput(left.Path)
	if err != nil {
		return false, err
	}
	defer inLeft.Close()
	inRight, err := right.Device.OpenInput(right.Path)
	if err != nil {
		return false, err
	}
	defer inRight.Close()

	blockSize := inLeft.BlockSize()
	if inRight.BlockSize() > blockSize {
		blockSize = inRight.BlockSize()
	}
	bufLeft := make([]byte, blockSize)
	bufRight := make([]byte, blockSize)
	for {
		nLeft, errLeft := io.ReadFull(inLeft, bufLeft)
		nRight, errRight := io.ReadFull(inRight, bufRight)
		if nLeft != nRight || !bytes.Equal(bufLeft[:nLeft], bufRight[:nRight]) {
			return false, nil
		}
		leftDone := errLeft == io.EOF || errLeft == io.ErrUnexpectedEOF
		rightDone := errRight == io.EOF || errRight == io.ErrUnexpectedEOF
		if leftDone && rightDone {
			return true, nil
		}
		if errLeft != nil && !leftDone {
			return false, errLeft
		}
		if errRight != nil && !rightDone {
			return false, errRight
		}
		if leftDone != rightDone {
			return false, nil
		}
		if err := s.poll(); err != nil {
			return false, err
		}
	}
}

func (s *scanner) poll() error {
	if s.cb == nil {
		return nil
	}
	return s.cb.RequestUIUpdate(false)
}
