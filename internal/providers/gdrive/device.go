// Package gdrive implements the Device abstraction on top of the Google
// Drive API. Paths resolve by walking name components through folder
// listings; fingerprints derive from the stable Drive file id.
package gdrive

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"github.com/wuhui20091515/FreeFileSync/internal/auth/google"
	"github.com/wuhui20091515/FreeFileSync/internal/core/interfaces"
	ffserrors "github.com/wuhui20091515/FreeFileSync/pkg/errors"
	"github.com/wuhui20091515/FreeFileSync/pkg/logger"
	"github.com/wuhui20091515/FreeFileSync/pkg/models"
)

const (
	folderMimeType = "application/vnd.google-apps.folder"
	blockSize      = 256 * 1024
	// accessTimeout is the device's declared timeout for existence checks
	accessTimeout = 20 * time.Second

	listFields = googleapi.Field("nextPageToken, files(id, name, mimeType, size, modifiedTime)")
)

// Config holds the Google Drive device configuration
type Config struct {
	ClientID     string
	ClientSecret string
	TokenFile    string
	// Account labels the device for equivalence checks and display
	Account string
}

// Device is a Google Drive volume
type Device struct {
	service *drive.Service
	account string
	logger  *zap.Logger

	mu      sync.Mutex
	idCache map[interfaces.Path]string
}

// New connects to Google Drive and returns the device
func New(ctx context.Context, cfg *Config) (*Device, error) {
	auth, err := google.NewGoogleAuth(&google.OAuthConfig{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	}, cfg.TokenFile)
	if err != nil {
		return nil, err
	}
	service, err := auth.GetDriveService(ctx)
	if err != nil {
		return nil, err
	}
	return &Device{
		service: service,
		account: cfg.Account,
		logger:  logger.Get().With(zap.String("device", "gdrive")),
		idCache: map[interfaces.Path]string{"": "root"},
	}, nil
}

// Kind implements interfaces.Device
func (d *Device) Kind() string { return "gdrive" }

// EqualTo implements interfaces.Device: devices are equivalent when they
// address the same account
func (d *Device) EqualTo(other interfaces.Device) bool {
	o, ok := other.(*Device)
	return ok && o.account == d.account
}

// DisplayPath implements interfaces.Device
func (d *Device) DisplayPath(p interfaces.Path) string {
	return "gdrive:/" + string(p)
}

// PathPhrase implements interfaces.Device
func (d *Device) PathPhrase(p interfaces.Path) string {
	return "gdrive:" + string(p)
}

// Timeout implements interfaces.Device
func (d *Device) Timeout() time.Duration { return accessTimeout }

// filePrintOf hashes the stable Drive file id into a numeric fingerprint
func filePrintOf(fileID string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(fileID))
	return h.Sum64()
}

func wrapAPIError(op, path string, err error) error {
	return ffserrors.NewFileError(fmt.Sprintf("Cannot %s %s", op, path), err.Error(), err)
}

func escapeQuery(name string) string {
	return strings.ReplaceAll(strings.ReplaceAll(name, `\`, `\\`), `'`, `\'`)
}

func (d *Device) notFound(p interfaces.Path) error {
	return ffserrors.NewFileError(fmt.Sprintf("Item %s not found", d.DisplayPath(p)), "404", nil)
}

func (d *Device) cacheGet(p interfaces.Path) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, ok := d.idCache[p]
	return id, ok
}

func (d *Device) cachePut(p interfaces.Path, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.idCache[p] = id
}

func (d *Device) cacheDrop(p interfaces.Path) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for cached := range d.idCache {
		if cached == p || p.IsAncestorOf(cached) {
			delete(d.idCache, cached)
		}
	}
}

// childByName finds a direct child by exact name; nil when missing
func (d *Device) childByName(parentID, name string) (*drive.File, error) {
	query := fmt.Sprintf("'%s' in parents and name = '%s' and trashed = false",
		escapeQuery(parentID), escapeQuery(name))
	list, err := d.service.Files.List().Q(query).Fields(listFields).PageSize(10).Do()
	if err != nil {
		return nil, err
	}
	for _, f := range list.Files {
		if f.Name == name { // exact, case-sensitive
			return f, nil
		}
	}
	return nil, nil
}

// resolve maps a path onto its Drive file id by walking name components
func (d *Device) resolve(p interfaces.Path) (string, error) {
	if id, ok := d.cacheGet(p); ok {
		return id, nil
	}
	parentID := "root"
	cur := interfaces.Path("")
	for _, comp := range p.Components() {
		cur = cur.Append(comp)
		if id, ok := d.cacheGet(cur); ok {
			parentID = id
			continue
		}
		child, err := d.childByName(parentID, comp)
		if err != nil {
			return "", wrapAPIError("access", d.DisplayPath(cur), err)
		}
		if child == nil {
			return "", d.notFound(cur)
		}
		d.cachePut(cur, child.Id)
		parentID = child.Id
	}
	return parentID, nil
}

func (d *Device) metadata(p interfaces.Path) (*drive.File, error) {
	id, err := d.resolve(p)
	if err != nil {
		return nil, err
	}
	f, err := d.service.Files.Get(id).Fields("id, name, mimeType, size, modifiedTime").Do()
	if err != nil {
		return nil, wrapAPIError("access", d.DisplayPath(p), err)
	}
	return f, nil
}

func itemTypeOf(f *drive.File) interfaces.ItemType {
	if f.MimeType == folderMimeType {
		return interfaces.ItemFolder
	}
	return interfaces.ItemFile
}

// GetItemType implements interfaces.Device
func (d *Device) GetItemType(p interfaces.Path) (interfaces.ItemType, error) {
	f, err := d.metadata(p)
	if err != nil {
		return 0, err
	}
	return itemTypeOf(f), nil
}

// ItemStillExists implements interfaces.Device: resolve already walks the
// ancestor chain with exact name search, so a clean miss is authoritative
func (d *Device) ItemStillExists(p interfaces.Path) (interfaces.ItemType, bool, error) {
	d.cacheDrop(p)
	f, err := d.metadata(p)
	if err != nil {
		if gerr, ok := err.(*ffserrors.FileError); ok && gerr.Err == nil {
			return 0, false, nil // clean "not found" from resolve
		}
		return 0, false, err
	}
	return itemTypeOf(f), true, nil
}

// ListFolder implements interfaces.Device
func (d *Device) ListFolder(p interfaces.Path) ([]interfaces.DirEntry, error) {
	files, err := d.listChildren(p)
	if err != nil {
		return nil, err
	}
	out := make([]interfaces.DirEntry, 0, len(files))
	for _, f := range files {
		out = append(out, interfaces.DirEntry{Name: f.Name, Type: itemTypeOf(f)})
	}
	return out, nil
}

func (d *Device) listChildren(p interfaces.Path) ([]*drive.File, error) {
	id, err := d.resolve(p)
	if err != nil {
		return nil, err
	}
	var files []*drive.File
	pageToken := ""
	for {
		call := d.service.Files.List().
			Q(fmt.Sprintf("'%s' in parents and trashed = false", escapeQuery(id))).
			Fields(listFields).PageSize(1000)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		list, err := call.Do()
		if err != nil {
			return nil, wrapAPIError("enumerate", d.DisplayPath(p), err)
		}
		files = append(files, list.Files...)
		if list.NextPageToken == "" {
			return files, nil
		}
		pageToken = list.NextPageToken
	}
}

// CreateFolderPlain implements interfaces.Device
func (d *Device) CreateFolderPlain(p interfaces.Path) error {
	parent, ok := p.Parent()
	if !ok {
		return ffserrors.NewTargetExisting("Folder already exists", "root")
	}
	parentID, err := d.resolve(parent)
	if err != nil {
		return err
	}
	existing, err := d.childByName(parentID, p.Name())
	if err != nil {
		return wrapAPIError("access", d.DisplayPath(p), err)
	}
	if existing != nil {
		return ffserrors.NewTargetExisting(fmt.Sprintf("Item %s already exists", d.DisplayPath(p)), "duplicate name")
	}
	created, err := d.service.Files.Create(&drive.File{
		Name:     p.Name(),
		MimeType: folderMimeType,
		Parents:  []string{parentID},
	}).Fields("id").Do()
	if err != nil {
		return wrapAPIError("create folder", d.DisplayPath(p), err)
	}
	d.cachePut(p, created.Id)
	return nil
}

func (d *Device) removePlain(p interfaces.Path, want interfaces.ItemType) error {
	f, err := d.metadata(p)
	if err != nil {
		return err
	}
	if itemTypeOf(f) != want {
		return ffserrors.NewFileError(
			fmt.Sprintf("Item %s is a %s, expected %s", d.DisplayPath(p), itemTypeOf(f), want), "type mismatch", nil)
	}
	if err := d.service.Files.Delete(f.Id).Do(); err != nil {
		return wrapAPIError("delete", d.DisplayPath(p), err)
	}
	d.cacheDrop(p)
	return nil
}

// RemoveFilePlain implements interfaces.Device
func (d *Device) RemoveFilePlain(p interfaces.Path) error {
	return d.removePlain(p, interfaces.ItemFile)
}

// RemoveSymlinkPlain implements interfaces.Device: Drive has no symlinks
func (d *Device) RemoveSymlinkPlain(p interfaces.Path) error {
	return ffserrors.NewNotSupported("Google Drive does not support symbolic links")
}

// RemoveFolderPlain implements interfaces.Device
func (d *Device) RemoveFolderPlain(p interfaces.Path) error {
	return d.removePlain(p, interfaces.ItemFolder)
}

// MoveAndRename implements interfaces.Device
func (d *Device) MoveAndRename(from, to interfaces.Path, replaceExisting bool) error {
	srcID, err := d.resolve(from)
	if err != nil {
		return err
	}
	fromParent, _ := from.Parent()
	toParent, ok := to.Parent()
	if !ok {
		return ffserrors.NewFileError("Cannot replace device root", d.DisplayPath(to), nil)
	}
	toParentID, err := d.resolve(toParent)
	if err != nil {
		return err
	}

	existing, err := d.childByName(toParentID, to.Name())
	if err != nil {
		return wrapAPIError("access", d.DisplayPath(to), err)
	}
	if existing != nil && existing.Id != srcID {
		if !replaceExisting {
			return ffserrors.NewTargetExisting(fmt.Sprintf("Item %s already exists", d.DisplayPath(to)), "duplicate name")
		}
		if err := d.service.Files.Delete(existing.Id).Do(); err != nil {
			return wrapAPIError("delete", d.DisplayPath(to), err)
		}
	}

	call := d.service.Files.Update(srcID, &drive.File{Name: to.Name()}).AddParents(toParentID)
	if fromParentID, err := d.resolve(fromParent); err == nil && fromParentID != toParentID {
		call = call.RemoveParents(fromParentID)
	}
	if _, err := call.Do(); err != nil {
		return wrapAPIError("move", d.DisplayPath(from), err)
	}
	d.cacheDrop(from)
	d.cacheDrop(to)
	return nil
}

type driveInputStream struct{ body io.ReadCloser }

func (s *driveInputStream) Read(buf []byte) (int, error) { return s.body.Read(buf) }
func (s *driveInputStream) BlockSize() int               { return blockSize }
func (s *driveInputStream) Close() error                 { return s.body.Close() }

// OpenInput implements interfaces.Device
func (d *Device) OpenInput(p interfaces.Path) (interfaces.InputStream, error) {
	id, err := d.resolve(p)
	if err != nil {
		return nil, err
	}
	resp, err := d.service.Files.Get(id).Download()
	if err != nil {
		return nil, wrapAPIError("read", d.DisplayPath(p), err)
	}
	return &driveInputStream{body: resp.Body}, nil
}

type driveOutputStream struct {
	device *Device
	path   interfaces.Path
	pw     *io.PipeWriter
	done   chan struct{}
	result *drive.File
	err    error
}

func (s *driveOutputStream) Write(buf []byte) (int, error) { return s.pw.Write(buf) }

func (s *driveOutputStream) Finalize() (*interfaces.FinalizeResult, error) {
	s.pw.Close()
	<-s.done
	if s.err != nil {
		return nil, wrapAPIError("write", s.device.DisplayPath(s.path), s.err)
	}
	s.device.cachePut(s.path, s.result.Id)
	// modifiedTime travels with the upload; no separate stamping step
	return &interfaces.FinalizeResult{TargetPrint: filePrintOf(s.result.Id)}, nil
}

func (s *driveOutputStream) Cancel() {
	s.pw.CloseWithError(ffserrors.ErrCancelled)
	<-s.done
}

// OpenOutput implements interfaces.Device: the upload streams through a pipe
// and completes on Finalize
func (d *Device) OpenOutput(p interfaces.Path, sizeHint *uint64, modTime *int64) (interfaces.OutputStream, error) {
	parent, ok := p.Parent()
	if !ok {
		return nil, ffserrors.NewFileError("Cannot write to device root", d.DisplayPath(p), nil)
	}
	parentID, err := d.resolve(parent)
	if err != nil {
		return nil, err
	}
	existing, err := d.childByName(parentID, p.Name())
	if err != nil {
		return nil, wrapAPIError("access", d.DisplayPath(p), err)
	}
	if existing != nil {
		return nil, ffserrors.NewTargetExisting(fmt.Sprintf("Item %s already exists", d.DisplayPath(p)), "duplicate name")
	}

	meta := &drive.File{Name: p.Name(), Parents: []string{parentID}}
	if modTime != nil {
		meta.ModifiedTime = time.Unix(*modTime, 0).UTC().Format(time.RFC3339)
	}

	pr, pw := io.Pipe()
	stream := &driveOutputStream{device: d, path: p, pw: pw, done: make(chan struct{})}
	go func() {
		defer close(stream.done)
		stream.result, stream.err = d.service.Files.Create(meta).
			Media(pr, googleapi.ChunkSize(8*1024*1024)).Fields("id").Do()
	}()
	return stream, nil
}

// CopyNewFile implements interfaces.Device using a server-side copy
func (d *Device) CopyNewFile(from, to interfaces.Path, ioNotify interfaces.IOCallback) (*interfaces.FileCopyResult, error) {
	src, err := d.metadata(from)
	if err != nil {
		return nil, err
	}
	toParent, ok := to.Parent()
	if !ok {
		return nil, ffserrors.NewFileError("Cannot write to device root", d.DisplayPath(to), nil)
	}
	toParentID, err := d.resolve(toParent)
	if err != nil {
		return nil, err
	}
	if existing, err := d.childByName(toParentID, to.Name()); err != nil {
		return nil, wrapAPIError("access", d.DisplayPath(to), err)
	} else if existing != nil {
		return nil, ffserrors.NewTargetExisting(fmt.Sprintf("Item %s already exists", d.DisplayPath(to)), "duplicate name")
	}

	copied, err := d.service.Files.Copy(src.Id, &drive.File{
		Name:         to.Name(),
		Parents:      []string{toParentID},
		ModifiedTime: src.ModifiedTime,
	}).Fields("id, size, modifiedTime").Do()
	if err != nil {
		return nil, wrapAPIError("copy", d.DisplayPath(from), err)
	}
	d.cachePut(to, copied.Id)
	if ioNotify != nil {
		if err := ioNotify(src.Size); err != nil {
			return nil, err
		}
	}
	modTime, _ := time.Parse(time.RFC3339, src.ModifiedTime)
	return &interfaces.FileCopyResult{
		FileSize:    uint64(src.Size),
		ModTime:     modTime.Unix(),
		SourcePrint: filePrintOf(src.Id),
		TargetPrint: filePrintOf(copied.Id),
	}, nil
}

// ReadSymlink implements interfaces.Device: Drive has no symlinks
func (d *Device) ReadSymlink(p interfaces.Path) (string, error) {
	return "", ffserrors.NewNotSupported("Google Drive does not support symbolic links")
}

// CreateSymlink implements interfaces.Device: Drive has no symlinks
func (d *Device) CreateSymlink(p interfaces.Path, target string, modTime *int64) error {
	return ffserrors.NewNotSupported("Google Drive does not support symbolic links")
}

// CopyOwnerAndPermissions implements interfaces.Device; Drive has no POSIX
// permissions to copy
func (d *Device) CopyOwnerAndPermissions(from, to interfaces.Path) error { return nil }

// GetFreeDiskSpace implements interfaces.Device
func (d *Device) GetFreeDiskSpace(p interfaces.Path) (int64, error) {
	about, err := d.service.About.Get().Fields("storageQuota").Do()
	if err != nil {
		return -1, wrapAPIError("query free space of", d.DisplayPath(p), err)
	}
	if about.StorageQuota == nil || about.StorageQuota.Limit == 0 {
		return -1, nil
	}
	return about.StorageQuota.Limit - about.StorageQuota.Usage, nil
}

// SupportsRecycleBin implements interfaces.Device: the Drive trash is always
// available
func (d *Device) SupportsRecycleBin(p interfaces.Path) (bool, error) { return true, nil }

// RecycleItemIfExists implements interfaces.Device by trashing the item
func (d *Device) RecycleItemIfExists(p interfaces.Path) error {
	id, err := d.resolve(p)
	if err != nil {
		if fe, ok := err.(*ffserrors.FileError); ok && fe.Err == nil {
			return nil // already gone
		}
		return err
	}
	if _, err := d.service.Files.Update(id, &drive.File{Trashed: true}).Do(); err != nil {
		return wrapAPIError("recycle", d.DisplayPath(p), err)
	}
	d.cacheDrop(p)
	return nil
}

// TraverseFolder implements interfaces.Device
func (d *Device) TraverseFolder(workload []interfaces.TraverserWorkloadItem, parallelOps int) error {
	if parallelOps < 1 {
		parallelOps = 1
	}
	g := new(errgroup.Group)
	g.SetLimit(parallelOps)
	for _, item := range workload {
		item := item
		g.Go(func() error { return d.walkFolder(g, item.Path, item.Callback) })
	}
	return g.Wait()
}

func (d *Device) walkFolder(g *errgroup.Group, p interfaces.Path, cb interfaces.TraverserCallback) error {
	var files []*drive.File
	for {
		var err error
		files, err = d.listChildren(p)
		if err == nil {
			break
		}
		handling, herr := cb.OnDirError(err)
		if herr != nil {
			return herr
		}
		if handling == interfaces.ErrorIgnore {
			return nil
		}
	}

	for _, f := range files {
		child := p.Append(f.Name)
		if itemTypeOf(f) == interfaces.ItemFolder {
			d.cachePut(child, f.Id)
			sub, err := cb.OnFolder(f.Name, models.FolderAttributes{})
			if err != nil {
				return err
			}
			if sub == nil {
				continue
			}
			if !g.TryGo(func() error { return d.walkFolder(g, child, sub) }) {
				if err := d.walkFolder(g, child, sub); err != nil {
					return err
				}
			}
			continue
		}
		modTime, _ := time.Parse(time.RFC3339, f.ModifiedTime)
		attr := models.FileAttributes{
			ModTime:   modTime.Unix(),
			Size:      uint64(f.Size),
			FilePrint: filePrintOf(f.Id),
		}
		if err := cb.OnFile(f.Name, attr); err != nil {
			return err
		}
	}
	return nil
}
