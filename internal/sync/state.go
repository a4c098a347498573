package sync

import (
	"github.com/wuhui20091515/FreeFileSync/internal/hierarchy"
	"github.com/wuhui20091515/FreeFileSync/pkg/models"
)

// BuildInSyncState snapshots everything currently in sync in the pair tree
// into a last-sync record, typically after the executor ran. Items still
// differing are omitted; folders kept only as context for in-sync
// descendants carry the straw-man marker.
func BuildInSyncState(base *hierarchy.BaseFolderPair) *models.InSyncFolder {
	root := models.NewInSyncFolder(models.FolderStatusNormal)
	fillInSyncState(&base.ContainerObject, root, base.CompareVariant())
	return root
}

func fillInSyncState(container *hierarchy.ContainerObject, record *models.InSyncFolder,
	variant models.CompareVariant) {
	for _, file := range container.Files() {
		if file.Category() != models.CatEqual ||
			file.IsEmpty(models.SideLeft) || file.IsEmpty(models.SideRight) {
			continue
		}
		left := file.Attributes(models.SideLeft)
		right := file.Attributes(models.SideRight)
		record.Files[file.Name(models.SideLeft)] = &models.InSyncFile{
			Left:       models.DescrFile{ModTime: left.ModTime, FilePrint: left.FilePrint},
			Right:      models.DescrFile{ModTime: right.ModTime, FilePrint: right.FilePrint},
			Size:       left.Size,
			CmpVariant: variant,
		}
	}
	for _, link := range container.Symlinks() {
		if link.Category() != models.CatEqual ||
			link.IsEmpty(models.SideLeft) || link.IsEmpty(models.SideRight) {
			continue
		}
		record.Symlinks[link.Name(models.SideLeft)] = &models.InSyncSymlink{
			Left:       models.DescrLink{ModTime: link.ModTime(models.SideLeft)},
			Right:      models.DescrLink{ModTime: link.ModTime(models.SideRight)},
			CmpVariant: variant,
		}
	}
	for _, folder := range container.Folders() {
		status := models.FolderStatusNormal
		if folder.IsEmpty(models.SideLeft) || folder.IsEmpty(models.SideRight) ||
			folder.Category() != models.CatEqual {
			status = models.FolderStatusStrawMan
		}
		sub := models.NewInSyncFolder(status)
		fillInSyncState(&folder.ContainerObject, sub, variant)
		if status == models.FolderStatusStrawMan &&
			len(sub.Files) == 0 && len(sub.Symlinks) == 0 && len(sub.Folders) == 0 {
			continue // a placeholder without context value
		}
		record.Folders[folder.Name(models.SideLeft)] = sub
	}
}
