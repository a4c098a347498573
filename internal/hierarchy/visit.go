package hierarchy

// VisitFsObject dispatches on the concrete node kind; nil handlers are skipped
func VisitFsObject(obj FsObject,
	onFolder func(*FolderPair),
	onFile func(*FilePair),
	onSymlink func(*SymlinkPair)) {
	switch node := obj.(type) {
	case *FolderPair:
		if onFolder != nil {
			onFolder(node)
		}
	case *FilePair:
		if onFile != nil {
			onFile(node)
		}
	case *SymlinkPair:
		if onSymlink != nil {
			onSymlink(node)
		}
	}
}

func visitContainer(c *ContainerObject,
	onFolder func(*FolderPair),
	onFile func(*FilePair),
	onSymlink func(*SymlinkPair)) {
	for _, file := range c.files {
		if onFile != nil {
			onFile(file)
		}
	}
	for _, link := range c.symlinks {
		if onSymlink != nil {
			onSymlink(link)
		}
	}
	for _, folder := range c.folders {
		visitContainer(&folder.ContainerObject, onFolder, onFile, onSymlink)
		if onFolder != nil {
			onFolder(folder)
		}
	}
}

// VisitContainer walks all children of a container in name-sorted sibling
// order, folders after their descendants
func VisitContainer(c *ContainerObject,
	onFolder func(*FolderPair),
	onFile func(*FilePair),
	onSymlink func(*SymlinkPair)) {
	visitContainer(c, onFolder, onFile, onSymlink)
}
