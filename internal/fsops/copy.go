package fsops

import (
	"io"

	"github.com/wuhui20091515/FreeFileSync/internal/core/interfaces"
	ffserrors "github.com/wuhui20091515/FreeFileSync/pkg/errors"
	"github.com/wuhui20091515/FreeFileSync/pkg/models"
)

// CopyFileTransactional copies a file so that either the complete new target
// or no target exists afterwards: the data is written to a temporary sibling
// first and renamed onto the target on success. onDeleteTargetFile, when
// non-nil, is invoked after the intermediate copy completed and before the
// rename, so the window without a valid target stays minimal. A failure to
// set the target modification time rides along in the result instead of
// failing the copy.
func CopyFileTransactional(src interfaces.AbstractPath, srcAttr models.FileAttributes,
	dst interfaces.AbstractPath, transactional bool,
	onDeleteTargetFile func() error,
	ioNotify interfaces.IOCallback) (*interfaces.FileCopyResult, error) {

	if !transactional {
		if onDeleteTargetFile != nil {
			if err := onDeleteTargetFile(); err != nil {
				return nil, err
			}
		}
		return copyNewFile(src, srcAttr, dst, ioNotify)
	}

	parent, ok := dst.Parent()
	if !ok {
		return nil, ffserrors.NewFileError("Cannot write to device root", dst.DisplayPath(), nil)
	}
	tmp := parent.Append(dst.Name() + TempFileEnding)

	result, err := copyNewFile(src, srcAttr, tmp, ioNotify)
	if err != nil {
		// guaranteed cleanup of the intermediate file on every failure path
		_ = RemoveFileIfExists(tmp)
		return nil, err
	}

	if onDeleteTargetFile != nil {
		if err := onDeleteTargetFile(); err != nil {
			_ = RemoveFileIfExists(tmp)
			return nil, err
		}
	}

	if err := dst.Device.MoveAndRename(tmp.Path, dst.Path, false); err != nil {
		_ = RemoveFileIfExists(tmp)
		return nil, err
	}
	return result, nil
}

// copyNewFile copies a file to a target that must not exist. Equivalent
// devices use their native copy; otherwise the data is streamed generically.
func copyNewFile(src interfaces.AbstractPath, srcAttr models.FileAttributes,
	dst interfaces.AbstractPath, ioNotify interfaces.IOCallback) (*interfaces.FileCopyResult, error) {

	if interfaces.EquivalentDevices(src.Device, dst.Device) {
		return src.Device.CopyNewFile(src.Path, dst.Path, ioNotify)
	}

	in, err := src.Device.OpenInput(src.Path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	sizeHint := srcAttr.Size
	modTime := srcAttr.ModTime
	out, err := dst.Device.OpenOutput(dst.Path, &sizeHint, &modTime)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, in.BlockSize())
	var copied uint64
	for {
		n, readErr := in.Read(buf)
		if n > 0 {
			if _, err := out.Write(buf[:n]); err != nil {
				out.Cancel()
				return nil, err
			}
			copied += uint64(n)
			if ioNotify != nil {
				if err := ioNotify(int64(n)); err != nil {
					// partially written target is removed by the scope-fail handler
					out.Cancel()
					return nil, err
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			out.Cancel()
			return nil, readErr
		}
	}

	fin, err := out.Finalize()
	if err != nil {
		return nil, err
	}
	return &interfaces.FileCopyResult{
		FileSize:     copied,
		ModTime:      srcAttr.ModTime,
		SourcePrint:  srcAttr.FilePrint,
		TargetPrint:  fin.TargetPrint,
		ErrorModTime: fin.ErrorModTime,
	}, nil
}
