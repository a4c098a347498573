// Package sync implements the synchronization decision engine: direction
// resolution, move detection, filter application, and the manual bulk
// operations over the pair-tree model.
package sync

import (
	"strings"

	"github.com/wuhui20091515/FreeFileSync/internal/core/interfaces"
	ffserrors "github.com/wuhui20091515/FreeFileSync/pkg/errors"
)

// tryReportingError runs an operation, routing failures through the progress
// callback until it succeeds or the host decides ignore or abort. Ignore
// resolves to nil; abort resolves to the cancellation error.
func tryReportingError(op func() error, cb interfaces.ProgressCallback) error {
	for retry := 0; ; retry++ {
		err := op()
		if err == nil {
			return nil
		}
		if ffserrors.IsCancelled(err) {
			return err
		}
		if cb == nil {
			return err
		}
		switch cb.ReportError(err.Error(), retry) {
		case interfaces.ResponseRetry:
			continue
		case interfaces.ResponseIgnore:
			return nil
		default:
			return ffserrors.ErrCancelled
		}
	}
}

// notifyItemAction logs and shows a status line of the form "Doing thing %x"
func notifyItemAction(cb interfaces.ProgressCallback, template, displayPath string) error {
	if cb == nil {
		return nil
	}
	msg := strings.ReplaceAll(template, "%x", displayPath)
	cb.LogInfo(msg)
	return cb.UpdateStatus(msg)
}

func reportDelta(cb interfaces.ProgressCallback, items int, bytes int64) {
	if cb != nil {
		cb.ReportDelta(items, bytes)
	}
}

func requestUpdate(cb interfaces.ProgressCallback) error {
	if cb == nil {
		return nil
	}
	return cb.RequestUIUpdate(false)
}
