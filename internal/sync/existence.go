package sync

import (
	"fmt"
	"time"

	"github.com/wuhui20091515/FreeFileSync/internal/core/interfaces"
	ffserrors "github.com/wuhui20091515/FreeFileSync/pkg/errors"
)

// DefaultFolderAccessTimeout bounds each folder existence check; think
// CD-ROM insertion or disk spin-up from sleep
const DefaultFolderAccessTimeout = 20 * time.Second

// FolderStatus aggregates the outcome of the existence checks
type FolderStatus struct {
	Existing     []interfaces.AbstractPath
	NotExisting  []interfaces.AbstractPath
	FailedChecks map[string]error // keyed by display path
}

type existenceResult struct {
	path   interfaces.AbstractPath
	exists bool
	err    error
}

// CheckFolderExistence probes all base folders. Checks run as one task per
// device, in parallel, so unreachable network drives do not add up their
// timeouts. On expiry the check is recorded as failed while the probe
// goroutine is left detached; cascading hangs stay contained.
func CheckFolderExistence(folderPaths []interfaces.AbstractPath,
	cb interfaces.ProgressCallback) (FolderStatus, error) {

	status := FolderStatus{FailedChecks: make(map[string]error)}

	perDevice := make(map[interfaces.Device][]interfaces.AbstractPath)
	for _, path := range folderPaths {
		if path.IsNull() {
			continue
		}
		perDevice[path.Device] = append(perDevice[path.Device], path)
	}

	type pendingCheck struct {
		path     interfaces.AbstractPath
		deadline time.Time
	}
	var pending []pendingCheck
	results := make(chan existenceResult, len(folderPaths))

	for device, devicePaths := range perDevice {
		timeout := device.Timeout()
		if timeout <= 0 {
			timeout = DefaultFolderAccessTimeout
		}
		deadline := time.Now().Add(timeout)
		for _, path := range devicePaths {
			pending = append(pending, pendingCheck{path: path, deadline: deadline})
		}

		// one detached worker per device
		go func(paths []interfaces.AbstractPath) {
			for _, path := range paths {
				if cb != nil {
					cb.LogInfo(fmt.Sprintf("Searching for folder %s...", path.DisplayPath()))
				}
				_, exists, err := path.Device.ItemStillExists(path.Path)
				results <- existenceResult{path: path, exists: exists, err: err}
			}
		}(devicePaths)
	}

	done := make(map[string]bool)
	ticker := time.NewTicker(interfaces.UIUpdateInterval / 2)
	defer ticker.Stop()

	for remaining := len(pending); remaining > 0; {
		select {
		case result := <-results:
			key := result.path.DisplayPath()
			if done[key] {
				continue // late answer after timeout
			}
			done[key] = true
			remaining--
			switch {
			case result.err != nil:
				status.FailedChecks[key] = result.err
			case result.exists:
				status.Existing = append(status.Existing, result.path)
			default:
				status.NotExisting = append(status.NotExisting, result.path)
			}

		case <-ticker.C:
			if cb != nil {
				if err := cb.RequestUIUpdate(false); err != nil {
					return status, err
				}
			}
			now := time.Now()
			for _, check := range pending {
				key := check.path.DisplayPath()
				if done[key] || now.Before(check.deadline) {
					continue
				}
				done[key] = true
				remaining--
				status.FailedChecks[key] = ffserrors.NewTimeout(
					fmt.Sprintf("Timeout while searching for folder %s", key))
			}
		}
	}
	return status, nil
}
