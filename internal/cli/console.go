package cli

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/wuhui20091515/FreeFileSync/internal/core/interfaces"
	"github.com/wuhui20091515/FreeFileSync/pkg/logger"
)

// consoleCallback is the non-interactive progress surface of the CLI: status
// goes to stderr in verbose mode, log lines to the session log, and errors
// are surfaced once and then skipped (ignore), so batches stay best-effort.
type consoleCallback struct {
	log        *zap.Logger
	verbose    bool
	errorCount int
	items      int
	itemTotal  int
}

func newConsoleCallback(verbose bool) *consoleCallback {
	return &consoleCallback{log: logger.Get(), verbose: verbose}
}

// InitNewPhase implements interfaces.ProgressCallback
func (c *consoleCallback) InitNewPhase(itemTotal int, byteTotal int64, phase interfaces.ProcessPhase) error {
	c.items = 0
	c.itemTotal = itemTotal
	if phase != interfaces.PhaseNone {
		c.log.Info("Starting phase",
			zap.String("phase", string(phase)),
			zap.Int("items", itemTotal),
			zap.Int64("bytes", byteTotal))
	}
	return nil
}

// ReportDelta implements interfaces.ProgressCallback
func (c *consoleCallback) ReportDelta(itemDelta int, byteDelta int64) {
	c.items += itemDelta
}

// UpdateStatus implements interfaces.ProgressCallback
func (c *consoleCallback) UpdateStatus(msg string) error {
	if c.verbose {
		fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", c.items, c.itemTotal, msg)
	}
	return nil
}

// LogInfo implements interfaces.ProgressCallback
func (c *consoleCallback) LogInfo(msg string) {
	c.log.Info(msg)
	if c.verbose {
		fmt.Fprintln(os.Stderr, msg)
	}
}

// RequestUIUpdate implements interfaces.ProgressCallback; a plain CLI run
// has no cancel button, so this never aborts
func (c *consoleCallback) RequestUIUpdate(force bool) error { return nil }

// ReportWarning implements interfaces.ProgressCallback
func (c *consoleCallback) ReportWarning(msg string, warnActive *bool) {
	if warnActive != nil && !*warnActive {
		return
	}
	c.log.Warn(msg)
	fmt.Fprintln(os.Stderr, "Warning:", msg)
	if warnActive != nil {
		*warnActive = false // at most once per warning class and session
	}
}

// ReportError implements interfaces.ProgressCallback: surface and skip
func (c *consoleCallback) ReportError(msg string, retryNumber int) interfaces.ErrorResponse {
	c.errorCount++
	c.log.Error(msg, zap.Int("retry", retryNumber))
	fmt.Fprintln(os.Stderr, "Error:", msg)
	return interfaces.ResponseIgnore
}
