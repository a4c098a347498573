package interfaces

import "time"

// UIUpdateInterval is the nominal refresh period of the host UI; blocking
// device calls poll RequestUIUpdate at half this interval
const UIUpdateInterval = 100 * time.Millisecond

// ProcessPhase labels a progress phase for the host UI
type ProcessPhase string

const (
	// PhaseNone is a phase without a dedicated label
	PhaseNone ProcessPhase = ""
	// PhaseScanning covers directory comparison
	PhaseScanning ProcessPhase = "scanning"
	// PhaseSynchronizing covers applying resolved directions
	PhaseSynchronizing ProcessPhase = "synchronizing"
)

// ErrorResponse is the host's decision after a reported error
type ErrorResponse int8

const (
	// ResponseRetry repeats the failed operation
	ResponseRetry ErrorResponse = iota
	// ResponseIgnore skips the failed item and continues the batch
	ResponseIgnore
	// ResponseAbort cancels the whole session
	ResponseAbort
)

// ProgressCallback is the host-provided progress, status, and error surface.
// Methods returning an error may return errors.ErrCancelled to abort; engine
// code propagates the cancellation only after the current item's model
// mutation is committed or fully rolled back.
type ProgressCallback interface {
	// InitNewPhase announces totals for the next processing phase
	InitNewPhase(itemTotal int, byteTotal int64, phase ProcessPhase) error
	// ReportDelta accounts finished items and transferred bytes
	ReportDelta(itemDelta int, byteDelta int64)
	// UpdateStatus shows the current action in the status line
	UpdateStatus(msg string) error
	// LogInfo records a session log line
	LogInfo(msg string)
	// RequestUIUpdate polls the host; it returns errors.ErrCancelled when the
	// user aborted
	RequestUIUpdate(force bool) error
	// ReportWarning raises a once-per-class warning; warnActive is the
	// persistent "don't show again" flag
	ReportWarning(msg string, warnActive *bool)
	// ReportError surfaces a failed operation and returns the host's decision
	ReportError(msg string, retryNumber int) ErrorResponse
}
