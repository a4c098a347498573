// Package errors defines the typed error kinds used by the sync engine
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorKind represents the category of a storage error
type ErrorKind string

const (
	// KindStorage is a generic storage operation failure
	KindStorage ErrorKind = "storage"
	// KindTargetExisting indicates create-new semantics were violated
	KindTargetExisting ErrorKind = "target_existing"
	// KindFileLocked indicates a source could not be read due to an exclusive lock
	KindFileLocked ErrorKind = "file_locked"
	// KindMoveUnsupported indicates a rename across non-equivalent devices or
	// an unsupported filesystem
	KindMoveUnsupported ErrorKind = "move_unsupported"
	// KindNotSupported indicates an operation the device cannot perform
	KindNotSupported ErrorKind = "not_supported"
	// KindTimeout indicates an existence check exceeded its deadline
	KindTimeout ErrorKind = "timeout"
	// KindCancelled indicates the session was aborted via the progress callback
	KindCancelled ErrorKind = "cancelled"
)

// FileError is the base error type for all storage failures. It carries a
// user-facing message plus a system-level detail string.
type FileError struct {
	Kind    ErrorKind
	Message string
	Detail  string
	Err     error
}

// Error implements the error interface
func (e *FileError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Detail)
	}
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, msg)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Err
}

// New creates a new FileError of the given kind
func New(kind ErrorKind, message, detail string, err error) *FileError {
	return &FileError{
		Kind:    kind,
		Message: message,
		Detail:  detail,
		Err:     err,
	}
}

// NewFileError creates a generic storage error
func NewFileError(message, detail string, err error) *FileError {
	return New(KindStorage, message, detail, err)
}

// NewTargetExisting creates an error for violated create-new semantics
func NewTargetExisting(message, detail string) *FileError {
	return New(KindTargetExisting, message, detail, nil)
}

// NewFileLocked creates an error for an exclusively locked source item
func NewFileLocked(message, detail string, err error) *FileError {
	return New(KindFileLocked, message, detail, err)
}

// NewMoveUnsupported creates an error for a rename the device pair cannot perform
func NewMoveUnsupported(message, detail string) *FileError {
	return New(KindMoveUnsupported, message, detail, nil)
}

// NewNotSupported creates an error for an unsupported device operation
func NewNotSupported(message string) *FileError {
	return New(KindNotSupported, message, "", nil)
}

// NewTimeout creates an error for an expired existence check
func NewTimeout(message string) *FileError {
	return New(KindTimeout, message, "", nil)
}

// ErrCancelled is returned when the progress callback aborts the session
var ErrCancelled = &FileError{Kind: KindCancelled, Message: "operation cancelled"}

// kindOf extracts the error kind, or "" for foreign errors
func kindOf(err error) ErrorKind {
	var fe *FileError
	if stderrors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// IsFileError checks whether the error is any storage error
func IsFileError(err error) bool {
	var fe *FileError
	return stderrors.As(err, &fe)
}

// IsTargetExisting checks for violated create-new semantics
func IsTargetExisting(err error) bool {
	return kindOf(err) == KindTargetExisting
}

// IsFileLocked checks for an exclusively locked source
func IsFileLocked(err error) bool {
	return kindOf(err) == KindFileLocked
}

// IsMoveUnsupported checks for an unsupported cross-device rename
func IsMoveUnsupported(err error) bool {
	return kindOf(err) == KindMoveUnsupported
}

// IsNotSupported checks for an unsupported device operation
func IsNotSupported(err error) bool {
	return kindOf(err) == KindNotSupported
}

// IsTimeout checks for an expired existence check
func IsTimeout(err error) bool {
	return kindOf(err) == KindTimeout
}

// IsCancelled checks whether the error aborts the whole session
func IsCancelled(err error) bool {
	return kindOf(err) == KindCancelled
}
