package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := NewFileError("Cannot read file /x", "EACCES", nil)
	assert.Contains(t, err.Error(), "Cannot read file /x")
	assert.Contains(t, err.Error(), "EACCES")
}

func TestPredicatesMatchKinds(t *testing.T) {
	assert.True(t, IsTargetExisting(NewTargetExisting("exists", "")))
	assert.True(t, IsFileLocked(NewFileLocked("locked", "", nil)))
	assert.True(t, IsMoveUnsupported(NewMoveUnsupported("move", "")))
	assert.True(t, IsNotSupported(NewNotSupported("nope")))
	assert.True(t, IsTimeout(NewTimeout("slow")))
	assert.True(t, IsCancelled(ErrCancelled))

	assert.False(t, IsTargetExisting(NewFileError("generic", "", nil)))
	assert.False(t, IsCancelled(fmt.Errorf("plain")))
}

func TestPredicatesUnwrapNestedErrors(t *testing.T) {
	inner := NewTargetExisting("exists", "")
	wrapped := fmt.Errorf("while copying: %w", inner)
	assert.True(t, IsTargetExisting(wrapped))
	assert.True(t, IsFileError(wrapped))
}

func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := NewFileError("failed", "", cause)
	assert.ErrorIs(t, err, cause)
}
