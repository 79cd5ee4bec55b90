package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("editing: %w", Clone(ErrStalePath, "path 0-4 no longer exists"))

	got := FromError(wrapped)
	assert.Equal(t, "STALE_PATH", got.Code)
	assert.Equal(t, http.StatusConflict, got.Status)
	assert.Equal(t, "path 0-4 no longer exists", got.Message)
}

func TestFromErrorFallsBackToInternal(t *testing.T) {
	got := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.EqualError(t, got, "internal server error: boom")
	assert.Nil(t, FromError(nil))
}

func TestIsComparesCodes(t *testing.T) {
	err := Wrap(errors.New("unexpected token"), ErrInvalidFile.Code, ErrInvalidFile.Status, "invalid report file")
	assert.True(t, Is(err, ErrInvalidFile))
	assert.False(t, Is(err, ErrValidation))
	assert.False(t, Is(errors.New("plain"), ErrInvalidFile))
}

func TestCloneLeavesOriginalUntouched(t *testing.T) {
	clone := Clone(ErrAuditFailed, "HTTP error! status: 500")
	assert.Equal(t, "HTTP error! status: 500", clone.Message)
	assert.Equal(t, "audit request failed", ErrAuditFailed.Message)
	assert.Equal(t, ErrAuditFailed.Message, Clone(ErrAuditFailed, "").Message)
}
