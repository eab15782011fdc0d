package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedError(t *testing.T) {
	err := fmt.Errorf("seed: %w", Clone(ErrForeignKeyViolation, "club references missing department"))
	appErr := FromError(err)
	assert.Equal(t, ErrForeignKeyViolation.Code, appErr.Code)
	assert.Equal(t, "club references missing department", appErr.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.EqualError(t, appErr, "internal server error: boom")
}

func TestIsMatchesByCode(t *testing.T) {
	cause := errors.New("pq: duplicate key")
	err := CloneWrap(ErrDuplicateKey, cause, "duplicate membership")
	assert.True(t, errors.Is(err, ErrDuplicateKey))
	assert.False(t, errors.Is(err, ErrForeignKeyViolation))
	assert.True(t, errors.Is(err, cause))
}
