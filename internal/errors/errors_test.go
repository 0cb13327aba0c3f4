package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError_Creation(t *testing.T) {
	message := "sku not found"
	err := NewNotFoundError(message)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
}

func TestNotFoundError_IsNotFoundError(t *testing.T) {
	err := NewNotFoundError("test not found")

	notFoundErr, ok := IsNotFoundError(err)
	assert.True(t, ok)
	assert.NotNil(t, notFoundErr)
	assert.Equal(t, "test not found", notFoundErr.Message)
}

func TestNotFoundError_IsNotFoundError_WithOtherError(t *testing.T) {
	err := errors.New("some other error")

	notFoundErr, ok := IsNotFoundError(err)
	assert.False(t, ok)
	assert.Nil(t, notFoundErr)
}

func TestValidationError_Creation(t *testing.T) {
	message := "validation failed"
	details := []ValidationDetail{
		{Field: "qty", Message: "qty must be a positive integer"},
		{Field: "size", Message: "size is required"},
	}

	err := NewValidationError(message, details...)

	assert.NotNil(t, err)
	assert.Equal(t, message, err.Message)
	assert.Equal(t, message, err.Error())
	assert.Len(t, err.Details, 2)
}

func TestConflictError_CarriesInsufficientItems(t *testing.T) {
	err := NewConflictError("insufficient stock",
		InsufficientItem{SKU: "sku-1", VariantKey: "sku-1:size=M", Available: 2},
	)

	ce, ok := IsConflictError(err)
	assert.True(t, ok)
	assert.Equal(t, "insufficient stock", ce.Error())
	assert.Len(t, ce.Insufficient, 1)
	assert.Equal(t, "sku-1", ce.Insufficient[0].SKU)
	assert.Equal(t, 2, ce.Insufficient[0].Available)
}

func TestConflictError_WithoutItems(t *testing.T) {
	err := NewConflictError("reservation conflict")

	ce, ok := IsConflictError(err)
	assert.True(t, ok)
	assert.Empty(t, ce.Insufficient)
}

func TestTimeoutError_Unwrap(t *testing.T) {
	cause := errors.New("context deadline exceeded")
	err := NewTimeoutError("inventory validation timed out", cause)

	te, ok := IsTimeoutError(err)
	assert.True(t, ok)
	assert.Contains(t, te.Error(), "inventory validation timed out")
	assert.True(t, errors.Is(err, cause))
}

func TestUnavailableError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewUnavailableError("inventory authority unreachable", cause)

	ue, ok := IsUnavailableError(err)
	assert.True(t, ok)
	assert.Contains(t, ue.Error(), "connection refused")
	assert.True(t, errors.Is(err, cause))
}

func TestDeadlockError(t *testing.T) {
	err := NewDeadlockError("max retries exceeded")

	de, ok := IsDeadlockError(err)
	assert.True(t, ok)
	assert.Equal(t, "max retries exceeded", de.Error())
}

func TestInternalError_Creation(t *testing.T) {
	cause := errors.New("database error")
	err := NewInternalError("failed to query database", cause)

	assert.NotNil(t, err)
	assert.Equal(t, "failed to query database", err.Message)
	assert.Equal(t, cause, err.Cause)
	assert.Contains(t, err.Error(), "failed to query database")
	assert.Contains(t, err.Error(), "database error")
}

func TestInternalError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewInternalError("wrapper", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
}

func TestInternalError_NilCause(t *testing.T) {
	err := NewInternalError("no cause", nil)

	assert.Equal(t, "no cause", err.Error())
	assert.Nil(t, err.Unwrap())
}
