package parsererror

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseError(t *testing.T) {
	_, cause := strconv.ParseFloat(",", 64)
	err := &ParseError{Field: "amount", Pattern: "currency-decimal", Value: ",", Err: cause}

	assert.Contains(t, err.Error(), "failed to parse amount=','")
	assert.Contains(t, err.Error(), "currency-decimal")
	assert.True(t, errors.Is(err, cause))
}

func TestStorageError(t *testing.T) {
	assert.NoError(t, NewStorageError("save message", nil))

	err := NewStorageError("save message", ErrDuplicateMessage)
	assert.EqualError(t, err, "storage save message failed: duplicate message")
	assert.ErrorIs(t, err, ErrDuplicateMessage)

	var storageErr *StorageError
	assert.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "save message", storageErr.Operation)
}

func TestTemplateError(t *testing.T) {
	plain := &TemplateError{Bank: "HDFC", Field: "keywords", Reason: "empty"}
	assert.EqualError(t, plain, "template HDFC: invalid keywords: empty")

	cause := errors.New("missing closing )")
	wrapped := &TemplateError{Bank: "SBI", Field: "amount_pattern", Reason: "does not compile", Err: cause}
	assert.Contains(t, wrapped.Error(), "missing closing )")
	assert.ErrorIs(t, wrapped, cause)
}
