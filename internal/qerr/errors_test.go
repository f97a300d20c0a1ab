package qerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIs_UnwrapsContext(t *testing.T) {
	base := EmptyResult("First")
	wrapped := fmt.Errorf("execute: %w", base)

	assert.True(t, Is(wrapped, ErrCodeEmptyResult))
	assert.False(t, Is(wrapped, ErrCodeMultipleResults))
	assert.False(t, Is(errors.New("plain"), ErrCodeEmptyResult))
	assert.Equal(t, ErrCodeEmptyResult, CodeOf(wrapped))
	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
}

func TestError_MessageIncludesCause(t *testing.T) {
	cause := errors.New("no such table: Sheet9")
	err := SourceNotFound("Sheet9", cause)

	assert.Contains(t, err.Error(), "SOURCE_NOT_FOUND")
	assert.Contains(t, err.Error(), "Sheet9")
	assert.ErrorIs(t, err, cause)
}

func TestUnknownColumnName_Details(t *testing.T) {
	err := UnknownColumnName([]string{"Agee"}, []string{"Name", "Age"}, nil)

	assert.Equal(t, "Agee", err.Column)
	assert.Equal(t, "Name, Age", err.Details["valid"])
	assert.Contains(t, err.Error(), `"Agee"`)
}

func TestStrictMappingViolation_SortsNames(t *testing.T) {
	err := StrictMappingViolation(KindPropertyNotMapped, []string{"Zip", "Age"})

	require.Equal(t, "Age, Zip", err.Column)
	assert.Equal(t, KindPropertyNotMapped, KindOf(err))
	assert.Contains(t, err.Error(), "property not mapped")
}
