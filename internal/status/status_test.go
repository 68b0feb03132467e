package status

import (
	"errors"
	"io/fs"
	"testing"

	"gotest.tools/v3/assert"
)

func TestIsAndCodeOf(t *testing.T) {
	err := New(NoSuchObject, "not found")
	assert.Assert(t, Is(err, NoSuchObject))
	assert.Assert(t, !Is(err, Busy))
	assert.Equal(t, CodeOf(err), NoSuchObject)
	assert.Equal(t, CodeOf(nil), Success)
	assert.Equal(t, CodeOf(errors.New("plain")), Other)
}

func TestWrapPreservesUnderlyingError(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(Other, cause, "write temp file")
	assert.Assert(t, errors.Is(err, cause))
	assert.Assert(t, err.Cause() != nil)
	assert.Assert(t, err.Unwrap() != nil)
}

func TestFromPathErrorMapsNotExist(t *testing.T) {
	err := FromPathError(fs.ErrNotExist, NotAllowedOnNonLeaf)
	assert.Equal(t, err.Code, NoSuchObject)
}

func TestFromPathErrorNil(t *testing.T) {
	assert.Assert(t, FromPathError(nil, Other) == nil)
}

func TestCodeString(t *testing.T) {
	assert.Equal(t, Success.String(), "Success")
	assert.Equal(t, Code(999).String(), "Other")
}
