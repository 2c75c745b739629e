package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCauseChain(t *testing.T) {
	cause := fmt.Errorf("row missing")
	err := Wrap(CodeNotFound, cause, "group purchase not found")

	require.NotNil(t, err)
	assert.Equal(t, CodeNotFound, err.Code())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "NOT_FOUND: group purchase not found", err.Error())
}

func TestAsFindsTypedErrorThroughWrapping(t *testing.T) {
	inner := New(CodeConflict, "already participating")
	outer := fmt.Errorf("join failed: %w", inner)

	typed := As(outer)
	require.NotNil(t, typed)
	assert.Equal(t, CodeConflict, typed.Code())
	assert.Nil(t, As(fmt.Errorf("plain")))
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("attempt: %w", New(CodeConcurrency, "version conflict"))
	assert.True(t, HasCode(err, CodeConcurrency))
	assert.False(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(nil, CodeNotFound))
}

func TestMetadataMapping(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, MetadataFor(CodeNotFound).HTTPStatus)
	assert.Equal(t, http.StatusBadRequest, MetadataFor(CodeStateConflict).HTTPStatus)
	assert.Equal(t, http.StatusBadRequest, MetadataFor(CodeConflict).HTTPStatus)
	assert.Equal(t, http.StatusForbidden, MetadataFor(CodeForbidden).HTTPStatus)
	// Unknown codes fall back to internal.
	assert.Equal(t, http.StatusInternalServerError, MetadataFor(Code("NOPE")).HTTPStatus)
}

func TestDumpCollectsChain(t *testing.T) {
	err := Wrap(CodeDependency, fmt.Errorf("db down"), "load purchase")
	dump := Dump(err)
	assert.Equal(t, CodeDependency, dump.Code)
	assert.Len(t, dump.Chain, 2)
}
