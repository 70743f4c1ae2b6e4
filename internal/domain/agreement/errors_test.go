package agreement

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewExportFailure("failed to write document", cause)

	assert.Equal(t, "failed to write document: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "template missing", NewResourceNotFound("template missing", nil).Error())
}

func TestError_Classification(t *testing.T) {
	wrapped := fmt.Errorf("generate: %w", NewResourceNotFound("font missing", nil))

	assert.True(t, IsResourceNotFound(wrapped))
	assert.False(t, IsRenderFailure(wrapped))
	assert.Equal(t, ErrCodeResourceNotFound, CodeOf(wrapped))
	assert.True(t, errors.Is(wrapped, &Error{Code: ErrCodeResourceNotFound}))
	assert.False(t, errors.Is(wrapped, &Error{Code: ErrCodeRenderFailed}))

	assert.True(t, IsRenderFailure(NewRenderFailure("decode", nil)))
	assert.True(t, IsExportFailure(NewExportFailure("encode", nil)))
	assert.True(t, IsExportFailure(NewError(ErrCodeUnsupportedFormat, "tiff", nil)))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
}

func TestMessageOf(t *testing.T) {
	err := fmt.Errorf("generate: %w",
		NewResourceNotFound("Font file not found: font.ttf", errors.New("stat /srv/assets/font.ttf: no such file")))

	assert.Equal(t, "Font file not found: font.ttf", MessageOf(err))
	assert.Equal(t, "", MessageOf(errors.New("plain")))
}
