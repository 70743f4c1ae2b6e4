package agreement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in        string
		want      DocumentFormat
		mediaType string
	}{
		{"", FormatPDF, "application/pdf"},
		{"pdf", FormatPDF, "application/pdf"},
		{" PNG ", FormatPNG, "image/png"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			f, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f)
			assert.Equal(t, tt.mediaType, f.MediaType())
			assert.Equal(t, string(tt.want), f.Extension())
		})
	}

	_, err := ParseFormat("docx")
	require.Error(t, err)
	assert.Equal(t, ErrCodeUnsupportedFormat, CodeOf(err))
	assert.False(t, DocumentFormat("tiff").IsValid())
}
