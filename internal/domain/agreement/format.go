package agreement

import (
	"fmt"
	"strings"
)

// DocumentFormat is the serialization of an exported canvas
type DocumentFormat string

const (
	FormatPDF DocumentFormat = "pdf"
	FormatPNG DocumentFormat = "png"
)

// DefaultFormat is used when a request does not name one
const DefaultFormat = FormatPDF

// ParseFormat parses a case-insensitive format name; "" yields DefaultFormat
func ParseFormat(s string) (DocumentFormat, error) {
	f := DocumentFormat(strings.ToLower(strings.TrimSpace(s)))
	if f == "" {
		return DefaultFormat, nil
	}
	if !f.IsValid() {
		return "", NewError(ErrCodeUnsupportedFormat, fmt.Sprintf("unsupported document format: %s", s), nil)
	}
	return f, nil
}

// IsValid reports whether the format is supported
func (f DocumentFormat) IsValid() bool {
	switch f {
	case FormatPDF, FormatPNG:
		return true
	}
	return false
}

// Extension returns the file extension without a leading dot
func (f DocumentFormat) Extension() string {
	return string(f)
}

// MediaType returns the MIME type delivered to the caller
func (f DocumentFormat) MediaType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatPNG:
		return "image/png"
	}
	return "application/octet-stream"
}

func (f DocumentFormat) String() string {
	return string(f)
}
