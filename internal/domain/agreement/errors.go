package agreement

import "errors"

// Error codes for pipeline failures
const (
	// ErrCodeResourceNotFound is used when the template or font asset is absent
	ErrCodeResourceNotFound = "RESOURCE_NOT_FOUND"
	// ErrCodeFontLoadFailed marks a font that exists but cannot be used.
	// It is recovered inside the font resolver and never reaches callers.
	ErrCodeFontLoadFailed = "FONT_LOAD_FAILED"
	// ErrCodeRenderFailed is used when decoding the template or drawing text fails
	ErrCodeRenderFailed = "RENDER_FAILED"
	// ErrCodeExportFailed is used when serializing or writing the document fails
	ErrCodeExportFailed = "EXPORT_FAILED"
	// ErrCodeInvalidLayout is used when a layout definition is rejected
	ErrCodeInvalidLayout = "INVALID_LAYOUT"
	// ErrCodeUnsupportedFormat is used when an unknown document format is requested
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
)

// Error represents a classified failure of the agreement pipeline
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
// This lets callers match with errors.Is(err, &Error{Code: ...}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewError creates a new Error
func NewError(code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewResourceNotFound reports a missing template or font asset
func NewResourceNotFound(message string, cause error) *Error {
	return NewError(ErrCodeResourceNotFound, message, cause)
}

// NewRenderFailure reports a failure while building the canvas
func NewRenderFailure(message string, cause error) *Error {
	return NewError(ErrCodeRenderFailed, message, cause)
}

// NewExportFailure reports a failure while serializing or writing the document
func NewExportFailure(message string, cause error) *Error {
	return NewError(ErrCodeExportFailed, message, cause)
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there is none
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// MessageOf returns the message of the first *Error in err's chain without
// its cause, or "" if there is none
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

// IsResourceNotFound reports whether err is a missing-asset failure
func IsResourceNotFound(err error) bool {
	return CodeOf(err) == ErrCodeResourceNotFound
}

// IsRenderFailure reports whether err is a render failure
func IsRenderFailure(err error) bool {
	return CodeOf(err) == ErrCodeRenderFailed
}

// IsExportFailure reports whether err is an export failure.
// Unsupported formats are classified as export failures too.
func IsExportFailure(err error) bool {
	code := CodeOf(err)
	return code == ErrCodeExportFailed || code == ErrCodeUnsupportedFormat
}
