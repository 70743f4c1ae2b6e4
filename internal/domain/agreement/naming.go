package agreement

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultBaseName is used when the identifier field is empty
	DefaultBaseName = "agreement"
	// MaxNameComponentRunes caps the identifier portion of derived filenames
	MaxNameComponentRunes = 100
)

// Namer derives the caller-visible filename of an output document
type Namer struct {
	identifierField string
}

// NewNamer creates a Namer keyed on identifierField. An empty identifier always yields the default name.
func NewNamer(identifierField string) Namer {
	return Namer{identifierField: identifierField}
}

// NamerFor creates the Namer configured by layout
func NamerFor(layout *Layout) Namer {
	return NewNamer(layout.IdentifierField())
}

// IdentifierField returns the field the namer reads
func (n Namer) IdentifierField() string { return n.identifierField }

// Derive returns "{identifier}-agreement.{ext}" or "agreement.{ext}".
// The identifier is sanitized first; ext is used without a leading dot.
func (n Namer) Derive(fields FieldSet, ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	suffix := ""
	if ext != "" {
		suffix = "." + ext
	}
	if n.identifierField == "" {
		return DefaultBaseName + suffix
	}
	id := SanitizeNameComponent(fields.Get(n.identifierField).Value())
	if id == "" {
		return DefaultBaseName + suffix
	}
	return id + "-" + DefaultBaseName + suffix
}

func unsafeNameRune(r rune) bool {
	switch r {
	case '<', '>', ':', '"', '/', '\\', '|', '?', '*', '\'', '`':
		return true
	}
	return unicode.IsControl(r)
}

// SanitizeNameComponent makes s safe for a filename and a Content-Disposition header.
// Unsafe runes become '_', leading dots and surrounding space or '_' are trimmed,
// and the result is capped at MaxNameComponentRunes runes.
func SanitizeNameComponent(s string) string {
	s = norm.NFC.String(s)
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "_")
	}
	s = strings.Map(func(r rune) rune {
		if unsafeNameRune(r) {
			return '_'
		}
		return r
	}, s)
	s = strings.TrimLeft(s, ". _")
	s = strings.TrimRight(s, " _")

	if utf8.RuneCountInString(s) > MaxNameComponentRunes {
		runes := []rune(s)
		s = strings.TrimRight(string(runes[:MaxNameComponentRunes]), " _")
	}

	if strings.Trim(s, "._ ") == "" {
		return ""
	}
	return s
}
