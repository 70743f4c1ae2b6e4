package agreement

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// FieldText is an optional field value.
// The zero value is absent; a present value may still be empty.
type FieldText struct {
	text string
	set  bool
}

// Absent returns a FieldText that was not provided by the caller
func Absent() FieldText {
	return FieldText{}
}

// Text returns a provided FieldText holding s
func Text(s string) FieldText {
	return FieldText{text: s, set: true}
}

// IsSet reports whether the caller provided the field
func (t FieldText) IsSet() bool { return t.set }

// Value returns the text, "" when absent
func (t FieldText) Value() string { return t.text }

// Drawable reports whether the value should be drawn
func (t FieldText) Drawable() bool { return t.set && t.text != "" }

func (t FieldText) String() string { return t.text }

// FieldValue pairs a layout field with the caller's value
type FieldValue struct {
	FieldID string
	Text    FieldText
}

// FieldSet is the normalized, layout-ordered values of a single request
type FieldSet []FieldValue

// Get returns the value of fieldID, absent if the set does not contain it
func (fs FieldSet) Get(fieldID string) FieldText {
	for _, f := range fs {
		if f.FieldID == fieldID {
			return f.Text
		}
	}
	return Absent()
}

// Drawable returns only the values that will be drawn, preserving order
func (fs FieldSet) Drawable() FieldSet {
	out := make(FieldSet, 0, len(fs))
	for _, f := range fs {
		if f.Text.Drawable() {
			out = append(out, f)
		}
	}
	return out
}

// Normalize builds the FieldSet for layout from raw caller input.
// Every layout field appears exactly once in layout order; a nil or missing
// raw value becomes Absent. Ids unknown to the layout are dropped.
func Normalize(raw map[string]*string, layout *Layout) FieldSet {
	fs := make(FieldSet, 0, len(layout.entries))
	for _, e := range layout.entries {
		v, ok := raw[e.FieldID]
		if !ok || v == nil {
			fs = append(fs, FieldValue{FieldID: e.FieldID, Text: Absent()})
			continue
		}
		fs = append(fs, FieldValue{FieldID: e.FieldID, Text: Text(CleanText(*v))})
	}
	return fs
}

// CleanText returns s in NFC form with control characters removed
func CleanText(s string) string {
	s = norm.NFC.String(s)
	if strings.IndexFunc(s, unicode.IsControl) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
