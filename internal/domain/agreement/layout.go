package agreement

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// DefaultFontSize is the point size used when neither the layout nor the entry overrides it
const DefaultFontSize = 30.0

// DefaultLayoutName is the name of the built-in hotel agreement layout
const DefaultLayoutName = "hotel_agreement"

// RGB is an opaque text color
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Black is the color every field uses in the built-in layout
var Black = RGB{}

// ParseHexColor parses "#rrggbb" or "rrggbb"
func ParseHexColor(s string) (RGB, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return RGB{}, NewError(ErrCodeInvalidLayout, fmt.Sprintf("invalid color %q", s), nil)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, NewError(ErrCodeInvalidLayout, fmt.Sprintf("invalid color %q", s), err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Hex returns the "#rrggbb" form of the color
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RGBA converts to an opaque image/color value
func (c RGB) RGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// LayoutEntry binds a field identifier to its draw position on the template
type LayoutEntry struct {
	FieldID string
	X       int
	Y       int
	Color   RGB
	// Size overrides the layout font size when positive
	Size float64
}

// Layout is the ordered, static binding of field identifiers to template positions.
// A Layout is immutable after construction and safe for concurrent use.
type Layout struct {
	name            string
	template        string
	font            string
	fontSize        float64
	identifierField string
	entries         []LayoutEntry
	index           map[string]int
}

// LayoutSpec carries the raw definition a Layout is built from
type LayoutSpec struct {
	Name            string
	Template        string // template asset name
	Font            string // font asset name
	FontSize        float64
	IdentifierField string
	Entries         []LayoutEntry
}

// NewLayout validates spec and builds a Layout
func NewLayout(spec LayoutSpec) (*Layout, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return nil, NewError(ErrCodeInvalidLayout, "layout name is required", nil)
	}
	if len(spec.Entries) == 0 {
		return nil, NewError(ErrCodeInvalidLayout, fmt.Sprintf("layout %q has no entries", name), nil)
	}
	if spec.FontSize < 0 {
		return nil, NewError(ErrCodeInvalidLayout, fmt.Sprintf("layout %q has a negative font size", name), nil)
	}

	l := &Layout{
		name:            name,
		template:        strings.TrimSpace(spec.Template),
		font:            strings.TrimSpace(spec.Font),
		fontSize:        spec.FontSize,
		identifierField: strings.TrimSpace(spec.IdentifierField),
		entries:         make([]LayoutEntry, 0, len(spec.Entries)),
		index:           make(map[string]int, len(spec.Entries)),
	}
	if l.fontSize == 0 {
		l.fontSize = DefaultFontSize
	}

	for _, e := range spec.Entries {
		e.FieldID = strings.TrimSpace(e.FieldID)
		if e.FieldID == "" {
			return nil, NewError(ErrCodeInvalidLayout, fmt.Sprintf("layout %q has an entry without field id", name), nil)
		}
		if _, dup := l.index[e.FieldID]; dup {
			return nil, NewError(ErrCodeInvalidLayout,
				fmt.Sprintf("layout %q binds field %q more than once", name, e.FieldID), nil)
		}
		if e.X < 0 || e.Y < 0 {
			return nil, NewError(ErrCodeInvalidLayout,
				fmt.Sprintf("layout %q places field %q at a negative position", name, e.FieldID), nil)
		}
		if e.Size < 0 {
			return nil, NewError(ErrCodeInvalidLayout,
				fmt.Sprintf("layout %q gives field %q a negative size", name, e.FieldID), nil)
		}
		l.index[e.FieldID] = len(l.entries)
		l.entries = append(l.entries, e)
	}

	if l.identifierField != "" {
		if _, ok := l.index[l.identifierField]; !ok {
			return nil, NewError(ErrCodeInvalidLayout,
				fmt.Sprintf("layout %q names unknown identifier field %q", name, l.identifierField), nil)
		}
	}

	return l, nil
}

// Name returns the layout name
func (l *Layout) Name() string { return l.name }

// Template returns the template asset name
func (l *Layout) Template() string { return l.template }

// Font returns the font asset name
func (l *Layout) Font() string { return l.font }

// FontSize returns the default point size for entries without an override
func (l *Layout) FontSize() float64 { return l.fontSize }

// IdentifierField returns the field used to derive output filenames, "" if none
func (l *Layout) IdentifierField() string { return l.identifierField }

// Lookup returns the entry bound to fieldID
func (l *Layout) Lookup(fieldID string) (LayoutEntry, bool) {
	i, ok := l.index[fieldID]
	if !ok {
		return LayoutEntry{}, false
	}
	return l.entries[i], true
}

// Entries returns a copy of the entries in declared order
func (l *Layout) Entries() []LayoutEntry {
	out := make([]LayoutEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// FieldIDs returns the field identifiers in declared order
func (l *Layout) FieldIDs() []string {
	ids := make([]string, len(l.entries))
	for i, e := range l.entries {
		ids[i] = e.FieldID
	}
	return ids
}

// SizeOf returns the effective point size of an entry
func (l *Layout) SizeOf(e LayoutEntry) float64 {
	if e.Size > 0 {
		return e.Size
	}
	return l.fontSize
}

// Sizes returns the distinct effective point sizes used by the layout, in first-use order
func (l *Layout) Sizes() []float64 {
	seen := make(map[float64]struct{})
	var sizes []float64
	for _, e := range l.entries {
		s := l.SizeOf(e)
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		sizes = append(sizes, s)
	}
	return sizes
}

// WithAssets returns a copy of the layout bound to other template and font assets
func (l *Layout) WithAssets(template, font string) *Layout {
	cp := *l
	if template != "" {
		cp.template = template
	}
	if font != "" {
		cp.font = font
	}
	return &cp
}

// DefaultLayout returns the built-in hotel agreement layout.
// It binds to assets named "sample_agreement.png" and "font.ttf".
func DefaultLayout() *Layout {
	at := func(id string, x, y int) LayoutEntry {
		return LayoutEntry{FieldID: id, X: x, Y: y, Color: Black}
	}
	l, err := NewLayout(LayoutSpec{
		Name:            DefaultLayoutName,
		Template:        "sample_agreement.png",
		Font:            "font.ttf",
		FontSize:        DefaultFontSize,
		IdentifierField: "v8",
		Entries: []LayoutEntry{
			// header
			at("agreement_number", 320, 320),
			at("agreement_date", 1065, 330),
			// guest identity
			at("name", 466, 422),
			at("nationality", 466, 472),
			at("phone", 466, 513),
			at("citizen", 466, 558),
			at("passport", 466, 601),
			// values
			at("v1", 466, 718),
			at("v2", 466, 768),
			at("v3", 466, 815),
			at("v4", 466, 860),
			at("v5", 466, 910),
			at("v6", 466, 960),
			at("v7", 466, 1007),
			at("v8", 466, 1053),
		},
	})
	if err != nil {
		panic(err)
	}
	return l
}
