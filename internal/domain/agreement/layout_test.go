package agreement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLayout(t *testing.T) {
	l := DefaultLayout()

	assert.Equal(t, DefaultLayoutName, l.Name())
	assert.Equal(t, "sample_agreement.png", l.Template())
	assert.Equal(t, "font.ttf", l.Font())
	assert.Equal(t, 30.0, l.FontSize())
	assert.Equal(t, "v8", l.IdentifierField())
	assert.Equal(t, []string{
		"agreement_number", "agreement_date",
		"name", "nationality", "phone", "citizen", "passport",
		"v1", "v2", "v3", "v4", "v5", "v6", "v7", "v8",
	}, l.FieldIDs())

	tests := []struct {
		id   string
		x, y int
	}{
		{"agreement_number", 320, 320},
		{"agreement_date", 1065, 330},
		{"name", 466, 422},
		{"passport", 466, 601},
		{"v1", 466, 718},
		{"v8", 466, 1053},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			e, ok := l.Lookup(tt.id)
			require.True(t, ok)
			assert.Equal(t, tt.x, e.X)
			assert.Equal(t, tt.y, e.Y)
			assert.Equal(t, Black, e.Color)
			assert.Equal(t, 30.0, l.SizeOf(e))
		})
	}

	assert.Equal(t, []float64{30}, l.Sizes())
}

func TestLayout_LookupUnknown(t *testing.T) {
	_, ok := DefaultLayout().Lookup("signature")
	assert.False(t, ok)
}

func TestLayout_EntriesIsCopy(t *testing.T) {
	l := DefaultLayout()
	entries := l.Entries()
	entries[0].X = 9999

	e, _ := l.Lookup("agreement_number")
	assert.Equal(t, 320, e.X)
}

func TestNewLayout_Validation(t *testing.T) {
	entry := LayoutEntry{FieldID: "a", X: 1, Y: 1}

	tests := []struct {
		name string
		spec LayoutSpec
	}{
		{"missing name", LayoutSpec{Entries: []LayoutEntry{entry}}},
		{"no entries", LayoutSpec{Name: "x"}},
		{"negative font size", LayoutSpec{Name: "x", FontSize: -1, Entries: []LayoutEntry{entry}}},
		{"empty field id", LayoutSpec{Name: "x", Entries: []LayoutEntry{{FieldID: " "}}}},
		{"duplicate field id", LayoutSpec{Name: "x", Entries: []LayoutEntry{entry, entry}}},
		{"negative position", LayoutSpec{Name: "x", Entries: []LayoutEntry{{FieldID: "a", X: -1}}}},
		{"negative entry size", LayoutSpec{Name: "x", Entries: []LayoutEntry{{FieldID: "a", Size: -2}}}},
		{"unknown identifier", LayoutSpec{Name: "x", IdentifierField: "b", Entries: []LayoutEntry{entry}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLayout(tt.spec)
			assert.Nil(t, l)
			require.Error(t, err)
			assert.Equal(t, ErrCodeInvalidLayout, CodeOf(err))
		})
	}
}

func TestNewLayout_DefaultsAndOverrides(t *testing.T) {
	l, err := NewLayout(LayoutSpec{
		Name: "receipt",
		Entries: []LayoutEntry{
			{FieldID: "title", X: 10, Y: 10, Size: 48},
			{FieldID: "body", X: 10, Y: 80},
			{FieldID: "footer", X: 10, Y: 200, Size: 48},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, DefaultFontSize, l.FontSize())
	assert.Equal(t, "", l.IdentifierField())
	assert.Equal(t, []float64{48, DefaultFontSize}, l.Sizes())
}

func TestLayout_WithAssets(t *testing.T) {
	base := DefaultLayout()
	l := base.WithAssets("v2.png", "")

	assert.Equal(t, "v2.png", l.Template())
	assert.Equal(t, "font.ttf", l.Font())
	assert.Equal(t, "sample_agreement.png", base.Template())
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#1a2B3c")
	require.NoError(t, err)
	assert.Equal(t, RGB{R: 0x1a, G: 0x2b, B: 0x3c}, c)
	assert.Equal(t, "#1a2b3c", c.Hex())

	c, err = ParseHexColor("000000")
	require.NoError(t, err)
	assert.Equal(t, Black, c)
	assert.Equal(t, uint8(0xff), c.RGBA().A)

	for _, bad := range []string{"", "#fff", "#gggggg", "#12345678"} {
		_, err := ParseHexColor(bad)
		assert.Error(t, err, bad)
	}
}
