package printing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hotelagreement/backend/internal/domain/agreement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLayoutStore(t *testing.T) {
	t.Run("creates store with the built-in layout", func(t *testing.T) {
		store, err := NewLayoutStore(nil)
		require.NoError(t, err)

		all := store.All()
		require.Len(t, all, 1)
		assert.Equal(t, agreement.DefaultLayoutName, all[0].Name())
		assert.Equal(t, agreement.DefaultLayout().Entries(), all[0].Entries())
	})

	t.Run("missing external dir falls back to the built-in layout", func(t *testing.T) {
		store, err := NewLayoutStore(&LayoutStoreConfig{ExternalDir: filepath.Join(t.TempDir(), "nope")})
		require.NoError(t, err)
		assert.NotNil(t, store.Default())
	})

	t.Run("unknown default layout", func(t *testing.T) {
		_, err := NewLayoutStore(&LayoutStoreConfig{DefaultName: "missing"})
		require.Error(t, err)
		assert.Equal(t, agreement.ErrCodeInvalidLayout, agreement.CodeOf(err))
	})
}

func TestParseLayout_SampleMatchesDefaultLayout(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "hotel_agreement.yaml"))
	require.NoError(t, err)

	got, err := ParseLayout(data)
	require.NoError(t, err)
	want := agreement.DefaultLayout()

	assert.Equal(t, want.Name(), got.Name())
	assert.Equal(t, want.Template(), got.Template())
	assert.Equal(t, want.Font(), got.Font())
	assert.Equal(t, want.FontSize(), got.FontSize())
	assert.Equal(t, want.IdentifierField(), got.IdentifierField())
	assert.Equal(t, want.Entries(), got.Entries())
}

func TestLayoutStore_External(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "receipt.yml"), []byte(`
name: receipt
template: receipt.jpg
font: mono.ttf
font_size: 20
color: "#112233"
fields:
  - {id: total, x: 10, y: 20, size: 40}
  - {id: guest, x: 10, y: 80, color: "#ff0000"}
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "override.json"), []byte(
		`{"name": "hotel_agreement", "template": "v2.png", "font": "font.ttf", "fields": [{"id": "name", "x": 1, "y": 2}]}`,
	), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0644))

	store, err := NewLayoutStore(&LayoutStoreConfig{ExternalDir: dir})
	require.NoError(t, err)

	t.Run("lists all layouts by name", func(t *testing.T) {
		all := store.All()
		require.Len(t, all, 2)
		assert.Equal(t, "hotel_agreement", all[0].Name())
		assert.Equal(t, "receipt", all[1].Name())
	})

	t.Run("external layout", func(t *testing.T) {
		l, err := store.Get("receipt")
		require.NoError(t, err)
		assert.Equal(t, "receipt.jpg", l.Template())
		assert.Equal(t, 20.0, l.FontSize())

		total, ok := l.Lookup("total")
		require.True(t, ok)
		assert.Equal(t, 40.0, l.SizeOf(total))
		assert.Equal(t, agreement.RGB{R: 0x11, G: 0x22, B: 0x33}, total.Color)

		guest, ok := l.Lookup("guest")
		require.True(t, ok)
		assert.Equal(t, agreement.RGB{R: 0xff}, guest.Color)
		assert.Equal(t, 20.0, l.SizeOf(guest))
	})

	t.Run("external replaces built-in", func(t *testing.T) {
		l, err := store.Get("")
		require.NoError(t, err)
		assert.Equal(t, "v2.png", l.Template())
		assert.Equal(t, []string{"name"}, l.FieldIDs())
	})

	t.Run("unknown layout", func(t *testing.T) {
		_, err := store.Get("missing")
		require.Error(t, err)
		assert.True(t, agreement.IsResourceNotFound(err))
	})
}

func TestLayoutStore_InvalidExternal(t *testing.T) {
	tests := map[string]string{
		"bad yaml":      "name: [unclosed",
		"bad color":     "name: x\ncolor: red\nfields:\n  - {id: a, x: 1, y: 1}\n",
		"no fields":     "name: x\n",
		"duplicate ids": "name: x\nfields:\n  - {id: a}\n  - {id: a}\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(content), 0644))

			_, err := NewLayoutStore(&LayoutStoreConfig{ExternalDir: dir})
			require.Error(t, err)
			assert.Equal(t, agreement.ErrCodeInvalidLayout, agreement.CodeOf(err))
		})
	}
}
