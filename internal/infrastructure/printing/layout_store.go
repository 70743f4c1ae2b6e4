package printing

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/hotelagreement/backend/internal/domain/agreement"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// layoutFile is the on-disk layout definition
type layoutFile struct {
	Name            string       `yaml:"name"`
	Template        string       `yaml:"template"`
	Font            string       `yaml:"font"`
	FontSize        float64      `yaml:"font_size"`
	Color           string       `yaml:"color"`
	IdentifierField string       `yaml:"identifier_field"`
	Fields          []fieldEntry `yaml:"fields"`
}

type fieldEntry struct {
	ID    string  `yaml:"id"`
	X     int     `yaml:"x"`
	Y     int     `yaml:"y"`
	Color string  `yaml:"color"`
	Size  float64 `yaml:"size"`
}

// ParseLayout decodes a YAML (or JSON) layout definition
func ParseLayout(data []byte) (*agreement.Layout, error) {
	var lf layoutFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, agreement.NewError(agreement.ErrCodeInvalidLayout, "failed to parse layout", err)
	}

	defaultColor := agreement.Black
	if lf.Color != "" {
		c, err := agreement.ParseHexColor(lf.Color)
		if err != nil {
			return nil, err
		}
		defaultColor = c
	}

	entries := make([]agreement.LayoutEntry, 0, len(lf.Fields))
	for _, f := range lf.Fields {
		c := defaultColor
		if f.Color != "" {
			parsed, err := agreement.ParseHexColor(f.Color)
			if err != nil {
				return nil, err
			}
			c = parsed
		}
		entries = append(entries, agreement.LayoutEntry{
			FieldID: f.ID,
			X:       f.X,
			Y:       f.Y,
			Color:   c,
			Size:    f.Size,
		})
	}

	return agreement.NewLayout(agreement.LayoutSpec{
		Name:            lf.Name,
		Template:        lf.Template,
		Font:            lf.Font,
		FontSize:        lf.FontSize,
		IdentifierField: lf.IdentifierField,
		Entries:         entries,
	})
}

// LayoutStoreConfig configures the layout store
type LayoutStoreConfig struct {
	// ExternalDir is the directory to load layouts from.
	// Layouts found there replace the built-in layout of the same name.
	ExternalDir string
	// DefaultName is the layout used when a request names none
	// Default: hotel_agreement
	DefaultName string
	// Logger for operations
	Logger *zap.Logger
}

// LayoutStore manages the available layouts.
// It loads layouts from an external directory with fallback to the built-in layout.
type LayoutStore struct {
	config  LayoutStoreConfig
	logger  *zap.Logger
	layouts map[string]*agreement.Layout
	mu      sync.RWMutex
}

// NewLayoutStore creates a new layout store
func NewLayoutStore(config *LayoutStoreConfig) (*LayoutStore, error) {
	store := &LayoutStore{}
	if config != nil {
		store.config = *config
	}
	if store.config.DefaultName == "" {
		store.config.DefaultName = agreement.DefaultLayoutName
	}
	store.logger = store.config.Logger
	if store.logger == nil {
		store.logger = zap.NewNop()
	}

	if err := store.Reload(); err != nil {
		return nil, err
	}
	return store, nil
}

// Reload reloads all layouts from disk on top of the built-in layout
func (s *LayoutStore) Reload() error {
	layouts := map[string]*agreement.Layout{
		agreement.DefaultLayoutName: agreement.DefaultLayout(),
	}

	if s.config.ExternalDir != "" {
		if err := s.loadExternal(layouts); err != nil {
			return err
		}
	}

	if _, ok := layouts[s.config.DefaultName]; !ok {
		return agreement.NewError(agreement.ErrCodeInvalidLayout,
			fmt.Sprintf("default layout %q is not defined", s.config.DefaultName), nil)
	}

	s.mu.Lock()
	s.layouts = layouts
	s.mu.Unlock()

	s.logger.Info("layouts loaded", zap.Int("count", len(layouts)))
	return nil
}

func (s *LayoutStore) loadExternal(layouts map[string]*agreement.Layout) error {
	entries, err := os.ReadDir(s.config.ExternalDir)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Warn("layout directory not found, using built-in layout",
				zap.String("dir", s.config.ExternalDir))
			return nil
		}
		return fmt.Errorf("failed to read layout directory: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".json":
		default:
			continue
		}

		path := filepath.Join(s.config.ExternalDir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read layout %s: %w", path, err)
		}
		l, err := ParseLayout(data)
		if err != nil {
			return fmt.Errorf("failed to load layout %s: %w", path, err)
		}
		layouts[l.Name()] = l
		s.logger.Debug("layout loaded", zap.String("name", l.Name()), zap.String("path", path))
	}
	return nil
}

// Get returns the named layout; "" selects the default layout
func (s *LayoutStore) Get(name string) (*agreement.Layout, error) {
	if name == "" {
		name = s.config.DefaultName
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.layouts[name]
	if !ok {
		return nil, agreement.NewResourceNotFound(fmt.Sprintf("Layout not found: %s", name), nil)
	}
	return l, nil
}

// Default returns the default layout
func (s *LayoutStore) Default() *agreement.Layout {
	l, _ := s.Get("")
	return l
}

// DefaultName returns the name of the default layout
func (s *LayoutStore) DefaultName() string {
	return s.config.DefaultName
}

// All returns all layouts sorted by name
func (s *LayoutStore) All() []*agreement.Layout {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*agreement.Layout, 0, len(s.layouts))
	for _, l := range s.layouts {
		result = append(result, l)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result
}
