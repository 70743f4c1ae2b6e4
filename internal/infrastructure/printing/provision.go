package printing

import (
	"context"
	"fmt"
	"os"

	"github.com/hotelagreement/backend/internal/domain/agreement"
)

// Asset kinds reported by CheckAssets
const (
	AssetKindTemplate = "template"
	AssetKindFont     = "font"
)

// MissingAsset names an asset a layout needs but the source lacks
type MissingAsset struct {
	Layout string
	Kind   string
	Name   string
}

func (m MissingAsset) String() string {
	return fmt.Sprintf("%s %q (layout %s)", m.Kind, m.Name, m.Layout)
}

// CheckAssets reports, in layout order, every template and font referenced
// by layouts that the source does not have. Lookup errors other than absence are returned.
func CheckAssets(ctx context.Context, assets AssetSource, layouts []*agreement.Layout) ([]MissingAsset, error) {
	var missing []MissingAsset
	for _, l := range layouts {
		for _, want := range []struct{ kind, name string }{
			{AssetKindTemplate, l.Template()},
			{AssetKindFont, l.Font()},
		} {
			ok, err := assets.Exists(ctx, want.name)
			if err != nil {
				return nil, fmt.Errorf("checking %s %s: %w", want.kind, want.name, err)
			}
			if !ok {
				missing = append(missing, MissingAsset{Layout: l.Name(), Kind: want.kind, Name: want.name})
			}
		}
	}
	return missing, nil
}

// EnsureDirs creates each non-empty directory with its parents
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
