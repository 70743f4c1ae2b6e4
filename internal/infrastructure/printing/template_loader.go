package printing

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/hotelagreement/backend/internal/domain/agreement"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// TemplateLoader checks and decodes template images
type TemplateLoader struct {
	assets AssetSource
}

// NewTemplateLoader creates a new template loader
func NewTemplateLoader(assets AssetSource) *TemplateLoader {
	return &TemplateLoader{assets: assets}
}

// Check fails with ResourceNotFound when the template asset is absent.
// A source that cannot answer yields a RenderFailure.
func (l *TemplateLoader) Check(ctx context.Context, name string) error {
	ok, err := l.assets.Exists(ctx, name)
	if err != nil {
		return agreement.NewRenderFailure(fmt.Sprintf("failed to check template %s", name), err)
	}
	if !ok {
		return agreement.NewResourceNotFound(fmt.Sprintf("Sample agreement image not found: %s", name), nil)
	}
	return nil
}

// Load reads and decodes the template. The returned image is never drawn onto.
func (l *TemplateLoader) Load(ctx context.Context, name string) (image.Image, error) {
	data, err := readAsset(ctx, l.assets, name)
	if err != nil {
		if agreement.IsResourceNotFound(err) {
			return nil, agreement.NewResourceNotFound(fmt.Sprintf("Sample agreement image not found: %s", name), err)
		}
		return nil, agreement.NewRenderFailure("failed to read template", err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, agreement.NewRenderFailure(fmt.Sprintf("failed to decode template %s", name), err)
	}
	if b := img.Bounds(); b.Empty() {
		return nil, agreement.NewRenderFailure(fmt.Sprintf("template %s (%s) has no pixels", name, format), nil)
	}
	return img, nil
}
