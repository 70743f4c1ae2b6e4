package printing

import (
	"context"
	"fmt"
	"image"
	"image/draw"

	"github.com/hotelagreement/backend/internal/domain/agreement"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Renderer draws a field set onto a copy of a template
type Renderer interface {
	// Render returns a new canvas with the drawable fields drawn at their layout positions
	Render(ctx context.Context, tmpl image.Image, fields agreement.FieldSet, layout *agreement.Layout, faces Faces) (*image.RGBA, error)
}

// CanvasRenderer is the font.Drawer based Renderer
type CanvasRenderer struct {
	logger *zap.Logger
}

// NewCanvasRenderer creates a new canvas renderer
func NewCanvasRenderer(logger *zap.Logger) *CanvasRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CanvasRenderer{logger: logger}
}

// Render copies tmpl into a fresh canvas of the same bounds and draws every
// non-empty field bound by layout. (x, y) of an entry is the top-left of the
// text line. Fields without a layout entry are skipped.
func (r *CanvasRenderer) Render(
	ctx context.Context,
	tmpl image.Image,
	fields agreement.FieldSet,
	layout *agreement.Layout,
	faces Faces,
) (canvas *image.RGBA, err error) {
	if tmpl == nil {
		return nil, agreement.NewRenderFailure("template image is nil", nil)
	}
	if layout == nil {
		return nil, agreement.NewRenderFailure("layout is nil", nil)
	}

	defer func() {
		if p := recover(); p != nil {
			canvas = nil
			err = agreement.NewRenderFailure("failed to draw text", fmt.Errorf("panic: %v", p))
		}
	}()

	b := tmpl.Bounds()
	canvas = image.NewRGBA(b)
	draw.Draw(canvas, b, tmpl, b.Min, draw.Src)

	drawn := 0
	for _, f := range fields {
		if !f.Text.Drawable() {
			continue
		}
		entry, ok := layout.Lookup(f.FieldID)
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		face := faces.For(layout.SizeOf(entry))
		d := &font.Drawer{
			Dst:  canvas,
			Src:  image.NewUniform(entry.Color.RGBA()),
			Face: face,
			Dot: fixed.Point26_6{
				X: fixed.I(b.Min.X + entry.X),
				Y: fixed.I(b.Min.Y+entry.Y) + face.Metrics().Ascent,
			},
		}
		d.DrawString(f.Text.Value())
		drawn++
	}

	r.logger.Debug("canvas rendered",
		zap.String("layout", layout.Name()),
		zap.Int("width", b.Dx()),
		zap.Int("height", b.Dy()),
		zap.Int("fields_drawn", drawn))

	return canvas, nil
}

// Ensure CanvasRenderer implements Renderer
var _ Renderer = (*CanvasRenderer)(nil)
