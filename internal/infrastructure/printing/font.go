package printing

import (
	"context"
	"fmt"

	"github.com/hotelagreement/backend/internal/domain/agreement"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// fontDPI makes one point equal one pixel, so a size of 30 draws 30px text
const fontDPI = 72

// Faces holds one font face per point size
type Faces map[float64]font.Face

// For returns the face for size, or any face when size was not resolved
func (f Faces) For(size float64) font.Face {
	if face, ok := f[size]; ok {
		return face
	}
	for _, face := range f {
		return face
	}
	return basicfont.Face7x13
}

// Close releases every face
func (f Faces) Close() error {
	var firstErr error
	for _, face := range f {
		if err := face.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// FontResolver turns a font asset into faces.
// A missing asset is an error; an asset that cannot be parsed is replaced by a built-in font.
type FontResolver struct {
	assets     AssetSource
	logger     *zap.Logger
	onFallback func(ctx context.Context)
}

// NewFontResolver creates a new font resolver
func NewFontResolver(assets AssetSource, logger *zap.Logger) *FontResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FontResolver{
		assets: assets,
		logger: logger,
	}
}

// OnFallback registers fn to run each time a built-in face replaces the requested font
func (r *FontResolver) OnFallback(fn func(ctx context.Context)) {
	r.onFallback = fn
}

func (r *FontResolver) fellBack(ctx context.Context) {
	if r.onFallback != nil {
		r.onFallback(ctx)
	}
}

// Check fails with ResourceNotFound when the font asset is absent.
// A source that cannot answer yields a RenderFailure.
func (r *FontResolver) Check(ctx context.Context, name string) error {
	ok, err := r.assets.Exists(ctx, name)
	if err != nil {
		return agreement.NewRenderFailure(fmt.Sprintf("failed to check font %s", name), err)
	}
	if !ok {
		return agreement.NewResourceNotFound(fmt.Sprintf("Font file not found: %s", name), nil)
	}
	return nil
}

// ResolveSizes returns one face per requested size, reading and parsing the asset once.
// Only content that is present but unusable falls back to a built-in face.
func (r *FontResolver) ResolveSizes(ctx context.Context, name string, sizes ...float64) (Faces, error) {
	if err := r.Check(ctx, name); err != nil {
		return nil, err
	}
	if len(sizes) == 0 {
		sizes = []float64{agreement.DefaultFontSize}
	}

	data, err := readAsset(ctx, r.assets, name)
	if err != nil {
		if agreement.IsResourceNotFound(err) {
			return nil, agreement.NewResourceNotFound(fmt.Sprintf("Font file not found: %s", name), err)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, agreement.NewRenderFailure(fmt.Sprintf("failed to read font %s", name), err)
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		r.logger.Warn("font parse failed, using fallback",
			zap.String("font", name),
			zap.Error(agreement.NewError(agreement.ErrCodeFontLoadFailed, "invalid font data", err)))
		r.fellBack(ctx)
		return fallbackFaces(sizes), nil
	}

	faces := make(Faces, len(sizes))
	for _, size := range sizes {
		if _, done := faces[size]; done {
			continue
		}
		face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    size,
			DPI:     fontDPI,
			Hinting: font.HintingFull,
		})
		if err != nil {
			r.logger.Warn("font face creation failed, using fallback",
				zap.String("font", name),
				zap.Float64("size", size),
				zap.Error(agreement.NewError(agreement.ErrCodeFontLoadFailed, "invalid font size", err)))
			face = fallbackFace(size)
			r.fellBack(ctx)
		}
		faces[size] = face
	}

	return faces, nil
}

func fallbackFaces(sizes []float64) Faces {
	faces := make(Faces, len(sizes))
	for _, size := range sizes {
		if _, done := faces[size]; !done {
			faces[size] = fallbackFace(size)
		}
	}
	return faces
}

// fallbackFace returns Go Regular at size, or the fixed 7x13 bitmap font if that fails
func fallbackFace(size float64) font.Face {
	parsed, err := opentype.Parse(goregular.TTF)
	if err == nil && size > 0 {
		face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
			Size:    size,
			DPI:     fontDPI,
			Hinting: font.HintingFull,
		})
		if err == nil {
			return face
		}
	}
	return basicfont.Face7x13
}
