package agreement

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"time"

	domain "github.com/hotelagreement/backend/internal/domain/agreement"
	infra "github.com/hotelagreement/backend/internal/infrastructure/printing"
	"github.com/hotelagreement/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// LayoutProvider looks up layouts by name
type LayoutProvider interface {
	Get(name string) (*domain.Layout, error)
	All() []*domain.Layout
	DefaultName() string
}

// TemplateSource checks and decodes template images
type TemplateSource interface {
	Check(ctx context.Context, name string) error
	Load(ctx context.Context, name string) (image.Image, error)
}

// FontSource checks and resolves font assets
type FontSource interface {
	Check(ctx context.Context, name string) error
	ResolveSizes(ctx context.Context, name string, sizes ...float64) (infra.Faces, error)
}

// ServiceDeps holds the collaborators of Service
type ServiceDeps struct {
	Layouts   LayoutProvider
	Templates TemplateSource
	Fonts     FontSource
	Renderer  infra.Renderer
	Exporter  infra.Exporter
	Storage   infra.OutputStorage
	Metrics   *telemetry.AgreementMetrics
	Logger    *zap.Logger
}

// Service runs the agreement pipeline:
// validate assets, render fields onto the template, export to a unique location.
type Service struct {
	layouts   LayoutProvider
	templates TemplateSource
	fonts     FontSource
	renderer  infra.Renderer
	exporter  infra.Exporter
	storage   infra.OutputStorage
	metrics   *telemetry.AgreementMetrics
	logger    *zap.Logger
}

// NewService creates a new Service
func NewService(deps ServiceDeps) (*Service, error) {
	switch {
	case deps.Layouts == nil:
		return nil, errors.New("agreement service: layouts are required")
	case deps.Templates == nil:
		return nil, errors.New("agreement service: template source is required")
	case deps.Fonts == nil:
		return nil, errors.New("agreement service: font source is required")
	case deps.Renderer == nil:
		return nil, errors.New("agreement service: renderer is required")
	case deps.Exporter == nil:
		return nil, errors.New("agreement service: exporter is required")
	case deps.Storage == nil:
		return nil, errors.New("agreement service: output storage is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		layouts:   deps.Layouts,
		templates: deps.Templates,
		fonts:     deps.Fonts,
		renderer:  deps.Renderer,
		exporter:  deps.Exporter,
		storage:   deps.Storage,
		metrics:   deps.Metrics,
		logger:    logger,
	}, nil
}

// Generate renders the requested fields and exports the document.
// The returned Path must be released with Release once delivered.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	start := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "agreement", "generate")
	defer span.End()

	layoutName := req.Layout
	if layoutName == "" {
		layoutName = s.layouts.DefaultName()
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrLayout, layoutName,
		telemetry.SpanAttrFormat, req.Format,
		telemetry.SpanAttrFieldCount, len(req.Fields),
	)

	result, err := s.generate(ctx, req, layoutName)
	duration := time.Since(start)
	if err != nil {
		code := domain.CodeOf(err)
		if code == "" {
			code = "INTERNAL"
		}
		telemetry.SetAttribute(span, telemetry.SpanAttrErrorCode, code)
		telemetry.RecordError(span, err)
		s.metrics.RecordGenerated(ctx, layoutName, req.Format, code, duration)

		log := s.logger.With(
			zap.String("layout", layoutName),
			zap.String("code", code),
			zap.Error(err),
		)
		if domain.IsResourceNotFound(err) {
			log.Warn("agreement generation rejected")
		} else {
			log.Error("agreement generation failed")
		}
		return nil, err
	}

	result.Duration = duration
	telemetry.SetAttributes(span,
		telemetry.SpanAttrFilename, result.Filename,
		telemetry.SpanAttrSizeBytes, result.Size,
		telemetry.SpanAttrDrawn, result.Drawn,
	)
	telemetry.SetOK(span)
	s.metrics.RecordGenerated(ctx, layoutName, req.Format, "", duration)

	s.logger.Info("agreement generated",
		zap.String("layout", layoutName),
		zap.String("path", result.Path),
		zap.String("filename", result.Filename),
		zap.Int64("size", result.Size),
		zap.Int("drawn", result.Drawn),
		zap.Duration("duration", duration))

	return result, nil
}

func (s *Service) generate(ctx context.Context, req GenerateRequest, layoutName string) (*GenerateResult, error) {
	format, err := domain.ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}

	layout, err := s.validate(ctx, layoutName, req.Template, req.Font)
	if err != nil {
		return nil, err
	}

	fields := domain.Normalize(req.Fields, layout)

	canvas, err := s.render(ctx, layout, fields)
	if err != nil {
		return nil, err
	}

	alloc, exported, err := s.export(ctx, canvas, format)
	if err != nil {
		return nil, err
	}

	return &GenerateResult{
		Path:      alloc.Path,
		Filename:  domain.NamerFor(layout).Derive(fields, format.Extension()),
		MediaType: format.MediaType(),
		Size:      exported.Size,
		Layout:    layout.Name(),
		Drawn:     len(fields.Drawable()),
	}, nil
}

// validate resolves the layout and checks the template, then the font, exist.
// Nothing is decoded or drawn before both checks pass.
func (s *Service) validate(ctx context.Context, layoutName, template, font string) (*domain.Layout, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "agreement", "validate")
	defer span.End()
	defer s.stageTimer(ctx, "validate")()

	layout, err := s.layouts.Get(layoutName)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	layout = layout.WithAssets(template, font)

	telemetry.SetAttributes(span,
		telemetry.SpanAttrTemplate, layout.Template(),
		telemetry.SpanAttrFont, layout.Font(),
	)

	if err := s.templates.Check(ctx, layout.Template()); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.fonts.Check(ctx, layout.Font()); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	return layout, nil
}

// render decodes the template, resolves one face per size and draws the fields
func (s *Service) render(ctx context.Context, layout *domain.Layout, fields domain.FieldSet) (*image.RGBA, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "agreement", "render")
	defer span.End()
	defer s.stageTimer(ctx, "render")()

	tmpl, err := s.templates.Load(ctx, layout.Template())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	faces, err := s.fonts.ResolveSizes(ctx, layout.Font(), layout.Sizes()...)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	defer func() {
		if cerr := faces.Close(); cerr != nil {
			s.logger.Debug("closing font faces", zap.Error(cerr))
		}
	}()

	var canvas *image.RGBA
	telemetry.WithProfilingLabels(ctx, map[string]string{
		"layout": layout.Name(),
		"stage":  "render",
	}, func(ctx context.Context) {
		canvas, err = s.renderer.Render(ctx, tmpl, fields, layout, faces)
	})
	if err != nil {
		if !domain.IsRenderFailure(err) {
			err = domain.NewRenderFailure("failed to render agreement", err)
		}
		telemetry.RecordError(span, err)
		return nil, err
	}

	return canvas, nil
}

// export writes the canvas to a freshly allocated location.
// A failed export releases the location.
func (s *Service) export(ctx context.Context, canvas image.Image, format domain.DocumentFormat) (*infra.Allocation, *infra.ExportResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "agreement", "export",
		telemetry.WithAttribute(telemetry.SpanAttrFormat, format.String()))
	defer span.End()
	defer s.stageTimer(ctx, "export")()

	alloc, err := s.storage.Allocate(ctx, format)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, nil, domain.NewExportFailure("failed to allocate output", err)
	}

	result, err := s.exporter.Export(ctx, canvas, format, alloc.FullPath)
	if err != nil {
		if !domain.IsExportFailure(err) {
			err = domain.NewExportFailure("failed to export agreement", err)
		}
		telemetry.RecordError(span, err)
		if derr := s.storage.Delete(context.WithoutCancel(ctx), alloc.Path); derr != nil {
			s.logger.Warn("failed to release output after export failure",
				zap.String("path", alloc.Path), zap.Error(derr))
		}
		return nil, nil, err
	}

	s.metrics.RecordDocumentSize(ctx, format.String(), result.Size)
	return alloc, result, nil
}

func (s *Service) stageTimer(ctx context.Context, stage string) func() {
	start := time.Now()
	return func() {
		s.metrics.RecordStage(ctx, stage, time.Since(start))
	}
}

// Open returns a reader over a generated document
func (s *Service) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return s.storage.Get(ctx, path)
}

// Release removes a delivered document from output storage
func (s *Service) Release(ctx context.Context, path string) error {
	if err := s.storage.Delete(ctx, path); err != nil {
		return fmt.Errorf("failed to release %s: %w", path, err)
	}
	return nil
}

// Cleanup removes undelivered documents older than age
func (s *Service) Cleanup(ctx context.Context, age time.Duration) (int, error) {
	removed, err := s.storage.CleanupOlderThan(ctx, age)
	s.metrics.RecordCleanup(ctx, removed)
	if err != nil {
		return removed, fmt.Errorf("failed to clean up outputs: %w", err)
	}
	return removed, nil
}

// RunCleanup calls Cleanup every interval until ctx is done
func (s *Service) RunCleanup(ctx context.Context, interval, age time.Duration) {
	if interval <= 0 || age <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Cleanup(ctx, age); err != nil {
				s.logger.Warn("document cleanup failed", zap.Error(err))
			}
		}
	}
}

// Layouts lists the available layouts, default first then by name
func (s *Service) Layouts() []LayoutResponse {
	all := s.layouts.All()
	defaultName := s.layouts.DefaultName()

	out := make([]LayoutResponse, 0, len(all))
	for _, l := range all {
		resp := toLayoutResponse(l)
		resp.Default = l.Name() == defaultName
		if resp.Default {
			out = append([]LayoutResponse{resp}, out...)
			continue
		}
		out = append(out, resp)
	}
	return out
}

// Layout returns one layout by name; empty selects the default
func (s *Service) Layout(name string) (*LayoutResponse, error) {
	if name == "" {
		name = s.layouts.DefaultName()
	}
	l, err := s.layouts.Get(name)
	if err != nil {
		return nil, err
	}
	resp := toLayoutResponse(l)
	resp.Default = l.Name() == s.layouts.DefaultName()
	return &resp, nil
}

func toLayoutResponse(l *domain.Layout) LayoutResponse {
	entries := l.Entries()
	fields := make([]FieldLayout, len(entries))
	for i, e := range entries {
		fields[i] = FieldLayout{
			ID:    e.FieldID,
			X:     e.X,
			Y:     e.Y,
			Color: e.Color.Hex(),
			Size:  l.SizeOf(e),
		}
	}
	return LayoutResponse{
		Name:            l.Name(),
		Template:        l.Template(),
		Font:            l.Font(),
		FontSize:        l.FontSize(),
		IdentifierField: l.IdentifierField(),
		Fields:          fields,
	}
}
