package printing

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/hotelagreement/backend/internal/domain/agreement"
	"go.uber.org/zap"
)

// DefaultExportDPI is the raster resolution the PDF page size is derived from
const DefaultExportDPI = 100.0

// documentEpoch is stamped as creation and modification date so repeated exports match byte for byte
var documentEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Exporter serializes a canvas into a document file
type Exporter interface {
	// Export writes canvas to destination in format, replacing any existing file
	Export(ctx context.Context, canvas image.Image, format agreement.DocumentFormat, destination string) (*ExportResult, error)
}

// ExportResult describes a written document
type ExportResult struct {
	Path     string
	Size     int64
	Duration time.Duration
}

// DocumentExporterConfig contains configuration for the document exporter
type DocumentExporterConfig struct {
	// DPI maps canvas pixels to PDF points (points = pixels * 72 / DPI)
	// Default: 100
	DPI float64
	// Title is written to the PDF info dictionary when set
	Title string
	// Logger for operations
	Logger *zap.Logger
}

// DocumentExporter exports canvases as single-page PDF or PNG files
type DocumentExporter struct {
	config *DocumentExporterConfig
	logger *zap.Logger
}

// NewDocumentExporter creates a new document exporter
func NewDocumentExporter(config *DocumentExporterConfig) *DocumentExporter {
	if config == nil {
		config = &DocumentExporterConfig{}
	}
	if config.DPI <= 0 {
		config.DPI = DefaultExportDPI
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &DocumentExporter{
		config: config,
		logger: logger,
	}
}

// Export encodes canvas and writes it to destination.
// The document is written to a sibling temp file first and renamed into place,
// so destination never holds a partial document.
func (e *DocumentExporter) Export(
	ctx context.Context,
	canvas image.Image,
	format agreement.DocumentFormat,
	destination string,
) (*ExportResult, error) {
	start := time.Now()

	if !format.IsValid() {
		return nil, agreement.NewError(agreement.ErrCodeUnsupportedFormat,
			fmt.Sprintf("unsupported document format: %s", format), nil)
	}
	if canvas == nil {
		return nil, agreement.NewExportFailure("canvas is nil", nil)
	}
	if destination == "" {
		return nil, agreement.NewExportFailure("destination is required", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, agreement.NewExportFailure("operation cancelled", err)
	}

	var buf bytes.Buffer
	if err := e.Encode(&buf, canvas, format); err != nil {
		return nil, err
	}

	if err := writeFileAtomic(destination, buf.Bytes()); err != nil {
		return nil, agreement.NewExportFailure("failed to write document", err)
	}

	result := &ExportResult{
		Path:     destination,
		Size:     int64(buf.Len()),
		Duration: time.Since(start),
	}

	e.logger.Debug("document exported",
		zap.String("path", destination),
		zap.String("format", format.String()),
		zap.Int64("size", result.Size),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// Encode serializes canvas to w without touching the file system
func (e *DocumentExporter) Encode(w io.Writer, canvas image.Image, format agreement.DocumentFormat) error {
	switch format {
	case agreement.FormatPNG:
		if err := png.Encode(w, canvas); err != nil {
			return agreement.NewExportFailure("failed to encode PNG", err)
		}
		return nil
	case agreement.FormatPDF:
		return e.encodePDF(w, canvas)
	default:
		return agreement.NewError(agreement.ErrCodeUnsupportedFormat,
			fmt.Sprintf("unsupported document format: %s", format), nil)
	}
}

// PageSize returns the PDF page size in points for a canvas of the given pixel bounds
func (e *DocumentExporter) PageSize(bounds image.Rectangle) fpdf.SizeType {
	return fpdf.SizeType{
		Wd: float64(bounds.Dx()) * 72 / e.config.DPI,
		Ht: float64(bounds.Dy()) * 72 / e.config.DPI,
	}
}

// encodePDF embeds the canvas as a lossless image covering a single page
func (e *DocumentExporter) encodePDF(w io.Writer, canvas image.Image) error {
	var raster bytes.Buffer
	if err := png.Encode(&raster, canvas); err != nil {
		return agreement.NewExportFailure("failed to encode page image", err)
	}

	size := e.PageSize(canvas.Bounds())
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           size,
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreationDate(documentEpoch)
	pdf.SetModificationDate(documentEpoch)
	pdf.SetCatalogSort(true)
	if e.config.Title != "" {
		pdf.SetTitle(e.config.Title, true)
	}
	pdf.AddPageFormat("P", size)

	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("canvas", opts, &raster)
	pdf.ImageOptions("canvas", 0, 0, size.Wd, size.Ht, false, opts, 0, "")

	if err := pdf.Error(); err != nil {
		return agreement.NewExportFailure("failed to build PDF", err)
	}
	if err := pdf.Output(w); err != nil {
		return agreement.NewExportFailure("failed to write PDF", err)
	}
	return nil
}

// writeFileAtomic writes data to a unique temp file beside path, syncs it and renames it over path
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp := path + ".tmp-" + uuid.NewString()
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Ensure DocumentExporter implements Exporter
var _ Exporter = (*DocumentExporter)(nil)
