package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Outcome labels for generated documents.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// AgreementMetrics records document generation activity.
type AgreementMetrics struct {
	logger *zap.Logger

	generatedTotal *Counter
	duration       *Histogram
	stageDuration  *Histogram
	documentBytes  *Histogram
	fontFallbacks  *Counter
	cleanedTotal   *Counter
}

// AgreementMetricsConfig holds configuration for agreement metrics.
type AgreementMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewAgreementMetrics creates the agreement instruments on the given meter.
func NewAgreementMetrics(cfg AgreementMetricsConfig) (*AgreementMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	am := &AgreementMetrics{logger: logger}

	var err error
	am.generatedTotal, err = NewCounter(cfg.Meter,
		"agreement_generated_total",
		"Total number of agreement generation attempts",
		"{documents}",
	)
	if err != nil {
		return nil, err
	}

	am.duration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "agreement_generate_duration_seconds",
		Description: "End-to-end agreement generation duration",
		Unit:        "s",
		Boundaries:  RenderDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	am.stageDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "agreement_stage_duration_seconds",
		Description: "Duration of each generation stage",
		Unit:        "s",
		Boundaries:  RenderDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	am.documentBytes, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "agreement_document_size_bytes",
		Description: "Size of exported agreement documents",
		Unit:        "By",
		Boundaries:  DocumentSizeBuckets,
	})
	if err != nil {
		return nil, err
	}

	am.fontFallbacks, err = NewCounter(cfg.Meter,
		"agreement_font_fallback_total",
		"Number of times a built-in font replaced the configured one",
		"{fallbacks}",
	)
	if err != nil {
		return nil, err
	}

	am.cleanedTotal, err = NewCounter(cfg.Meter,
		"agreement_outputs_cleaned_total",
		"Number of expired output files removed",
		"{files}",
	)
	if err != nil {
		return nil, err
	}

	return am, nil
}

// RecordGenerated records one generation attempt.
// code is empty on success.
func (am *AgreementMetrics) RecordGenerated(ctx context.Context, layout, format, code string, d time.Duration) {
	if am == nil {
		return
	}
	outcome := OutcomeSuccess
	attrs := []attribute.KeyValue{
		AttrLayout.String(layout),
		AttrFormat.String(format),
	}
	if code != "" {
		outcome = OutcomeFailure
		attrs = append(attrs, AttrCode.String(code))
	}
	attrs = append(attrs, AttrOutcome.String(outcome))

	am.generatedTotal.Inc(ctx, attrs...)
	am.duration.RecordDuration(ctx, d, attrs...)
}

// RecordStage records the duration of a single stage such as "render" or "export".
func (am *AgreementMetrics) RecordStage(ctx context.Context, stage string, d time.Duration) {
	if am == nil {
		return
	}
	am.stageDuration.RecordDuration(ctx, d, AttrStage.String(stage))
}

// RecordDocumentSize records the size of an exported document.
func (am *AgreementMetrics) RecordDocumentSize(ctx context.Context, format string, size int64) {
	if am == nil {
		return
	}
	am.documentBytes.Record(ctx, float64(size), AttrFormat.String(format))
}

// RecordFontFallback records a fallback to a built-in face.
func (am *AgreementMetrics) RecordFontFallback(ctx context.Context) {
	if am == nil {
		return
	}
	am.fontFallbacks.Inc(ctx)
}

// RecordCleanup records files removed by retention cleanup.
func (am *AgreementMetrics) RecordCleanup(ctx context.Context, removed int) {
	if am == nil || removed <= 0 {
		return
	}
	am.cleanedTotal.Add(ctx, int64(removed))
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewAgreementMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
