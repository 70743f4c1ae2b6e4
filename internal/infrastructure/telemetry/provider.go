package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// shutdownTimeout bounds the final flush of each signal pipeline.
const shutdownTimeout = 10 * time.Second

// sdkProvider is the part of the trace, metric and log SDK providers that
// the wrappers manage.
type sdkProvider interface {
	Shutdown(ctx context.Context) error
	ForceFlush(ctx context.Context) error
}

// pipeline carries the lifecycle shared by the three signal providers.
// A pipeline without an sdk is disabled and every call is a no-op.
type pipeline struct {
	signal string
	logger *zap.Logger
	sdk    sdkProvider
}

func newPipeline(signal string, logger *zap.Logger) pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return pipeline{signal: signal, logger: logger}
}

// exporterOptions builds the OTLP gRPC dial options common to every exporter.
func exporterOptions[O any](endpoint string, insecure bool, withEndpoint func(string) O, withInsecure func() O) []O {
	opts := []O{withEndpoint(endpoint)}
	if insecure {
		opts = append(opts, withInsecure())
	}
	return opts
}

func (p *pipeline) disabled() {
	p.logger.Info("Telemetry signal disabled, using no-op provider", zap.String("signal", p.signal))
}

func (p *pipeline) started(sdk sdkProvider, endpoint, serviceName string, fields ...zap.Field) {
	p.sdk = sdk
	p.logger.Info("OpenTelemetry provider initialized", append([]zap.Field{
		zap.String("signal", p.signal),
		zap.String("collector_endpoint", endpoint),
		zap.String("service_name", serviceName),
	}, fields...)...)
}

func (p *pipeline) running() bool {
	return p.sdk != nil
}

// Shutdown flushes pending data and stops the provider.
func (p *pipeline) Shutdown(ctx context.Context) error {
	if p.sdk == nil {
		p.logger.Debug("No provider to shutdown", zap.String("signal", p.signal))
		return nil
	}

	p.logger.Info("Shutting down OpenTelemetry provider", zap.String("signal", p.signal))

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := p.sdk.Shutdown(shutdownCtx); err != nil {
		p.logger.Error("Error shutting down provider", zap.String("signal", p.signal), zap.Error(err))
		return fmt.Errorf("failed to shutdown %s provider: %w", p.signal, err)
	}
	return nil
}

// ForceFlush exports everything buffered so far.
func (p *pipeline) ForceFlush(ctx context.Context) error {
	if p.sdk == nil {
		return nil
	}
	return p.sdk.ForceFlush(ctx)
}
