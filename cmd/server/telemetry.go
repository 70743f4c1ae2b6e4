package main

import (
	"context"

	"github.com/hotelagreement/backend/internal/infrastructure/config"
	"github.com/hotelagreement/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// telemetryStack holds the providers started at boot. Every member is a
// no-op when its feature is disabled.
type telemetryStack struct {
	tracer   *telemetry.TracerProvider
	meters   *telemetry.MeterProvider
	logs     *telemetry.LoggerProvider
	profiler *telemetry.Profiler
	// logger is the base logger, bridged to OTLP when log export is on
	logger *zap.Logger
	base   *zap.Logger
}

func setupTelemetry(ctx context.Context, cfg *config.Config, log *zap.Logger) (*telemetryStack, error) {
	tc := cfg.Telemetry
	stack := &telemetryStack{logger: log, base: log}

	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           tc.Enabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		SamplingRatio:     tc.SamplingRatio,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, log)
	if err != nil {
		return nil, err
	}
	stack.tracer = tracer

	meters, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           tc.Enabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		ExportInterval:    tc.MetricsInterval,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, log)
	if err != nil {
		stack.shutdown(ctx)
		return nil, err
	}
	stack.meters = meters

	logs, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           tc.Enabled && tc.LogsEnabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, log)
	if err != nil {
		stack.shutdown(ctx)
		return nil, err
	}
	stack.logs = logs

	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	stack.logger = telemetry.Bridge(log, logs, tc.ServiceName, level)

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           tc.ProfilingEnabled,
		ServerAddress:     tc.ProfilingAddress,
		ApplicationName:   tc.ServiceName,
		BasicAuthUser:     tc.ProfilingUser,
		BasicAuthPassword: tc.ProfilingPassword,
	}, log)
	if err != nil {
		stack.shutdown(ctx)
		return nil, err
	}
	stack.profiler = profiler

	if tc.ProfilingEnabled && tc.SpanProfiles {
		if err := tracer.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}

	return stack, nil
}

// shutdown flushes and stops every started provider, newest first
func (s *telemetryStack) shutdown(ctx context.Context) {
	if s.profiler != nil {
		if err := s.profiler.Stop(); err != nil {
			s.base.Warn("Failed to stop profiler", zap.Error(err))
		}
	}
	if s.logs != nil {
		if err := s.logs.Shutdown(ctx); err != nil {
			s.base.Warn("Failed to shut down log exporter", zap.Error(err))
		}
	}
	if s.meters != nil {
		if err := s.meters.Shutdown(ctx); err != nil {
			s.base.Warn("Failed to shut down meter provider", zap.Error(err))
		}
	}
	if s.tracer != nil {
		if err := s.tracer.Shutdown(ctx); err != nil {
			s.base.Warn("Failed to shut down tracer provider", zap.Error(err))
		}
	}
}
