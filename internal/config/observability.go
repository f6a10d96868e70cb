package config

import (
	"github.com/ferdian3456/rosterbridge/internal/observability"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// LoadObservabilityConfig reports enabled=false when no OTLP endpoint is configured.
func LoadObservabilityConfig(config *koanf.Koanf, log *zap.Logger) (observability.Config, bool) {
	observabilityConfig := observability.Config{
		OtelEndpoint: config.String("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ServiceName:  config.String("OTEL_SERVICE_NAME"),
		Environment:  config.String("ENVIRONMENT"),
		OtelHeaders:  config.String("OTEL_EXPORTER_OTLP_HEADERS"),
		SampleRatio:  config.Float64("OTEL_TRACES_SAMPLER_ARG"),
		Insecure:     config.Bool("OTEL_EXPORTER_OTLP_INSECURE"),
	}

	if observabilityConfig.OtelEndpoint == "" {
		log.Info("OTEL_EXPORTER_OTLP_ENDPOINT not set, tracing disabled")
		return observabilityConfig, false
	}

	if observabilityConfig.ServiceName == "" {
		log.Fatal("failed to get observability config", zap.String("missing", "OTEL_SERVICE_NAME"))
	}

	return observabilityConfig, true
}
