// Package telemetry provides OpenTelemetry tracing integration.
//
// Configuration is read from the standard OTEL_* environment variables;
// tracing stays off unless OTEL_ENABLED=true. With tracing on, a global
// TracerProvider is installed and spans are exported over OTLP.
package telemetry

import (
	"os"
	"strings"
)

// Config holds OpenTelemetry configuration loaded from environment variables.
type Config struct {
	Enabled        bool              // OTEL_ENABLED
	ServiceName    string            // OTEL_SERVICE_NAME, default "hyperpart"
	ServiceVersion string            // OTEL_SERVICE_VERSION
	Endpoint       string            // OTEL_EXPORTER_OTLP_ENDPOINT
	Protocol       string            // OTEL_EXPORTER_OTLP_PROTOCOL: grpc or http/protobuf
	Headers        map[string]string // OTEL_EXPORTER_OTLP_HEADERS
	Insecure       bool              // OTEL_EXPORTER_OTLP_INSECURE
	Sampler        string            // OTEL_TRACES_SAMPLER
	SamplerArg     string            // OTEL_TRACES_SAMPLER_ARG
	ResourceAttrs  map[string]string // OTEL_RESOURCE_ATTRIBUTES
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() *Config {
	return &Config{
		Enabled:        strings.EqualFold(os.Getenv("OTEL_ENABLED"), "true"),
		ServiceName:    envOrDefault("OTEL_SERVICE_NAME", "hyperpart"),
		ServiceVersion: envOrDefault("OTEL_SERVICE_VERSION", "unknown"),
		Endpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Protocol:       envOrDefault("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
		Headers:        parseKeyValuePairs(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS")),
		Insecure:       strings.EqualFold(os.Getenv("OTEL_EXPORTER_OTLP_INSECURE"), "true"),
		Sampler:        os.Getenv("OTEL_TRACES_SAMPLER"),
		SamplerArg:     os.Getenv("OTEL_TRACES_SAMPLER_ARG"),
		ResourceAttrs:  parseKeyValuePairs(os.Getenv("OTEL_RESOURCE_ATTRIBUTES")),
	}
}

func envOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseKeyValuePairs parses "key1=value1,key2=value2" into a map. Values may
// contain '='; only the first one separates key and value.
func parseKeyValuePairs(s string) map[string]string {
	result := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		idx := strings.Index(pair, "=")
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(pair[:idx])
		value := strings.TrimSpace(pair[idx+1:])
		if key != "" {
			result[key] = value
		}
	}
	return result
}
