package config

import (
	"fmt"
	"os"

	"parkmeter/internal/parking"
)

type Config struct {
	Port            string
	Environment     string
	OTelServiceName string
	OTelEndpoint    string
	LotLayout       []parking.SpotSpec
	TariffPath      string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:            envOr("APP_PORT", "8080"),
		Environment:     envOr("ENVIRONMENT", "development"),
		OTelServiceName: envOr("OTEL_SERVICE_NAME", "parkmeter"),
		OTelEndpoint:    envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
		TariffPath:      os.Getenv("TARIFF_PATH"),
	}

	if layout := os.Getenv("LOT_LAYOUT"); layout != "" {
		specs, err := parking.ParseLayout(layout)
		if err != nil {
			return nil, fmt.Errorf("LOT_LAYOUT: %w", err)
		}
		cfg.LotLayout = specs
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
