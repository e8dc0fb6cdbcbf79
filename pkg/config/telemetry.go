package config

import (
	"context"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/mpapenbr/iracelog-fuel-strategy-go/version"
)

// Telemetry bundles the configured meter provider with its teardown.
type Telemetry struct {
	provider *sdkmetric.MeterProvider
}

func (t *Telemetry) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = t.provider.Shutdown(ctx)
}

// SetupTelemetry installs a global meter provider. Metrics go to the
// OTLP endpoint from TelemetryEndpoint, or to stdout when none is set.
func SetupTelemetry(ctx context.Context) (*Telemetry, error) {
	var reader sdkmetric.Reader
	if TelemetryEndpoint != "" {
		exporter, err := otlpmetricgrpc.New(ctx,
			otlpmetricgrpc.WithEndpoint(TelemetryEndpoint),
			otlpmetricgrpc.WithInsecure())
		if err != nil {
			return nil, err
		}
		reader = sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(15*time.Second))
	} else {
		exporter, err := stdoutmetric.New(
			stdoutmetric.WithWriter(os.Stdout))
		if err != nil {
			return nil, err
		}
		reader = sdkmetric.NewPeriodicReader(exporter,
			sdkmetric.WithInterval(time.Minute))
	}

	res, err := resource.Merge(resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL,
			semconv.ServiceName("iracelog-fuel-strategy"),
			semconv.ServiceVersion(version.Version)))
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res))
	otel.SetMeterProvider(provider)
	return &Telemetry{provider: provider}, nil
}
