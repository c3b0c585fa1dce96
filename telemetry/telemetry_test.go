package telemetry_test

import (
	"context"
	"testing"

	"github.com/Sathursan-S/Ticketer/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInit_installsGlobalProviders(t *testing.T) {
	originalTracer := otel.GetTracerProvider()
	originalMeter := otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(originalTracer)
		otel.SetMeterProvider(originalMeter)
	})

	providers, err := telemetry.Init(context.Background(), telemetry.Config{ServiceName: "svc-events-test"})
	require.NoError(t, err)

	assert.Same(t, providers.Tracer, otel.GetTracerProvider())
	assert.Same(t, providers.Meter, otel.GetMeterProvider())

	_, span := otel.Tracer("test").Start(context.Background(), "op")
	assert.True(t, span.SpanContext().IsValid())
	assert.True(t, span.IsRecording())
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))
}
