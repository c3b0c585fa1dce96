package lifecycle_test

import (
	"context"
	"testing"

	"github.com/Sathursan-S/Ticketer/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTracingTest(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	originalProvider := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		otel.SetTracerProvider(originalProvider)
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down tracer provider: %v", err)
		}
	})

	return recorder
}

func endedSpan(t *testing.T, recorder *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()

	for _, s := range recorder.Ended() {
		if s.Name() == name {
			return s
		}
	}
	t.Fatalf("span %s not recorded", name)
	return nil
}

func spanAttribute(s sdktrace.ReadOnlySpan, key string) string {
	for _, attr := range s.Attributes() {
		if string(attr.Key) == key {
			return attr.Value.AsString()
		}
	}
	return ""
}

func TestEngine_recordsSpans(t *testing.T) {
	recorder := setupTracingTest(t)
	f := newFixture()

	e := f.create(t)

	created := endedSpan(t, recorder, "lifecycle.Create")
	assert.Equal(t, e.ID, spanAttribute(created, "event.id"))
	assert.Equal(t, codes.Unset, created.Status().Code)

	_, err := f.engine.Publish(context.Background(), organizer, "missing")
	var nf entity.NotFoundError
	require.ErrorAs(t, err, &nf)

	published := endedSpan(t, recorder, "lifecycle.Publish")
	assert.Equal(t, "missing", spanAttribute(published, "event.id"))
	assert.Equal(t, codes.Error, published.Status().Code)
	require.NotEmpty(t, published.Events())
	assert.Equal(t, "exception", published.Events()[0].Name)
}

func TestEngine_recordsForbiddenSpan(t *testing.T) {
	recorder := setupTracingTest(t)
	f := newFixture()

	_, err := f.engine.Cancel(context.Background(), customer, "event-1")
	require.Error(t, err)

	cancelled := endedSpan(t, recorder, "lifecycle.Cancel")
	assert.Equal(t, codes.Error, cancelled.Status().Code)
	assert.Contains(t, cancelled.Status().Description, "not allowed")
}
