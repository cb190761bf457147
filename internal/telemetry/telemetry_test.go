package telemetry_test

import (
	"context"
	"testing"

	"github.com/KirkDiggler/dnd-combat-core/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNoopTracer(t *testing.T) {
	_, span := telemetry.NoopTracer().Start(context.Background(), "encounter.start")
	defer span.End()

	assert.False(t, span.SpanContext().IsValid())
}

func TestTracerUsesGlobalProvider(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, span := telemetry.Tracer("encounter").Start(context.Background(), "encounter.next_turn")
	span.End()

	ended := recorder.Ended()
	if assert.Len(t, ended, 1) {
		assert.Equal(t, "encounter.next_turn", ended[0].Name())
		assert.Equal(t, "dnd-combat-core/encounter", ended[0].InstrumentationScope().Name)
	}
}
