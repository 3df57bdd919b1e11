package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/telemetry"
)

func TestSetup_DisabledIsNoop(t *testing.T) {
	shutdown, err := telemetry.Setup(context.Background(), config.TelemetryConfig{})
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	_, span := telemetry.Tracer("test").Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_EnabledInstallsSDKProvider(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://127.0.0.1:1")
	ctx := context.Background()
	shutdown, err := telemetry.Setup(ctx, config.TelemetryConfig{Enabled: true, ServiceName: "skirmish-test"})
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = telemetry.Setup(ctx, config.TelemetryConfig{})
	})

	_, span := telemetry.Tracer("test").Start(ctx, "real")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_ = shutdown(cancelled)
}

func TestNewProvider_RecordsServiceResource(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp, err := telemetry.NewProvider(context.Background(), "skirmish-test", sdktrace.WithSpanProcessor(rec))
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "battle")
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "battle", ended[0].Name())
	assert.Contains(t, ended[0].Resource().Attributes(), attribute.String("service.name", "skirmish-test"))
}
