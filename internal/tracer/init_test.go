package tracer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"grant-assistant-be/internal/config"
)

func TestInitTracerDisabled(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), config.AppConfig{OtelEnabled: false, OtelEndpoint: "collector:4318"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitTracerEnabled(t *testing.T) {
	// the exporter connects lazily, so no collector is needed
	shutdown, err := InitTracer(context.Background(), config.AppConfig{OtelEnabled: true, OtelEndpoint: "localhost:4318"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}

func TestResourceAttributes(t *testing.T) {
	res := newResource(config.AppConfig{Environment: "production", ServiceVersion: "1.4.0"})

	got := map[attribute.Key]string{}
	for _, kv := range res.Attributes() {
		got[kv.Key] = kv.Value.Emit()
	}
	assert.Equal(t, serviceName, got["service.name"])
	assert.Equal(t, "1.4.0", got["service.version"])
	assert.Equal(t, "production", got["deployment.environment"])
}
