package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInit_Disabled(t *testing.T) {
	ctx := context.Background()

	p, logger, err := Init(ctx, Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, logger)
	require.NotNil(t, p.Tracer)
	require.NotNil(t, p.Meter)
	require.NotNil(t, p.Logger)

	assert.Same(t, p.Tracer, otel.GetTracerProvider())
	assert.Same(t, p.Meter, otel.GetMeterProvider())

	_, span := otel.Tracer("test").Start(ctx, "op")
	span.End()

	assert.NoError(t, p.Shutdown(ctx))
}

func TestInitLogger_DisabledWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	_, logger, err := InitLogger(context.Background(), Config{}, &buf)
	require.NoError(t, err)

	logger.Info("task saved", "task_id", "abc")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "task saved", line["msg"])
	assert.Equal(t, "abc", line["task_id"])
}

func TestProviders_ShutdownToleratesMissing(t *testing.T) {
	assert.NoError(t, (&Providers{}).Shutdown(context.Background()))
}

func TestNewResource_IncludesServiceName(t *testing.T) {
	res, err := newResource(context.Background(), "cyclesync-test")
	require.NoError(t, err)

	found := false
	for _, kv := range res.Attributes() {
		if kv.Key == "service.name" {
			found = true
			assert.Equal(t, "cyclesync-test", kv.Value.AsString())
		}
	}
	assert.True(t, found)
}
