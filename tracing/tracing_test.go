package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	require.NoError(t, InitWithExporter("flowcorpus", "test", exporter))

	ctx, run := StartSpan(context.Background(), "run")
	_, module := StartSpan(ctx, "module")
	module.WithAttributes(map[string]string{"module": "engage"}).WithCounts(map[string]int{"checked": 3})
	module.Event("stale", "flow", "ENGAGE_002")
	EndSpan(module, errors.New("malformed corpus"))
	EndSpan(run, nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "module", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
	assert.Len(t, spans[0].Events, 2)
	assert.Equal(t, "run", spans[1].Name)
	assert.Equal(t, codes.Ok, spans[1].Status.Code)
}
