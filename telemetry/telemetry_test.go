package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/omtsf/omtsf-go/graph"
	"github.com/omtsf/omtsf-go/merge"
)

func TestNewTracerProvider_RecordsEngineSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := NewTracerProvider(exporter, "", nil)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	engine := merge.NewEngine(merge.WithTracerProvider(tp))
	file := graph.NewFile().WithNode(
		graph.NewNode("n1", graph.NodeOrganization).
			WithIdentifier(graph.NewIdentifier("lei", "5493006MHB84DD0ZWV18")))

	_, _, _, err := engine.Merge(context.Background(), file)
	require.NoError(t, err)

	spans := exporter.GetSpans()
	require.NotEmpty(t, spans)
	assert.Equal(t, "omtsf.merge", spans[0].Name)
}
