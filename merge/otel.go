package merge

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/omtsf/omtsf-go/merge"

// otelMetrics holds the metric instruments for the merge engine. They are
// created once when a MeterProvider is configured and reused for every run.
type otelMetrics struct {
	// durationHistogram records merge duration in milliseconds.
	durationHistogram metric.Float64Histogram

	// groupSizeHistogram records the size of every merged group.
	groupSizeHistogram metric.Int64Histogram

	// conflictCounter counts recorded property conflicts.
	conflictCounter metric.Int64Counter

	// runCounter counts merge runs.
	runCounter metric.Int64Counter
}

func newOTelMetrics(meter metric.Meter) (*otelMetrics, error) {
	m := &otelMetrics{}
	var err error

	m.durationHistogram, err = meter.Float64Histogram(
		"merge.duration",
		metric.WithDescription("Merge run duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	m.groupSizeHistogram, err = meter.Int64Histogram(
		"merge.group_size",
		metric.WithDescription("Size of each resolved merge group"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create group size histogram: %w", err)
	}

	m.conflictCounter, err = meter.Int64Counter(
		"merge.conflicts",
		metric.WithDescription("Property conflicts recorded during merges"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create conflict counter: %w", err)
	}

	m.runCounter, err = meter.Int64Counter(
		"merge.runs",
		metric.WithDescription("Number of merge runs performed"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create run counter: %w", err)
	}

	return m, nil
}
