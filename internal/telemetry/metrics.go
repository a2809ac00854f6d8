// Package telemetry provides logging and OpenTelemetry metrics for the
// pipeline. Metrics are exported in Prometheus format.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the pipeline counters. A nil *Metrics is valid and all
// recording methods become no-ops, which keeps tests free of metric
// plumbing.
type Metrics struct {
	itemsPublished     metric.Int64Counter
	publishFailures    metric.Int64Counter
	messagesProcessed  metric.Int64Counter
	messagesFailed     metric.Int64Counter
	recordsCollected   metric.Int64Counter
	collectionDuration metric.Float64Histogram
}

// NewMetrics registers the pipeline instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.itemsPublished, err = meter.Int64Counter(
		"netinv_items_published_total",
		metric.WithDescription("Work items published to the fabric"),
	)
	if err != nil {
		return nil, fmt.Errorf("create items_published counter: %w", err)
	}

	m.publishFailures, err = meter.Int64Counter(
		"netinv_publish_failures_total",
		metric.WithDescription("Work items that failed to publish"),
	)
	if err != nil {
		return nil, fmt.Errorf("create publish_failures counter: %w", err)
	}

	m.messagesProcessed, err = meter.Int64Counter(
		"netinv_messages_processed_total",
		metric.WithDescription("Delivered messages processed successfully"),
	)
	if err != nil {
		return nil, fmt.Errorf("create messages_processed counter: %w", err)
	}

	m.messagesFailed, err = meter.Int64Counter(
		"netinv_messages_failed_total",
		metric.WithDescription("Delivered messages that failed processing"),
	)
	if err != nil {
		return nil, fmt.Errorf("create messages_failed counter: %w", err)
	}

	m.recordsCollected, err = meter.Int64Counter(
		"netinv_records_collected_total",
		metric.WithDescription("Resource records collected, by type"),
	)
	if err != nil {
		return nil, fmt.Errorf("create records_collected counter: %w", err)
	}

	m.collectionDuration, err = meter.Float64Histogram(
		"netinv_collection_duration_seconds",
		metric.WithDescription("Time spent collecting one work item"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create collection_duration histogram: %w", err)
	}

	return m, nil
}

// AddPublished records successfully published work items.
func (m *Metrics) AddPublished(ctx context.Context, n int64) {
	if m == nil {
		return
	}
	m.itemsPublished.Add(ctx, n)
}

// AddPublishFailed records work items that failed to publish.
func (m *Metrics) AddPublishFailed(ctx context.Context, n int64) {
	if m == nil {
		return
	}
	m.publishFailures.Add(ctx, n)
}

// AddProcessed records successfully processed messages.
func (m *Metrics) AddProcessed(ctx context.Context, n int64) {
	if m == nil {
		return
	}
	m.messagesProcessed.Add(ctx, n)
}

// AddFailed records messages that failed processing.
func (m *Metrics) AddFailed(ctx context.Context, n int64) {
	if m == nil {
		return
	}
	m.messagesFailed.Add(ctx, n)
}

// AddRecords records collected resource records for one type.
func (m *Metrics) AddRecords(ctx context.Context, resourceType string, n int64) {
	if m == nil {
		return
	}
	m.recordsCollected.Add(ctx, n, metric.WithAttributes(attribute.String("resource_type", resourceType)))
}

// ObserveCollection records the duration of one work item's collection.
func (m *Metrics) ObserveCollection(ctx context.Context, seconds float64) {
	if m == nil {
		return
	}
	m.collectionDuration.Record(ctx, seconds)
}
