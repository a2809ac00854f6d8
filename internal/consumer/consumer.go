// Package consumer processes delivered batches of work-item messages:
// decode, collect, materialize, write, one message at a time boundary.
package consumer

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/perimetra/netinv/internal/fabric"
	"github.com/perimetra/netinv/internal/inventory"
	"github.com/perimetra/netinv/internal/sink"
	"github.com/perimetra/netinv/internal/telemetry"
)

// Collector gathers the network inventory for one account/region.
type Collector interface {
	Collect(ctx context.Context, accountID, region string) (inventory.Collection, error)
}

// GroupWriter persists materialized record groups.
type GroupWriter interface {
	WriteGroups(ctx context.Context, groups map[inventory.ResourceType][]any, accountID, region string, ts time.Time) error
}

// Settler removes a fully processed message from the queue. Failed
// messages are never settled; the fabric's redelivery policy retries
// them.
type Settler interface {
	Delete(ctx context.Context, receiptHandle string) error
}

// Result is the aggregate outcome of one batch.
type Result struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// Consumer drives the per-message collection path. Messages within a
// batch are independent and carry no shared mutable state, so they are
// processed concurrently up to the configured limit.
type Consumer struct {
	collector   Collector
	writer      GroupWriter
	settler     Settler
	logger      zerolog.Logger
	metrics     *telemetry.Metrics
	concurrency int
	now         func() time.Time
}

// New creates a batch consumer. settler and metrics may be nil.
func New(collector Collector, writer GroupWriter, settler Settler, logger zerolog.Logger, metrics *telemetry.Metrics, concurrency int) *Consumer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Consumer{
		collector:   collector,
		writer:      writer,
		settler:     settler,
		logger:      logger,
		metrics:     metrics,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// ProcessBatch attempts every message in the batch and returns the
// aggregate counts. A failure in one message never aborts the rest.
func (c *Consumer) ProcessBatch(ctx context.Context, messages []fabric.Message) Result {
	var processed, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for _, msg := range messages {
		g.Go(func() error {
			if err := c.processMessage(gctx, msg); err != nil {
				failed.Add(1)
				c.metrics.AddFailed(gctx, 1)
				return nil
			}
			processed.Add(1)
			c.metrics.AddProcessed(gctx, 1)
			return nil
		})
	}
	_ = g.Wait()

	result := Result{Processed: int(processed.Load()), Failed: int(failed.Load())}
	c.logger.Info().
		Int("processed", result.Processed).
		Int("failed", result.Failed).
		Msg("batch complete")
	return result
}

func (c *Consumer) processMessage(ctx context.Context, msg fabric.Message) error {
	item, err := fabric.DecodeWorkItem(msg.Body)
	if err != nil {
		c.logger.Error().Err(err).Str("message_id", msg.ID).Msg("undecodable message")
		return err
	}

	logger := c.logger.With().
		Str("account_id", item.AccountID).
		Str("region", item.Region).
		Logger()

	start := c.now()
	collection, err := c.collector.Collect(ctx, item.AccountID, item.Region)
	if err != nil {
		logger.Error().Err(err).Msg("collection failed")
		return err
	}
	c.metrics.ObserveCollection(ctx, time.Since(start).Seconds())

	collectedAt := c.now()
	groups := sink.Materialize(collection, sink.NewEnvelope(item, collectedAt))
	for resourceType, records := range groups {
		c.metrics.AddRecords(ctx, string(resourceType), int64(len(records)))
	}

	if err := c.writer.WriteGroups(ctx, groups, item.AccountID, item.Region, collectedAt); err != nil {
		logger.Error().Err(err).Msg("storage write failed")
		return err
	}

	if c.settler != nil {
		if err := c.settler.Delete(ctx, msg.ReceiptHandle); err != nil {
			// The item is fully persisted; redelivery would only append
			// another timestamped partition, which is safe.
			logger.Warn().Err(err).Str("message_id", msg.ID).Msg("failed to settle message")
		}
	}

	logger.Debug().Int("resource_types", len(groups)).Msg("work item processed")
	return nil
}
