package dispatch

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/perimetra/netinv/internal/inventory"
	"github.com/perimetra/netinv/internal/telemetry"
)

// AccountLister is the registry contract the dispatcher drives.
type AccountLister interface {
	ListAccounts(ctx context.Context) ([]inventory.AccountRecord, error)
}

// EventPublisher enqueues one work item into the messaging fabric.
type EventPublisher interface {
	Publish(ctx context.Context, item inventory.WorkItem) error
}

// Summary is the structured result of one dispatch run.
type Summary struct {
	TotalAccounts  int `json:"total_accounts"`
	ActiveAccounts int `json:"active_accounts"`
	Published      int `json:"total_events_published"`
	Failed         int `json:"failed_events"`
}

// Dispatcher drives a full registry scan, expands each account into
// work items, and publishes every item independently. A publish failure
// is counted and the run continues; only a registry scan failure aborts
// the run.
type Dispatcher struct {
	registry  AccountLister
	publisher EventPublisher
	logger    zerolog.Logger
	metrics   *telemetry.Metrics
	now       func() time.Time
}

// New creates a dispatcher. metrics may be nil.
func New(registry AccountLister, publisher EventPublisher, logger zerolog.Logger, metrics *telemetry.Metrics) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Run executes one dispatch pass and returns the summary counts.
func (d *Dispatcher) Run(ctx context.Context) (Summary, error) {
	accounts, err := d.registry.ListAccounts(ctx)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{TotalAccounts: len(accounts)}
	now := d.now()

	for _, acct := range accounts {
		if !IsActive(acct) {
			continue
		}
		summary.ActiveAccounts++

		for _, item := range Expand(acct, now) {
			if err := d.publisher.Publish(ctx, item); err != nil {
				summary.Failed++
				d.metrics.AddPublishFailed(ctx, 1)
				d.logger.Error().Err(err).
					Str("account_id", item.AccountID).
					Str("region", item.Region).
					Msg("failed to publish work item")
				continue
			}
			summary.Published++
			d.metrics.AddPublished(ctx, 1)
			d.logger.Debug().
				Str("account_id", item.AccountID).
				Str("region", item.Region).
				Msg("published work item")
		}
	}

	d.logger.Info().
		Int("total_accounts", summary.TotalAccounts).
		Int("active_accounts", summary.ActiveAccounts).
		Int("published", summary.Published).
		Int("failed", summary.Failed).
		Msg("dispatch run complete")

	return summary, nil
}
