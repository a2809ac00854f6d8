package collector

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/perimetra/netinv/internal/inventory"
)

// Service resolves a scoped client for a work item and runs the
// collectors against it. The only error it returns is a credential
// delegation failure; collection itself degrades to partial results.
type Service struct {
	broker *Broker
	logger zerolog.Logger
}

// NewService creates a collection service over the broker.
func NewService(broker *Broker, logger zerolog.Logger) *Service {
	return &Service{broker: broker, logger: logger}
}

// Collect gathers the network inventory for one account/region.
func (s *Service) Collect(ctx context.Context, accountID, region string) (inventory.Collection, error) {
	client, err := s.broker.ClientFor(ctx, accountID, region)
	if err != nil {
		return inventory.Collection{}, err
	}

	logger := s.logger.With().
		Str("account_id", accountID).
		Str("region", region).
		Logger()

	return NewInventory(client, logger).Collect(ctx), nil
}
