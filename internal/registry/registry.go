// Package registry reads account metadata from the DynamoDB registry table.
package registry

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"

	"github.com/perimetra/netinv/internal/inventory"
)

// DynamoDBAPI defines the DynamoDB operations used by the registry.
type DynamoDBAPI interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Registry scans the account table. A scan failure is fatal to the
// whole dispatch run; there is no partial recovery.
type Registry struct {
	client DynamoDBAPI
	table  string
	logger zerolog.Logger
}

// New creates a registry over the given table.
func New(client DynamoDBAPI, table string, logger zerolog.Logger) *Registry {
	return &Registry{client: client, table: table, logger: logger}
}

// ListAccounts returns every account record in the table, following the
// pagination token until exhausted.
func (r *Registry) ListAccounts(ctx context.Context) ([]inventory.AccountRecord, error) {
	var accounts []inventory.AccountRecord
	var startKey map[string]dynamodbtypes.AttributeValue

	for {
		output, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.table),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, &inventory.RegistryScanError{Table: r.table, Err: err}
		}

		var page []inventory.AccountRecord
		if err := attributevalue.UnmarshalListOfMaps(output.Items, &page); err != nil {
			return nil, &inventory.RegistryScanError{Table: r.table, Err: err}
		}
		accounts = append(accounts, page...)

		if output.LastEvaluatedKey == nil {
			break
		}
		startKey = output.LastEvaluatedKey
	}

	r.logger.Debug().Int("accounts", len(accounts)).Str("table", r.table).Msg("registry scan complete")
	return accounts, nil
}
