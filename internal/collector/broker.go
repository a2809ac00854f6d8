// Package collector resolves per-account credentials and gathers the
// network resource inventory for one work item.
package collector

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/perimetra/netinv/internal/inventory"
)

// DefaultRoleName is the read-only role assumed in foreign accounts.
const DefaultRoleName = "NetworkDataCollectionReadOnly"

// Broker hands out region-scoped EC2 clients. Collection in the
// collector's own account uses local identity directly; any other
// account goes through a time-boxed assume-role session. Credentials
// are scoped to one collection attempt and never cached across items.
type Broker struct {
	callerAccount string
	roleName      string
	stsClient     STSAPI
	baseCfg       aws.Config

	// newClient is swapped in tests to avoid real clients.
	newClient func(aws.Config) EC2API
}

// NewBroker resolves the caller identity once and returns a broker.
func NewBroker(ctx context.Context, cfg aws.Config, roleName string) (*Broker, error) {
	stsClient := sts.NewFromConfig(cfg)
	identity, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("resolve caller identity: %w", err)
	}
	if roleName == "" {
		roleName = DefaultRoleName
	}
	return &Broker{
		callerAccount: aws.ToString(identity.Account),
		roleName:      roleName,
		stsClient:     stsClient,
		baseCfg:       cfg,
		newClient: func(c aws.Config) EC2API {
			return ec2.NewFromConfig(c)
		},
	}, nil
}

// CallerAccount returns the collector's own resolved account ID.
func (b *Broker) CallerAccount() string { return b.callerAccount }

// SessionName embeds account and region for audit traceability.
func SessionName(accountID, region string) string {
	return fmt.Sprintf("NetworkDataCollection-%s-%s", accountID, region)
}

// ClientFor returns an EC2 client scoped to the account and region.
// A delegation failure is surfaced immediately as DelegationError and
// is not retried here; the caller isolates it to the one work item.
func (b *Broker) ClientFor(ctx context.Context, accountID, region string) (EC2API, error) {
	cfg := b.baseCfg.Copy()
	cfg.Region = region

	if accountID == b.callerAccount {
		return b.newClient(cfg), nil
	}

	roleARN := fmt.Sprintf("arn:aws:iam::%s:role/%s", accountID, b.roleName)
	provider := stscreds.NewAssumeRoleProvider(b.stsClient, roleARN, func(o *stscreds.AssumeRoleOptions) {
		o.RoleSessionName = SessionName(accountID, region)
	})

	creds := aws.NewCredentialsCache(provider)
	if _, err := creds.Retrieve(ctx); err != nil {
		return nil, &inventory.DelegationError{AccountID: accountID, Region: region, Err: err}
	}

	cfg.Credentials = creds
	return b.newClient(cfg), nil
}
