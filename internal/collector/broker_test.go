package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	ststypes "github.com/aws/aws-sdk-go-v2/service/sts/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perimetra/netinv/internal/inventory"
)

type mockSTSClient struct {
	GetCallerIdentityFunc func(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
	AssumeRoleFunc        func(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
	assumeRoleCalls       int
}

func (m *mockSTSClient) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return m.GetCallerIdentityFunc(ctx, params, optFns...)
}

func (m *mockSTSClient) AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error) {
	m.assumeRoleCalls++
	return m.AssumeRoleFunc(ctx, params, optFns...)
}

func testBroker(stsClient STSAPI) *Broker {
	return &Broker{
		callerAccount: "999999999999",
		roleName:      DefaultRoleName,
		stsClient:     stsClient,
		baseCfg:       aws.Config{Region: "us-east-1"},
		newClient:     func(aws.Config) EC2API { return &mockEC2Client{} },
	}
}

func TestBroker_SameAccountSkipsDelegation(t *testing.T) {
	mock := &mockSTSClient{
		AssumeRoleFunc: func(_ context.Context, _ *sts.AssumeRoleInput, _ ...func(*sts.Options)) (*sts.AssumeRoleOutput, error) {
			t.Fatal("assume role must not be called for the collector's own account")
			return nil, nil
		},
	}

	b := testBroker(mock)
	client, err := b.ClientFor(context.Background(), "999999999999", "us-west-2")

	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.Zero(t, mock.assumeRoleCalls)
}

func TestBroker_ForeignAccountAssumesRole(t *testing.T) {
	var captured *sts.AssumeRoleInput
	mock := &mockSTSClient{
		AssumeRoleFunc: func(_ context.Context, params *sts.AssumeRoleInput, _ ...func(*sts.Options)) (*sts.AssumeRoleOutput, error) {
			captured = params
			return &sts.AssumeRoleOutput{
				Credentials: &ststypes.Credentials{
					AccessKeyId:     aws.String("AKIA"),
					SecretAccessKey: aws.String("secret"),
					SessionToken:    aws.String("token"),
					Expiration:      aws.Time(time.Now().Add(time.Hour)),
				},
			}, nil
		},
	}

	b := testBroker(mock)
	client, err := b.ClientFor(context.Background(), "111111111111", "us-west-2")

	require.NoError(t, err)
	assert.NotNil(t, client)
	require.NotNil(t, captured)
	assert.Equal(t, "arn:aws:iam::111111111111:role/NetworkDataCollectionReadOnly", aws.ToString(captured.RoleArn))
	assert.Equal(t, "NetworkDataCollection-111111111111-us-west-2", aws.ToString(captured.RoleSessionName))
}

func TestBroker_DelegationFailure(t *testing.T) {
	mock := &mockSTSClient{
		AssumeRoleFunc: func(_ context.Context, _ *sts.AssumeRoleInput, _ ...func(*sts.Options)) (*sts.AssumeRoleOutput, error) {
			return nil, errors.New("trust relationship missing")
		},
	}

	b := testBroker(mock)
	_, err := b.ClientFor(context.Background(), "111111111111", "us-west-2")

	require.Error(t, err)
	var delegationErr *inventory.DelegationError
	require.ErrorAs(t, err, &delegationErr)
	assert.Equal(t, "111111111111", delegationErr.AccountID)
	assert.Equal(t, "us-west-2", delegationErr.Region)
	// Not retried by the broker.
	assert.Equal(t, 1, mock.assumeRoleCalls)
}

func TestSessionName(t *testing.T) {
	assert.Equal(t, "NetworkDataCollection-111111111111-eu-west-1", SessionName("111111111111", "eu-west-1"))
}
