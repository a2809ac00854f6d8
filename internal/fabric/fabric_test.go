package fabric

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perimetra/netinv/internal/inventory"
)

type mockSNSClient struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *mockSNSClient) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

func TestPublisher_Publish(t *testing.T) {
	var captured *sns.PublishInput
	mock := &mockSNSClient{
		PublishFunc: func(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
			captured = params
			return &sns.PublishOutput{MessageId: aws.String("m-1")}, nil
		},
	}

	p := NewPublisher(mock, "arn:aws:sns:us-east-1:111111111111:network-data", 0)
	item := inventory.WorkItem{
		AccountID:   "111111111111",
		AccountName: "payments-prod",
		Region:      "us-west-2",
		Timestamp:   time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, p.Publish(context.Background(), item))
	require.NotNil(t, captured)
	assert.Equal(t, "arn:aws:sns:us-east-1:111111111111:network-data", aws.ToString(captured.TopicArn))
	assert.Equal(t, "Network Data Collection - 111111111111 - us-west-2", aws.ToString(captured.Subject))

	var decoded inventory.WorkItem
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(captured.Message)), &decoded))
	assert.Equal(t, item.AccountID, decoded.AccountID)
	assert.Equal(t, item.Region, decoded.Region)
}

func TestPublisher_WrapsFailure(t *testing.T) {
	mock := &mockSNSClient{
		PublishFunc: func(_ context.Context, _ *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, errors.New("topic unavailable")
		},
	}

	p := NewPublisher(mock, "arn:aws:sns:us-east-1:111111111111:network-data", 0)
	err := p.Publish(context.Background(), inventory.WorkItem{AccountID: "111111111111", Region: "us-west-2"})

	require.Error(t, err)
	var publishErr *inventory.PublishError
	require.ErrorAs(t, err, &publishErr)
	assert.Equal(t, "111111111111", publishErr.AccountID)
	assert.Equal(t, "us-west-2", publishErr.Region)
}

func TestDecodeWorkItem_RoundTrip(t *testing.T) {
	item := inventory.WorkItem{
		AccountID:    "111111111111",
		AccountName:  "payments-prod",
		BusinessUnit: "payments",
		Region:       "us-west-2",
		Timestamp:    time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC),
	}
	payload, err := json.Marshal(item)
	require.NoError(t, err)

	envelope, err := json.Marshal(map[string]string{
		"Type":      "Notification",
		"MessageId": "m-1",
		"TopicArn":  "arn:aws:sns:us-east-1:111111111111:network-data",
		"Subject":   Subject(item),
		"Message":   string(payload),
	})
	require.NoError(t, err)

	decoded, err := DecodeWorkItem(string(envelope))
	require.NoError(t, err)
	assert.Equal(t, item.AccountID, decoded.AccountID)
	assert.Equal(t, item.AccountName, decoded.AccountName)
	assert.Equal(t, item.BusinessUnit, decoded.BusinessUnit)
	assert.Equal(t, item.Region, decoded.Region)
}

func TestDecodeWorkItem_Rejects(t *testing.T) {
	_, err := DecodeWorkItem("not json")
	assert.Error(t, err)

	_, err = DecodeWorkItem(`{"Type":"Notification","Message":""}`)
	assert.Error(t, err)

	_, err = DecodeWorkItem(`{"Type":"Notification","Message":"{\"region\":\"us-east-1\"}"}`)
	assert.Error(t, err, "work item without account must be rejected")
}

type mockSQSClient struct {
	ReceiveMessageFunc func(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessageFunc  func(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

func (m *mockSQSClient) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	return m.ReceiveMessageFunc(ctx, params, optFns...)
}

func (m *mockSQSClient) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	return m.DeleteMessageFunc(ctx, params, optFns...)
}

func TestReceiver_Receive(t *testing.T) {
	mock := &mockSQSClient{
		ReceiveMessageFunc: func(_ context.Context, params *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
			assert.Equal(t, "https://sqs.us-east-1.amazonaws.com/111111111111/network-data", aws.ToString(params.QueueUrl))
			assert.Equal(t, int32(10), params.MaxNumberOfMessages)
			return &sqs.ReceiveMessageOutput{
				Messages: []sqstypes.Message{
					{MessageId: aws.String("m-1"), Body: aws.String("body-1"), ReceiptHandle: aws.String("rh-1")},
					{MessageId: aws.String("m-2"), Body: aws.String("body-2"), ReceiptHandle: aws.String("rh-2")},
				},
			}, nil
		},
	}

	r := NewReceiver(mock, ReceiverConfig{QueueURL: "https://sqs.us-east-1.amazonaws.com/111111111111/network-data"})
	messages, err := r.Receive(context.Background())

	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "m-1", messages[0].ID)
	assert.Equal(t, "rh-2", messages[1].ReceiptHandle)
}

func TestReceiver_Delete(t *testing.T) {
	var deleted string
	mock := &mockSQSClient{
		DeleteMessageFunc: func(_ context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
			deleted = aws.ToString(params.ReceiptHandle)
			return &sqs.DeleteMessageOutput{}, nil
		},
	}

	r := NewReceiver(mock, ReceiverConfig{QueueURL: "q"})
	require.NoError(t, r.Delete(context.Background(), "rh-1"))
	assert.Equal(t, "rh-1", deleted)
}
