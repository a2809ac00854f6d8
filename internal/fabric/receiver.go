package fabric

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SQSAPI defines the SQS operations used by the receiver.
type SQSAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Message is one delivered message with the handle needed to settle it.
type Message struct {
	ID            string
	Body          string
	ReceiptHandle string
}

// ReceiverConfig bounds one receive call.
type ReceiverConfig struct {
	QueueURL    string
	BatchSize   int32 // 1..10, SQS limit
	WaitSeconds int32 // long-poll wait
}

// Receiver pulls delivered batches from the queue. Messages are deleted
// only after successful processing; failed messages stay on the queue
// and the redelivery policy governs retries.
type Receiver struct {
	client SQSAPI
	cfg    ReceiverConfig
}

// NewReceiver creates a receiver with SQS limits applied to the config.
func NewReceiver(client SQSAPI, cfg ReceiverConfig) *Receiver {
	if cfg.BatchSize < 1 || cfg.BatchSize > 10 {
		cfg.BatchSize = 10
	}
	if cfg.WaitSeconds < 0 || cfg.WaitSeconds > 20 {
		cfg.WaitSeconds = 20
	}
	return &Receiver{client: client, cfg: cfg}
}

// Receive long-polls for one batch. An empty slice means the wait
// expired with nothing delivered.
func (r *Receiver) Receive(ctx context.Context) ([]Message, error) {
	output, err := r.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(r.cfg.QueueURL),
		MaxNumberOfMessages: r.cfg.BatchSize,
		WaitTimeSeconds:     r.cfg.WaitSeconds,
	})
	if err != nil {
		return nil, fmt.Errorf("receive messages: %w", err)
	}

	messages := make([]Message, 0, len(output.Messages))
	for _, m := range output.Messages {
		messages = append(messages, Message{
			ID:            aws.ToString(m.MessageId),
			Body:          aws.ToString(m.Body),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
		})
	}
	return messages, nil
}

// Delete settles one processed message.
func (r *Receiver) Delete(ctx context.Context, receiptHandle string) error {
	_, err := r.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(r.cfg.QueueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}
