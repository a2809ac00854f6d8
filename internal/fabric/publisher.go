// Package fabric adapts the pipeline to its messaging layer: an SNS
// topic on the publish side and an SQS queue of SNS envelopes on the
// delivery side.
package fabric

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"golang.org/x/time/rate"

	"github.com/perimetra/netinv/internal/inventory"
)

// SNSAPI defines the SNS operations used by the publisher.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Subject renders the human-readable subject line for one work item.
func Subject(item inventory.WorkItem) string {
	return fmt.Sprintf("Network Data Collection - %s - %s", item.AccountID, item.Region)
}

// Publisher sends one message per work item to the topic. Large account
// estates fan out into bursts of publishes, so calls go through a rate
// limiter.
type Publisher struct {
	client   SNSAPI
	topicARN string
	limiter  *rate.Limiter
}

// NewPublisher creates a publisher for the given topic. perSecond
// bounds the publish rate; zero or negative disables the limit.
func NewPublisher(client SNSAPI, topicARN string, perSecond float64) *Publisher {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if perSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
	return &Publisher{client: client, topicARN: topicARN, limiter: limiter}
}

// Publish serializes the work item as JSON and publishes it with its
// subject line. Failures come back as PublishError.
func (p *Publisher) Publish(ctx context.Context, item inventory.WorkItem) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return &inventory.PublishError{AccountID: item.AccountID, Region: item.Region, Err: err}
	}

	payload, err := json.Marshal(item)
	if err != nil {
		return &inventory.PublishError{AccountID: item.AccountID, Region: item.Region, Err: err}
	}

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(string(payload)),
		Subject:  aws.String(Subject(item)),
	})
	if err != nil {
		return &inventory.PublishError{AccountID: item.AccountID, Region: item.Region, Err: err}
	}
	return nil
}
