package fabric

import (
	"encoding/json"
	"fmt"

	"github.com/perimetra/netinv/internal/inventory"
)

// snsEnvelope is the notification wrapper SNS places around the payload
// before it lands on the queue. The work item sits double-encoded in
// the Message field.
type snsEnvelope struct {
	Type      string `json:"Type"`
	MessageID string `json:"MessageId"`
	TopicARN  string `json:"TopicArn"`
	Subject   string `json:"Subject"`
	Message   string `json:"Message"`
	Timestamp string `json:"Timestamp"`
}

// DecodeWorkItem unwraps a delivered message body: the outer SNS
// envelope first, then the JSON work item inside its Message field.
func DecodeWorkItem(body string) (inventory.WorkItem, error) {
	var envelope snsEnvelope
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		return inventory.WorkItem{}, fmt.Errorf("decode fabric envelope: %w", err)
	}
	if envelope.Message == "" {
		return inventory.WorkItem{}, fmt.Errorf("fabric envelope has no message payload")
	}

	var item inventory.WorkItem
	if err := json.Unmarshal([]byte(envelope.Message), &item); err != nil {
		return inventory.WorkItem{}, fmt.Errorf("decode work item: %w", err)
	}
	if item.AccountID == "" || item.Region == "" {
		return inventory.WorkItem{}, fmt.Errorf("work item missing account or region")
	}
	return item, nil
}
