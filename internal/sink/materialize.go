// Package sink turns collected resources into partitioned, append-only
// JSONL objects in the destination bucket.
package sink

import (
	"time"

	"github.com/perimetra/netinv/internal/inventory"
)

// NewEnvelope builds the metadata envelope shared by every record of
// one work item.
func NewEnvelope(item inventory.WorkItem, collectedAt time.Time) inventory.Envelope {
	return inventory.Envelope{
		AccountID:           item.AccountID,
		AccountName:         item.AccountName,
		BusinessUnit:        item.BusinessUnit,
		Region:              item.Region,
		CollectionTimestamp: collectedAt.UTC().Format(time.RFC3339),
	}
}

// Materialize merges the envelope into every collected record and
// groups the results by resource type. Types with zero records are
// omitted entirely so no empty files get written.
func Materialize(collection inventory.Collection, envelope inventory.Envelope) map[inventory.ResourceType][]any {
	groups := make(map[inventory.ResourceType][]any)

	if len(collection.VPCs) > 0 {
		records := make([]any, 0, len(collection.VPCs))
		for _, vpc := range collection.VPCs {
			records = append(records, inventory.VPCRecord{Envelope: envelope, VPC: vpc})
		}
		groups[inventory.ResourceVPCs] = records
	}

	if len(collection.Subnets) > 0 {
		records := make([]any, 0, len(collection.Subnets))
		for _, subnet := range collection.Subnets {
			records = append(records, inventory.SubnetRecord{Envelope: envelope, Subnet: subnet})
		}
		groups[inventory.ResourceSubnets] = records
	}

	if len(collection.SecurityGroups) > 0 {
		records := make([]any, 0, len(collection.SecurityGroups))
		for _, sg := range collection.SecurityGroups {
			records = append(records, inventory.SecurityGroupRecord{Envelope: envelope, SecurityGroup: sg})
		}
		groups[inventory.ResourceSecurityGroups] = records
	}

	return groups
}
