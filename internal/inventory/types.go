// Package inventory defines the shared domain model for the network
// inventory pipeline: registry account records, work items, collected
// resource records, and the error kinds that cross package boundaries.
package inventory

import "time"

// ResourceType identifies one category of collected network resource.
// The value doubles as the partition directory name in storage keys.
type ResourceType string

const (
	ResourceVPCs           ResourceType = "vpcs"
	ResourceSubnets        ResourceType = "subnets"
	ResourceSecurityGroups ResourceType = "security_groups"
)

// ResourceTypes lists all collected types in deterministic write order.
func ResourceTypes() []ResourceType {
	return []ResourceType{ResourceVPCs, ResourceSubnets, ResourceSecurityGroups}
}

// AccountRecord is one row of the account registry table.
// Immutable within a single dispatch run.
type AccountRecord struct {
	AccountID    string   `dynamodbav:"account_id" json:"account_id"`
	AccountName  string   `dynamodbav:"account_name" json:"account_name"`
	BusinessUnit string   `dynamodbav:"business_unit" json:"business_unit,omitempty"`
	Status       string   `dynamodbav:"status" json:"status"`
	Regions      []string `dynamodbav:"regions,stringset" json:"regions"`
}

// WorkItem is one unit of collection work: a single account/region pair.
// It exists only as a message payload between dispatcher and consumer.
type WorkItem struct {
	AccountID    string    `json:"account_id"`
	AccountName  string    `json:"account_name"`
	BusinessUnit string    `json:"business_unit,omitempty"`
	Region       string    `json:"region"`
	Timestamp    time.Time `json:"timestamp"`
}

// Tag is a single resource tag in the EC2 wire shape.
type Tag struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

// Envelope carries the metadata merged into every persisted record.
// All fields are always present so downstream consumers see a fixed
// schema per resource type.
type Envelope struct {
	AccountID           string `json:"account_id"`
	AccountName         string `json:"account_name"`
	BusinessUnit        string `json:"business_unit"`
	Region              string `json:"region"`
	CollectionTimestamp string `json:"collection_timestamp"`
}

// VPC is a normalized virtual network record.
type VPC struct {
	VPCID     string `json:"vpc_id"`
	CIDRBlock string `json:"cidr_block"`
	State     string `json:"state"`
	IsDefault bool   `json:"is_default"`
	Tags      []Tag  `json:"tags"`
}

// Subnet is a normalized subnet record.
type Subnet struct {
	SubnetID         string `json:"subnet_id"`
	VPCID            string `json:"vpc_id"`
	CIDRBlock        string `json:"cidr_block"`
	AvailabilityZone string `json:"availability_zone"`
	AvailableIPCount int32  `json:"available_ip_count"`
	Tags             []Tag  `json:"tags"`
}

// NoVPC is the sentinel written when a security group carries no VPC
// association. The field is never omitted.
const NoVPC = "N/A"

// SecurityGroup is a normalized security group record. Rule bodies are
// not persisted, only their counts.
type SecurityGroup struct {
	GroupID          string `json:"sg_id"`
	GroupName        string `json:"sg_name"`
	VPCID            string `json:"vpc_id"`
	Description      string `json:"description"`
	IngressRuleCount int    `json:"ingress_rules_count"`
	EgressRuleCount  int    `json:"egress_rules_count"`
	Tags             []Tag  `json:"tags"`
}

// Collection holds the raw output of all collectors for one work item.
// A nil slice means the collector found nothing or failed; the two are
// indistinguishable by design.
type Collection struct {
	VPCs           []VPC
	Subnets        []Subnet
	SecurityGroups []SecurityGroup
}

// VPCRecord is a VPC enriched with the shared metadata envelope.
type VPCRecord struct {
	Envelope
	VPC
}

// SubnetRecord is a Subnet enriched with the shared metadata envelope.
type SubnetRecord struct {
	Envelope
	Subnet
}

// SecurityGroupRecord is a SecurityGroup enriched with the shared
// metadata envelope.
type SecurityGroupRecord struct {
	Envelope
	SecurityGroup
}
