package collector

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/rs/zerolog"

	"github.com/perimetra/netinv/internal/inventory"
)

// Inventory runs the per-type collectors against one scoped client.
// Each collector isolates its own failure: a query error is logged and
// yields an empty slice, so one failing resource type never blocks the
// others. The cost is that "query failed" and "none exist" look the
// same downstream.
type Inventory struct {
	client EC2API
	logger zerolog.Logger
}

// NewInventory creates the collector set for one work item.
func NewInventory(client EC2API, logger zerolog.Logger) *Inventory {
	return &Inventory{client: client, logger: logger}
}

// Collect gathers all resource types. It never fails; partial results
// are the contract.
func (c *Inventory) Collect(ctx context.Context) inventory.Collection {
	return inventory.Collection{
		VPCs:           c.collectVPCs(ctx),
		Subnets:        c.collectSubnets(ctx),
		SecurityGroups: c.collectSecurityGroups(ctx),
	}
}

func (c *Inventory) collectVPCs(ctx context.Context) []inventory.VPC {
	var vpcs []inventory.VPC
	var nextToken *string

	for {
		output, err := c.client.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{NextToken: nextToken})
		if err != nil {
			c.logger.Warn().Err(err).Str("resource_type", string(inventory.ResourceVPCs)).Msg("collection failed")
			return nil
		}

		for _, vpc := range output.Vpcs {
			vpcs = append(vpcs, inventory.VPC{
				VPCID:     aws.ToString(vpc.VpcId),
				CIDRBlock: aws.ToString(vpc.CidrBlock),
				State:     string(vpc.State),
				IsDefault: aws.ToBool(vpc.IsDefault),
				Tags:      convertTags(vpc.Tags),
			})
		}

		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	return vpcs
}

func (c *Inventory) collectSubnets(ctx context.Context) []inventory.Subnet {
	var subnets []inventory.Subnet
	var nextToken *string

	for {
		output, err := c.client.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{NextToken: nextToken})
		if err != nil {
			c.logger.Warn().Err(err).Str("resource_type", string(inventory.ResourceSubnets)).Msg("collection failed")
			return nil
		}

		for _, subnet := range output.Subnets {
			subnets = append(subnets, inventory.Subnet{
				SubnetID:         aws.ToString(subnet.SubnetId),
				VPCID:            aws.ToString(subnet.VpcId),
				CIDRBlock:        aws.ToString(subnet.CidrBlock),
				AvailabilityZone: aws.ToString(subnet.AvailabilityZone),
				AvailableIPCount: aws.ToInt32(subnet.AvailableIpAddressCount),
				Tags:             convertTags(subnet.Tags),
			})
		}

		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	return subnets
}

func (c *Inventory) collectSecurityGroups(ctx context.Context) []inventory.SecurityGroup {
	var groups []inventory.SecurityGroup
	var nextToken *string

	for {
		output, err := c.client.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{NextToken: nextToken})
		if err != nil {
			c.logger.Warn().Err(err).Str("resource_type", string(inventory.ResourceSecurityGroups)).Msg("collection failed")
			return nil
		}

		for _, sg := range output.SecurityGroups {
			vpcID := inventory.NoVPC
			if sg.VpcId != nil {
				vpcID = aws.ToString(sg.VpcId)
			}
			groups = append(groups, inventory.SecurityGroup{
				GroupID:          aws.ToString(sg.GroupId),
				GroupName:        aws.ToString(sg.GroupName),
				VPCID:            vpcID,
				Description:      aws.ToString(sg.Description),
				IngressRuleCount: len(sg.IpPermissions),
				EgressRuleCount:  len(sg.IpPermissionsEgress),
				Tags:             convertTags(sg.Tags),
			})
		}

		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	return groups
}

func convertTags(tags []ec2types.Tag) []inventory.Tag {
	converted := make([]inventory.Tag, 0, len(tags))
	for _, tag := range tags {
		converted = append(converted, inventory.Tag{
			Key:   aws.ToString(tag.Key),
			Value: aws.ToString(tag.Value),
		})
	}
	return converted
}
