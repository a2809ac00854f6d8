package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/spf13/cobra"

	"github.com/perimetra/netinv/internal/dispatch"
	"github.com/perimetra/netinv/internal/fabric"
	"github.com/perimetra/netinv/internal/registry"
)

var (
	dispatchTable    string
	dispatchTopicARN string
	dispatchRegion   string
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Scan the account registry and publish work items",
	Long: `Dispatch runs one full scan of the account registry, expands every
active account into one work item per region, and publishes each item
to the fabric topic. Publish failures are counted per item and do not
abort the run; the summary counts go to stdout as JSON.`,
	Example: `  netinv dispatch --config netinv.yaml
  netinv dispatch --table account-metadata --topic-arn arn:aws:sns:us-east-1:111111111111:network-data`,
	RunE: runDispatch,
}

func init() {
	rootCmd.AddCommand(dispatchCmd)

	dispatchCmd.Flags().StringVar(&dispatchTable, "table", "", "Account registry table (overrides config)")
	dispatchCmd.Flags().StringVar(&dispatchTopicARN, "topic-arn", "", "Fabric topic ARN (overrides config)")
	dispatchCmd.Flags().StringVarP(&dispatchRegion, "region", "r", "", "Home region (overrides config)")
}

func runDispatch(cmd *cobra.Command, args []string) error {
	if dispatchTable != "" {
		cfg.Registry.Table = dispatchTable
	}
	if dispatchTopicARN != "" {
		cfg.Fabric.TopicARN = dispatchTopicARN
	}
	if dispatchRegion != "" {
		cfg.Region = dispatchRegion
	}
	if err := cfg.ValidateDispatch(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	reg := registry.New(dynamodb.NewFromConfig(awsCfg), cfg.Registry.Table, logger)
	publisher := fabric.NewPublisher(sns.NewFromConfig(awsCfg), cfg.Fabric.TopicARN, cfg.Fabric.PublishPerSecond)

	d := dispatch.New(reg, publisher, logger, nil)
	summary, err := d.Run(ctx)
	if err != nil {
		return err
	}

	return json.NewEncoder(os.Stdout).Encode(summary)
}
