package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/perimetra/netinv/internal/collector"
	"github.com/perimetra/netinv/internal/consumer"
	"github.com/perimetra/netinv/internal/fabric"
	"github.com/perimetra/netinv/internal/sink"
	"github.com/perimetra/netinv/internal/telemetry"
)

var (
	consumeQueueURL string
	consumeBucket   string
	consumeRegion   string
	consumeOnce     bool
)

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Receive work items and collect network inventory",
	Long: `Consume polls the fabric queue for delivered work items. Each item is
processed independently: resolve credentials for the target account,
collect VPCs, subnets and security groups, and write one JSONL partition
per non-empty resource type. Failed items stay on the queue for
redelivery. With --once a single batch is processed and the result
counts go to stdout as JSON; otherwise consume polls until signalled.`,
	Example: `  netinv consume --config netinv.yaml
  netinv consume --config netinv.yaml --once`,
	RunE: runConsume,
}

func init() {
	rootCmd.AddCommand(consumeCmd)

	consumeCmd.Flags().StringVar(&consumeQueueURL, "queue-url", "", "Fabric queue URL (overrides config)")
	consumeCmd.Flags().StringVar(&consumeBucket, "bucket", "", "Destination bucket (overrides config)")
	consumeCmd.Flags().StringVarP(&consumeRegion, "region", "r", "", "Home region (overrides config)")
	consumeCmd.Flags().BoolVar(&consumeOnce, "once", false, "Process one batch and exit")
}

func runConsume(cmd *cobra.Command, args []string) error {
	if consumeQueueURL != "" {
		cfg.Fabric.QueueURL = consumeQueueURL
	}
	if consumeBucket != "" {
		cfg.Sink.Bucket = consumeBucket
	}
	if consumeRegion != "" {
		cfg.Region = consumeRegion
	}
	if err := cfg.ValidateConsume(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	// Metrics in Prometheus format via OTEL.
	promExporter, err := prometheus.New()
	if err != nil {
		return fmt.Errorf("create prometheus exporter: %w", err)
	}
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(promExporter))
	otel.SetMeterProvider(meterProvider)
	defer func() { _ = meterProvider.Shutdown(context.Background()) }()

	metrics, err := telemetry.NewMetrics(meterProvider.Meter("netinv"))
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	broker, err := collector.NewBroker(ctx, awsCfg, cfg.Collector.RoleName)
	if err != nil {
		return err
	}

	receiver := fabric.NewReceiver(sqs.NewFromConfig(awsCfg), fabric.ReceiverConfig{
		QueueURL:    cfg.Fabric.QueueURL,
		BatchSize:   cfg.Fabric.BatchSize,
		WaitSeconds: cfg.Fabric.WaitSeconds,
	})
	service := collector.NewService(broker, logger)
	writer := sink.NewWriter(s3.NewFromConfig(awsCfg), cfg.Sink.Bucket, cfg.Sink.Prefix, logger)
	c := consumer.New(service, writer, receiver, logger, metrics, cfg.Consumer.Concurrency)

	if consumeOnce {
		messages, err := receiver.Receive(ctx)
		if err != nil {
			return err
		}
		result := c.ProcessBatch(ctx, messages)
		return json.NewEncoder(os.Stdout).Encode(result)
	}

	var group run.Group

	// Poll loop.
	pollCtx, pollCancel := context.WithCancel(ctx)
	group.Add(func() error {
		for {
			messages, err := receiver.Receive(pollCtx)
			if err != nil {
				if pollCtx.Err() != nil {
					return nil
				}
				logger.Error().Err(err).Msg("receive failed")
				select {
				case <-pollCtx.Done():
					return nil
				case <-time.After(5 * time.Second):
				}
				continue
			}
			if len(messages) == 0 {
				continue
			}
			c.ProcessBatch(pollCtx, messages)
		}
	}, func(error) {
		pollCancel()
	})

	// Metrics server.
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	group.Add(func() error {
		logger.Info().Str("addr", cfg.Metrics.Addr).Msg("starting metrics server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}, func(error) {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
	})

	// Signal handling.
	group.Add(func() error {
		<-ctx.Done()
		return nil
	}, func(error) {
		cancel()
	})

	logger.Info().Str("queue_url", cfg.Fabric.QueueURL).Msg("consumer started")
	return group.Run()
}
