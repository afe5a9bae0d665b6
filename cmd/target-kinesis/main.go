// Package main implements the entry point for target-kinesis, a
// Singer-protocol delivery target that batches records from stdin into
// AWS Kinesis or Firehose.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsfirehose "github.com/aws/aws-sdk-go-v2/service/firehose"
	awskinesis "github.com/aws/aws-sdk-go-v2/service/kinesis"

	"github.com/crunchmind/target-kinesis/config"
	"github.com/crunchmind/target-kinesis/metric"
	"github.com/crunchmind/target-kinesis/processor"
	"github.com/crunchmind/target-kinesis/sink"
	"github.com/crunchmind/target-kinesis/sink/firehose"
	"github.com/crunchmind/target-kinesis/sink/kinesis"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "target-kinesis"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Target failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}

	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	cfg, err := config.NewLoader().LoadFile(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	if cliCfg.Validate {
		logger.Info("Configuration is valid",
			"sink_kind", cfg.SinkKind,
			"stream_name", cfg.StreamName)
		return nil
	}

	logger.Info("Starting target",
		"version", Version,
		"build_time", BuildTime,
		"sink_kind", cfg.SinkKind,
		"stream_name", cfg.StreamName)

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := startMetrics(cfg, logger)

	deliverSink, err := buildSink(ctx, cfg, logger)
	if err != nil {
		return err
	}

	proc := processor.New(cfg, deliverSink, os.Stdout, logger, metrics)
	checkpoint, err := proc.Run(ctx, os.Stdin)
	if err != nil {
		return err
	}

	logger.Info("Target finished",
		"final_checkpoint", checkpoint != nil)
	return nil
}

// buildSink constructs the configured sink variant on top of the AWS
// default credential chain.
func buildSink(ctx context.Context, cfg *config.Config, logger *slog.Logger) (sink.Sink, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.AWSRegion != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.AWSRegion))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS configuration: %w", err)
	}

	switch cfg.SinkKind {
	case config.SinkKindFirehose:
		return firehose.New(awsfirehose.NewFromConfig(awsCfg), firehose.Config{
			StreamName: cfg.StreamName,
		}, logger)
	default:
		return kinesis.New(awskinesis.NewFromConfig(awsCfg), kinesis.Config{
			StreamName:        cfg.StreamName,
			PartitionKeyField: cfg.PartitionKeyField,
		}, logger)
	}
}

// startMetrics starts the optional /metrics server and returns the core
// recorder, or nil when metrics are disabled.
func startMetrics(cfg *config.Config, logger *slog.Logger) *metric.Metrics {
	if cfg.MetricsPort <= 0 {
		return nil
	}

	registry := metric.NewMetricsRegistry()
	server := metric.NewServer(cfg.MetricsPort, registry)
	go func() {
		if err := server.Start(); err != nil {
			logger.Error("Metrics server failed", "error", err)
		}
	}()
	logger.Info("Metrics server started", "address", server.Address())

	return registry.CoreMetrics()
}
