package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thep200/a11y-miner/cfg"
	"github.com/thep200/a11y-miner/internal/model"
	"github.com/thep200/a11y-miner/pkg/db"
	"github.com/thep200/a11y-miner/pkg/kafka"
	"github.com/thep200/a11y-miner/pkg/log"
)

func main() {
	configFile := flag.String("config", "", "Config file (default cfg/yaml/mode.yaml)")
	batchSize := flag.Int("batch", 100, "Detections per database transaction")
	batchTimeout := flag.Duration("flush", 5*time.Second, "Flush a partial batch after this long")
	flag.Parse()

	// Load configuration
	loader, _ := cfg.NewViperLoader(*configFile, false)
	config, err := loader.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := log.NewCslLogger(config.App.LogLevel)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Setup database
	mysql, _ := db.NewMysql(config)
	defer mysql.Close()
	if err := mysql.Migrate(&model.Detection{}); err != nil {
		logger.Error(ctx, "Failed to migrate detections table: %v", err)
		os.Exit(1)
	}
	detectionMd, _ := model.NewDetectionStore(logger, mysql)

	consumer, err := kafka.NewConsumer(config.Kafka.Brokers, config.Kafka.TopicDetection, config.Kafka.ConsumerGroup, logger)
	if err != nil {
		logger.Error(ctx, "Failed to create consumer: %v", err)
		os.Exit(1)
	}
	defer consumer.Close()

	messages := make(chan model.DetectionMessage, *batchSize*2)
	b := &batcher{Logger: logger, Store: detectionMd, Size: *batchSize, Timeout: *batchTimeout}
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Run(ctx, messages)
	}()

	// Key là full name của repository, nên mọi message đi qua fallback
	consumer.RegisterFallback(func(ctx context.Context, key string, value []byte) error {
		var msg model.DetectionMessage
		if err := json.Unmarshal(value, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal detection message %s: %w", key, err)
		}
		select {
		case messages <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})

	logger.Info(ctx, "Detection consumer started on topic %s", config.Kafka.TopicDetection)
	if err := consumer.Start(ctx); err != nil {
		logger.Error(ctx, "Detection consumer error: %v", err)
	}

	stop()
	<-done
	logger.Info(context.Background(), "Detection consumer stopped")
}
